package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"tcg-nakama/internal/service"
)

type OAuthHandler struct {
	oauthService service.OAuthService
}

func NewOAuthHandler(oauthService service.OAuthService) *OAuthHandler {
	return &OAuthHandler{
		oauthService: oauthService,
	}
}

func (h *OAuthHandler) Authorize(c echo.Context) error {
	authURL, err := h.oauthService.AuthorizeURL()
	if err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error())
	}
	return c.Redirect(http.StatusFound, authURL)
}

func (h *OAuthHandler) Callback(c echo.Context) error {
	ctx := c.Request().Context()

	code := c.QueryParam("code")
	state := c.QueryParam("state")

	if err := h.oauthService.HandleCallback(ctx, code, state); err != nil {
		return c.Redirect(http.StatusFound, "/admin?oauth=error")
	}

	return c.Redirect(http.StatusFound, "/admin?oauth=success")
}

func (h *OAuthHandler) Status(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]bool{
		"connected": h.oauthService.Connected(),
	})
}
