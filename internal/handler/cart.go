package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"tcg-nakama/internal/dto"
	"tcg-nakama/internal/service"
)

type CartHandler struct {
	cartService service.CartService
}

func NewCartHandler(cartService service.CartService) *CartHandler {
	return &CartHandler{
		cartService: cartService,
	}
}

func (h *CartHandler) Add(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.CartAddRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if req.VariantID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "variant_id is required")
	}
	if req.Quantity <= 0 {
		req.Quantity = 1
	}

	cart, err := h.cartService.Add(ctx, readCartCookie(c), req.VariantID, req.Quantity)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, "could not add to cart")
	}

	writeCartCookie(c, cart.ID)

	return c.JSON(http.StatusOK, dto.CartAddResponse{
		Status:        "ok",
		TotalQuantity: cart.TotalQuantity,
		CheckoutURL:   cart.CheckoutURL,
	})
}

// Drawer renders the slide-out cart panel.
func (h *CartHandler) Drawer(c echo.Context) error {
	return h.renderDrawer(c, readCartCookie(c))
}

func (h *CartHandler) Update(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.CartUpdateRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if req.LineID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "line_id is required")
	}

	cartID := readCartCookie(c)
	if cartID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "no cart")
	}

	if _, err := h.cartService.Update(ctx, cartID, req.LineID, req.Quantity); err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, "could not update cart")
	}

	return h.renderDrawer(c, cartID)
}

func (h *CartHandler) Clear(c echo.Context) error {
	ctx := c.Request().Context()

	cartID := readCartCookie(c)
	if cartID != "" {
		if _, err := h.cartService.Clear(ctx, cartID); err != nil {
			return echo.NewHTTPError(http.StatusBadGateway, "could not clear cart")
		}
	}

	return h.renderDrawer(c, cartID)
}

func (h *CartHandler) renderDrawer(c echo.Context, cartID string) error {
	view := &dto.CartView{CheckoutURL: h.cartService.FallbackCheckoutURL()}
	if cartID != "" {
		loaded, err := h.cartService.View(c.Request().Context(), cartID)
		if err == nil {
			view = loaded
		}
	}

	return c.Render(http.StatusOK, "cart_drawer.html", echo.Map{
		"Cart": view,
	})
}
