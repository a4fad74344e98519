package handler

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"tcg-nakama/internal/config"
	"tcg-nakama/internal/dto"
	"tcg-nakama/internal/middleware"
	"tcg-nakama/internal/model"
	"tcg-nakama/internal/poller"
	"tcg-nakama/internal/repository"
	"tcg-nakama/internal/scheduler"
	"tcg-nakama/internal/service"
)

type AdminHandler struct {
	cfg              config.Admin
	vaultService     service.VaultService
	analyticsService service.AnalyticsService
	catalogService   service.CatalogService
	bannerRepo       repository.BannerRepository
	settingRepo      repository.SettingRepository
	scheduler        *scheduler.Scheduler
	poller           *poller.Poller
}

func NewAdminHandler(
	cfg config.Admin,
	vaultService service.VaultService,
	analyticsService service.AnalyticsService,
	catalogService service.CatalogService,
	bannerRepo repository.BannerRepository,
	settingRepo repository.SettingRepository,
	sched *scheduler.Scheduler,
	poll *poller.Poller,
) *AdminHandler {
	return &AdminHandler{
		cfg:              cfg,
		vaultService:     vaultService,
		analyticsService: analyticsService,
		catalogService:   catalogService,
		bannerRepo:       bannerRepo,
		settingRepo:      settingRepo,
		scheduler:        sched,
		poller:           poll,
	}
}

// ---------- session ----------

func (h *AdminHandler) LoginPage(c echo.Context) error {
	return c.Render(http.StatusOK, "login.html", echo.Map{
		"Error": c.QueryParam("error"),
	})
}

func (h *AdminHandler) Login(c echo.Context) error {
	email := c.FormValue("email")
	password := c.FormValue("password")

	if !credentialsMatch(email, password, h.cfg) {
		return c.Redirect(http.StatusFound, "/admin/login?error=invalid")
	}

	token, err := middleware.NewSessionToken(email, h.cfg.SessionSecret)
	if err != nil {
		return err
	}

	c.SetCookie(&http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   24 * 60 * 60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	return c.Redirect(http.StatusFound, "/admin")
}

func (h *AdminHandler) Logout(c echo.Context) error {
	c.SetCookie(&http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	return c.Redirect(http.StatusFound, "/admin/login")
}

func credentialsMatch(email, password string, cfg config.Admin) bool {
	if cfg.Password == "" {
		return false
	}
	emailOK := subtle.ConstantTimeCompare([]byte(email), []byte(cfg.Email)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(cfg.Password)) == 1
	return emailOK && passOK
}

// ---------- dashboard ----------

func (h *AdminHandler) Dashboard(c echo.Context) error {
	ctx := c.Request().Context()

	query := c.QueryParam("q")
	rarity := c.QueryParam("rarity")

	items, err := h.vaultService.Items(ctx, query, rarity)
	if err != nil {
		return err
	}

	return c.Render(http.StatusOK, "dashboard.html", echo.Map{
		"Items":      items,
		"Stats":      h.vaultService.Stats(items),
		"Query":      query,
		"Rarity":     rarity,
		"Sync":       h.poller.Status(),
		"UsingMock":  h.catalogService.UsingMockData(),
		"AdminEmail": c.Get("admin_email"),
		"OAuth":      c.QueryParam("oauth"),
	})
}

func (h *AdminHandler) UpdateCost(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.CostUpdate
	if err := c.Bind(&req); err != nil {
		return err
	}
	if req.ProductID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "product_id is required")
	}

	if err := h.vaultService.SetCost(ctx, req.ProductID, req.BuyPrice); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (h *AdminHandler) UpdateGrade(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.GradeUpdate
	if err := c.Bind(&req); err != nil {
		return err
	}
	if req.ProductID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "product_id is required")
	}

	if err := h.vaultService.SetGrade(ctx, req.ProductID, req.Grade); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// ---------- analytics ----------

func (h *AdminHandler) AnalyticsPage(c echo.Context) error {
	ctx := c.Request().Context()

	overview, err := h.analyticsService.Overview(ctx)
	if err != nil {
		return err
	}

	return c.Render(http.StatusOK, "analytics.html", echo.Map{
		"Overview":   overview,
		"AdminEmail": c.Get("admin_email"),
	})
}

// ---------- sync ----------

func (h *AdminHandler) SyncNow(c echo.Context) error {
	h.poller.Sync(c.Request().Context())
	return c.JSON(http.StatusOK, h.poller.Status())
}

func (h *AdminHandler) SyncStatus(c echo.Context) error {
	return c.JSON(http.StatusOK, h.poller.Status())
}

// ---------- price tracker ----------

func (h *AdminHandler) TrackerRun(c echo.Context) error {
	// The batch outlives the request, so detach it from the request context.
	if !h.scheduler.RunNow(context.Background()) {
		return c.JSON(http.StatusConflict, map[string]string{"status": "already_running"})
	}
	return c.JSON(http.StatusAccepted, map[string]string{"status": "started"})
}

func (h *AdminHandler) TrackerStatus(c echo.Context) error {
	ctx := c.Request().Context()

	status := echo.Map{
		"frequency": h.scheduler.Frequency(),
		"running":   h.scheduler.IsRunning(),
	}
	keys := map[string]string{
		"status":       repository.SettingTrackerStatus,
		"last_run":     repository.SettingTrackerLastRun,
		"last_error":   repository.SettingTrackerLastError,
		"last_updated": repository.SettingTrackerLastUpdated,
		"last_failed":  repository.SettingTrackerLastFailed,
		"last_skipped": repository.SettingTrackerLastSkipped,
		"last_total":   repository.SettingTrackerLastTotal,
		"duration_sec": repository.SettingTrackerLastDuration,
	}
	for field, key := range keys {
		value, err := h.settingRepo.Get(ctx, key, "")
		if err != nil {
			continue
		}
		status[field] = value
	}

	return c.JSON(http.StatusOK, status)
}

func (h *AdminHandler) TrackerFrequency(c echo.Context) error {
	frequency := c.FormValue("frequency")
	if err := h.scheduler.Reschedule(c.Request().Context(), frequency); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok", "frequency": frequency})
}

// ---------- banners ----------

func (h *AdminHandler) BannersPage(c echo.Context) error {
	ctx := c.Request().Context()

	banners, err := h.bannerRepo.All(ctx)
	if err != nil {
		return err
	}

	return c.Render(http.StatusOK, "banners.html", echo.Map{
		"Banners":    banners,
		"AdminEmail": c.Get("admin_email"),
	})
}

func (h *AdminHandler) CreateBanner(c echo.Context) error {
	ctx := c.Request().Context()

	var form dto.BannerForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid banner form")
	}
	if form.Title == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "title is required")
	}

	banner := bannerFromForm(form)
	if err := h.bannerRepo.Create(ctx, banner); err != nil {
		return err
	}

	return c.Redirect(http.StatusFound, "/admin/banners")
}

func (h *AdminHandler) UpdateBanner(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid banner id")
	}

	var form dto.BannerForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid banner form")
	}

	banner, err := h.bannerRepo.FindByID(ctx, uint(id))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "banner not found")
	}

	updated := bannerFromForm(form)
	updated.ID = banner.ID
	updated.CreatedAt = banner.CreatedAt
	if err := h.bannerRepo.Update(ctx, updated); err != nil {
		return err
	}

	return c.Redirect(http.StatusFound, "/admin/banners")
}

func (h *AdminHandler) DeleteBanner(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid banner id")
	}

	if err := h.bannerRepo.Delete(ctx, uint(id)); err != nil {
		return err
	}

	return c.Redirect(http.StatusFound, "/admin/banners")
}

func bannerFromForm(form dto.BannerForm) *model.Banner {
	return &model.Banner{
		Title:        form.Title,
		Subtitle:     form.Subtitle,
		CTALabel:     form.CTALabel,
		CTALink:      form.CTALink,
		ImagePath:    form.ImagePath,
		Gradient:     form.Gradient,
		DisplayOrder: form.DisplayOrder,
		IsActive:     form.IsActive,
	}
}
