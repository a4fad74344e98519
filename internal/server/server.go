package server

import (
	"context"
	"fmt"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"tcg-nakama/internal/config"
	"tcg-nakama/internal/handler"
	appmiddleware "tcg-nakama/internal/middleware"
	"tcg-nakama/web"
)

type Server struct {
	echo          *echo.Echo
	sessionSecret string
	storeHandler  *handler.StoreHandler
	cartHandler   *handler.CartHandler
	adminHandler  *handler.AdminHandler
	oauthHandler  *handler.OAuthHandler
}

func NewServer(
	cfg *config.Config,
	storeHandler *handler.StoreHandler,
	cartHandler *handler.CartHandler,
	adminHandler *handler.AdminHandler,
	oauthHandler *handler.OAuthHandler,
) (*Server, error) {
	e := echo.New()
	e.HideBanner = true

	renderer, err := NewRenderer()
	if err != nil {
		return nil, fmt.Errorf("init renderer: %w", err)
	}
	e.Renderer = renderer

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	e.StaticFS("/static", echo.MustSubFS(web.Static, "static"))

	s := &Server{
		echo:          e,
		sessionSecret: cfg.Admin.SessionSecret,
		storeHandler:  storeHandler,
		cartHandler:   cartHandler,
		adminHandler:  adminHandler,
		oauthHandler:  oauthHandler,
	}

	s.setupRoutes()
	return s, nil
}

func (s *Server) setupRoutes() {
	e := s.echo

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok"})
	})

	// -------- storefront --------
	e.GET("/", s.storeHandler.Home)
	e.GET("/search", s.storeHandler.ProductGrid)
	e.GET("/filter", s.storeHandler.ProductGrid)
	e.GET("/product/*", s.storeHandler.ProductModal)

	// -------- cart --------
	cart := e.Group("/cart")
	cart.GET("", s.cartHandler.Drawer)
	cart.GET("/drawer", s.cartHandler.Drawer)
	cart.POST("/add", s.cartHandler.Add)
	cart.POST("/update", s.cartHandler.Update)
	cart.POST("/clear", s.cartHandler.Clear)

	// -------- admin session --------
	e.GET("/admin/login", s.adminHandler.LoginPage)
	e.POST("/admin/login", s.adminHandler.Login)
	e.GET("/admin/logout", s.adminHandler.Logout)

	// -------- admin (session gated) --------
	gate := appmiddleware.AdminSession(s.sessionSecret)
	admin := e.Group("/admin", gate)
	admin.GET("", s.adminHandler.Dashboard)
	admin.POST("/cost", s.adminHandler.UpdateCost)
	admin.POST("/grade", s.adminHandler.UpdateGrade)
	admin.GET("/analytics", s.adminHandler.AnalyticsPage)
	admin.POST("/sync", s.adminHandler.SyncNow)
	admin.GET("/sync/status", s.adminHandler.SyncStatus)
	admin.POST("/tracker/run", s.adminHandler.TrackerRun)
	admin.GET("/tracker/status", s.adminHandler.TrackerStatus)
	admin.POST("/tracker/frequency", s.adminHandler.TrackerFrequency)
	admin.GET("/banners", s.adminHandler.BannersPage)
	admin.POST("/banners", s.adminHandler.CreateBanner)
	admin.POST("/banners/:id", s.adminHandler.UpdateBanner)
	admin.POST("/banners/:id/delete", s.adminHandler.DeleteBanner)
	admin.GET("/oauth/status", s.oauthHandler.Status)

	// -------- shopify oauth --------
	e.GET("/oauth/authorize", s.oauthHandler.Authorize, gate)
	e.GET("/oauth/callback", s.oauthHandler.Callback)
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
