package handler

import (
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"tcg-nakama/internal/dto"
	"tcg-nakama/internal/repository"
	"tcg-nakama/internal/service"
)

const (
	cartCookie       = "cart_id"
	cartCookieMaxAge = 30 * 24 * 60 * 60 // seconds

	freshPullsCount = 6
	hotPicksCount   = 6
)

type StoreHandler struct {
	catalogService service.CatalogService
	cartService    service.CartService
	bannerRepo     repository.BannerRepository
}

func NewStoreHandler(
	catalogService service.CatalogService,
	cartService service.CartService,
	bannerRepo repository.BannerRepository,
) *StoreHandler {
	return &StoreHandler{
		catalogService: catalogService,
		cartService:    cartService,
		bannerRepo:     bannerRepo,
	}
}

func (h *StoreHandler) Home(c echo.Context) error {
	ctx := c.Request().Context()

	filter := parseFilter(c)
	products, err := h.catalogService.Products(ctx, filter)
	if err != nil {
		return err
	}

	collections, err := h.catalogService.Collections(ctx)
	if err != nil {
		return err
	}

	banners, err := h.bannerRepo.Active(ctx)
	if err != nil {
		return err
	}

	cartCount := h.cartCount(c)

	return c.Render(http.StatusOK, "index.html", echo.Map{
		"Products":    products,
		"FreshPulls":  service.FreshPulls(products, freshPullsCount),
		"HotPicks":    service.HotPickCards(products, hotPicksCount),
		"Collections": collections,
		"Banners":     banners,
		"Filter":      filter,
		"CartCount":   cartCount,
		"UsingMock":   h.catalogService.UsingMockData(),
		"AdminEmail":  "",
	})
}

// ProductGrid re-renders the grid alone, for search and filter requests that
// swap it in place.
func (h *StoreHandler) ProductGrid(c echo.Context) error {
	ctx := c.Request().Context()

	filter := parseFilter(c)
	products, err := h.catalogService.Products(ctx, filter)
	if err != nil {
		return err
	}

	return c.Render(http.StatusOK, "product_grid.html", echo.Map{
		"Products": products,
		"Filter":   filter,
	})
}

func (h *StoreHandler) ProductModal(c echo.Context) error {
	ctx := c.Request().Context()

	// Shopify product ids are gid:// URLs, carried in the wildcard segment.
	productID, err := url.PathUnescape(c.Param("*"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	product, err := h.catalogService.Product(ctx, productID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "product not found")
	}

	return c.Render(http.StatusOK, "product_modal.html", echo.Map{
		"Product": product,
	})
}

func (h *StoreHandler) cartCount(c echo.Context) int {
	cartID := readCartCookie(c)
	if cartID == "" {
		return 0
	}
	view, err := h.cartService.View(c.Request().Context(), cartID)
	if err != nil {
		return 0
	}
	return view.CartCount
}

func parseFilter(c echo.Context) dto.ProductFilter {
	filter := dto.ProductFilter{
		Query:        c.QueryParam("q"),
		Collection:   c.QueryParam("collection"),
		Rarity:       c.QueryParam("rarity"),
		RecordSearch: true,
	}
	if raw := c.QueryParam("min_price"); raw != "" {
		if d, err := decimal.NewFromString(raw); err == nil {
			filter.MinPrice = &d
		}
	}
	if raw := c.QueryParam("max_price"); raw != "" {
		if d, err := decimal.NewFromString(raw); err == nil {
			filter.MaxPrice = &d
		}
	}
	return filter
}

func readCartCookie(c echo.Context) string {
	cookie, err := c.Cookie(cartCookie)
	if err != nil || cookie.Value == "" {
		return ""
	}
	// Cart ids are gid:// URLs, stored escaped.
	cartID, err := url.QueryUnescape(cookie.Value)
	if err != nil {
		return ""
	}
	return cartID
}

func writeCartCookie(c echo.Context, cartID string) {
	c.SetCookie(&http.Cookie{
		Name:     cartCookie,
		Value:    url.QueryEscape(cartID),
		Path:     "/",
		MaxAge:   cartCookieMaxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
