package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"tcg-nakama/internal/model"
)

type ProductFilter struct {
	Query      string
	Collection string
	Rarity     string
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
	// RecordSearch marks a storefront-originated search so internal lookups
	// (the admin vault filter) stay out of the trending-searches log.
	RecordSearch bool
}

// HotPick is a top-priced product decorated with the storefront's momentum
// indicators.
type HotPick struct {
	model.Product
	Growth  float64
	HypePct int
}

type CartAddRequest struct {
	VariantID string `json:"variant_id" form:"variant_id" query:"variant_id"`
	Quantity  int    `json:"quantity" form:"quantity" query:"quantity"`
}

type CartAddResponse struct {
	Status        string `json:"status"`
	TotalQuantity int    `json:"total_quantity"`
	CheckoutURL   string `json:"checkout_url"`
}

type CartUpdateRequest struct {
	LineID   string `json:"line_id" form:"line_id" query:"line_id"`
	Quantity int    `json:"quantity" form:"quantity" query:"quantity"`
}

// CartView is the rendered drawer state.
type CartView struct {
	Items       []model.CartLine
	TotalPrice  decimal.Decimal
	CartCount   int
	CheckoutURL string
}

type CostUpdate struct {
	ProductID string  `json:"product_id" form:"product_id"`
	BuyPrice  float64 `json:"buy_price" form:"buy_price"`
}

type GradeUpdate struct {
	ProductID string `json:"product_id" form:"product_id"`
	Grade     string `json:"grade" form:"grade"`
}

type BannerForm struct {
	Title        string `json:"title" form:"title"`
	Subtitle     string `json:"subtitle" form:"subtitle"`
	CTALabel     string `json:"cta_label" form:"cta_label"`
	CTALink      string `json:"cta_link" form:"cta_link"`
	ImagePath    string `json:"image_path" form:"image_path"`
	Gradient     string `json:"gradient" form:"gradient"`
	DisplayOrder int    `json:"display_order" form:"display_order"`
	IsActive     bool   `json:"is_active" form:"is_active"`
}

// VaultItem is one dashboard row: a live product joined with local vault
// bookkeeping.
type VaultItem struct {
	model.Product

	DaysInVault *int
	BuyPrice    *float64
	GainLoss    *float64
	Grade       string
}

type DashboardStats struct {
	TotalValue decimal.Decimal
	LiveCount  int
	VIPValue   decimal.Decimal
}

type GradingCandidate struct {
	Title string
	Grade string
	Price decimal.Decimal
	Score int
}

type TrendingSearch struct {
	Query string
	Count int
}

type CountryCount struct {
	Name  string
	Count int
	// Percent is the count relative to the top country, 0-100, for bar widths.
	Percent int
}

type Spender struct {
	Name  string
	Total decimal.Decimal
}

type BasketPair struct {
	Product1 string
	Product2 string
	Count    int
}

type TrackerResult struct {
	Updated  int     `json:"updated"`
	Failed   int     `json:"failed"`
	Skipped  int     `json:"skipped"`
	Total    int     `json:"total"`
	Duration float64 `json:"duration_sec"`
}

type SyncStatus struct {
	LastSync   *time.Time `json:"last_sync"`
	InProgress bool       `json:"sync_in_progress"`
	LastError  string     `json:"last_error,omitempty"`
}
