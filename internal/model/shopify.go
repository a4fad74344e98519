package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const FallbackImage = "https://images.pokemontcg.io/bg.jpg"

// Product is the storefront view of a card, assembled from Shopify product
// data plus tag metadata.
type Product struct {
	ID         string
	SafeID     string
	VariantID  string
	Handle     string
	Title      string
	Set        string
	Rarity     string
	CardNumber string
	Price      decimal.Decimal
	Image      string
	Images     []string
	Available  bool
	Stock      int
	CreatedAt  time.Time
}

// Badge is the rarity label shown on product cards.
func (p Product) Badge() string {
	return strings.ToUpper(p.Rarity)
}

func (p Product) BadgeColor() string {
	if p.Rarity == "Common" {
		return "bg-primary"
	}
	return "bg-green-500"
}

// Status renders availability the way the storefront labels it.
func (p Product) Status() string {
	if p.Available {
		return "Sync"
	}
	return "Sold Out"
}

// ListedAgo is a human label for time since listing.
func (p Product) ListedAgo(now time.Time) string {
	if p.CreatedAt.IsZero() {
		return "Recently"
	}
	minutes := int(now.Sub(p.CreatedAt).Minutes())
	switch {
	case minutes < 1:
		return "Just now"
	case minutes < 60:
		return fmt.Sprintf("%dm ago", minutes)
	case minutes < 1440:
		return fmt.Sprintf("%dh ago", minutes/60)
	default:
		return fmt.Sprintf("%dd ago", minutes/1440)
	}
}

type Collection struct {
	Handle string
	Title  string
}

type Cart struct {
	ID            string
	CheckoutURL   string
	TotalQuantity int
	Lines         []CartLine
}

type CartLine struct {
	ID        string
	VariantID string
	Title     string
	Image     string
	Set       string
	Rarity    string
	Price     decimal.Decimal
	Quantity  int
}

// CardMeta is TCG metadata Shopify carries in product tags, in the form
// "set:Base Set", "rarity:Epic", "number:#004".
type CardMeta struct {
	Set        string
	Rarity     string
	CardNumber string
}

func MetaFromTags(tags []string) CardMeta {
	meta := CardMeta{Set: "Unknown Set", Rarity: "Common", CardNumber: "#000"}
	for _, tag := range tags {
		key, value, ok := strings.Cut(tag, ":")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		switch strings.ToLower(key) {
		case "set":
			meta.Set = value
		case "rarity":
			meta.Rarity = value
		case "number":
			meta.CardNumber = value
		}
	}
	return meta
}

// Order is a Shopify Admin API order, trimmed to what analytics needs.
type Order struct {
	ID              int64           `json:"id"`
	TotalPrice      decimal.Decimal `json:"total_price"`
	Customer        *Customer       `json:"customer"`
	ShippingAddress *Address        `json:"shipping_address"`
	BillingAddress  *Address        `json:"billing_address"`
	LineItems       []OrderLineItem `json:"line_items"`
}

type Customer struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

func (c Customer) DisplayName() string {
	name := strings.TrimSpace(c.FirstName + " " + c.LastName)
	if name == "" {
		return c.Email
	}
	return name
}

type Address struct {
	Country string `json:"country"`
}

type OrderLineItem struct {
	Title    string `json:"title"`
	Quantity int    `json:"quantity"`
}
