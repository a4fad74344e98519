package model

import (
	"strings"
	"time"
)

// Banner is a homepage carousel slide, managed from the admin panel.
type Banner struct {
	ID           uint   `gorm:"primaryKey"`
	Title        string `gorm:"size:100;not null"`
	Subtitle     string `gorm:"size:200"`
	CTALabel     string `gorm:"size:50"`
	CTALink      string `gorm:"size:200"`
	ImagePath    string `gorm:"size:500"`
	Gradient     string `gorm:"size:100"`
	DisplayOrder int    `gorm:"index;not null;default:0"`
	IsActive     bool   `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ImageURL normalizes the stored path for template use. Local files get the
// /static/ prefix, absolute URLs pass through untouched.
func (b Banner) ImageURL() string {
	p := b.ImagePath
	switch {
	case p == "":
		return ""
	case strings.HasPrefix(p, "http://"), strings.HasPrefix(p, "https://"):
		return p
	case strings.HasPrefix(p, "/static/"):
		return p
	default:
		return "/static/" + strings.TrimLeft(p, "/")
	}
}

// ProductCost is vault bookkeeping: what we paid for a card. Keyed by the
// external product id, which Shopify owns.
type ProductCost struct {
	ProductID string  `gorm:"primaryKey;size:100;not null"`
	BuyPrice  float64 `gorm:"not null"`
	UpdatedAt time.Time
}

// ProductGrade is the condition grade (S/A/B/C) assigned during intake.
type ProductGrade struct {
	ProductID string `gorm:"primaryKey;size:100;not null"`
	Grade     string `gorm:"size:8;not null"`
	UpdatedAt time.Time
}

// SearchLog records storefront searches for trending analytics.
type SearchLog struct {
	ID           uint   `gorm:"primaryKey"`
	Query        string `gorm:"size:200;not null"`
	ResultsCount int    `gorm:"not null;default:0"`
	SearchedAt   time.Time `gorm:"index"`
}

// PriceSnapshot is one market-price observation from the batch tracker.
type PriceSnapshot struct {
	ID           uint   `gorm:"primaryKey"`
	ProductID    string `gorm:"size:100;index;not null"`
	ProductTitle string `gorm:"size:300"`
	MarketUSD    float64
	MarketJPY    int64
	ExchangeRate float64
	RecordedAt   time.Time `gorm:"index"`
}

// SystemSetting is a key-value store for admin-configurable settings and
// tracker run metadata.
type SystemSetting struct {
	Key   string `gorm:"primaryKey;size:100;not null"`
	Value string `gorm:"size:500;not null"`
}
