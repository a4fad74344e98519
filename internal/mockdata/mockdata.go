// Package mockdata ships the bundled demo catalog used when no Shopify
// storefront credentials are configured.
package mockdata

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/shopspring/decimal"

	"tcg-nakama/internal/model"
)

//go:embed catalog.toml
var rawCatalog []byte

type catalogFile struct {
	Collections []collectionEntry `toml:"collections"`
	Products    []productEntry    `toml:"products"`
}

type collectionEntry struct {
	Handle string `toml:"handle"`
	Title  string `toml:"title"`
}

type productEntry struct {
	ID         string `toml:"id"`
	VariantID  string `toml:"variant_id"`
	Title      string `toml:"title"`
	Set        string `toml:"set"`
	Rarity     string `toml:"rarity"`
	CardNumber string `toml:"card_number"`
	Price      string `toml:"price"`
	Collection string `toml:"collection"`
	Image      string `toml:"image"`
}

var (
	once        sync.Once
	loadErr     error
	products    []model.Product
	collections []model.Collection
	byColl      map[string][]model.Product
)

func load() {
	var file catalogFile
	if loadErr = toml.Unmarshal(rawCatalog, &file); loadErr != nil {
		loadErr = fmt.Errorf("parse bundled catalog: %w", loadErr)
		return
	}

	now := time.Now()
	byColl = make(map[string][]model.Product)
	for i, entry := range file.Products {
		price, err := decimal.NewFromString(entry.Price)
		if err != nil {
			loadErr = fmt.Errorf("bundled catalog price %q: %w", entry.Price, err)
			return
		}
		p := model.Product{
			ID:         entry.ID,
			SafeID:     entry.ID,
			VariantID:  entry.VariantID,
			Handle:     entry.ID,
			Title:      entry.Title,
			Set:        entry.Set,
			Rarity:     entry.Rarity,
			CardNumber: entry.CardNumber,
			Price:      price,
			Image:      entry.Image,
			Images:     []string{entry.Image},
			Available:  true,
			Stock:      1,
			// Stagger listing ages so fresh-pulls ordering is stable.
			CreatedAt: now.Add(-time.Duration(i+1) * 24 * time.Hour),
		}
		products = append(products, p)
		if entry.Collection != "" {
			byColl[entry.Collection] = append(byColl[entry.Collection], p)
		}
	}
	for _, c := range file.Collections {
		collections = append(collections, model.Collection{Handle: c.Handle, Title: c.Title})
	}
}

// Products returns a copy of the bundled catalog.
func Products() ([]model.Product, error) {
	once.Do(load)
	if loadErr != nil {
		return nil, loadErr
	}
	out := make([]model.Product, len(products))
	copy(out, products)
	return out, nil
}

// Collections returns the bundled collection list.
func Collections() ([]model.Collection, error) {
	once.Do(load)
	if loadErr != nil {
		return nil, loadErr
	}
	out := make([]model.Collection, len(collections))
	copy(out, collections)
	return out, nil
}

// CollectionProducts returns bundled products for one collection handle.
func CollectionProducts(handle string) ([]model.Product, error) {
	once.Do(load)
	if loadErr != nil {
		return nil, loadErr
	}
	list := byColl[strings.ToLower(handle)]
	out := make([]model.Product, len(list))
	copy(out, list)
	return out, nil
}

// IsMockID reports whether an id or variant gid belongs to the bundled
// catalog.
func IsMockID(id string) bool {
	once.Do(load)
	if strings.HasPrefix(id, "mock_") {
		return true
	}
	for _, p := range products {
		if p.VariantID == id {
			return true
		}
	}
	return false
}
