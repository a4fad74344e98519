package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"tcg-nakama/internal/config"
	"tcg-nakama/internal/dto"
	"tcg-nakama/internal/model"
)

const storefrontAPIVersion = "2024-01"

// ErrNotConfigured is returned when no storefront token is present. Callers
// fall back to the bundled mock catalog.
var ErrNotConfigured = errors.New("missing shopify storefront token")

type ShopifyClient interface {
	Configured() bool
	GetProducts(ctx context.Context, filter dto.ProductFilter) ([]model.Product, error)
	GetProduct(ctx context.Context, productID string) (*model.Product, error)
	GetCollections(ctx context.Context) ([]model.Collection, error)
	GetCollectionProducts(ctx context.Context, handle string) ([]model.Product, error)
	CreateCart(ctx context.Context, variantID string, quantity int) (*model.Cart, error)
	AddToCart(ctx context.Context, cartID, variantID string, quantity int) (*model.Cart, error)
	UpdateCartLine(ctx context.Context, cartID, lineID string, quantity int) (*model.Cart, error)
	RemoveCartLines(ctx context.Context, cartID string, lineIDs []string) (*model.Cart, error)
	GetCart(ctx context.Context, cartID string) (*model.Cart, error)
}

type shopifyClientImpl struct {
	httpClient      *http.Client
	storeURL        string
	storefrontToken string
}

func NewShopifyClient(shopifyCfg *config.Shopify) ShopifyClient {
	return &shopifyClientImpl{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		storeURL:        strings.TrimRight(shopifyCfg.StoreURL, "/"),
		storefrontToken: shopifyCfg.StorefrontToken,
	}
}

func (c *shopifyClientImpl) Configured() bool {
	return c.storefrontToken != ""
}

type graphQLError struct {
	Message string `json:"message"`
}

func (c *shopifyClientImpl) query(ctx context.Context, gql string, variables map[string]any, out any) error {
	if !c.Configured() {
		return ErrNotConfigured
	}

	payload, err := json.Marshal(map[string]any{
		"query":     gql,
		"variables": variables,
	})
	if err != nil {
		return fmt.Errorf("marshal graphql payload: %w", err)
	}

	url := fmt.Sprintf("%s/api/%s/graphql.json", c.storeURL, storefrontAPIVersion)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(payload))
	if err != nil {
		return fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("X-Shopify-Storefront-Access-Token", c.storefrontToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("shopify storefront request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("shopify storefront error %d: %s", resp.StatusCode, string(b))
	}

	var envelope struct {
		Data   json.RawMessage `json:"data"`
		Errors []graphQLError  `json:"errors"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("decode shopify response: %w", err)
	}

	if len(envelope.Errors) > 0 {
		// Partial success is fine as long as data came back.
		if len(envelope.Data) == 0 || string(envelope.Data) == "null" {
			return fmt.Errorf("shopify api error: %s", envelope.Errors[0].Message)
		}
		slog.Warn("shopify returned partial errors", slog.String("first", envelope.Errors[0].Message))
	}

	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("decode shopify data: %w", err)
	}
	return nil
}

// ---- wire types ----

type imageNode struct {
	URL string `json:"url"`
}

type variantNode struct {
	ID               string `json:"id"`
	Title            string `json:"title"`
	AvailableForSale bool   `json:"availableForSale"`
	Price            struct {
		Amount       string `json:"amount"`
		CurrencyCode string `json:"currencyCode"`
	} `json:"price"`
}

type productNode struct {
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	Handle         string     `json:"handle"`
	Tags           []string   `json:"tags"`
	CreatedAt      string     `json:"createdAt"`
	TotalInventory int        `json:"totalInventory"`
	FeaturedImage  *imageNode `json:"featuredImage"`
	Images         struct {
		Edges []struct {
			Node imageNode `json:"node"`
		} `json:"edges"`
	} `json:"images"`
	Variants struct {
		Edges []struct {
			Node variantNode `json:"node"`
		} `json:"edges"`
	} `json:"variants"`
}

type cartNode struct {
	ID            string `json:"id"`
	CheckoutURL   string `json:"checkoutUrl"`
	TotalQuantity int    `json:"totalQuantity"`
	Lines         struct {
		Edges []struct {
			Node struct {
				ID          string `json:"id"`
				Quantity    int    `json:"quantity"`
				Merchandise struct {
					ID    string `json:"id"`
					Title string `json:"title"`
					Price struct {
						Amount string `json:"amount"`
					} `json:"price"`
					Product struct {
						Title         string     `json:"title"`
						Tags          []string   `json:"tags"`
						FeaturedImage *imageNode `json:"featuredImage"`
					} `json:"product"`
				} `json:"merchandise"`
			} `json:"node"`
		} `json:"edges"`
	} `json:"lines"`
}

func mapProduct(node *productNode) model.Product {
	meta := model.MetaFromTags(node.Tags)

	var variant variantNode
	if len(node.Variants.Edges) > 0 {
		variant = node.Variants.Edges[0].Node
	}

	price, err := decimal.NewFromString(variant.Price.Amount)
	if err != nil {
		price = decimal.Zero
	}

	image := model.FallbackImage
	if node.FeaturedImage != nil && node.FeaturedImage.URL != "" {
		image = node.FeaturedImage.URL
	}

	var images []string
	for _, edge := range node.Images.Edges {
		images = append(images, edge.Node.URL)
	}
	if len(images) == 0 {
		images = []string{image}
	}

	var createdAt time.Time
	if node.CreatedAt != "" {
		createdAt, _ = time.Parse(time.RFC3339, node.CreatedAt)
	}

	safeID := node.ID
	if idx := strings.LastIndex(node.ID, "/"); idx >= 0 {
		safeID = node.ID[idx+1:]
	}

	return model.Product{
		ID:         node.ID,
		SafeID:     safeID,
		VariantID:  variant.ID,
		Handle:     node.Handle,
		Title:      node.Title,
		Set:        meta.Set,
		Rarity:     meta.Rarity,
		CardNumber: meta.CardNumber,
		Price:      price,
		Image:      image,
		Images:     images,
		Available:  variant.AvailableForSale,
		Stock:      node.TotalInventory,
		CreatedAt:  createdAt,
	}
}

func mapCart(node *cartNode) *model.Cart {
	cart := &model.Cart{
		ID:            node.ID,
		CheckoutURL:   node.CheckoutURL,
		TotalQuantity: node.TotalQuantity,
	}
	for _, edge := range node.Lines.Edges {
		line := edge.Node
		meta := model.MetaFromTags(line.Merchandise.Product.Tags)

		price, err := decimal.NewFromString(line.Merchandise.Price.Amount)
		if err != nil {
			price = decimal.Zero
		}

		title := line.Merchandise.Product.Title
		if title == "" {
			title = line.Merchandise.Title
		}
		image := model.FallbackImage
		if img := line.Merchandise.Product.FeaturedImage; img != nil && img.URL != "" {
			image = img.URL
		}

		cart.Lines = append(cart.Lines, model.CartLine{
			ID:        line.ID,
			VariantID: line.Merchandise.ID,
			Title:     title,
			Image:     image,
			Set:       meta.Set,
			Rarity:    meta.Rarity,
			Price:     price,
			Quantity:  line.Quantity,
		})
	}
	return cart
}

// buildSearchQuery compiles filters into a Shopify search string. Price
// bounds are refined locally so live and mock catalogs behave identically.
func buildSearchQuery(filter dto.ProductFilter) string {
	var parts []string
	if filter.Query != "" {
		parts = append(parts, fmt.Sprintf("(title:*%s*)", filter.Query))
	}
	if filter.Rarity != "" {
		parts = append(parts, fmt.Sprintf("(tag:%q)", "rarity:"+filter.Rarity))
	}
	return strings.Join(parts, " AND ")
}

const productFields = `
  id
  title
  tags
  handle
  createdAt
  totalInventory
  featuredImage { url }
  images(first: 10) {
    edges { node { url } }
  }
  variants(first: 1) {
    edges {
      node {
        id
        title
        availableForSale
        price { amount currencyCode }
      }
    }
  }`

func (c *shopifyClientImpl) GetProducts(ctx context.Context, filter dto.ProductFilter) ([]model.Product, error) {
	gql := `
	query getProducts($query: String!) {
	  products(first: 50, query: $query) {
	    edges { node {` + productFields + `} }
	  }
	}`

	var data struct {
		Products struct {
			Edges []struct {
				Node productNode `json:"node"`
			} `json:"edges"`
		} `json:"products"`
	}
	if err := c.query(ctx, gql, map[string]any{"query": buildSearchQuery(filter)}, &data); err != nil {
		return nil, fmt.Errorf("fetch products: %w", err)
	}

	products := make([]model.Product, 0, len(data.Products.Edges))
	for _, edge := range data.Products.Edges {
		products = append(products, mapProduct(&edge.Node))
	}
	return products, nil
}

func (c *shopifyClientImpl) GetProduct(ctx context.Context, productID string) (*model.Product, error) {
	gql := `
	query getProduct($id: ID!) {
	  product(id: $id) {` + productFields + `}
	}`

	var data struct {
		Product *productNode `json:"product"`
	}
	if err := c.query(ctx, gql, map[string]any{"id": productID}, &data); err != nil {
		return nil, fmt.Errorf("fetch product: %w", err)
	}
	if data.Product == nil {
		return nil, nil
	}
	product := mapProduct(data.Product)
	return &product, nil
}

func (c *shopifyClientImpl) GetCollections(ctx context.Context) ([]model.Collection, error) {
	gql := `
	query getCollections {
	  collections(first: 20) {
	    edges { node { handle title } }
	  }
	}`

	var data struct {
		Collections struct {
			Edges []struct {
				Node struct {
					Handle string `json:"handle"`
					Title  string `json:"title"`
				} `json:"node"`
			} `json:"edges"`
		} `json:"collections"`
	}
	if err := c.query(ctx, gql, nil, &data); err != nil {
		return nil, fmt.Errorf("fetch collections: %w", err)
	}

	collections := make([]model.Collection, 0, len(data.Collections.Edges))
	for _, edge := range data.Collections.Edges {
		collections = append(collections, model.Collection{
			Handle: edge.Node.Handle,
			Title:  edge.Node.Title,
		})
	}
	return collections, nil
}

func (c *shopifyClientImpl) GetCollectionProducts(ctx context.Context, handle string) ([]model.Product, error) {
	gql := `
	query getCollectionProducts($handle: String!) {
	  collection(handle: $handle) {
	    products(first: 50) {
	      edges { node {` + productFields + `} }
	    }
	  }
	}`

	var data struct {
		Collection *struct {
			Products struct {
				Edges []struct {
					Node productNode `json:"node"`
				} `json:"edges"`
			} `json:"products"`
		} `json:"collection"`
	}
	if err := c.query(ctx, gql, map[string]any{"handle": handle}, &data); err != nil {
		return nil, fmt.Errorf("fetch collection products: %w", err)
	}
	if data.Collection == nil {
		return nil, nil
	}

	products := make([]model.Product, 0, len(data.Collection.Products.Edges))
	for _, edge := range data.Collection.Products.Edges {
		products = append(products, mapProduct(&edge.Node))
	}
	return products, nil
}

const cartFields = `
  id
  checkoutUrl
  totalQuantity
  lines(first: 20) {
    edges {
      node {
        id
        quantity
        merchandise {
          ... on ProductVariant {
            id
            title
            price { amount }
            product {
              title
              tags
              featuredImage { url }
            }
          }
        }
      }
    }
  }`

func (c *shopifyClientImpl) CreateCart(ctx context.Context, variantID string, quantity int) (*model.Cart, error) {
	gql := `
	mutation cartCreate($input: CartInput!) {
	  cartCreate(input: $input) {
	    cart {` + cartFields + `}
	  }
	}`

	variables := map[string]any{
		"input": map[string]any{
			"lines": []map[string]any{
				{"merchandiseId": variantID, "quantity": quantity},
			},
		},
	}

	var data struct {
		CartCreate struct {
			Cart *cartNode `json:"cart"`
		} `json:"cartCreate"`
	}
	if err := c.query(ctx, gql, variables, &data); err != nil {
		return nil, fmt.Errorf("create cart: %w", err)
	}
	if data.CartCreate.Cart == nil {
		return nil, fmt.Errorf("create cart: empty response")
	}
	return mapCart(data.CartCreate.Cart), nil
}

func (c *shopifyClientImpl) AddToCart(ctx context.Context, cartID, variantID string, quantity int) (*model.Cart, error) {
	gql := `
	mutation cartLinesAdd($cartId: ID!, $lines: [CartLineInput!]!) {
	  cartLinesAdd(cartId: $cartId, lines: $lines) {
	    cart {` + cartFields + `}
	  }
	}`

	variables := map[string]any{
		"cartId": cartID,
		"lines": []map[string]any{
			{"merchandiseId": variantID, "quantity": quantity},
		},
	}

	var data struct {
		CartLinesAdd struct {
			Cart *cartNode `json:"cart"`
		} `json:"cartLinesAdd"`
	}
	if err := c.query(ctx, gql, variables, &data); err != nil {
		return nil, fmt.Errorf("add to cart: %w", err)
	}
	if data.CartLinesAdd.Cart == nil {
		return nil, fmt.Errorf("add to cart: empty response")
	}
	return mapCart(data.CartLinesAdd.Cart), nil
}

func (c *shopifyClientImpl) UpdateCartLine(ctx context.Context, cartID, lineID string, quantity int) (*model.Cart, error) {
	gql := `
	mutation cartLinesUpdate($cartId: ID!, $lines: [CartLineUpdateInput!]!) {
	  cartLinesUpdate(cartId: $cartId, lines: $lines) {
	    cart {` + cartFields + `}
	  }
	}`

	variables := map[string]any{
		"cartId": cartID,
		"lines": []map[string]any{
			{"id": lineID, "quantity": quantity},
		},
	}

	var data struct {
		CartLinesUpdate struct {
			Cart *cartNode `json:"cart"`
		} `json:"cartLinesUpdate"`
	}
	if err := c.query(ctx, gql, variables, &data); err != nil {
		return nil, fmt.Errorf("update cart line: %w", err)
	}
	if data.CartLinesUpdate.Cart == nil {
		return nil, fmt.Errorf("update cart line: empty response")
	}
	return mapCart(data.CartLinesUpdate.Cart), nil
}

func (c *shopifyClientImpl) RemoveCartLines(ctx context.Context, cartID string, lineIDs []string) (*model.Cart, error) {
	gql := `
	mutation cartLinesRemove($cartId: ID!, $lineIds: [ID!]!) {
	  cartLinesRemove(cartId: $cartId, lineIds: $lineIds) {
	    cart {` + cartFields + `}
	  }
	}`

	variables := map[string]any{
		"cartId":  cartID,
		"lineIds": lineIDs,
	}

	var data struct {
		CartLinesRemove struct {
			Cart *cartNode `json:"cart"`
		} `json:"cartLinesRemove"`
	}
	if err := c.query(ctx, gql, variables, &data); err != nil {
		return nil, fmt.Errorf("remove cart lines: %w", err)
	}
	if data.CartLinesRemove.Cart == nil {
		return nil, fmt.Errorf("remove cart lines: empty response")
	}
	return mapCart(data.CartLinesRemove.Cart), nil
}

func (c *shopifyClientImpl) GetCart(ctx context.Context, cartID string) (*model.Cart, error) {
	gql := `
	query getCart($cartId: ID!) {
	  cart(id: $cartId) {` + cartFields + `}
	}`

	var data struct {
		Cart *cartNode `json:"cart"`
	}
	if err := c.query(ctx, gql, map[string]any{"cartId": cartID}, &data); err != nil {
		return nil, fmt.Errorf("fetch cart: %w", err)
	}
	if data.Cart == nil {
		return nil, nil
	}
	return mapCart(data.Cart), nil
}
