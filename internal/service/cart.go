package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/shopspring/decimal"

	"tcg-nakama/internal/client"
	"tcg-nakama/internal/dto"
	"tcg-nakama/internal/mockdata"
	"tcg-nakama/internal/model"
)

const mockCartID = "mock-cart"

type CartService interface {
	Add(ctx context.Context, cartID, variantID string, quantity int) (*model.Cart, error)
	Update(ctx context.Context, cartID, lineID string, quantity int) (*model.Cart, error)
	Clear(ctx context.Context, cartID string) (*model.Cart, error)
	View(ctx context.Context, cartID string) (*dto.CartView, error)
	FallbackCheckoutURL() string
}

type cartServiceImpl struct {
	shopify  client.ShopifyClient
	storeURL string

	// Local cart used when running against the bundled catalog.
	mu       sync.Mutex
	mockCart *model.Cart
}

func NewCartService(shopify client.ShopifyClient, storeURL string) CartService {
	return &cartServiceImpl{
		shopify:  shopify,
		storeURL: storeURL,
	}
}

func (s *cartServiceImpl) FallbackCheckoutURL() string {
	return s.storeURL + "/cart"
}

func (s *cartServiceImpl) Add(ctx context.Context, cartID, variantID string, quantity int) (*model.Cart, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive")
	}

	if cartID == mockCartID || mockdata.IsMockID(variantID) || !s.shopify.Configured() {
		return s.mockAdd(variantID, quantity)
	}

	var (
		cart *model.Cart
		err  error
	)
	if cartID != "" {
		cart, err = s.shopify.AddToCart(ctx, cartID, variantID, quantity)
	} else {
		cart, err = s.shopify.CreateCart(ctx, variantID, quantity)
	}
	if err != nil {
		// Degrade to the hosted cart page instead of breaking the buy button.
		slog.Error("cart mutation failed, using fallback cart", slog.Any("error", err))
		return &model.Cart{
			ID:          "fallback-cart",
			CheckoutURL: s.FallbackCheckoutURL(),
		}, nil
	}
	return cart, nil
}

func (s *cartServiceImpl) Update(ctx context.Context, cartID, lineID string, quantity int) (*model.Cart, error) {
	if cartID == mockCartID {
		return s.mockUpdate(lineID, quantity), nil
	}
	cart, err := s.shopify.UpdateCartLine(ctx, cartID, lineID, quantity)
	if err != nil {
		return nil, fmt.Errorf("update cart: %w", err)
	}
	return cart, nil
}

func (s *cartServiceImpl) Clear(ctx context.Context, cartID string) (*model.Cart, error) {
	if cartID == mockCartID {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.mockCart = &model.Cart{ID: mockCartID, CheckoutURL: s.FallbackCheckoutURL()}
		return s.mockCart, nil
	}

	cart, err := s.shopify.GetCart(ctx, cartID)
	if err != nil {
		return nil, fmt.Errorf("fetch cart for clear: %w", err)
	}
	if cart == nil || len(cart.Lines) == 0 {
		return cart, nil
	}

	lineIDs := make([]string, len(cart.Lines))
	for i, line := range cart.Lines {
		lineIDs[i] = line.ID
	}

	cleared, err := s.shopify.RemoveCartLines(ctx, cartID, lineIDs)
	if err != nil {
		return nil, fmt.Errorf("clear cart: %w", err)
	}
	return cleared, nil
}

func (s *cartServiceImpl) View(ctx context.Context, cartID string) (*dto.CartView, error) {
	if cartID == "" {
		return emptyView(s.FallbackCheckoutURL()), nil
	}

	var (
		cart *model.Cart
		err  error
	)
	if cartID == mockCartID {
		s.mu.Lock()
		cart = s.mockCart
		s.mu.Unlock()
	} else {
		cart, err = s.shopify.GetCart(ctx, cartID)
		if err != nil {
			return nil, fmt.Errorf("fetch cart: %w", err)
		}
	}
	if cart == nil {
		return emptyView(s.FallbackCheckoutURL()), nil
	}

	return BuildCartView(cart), nil
}

// BuildCartView totals the cart. Total = Σ line price × quantity.
func BuildCartView(cart *model.Cart) *dto.CartView {
	view := &dto.CartView{
		Items:       cart.Lines,
		TotalPrice:  decimal.Zero,
		CartCount:   cart.TotalQuantity,
		CheckoutURL: cart.CheckoutURL,
	}
	for _, line := range cart.Lines {
		view.TotalPrice = view.TotalPrice.Add(line.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	return view
}

func emptyView(checkoutURL string) *dto.CartView {
	return &dto.CartView{
		Items:       []model.CartLine{},
		TotalPrice:  decimal.Zero,
		CheckoutURL: checkoutURL,
	}
}

// ---- bundled-catalog cart ----

func (s *cartServiceImpl) mockAdd(variantID string, quantity int) (*model.Cart, error) {
	products, err := mockdata.Products()
	if err != nil {
		return nil, err
	}

	var product *model.Product
	for i := range products {
		if products[i].VariantID == variantID || products[i].ID == variantID {
			product = &products[i]
			break
		}
	}
	if product == nil {
		return nil, fmt.Errorf("unknown product variant %q", variantID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.mockCart == nil {
		s.mockCart = &model.Cart{ID: mockCartID, CheckoutURL: s.FallbackCheckoutURL()}
	}

	found := false
	for i := range s.mockCart.Lines {
		if s.mockCart.Lines[i].VariantID == product.VariantID {
			s.mockCart.Lines[i].Quantity += quantity
			found = true
			break
		}
	}
	if !found {
		s.mockCart.Lines = append(s.mockCart.Lines, model.CartLine{
			ID:        "mock-line-" + product.SafeID,
			VariantID: product.VariantID,
			Title:     product.Title,
			Image:     product.Image,
			Set:       product.Set,
			Rarity:    product.Rarity,
			Price:     product.Price,
			Quantity:  quantity,
		})
	}
	s.recountMockLocked()
	return s.mockCart, nil
}

func (s *cartServiceImpl) mockUpdate(lineID string, quantity int) *model.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.mockCart == nil {
		s.mockCart = &model.Cart{ID: mockCartID, CheckoutURL: s.FallbackCheckoutURL()}
		return s.mockCart
	}

	for i := range s.mockCart.Lines {
		if s.mockCart.Lines[i].ID == lineID {
			if quantity <= 0 {
				s.mockCart.Lines = append(s.mockCart.Lines[:i], s.mockCart.Lines[i+1:]...)
			} else {
				s.mockCart.Lines[i].Quantity = quantity
			}
			break
		}
	}
	s.recountMockLocked()
	return s.mockCart
}

func (s *cartServiceImpl) recountMockLocked() {
	total := 0
	for _, line := range s.mockCart.Lines {
		total += line.Quantity
	}
	s.mockCart.TotalQuantity = total
}
