package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/event"
	"github.com/utafrali/storefront/internal/store"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// MaxQuantityPerItem caps the quantity of a single line item.
const MaxQuantityPerItem = 100

// PromoStatus tells the client how the submitted promo code was treated.
type PromoStatus string

const (
	PromoNone    PromoStatus = "none"
	PromoApplied PromoStatus = "applied"
	PromoInvalid PromoStatus = "invalid"
)

// CartView is a priced cart.
type CartView struct {
	Items       []domain.CartLineItem
	ItemCount   int
	Promo       domain.PromoState
	PromoStatus PromoStatus
	// PromoInput is the code as the client sent it, normalized.
	PromoInput string
	Totals     domain.Totals
}

// ProductLookup resolves a product id to its current catalog data.
type ProductLookup interface {
	GetProduct(ctx context.Context, id string) (*ProductDetail, error)
}

// CartService implements the business logic for cart operations. Promo
// codes are never persisted; callers pass the code with each read.
type CartService struct {
	state    StateStore
	products ProductLookup
	producer *event.Producer
	logger   *slog.Logger
}

func NewCartService(state StateStore, products ProductLookup, producer *event.Producer, logger *slog.Logger) *CartService {
	return &CartService{
		state:    state,
		products: products,
		producer: producer,
		logger:   logger,
	}
}

// GetCart prices the user's cart with the given promo code.
func (s *CartService) GetCart(ctx context.Context, userID, promoCode string) (*CartView, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}

	cart, err := s.state.Cart(ctx, userID)
	if err != nil {
		return nil, apperrors.Wrap(err, "get cart")
	}
	return s.view(ctx, cart, promoCode), nil
}

// ApplyPromo prices the cart with code. An unknown code is not an error;
// the view reports PromoInvalid and no discount.
func (s *CartService) ApplyPromo(ctx context.Context, userID, code string) (*CartView, error) {
	if strings.TrimSpace(code) == "" {
		return nil, apperrors.InvalidInput("promo code is required")
	}
	return s.GetCart(ctx, userID, code)
}

// AddItem adds quantity units of productID, looking the product up in the
// catalog. Quantities below one add a single unit.
func (s *CartService) AddItem(ctx context.Context, userID, productID string, quantity int, promoCode string) (*CartView, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(productID) == "" {
		return nil, apperrors.InvalidInput("product id is required")
	}
	if quantity > MaxQuantityPerItem {
		return nil, apperrors.InvalidInput(fmt.Sprintf("quantity must not exceed %d", MaxQuantityPerItem))
	}

	detail, err := s.products.GetProduct(ctx, productID)
	if err != nil {
		return nil, apperrors.Wrap(err, "look up product")
	}

	cart, err := s.state.DispatchCart(ctx, userID, store.AddToCart{
		Product:  detail.Product,
		Quantity: quantity,
		Limit:    MaxQuantityPerItem,
	})
	if err != nil {
		return nil, apperrors.Wrap(err, "add item")
	}

	s.logger.InfoContext(ctx, "item added to cart",
		slog.String("user_id", userID),
		slog.String("product_id", detail.Product.ID),
		slog.Int("quantity", max(quantity, 1)),
	)
	s.publishUpdated(ctx, userID, cart)
	return s.view(ctx, cart, promoCode), nil
}

// SetQuantity sets the quantity of a line item. Quantities below one and
// products not in the cart leave the cart unchanged.
func (s *CartService) SetQuantity(ctx context.Context, userID, productID string, quantity int, promoCode string) (*CartView, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if quantity > MaxQuantityPerItem {
		return nil, apperrors.InvalidInput(fmt.Sprintf("quantity must not exceed %d", MaxQuantityPerItem))
	}

	before, err := s.state.Cart(ctx, userID)
	if err != nil {
		return nil, apperrors.Wrap(err, "get cart")
	}
	if quantity < 1 || domain.FindLineItem(before.Items, productID) < 0 {
		return s.view(ctx, before, promoCode), nil
	}

	cart, err := s.state.DispatchCart(ctx, userID, store.UpdateQuantity{ProductID: productID, Quantity: quantity})
	if err != nil {
		return nil, apperrors.Wrap(err, "update quantity")
	}

	s.publishUpdated(ctx, userID, cart)
	return s.view(ctx, cart, promoCode), nil
}

// RemoveItem drops a line item. Removing an absent product is a no-op.
func (s *CartService) RemoveItem(ctx context.Context, userID, productID, promoCode string) (*CartView, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}

	cart, err := s.state.DispatchCart(ctx, userID, store.RemoveFromCart{ProductID: productID})
	if err != nil {
		return nil, apperrors.Wrap(err, "remove item")
	}

	s.logger.InfoContext(ctx, "item removed from cart",
		slog.String("user_id", userID),
		slog.String("product_id", productID),
	)
	s.publishUpdated(ctx, userID, cart)
	return s.view(ctx, cart, promoCode), nil
}

func (s *CartService) ClearCart(ctx context.Context, userID string) (*CartView, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}

	cart, err := s.state.DispatchCart(ctx, userID, store.ClearCart{})
	if err != nil {
		return nil, apperrors.Wrap(err, "clear cart")
	}

	s.logger.InfoContext(ctx, "cart cleared", slog.String("user_id", userID))
	if err := s.producer.PublishCartCleared(ctx, userID); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish cart.cleared event",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
	}
	return s.view(ctx, cart, ""), nil
}

func (s *CartService) view(ctx context.Context, cart store.CartState, promoCode string) *CartView {
	v := &CartView{
		Items:       store.SelectCartItems(cart),
		ItemCount:   store.SelectCartCount(cart),
		PromoStatus: PromoNone,
		PromoInput:  domain.NormalizePromoCode(promoCode),
	}

	promo, err := domain.ResolvePromo(promoCode)
	switch {
	case errors.Is(err, domain.ErrInvalidPromoCode):
		v.PromoStatus = PromoInvalid
		s.logger.DebugContext(ctx, "promo code rejected", slog.String("code", v.PromoInput))
	case promo.Code != "":
		v.Promo = promo
		v.PromoStatus = PromoApplied
	}
	if v.PromoStatus != PromoNone {
		PromoApplications.WithLabelValues(string(v.PromoStatus)).Inc()
	}

	v.Totals = domain.ComputeTotals(v.Items, v.Promo)
	return v
}

func (s *CartService) publishUpdated(ctx context.Context, userID string, cart store.CartState) {
	if err := s.producer.PublishCartUpdated(ctx, userID, cart.Items); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish cart.updated event",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
	}
}

func requireUser(userID string) error {
	if strings.TrimSpace(userID) == "" {
		return apperrors.InvalidInput("user id is required")
	}
	return nil
}
