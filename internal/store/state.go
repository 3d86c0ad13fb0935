// Package store holds the persisted client state slices (cart, favorites,
// cached catalog), their reducers and selectors, and a Container that loads
// and saves each slice through a repository.KVStore.
package store

import (
	"fmt"
	"slices"
	"time"

	"github.com/utafrali/storefront/internal/domain"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// ============================================================================
// Slices
// ============================================================================

type CartState struct {
	Items []domain.CartLineItem `json:"items"`
}

type FavoritesState struct {
	IDs []string `json:"ids"`
}

// ProductsState is the last successfully fetched catalog.
type ProductsState struct {
	Items       []domain.Product `json:"items"`
	LastFetched time.Time        `json:"last_fetched"`
}

// ============================================================================
// Cart reducer
// ============================================================================

// CartAction transforms a CartState. Implementations are pure.
type CartAction interface {
	reduceCart(CartState) CartState
}

// cartChecker is implemented by actions that can refuse the current state.
// DispatchCart runs it under the key lock before reducing.
type cartChecker interface {
	checkCart(CartState) error
}

// AddToCart adds Quantity units of Product; a Quantity below one adds one.
// A positive Limit caps the resulting line quantity.
type AddToCart struct {
	Product  domain.Product
	Quantity int
	Limit    int
}

type UpdateQuantity struct {
	ProductID string
	Quantity  int
}

type RemoveFromCart struct {
	ProductID string
}

type ClearCart struct{}

func (a AddToCart) reduceCart(s CartState) CartState {
	items := domain.AddToCart(s.Items, a.Product)
	if a.Quantity > 1 {
		idx := domain.FindLineItem(items, a.Product.ID)
		items = domain.SetQuantity(items, a.Product.ID, items[idx].Quantity+a.Quantity-1)
	}
	return CartState{Items: items}
}

func (a AddToCart) checkCart(s CartState) error {
	if a.Limit <= 0 {
		return nil
	}
	current := 0
	if idx := domain.FindLineItem(s.Items, a.Product.ID); idx >= 0 {
		current = s.Items[idx].Quantity
	}
	if current+max(a.Quantity, 1) > a.Limit {
		return apperrors.InvalidInput(fmt.Sprintf("combined quantity must not exceed %d", a.Limit))
	}
	return nil
}

func (a UpdateQuantity) reduceCart(s CartState) CartState {
	return CartState{Items: domain.SetQuantity(s.Items, a.ProductID, a.Quantity)}
}

func (a RemoveFromCart) reduceCart(s CartState) CartState {
	return CartState{Items: domain.RemoveFromCart(s.Items, a.ProductID)}
}

func (ClearCart) reduceCart(CartState) CartState {
	return CartState{Items: domain.ClearCart()}
}

// ReduceCart applies a to s. A nil action returns s unchanged.
func ReduceCart(s CartState, a CartAction) CartState {
	if a == nil {
		return s
	}
	return a.reduceCart(s)
}

// ============================================================================
// Favorites reducer
// ============================================================================

type FavoritesAction interface {
	reduceFavorites(FavoritesState) FavoritesState
}

// ToggleFavorite adds ProductID when absent and removes it when present.
type ToggleFavorite struct {
	ProductID string
}

type RemoveFavorite struct {
	ProductID string
}

func (a ToggleFavorite) reduceFavorites(s FavoritesState) FavoritesState {
	if slices.Contains(s.IDs, a.ProductID) {
		return RemoveFavorite(a).reduceFavorites(s)
	}
	ids := make([]string, 0, len(s.IDs)+1)
	ids = append(ids, s.IDs...)
	return FavoritesState{IDs: append(ids, a.ProductID)}
}

func (a RemoveFavorite) reduceFavorites(s FavoritesState) FavoritesState {
	ids := make([]string, 0, len(s.IDs))
	for _, id := range s.IDs {
		if id != a.ProductID {
			ids = append(ids, id)
		}
	}
	return FavoritesState{IDs: ids}
}

func ReduceFavorites(s FavoritesState, a FavoritesAction) FavoritesState {
	if a == nil {
		return s
	}
	return a.reduceFavorites(s)
}

// ============================================================================
// Products reducer
// ============================================================================

type ProductsAction interface {
	reduceProducts(ProductsState) ProductsState
}

// SetProducts replaces the cached catalog wholesale.
type SetProducts struct {
	Items     []domain.Product
	FetchedAt time.Time
}

func (a SetProducts) reduceProducts(ProductsState) ProductsState {
	return ProductsState{Items: slices.Clone(a.Items), LastFetched: a.FetchedAt.UTC()}
}

func ReduceProducts(s ProductsState, a ProductsAction) ProductsState {
	if a == nil {
		return s
	}
	return a.reduceProducts(s)
}

// ============================================================================
// Selectors
// ============================================================================

func SelectCartItems(s CartState) []domain.CartLineItem {
	if s.Items == nil {
		return []domain.CartLineItem{}
	}
	return slices.Clone(s.Items)
}

func SelectCartCount(s CartState) int {
	return domain.ItemCount(s.Items)
}

func SelectIsFavorite(s FavoritesState, productID string) bool {
	return slices.Contains(s.IDs, productID)
}

// SelectFavoriteProducts returns the cached products that are favorited, in
// catalog order.
func SelectFavoriteProducts(favorites FavoritesState, products ProductsState) []domain.Product {
	out := make([]domain.Product, 0, len(favorites.IDs))
	for _, p := range products.Items {
		if SelectIsFavorite(favorites, p.ID) {
			out = append(out, p)
		}
	}
	return out
}

func SelectCachedProduct(s ProductsState, id string) (domain.Product, bool) {
	return domain.FindProduct(s.Items, id)
}
