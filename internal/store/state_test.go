package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/storefront/internal/domain"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

func product(id string, price float64) domain.Product {
	return domain.Product{ID: id, Title: "Product " + id, Price: price}
}

// ============================================================================
// Cart reducer
// ============================================================================

func TestReduceCart_Sequence(t *testing.T) {
	s := CartState{}

	s = ReduceCart(s, AddToCart{Product: product("p1", 10)})
	s = ReduceCart(s, AddToCart{Product: product("p2", 5)})
	s = ReduceCart(s, AddToCart{Product: product("p1", 10)})
	require.Len(t, s.Items, 2)
	assert.Equal(t, 2, s.Items[0].Quantity)

	s = ReduceCart(s, UpdateQuantity{ProductID: "p2", Quantity: 4})
	assert.Equal(t, 4, s.Items[1].Quantity)

	s = ReduceCart(s, UpdateQuantity{ProductID: "p2", Quantity: 0})
	assert.Equal(t, 4, s.Items[1].Quantity)

	s = ReduceCart(s, RemoveFromCart{ProductID: "p1"})
	require.Len(t, s.Items, 1)
	assert.Equal(t, "p2", s.Items[0].Product.ID)

	s = ReduceCart(s, ClearCart{})
	assert.NotNil(t, s.Items)
	assert.Empty(t, s.Items)
}

func TestReduceCart_AddWithQuantity(t *testing.T) {
	s := ReduceCart(CartState{}, AddToCart{Product: product("p1", 10), Quantity: 3})
	assert.Equal(t, 3, s.Items[0].Quantity)

	s = ReduceCart(s, AddToCart{Product: product("p1", 10), Quantity: 2})
	assert.Equal(t, 5, s.Items[0].Quantity)

	s = ReduceCart(s, AddToCart{Product: product("p1", 10), Quantity: -7})
	assert.Equal(t, 6, s.Items[0].Quantity)
}

func TestReduceCart_NilAction(t *testing.T) {
	s := CartState{Items: []domain.CartLineItem{{Product: product("p1", 1), Quantity: 1}}}
	assert.Equal(t, s, ReduceCart(s, nil))
}

func TestReduceCart_DoesNotMutatePrevious(t *testing.T) {
	prev := ReduceCart(CartState{}, AddToCart{Product: product("p1", 10)})
	_ = ReduceCart(prev, AddToCart{Product: product("p1", 10)})
	assert.Equal(t, 1, prev.Items[0].Quantity)
}

func TestAddToCart_CheckLimit(t *testing.T) {
	s := ReduceCart(CartState{}, AddToCart{Product: product("p1", 10), Quantity: 98})

	assert.NoError(t, AddToCart{Product: product("p1", 10), Quantity: 2, Limit: 100}.checkCart(s))
	assert.ErrorIs(t, AddToCart{Product: product("p1", 10), Quantity: 3, Limit: 100}.checkCart(s), apperrors.ErrInvalidInput)
	assert.NoError(t, AddToCart{Product: product("p2", 10), Quantity: 100, Limit: 100}.checkCart(s))
	assert.NoError(t, AddToCart{Product: product("p1", 10), Quantity: 50}.checkCart(s))
}

// ============================================================================
// Favorites reducer
// ============================================================================

func TestReduceFavorites_Toggle(t *testing.T) {
	s := ReduceFavorites(FavoritesState{}, ToggleFavorite{ProductID: "1"})
	s = ReduceFavorites(s, ToggleFavorite{ProductID: "2"})
	assert.Equal(t, []string{"1", "2"}, s.IDs)

	s = ReduceFavorites(s, ToggleFavorite{ProductID: "1"})
	assert.Equal(t, []string{"2"}, s.IDs)
}

func TestReduceFavorites_Remove(t *testing.T) {
	prev := FavoritesState{IDs: []string{"1", "2", "3"}}
	next := ReduceFavorites(prev, RemoveFavorite{ProductID: "2"})

	assert.Equal(t, []string{"1", "3"}, next.IDs)
	assert.Equal(t, []string{"1", "2", "3"}, prev.IDs)
	assert.Equal(t, next, ReduceFavorites(next, RemoveFavorite{ProductID: "missing"}))
}

// ============================================================================
// Products reducer
// ============================================================================

func TestReduceProducts_ReplacesWholesale(t *testing.T) {
	at := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	s := ReduceProducts(ProductsState{Items: []domain.Product{product("old", 1)}},
		SetProducts{Items: []domain.Product{product("a", 1), product("b", 2)}, FetchedAt: at})

	assert.Len(t, s.Items, 2)
	assert.Equal(t, at, s.LastFetched)
}

// ============================================================================
// Selectors
// ============================================================================

func TestSelectors(t *testing.T) {
	cart := CartState{Items: []domain.CartLineItem{
		{Product: product("p1", 10), Quantity: 2},
		{Product: product("p2", 5), Quantity: 3},
	}}
	assert.Equal(t, 5, SelectCartCount(cart))
	assert.Len(t, SelectCartItems(cart), 2)
	assert.NotNil(t, SelectCartItems(CartState{}))

	favs := FavoritesState{IDs: []string{"c", "a"}}
	assert.True(t, SelectIsFavorite(favs, "a"))
	assert.False(t, SelectIsFavorite(favs, "b"))

	products := ProductsState{Items: []domain.Product{product("a", 1), product("b", 2), product("c", 3)}}
	got := SelectFavoriteProducts(favs, products)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, "c", got[1].ID)

	p, ok := SelectCachedProduct(products, "b")
	assert.True(t, ok)
	assert.Equal(t, 2.0, p.Price)
}
