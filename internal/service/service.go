package service

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/store"
)

// StateStore is the persisted state the services read and dispatch to.
// *store.Container implements it.
type StateStore interface {
	Cart(ctx context.Context, userID string) (store.CartState, error)
	DispatchCart(ctx context.Context, userID string, a store.CartAction) (store.CartState, error)

	Favorites(ctx context.Context, userID string) (store.FavoritesState, error)
	DispatchFavorites(ctx context.Context, userID string, a store.FavoritesAction) (store.FavoritesState, error)

	Products(ctx context.Context) (store.ProductsState, bool, error)
	DispatchProducts(ctx context.Context, a store.ProductsAction) (store.ProductsState, error)

	CachedProduct(ctx context.Context, id string) (domain.Product, bool, error)
	CacheProduct(ctx context.Context, p domain.Product) error
}

var _ StateStore = (*store.Container)(nil)

var (
	// CatalogFallbacks counts reads served from cached state because the
	// remote catalog failed.
	CatalogFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_catalog_fallbacks_total",
			Help: "Total number of catalog reads served from cached state",
		},
		[]string{"operation"},
	)

	CatalogRefreshes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_catalog_refreshes_total",
			Help: "Total number of catalog refresh attempts by result",
		},
		[]string{"result"},
	)

	PromoApplications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_promo_applications_total",
			Help: "Total number of promo code evaluations by status",
		},
		[]string{"status"},
	)
)
