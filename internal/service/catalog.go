package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/utafrali/storefront/internal/catalog"
	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/store"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// ShareScheme is the deep-link scheme the mobile app registers.
const ShareScheme = "myshop"

// defaultFetchTimeout bounds a shared catalog fetch, which outlives the
// request that started it.
const defaultFetchTimeout = 30 * time.Second

// ProductListing is one page of the filtered catalog.
type ProductListing struct {
	Products   []domain.Product
	Categories []string
	// Total is the catalog size before filtering.
	Total       int
	Stale       bool
	LastFetched time.Time
	// Empty is set when no product matched. Narrowed is set when the
	// criteria excluded at least one product.
	Empty    bool
	Narrowed bool
}

type ProductDetail struct {
	Product domain.Product
	Stale   bool
}

type ShareLink struct {
	URL     string
	Message string
}

// catalogSnapshot is the full catalog as last seen by this service.
type catalogSnapshot struct {
	products    []domain.Product
	stale       bool
	lastFetched time.Time
}

// CatalogService reads the remote catalog and falls back to cached state
// when it is unreachable.
type CatalogService struct {
	source catalog.Source
	state  StateStore
	logger *slog.Logger
	group  singleflight.Group
	now    func() time.Time

	fetchTimeout time.Duration
}

func NewCatalogService(source catalog.Source, state StateStore, logger *slog.Logger) *CatalogService {
	return &CatalogService{
		source: source,
		state:  state,
		logger: logger,
		now:    time.Now,

		fetchTimeout: defaultFetchTimeout,
	}
}

// ListProducts returns the products matching criteria.
func (s *CatalogService) ListProducts(ctx context.Context, criteria domain.FilterCriteria) (*ProductListing, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	filtered := domain.FilterProducts(snap.products, criteria)
	return &ProductListing{
		Products:    filtered,
		Categories:  domain.Categories(snap.products),
		Total:       len(snap.products),
		Stale:       snap.stale,
		LastFetched: snap.lastFetched,
		Empty:       len(filtered) == 0,
		Narrowed:    len(filtered) < len(snap.products),
	}, nil
}

// Categories returns the category chips for the current catalog.
func (s *CatalogService) Categories(ctx context.Context) ([]string, bool, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, false, err
	}
	return domain.Categories(snap.products), snap.stale, nil
}

// GetProduct returns one product. When the catalog is unreachable the
// per-product cache is tried first, then the cached catalog.
func (s *CatalogService) GetProduct(ctx context.Context, id string) (*ProductDetail, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperrors.InvalidInput("product id is required")
	}

	p, err := s.source.FetchProductByID(ctx, id)
	if err == nil {
		if cerr := s.state.CacheProduct(ctx, *p); cerr != nil {
			s.logger.WarnContext(ctx, "failed to cache product",
				slog.String("product_id", id),
				slog.String("error", cerr.Error()),
			)
		}
		return &ProductDetail{Product: *p}, nil
	}
	if errors.Is(err, apperrors.ErrNotFound) || ctx.Err() != nil {
		return nil, err
	}

	s.logger.WarnContext(ctx, "catalog unavailable, serving cached product",
		slog.String("product_id", id),
		slog.String("error", err.Error()),
	)

	if cached, found, cerr := s.state.CachedProduct(ctx, id); cerr == nil && found {
		CatalogFallbacks.WithLabelValues("get_product").Inc()
		return &ProductDetail{Product: cached, Stale: true}, nil
	}
	if products, found, cerr := s.state.Products(ctx); cerr == nil && found {
		if cached, ok := store.SelectCachedProduct(products, id); ok {
			CatalogFallbacks.WithLabelValues("get_product").Inc()
			return &ProductDetail{Product: cached, Stale: true}, nil
		}
	}

	return nil, apperrors.ServiceUnavailable("catalog is unreachable and the product is not cached", err)
}

// ShareLink builds the deep link and share text for a product.
func (s *CatalogService) ShareLink(ctx context.Context, id string) (*ShareLink, error) {
	detail, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	url := fmt.Sprintf("%s://product/%s", ShareScheme, detail.Product.ID)
	return &ShareLink{
		URL:     url,
		Message: fmt.Sprintf("I found this product, please check it out:\n\n%s\n%s", detail.Product.Title, url),
	}, nil
}

// RefreshCatalog fetches the catalog and replaces the cached copy. It
// returns the number of products fetched. An empty remote catalog leaves
// the cache untouched.
func (s *CatalogService) RefreshCatalog(ctx context.Context) (int, error) {
	products, err := s.fetch(ctx)
	if err != nil {
		CatalogRefreshes.WithLabelValues("error").Inc()
		return 0, err
	}
	if len(products) == 0 {
		CatalogRefreshes.WithLabelValues("empty").Inc()
		s.logger.WarnContext(ctx, "catalog returned no products, keeping cached catalog")
		return 0, nil
	}
	CatalogRefreshes.WithLabelValues("ok").Inc()
	return len(products), nil
}

// snapshot returns the remote catalog, or the cached one when the remote
// fails. Concurrent callers share a single fetch.
func (s *CatalogService) snapshot(ctx context.Context) (*catalogSnapshot, error) {
	products, fetchErr := s.fetch(ctx)
	if fetchErr == nil && len(products) > 0 {
		return &catalogSnapshot{products: products, lastFetched: s.now().UTC()}, nil
	}
	if fetchErr != nil && ctx.Err() != nil {
		return nil, ctx.Err()
	}

	cached, found, err := s.state.Products(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to load cached catalog", slog.String("error", err.Error()))
	}

	if fetchErr == nil {
		// Remote is up but empty; prefer what we had.
		if found {
			return &catalogSnapshot{products: cached.Items, lastFetched: cached.LastFetched}, nil
		}
		return &catalogSnapshot{products: []domain.Product{}, lastFetched: s.now().UTC()}, nil
	}

	s.logger.WarnContext(ctx, "catalog unavailable, serving cached products",
		slog.String("error", fetchErr.Error()),
		slog.Bool("cache_found", found),
	)
	if !found {
		return nil, apperrors.ServiceUnavailable("catalog is unreachable and no cached products exist", fetchErr)
	}
	CatalogFallbacks.WithLabelValues("list_products").Inc()
	return &catalogSnapshot{products: cached.Items, stale: true, lastFetched: cached.LastFetched}, nil
}

// fetch loads the remote catalog and stores a non-empty result. Concurrent
// callers share one fetch that runs detached from any single caller, so a
// cancelled request does not fail the others waiting on it.
func (s *CatalogService) fetch(ctx context.Context) ([]domain.Product, error) {
	ch := s.group.DoChan("products", func() (any, error) {
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.fetchTimeout)
		defer cancel()

		products, err := s.source.FetchProducts(fctx)
		if err != nil {
			return nil, err
		}
		if len(products) > 0 {
			if _, err := s.state.DispatchProducts(fctx, store.SetProducts{Items: products, FetchedAt: s.now()}); err != nil {
				s.logger.WarnContext(fctx, "failed to cache catalog", slog.String("error", err.Error()))
			}
		}
		return products, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]domain.Product), nil
	}
}
