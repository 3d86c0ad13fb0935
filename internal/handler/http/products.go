package http

import (
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/service"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/httputil"
	"github.com/utafrali/storefront/pkg/middleware"
	"github.com/utafrali/storefront/pkg/pagination"
	"github.com/utafrali/storefront/pkg/validator"
)

const maxSearchQueryLen = 200

// ProductHandler handles HTTP requests for catalog endpoints.
type ProductHandler struct {
	service *service.CatalogService
	logger  *slog.Logger
}

func NewProductHandler(svc *service.CatalogService, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{
		service: svc,
		logger:  logger,
	}
}

// ListProducts handles GET /api/v1/products
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	criteria, err := parseCriteria(r)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	listing, err := h.service.ListProducts(r.Context(), criteria)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	if listing.Stale {
		middleware.MarkStale(w)
	}
	products := listing.Products
	meta := &httputil.Meta{
		Stale:   listing.Stale,
		Offline: listing.Stale,
		Locale:  middleware.LocaleFromContext(r.Context()),
	}
	if p, ok := pagination.FromQuery(r.URL.Query()); ok {
		var info pagination.Info
		products, info = pagination.Apply(products, p)
		meta.Pagination = &info
	}
	meta.Count = len(products)

	resp := productListResponse{
		Products:   toProductResponses(products, currencyFormat(r.Context())),
		Categories: listing.Categories,
		Total:      listing.Total,
		Empty:      listing.Empty,
		Narrowed:   listing.Narrowed,
	}
	if !listing.LastFetched.IsZero() {
		resp.LastFetched = &listing.LastFetched
	}

	httputil.WriteDataMeta(w, resp, meta)
}

// ListCategories handles GET /api/v1/products/categories
func (h *ProductHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, stale, err := h.service.Categories(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	if stale {
		middleware.MarkStale(w)
	}
	httputil.WriteDataMeta(w, categories, &httputil.Meta{Count: len(categories), Stale: stale, Offline: stale})
}

// GetProduct handles GET /api/v1/products/{id}
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	detail, err := h.service.GetProduct(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	if detail.Stale {
		middleware.MarkStale(w)
	}
	httputil.WriteDataMeta(w, toProductResponse(detail.Product, currencyFormat(r.Context())), &httputil.Meta{
		Count:   1,
		Stale:   detail.Stale,
		Offline: detail.Stale,
		Locale:  middleware.LocaleFromContext(r.Context()),
	})
}

// ShareProduct handles GET /api/v1/products/{id}/share
func (h *ProductHandler) ShareProduct(w http.ResponseWriter, r *http.Request) {
	link, err := h.service.ShareLink(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, shareResponse{URL: link.URL, Message: link.Message})
}

// parseCriteria builds filter criteria from q, category, min_price and
// max_price. Absent price bounds are open-ended.
func parseCriteria(r *http.Request) (domain.FilterCriteria, error) {
	q := r.URL.Query()
	c := domain.FilterCriteria{
		SearchQuery: q.Get("q"),
		Category:    domain.CategoryAll,
		PriceRange:  domain.UnboundedPriceRange(),
	}

	if err := validator.Var(c.SearchQuery, "max="+strconv.Itoa(maxSearchQueryLen)); err != nil {
		return c, apperrors.InvalidInput("q must be at most " + strconv.Itoa(maxSearchQueryLen) + " characters")
	}
	if category := strings.TrimSpace(q.Get("category")); category != "" {
		c.Category = category
	}

	var err error
	if c.PriceRange.Min, err = parsePrice(q.Get("min_price"), c.PriceRange.Min); err != nil {
		return c, apperrors.InvalidInput("min_price must be a non-negative number")
	}
	if c.PriceRange.Max, err = parsePrice(q.Get("max_price"), c.PriceRange.Max); err != nil {
		return c, apperrors.InvalidInput("max_price must be a non-negative number")
	}
	return c, nil
}

func parsePrice(raw string, fallback float64) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0, apperrors.ErrInvalidInput
	}
	return v, nil
}
