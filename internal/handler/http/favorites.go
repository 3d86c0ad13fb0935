package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/storefront/internal/service"
	"github.com/utafrali/storefront/pkg/httputil"
	"github.com/utafrali/storefront/pkg/middleware"
)

type FavoritesHandler struct {
	service *service.FavoritesService
	logger  *slog.Logger
}

func NewFavoritesHandler(svc *service.FavoritesService, logger *slog.Logger) *FavoritesHandler {
	return &FavoritesHandler{
		service: svc,
		logger:  logger,
	}
}

// ListFavorites handles GET /api/v1/favorites
func (h *FavoritesHandler) ListFavorites(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.List(r.Context(), middleware.UserIDFromContext(r.Context()))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	resp := toFavoritesResponse(view, currencyFormat(r.Context()))
	httputil.WriteDataMeta(w, resp, &httputil.Meta{Count: len(resp.Products)})
}

// ToggleFavorite handles POST /api/v1/favorites/{productId}/toggle
func (h *FavoritesHandler) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productId")
	view, favorited, err := h.service.Toggle(r.Context(), middleware.UserIDFromContext(r.Context()), productID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, toggleFavoriteResponse{
		ProductID:         productID,
		Favorited:         favorited,
		favoritesResponse: toFavoritesResponse(view, currencyFormat(r.Context())),
	})
}

// RemoveFavorite handles DELETE /api/v1/favorites/{productId}
func (h *FavoritesHandler) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.Remove(r.Context(), middleware.UserIDFromContext(r.Context()), chi.URLParam(r, "productId"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, toFavoritesResponse(view, currencyFormat(r.Context())))
}
