package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/storefront/internal/service"
	"github.com/utafrali/storefront/pkg/httputil"
	"github.com/utafrali/storefront/pkg/middleware"
	"github.com/utafrali/storefront/pkg/validator"
)

// CartHandler handles HTTP requests for cart endpoints.
type CartHandler struct {
	service *service.CartService
	logger  *slog.Logger
}

// NewCartHandler creates a new cart HTTP handler.
func NewCartHandler(svc *service.CartService, logger *slog.Logger) *CartHandler {
	return &CartHandler{
		service: svc,
		logger:  logger,
	}
}

// GetCart handles GET /api/v1/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.GetCart(r.Context(), middleware.UserIDFromContext(r.Context()), r.URL.Query().Get("promo"))
	h.respond(w, r, view, err)
}

// AddItem handles POST /api/v1/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	view, err := h.service.AddItem(r.Context(), middleware.UserIDFromContext(r.Context()), req.ProductID, req.Quantity, r.URL.Query().Get("promo"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: toCartResponse(view, currencyFormat(r.Context()))})
}

// UpdateItemQuantity handles PUT /api/v1/cart/items/{productId}
func (h *CartHandler) UpdateItemQuantity(w http.ResponseWriter, r *http.Request) {
	var req UpdateQuantityRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	view, err := h.service.SetQuantity(r.Context(), middleware.UserIDFromContext(r.Context()),
		chi.URLParam(r, "productId"), req.Quantity, r.URL.Query().Get("promo"))
	h.respond(w, r, view, err)
}

// RemoveItem handles DELETE /api/v1/cart/items/{productId}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.RemoveItem(r.Context(), middleware.UserIDFromContext(r.Context()),
		chi.URLParam(r, "productId"), r.URL.Query().Get("promo"))
	h.respond(w, r, view, err)
}

// ClearCart handles DELETE /api/v1/cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.ClearCart(r.Context(), middleware.UserIDFromContext(r.Context()))
	h.respond(w, r, view, err)
}

// ApplyPromo handles POST /api/v1/cart/promo. An unknown code is answered
// with 200 and promo_status "invalid".
func (h *CartHandler) ApplyPromo(w http.ResponseWriter, r *http.Request) {
	var req ApplyPromoRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	view, err := h.service.ApplyPromo(r.Context(), middleware.UserIDFromContext(r.Context()), req.Code)
	h.respond(w, r, view, err)
}

func (h *CartHandler) respond(w http.ResponseWriter, r *http.Request, view *service.CartView, err error) {
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, toCartResponse(view, currencyFormat(r.Context())))
}

// decodeRequest decodes and validates a JSON body, writing the 400 itself
// on failure.
func decodeRequest(w http.ResponseWriter, r *http.Request, dst any) bool {
	err := validator.DecodeAndValidate(r, dst)
	if err == nil {
		return true
	}
	var valErr *validator.ValidationError
	if errors.As(err, &valErr) {
		httputil.WriteValidationError(w, err)
		return false
	}
	httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
		Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
	})
	return false
}
