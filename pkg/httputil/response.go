package httputil

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/logger"
	"github.com/utafrali/storefront/pkg/pagination"
	"github.com/utafrali/storefront/pkg/validator"
)

// Response is the JSON envelope returned by every storefront endpoint.
type Response struct {
	Data  any            `json:"data,omitempty"`
	Meta  *Meta          `json:"meta,omitempty"`
	Error *ErrorResponse `json:"error,omitempty"`
}

// Meta carries response-level annotations that are not part of the payload.
type Meta struct {
	Count      int              `json:"count"`
	Stale      bool             `json:"stale"`
	Offline    bool             `json:"offline"`
	Locale     string           `json:"locale,omitempty"`
	Pagination *pagination.Info `json:"pagination,omitempty"`
}

// ErrorResponse represents an error in the standard response format.
type ErrorResponse struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Fields    map[string]string `json:"fields,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Headers are already sent; nothing meaningful can be done if encoding fails.
	_ = json.NewEncoder(w).Encode(v)
}

// WriteData writes a 200 response with data in the envelope.
func WriteData(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusOK, Response{Data: data})
}

// WriteDataMeta writes a 200 response with data and meta in the envelope.
func WriteDataMeta(w http.ResponseWriter, data any, meta *Meta) {
	WriteJSON(w, http.StatusOK, Response{Data: data, Meta: meta})
}

// WriteError writes a standardized error response. AppErrors keep their code
// and status; anything else is mapped by sentinel. 5xx responses are logged
// with the request-scoped logger when one is present.
func WriteError(w http.ResponseWriter, r *http.Request, err error, fallback *slog.Logger) {
	l := logger.FromContext(r.Context())
	if l == slog.Default() && fallback != nil {
		l = fallback
	}
	requestID := logger.CorrelationIDFromContext(r.Context())

	status := apperrors.HTTPStatus(err)
	internal := apperrors.Internal(err)
	body := &ErrorResponse{Code: internal.Code, Message: internal.Message, RequestID: requestID}

	var appErr *apperrors.AppError
	switch {
	case errors.As(err, &appErr):
		body.Code, body.Message = appErr.Code, appErr.Message
	case errors.Is(err, apperrors.ErrNotFound):
		body.Code, body.Message = "NOT_FOUND", "resource not found"
	case errors.Is(err, apperrors.ErrInvalidInput):
		body.Code, body.Message = "INVALID_INPUT", err.Error()
	case errors.Is(err, apperrors.ErrServiceUnavail):
		body.Code, body.Message = "SERVICE_UNAVAILABLE", "service temporarily unavailable"
	}

	if status >= http.StatusInternalServerError {
		l.ErrorContext(r.Context(), "request failed",
			slog.String("error", err.Error()),
			slog.Int("status", status),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
		)
	}

	WriteJSON(w, status, Response{Error: body})
}

// WriteValidationError writes a 400 with field-level details when err is a
// validator.ValidationError.
func WriteValidationError(w http.ResponseWriter, err error) {
	var valErr *validator.ValidationError
	if errors.As(err, &valErr) {
		WriteJSON(w, http.StatusBadRequest, Response{
			Error: &ErrorResponse{
				Code:    "VALIDATION_ERROR",
				Message: "request validation failed",
				Fields:  valErr.Fields(),
			},
		})
		return
	}

	WriteJSON(w, http.StatusBadRequest, Response{
		Error: &ErrorResponse{Code: "INVALID_INPUT", Message: err.Error()},
	})
}
