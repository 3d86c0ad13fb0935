package httpclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// upstreamErrorBody covers the two error shapes seen from upstreams: the
// enveloped {"error":{"code","message"}} form and a flat {"message"} form.
type upstreamErrorBody struct {
	Message string `json:"message"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// ParseResponseError reads the body of a non-2xx response and translates it
// into an AppError. The body is consumed and closed.
func ParseResponseError(resp *http.Response, upstream string) error {
	defer func() { _ = resp.Body.Close() }()

	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return apperrors.ServiceUnavailable(
			fmt.Sprintf("%s returned status %d", upstream, resp.StatusCode),
			fmt.Errorf("read body: %w", err),
		)
	}

	code, message := "", strings.TrimSpace(string(bodyBytes))
	var parsed upstreamErrorBody
	if json.Unmarshal(bodyBytes, &parsed) == nil {
		switch {
		case parsed.Error != nil:
			code, message = parsed.Error.Code, parsed.Error.Message
		case parsed.Message != "":
			message = parsed.Message
		}
	}
	if message == "" {
		message = http.StatusText(resp.StatusCode)
	}

	return mapUpstreamError(resp.StatusCode, code, message, upstream)
}

func mapUpstreamError(status int, code, message, upstream string) error {
	qualified := fmt.Sprintf("%s: %s", upstream, message)

	switch {
	case status == http.StatusNotFound:
		return &apperrors.AppError{
			Code:    "NOT_FOUND",
			Message: qualified,
			Status:  http.StatusNotFound,
			Err:     apperrors.ErrNotFound,
		}
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return apperrors.Unauthorized(qualified)
	case status == http.StatusConflict:
		return apperrors.Conflict(qualified)
	case status == http.StatusTooManyRequests, status >= 500:
		cause := fmt.Errorf("status %d", status)
		if code != "" {
			cause = fmt.Errorf("status %d/%s", status, code)
		}
		return apperrors.ServiceUnavailable(qualified, cause)
	case IsClientError(status):
		return apperrors.InvalidInput(qualified)
	default:
		return fmt.Errorf("%s returned unexpected status %d: %s", upstream, status, message)
	}
}

// IsClientError reports whether status is a 4xx code.
func IsClientError(status int) bool {
	return status >= 400 && status < 500
}
