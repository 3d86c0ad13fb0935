package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ok(context.Context) error { return nil }

func serveReady(t *testing.T, h *Handler) (int, Response) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ReadinessHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

	var resp Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return rec.Code, resp
}

func TestLivenessHandler_AlwaysReturns200(t *testing.T) {
	h := NewHandler()
	h.Register("store", func(context.Context) error { return errors.New("down") })

	rec := httptest.NewRecorder()
	h.LivenessHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

func TestReadiness_AllHealthy(t *testing.T) {
	h := NewHandler()
	h.Register("store", ok)
	h.RegisterOptional("catalog", ok)

	code, resp := serveReady(t, h)

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, StatusUp, resp.Status)
	assert.Equal(t, StatusUp, resp.Checks["store"].Status)
	assert.True(t, resp.Checks["catalog"].Optional)
}

func TestReadiness_RequiredDown(t *testing.T) {
	h := NewHandler()
	h.Register("store", func(context.Context) error { return errors.New("connection refused") })
	h.RegisterOptional("catalog", ok)

	code, resp := serveReady(t, h)

	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, StatusDown, resp.Status)
	assert.Equal(t, "connection refused", resp.Checks["store"].Error)
}

func TestReadiness_OptionalDownIsDegraded(t *testing.T) {
	h := NewHandler()
	h.Register("store", ok)
	h.RegisterOptional("catalog", func(context.Context) error { return errors.New("timeout") })

	code, resp := serveReady(t, h)

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, StatusDegraded, resp.Status)
	assert.Equal(t, StatusDown, resp.Checks["catalog"].Status)
}

func TestReadiness_NoCheckers(t *testing.T) {
	code, resp := serveReady(t, NewHandler())
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, StatusUp, resp.Status)
	assert.Empty(t, resp.Checks)
}

func TestCheck_RunsConcurrentlyWithinTimeout(t *testing.T) {
	h := NewHandler()
	h.timeout = 200 * time.Millisecond
	slow := func(ctx context.Context) error {
		select {
		case <-time.After(100 * time.Millisecond):
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	h.Register("a", slow)
	h.Register("b", slow)
	h.Register("c", slow)

	start := time.Now()
	resp := h.Check(context.Background())

	assert.Equal(t, StatusUp, resp.Status)
	assert.Less(t, time.Since(start), 250*time.Millisecond)
}

func TestCheck_TimeoutMarksDown(t *testing.T) {
	h := NewHandler()
	h.timeout = 20 * time.Millisecond
	h.Register("hang", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	resp := h.Check(context.Background())
	assert.Equal(t, StatusDown, resp.Status)
	assert.Contains(t, resp.Checks["hang"].Error, "deadline exceeded")
}

func TestNames_Sorted(t *testing.T) {
	h := NewHandler()
	h.Register("store", ok)
	h.RegisterOptional("catalog", ok)
	h.Register("events", ok)
	assert.Equal(t, []string{"catalog", "events", "store"}, h.Names())
}
