package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
)

const testSecret = "test-secret"

func identityProbe(cfg IdentityConfig) (http.Handler, *string) {
	var got string
	h := Identity(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = UserIDFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))
	return h, &got
}

func TestIdentity_HeaderMode(t *testing.T) {
	h, got := identityProbe(IdentityConfig{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.Header.Set(UserIDHeader, "  shopper-1 ")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "shopper-1", *got)
}

func TestIdentity_NoIdentityPassesThrough(t *testing.T) {
	h, got := identityProbe(IdentityConfig{})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/products", nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, *got)
}

func TestIdentity_TooLongUserID(t *testing.T) {
	h, _ := identityProbe(IdentityConfig{})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(UserIDHeader, strings.Repeat("x", 200))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestIdentity_JWTMode(t *testing.T) {
	tests := []struct {
		name   string
		claims jwt.MapClaims
		want   string
	}{
		{"user_id claim", jwt.MapClaims{"user_id": "u-42", "exp": time.Now().Add(time.Hour).Unix()}, "u-42"},
		{"sub claim", jwt.MapClaims{"sub": "u-7", "exp": time.Now().Add(time.Hour).Unix()}, "u-7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, got := identityProbe(IdentityConfig{JWTSecret: testSecret})

			req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
			req.Header.Set("Authorization", "Bearer "+mustSign(jwt.SigningMethodHS256, []byte(testSecret), tt.claims))
			req.Header.Set(UserIDHeader, "spoofed")
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusNoContent, rec.Code)
			assert.Equal(t, tt.want, *got)
		})
	}
}

func TestIdentity_JWTModeIgnoresHeaderWithoutToken(t *testing.T) {
	h, got := identityProbe(IdentityConfig{JWTSecret: testSecret})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(UserIDHeader, "spoofed")
	h.ServeHTTP(httptest.NewRecorder(), req)

	assert.Empty(t, *got)
}

func TestIdentity_RejectsBadTokens(t *testing.T) {
	tests := []struct {
		name   string
		header string
	}{
		{"wrong scheme", "Basic abc"},
		{"garbage", "Bearer not-a-jwt"},
		{"wrong secret", "Bearer " + mustSign(jwt.SigningMethodHS256, []byte("other"), jwt.MapClaims{"sub": "u"})},
		{"expired", "Bearer " + mustSign(jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{"sub": "u", "exp": time.Now().Add(-time.Hour).Unix()})},
		{"wrong alg", "Bearer " + mustSign(jwt.SigningMethodHS512, []byte(testSecret), jwt.MapClaims{"sub": "u"})},
		{"no subject", "Bearer " + mustSign(jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{"role": "x"})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _ := identityProbe(IdentityConfig{JWTSecret: testSecret})
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("Authorization", tt.header)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Contains(t, rec.Body.String(), "UNAUTHORIZED")
		})
	}
}

func mustSign(method jwt.SigningMethod, key []byte, claims jwt.MapClaims) string {
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	if err != nil {
		panic(err)
	}
	return s
}

func TestRequireUser(t *testing.T) {
	h := RequireUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithUserID(req.Context(), "u-1"))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
