package middleware

import (
	"fmt"
	"net/http"
)

// CacheControl marks successful GET responses as cacheable by shared caches
// for maxAge seconds, allowing a stale copy for staleWhileRevalidate more.
// Responses that vary by caller must not use it.
func CacheControl(maxAge, staleWhileRevalidate int) func(http.Handler) http.Handler {
	value := fmt.Sprintf("public, max-age=%d", maxAge)
	if staleWhileRevalidate > 0 {
		value += fmt.Sprintf(", stale-while-revalidate=%d", staleWhileRevalidate)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet || r.Method == http.MethodHead {
				w.Header().Set("Cache-Control", value)
				w.Header().Add("Vary", "Accept-Language")
			}
			next.ServeHTTP(w, r)
		})
	}
}

// NoStore marks responses as uncacheable. Used for per-user state.
func NoStore(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}

// StaleHeader flags a response served from the offline catalog cache.
const StaleHeader = "X-Storefront-Stale"

// MarkStale flags the response as served from cache and stops shared caches
// from storing it. Call before the body is written.
func MarkStale(w http.ResponseWriter) {
	w.Header().Set(StaleHeader, "1")
	w.Header().Set("Cache-Control", "no-cache")
}
