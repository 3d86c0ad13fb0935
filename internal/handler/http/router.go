package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/utafrali/storefront/internal/service"
	"github.com/utafrali/storefront/pkg/health"
	"github.com/utafrali/storefront/pkg/middleware"
)

const serviceName = "storefront"

// Services groups the application services the router exposes.
type Services struct {
	Catalog   *service.CatalogService
	Cart      *service.CartService
	Favorites *service.FavoritesService
}

// RouterConfig holds the edge settings of the HTTP API.
type RouterConfig struct {
	JWTSecret      string
	Locales        []string
	RateLimitRPS   float64
	RateLimitBurst int
	CORSOrigins    []string
	PprofCIDRs     []string
}

// NewRouter creates a chi router with all storefront routes registered.
func NewRouter(svcs Services, healthHandler *health.Handler, logger *slog.Logger, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.CORS(middleware.DefaultCORSConfig(cfg.CORSOrigins)))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics("/health/", "/metrics", "/debug/"))
	r.Use(middleware.Tracing(serviceName))
	r.Use(middleware.RequestLogger(logger))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	// Pprof debug endpoints with IP allowlist.
	middleware.RegisterPprof(r, cfg.PprofCIDRs, logger)

	productHandler := NewProductHandler(svcs.Catalog, logger)
	cartHandler := NewCartHandler(svcs.Cart, logger)
	favoritesHandler := NewFavoritesHandler(svcs.Favorites, logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst, logger))
		r.Use(middleware.Identity(middleware.IdentityConfig{JWTSecret: cfg.JWTSecret, Logger: logger}))
		r.Use(middleware.Locale(cfg.Locales))
		r.Use(ContentTypeJSON)

		r.Route("/products", func(r chi.Router) {
			r.Use(middleware.CacheControl(60, 300))

			r.Get("/", productHandler.ListProducts)
			r.Get("/categories", productHandler.ListCategories)
			r.Get("/{id}", productHandler.GetProduct)
			r.Get("/{id}/share", productHandler.ShareProduct)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.NoStore)
			r.Use(middleware.RequireUser)

			r.Route("/favorites", func(r chi.Router) {
				r.Get("/", favoritesHandler.ListFavorites)
				r.Post("/{productId}/toggle", favoritesHandler.ToggleFavorite)
				r.Delete("/{productId}", favoritesHandler.RemoveFavorite)
			})

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", cartHandler.GetCart)
				r.Delete("/", cartHandler.ClearCart)

				r.Post("/items", cartHandler.AddItem)
				r.Put("/items/{productId}", cartHandler.UpdateItemQuantity)
				r.Delete("/items/{productId}", cartHandler.RemoveItem)

				r.Post("/promo", cartHandler.ApplyPromo)
			})
		})
	})

	return r
}
