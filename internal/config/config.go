package config

import (
	"fmt"
	"net/url"
	"slices"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/utafrali/storefront/internal/domain"
	pkgconfig "github.com/utafrali/storefront/pkg/config"
)

// Store backends selectable through STORE_BACKEND.
const (
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// RefreshDisabled turns the scheduled catalog refresh off.
const RefreshDisabled = "off"

// Config holds all configuration for the storefront service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"STOREFRONT_HTTP_PORT" envDefault:"8010"`

	// Catalog API
	CatalogBaseURL         string `env:"CATALOG_BASE_URL" envDefault:"https://dummyjson.com"`
	CatalogTimeoutSeconds  int    `env:"CATALOG_TIMEOUT_SECONDS" envDefault:"10"`
	CatalogMaxRetries      int    `env:"CATALOG_MAX_RETRIES" envDefault:"2"`
	CatalogRefreshSchedule string `env:"CATALOG_REFRESH_SCHEDULE" envDefault:"@every 15m"`

	// State persistence
	StoreBackend  string `env:"STORE_BACKEND" envDefault:"redis"`
	StateTTLHours int    `env:"STATE_TTL_HOURS" envDefault:"720"`

	// Redis
	RedisAddr string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPass string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`

	// PostgreSQL
	PostgresHost     string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort     int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser     string `env:"POSTGRES_USER" envDefault:"storefront"`
	PostgresPassword string `env:"POSTGRES_PASSWORD" envDefault:"storefront_secret"`
	PostgresDB       string `env:"POSTGRES_DB" envDefault:"storefront"`
	PostgresSSLMode  string `env:"POSTGRES_SSLMODE" envDefault:"disable"`

	SlowQueryThresholdMs int `env:"SLOW_QUERY_THRESHOLD_MS" envDefault:"200"`

	// Kafka; no brokers disables event publishing.
	KafkaBrokers []string `env:"KAFKA_BROKERS" envSeparator:","`

	DefaultLocale string `env:"DEFAULT_LOCALE" envDefault:"en"`

	// Identity
	JWTSecret string `env:"JWT_SECRET"`

	// Rate limiting per client IP; RPS <= 0 disables it.
	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS" envDefault:"50"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST" envDefault:"100"`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`
	PprofAllowedCIDRs  []string `env:"PPROF_ALLOWED_CIDRS" envSeparator:","`

	// OpenTelemetry
	OTelEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTelEndpoint   string  `env:"OTEL_ENDPOINT" envDefault:"localhost:4318"`
	OTelSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`
}

// Load reads configuration from environment variables and validates it.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load storefront config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadWithDotEnv is Load after merging .env files into the environment.
// Variables already set in the environment win.
func LoadWithDotEnv(files ...string) (*Config, error) {
	if err := pkgconfig.LoadDotEnv(files...); err != nil {
		return nil, fmt.Errorf("load storefront config: %w", err)
	}
	return Load()
}

func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}

	u, err := url.Parse(c.CatalogBaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("CATALOG_BASE_URL must be an absolute http(s) URL, got %q", c.CatalogBaseURL)
	}
	if c.CatalogTimeoutSeconds < 1 {
		return fmt.Errorf("CATALOG_TIMEOUT_SECONDS must be positive, got %d", c.CatalogTimeoutSeconds)
	}
	if c.CatalogMaxRetries < 0 {
		return fmt.Errorf("CATALOG_MAX_RETRIES must not be negative, got %d", c.CatalogMaxRetries)
	}
	if c.RefreshEnabled() {
		if _, err := cron.ParseStandard(c.CatalogRefreshSchedule); err != nil {
			return fmt.Errorf("invalid CATALOG_REFRESH_SCHEDULE %q: %w", c.CatalogRefreshSchedule, err)
		}
	}

	if !slices.Contains([]string{BackendRedis, BackendPostgres, BackendMemory}, c.StoreBackend) {
		return fmt.Errorf("STORE_BACKEND must be one of redis, postgres, memory, got %q", c.StoreBackend)
	}
	if c.StateTTLHours < 0 {
		return fmt.Errorf("STATE_TTL_HOURS must not be negative, got %d", c.StateTTLHours)
	}
	if c.StoreBackend == BackendPostgres && (c.PostgresPort < 1 || c.PostgresPort > 65535) {
		return fmt.Errorf("invalid POSTGRES_PORT: %d", c.PostgresPort)
	}

	if !slices.Contains(domain.SupportedLocales(), c.DefaultLocale) {
		return fmt.Errorf("DEFAULT_LOCALE must be one of %v, got %q", domain.SupportedLocales(), c.DefaultLocale)
	}
	if c.RateLimitRPS > 0 && c.RateLimitBurst < 1 {
		return fmt.Errorf("RATE_LIMIT_BURST must be at least 1 when rate limiting is enabled")
	}
	if c.OTelSampleRate < 0 || c.OTelSampleRate > 1 {
		return fmt.Errorf("OTEL_SAMPLE_RATE must be between 0.0 and 1.0, got %v", c.OTelSampleRate)
	}
	return nil
}

// RefreshEnabled reports whether the catalog refresh job should be scheduled.
func (c *Config) RefreshEnabled() bool {
	return c.CatalogRefreshSchedule != "" && c.CatalogRefreshSchedule != RefreshDisabled
}

func (c *Config) CatalogTimeout() time.Duration {
	return time.Duration(c.CatalogTimeoutSeconds) * time.Second
}

// StateTTL is how long persisted cart and favorites state lives. Zero means
// no expiry.
func (c *Config) StateTTL() time.Duration {
	return time.Duration(c.StateTTLHours) * time.Hour
}

func (c *Config) EventsEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

// Locales returns the supported locales with DefaultLocale first, which is
// the fallback used by locale negotiation.
func (c *Config) Locales() []string {
	out := []string{c.DefaultLocale}
	for _, l := range domain.SupportedLocales() {
		if l != c.DefaultLocale {
			out = append(out, l)
		}
	}
	return out
}
