package app

import (
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
)

// Storage backends.
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// Config holds the complete application configuration, loadable from
// environment variables (LOGOS_ prefix), flags, or YAML config files.
type Config struct {
	Addr          string        `default:"0.0.0.0:8080" usage:"Storefront listen address"`
	Storage       string        `default:"postgres" usage:"Storage backend: postgres or memory"`
	DatabaseURL   string        `usage:"PostgreSQL connection URL (LOGOS_DATABASE_URL or DATABASE_URL)" flag:"database-url"`
	SessionSecret string        `usage:"HMAC secret for session cookies (LOGOS_SESSION_SECRET)" flag:"session-secret"`
	SessionTTL    time.Duration `default:"336h" usage:"Session lifetime" flag:"session-ttl"`
	CookieSecure  bool          `default:"false" usage:"Mark cookies Secure (behind HTTPS)" flag:"cookie-secure"`
	RateLimit     RateLimitConfig
	Graceful      GracefulConfig
}

// RateLimitConfig controls the per-client token bucket.
type RateLimitConfig struct {
	RPS   float64 `default:"20" usage:"Sustained requests per second per client"`
	Burst int     `default:"60" usage:"Requests allowed in a burst"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s"  usage:"Delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// LoadConfig loads configuration from environment variables, YAML config files,
// and applies platform-specific defaults.
func LoadConfig() (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "LOGOS",
		Files:     []string{"config.yaml", "/etc/logos/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Storage {
	case StoragePostgres:
		if c.DatabaseURL == "" {
			return errors.New("database URL is required: set LOGOS_DATABASE_URL or DATABASE_URL")
		}
	case StorageMemory:
	default:
		return errors.Errorf("unknown storage %q: want %q or %q", c.Storage, StoragePostgres, StorageMemory)
	}
	if c.SessionSecret == "" {
		return errors.New("session secret is required: set LOGOS_SESSION_SECRET")
	}
	return nil
}

// applyPlatformDefaults maps platform-provided environment variables (Railway,
// Render, etc.) that use standard names like DATABASE_URL and PORT to the
// application's LOGOS_-prefixed configuration.
func (c *Config) applyPlatformDefaults() {
	if c.DatabaseURL == "" {
		if v := os.Getenv("DATABASE_URL"); v != "" {
			c.DatabaseURL = v
		}
	}
	if port := os.Getenv("PORT"); port != "" && c.Addr == "0.0.0.0:8080" {
		c.Addr = "0.0.0.0:" + port
	}
}
