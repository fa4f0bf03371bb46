package app

import (
	"io/fs"
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
	"github.com/joho/godotenv"
)

const defaultAddr = "0.0.0.0:8080"

// Config holds the complete application configuration, loadable from
// environment variables (MENU_ prefix), flags, or YAML config files.
type Config struct {
	Addr         string `default:"0.0.0.0:8080" usage:"API server listen address"`
	ImageBaseURL string `default:"" usage:"Base URL for product images (e.g. https://cdn.example.com/images)" flag:"image-base-url"`
	BusinessName string `default:"menukart" usage:"Business name reported to the front-end" flag:"business-name"`

	Catalog CatalogConfig
	Order   OrderConfig
	AMQP    AMQPConfig

	RateLimit RateLimitConfig
	CORS      CORSConfig
	Graceful  GracefulConfig
}

// CatalogConfig selects where the menu document is loaded from. The first
// non-empty of URL, File and DatabaseURL wins.
type CatalogConfig struct {
	URL         string        `usage:"HTTP URL of the menu document" flag:"catalog-url"`
	File        string        `usage:"Path to the menu document (.json or .json.gz)" flag:"catalog-file"`
	DatabaseURL string        `usage:"PostgreSQL connection URL (MENU_CATALOG_DATABASE_URL or DATABASE_URL)" flag:"database-url"`
	Attempts    int           `default:"1" usage:"Catalog load attempts" flag:"catalog-attempts"`
	Timeout     time.Duration `default:"10s" usage:"Timeout of a single catalog load attempt" flag:"catalog-timeout"`
	Backoff     time.Duration `default:"500ms" usage:"Initial delay between catalog load attempts" flag:"catalog-backoff"`
}

// OrderConfig controls the order transcript and the outbound link.
type OrderConfig struct {
	Destination     string `usage:"Messaging destination, e.g. a phone number" flag:"destination"`
	BaseURL         string `default:"https://wa.me" usage:"Messaging channel base URL" flag:"order-base-url"`
	Header          string `usage:"Transcript greeting; empty uses the built-in one" flag:"order-header"`
	Closing         string `usage:"Transcript closing; empty uses the built-in one" flag:"order-closing"`
	CurrencySymbol  string `default:"$" usage:"Currency symbol for formatted amounts" flag:"currency-symbol"`
	ClearOnCheckout bool   `default:"false" usage:"Empty the cart after a successful checkout" flag:"clear-on-checkout"`
}

// AMQPConfig enables relaying checkouts to RabbitMQ when URL is set.
type AMQPConfig struct {
	URL   string `usage:"AMQP broker URL; empty disables the relay" flag:"amqp-url"`
	Queue string `default:"menukart.checkouts" usage:"Queue receiving checkouts" flag:"amqp-queue"`
}

// RateLimitConfig controls the per-client rate limiter.
type RateLimitConfig struct {
	Max    int           `default:"100" usage:"Max requests per window"`
	Window time.Duration `default:"1m"  usage:"Rate limit window duration"`
}

// CORSConfig controls Cross-Origin Resource Sharing headers.
type CORSConfig struct {
	Origins          []string `default:"*" usage:"Allowed CORS origins"`
	AllowCredentials bool     `default:"false" usage:"Allow credentials (cookies, auth headers)" flag:"cors-credentials"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s"  usage:"Delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// LoadConfig loads .env, then configuration from command-line flags,
// environment variables and YAML config files, and applies platform-specific
// defaults.
func LoadConfig() (*Config, error) {
	return loadConfig(os.Args[1:], []string{"config.yaml", "/etc/menukart/config.yaml"})
}

func loadConfig(args, files []string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, errors.Wrap(err, "load .env")
	}

	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "MENU",
		Args:      args,
		Files:     files,
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports configuration that cannot start the server.
func (c *Config) Validate() error {
	if c.Catalog.URL == "" && c.Catalog.File == "" && c.Catalog.DatabaseURL == "" {
		return errors.New("catalog source is required: set MENU_CATALOG_URL, MENU_CATALOG_FILE or DATABASE_URL")
	}
	if c.Catalog.Attempts < 1 {
		return errors.Errorf("catalog attempts must be positive, got %d", c.Catalog.Attempts)
	}
	return nil
}

// applyPlatformDefaults maps platform-provided environment variables (Railway,
// Render, etc.) that use standard names like DATABASE_URL and PORT to the
// application's MENU_-prefixed configuration.
func (c *Config) applyPlatformDefaults() {
	if c.Catalog.DatabaseURL == "" {
		if v := os.Getenv("DATABASE_URL"); v != "" {
			c.Catalog.DatabaseURL = v
		}
	}
	if port := os.Getenv("PORT"); port != "" && c.Addr == defaultAddr {
		c.Addr = "0.0.0.0:" + port
	}
}
