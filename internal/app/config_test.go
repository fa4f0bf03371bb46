package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("MENU_CATALOG_FILE", "menu.json")
	t.Setenv("PORT", "")
	t.Setenv("DATABASE_URL", "")

	cfg, err := loadConfig([]string{}, nil)
	require.NoError(t, err)

	assert.Equal(t, defaultAddr, cfg.Addr)
	assert.Equal(t, "menu.json", cfg.Catalog.File)
	assert.Equal(t, 1, cfg.Catalog.Attempts)
	assert.Equal(t, 10*time.Second, cfg.Catalog.Timeout)
	assert.Equal(t, "https://wa.me", cfg.Order.BaseURL)
	assert.Equal(t, "$", cfg.Order.CurrencySymbol)
	assert.False(t, cfg.Order.ClearOnCheckout)
	assert.Equal(t, "menukart.checkouts", cfg.AMQP.Queue)
	assert.Equal(t, 100, cfg.RateLimit.Max)
	assert.Equal(t, 3*time.Second, cfg.Graceful.ReadinessDelay)
}

func TestLoadConfig_Env(t *testing.T) {
	t.Setenv("MENU_CATALOG_URL", "https://example.com/menu.json")
	t.Setenv("MENU_CATALOG_ATTEMPTS", "3")
	t.Setenv("MENU_ORDER_DESTINATION", "5491122512344")
	t.Setenv("MENU_ORDER_CLEAR_ON_CHECKOUT", "true")

	cfg, err := loadConfig([]string{}, nil)
	require.NoError(t, err)

	assert.Equal(t, "https://example.com/menu.json", cfg.Catalog.URL)
	assert.Equal(t, 3, cfg.Catalog.Attempts)
	assert.Equal(t, "5491122512344", cfg.Order.Destination)
	assert.True(t, cfg.Order.ClearOnCheckout)
}

func TestLoadConfig_YAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
catalog:
  file: /srv/menu.json.gz
order:
  destination: "5491100000000"
business_name: La Pizzería
`), 0o600))

	cfg, err := loadConfig([]string{}, []string{path})
	require.NoError(t, err)

	assert.Equal(t, "/srv/menu.json.gz", cfg.Catalog.File)
	assert.Equal(t, "5491100000000", cfg.Order.Destination)
	assert.Equal(t, "La Pizzería", cfg.BusinessName)
}

func TestLoadConfig_RequiresSource(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	_, err := loadConfig([]string{}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "catalog source is required")
}

func TestApplyPlatformDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://menu@localhost/menu")
	t.Setenv("PORT", "9090")

	cfg := Config{Addr: defaultAddr}
	cfg.applyPlatformDefaults()

	assert.Equal(t, "postgres://menu@localhost/menu", cfg.Catalog.DatabaseURL)
	assert.Equal(t, "0.0.0.0:9090", cfg.Addr)

	cfg = Config{Addr: "127.0.0.1:8000"}
	cfg.applyPlatformDefaults()
	assert.Equal(t, "127.0.0.1:8000", cfg.Addr, "explicit address wins over PORT")
}
