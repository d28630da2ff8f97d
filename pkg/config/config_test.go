package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("REDHIO_CONFIG", "")
	t.Setenv("REDHIO_API_KEY", "k")
	t.Setenv("REDHIO_API_SECRET", "s")

	cfg := Load()
	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, AccessModeOffline, cfg.AccessMode)
	assert.Equal(t, 10*time.Minute, cfg.NonceTTL)
	assert.Equal(t, "http://localhost:8080", cfg.HostURL)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "redhio.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
env: prod
api_key: file-key
api_secret: file-secret
host_url: https://app.example.com/
scopes: [read_orders, write_products]
access_mode: online
webhook_topics: [orders/create]
`), 0o600))
	t.Setenv("REDHIO_CONFIG", path)

	cfg := Load()
	assert.Equal(t, "prod", cfg.Env)
	assert.Equal(t, "file-key", cfg.APIKey)
	assert.Equal(t, "file-secret", cfg.APISecret)
	// Trailing slash trimmed so callback concatenation stays clean.
	assert.Equal(t, "https://app.example.com", cfg.HostURL)
	assert.Equal(t, []string{"read_orders", "write_products"}, cfg.Scopes)
	assert.Equal(t, AccessModeOnline, cfg.AccessMode)
	assert.Equal(t, []string{"orders/create"}, cfg.WebhookTopics)
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "redhio.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api_key: file-key\n"), 0o600))
	t.Setenv("REDHIO_CONFIG", path)
	t.Setenv("REDHIO_API_KEY", "env-key")
	t.Setenv("REDHIO_SCOPES", "read_orders, read_products ,")

	cfg := Load()
	assert.Equal(t, "env-key", cfg.APIKey)
	assert.Equal(t, []string{"read_orders", "read_products"}, cfg.Scopes)
}
