package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("WATCH_CATALOG", "no")
	t.Setenv("CORS_ORIGINS", " https://a.example , ,https://b.example")
	t.Setenv("RESIZE_DEBOUNCE", "40ms")
	t.Setenv("TOP_N", "5")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.False(t, cfg.WatchCatalog)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.Equal(t, 40*time.Millisecond, cfg.ResizeDebounce)
	assert.Equal(t, 5, cfg.TopN)
}

func TestFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scorecard.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
http_addr: ":7000"
db_driver: memory
catalog_path: /srv/catalog.json
resize_debounce: 1s
top_n: 3
`), 0o644))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("TOP_N", "4")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.HTTPAddr)
	assert.Equal(t, "memory", cfg.DBDriver)
	assert.Equal(t, "/srv/catalog.json", cfg.CatalogPath)
	assert.Equal(t, time.Second, cfg.ResizeDebounce)
	assert.Equal(t, 4, cfg.TopN, "env wins over file")
	assert.Equal(t, "./data", cfg.BlobBasePath, "unset keys keep defaults")
}

func TestFileErrors(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))
	_, err := FromEnv()
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("top_n: [1"), 0o644))
	t.Setenv("CONFIG_FILE", bad)
	_, err = FromEnv()
	assert.ErrorContains(t, err, "parse")
}

func TestValidate(t *testing.T) {
	cfg := Defaults()
	cfg.DBDriver = "mysql"
	cfg.TopN = 0
	err := cfg.Validate()
	require.Error(t, err)
	assert.ErrorContains(t, err, "DB_DRIVER")
	assert.ErrorContains(t, err, "TOP_N")
}
