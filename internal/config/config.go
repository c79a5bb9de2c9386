package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/bioradar/implementation-scorecard/internal/db"
)

type Config struct {
	HTTPAddr string `yaml:"http_addr"`

	DBDriver string `yaml:"db_driver"` // memory|sqlite|postgres
	DBDSN    string `yaml:"db_dsn"`
	SiteID   string `yaml:"site_id"`

	BlobBasePath string `yaml:"blob_base_path"`

	// CatalogPath is the default questionnaire served before any upload.
	CatalogPath  string `yaml:"catalog_path"`
	WatchCatalog bool   `yaml:"watch_catalog"`

	CORSOrigins []string `yaml:"cors_origins"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	ResizeDebounce time.Duration `yaml:"resize_debounce"`
	TopN           int           `yaml:"top_n"`
}

func Defaults() Config {
	return Config{
		HTTPAddr:       ":8080",
		DBDriver:       string(db.DriverSQLite),
		SiteID:         "local",
		BlobBasePath:   "./data",
		WatchCatalog:   true,
		CORSOrigins:    []string{"http://localhost:3000", "http://127.0.0.1:3000"},
		LogLevel:       "info",
		LogFormat:      "json",
		ResizeDebounce: 150 * time.Millisecond,
		TopN:           2,
	}
}

// FromEnv starts from Defaults, applies the YAML file named by CONFIG_FILE
// when set, then environment variables, then validates.
func FromEnv() (Config, error) {
	cfg := Defaults()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return Config{}, err
		}
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.HTTPAddr = envOr("HTTP_ADDR", c.HTTPAddr)
	c.DBDriver = envOr("DB_DRIVER", c.DBDriver)
	c.DBDSN = envOr("DB_DSN", c.DBDSN)
	c.SiteID = envOr("SITE_ID", c.SiteID)
	c.BlobBasePath = envOr("BLOB_BASE_PATH", c.BlobBasePath)
	c.CatalogPath = envOr("CATALOG_PATH", c.CatalogPath)
	c.WatchCatalog = envBool("WATCH_CATALOG", c.WatchCatalog)
	c.CORSOrigins = csvOr("CORS_ORIGINS", c.CORSOrigins)
	c.LogLevel = envOr("LOG_LEVEL", c.LogLevel)
	c.LogFormat = envOr("LOG_FORMAT", c.LogFormat)
	c.ResizeDebounce = envDuration("RESIZE_DEBOUNCE", c.ResizeDebounce)
	c.TopN = envInt("TOP_N", c.TopN)
}

func (c Config) Validate() error {
	var errs []error
	if !db.Driver(c.DBDriver).Valid() {
		errs = append(errs, fmt.Errorf("config: unsupported DB_DRIVER %q", c.DBDriver))
	}
	if c.TopN <= 0 {
		errs = append(errs, fmt.Errorf("config: TOP_N must be positive, got %d", c.TopN))
	}
	if c.ResizeDebounce < 0 {
		errs = append(errs, fmt.Errorf("config: RESIZE_DEBOUNCE must not be negative"))
	}
	if c.HTTPAddr == "" {
		errs = append(errs, errors.New("config: HTTP_ADDR is empty"))
	}
	return errors.Join(errs...)
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func envBool(k string, def bool) bool {
	switch os.Getenv(k) {
	case "1", "true", "TRUE", "yes", "YES":
		return true
	case "0", "false", "FALSE", "no", "NO":
		return false
	default:
		return def
	}
}

func envInt(k string, def int) int {
	if v, err := strconv.Atoi(os.Getenv(k)); err == nil {
		return v
	}
	return def
}

func envDuration(k string, def time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(k)); err == nil {
		return v
	}
	return def
}

func csvOr(k string, def []string) []string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
