package config

import (
	"fmt"
	"log"
	"sync"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Source feed selection.
const (
	SourceCatalog = "catalog"
	SourceFile    = "file"
)

type Config struct {
	LogLevel string `env:"BM_LOG_LEVEL" envDefault:"info"`

	SourceType     string `env:"BM_SOURCE_TYPE" envDefault:"catalog"`
	CatalogBaseURL string `env:"BM_CATALOG_BASE_URL" envDefault:"http://books.toscrape.com/"`
	SourceFilePath string `env:"BM_SOURCE_FILE_PATH"`

	DatabaseDSN string `env:"BM_DATABASE_DSN" envDefault:"file:bookmart.db"`

	RequestDelayMS  int `env:"BM_REQUEST_DELAY_MS" envDefault:"0"`
	MaxCatalogPages int `env:"BM_MAX_CATALOG_PAGES" envDefault:"100"`
	HTTPTimeoutSec  int `env:"BM_HTTP_TIMEOUT_SEC" envDefault:"30"`
}

func (c *Config) Validate() error {
	if c.SourceType != SourceCatalog && c.SourceType != SourceFile {
		return fmt.Errorf("BM_SOURCE_TYPE must be %q or %q", SourceCatalog, SourceFile)
	}

	if c.SourceType == SourceCatalog && c.CatalogBaseURL == "" {
		return fmt.Errorf("BM_CATALOG_BASE_URL is required when BM_SOURCE_TYPE is %s", SourceCatalog)
	}

	if c.SourceType == SourceFile && c.SourceFilePath == "" {
		return fmt.Errorf("BM_SOURCE_FILE_PATH is required when BM_SOURCE_TYPE is %s", SourceFile)
	}

	if c.DatabaseDSN == "" {
		return fmt.Errorf("BM_DATABASE_DSN cannot be empty")
	}

	if c.RequestDelayMS < 0 {
		return fmt.Errorf("BM_REQUEST_DELAY_MS cannot be negative")
	}

	if c.MaxCatalogPages < 1 {
		return fmt.Errorf("BM_MAX_CATALOG_PAGES must be at least 1")
	}

	if c.HTTPTimeoutSec < 1 {
		return fmt.Errorf("BM_HTTP_TIMEOUT_SEC must be at least 1")
	}

	return nil
}

var (
	cfg  *Config
	once sync.Once
)

func GetConfig() *Config {
	once.Do(func() {
		_ = godotenv.Load()
		cfg = &Config{}
		if err := env.Parse(cfg); err != nil {
			log.Fatalf("failed to parse config: %v", err)
		}
		if err := cfg.Validate(); err != nil {
			log.Fatalf("config validation failed: %v", err)
		}
	})
	return cfg
}
