package service

import (
	"time"

	"bookmart/internal/adapters/source"
	"bookmart/internal/config"
	"bookmart/internal/core/domain/ports"

	"github.com/rs/zerolog"
)

func CreateCatalogSource(cfg *config.Config, log zerolog.Logger) ports.CatalogSource {
	switch cfg.SourceType {
	case config.SourceFile:
		return source.NewFileSource(cfg.SourceFilePath, log)
	default:
		// Default to the live catalog
		return source.NewCatalogAdapter(
			cfg.CatalogBaseURL,
			time.Duration(cfg.HTTPTimeoutSec)*time.Second,
			time.Duration(cfg.RequestDelayMS)*time.Millisecond,
			cfg.MaxCatalogPages,
			log,
		)
	}
}
