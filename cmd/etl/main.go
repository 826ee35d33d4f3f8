package main

import (
	"context"
	"fmt"
	"time"

	"bookmart/internal/adapters/store"
	"bookmart/internal/config"
	"bookmart/internal/core/service"
	"bookmart/internal/logger"

	"github.com/rs/zerolog"
)

func main() {
	cfg := config.GetConfig()
	log := logger.New(cfg.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	if err := Run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("ETL run failed")
	}
}

// Run executes one full ETL batch. Exposed for testing.
func Run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	src := service.CreateCatalogSource(cfg, log)

	st, err := store.Open(cfg.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer st.Close()

	return service.NewPipeline(src, st, st, st, st, log).Run(ctx)
}
