package service

import (
	"context"
	"fmt"

	"bookmart/internal/core/domain/models"
	"bookmart/internal/core/domain/ports"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Pipeline wires the full batch run: extract, normalize, reconcile, stage,
// and warehouse build. Stages run strictly in sequence and each one fully
// materializes its output before the next starts. The staging load and the
// warehouse build commit independently; a store failure stops the run at
// that stage and leaves prior stages in place.
type Pipeline struct {
	source  ports.CatalogSource
	staging ports.StagingWriter
	reader  ports.StagingReader
	dims    ports.DimensionRepository
	facts   ports.FactRepository
	log     zerolog.Logger
}

func NewPipeline(
	source ports.CatalogSource,
	staging ports.StagingWriter,
	reader ports.StagingReader,
	dims ports.DimensionRepository,
	facts ports.FactRepository,
	log zerolog.Logger,
) *Pipeline {
	return &Pipeline{
		source:  source,
		staging: staging,
		reader:  reader,
		dims:    dims,
		facts:   facts,
		log:     log,
	}
}

// Run executes one full ETL batch.
func (p *Pipeline) Run(ctx context.Context) error {
	log := p.log.With().Str("run_id", uuid.New().String()).Logger()

	log.Info().Msg("starting ETL process")

	records, err := p.source.FetchRecords(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch catalog records: %w", err)
	}
	log.Info().Int("records", len(records)).Msg("extraction complete")

	normalizer := NewNormalizer(log)
	books := make([]models.Book, 0, len(records))
	for _, rec := range records {
		books = append(books, normalizer.Normalize(rec))
	}

	books, report := NewReconciler(log).Reconcile(books)
	log.Info().
		Int("records", len(books)).
		Int("duplicates_removed", report.DuplicatesRemoved).
		Int("untitled_dropped", report.UntitledDropped).
		Int("values_imputed", report.ValuesImputed).
		Int("empty_group_misses", report.EmptyGroupMisses).
		Int("tax_repairs", report.TaxRepairs).
		Int("price_repairs", report.PriceRepairs).
		Msg("reconciliation complete")

	if err := loadStaging(ctx, p.staging, books, log); err != nil {
		return err
	}

	if err := NewWarehouseBuilder(p.reader, p.dims, p.facts, log).Build(ctx); err != nil {
		return err
	}

	log.Info().Msg("ETL process completed")
	return nil
}
