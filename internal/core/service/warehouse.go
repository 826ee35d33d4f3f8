package service

import (
	"context"
	"fmt"
	"sort"

	"bookmart/internal/core/domain/models"
	"bookmart/internal/core/domain/ports"

	"github.com/rs/zerolog"
)

// WarehouseBuilder derives the star schema from the staging relation. Both
// build phases read staging back by query rather than holding on to the
// in-flight dataset, so they only ever see what the store committed.
type WarehouseBuilder struct {
	staging ports.StagingReader
	dims    ports.DimensionRepository
	facts   ports.FactRepository
	log     zerolog.Logger
}

func NewWarehouseBuilder(staging ports.StagingReader, dims ports.DimensionRepository, facts ports.FactRepository, log zerolog.Logger) *WarehouseBuilder {
	return &WarehouseBuilder{
		staging: staging,
		dims:    dims,
		facts:   facts,
		log:     log,
	}
}

// Build bootstraps the warehouse schema and populates dimensions, then
// facts. Dimension tables must exist before the fact table: books_fact
// references them.
func (w *WarehouseBuilder) Build(ctx context.Context) error {
	if err := w.dims.EnsureDimensions(ctx); err != nil {
		return fmt.Errorf("failed to create dimension tables: %w", err)
	}
	if err := w.facts.EnsureFacts(ctx); err != nil {
		return fmt.Errorf("failed to create fact table: %w", err)
	}

	if err := w.BuildDimensions(ctx); err != nil {
		return err
	}
	if err := w.BuildFacts(ctx); err != nil {
		return err
	}

	w.log.Info().Msg("data warehouse (star schema) built and populated")
	return nil
}

// BuildDimensions inserts the distinct natural-key values present in staging
// into each scalar dimension; values already present are skipped, which
// keeps repeated builds idempotent. books_details is the exception: it is
// written once per staging row, so rebuilding against a populated
// books_details table duplicates detail rows unless staging and the
// dimension were cleared first.
func (w *WarehouseBuilder) BuildDimensions(ctx context.Context) error {
	rows, err := w.staging.ListRawBooks(ctx)
	if err != nil {
		return fmt.Errorf("failed to read staging table: %w", err)
	}

	var (
		productTypes = make([]string, 0)
		categories   = make([]string, 0)
		ratings      = make([]int, 0)
		statuses     = make([]string, 0)
		seenType     = make(map[string]bool)
		seenCat      = make(map[string]bool)
		seenRating   = make(map[int]bool)
		seenStatus   = make(map[string]bool)
	)

	details := make([]*models.BookDetail, 0, len(rows))
	for _, rb := range rows {
		if !seenType[rb.ProductType] {
			seenType[rb.ProductType] = true
			productTypes = append(productTypes, rb.ProductType)
		}
		if !seenCat[rb.Category] {
			seenCat[rb.Category] = true
			categories = append(categories, rb.Category)
		}
		if !seenRating[rb.Rating] {
			seenRating[rb.Rating] = true
			ratings = append(ratings, rb.Rating)
		}
		status := models.AvailabilityStatus(rb.Availability)
		if !seenStatus[status] {
			seenStatus[status] = true
			statuses = append(statuses, status)
		}

		details = append(details, &models.BookDetail{
			Title:              rb.Title,
			UPC:                rb.UPC,
			ProductDescription: rb.ProductDescription,
			BookURL:            rb.BookURL,
			BookThumbnailURL:   rb.BookThumbnailURL,
			NoOfReviews:        rb.NoOfReviews,
		})
	}
	sort.Ints(ratings)

	if err := w.dims.InsertProductTypes(ctx, productTypes); err != nil {
		return fmt.Errorf("failed to populate product_type: %w", err)
	}
	if err := w.dims.InsertCategories(ctx, categories); err != nil {
		return fmt.Errorf("failed to populate category_info: %w", err)
	}
	if err := w.dims.InsertRatings(ctx, ratings); err != nil {
		return fmt.Errorf("failed to populate rating_info: %w", err)
	}
	if err := w.dims.InsertAvailabilities(ctx, statuses); err != nil {
		return fmt.Errorf("failed to populate availability_info: %w", err)
	}
	if err := w.dims.InsertBookDetails(ctx, details); err != nil {
		return fmt.Errorf("failed to populate books_details: %w", err)
	}

	w.log.Info().
		Int("product_types", len(productTypes)).
		Int("categories", len(categories)).
		Int("ratings", len(ratings)).
		Int("availability_statuses", len(statuses)).
		Int("book_details", len(details)).
		Msg("dimension tables populated")
	return nil
}

// BuildFacts joins every staging row against the dimension natural keys and
// inserts one fact row per staging row. The match is left-outer: a key that
// fails to resolve yields a nil foreign key, never a dropped row.
func (w *WarehouseBuilder) BuildFacts(ctx context.Context) error {
	rows, err := w.staging.ListRawBooks(ctx)
	if err != nil {
		return fmt.Errorf("failed to read staging table: %w", err)
	}

	typeIDs, err := w.dims.ProductTypeIDs(ctx)
	if err != nil {
		return fmt.Errorf("failed to load product_type keys: %w", err)
	}
	catIDs, err := w.dims.CategoryIDs(ctx)
	if err != nil {
		return fmt.Errorf("failed to load category_info keys: %w", err)
	}
	ratingIDs, err := w.dims.RatingIDs(ctx)
	if err != nil {
		return fmt.Errorf("failed to load rating_info keys: %w", err)
	}
	statusIDs, err := w.dims.AvailabilityIDs(ctx)
	if err != nil {
		return fmt.Errorf("failed to load availability_info keys: %w", err)
	}
	detailIDs, err := w.dims.BookDetailIDs(ctx)
	if err != nil {
		return fmt.Errorf("failed to load books_details keys: %w", err)
	}

	facts := make([]*models.BookFact, 0, len(rows))
	for _, rb := range rows {
		// A NULL UPC never joins: NULL = NULL is not a match in SQL.
		var detailID *int64
		if rb.UPC != nil {
			detailID = lookupID(detailIDs, models.DetailKey{Title: rb.Title, UPC: *rb.UPC})
		}
		facts = append(facts, &models.BookFact{
			BookDetailsID:     detailID,
			Price:             rb.Price,
			PriceExclTax:      rb.PriceExclTax,
			PriceInclTax:      rb.PriceInclTax,
			Tax:               rb.Tax,
			AvailableQuantity: rb.AvailableQuantity,
			CategoryID:        lookupID(catIDs, rb.Category),
			RatingID:          lookupID(ratingIDs, rb.Rating),
			AvailabilityID:    lookupID(statusIDs, models.AvailabilityStatus(rb.Availability)),
			ProductTypeID:     lookupID(typeIDs, rb.ProductType),
		})
	}

	if err := w.facts.InsertFacts(ctx, facts); err != nil {
		return fmt.Errorf("failed to populate books_fact: %w", err)
	}

	w.log.Info().Int("facts", len(facts)).Msg("fact table populated")
	return nil
}

// lookupID resolves a natural key to its surrogate id, nil when absent.
func lookupID[K comparable](m map[K]int64, key K) *int64 {
	id, ok := m[key]
	if !ok {
		return nil
	}
	return &id
}
