package service

import (
	"context"
	"fmt"

	"bookmart/internal/core/domain/models"
	"bookmart/internal/core/domain/ports"

	"github.com/rs/zerolog"
)

// loadStaging persists the reconciled dataset as flat raw_books rows in
// insertion order, creating the relation first if absent. Prices are stored
// rounded to the staging schema's two fractional digits.
func loadStaging(ctx context.Context, w ports.StagingWriter, books []models.Book, log zerolog.Logger) error {
	if err := w.EnsureStaging(ctx); err != nil {
		return fmt.Errorf("failed to create staging table: %w", err)
	}

	rows := make([]*models.RawBook, 0, len(books))
	for i := range books {
		b := &books[i]
		// Category and ProductType are non-nil once reconciliation has run.
		rows = append(rows, &models.RawBook{
			Title:              b.Title,
			Price:              roundPtr(b.Price),
			Rating:             b.Rating,
			Availability:       b.Availability,
			Category:           *b.Category,
			BookURL:            b.BookURL,
			BookThumbnailURL:   b.BookThumbnailURL,
			ProductDescription: b.ProductDescription,
			UPC:                b.UPC,
			ProductType:        *b.ProductType,
			PriceExclTax:       roundPtr(b.PriceExclTax),
			PriceInclTax:       roundPtr(b.PriceInclTax),
			Tax:                roundPtr(b.Tax),
			AvailableQuantity:  derefInt(b.AvailableQuantity),
			NoOfReviews:        b.NoOfReviews,
		})
	}

	if err := w.InsertRawBooks(ctx, rows); err != nil {
		return fmt.Errorf("failed to load staging table: %w", err)
	}

	log.Info().Int("rows", len(rows)).Msg("data loaded into staging table raw_books")
	return nil
}

func roundPtr(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := models.Round2(*p)
	return &v
}

func derefInt(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}
