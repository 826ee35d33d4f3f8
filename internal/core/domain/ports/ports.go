package ports

import (
	"bookmart/internal/core/domain/models"
	"context"
)

// CatalogSource produces the raw catalog records for one run.
type CatalogSource interface {
	FetchRecords(ctx context.Context) ([]models.RawRecord, error)
}

// StagingWriter is the write capability over the raw_books staging relation.
type StagingWriter interface {
	EnsureStaging(ctx context.Context) error
	InsertRawBooks(ctx context.Context, rows []*models.RawBook) error
}

// StagingReader is the read capability over the staging relation. Warehouse
// builders go through it so they only ever see committed staging state.
type StagingReader interface {
	ListRawBooks(ctx context.Context) ([]*models.RawBook, error)
}

// DimensionRepository owns the five dimension tables. The scalar Insert
// methods have insert-if-absent semantics: a natural key that already exists
// is skipped, never an error. InsertBookDetails is a plain insert (one row
// per staging row).
type DimensionRepository interface {
	EnsureDimensions(ctx context.Context) error

	InsertProductTypes(ctx context.Context, names []string) error
	InsertCategories(ctx context.Context, names []string) error
	InsertRatings(ctx context.Context, values []int) error
	InsertAvailabilities(ctx context.Context, statuses []string) error
	InsertBookDetails(ctx context.Context, details []*models.BookDetail) error

	ProductTypeIDs(ctx context.Context) (map[string]int64, error)
	CategoryIDs(ctx context.Context) (map[string]int64, error)
	RatingIDs(ctx context.Context) (map[int]int64, error)
	AvailabilityIDs(ctx context.Context) (map[string]int64, error)
	BookDetailIDs(ctx context.Context) (map[models.DetailKey]int64, error)
}

// FactRepository owns the books_fact table.
type FactRepository interface {
	EnsureFacts(ctx context.Context) error
	InsertFacts(ctx context.Context, facts []*models.BookFact) error
}
