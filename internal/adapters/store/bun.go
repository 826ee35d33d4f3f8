package store

import (
	"context"
	"database/sql"
	"fmt"

	"bookmart/internal/core/domain/models"
	"bookmart/internal/core/domain/ports"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
	"github.com/uptrace/bun/schema"
)

// Ensure BunStore provides every store capability the pipeline needs
var (
	_ ports.StagingWriter       = (*BunStore)(nil)
	_ ports.StagingReader       = (*BunStore)(nil)
	_ ports.DimensionRepository = (*BunStore)(nil)
	_ ports.FactRepository      = (*BunStore)(nil)
)

// BunStore implements the staging, dimension and fact repositories on a
// bun.DB handle. All DDL is create-if-absent, so pointing it at an existing
// schema is safe.
type BunStore struct {
	db *bun.DB
}

func NewBunStore(sqldb *sql.DB, dialect schema.Dialect) *BunStore {
	return &BunStore{db: bun.NewDB(sqldb, dialect)}
}

// Open opens a sqlite-backed store at the given DSN.
func Open(dsn string) (*BunStore, error) {
	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}

	if _, err := sqldb.Exec("PRAGMA foreign_keys = ON;"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return NewBunStore(sqldb, sqlitedialect.New()), nil
}

func (s *BunStore) Close() error {
	return s.db.Close()
}

// StagingWriter / StagingReader implementation

func (s *BunStore) EnsureStaging(ctx context.Context) error {
	if _, err := s.db.NewCreateTable().Model((*models.RawBook)(nil)).IfNotExists().Exec(ctx); err != nil {
		return fmt.Errorf("failed to create raw_books table: %w", err)
	}
	return nil
}

func (s *BunStore) InsertRawBooks(ctx context.Context, rows []*models.RawBook) error {
	if len(rows) == 0 {
		return nil
	}
	if _, err := s.db.NewInsert().Model(&rows).Exec(ctx); err != nil {
		return err
	}
	return nil
}

func (s *BunStore) ListRawBooks(ctx context.Context) ([]*models.RawBook, error) {
	var rows []*models.RawBook
	if err := s.db.NewSelect().Model(&rows).Order("id ASC").Scan(ctx); err != nil {
		return nil, err
	}
	return rows, nil
}

// DimensionRepository implementation

func (s *BunStore) EnsureDimensions(ctx context.Context) error {
	dimensions := []struct {
		name  string
		model interface{}
	}{
		{"product_type", (*models.ProductType)(nil)},
		{"category_info", (*models.CategoryInfo)(nil)},
		{"rating_info", (*models.RatingInfo)(nil)},
		{"availability_info", (*models.AvailabilityInfo)(nil)},
		{"books_details", (*models.BookDetail)(nil)},
	}
	for _, d := range dimensions {
		if _, err := s.db.NewCreateTable().Model(d.model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("failed to create %s table: %w", d.name, err)
		}
	}
	return nil
}

func (s *BunStore) InsertProductTypes(ctx context.Context, names []string) error {
	if len(names) == 0 {
		return nil
	}
	rows := make([]models.ProductType, 0, len(names))
	for _, n := range names {
		rows = append(rows, models.ProductType{Name: n})
	}
	_, err := s.db.NewInsert().Model(&rows).
		On("CONFLICT (product_type_name) DO NOTHING").
		Exec(ctx)
	return err
}

func (s *BunStore) InsertCategories(ctx context.Context, names []string) error {
	if len(names) == 0 {
		return nil
	}
	rows := make([]models.CategoryInfo, 0, len(names))
	for _, n := range names {
		rows = append(rows, models.CategoryInfo{Name: n})
	}
	_, err := s.db.NewInsert().Model(&rows).
		On("CONFLICT (category_name) DO NOTHING").
		Exec(ctx)
	return err
}

func (s *BunStore) InsertRatings(ctx context.Context, values []int) error {
	if len(values) == 0 {
		return nil
	}
	rows := make([]models.RatingInfo, 0, len(values))
	for _, v := range values {
		rows = append(rows, models.RatingInfo{Value: v})
	}
	_, err := s.db.NewInsert().Model(&rows).
		On("CONFLICT (rating_value) DO NOTHING").
		Exec(ctx)
	return err
}

func (s *BunStore) InsertAvailabilities(ctx context.Context, statuses []string) error {
	if len(statuses) == 0 {
		return nil
	}
	rows := make([]models.AvailabilityInfo, 0, len(statuses))
	for _, st := range statuses {
		rows = append(rows, models.AvailabilityInfo{Status: st})
	}
	_, err := s.db.NewInsert().Model(&rows).
		On("CONFLICT (availability_status) DO NOTHING").
		Exec(ctx)
	return err
}

func (s *BunStore) InsertBookDetails(ctx context.Context, details []*models.BookDetail) error {
	if len(details) == 0 {
		return nil
	}
	_, err := s.db.NewInsert().Model(&details).Exec(ctx)
	return err
}

func (s *BunStore) ProductTypeIDs(ctx context.Context) (map[string]int64, error) {
	var rows []models.ProductType
	if err := s.db.NewSelect().Model(&rows).Scan(ctx); err != nil {
		return nil, err
	}
	ids := make(map[string]int64, len(rows))
	for _, r := range rows {
		ids[r.Name] = r.ID
	}
	return ids, nil
}

func (s *BunStore) CategoryIDs(ctx context.Context) (map[string]int64, error) {
	var rows []models.CategoryInfo
	if err := s.db.NewSelect().Model(&rows).Scan(ctx); err != nil {
		return nil, err
	}
	ids := make(map[string]int64, len(rows))
	for _, r := range rows {
		ids[r.Name] = r.ID
	}
	return ids, nil
}

func (s *BunStore) RatingIDs(ctx context.Context) (map[int]int64, error) {
	var rows []models.RatingInfo
	if err := s.db.NewSelect().Model(&rows).Scan(ctx); err != nil {
		return nil, err
	}
	ids := make(map[int]int64, len(rows))
	for _, r := range rows {
		ids[r.Value] = r.ID
	}
	return ids, nil
}

func (s *BunStore) AvailabilityIDs(ctx context.Context) (map[string]int64, error) {
	var rows []models.AvailabilityInfo
	if err := s.db.NewSelect().Model(&rows).Scan(ctx); err != nil {
		return nil, err
	}
	ids := make(map[string]int64, len(rows))
	for _, r := range rows {
		ids[r.Status] = r.ID
	}
	return ids, nil
}

// BookDetailIDs maps each (title, upc) pair to its surrogate id. Rows with a
// NULL upc are omitted, since the fact join can never match them. When the
// dimension holds duplicate pairs the earliest row wins.
func (s *BunStore) BookDetailIDs(ctx context.Context) (map[models.DetailKey]int64, error) {
	var rows []models.BookDetail
	if err := s.db.NewSelect().Model(&rows).Order("id ASC").Scan(ctx); err != nil {
		return nil, err
	}
	ids := make(map[models.DetailKey]int64, len(rows))
	for _, r := range rows {
		if r.UPC == nil {
			continue
		}
		key := models.DetailKey{Title: r.Title, UPC: *r.UPC}
		if _, ok := ids[key]; !ok {
			ids[key] = r.ID
		}
	}
	return ids, nil
}

// FactRepository implementation

func (s *BunStore) EnsureFacts(ctx context.Context) error {
	if _, err := s.db.NewCreateTable().Model((*models.BookFact)(nil)).IfNotExists().WithForeignKeys().Exec(ctx); err != nil {
		return fmt.Errorf("failed to create books_fact table: %w", err)
	}
	return nil
}

func (s *BunStore) InsertFacts(ctx context.Context, facts []*models.BookFact) error {
	if len(facts) == 0 {
		return nil
	}
	_, err := s.db.NewInsert().Model(&facts).Exec(ctx)
	return err
}

// ListFacts returns every fact row in insertion order.
func (s *BunStore) ListFacts(ctx context.Context) ([]*models.BookFact, error) {
	var facts []*models.BookFact
	if err := s.db.NewSelect().Model(&facts).Order("id ASC").Scan(ctx); err != nil {
		return nil, err
	}
	return facts, nil
}
