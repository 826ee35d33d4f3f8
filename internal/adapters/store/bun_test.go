package store

import (
	"context"
	"path/filepath"
	"testing"

	"bookmart/internal/core/domain/models"
	"bookmart/internal/core/service"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *BunStore {
	t.Helper()
	s, err := Open("file:" + filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func fptr(v float64) *float64 { return &v }
func sptr(s string) *string   { return &s }

func stagedBook(title, upc, category string, rating int, inStock bool) *models.RawBook {
	return &models.RawBook{
		Title:             title,
		Price:             fptr(10.00),
		Rating:            rating,
		Availability:      inStock,
		Category:          category,
		BookURL:           "http://example.com/" + upc,
		BookThumbnailURL:  "http://example.com/" + upc + ".jpg",
		UPC:               sptr(upc),
		ProductType:       "Books",
		PriceExclTax:      fptr(9.00),
		PriceInclTax:      fptr(10.00),
		Tax:               fptr(1.00),
		AvailableQuantity: 3,
		NoOfReviews:       0,
	}
}

func seedStaging(t *testing.T, s *BunStore, rows ...*models.RawBook) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, s.EnsureStaging(ctx))
	require.NoError(t, s.InsertRawBooks(ctx, rows))
}

func TestBunStore_StagingRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	seedStaging(t, s,
		stagedBook("Alpha", "upc-1", "Poetry", 3, true),
		stagedBook("Beta", "upc-2", "History", 5, false),
	)

	rows, err := s.ListRawBooks(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "Alpha", rows[0].Title)
	assert.Equal(t, "Beta", rows[1].Title)
	assert.NotZero(t, rows[0].ID)
	require.NotNil(t, rows[0].Price)
	assert.InDelta(t, 10.00, *rows[0].Price, 1e-9)
	require.NotNil(t, rows[1].UPC)
	assert.Equal(t, "upc-2", *rows[1].UPC)
	assert.False(t, rows[1].Availability)
}

func TestBunStore_EnsureStagingIsIdempotent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.EnsureStaging(ctx))
	require.NoError(t, s.EnsureStaging(ctx))
	seedStaging(t, s, stagedBook("Alpha", "upc-1", "Poetry", 3, true))
	require.NoError(t, s.EnsureStaging(ctx))

	rows, err := s.ListRawBooks(ctx)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestWarehouseBuild_PopulatesStarSchema(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	seedStaging(t, s,
		stagedBook("Alpha", "upc-1", "Poetry", 3, true),
		stagedBook("Beta", "upc-2", "History", 5, false),
		stagedBook("Gamma", "upc-3", "Poetry", 3, true),
	)

	builder := service.NewWarehouseBuilder(s, s, s, zerolog.Nop())
	require.NoError(t, builder.Build(ctx))

	catIDs, err := s.CategoryIDs(ctx)
	require.NoError(t, err)
	assert.Len(t, catIDs, 2)

	ratingIDs, err := s.RatingIDs(ctx)
	require.NoError(t, err)
	assert.Len(t, ratingIDs, 2)

	statusIDs, err := s.AvailabilityIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, len(statusIDs))
	assert.Contains(t, statusIDs, models.StatusInStock)
	assert.Contains(t, statusIDs, models.StatusOutOfStock)

	typeIDs, err := s.ProductTypeIDs(ctx)
	require.NoError(t, err)
	assert.Len(t, typeIDs, 1)

	detailCount, err := s.db.NewSelect().Model((*models.BookDetail)(nil)).Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, detailCount)

	var facts []*models.BookFact
	require.NoError(t, s.db.NewSelect().Model(&facts).Order("id ASC").Scan(ctx))
	require.Len(t, facts, 3)

	for _, f := range facts {
		require.NotNil(t, f.BookDetailsID)
		require.NotNil(t, f.CategoryID)
		require.NotNil(t, f.RatingID)
		require.NotNil(t, f.AvailabilityID)
		require.NotNil(t, f.ProductTypeID)
		require.NotNil(t, f.PriceInclTax)
		require.NotNil(t, f.Tax)
		require.NotNil(t, f.PriceExclTax)
		assert.LessOrEqual(t,
			(*f.PriceInclTax)-(*f.Tax)-(*f.PriceExclTax), 0.01)
	}

	assert.Equal(t, *facts[0].CategoryID, *facts[2].CategoryID, "Alpha and Gamma share the Poetry key")
	assert.NotEqual(t, *facts[0].CategoryID, *facts[1].CategoryID)
}

func TestWarehouseBuild_DimensionsAreIdempotent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	seedStaging(t, s,
		stagedBook("Alpha", "upc-1", "Poetry", 3, true),
		stagedBook("Beta", "upc-2", "History", 5, false),
	)

	builder := service.NewWarehouseBuilder(s, s, s, zerolog.Nop())
	require.NoError(t, builder.Build(ctx))
	require.NoError(t, builder.Build(ctx))

	catCount, err := s.db.NewSelect().Model((*models.CategoryInfo)(nil)).Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, catCount, "category_info natural keys stay unique across rebuilds")

	ratingCount, err := s.db.NewSelect().Model((*models.RatingInfo)(nil)).Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, ratingCount)

	statusCount, err := s.db.NewSelect().Model((*models.AvailabilityInfo)(nil)).Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, statusCount)

	typeCount, err := s.db.NewSelect().Model((*models.ProductType)(nil)).Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, typeCount)

	// books_details is the documented exception: it is written per staging
	// row, so a rebuild without clearing duplicates detail rows.
	detailCount, err := s.db.NewSelect().Model((*models.BookDetail)(nil)).Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, detailCount)
}

func TestWarehouseBuild_NullUPCNeverResolvesDetailKey(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	noUPC := stagedBook("Alpha", "upc-1", "Poetry", 3, true)
	noUPC.UPC = nil
	seedStaging(t, s,
		noUPC,
		stagedBook("Beta", "upc-2", "History", 5, false),
	)

	builder := service.NewWarehouseBuilder(s, s, s, zerolog.Nop())
	require.NoError(t, builder.Build(ctx))

	var facts []*models.BookFact
	require.NoError(t, s.db.NewSelect().Model(&facts).Order("id ASC").Scan(ctx))
	require.Len(t, facts, 2)

	assert.Nil(t, facts[0].BookDetailsID, "a null upc never joins books_details")
	assert.NotNil(t, facts[0].CategoryID, "the scalar keys still resolve")
	assert.NotNil(t, facts[0].RatingID)
	assert.NotNil(t, facts[0].AvailabilityID)
	assert.NotNil(t, facts[0].ProductTypeID)
	assert.NotNil(t, facts[1].BookDetailsID)
}

func TestWarehouseBuild_UnresolvedKeysYieldNullForeignKeys(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	seedStaging(t, s, stagedBook("Alpha", "upc-1", "Poetry", 3, true))

	builder := service.NewWarehouseBuilder(s, s, s, zerolog.Nop())
	require.NoError(t, builder.Build(ctx))

	// A staging row that arrives after the dimension pass: its category and
	// detail keys resolve to nothing during the next fact pass.
	require.NoError(t, s.InsertRawBooks(ctx, []*models.RawBook{
		stagedBook("Delta", "upc-9", "Sci-Fi", 3, true),
	}))
	require.NoError(t, builder.BuildFacts(ctx))

	var facts []*models.BookFact
	require.NoError(t, s.db.NewSelect().Model(&facts).Order("id ASC").Scan(ctx))
	require.Len(t, facts, 3)

	orphan := facts[len(facts)-1]
	assert.Nil(t, orphan.CategoryID, "unknown category resolves to a null key")
	assert.Nil(t, orphan.BookDetailsID, "unknown detail pair resolves to a null key")
	assert.NotNil(t, orphan.RatingID, "known rating still resolves")
	assert.NotNil(t, orphan.ProductTypeID)
	assert.NotNil(t, orphan.AvailabilityID)
}
