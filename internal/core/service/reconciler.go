package service

import (
	"math"
	"strconv"
	"strings"

	"bookmart/internal/core/domain/models"

	"github.com/rs/zerolog"
)

// priceTolerance is the fixed policy for cross-field price arithmetic:
// disagreements within a penny are left alone.
const priceTolerance = 0.01

// Defaults applied to fields still missing after imputation.
const (
	defaultCategory    = "Others"
	defaultProductType = "Books"
)

// Reconciler cleans a normalized dataset as a whole: it removes exact
// duplicates, drops untitled records, fills missing prices from category
// statistics, applies field defaults, and repairs cross-field price
// arithmetic. It never aborts a run; corrections are counted and logged.
type Reconciler struct {
	log zerolog.Logger
}

func NewReconciler(log zerolog.Logger) *Reconciler {
	return &Reconciler{log: log}
}

// Reconcile runs the cleanup passes in their required order. Later passes
// depend on earlier ones: imputation must see the deduplicated set, and the
// arithmetic repairs must see imputed values.
func (r *Reconciler) Reconcile(books []models.Book) ([]models.Book, models.CleanReport) {
	var report models.CleanReport

	books = r.dropDuplicates(books, &report)
	books = r.dropUntitled(books, &report)
	r.imputePrices(books, &report)
	r.applyDefaults(books)
	r.repairTaxArithmetic(books, &report)
	r.repairPriceMismatch(books, &report)

	return books, report
}

// dropDuplicates removes records that are exact duplicates across all
// fields, keeping the first occurrence and preserving order.
func (r *Reconciler) dropDuplicates(books []models.Book, report *models.CleanReport) []models.Book {
	seen := make(map[string]bool, len(books))
	out := books[:0]
	for _, b := range books {
		key := dedupKey(b)
		if seen[key] {
			report.DuplicatesRemoved++
			continue
		}
		seen[key] = true
		out = append(out, b)
	}
	if report.DuplicatesRemoved > 0 {
		r.log.Info().Int("records", report.DuplicatesRemoved).Msg("dropped duplicate records")
	}
	return out
}

func (r *Reconciler) dropUntitled(books []models.Book, report *models.CleanReport) []models.Book {
	out := books[:0]
	for _, b := range books {
		if b.Title == "" {
			report.UntitledDropped++
			continue
		}
		out = append(out, b)
	}
	if report.UntitledDropped > 0 {
		r.log.Info().Int("records", report.UntitledDropped).Msg("dropped records without a title")
	}
	return out
}

var priceFields = []struct {
	name string
	get  func(b *models.Book) **float64
}{
	{"price", func(b *models.Book) **float64 { return &b.Price }},
	{"price_excl_tax", func(b *models.Book) **float64 { return &b.PriceExclTax }},
	{"price_incl_tax", func(b *models.Book) **float64 { return &b.PriceInclTax }},
	{"tax", func(b *models.Book) **float64 { return &b.Tax }},
}

// imputePrices fills each missing price field with the mean of that field's
// non-null values within the record's category. Two explicit passes: first
// the per-category means, then the application. A category with no non-null
// value for a field is a documented degraded outcome; the field stays nil.
func (r *Reconciler) imputePrices(books []models.Book, report *models.CleanReport) {
	type agg struct {
		sum float64
		n   int
	}

	for _, f := range priceFields {
		means := make(map[string]agg)
		for i := range books {
			v := *f.get(&books[i])
			if v == nil {
				continue
			}
			key := groupKey(books[i].Category)
			a := means[key]
			a.sum += *v
			a.n++
			means[key] = a
		}

		for i := range books {
			slot := f.get(&books[i])
			if *slot != nil {
				continue
			}
			a := means[groupKey(books[i].Category)]
			if a.n == 0 {
				report.EmptyGroupMisses++
				r.log.Warn().Str("field", f.name).Str("category", groupKey(books[i].Category)).
					Msg("no values to impute from in category, field stays null")
				continue
			}
			mean := a.sum / float64(a.n)
			*slot = &mean
			report.ValuesImputed++
		}
	}
}

// applyDefaults resolves the remaining nullable fields: category,
// product type, and quantity coercion to 0.
func (r *Reconciler) applyDefaults(books []models.Book) {
	for i := range books {
		b := &books[i]
		if b.Category == nil {
			c := defaultCategory
			b.Category = &c
		}
		if b.ProductType == nil {
			p := defaultProductType
			b.ProductType = &p
		}
		if b.AvailableQuantity == nil {
			q := 0
			b.AvailableQuantity = &q
		}
	}
}

// repairTaxArithmetic checks price_incl_tax - tax == price_excl_tax within
// tolerance. On disagreement price_incl_tax and tax are the source of truth
// and price_excl_tax is rewritten.
func (r *Reconciler) repairTaxArithmetic(books []models.Book, report *models.CleanReport) {
	for i := range books {
		b := &books[i]
		if b.PriceInclTax == nil || b.Tax == nil || b.PriceExclTax == nil {
			continue
		}
		diff := *b.PriceInclTax - *b.Tax - *b.PriceExclTax
		if math.Abs(diff) > priceTolerance {
			fixed := *b.PriceInclTax - *b.Tax
			b.PriceExclTax = &fixed
			report.TaxRepairs++
		}
	}
	if report.TaxRepairs > 0 {
		r.log.Warn().Int("records", report.TaxRepairs).
			Msg("price inconsistency found (price_incl_tax - tax != price_excl_tax)")
	}
}

// repairPriceMismatch checks price == price_incl_tax within tolerance and
// rewrites price from price_incl_tax on disagreement.
func (r *Reconciler) repairPriceMismatch(books []models.Book, report *models.CleanReport) {
	for i := range books {
		b := &books[i]
		if b.Price == nil || b.PriceInclTax == nil {
			continue
		}
		if math.Abs(*b.Price-*b.PriceInclTax) > priceTolerance {
			fixed := *b.PriceInclTax
			b.Price = &fixed
			report.PriceRepairs++
		}
	}
	if report.PriceRepairs > 0 {
		r.log.Warn().Int("records", report.PriceRepairs).
			Msg("mismatch found between price and price_incl_tax")
	}
}

// groupKey buckets records by category for imputation; records still
// missing a category group together under the empty key.
func groupKey(c *string) string {
	if c == nil {
		return ""
	}
	return *c
}

// dedupKey builds a value-identity key over every field so exact duplicates
// collapse regardless of pointer identity.
func dedupKey(b models.Book) string {
	return strings.Join([]string{
		b.Title,
		fmtFloatPtr(b.Price),
		fmtFloatPtr(b.PriceExclTax),
		fmtFloatPtr(b.PriceInclTax),
		fmtFloatPtr(b.Tax),
		strconv.Itoa(b.Rating),
		strconv.FormatBool(b.Availability),
		fmtStrPtr(b.Category),
		b.BookURL,
		b.BookThumbnailURL,
		fmtStrPtr(b.ProductDescription),
		fmtStrPtr(b.UPC),
		fmtStrPtr(b.ProductType),
		fmtIntPtr(b.AvailableQuantity),
		strconv.Itoa(b.NoOfReviews),
	}, "\x1f")
}

func fmtFloatPtr(p *float64) string {
	if p == nil {
		return "\x00"
	}
	return strconv.FormatFloat(*p, 'f', -1, 64)
}

func fmtStrPtr(p *string) string {
	if p == nil {
		return "\x00"
	}
	return *p
}

func fmtIntPtr(p *int) string {
	if p == nil {
		return "\x00"
	}
	return strconv.Itoa(*p)
}
