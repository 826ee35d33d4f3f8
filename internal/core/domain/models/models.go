package models

import "math"

// RawRecord is one catalog entry exactly as extracted by a source, before
// any typing or cleanup. Every field carries the raw text; a missing field
// is an empty string.
type RawRecord struct {
	Title              string `json:"title"`
	Price              string `json:"price"`
	Rating             string `json:"rating"`
	Availability       string `json:"availability"`
	Category           string `json:"category"`
	BookURL            string `json:"book_url"`
	BookThumbnailURL   string `json:"book_thumbnail_url"`
	ProductDescription string `json:"product_description"`
	UPC                string `json:"upc"`
	ProductType        string `json:"product_type"`
	PriceExclTax       string `json:"price_excl_tax"`
	PriceInclTax       string `json:"price_incl_tax"`
	Tax                string `json:"tax"`
	AvailableQuantity  string `json:"available_quantity"`
	NoOfReviews        string `json:"no_of_reviews"`
}

// Book is a normalized catalog record. Pointer fields are nullable: they
// stay nil when the source value was absent or unparseable, and are resolved
// by the reconciler (imputation, then defaulting).
type Book struct {
	Title              string
	Price              *float64
	PriceExclTax       *float64
	PriceInclTax       *float64
	Tax                *float64
	Rating             int
	Availability       bool
	Category           *string
	BookURL            string
	BookThumbnailURL   string
	ProductDescription *string
	UPC                *string
	ProductType        *string
	AvailableQuantity  *int
	NoOfReviews        int
}

// CleanReport aggregates the corrections applied during reconciliation.
type CleanReport struct {
	DuplicatesRemoved int
	UntitledDropped   int
	ValuesImputed     int
	EmptyGroupMisses  int
	TaxRepairs        int
	PriceRepairs      int
}

// Availability dimension natural-key labels.
const (
	StatusInStock    = "In Stock"
	StatusOutOfStock = "Out of Stock"
)

// AvailabilityStatus maps the staging boolean onto the availability_info
// natural key.
func AvailabilityStatus(inStock bool) string {
	if inStock {
		return StatusInStock
	}
	return StatusOutOfStock
}

// DetailKey is the natural key of a books_details row. Rows with a NULL UPC
// have no key: the fact join follows SQL null semantics, where NULL never
// equals NULL, so they cannot be matched.
type DetailKey struct {
	Title string
	UPC   string
}

// Round2 rounds a monetary value to two fractional digits.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
