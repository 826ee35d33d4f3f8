package service

import (
	"regexp"
	"strconv"
	"strings"

	"bookmart/internal/core/domain/models"

	"github.com/rs/zerolog"
)

// Currency normalization policy: every monetary field ends up in pounds.
// Dollar prices convert at a fixed assumed rate.
const (
	referenceCurrency = "£"
	alternateCurrency = "$"
	usdToGbpRate      = 0.75
)

var ratingWords = map[string]int{
	"One":   1,
	"Two":   2,
	"Three": 3,
	"Four":  4,
	"Five":  5,
}

var quantityPattern = regexp.MustCompile(`(\d+)`)

// Normalizer converts one raw record's scalar fields into typed values. It
// never fails: a malformed field degrades to its documented default and the
// anomaly is logged.
type Normalizer struct {
	log zerolog.Logger
}

func NewNormalizer(log zerolog.Logger) *Normalizer {
	return &Normalizer{log: log}
}

// Normalize types a single raw record.
func (n *Normalizer) Normalize(rec models.RawRecord) models.Book {
	return models.Book{
		Title:              strings.TrimSpace(rec.Title),
		Price:              n.parsePrice(rec.Price, rec.Title),
		PriceExclTax:       n.parsePrice(rec.PriceExclTax, rec.Title),
		PriceInclTax:       n.parsePrice(rec.PriceInclTax, rec.Title),
		Tax:                n.parsePrice(rec.Tax, rec.Title),
		Rating:             parseRating(rec.Rating),
		Availability:       strings.Contains(rec.Availability, "In stock"),
		Category:           optional(rec.Category),
		BookURL:            rec.BookURL,
		BookThumbnailURL:   rec.BookThumbnailURL,
		ProductDescription: optional(rec.ProductDescription),
		UPC:                optional(rec.UPC),
		ProductType:        optional(rec.ProductType),
		AvailableQuantity:  parseQuantity(rec.AvailableQuantity),
		NoOfReviews:        n.parseReviews(rec.NoOfReviews, rec.Title),
	}
}

// parsePrice converts a price string to pounds. "£"-prefixed values parse
// directly; "$"-prefixed values convert at the fixed rate and round to two
// decimals. Anything else is unparseable: the field stays nil for later
// imputation.
func (n *Normalizer) parsePrice(raw, title string) *float64 {
	// Strip mojibake artifacts ("Â" shows up in front of the pound sign)
	// and surrounding whitespace.
	s := strings.TrimSpace(strings.ReplaceAll(raw, "Â", ""))
	if s == "" {
		return nil
	}

	switch {
	case strings.HasPrefix(s, referenceCurrency):
		v, err := strconv.ParseFloat(strings.TrimPrefix(s, referenceCurrency), 64)
		if err != nil {
			n.log.Error().Str("title", title).Str("price", s).Err(err).Msg("error converting price")
			return nil
		}
		return &v
	case strings.HasPrefix(s, alternateCurrency):
		v, err := strconv.ParseFloat(strings.TrimPrefix(s, alternateCurrency), 64)
		if err != nil {
			n.log.Error().Str("title", title).Str("price", s).Err(err).Msg("error converting price")
			return nil
		}
		converted := models.Round2(v * usdToGbpRate)
		return &converted
	default:
		n.log.Error().Str("title", title).Str("price", s).Msg("unknown currency in price")
		return nil
	}
}

// parseRating maps the ordinal word vocabulary onto 1..5; anything else,
// including an absent rating, is 0 (unknown).
func parseRating(raw string) int {
	return ratingWords[strings.TrimSpace(raw)]
}

// parseQuantity extracts the first integer found in the free-text
// availability detail ("In stock (22 available)"). No match means nil; the
// reconciler later coerces nil to 0.
func parseQuantity(raw string) *int {
	match := quantityPattern.FindString(raw)
	if match == "" {
		return nil
	}
	v, err := strconv.Atoi(match)
	if err != nil {
		return nil
	}
	return &v
}

func (n *Normalizer) parseReviews(raw, title string) int {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		n.log.Error().Str("title", title).Str("no_of_reviews", s).Err(err).Msg("error converting number of reviews")
		return 0
	}
	return v
}

// optional maps an empty source field to nil.
func optional(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	trimmed := strings.TrimSpace(s)
	return &trimmed
}
