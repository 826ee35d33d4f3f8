package source

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"bookmart/internal/adapters/util"
	"bookmart/internal/core/domain/models"
	"bookmart/internal/core/domain/ports"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"
)

// Ensure CatalogAdapter implements CatalogSource
var _ ports.CatalogSource = (*CatalogAdapter)(nil)

// CatalogAdapter walks the paginated HTML catalog and extracts one raw
// record per book, visiting each book's detail page for the product
// information table.
type CatalogAdapter struct {
	baseURL  string
	client   *http.Client
	delay    time.Duration
	maxPages int
	log      zerolog.Logger
}

func NewCatalogAdapter(baseURL string, timeout, delay time.Duration, maxPages int, log zerolog.Logger) *CatalogAdapter {
	return &CatalogAdapter{
		baseURL: strings.TrimRight(baseURL, "/") + "/",
		client: &http.Client{
			Transport: &util.LoggingTransport{Log: log},
			Timeout:   timeout,
		},
		delay:    delay,
		maxPages: maxPages,
		log:      log,
	}
}

// FetchRecords walks catalogue/page-N.html starting at page 1. The walk
// stops on a non-200 listing response, on a page without product articles,
// or when the pager has no "next" element. maxPages guards against runaway
// pagination.
func (a *CatalogAdapter) FetchRecords(ctx context.Context) ([]models.RawRecord, error) {
	base, err := url.Parse(a.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid catalog base URL %q: %w", a.baseURL, err)
	}

	var records []models.RawRecord
	for page := 1; page <= a.maxPages; page++ {
		// "Politeness" delay between listing pages
		if a.delay > 0 && page > 1 {
			time.Sleep(a.delay)
		}

		ref := &url.URL{Path: fmt.Sprintf("catalogue/page-%d.html", page)}
		pageURL := base.ResolveReference(ref).String()
		a.log.Info().Str("url", pageURL).Msg("scraping listing page")

		doc, status, err := a.fetchDocument(ctx, pageURL)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch listing page %s: %w", pageURL, err)
		}
		if status != http.StatusOK {
			a.log.Error().Str("url", pageURL).Int("status", status).Msg("failed to retrieve listing page")
			break
		}

		articles := doc.Find("article.product_pod")
		if articles.Length() == 0 {
			break
		}

		articles.Each(func(_ int, sel *goquery.Selection) {
			if rec, ok := a.extractBook(ctx, pageURL, sel); ok {
				records = append(records, rec)
			}
		})

		// Pagination: stop when no "next" button exists
		if doc.Find("li.next").Length() == 0 {
			break
		}
	}

	return records, nil
}

// extractBook reads the listing entry and follows the detail link for the
// remaining fields. A failed detail fetch skips the record; it never aborts
// the walk.
func (a *CatalogAdapter) extractBook(ctx context.Context, pageURL string, sel *goquery.Selection) (models.RawRecord, bool) {
	rec := models.RawRecord{
		Title:        sel.Find("h3 a").AttrOr("title", ""),
		Price:        strings.TrimSpace(sel.Find("p.price_color").Text()),
		Rating:       ratingClass(sel.Find("p.star-rating").AttrOr("class", "")),
		Availability: strings.TrimSpace(sel.Find("p.instock.availability").Text()),
	}
	rec.BookURL = resolveRef(pageURL, sel.Find("h3 a").AttrOr("href", ""))
	rec.BookThumbnailURL = resolveRef(pageURL, sel.Find("img").AttrOr("src", ""))

	doc, status, err := a.fetchDocument(ctx, rec.BookURL)
	if err != nil || status != http.StatusOK {
		a.log.Error().Str("url", rec.BookURL).Int("status", status).Err(err).
			Msg("failed to retrieve book detail page")
		return models.RawRecord{}, false
	}

	// Category: third breadcrumb item
	crumbs := doc.Find("ul.breadcrumb li")
	if crumbs.Length() >= 3 {
		rec.Category = strings.TrimSpace(crumbs.Eq(2).Text())
	}

	// Product description: the paragraph following the #product_description header
	if header := doc.Find("#product_description"); header.Length() > 0 {
		rec.ProductDescription = strings.TrimSpace(header.NextAllFiltered("p").First().Text())
	}

	// Product information table
	table := make(map[string]string)
	doc.Find("table.table-striped tr").Each(func(_ int, row *goquery.Selection) {
		header := strings.TrimSpace(row.Find("th").Text())
		value := strings.TrimSpace(row.Find("td").Text())
		table[header] = value
	})

	rec.UPC = table["UPC"]
	rec.ProductType = table["Product Type"]
	rec.PriceExclTax = table["Price (excl. tax)"]
	rec.PriceInclTax = table["Price (incl. tax)"]
	rec.Tax = table["Tax"]
	rec.AvailableQuantity = table["Availability"]
	rec.NoOfReviews = table["Number of reviews"]

	return rec, true
}

func (a *CatalogAdapter) fetchDocument(ctx context.Context, targetURL string) (*goquery.Document, int, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", targetURL, nil)
	if err != nil {
		return nil, 0, err
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, resp.StatusCode, nil
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to parse page %s: %w", targetURL, err)
	}
	return doc, resp.StatusCode, nil
}

// ratingClass picks the rating word out of the star-rating class list
// ("star-rating Three" -> "Three").
func ratingClass(classes string) string {
	for _, c := range strings.Fields(classes) {
		if c != "star-rating" {
			return c
		}
	}
	return ""
}

func resolveRef(pageURL, href string) string {
	if href == "" {
		return ""
	}
	base, err := url.Parse(pageURL)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}
