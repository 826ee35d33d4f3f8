package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"bookmart/internal/adapters/store"
	"bookmart/internal/config"
	"bookmart/internal/core/domain/models"

	"github.com/rs/zerolog"
)

func TestRun_EndToEnd(t *testing.T) {
	dir := t.TempDir()

	attic := models.RawRecord{
		Title:             "A Light in the Attic",
		Price:             "Â£51.77",
		Rating:            "Three",
		Availability:      "In stock",
		Category:          "Poetry",
		BookURL:           "http://example.com/attic",
		BookThumbnailURL:  "http://example.com/attic.jpg",
		UPC:               "a897fe39b1053632",
		ProductType:       "Books",
		PriceExclTax:      "£50.77",
		PriceInclTax:      "£51.77",
		Tax:               "£1.00",
		AvailableQuantity: "In stock (22 available)",
		NoOfReviews:       "0",
	}
	dollar := models.RawRecord{
		Title:        "Dollar Book",
		Price:        "$10.00",
		Availability: "Out of stock",
		Category:     "Poetry",
		BookURL:      "http://example.com/dollar",
		UPC:          "b000000000000000",
		PriceExclTax: "$10.00",
		PriceInclTax: "$10.00",
		Tax:          "$0.00",
		NoOfReviews:  "5",
	}
	untitled := models.RawRecord{
		Price:    "£1.00",
		Category: "Poetry",
	}

	// attic appears twice: the duplicate must collapse
	records := []models.RawRecord{attic, attic, untitled, dollar}
	data, err := json.Marshal(records)
	if err != nil {
		t.Fatal(err)
	}
	fixture := filepath.Join(dir, "records.json")
	if err := os.WriteFile(fixture, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg := &config.Config{
		LogLevel:        "error",
		SourceType:      config.SourceFile,
		SourceFilePath:  fixture,
		DatabaseDSN:     "file:" + filepath.Join(dir, "etl.db"),
		MaxCatalogPages: 1,
		HTTPTimeoutSec:  1,
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("test config invalid: %v", err)
	}

	ctx := context.Background()
	var logBuf bytes.Buffer
	if err := Run(ctx, cfg, zerolog.New(&logBuf)); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if !strings.Contains(logBuf.String(), "empty_group_misses") {
		t.Errorf("reconciliation summary is missing the empty-group imputation counter")
	}

	// Re-open the store and verify what the run committed
	s, err := store.Open(cfg.DatabaseDSN)
	if err != nil {
		t.Fatalf("failed to reopen store: %v", err)
	}
	defer s.Close()

	rows, err := s.ListRawBooks(ctx)
	if err != nil {
		t.Fatalf("failed to read staging: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 staged rows (duplicate collapsed, untitled dropped), got %d", len(rows))
	}

	var dollarRow *models.RawBook
	for _, r := range rows {
		if r.Title == "" {
			t.Errorf("untitled record leaked into staging")
		}
		if r.Title == "Dollar Book" {
			dollarRow = r
		}
	}
	if dollarRow == nil {
		t.Fatal("Dollar Book missing from staging")
	}
	if dollarRow.Price == nil || *dollarRow.Price != 7.5 {
		t.Errorf("expected $10.00 to normalize to 7.5 pounds, got %v", dollarRow.Price)
	}
	if dollarRow.Rating != 0 {
		t.Errorf("expected missing rating to default to 0, got %d", dollarRow.Rating)
	}
	if dollarRow.AvailableQuantity != 0 {
		t.Errorf("expected missing quantity to default to 0, got %d", dollarRow.AvailableQuantity)
	}
	if dollarRow.ProductType != "Books" {
		t.Errorf("expected missing product type to default to Books, got %q", dollarRow.ProductType)
	}

	catIDs, err := s.CategoryIDs(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(catIDs) != 1 {
		t.Errorf("expected 1 category dimension row, got %d", len(catIDs))
	}
	statusIDs, err := s.AvailabilityIDs(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(statusIDs) != 2 {
		t.Errorf("expected both availability statuses, got %d", len(statusIDs))
	}

	facts, err := s.ListFacts(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(facts) != 2 {
		t.Fatalf("expected 2 fact rows, got %d", len(facts))
	}
	for _, f := range facts {
		if f.BookDetailsID == nil || f.CategoryID == nil || f.RatingID == nil ||
			f.AvailabilityID == nil || f.ProductTypeID == nil {
			t.Errorf("expected every fact foreign key to resolve, got %+v", f)
		}
	}
}
