package models

import (
	"time"

	"github.com/uptrace/bun"
)

// RawBook is one row of the flat staging relation raw_books.
type RawBook struct {
	bun.BaseModel `bun:"table:raw_books,alias:rb"`

	ID                 int64     `bun:"id,pk,autoincrement"`
	Title              string    `bun:"title,notnull"`
	Price              *float64  `bun:"price"`
	Rating             int       `bun:"rating"`
	Availability       bool      `bun:"availability"`
	Category           string    `bun:"category"`
	BookURL            string    `bun:"book_url"`
	BookThumbnailURL   string    `bun:"book_thumbnail_url"`
	ProductDescription *string   `bun:"product_description"`
	UPC                *string   `bun:"upc"`
	ProductType        string    `bun:"product_type"`
	PriceExclTax       *float64  `bun:"price_excl_tax"`
	PriceInclTax       *float64  `bun:"price_incl_tax"`
	Tax                *float64  `bun:"tax"`
	AvailableQuantity  int       `bun:"available_quantity"`
	NoOfReviews        int       `bun:"no_of_reviews"`
	CreatedAt          time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

// ProductType is the product_type dimension, keyed by the type name.
type ProductType struct {
	bun.BaseModel `bun:"table:product_type,alias:pt"`

	ID   int64  `bun:"id,pk,autoincrement"`
	Name string `bun:"product_type_name,unique,notnull"`
}

// CategoryInfo is the category_info dimension, keyed by the category name.
type CategoryInfo struct {
	bun.BaseModel `bun:"table:category_info,alias:ci"`

	ID   int64  `bun:"id,pk,autoincrement"`
	Name string `bun:"category_name,unique,notnull"`
}

// RatingInfo is the rating_info dimension, keyed by the integer rating.
type RatingInfo struct {
	bun.BaseModel `bun:"table:rating_info,alias:ri"`

	ID    int64 `bun:"id,pk,autoincrement"`
	Value int   `bun:"rating_value,unique,notnull"`
}

// AvailabilityInfo is the availability_info dimension, keyed by the
// "In Stock"/"Out of Stock" status label.
type AvailabilityInfo struct {
	bun.BaseModel `bun:"table:availability_info,alias:ai"`

	ID     int64  `bun:"id,pk,autoincrement"`
	Status string `bun:"availability_status,unique,notnull"`
}

// BookDetail is the books_details dimension. Unlike the scalar dimensions it
// is written once per staging row; its (title, upc) pair acts as the natural
// key when facts resolve against it.
type BookDetail struct {
	bun.BaseModel `bun:"table:books_details,alias:bd"`

	ID                 int64   `bun:"id,pk,autoincrement"`
	Title              string  `bun:"title,notnull"`
	UPC                *string `bun:"upc"`
	ProductDescription *string `bun:"product_description"`
	BookURL            string  `bun:"book_url"`
	BookThumbnailURL   string  `bun:"book_thumbnail_url"`
	NoOfReviews        int     `bun:"no_of_reviews"`
}

// BookFact is one books_fact row: the price measures and quantity for a
// single staged record, referencing each dimension by surrogate key. Foreign
// keys are nullable so that a row whose natural key failed to resolve is
// kept rather than dropped.
type BookFact struct {
	bun.BaseModel `bun:"table:books_fact,alias:bf"`

	ID                int64     `bun:"id,pk,autoincrement"`
	BookDetailsID     *int64    `bun:"books_details_id"`
	Price             *float64  `bun:"price"`
	PriceExclTax      *float64  `bun:"price_excl_tax"`
	PriceInclTax      *float64  `bun:"price_incl_tax"`
	Tax               *float64  `bun:"tax"`
	AvailableQuantity int       `bun:"available_quantity"`
	CategoryID        *int64    `bun:"category_id"`
	RatingID          *int64    `bun:"rating_id"`
	AvailabilityID    *int64    `bun:"availability_id"`
	ProductTypeID     *int64    `bun:"product_type_id"`
	CreatedAt         time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`

	BookDetails  *BookDetail       `bun:"rel:belongs-to,join:books_details_id=id"`
	CategoryInfo *CategoryInfo     `bun:"rel:belongs-to,join:category_id=id"`
	RatingInfo   *RatingInfo       `bun:"rel:belongs-to,join:rating_id=id"`
	AvailInfo    *AvailabilityInfo `bun:"rel:belongs-to,join:availability_id=id"`
	ProdType     *ProductType      `bun:"rel:belongs-to,join:product_type_id=id"`
}
