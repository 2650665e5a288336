package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultAvailability is the number of copies a book gets when none is given.
const DefaultAvailability = 10

// PriceScale is the number of decimal places a price may carry.
const PriceScale = 2

func init() {
	// prices travel as JSON numbers, not strings
	decimal.MarshalJSONWithoutQuotes = true
}

type Book struct {
	ID           string          `json:"id"`
	Title        string          `json:"title"`
	Author       string          `json:"author"`
	Genre        string          `json:"genre"`
	Price        decimal.Decimal `json:"price"`
	Availability int             `json:"availability"` // copies not reserved by any cart
	Ratings      []Rating        `json:"ratings"`
	Reviews      []Review        `json:"reviews"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

type Rating struct {
	UserID string  `json:"userId"`
	Rating float64 `json:"rating"`
}

type Review struct {
	UserID string `json:"userId"`
	Text   string `json:"text"`
}

// BookFields carries the client supplied subset of a book. Nil means absent.
type BookFields struct {
	Title        *string
	Author       *string
	Genre        *string
	Price        *decimal.Decimal
	Availability *int
}

// ApplyTo merges the present fields into b.
func (f BookFields) ApplyTo(b *Book) {
	if f.Title != nil {
		b.Title = *f.Title
	}
	if f.Author != nil {
		b.Author = *f.Author
	}
	if f.Genre != nil {
		b.Genre = *f.Genre
	}
	if f.Price != nil {
		b.Price = *f.Price
	}
	if f.Availability != nil {
		b.Availability = *f.Availability
	}
}

type SortKey string

const (
	SortByTitle        SortKey = "title"
	SortByAuthor       SortKey = "author"
	SortByPrice        SortKey = "price"
	SortByGenre        SortKey = "genre"
	SortByAvailability SortKey = "availability"
	SortByCreatedAt    SortKey = "createdAt"
	SortByUpdatedAt    SortKey = "updatedAt"
)

// ParseSortKey falls back to SortByUpdatedAt for anything unknown.
func ParseSortKey(s string) SortKey {
	switch k := SortKey(s); k {
	case SortByTitle, SortByAuthor, SortByPrice, SortByGenre, SortByAvailability, SortByCreatedAt:
		return k
	default:
		return SortByUpdatedAt
	}
}

const (
	DefaultPage     = 1
	DefaultPageSize = 10
)

type BookQuery struct {
	Page   int
	Limit  int
	SortBy SortKey
}

// Normalize replaces missing or non-positive paging values with the defaults.
// Limit has no upper bound.
func (q BookQuery) Normalize() BookQuery {
	if q.Page < 1 {
		q.Page = DefaultPage
	}
	if q.Limit < 1 {
		q.Limit = DefaultPageSize
	}
	q.SortBy = ParseSortKey(string(q.SortBy))
	return q
}

func (q BookQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}
