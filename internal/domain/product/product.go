package product

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultCategory is assigned to feed records that carry no category.
const DefaultCategory = "uncategorized"

var (
	ErrEmptyTitle    = errors.New("title is required")
	ErrNegativePrice = errors.New("price must not be negative")
	ErrInvalidRating = errors.New("rating count must not be negative")
	ErrInvalidID     = errors.New("id must be positive")
)

// Rating is the feed's aggregated review score.
type Rating struct {
	Rate  float64 `json:"rate"`
	Count int     `json:"count"`
}

// Product is a catalog entry. IDs are assigned by the upstream feed and are
// never rewritten; cart items reference them directly.
type Product struct {
	ID          int             `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image"`
	Category    string          `json:"category"`
	Rating      Rating          `json:"rating"`
}

// Validate checks the catalog invariants.
func (p Product) Validate() error {
	if p.ID <= 0 {
		return ErrInvalidID
	}
	if strings.TrimSpace(p.Title) == "" {
		return ErrEmptyTitle
	}
	if p.Price.IsNegative() {
		return ErrNegativePrice
	}
	if p.Rating.Count < 0 {
		return ErrInvalidRating
	}
	return nil
}

// Store is the catalog persistence contract.
type Store interface {
	// List returns every product ordered by id.
	List(ctx context.Context) ([]Product, error)
	// Get returns *apperr.NotFoundError when id is unknown.
	Get(ctx context.Context, id int) (*Product, error)
	Count(ctx context.Context) (int, error)
	Categories(ctx context.Context) ([]string, error)
	// ReplaceAll clears the catalog and inserts products in one transaction.
	ReplaceAll(ctx context.Context, products []Product) error
}
