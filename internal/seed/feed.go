package seed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/example/ec-storefront/internal/apperr"
	"github.com/example/ec-storefront/internal/domain/product"
	"github.com/shopspring/decimal"
)

// maxFeedBytes caps the feed body.
const maxFeedBytes = 8 << 20

var ErrEmptyFeed = errors.New("feed returned no products")

// Fetcher returns the upstream catalog.
type Fetcher interface {
	Fetch(ctx context.Context) ([]product.Product, error)
}

type feedRecord struct {
	ID          int              `json:"id"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Image       string           `json:"image"`
	Category    string           `json:"category"`
	Rating      *struct {
		Rate  float64 `json:"rate"`
		Count int     `json:"count"`
	} `json:"rating"`
}

// FeedClient fetches products from a fakestoreapi-shaped JSON endpoint
type FeedClient struct {
	url    string
	client *http.Client
}

func NewFeedClient(url string, timeout time.Duration) *FeedClient {
	return &FeedClient{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

// Fetch downloads and converts the feed. Every failure, including a
// malformed record, is returned as *apperr.UpstreamFetchError.
func (c *FeedClient) Fetch(ctx context.Context) ([]product.Product, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, c.fail(err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, c.fail(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, c.fail(fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	var records []feedRecord
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxFeedBytes)).Decode(&records); err != nil {
		return nil, c.fail(fmt.Errorf("decode feed: %w", err))
	}
	if len(records) == 0 {
		return nil, c.fail(ErrEmptyFeed)
	}

	products := make([]product.Product, 0, len(records))
	seen := make(map[int]bool, len(records))
	for i, r := range records {
		p, err := r.toProduct()
		if err != nil {
			return nil, c.fail(fmt.Errorf("record %d: %w", i, err))
		}
		if seen[p.ID] {
			return nil, c.fail(fmt.Errorf("record %d: duplicate id %d", i, p.ID))
		}
		seen[p.ID] = true
		products = append(products, p)
	}
	return products, nil
}

func (c *FeedClient) fail(err error) error {
	return &apperr.UpstreamFetchError{URL: c.url, Err: err}
}

func (r feedRecord) toProduct() (product.Product, error) {
	if r.Price == nil {
		return product.Product{}, errors.New("price is missing")
	}
	p := product.Product{
		ID:          r.ID,
		Title:       strings.TrimSpace(r.Title),
		Description: r.Description,
		Price:       *r.Price,
		Image:       r.Image,
		Category:    strings.TrimSpace(r.Category),
	}
	if p.Category == "" {
		p.Category = product.DefaultCategory
	}
	if r.Rating != nil {
		p.Rating = product.Rating{Rate: r.Rating.Rate, Count: r.Rating.Count}
	}
	if err := p.Validate(); err != nil {
		return product.Product{}, err
	}
	return p, nil
}
