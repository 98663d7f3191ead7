package readmodel

import (
	"encoding/json"

	"github.com/example/ec-storefront/internal/domain/cart"
	"github.com/example/ec-storefront/internal/domain/checkout"
	"github.com/example/ec-storefront/internal/domain/product"
	"github.com/shopspring/decimal"
)

// Money renders a decimal as a bare JSON number with two places.
func Money(d decimal.Decimal) json.Number {
	return json.Number(d.StringFixed(2))
}

// RatingReadModel is the feed's review score
type RatingReadModel struct {
	Rate  float64 `json:"rate"`
	Count int     `json:"count"`
}

// ProductReadModel is the read model for products
type ProductReadModel struct {
	ID          int             `json:"id"`
	Title       string          `json:"title"`
	Price       json.Number     `json:"price"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Image       string          `json:"image"`
	Rating      RatingReadModel `json:"rating"`
}

func NewProduct(p product.Product) ProductReadModel {
	return ProductReadModel{
		ID:          p.ID,
		Title:       p.Title,
		Price:       Money(p.Price),
		Description: p.Description,
		Category:    p.Category,
		Image:       p.Image,
		Rating:      RatingReadModel{Rate: p.Rating.Rate, Count: p.Rating.Count},
	}
}

// CartProductReadModel is the product summary embedded in a cart item
type CartProductReadModel struct {
	ID    int         `json:"id"`
	Title string      `json:"title"`
	Price json.Number `json:"price"`
	Image string      `json:"image"`
}

// CartItemReadModel represents an item in the cart
type CartItemReadModel struct {
	ID         int64                `json:"id"`
	ProductID  int                  `json:"product_id"`
	Quantity   int                  `json:"quantity"`
	Product    CartProductReadModel `json:"product"`
	TotalPrice json.Number          `json:"total_price"`
}

func NewCartItem(l cart.Line) CartItemReadModel {
	return CartItemReadModel{
		ID:        l.ID,
		ProductID: l.ProductID,
		Quantity:  l.Quantity,
		Product: CartProductReadModel{
			ID:    l.Product.ID,
			Title: l.Product.Title,
			Price: Money(l.Product.Price),
			Image: l.Product.Image,
		},
		TotalPrice: Money(l.Total()),
	}
}

// NewCartItems converts lines, never returning nil.
func NewCartItems(lines []cart.Line) []CartItemReadModel {
	items := make([]CartItemReadModel, 0, len(lines))
	for _, l := range lines {
		items = append(items, NewCartItem(l))
	}
	return items
}

// CartReadModel is the read model for the cart page
type CartReadModel struct {
	ID        string              `json:"id"`
	Items     []CartItemReadModel `json:"items"`
	ItemCount int                 `json:"item_count"`
	Subtotal  json.Number         `json:"subtotal"`
}

// SummaryReadModel is the order summary shown on the checkout page
type SummaryReadModel struct {
	Subtotal  json.Number `json:"subtotal"`
	Tax       json.Number `json:"tax"`
	Total     json.Number `json:"total"`
	ItemCount int         `json:"item_count"`
}

func NewSummary(s checkout.Summary) SummaryReadModel {
	return SummaryReadModel{
		Subtotal:  Money(s.Subtotal),
		Tax:       Money(s.Tax),
		Total:     Money(s.Total),
		ItemCount: s.ItemCount,
	}
}

// CheckoutReadModel is what the checkout page renders
type CheckoutReadModel struct {
	Items   []CartItemReadModel `json:"items"`
	Summary SummaryReadModel    `json:"summary"`
}

func NewCheckout(v *checkout.View) *CheckoutReadModel {
	return &CheckoutReadModel{
		Items:   NewCartItems(v.Lines),
		Summary: NewSummary(v.Summary),
	}
}

// CatalogPage is one page of the product grid
type CatalogPage struct {
	Products   []ProductReadModel `json:"products"`
	Categories []string           `json:"categories"`
	Category   string             `json:"category,omitempty"`
	Page       int                `json:"page"`
	TotalPages int                `json:"total_pages"`
	Total      int                `json:"total"`
}

// HasPrev reports whether a previous page exists
func (p *CatalogPage) HasPrev() bool { return p.Page > 1 }

// HasNext reports whether a next page exists
func (p *CatalogPage) HasNext() bool { return p.Page < p.TotalPages }
