package query

import (
	"context"
	"strings"

	"github.com/example/ec-storefront/internal/domain/cart"
	"github.com/example/ec-storefront/internal/domain/checkout"
	"github.com/example/ec-storefront/internal/domain/product"
	"github.com/example/ec-storefront/internal/readmodel"
)

// DefaultPerPage is used when a non-positive page size is configured.
const DefaultPerPage = 12

type Handler struct {
	products product.Store
	carts    *cart.Service
	checkout *checkout.Service
	perPage  int
}

func NewHandler(products product.Store, carts *cart.Service, checkoutSvc *checkout.Service, perPage int) *Handler {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	return &Handler{
		products: products,
		carts:    carts,
		checkout: checkoutSvc,
		perPage:  perPage,
	}
}

// Products
func (h *Handler) ListProducts(ctx context.Context) ([]readmodel.ProductReadModel, error) {
	products, err := h.products.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]readmodel.ProductReadModel, 0, len(products))
	for _, p := range products {
		out = append(out, readmodel.NewProduct(p))
	}
	return out, nil
}

func (h *Handler) Categories(ctx context.Context) ([]string, error) {
	return h.products.Categories(ctx)
}

// Catalog returns one page of products, optionally limited to a category.
// Out-of-range pages are clamped.
func (h *Handler) Catalog(ctx context.Context, category string, page int) (*readmodel.CatalogPage, error) {
	all, err := h.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	categories, err := h.products.Categories(ctx)
	if err != nil {
		return nil, err
	}

	category = strings.TrimSpace(category)
	filtered := all
	if category != "" {
		filtered = make([]readmodel.ProductReadModel, 0, len(all))
		for _, p := range all {
			if p.Category == category {
				filtered = append(filtered, p)
			}
		}
	}

	totalPages := (len(filtered) + h.perPage - 1) / h.perPage
	if totalPages == 0 {
		totalPages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}
	start := (page - 1) * h.perPage
	end := min(start+h.perPage, len(filtered))

	return &readmodel.CatalogPage{
		Products:   filtered[start:end],
		Categories: categories,
		Category:   category,
		Page:       page,
		TotalPages: totalPages,
		Total:      len(filtered),
	}, nil
}

// Cart
func (h *Handler) GetCartItems(ctx context.Context, cartID cart.ID) ([]readmodel.CartItemReadModel, error) {
	lines, err := h.carts.List(ctx, cartID)
	if err != nil {
		return nil, err
	}
	return readmodel.NewCartItems(lines), nil
}

func (h *Handler) GetCart(ctx context.Context, cartID cart.ID) (*readmodel.CartReadModel, error) {
	lines, err := h.carts.List(ctx, cartID)
	if err != nil {
		return nil, err
	}
	summary := checkout.Summarize(lines)
	return &readmodel.CartReadModel{
		ID:        string(cartID),
		Items:     readmodel.NewCartItems(lines),
		ItemCount: summary.ItemCount,
		Subtotal:  readmodel.Money(summary.Subtotal),
	}, nil
}

func (h *Handler) CartCount(ctx context.Context, cartID cart.ID) (int, error) {
	return h.carts.Count(ctx, cartID)
}

// Checkout
//
// PrepareCheckout returns checkout.ErrEmptyCart when there is nothing to buy.
func (h *Handler) PrepareCheckout(ctx context.Context, cartID cart.ID) (*readmodel.CheckoutReadModel, error) {
	view, err := h.checkout.Prepare(ctx, cartID)
	if err != nil {
		return nil, err
	}
	return readmodel.NewCheckout(view), nil
}
