package cart

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// ID names a cart. The storefront serves a single shared cart, DefaultID,
// but every operation takes the id explicitly.
type ID string

const DefaultID ID = "default"

// Action is a cart mutation verb.
type Action string

const (
	ActionAdd    Action = "add"
	ActionRemove Action = "remove"
	ActionSet    Action = "set"
)

// Valid reports whether a is a known action.
func (a Action) Valid() bool {
	switch a {
	case ActionAdd, ActionRemove, ActionSet:
		return true
	}
	return false
}

// Item is a stored cart line. Quantity is always >= 1 and there is at most
// one item per (CartID, ProductID).
type Item struct {
	ID        int64     `json:"id"`
	CartID    ID        `json:"cart_id"`
	ProductID int       `json:"product_id"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
}

// LineProduct is the slice of the product record a cart line displays.
type LineProduct struct {
	ID    int             `json:"id"`
	Title string          `json:"title"`
	Price decimal.Decimal `json:"price"`
	Image string          `json:"image"`
}

// Line is an item joined with its product.
type Line struct {
	Item
	Product LineProduct `json:"product"`
}

// Total is quantity × unit price.
func (l Line) Total() decimal.Decimal {
	return l.Product.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Mutation is one apply call.
type Mutation struct {
	ProductID int
	Action    Action
	// Quantity is only read by ActionSet, where it is required.
	Quantity *int
}

// Store persists cart items.
type Store interface {
	// WithinTx runs fn in a single transaction; fn's error rolls it back.
	WithinTx(ctx context.Context, fn func(tx Tx) error) error
	// Lines returns the cart's items joined with products in insertion order.
	Lines(ctx context.Context, cartID ID) ([]Line, error)
	// CountItems sums quantities over the cart's lines.
	CountItems(ctx context.Context, cartID ID) (int, error)
	Clear(ctx context.Context, cartID ID) error
}

// Tx is the transactional view used by Service.Apply. Row locks taken by
// LockItem are held until the transaction ends.
type Tx interface {
	ProductExists(ctx context.Context, productID int) (bool, error)
	// Increment adds delta to the item's quantity, creating it when absent.
	Increment(ctx context.Context, cartID ID, productID, delta int) (*Item, error)
	// LockItem returns nil without error when the item does not exist.
	LockItem(ctx context.Context, cartID ID, productID int) (*Item, error)
	SetQuantity(ctx context.Context, itemID int64, quantity int) error
	DeleteItem(ctx context.Context, itemID int64) error
}
