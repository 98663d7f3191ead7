package checkout

import (
	"time"

	"github.com/shopspring/decimal"
)

const EventCheckoutCompleted = "CheckoutCompleted"

// CompletedLine is a purchased line in a CheckoutCompleted event.
type CompletedLine struct {
	ProductID int             `json:"product_id"`
	Title     string          `json:"title"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// Completed is published after a checkout passes validation. It never
// carries card data.
type Completed struct {
	ConfirmationID string          `json:"confirmation_id"`
	CartID         string          `json:"cart_id"`
	CustomerName   string          `json:"customer_name"`
	Email          string          `json:"email"`
	City           string          `json:"city"`
	Country        string          `json:"country"`
	PaymentMethod  string          `json:"payment_method"`
	Lines          []CompletedLine `json:"lines"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	Tax            decimal.Decimal `json:"tax"`
	Total          decimal.Decimal `json:"total"`
	CompletedAt    time.Time       `json:"completed_at"`
}
