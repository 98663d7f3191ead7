package command

import "github.com/example/ec-storefront/internal/domain/checkout"

// Cart Commands
type ApplyCartItem struct {
	ProductID int    `json:"product_id"`
	Action    string `json:"action"`
	Quantity  *int   `json:"quantity,omitempty"`
}

// Checkout Commands
type SubmitCheckout struct {
	Form checkout.Form
}
