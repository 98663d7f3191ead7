package checkout

import (
	"github.com/example/ec-storefront/internal/domain/cart"
	"github.com/shopspring/decimal"
)

// TaxRate is the flat sales tax applied to every order.
var TaxRate = decimal.New(10, -2)

// Summary is the order total derived from the cart at checkout time. It is
// never stored.
type Summary struct {
	Subtotal  decimal.Decimal `json:"subtotal"`
	Tax       decimal.Decimal `json:"tax"`
	Total     decimal.Decimal `json:"total"`
	ItemCount int             `json:"item_count"`
}

// Summarize totals lines: subtotal is the sum of line totals, tax is
// TaxRate of the subtotal, total is their sum.
func Summarize(lines []cart.Line) Summary {
	subtotal := decimal.Zero
	count := 0
	for _, line := range lines {
		subtotal = subtotal.Add(line.Total())
		count += line.Quantity
	}
	tax := subtotal.Mul(TaxRate)
	return Summary{
		Subtotal:  subtotal,
		Tax:       tax,
		Total:     subtotal.Add(tax),
		ItemCount: count,
	}
}
