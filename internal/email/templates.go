package email

import (
	"fmt"
	"html"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/example/ec-storefront/internal/domain/checkout"
)

func money(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

// BuildConfirmationBody builds the HTML body for a checkout confirmation.
// Customer-supplied text is escaped.
func BuildConfirmationBody(e checkout.Completed) string {
	var rows strings.Builder
	for _, line := range e.Lines {
		fmt.Fprintf(&rows,
			`<tr>
				<td style="padding: 12px; border-bottom: 1px solid #eee;">%s</td>
				<td style="padding: 12px; border-bottom: 1px solid #eee; text-align: center;">%d</td>
				<td style="padding: 12px; border-bottom: 1px solid #eee; text-align: right;">%s</td>
				<td style="padding: 12px; border-bottom: 1px solid #eee; text-align: right;">%s</td>
			</tr>`,
			html.EscapeString(line.Title),
			line.Quantity,
			money(line.Price),
			money(line.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))),
		)
	}

	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
	<div style="background: #1f2937; padding: 30px; border-radius: 10px 10px 0 0;">
		<h1 style="color: white; margin: 0; font-size: 24px;">Thank you for your order</h1>
	</div>

	<div style="background: #fff; padding: 30px; border: 1px solid #eee; border-top: none; border-radius: 0 0 10px 10px;">
		<p style="margin-top: 0;">Hi %s, your order has been placed and will ship to %s, %s.</p>

		<div style="background: #f8f9fa; padding: 15px; border-radius: 5px; margin: 20px 0;">
			<p style="margin: 0; font-size: 14px; color: #666;">Confirmation number</p>
			<p style="margin: 5px 0 0 0; font-size: 18px; font-weight: bold; font-family: monospace;">%s</p>
		</div>

		<table style="width: 100%%; border-collapse: collapse; margin: 20px 0;">
			<thead>
				<tr style="background: #f8f9fa;">
					<th style="padding: 12px; text-align: left;">Product</th>
					<th style="padding: 12px; text-align: center;">Qty</th>
					<th style="padding: 12px; text-align: right;">Price</th>
					<th style="padding: 12px; text-align: right;">Total</th>
				</tr>
			</thead>
			<tbody>
				%s
			</tbody>
			<tfoot>
				<tr><td colspan="3" style="padding: 8px 12px; text-align: right;">Subtotal</td><td style="padding: 8px 12px; text-align: right;">%s</td></tr>
				<tr><td colspan="3" style="padding: 8px 12px; text-align: right;">Tax (10%%)</td><td style="padding: 8px 12px; text-align: right;">%s</td></tr>
				<tr><td colspan="3" style="padding: 12px; text-align: right; font-weight: bold;">Total</td><td style="padding: 12px; text-align: right; font-weight: bold;">%s</td></tr>
			</tfoot>
		</table>

		<p style="font-size: 14px; color: #666;">Payment method: %s</p>
	</div>
</body>
</html>`,
		html.EscapeString(e.CustomerName),
		html.EscapeString(e.City),
		html.EscapeString(e.Country),
		html.EscapeString(e.ConfirmationID),
		rows.String(),
		money(e.Subtotal),
		money(e.Tax),
		money(e.Total),
		paymentLabel(e.PaymentMethod),
	)
}

// BuildConfirmationText is the plain-text alternative of the confirmation.
func BuildConfirmationText(e checkout.Completed) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\nThank you for your order %s.\n\n", e.CustomerName, e.ConfirmationID)
	for _, line := range e.Lines {
		fmt.Fprintf(&b, "  %d x %s  %s\n", line.Quantity, line.Title, money(line.Price))
	}
	fmt.Fprintf(&b, "\nSubtotal: %s\nTax: %s\nTotal: %s\n", money(e.Subtotal), money(e.Tax), money(e.Total))
	return b.String()
}

func paymentLabel(method string) string {
	switch method {
	case checkout.PaymentCreditCard:
		return "Credit card"
	case checkout.PaymentPayPal:
		return "PayPal"
	default:
		return html.EscapeString(method)
	}
}
