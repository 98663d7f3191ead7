package checkout

import "strings"

// Payment methods accepted by the checkout form.
const (
	PaymentCreditCard = "credit-card"
	PaymentPayPal     = "paypal"
)

// Form is a submitted checkout form. The form tags are the HTML field names
// and are also the field identifiers reported in validation errors.
type Form struct {
	FirstName string `form:"first_name" validate:"required,min=2,max=50"`
	LastName  string `form:"last_name" validate:"required,min=2,max=50"`
	Email     string `form:"email" validate:"required,email"`
	Phone     string `form:"phone" validate:"required"`

	Address  string `form:"address" validate:"required,max=200"`
	Address2 string `form:"address2" validate:"omitempty,max=200"`
	City     string `form:"city" validate:"required,max=100"`
	State    string `form:"state" validate:"required,max=100"`
	ZipCode  string `form:"zip_code" validate:"required,min=3,max=20"`
	Country  string `form:"country" validate:"required,max=100"`

	PaymentMethod string `form:"payment_method" validate:"required,oneof=credit-card paypal"`

	CardNumber string `form:"card_number"`
	CardExpiry string `form:"card_expiry" validate:"omitempty,min=4,max=5"`
	CardCVV    string `form:"card_cvv" validate:"omitempty,min=3,max=4"`
	CardName   string `form:"card_name" validate:"omitempty,min=2,max=100"`
}

// Normalize trims surrounding whitespace from every field and drops card
// data when the customer pays with PayPal.
func (f Form) Normalize() Form {
	for _, p := range f.fields() {
		*p = strings.TrimSpace(*p)
	}
	if f.PaymentMethod == PaymentPayPal {
		f.CardNumber, f.CardExpiry, f.CardCVV, f.CardName = "", "", "", ""
	}
	return f
}

// Redacted returns a copy without card number and CVV, suitable for
// re-rendering the form.
func (f Form) Redacted() Form {
	f.CardNumber = ""
	f.CardCVV = ""
	return f
}

// CustomerName is "First Last".
func (f Form) CustomerName() string {
	return strings.TrimSpace(f.FirstName + " " + f.LastName)
}

func (f *Form) fields() []*string {
	return []*string{
		&f.FirstName, &f.LastName, &f.Email, &f.Phone,
		&f.Address, &f.Address2, &f.City, &f.State, &f.ZipCode, &f.Country,
		&f.PaymentMethod,
		&f.CardNumber, &f.CardExpiry, &f.CardCVV, &f.CardName,
	}
}
