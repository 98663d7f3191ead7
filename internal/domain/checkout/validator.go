package checkout

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/example/ec-storefront/internal/apperr"
	"github.com/go-playground/validator/v10"
)

// Card number digit-count bounds.
const (
	minCardDigits = 13
	maxCardDigits = 19
)

// Messages that replace the generic rule text for specific fields.
var fieldMessages = map[string]string{
	"card_expiry.min":      "Please use MM/YY format",
	"card_expiry.max":      "Please use MM/YY format",
	"card_cvv.min":         "CVV must be 3-4 digits",
	"card_cvv.max":         "CVV must be 3-4 digits",
	"payment_method.oneof": "Not a valid choice",
}

// requiredCardFields are checked in order; the first blank one fails.
var requiredCardFields = []struct {
	field   string
	message string
	value   func(f Form) string
}{
	{"card_number", "Card number is required", func(f Form) string { return f.CardNumber }},
	{"card_expiry", "Expiry date is required", func(f Form) string { return f.CardExpiry }},
	{"card_cvv", "CVV is required", func(f Form) string { return f.CardCVV }},
	{"card_name", "Name on card is required", func(f Form) string { return f.CardName }},
}

// Validator checks checkout forms.
type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{validate: v}
}

// Validate returns apperr.ValidationErrors when the form is rejected. Field
// rules are all reported together; the card checks only run once those pass
// and stop at the first failure.
func (v *Validator) Validate(form Form) error {
	form = form.Normalize()

	if err := v.validate.Struct(form); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return err
		}
		out := make(apperr.ValidationErrors, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			out = append(out, apperr.Invalid(fe.Field(), message(fe)))
		}
		return out
	}

	if form.PaymentMethod != PaymentCreditCard {
		return nil
	}
	for _, rc := range requiredCardFields {
		if rc.value(form) == "" {
			return apperr.ValidationErrors{apperr.Invalid(rc.field, rc.message)}
		}
	}
	if fe := CheckCardNumber(form.CardNumber); fe != nil {
		return apperr.ValidationErrors{fe}
	}
	return nil
}

func message(fe validator.FieldError) string {
	if msg, ok := fieldMessages[fe.Field()+"."+fe.Tag()]; ok {
		return msg
	}
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Invalid email address."
	case "min":
		return fmt.Sprintf("Field must be at least %s characters long.", fe.Param())
	case "max":
		return fmt.Sprintf("Field cannot be longer than %s characters.", fe.Param())
	case "oneof":
		return "Not a valid choice."
	}
	return "Invalid value."
}

// CheckCardNumber applies the digit-count and Luhn checks to a card number.
// Non-digit characters are ignored. It returns nil when the number passes.
func CheckCardNumber(number string) *apperr.ValidationError {
	digits := make([]int, 0, len(number))
	for _, r := range number {
		if r >= '0' && r <= '9' {
			digits = append(digits, int(r-'0'))
		}
	}
	if len(digits) < minCardDigits || len(digits) > maxCardDigits {
		return apperr.Invalid("card_number", "Invalid card number length")
	}
	if !Luhn(digits) {
		return apperr.Invalid("card_number", "Invalid card number")
	}
	return nil
}

// Luhn reports whether digits (most significant first) carry a valid
// mod-10 check digit.
func Luhn(digits []int) bool {
	sum := 0
	for i := 0; i < len(digits); i++ {
		d := digits[len(digits)-1-i]
		if i%2 == 1 {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
	}
	return sum%10 == 0
}
