package credits

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/medistock/medistock/internal/apiclient"
	"github.com/medistock/medistock/internal/platform/validation"
)

// PaymentInput is the submitted payment form.
type PaymentInput struct {
	Amount          decimal.Decimal `form:"amount" validate:"gt=0"`
	PaymentDate     string          `form:"paymentDate" validate:"required,datetime=2006-01-02"`
	PaymentMethodID string          `form:"paymentMethodId"`
	Reference       string          `form:"reference" validate:"max=100"`
	Notes           string          `form:"notes" validate:"max=500"`
}

// NewPaymentInput prefills a payment of the whole balance dated today.
func NewPaymentInput(balance decimal.Decimal, today time.Time) PaymentInput {
	return PaymentInput{Amount: balance, PaymentDate: today.Format(apiclient.DateLayout)}
}

// ExceedsBalanceMessage is the error shown when amount is above balance.
func ExceedsBalanceMessage(balance decimal.Decimal) string {
	return "Payment amount cannot exceed balance (" + balance.StringFixed(2) + ")"
}

// Validate checks the payment against the outstanding balance.
func (in PaymentInput) Validate(balance decimal.Decimal) validation.Errors {
	errs := validation.Struct(in)
	if in.Amount.GreaterThan(balance) {
		errs.Add("amount", ExceedsBalanceMessage(balance))
	}
	return errs
}

// Payload is the pay request body.
func (in PaymentInput) Payload() map[string]any {
	payload := map[string]any{
		"amount":      in.Amount.Round(2),
		"paymentDate": in.PaymentDate,
	}
	if in.PaymentMethodID != "" {
		payload["paymentMethodId"] = in.PaymentMethodID
	}
	if in.Reference != "" {
		payload["reference"] = in.Reference
	}
	if in.Notes != "" {
		payload["notes"] = in.Notes
	}
	return payload
}
