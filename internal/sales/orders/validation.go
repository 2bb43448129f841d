package orders

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/medistock/medistock/internal/apiclient"
	"github.com/medistock/medistock/internal/platform/validation"
	salesshared "github.com/medistock/medistock/internal/sales/shared"
	"github.com/medistock/medistock/internal/view"
)

// MsgDiscountExceedsSubtotal is reported when the discount is larger than the lines.
const MsgDiscountExceedsSubtotal = "Discount cannot exceed the subtotal"

// Input is the submitted sale form. The customer is optional for walk-in sales.
type Input struct {
	CustomerID      string             `form:"customerId"`
	PaymentMethodID string             `form:"paymentMethodId" validate:"required"`
	SaleDate        string             `form:"saleDate" validate:"required,datetime=2006-01-02"`
	Discount        decimal.Decimal    `form:"discount" validate:"gte=0"`
	PaidAmount      decimal.Decimal    `form:"paidAmount" validate:"gte=0"`
	Notes           string             `form:"notes" validate:"max=500"`
	Lines           []salesshared.Line `form:"-" validate:"-"`
}

// NewInput is a blank form dated today.
func NewInput(today time.Time) Input {
	return Input{SaleDate: today.Format(apiclient.DateLayout)}
}

// Totals computes the document amounts from the lines.
func (in Input) Totals() salesshared.Totals {
	return salesshared.Compute(in.Lines, in.Discount)
}

// Validate checks the header, the lines and the amounts.
func (in Input) Validate() validation.Errors {
	errs := validation.Struct(in)
	salesshared.ValidateLines(errs, in.Lines)
	totals := in.Totals()
	if in.Discount.GreaterThan(totals.Subtotal) {
		errs.Add("discount", MsgDiscountExceedsSubtotal)
	}
	if in.PaidAmount.GreaterThan(totals.Total) {
		errs.Add("paidAmount", "Paid amount cannot exceed the total ("+view.Money(totals.Total)+")")
	}
	return errs
}

// Payload is the create request body.
func (in Input) Payload() map[string]any {
	totals := in.Totals()
	items := make([]map[string]any, 0, len(in.Lines))
	for _, l := range in.Lines {
		item := map[string]any{
			"productId":  l.ProductID,
			"quantity":   l.Quantity,
			"unitPrice":  l.UnitPrice,
			"totalPrice": l.Total(),
		}
		if l.BatchID != "" {
			item["batchId"] = l.BatchID
		}
		items = append(items, item)
	}
	payload := map[string]any{
		"saleDate":        in.SaleDate,
		"paymentMethodId": in.PaymentMethodID,
		"subtotal":        totals.Subtotal,
		"discount":        totals.Discount,
		"totalAmount":     totals.Total,
		"paidAmount":      in.PaidAmount.Round(2),
		"items":           items,
	}
	if in.CustomerID != "" {
		payload["customerId"] = in.CustomerID
	}
	if in.Notes != "" {
		payload["notes"] = in.Notes
	}
	return payload
}
