package quotations

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/medistock/medistock/internal/apiclient"
	"github.com/medistock/medistock/internal/platform/validation"
	salesshared "github.com/medistock/medistock/internal/sales/shared"
)

// MsgValidUntilBeforeDate is reported when the offer expires before it is made.
const MsgValidUntilBeforeDate = "Valid until must be on or after the quotation date"

// validityDays is the default offer period.
const validityDays = 30

// Input is the submitted quotation form.
type Input struct {
	CustomerID    string             `form:"customerId" validate:"required"`
	QuotationDate string             `form:"quotationDate" validate:"required,datetime=2006-01-02"`
	ValidUntil    string             `form:"validUntil" validate:"required,datetime=2006-01-02"`
	Discount      decimal.Decimal    `form:"discount" validate:"gte=0"`
	Notes         string             `form:"notes" validate:"max=500"`
	Lines         []salesshared.Line `form:"-" validate:"-"`
}

// NewInput is a blank quotation dated today and valid for the default period.
func NewInput(today time.Time) Input {
	return Input{
		QuotationDate: today.Format(apiclient.DateLayout),
		ValidUntil:    today.AddDate(0, 0, validityDays).Format(apiclient.DateLayout),
	}
}

// Totals computes the quotation amounts.
func (in Input) Totals() salesshared.Totals {
	return salesshared.Compute(in.Lines, in.Discount)
}

// Validate checks the header, the dates and the lines.
func (in Input) Validate() validation.Errors {
	errs := validation.Struct(in)
	if !errs.Has("quotationDate") && !errs.Has("validUntil") {
		from, _ := time.Parse(apiclient.DateLayout, in.QuotationDate)
		until, _ := time.Parse(apiclient.DateLayout, in.ValidUntil)
		if until.Before(from) {
			errs.Add("validUntil", MsgValidUntilBeforeDate)
		}
	}
	salesshared.ValidateLines(errs, in.Lines)
	if in.Discount.GreaterThan(in.Totals().Subtotal) {
		errs.Add("discount", "Discount cannot exceed the subtotal")
	}
	return errs
}

// Payload is the create request body.
func (in Input) Payload() map[string]any {
	totals := in.Totals()
	items := make([]map[string]any, 0, len(in.Lines))
	for _, l := range in.Lines {
		items = append(items, map[string]any{
			"productId":  l.ProductID,
			"quantity":   l.Quantity,
			"unitPrice":  l.UnitPrice,
			"totalPrice": l.Total(),
		})
	}
	payload := map[string]any{
		"customerId":    in.CustomerID,
		"quotationDate": in.QuotationDate,
		"validUntil":    in.ValidUntil,
		"subtotal":      totals.Subtotal,
		"discount":      totals.Discount,
		"totalAmount":   totals.Total,
		"items":         items,
	}
	if in.Notes != "" {
		payload["notes"] = in.Notes
	}
	return payload
}
