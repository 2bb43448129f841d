package procurement

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/medistock/medistock/internal/apiclient"
	"github.com/medistock/medistock/internal/masterdata/products"
	"github.com/medistock/medistock/internal/platform/validation"
	salesshared "github.com/medistock/medistock/internal/sales/shared"
	"github.com/medistock/medistock/internal/view"
)

// Input is the submitted purchase form.
type Input struct {
	SupplierID   string             `form:"supplierId" validate:"required"`
	PurchaseDate string             `form:"purchaseDate" validate:"required,datetime=2006-01-02"`
	Status       string             `form:"status" validate:"omitempty,oneof=PENDING ORDERED RECEIVED"`
	PaidAmount   decimal.Decimal    `form:"paidAmount" validate:"gte=0"`
	Notes        string             `form:"notes" validate:"max=500"`
	Lines        []salesshared.Line `form:"-" validate:"-"`
}

// NewInput is a blank purchase dated today.
func NewInput(today time.Time) Input {
	return Input{PurchaseDate: today.Format(apiclient.DateLayout), Status: StatusPending}
}

// Total is the order amount.
func (in Input) Total() decimal.Decimal {
	return salesshared.Compute(in.Lines, decimal.Zero).Total
}

// Validate checks the header and every line. Each line is a received batch
// and follows the product batch date rules.
func (in Input) Validate(today time.Time) validation.Errors {
	errs := validation.Struct(in)
	salesshared.ValidateLines(errs, in.Lines)
	for i, l := range in.Lines {
		if l.BatchNumber == "" {
			errs.Add(salesshared.Key(i, "batchNumber"), "Batch number is required")
		}
		products.CheckBatchDates(errs, salesshared.Key(i, ""), l.ManufacturingDate, l.ExpiryDate, today)
	}
	if total := in.Total(); in.PaidAmount.GreaterThan(total) {
		errs.Add("paidAmount", "Paid amount cannot exceed the total ("+view.Money(total)+")")
	}
	return errs
}

// Payload is the create request body.
func (in Input) Payload() map[string]any {
	items := make([]map[string]any, 0, len(in.Lines))
	for _, l := range in.Lines {
		item := map[string]any{
			"productId":   l.ProductID,
			"batchNumber": l.BatchNumber,
			"expiryDate":  l.ExpiryDate,
			"quantity":    l.Quantity,
			"unitPrice":   l.UnitPrice,
			"totalPrice":  l.Total(),
		}
		if l.ManufacturingDate != "" {
			item["manufacturingDate"] = l.ManufacturingDate
		}
		items = append(items, item)
	}
	status := in.Status
	if status == "" {
		status = StatusPending
	}
	payload := map[string]any{
		"supplierId":   in.SupplierID,
		"purchaseDate": in.PurchaseDate,
		"status":       status,
		"totalAmount":  in.Total(),
		"paidAmount":   in.PaidAmount.Round(2),
		"items":        items,
	}
	if in.Notes != "" {
		payload["notes"] = in.Notes
	}
	return payload
}
