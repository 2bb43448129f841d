package products

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/medistock/medistock/internal/platform/validation"
)

// Input is the product form. The first batch is only offered on create.
type Input struct {
	Name           string          `form:"name" validate:"required,max=200"`
	GenericName    string          `form:"genericName" validate:"max=200"`
	Description    string          `form:"description" validate:"max=1000"`
	CategoryID     string          `form:"categoryId" validate:"required"`
	ManufacturerID string          `form:"manufacturerId"`
	UOMID          string          `form:"uomId" validate:"required"`
	PurchasePrice  decimal.Decimal `form:"purchasePrice" validate:"gte=0"`
	SellingPrice   decimal.Decimal `form:"sellingPrice" validate:"gte=0"`
	ReorderLevel   int             `form:"reorderLevel" validate:"gte=0"`
	Status         string          `form:"status" validate:"oneof=ACTIVE INACTIVE"`
	Batch          BatchInput      `form:"-" validate:"-"`
}

// BatchInput is the optional opening batch.
type BatchInput struct {
	BatchNumber       string
	ManufacturingDate string
	ExpiryDate        string
	Quantity          decimal.Decimal
}

// Empty reports whether no batch field was filled.
func (b BatchInput) Empty() bool {
	return b.BatchNumber == "" && b.ManufacturingDate == "" && b.ExpiryDate == "" && b.Quantity.IsZero()
}

// Normalize trims text fields and defaults the status.
func (in Input) Normalize() Input {
	for _, f := range []*string{&in.Name, &in.GenericName, &in.Description, &in.CategoryID, &in.ManufacturerID, &in.UOMID,
		&in.Batch.BatchNumber, &in.Batch.ManufacturingDate, &in.Batch.ExpiryDate} {
		*f = strings.TrimSpace(*f)
	}
	in.Status = strings.ToUpper(strings.TrimSpace(in.Status))
	if in.Status == "" {
		in.Status = StatusActive
	}
	return in
}

// Validate checks the form against today's date.
func (in Input) Validate(today time.Time) validation.Errors {
	errs := validation.Struct(in)
	if errs.Has("uomId") {
		errs["uomId"] = "Unit of measure is required"
	}
	if in.Batch.Empty() {
		return errs
	}
	if in.Batch.BatchNumber == "" {
		errs.Add("batchNumber", "Batch number is required")
	}
	if !in.Batch.Quantity.IsPositive() {
		errs.Add("batchQuantity", "Batch quantity must be greater than 0")
	}
	CheckBatchDates(errs, "", in.Batch.ManufacturingDate, in.Batch.ExpiryDate, today)
	return errs
}

// Payload builds the request body.
func (in Input) Payload() map[string]any {
	body := map[string]any{
		"name":          in.Name,
		"categoryId":    in.CategoryID,
		"uomId":         in.UOMID,
		"purchasePrice": in.PurchasePrice,
		"sellingPrice":  in.SellingPrice,
		"reorderLevel":  in.ReorderLevel,
		"status":        in.Status,
	}
	for key, value := range map[string]string{"genericName": in.GenericName, "description": in.Description, "manufacturerId": in.ManufacturerID} {
		if value != "" {
			body[key] = value
		}
	}
	if !in.Batch.Empty() {
		batch := map[string]any{
			"batchNumber": in.Batch.BatchNumber,
			"expiryDate":  in.Batch.ExpiryDate,
			"quantity":    in.Batch.Quantity,
		}
		if in.Batch.ManufacturingDate != "" {
			batch["manufacturingDate"] = in.Batch.ManufacturingDate
		}
		body["batches"] = []map[string]any{batch}
	}
	return body
}

// InputFrom prefills the edit form.
func InputFrom(p Product) Input {
	return Input{
		Name:           p.Name,
		GenericName:    p.GenericName,
		Description:    p.Description,
		CategoryID:     p.refID(p.CategoryID, p.Category),
		ManufacturerID: p.refID(p.ManufacturerID, p.Manufacturer),
		UOMID:          p.refID(p.UOMID, p.UOM),
		PurchasePrice:  p.PurchasePrice,
		SellingPrice:   p.SellingPrice,
		ReorderLevel:   int(p.ReorderLevel.IntPart()),
		Status:         p.Status,
	}
}
