package products

import (
	"github.com/shopspring/decimal"

	"github.com/medistock/medistock/internal/apiclient"
)

// Product statuses.
const (
	StatusActive   = "ACTIVE"
	StatusInactive = "INACTIVE"
)

// Product is a medicine or retail item held in stock.
type Product struct {
	ID             apiclient.ID    `json:"id"`
	Name           string          `json:"name"`
	GenericName    string          `json:"genericName"`
	Description    string          `json:"description"`
	CategoryID     apiclient.ID    `json:"categoryId"`
	Category       *apiclient.Ref  `json:"category"`
	ManufacturerID apiclient.ID    `json:"manufacturerId"`
	Manufacturer   *apiclient.Ref  `json:"manufacturer"`
	UOMID          apiclient.ID    `json:"uomId"`
	UOM            *apiclient.Ref  `json:"uom"`
	Quantity       decimal.Decimal `json:"quantity"`
	PurchasePrice  decimal.Decimal `json:"purchasePrice"`
	SellingPrice   decimal.Decimal `json:"sellingPrice"`
	ReorderLevel   decimal.Decimal `json:"reorderLevel"`
	Status         string          `json:"status"`
	Batches        []Batch         `json:"batches"`
}

// Batch is one received lot of a product.
type Batch struct {
	ID                apiclient.ID    `json:"id"`
	BatchNumber       string          `json:"batchNumber"`
	ManufacturingDate apiclient.Date  `json:"manufacturingDate"`
	ExpiryDate        apiclient.Date  `json:"expiryDate"`
	Quantity          decimal.Decimal `json:"quantity"`
}

// LowStock reports whether the quantity on hand reached the reorder level.
func (p Product) LowStock() bool {
	return p.ReorderLevel.IsPositive() && p.Quantity.LessThanOrEqual(p.ReorderLevel)
}

// CategoryName returns the embedded category name.
func (p Product) CategoryName() string { return p.Category.Label() }

// ManufacturerName returns the embedded manufacturer name.
func (p Product) ManufacturerName() string { return p.Manufacturer.Label() }

// UOMName returns the embedded unit name.
func (p Product) UOMName() string { return p.UOM.Label() }

// Ref returns the product as a select reference.
func (p Product) Ref() apiclient.Ref { return apiclient.Ref{ID: p.ID, Name: p.Name} }

func (p Product) refID(id apiclient.ID, ref *apiclient.Ref) string {
	if !id.Empty() {
		return id.String()
	}
	if ref != nil {
		return ref.ID.String()
	}
	return ""
}
