// Package procurement serves purchase orders: goods bought from suppliers,
// received as product batches.
package procurement

import (
	"github.com/shopspring/decimal"

	"github.com/medistock/medistock/internal/apiclient"
	salesshared "github.com/medistock/medistock/internal/sales/shared"
)

// Purchase statuses.
const (
	StatusPending   = "PENDING"
	StatusOrdered   = "ORDERED"
	StatusReceived  = "RECEIVED"
	StatusCancelled = "CANCELLED"
)

// Purchase is a supplier order with the batches it brings in.
type Purchase struct {
	ID              apiclient.ID    `json:"id"`
	ReferenceNumber string          `json:"referenceNumber"`
	PurchaseDate    apiclient.Date  `json:"purchaseDate"`
	Status          string          `json:"status"`
	SupplierID      apiclient.ID    `json:"supplierId"`
	Supplier        *apiclient.Ref  `json:"supplier"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`
	PaidAmount      decimal.Decimal `json:"paidAmount"`
	Items           []Item          `json:"items"`
	Notes           string          `json:"notes"`
}

// Item is one purchased batch.
type Item struct {
	ID                apiclient.ID    `json:"id"`
	ProductID         apiclient.ID    `json:"productId"`
	Product           *apiclient.Ref  `json:"product"`
	BatchNumber       string          `json:"batchNumber"`
	ManufacturingDate apiclient.Date  `json:"manufacturingDate"`
	ExpiryDate        apiclient.Date  `json:"expiryDate"`
	Quantity          decimal.Decimal `json:"quantity"`
	UnitPrice         decimal.Decimal `json:"unitPrice"`
	TotalPrice        decimal.Decimal `json:"totalPrice"`
}

// SupplierName labels the supplier.
func (p Purchase) SupplierName() string { return p.Supplier.Label() }

// Balance is the amount still owed to the supplier.
func (p Purchase) Balance() decimal.Decimal { return salesshared.Balance(p.TotalAmount, p.PaidAmount) }

// Reference is the reference number, falling back to the id.
func (p Purchase) Reference() string {
	if p.ReferenceNumber != "" {
		return p.ReferenceNumber
	}
	return p.ID.String()
}

// Receivable reports whether the goods can still be marked received.
func (p Purchase) Receivable() bool {
	return p.Status == "" || p.Status == StatusPending || p.Status == StatusOrdered
}

// ProductName labels the line's product.
func (i Item) ProductName() string { return i.Product.Label() }

// Total is the stored line total or quantity times price.
func (i Item) Total() decimal.Decimal {
	if !i.TotalPrice.IsZero() {
		return i.TotalPrice
	}
	return salesshared.LineTotal(i.Quantity, i.UnitPrice)
}
