package quotations

import (
	"github.com/shopspring/decimal"

	"github.com/medistock/medistock/internal/apiclient"
	salesshared "github.com/medistock/medistock/internal/sales/shared"
)

// Quotation statuses.
const (
	StatusDraft     = "DRAFT"
	StatusSent      = "SENT"
	StatusAccepted  = "ACCEPTED"
	StatusRejected  = "REJECTED"
	StatusExpired   = "EXPIRED"
	StatusConverted = "CONVERTED"
)

// transitions lists the statuses a quotation may move to by hand.
var transitions = map[string][]string{
	StatusDraft:    {StatusSent, StatusRejected},
	StatusSent:     {StatusAccepted, StatusRejected},
	StatusAccepted: {StatusRejected},
}

// Quotation is a price offer to a customer.
type Quotation struct {
	ID              apiclient.ID    `json:"id"`
	QuotationNumber string          `json:"quotationNumber"`
	QuotationDate   apiclient.Date  `json:"quotationDate"`
	ValidUntil      apiclient.Date  `json:"validUntil"`
	Status          string          `json:"status"`
	CustomerID      apiclient.ID    `json:"customerId"`
	Customer        *apiclient.Ref  `json:"customer"`
	Items           []Item          `json:"items"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	Discount        decimal.Decimal `json:"discount"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`
	Notes           string          `json:"notes"`
}

// Item is one quoted line.
type Item struct {
	ProductID  apiclient.ID    `json:"productId"`
	Product    *apiclient.Ref  `json:"product"`
	Quantity   decimal.Decimal `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unitPrice"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
}

// CustomerName labels the customer.
func (q Quotation) CustomerName() string { return q.Customer.Label() }

// Reference is the quotation number, falling back to the id.
func (q Quotation) Reference() string {
	if q.QuotationNumber != "" {
		return q.QuotationNumber
	}
	return q.ID.String()
}

// Convertible reports whether the quotation can still become a sale.
func (q Quotation) Convertible() bool {
	switch q.Status {
	case StatusConverted, StatusRejected, StatusExpired:
		return false
	}
	return true
}

// NextStatuses lists the statuses the quotation may move to.
func (q Quotation) NextStatuses() []string {
	status := q.Status
	if status == "" {
		status = StatusDraft
	}
	return transitions[status]
}

// CanMoveTo reports whether status is a valid next status.
func (q Quotation) CanMoveTo(status string) bool {
	for _, next := range q.NextStatuses() {
		if next == status {
			return true
		}
	}
	return false
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
