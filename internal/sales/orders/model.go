package orders

import (
	"github.com/shopspring/decimal"

	"github.com/medistock/medistock/internal/apiclient"
	salesshared "github.com/medistock/medistock/internal/sales/shared"
)

// Sale statuses reported by the backend.
const (
	StatusCompleted = "COMPLETED"
	StatusPending   = "PENDING"
	StatusCancelled = "CANCELLED"
)

// Sale is a sale invoice with its lines.
type Sale struct {
	ID            apiclient.ID    `json:"id"`
	InvoiceNumber string          `json:"invoiceNumber"`
	SaleDate      apiclient.Date  `json:"saleDate"`
	Status        string          `json:"status"`
	CustomerID    apiclient.ID    `json:"customerId"`
	Customer      *apiclient.Ref  `json:"customer"`
	PaymentMethod *apiclient.Ref  `json:"paymentMethod"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	Discount      decimal.Decimal `json:"discount"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	PaidAmount    decimal.Decimal `json:"paidAmount"`
	Items         []Item          `json:"items"`
	Notes         string          `json:"notes"`
}

// Item is one sold line.
type Item struct {
	ID         apiclient.ID    `json:"id"`
	ProductID  apiclient.ID    `json:"productId"`
	Product    *apiclient.Ref  `json:"product"`
	BatchID    apiclient.ID    `json:"batchId"`
	Batch      *BatchRef       `json:"batch"`
	Quantity   decimal.Decimal `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unitPrice"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
}

// BatchRef is the batch a line was drawn from.
type BatchRef struct {
	ID          apiclient.ID   `json:"id"`
	BatchNumber string         `json:"batchNumber"`
	ExpiryDate  apiclient.Date `json:"expiryDate"`
}

// CustomerName labels the customer; sales without one are walk-in.
func (s Sale) CustomerName() string {
	if name := s.Customer.Label(); name != "" {
		return name
	}
	return "Walk-in customer"
}

// PaymentMethodName labels the payment method.
func (s Sale) PaymentMethodName() string { return s.PaymentMethod.Label() }

// Balance is the unpaid part of the total.
func (s Sale) Balance() decimal.Decimal { return salesshared.Balance(s.TotalAmount, s.PaidAmount) }

// Reference is the invoice number, falling back to the id.
func (s Sale) Reference() string {
	if s.InvoiceNumber != "" {
		return s.InvoiceNumber
	}
	return s.ID.String()
}

// ProductName labels the line's product.
func (i Item) ProductName() string { return i.Product.Label() }

// BatchNumber is the batch the line was drawn from, if any.
func (i Item) BatchNumber() string {
	if i.Batch == nil {
		return ""
	}
	return i.Batch.BatchNumber
}

// Total is the stored line total, or quantity times price when the backend
// omits it.
func (i Item) Total() decimal.Decimal {
	if !i.TotalPrice.IsZero() {
		return i.TotalPrice
	}
	return salesshared.LineTotal(i.Quantity, i.UnitPrice)
}
