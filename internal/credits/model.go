// Package credits tracks unpaid balances of sales (receivables) and
// purchases (payables) and records payments against them.
package credits

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/medistock/medistock/internal/apiclient"
	salesshared "github.com/medistock/medistock/internal/sales/shared"
)

// Credit types.
const (
	TypeSale     = "SALE"
	TypePurchase = "PURCHASE"
)

// Credit statuses.
const (
	StatusUnpaid  = "UNPAID"
	StatusPartial = "PARTIAL"
	StatusPaid    = "PAID"
	StatusOverdue = "OVERDUE"
)

// Credit is an outstanding balance on a sale or a purchase.
type Credit struct {
	ID            apiclient.ID    `json:"id"`
	CreditType    string          `json:"creditType"`
	SaleID        apiclient.ID    `json:"saleId"`
	Sale          *Document       `json:"sale"`
	PurchaseID    apiclient.ID    `json:"purchaseId"`
	Purchase      *Document       `json:"purchase"`
	PartyName     string          `json:"partyName"`
	Customer      *apiclient.Ref  `json:"customer"`
	Supplier      *apiclient.Ref  `json:"supplier"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	PaidAmount    decimal.Decimal `json:"paidAmount"`
	BalanceAmount decimal.Decimal `json:"balanceAmount"`
	Status        string          `json:"status"`
	DueDate       apiclient.Date  `json:"dueDate"`
	Payments      []Payment       `json:"payments"`
}

// Document is the sale or purchase a credit belongs to.
type Document struct {
	ID              apiclient.ID `json:"id"`
	InvoiceNumber   string       `json:"invoiceNumber"`
	ReferenceNumber string       `json:"referenceNumber"`
}

// Payment is one recorded payment.
type Payment struct {
	ID            apiclient.ID    `json:"id"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentDate   apiclient.Date  `json:"paymentDate"`
	PaymentMethod *apiclient.Ref  `json:"paymentMethod"`
	Reference     string          `json:"reference"`
	Notes         string          `json:"notes"`
}

// Summary is the credit totals reported by /credits/summary.
type Summary struct {
	TotalReceivable decimal.Decimal `json:"totalReceivable"`
	TotalPayable    decimal.Decimal `json:"totalPayable"`
	OverdueCount    int             `json:"overdueCount"`
}

// Party names the customer or supplier that owes or is owed.
func (c Credit) Party() string {
	if c.PartyName != "" {
		return c.PartyName
	}
	if c.CreditType == TypePurchase {
		return c.Supplier.Label()
	}
	return c.Customer.Label()
}

// DocumentLabel names the originating document, e.g. "Sale INV-0007".
func (c Credit) DocumentLabel() string {
	if c.CreditType == TypePurchase {
		return "Purchase " + c.Purchase.reference(c.PurchaseID)
	}
	return "Sale " + c.Sale.reference(c.SaleID)
}

// Balance is the amount still due. A missing balance is derived from the
// total and the paid amount.
func (c Credit) Balance() decimal.Decimal {
	if !c.BalanceAmount.IsZero() {
		return c.BalanceAmount
	}
	return salesshared.Balance(c.TotalAmount, c.PaidAmount)
}

// Settled reports whether nothing is left to pay.
func (c Credit) Settled() bool { return !c.Balance().IsPositive() }

// Overdue reports whether the due date passed with a balance left.
func (c Credit) Overdue(today time.Time) bool {
	if c.Settled() || c.DueDate.IsZero() {
		return false
	}
	return c.DueDate.Before(apiclient.NewDate(today).Time)
}

// MethodName labels the payment method.
func (p Payment) MethodName() string { return p.PaymentMethod.Label() }

func (d *Document) reference(id apiclient.ID) string {
	if d == nil {
		return id.String()
	}
	switch {
	case d.InvoiceNumber != "":
		return d.InvoiceNumber
	case d.ReferenceNumber != "":
		return d.ReferenceNumber
	}
	return d.ID.String()
}
