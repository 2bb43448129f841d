package credits

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestPaymentValidate(t *testing.T) {
	balance := decimal.RequireFromString("100")
	today := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	in := NewPaymentInput(balance, today)
	assert.True(t, in.Validate(balance).Empty())
	assert.Equal(t, "2026-03-01", in.PaymentDate)

	in.Amount = decimal.RequireFromString("100.01")
	errs := in.Validate(balance)
	assert.Equal(t, "Payment amount cannot exceed balance (100.00)", errs["amount"])

	in.Amount = decimal.Zero
	in.PaymentDate = "01/03/2026"
	errs = in.Validate(balance)
	assert.Equal(t, "Amount must be greater than 0", errs["amount"])
	assert.Equal(t, "Payment date must be a valid date", errs["paymentDate"])
}

func TestExceedsBalanceMessageIsUngrouped(t *testing.T) {
	assert.Equal(t, "Payment amount cannot exceed balance (1500.00)", ExceedsBalanceMessage(decimal.RequireFromString("1500")))
	assert.Equal(t, "Payment amount cannot exceed balance (1234567.89)", ExceedsBalanceMessage(decimal.RequireFromString("1234567.89")))
}

func TestPaymentPayloadOmitsBlankOptionalFields(t *testing.T) {
	in := PaymentInput{Amount: decimal.RequireFromString("12.345"), PaymentDate: "2026-03-01"}

	payload := in.Payload()

	assert.Equal(t, "12.35", payload["amount"].(decimal.Decimal).StringFixed(2))
	assert.NotContains(t, payload, "paymentMethodId")
	assert.NotContains(t, payload, "reference")
}

func TestCreditBalanceAndOverdue(t *testing.T) {
	today := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	c := Credit{CreditType: TypePurchase, Purchase: &Document{ReferenceNumber: "PO-12"},
		TotalAmount: decimal.RequireFromString("80"), PaidAmount: decimal.RequireFromString("30")}
	c.DueDate.Time = today.AddDate(0, 0, -1)

	assert.Equal(t, "50", c.Balance().String())
	assert.Equal(t, "Purchase PO-12", c.DocumentLabel())
	assert.True(t, c.Overdue(today))

	c.PaidAmount = c.TotalAmount
	assert.True(t, c.Settled())
	assert.False(t, c.Overdue(today))
}
