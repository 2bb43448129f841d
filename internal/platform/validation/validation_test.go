package validation

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type lineForm struct {
	Quantity  decimal.Decimal `form:"quantity" validate:"gt=0"`
	UnitPrice decimal.Decimal `form:"unitPrice" validate:"gte=0"`
}

type sampleForm struct {
	Name       string     `form:"name" validate:"required,max=10"`
	Email      string     `form:"email" validate:"omitempty,email"`
	Kind       string     `form:"kind" validate:"required,oneof=LICENSED WALK_IN"`
	License    string     `form:"licenseNumber" validate:"required_if=Kind LICENSED"`
	IssuedOn   string     `form:"licenseIssueDate" validate:"required_if=Kind LICENSED"`
	CategoryID string     `form:"categoryId" validate:"required"`
	Items      []lineForm `form:"items" validate:"min=1,dive"`
}

func TestStructKeysByFormName(t *testing.T) {
	errs := Struct(sampleForm{
		Name:  "A very long product name",
		Email: "nope",
		Kind:  "LICENSED",
		Items: []lineForm{{Quantity: decimal.Zero, UnitPrice: decimal.NewFromInt(-1)}},
	})

	assert.Equal(t, "Name must be at most 10 characters", errs["name"])
	assert.Equal(t, "Email must be a valid email address", errs["email"])
	assert.Equal(t, "License number is required", errs["licenseNumber"])
	assert.Equal(t, "License issue date is required", errs["licenseIssueDate"])
	assert.Equal(t, "Category is required", errs["categoryId"])
	assert.Equal(t, "Quantity must be greater than 0", errs["items[0].quantity"])
	assert.Equal(t, "Unit price must be 0 or more", errs["items[0].unitPrice"])
}

func TestStructConditionalRulesSkipWalkIn(t *testing.T) {
	errs := Struct(sampleForm{
		Name:       "Acme",
		Kind:       "WALK_IN",
		CategoryID: "1",
		Items:      []lineForm{{Quantity: decimal.NewFromInt(1)}},
	})
	assert.True(t, errs.Empty())
	assert.NoError(t, errs.Err())
}

func TestEmptyLinesRejected(t *testing.T) {
	errs := Struct(sampleForm{Name: "x", Kind: "WALK_IN", CategoryID: "1"})
	assert.Equal(t, "Items must have at least 1 entries", errs["items"])
}

func TestErrorsUserMessage(t *testing.T) {
	errs := Errors{}
	errs.Add("amount", "Payment amount cannot exceed balance (100.00)")
	errs.Add("amount", "ignored")
	assert.Equal(t, "Payment amount cannot exceed balance (100.00)", errs.UserMessage())

	errs.Add("notes", "Notes is invalid")
	assert.Equal(t, "Please correct the highlighted fields.", errs.UserMessage())

	got, ok := As(errs.Err())
	require.True(t, ok)
	assert.True(t, got.Has("notes"))
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "License expiry date", Label("licenseExpiryDate"))
	assert.Equal(t, "Category", Label("categoryId"))
	assert.Equal(t, "TIN", Label("tin"))
}
