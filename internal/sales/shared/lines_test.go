package shared_test

import (
	"net/url"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medistock/medistock/internal/pages"
	"github.com/medistock/medistock/internal/platform/validation"
	salesshared "github.com/medistock/medistock/internal/sales/shared"
	"github.com/medistock/medistock/internal/testing/webtest"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestComputeTotals(t *testing.T) {
	lines := []salesshared.Line{
		{Quantity: d("3"), UnitPrice: d("0.10")},
		{Quantity: d("2"), UnitPrice: d("19.995")},
	}
	totals := salesshared.Compute(lines, d("5"))
	assert.Equal(t, "40.29", totals.Subtotal.StringFixed(2))
	assert.Equal(t, "35.29", totals.Total.StringFixed(2))

	assert.True(t, salesshared.Compute(lines, d("100")).Total.IsZero())
}

func TestBalanceNeverNegative(t *testing.T) {
	assert.Equal(t, "25.50", salesshared.Balance(d("100"), d("74.50")).StringFixed(2))
	assert.True(t, salesshared.Balance(d("10"), d("12")).IsZero())
}

func TestParseLinesDropsBlankRowsAndRenumbers(t *testing.T) {
	req := webtest.Form("/sales", url.Values{
		"items[0].productId": {"p1"}, "items[0].quantity": {"2"}, "items[0].unitPrice": {"1.50"},
		"items[1].productId": {""}, "items[1].quantity": {""},
		"items[10].productId": {"p2"}, "items[10].quantity": {"0"}, "items[10].unitPrice": {"-1"},
		"customerId": {"c1"},
	})
	require.NoError(t, req.ParseForm())
	f := pages.NewForm(req)

	lines := salesshared.ParseLines(f)
	require.Len(t, lines, 2)
	assert.Equal(t, "p1", lines[0].ProductID)
	assert.Equal(t, "3.00", lines[0].Total().StringFixed(2))
	assert.Equal(t, "p2", lines[1].ProductID)

	errs := validation.Errors{}
	salesshared.ValidateLines(errs, lines)
	assert.Equal(t, "Quantity must be greater than 0", errs["items[1].quantity"])
	assert.Equal(t, "Unit price must be 0 or more", errs["items[1].unitPrice"])
	assert.NotContains(t, errs, "items[0].quantity")
}

func TestValidateLinesRequiresOne(t *testing.T) {
	errs := validation.Errors{}
	salesshared.ValidateLines(errs, nil)
	assert.Equal(t, salesshared.MsgNoLines, errs[salesshared.LinesKey])
}

func TestParseLinesReportsBadNumbers(t *testing.T) {
	req := webtest.Form("/sales", url.Values{"items[0].productId": {"p1"}, "items[0].quantity": {"two"}})
	require.NoError(t, req.ParseForm())
	f := pages.NewForm(req)
	salesshared.ParseLines(f)
	assert.Equal(t, "Quantity must be a number", f.Errs["items[0].quantity"])
}
