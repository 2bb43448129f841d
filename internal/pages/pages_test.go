package pages

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medistock/medistock/internal/audit"
	"github.com/medistock/medistock/internal/platform/validation"
)

type recordedEntries struct{ entries []audit.Entry }

func (r *recordedEntries) Record(_ context.Context, e audit.Entry) { r.entries = append(r.entries, e) }

type countingCache struct{ calls int }

func (c *countingCache) Invalidate(context.Context) { c.calls++ }

func postForm(values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	_ = req.ParseForm()
	return req
}

func TestFormParsesNumbers(t *testing.T) {
	f := NewForm(postForm(url.Values{
		"items[0].unitPrice": {"1,250.50"},
		"items[0].quantity":  {"3"},
		"items[1].quantity":  {"two"},
		"discount":           {"abc"},
		"paid":               {"on"},
	}))

	assert.Equal(t, "1250.5", f.Decimal("items[0].unitPrice").String())
	assert.Equal(t, 3, f.Int("items[0].quantity"))
	assert.Equal(t, 0, f.Int("items[1].quantity"))
	assert.True(t, f.Decimal("missing").IsZero())
	assert.True(t, f.Decimal("discount").IsZero())
	assert.True(t, f.Bool("paid"))
	assert.False(t, f.Bool("missing"))

	assert.Equal(t, "Quantity must be a whole number", f.Errs["items[1].quantity"])
	assert.Equal(t, "Discount must be a number", f.Errs["discount"])
	assert.Len(t, f.Errs, 2)
}

func TestStateCarriesFilters(t *testing.T) {
	d := Deps{PageSize: 20}.WithDefaults()
	req := httptest.NewRequest(http.MethodGet, "/sales?status=%20PAID%20&page=3", nil)

	st := d.State(req, "createdAt", true, "status", "customerId")

	assert.Equal(t, 2, st.PageIndex)
	assert.Equal(t, 20, st.PageSize)
	assert.Equal(t, "createdAt", st.Sort)
	assert.True(t, st.Desc)
	assert.Equal(t, "PAID", st.Filter("status"))
	assert.Empty(t, st.Filter("customerId"))
}

func TestMutationFailedKeepsFieldErrors(t *testing.T) {
	d := Deps{}.WithDefaults()
	errs := d.MutationFailed(context.Background(), validation.Errors{"name": "Name is required"}, "create", http.MethodPost)
	assert.Equal(t, validation.Errors{"name": "Name is required"}, errs)

	errs = d.MutationFailed(context.Background(), errors.New("dial tcp: refused"), "create", http.MethodPost)
	require.Contains(t, errs, validation.GeneralKey)
	assert.NotEmpty(t, errs[validation.GeneralKey])
}

func TestDoneRecordsAndInvalidates(t *testing.T) {
	rec := &recordedEntries{}
	cache := &countingCache{}
	d := Deps{Audit: rec, Cache: cache}.WithDefaults()
	res := httptest.NewRecorder()

	d.Done(res, httptest.NewRequest(http.MethodPost, "/credits/1/pay", nil), "/credits", "Payment recorded",
		audit.Entry{Action: audit.ActionPay, Entity: "credit", EntityID: "1"})

	assert.Equal(t, http.StatusSeeOther, res.Code)
	assert.Equal(t, "/credits", res.Header().Get("Location"))
	require.Len(t, rec.entries, 1)
	assert.Equal(t, "credit", rec.entries[0].Entity)
	assert.Equal(t, 1, cache.calls)

	d.Done(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/", nil), "/", "ok", audit.Entry{})
	assert.Len(t, rec.entries, 1)
}

func TestSafeFilename(t *testing.T) {
	assert.Equal(t, "invoice-INV-0007.pdf", safeFilename("invoice-INV-0007.pdf"))
	assert.Equal(t, "a--b-.pdf", safeFilename(`a/"b".pdf`))
}
