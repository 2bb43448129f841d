package quotations_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medistock/medistock/internal/masterdata/products"
	"github.com/medistock/medistock/internal/pages"
	"github.com/medistock/medistock/internal/rbac"
	"github.com/medistock/medistock/internal/sales/customers"
	"github.com/medistock/medistock/internal/sales/quotations"
	"github.com/medistock/medistock/internal/shared"
	"github.com/medistock/medistock/internal/testing/webtest"
)

func setup(t *testing.T) (http.Handler, *webtest.Env, *webtest.Backend) {
	t.Helper()
	env := webtest.New(t)
	backend := webtest.NewBackend(t)
	backend.JSON("GET /products/all", http.StatusOK, `[{"id":"p1","name":"Paracetamol","sellingPrice":2}]`)
	backend.JSON("GET /customers/all", http.StatusOK, `[{"id":"c1","name":"Central Pharmacy"}]`)
	client := backend.Client()
	deps := pages.Deps{Logger: env.Logger, Views: env.Views, RBAC: rbac.Middleware{Views: env.Views}}
	handler := quotations.NewHandler(deps, quotations.NewService(client), quotations.Refs{
		Catalog:   products.NewService(client),
		Customers: customers.NewService(client),
	})
	r := chi.NewRouter()
	r.Route("/quotations", handler.MountRoutes)
	return r, env, backend
}

func quotationForm(from, until string) url.Values {
	return url.Values{
		"customerId":         {"c1"},
		"quotationDate":      {from},
		"validUntil":         {until},
		"items[0].productId": {"p1"},
		"items[0].quantity":  {"10"},
		"items[0].unitPrice": {"2"},
	}
}

func TestCreateRejectsExpiryBeforeDate(t *testing.T) {
	router, env, backend := setup(t)

	res := env.Serve(router, webtest.Form("/quotations", quotationForm("2026-05-10", "2026-05-01")), env.Session(t, webtest.Admin()))

	assert.Equal(t, http.StatusUnprocessableEntity, res.Code)
	assert.Contains(t, res.Body.String(), quotations.MsgValidUntilBeforeDate)
	_, posted := backend.Last(http.MethodPost, "/quotations")
	assert.False(t, posted)
}

func TestCreateRequiresCustomer(t *testing.T) {
	router, env, _ := setup(t)
	form := quotationForm("2026-05-01", "2026-05-31")
	form.Del("customerId")

	res := env.Serve(router, webtest.Form("/quotations", form), env.Session(t, webtest.Admin()))

	assert.Equal(t, http.StatusUnprocessableEntity, res.Code)
	assert.Contains(t, res.Body.String(), "Customer is required")
}

func TestCreateSameDayIsValid(t *testing.T) {
	router, env, backend := setup(t)
	backend.JSON("POST /quotations", http.StatusCreated, `{"id":3}`)
	sess := env.Session(t, webtest.Admin())

	res := env.Serve(router, webtest.Form("/quotations", quotationForm("2026-05-01", "2026-05-01")), sess)

	require.Equal(t, http.StatusSeeOther, res.Code)
	call, ok := backend.Last(http.MethodPost, "/quotations")
	require.True(t, ok)
	assert.Equal(t, "20", call.Body["totalAmount"])
	assert.Equal(t, "c1", call.Body["customerId"])
}

func TestConvertRedirectsToSale(t *testing.T) {
	router, env, backend := setup(t)
	backend.JSON("POST /quotations/3/convert", http.StatusCreated, `{"success":true,"data":{"id":55}}`)
	sess := env.Session(t, webtest.Admin())

	res := env.Serve(router, webtest.Form("/quotations/3/convert", url.Values{}), sess)

	require.Equal(t, http.StatusSeeOther, res.Code)
	assert.Equal(t, "/sales?row=55", res.Header().Get("Location"))
	assert.Contains(t, webtest.Flashes(sess), "success: Quotation converted to sale")
}

func TestConvertNeedsSalesPermission(t *testing.T) {
	router, env, backend := setup(t)
	sess := env.Session(t, webtest.Operator(shared.PermQuotationsView))

	res := env.Serve(router, webtest.Form("/quotations/3/convert", url.Values{}), sess)

	assert.Equal(t, http.StatusForbidden, res.Code)
	assert.Empty(t, backend.Calls())
}

func TestStatusRejectsInvalidTransition(t *testing.T) {
	router, env, backend := setup(t)
	backend.JSON("GET /quotations/3", http.StatusOK, `{"id":3,"status":"CONVERTED"}`)
	sess := env.Session(t, webtest.Admin())

	res := env.Serve(router, webtest.Form("/quotations/3/status", url.Values{"status": {"ACCEPTED"}}), sess)

	require.Equal(t, http.StatusSeeOther, res.Code)
	assert.Contains(t, webtest.Flashes(sess), "error: This quotation cannot be marked Accepted.")
	_, patched := backend.Last(http.MethodPatch, "/quotations/3")
	assert.False(t, patched)
}

func TestStatusPatchesAllowedTransition(t *testing.T) {
	router, env, backend := setup(t)
	backend.JSON("GET /quotations/3", http.StatusOK, `{"id":3,"status":"DRAFT"}`)
	backend.JSON("PATCH /quotations/3", http.StatusOK, `{"id":3,"status":"SENT"}`)

	res := env.Serve(router, webtest.Form("/quotations/3/status", url.Values{"status": {"SENT"}}), env.Session(t, webtest.Admin()))

	require.Equal(t, http.StatusSeeOther, res.Code)
	call, ok := backend.Last(http.MethodPatch, "/quotations/3")
	require.True(t, ok)
	assert.Equal(t, "SENT", call.Body["status"])
}

func TestListShowsConvertForOpenQuotation(t *testing.T) {
	router, env, backend := setup(t)
	backend.JSON("GET /quotations", http.StatusOK, `{"data":{"items":[{"id":3,"quotationNumber":"QT-3","status":"SENT",
		"customer":{"id":"c1","name":"Central Pharmacy"},"totalAmount":20}],"total":1}}`)

	res := env.Serve(router, httptest.NewRequest(http.MethodGet, "/quotations?row=3", nil), env.Session(t, webtest.Admin()))

	require.Equal(t, http.StatusOK, res.Code)
	body := res.Body.String()
	assert.Contains(t, body, "QT-3")
	assert.Contains(t, body, "Convert to sale")
	assert.Contains(t, body, "Mark Accepted")
}
