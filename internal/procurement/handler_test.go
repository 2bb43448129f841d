package procurement_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medistock/medistock/internal/masterdata/products"
	"github.com/medistock/medistock/internal/masterdata/suppliers"
	"github.com/medistock/medistock/internal/pages"
	"github.com/medistock/medistock/internal/procurement"
	"github.com/medistock/medistock/internal/rbac"
	"github.com/medistock/medistock/internal/shared"
	"github.com/medistock/medistock/internal/testing/webtest"
)

func setup(t *testing.T) (http.Handler, *webtest.Env, *webtest.Backend) {
	t.Helper()
	env := webtest.New(t)
	backend := webtest.NewBackend(t)
	backend.JSON("GET /products/all", http.StatusOK, `[{"id":"p1","name":"Ibuprofen","purchasePrice":"3.25","sellingPrice":"5"}]`)
	backend.JSON("GET /suppliers/all", http.StatusOK, `[{"id":"s1","name":"MedSupply Ltd","isActive":true}]`)
	client := backend.Client()
	deps := pages.Deps{Logger: env.Logger, Views: env.Views, RBAC: rbac.Middleware{Views: env.Views}}
	handler := procurement.NewHandler(deps, procurement.NewService(client), procurement.Refs{
		Catalog:   products.NewService(client),
		Suppliers: suppliers.NewService(client),
	})
	r := chi.NewRouter()
	r.Route(procurement.BasePath, handler.MountRoutes)
	return r, env, backend
}

func purchaseForm(mfg, exp string) url.Values {
	return url.Values{
		"supplierId":                 {"s1"},
		"purchaseDate":               {"2026-02-01"},
		"items[0].productId":         {"p1"},
		"items[0].batchNumber":       {"IBU-7"},
		"items[0].manufacturingDate": {mfg},
		"items[0].expiryDate":        {exp},
		"items[0].quantity":          {"100"},
		"items[0].unitPrice":         {"3.25"},
	}
}

func TestCreateRejectsExpiryBeforeManufacturing(t *testing.T) {
	router, env, backend := setup(t)

	res := env.Serve(router, webtest.Form(procurement.BasePath, purchaseForm("2025-06-01", "2025-05-01")), env.Session(t, webtest.Admin()))

	assert.Equal(t, http.StatusUnprocessableEntity, res.Code)
	assert.Contains(t, res.Body.String(), products.MsgExpiryBeforeMfg)
	_, posted := backend.Last(http.MethodPost, "/purchases")
	assert.False(t, posted)
}

func TestCreateRejectsFutureManufacturing(t *testing.T) {
	router, env, _ := setup(t)

	res := env.Serve(router, webtest.Form(procurement.BasePath, purchaseForm("2999-01-01", "3000-01-01")), env.Session(t, webtest.Admin()))

	assert.Equal(t, http.StatusUnprocessableEntity, res.Code)
	assert.Contains(t, res.Body.String(), products.MsgManufacturingInFuture)
}

func TestCreateRequiresSupplier(t *testing.T) {
	router, env, _ := setup(t)
	form := purchaseForm("2025-01-01", "2027-01-01")
	form.Del("supplierId")

	res := env.Serve(router, webtest.Form(procurement.BasePath, form), env.Session(t, webtest.Admin()))

	assert.Equal(t, http.StatusUnprocessableEntity, res.Code)
	assert.Contains(t, res.Body.String(), "Supplier is required")
}

func TestCreatePostsBatches(t *testing.T) {
	router, env, backend := setup(t)
	backend.JSON("POST /purchases", http.StatusCreated, `{"success":true,"data":{"id":12,"referenceNumber":"PO-12"}}`)
	sess := env.Session(t, webtest.Admin())

	res := env.Serve(router, webtest.Form(procurement.BasePath, purchaseForm("2025-01-01", "2027-01-01")), sess)

	require.Equal(t, http.StatusSeeOther, res.Code)
	assert.Contains(t, webtest.Flashes(sess), "success: Purchase created successfully")
	call, ok := backend.Last(http.MethodPost, "/purchases")
	require.True(t, ok)
	assert.Equal(t, "325", call.Body["totalAmount"])
	assert.Equal(t, "PENDING", call.Body["status"])
	items := call.Body["items"].([]any)
	require.Len(t, items, 1)
	line := items[0].(map[string]any)
	assert.Equal(t, "IBU-7", line["batchNumber"])
	assert.Equal(t, "2027-01-01", line["expiryDate"])
}

func TestAddLinePrefillsPurchasePrice(t *testing.T) {
	router, env, _ := setup(t)
	form := url.Values{"action": {"add-line"}, "supplierId": {"s1"}, "items[0].productId": {"p1"}, "items[0].quantity": {"2"}}

	res := env.Serve(router, webtest.Form(procurement.BasePath, form), env.Session(t, webtest.Admin()))

	require.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, res.Body.String(), `name="items[0].unitPrice" value="3.25"`)
	assert.Contains(t, res.Body.String(), "6.50")
}

func TestReceiveMarksStatus(t *testing.T) {
	router, env, backend := setup(t)
	backend.JSON("PATCH /purchases/12", http.StatusOK, `{"id":12,"status":"RECEIVED"}`)
	sess := env.Session(t, webtest.Operator(shared.PermPurchasesView, shared.PermPurchasesCreate))

	res := env.Serve(router, webtest.Form(procurement.BasePath+"/12/receive", url.Values{}), sess)

	require.Equal(t, http.StatusSeeOther, res.Code)
	call, ok := backend.Last(http.MethodPatch, "/purchases/12")
	require.True(t, ok)
	assert.Equal(t, "RECEIVED", call.Body["status"])
}

func TestRequisitionPrints(t *testing.T) {
	router, env, backend := setup(t)
	backend.JSON("GET /purchases/12", http.StatusOK, `{"id":12,"referenceNumber":"PO-12","supplier":{"id":"s1","name":"MedSupply Ltd"},
		"totalAmount":325,"paidAmount":100,"items":[{"product":{"name":"Ibuprofen"},"batchNumber":"IBU-7","expiryDate":"2027-01-01","quantity":100,"unitPrice":3.25}]}`)

	res := env.Serve(router, httptest.NewRequest(http.MethodGet, procurement.BasePath+"/12/requisition", nil), env.Session(t, webtest.Admin()))

	require.Equal(t, http.StatusOK, res.Code)
	body := res.Body.String()
	assert.Contains(t, body, "Purchase requisition")
	assert.Contains(t, body, "MedSupply Ltd")
	assert.Contains(t, body, "IBU-7")
	assert.Contains(t, body, "225.00")
}

func TestRequisitionUnknownPurchase(t *testing.T) {
	router, env, backend := setup(t)
	backend.JSON("GET /purchases/404", http.StatusOK, `{"success":true,"data":null}`)

	res := env.Serve(router, httptest.NewRequest(http.MethodGet, procurement.BasePath+"/404/requisition", nil), env.Session(t, webtest.Admin()))

	assert.Equal(t, http.StatusNotFound, res.Code)
}
