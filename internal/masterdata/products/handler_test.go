package products_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medistock/medistock/internal/masterdata/lookups"
	"github.com/medistock/medistock/internal/masterdata/products"
	"github.com/medistock/medistock/internal/pages"
	"github.com/medistock/medistock/internal/rbac"
	"github.com/medistock/medistock/internal/testing/webtest"
)

func setup(t *testing.T) (http.Handler, *webtest.Env, *webtest.Backend) {
	t.Helper()
	env := webtest.New(t)
	backend := webtest.NewBackend(t)
	client := backend.Client()
	deps := pages.Deps{Logger: env.Logger, Views: env.Views, RBAC: rbac.Middleware{Views: env.Views}}
	handler := products.NewHandler(deps, products.NewService(client), products.Lookups{
		Categories:    lookups.NewService(client, lookups.Categories),
		Manufacturers: lookups.NewService(client, lookups.Manufacturers),
		Units:         lookups.NewService(client, lookups.Units),
	})
	backend.JSON("GET /categories/all", http.StatusOK, `[{"id":3,"name":"Antibiotics"},{"id":4,"name":"Retired","isActive":false}]`)
	backend.JSON("GET /manufacturers/all", http.StatusOK, `{"success":true,"data":[{"id":"m1","name":"Acme Labs"}]}`)
	backend.JSON("GET /uom/all", http.StatusOK, `{"entities":[{"id":1,"name":"Box"}],"total":1}`)
	r := chi.NewRouter()
	r.Route(products.BasePath, handler.MountRoutes)
	return r, env, backend
}

func TestNewFormListsActiveLookups(t *testing.T) {
	router, env, _ := setup(t)
	res := env.Serve(router, httptest.NewRequest(http.MethodGet, "/masterdata/products/new", nil), env.Session(t, webtest.Admin()))

	require.Equal(t, http.StatusOK, res.Code)
	body := res.Body.String()
	assert.Contains(t, body, "Antibiotics")
	assert.NotContains(t, body, "Retired")
	assert.Contains(t, body, "Acme Labs")
	assert.Contains(t, body, "Box")
	assert.Contains(t, body, "Opening batch")
}

func TestCreateRejectsFutureBatchWithoutCallingBackend(t *testing.T) {
	router, env, backend := setup(t)
	form := url.Values{
		"name": {"Amoxicillin"}, "categoryId": {"3"}, "uomId": {"1"},
		"purchasePrice": {"1.00"}, "sellingPrice": {"2.00"},
		"batchNumber": {"B1"}, "batchQuantity": {"10"},
		"manufacturingDate": {"2999-01-01"}, "expiryDate": {"3000-01-01"},
	}
	res := env.Serve(router, webtest.Form("/masterdata/products", form), env.Session(t, webtest.Admin()))

	assert.Equal(t, http.StatusUnprocessableEntity, res.Code)
	assert.Contains(t, res.Body.String(), products.MsgManufacturingInFuture)
	_, posted := backend.Last(http.MethodPost, "/products")
	assert.False(t, posted)
}

func TestCreateRejectsBadNumbers(t *testing.T) {
	router, env, backend := setup(t)
	form := url.Values{"name": {"Amoxicillin"}, "categoryId": {"3"}, "uomId": {"1"}, "sellingPrice": {"abc"}}
	res := env.Serve(router, webtest.Form("/masterdata/products", form), env.Session(t, webtest.Admin()))

	assert.Equal(t, http.StatusUnprocessableEntity, res.Code)
	assert.Contains(t, res.Body.String(), "Selling price must be a number")
	_, posted := backend.Last(http.MethodPost, "/products")
	assert.False(t, posted)
}

func TestCreatePostsProduct(t *testing.T) {
	router, env, backend := setup(t)
	backend.JSON("POST /products", http.StatusCreated, `{"success":true,"data":{"id":77,"name":"Amoxicillin"}}`)
	sess := env.Session(t, webtest.Admin())
	form := url.Values{
		"name": {"Amoxicillin"}, "categoryId": {"3"}, "uomId": {"1"},
		"purchasePrice": {"1,200.50"}, "sellingPrice": {"1500"}, "reorderLevel": {"5"},
		"batchNumber": {"B1"}, "batchQuantity": {"10"}, "manufacturingDate": {"2024-01-01"}, "expiryDate": {"2026-01-01"},
	}
	res := env.Serve(router, webtest.Form("/masterdata/products", form), sess)

	require.Equal(t, http.StatusSeeOther, res.Code)
	assert.Equal(t, products.BasePath, res.Header().Get("Location"))
	assert.Contains(t, webtest.Flashes(sess), "success: Product created successfully")

	call, ok := backend.Last(http.MethodPost, "/products")
	require.True(t, ok)
	assert.Equal(t, "1200.5", call.Body["purchasePrice"])
	assert.Equal(t, "ACTIVE", call.Body["status"])
	assert.EqualValues(t, 5, call.Body["reorderLevel"])
	batches, ok := call.Body["batches"].([]any)
	require.True(t, ok)
	assert.Len(t, batches, 1)
}

func TestListMarksLowStock(t *testing.T) {
	router, env, backend := setup(t)
	backend.JSON("GET /products", http.StatusOK, `{"data":[{"id":1,"name":"Paracetamol","quantity":4,"reorderLevel":10,"sellingPrice":"1.5","status":"ACTIVE","category":{"id":3,"name":"Analgesics"}}]}`)

	res := env.Serve(router, httptest.NewRequest(http.MethodGet, "/masterdata/products?categoryId=3", nil), env.Session(t, webtest.Admin()))
	require.Equal(t, http.StatusOK, res.Code)
	body := res.Body.String()
	assert.Contains(t, body, "Paracetamol")
	assert.Contains(t, body, "At or below reorder level")
	assert.Contains(t, body, "Analgesics")

	call, _ := backend.Last(http.MethodGet, "/products")
	assert.Equal(t, "3", call.Query.Get("categoryId"))
}
