package customers_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medistock/medistock/internal/pages"
	"github.com/medistock/medistock/internal/rbac"
	"github.com/medistock/medistock/internal/sales/customers"
	"github.com/medistock/medistock/internal/shared"
	"github.com/medistock/medistock/internal/testing/webtest"
)

func setup(t *testing.T) (http.Handler, *webtest.Env, *webtest.Backend) {
	t.Helper()
	env := webtest.New(t)
	backend := webtest.NewBackend(t)
	deps := pages.Deps{Logger: env.Logger, Views: env.Views, RBAC: rbac.Middleware{Views: env.Views}}
	handler := customers.NewHandler(deps, customers.NewService(backend.Client()))
	r := chi.NewRouter()
	r.Route("/customers", handler.MountRoutes)
	return r, env, backend
}

func TestListRendersCustomers(t *testing.T) {
	router, env, backend := setup(t)
	backend.JSON("GET /customers", http.StatusOK, `{"success":true,"data":{"items":[
		{"id":1,"name":"Central Pharmacy","customerType":"LICENSED","licenseExpiryDate":"2026-01-01"},
		{"id":"2","name":"Jane Doe","customerType":"WALK_IN","isActive":false}],"total":12}}`)

	res := env.Serve(router, httptest.NewRequest(http.MethodGet, "/customers?page=2&size=5&row=1", nil), env.Session(t, webtest.Admin()))

	require.Equal(t, http.StatusOK, res.Code)
	body := res.Body.String()
	assert.Contains(t, body, "Central Pharmacy")
	assert.Contains(t, body, "Walk in")
	assert.Contains(t, body, "page 2 of 3")
	assert.Contains(t, body, `class="drawer"`)

	call, ok := backend.Last(http.MethodGet, "/customers")
	require.True(t, ok)
	assert.Equal(t, "2", call.Query.Get("page"))
	assert.Equal(t, "5", call.Query.Get("limit"))
	assert.Equal(t, "name", call.Query.Get("sortBy"))
}

func TestListForbiddenListShowsMessageWithoutToast(t *testing.T) {
	router, env, backend := setup(t)
	backend.JSON("GET /customers", http.StatusForbidden, `{"success":false,"message":"Forbidden"}`)
	sess := env.Session(t, webtest.Operator(shared.PermCustomersView))

	res := env.Serve(router, httptest.NewRequest(http.MethodGet, "/customers", nil), sess)
	require.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, res.Body.String(), "You do not have permission")
	assert.Empty(t, webtest.Flashes(sess))
}

func TestCreateRequiresPermission(t *testing.T) {
	router, env, backend := setup(t)
	sess := env.Session(t, webtest.Operator(shared.PermCustomersView))

	res := env.Serve(router, webtest.Form("/customers", url.Values{"name": {"X"}}), sess)
	assert.Equal(t, http.StatusForbidden, res.Code)
	assert.Empty(t, backend.Calls())
}

func TestCreateLicensedValidatesDates(t *testing.T) {
	router, env, backend := setup(t)
	form := url.Values{
		"name":              {"Central Pharmacy"},
		"customerType":      {"LICENSED"},
		"licenseNumber":     {"LIC-1"},
		"licenseIssueDate":  {"2025-06-01"},
		"licenseExpiryDate": {"2025-01-01"},
	}
	res := env.Serve(router, webtest.Form("/customers", form), env.Session(t, webtest.Admin()))

	assert.Equal(t, http.StatusUnprocessableEntity, res.Code)
	assert.Contains(t, res.Body.String(), "License expiry date must be after issue date")
	assert.Empty(t, backend.Calls())
}

func TestCreateWalkInStripsLicense(t *testing.T) {
	router, env, backend := setup(t)
	backend.JSON("POST /customers", http.StatusCreated, `{"success":true,"data":{"id":31,"name":"Jane Doe"}}`)
	sess := env.Session(t, webtest.Admin())
	form := url.Values{
		"name":          {"Jane Doe"},
		"customerType":  {"WALK_IN"},
		"licenseNumber": {"LIC-1"},
		"tin":           {"T-1"},
		"phone":         {""},
		"isActive":      {"true"},
	}
	res := env.Serve(router, webtest.Form("/customers", form), sess)

	require.Equal(t, http.StatusSeeOther, res.Code)
	assert.Equal(t, "/customers", res.Header().Get("Location"))
	assert.Contains(t, webtest.Flashes(sess), "success: Customer created successfully")

	call, ok := backend.Last(http.MethodPost, "/customers")
	require.True(t, ok)
	assert.Equal(t, map[string]any{"name": "Jane Doe", "customerType": "WALK_IN", "isActive": true}, call.Body)
}

func TestCreateWalkInSendsOnlyName(t *testing.T) {
	router, env, backend := setup(t)
	backend.JSON("POST /customers", http.StatusCreated, `{"success":true,"data":{"id":32,"name":"Acme"}}`)

	res := env.Serve(router, webtest.Form("/customers", url.Values{"name": {"Acme"}, "customerType": {"WALK_IN"}}), env.Session(t, webtest.Admin()))

	require.Equal(t, http.StatusSeeOther, res.Code)
	call, ok := backend.Last(http.MethodPost, "/customers")
	require.True(t, ok)
	assert.Equal(t, map[string]any{"name": "Acme", "customerType": "WALK_IN"}, call.Body)
}

func TestDeleteForeignKeyIsRewritten(t *testing.T) {
	router, env, backend := setup(t)
	backend.JSON("DELETE /customers/4", http.StatusInternalServerError,
		`{"success":false,"message":"update or delete on table \"customers\" violates foreign key constraint \"fk\" on table \"sales\""}`)
	sess := env.Session(t, webtest.Admin())

	res := env.Serve(router, webtest.Form("/customers/4/delete", url.Values{}), sess)
	require.Equal(t, http.StatusSeeOther, res.Code)
	flashes := webtest.Flashes(sess)
	require.Len(t, flashes, 1)
	assert.Contains(t, flashes[0], "associated sales")
	assert.NotContains(t, flashes[0], "violates")
}

func TestEditUnknownCustomerIsNotFound(t *testing.T) {
	router, env, backend := setup(t)
	backend.JSON("GET /customers/99", http.StatusOK, `{"success":true,"data":null}`)

	res := env.Serve(router, httptest.NewRequest(http.MethodGet, "/customers/99/edit", nil), env.Session(t, webtest.Admin()))
	assert.Equal(t, http.StatusNotFound, res.Code)
}
