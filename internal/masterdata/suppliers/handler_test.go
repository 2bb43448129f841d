package suppliers_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medistock/medistock/internal/masterdata/suppliers"
	"github.com/medistock/medistock/internal/pages"
	"github.com/medistock/medistock/internal/rbac"
	"github.com/medistock/medistock/internal/shared"
	"github.com/medistock/medistock/internal/testing/webtest"
)

func setup(t *testing.T) (http.Handler, *webtest.Env, *webtest.Backend) {
	t.Helper()
	env := webtest.New(t)
	backend := webtest.NewBackend(t)
	deps := pages.Deps{Logger: env.Logger, Views: env.Views, RBAC: rbac.Middleware{Views: env.Views}}
	handler := suppliers.NewHandler(deps, suppliers.NewService(backend.Client()))
	r := chi.NewRouter()
	r.Route("/suppliers", handler.MountRoutes)
	return r, env, backend
}

func TestListPassesTypeFilter(t *testing.T) {
	router, env, backend := setup(t)
	backend.JSON("GET /suppliers", http.StatusOK, `{"entities":[{"id":7,"name":"Acme Pharma","supplierType":"LICENSED","contactPerson":"B. Okafor"}],"total":1}`)
	sess := env.Session(t, webtest.Operator(shared.PermPurchasesCreate))

	res := env.Serve(router, httptest.NewRequest(http.MethodGet, "/suppliers?supplierType=LICENSED", nil), sess)

	require.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, res.Body.String(), "Acme Pharma")
	assert.NotContains(t, res.Body.String(), "New Supplier")

	call, ok := backend.Last(http.MethodGet, "/suppliers")
	require.True(t, ok)
	assert.Equal(t, "LICENSED", call.Query.Get("supplierType"))
}

func TestCreateSendsContactPerson(t *testing.T) {
	router, env, backend := setup(t)
	backend.JSON("POST /suppliers", http.StatusCreated, `{"success":true,"data":{"id":8,"name":"Acme Pharma"}}`)
	sess := env.Session(t, webtest.Admin())
	form := url.Values{
		"name":              {"Acme Pharma"},
		"supplierType":      {"LICENSED"},
		"contactPerson":     {"B. Okafor"},
		"licenseNumber":     {"LIC-9"},
		"licenseIssueDate":  {"2024-01-01"},
		"licenseExpiryDate": {"2027-01-01"},
		"isActive":          {"on"},
	}

	res := env.Serve(router, webtest.Form("/suppliers", form), sess)

	require.Equal(t, http.StatusSeeOther, res.Code)
	assert.Equal(t, "/suppliers", res.Header().Get("Location"))
	assert.Contains(t, webtest.Flashes(sess), "success: Supplier created successfully")

	call, ok := backend.Last(http.MethodPost, "/suppliers")
	require.True(t, ok)
	assert.Equal(t, map[string]any{
		"name":              "Acme Pharma",
		"supplierType":      "LICENSED",
		"contactPerson":     "B. Okafor",
		"licenseNumber":     "LIC-9",
		"licenseIssueDate":  "2024-01-01",
		"licenseExpiryDate": "2027-01-01",
		"isActive":          true,
	}, call.Body)
}

func TestCreateLicensedRequiresLicense(t *testing.T) {
	router, env, backend := setup(t)

	res := env.Serve(router, webtest.Form("/suppliers", url.Values{"name": {"Acme"}, "supplierType": {"LICENSED"}}), env.Session(t, webtest.Admin()))

	assert.Equal(t, http.StatusUnprocessableEntity, res.Code)
	assert.Contains(t, res.Body.String(), "License number is required")
	assert.Empty(t, backend.Calls())
}

func TestUpdatePatchesSupplier(t *testing.T) {
	router, env, backend := setup(t)
	backend.JSON("PATCH /suppliers/8", http.StatusOK, `{"success":true,"data":{"id":8,"name":"Acme"}}`)
	sess := env.Session(t, webtest.Operator(shared.PermSuppliersEdit))

	res := env.Serve(router, webtest.Form("/suppliers/8/edit", url.Values{"name": {"Acme"}, "supplierType": {"WALK_IN"}}), sess)

	require.Equal(t, http.StatusSeeOther, res.Code)
	call, ok := backend.Last(http.MethodPatch, "/suppliers/8")
	require.True(t, ok)
	assert.Equal(t, map[string]any{"name": "Acme", "supplierType": "WALK_IN", "isActive": false}, call.Body)
}

func TestDeleteWithoutPermissionIsForbidden(t *testing.T) {
	router, env, backend := setup(t)

	res := env.Serve(router, webtest.Form("/suppliers/8/delete", url.Values{}), env.Session(t, webtest.Operator(shared.PermSuppliersView)))

	assert.Equal(t, http.StatusForbidden, res.Code)
	assert.Empty(t, backend.Calls())
}
