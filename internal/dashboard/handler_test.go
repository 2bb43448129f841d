package dashboard_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medistock/medistock/internal/dashboard"
	"github.com/medistock/medistock/internal/pages"
	"github.com/medistock/medistock/internal/rbac"
	"github.com/medistock/medistock/internal/shared"
	"github.com/medistock/medistock/internal/testing/webtest"
)

func setup(t *testing.T) (http.Handler, *webtest.Env, *webtest.Backend) {
	t.Helper()
	env := webtest.New(t)
	backend := webtest.NewBackend(t)
	svc := dashboard.NewService(backend.Client(), dashboard.NewCache(env.Client, time.Minute), env.Logger, nil)
	deps := pages.Deps{Logger: env.Logger, Views: env.Views, RBAC: rbac.Middleware{Views: env.Views}, Cache: svc}
	r := chi.NewRouter()
	dashboard.NewHandler(deps, svc).MountRoutes(r)
	return r, env, backend
}

func TestIndexRendersOverview(t *testing.T) {
	router, env, backend := setup(t)
	backend.JSON("GET /dashboard/summary", http.StatusOK, `{"todaySales":1234.5,"totalProducts":80}`)
	backend.JSON("GET /dashboard/recent-sales", http.StatusOK, `[{"id":1,"invoiceNumber":"INV-0001","customer":{"id":2,"name":"Central Pharmacy"},"totalAmount":10}]`)
	backend.JSON("GET /dashboard/low-stock", http.StatusOK, `[]`)
	backend.JSON("GET /dashboard/expiring", http.StatusOK, `[]`)

	res := env.Serve(router, httptest.NewRequest(http.MethodGet, "/", nil), env.Session(t, webtest.Admin()))

	require.Equal(t, http.StatusOK, res.Code)
	body := res.Body.String()
	assert.Contains(t, body, "1,234.50")
	assert.Contains(t, body, "Central Pharmacy")
	assert.Contains(t, body, "Stock levels are healthy.")
}

func TestIndexShowsSingleErrorWhenJoinFails(t *testing.T) {
	router, env, backend := setup(t)
	backend.JSON("GET /dashboard/summary", http.StatusOK, `{}`)
	backend.JSON("GET /dashboard/recent-sales", http.StatusOK, `[]`)
	backend.JSON("GET /dashboard/low-stock", http.StatusOK, `[]`)
	backend.JSON("GET /dashboard/expiring", http.StatusServiceUnavailable, `{"message":"down"}`)

	res := env.Serve(router, httptest.NewRequest(http.MethodGet, "/", nil), env.Session(t, webtest.Admin()))

	require.Equal(t, http.StatusOK, res.Code)
	body := res.Body.String()
	assert.Contains(t, body, `class="datatable-error"`)
	assert.NotContains(t, body, "Recent sales")
}

func TestIndexWithoutPermissionSkipsBackend(t *testing.T) {
	router, env, backend := setup(t)

	res := env.Serve(router, httptest.NewRequest(http.MethodGet, "/", nil), env.Session(t, webtest.Operator(shared.PermSalesView)))

	require.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, res.Body.String(), "Welcome back, Olu")
	assert.Empty(t, backend.Calls())
}

func TestIndexRequiresSignIn(t *testing.T) {
	router, env, _ := setup(t)

	res := env.Serve(router, httptest.NewRequest(http.MethodGet, "/", nil), env.Session(t, nil))

	assert.Equal(t, http.StatusSeeOther, res.Code)
	assert.Equal(t, "/auth/login", res.Header().Get("Location"))
}
