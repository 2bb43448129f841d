package audithttp

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medistock/medistock/internal/audit"
	"github.com/medistock/medistock/internal/rbac"
	"github.com/medistock/medistock/internal/shared"
	"github.com/medistock/medistock/internal/testing/webtest"
)

type stubTimelineService struct {
	result      audit.Result
	exportRows  []audit.TimelineRow
	lastFilters audit.TimelineFilters
}

func (s *stubTimelineService) Timeline(ctx context.Context, filters audit.TimelineFilters) (audit.Result, error) {
	s.lastFilters = filters
	return s.result, nil
}

func (s *stubTimelineService) Export(ctx context.Context, filters audit.TimelineFilters) ([]audit.TimelineRow, error) {
	s.lastFilters = filters
	return s.exportRows, nil
}

func newAuditRouter(t *testing.T, env *webtest.Env, service TimelineService) (http.Handler, *Handler) {
	t.Helper()
	mw := rbac.Middleware{Views: env.Views, Logger: env.Logger}
	handler := NewHandler(env.Logger, service, env.Views, audit.NewExporter(), mw)
	handler.now = func() time.Time { return time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC) }
	r := chi.NewRouter()
	r.Route("/audit", handler.MountRoutes)
	return r, handler
}

func TestTimelineRequiresPermission(t *testing.T) {
	env := webtest.New(t)
	router, _ := newAuditRouter(t, env, &stubTimelineService{})
	sess := env.Session(t, webtest.Operator(shared.PermSalesView))

	rec := env.Serve(router, httptest.NewRequest(http.MethodGet, "/audit", nil), sess)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestTimelineRendersRows(t *testing.T) {
	env := webtest.New(t)
	rows := []audit.TimelineRow{{At: time.Date(2024, 3, 10, 10, 0, 0, 0, time.UTC), Actor: "auditor@pharmacy.test", Action: audit.ActionDelete, Entity: "product", EntityID: "1"}}
	service := &stubTimelineService{result: audit.Result{Rows: rows, Paging: audit.PagingInfo{Page: 1, PageSize: 20, HasNext: true, NextPage: 2}}}
	router, _ := newAuditRouter(t, env, service)
	sess := env.Session(t, webtest.Operator(shared.PermAuditView))

	rec := env.Serve(router, httptest.NewRequest(http.MethodGet, "/audit?entity=product", nil), sess)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "auditor@pharmacy.test")
	assert.Contains(t, rec.Body.String(), "page=2")
	assert.Equal(t, "product", service.lastFilters.Entity)
	assert.Equal(t, time.Date(2024, 3, 8, 0, 0, 0, 0, time.UTC), service.lastFilters.From)
}

func TestTimelineRejectsInvertedRange(t *testing.T) {
	env := webtest.New(t)
	router, _ := newAuditRouter(t, env, &stubTimelineService{})
	sess := env.Session(t, webtest.Admin())

	rec := env.Serve(router, httptest.NewRequest(http.MethodGet, "/audit?from=2024-03-10&to=2024-03-01", nil), sess)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTimelineWithoutStorage(t *testing.T) {
	env := webtest.New(t)
	router, _ := newAuditRouter(t, env, nil)
	sess := env.Session(t, webtest.Admin())

	rec := env.Serve(router, httptest.NewRequest(http.MethodGet, "/audit", nil), sess)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "not configured")
}

func TestExportWritesWorkbook(t *testing.T) {
	env := webtest.New(t)
	service := &stubTimelineService{exportRows: []audit.TimelineRow{{At: time.Now(), Actor: "a", Action: audit.ActionCreate, Entity: "sale"}}}
	router, _ := newAuditRouter(t, env, service)
	sess := env.Session(t, webtest.Admin())

	rec := env.Serve(router, httptest.NewRequest(http.MethodGet, "/audit/export.xlsx?from=2024-03-01&to=2024-03-10", nil), sess)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "activity-2024-03-01-2024-03-10.xlsx")
	assert.Equal(t, "PK", rec.Body.String()[:2])
}
