package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	audithttp "github.com/medistock/medistock/internal/audit/http"
	"github.com/medistock/medistock/internal/auth"
	"github.com/medistock/medistock/internal/credits"
	"github.com/medistock/medistock/internal/dashboard"
	"github.com/medistock/medistock/internal/imports"
	"github.com/medistock/medistock/internal/masterdata/lookups"
	"github.com/medistock/medistock/internal/masterdata/products"
	"github.com/medistock/medistock/internal/masterdata/suppliers"
	"github.com/medistock/medistock/internal/observability"
	"github.com/medistock/medistock/internal/procurement"
	"github.com/medistock/medistock/internal/rbac"
	"github.com/medistock/medistock/internal/sales/customers"
	"github.com/medistock/medistock/internal/sales/orders"
	"github.com/medistock/medistock/internal/sales/quotations"
	"github.com/medistock/medistock/internal/shared"
	"github.com/medistock/medistock/internal/users"
	"github.com/medistock/medistock/internal/view"
	"github.com/medistock/medistock/jobs"
	"github.com/medistock/medistock/report"
	"github.com/medistock/medistock/web"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	Views          *view.Responder
	SessionManager *shared.SessionManager
	CSRFManager    *shared.CSRFManager
	Metrics        *observability.Metrics

	AuthHandler        *auth.Handler
	DashboardHandler   *dashboard.Handler
	ProductsHandler    *products.Handler
	ImportHandler      *imports.Handler
	LookupHandlers     []*lookups.Handler
	CustomersHandler   *customers.Handler
	SuppliersHandler   *suppliers.Handler
	SalesHandler       *orders.Handler
	QuotationsHandler  *quotations.Handler
	PurchasesHandler   *procurement.Handler
	CreditsHandler     *credits.Handler
	UsersHandler       *users.Handler
	PermissionsHandler *rbac.PermissionsHandler
	AuditHandler       *audithttp.Handler
	ReportHandler      *report.Handler
	JobHandler         *jobs.Handler
}

// NewRouter constructs the chi.Router with the dashboard defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if params.Views != nil {
		r.NotFound(params.Views.NotFound)
	}

	if params.AuthHandler != nil {
		r.Route("/auth", params.AuthHandler.MountRoutes)
	}
	if params.DashboardHandler != nil {
		params.DashboardHandler.MountRoutes(r)
	}

	r.Route("/masterdata", func(r chi.Router) {
		if params.ProductsHandler != nil {
			r.Route("/products", func(r chi.Router) {
				if params.ImportHandler != nil {
					params.ImportHandler.MountRoutes(r)
				}
				params.ProductsHandler.MountRoutes(r)
			})
		}
		for _, h := range params.LookupHandlers {
			r.Route("/"+h.Kind().Slug, h.MountRoutes)
		}
	})
	if params.CustomersHandler != nil {
		r.Route("/customers", params.CustomersHandler.MountRoutes)
	}
	if params.SuppliersHandler != nil {
		r.Route("/suppliers", params.SuppliersHandler.MountRoutes)
	}
	if params.SalesHandler != nil {
		r.Route(orders.BasePath, params.SalesHandler.MountRoutes)
	}
	if params.QuotationsHandler != nil {
		r.Route(quotations.BasePath, params.QuotationsHandler.MountRoutes)
	}
	if params.PurchasesHandler != nil {
		r.Route(procurement.BasePath, params.PurchasesHandler.MountRoutes)
	}
	if params.CreditsHandler != nil {
		r.Route(credits.BasePath, params.CreditsHandler.MountRoutes)
	}
	if params.UsersHandler != nil {
		r.Route(users.BasePath, params.UsersHandler.MountRoutes)
	}
	if params.PermissionsHandler != nil {
		r.Route("/permissions", params.PermissionsHandler.MountRoutes)
	}
	if params.AuditHandler != nil {
		r.Route("/audit", params.AuditHandler.MountRoutes)
	}
	if params.ReportHandler != nil {
		r.Route("/report", params.ReportHandler.MountRoutes)
	}
	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	fileServer := http.StripPrefix("/static/", http.FileServer(http.FS(web.Assets())))
	r.Handle("/static/*", staticCacheHandler(fileServer))

	return r
}

// staticCacheHandler lets browsers cache embedded assets for an hour.
func staticCacheHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		next.ServeHTTP(w, r)
	})
}
