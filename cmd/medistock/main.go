package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/medistock/medistock/internal/apiclient"
	"github.com/medistock/medistock/internal/app"
	"github.com/medistock/medistock/internal/audit"
	audithttp "github.com/medistock/medistock/internal/audit/http"
	"github.com/medistock/medistock/internal/auth"
	"github.com/medistock/medistock/internal/credits"
	"github.com/medistock/medistock/internal/dashboard"
	"github.com/medistock/medistock/internal/imports"
	"github.com/medistock/medistock/internal/masterdata/lookups"
	"github.com/medistock/medistock/internal/masterdata/products"
	"github.com/medistock/medistock/internal/masterdata/suppliers"
	"github.com/medistock/medistock/internal/observability"
	"github.com/medistock/medistock/internal/pages"
	"github.com/medistock/medistock/internal/platform/cache"
	"github.com/medistock/medistock/internal/platform/db"
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
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	redisOpts := cache.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB}
	redisClient, err := cache.New(ctx, redisOpts)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, cfg.SessionCookie, cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)

	templates, err := view.NewEngine()
	if err != nil {
		logger.Error("parse templates", slog.Any("error", err))
		os.Exit(1)
	}
	views := view.NewResponder(templates, csrfManager, logger)

	metrics := observability.NewMetrics()

	client := apiclient.NewClient(apiclient.Options{
		BaseURL:  cfg.APIBaseURL,
		Timeout:  cfg.APITimeout,
		Logger:   logger,
		Observer: metrics,
	})
	authService := auth.NewService(client)
	client.SetTokenSource(auth.NewSessionTokens(authService, logger))

	asynqOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB}
	queue := jobs.NewClient(asynqOpts)
	defer func() {
		if err := queue.Close(); err != nil {
			logger.Warn("queue close", slog.Any("error", err))
		}
	}()
	recorder := audit.NewQueueRecorder(queue, cfg.AuditQueue, logger)

	rbacMiddleware := rbac.Middleware{Views: views, Logger: logger}
	rbacService := rbac.NewService(client)

	dashboardService := dashboard.NewService(client, dashboard.NewCache(redisClient, cfg.DashboardCacheTTL), logger, metrics)
	pdf := report.NewClient(cfg.GotenbergURL, cfg.APITimeout)

	deps := pages.Deps{
		Logger:   logger,
		Views:    views,
		RBAC:     rbacMiddleware,
		Audit:    recorder,
		Cache:    dashboardService,
		PDF:      pdf,
		PageSize: cfg.PageSize,
	}

	categories := lookups.NewService(client, lookups.Categories)
	manufacturers := lookups.NewService(client, lookups.Manufacturers)
	units := lookups.NewService(client, lookups.Units)
	paymentMethods := lookups.NewService(client, lookups.PaymentMethods)
	var lookupHandlers []*lookups.Handler
	for _, svc := range []*lookups.Service{categories, manufacturers, units, paymentMethods} {
		lookupHandlers = append(lookupHandlers, lookups.NewHandler(deps, svc))
	}

	productService := products.NewService(client)
	customerService := customers.NewService(client)
	supplierService := suppliers.NewService(client)

	var timeline audithttp.TimelineService
	if cfg.PGDSN != "" {
		pool, err := db.New(ctx, cfg.PGDSN, db.Options{MaxConns: 5})
		if err != nil {
			logger.Error("connect database", slog.Any("error", err))
			os.Exit(1)
		}
		defer pool.Close()
		store := audit.NewStore(pool)
		if err := store.Migrate(ctx); err != nil {
			logger.Error("migrate audit schema", slog.Any("error", err))
			os.Exit(1)
		}
		timeline = audit.NewService(store)
	} else {
		logger.Warn("PG_DSN not set, activity log disabled")
	}

	inspector := asynq.NewInspector(asynqOpts)
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		Views:            views,
		SessionManager:   sessionManager,
		CSRFManager:      csrfManager,
		Metrics:          metrics,
		AuthHandler:      auth.NewHandler(logger, authService, views, sessionManager, recorder),
		DashboardHandler: dashboard.NewHandler(deps, dashboardService),
		ProductsHandler: products.NewHandler(deps, productService, products.Lookups{
			Categories:    categories,
			Manufacturers: manufacturers,
			Units:         units,
		}),
		ImportHandler:    imports.NewHandler(deps, imports.NewService(client, cfg.ImportMaxBytes)),
		LookupHandlers:   lookupHandlers,
		CustomersHandler: customers.NewHandler(deps, customerService),
		SuppliersHandler: suppliers.NewHandler(deps, supplierService),
		SalesHandler: orders.NewHandler(deps, orders.NewService(client), orders.Refs{
			Catalog:        productService,
			Customers:      customerService,
			PaymentMethods: paymentMethods,
		}),
		QuotationsHandler: quotations.NewHandler(deps, quotations.NewService(client), quotations.Refs{
			Catalog:   productService,
			Customers: customerService,
		}),
		PurchasesHandler: procurement.NewHandler(deps, procurement.NewService(client), procurement.Refs{
			Catalog:   productService,
			Suppliers: supplierService,
		}),
		CreditsHandler:     credits.NewHandler(deps, credits.NewService(client), paymentMethods),
		UsersHandler:       users.NewHandler(deps, users.NewService(client, rbacService)),
		PermissionsHandler: rbac.NewPermissionsHandler(logger, rbacService, views, rbacMiddleware),
		AuditHandler:       audithttp.NewHandler(logger, timeline, views, audit.NewExporter(), rbacMiddleware),
		ReportHandler:      report.NewHandler(pdf, logger),
		JobHandler:         jobs.NewHandler(inspector, logger, jobs.QueueDefault, cfg.AuditQueue),
	})

	server := &http.Server{
		Addr:              cfg.AppAddr,
		Handler:           router,
		ReadTimeout:       cfg.AppReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr), slog.String("api", cfg.APIBaseURL))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
