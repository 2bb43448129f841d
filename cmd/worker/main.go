package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/medistock/medistock/cmd/worker/cli"
	"github.com/medistock/medistock/internal/app"
	"github.com/medistock/medistock/internal/audit"
	jobmetrics "github.com/medistock/medistock/internal/jobs"
	"github.com/medistock/medistock/internal/platform/db"
	"github.com/medistock/medistock/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
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
	redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB}

	if len(os.Args) > 1 {
		os.Exit(runCommand(ctx, cfg, redisOpts, os.Args[1:]))
	}

	if cfg.PGDSN == "" {
		logger.Error("PG_DSN is required by the worker")
		os.Exit(1)
	}

	pool, err := db.New(ctx, cfg.PGDSN, db.Options{MaxConns: int32(cfg.WorkerConcurrency) + 2})
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

	prune, err := jobs.PruneSchedule(cfg.AuditRetentionDays)
	if err != nil {
		logger.Error("build prune task", slog.Any("error", err))
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	tasks := jobs.NewAuditTasks(store, logger).WithMetrics(jobmetrics.NewMetrics(registry))
	if cfg.WorkerMetricsAddr != "" {
		go serveMetrics(ctx, logger, cfg.WorkerMetricsAddr, registry)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts:   redisOpts,
		Logger:      logger,
		Concurrency: cfg.WorkerConcurrency,
		AuditQueue:  cfg.AuditQueue,
		Handlers:    tasks.Handlers(),
		Cron:        []jobs.CronRegistration{prune},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("worker started", slog.String("audit_queue", cfg.AuditQueue))
	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}

func runCommand(ctx context.Context, cfg *app.Config, redisOpts asynq.RedisClientOpt, args []string) int {
	client := jobs.NewClient(redisOpts)
	defer func() { _ = client.Close() }()
	inspector := asynq.NewInspector(redisOpts)
	defer func() { _ = inspector.Close() }()
	return cli.NewJobsCLI(client, inspector, cfg.AuditQueue, cfg.AuditRetentionDays).Run(ctx, args, os.Stdout, os.Stderr)
}

func serveMetrics(ctx context.Context, logger *slog.Logger, addr string, registry *prometheus.Registry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	logger.Info("worker metrics listening", slog.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("worker metrics server", slog.Any("error", err))
	}
}
