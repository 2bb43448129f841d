package jobs

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"

	"github.com/medistock/medistock/internal/platform/httpx"
)

// Worker wraps the Asynq server and optional scheduler.
type Worker struct {
	server    *asynq.Server
	mux       *asynq.ServeMux
	scheduler *asynq.Scheduler
	logger    *slog.Logger
}

// TaskHandler allows injecting custom Asynq handlers during worker setup.
type TaskHandler struct {
	Type    string
	Handler asynq.HandlerFunc
}

// CronRegistration wires a cron expression to a prepared task.
type CronRegistration struct {
	Spec    string
	Task    *asynq.Task
	Options []asynq.Option
}

// WorkerConfig collects dependencies required to bootstrap the worker.
type WorkerConfig struct {
	RedisOpts   asynq.RedisClientOpt
	Logger      *slog.Logger
	Concurrency int
	AuditQueue  string
	Handlers    []TaskHandler
	Cron        []CronRegistration
}

// Queues are the queues served by the worker with their priorities.
func Queues(auditQueue string) map[string]int {
	if auditQueue == "" {
		auditQueue = QueueAudit
	}
	return map[string]int{
		auditQueue:   3,
		QueueDefault: 1,
	}
}

// NewWorker constructs a Worker instance.
func NewWorker(cfg WorkerConfig) (*Worker, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 5
	}
	srv := asynq.NewServer(cfg.RedisOpts, asynq.Config{
		Concurrency: concurrency,
		Queues:      Queues(cfg.AuditQueue),
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			logger.Error("task failed", slog.String("type", task.Type()), slog.Any("error", err))
		}),
	})
	mux := asynq.NewServeMux()
	for _, h := range cfg.Handlers {
		if h.Type == "" || h.Handler == nil {
			continue
		}
		mux.HandleFunc(h.Type, h.Handler)
	}

	var scheduler *asynq.Scheduler
	if len(cfg.Cron) > 0 {
		scheduler = asynq.NewScheduler(cfg.RedisOpts, &asynq.SchedulerOpts{Location: time.UTC})
		for _, entry := range cfg.Cron {
			if entry.Spec == "" || entry.Task == nil {
				continue
			}
			if _, err := scheduler.Register(entry.Spec, entry.Task, entry.Options...); err != nil {
				return nil, err
			}
		}
	}

	return &Worker{server: srv, mux: mux, scheduler: scheduler, logger: logger}, nil
}

// Run starts processing jobs until context cancellation.
func (w *Worker) Run(ctx context.Context) error {
	if w == nil {
		return errors.New("worker: not configured")
	}
	if w.scheduler != nil {
		if err := w.scheduler.Start(); err != nil {
			return err
		}
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- w.server.Run(w.mux)
	}()
	select {
	case <-ctx.Done():
		if w.scheduler != nil {
			w.scheduler.Shutdown()
		}
		w.server.Shutdown()
		return ctx.Err()
	case err := <-errCh:
		if w.scheduler != nil {
			w.scheduler.Shutdown()
		}
		return err
	}
}

// Client submits jobs to the queue. It satisfies audit.Enqueuer.
type Client struct {
	client *asynq.Client
}

// NewClient constructs an Asynq client.
func NewClient(redisOpts asynq.RedisClientOpt) *Client {
	return &Client{client: asynq.NewClient(redisOpts)}
}

// EnqueueContext enqueues task.
func (c *Client) EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	return c.client.EnqueueContext(ctx, task, opts...)
}

// Close releases client resources.
func (c *Client) Close() error {
	return c.client.Close()
}

// QueueInspector is the subset of *asynq.Inspector used for health checks.
type QueueInspector interface {
	Queues() ([]string, error)
	GetQueueInfo(queue string) (*asynq.QueueInfo, error)
}

// Handler exposes HTTP endpoints for job observability.
type Handler struct {
	inspector QueueInspector
	logger    *slog.Logger
	queues    []string
}

// NewHandler constructs an HTTP handler for jobs endpoints. A nil inspector
// reports every queue as empty. Without queues the default and audit
// queues are reported.
func NewHandler(inspector QueueInspector, logger *slog.Logger, queues ...string) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if len(queues) == 0 {
		queues = []string{QueueDefault, QueueAudit}
	}
	return &Handler{inspector: inspector, logger: logger, queues: queues}
}

// MountRoutes attaches job routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/health", h.health)
}

// QueueHealth is one queue in the health report.
type QueueHealth struct {
	Queue     string `json:"queue"`
	Pending   int    `json:"pending"`
	Active    int    `json:"active"`
	Retry     int    `json:"retry"`
	Archived  int    `json:"archived"`
	Paused    bool   `json:"paused"`
	Available bool   `json:"available"`
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	names := h.queues
	report := make([]QueueHealth, 0, len(names))
	if h.inspector == nil {
		for _, name := range names {
			report = append(report, QueueHealth{Queue: name})
		}
		httpx.JSON(w, http.StatusOK, map[string]any{"queues": report})
		return
	}
	known, err := h.inspector.Queues()
	if err != nil {
		h.unavailable(w, "", err)
		return
	}
	existing := make(map[string]bool, len(known))
	for _, name := range known {
		existing[name] = true
	}
	for _, name := range names {
		qh := QueueHealth{Queue: name, Available: true}
		// Queues appear in Redis only after their first task.
		if existing[name] {
			info, err := h.inspector.GetQueueInfo(name)
			if err != nil {
				h.unavailable(w, name, err)
				return
			}
			qh.Pending = info.Pending
			qh.Active = info.Active
			qh.Retry = info.Retry
			qh.Archived = info.Archived
			qh.Paused = info.Paused
		}
		report = append(report, qh)
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"queues": report})
}

func (h *Handler) unavailable(w http.ResponseWriter, queue string, err error) {
	h.logger.Warn("jobs health", slog.String("queue", queue), slog.Any("error", err))
	httpx.Problem(w, http.StatusServiceUnavailable, "Queue unavailable", "The job queue could not be inspected.")
}
