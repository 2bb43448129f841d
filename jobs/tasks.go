package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/medistock/medistock/internal/audit"
	jobmetrics "github.com/medistock/medistock/internal/jobs"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// QueueAudit carries audit:record tasks.
	QueueAudit = "audit"
	// DefaultRetentionDays bounds how long audit entries are kept.
	DefaultRetentionDays = 365
)

// AuditSink persists audit entries and prunes old ones. *audit.Store satisfies it.
type AuditSink interface {
	Insert(ctx context.Context, entry audit.Entry) error
	Prune(ctx context.Context, before time.Time) (int64, error)
}

// AuditTasks processes audit:record and audit:prune.
type AuditTasks struct {
	sink    AuditSink
	logger  *slog.Logger
	metrics *jobmetrics.Metrics
	now     func() time.Time
}

// NewAuditTasks constructs AuditTasks.
func NewAuditTasks(sink AuditSink, logger *slog.Logger) *AuditTasks {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditTasks{sink: sink, logger: logger, now: time.Now}
}

// WithMetrics instruments every task run.
func (a *AuditTasks) WithMetrics(m *jobmetrics.Metrics) *AuditTasks {
	a.metrics = m
	return a
}

// Handlers returns the task registrations for the worker.
func (a *AuditTasks) Handlers() []TaskHandler {
	return []TaskHandler{
		{Type: audit.TaskRecord, Handler: a.HandleRecord},
		{Type: audit.TaskPrune, Handler: a.HandlePrune},
	}
}

// HandleRecord persists one audit entry. Malformed payloads are not retried.
func (a *AuditTasks) HandleRecord(ctx context.Context, t *asynq.Task) error {
	return a.metrics.Track(audit.TaskRecord).End(a.record(ctx, t))
}

func (a *AuditTasks) record(ctx context.Context, t *asynq.Task) error {
	entry, err := audit.ParseRecordTask(t)
	if err != nil {
		a.logger.Warn("audit task rejected", slog.Any("error", err))
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}
	if err := a.sink.Insert(ctx, entry); err != nil {
		return err
	}
	a.logger.Debug("audit recorded", slog.String("action", entry.Action), slog.String("entity", entry.Entity), slog.String("entity_id", entry.EntityID))
	return nil
}

// HandlePrune deletes entries older than the task's retention window.
func (a *AuditTasks) HandlePrune(ctx context.Context, t *asynq.Task) error {
	return a.metrics.Track(audit.TaskPrune).End(a.prune(ctx, t))
}

func (a *AuditTasks) prune(ctx context.Context, t *asynq.Task) error {
	var payload audit.PrunePayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
		}
	}
	days := payload.RetentionDays
	if days <= 0 {
		days = DefaultRetentionDays
	}
	cutoff := a.now().UTC().AddDate(0, 0, -days)
	removed, err := a.sink.Prune(ctx, cutoff)
	if err != nil {
		return err
	}
	a.metrics.AddPruned(removed)
	a.logger.Info("audit pruned", slog.Int64("removed", removed), slog.Time("before", cutoff))
	return nil
}

// PruneSchedule registers the nightly audit:prune run.
func PruneSchedule(retentionDays int) (CronRegistration, error) {
	task, err := audit.NewPruneTask(retentionDays)
	if err != nil {
		return CronRegistration{}, err
	}
	return CronRegistration{Spec: "30 2 * * *", Task: task, Options: []asynq.Option{asynq.Queue(QueueDefault)}}, nil
}
