package audit

import (
	"context"
	"log/slog"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/hibiken/asynq"

	"github.com/medistock/medistock/internal/shared"
)

// Recorder accepts audit entries. Recording never fails the caller's
// operation; delivery problems are logged.
type Recorder interface {
	Record(ctx context.Context, entry Entry)
}

// Nop discards entries. It is used when no queue is configured.
type Nop struct{}

// Record implements Recorder.
func (Nop) Record(context.Context, Entry) {}

// Enqueuer is the subset of *asynq.Client used by QueueRecorder.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// QueueRecorder publishes entries as audit:record tasks.
type QueueRecorder struct {
	enqueuer Enqueuer
	queue    string
	logger   *slog.Logger
	now      func() time.Time
}

// NewQueueRecorder constructs a QueueRecorder publishing to queue.
func NewQueueRecorder(enqueuer Enqueuer, queue string, logger *slog.Logger) *QueueRecorder {
	if logger == nil {
		logger = slog.Default()
	}
	if queue == "" {
		queue = "audit"
	}
	return &QueueRecorder{enqueuer: enqueuer, queue: queue, logger: logger, now: time.Now}
}

// Record stamps entry with the signed-in operator and request id and enqueues it.
func (q *QueueRecorder) Record(ctx context.Context, entry Entry) {
	entry = q.stamp(ctx, entry)
	task, err := NewRecordTask(entry)
	if err != nil {
		q.logger.WarnContext(ctx, "audit encode failed", slog.Any("error", err))
		return
	}
	// The request may already be cancelled once the redirect is written.
	ctx = context.WithoutCancel(ctx)
	if _, err := q.enqueuer.EnqueueContext(ctx, task, asynq.Queue(q.queue), asynq.MaxRetry(5)); err != nil {
		q.logger.WarnContext(ctx, "audit enqueue failed",
			slog.String("action", entry.Action),
			slog.String("entity", entry.Entity),
			slog.Any("error", err))
	}
}

func (q *QueueRecorder) stamp(ctx context.Context, entry Entry) Entry {
	if entry.OccurredAt.IsZero() {
		entry.OccurredAt = q.now().UTC()
	}
	if entry.RequestID == "" {
		entry.RequestID = chimw.GetReqID(ctx)
	}
	if entry.ActorID == "" {
		if profile, ok := shared.SessionFromContext(ctx).Profile(); ok {
			entry.ActorID = profile.ID
			entry.Actor = profile.Email
		}
	}
	return entry
}
