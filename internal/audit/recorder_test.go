package audit

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medistock/medistock/internal/shared"
)

type captureEnqueuer struct {
	tasks []*asynq.Task
	err   error
}

func (c *captureEnqueuer) EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	c.tasks = append(c.tasks, task)
	if c.err != nil {
		return nil, c.err
	}
	return &asynq.TaskInfo{ID: "1", Type: task.Type()}, nil
}

func signedInContext(t *testing.T) context.Context {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	sessions := shared.NewSessionManager(client, "sid", "secret", time.Hour, false)
	sess, err := sessions.Load(context.Background(), httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	sess.SetProfile(shared.Profile{ID: "u-1", Email: "pharmacist@example.com"})
	return shared.ContextWithSession(context.Background(), sess)
}

func TestQueueRecorderStampsActor(t *testing.T) {
	enq := &captureEnqueuer{}
	rec := NewQueueRecorder(enq, "audit", nil)
	rec.now = func() time.Time { return time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC) }

	rec.Record(signedInContext(t), Entry{Action: ActionDelete, Entity: "product", EntityID: "42"})

	require.Len(t, enq.tasks, 1)
	assert.Equal(t, TaskRecord, enq.tasks[0].Type())
	entry, err := ParseRecordTask(enq.tasks[0])
	require.NoError(t, err)
	assert.Equal(t, "u-1", entry.ActorID)
	assert.Equal(t, "pharmacist@example.com", entry.Actor)
	assert.Equal(t, "42", entry.EntityID)
	assert.Equal(t, time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC), entry.OccurredAt)
}

func TestQueueRecorderSwallowsEnqueueErrors(t *testing.T) {
	enq := &captureEnqueuer{err: errors.New("redis down")}
	rec := NewQueueRecorder(enq, "", nil)
	assert.NotPanics(t, func() {
		rec.Record(context.Background(), Entry{Action: ActionCreate, Entity: "sale"})
	})
	require.Len(t, enq.tasks, 1)
}

func TestParseRecordTaskRejectsIncompleteEntry(t *testing.T) {
	task := asynq.NewTask(TaskRecord, []byte(`{"entity":"sale"}`))
	_, err := ParseRecordTask(task)
	require.Error(t, err)

	_, err = ParseRecordTask(asynq.NewTask(TaskRecord, []byte(`not json`)))
	require.Error(t, err)
}
