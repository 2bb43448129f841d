package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medistock/medistock/internal/audit"
	jobmetrics "github.com/medistock/medistock/internal/jobs"
)

type memorySink struct {
	entries []audit.Entry
	before  time.Time
	err     error
}

func (m *memorySink) Insert(ctx context.Context, entry audit.Entry) error {
	if m.err != nil {
		return m.err
	}
	m.entries = append(m.entries, entry)
	return nil
}

func (m *memorySink) Prune(ctx context.Context, before time.Time) (int64, error) {
	m.before = before
	return 3, m.err
}

func TestHandleRecordPersistsEntry(t *testing.T) {
	sink := &memorySink{}
	tasks := NewAuditTasks(sink, nil)
	task, err := audit.NewRecordTask(audit.Entry{Action: audit.ActionCreate, Entity: "sale", EntityID: "S-1"})
	require.NoError(t, err)

	require.NoError(t, tasks.HandleRecord(context.Background(), task))
	require.Len(t, sink.entries, 1)
	assert.Equal(t, "S-1", sink.entries[0].EntityID)
}

func TestHandleRecordSkipsRetryOnBadPayload(t *testing.T) {
	tasks := NewAuditTasks(&memorySink{}, nil)
	err := tasks.HandleRecord(context.Background(), asynq.NewTask(audit.TaskRecord, []byte("{")))
	require.Error(t, err)
	assert.True(t, errors.Is(err, asynq.SkipRetry))
}

func TestHandleRecordRetriesStoreFailures(t *testing.T) {
	tasks := NewAuditTasks(&memorySink{err: errors.New("db down")}, nil)
	task, err := audit.NewRecordTask(audit.Entry{Action: audit.ActionDelete, Entity: "product"})
	require.NoError(t, err)
	err = tasks.HandleRecord(context.Background(), task)
	require.Error(t, err)
	assert.False(t, errors.Is(err, asynq.SkipRetry))
}

func TestHandlePruneUsesRetention(t *testing.T) {
	sink := &memorySink{}
	tasks := NewAuditTasks(sink, nil)
	tasks.now = func() time.Time { return time.Date(2024, 6, 30, 12, 0, 0, 0, time.UTC) }

	task, err := audit.NewPruneTask(30)
	require.NoError(t, err)
	require.NoError(t, tasks.HandlePrune(context.Background(), task))
	assert.Equal(t, time.Date(2024, 5, 31, 12, 0, 0, 0, time.UTC), sink.before)

	require.NoError(t, tasks.HandlePrune(context.Background(), asynq.NewTask(audit.TaskPrune, nil)))
	assert.Equal(t, time.Date(2023, 7, 1, 12, 0, 0, 0, time.UTC), sink.before)
}

func TestPruneSchedule(t *testing.T) {
	reg, err := PruneSchedule(90)
	require.NoError(t, err)
	assert.Equal(t, audit.TaskPrune, reg.Task.Type())
	assert.NotEmpty(t, reg.Spec)
}

func TestAuditTasksReportMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	tasks := NewAuditTasks(&memorySink{err: errors.New("db down")}, nil).WithMetrics(jobmetrics.NewMetrics(reg))
	task, err := audit.NewRecordTask(audit.Entry{Action: audit.ActionCreate, Entity: "sale"})
	require.NoError(t, err)

	require.Error(t, tasks.HandleRecord(context.Background(), task))

	count, err := testutil.GatherAndCount(reg, "medistock_jobs_failures_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
