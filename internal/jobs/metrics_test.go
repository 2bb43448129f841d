package jobmetrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestTrackerRecordsOutcome(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	assert.NoError(t, m.Track("audit:record").End(nil))
	err := m.Track("audit:record").End(errors.New("db down"))
	assert.EqualError(t, err, "db down")
	m.AddPruned(4)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues("audit:record", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.failures.WithLabelValues("audit:record")))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.pruned))
}

func TestNilMetricsTrackerPassesErrorThrough(t *testing.T) {
	var m *Metrics
	err := errors.New("boom")
	assert.Same(t, err, m.Track("audit:prune").End(err))
}
