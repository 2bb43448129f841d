package dashboard

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medistock/medistock/internal/apiclient"
	"github.com/medistock/medistock/internal/testing/webtest"
)

type countingObserver struct{ hits, misses atomic.Int32 }

func (o *countingObserver) ObserveCache(hit bool) {
	if hit {
		o.hits.Add(1)
		return
	}
	o.misses.Add(1)
}

func fakeDashboard(t *testing.T) *webtest.Backend {
	t.Helper()
	backend := webtest.NewBackend(t)
	backend.JSON("GET /dashboard/summary", http.StatusOK, `{"success":true,"data":{"totalProducts":120,"todaySales":"450.5","lowStockCount":2}}`)
	backend.JSON("GET /dashboard/recent-sales", http.StatusOK, `[{"id":7,"invoiceNumber":"INV-0007","totalAmount":99.9}]`)
	backend.JSON("GET /dashboard/low-stock", http.StatusOK, `{"items":[{"id":3,"name":"Amoxicillin","quantity":0,"reorderLevel":20}],"total":1}`)
	backend.JSON("GET /dashboard/expiring", http.StatusOK, `{"success":true,"data":[{"id":4,"batchNumber":"B-9","expiryDate":"2026-11-01","product":{"id":3,"name":"Amoxicillin"}}]}`)
	return backend
}

func newService(t *testing.T, backend *webtest.Backend) (*Service, *miniredis.Miniredis, *countingObserver) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	obs := &countingObserver{}
	return NewService(backend.Client(), NewCache(client, time.Minute), nil, obs), mr, obs
}

func TestOverviewJoinsAllSources(t *testing.T) {
	backend := fakeDashboard(t)
	svc, _, _ := newService(t, backend)

	ov, err := svc.Overview(context.Background(), "u1", false)
	require.NoError(t, err)

	assert.Equal(t, 120, ov.Summary.TotalProducts)
	assert.Equal(t, "450.5", ov.Summary.TodaySales.String())
	require.Len(t, ov.RecentSales, 1)
	assert.Equal(t, "Walk-in customer", ov.RecentSales[0].CustomerName())
	require.Len(t, ov.LowStock, 1)
	assert.True(t, ov.LowStock[0].OutOfStock())
	require.Len(t, ov.Expiring, 1)
	assert.Equal(t, "Amoxicillin", ov.Expiring[0].Product.Label())

	call, ok := backend.Last(http.MethodGet, "/dashboard/recent-sales")
	require.True(t, ok)
	assert.Equal(t, "5", call.Query.Get("limit"))
}

func TestOverviewIsCachedPerVersion(t *testing.T) {
	backend := fakeDashboard(t)
	svc, mr, obs := newService(t, backend)
	ctx := context.Background()

	_, err := svc.Overview(ctx, "u1", false)
	require.NoError(t, err)
	_, err = svc.Overview(ctx, "u1", false)
	require.NoError(t, err)
	assert.Len(t, backend.Calls(), 4)
	assert.Equal(t, int32(1), obs.hits.Load())
	assert.True(t, mr.Exists("dashboard:overview:u1:v1"))

	svc.Invalidate(ctx)
	_, err = svc.Overview(ctx, "u1", false)
	require.NoError(t, err)
	assert.Len(t, backend.Calls(), 8)
	assert.True(t, mr.Exists("dashboard:overview:u1:v2"))
}

func TestOverviewFreshSkipsCacheRead(t *testing.T) {
	backend := fakeDashboard(t)
	svc, _, _ := newService(t, backend)

	_, err := svc.Overview(context.Background(), "u1", false)
	require.NoError(t, err)
	_, err = svc.Overview(context.Background(), "u1", true)
	require.NoError(t, err)
	assert.Len(t, backend.Calls(), 8)
}

func TestOverviewFailsWhenOneSourceFails(t *testing.T) {
	backend := fakeDashboard(t)
	backend.JSON("GET /dashboard/low-stock", http.StatusInternalServerError, `{"success":false,"message":"boom"}`)
	svc, mr, _ := newService(t, backend)

	ov, err := svc.Overview(context.Background(), "u1", false)
	require.Error(t, err)
	assert.Nil(t, ov)
	assert.Equal(t, http.StatusInternalServerError, apiclient.StatusOf(err))
	assert.False(t, mr.Exists("dashboard:overview:u1:v1"))
}

func TestConcurrentMissesShareOneLoad(t *testing.T) {
	backend := fakeDashboard(t)
	release := make(chan struct{})
	var summaries atomic.Int32
	backend.Handle("GET /dashboard/summary", func(w http.ResponseWriter, r *http.Request) {
		summaries.Add(1)
		<-release
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"totalProducts":1}`))
	})
	svc, _, _ := newService(t, backend)

	var wg sync.WaitGroup
	results := make([]*Overview, 3)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ov, err := svc.Overview(context.Background(), "u1", false)
			assert.NoError(t, err)
			results[i] = ov
		}(i)
	}
	require.Eventually(t, func() bool { return summaries.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), summaries.Load())
	for _, ov := range results {
		require.NotNil(t, ov)
		assert.Equal(t, 1, ov.Summary.TotalProducts)
	}
}

func TestCacheDisabledWithoutRedis(t *testing.T) {
	backend := fakeDashboard(t)
	svc := NewService(backend.Client(), NewCache(nil, time.Minute), nil, nil)

	_, err := svc.Overview(context.Background(), "u1", false)
	require.NoError(t, err)
	_, err = svc.Overview(context.Background(), "u1", false)
	require.NoError(t, err)
	assert.Len(t, backend.Calls(), 8)
	svc.Invalidate(context.Background())
}

func TestDaysLeft(t *testing.T) {
	today := time.Date(2026, 10, 17, 15, 0, 0, 0, time.UTC)
	b := ExpiringBatch{ExpiryDate: apiclient.NewDate(time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC))}
	assert.Equal(t, 15, b.DaysLeft(today))
	b.ExpiryDate = apiclient.NewDate(time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, -1, b.DaysLeft(today))
}
