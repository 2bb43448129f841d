package dashboard

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/medistock/medistock/internal/apiclient"
)

const (
	recentSalesLimit = 5
	listLimit        = 10
	loadTimeout      = 20 * time.Second
)

// CacheObserver counts cache hits and misses.
type CacheObserver interface {
	ObserveCache(hit bool)
}

// Service loads the dashboard overview.
type Service struct {
	client   *apiclient.Client
	cache    *Cache
	logger   *slog.Logger
	observer CacheObserver
	group    singleflight.Group
	now      func() time.Time
}

// NewService constructs a Service. cache and observer may be nil.
func NewService(client *apiclient.Client, cache *Cache, logger *slog.Logger, observer CacheObserver) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{client: client, cache: cache, logger: logger, observer: observer, now: time.Now}
}

// Overview returns the overview for userID, from cache when fresh. Concurrent
// misses for the same key share one backend round.
func (s *Service) Overview(ctx context.Context, userID string, fresh bool) (*Overview, error) {
	key, err := s.cache.BuildKey(ctx, "dashboard", "overview", userID)
	if err != nil {
		s.logger.Warn("dashboard cache version", slog.Any("error", err))
		key = "dashboard:overview:" + userID
	}
	if !fresh {
		var cached Overview
		hit, err := s.cache.Get(ctx, key, &cached)
		if err != nil {
			s.logger.Warn("dashboard cache read", slog.Any("error", err))
		}
		s.observe(hit)
		if hit {
			return &cached, nil
		}
	}

	// The shared load outlives any single caller's cancellation.
	loadCtx := context.WithoutCancel(ctx)
	val, err, _ := flight(ctx, &s.group, key, func() (any, error) {
		ctx, cancel := context.WithTimeout(loadCtx, loadTimeout)
		defer cancel()
		ov, err := s.load(ctx)
		if err != nil {
			return nil, err
		}
		if err := s.cache.Set(ctx, key, ov); err != nil {
			s.logger.Warn("dashboard cache write", slog.Any("error", err))
		}
		return ov, nil
	})
	if err != nil {
		return nil, err
	}
	return val.(*Overview), nil
}

// load fetches the four sources in parallel. The first failure cancels the
// rest and fails the whole overview.
func (s *Service) load(ctx context.Context) (*Overview, error) {
	ov := &Overview{}
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		summary, err := apiclient.FetchRecord[Summary](ctx, s.client, "/dashboard/summary", nil)
		if err != nil {
			return fmt.Errorf("dashboard summary: %w", err)
		}
		if summary != nil {
			ov.Summary = *summary
		}
		return nil
	})
	g.Go(func() error {
		page, err := apiclient.FetchList[RecentSale](ctx, s.client, "/dashboard/recent-sales", limit(recentSalesLimit))
		if err != nil {
			return fmt.Errorf("dashboard recent sales: %w", err)
		}
		ov.RecentSales = page.Items
		return nil
	})
	g.Go(func() error {
		page, err := apiclient.FetchList[LowStockItem](ctx, s.client, "/dashboard/low-stock", limit(listLimit))
		if err != nil {
			return fmt.Errorf("dashboard low stock: %w", err)
		}
		ov.LowStock = page.Items
		return nil
	})
	g.Go(func() error {
		page, err := apiclient.FetchList[ExpiringBatch](ctx, s.client, "/dashboard/expiring", limit(listLimit))
		if err != nil {
			return fmt.Errorf("dashboard expiring: %w", err)
		}
		ov.Expiring = page.Items
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	ov.LoadedAt = s.now().UTC()
	return ov, nil
}

// Invalidate drops every cached overview after a mutation.
func (s *Service) Invalidate(ctx context.Context) {
	if err := s.cache.Bump(ctx); err != nil {
		s.logger.Warn("dashboard cache bump", slog.Any("error", err))
	}
}

// Today is the reference date for expiry countdowns.
func (s *Service) Today() time.Time { return s.now() }

func (s *Service) observe(hit bool) {
	if s.observer != nil && s.cache.enabled() {
		s.observer.ObserveCache(hit)
	}
}

func limit(n int) url.Values {
	return url.Values{"limit": {strconv.Itoa(n)}}
}
