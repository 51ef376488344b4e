package station

import (
	"context"
	"sync"
	"time"

	"github.com/couchcryptid/wx-station/internal/domain"
	"github.com/couchcryptid/wx-station/internal/observability"
	"github.com/jonboulle/clockwork"
)

// CachedFetcher wraps a Fetcher and reuses a report for ttl, so jobs firing in
// the same instant share one request. Only successful fetches are cached.
type CachedFetcher struct {
	inner   Fetcher
	ttl     time.Duration
	clock   clockwork.Clock
	metrics *observability.RelayMetrics

	mu      sync.Mutex
	entries map[Variant]entry
}

type entry struct {
	report    domain.Report
	fetchedAt time.Time
}

// NewCachedFetcher creates a cache decorator around inner.
func NewCachedFetcher(inner Fetcher, ttl time.Duration, clock clockwork.Clock, metrics *observability.RelayMetrics) *CachedFetcher {
	return &CachedFetcher{
		inner:   inner,
		ttl:     ttl,
		clock:   clock,
		metrics: metrics,
		entries: make(map[Variant]entry),
	}
}

func (c *CachedFetcher) Fetch(ctx context.Context, v Variant) (domain.Report, error) {
	// Held across the request: concurrent callers wait for the in-flight fetch.
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[v]; ok && c.clock.Since(e.fetchedAt) < c.ttl {
		c.metrics.Fetches.WithLabelValues(string(v), "cached").Inc()
		return e.report, nil
	}

	report, err := c.inner.Fetch(ctx, v)
	if err != nil {
		return report, err
	}
	c.entries[v] = entry{report: report, fetchedAt: c.clock.Now()}
	return report, nil
}
