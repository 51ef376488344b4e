// Package relay republishes slices of the station report to Kafka on fixed
// schedules.
package relay

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"sync"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/wx-station/internal/adapter/station"
	"github.com/couchcryptid/wx-station/internal/domain"
	"github.com/couchcryptid/wx-station/internal/observability"
)

// Publisher writes messages to their topics.
type Publisher interface {
	Publish(ctx context.Context, msgs ...domain.Message) error
}

// Topics names the destination of each message kind.
type Topics struct {
	Wind    string
	THP     string
	Rain    string
	Summary string
}

// JobStatus is the outcome history of one message kind.
type JobStatus struct {
	Published   int       `json:"published"`
	Failures    int       `json:"failures"`
	LastSuccess time.Time `json:"last_success,omitzero"`
	LastError   string    `json:"last_error,omitempty"`
}

// Relay fetches station reports and publishes derived messages.
type Relay struct {
	fetcher   station.Fetcher
	publisher Publisher
	topics    Topics
	stationID string
	logger    *slog.Logger
	metrics   *observability.RelayMetrics
	ready     atomic.Bool

	mu     sync.Mutex
	status map[string]JobStatus
}

// New creates a Relay.
func New(f station.Fetcher, p Publisher, topics Topics, stationID string, logger *slog.Logger, metrics *observability.RelayMetrics) *Relay {
	return &Relay{
		fetcher:   f,
		publisher: p,
		topics:    topics,
		stationID: stationID,
		logger:    logger,
		metrics:   metrics,
		status:    make(map[string]JobStatus),
	}
}

// Wind publishes the wind slice of the current report.
func (r *Relay) Wind(ctx context.Context) error {
	return r.relay(ctx, domain.KindWind, station.Current, r.topics.Wind, func(rep domain.Report) any {
		return domain.NewWindMessage(rep)
	})
}

// THP publishes temperature, humidity and pressure from the current report.
func (r *Relay) THP(ctx context.Context) error {
	return r.relay(ctx, domain.KindTHP, station.Current, r.topics.THP, func(rep domain.Report) any {
		return rep.THP
	})
}

// Rain publishes hourly and daily rainfall from the current report.
func (r *Relay) Rain(ctx context.Context) error {
	return r.relay(ctx, domain.KindRain, station.Current, r.topics.Rain, func(rep domain.Report) any {
		return rep.Rain
	})
}

// Summary publishes the flat daily snapshot built from the midnight report.
func (r *Relay) Summary(ctx context.Context) error {
	return r.relay(ctx, domain.KindSummary, station.Midnight, r.topics.Summary, func(rep domain.Report) any {
		return domain.NewSummaryMessage(rep)
	})
}

// CheckReadiness returns nil once at least one message has been published.
func (r *Relay) CheckReadiness(_ context.Context) error {
	if !r.ready.Load() {
		return errors.New("relay has not published any messages yet")
	}
	return nil
}

// Status returns a snapshot of every job's outcomes keyed by message kind.
func (r *Relay) Status() map[string]JobStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return maps.Clone(r.status)
}

// relay runs one fetch-slice-publish cycle. A failed fetch publishes nothing.
func (r *Relay) relay(ctx context.Context, kind string, v station.Variant, topic string, slice func(domain.Report) any) error {
	err := r.publishSlice(ctx, kind, v, topic, slice)
	r.record(kind, err)
	if err != nil {
		r.metrics.PublishErrors.WithLabelValues(kind).Inc()
		return err
	}
	r.metrics.Published.WithLabelValues(kind).Inc()
	r.ready.Store(true)
	return nil
}

func (r *Relay) publishSlice(ctx context.Context, kind string, v station.Variant, topic string, slice func(domain.Report) any) error {
	report, err := r.fetcher.Fetch(ctx, v)
	if err != nil {
		return fmt.Errorf("fetch %s report: %w", v, err)
	}
	msg, err := domain.SerializeMessage(topic, r.stationID, kind, slice(report))
	if err != nil {
		return err
	}
	if err := r.publisher.Publish(ctx, msg); err != nil {
		return fmt.Errorf("publish %s to %s: %w", kind, topic, err)
	}
	r.logger.Debug("message relayed", "kind", kind, "topic", topic, "bytes", len(msg.Value))
	return nil
}

func (r *Relay) record(kind string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.status[kind]
	if err != nil {
		s.Failures++
		s.LastError = err.Error()
	} else {
		s.Published++
		s.LastSuccess = domain.Now()
		s.LastError = ""
	}
	r.status[kind] = s
}
