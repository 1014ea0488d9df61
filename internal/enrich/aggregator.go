// Package enrich implements the cache-aside aggregation layer used by every
// enrichment endpoint: check the cache for a fresh value, otherwise fetch
// from the external source, write through, and broadcast the change.
package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/disaster-response-service/internal/domain"
	"github.com/couchcryptid/disaster-response-service/internal/events"
	"github.com/couchcryptid/disaster-response-service/internal/observability"
)

// Source tags where a resolved value came from.
type Source string

const (
	SourceCache Source = "cache"
	SourceFresh Source = "fresh"
)

// Result is a resolved enrichment value with its provenance.
type Result[T any] struct {
	Source Source `json:"source"`
	Value  T      `json:"value"`
}

// Request identifies one cacheable enrichment resource.
type Request struct {
	Resource  string        // resource type, e.g. "social-media"; cache key prefix and metric label
	ID        string        // entity id the resource belongs to
	Qualifier string        // optional extra key segment (e.g. an image URL)
	TTL       time.Duration // freshness window; zero or negative means always stale
	Topic     string        // broadcast topic for fresh results; empty = no broadcast
}

// CacheKey builds the store key: {resource}-{id}[-{qualifier}].
func (r Request) CacheKey() string {
	key := r.Resource + "-" + r.ID
	if r.Qualifier != "" {
		key += "-" + r.Qualifier
	}
	return key
}

// Aggregator orchestrates cache-aside resolution against a cache store and
// a broadcast bus. It holds no per-key state; two concurrent resolves for
// the same stale key may both fetch, and the last write wins.
type Aggregator struct {
	cache   domain.CacheStore
	bus     events.Publisher
	clock   clockwork.Clock
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewAggregator creates an Aggregator.
func NewAggregator(cache domain.CacheStore, bus events.Publisher, clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics) *Aggregator {
	return &Aggregator{
		cache:   cache,
		bus:     bus,
		clock:   clock,
		logger:  logger,
		metrics: metrics,
	}
}

// Resolve returns the cached value for req when it is still fresh, otherwise
// invokes fetch and writes the result through.
//
// A fresh cache hit costs exactly one store read: no fetch, no broadcast.
// A failed fetch leaves the cache untouched and propagates the error. On the
// fresh path the value is cached until now+TTL and, when req.Topic is set,
// broadcast as an [events.EnrichmentUpdated].
func Resolve[T any](ctx context.Context, a *Aggregator, req Request, fetch func(context.Context) (T, error)) (Result[T], error) {
	key := req.CacheKey()
	now := a.clock.Now()

	if req.TTL > 0 {
		entry, ok, err := a.cache.GetEntry(ctx, key)
		if err != nil {
			return Result[T]{}, err
		}
		if ok && now.Before(entry.ExpiresAt) {
			var value T
			if err := json.Unmarshal(entry.Value, &value); err != nil {
				a.logger.Warn("unreadable cache entry, refetching", "key", key, "error", err)
			} else {
				a.metrics.CacheLookups.WithLabelValues(req.Resource, "hit").Inc()
				return Result[T]{Source: SourceCache, Value: value}, nil
			}
		}
	}
	a.metrics.CacheLookups.WithLabelValues(req.Resource, "miss").Inc()

	start := time.Now()
	value, err := fetch(ctx)
	a.metrics.FetchDuration.WithLabelValues(req.Resource).Observe(time.Since(start).Seconds())
	if err != nil {
		a.metrics.Fetches.WithLabelValues(req.Resource, "error").Inc()
		return Result[T]{}, err
	}
	a.metrics.Fetches.WithLabelValues(req.Resource, "success").Inc()

	data, err := json.Marshal(value)
	if err != nil {
		return Result[T]{}, fmt.Errorf("encode %s value: %w", req.Resource, err)
	}

	// The fresh value is still good even if the write fails; serving it
	// beats failing the request over a cache problem.
	if err := a.cache.UpsertEntry(ctx, key, data, now.Add(req.TTL)); err != nil {
		a.logger.Warn("cache write failed", "key", key, "error", err)
	}

	if req.Topic != "" {
		a.publish(ctx, req.Topic, events.EnrichmentUpdated{DisasterID: req.ID, Value: value})
	}

	return Result[T]{Source: SourceFresh, Value: value}, nil
}

func (a *Aggregator) publish(ctx context.Context, topic string, event any) {
	if err := a.bus.Publish(ctx, topic, event); err != nil {
		a.logger.Warn("broadcast failed", "topic", topic, "error", err)
		return
	}
	a.metrics.EventsPublished.WithLabelValues(topic).Inc()
}
