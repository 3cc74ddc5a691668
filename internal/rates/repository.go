package rates

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/seblin/curpy/internal/metrics"
)

// Cache persists the latest snapshot. Load returns (nil, nil) when nothing
// has been stored yet; an unreadable store yields an error wrapping
// ErrCacheRead.
type Cache interface {
	Load(ctx context.Context) (*Snapshot, error)
	Save(ctx context.Context, snap Snapshot) error
}

// Source fetches a fresh snapshot from the publisher. Failures wrap
// ErrSourceUnavailable or ErrSourceFormat.
type Source interface {
	Fetch(ctx context.Context) (Snapshot, error)
}

// Repository provides the best known current snapshot. A stale cache is
// still served when the source fails.
type Repository struct {
	cache  Cache
	source Source
	policy FreshnessPolicy
	now    func() time.Time
	logger *slog.Logger

	group   singleflight.Group
	mu      sync.Mutex
	current *Snapshot
}

// Option configures a Repository.
type Option func(*Repository)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(r *Repository) { r.now = now }
}

// WithLogger sets the logger used for refresh diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(r *Repository) { r.logger = l }
}

// NewRepository wires a cache, a source and a freshness policy.
func NewRepository(cache Cache, source Source, policy FreshnessPolicy, opts ...Option) *Repository {
	r := &Repository{
		cache:  cache,
		source: source,
		policy: policy,
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Current returns the snapshot resolved by the first call. Later calls
// reuse it without touching the cache or the source, so a batch of
// conversions performs at most one staleness check and one fetch.
func (r *Repository) Current(ctx context.Context) (Snapshot, error) {
	r.mu.Lock()
	if r.current != nil {
		snap := *r.current
		r.mu.Unlock()
		return snap, nil
	}
	r.mu.Unlock()
	return r.Refresh(ctx)
}

// Refresh runs the load, staleness check and fetch cycle again and
// replaces the snapshot returned by Current. Concurrent callers share one
// cycle.
func (r *Repository) Refresh(ctx context.Context) (Snapshot, error) {
	v, err, _ := r.group.Do("refresh", func() (any, error) {
		return r.resolve(ctx)
	})
	if err != nil {
		return Snapshot{}, err
	}
	snap := v.(Snapshot)

	r.mu.Lock()
	r.current = &snap
	r.mu.Unlock()

	metrics.SnapshotPublished.Set(float64(snap.PublishedOn.Unix()))
	return snap, nil
}

func (r *Repository) resolve(ctx context.Context) (Snapshot, error) {
	cached, cacheErr := r.cache.Load(ctx)
	if cacheErr != nil {
		// A corrupt cache is reported and then treated like a missing one,
		// so a successful fetch overwrites it.
		r.logger.Error("rate cache unreadable", "error", cacheErr)
		metrics.CacheLookupsTotal.WithLabelValues("corrupt").Inc()
		cached = nil
	}

	switch {
	case cached == nil:
		if cacheErr == nil {
			metrics.CacheLookupsTotal.WithLabelValues("absent").Inc()
			r.logger.Debug("no cached rates, fetching")
		}
	case !r.policy.IsStale(cached.PublishedOn, r.now()):
		metrics.CacheLookupsTotal.WithLabelValues("fresh").Inc()
		r.logger.Debug("cached rates are fresh", "published_on", cached.PublishedOn.Format(DateLayout))
		return *cached, nil
	default:
		metrics.CacheLookupsTotal.WithLabelValues("stale").Inc()
		r.logger.Debug("cached rates are stale, fetching",
			"published_on", cached.PublishedOn.Format(DateLayout),
			"expected", r.policy.ExpectedPublication(r.now()).Format(DateLayout))
	}

	fresh, err := r.source.Fetch(ctx)
	if err != nil {
		// An interrupted run stops instead of carrying on with old rates.
		if ctx.Err() != nil {
			return Snapshot{}, errors.Join(err, ctx.Err())
		}
		if cached != nil {
			metrics.FallbacksTotal.Inc()
			r.logger.Warn("failed to refresh rates, using cached snapshot",
				"published_on", cached.PublishedOn.Format(DateLayout), "error", err)
			return *cached, nil
		}
		return Snapshot{}, errors.Join(err, cacheErr)
	}

	if cached != nil && fresh.Equal(*cached) {
		r.logger.Debug("fetched rates match the cache", "published_on", fresh.PublishedOn.Format(DateLayout))
		return *cached, nil
	}

	if err := r.cache.Save(ctx, fresh); err != nil {
		r.logger.Warn("failed to persist rates", "error", err)
	} else {
		r.logger.Info("stored new reference rates",
			"published_on", fresh.PublishedOn.Format(DateLayout), "currencies", len(fresh.Rates))
	}
	return fresh, nil
}
