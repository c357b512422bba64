package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// NoLimit makes Get and Peek return every stored item.
const NoLimit = -1

// DefaultTTL is how long a fetched list is served without touching the network.
const DefaultTTL = time.Minute

const flightKey = "shared"

// FetchFunc loads the full list behind a Shared cache.
type FetchFunc[T any] func(ctx context.Context) ([]T, error)

// Stats is a point-in-time snapshot of a Shared cache's counters.
// Misses counts every Get that was not answered from a fresh value;
// Coalesced is the part of those that joined a fetch already in flight.
type Stats struct {
	Hits      uint64 `json:"hits"`
	Misses    uint64 `json:"misses"`
	Coalesced uint64 `json:"coalesced"`
	Fetches   uint64 `json:"fetches"`
	Failures  uint64 `json:"failures"`
}

// SharedOption configures a Shared cache.
type SharedOption func(*sharedConfig)

type sharedConfig struct {
	name    string
	ttl     time.Duration
	now     func() time.Time
	logger  zerolog.Logger
	onError func(error)
}

// WithTTL sets the freshness window. A zero TTL disables freshness but keeps
// request coalescing.
func WithTTL(ttl time.Duration) SharedOption {
	return func(c *sharedConfig) {
		if ttl >= 0 {
			c.ttl = ttl
		}
	}
}

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) SharedOption {
	return func(c *sharedConfig) {
		if now != nil {
			c.now = now
		}
	}
}

// WithLogger sets the logger for refresh and failure events.
func WithLogger(l zerolog.Logger) SharedOption {
	return func(c *sharedConfig) { c.logger = l }
}

// WithName labels log lines emitted by the cache.
func WithName(name string) SharedOption {
	return func(c *sharedConfig) { c.name = name }
}

// WithErrorObserver registers a callback that is told about every failed
// fetch. Callers of Get still never see the error.
func WithErrorObserver(fn func(error)) SharedOption {
	return func(c *sharedConfig) { c.onError = fn }
}

// Shared memoizes a single list-returning fetch. Concurrent callers share
// one in-flight request. A failed refresh falls back to the last good value.
type Shared[T any] struct {
	fetch FetchFunc[T]
	cfg   sharedConfig
	sf    singleflight.Group

	mu        sync.Mutex
	value     []T // nil until the first fetch settles
	fetchedAt time.Time
	seq       uint64 // last flight started
	pending   uint64 // flight callers currently join, 0 when none
	applied   uint64 // flight whose result is in value

	hits, misses, coalesced, fetches, failures atomic.Uint64
}

// NewShared builds an empty cache in front of fetch.
func NewShared[T any](fetch FetchFunc[T], opts ...SharedOption) *Shared[T] {
	cfg := sharedConfig{
		name:   "shared",
		ttl:    DefaultTTL,
		now:    time.Now,
		logger: zerolog.Nop(),
	}
	for _, o := range opts {
		o(&cfg)
	}
	return &Shared[T]{fetch: fetch, cfg: cfg}
}

// Get returns at most limit leading items.
//
// A fresh value is returned without I/O. Otherwise the caller joins the
// pending fetch or starts one. force always starts a new fetch. ctx only
// bounds how long this caller waits: the fetch itself keeps running for
// everyone else, and a caller that gives up gets whatever is cached.
func (s *Shared[T]) Get(ctx context.Context, limit int, force bool) []T {
	s.mu.Lock()
	if !force && s.freshLocked() {
		items := s.value
		s.mu.Unlock()
		s.hits.Add(1)
		return truncate(items, limit)
	}
	s.misses.Add(1)
	if force {
		s.sf.Forget(flightKey)
		s.pending = 0
	}
	if s.pending != 0 {
		s.coalesced.Add(1)
	} else {
		s.seq++
		s.pending = s.seq
	}
	seq := s.pending
	fetchCtx := context.WithoutCancel(ctx)
	ch := s.sf.DoChan(flightKey, func() (any, error) {
		return s.refresh(fetchCtx, seq), nil
	})
	s.mu.Unlock()

	select {
	case res := <-ch:
		items, _ := res.Val.([]T)
		return truncate(items, limit)
	case <-ctx.Done():
		items, _ := s.Peek(limit)
		return truncate(items, limit)
	}
}

// Peek returns the cached value without fetching. ok is false when nothing
// has ever been stored.
func (s *Shared[T]) Peek(limit int) (items []T, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.value == nil {
		return nil, false
	}
	return truncate(s.value, limit), true
}

// Invalidate drops the cached value and detaches any pending fetch so the
// next Get goes to the network. A fetch already running is not cancelled and
// may still store its result when it succeeds.
func (s *Shared[T]) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.value = nil
	s.fetchedAt = time.Time{}
	s.sf.Forget(flightKey)
	s.pending = 0
}

// FetchedAt reports when the value was last refreshed successfully.
func (s *Shared[T]) FetchedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fetchedAt
}

// Stats returns a snapshot of the cache counters.
func (s *Shared[T]) Stats() Stats {
	return Stats{
		Hits:      s.hits.Load(),
		Misses:    s.misses.Load(),
		Coalesced: s.coalesced.Load(),
		Fetches:   s.fetches.Load(),
		Failures:  s.failures.Load(),
	}
}

// freshLocked must be called with s.mu held.
func (s *Shared[T]) freshLocked() bool {
	if s.value == nil || s.fetchedAt.IsZero() {
		return false
	}
	return s.cfg.now().Sub(s.fetchedAt) < s.cfg.ttl
}

func (s *Shared[T]) refresh(ctx context.Context, seq uint64) []T {
	s.fetches.Add(1)
	defer s.settle(seq)
	start := s.cfg.now()
	items, err := s.fetch(ctx)
	if err != nil {
		return s.fail(err)
	}
	if items == nil {
		items = []T{}
	}

	s.mu.Lock()
	// a slower, older flight must not overwrite a newer result
	if seq > s.applied {
		s.value = items
		s.fetchedAt = s.cfg.now()
		s.applied = seq
	}
	s.mu.Unlock()

	s.cfg.logger.Debug().
		Str("cache", s.cfg.name).
		Int("items", len(items)).
		Dur("took", s.cfg.now().Sub(start)).
		Msg("refreshed")
	return items
}

// settle stops new callers from joining flight seq once it has finished.
func (s *Shared[T]) settle(seq uint64) {
	s.mu.Lock()
	if s.pending == seq {
		s.pending = 0
	}
	s.mu.Unlock()
}

func (s *Shared[T]) fail(err error) []T {
	s.failures.Add(1)

	s.mu.Lock()
	stale := s.value != nil
	if !stale {
		s.value = []T{}
	}
	items := s.value
	s.mu.Unlock()

	s.cfg.logger.Warn().
		Err(err).
		Str("cache", s.cfg.name).
		Bool("stale", stale).
		Msg("refresh failed, serving cached data")
	if s.cfg.onError != nil {
		s.cfg.onError(err)
	}
	return items
}

// truncate never returns nil and caps capacity so appends by the caller
// cannot write into the shared backing array.
func truncate[T any](items []T, limit int) []T {
	if items == nil {
		return []T{}
	}
	n := len(items)
	if limit >= 0 && limit < n {
		n = limit
	}
	return items[:n:n]
}
