// Package feeds exposes the shared fetch caches under stable names so the
// HTTP layer and the CLI can address them generically.
package feeds

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/sabbir-tanvir/storefront/cache"
)

// Feed is a named, cached list.
type Feed interface {
	// Name returns the registry key (e.g., "products", "shops")
	Name() string

	// Items returns up to limit items, refreshing through the cache when stale
	// or when force is set. The result is always a non-nil slice.
	Items(ctx context.Context, limit int, force bool) any

	// Peek returns the cached items without fetching
	Peek(limit int) (any, bool)

	Invalidate()
	Stats() cache.Stats
	FetchedAt() time.Time
}

type sharedFeed[T any] struct {
	name   string
	shared *cache.Shared[T]
}

// FromCache wraps a shared cache as a Feed.
func FromCache[T any](name string, s *cache.Shared[T]) Feed {
	return &sharedFeed[T]{name: name, shared: s}
}

func (f *sharedFeed[T]) Name() string { return f.name }

func (f *sharedFeed[T]) Items(ctx context.Context, limit int, force bool) any {
	return f.shared.Get(ctx, limit, force)
}

func (f *sharedFeed[T]) Peek(limit int) (any, bool) {
	return f.shared.Peek(limit)
}

func (f *sharedFeed[T]) Invalidate()          { f.shared.Invalidate() }
func (f *sharedFeed[T]) Stats() cache.Stats   { return f.shared.Stats() }
func (f *sharedFeed[T]) FetchedAt() time.Time { return f.shared.FetchedAt() }

// Registry holds the available feeds
type Registry struct {
	mu    sync.RWMutex
	feeds map[string]Feed
}

func NewRegistry() *Registry {
	return &Registry{feeds: make(map[string]Feed)}
}

// Register adds a feed, replacing any feed with the same name.
func (r *Registry) Register(f Feed) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.feeds[f.Name()] = f
}

func (r *Registry) Get(name string) (Feed, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.feeds[name]
	return f, ok
}

// List returns the registered feed names in sorted order
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.feeds))
	for name := range r.feeds {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
