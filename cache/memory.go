package cache

import (
	"errors"
	"time"

	"github.com/dgraph-io/ristretto/v2"
)

// ErrRejected is returned when the underlying store declines to keep an entry,
// usually because it is larger than the whole cache budget.
var ErrRejected = errors.New("cache entry rejected")

// MemoryCache implements Store on top of a cost-bounded ristretto store.
// Cost is the size of the cached body in bytes.
type MemoryCache struct {
	c   *ristretto.Cache[string, *Entry]
	now func() time.Time
}

// NewMemoryCache creates a response cache holding at most maxCostBytes of bodies.
func NewMemoryCache(maxCostBytes int64) (*MemoryCache, error) {
	if maxCostBytes <= 0 {
		return nil, errors.New("cache size must be positive")
	}
	c, err := ristretto.NewCache(&ristretto.Config[string, *Entry]{
		NumCounters:        max(maxCostBytes/100*10, 1024), // ~10x expected items
		MaxCost:            maxCostBytes,
		BufferItems:        64,
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, err
	}
	return &MemoryCache{c: c, now: time.Now}, nil
}

func (mc *MemoryCache) Read(key string, maxAge time.Duration) (*Entry, bool) {
	entry, found := mc.c.Get(key)
	if !found || entry == nil {
		return nil, false
	}
	if maxAge > 0 && mc.now().Sub(entry.FetchedAt) > maxAge {
		return entry, false // expired, but the ETag is still usable
	}
	return entry, true
}

// Write stores a copy of entry stamped with the current time. The entry is
// visible to readers once Write returns.
func (mc *MemoryCache) Write(key string, entry *Entry) error {
	stored := &Entry{
		ETag:      entry.ETag,
		FetchedAt: mc.now(),
		Body:      append([]byte(nil), entry.Body...),
	}
	if !mc.c.Set(key, stored, int64(len(stored.Body))) {
		return ErrRejected
	}
	mc.c.Wait()
	return nil
}

func (mc *MemoryCache) GetETag(key string) string {
	entry, _ := mc.Read(key, 0)
	if entry == nil {
		return ""
	}
	return entry.ETag
}

// Close stops ristretto's background goroutines.
func (mc *MemoryCache) Close() {
	mc.c.Close()
}

var _ Store = (*MemoryCache)(nil)
