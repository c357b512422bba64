// Package cache holds the storefront's in-memory caches: a shared
// read-through list cache with request coalescing, and an ETag-aware store
// for raw backend responses.
package cache

import (
	"encoding/json"
	"time"
)

// Entry is one stored backend response.
type Entry struct {
	ETag      string          `json:"etag,omitempty"`
	FetchedAt time.Time       `json:"fetched_at"`
	Body      json.RawMessage `json:"body"`
}

// Store keeps backend responses by normalized request key.
type Store interface {
	// Read returns the entry for key. ok is false when it is missing or older
	// than maxAge; an expired entry is still returned so its ETag can be
	// reused. maxAge 0 skips the age check.
	Read(key string, maxAge time.Duration) (*Entry, bool)
	Write(key string, entry *Entry) error
	GetETag(key string) string
}
