package cache

import (
	"encoding/json"
	"time"

	"github.com/sabbir-tanvir/storefront/backend"
)

// BackendAdapter lets the backend client keep its responses in a Store.
// Request URLs are normalized with URLToKey.
type BackendAdapter struct {
	cache Store
}

func NewBackendAdapter(cache Store) *BackendAdapter {
	return &BackendAdapter{cache: cache}
}

// Read implements backend.Cache
func (ba *BackendAdapter) Read(key string, ttl time.Duration) (body []byte, etag string, ok bool) {
	entry, exists := ba.cache.Read(URLToKey(key), ttl)
	if !exists || entry == nil {
		return nil, "", false
	}
	return []byte(entry.Body), entry.ETag, true
}

// Write implements backend.Cache
func (ba *BackendAdapter) Write(key string, body []byte, etag string) {
	entry := &Entry{
		ETag: etag,
		Body: json.RawMessage(body),
	}
	// a rejected write only costs a full response next time
	_ = ba.cache.Write(URLToKey(key), entry)
}

// ETag implements backend.Cache
func (ba *BackendAdapter) ETag(key string) string {
	return ba.cache.GetETag(URLToKey(key))
}

var _ backend.Cache = (*BackendAdapter)(nil)
