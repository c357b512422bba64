package cache

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMemoryCache(t *testing.T) *MemoryCache {
	t.Helper()
	mc, err := NewMemoryCache(1 << 20)
	require.NoError(t, err)
	t.Cleanup(mc.Close)
	return mc
}

func TestMemoryCache_WriteRead(t *testing.T) {
	mc := newTestMemoryCache(t)

	require.NoError(t, mc.Write("products", &Entry{ETag: `"v1"`, Body: json.RawMessage(`[1,2]`)}))

	entry, ok := mc.Read("products", time.Minute)
	require.True(t, ok)
	assert.JSONEq(t, `[1,2]`, string(entry.Body))
	assert.Equal(t, `"v1"`, mc.GetETag("products"))
	assert.False(t, entry.FetchedAt.IsZero())
}

func TestMemoryCache_ReadExpired(t *testing.T) {
	mc := newTestMemoryCache(t)
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	mc.now = func() time.Time { return now }

	require.NoError(t, mc.Write("k", &Entry{ETag: "e", Body: json.RawMessage(`{}`)}))
	now = now.Add(2 * time.Minute)

	entry, ok := mc.Read("k", time.Minute)
	assert.False(t, ok)
	require.NotNil(t, entry, "expired entries are still returned for revalidation")
	assert.Equal(t, "e", mc.GetETag("k"))

	_, ok = mc.Read("k", 0)
	assert.True(t, ok, "zero maxAge skips the age check")
}

func TestMemoryCache_Miss(t *testing.T) {
	mc := newTestMemoryCache(t)

	entry, ok := mc.Read("nope", 0)
	assert.False(t, ok)
	assert.Nil(t, entry)
	assert.Empty(t, mc.GetETag("nope"))
}

func TestMemoryCache_WriteCopiesBody(t *testing.T) {
	mc := newTestMemoryCache(t)
	body := []byte(`[1]`)
	require.NoError(t, mc.Write("k", &Entry{Body: body}))

	body[1] = '9'
	entry, ok := mc.Read("k", 0)
	require.True(t, ok)
	assert.Equal(t, `[1]`, string(entry.Body))
}

func TestNewMemoryCache_InvalidSize(t *testing.T) {
	_, err := NewMemoryCache(0)
	assert.Error(t, err)
}

func TestURLToKey(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"no query", "http://backend:8000/api/products/", "backend:8000/api/products/"},
		{"sorted query", "http://backend/api/shops/?page=2&a=1", "backend/api/shops/?a=1&page=2"},
		{"same key regardless of order", "http://backend/api/shops/?a=1&page=2", "backend/api/shops/?a=1&page=2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, URLToKey(tt.in))
		})
	}

	long := "http://backend/api/products/?q=" + strings.Repeat("x", 300)
	got := URLToKey(long)
	assert.Len(t, got, len("long_")+64)
}

func TestBackendAdapter(t *testing.T) {
	mc := newTestMemoryCache(t)
	ba := NewBackendAdapter(mc)

	ba.Write("http://backend/api/products/?b=2&a=1", []byte(`[1]`), `"etag"`)

	body, etag, ok := ba.Read("http://backend/api/products/?a=1&b=2", 0)
	require.True(t, ok)
	assert.Equal(t, `[1]`, string(body))
	assert.Equal(t, `"etag"`, etag)
	assert.Equal(t, `"etag"`, ba.ETag("http://backend/api/products/?a=1&b=2"))

	_, _, ok = ba.Read("http://backend/api/shops/", 0)
	assert.False(t, ok)
}
