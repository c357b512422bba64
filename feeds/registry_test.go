package feeds

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sabbir-tanvir/storefront/cache"
)

func newFeed(name string, items []string, err error) Feed {
	s := cache.NewShared(func(ctx context.Context) ([]string, error) {
		return items, err
	}, cache.WithName(name))
	return FromCache(name, s)
}

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()
	require.NotNil(t, r)
	assert.Empty(t, r.List())
}

func TestRegisterAndGet(t *testing.T) {
	r := NewRegistry()
	r.Register(newFeed("shops", nil, nil))
	r.Register(newFeed("products", nil, nil))

	assert.Equal(t, []string{"products", "shops"}, r.List())

	f, ok := r.Get("shops")
	require.True(t, ok)
	assert.Equal(t, "shops", f.Name())

	_, ok = r.Get("nonexistent")
	assert.False(t, ok)
}

func TestRegisterReplaces(t *testing.T) {
	r := NewRegistry()
	r.Register(newFeed("products", []string{"a"}, nil))
	r.Register(newFeed("products", []string{"b"}, nil))

	assert.Len(t, r.List(), 1)
	f, _ := r.Get("products")
	assert.Equal(t, []string{"b"}, f.Items(context.Background(), cache.NoLimit, false))
}

func TestFeedDelegatesToCache(t *testing.T) {
	f := newFeed("products", []string{"a", "b", "c"}, nil)
	ctx := context.Background()

	_, ok := f.Peek(cache.NoLimit)
	assert.False(t, ok)
	assert.True(t, f.FetchedAt().IsZero())

	assert.Equal(t, []string{"a", "b"}, f.Items(ctx, 2, false))
	assert.False(t, f.FetchedAt().IsZero())

	got, ok := f.Peek(1)
	require.True(t, ok)
	assert.Equal(t, []string{"a"}, got)

	f.Items(ctx, cache.NoLimit, false)
	st := f.Stats()
	assert.Equal(t, uint64(1), st.Fetches)
	assert.Equal(t, uint64(1), st.Hits)

	f.Invalidate()
	_, ok = f.Peek(cache.NoLimit)
	assert.False(t, ok)
}

func TestFeedFailureIsEmpty(t *testing.T) {
	f := newFeed("shops", nil, errors.New("down"))
	got := f.Items(context.Background(), cache.NoLimit, false)
	assert.Equal(t, []string{}, got)
	assert.Equal(t, uint64(1), f.Stats().Failures)
}
