package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemorySetGet(t *testing.T) {
	t.Parallel()

	c := New(true)
	defer c.Close()
	ctx := context.Background()

	etag, err := c.Set(ctx, "k", []byte(`{"a":1}`), time.Minute)
	require.NoError(t, err)
	assert.Equal(t, ComputeETag([]byte(`{"a":1}`)), etag)

	got, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte(`{"a":1}`), got.Data)
	assert.Equal(t, etag, got.ETag)
}

func TestMemoryExpiry(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)
	c := New(true)
	defer c.Close()
	c.now = func() time.Time { return now }
	ctx := context.Background()

	_, err := c.Set(ctx, "k", []byte("v"), TTLScrape)
	require.NoError(t, err)

	now = now.Add(TTLScrape - time.Second)
	_, ok, _ := c.Get(ctx, "k")
	assert.True(t, ok)

	now = now.Add(2 * time.Second)
	_, ok, _ = c.Get(ctx, "k")
	assert.False(t, ok)

	stats := c.Stats(ctx)
	assert.Equal(t, 1, stats["expired_keys"])

	c.evict()
	assert.Equal(t, 0, c.Stats(ctx)["total_keys"])
}

func TestMemoryDelete(t *testing.T) {
	t.Parallel()

	c := New(true)
	defer c.Close()
	ctx := context.Background()

	_, _ = c.Set(ctx, "a", []byte("1"), time.Minute)
	_, _ = c.Set(ctx, "b", []byte("2"), time.Minute)
	require.NoError(t, c.Delete(ctx, "a", "missing"))

	_, ok, _ := c.Get(ctx, "a")
	assert.False(t, ok)
	_, ok, _ = c.Get(ctx, "b")
	assert.True(t, ok)
}

func TestMemoryDisabled(t *testing.T) {
	t.Parallel()

	c := New(false)
	ctx := context.Background()

	etag, err := c.Set(ctx, "k", []byte("v"), time.Minute)
	require.NoError(t, err)
	assert.NotEmpty(t, etag)

	_, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, false, c.Stats(ctx)["enabled"])
}

func TestCheckETagMatch(t *testing.T) {
	t.Parallel()

	etag := ComputeETag([]byte("x"))
	assert.True(t, CheckETagMatch(etag, etag))
	assert.True(t, CheckETagMatch("*", etag))
	assert.False(t, CheckETagMatch("", etag))
	assert.False(t, CheckETagMatch(`W/"other"`, etag))
}
