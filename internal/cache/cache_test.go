package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryClientSetGet(t *testing.T) {
	c := NewMemoryClient(10)
	ctx := context.Background()

	err := c.Set(ctx, "k1", []byte("value"), time.Minute)
	require.NoError(t, err)

	got, err := c.Get(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, []byte("value"), got)
}

func TestMemoryClientMiss(t *testing.T) {
	c := NewMemoryClient(10)

	_, err := c.Get(context.Background(), "absent")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestMemoryClientExpiry(t *testing.T) {
	c := NewMemoryClient(10)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k1", []byte("v"), -time.Second))

	_, err := c.Get(ctx, "k1")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestMemoryClientDelete(t *testing.T) {
	c := NewMemoryClient(10)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k1", []byte("v"), time.Minute))
	require.NoError(t, c.Delete(ctx, "k1"))

	_, err := c.Get(ctx, "k1")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestMemoryClientEviction(t *testing.T) {
	c := NewMemoryClient(2)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "old", []byte("a"), time.Minute))
	require.NoError(t, c.Set(ctx, "mid", []byte("b"), 2*time.Minute))
	require.NoError(t, c.Set(ctx, "new", []byte("c"), 3*time.Minute))

	_, err := c.Get(ctx, "old")
	assert.ErrorIs(t, err, ErrCacheMiss)

	got, err := c.Get(ctx, "new")
	require.NoError(t, err)
	assert.Equal(t, []byte("c"), got)
}

func TestTranslationKey(t *testing.T) {
	k1 := TranslationKey("vision", "gpt-4o", "French", "payload-a")
	k2 := TranslationKey("vision", "gpt-4o", "French", "payload-a")
	assert.Equal(t, k1, k2)

	assert.NotEqual(t, k1, TranslationKey("vision", "gpt-4o", "French", "payload-b"))
	assert.NotEqual(t, k1, TranslationKey("vision", "gpt-4o", "German", "payload-a"))
	assert.NotEqual(t, k1, TranslationKey("text-endpoint", "gpt-4o", "French", "payload-a"))
}
