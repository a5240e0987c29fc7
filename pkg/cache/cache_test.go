package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetAndGet(t *testing.T) {
	c := New(time.Minute)
	c.Set("key", "value", time.Minute)

	got, ok := c.Get("key")
	require.True(t, ok)
	assert.Equal(t, "value", got)

	_, ok = c.Get("missing")
	assert.False(t, ok)
}

func TestExpiredEntriesAreInvisibleBeforeSweep(t *testing.T) {
	c := New(time.Hour) // sweep never fires during the test
	c.Set("key", "value", 10*time.Millisecond)

	time.Sleep(30 * time.Millisecond)

	_, ok := c.Get("key")
	assert.False(t, ok, "expired entry must not be readable")

	_, ok = c.Take("key")
	assert.False(t, ok, "expired entry must not be consumable")
}

func TestTakeConsumesExactlyOnce(t *testing.T) {
	c := New(time.Minute)
	c.Set("secret", "42", time.Minute)

	got, ok := c.Take("secret")
	require.True(t, ok)
	assert.Equal(t, "42", got)

	_, ok = c.Take("secret")
	assert.False(t, ok, "second take must miss")
	_, ok = c.Get("secret")
	assert.False(t, ok)
}

func TestSetReplacesExisting(t *testing.T) {
	c := New(time.Minute)
	c.Set("key", "old", time.Minute)
	c.Set("key", "new", time.Minute)

	got, ok := c.Get("key")
	require.True(t, ok)
	assert.Equal(t, "new", got)
	assert.Equal(t, 1, c.Len())
}

func TestSweepEvictsExpiredEntries(t *testing.T) {
	c := New(10 * time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go c.Start(ctx)

	c.Set("shortlived", "value", 5*time.Millisecond)
	c.Set("longlived", "value", time.Hour)

	require.Eventually(t, func() bool {
		return c.Len() == 1
	}, time.Second, 10*time.Millisecond, "sweep should reclaim the expired entry")

	_, ok := c.Get("longlived")
	assert.True(t, ok)
}
