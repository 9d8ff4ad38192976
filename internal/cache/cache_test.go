package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTTL_GetSet(t *testing.T) {
	c := NewTTL[string, int](time.Minute)

	_, ok := c.Get("missing")
	assert.False(t, ok)

	c.Set("a", 1)
	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)
}

func TestTTL_ExpiryIsAMiss(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	c := NewTTL[string, bool](time.Minute)
	c.now = func() time.Time { return now }

	c.Set("grant", true)

	now = now.Add(59 * time.Second)
	_, ok := c.Get("grant")
	assert.True(t, ok)

	now = now.Add(2 * time.Second)
	_, ok = c.Get("grant")
	assert.False(t, ok)

	// The expired entry was dropped on read.
	assert.Equal(t, 0, c.Len())
}

func TestTTL_SetUntil(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	c := NewTTL[int64, bool](time.Minute)
	c.now = func() time.Time { return now }

	// Grant expiry wins over the cache's own TTL.
	c.SetUntil(7, true, now.Add(2*time.Hour))

	now = now.Add(90 * time.Minute)
	v, ok := c.Get(7)
	assert.True(t, ok)
	assert.True(t, v)

	now = now.Add(time.Hour)
	_, ok = c.Get(7)
	assert.False(t, ok)
}

func TestTTL_Delete(t *testing.T) {
	c := NewTTL[string, int](time.Minute)
	c.Set("a", 1)
	c.Delete("a")
	_, ok := c.Get("a")
	assert.False(t, ok)
}
