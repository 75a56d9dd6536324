package cache

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCache_GetPut(t *testing.T) {
	c := New(time.Minute, 0)

	_, ok := c.Get("missing")
	assert.False(t, ok)

	c.Put("key", 42)
	v, ok := c.Get("key")
	assert.True(t, ok)
	assert.Equal(t, 42, v)
}

func TestCache_Expiry(t *testing.T) {
	c := New(time.Minute, 0)
	now := time.Now()
	c.now = func() time.Time { return now }

	c.Put("key", "value")

	now = now.Add(59 * time.Second)
	_, ok := c.Get("key")
	assert.True(t, ok)

	now = now.Add(2 * time.Second)
	_, ok = c.Get("key")
	assert.False(t, ok)
}

func TestCache_PutIfAbsent(t *testing.T) {
	c := New(time.Minute, 0)
	now := time.Now()
	c.now = func() time.Time { return now }

	assert.True(t, c.PutIfAbsent("key", 1))
	assert.False(t, c.PutIfAbsent("key", 2))

	v, _ := c.Get("key")
	assert.Equal(t, 1, v)

	// An expired entry behaves as absent.
	now = now.Add(2 * time.Minute)
	assert.True(t, c.PutIfAbsent("key", 3))
}

func TestCache_GetOrLoad(t *testing.T) {
	c := New(time.Minute, 0)

	calls := 0
	load := func() (any, error) {
		calls++
		return "loaded", nil
	}

	v, err := c.GetOrLoad("key", load)
	assert.NoError(t, err)
	assert.Equal(t, "loaded", v)

	v, err = c.GetOrLoad("key", load)
	assert.NoError(t, err)
	assert.Equal(t, "loaded", v)
	assert.Equal(t, 1, calls)
}

func TestCache_GetOrLoad_ErrorNotCached(t *testing.T) {
	c := New(time.Minute, 0)

	calls := 0
	load := func() (any, error) {
		calls++
		return nil, errors.New("boom")
	}

	_, err := c.GetOrLoad("key", load)
	assert.Error(t, err)
	_, err = c.GetOrLoad("key", load)
	assert.Error(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, 0, c.Len())
}

func TestCache_MaxEntriesEvictsOldest(t *testing.T) {
	c := New(time.Minute, 2)

	c.Put("a", 1)
	c.Put("b", 2)
	// Touch "a" so "b" becomes the LRU entry.
	_, _ = c.Get("a")
	c.Put("c", 3)

	_, ok := c.Get("b")
	assert.False(t, ok)
	_, ok = c.Get("a")
	assert.True(t, ok)
	_, ok = c.Get("c")
	assert.True(t, ok)
	assert.Equal(t, 2, c.Len())
}

func TestCache_Evict(t *testing.T) {
	c := New(time.Minute, 0)
	c.Put("key", 1)
	c.Evict("key")
	_, ok := c.Get("key")
	assert.False(t, ok)
	// Evicting a missing key is a no-op.
	c.Evict("key")
}
