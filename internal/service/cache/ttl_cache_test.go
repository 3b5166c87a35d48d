package cache

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTTLCacheBytes(t *testing.T) {
	c := NewTTLCache()
	require.NoError(t, c.SetBytes("k", []byte("v"), time.Minute))

	b, ok, err := c.GetBytes("k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("v"), b)

	_, ok, _ = c.GetBytes("missing")
	assert.False(t, ok)
}

func TestTTLCacheExpiry(t *testing.T) {
	c := NewTTLCache()
	require.NoError(t, c.SetBytes("k", []byte("v"), time.Nanosecond))
	time.Sleep(time.Millisecond)
	_, ok, _ := c.GetBytes("k")
	assert.False(t, ok)
}

func TestTTLCacheDeletePrefix(t *testing.T) {
	c := NewTTLCache()
	a := ForecastKeyPrefix("Stik Bawang")
	b := ForecastKeyPrefix("Kerupuk Kulit")
	for _, k := range []string{a + "1", a + "2", b + "1"} {
		require.NoError(t, c.SetBytes(k, []byte(k), 0))
	}

	require.NoError(t, c.DeletePrefix(a))

	_, ok, _ := c.GetBytes(a + "1")
	assert.False(t, ok)
	_, ok, _ = c.GetBytes(a + "2")
	assert.False(t, ok)
	_, ok, _ = c.GetBytes(b + "1")
	assert.True(t, ok)
}

func TestTTLCacheExpiryUsesClock(t *testing.T) {
	c := NewTTLCache()
	now := time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	require.NoError(t, c.SetBytes("k", []byte("v"), time.Hour))
	now = now.Add(59 * time.Minute)
	_, ok, _ := c.GetBytes("k")
	assert.True(t, ok)

	now = now.Add(2 * time.Minute)
	_, ok, _ = c.GetBytes("k")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestTTLCacheCopiesValues(t *testing.T) {
	c := NewTTLCache()
	v := []byte("abc")
	require.NoError(t, c.SetBytes("k", v, 0))
	v[0] = 'x'

	got, _, _ := c.GetBytes("k")
	assert.Equal(t, "abc", string(got))
}

func TestTTLCacheEvictsWhenFull(t *testing.T) {
	c := NewTTLCache()
	for i := 0; i < maxLocalEntries; i++ {
		require.NoError(t, c.SetBytes(fmt.Sprintf("k%d", i), nil, 0))
	}
	require.NoError(t, c.SetBytes("fresh", []byte("1"), 0))

	assert.LessOrEqual(t, c.Len(), maxLocalEntries/2+1)
	_, ok, _ := c.GetBytes("fresh")
	assert.True(t, ok)
}
