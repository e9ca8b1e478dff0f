package cache

import (
	"errors"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey(t *testing.T) {
	a := Key("prices", "http://old.tsetmc.com/x?i=1")
	b := Key("prices", "http://old.tsetmc.com/x?i=2")
	assert.NotEqual(t, a, b)
	assert.True(t, strings.HasPrefix(a, "finops:v1:prices:"))
	assert.Equal(t, a, Key("prices", "http://old.tsetmc.com/x?i=1"))
}

func TestMemoryCache(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)

	_, ok := c.Get("k")
	assert.False(t, ok)

	require.NoError(t, c.Set("k", []byte("v"), 0))
	v, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, []byte("v"), v)
	assert.Equal(t, 1, c.Len())

	require.NoError(t, c.Set("short", []byte("x"), time.Millisecond))
	time.Sleep(5 * time.Millisecond)
	_, ok = c.Get("short")
	assert.False(t, ok)

	require.NoError(t, c.Delete("k"))
	_, ok = c.Get("k")
	assert.False(t, ok)
}

func TestDiskCache_ExpiryAndCorruption(t *testing.T) {
	dir := t.TempDir()
	c := NewDiskCache(dir, time.Hour)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set("finops:v1:tickers:abc", []byte("payload"), 0))
	v, ok := c.Get("finops:v1:tickers:abc")
	require.True(t, ok)
	assert.Equal(t, []byte("payload"), v)

	now = now.Add(2 * time.Hour)
	_, ok = c.Get("finops:v1:tickers:abc")
	assert.False(t, ok, "entry should expire after the default ttl")

	require.NoError(t, os.WriteFile(c.path("broken"), []byte("{not json"), 0644))
	_, ok = c.Get("broken")
	assert.False(t, ok)
	_, err := os.Stat(c.path("broken"))
	assert.True(t, errors.Is(err, os.ErrNotExist), "corrupt entry should be removed")

	assert.NoError(t, c.Delete("missing"))
}

func TestLayered_PromotesDiskHits(t *testing.T) {
	dir := t.TempDir()
	first := NewLayered(time.Minute, dir, time.Hour)
	require.NoError(t, first.Set("k", []byte("v"), 0))

	// A fresh process sees the disk layer only
	second := NewLayered(time.Minute, dir, time.Hour)
	v, ok := second.Get("k")
	require.True(t, ok)
	assert.Equal(t, []byte("v"), v)

	mem, ok := second.memory.Get("k")
	require.True(t, ok)
	assert.Equal(t, []byte("v"), mem)

	require.NoError(t, second.Delete("k"))
	_, ok = second.Get("k")
	assert.False(t, ok)
}

func TestLayered_MemoryOnly(t *testing.T) {
	l := NewLayered(time.Minute, "", 0)
	require.NoError(t, l.Set("k", []byte("v"), 0))
	v, ok := l.Get("k")
	require.True(t, ok)
	assert.Equal(t, []byte("v"), v)
	assert.NoError(t, l.Clear())
}

func TestLayered_GetOrLoadCollapsesConcurrentLoads(t *testing.T) {
	l := NewLayered(time.Minute, t.TempDir(), time.Hour)

	var loads int32
	release := make(chan struct{})
	load := func() ([]byte, error) {
		atomic.AddInt32(&loads, 1)
		<-release
		return []byte("tickers"), nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, _, err := l.GetOrLoad("tickers", load)
			assert.NoError(t, err)
			assert.Equal(t, []byte("tickers"), v)
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&loads))

	v, hit, err := l.GetOrLoad("tickers", load)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, []byte("tickers"), v)
}

func TestLayered_GetOrLoadError(t *testing.T) {
	l := NewLayered(time.Minute, "", 0)
	_, _, err := l.GetOrLoad("k", func() ([]byte, error) { return nil, errors.New("portal down") })
	assert.Error(t, err)

	_, ok := l.Get("k")
	assert.False(t, ok, "failed loads are not cached")
}
