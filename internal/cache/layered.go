package cache

import (
	"errors"
	"time"

	"golang.org/x/sync/singleflight"
)

// Layered checks memory before disk and collapses concurrent loads of the
// same key into one call
type Layered struct {
	memory Cache
	disk   Cache
	group  singleflight.Group
}

// NewLayered creates a memory cache backed by disk. An empty diskDir keeps
// entries in memory only.
func NewLayered(memoryTTL time.Duration, diskDir string, diskTTL time.Duration) *Layered {
	l := &Layered{memory: NewMemoryCache(memoryTTL, 10*time.Minute)}
	if diskDir != "" {
		l.disk = NewDiskCache(diskDir, diskTTL)
	}
	return l
}

// Get checks memory, then disk, promoting disk hits into memory
func (l *Layered) Get(key string) ([]byte, bool) {
	if v, ok := l.memory.Get(key); ok {
		return v, true
	}
	if l.disk == nil {
		return nil, false
	}
	if v, ok := l.disk.Get(key); ok {
		_ = l.memory.Set(key, v, 0)
		return v, true
	}
	return nil, false
}

// Set stores value in every layer
func (l *Layered) Set(key string, value []byte, ttl time.Duration) error {
	if err := l.memory.Set(key, value, ttl); err != nil {
		return err
	}
	if l.disk != nil {
		return l.disk.Set(key, value, ttl)
	}
	return nil
}

// Delete removes key from every layer
func (l *Layered) Delete(key string) error {
	err := l.memory.Delete(key)
	if l.disk != nil {
		err = errors.Join(err, l.disk.Delete(key))
	}
	return err
}

// Clear empties every layer
func (l *Layered) Clear() error {
	err := l.memory.Clear()
	if l.disk != nil {
		err = errors.Join(err, l.disk.Clear())
	}
	return err
}

// GetOrLoad returns the cached value of key or loads, stores and returns it.
// Concurrent callers for one key share a single load. A failed store is
// ignored; the loaded value is still returned.
func (l *Layered) GetOrLoad(key string, load func() ([]byte, error)) ([]byte, bool, error) {
	if v, ok := l.Get(key); ok {
		return v, true, nil
	}

	v, err, _ := l.group.Do(key, func() (any, error) {
		if v, ok := l.Get(key); ok {
			return v, nil
		}
		v, err := load()
		if err != nil {
			return nil, err
		}
		_ = l.Set(key, v, 0)
		return v, nil
	})
	if err != nil {
		return nil, false, err
	}
	return v.([]byte), false, nil
}
