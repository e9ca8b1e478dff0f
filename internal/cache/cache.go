// Package cache keeps slow-changing reference data (the instrument list and
// price histories) between runs.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache stores opaque byte payloads with a time to live. A zero TTL uses the
// store's default.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key derives a cache key from a namespace and a source URL
func Key(namespace, url string) string {
	hash := sha256.Sum256([]byte(url))
	return "finops:v1:" + namespace + ":" + hex.EncodeToString(hash[:16])
}
