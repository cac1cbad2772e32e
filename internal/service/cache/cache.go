// Package cache provides the byte-oriented cache used for screen
// results, with in-process and Redis implementations.
package cache

import "time"

// BytesCache stores raw bytes under a key with a TTL. A zero TTL means
// no expiry.
type BytesCache interface {
	GetBytes(key string) (b []byte, ok bool, err error)
	SetBytes(key string, value []byte, ttl time.Duration) error
}
