// Package cache provides result caching for the cipher pipeline.
//
// The CLI uses a [FileCache] under the XDG cache directory; the HTTP server
// can share results between instances through a [RedisCache]. [NullCache]
// disables caching entirely.
//
// Keys are built by a [Keyer] from the operation parameters and a content
// hash of the input ([Hash]), so identical requests map to identical keys.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with per-entry expiry.
type Cache interface {
	// Get returns the value for key and whether it was found.
	// A missing or expired key is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the cache.
	Close() error
}

// Default TTLs for cached entries.
const (
	// TTLResult is how long cipher results are kept.
	TTLResult = 24 * time.Hour

	// TTLArtifact is how long rendered visualizations are kept.
	TTLArtifact = 7 * 24 * time.Hour
)

// NullCache never stores anything; every Get is a miss.
type NullCache struct{}

// NewNullCache creates a null cache.
func NewNullCache() *NullCache { return &NullCache{} }

func (NullCache) Get(context.Context, string) ([]byte, bool, error)        { return nil, false, nil }
func (NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (NullCache) Delete(context.Context, string) error                     { return nil }
func (NullCache) Close() error                                             { return nil }

var _ Cache = NullCache{}
