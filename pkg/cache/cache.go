// Package cache stores rendered node images between runs.
//
// Rendering a node is deterministic in its DOT description, so the renderer
// keys images by a hash of the DOT source and the output options. Three
// backends implement [Cache]: [FileCache] for the CLI, [RedisCache] for
// shared servers and [NullCache] when caching is disabled.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with optional expiry.
type Cache interface {
	// Get returns the value and whether it was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores a value. A zero ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases the backend.
	Close() error
}

// ImageKeyOpts are the render options that change the produced image.
type ImageKeyOpts struct {
	Format string  `json:"format"`
	DPI    float64 `json:"dpi"`
	Crop   bool    `json:"crop"`
}

// Keyer derives cache keys.
type Keyer interface {
	// ImageKey keys a rendered node image by the hash of its DOT source.
	ImageKey(dotHash string, opts ImageKeyOpts) string
}

// DefaultKeyer is the standard Keyer.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// ImageKey returns "image:<sha256(dotHash, opts)>".
func (DefaultKeyer) ImageKey(dotHash string, opts ImageKeyOpts) string {
	return hashKey("image", dotHash, opts)
}
