// Package cache provides byte-level caching for rendered graph artifacts.
//
// Rendering a de Bruijn graph to SVG or PNG runs a full Graphviz layout,
// which dominates the runtime of the graph command for anything beyond a
// handful of nodes. Renders are pure functions of the graph parameters and
// the output format, so the CLI caches the resulting bytes on disk keyed by
// [RenderKey] and replays them on subsequent invocations.
//
// Two implementations are provided: [FileCache] persists entries under a
// directory (one file per key, sharded by hash prefix), and [NullCache]
// satisfies the interface without storing anything, for --no-cache runs
// and tests.
package cache

import (
	"context"
	"time"
)

// Cache stores opaque byte payloads under string keys with per-entry TTL.
//
// Implementations are safe for use from a single goroutine; callers that
// share one instance across goroutines must synchronize access themselves.
type Cache interface {
	// Get retrieves the payload stored under key.
	// The bool reports whether a live entry was found; expired or corrupt
	// entries count as misses.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero or less means the entry
	// never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes the entry for key. Deleting a missing key is not an
	// error.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the cache.
	Close() error
}
