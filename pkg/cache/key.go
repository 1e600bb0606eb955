package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// RenderKey builds the cache key for a rendered graph artifact.
//
// The key covers every input that changes the rendered bytes: alphabet
// size, word length, output format, and the diagram options. Renders that
// depend on a random draw (circuit highlighting) must not be cached, so
// no such input appears here.
func RenderKey(k, n int, format string, detailed bool, fold int) string {
	return hashKey("render", k, n, format, detailed, fold)
}

// hashKey generates a cache key by hashing the components.
// The key format is: prefix:hash(parts...)
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	sum := sha256.Sum256(data)
	return fmt.Sprintf("%s:%s", prefix, hex.EncodeToString(sum[:]))
}

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
