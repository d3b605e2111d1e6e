// Package hash provides xxHash64-based structural digests used to
// deduplicate mixed-section items during emission.
package hash

import "github.com/cespare/xxhash/v2"

// Digest computes the xxHash64 of key.
func Digest(key []byte) uint64 {
	return xxhash.Sum64(key)
}

// DigestString computes the xxHash64 of the given string.
func DigestString(key string) uint64 {
	return xxhash.Sum64String(key)
}
