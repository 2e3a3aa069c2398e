// Package hashutil provides a convenience default for the hash collaborator
// a [github.com/kvgrid/setcache.Cache] needs (hash: K -> uint64 with good
// avalanche). It wraps xxhash so callers whose key type is a byte slice or
// a fixed-width integer are not forced to hand-roll FNV to get started.
package hashutil

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// Sum64 hashes b with xxhash64.
func Sum64(b []byte) uint64 {
	return xxhash.Sum64(b)
}

// Sum64Uint64 hashes a uint64 key, e.g. a monotonic ID or an already-hashed
// fingerprint, by hashing its little-endian byte representation.
func Sum64Uint64(key uint64) uint64 {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], key)
	return xxhash.Sum64(buf[:])
}

// Sum64String hashes a string key without an intermediate allocation.
func Sum64String(key string) uint64 {
	return xxhash.Sum64String(key)
}
