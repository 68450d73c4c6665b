package stablemap

import (
	"hash/maphash"

	"github.com/cespare/xxhash/v2"
	"github.com/zeebo/xxh3"
)

// HashFunc hashes a key for the key index. Equal keys must hash equally.
type HashFunc[K comparable] func(K) uint64

// MakeDefaultHashFunc returns a maphash based hash function for any comparable key.
func MakeDefaultHashFunc[K comparable](seed maphash.Seed) HashFunc[K] {
	return func(k K) uint64 {
		return maphash.Comparable(seed, k)
	}
}

// XXH3StringHash hashes string-like keys with XXH3.
// Unlike the default, it's not seeded per process.
func XXH3StringHash[K ~string]() HashFunc[K] {
	return func(k K) uint64 {
		return xxh3.HashString(string(k))
	}
}

// XXHashStringHash hashes string-like keys with XXH64.
func XXHashStringHash[K ~string]() HashFunc[K] {
	return func(k K) uint64 {
		return xxhash.Sum64String(string(k))
	}
}

// HashSplit splits a hash into the group selector (h1) and the 7-bit control
// fingerprint (h2).
func HashSplit(hash uint64) (uintptr, uint8) {
	h1 := uintptr(hash >> 7)
	h2 := uint8(hash & 0x7F)

	return h1, h2
}
