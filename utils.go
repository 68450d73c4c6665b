package stablemap

import (
	"math/bits"
	"unsafe"
)

// Returns the next power of 2 for the given value `v`.
func NextPowerOf2(v uint) uint {
	return uint(1) << min(bits.Len(v-1), bits.UintSize-1)
}

// Estimates how many entries fit into the given memory size in bytes.
// Every entry costs one slot in the slot store plus its share of the key
// index, which is kept at most 7/8 full.
func CapacityFromSize[K comparable, V any](size uintptr) int {
	perEntry := unsafe.Sizeof(slot[K, V]{}) + unsafe.Sizeof(group{})*8/(groupSize*7)

	return int(size / perEntry)
}
