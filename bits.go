package stablemap

import (
	"math/bits"
)

const (
	// ctrlEmpty marks a key index slot that was never used since the last rehash.
	ctrlEmpty = 0x80
	// ctrlDeleted is a tombstone, probe chains continue past it.
	ctrlDeleted = 0xFE

	bitsetLSB = 0x0101010101010101
	bitsetMSB = 0x8080808080808080
)

// bitset represents a set of control bytes within a group.
//
// The underlying representation uses one byte per slot, where each byte is
// either 0x80 if the slot is part of the set or 0x00 otherwise. This makes it
// convenient to calculate for an entire group at once (e.g. see matchEmpty).
type bitset uint64

// first assumes that only the MSB of each control byte can be set (e.g. bitset
// is the result of matchEmpty or similar) and returns the relative index of the
// first control byte in the group that has the MSB set.
//
// Returns groupSize if the bitset is empty.
func (b bitset) first() uintptr {
	return uintptr(bits.TrailingZeros64(uint64(b)) >> 3)
}

// removeFirst resets the lowest set control byte.
func (b bitset) removeFirst() bitset {
	return b & (b - 1)
}

// matchH2 may report false positives for full slots sitting right above a
// real match, callers always confirm with the stored index or key. It never
// reports empty or deleted slots.
//
//go:inline
func matchH2(ctrl uint64, h2 uint8) bitset {
	v := ctrl ^ (bitsetLSB * uint64(h2))
	return bitset(((v - bitsetLSB) &^ v) & bitsetMSB)
}

// matchEmpty: Check if MSB is 1 AND bit 1 is 0.
// (0x80 is 10000000, bit 1 is 0. 0xFE is 11111110, bit 1 is 1)
//
//go:inline
func matchEmpty(ctrl uint64) bitset {
	return bitset((ctrl &^ (ctrl << 6)) & bitsetMSB)
}

// matchEmptyOrDeleted: Just check if the MSB is 1.
// (Both 0x80 and 0xFE have it, Full slots don't)
//
//go:inline
func matchEmptyOrDeleted(ctrl uint64) bitset {
	return bitset(ctrl & bitsetMSB)
}

// matchFull reports the slots holding a live index.
//
//go:inline
func matchFull(ctrl uint64) bitset {
	return bitset(^ctrl & bitsetMSB)
}

// invertCtrls prepares control bytes for an in-place rehash:
// Full (0x00-0x7F) -> Deleted (0xFE)
// Deleted (0xFE) -> Empty (0x80)
// Empty (0x80) -> Empty (0x80)
//
//go:inline
func invertCtrls(ctrl uint64) uint64 {
	// Detect full slots (MSB=0)
	isFull := ^ctrl & bitsetMSB

	// Spread 0x80 -> 0xFE for full slots (set bits 7-1, leave bit 0 clear)
	fullResult := isFull | (isFull >> 1) | (isFull >> 2) | (isFull >> 3) |
		(isFull >> 4) | (isFull >> 5) | (isFull >> 6)

	// Empty/Deleted both map to 0x80 (just keep MSB)
	highBits := ctrl & bitsetMSB

	return fullResult | highBits
}
