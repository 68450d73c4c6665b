package stablemap

import "unsafe"

const groupSize = 8

type group struct {
	// 8 bytes of metadata (h2 or control states)
	// This fits perfectly in a single uint64 load
	ctrls [groupSize]uint8

	// 8 slot indices stored immediately after the metadata. Keys are not
	// duplicated here, they live in the slot store and are compared through
	// these indices. In a 64-bit system, this group is (8 + 8*8) = 72 bytes.
	slots [groupSize]int
}

var emptyCtrls = [groupSize]uint8{
	ctrlEmpty,
	ctrlEmpty,
	ctrlEmpty,
	ctrlEmpty,

	ctrlEmpty,
	ctrlEmpty,
	ctrlEmpty,
	ctrlEmpty,
}

//go:inline
func (g *group) ctrlWord() uint64 {
	return *(*uint64)(unsafe.Pointer(&g.ctrls))
}

//go:inline
func (g *group) setCtrlWord(ctrl uint64) {
	*(*uint64)(unsafe.Pointer(&g.ctrls)) = ctrl
}
