package stablemap

import "slices"

type slot[K comparable, V any] struct {
	key      K
	value    V
	occupied bool
}

// slotStore owns every key and value. An element never changes its position
// while it's stored, except when compaction moves it explicitly.
type slotStore[K comparable, V any] struct {
	entries []slot[K, V]
}

func (s *slotStore[K, V]) len() int {
	return len(s.entries)
}

// push appends an empty slot and returns its index.
func (s *slotStore[K, V]) push() int {
	s.entries = append(s.entries, slot[K, V]{})

	return len(s.entries) - 1
}

//go:inline
func (s *slotStore[K, V]) at(i int) *slot[K, V] {
	return &s.entries[i]
}

// lookup is the bounds-checked accessor used by index based reads.
// Negative indices fail the unsigned comparison as well.
func (s *slotStore[K, V]) lookup(i int) (*slot[K, V], bool) {
	if uint(i) >= uint(len(s.entries)) {
		return nil, false
	}

	sl := &s.entries[i]

	return sl, sl.occupied
}

//go:inline
func (s *slotStore[K, V]) keyAt(i int) K {
	return s.entries[i].key
}

func (s *slotStore[K, V]) occupy(i int, key K, value V) {
	s.entries[i] = slot[K, V]{key: key, value: value, occupied: true}
}

// vacate empties the slot and returns what it held. Zeroing drops the
// references so the GC can reclaim them.
func (s *slotStore[K, V]) vacate(i int) (K, V) {
	sl := &s.entries[i]
	key, value := sl.key, sl.value
	*sl = slot[K, V]{}

	return key, value
}

// move relocates an occupied slot to an empty one. Only compaction does this.
func (s *slotStore[K, V]) move(src, dst int) {
	s.entries[dst] = s.entries[src]
	s.entries[src] = slot[K, V]{}
}

// truncate drops the suffix [n, len). Every dropped slot must be empty.
func (s *slotStore[K, V]) truncate(n int) {
	clear(s.entries[n:])
	s.entries = s.entries[:n]
}

func (s *slotStore[K, V]) grow(n int) {
	s.entries = slices.Grow(s.entries, n)
}

// shrink reallocates the entries to their exact length.
func (s *slotStore[K, V]) shrink() {
	switch {
	case cap(s.entries) == len(s.entries):
	case len(s.entries) == 0:
		s.entries = nil
	default:
		entries := make([]slot[K, V], len(s.entries))
		copy(entries, s.entries)
		s.entries = entries
	}
}

func (s *slotStore[K, V]) reset() {
	s.truncate(0)
}
