package stablemap

import (
	"iter"
	"slices"
)

// All yields every entry in index order.
//
// The bound is IndexLen at the time iteration starts. Each step re-checks the
// live length, so mutating the map from the loop body never reads out of
// range, but which entries get visited after such a mutation is unspecified.
// Use index-cursor traversal (see StableMap) when the body mutates the map.
func (sm *StableMap[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		n := sm.slots.len()
		for i := 0; i < n; i++ {
			sl, ok := sm.slots.lookup(i)
			if !ok {
				continue
			}

			if !yield(sl.key, sl.value) {
				return
			}
		}
	}
}

// AllMut is like All, but yields pointers to the stored values.
func (sm *StableMap[K, V]) AllMut() iter.Seq2[K, *V] {
	return func(yield func(K, *V) bool) {
		n := sm.slots.len()
		for i := 0; i < n; i++ {
			sl, ok := sm.slots.lookup(i)
			if !ok {
				continue
			}

			if !yield(sl.key, &sl.value) {
				return
			}
		}
	}
}

func (sm *StableMap[K, V]) Keys() iter.Seq[K] {
	return func(yield func(K) bool) {
		for k := range sm.All() {
			if !yield(k) {
				return
			}
		}
	}
}

func (sm *StableMap[K, V]) Values() iter.Seq[V] {
	return func(yield func(V) bool) {
		for _, v := range sm.All() {
			if !yield(v) {
				return
			}
		}
	}
}

func (sm *StableMap[K, V]) ValuesMut() iter.Seq[*V] {
	return func(yield func(*V) bool) {
		for _, v := range sm.AllMut() {
			if !yield(v) {
				return
			}
		}
	}
}

// Drain empties the map right away and returns its former entries in index
// order. The map keeps its allocated memory, as with Clear.
func (sm *StableMap[K, V]) Drain() iter.Seq2[K, V] {
	entries := slices.Clone(sm.slots.entries)
	sm.Clear()

	return func(yield func(K, V) bool) {
		for i := range entries {
			if entries[i].occupied && !yield(entries[i].key, entries[i].value) {
				return
			}
		}
	}
}

// ExtractIf returns an iterator that removes and yields, in index order, the
// entries for which f returns true. Removal happens as the iterator reaches
// an entry, so entries past the point where the loop stops stay in the map.
// f may modify the value it is given.
func (sm *StableMap[K, V]) ExtractIf(f func(key K, value *V) bool) iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for i := 0; i < sm.slots.len(); i++ {
			sl := sm.slots.at(i)
			if !sl.occupied || !f(sl.key, &sl.value) {
				continue
			}

			if !yield(sm.removeIndex(i)) {
				return
			}
		}
	}
}

// Extend inserts every pair of seq in order. Later pairs overwrite earlier
// ones with the same key.
func (sm *StableMap[K, V]) Extend(seq iter.Seq2[K, V]) {
	for k, v := range seq {
		sm.Insert(k, v)
	}
}

// Collect builds a map from seq. Indices follow the order of first appearance.
func Collect[K comparable, V any](seq iter.Seq2[K, V], opts ...Option[K, V]) *StableMap[K, V] {
	sm := New[K, V](0, opts...)
	sm.Extend(seq)

	return sm
}
