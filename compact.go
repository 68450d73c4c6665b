package stablemap

// Compact moves every entry down so the indices become exactly [0, Len()),
// keeping the entries in their previous index order.
//
// Every index handed out before is invalidated: it may now point to another
// entry or to nothing. Only call it when nobody depends on earlier indices.
func (sm *StableMap[K, V]) Compact() {
	n := sm.slots.len()
	if n == sm.size {
		return
	}

	dst := 0
	for src := 0; src < n; src++ {
		if !sm.slots.at(src).occupied {
			continue
		}

		if src != dst {
			sm.index.relocate(sm.index.hashAt(&sm.slots, src), src, dst)
			sm.slots.move(src, dst)
		}

		dst++
	}

	sm.slots.truncate(dst)
	sm.free.reset()
}

// MaybeCompact compacts only when more than half of the index range, and
// more than 8 indices, are unused. Returns whether it did.
func (sm *StableMap[K, V]) MaybeCompact() bool {
	if sm.free.len() <= max(sm.slots.len()/2, 8) {
		return false
	}

	sm.Compact()

	return true
}
