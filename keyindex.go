package stablemap

import "math/bits"

// keyIndex maps keys to their slot index. It's a swiss table whose slots
// hold only the index; equality is resolved by comparing against the key
// stored in the slot store at that index, so each key is kept exactly once.
//
// Unlike a fixed-size table, it grows when it runs out of room: tombstones
// are dropped in place when that recovers enough space, otherwise the
// capacity is doubled.
type keyIndex[K comparable, V any] struct {
	groups []group

	capacity          uintptr
	numGroupsMask     uintptr
	capacityEffective uintptr
	size              uintptr
	tombstones        uintptr

	hashFunc HashFunc[K]
}

func (ki *keyIndex[K, V]) init(capacity int) {
	if capacity <= 0 {
		ki.groups = nil
		ki.capacity = 0
		ki.numGroupsMask = 0
		ki.capacityEffective = 0
		ki.size = 0
		ki.tombstones = 0

		return
	}

	slots := slotsFor(capacity)
	numGroups := slots / groupSize

	ki.groups = make([]group, numGroups)
	ki.capacity = slots
	ki.numGroupsMask = numGroups - 1
	ki.capacityEffective = slots * 7 / 8
	ki.size = 0
	ki.tombstones = 0

	ki.reset()
}

// maxCapacity caps the key count a table is sized for, so that the slot
// count computed from it can't overflow.
const maxCapacity = 1 << (bits.UintSize - 5)

// slotsFor returns the table size that keeps capacity keys reachable under
// the 7/8 load factor.
func slotsFor(capacity int) uintptr {
	capacity = min(capacity, maxCapacity)
	slots := uintptr(NextPowerOf2(uint(capacity + (capacity+6)/7)))

	return max(slots, groupSize)
}

//go:inline
func (ki *keyIndex[K, V]) hash(key K) uint64 {
	return ki.hashFunc(key)
}

//go:inline
func (ki *keyIndex[K, V]) hashAt(slots *slotStore[K, V], idx int) uint64 {
	return ki.hashFunc(slots.keyAt(idx))
}

func (ki *keyIndex[K, V]) reset() {
	for i := range ki.groups {
		ki.groups[i].ctrls = emptyCtrls
	}

	ki.size = 0
	ki.tombstones = 0
}

// find returns the slot index holding key.
func (ki *keyIndex[K, V]) find(slots *slotStore[K, V], key K, hash uint64) (int, bool) {
	if ki.size == 0 {
		return 0, false
	}

	h1, h2 := HashSplit(hash)
	mask := ki.numGroupsMask
	start := (h1 / groupSize) & mask

	for p, offset := uintptr(0), start; p <= mask; p++ {
		g := &ki.groups[offset]
		ctrl := g.ctrlWord()

		// SIMD-like match
		matches := matchH2(ctrl, h2)
		for matches != 0 {
			idx := g.slots[matches.first()]
			if slots.keyAt(idx) == key {
				return idx, true
			}

			matches = matches.removeFirst()
		}

		// Termination
		if matchEmpty(ctrl) != 0 {
			return 0, false
		}

		// Quadratic probe math
		offset = (start + (p+1)*(p+2)/2) & mask
	}

	return 0, false
}

// insert records idx under hash. The key stored at idx must not be present.
func (ki *keyIndex[K, V]) insert(slots *slotStore[K, V], hash uint64, idx int) {
	if ki.size+ki.tombstones >= ki.capacityEffective {
		ki.rehash(slots)
	}

	g, j := ki.firstFree(hash)
	if g.ctrls[j] == ctrlDeleted {
		ki.tombstones--
	}

	_, h2 := HashSplit(hash)
	g.ctrls[j] = h2
	g.slots[j] = idx
	ki.size++
}

// firstFree walks the probe sequence of hash up to the first empty or
// deleted slot. The table must have room.
func (ki *keyIndex[K, V]) firstFree(hash uint64) (*group, uintptr) {
	h1, _ := HashSplit(hash)
	mask := ki.numGroupsMask
	start := (h1 / groupSize) & mask

	for p, offset := uintptr(0), start; ; p++ {
		g := &ki.groups[offset]
		if m := matchEmptyOrDeleted(g.ctrlWord()); m != 0 {
			return g, m.first()
		}

		offset = (start + (p+1)*(p+2)/2) & mask
	}
}

// remove drops key and returns the slot index it pointed to.
func (ki *keyIndex[K, V]) remove(slots *slotStore[K, V], key K, hash uint64) (int, bool) {
	if ki.size == 0 {
		return 0, false
	}

	h1, h2 := HashSplit(hash)
	mask := ki.numGroupsMask
	start := (h1 / groupSize) & mask

	for p, offset := uintptr(0), start; p <= mask; p++ {
		g := &ki.groups[offset]
		ctrl := g.ctrlWord()

		matches := matchH2(ctrl, h2)
		for matches != 0 {
			j := matches.first()
			idx := g.slots[j]
			if slots.keyAt(idx) == key {
				ki.clearSlot(g, j, ctrl)

				return idx, true
			}

			matches = matches.removeFirst()
		}

		if matchEmpty(ctrl) != 0 {
			return 0, false
		}

		offset = (start + (p+1)*(p+2)/2) & mask
	}

	return 0, false
}

// clearSlot frees slot j of g. Probing stops at the first group with an
// empty slot and a group gains empty slots only on rehash, so if g still has
// one no probe chain has ever passed through it and the slot can become
// empty instead of a tombstone.
func (ki *keyIndex[K, V]) clearSlot(g *group, j uintptr, ctrl uint64) {
	if matchEmpty(ctrl) != 0 {
		g.ctrls[j] = ctrlEmpty
	} else {
		// Mark as Deleted (0xFE) to preserve the probe chain
		g.ctrls[j] = ctrlDeleted
		ki.tombstones++
	}

	ki.size--
}

// relocate repoints the entry for hash from slot index from to slot index to.
// Compaction uses it after moving a key inside the slot store.
func (ki *keyIndex[K, V]) relocate(hash uint64, from, to int) bool {
	h1, h2 := HashSplit(hash)
	mask := ki.numGroupsMask
	start := (h1 / groupSize) & mask

	for p, offset := uintptr(0), start; p <= mask; p++ {
		g := &ki.groups[offset]
		ctrl := g.ctrlWord()

		matches := matchH2(ctrl, h2)
		for matches != 0 {
			j := matches.first()
			if g.slots[j] == from {
				g.slots[j] = to
				return true
			}

			matches = matches.removeFirst()
		}

		if matchEmpty(ctrl) != 0 {
			return false
		}

		offset = (start + (p+1)*(p+2)/2) & mask
	}

	return false
}

// reserve makes room for n more keys without any further rehash.
func (ki *keyIndex[K, V]) reserve(slots *slotStore[K, V], n int) {
	need := ki.size + uintptr(n)
	if need+ki.tombstones <= ki.capacityEffective {
		return
	}

	ki.resize(slots, int(need))
}

func (ki *keyIndex[K, V]) rehash(slots *slotStore[K, V]) {
	// Rehash in place if we can recover at least a third of the capacity,
	// it's cheaper than a resize since most indices stay where they are.
	recoverable := ki.capacityEffective - ki.size
	if ki.capacity > groupSize && recoverable >= ki.capacity/3 {
		ki.rehashInPlace(slots)
		return
	}

	ki.resize(slots, int(ki.capacity))
}

// resize moves every live index into a table sized for at least capacity keys.
func (ki *keyIndex[K, V]) resize(slots *slotStore[K, V], capacity int) {
	old := ki.groups

	ki.init(max(capacity, 1))

	for i := range old {
		g := &old[i]
		full := matchFull(g.ctrlWord())
		for full != 0 {
			j := full.first()
			idx := g.slots[j]
			ki.insert(slots, ki.hashAt(slots, idx), idx)

			full = full.removeFirst()
		}
	}
}

// shrink resizes the table to the smallest one holding the current keys,
// dropping every tombstone. An empty table releases its groups.
func (ki *keyIndex[K, V]) shrink(slots *slotStore[K, V]) {
	if ki.size == 0 {
		ki.init(0)
		return
	}

	if ki.tombstones > 0 || slotsFor(int(ki.size)) < ki.capacity {
		ki.resize(slots, int(ki.size))
	}
}

func (ki *keyIndex[K, V]) rehashInPlace(slots *slotStore[K, V]) {
	// We want to drop all of the deletes in place. We first walk over the
	// control bytes and mark every DELETED slot as EMPTY and every FULL slot
	// as DELETED. Marking the DELETED slots as EMPTY has effectively dropped
	// the tombstones, but we fouled up the probe invariant. Marking the FULL
	// slots as DELETED gives us a marker to locate the previously FULL slots.
	for i := range ki.groups {
		g := &ki.groups[i]
		g.setCtrlWord(invertCtrls(g.ctrlWord()))
	}

	for i := range ki.groups {
		g := &ki.groups[i]
		for j := uintptr(0); j < groupSize; {
			// Only process slots we marked as Deleted (which were originally Full)
			if g.ctrls[j] != ctrlDeleted {
				j++
				continue
			}

			idx := g.slots[j]
			hash := ki.hashAt(slots, idx)
			_, h2 := HashSplit(hash)
			tg, tj := ki.firstFree(hash)

			switch {
			case tg == g && tj == j:
				g.ctrls[j] = h2
				j++
			case tg.ctrls[tj] == ctrlEmpty:
				tg.ctrls[tj] = h2
				tg.slots[tj] = idx
				g.ctrls[j] = ctrlEmpty
				j++
			default:
				// The target still holds an unprocessed index: swap and
				// process the one we got back without advancing.
				tg.ctrls[tj] = h2
				g.slots[j], tg.slots[tj] = tg.slots[tj], idx
			}
		}
	}

	ki.tombstones = 0
}
