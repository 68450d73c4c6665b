package stablemap

import (
	"fmt"
	"hash/maphash"
	"slices"
	"strings"

	"github.com/cockroachdb/errors"
)

// StableMap is a hash map that gives every entry a small integer index which
// stays the same until the entry is removed or the map is compacted.
//
// Keys are resolved through a swiss-table key index that stores only slot
// indices, while keys and values live in a dense slot store addressed by
// those same indices. Freed indices are reused smallest first and empty
// slots at the end are trimmed right away, so IndexLen stays close to Len
// without moving anything. Compact closes the remaining gaps on request.
//
// StableMap does no locking. The intended pattern is index-cursor traversal
// under an external mutex:
//
//	mu.Lock()
//	n := m.IndexLen()
//	for i := 0; i < n; i++ {
//		v, ok := m.GetByIndex(i)
//		if !ok {
//			continue
//		}
//		mu.Unlock()
//		run(v) // may insert into or remove from m
//		mu.Lock()
//	}
//	mu.Unlock()
//
// GetByIndex is safe for any i, even after the map shrank below it, and
// always reports the current occupant of slot i. An index reused by another
// key in the meantime shows the new entry. Entries appended past the captured
// bound aren't visited. Compact must not run while anyone still relies on
// indices observed earlier.
//
// The zero value is an empty map using the default hash function.
type StableMap[K comparable, V any] struct {
	slots slotStore[K, V]
	free  freeList
	index keyIndex[K, V]

	size int
}

type Option[K comparable, V any] func(sm *StableMap[K, V])

// Override default hash function.
func WithHashFunc[K comparable, V any](f HashFunc[K]) Option[K, V] {
	return func(sm *StableMap[K, V]) {
		sm.index.hashFunc = f
	}
}

// Use the default hash function with a fixed seed.
func WithSeed[K comparable, V any](seed maphash.Seed) Option[K, V] {
	return func(sm *StableMap[K, V]) {
		sm.index.hashFunc = MakeDefaultHashFunc[K](seed)
	}
}

// Returns a new map with room for capacity entries.
func New[K comparable, V any](capacity int, opts ...Option[K, V]) *StableMap[K, V] {
	var sm StableMap[K, V]
	sm.init(capacity, opts...)

	return &sm
}

func (sm *StableMap[K, V]) init(capacity int, opts ...Option[K, V]) {
	for _, opt := range opts {
		opt(sm)
	}

	sm.ensureHashFunc()

	capacity = max(capacity, 0)
	sm.index.init(capacity)
	sm.slots.grow(capacity)
}

func (sm *StableMap[K, V]) ensureHashFunc() {
	if sm.index.hashFunc == nil {
		sm.index.hashFunc = MakeDefaultHashFunc[K](maphash.MakeSeed())
	}
}

// lookup resolves key to its slot index. An empty map never hashes, which
// keeps reads on a zero value free of writes.
func (sm *StableMap[K, V]) lookup(key K) (int, bool) {
	if sm.size == 0 {
		return 0, false
	}

	return sm.index.find(&sm.slots, key, sm.index.hash(key))
}

// Insert stores value under key. For a present key the value is replaced in
// place, keeping its index, and the previous value is returned with true.
func (sm *StableMap[K, V]) Insert(key K, value V) (V, bool) {
	sm.ensureHashFunc()

	hash := sm.index.hash(key)
	if i, ok := sm.index.find(&sm.slots, key, hash); ok {
		sl := sm.slots.at(i)
		prev := sl.value
		sl.value = value

		return prev, true
	}

	sm.insertNew(key, value, hash)

	var zero V
	return zero, false
}

// TryInsert stores value under a key that isn't present yet and returns a
// pointer to the stored value. If the key exists the map is left untouched
// and an *OccupiedError is returned.
func (sm *StableMap[K, V]) TryInsert(key K, value V) (*V, error) {
	sm.ensureHashFunc()

	hash := sm.index.hash(key)
	if i, ok := sm.index.find(&sm.slots, key, hash); ok {
		return nil, &OccupiedError[K, V]{
			Key:      key,
			Existing: sm.slots.at(i).value,
			Value:    value,
		}
	}

	i := sm.insertNew(key, value, hash)

	return &sm.slots.at(i).value, nil
}

// insertNew takes the smallest free index, or appends a slot when there's none.
func (sm *StableMap[K, V]) insertNew(key K, value V, hash uint64) int {
	i, ok := sm.free.popMin()
	if !ok {
		i = sm.slots.push()
	}

	// The slot is filled first, a rehash inside insert reads keys through it.
	sm.slots.occupy(i, key, value)
	sm.index.insert(&sm.slots, hash, i)
	sm.size++

	return i
}

// Remove deletes key and returns its value.
func (sm *StableMap[K, V]) Remove(key K) (V, bool) {
	_, v, ok := sm.RemoveEntry(key)
	return v, ok
}

// RemoveEntry deletes key and returns the stored key and value.
func (sm *StableMap[K, V]) RemoveEntry(key K) (K, V, bool) {
	if sm.size == 0 {
		var (
			zk K
			zv V
		)
		return zk, zv, false
	}

	i, ok := sm.index.remove(&sm.slots, key, sm.index.hash(key))
	if !ok {
		var (
			zk K
			zv V
		)
		return zk, zv, false
	}

	k, v := sm.removeAt(i)

	return k, v, true
}

// removeIndex deletes the entry in the occupied slot i.
func (sm *StableMap[K, V]) removeIndex(i int) (K, V) {
	key := sm.slots.keyAt(i)
	sm.index.remove(&sm.slots, key, sm.index.hash(key))

	return sm.removeAt(i)
}

// removeAt empties slot i whose key is already gone from the key index.
func (sm *StableMap[K, V]) removeAt(i int) (K, V) {
	k, v := sm.slots.vacate(i)
	sm.size--

	if i == sm.slots.len()-1 {
		sm.trimTail()
	} else {
		sm.free.push(i)
	}

	return k, v
}

// trimTail drops the just vacated last slot together with every empty slot
// right below it. Those are all in the free list and are its largest entries.
func (sm *StableMap[K, V]) trimTail() {
	n := sm.slots.len() - 1

	for n > 0 && !sm.slots.at(n-1).occupied {
		if top, ok := sm.free.peekMax(); !ok || top != n-1 {
			break
		}

		sm.free.popMax()
		n--
	}

	sm.slots.truncate(n)
}

// Get returns the value stored under key.
func (sm *StableMap[K, V]) Get(key K) (V, bool) {
	i, ok := sm.lookup(key)
	if !ok {
		var zero V
		return zero, false
	}

	return sm.slots.at(i).value, true
}

// GetMut returns a pointer to the value stored under key, or nil.
// The pointer goes stale once the map grows or is compacted.
func (sm *StableMap[K, V]) GetMut(key K) *V {
	i, ok := sm.lookup(key)
	if !ok {
		return nil
	}

	return &sm.slots.at(i).value
}

// GetManyMut returns a pointer for each of keys, nil for absent ones. A key
// given twice yields the same pointer twice.
func (sm *StableMap[K, V]) GetManyMut(keys ...K) []*V {
	out := make([]*V, len(keys))
	for n, key := range keys {
		out[n] = sm.GetMut(key)
	}

	return out
}

// GetKeyValue returns the stored key along with its value.
func (sm *StableMap[K, V]) GetKeyValue(key K) (K, V, bool) {
	i, ok := sm.lookup(key)
	if !ok {
		var (
			zk K
			zv V
		)
		return zk, zv, false
	}

	sl := sm.slots.at(i)

	return sl.key, sl.value, true
}

func (sm *StableMap[K, V]) ContainsKey(key K) bool {
	_, ok := sm.lookup(key)
	return ok
}

// GetIndex returns the index currently assigned to key.
func (sm *StableMap[K, V]) GetIndex(key K) (int, bool) {
	return sm.lookup(key)
}

// GetByIndex returns the value in slot i. Any i is accepted: out of range
// indices and empty slots report false.
func (sm *StableMap[K, V]) GetByIndex(i int) (V, bool) {
	sl, ok := sm.slots.lookup(i)
	if !ok {
		var zero V
		return zero, false
	}

	return sl.value, true
}

// GetByIndexMut returns a pointer to the value in slot i, or nil.
func (sm *StableMap[K, V]) GetByIndexMut(i int) *V {
	sl, ok := sm.slots.lookup(i)
	if !ok {
		return nil
	}

	return &sl.value
}

// GetByIndexKeyValue returns the key and value in slot i.
func (sm *StableMap[K, V]) GetByIndexKeyValue(i int) (K, V, bool) {
	sl, ok := sm.slots.lookup(i)
	if !ok {
		var (
			zk K
			zv V
		)
		return zk, zv, false
	}

	return sl.key, sl.value, true
}

// IndexLen is the exclusive upper bound of indices in use.
func (sm *StableMap[K, V]) IndexLen() int {
	return sm.slots.len()
}

// Len is the number of entries.
func (sm *StableMap[K, V]) Len() int {
	return sm.size
}

func (sm *StableMap[K, V]) IsEmpty() bool {
	return sm.size == 0
}

// Clear removes every entry, keeping the allocated memory.
func (sm *StableMap[K, V]) Clear() {
	sm.slots.reset()
	sm.free.reset()
	sm.index.reset()
	sm.size = 0
}

// Reserve makes room for n more entries, so inserting them allocates nothing.
func (sm *StableMap[K, V]) Reserve(n int) {
	if n < 0 {
		panic(errors.AssertionFailedf("stablemap: negative reserve %d", n))
	}

	sm.ensureHashFunc()
	sm.index.reserve(&sm.slots, n)

	if grow := n - sm.free.len(); grow > 0 {
		sm.slots.grow(grow)
	}
}

// Retain removes every entry for which f returns false. Entries are visited
// in index order, f may modify the value it is given.
func (sm *StableMap[K, V]) Retain(f func(key K, value *V) bool) {
	for range sm.ExtractIf(func(key K, value *V) bool { return !f(key, value) }) {
	}
}

// ShrinkToFit releases the spare capacity of the map. Indices don't change,
// so empty slots below IndexLen stay allocated; Compact first to drop them too.
func (sm *StableMap[K, V]) ShrinkToFit() {
	sm.slots.shrink()
	sm.free.shrink()
	sm.index.shrink(&sm.slots)
}

// Clone returns an independent copy with the same indices. Keys and values
// are copied shallowly.
func (sm *StableMap[K, V]) Clone() *StableMap[K, V] {
	c := &StableMap[K, V]{
		index: sm.index,
		size:  sm.size,
	}

	c.slots.entries = slices.Clone(sm.slots.entries)
	c.free.heap = slices.Clone(sm.free.heap)
	c.index.groups = slices.Clone(sm.index.groups)

	return c
}

// Equal reports whether both maps hold the same keys with equal values.
// Indices are not compared.
func Equal[K, V comparable](a, b *StableMap[K, V]) bool {
	return EqualFunc(a, b, func(x, y V) bool { return x == y })
}

// EqualFunc is like Equal, but compares values with eq.
func EqualFunc[K comparable, V1, V2 any](a *StableMap[K, V1], b *StableMap[K, V2], eq func(V1, V2) bool) bool {
	if a.Len() != b.Len() {
		return false
	}

	for k, v1 := range a.All() {
		v2, ok := b.Get(k)
		if !ok || !eq(v1, v2) {
			return false
		}
	}

	return true
}

func (sm *StableMap[K, V]) String() string {
	var b strings.Builder

	b.WriteString("stablemap[")
	sep := ""
	for k, v := range sm.All() {
		fmt.Fprintf(&b, "%s%v:%v", sep, k, v)
		sep = " "
	}
	b.WriteByte(']')

	return b.String()
}
