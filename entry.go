package stablemap

// Entry is a single key of a map, present or not, looked up once for a
// following read, insert, update or removal. It stays valid until the map is
// changed other than through the entry itself.
//
//	counts.Entry(word).AndModify(func(n *int) { *n++ }).OrInsert(1)
type Entry[K comparable, V any] struct {
	sm    *StableMap[K, V]
	key   K
	hash  uint64
	index int
	found bool
}

// Entry returns the entry for key.
func (sm *StableMap[K, V]) Entry(key K) *Entry[K, V] {
	e := sm.entry(key)
	return &e
}

func (sm *StableMap[K, V]) entry(key K) Entry[K, V] {
	sm.ensureHashFunc()

	hash := sm.index.hash(key)
	i, ok := sm.index.find(&sm.slots, key, hash)

	return Entry[K, V]{sm: sm, key: key, hash: hash, index: i, found: ok}
}

// GetOrInsert returns a pointer to the value stored under key and its index,
// inserting value first if the key is absent. loaded reports whether the key
// was already present.
func (sm *StableMap[K, V]) GetOrInsert(key K, value V) (_ *V, index int, loaded bool) {
	e := sm.entry(key)
	loaded = e.found
	v := e.OrInsert(value)

	return v, e.index, loaded
}

// GetOrInsertFunc is like GetOrInsert, but calls f only when key is absent.
func (sm *StableMap[K, V]) GetOrInsertFunc(key K, f func() V) (_ *V, index int, loaded bool) {
	e := sm.entry(key)
	loaded = e.found
	v := e.OrInsertWith(f)

	return v, e.index, loaded
}

// Key returns the stored key of an occupied entry, or the key it was looked
// up with.
func (e *Entry[K, V]) Key() K {
	if e.found {
		return e.sm.slots.keyAt(e.index)
	}

	return e.key
}

// Occupied reports whether the key is present.
func (e *Entry[K, V]) Occupied() bool {
	return e.found
}

// Index returns the index of an occupied entry.
func (e *Entry[K, V]) Index() (int, bool) {
	if !e.found {
		return 0, false
	}

	return e.index, true
}

func (e *Entry[K, V]) Get() (V, bool) {
	if !e.found {
		var zero V
		return zero, false
	}

	return e.sm.slots.at(e.index).value, true
}

// GetMut returns a pointer to the value of an occupied entry, or nil.
func (e *Entry[K, V]) GetMut() *V {
	if !e.found {
		return nil
	}

	return &e.sm.slots.at(e.index).value
}

// AndModify calls f with the value of an occupied entry.
func (e *Entry[K, V]) AndModify(f func(value *V)) *Entry[K, V] {
	if e.found {
		f(&e.sm.slots.at(e.index).value)
	}

	return e
}

// OrInsert inserts value if the entry is vacant and returns a pointer to the
// value now stored. Like GetMut, the pointer goes stale once the map grows or
// is compacted.
func (e *Entry[K, V]) OrInsert(value V) *V {
	if !e.found {
		e.insert(value)
	}

	return &e.sm.slots.at(e.index).value
}

// OrInsertWith is like OrInsert, but calls f only for a vacant entry.
func (e *Entry[K, V]) OrInsertWith(f func() V) *V {
	if !e.found {
		e.insert(f())
	}

	return &e.sm.slots.at(e.index).value
}

// OrInsertWithKey is like OrInsertWith, passing the key to f.
func (e *Entry[K, V]) OrInsertWithKey(f func(key K) V) *V {
	if !e.found {
		e.insert(f(e.key))
	}

	return &e.sm.slots.at(e.index).value
}

// OrDefault inserts the zero value if the entry is vacant.
func (e *Entry[K, V]) OrDefault() *V {
	var zero V
	return e.OrInsert(zero)
}

// Insert stores value, keeping the index of an occupied entry. The previous
// value is returned with true if there was one.
func (e *Entry[K, V]) Insert(value V) (V, bool) {
	if !e.found {
		e.insert(value)

		var zero V
		return zero, false
	}

	sl := e.sm.slots.at(e.index)
	prev := sl.value
	sl.value = value

	return prev, true
}

// Remove deletes an occupied entry and returns its value. The entry is vacant
// afterwards and may be inserted again.
func (e *Entry[K, V]) Remove() (V, bool) {
	if !e.found {
		var zero V
		return zero, false
	}

	e.sm.index.remove(&e.sm.slots, e.key, e.hash)
	_, v := e.sm.removeAt(e.index)
	e.found = false

	return v, true
}

func (e *Entry[K, V]) insert(value V) {
	e.index = e.sm.insertNew(e.key, value, e.hash)
	e.found = true
}
