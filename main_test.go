package stablemap

import (
	"testing"
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
)

//go:nocheckptr
func unsafeConvertSlice[Dest any, Src any](s []Src) []Dest {
	return unsafe.Slice((*Dest)(unsafe.Pointer(unsafe.SliceData(s))), len(s))
}

// checkInvariants verifies the relations between the slot store, the free
// list and the key index.
func checkInvariants[K comparable, V any](sm *StableMap[K, V]) error {
	free := make(map[int]struct{}, sm.free.len())
	for _, i := range sm.free.heap {
		if _, ok := free[i]; ok {
			return errors.Newf("index %d is in the free list twice", i)
		}
		free[i] = struct{}{}

		if i < 0 || i >= sm.slots.len() {
			return errors.Newf("free index %d out of range [0, %d)", i, sm.slots.len())
		}
		if sm.slots.at(i).occupied {
			return errors.Newf("free index %d is occupied", i)
		}
	}

	occupied := 0
	for i := range sm.slots.entries {
		sl := sm.slots.at(i)
		if !sl.occupied {
			if _, ok := free[i]; !ok {
				return errors.Newf("empty slot %d is not in the free list", i)
			}
			continue
		}

		occupied++
		idx, ok := sm.GetIndex(sl.key)
		if !ok || idx != i {
			return errors.Newf("key %v in slot %d resolves to (%d, %t)", sl.key, i, idx, ok)
		}
	}

	if occupied != sm.size {
		return errors.Newf("%d occupied slots, len is %d", occupied, sm.size)
	}
	if sm.slots.len()-sm.size != sm.free.len() {
		return errors.Newf("index-len %d - len %d != free %d", sm.slots.len(), sm.size, sm.free.len())
	}
	if int(sm.index.size) != sm.size {
		return errors.Newf("key index holds %d keys, len is %d", sm.index.size, sm.size)
	}
	if n := sm.slots.len(); n > 0 && !sm.slots.at(n-1).occupied {
		return errors.Newf("trailing slot %d is empty", n-1)
	}

	return nil
}

func requireInvariants[K comparable, V any](t testing.TB, sm *StableMap[K, V]) {
	t.Helper()
	require.NoError(t, checkInvariants(sm))
}
