package stablemap

import (
	"math/bits"
	"slices"
)

// freeList tracks the indices of empty slots inside [0, IndexLen()).
//
// It's a min-max heap: allocation takes the smallest index so the used range
// stays compact, while tail trimming after a removal takes the largest ones.
// Even levels (starting with the root) are min levels, odd levels are max
// levels.
type freeList struct {
	heap []int
}

func (f *freeList) len() int {
	return len(f.heap)
}

func (f *freeList) reset() {
	f.heap = f.heap[:0]
}

func (f *freeList) shrink() {
	if cap(f.heap) > len(f.heap) {
		f.heap = slices.Clone(f.heap)
	}
}

func (f *freeList) push(i int) {
	f.heap = append(f.heap, i)
	f.pushUp(len(f.heap) - 1)
}

func (f *freeList) peekMin() (int, bool) {
	if len(f.heap) == 0 {
		return 0, false
	}

	return f.heap[0], true
}

func (f *freeList) peekMax() (int, bool) {
	switch len(f.heap) {
	case 0:
		return 0, false
	case 1:
		return f.heap[0], true
	default:
		return f.heap[f.maxPos()], true
	}
}

func (f *freeList) popMin() (int, bool) {
	if len(f.heap) == 0 {
		return 0, false
	}

	return f.removeAt(0), true
}

func (f *freeList) popMax() (int, bool) {
	switch len(f.heap) {
	case 0:
		return 0, false
	case 1:
		return f.removeAt(0), true
	default:
		return f.removeAt(f.maxPos()), true
	}
}

// maxPos requires at least two elements.
func (f *freeList) maxPos() int {
	if len(f.heap) > 2 && f.heap[2] > f.heap[1] {
		return 2
	}

	return 1
}

func (f *freeList) removeAt(pos int) int {
	v := f.heap[pos]
	last := len(f.heap) - 1
	f.heap[pos] = f.heap[last]
	f.heap = f.heap[:last]

	if pos < last {
		f.pushDown(pos)
	}

	return v
}

//go:inline
func isMinLevel(pos int) bool {
	return bits.Len(uint(pos+1))%2 == 1
}

func (f *freeList) swap(a, b int) {
	f.heap[a], f.heap[b] = f.heap[b], f.heap[a]
}

func (f *freeList) pushUp(pos int) {
	if pos == 0 {
		return
	}

	parent := (pos - 1) / 2
	if isMinLevel(pos) {
		if f.heap[pos] > f.heap[parent] {
			f.swap(pos, parent)
			f.pushUpLevel(parent, greater)
		} else {
			f.pushUpLevel(pos, less)
		}
	} else {
		if f.heap[pos] < f.heap[parent] {
			f.swap(pos, parent)
			f.pushUpLevel(parent, less)
		} else {
			f.pushUpLevel(pos, greater)
		}
	}
}

func less(a, b int) bool    { return a < b }
func greater(a, b int) bool { return a > b }

// pushUpLevel bubbles pos up through its grandparents, i.e. along its own
// kind of levels.
func (f *freeList) pushUpLevel(pos int, before func(a, b int) bool) {
	for pos > 2 {
		grandparent := ((pos-1)/2 - 1) / 2
		if !before(f.heap[pos], f.heap[grandparent]) {
			return
		}

		f.swap(pos, grandparent)
		pos = grandparent
	}
}

func (f *freeList) pushDown(pos int) {
	if isMinLevel(pos) {
		f.pushDownLevel(pos, less)
	} else {
		f.pushDownLevel(pos, greater)
	}
}

func (f *freeList) pushDownLevel(pos int, before func(a, b int) bool) {
	n := len(f.heap)

	for {
		// Pick the extreme among children and grandchildren.
		m := -1
		for _, c := range [...]int{2*pos + 1, 2*pos + 2, 4*pos + 3, 4*pos + 4, 4*pos + 5, 4*pos + 6} {
			if c >= n {
				break
			}

			if m < 0 || before(f.heap[c], f.heap[m]) {
				m = c
			}
		}

		if m < 0 || !before(f.heap[m], f.heap[pos]) {
			return
		}

		f.swap(m, pos)

		// A child is on the opposite kind of level and has no descendants
		// left to fix.
		if m <= 2*pos+2 {
			return
		}

		parent := (m - 1) / 2
		if before(f.heap[parent], f.heap[m]) {
			f.swap(m, parent)
		}

		pos = m
	}
}
