package stablemap

import (
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"
)

// checkHeap verifies that every element respects the order of the level it
// sits on relative to all of its descendants.
func checkHeap(t *testing.T, f *freeList) {
	t.Helper()

	for pos := range f.heap {
		before := less
		if !isMinLevel(pos) {
			before = greater
		}

		stack := []int{2*pos + 1, 2*pos + 2}
		for len(stack) > 0 {
			c := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if c >= len(f.heap) {
				continue
			}

			require.False(t, before(f.heap[c], f.heap[pos]),
				"heap[%d]=%d is out of order with descendant heap[%d]=%d", pos, f.heap[pos], c, f.heap[c])
			stack = append(stack, 2*c+1, 2*c+2)
		}
	}
}

func TestIsMinLevel(t *testing.T) {
	for pos, want := range []bool{true, false, false, true, true, true, true, false} {
		require.Equal(t, want, isMinLevel(pos), "pos %d", pos)
	}
}

func TestFreeList_Empty(t *testing.T) {
	var f freeList

	_, ok := f.peekMin()
	require.False(t, ok)
	_, ok = f.peekMax()
	require.False(t, ok)
	_, ok = f.popMin()
	require.False(t, ok)
	_, ok = f.popMax()
	require.False(t, ok)
}

func TestFreeList_Single(t *testing.T) {
	var f freeList
	f.push(7)

	v, ok := f.peekMin()
	require.True(t, ok)
	require.Equal(t, 7, v)

	v, ok = f.peekMax()
	require.True(t, ok)
	require.Equal(t, 7, v)

	v, ok = f.popMax()
	require.True(t, ok)
	require.Equal(t, 7, v)
	require.Zero(t, f.len())
}

func TestFreeList_PopMin(t *testing.T) {
	var f freeList
	values := rand.Perm(200)

	for _, v := range values {
		f.push(v)
		checkHeap(t, &f)
	}

	for want := range 200 {
		v, ok := f.popMin()
		require.True(t, ok)
		require.Equal(t, want, v)
		checkHeap(t, &f)
	}
}

func TestFreeList_PopMax(t *testing.T) {
	var f freeList
	for _, v := range rand.Perm(200) {
		f.push(v)
	}

	for want := 199; want >= 0; want-- {
		top, ok := f.peekMax()
		require.True(t, ok)
		require.Equal(t, want, top)

		v, ok := f.popMax()
		require.True(t, ok)
		require.Equal(t, want, v)
		checkHeap(t, &f)
	}
}

func TestFreeList_Interleaved(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))

	var (
		f   freeList
		ref []int
	)

	pushed := 0
	for range 5000 {
		switch op := rng.IntN(4); {
		case op <= 1:
			// Distinct values in scrambled order.
			v := pushed * 7919 % 100003
			pushed++

			f.push(v)
			ref = append(ref, v)
		case op == 2:
			v, ok := f.popMin()
			require.Equal(t, len(ref) > 0, ok)
			if ok {
				require.Equal(t, slices.Min(ref), v)
				ref = slices.DeleteFunc(ref, func(x int) bool { return x == v })
			}
		default:
			v, ok := f.popMax()
			require.Equal(t, len(ref) > 0, ok)
			if ok {
				require.Equal(t, slices.Max(ref), v)
				ref = slices.DeleteFunc(ref, func(x int) bool { return x == v })
			}
		}

		require.Equal(t, len(ref), f.len())
	}

	checkHeap(t, &f)
}

func TestFreeList_Reset(t *testing.T) {
	var f freeList
	for i := range 10 {
		f.push(i)
	}

	f.reset()
	require.Zero(t, f.len())

	f.push(3)
	v, _ := f.popMin()
	require.Equal(t, 3, v)
}
