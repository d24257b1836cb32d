package stackframe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	elemNumber ElementType = iota
	elemLocal
	elemArg
)

func TestPushPopBalances(t *testing.T) {
	f := New()
	require.True(t, f.Empty())

	f.Push(elemNumber, "", 4)
	f.Push(elemLocal, "x", 4)
	require.Equal(t, 2, f.Len())

	got := f.Pop()
	assert.Equal(t, elemLocal, got.Type)
	assert.Equal(t, "x", got.Name)
	assert.Equal(t, 1, f.Len())

	f.Pop()
	require.True(t, f.Empty())
}

func TestPopExpectingMatches(t *testing.T) {
	f := New()
	f.Push(elemArg, "argc", 4)
	e := f.PopExpecting(elemArg, "argc")
	assert.Equal(t, 4, e.Size)
	assert.True(t, f.Empty())
}

func TestPopExpectingMismatchPanics(t *testing.T) {
	f := New()
	f.Push(elemArg, "argc", 4)
	assert.Panics(t, func() { f.PopExpecting(elemLocal, "argc") })
}

func TestPopOnEmptyFramePanics(t *testing.T) {
	f := New()
	assert.Panics(t, func() { f.Pop() })
}

func TestSubAddRoundTrip(t *testing.T) {
	f := New()
	f.Sub(elemLocal, "frame", 32)
	require.Equal(t, 1, f.Len())
	f.Add(elemLocal, "frame", 32)
	require.True(t, f.Empty())
}

func TestAddSizeMismatchPanics(t *testing.T) {
	f := New()
	f.Sub(elemLocal, "frame", 32)
	assert.Panics(t, func() { f.Add(elemLocal, "frame", 16) })
}

func TestAlign(t *testing.T) {
	cases := []struct {
		n, align, want int
	}{
		{0, 16, 0},
		{1, 16, 16},
		{16, 16, 16},
		{17, 16, 32},
		{4, 4, 4},
		{5, 4, 8},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Align(tc.n, tc.align))
	}
}

func TestAlignIsPure(t *testing.T) {
	calls := 0
	computeN := func() int {
		calls++
		return 10
	}
	n := computeN()
	Align(n, 16)
	assert.Equal(t, 1, calls)
}
