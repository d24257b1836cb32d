package datatype

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSize(t *testing.T) {
	cases := []struct {
		name string
		dt   Datatype
		want int
	}{
		{"int", Datatype{Kind: Int, ElemSize: 4}, 4},
		{"char", Datatype{Kind: Char, ElemSize: 1}, 1},
		{"pointer to char", Datatype{Kind: Char, ElemSize: 1, PointerDepth: 1, Flags: FlagIsPointer}, Word},
		{"array of int[3]", Datatype{Kind: Int, ElemSize: 4, Array: Array{Brackets: []int{3}, Size: 12}, Flags: FlagIsArray}, 12},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			require.Equal(t, c.want, c.dt.Size())
		})
	}
}

func TestSizeForArrayAccess(t *testing.T) {
	sd := &StructDef{Name: "point", Size: 8}
	dt := Datatype{Kind: Struct, Struct: sd, ElemSize: 8, PointerDepth: 1, Flags: FlagIsPointer}
	require.Equal(t, 8, dt.SizeForArrayAccess())

	dt2 := Datatype{Kind: Int, ElemSize: 4, PointerDepth: 1, Flags: FlagIsPointer}
	require.Equal(t, Word, dt2.SizeForArrayAccess())
}

func TestPointerReduce(t *testing.T) {
	cases := []struct {
		depth    int
		by       int
		wantD    int
		wantFlag bool
	}{
		{2, 1, 1, true},
		{1, 1, 0, false},
		{3, 5, 0, false},
	}
	for _, c := range cases {
		dt := Datatype{PointerDepth: c.depth, Flags: FlagIsPointer}
		got := dt.PointerReduce(c.by)
		require.Equal(t, c.wantD, got.PointerDepth)
		require.Equal(t, c.wantFlag, got.IsPointer())
		// never mutates the original
		require.Equal(t, c.depth, dt.PointerDepth)
	}
}

func TestThatsAPointer(t *testing.T) {
	ptr := Datatype{PointerDepth: 1, Flags: FlagIsPointer}
	val := Datatype{Kind: Int, ElemSize: 4}
	require.Same(t, &ptr, ThatsAPointer(&ptr, &val))
	require.Same(t, &ptr, ThatsAPointer(&val, &ptr))
	require.Nil(t, ThatsAPointer(&val, &val))
}

func TestArrayOffset(t *testing.T) {
	// int a[3][4]; a[2][1] -> offset at dimension 0 is index*4*4=32,
	// at dimension 1 is index*4=4.
	dt := Datatype{Kind: Int, ElemSize: 4, Array: Array{Brackets: []int{3, 4}}}
	require.Equal(t, 32, ArrayOffset(&dt, 0, 2))
	require.Equal(t, 4, ArrayOffset(&dt, 1, 1))
}
