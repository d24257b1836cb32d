package layout

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rosebud32/rosebudc/internal/ast"
	"github.com/rosebud32/rosebudc/internal/datatype"
)

func intType() datatype.Datatype {
	return datatype.Datatype{Kind: datatype.Int, TypeStr: "int", ElemSize: datatype.Word}
}

func TestComputeArgOffsetsGrowUpwardFromEbpPlus8(t *testing.T) {
	a, b := &ast.FuncArg{Name: "a", Type: intType()}, &ast.FuncArg{Name: "b", Type: intType()}
	fn := &ast.FuncDecl{Name: "f", Args: []*ast.FuncArg{a, b}, Body: &ast.BlockStmt{}}

	Compute(fn)

	require.Equal(t, 8, a.AlignedOffset)
	require.Equal(t, 12, b.AlignedOffset)
}

func TestComputeLocalOffsetsGrowDownwardFromEbp(t *testing.T) {
	x := &ast.VarDecl{Name: "x", Type: intType()}
	y := &ast.VarDecl{Name: "y", Type: intType()}
	fn := &ast.FuncDecl{
		Name: "f",
		Body: &ast.BlockStmt{Stmts: []ast.Stmt{x, y}},
	}

	Compute(fn)

	require.Equal(t, -4, x.AlignedOffset)
	require.Equal(t, -8, y.AlignedOffset)
	require.Equal(t, 8, fn.StackSize)
}

func TestComputeNestedBlocksDoNotReclaimOffsets(t *testing.T) {
	outer := &ast.VarDecl{Name: "outer", Type: intType()}
	inner1 := &ast.VarDecl{Name: "inner1", Type: intType()}
	inner2 := &ast.VarDecl{Name: "inner2", Type: intType()}
	fn := &ast.FuncDecl{
		Name: "f",
		Body: &ast.BlockStmt{Stmts: []ast.Stmt{
			outer,
			&ast.IfStmt{
				Then: &ast.BlockStmt{Stmts: []ast.Stmt{inner1}},
				Else: &ast.BlockStmt{Stmts: []ast.Stmt{inner2}},
			},
		}},
	}

	Compute(fn)

	require.Equal(t, -4, outer.AlignedOffset)
	// Two sibling blocks (if's then/else) each declare one local: since
	// offsets are never reclaimed when a block ends, inner1 and inner2 get
	// distinct slots even though they're never live at the same time.
	require.Equal(t, -8, inner1.AlignedOffset)
	require.Equal(t, -12, inner2.AlignedOffset)
	require.Equal(t, 12, fn.StackSize)
}

func TestComputePrototypeAssignsOnlyArgOffsets(t *testing.T) {
	fn := &ast.FuncDecl{Name: "f", Args: []*ast.FuncArg{{Name: "a", Type: intType()}}}
	Compute(fn)
	require.Equal(t, 8, fn.Args[0].AlignedOffset)
	require.Equal(t, 0, fn.StackSize)
}
