package resolver

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rosebud32/rosebudc/internal/ast"
	"github.com/rosebud32/rosebudc/internal/datatype"
)

// noopCallbacks never merges entities and attaches no codegen-private data,
// enough to exercise the chain-building logic in isolation.
type noopCallbacks struct{}

func (noopCallbacks) MergeEntities(*Process, *Result, *Entity, *Entity) *Entity { return nil }
func (noopCallbacks) MakePrivate(*Entity, ast.Node, int, *Scope) any            { return nil }
func (noopCallbacks) NewArrayEntity(*Result, ast.Node) any                      { return nil }
func (noopCallbacks) SetResultBase(*Result, *Entity)                           {}

func intType() datatype.Datatype {
	return datatype.Datatype{Kind: datatype.Int, TypeStr: "int", ElemSize: 4, Flags: datatype.FlagIsSigned}
}

func newTestProcess(structs map[string]*datatype.StructDef) *Process {
	return NewProcess(noopCallbacks{}, structs)
}

func TestFollowSimpleVariable(t *testing.T) {
	p := newTestProcess(nil)
	p.NewEntityForVarNode("x", intType(), nil, nil, -4)

	result := p.Follow(&ast.IdentExpr{Name: "x"})
	require.True(t, result.OK())
	require.Equal(t, 1, result.Count())
	e := result.LastEntity()
	require.Equal(t, EntityTypeVariable, e.Type)
	require.Equal(t, -4, e.OffsetFromBP)
}

func TestFollowUnresolvedIdentifierFails(t *testing.T) {
	p := newTestProcess(nil)
	result := p.Follow(&ast.IdentExpr{Name: "missing"})
	require.True(t, result.Failed())
}

func pointType() datatype.StructDef {
	return datatype.StructDef{
		Name: "point",
		Fields: []datatype.Field{
			{Name: "x", Type: intType(), Offset: 0},
			{Name: "y", Type: intType(), Offset: 4},
		},
		Size: 8,
	}
}

func TestFollowStructDotAccess(t *testing.T) {
	point := pointType()
	p := newTestProcess(map[string]*datatype.StructDef{"point": &point})

	structDt := datatype.Datatype{Kind: datatype.Struct, TypeStr: "point", Struct: &point, ElemSize: 8}
	p.NewEntityForVarNode("p", structDt, nil, nil, -8)

	node := &ast.ExpressionExpr{
		Op:   ".",
		Left: &ast.IdentExpr{Name: "p"},
		Right: &ast.IdentExpr{Name: "y"},
	}
	result := p.Follow(node)
	require.True(t, result.OK())

	last := result.LastEntity()
	require.Equal(t, EntityTypeVariable, last.Type)
	require.Equal(t, "y", last.Name)
	require.Equal(t, 4, last.OffsetFromBP)
	require.Equal(t, datatype.Int, last.Dtype.Kind)
}

func TestFollowStructArrowAccessRequiresIndirection(t *testing.T) {
	point := pointType()
	p := newTestProcess(map[string]*datatype.StructDef{"point": &point})

	ptrDt := datatype.Datatype{Kind: datatype.Struct, TypeStr: "point", Struct: &point, ElemSize: 8, PointerDepth: 1, Flags: datatype.FlagIsPointer}
	p.NewEntityForVarNode("q", ptrDt, nil, nil, -4)

	node := &ast.ExpressionExpr{
		Op:   "->",
		Left: &ast.IdentExpr{Name: "q"},
		Right: &ast.IdentExpr{Name: "x"},
	}
	result := p.Follow(node)
	require.True(t, result.OK())
	require.Equal(t, 2, result.Count())

	last := result.LastEntity()
	require.Equal(t, "x", last.Name)
	require.Equal(t, 0, last.OffsetFromBP)
	require.NotZero(t, last.Flags&EntityFlagDoIndirection)
	require.NotZero(t, result.Flags&ResultFlagFinalIndirectionRequiredForValue)
	require.NotZero(t, result.Flags&ResultFlagFirstEntityLoadToEBX)
}

func arrayOfFive() datatype.Datatype {
	return datatype.Datatype{
		Kind: datatype.Int, TypeStr: "int", ElemSize: 4,
		Flags: datatype.FlagIsArray,
		Array: datatype.Array{Brackets: []int{5}, Size: 20},
	}
}

func TestFollowArrayConstantIndex(t *testing.T) {
	p := newTestProcess(nil)
	p.NewEntityForVarNode("arr", arrayOfFive(), nil, nil, -20)

	node := &ast.ExpressionExpr{
		Op:   "[]",
		Left: &ast.IdentExpr{Name: "arr"},
		Right: &ast.ParenExpr{Inner: &ast.NumberExpr{Value: 2}},
	}
	result := p.Follow(node)
	require.True(t, result.OK())

	last := result.LastEntity()
	require.Equal(t, EntityTypeArrayBracket, last.Type)
	require.Equal(t, 8, last.OffsetFromBP)
	require.Equal(t, EntityFlagJustUseOffset|EntityFlagNoMergeWithLeft, last.Flags)
	require.NotZero(t, result.Flags&ResultFlagFirstEntityLoadToEBX)
}

func TestFollowFunctionCallComputesArgStackSize(t *testing.T) {
	p := newTestProcess(nil)
	fn := &ast.FuncDecl{Name: "add", ReturnType: intType()}
	p.RegisterFunction(fn, nil)

	args := &ast.ExpressionExpr{
		Op:   ",",
		Left: &ast.NumberExpr{Value: 1},
		Right: &ast.NumberExpr{Value: 2},
	}
	node := &ast.ExpressionExpr{
		Op:    "()",
		Left:  &ast.IdentExpr{Name: "add"},
		Right: &ast.ParenExpr{Inner: args},
	}
	result := p.Follow(node)
	require.True(t, result.OK())

	last := result.LastEntity()
	require.Equal(t, EntityTypeFunctionCall, last.Type)
	require.Len(t, last.FunctionCall.Args, 2)
	require.Equal(t, datatype.Word*2, last.FunctionCall.StackSize)
}

func TestFollowCastMarksOperandAsCasted(t *testing.T) {
	p := newTestProcess(nil)
	p.NewEntityForVarNode("x", intType(), nil, nil, -4)

	node := &ast.CastExpr{
		Type:  datatype.Datatype{Kind: datatype.Char, TypeStr: "char", ElemSize: 1},
		Inner: &ast.IdentExpr{Name: "x"},
	}
	result := p.Follow(node)
	require.True(t, result.OK())
	require.Equal(t, 2, result.Count())

	operand := result.Root()
	require.NotZero(t, operand.Flags&EntityFlagWasCasted)

	castEntity := result.LastEntity()
	require.Equal(t, EntityTypeCast, castEntity.Type)
	require.Equal(t, datatype.Char, castEntity.Dtype.Kind)
}

func TestFollowUnaryAddressIncreasesPointerDepth(t *testing.T) {
	p := newTestProcess(nil)
	p.NewEntityForVarNode("x", intType(), nil, nil, -4)

	node := &ast.UnaryExpr{Op: "&", Operand: &ast.IdentExpr{Name: "x"}}
	result := p.Follow(node)
	require.True(t, result.OK())

	last := result.LastEntity()
	require.Equal(t, EntityTypeUnaryGetAddress, last.Type)
	require.True(t, last.Dtype.IsPointer())
	require.Equal(t, 1, last.Dtype.PointerDepth)
	require.NotZero(t, result.Flags&ResultFlagDoesGetAddress)
}

func TestFollowUnaryIndirectionReducesPointerDepth(t *testing.T) {
	p := newTestProcess(nil)
	ptrDt := intType()
	ptrDt.PointerDepth = 1
	ptrDt.Flags |= datatype.FlagIsPointer
	p.NewEntityForVarNode("p", ptrDt, nil, nil, -4)

	node := &ast.UnaryExpr{Op: "*", Operand: &ast.IdentExpr{Name: "p"}, Depth: 1}
	result := p.Follow(node)
	require.True(t, result.OK())

	last := result.LastEntity()
	require.Equal(t, EntityTypeUnaryIndirection, last.Type)
	require.False(t, last.Dtype.IsPointer())
	require.Equal(t, 0, last.Dtype.PointerDepth)
}

func TestMergeCompileTimesStopsAtFixedPoint(t *testing.T) {
	p := newTestProcess(nil)
	p.NewEntityForVarNode("arr", arrayOfFive(), nil, nil, -20)

	// two chained constant-index subscripts: arr[1][2]. With noopCallbacks
	// nothing merges, so the chain should settle at 3 entities (the
	// variable plus one bracket entity per subscript) without looping.
	inner := &ast.ExpressionExpr{Op: "[]", Left: &ast.IdentExpr{Name: "arr"}, Right: &ast.ParenExpr{Inner: &ast.NumberExpr{Value: 1}}}
	outer := &ast.ExpressionExpr{Op: "[]", Left: inner, Right: &ast.ParenExpr{Inner: &ast.NumberExpr{Value: 2}}}

	result := p.Follow(outer)
	require.True(t, result.OK())
	require.Equal(t, 3, result.Count())
}
