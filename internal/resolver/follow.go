package resolver

import (
	"github.com/rosebud32/rosebudc/internal/ast"
	"github.com/rosebud32/rosebudc/internal/datatype"
)

// Follow resolves node into a completed Result: an address/value chain plus
// the flags internal/codegen needs to emit it (spec.md §4.5/§4.6).
func (p *Process) Follow(node ast.Node) *Result {
	result := newResult()
	p.followPart(node, result)
	if result.Root() == nil {
		result.Flags |= ResultFlagFailed
	}

	p.executeRules(result)
	p.mergeCompileTimes(result)
	p.finalizeResult(result)
	return result
}

func (p *Process) followPart(node ast.Node, result *Result) *Entity {
	var entity *Entity
	switch n := node.(type) {
	case *ast.IdentExpr:
		entity = p.followIdentifier(n, result)
	case *ast.VarDecl:
		entity = p.followForName(n.Name, result)
	case *ast.ExpressionExpr:
		entity = p.followExpression(n, result)
	case *ast.ParenExpr:
		entity = p.followPart(n.Inner, result)
	case *ast.CastExpr:
		entity = p.followCast(n, result)
	case *ast.UnaryExpr:
		entity = p.followUnary(n, result)
	default:
		entity = p.followUnsupportedNode(node, result)
	}
	return entity
}

// followForName is the common tail of resolving any bare name (an
// identifier reference or a variable node used directly): look it up,
// clone it onto the chain, and remember it if it's the expression's
// leading identifier or a struct/union value subsequent member accesses
// will key off of.
func (p *Process) followForName(name string, result *Result) *Entity {
	found := p.GetEntity(result, name)
	if found == nil {
		return nil
	}
	entity := found.clone()
	result.Push(entity)

	if result.Identifier == nil {
		result.Identifier = entity
	}

	isStructValue := (entity.Type == EntityTypeVariable || entity.Type == EntityTypeFunction) &&
		entity.Dtype.IsStructOrUnion()
	if isStructValue {
		result.LastStructUnionEntity = entity
	}
	return entity
}

func (p *Process) followIdentifier(node *ast.IdentExpr, result *Result) *Entity {
	return p.followForName(node.Name, result)
}

func (p *Process) followExpression(node *ast.ExpressionExpr, result *Result) *Entity {
	switch {
	case ast.IsAccessNode(node):
		return p.followStructExpression(node, result)
	case ast.IsArrayNode(node):
		return p.followArrayExpression(node, result)
	case ast.IsParenthesesNode(node):
		return p.followFunctionCall(node, result)
	}
	return nil
}

// followStructExpression walks '.'/'->' access chains. The right-hand
// identifier isn't resolved by name lookup at all: it's picked up by the
// next followForName call reading back result.LastStructUnionEntity, set
// here from the left operand just followed.
func (p *Process) followStructExpression(node *ast.ExpressionExpr, result *Result) *Entity {
	p.followPart(node.Left, result)
	leftEntity := result.Peek()

	rule := &Entity{}
	if ast.IsAccessNodeWithOp(node, "->") {
		rule.Rule.Left.Flags |= EntityFlagNoMergeWithNext
		if leftEntity.Type != EntityTypeFunctionCall {
			rule.Rule.Right.Flags |= EntityFlagDoIndirection
		}
	}
	p.newEntityForRule(result, rule)
	p.followPart(node.Right, result)
	return nil
}

// followArrayExpression handles `left[index]`. Unlike the original (which
// has a separate bracket AST node type to recurse into), this grammar
// always wraps the subscript in a ParenExpr on the expression node's right
// side (internal/exprengine's array-subscript handling reuses the same
// grouping wrapper it uses for calls), so the bracket step is built
// directly here instead of through a second followPart dispatch.
func (p *Process) followArrayExpression(node *ast.ExpressionExpr, result *Result) *Entity {
	p.followPart(node.Left, result)
	leftEntity := result.Peek()

	indexNode := node.Right
	if paren, ok := node.Right.(*ast.ParenExpr); ok {
		indexNode = paren.Inner
	}
	p.followArrayBracket(node, indexNode, result)
	return leftEntity
}

func (p *Process) followArrayBracket(node ast.Node, indexNode ast.Expr, result *Result) *Entity {
	lastEntity := result.PeekIgnoreRule()
	scope := lastEntity.Scope
	dtype := lastEntity.Dtype
	index := 0
	if lastEntity.Type == EntityTypeArrayBracket {
		index = lastEntity.Array.Index + 1
	}

	if dtype.IsArray() {
		dtype.Array.Size = datatype.ArraySizeFromIndex(dtype.ElemSize, dtype.Array.Brackets, index+1)
	}

	private := p.Callbacks.NewArrayEntity(result, node)
	entity := newEntityForArrayBracket(node, indexNode, index, &dtype, private, scope)
	setArrayBracketFlags(entity, &dtype, indexNode, index)
	lastEntity.Flags |= EntityFlagUsesArrayBrackets
	if entity.Flags&EntityFlagIsPointerArrayEntity != 0 {
		entity.Dtype.DecrementPointer()
	}

	result.Push(entity)
	return entity
}

func setArrayBracketFlags(entity *Entity, dtype *datatype.Datatype, indexNode ast.Expr, index int) {
	switch {
	case !dtype.IsArray() || dtype.ArrayBracketsCount() <= index:
		entity.Flags = EntityFlagNoMergeWithNext | EntityFlagNoMergeWithLeft | EntityFlagIsPointerArrayEntity
	default:
		if _, isConst := indexNode.(*ast.NumberExpr); !isConst {
			entity.Flags = EntityFlagNoMergeWithLeft | EntityFlagNoMergeWithNext
		} else {
			entity.Flags = EntityFlagJustUseOffset
		}
	}
}

// followFunctionCall handles `callee(args...)`; spec.md §4.5 requires each
// argument's pushed stack size (word-aligned, never below one word) so
// codegen can balance the call's stack cleanup.
func (p *Process) followFunctionCall(node *ast.ExpressionExpr, result *Result) *Entity {
	p.followPart(node.Left, result)
	leftEntity := result.Peek()

	callEntity := newEntityForFunctionCall(leftEntity, nil)
	callEntity.Flags |= EntityFlagNoMergeWithNext | EntityFlagNoMergeWithLeft
	p.buildFunctionCallArgs(node.Right, callEntity)

	result.Push(callEntity)
	return callEntity
}

func (p *Process) buildFunctionCallArgs(argNode ast.Expr, callEntity *Entity) {
	if argNode == nil {
		return
	}
	if e, ok := argNode.(*ast.ExpressionExpr); ok && e.Op == "," {
		p.buildFunctionCallArgs(e.Left, callEntity)
		p.buildFunctionCallArgs(e.Right, callEntity)
		return
	}
	if paren, ok := argNode.(*ast.ParenExpr); ok {
		p.buildFunctionCallArgs(paren.Inner, callEntity)
		return
	}

	callEntity.FunctionCall.Args = append(callEntity.FunctionCall.Args, argNode)
	stackChange := datatype.Word
	if dt := p.datatypeOf(argNode); dt != nil {
		size := dt.ElementSize()
		if size < datatype.Word {
			size = datatype.Word
		}
		stackChange = alignValue(size, datatype.Word)
	}
	callEntity.FunctionCall.StackSize += stackChange
}

func alignValue(size, align int) int {
	if size%align == 0 {
		return size
	}
	return size + (align - size%align)
}

// datatypeOf resolves node just far enough to read off its final datatype,
// e.g. to size a function call argument.
func (p *Process) datatypeOf(node ast.Node) *datatype.Datatype {
	result := p.Follow(node)
	if !result.OK() || result.LastEntity() == nil {
		return nil
	}
	return &result.LastEntity().Dtype
}

func (p *Process) followCast(node *ast.CastExpr, result *Result) *Entity {
	p.followUnsupportedNode(node.Inner, result)
	operand := result.Peek()
	operand.Flags |= EntityFlagWasCasted

	castEntity := newCastEntity(operand.Scope, &node.Type)
	if node.Type.IsStructOrUnion() {
		if castEntity.Scope == nil {
			castEntity.Scope = p.ScopeCurrent()
		}
		result.LastStructUnionEntity = castEntity
	}

	result.Push(castEntity)
	return castEntity
}

// followUnsupportedNode is the catch-all for expression shapes the address
// resolver doesn't model directly (arithmetic, literals, ternaries): a
// plain placeholder entity that tells codegen "compute this at runtime",
// recursing into a unary operand first so e.g. `*(p + 1)`'s inner `p + 1`
// still contributes an entity for the indirection step above it to chain
// from.
func (p *Process) followUnsupportedNode(node ast.Node, result *Result) *Entity {
	if u, ok := node.(*ast.UnaryExpr); ok {
		p.followPart(u.Operand, result)
	}
	entity := newEntityForUnsupportedNode(node)
	result.Push(entity)
	return entity
}

func (p *Process) followIndirection(node *ast.UnaryExpr, result *Result) *Entity {
	p.followPart(node.Operand, result)
	lastEntity := result.Peek()
	if lastEntity == nil {
		lastEntity = p.followUnsupportedNode(node.Operand, result)
	}
	entity := newUnaryIndirectionEntity(node, node.Depth)
	result.Push(entity)
	return entity
}

func (p *Process) followUnaryAddress(node *ast.UnaryExpr, result *Result) *Entity {
	result.Flags |= ResultFlagDoesGetAddress
	p.followPart(node.Operand, result)
	lastEntity := result.Peek()
	entity := newUnaryGetAddressEntity(&lastEntity.Dtype, node, lastEntity.Scope, lastEntity.OffsetFromBP)
	result.Push(entity)
	return entity
}

func (p *Process) followUnary(node *ast.UnaryExpr, result *Result) *Entity {
	switch {
	case ast.OpIsIndirection(node.Op):
		return p.followIndirection(node, result)
	case ast.OpIsAddress(node.Op):
		return p.followUnaryAddress(node, result)
	}
	return nil
}
