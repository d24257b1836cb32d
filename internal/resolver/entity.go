// Package resolver walks an lvalue/address expression (a chain of struct
// access, array indexing, indirection, address-of, casts and function
// calls) and produces an ordered list of "entities" describing how to
// compute its final address and value, the way internal/codegen needs it
// (spec.md §4.5/§4.6, C5). It is a port of original_source/resolver.c's
// entity/result/scope model into Go: the C vector-backed doubly linked
// list of resolver_entity becomes a Prev/Next-linked Entity chain owned by
// a Result, and resolver_process's callback table becomes the Callbacks
// interface internal/codegen implements.
package resolver

import (
	"github.com/rosebud32/rosebudc/internal/ast"
	"github.com/rosebud32/rosebudc/internal/datatype"
)

// EntityType distinguishes the kinds of step an address chain can be built
// from.
type EntityType int

const (
	EntityTypeGeneral EntityType = iota
	EntityTypeVariable
	EntityTypeFunction
	EntityTypeFunctionCall
	EntityTypeArrayBracket
	EntityTypeUnaryIndirection
	EntityTypeUnaryGetAddress
	EntityTypeCast
	EntityTypeRule
	EntityTypeUnsupported
)

// anyEntityType is the "don't filter by type" sentinel used by scope
// lookups, matching the original's entity_type == -1 convention.
const anyEntityType EntityType = -1

// EntityFlag is a bitset of per-entity merge/codegen hints.
type EntityFlag uint16

const (
	EntityFlagNoMergeWithLeft EntityFlag = 1 << iota
	EntityFlagNoMergeWithNext
	EntityFlagIsStack
	EntityFlagDoIndirection
	EntityFlagUsesArrayBrackets
	EntityFlagIsPointerArrayEntity
	EntityFlagJustUseOffset
	EntityFlagWasCasted
)

// RuleSide is one half (left or right neighbor) of a deferred merge rule.
type RuleSide struct {
	Flags EntityFlag
}

// Entity is one link in a resolved address chain.
type Entity struct {
	Type         EntityType
	Name         string
	Dtype        datatype.Datatype
	Node         ast.Node
	Scope        *Scope
	OffsetFromBP int
	Flags        EntityFlag
	Private      any

	Array struct {
		Index     int
		Dtype     datatype.Datatype
		IndexNode ast.Expr
	}
	Indirection struct {
		Depth int
	}
	FunctionCall struct {
		Args      []ast.Expr
		StackSize int
	}
	Rule struct {
		Left, Right RuleSide
	}

	Prev, Next *Entity
}

func newEntity(typ EntityType, private any) *Entity {
	return &Entity{Type: typ, Private: private}
}

func (e *Entity) clone() *Entity {
	if e == nil {
		return nil
	}
	cp := *e
	cp.Prev, cp.Next = nil, nil
	return &cp
}

func newEntityForUnsupportedNode(node ast.Node) *Entity {
	e := newEntity(EntityTypeUnsupported, nil)
	e.Node = node
	e.Flags = EntityFlagNoMergeWithLeft | EntityFlagNoMergeWithNext
	return e
}

// newEntityForArrayBracket builds the entity for one `[index]` step, per
// array_offset in the original: the byte offset is the index node's literal
// value (1 when it is not a literal, the runtime case codegen scales at
// emission time) times the size of one element at dimension position index,
// i.e. the element size times the product of the remaining dimensions.
func newEntityForArrayBracket(node ast.Node, indexNode ast.Expr, index int, dtype *datatype.Datatype, private any, scope *Scope) *Entity {
	e := newEntity(EntityTypeArrayBracket, private)
	e.Scope = scope
	e.Dtype = *dtype
	e.Node = node
	e.Array.Index = index
	e.Array.Dtype = *dtype
	e.Array.IndexNode = indexNode

	indexVal := 1
	if num, ok := indexNode.(*ast.NumberExpr); ok {
		indexVal = int(num.Value)
	}
	e.OffsetFromBP = datatype.ArrayOffset(dtype, index, indexVal)
	return e
}

func newUnknownEntity(dtype *datatype.Datatype, node ast.Node, scope *Scope, offset int) *Entity {
	e := newEntity(EntityTypeGeneral, nil)
	e.Scope = scope
	e.Flags = EntityFlagNoMergeWithNext | EntityFlagNoMergeWithLeft
	e.Dtype = *dtype
	e.Node = node
	e.OffsetFromBP = offset
	return e
}

func newUnaryIndirectionEntity(node ast.Node, depth int) *Entity {
	e := newEntity(EntityTypeUnaryIndirection, nil)
	e.Flags = EntityFlagNoMergeWithNext | EntityFlagNoMergeWithLeft
	e.Node = node
	e.Indirection.Depth = depth
	return e
}

func newUnaryGetAddressEntity(dtype *datatype.Datatype, node ast.Node, scope *Scope, offset int) *Entity {
	e := newEntity(EntityTypeUnaryGetAddress, nil)
	e.Scope = scope
	e.Flags = EntityFlagNoMergeWithNext | EntityFlagNoMergeWithLeft
	e.Node = node
	e.OffsetFromBP = offset
	e.Dtype = *dtype
	e.Dtype.Flags |= datatype.FlagIsPointer
	e.Dtype.PointerDepth++
	return e
}

func newCastEntity(scope *Scope, castDtype *datatype.Datatype) *Entity {
	e := newEntity(EntityTypeCast, nil)
	e.Scope = scope
	e.Flags = EntityFlagNoMergeWithNext | EntityFlagNoMergeWithLeft
	e.Dtype = *castDtype
	return e
}

func newEntityForVarNode(name string, dtype datatype.Datatype, node ast.Node, private any, scope *Scope, offset int) *Entity {
	e := newEntity(EntityTypeVariable, private)
	e.Scope = scope
	e.Name = name
	e.Dtype = dtype
	e.Node = node
	e.OffsetFromBP = offset
	if scope != nil && scope.Flags&ScopeFlagIsStack != 0 {
		e.Flags |= EntityFlagIsStack
	}
	return e
}

func newEntityForFunctionCall(leftOperand *Entity, private any) *Entity {
	e := newEntity(EntityTypeFunctionCall, private)
	e.Dtype = leftOperand.Dtype
	return e
}
