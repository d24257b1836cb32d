package codegen

import (
	"fmt"

	"github.com/rosebud32/rosebudc/internal/ast"
	"github.com/rosebud32/rosebudc/internal/datatype"
	"github.com/rosebud32/rosebudc/internal/resolver"
)

// Generator implements resolver.Callbacks. None of the four hooks need to
// attach addressing data of their own: every address-rendering decision
// this package makes reads directly off the fields internal/resolver
// already computes on each Entity (Scope, OffsetFromBP, Flags, Dtype), so
// MakePrivate/NewArrayEntity return nil and SetResultBase is a no-op.

// MergeEntities folds a constant array-bracket step into its predecessor,
// the only merge this generator performs: a `var[3]` chain with a literal
// index resolves to one direct-offset entity instead of two address steps,
// matching spec scenario 4 ("array of pointers" collapses to a single
// final offset).
func (g *Generator) MergeEntities(p *resolver.Process, result *resolver.Result, left, right *resolver.Entity) *resolver.Entity {
	if right.Type != resolver.EntityTypeArrayBracket || right.Flags&resolver.EntityFlagJustUseOffset == 0 {
		return nil
	}

	merged := *left
	merged.Prev, merged.Next = nil, nil
	merged.OffsetFromBP = left.OffsetFromBP + right.OffsetFromBP
	merged.Dtype = right.Dtype
	return &merged
}

// MakePrivate attaches codegen-specific data to a freshly built entity;
// this generator needs none.
func (g *Generator) MakePrivate(entity *resolver.Entity, node ast.Node, offset int, scope *resolver.Scope) any {
	return nil
}

// NewArrayEntity attaches codegen-specific data to an array-bracket step
// before its offset/flags are computed; this generator needs none.
func (g *Generator) NewArrayEntity(result *resolver.Result, node ast.Node) any {
	return nil
}

// SetResultBase would record the chain's root entity for e.g. a seeded
// base-register computation; every base this generator needs is derived
// lazily from the entity itself when emitting, so there is nothing to
// record up front.
func (g *Generator) SetResultBase(result *resolver.Result, first *resolver.Entity) {}

// ebpOperand renders a stack-relative address per the fixed convention
// (spec.md §6, Open Question 4): `[ebp]` at offset zero, `[ebp+N]`/
// `[ebp-N]` otherwise.
func ebpOperand(offset int) string {
	switch {
	case offset == 0:
		return "[ebp]"
	case offset > 0:
		return fmt.Sprintf("[ebp+%d]", offset)
	default:
		return fmt.Sprintf("[ebp%d]", offset)
	}
}

// globalOperand renders a data-section address: `name` at offset zero,
// `name+N`/`name-N` otherwise.
func globalOperand(name string, offset int) string {
	switch {
	case offset == 0:
		return name
	case offset > 0:
		return fmt.Sprintf("%s+%d", name, offset)
	default:
		return fmt.Sprintf("%s%d", name, offset)
	}
}

// baseOperand renders e's own address, ignoring any chain it may be part
// of, as a NASM memory operand: a stack slot if e lives in a stack-flagged
// scope, else its bracketed data-section address (e.g. `[name+4]`).
func (g *Generator) baseOperand(e *resolver.Entity) string {
	if e.Flags&resolver.EntityFlagIsStack != 0 {
		return ebpOperand(e.OffsetFromBP)
	}
	return "[" + globalOperand(e.Name, e.OffsetFromBP) + "]"
}

// sizeKeyword returns the NASM size keyword for an access of n bytes.
func sizeKeyword(n int) string {
	switch n {
	case 1:
		return "byte"
	case 2:
		return "word"
	case 8:
		return "qword"
	default:
		return "dword"
	}
}

// subRegister returns the sub-register alias of eax/ebx/ecx/edx sized to n
// bytes, per spec.md §4.7's "sub-reg(eax, size)".
func subRegister(reg string, n int) string {
	lo := map[string]string{"eax": "al", "ebx": "bl", "ecx": "cl", "edx": "dl"}
	wd := map[string]string{"eax": "ax", "ebx": "bx", "ecx": "cx", "edx": "dx"}
	switch n {
	case 1:
		return lo[reg]
	case 2:
		return wd[reg]
	default:
		return reg
	}
}

// emitEntityAccess renders a finalized resolver result as a sequence of
// address computations, per spec.md §4.7's three-step algorithm, leaving
// the final address on top of the stack in ebx.
func (g *Generator) emitEntityAccess(result *resolver.Result) error {
	first := result.Root()
	if first == nil {
		return nil
	}

	if err := g.emitEntityStart(result, first); err != nil {
		return err
	}

	for e := first.Next; e != nil; e = e.Next {
		if err := g.emitEntitySuccessor(e); err != nil {
			return err
		}
	}
	return nil
}

func (g *Generator) emitEntityStart(result *resolver.Result, first *resolver.Entity) error {
	switch {
	case first.Type == resolver.EntityTypeUnsupported:
		expr, ok := first.Node.(ast.Expr)
		if !ok {
			return fmt.Errorf("%w: unsupported leading node in address chain", ErrUnsupportedEntity)
		}
		return g.emitExpr(expr, History{})
	case first.Type == resolver.EntityTypeFunctionCall:
		return g.emitCallEntity(first)
	case result.Flags&resolver.ResultFlagFirstEntityPushValue != 0:
		g.pushOperand(g.baseOperand(first))
		return nil
	case result.Flags&resolver.ResultFlagFirstEntityLoadToEBX != 0:
		next := first.Next
		if next != nil && next.Type == resolver.EntityTypeFunctionCall && nativeFuncs[first.Name] {
			// A native function's "address" is never actually taken: its
			// call entity inspects first.Name directly instead of ebx.
			return nil
		}
		if next != nil && next.Flags&resolver.EntityFlagIsPointerArrayEntity != 0 {
			g.emitLine("mov ebx, %s", g.baseOperand(first))
		} else {
			g.emitLine("lea ebx, %s", g.baseOperand(first))
		}
		g.pushReg("ebx")
		return nil
	default:
		return fmt.Errorf("%w: no addressing mode for leading entity", ErrUnsupportedEntity)
	}
}

func (g *Generator) emitEntitySuccessor(e *resolver.Entity) error {
	switch e.Type {
	case resolver.EntityTypeRule:
		// Rule entities are consumed by executeRules before a result is
		// handed to codegen; none should survive to here.
		return nil
	case resolver.EntityTypeUnaryGetAddress, resolver.EntityTypeCast:
		// Neither changes the address already computed by the chain so far:
		// get-address just stops one level of dereferencing, a cast just
		// reinterprets the type of the same address.
		return nil
	case resolver.EntityTypeUnaryIndirection:
		g.popReg("ebx")
		g.emitLine("mov ebx, [ebx]")
		g.pushReg("ebx")
		return nil
	case resolver.EntityTypeFunctionCall:
		if !isNativeCall(e) {
			g.popReg("ebx") // the call target resolved so far, called through by emitCallEntity
		}
		return g.emitCallEntity(e)
	case resolver.EntityTypeArrayBracket:
		return g.emitArrayBracketSuccessor(e)
	default:
		g.popReg("ebx")
		if e.Flags&resolver.EntityFlagDoIndirection != 0 {
			g.emitLine("mov ebx, [ebx]")
		}
		if e.OffsetFromBP != 0 {
			g.emitLine("add ebx, %d", e.OffsetFromBP)
		}
		g.pushReg("ebx")
		return nil
	}
}

// emitArrayBracketSuccessor handles one `[index]` step that the merge pass
// left in place: a constant index folds to a static offset exactly like
// the generic successor case, a runtime-computed index is routed to its
// r-value equivalent (the index subexpression) plus a scaling multiply,
// per spec.md §4.7's "route to r-value equivalents plus an address-taking
// adjustment".
func (g *Generator) emitArrayBracketSuccessor(e *resolver.Entity) error {
	if e.Flags&resolver.EntityFlagJustUseOffset != 0 {
		g.popReg("ebx")
		if e.Flags&resolver.EntityFlagDoIndirection != 0 {
			g.emitLine("mov ebx, [ebx]")
		}
		if e.OffsetFromBP != 0 {
			g.emitLine("add ebx, %d", e.OffsetFromBP)
		}
		g.pushReg("ebx")
		return nil
	}

	elemSize := datatype.ArraySizeFromIndex(e.Array.Dtype.ElemSize, e.Array.Dtype.Array.Brackets, e.Array.Index+1)
	if err := g.emitExpr(e.Array.IndexNode, History{}); err != nil {
		return err
	}
	g.popReg("eax")
	if elemSize > 1 {
		g.emitLine("imul eax, %d", elemSize)
	}
	g.popReg("ebx")
	if e.Flags&resolver.EntityFlagIsPointerArrayEntity != 0 {
		g.emitLine("mov ebx, [ebx]")
	}
	g.emitLine("add ebx, eax")
	g.pushReg("ebx")
	return nil
}

// entityElementSize is the byte width emitEntityAccess's final dereference
// (when ResultFlagFinalIndirectionRequiredForValue is set) should use to
// load the chain's value, taking the struct/union-pointer-depth-one
// special case from spec.md §4.1 into account.
func entityElementSize(d *datatype.Datatype) int {
	return d.SizeForArrayAccess()
}
