package codegen

import (
	"fmt"

	"github.com/rosebud32/rosebudc/internal/ast"
	"github.com/rosebud32/rosebudc/internal/resolver"
)

// exprFlag is the bitset History threads through the recursive-descent
// expression emitter (spec.md §4.7's "history record"). Of the flags
// spec.md names in the abstract (is-assignment, is-root,
// in-function-call-arguments, is-right-operand-of-assignment among them),
// this generator keeps only flagIsInLogicalExpr, which emitLogical sets
// for its operands; no emission logic reads it yet. The rest existed in
// the original to avoid redundant struct copies and similar optimizations
// this subset doesn't attempt.
type exprFlag uint32

const (
	// flagIsInLogicalExpr marks any node nested inside a &&/|| operand,
	// inherited all the way down.
	flagIsInLogicalExpr exprFlag = 1 << iota
)

// History carries the inherited expression flags across one
// recursive-descent walk of an expression tree (spec.md §4.7's "history
// record"). The short-circuit labels it also describes are allocated
// fresh by every logical node instead of threaded through History; see
// emitLogical's doc comment for why.
type History struct {
	flags exprFlag
}

func (h History) with(add exprFlag) History {
	h.flags |= add
	return h
}

func (h History) has(f exprFlag) bool { return h.flags&f != 0 }

// down is the history a recursive call into a child node receives. No
// currently-used flag is uninheritable, so this is the identity for now;
// it exists as the one seam spec.md's history record requires of every
// recursive call, ready for a future flag that does need stripping.
func (h History) down() History {
	return h
}

// emitExpr is the recursive-descent entry point for lowering one
// expression node, per spec.md §4.7. Every path that completes
// successfully leaves exactly one 32-bit value pushed on the (real, x86)
// stack.
func (g *Generator) emitExpr(node ast.Expr, h History) error {
	switch n := node.(type) {
	case *ast.NumberExpr:
		return g.emitNumberLiteral(n)
	case *ast.StringExpr:
		return g.emitStringLiteral(n)
	case *ast.ParenExpr:
		return g.emitExpr(n.Inner, h)
	case *ast.ExpressionExpr:
		return g.emitExpressionNode(n, h)
	case *ast.UnaryExpr:
		return g.emitUnary(n, h)
	case *ast.CastExpr:
		return g.emitCast(n, h)
	case *ast.IdentExpr:
		return g.emitRValue(n, h)
	default:
		return fmt.Errorf("%w: %T in expression position", ErrUnsupportedEntity, node)
	}
}

func (g *Generator) emitNumberLiteral(n *ast.NumberExpr) error {
	g.pushOperand(fmt.Sprintf("%d", n.Value))
	return nil
}

func (g *Generator) emitStringLiteral(n *ast.StringExpr) error {
	label := g.strings.Intern(n.Value)
	g.emitLine("mov eax, %s", label)
	g.pushReg("eax")
	return nil
}

// emitExpressionNode routes a binary ExpressionExpr node to the family of
// emitters matching its operator: struct/array/call access goes through
// the resolver, assignment and arithmetic/logical operators have their own
// lowering rules.
func (g *Generator) emitExpressionNode(n *ast.ExpressionExpr, h History) error {
	switch {
	case ast.IsNodeAssignment(n):
		return g.emitAssignment(n, h)
	case ast.IsLogicalOperator(n.Op):
		return g.emitLogical(n, h)
	case ast.IsAccessNode(n), ast.IsArrayNode(n), ast.IsParenthesesNode(n):
		return g.emitRValue(n, h)
	case n.Op == "?":
		return g.emitTernary(n, h)
	default:
		return g.emitBinary(n, h)
	}
}

// emitRValue resolves node (an identifier, struct/array/call access chain,
// or anything else the resolver can walk) to a value and pushes it,
// per spec.md §4.7's "Identifier / general r-value" rule: a chain that
// terminates in a single entity loads directly at its resolved address, a
// complex chain goes through entity-access emission first.
func (g *Generator) emitRValue(node ast.Node, h History) error {
	result := g.proc.Follow(node)
	if !result.OK() {
		return fmt.Errorf("%w: could not resolve %T", ErrUnsupportedEntity, node)
	}

	last := result.LastEntity()
	size := entityElementSize(&last.Dtype)
	signed := last.Dtype.IsSigned()

	if result.Count() == 1 {
		g.emitDirectLoad(g.baseOperand(last), size, signed)
		return nil
	}

	if err := g.emitEntityAccess(result); err != nil {
		return err
	}
	if result.Flags&resolver.ResultFlagDoesGetAddress != 0 {
		// The chain computed an address (&x), which is the value itself:
		// whatever emitEntityAccess pushed is already the result.
		return nil
	}
	if result.Flags&resolver.ResultFlagFinalIndirectionRequiredForValue != 0 {
		g.popReg("ebx")
		g.emitDirectLoad("[ebx]", size, signed)
	}
	return nil
}

// emitDirectLoad loads the value at operand (already a complete NASM
// memory operand, e.g. "[ebp-4]" or "[ebx]") sign/zero-extending to a
// 32-bit value when size is narrower, and pushes it.
func (g *Generator) emitDirectLoad(operand string, size int, signed bool) {
	switch size {
	case 4, 0:
		g.pushOperand(operand)
	default:
		kw := sizeKeyword(size)
		if signed {
			g.emitLine("movsx eax, %s %s", kw, operand)
		} else {
			g.emitLine("movzx eax, %s %s", kw, operand)
		}
		g.pushReg("eax")
	}
}

// loadIntoReg loads the value at operand into reg (one of eax/ebx/ecx/edx),
// sign/zero-extending a narrower access the same way emitDirectLoad does,
// without touching the simulated stack. Used where a value is needed in a
// register for further computation rather than pushed as an expression
// result (emitAssignment's compound-assignment read-modify-write).
func (g *Generator) loadIntoReg(reg, operand string, size int, signed bool) {
	switch size {
	case 4, 0:
		g.emitLine("mov %s, %s", reg, operand)
	default:
		kw := sizeKeyword(size)
		if signed {
			g.emitLine("movsx %s, %s %s", reg, kw, operand)
		} else {
			g.emitLine("movzx %s, %s %s", reg, kw, operand)
		}
	}
}

func (g *Generator) emitTernary(n *ast.ExpressionExpr, h History) error {
	t, ok := n.Right.(*ast.TernaryExpr)
	if !ok {
		return fmt.Errorf("%w: malformed ternary node", ErrUnsupportedEntity)
	}
	elseLabel := g.newLabel("tern_else")
	endLabel := g.newLabel("tern_end")

	if err := g.emitExpr(n.Left, h.down()); err != nil {
		return err
	}
	g.popReg("eax")
	g.emitLine("cmp eax, 0")
	g.emitLine("je %s", elseLabel)
	if err := g.emitExpr(t.True, h.down()); err != nil {
		return err
	}
	g.emitLine("jmp %s", endLabel)
	// Only one branch runs, so the true branch's pushed value and the false
	// branch's occupy the same single slot on the simulated frame too.
	g.dropValues(1)
	g.emitLabel(elseLabel)
	if err := g.emitExpr(t.False, h.down()); err != nil {
		return err
	}
	g.emitLabel(endLabel)
	return nil
}
