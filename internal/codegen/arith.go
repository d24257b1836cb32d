package codegen

import (
	"fmt"

	"github.com/rosebud32/rosebudc/internal/ast"
	"github.com/rosebud32/rosebudc/internal/datatype"
)

// comparisonSetcc maps a comparison operator to the x86 SETcc mnemonic,
// per spec.md §4.7's "comparisons → cmp eax, ecx; setCC al; movzx eax, al".
var comparisonSetcc = map[string]string{
	"==": "sete",
	"!=": "setne",
	"<":  "setl",
	"<=": "setle",
	">":  "setg",
	">=": "setge",
}

func isComparisonOp(op string) bool {
	_, ok := comparisonSetcc[op]
	return ok
}

// emitBinary lowers a non-logical binary ExpressionExpr: both operands are
// evaluated (each pushes one value), then the operator is applied to
// `eax op ecx`, per spec.md §4.7's arithmetic/comparison rule.
func (g *Generator) emitBinary(n *ast.ExpressionExpr, h History) error {
	leftType := g.datatypeOfExpr(n.Left)
	rightType := g.datatypeOfExpr(n.Right)

	down := h.down()
	if err := g.emitExpr(n.Left, down); err != nil {
		return err
	}
	if err := g.emitExpr(n.Right, down); err != nil {
		return err
	}

	g.popReg("ecx") // right
	g.popReg("eax") // left

	g.scalePointerOperand(n.Op, leftType, rightType)

	leftSigned := leftType == nil || leftType.IsSigned()
	if err := g.applyBinaryOp(n.Op, leftSigned); err != nil {
		return err
	}

	g.pushReg("eax")
	return nil
}

// applyBinaryOp computes `eax op ecx` into eax, per spec.md §4.7's
// arithmetic/comparison lowering rule. Shared by emitBinary (both operands
// freshly evaluated) and emitAssignment's compound-assignment path (eax
// holds the current value, ecx the right-hand side).
func (g *Generator) applyBinaryOp(op string, leftSigned bool) error {
	switch {
	case isComparisonOp(op):
		g.emitLine("cmp eax, ecx")
		g.emitLine("%s al", comparisonSetcc[op])
		g.emitLine("movzx eax, al")
	case op == "*":
		if leftSigned {
			g.emitLine("imul eax, ecx")
		} else {
			g.emitLine("mul ecx")
		}
	case op == "/" || op == "%":
		g.emitLine("cdq")
		if leftSigned {
			g.emitLine("idiv ecx")
		} else {
			g.emitLine("div ecx")
		}
		if op == "%" {
			g.emitLine("mov eax, edx")
		}
	case op == "<<" || op == ">>":
		mnemonic := "sal"
		if op == ">>" {
			mnemonic = "sar"
		}
		g.emitLine("%s eax, %s", mnemonic, subRegister("ecx", 1))
	default:
		mnemonic, ok := arithmeticMnemonic[op]
		if !ok {
			return fmt.Errorf("%w: unsupported binary operator %q", ErrUnsupportedEntity, op)
		}
		g.emitLine("%s eax, ecx", mnemonic)
	}
	return nil
}

var arithmeticMnemonic = map[string]string{
	"+": "add",
	"-": "sub",
	"&": "and",
	"|": "or",
	"^": "xor",
}

// scalePointerOperand implements spec.md §4.7's pointer-arithmetic scaling:
// when exactly one operand of a `+`/`-` is a pointer and its pointed-to
// element is wider than a byte, the non-pointer operand (already popped
// into eax or ecx) is multiplied by the element size first.
func (g *Generator) scalePointerOperand(op string, left, right *datatype.Datatype) {
	if op != "+" && op != "-" {
		return
	}
	plain := datatype.ForNumeric()
	if left == nil {
		left = &plain
	}
	if right == nil {
		right = &plain
	}
	ptr := datatype.ThatsAPointer(left, right)
	if ptr == nil {
		return
	}
	elemSize := ptr.PointerReduce(1).Size()
	if elemSize <= 1 {
		return
	}
	if left.IsPointer() {
		g.emitLine("imul ecx, %d", elemSize)
	} else {
		g.emitLine("imul eax, %d", elemSize)
	}
}

// datatypeOfExpr resolves node just far enough to read its datatype, used
// to decide signedness and pointer scaling before the operand's value has
// actually been computed. Returns nil when node isn't an addressable
// chain (e.g. a nested arithmetic expression), in which case the caller
// falls back to treating the operand as a plain signed int.
func (g *Generator) datatypeOfExpr(node ast.Expr) *datatype.Datatype {
	switch node.(type) {
	case *ast.NumberExpr:
		dt := datatype.ForNumeric()
		return &dt
	}
	result := g.proc.Follow(node)
	if !result.OK() || result.LastEntity() == nil {
		return nil
	}
	return &result.LastEntity().Dtype
}

// emitLogical lowers `&&`/`||` with short-circuit evaluation, per
// spec.md §4.7: allocate a fresh (end, end-positive) label pair, evaluate
// the left operand, compare and conditionally jump to the terminator,
// then do the same for the right operand, then the terminator block
// produces a clean 0/1 value.
//
// spec.md §4.7 additionally says a right operand that is itself a logical
// node should reuse the enclosing pair of labels instead of emitting its
// own terminator. Left-associative parsing (internal/exprengine always
// parses `a && b && c` as `(a && b) && c`) puts same-operator nesting on
// the *left* child, not the right, so that reuse rarely if ever applies in
// practice; every logical node here always allocates its own labels and
// always produces an independent 0/1 value, which composes correctly for
// arbitrarily nested `&&`/`||` at the cost of a few redundant compares
// instead of the described label-sharing micro-optimization.
func (g *Generator) emitLogical(n *ast.ExpressionExpr, h History) error {
	end := g.newLabel("endc")
	endPositive := g.newLabel("endc_positive")

	down := h.down().with(flagIsInLogicalExpr)

	if err := g.emitExpr(n.Left, down); err != nil {
		return err
	}
	g.popReg("eax")
	g.emitLine("cmp eax, 0")
	if n.Op == "&&" {
		g.emitLine("je %s", end)
	} else {
		g.emitLine("jg %s", endPositive)
	}

	if err := g.emitExpr(n.Right, down); err != nil {
		return err
	}
	g.popReg("eax")
	g.emitLine("cmp eax, 0")
	if n.Op == "&&" {
		g.emitLine("je %s", end)
	} else {
		g.emitLine("jg %s", endPositive)
	}

	if n.Op == "&&" {
		g.emitLine("mov eax, 1")
		g.emitLine("jmp %s", endPositive)
		g.emitLabel(end)
		g.emitLine("xor eax, eax")
		g.emitLabel(endPositive)
	} else {
		g.emitLine("jmp %s", end)
		g.emitLabel(endPositive)
		g.emitLine("mov eax, 1")
		g.emitLabel(end)
	}
	g.pushReg("eax")
	return nil
}

// emitUnary lowers prefix unary operators. Indirection and address-of
// always go through the resolver (they are address-chain operations);
// the arithmetic unary operators (-, +, !, ~) and pre-inc/dec evaluate
// their operand and apply directly.
func (g *Generator) emitUnary(n *ast.UnaryExpr, h History) error {
	if ast.OpIsIndirection(n.Op) || ast.OpIsAddress(n.Op) {
		return g.emitRValue(n, h)
	}

	switch n.Op {
	case "-":
		if err := g.emitExpr(n.Operand, h.down()); err != nil {
			return err
		}
		g.popReg("eax")
		g.emitLine("neg eax")
		g.pushReg("eax")
		return nil
	case "~":
		if err := g.emitExpr(n.Operand, h.down()); err != nil {
			return err
		}
		g.popReg("eax")
		g.emitLine("not eax")
		g.pushReg("eax")
		return nil
	case "!":
		if err := g.emitExpr(n.Operand, h.down()); err != nil {
			return err
		}
		g.popReg("eax")
		g.emitLine("cmp eax, 0")
		g.emitLine("sete al")
		g.emitLine("movzx eax, al")
		g.pushReg("eax")
		return nil
	case "+":
		return g.emitExpr(n.Operand, h.down())
	case "++", "--":
		return g.emitPreIncDec(n, h)
	default:
		return fmt.Errorf("%w: unsupported unary operator %q", ErrUnsupportedEntity, n.Op)
	}
}

// emitPreIncDec lowers `++x`/`--x`: resolve x's address, load, adjust,
// store back, push the new value.
func (g *Generator) emitPreIncDec(n *ast.UnaryExpr, h History) error {
	result := g.proc.Follow(n.Operand)
	if !result.OK() {
		return fmt.Errorf("%w: could not resolve operand of %q", ErrUnsupportedEntity, n.Op)
	}
	last := result.LastEntity()
	size := entityElementSize(&last.Dtype)
	signed := last.Dtype.IsSigned()

	mnemonic := "add"
	if n.Op == "--" {
		mnemonic = "sub"
	}

	if result.Count() == 1 {
		operand := g.baseOperand(last)
		g.emitLine("%s %s %s, 1", mnemonic, sizeKeyword(size), operand)
		g.emitDirectLoad(operand, size, signed)
		return nil
	}

	if err := g.emitEntityAccess(result); err != nil {
		return err
	}
	g.popReg("ebx")
	kw := sizeKeyword(size)
	g.emitLine("%s %s [ebx], 1", mnemonic, kw)
	g.emitDirectLoad("[ebx]", size, signed)
	return nil
}

func (g *Generator) emitCast(n *ast.CastExpr, h History) error {
	return g.emitExpr(n.Inner, h.down())
}
