package codegen

import (
	"fmt"
	"strings"

	"github.com/rosebud32/rosebudc/internal/ast"
)

// bareAssignOp strips a compound assignment's trailing `=`, e.g. "+=" ->
// "+", so applyBinaryOp's plain-operator table can be reused.
func bareAssignOp(op string) string {
	return strings.TrimSuffix(op, "=")
}

// emitAssignment lowers `lhs op= rhs`, per spec.md §4.7's assignment rule:
// the right-hand side is evaluated first, then the left-hand side is
// resolved to an address (a single entity resolves directly to its own
// operand, a longer chain goes through entity-access) and the stored value
// is written back with the destination's own element size.
func (g *Generator) emitAssignment(n *ast.ExpressionExpr, h History) error {
	result := g.proc.Follow(n.Left)
	if !result.OK() {
		return fmt.Errorf("%w: could not resolve assignment target", ErrUnsupportedEntity)
	}
	last := result.LastEntity()
	size := entityElementSize(&last.Dtype)
	signed := last.Dtype.IsSigned()

	if err := g.emitExpr(n.Right, h.down()); err != nil {
		return err
	}

	var operand string
	if result.Count() == 1 {
		operand = g.baseOperand(last)
		g.popReg("ecx")
	} else {
		if err := g.emitEntityAccess(result); err != nil {
			return err
		}
		g.popReg("ebx") // destination address
		g.popReg("ecx") // right-hand value
		operand = "[ebx]"
	}

	if n.Op == "=" {
		g.emitLine("mov %s %s, %s", sizeKeyword(size), operand, subRegister("ecx", size))
		g.pushReg("ecx")
		return nil
	}

	g.loadIntoReg("eax", operand, size, signed)
	if err := g.applyBinaryOp(bareAssignOp(n.Op), signed); err != nil {
		return err
	}
	g.emitLine("mov %s %s, %s", sizeKeyword(size), operand, subRegister("eax", size))
	g.pushReg("eax")
	return nil
}
