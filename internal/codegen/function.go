package codegen

import (
	"fmt"

	"github.com/rosebud32/rosebudc/internal/ast"
	"github.com/rosebud32/rosebudc/internal/fixup"
	"github.com/rosebud32/rosebudc/internal/resolver"
	"github.com/rosebud32/rosebudc/internal/stackframe"
)

// emitFunction emits one function's prologue, body and epilogue, per
// spec.md §4.7. A prototype (no body) only declares the symbol as external.
func (g *Generator) emitFunction(fn *ast.FuncDecl) error {
	if ast.FunctionNodeIsPrototype(fn) {
		g.emitLine("extern %s", fn.Name)
		return nil
	}

	g.returnLabel = g.newLabel("fn_exit")
	defer func() { g.returnLabel = "" }()

	g.emitLine("global %s", fn.Name)
	g.emitLabel(fn.Name)
	g.pushReg("ebp")
	g.emitLine("mov ebp, esp")

	aligned := stackframe.Align(fn.StackSize, 16)
	if aligned > 0 {
		g.emitLine("sub esp, %d", aligned)
		g.frame.Sub(elemLocalsBlock, fn.Name, aligned)
	}

	g.proc.NewScope(nil, resolver.ScopeFlagIsStack)
	for _, arg := range fn.Args {
		g.proc.NewEntityForVarNode(arg.Name, arg.Type, nil, nil, arg.AlignedOffset)
	}

	sys := fixup.NewSystem()
	labels := map[string]bool{}
	bodyErr := g.emitStmt(fn.Body, sys, labels)

	g.proc.FinishScope()

	if bodyErr != nil {
		sys.Free()
		return bodyErr
	}
	resolved := sys.Resolve()
	sys.Free()
	if !resolved {
		return fmt.Errorf("%w: in function %s", ErrUndefinedLabel, fn.Name)
	}

	g.emitLabel(g.returnLabel)
	if aligned > 0 {
		g.emitLine("add esp, %d", aligned)
		g.frame.Add(elemLocalsBlock, fn.Name, aligned)
	}
	g.popReg("ebp")
	if !g.frame.Empty() {
		panic(fmt.Sprintf("codegen: stack frame not empty at end of function %s", fn.Name))
	}
	g.emitLine("ret")
	return nil
}
