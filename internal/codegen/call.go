package codegen

import (
	"fmt"

	"github.com/rosebud32/rosebudc/internal/datatype"
	"github.com/rosebud32/rosebudc/internal/resolver"
	"github.com/rosebud32/rosebudc/internal/stackframe"
)

// nativeFuncs names the functions that lower to direct stack arithmetic
// instead of a `call`, per SPEC_FULL.md's native function hooks. They are
// recognised by name here; stdarg.h's static include declares them as
// ordinary prototypes.
var nativeFuncs = map[string]bool{
	"va_start":         true,
	"__builtin_va_arg": true,
	"va_end":           true,
}

// isNativeCall reports whether e's preceding entity in the chain names one
// of nativeFuncs, i.e. e is a call to a native function rather than a
// generated one.
func isNativeCall(e *resolver.Entity) bool {
	return e.Prev != nil && nativeFuncs[e.Prev.Name]
}

// emitCallEntity lowers a resolved function-call entity, per spec.md §4.7.
// By the time it's reached through emitEntitySuccessor, ebx already holds
// the callee's address (the generic addressing chain that ran first always
// loads a call's target into ebx, whether from a function name or a
// function-pointer expression), so the call itself is always indirect.
func (g *Generator) emitCallEntity(e *resolver.Entity) error {
	if isNativeCall(e) {
		switch e.Prev.Name {
		case "va_start":
			return g.emitVaStart(e)
		case "__builtin_va_arg":
			return g.emitVaArg(e)
		case "va_end":
			return g.emitVaEnd(e)
		}
	}

	args := e.FunctionCall.Args
	for i := len(args) - 1; i >= 0; i-- {
		if err := g.emitExpr(args[i], History{}); err != nil {
			return err
		}
	}

	g.emitLine("call ebx")
	if e.FunctionCall.StackSize > 0 {
		g.emitLine("add esp, %d", e.FunctionCall.StackSize)
		g.dropValues(len(args))
	}
	g.pushReg("eax")
	return nil
}

// emitVaStart implements `va_start(ap, last)`: ap is pointed one word past
// last, the first stack slot a caller's variadic arguments occupy (cdecl
// pushes arguments right-to-left, so the named parameters sit at the low
// end of the argument block and the varargs immediately follow).
func (g *Generator) emitVaStart(e *resolver.Entity) error {
	args := e.FunctionCall.Args
	if len(args) != 2 {
		return fmt.Errorf("%w: va_start takes 2 arguments", ErrUnsupportedEntity)
	}
	apResult := g.proc.Follow(args[0])
	lastResult := g.proc.Follow(args[1])
	if !apResult.OK() || !lastResult.OK() {
		return fmt.Errorf("%w: could not resolve va_start arguments", ErrUnsupportedEntity)
	}
	apEntity := apResult.LastEntity()
	lastEntity := lastResult.LastEntity()

	step := stackframe.Align(lastEntity.Dtype.Size(), datatype.Word)
	g.emitLine("lea eax, %s", g.baseOperand(lastEntity))
	g.emitLine("add eax, %d", step)
	g.emitLine("mov %s, eax", g.baseOperand(apEntity))

	g.emitLine("xor eax, eax")
	g.pushReg("eax")
	return nil
}

// emitVaArg implements `__builtin_va_arg(ap, type)`: read the word ap
// points at, advance ap by one word. The simulated calling convention only
// ever passes word-or-narrower scalars, so every vararg occupies exactly
// one word regardless of the requested type's width.
func (g *Generator) emitVaArg(e *resolver.Entity) error {
	args := e.FunctionCall.Args
	if len(args) < 1 {
		return fmt.Errorf("%w: __builtin_va_arg takes a va_list argument", ErrUnsupportedEntity)
	}
	apResult := g.proc.Follow(args[0])
	if !apResult.OK() {
		return fmt.Errorf("%w: could not resolve va_arg's va_list", ErrUnsupportedEntity)
	}
	apEntity := apResult.LastEntity()

	g.emitLine("mov ebx, %s", g.baseOperand(apEntity))
	g.emitLine("mov eax, [ebx]")
	g.emitLine("add ebx, %d", datatype.Word)
	g.emitLine("mov %s, ebx", g.baseOperand(apEntity))
	g.pushReg("eax")
	return nil
}

// emitVaEnd implements `va_end(ap)`: this model needs no teardown, but
// every call expression still leaves one value on the stack, so it pushes
// a discarded zero like any other void-returning call would.
func (g *Generator) emitVaEnd(e *resolver.Entity) error {
	g.emitLine("xor eax, eax")
	g.pushReg("eax")
	return nil
}
