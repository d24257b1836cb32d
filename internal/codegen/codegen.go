// Package codegen lowers a validated, parser-produced AST into NASM
// assembly text (spec.md §4.7, C7). It drives internal/resolver to turn
// every lvalue/rvalue expression into an address chain, internal/stackframe
// to keep the simulated stack balanced, internal/fixup to check that every
// `goto` inside a function targets a label actually declared somewhere in
// its body, and internal/strtab to intern string literals for `.rodata`.
//
// There is no original_source/codegen.c to port: the kept excerpt is an
// unimplemented skeleton (`#warning "The resolver is not implemented"`,
// empty section-emission loops), so this package is built directly against
// spec.md §4.7's prose rather than against a reference C implementation.
package codegen

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rosebud32/rosebudc/internal/ast"
	"github.com/rosebud32/rosebudc/internal/datatype"
	"github.com/rosebud32/rosebudc/internal/fixup"
	"github.com/rosebud32/rosebudc/internal/resolver"
	"github.com/rosebud32/rosebudc/internal/stackframe"
	"github.com/rosebud32/rosebudc/internal/strtab"
	"github.com/rosebud32/rosebudc/internal/token"
)

// Sentinel errors a caller can match with errors.Is, per spec.md §7's
// CodegenError row ("unsupported datatype, unsupported entity in l-value
// position, internal stack-frame imbalance").
var (
	ErrUnsupportedType   = errors.New("codegen: unsupported datatype")
	ErrUnsupportedEntity = errors.New("codegen: unsupported entity in this position")
	ErrUndefinedLabel    = errors.New("codegen: goto targets a label never declared in this function")
)

// stack element kinds tracked on the simulated frame, local to this
// package per internal/stackframe's design (the tag's meaning is left to
// the consumer).
const (
	elemValue stackframe.ElementType = iota
	elemLocalsBlock
	elemArg
)

// Generator walks a compilation unit's top-level declarations and produces
// its NASM text.
type Generator struct {
	fset    *token.FileSet
	structs map[string]*datatype.StructDef
	strings *strtab.Table

	data strings.Builder
	text strings.Builder

	proc  *resolver.Process
	frame *stackframe.Frame

	labelSeq int

	entryLabels []string // continue targets, one per enclosing loop
	exitLabels  []string // break targets, one per enclosing loop/switch

	returnLabel string // current function's single epilogue label
}

// New returns a generator ready to walk decls produced by
// internal/parser.ParseFile, resolving struct/union member access against
// structs.
func New(fset *token.FileSet, structs map[string]*datatype.StructDef, strs *strtab.Table) *Generator {
	g := &Generator{fset: fset, structs: structs, strings: strs, frame: stackframe.New()}
	g.proc = resolver.NewProcess(g, structs)
	return g
}

// Generate emits `.data`, `.text` and `.rodata` in that order and returns
// the assembled NASM source.
func (g *Generator) Generate(decls []ast.Stmt) (string, error) {
	for _, d := range decls {
		switch n := d.(type) {
		case *ast.VarDecl:
			if err := g.emitGlobalVar(n); err != nil {
				return "", err
			}
		case *ast.VarListDecl:
			for _, vd := range n.Vars {
				if err := g.emitGlobalVar(vd); err != nil {
					return "", err
				}
			}
		case *ast.FuncDecl:
			g.proc.RegisterFunction(n, nil)
		}
	}

	for _, d := range decls {
		fn, ok := d.(*ast.FuncDecl)
		if !ok {
			continue
		}
		if err := g.emitFunction(fn); err != nil {
			return "", err
		}
	}

	var out strings.Builder
	out.WriteString("section .data\n")
	out.WriteString(g.data.String())
	out.WriteString("section .text\n")
	out.WriteString(g.text.String())
	out.WriteString("section .rodata\n")
	for _, entry := range g.strings.Entries() {
		fmt.Fprintf(&out, "%s: %s\n", entry.Label, strtab.EncodeRodata(entry.Content))
	}
	return out.String(), nil
}

func (g *Generator) newLabel(prefix string) string {
	id := g.labelSeq
	g.labelSeq++
	return fmt.Sprintf("%s_%d", prefix, id)
}

func (g *Generator) emitLine(format string, args ...any) {
	fmt.Fprintf(&g.text, format, args...)
	g.text.WriteByte('\n')
}

func (g *Generator) emitLabel(name string) {
	fmt.Fprintf(&g.text, "%s:\n", name)
}

// pushReg/pushOperand/popReg emit a real `push`/`pop` and mirror it on the
// simulated frame in the same step, per spec.md §4.6: "push and pop
// operations on the real stack must be mirrored by push/pop on this
// model." Every value this generator ever pushes is an untyped 32-bit
// word (an expression result or a scratch address), so every mirrored
// element uses the same elemValue tag; PopExpecting still catches an
// underflow (a pop with nothing pushed) as a compiler-bug panic.
func (g *Generator) pushReg(reg string) {
	g.emitLine("push %s", reg)
	g.frame.Push(elemValue, "", 4)
}

func (g *Generator) pushOperand(operand string) {
	g.emitLine("push dword %s", operand)
	g.frame.Push(elemValue, "", 4)
}

func (g *Generator) popReg(reg string) {
	g.emitLine("pop %s", reg)
	g.frame.PopExpecting(elemValue, "")
}

// dropValues mirrors n prior pushReg/pushOperand calls that a single real
// instruction consumed in bulk (a call's `add esp, N` argument cleanup)
// rather than one `pop` per element.
func (g *Generator) dropValues(n int) {
	for i := 0; i < n; i++ {
		g.frame.PopExpecting(elemValue, "")
	}
}
