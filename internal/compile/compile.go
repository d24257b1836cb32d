// Package compile wires the scanner, preprocessor, parser, validator,
// layout and codegen phases into the single compile_process spec.md §6
// describes, plus the file I/O and NASM invocation around it. Grounded on
// the teacher's internal/maincmd command handlers (tokenize.go/parse.go):
// each phase runs in sequence, an error from any one of them stops the
// pipeline immediately (spec.md §7's fatal-on-first-error policy), and the
// caller gets back a wrapped sentinel identifying which phase failed.
package compile

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rosebud32/rosebudc/internal/ast"
	"github.com/rosebud32/rosebudc/internal/codegen"
	"github.com/rosebud32/rosebudc/internal/cpp"
	"github.com/rosebud32/rosebudc/internal/layout"
	"github.com/rosebud32/rosebudc/internal/parser"
	"github.com/rosebud32/rosebudc/internal/scanner"
	"github.com/rosebud32/rosebudc/internal/strtab"
	"github.com/rosebud32/rosebudc/internal/symtab"
	"github.com/rosebud32/rosebudc/internal/token"
	"github.com/rosebud32/rosebudc/internal/validator"
)

// Mode selects the CLI's output shape, per spec.md §6.
type Mode int

const (
	// ModeExec emits a runnable assembly file that NASM assembles with no
	// extra flags.
	ModeExec Mode = iota
	// ModeObject additionally passes `-o <OUTPUT>.o` so NASM produces a
	// linkable object file.
	ModeObject
)

// ParseMode turns a CLI --mode value ("exec"/"object") into a Mode,
// defaulting to ModeExec per spec.md §6.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "", "exec":
		return ModeExec, nil
	case "object":
		return ModeObject, nil
	default:
		return ModeExec, fmt.Errorf("%w: unknown mode %q (want exec or object)", ErrIO, s)
	}
}

// Options configures one Run invocation.
type Options struct {
	Input  string // source file path
	Output string // assembly file path to write
	Mode   Mode

	IncludeDirs []string // overrides DefaultIncludePath when non-nil; tests use this

	SkipNASM bool      // --S: stop after emitting assembly, never shell out to nasm
	Tokens   io.Writer // non-nil: also dump the token stream here; compilation continues
	AST      io.Writer // non-nil: also dump the parsed AST (and, after codegen, the string table) here; compilation continues
}

// Result carries what a successful Run produced, for callers (tests, the
// CLI's --S flag) that want the assembly text without re-reading it off
// disk.
type Result struct {
	Asm string
}

// Run executes the full compile_process for opts.Input, writing NASM
// source to opts.Output and, unless opts.SkipNASM, invoking NASM over it.
// The first phase to fail stops the pipeline; its error is wrapped in the
// matching sentinel from errors.go.
func Run(ctx context.Context, opts Options, stderr io.Writer) (Result, error) {
	src, err := os.ReadFile(opts.Input)
	if err != nil {
		return Result{}, fmt.Errorf("%w: reading %s: %s", ErrIO, opts.Input, err)
	}

	fset := token.NewFileSet()

	toks, err := scanner.ScanFile(fset, opts.Input, string(src))
	if err != nil {
		return Result{}, fmt.Errorf("%w: %s", ErrLex, err)
	}
	if opts.Tokens != nil {
		writeTokens(opts.Tokens, fset, toks)
	}

	resolver := newPathResolver(opts.IncludeDirs)
	pp := cpp.New(fset, resolver)
	toks, err = pp.Process(opts.Input, toks)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %s", ErrPreprocess, err)
	}

	decls, structs, err := parser.ParseFileWithStructs(fset, toks)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %s", ErrParse, err)
	}
	if opts.AST != nil {
		writeSymbolNames(opts.AST, decls)
		writeAST(opts.AST, decls)
	}

	if err := validator.Check(fset, decls); err != nil {
		return Result{}, fmt.Errorf("%w: %s", ErrValidation, err)
	}

	for _, d := range decls {
		if fn, ok := d.(*ast.FuncDecl); ok {
			layout.Compute(fn)
		}
	}

	strs := strtab.New()
	gen := codegen.New(fset, structs, strs)
	asm, err := gen.Generate(decls)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %s", ErrCodegen, err)
	}
	if opts.AST != nil {
		for _, e := range strs.SortedEntries() {
			fmt.Fprintf(opts.AST, "%s: %q\n", e.Label, e.Content)
		}
	}

	if err := os.WriteFile(opts.Output, []byte(asm), 0o644); err != nil {
		return Result{}, fmt.Errorf("%w: writing %s: %s", ErrIO, opts.Output, err)
	}

	if !opts.SkipNASM {
		code, err := RunNASM(ctx, opts.Output, opts.Mode, stderr)
		if err != nil {
			return Result{Asm: asm}, err
		}
		if code != 0 {
			return Result{Asm: asm}, fmt.Errorf("%w: nasm exited with status %d", ErrIO, code)
		}
	}

	return Result{Asm: asm}, nil
}

func writeTokens(w io.Writer, fset *token.FileSet, toks []token.Token) {
	for _, t := range toks {
		pos := fset.Position(t.Pos)
		fmt.Fprintf(w, "%s: %s", pos, t.Kind)
		if t.Lit != "" {
			fmt.Fprintf(w, " %s", t.Lit)
		}
		fmt.Fprintln(w)
	}
}

// writeSymbolNames prints every top-level declaration's name, sorted, ahead
// of the raw AST dump: internal/symtab.Table.Names() is the same sorted-dump
// facility the validator's duplicate-symbol check builds its table with.
func writeSymbolNames(w io.Writer, decls []ast.Stmt) {
	syms := symtab.New()
	syms.PushTable()
	for _, d := range decls {
		switch n := d.(type) {
		case *ast.FuncDecl:
			_ = syms.Register(&symtab.Symbol{Kind: symtab.NodeSymbol, Name: n.Name, Node: n})
		case *ast.VarDecl:
			_ = syms.Register(&symtab.Symbol{Kind: symtab.NodeSymbol, Name: n.Name, Node: n})
		case *ast.VarListDecl:
			for _, vd := range n.Vars {
				_ = syms.Register(&symtab.Symbol{Kind: symtab.NodeSymbol, Name: vd.Name, Node: vd})
			}
		}
	}
	fmt.Fprintf(w, "symbols: %v\n", syms.Names())
}

func writeAST(w io.Writer, decls []ast.Stmt) {
	for _, d := range decls {
		fmt.Fprintf(w, "%#v\n", d)
	}
}
