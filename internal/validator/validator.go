// Package validator implements the semantic validation pass (spec.md §7's
// ValidationError: duplicate symbol, returning a value from a void
// function, variable redefined in scope, unresolved identifier) that runs
// over the parser's AST before internal/resolver computes addresses.
//
// Grounded on original_source/validator.c, which is a thin tree walk
// keyed off a single symbol table (symresolver) and a scope-push/pop pair
// per function; its per-check bodies (validate_function_arg,
// validate_body's statement loop) are stubs in the original, so the actual
// check logic here is built out to match spec.md §7's table rather than
// ported line-for-line. Scope nesting is generalized one level further than
// the original (which only scopes per-function, not per-block): every
// compound statement gets its own internal/symtab frame, matching the block
// scope internal/resolver's own scope stack already assumes (spec.md §4.5).
package validator

import (
	"errors"
	"fmt"

	"github.com/rosebud32/rosebudc/internal/ast"
	"github.com/rosebud32/rosebudc/internal/datatype"
	"github.com/rosebud32/rosebudc/internal/symtab"
	"github.com/rosebud32/rosebudc/internal/token"
)

type validator struct {
	fset *token.FileSet
	errs token.ErrorList

	syms *symtab.Table
	fn   *ast.FuncDecl // currently-walked function, nil at top level
}

// Check validates decls (as produced by internal/parser.ParseFile) and
// returns a non-nil token.ErrorList if any check failed. Struct/union tags
// are not run through the same duplicate-symbol table as functions and
// variables: C keeps tags in a separate namespace, so a struct named `node`
// and a variable named `node` are not a conflict.
func Check(fset *token.FileSet, decls []ast.Stmt) error {
	v := &validator{fset: fset, syms: symtab.New()}
	v.syms.PushTable()
	defer v.syms.PopTable()

	for _, d := range decls {
		v.registerTopLevel(d)
	}
	for _, d := range decls {
		if fn, ok := d.(*ast.FuncDecl); ok && fn.Body != nil {
			v.walkFunction(fn)
		}
	}

	if len(v.errs) > 0 {
		return v.errs
	}
	return nil
}

func (v *validator) error(pos token.Pos, format string, args ...any) {
	v.errs.Add(v.fset.Position(pos), fmt.Sprintf(format, args...))
}

// registerTopLevel records one top-level declaration's name, reporting a
// duplicate-symbol error per spec.md §7. A function may be declared
// (prototyped) any number of times before or instead of being defined;
// only two definitions, or a definition colliding with an unrelated kind of
// symbol, are an error.
func (v *validator) registerTopLevel(d ast.Stmt) {
	switch n := d.(type) {
	case *ast.FuncDecl:
		v.registerFunction(n)
	case *ast.VarDecl:
		v.registerGlobalVar(n)
	case *ast.VarListDecl:
		for _, vd := range n.Vars {
			v.registerGlobalVar(vd)
		}
	}
}

func (v *validator) registerFunction(fn *ast.FuncDecl) {
	existing, ok := v.syms.Lookup(fn.Name)
	if !ok {
		start, _ := fn.Span()
		v.mustRegister(&symtab.Symbol{Kind: symtab.NodeSymbol, Name: fn.Name, Node: fn}, start)
		return
	}
	prev, ok := existing.Node.(*ast.FuncDecl)
	if ok && prev.Body != nil && fn.Body != nil {
		start, _ := fn.Span()
		v.error(start, "symbol %q already defined", fn.Name)
	}
	// A second prototype, or the definition following an earlier prototype,
	// is not an error; the table keeps whichever node it saw first, which is
	// enough for the duplicate-definition check above.
}

func (v *validator) registerGlobalVar(vd *ast.VarDecl) {
	start, _ := vd.Span()
	v.mustRegister(&symtab.Symbol{Kind: symtab.NodeSymbol, Name: vd.Name, Node: vd}, start)
}

func (v *validator) mustRegister(sym *symtab.Symbol, pos token.Pos) {
	if err := v.syms.Register(sym); err != nil && errors.Is(err, symtab.ErrDuplicateSymbol) {
		v.error(pos, "symbol %q already defined", sym.Name)
	}
}

func (v *validator) walkFunction(fn *ast.FuncDecl) {
	prevFn := v.fn
	v.fn = fn
	defer func() { v.fn = prevFn }()

	v.syms.PushTable()
	defer v.syms.PopTable()

	for _, arg := range fn.Args {
		if arg.Name == "" {
			continue
		}
		v.registerLocal(arg.Name, fn.Start)
	}
	v.walkBlock(fn.Body)
}

// registerLocal records a block-scoped name, reporting "variable redefined
// in scope" (spec.md §7) rather than the top-level "already defined"
// wording, since the two are distinguished there.
func (v *validator) registerLocal(name string, pos token.Pos) {
	sym := &symtab.Symbol{Kind: symtab.NodeSymbol, Name: name}
	if err := v.syms.Register(sym); err != nil && errors.Is(err, symtab.ErrDuplicateSymbol) {
		v.error(pos, "variable %q redefined in this scope", name)
	}
}

func (v *validator) walkBlock(b *ast.BlockStmt) {
	v.syms.PushTable()
	defer v.syms.PopTable()
	for _, s := range b.Stmts {
		v.walkStmt(s)
	}
}

func (v *validator) walkStmt(s ast.Stmt) {
	switch n := s.(type) {
	case *ast.VarDecl:
		start, _ := n.Span()
		v.registerLocal(n.Name, start)
		if n.Init != nil {
			v.walkExpr(n.Init)
		}
	case *ast.VarListDecl:
		for _, vd := range n.Vars {
			start, _ := vd.Span()
			v.registerLocal(vd.Name, start)
			if vd.Init != nil {
				v.walkExpr(vd.Init)
			}
		}
	case *ast.BlockStmt:
		v.walkBlock(n)
	case *ast.ExprStmt:
		if n.X != nil {
			v.walkExpr(n.X)
		}
	case *ast.ReturnStmt:
		v.walkReturn(n)
	case *ast.IfStmt:
		v.walkExpr(n.Cond)
		v.walkStmt(n.Then)
		if n.Else != nil {
			v.walkStmt(n.Else)
		}
	case *ast.ForStmt:
		v.syms.PushTable()
		if n.Init != nil {
			v.walkStmt(n.Init)
		}
		if n.Cond != nil {
			v.walkExpr(n.Cond)
		}
		if n.Post != nil {
			v.walkExpr(n.Post)
		}
		v.walkStmt(n.Body)
		v.syms.PopTable()
	case *ast.WhileStmt:
		v.walkExpr(n.Cond)
		v.walkStmt(n.Body)
	case *ast.DoWhileStmt:
		v.walkStmt(n.Body)
		v.walkExpr(n.Cond)
	case *ast.SwitchStmt:
		v.walkExpr(n.Tag)
		v.walkBlock(n.Body)
	case *ast.CaseStmt:
		v.walkExpr(n.Value)
	}
}

// walkReturn checks the void-function-returns-a-value rule (spec.md §7).
// The converse (a non-void function falling off the end, or an empty
// `return;`) is a code-generation/runtime concern the original compiler
// never diagnosed either, so it isn't flagged here.
func (v *validator) walkReturn(n *ast.ReturnStmt) {
	if n.X != nil {
		v.walkExpr(n.X)
	}
	if v.fn == nil {
		return
	}
	if v.fn.ReturnType.Kind == datatype.Void && n.X != nil {
		start, _ := n.Span()
		v.error(start, "function %q returns void but a value is returned", v.fn.Name)
	}
}

// walkExpr checks every identifier leaf against the current scope stack,
// reporting "unresolved identifier" (spec.md §7). Struct/union member names
// on the right of '.'/'->' are skipped: they live in the field namespace of
// the access chain's left-hand datatype, resolved later by
// internal/resolver, not in the ordinary identifier scope this pass tracks.
func (v *validator) walkExpr(e ast.Expr) {
	switch n := e.(type) {
	case nil:
	case *ast.IdentExpr:
		if _, ok := v.syms.LookupAny(n.Name); !ok {
			v.error(n.Start, "unresolved identifier %q", n.Name)
		}
	case *ast.ExpressionExpr:
		v.walkExpr(n.Left)
		if n.Op == "." || n.Op == "->" {
			return
		}
		v.walkExpr(n.Right)
	case *ast.UnaryExpr:
		v.walkExpr(n.Operand)
	case *ast.ParenExpr:
		v.walkExpr(n.Inner)
	case *ast.CastExpr:
		v.walkExpr(n.Inner)
	case *ast.TernaryExpr:
		v.walkExpr(n.True)
		v.walkExpr(n.False)
	}
}
