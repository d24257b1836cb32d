// Package layout assigns the stack-frame geometry spec.md §4.6 takes as
// already given: each function argument's positive `[ebp+N]` offset, each
// local variable's negative `[ebp-N]` offset, and the function's aggregate
// StackSize. ast.FuncDecl/ast.VarDecl carry these fields for internal/codegen
// to read, but nothing upstream of it ever filled them in; this package is
// the missing pass, run once per function between internal/validator and
// internal/codegen, modeled on internal/parser's struct-field layout
// (types.go's running offset counter) rather than ported from any original
// source file.
package layout

import (
	"github.com/rosebud32/rosebudc/internal/ast"
	"github.com/rosebud32/rosebudc/internal/datatype"
)

// Compute assigns FuncArg.AlignedOffset, every local VarDecl's
// AlignedOffset and fn.StackSize for fn. A prototype has no body: only its
// arguments' offsets are assigned and its StackSize stays 0.
func Compute(fn *ast.FuncDecl) {
	// Arguments sit above the saved return address and saved ebp: the
	// saved ebp is at [ebp], the return address at [ebp+4] and the first
	// argument at [ebp+8].
	argOffset := 2 * datatype.Word
	for _, arg := range fn.Args {
		arg.AlignedOffset = argOffset
		argOffset += alignedSize(&arg.Type)
	}

	if fn.Body == nil {
		return
	}

	locals := 0
	walkBlock(fn.Body, &locals)
	fn.StackSize = locals
}

// alignedSize is the frame-allocation contribution of a value of type dt:
// its size rounded up to a whole machine word, matching spec.md §4.5's
// function-call argument aggregation rule ("the maximum of the datatype's
// element size and the word size, then aligned up to a multiple of the
// word size").
func alignedSize(dt *datatype.Datatype) int {
	size := dt.Size()
	if size < datatype.Word {
		size = datatype.Word
	}
	if rem := size % datatype.Word; rem != 0 {
		size += datatype.Word - rem
	}
	return size
}

// walkBlock assigns offsets to every VarDecl directly or transitively
// declared in b, growing *offset downward from ebp. Offsets are never
// reclaimed when a nested block ends, trading a larger (but always
// correct) frame for not having to track which inner scopes overlap in
// time.
func walkBlock(b *ast.BlockStmt, offset *int) {
	for _, stmt := range b.Stmts {
		walkStmt(stmt, offset)
	}
}

func assignLocal(v *ast.VarDecl, offset *int) {
	*offset += alignedSize(&v.Type)
	v.AlignedOffset = -*offset
}

func walkStmt(stmt ast.Stmt, offset *int) {
	switch s := stmt.(type) {
	case *ast.VarDecl:
		assignLocal(s, offset)
	case *ast.VarListDecl:
		for _, v := range s.Vars {
			assignLocal(v, offset)
		}
	case *ast.BlockStmt:
		walkBlock(s, offset)
	case *ast.IfStmt:
		walkStmt(s.Then, offset)
		if s.Else != nil {
			walkStmt(s.Else, offset)
		}
	case *ast.ForStmt:
		if s.Init != nil {
			walkStmt(s.Init, offset)
		}
		walkStmt(s.Body, offset)
	case *ast.WhileStmt:
		walkStmt(s.Body, offset)
	case *ast.DoWhileStmt:
		walkStmt(s.Body, offset)
	case *ast.SwitchStmt:
		walkBlock(s.Body, offset)
	}
}
