// Package ast defines the tagged-variant node model produced by the parser
// and consumed by the validator, resolver and code generator (spec.md §3,
// §4.2). It mirrors the structure of the teacher's lang/ast package (a Node
// interface with Span(), one Go type per grammar production) generalized to
// the original rosebud compiler's node kinds from compiler.h's
// NODE_TYPE_* enum and node union.
package ast

import (
	"github.com/rosebud32/rosebudc/internal/datatype"
	"github.com/rosebud32/rosebudc/internal/token"
)

// Node is the interface implemented by every AST node.
type Node interface {
	// Span reports the start and end source positions of the node.
	Span() (start, end token.Pos)
}

// Expr is the interface implemented by expression nodes.
type Expr interface {
	Node
	expr()
}

// Stmt is the interface implemented by statement and declaration nodes.
type Stmt interface {
	Node
	stmt()
}

type base struct {
	Start, End token.Pos
}

func (b base) Span() (token.Pos, token.Pos) { return b.Start, b.End }

type exprBase struct{ base }

func (exprBase) expr() {}

type stmtBase struct{ base }

func (stmtBase) stmt() {}

type (
	// NumberExpr is an integer literal with a width hint taken from its
	// suffix/representation (e.g. 'a', 123, 123L).
	NumberExpr struct {
		exprBase
		Value    int64
		WidthHint int // size in bytes implied by the literal's form; 0 means "default int"
	}

	// StringExpr is a string literal.
	StringExpr struct {
		exprBase
		Value string
	}

	// IdentExpr is a bare identifier reference.
	IdentExpr struct {
		exprBase
		Name string
	}

	// ExpressionExpr is a binary operator node: left OP right. It is also
	// used, per the original compiler, to represent struct access ('.', '->'),
	// array indexing (Op == "[]", Right a ParenExpr wrapping the index) and
	// function calls (Op == "()", Right a ParenExpr wrapping the comma-chain
	// of arguments, or the single argument itself).
	ExpressionExpr struct {
		exprBase
		Left, Right Expr
		Op          string
	}

	// ParenExpr wraps a parenthesized expression: (inner).
	ParenExpr struct {
		exprBase
		Inner Expr
	}

	// UnaryExpr is a prefix unary operator: OP operand. For '*' (indirection)
	// Depth counts the number of leading stars (e.g. **p has Depth 2).
	UnaryExpr struct {
		exprBase
		Op      string
		Operand Expr
		Depth   int // only meaningful when Op == "*"
	}

	// CastExpr is a C-style cast: (Type)Inner.
	CastExpr struct {
		exprBase
		Type  datatype.Datatype
		Inner Expr
	}

	// TernaryExpr is cond ? True : False, encoded by the parser as an
	// ExpressionExpr{Op: "?", Right: *TernaryExpr} per the generic expression
	// engine's tenary construction (spec.md §4.4); True/False are the two
	// branches.
	TernaryExpr struct {
		exprBase
		True, False Expr
	}

)

type (
	// VarDecl declares a single variable, optionally with an initializer.
	VarDecl struct {
		stmtBase
		Type        datatype.Datatype
		Name        string
		AlignedOffset int // computed by internal/layout for function locals
		Padding     int
		Init        Expr // nil if uninitialized
	}

	// VarListDecl groups sibling declarations sharing one base type, e.g.
	// `int a, b, c;`.
	VarListDecl struct {
		stmtBase
		Vars []*VarDecl
	}

	// StructUnionDecl declares a struct or union tag only (`struct s { ... };`).
	// A declaration with an inline variable (e.g. `struct { int x; } p;`)
	// is parsed as a VarDecl/VarListDecl of the struct type instead.
	StructUnionDecl struct {
		stmtBase
		IsUnion   bool
		Name      string // empty if anonymous
		Fields    []*VarDecl
		InlineVar *VarDecl // never set by internal/parser
	}

	// FuncArg is one function parameter.
	FuncArg struct {
		Type          datatype.Datatype
		Name          string
		AlignedOffset int
	}

	// FuncDecl declares or defines a function. Body is nil for a prototype
	// (is_prototype per spec.md §4.2).
	FuncDecl struct {
		stmtBase
		ReturnType datatype.Datatype
		Name       string
		Args       []*FuncArg
		Variadic   bool       // trailing `...` after the fixed parameter list
		Body       *BlockStmt // nil => prototype
		StackSize  int        // computed by internal/layout from the body's locals
	}

	// BlockStmt is a `{ ... }` compound statement.
	BlockStmt struct {
		stmtBase
		Stmts []Stmt
	}

	// ExprStmt wraps a bare expression statement.
	ExprStmt struct {
		stmtBase
		X Expr
	}

	// ReturnStmt is `return expr;` (expr nil for `return;`).
	ReturnStmt struct {
		stmtBase
		X Expr
	}

	// IfStmt is `if (Cond) Then [else Else]`.
	IfStmt struct {
		stmtBase
		Cond       Expr
		Then, Else Stmt // Else is nil, another *IfStmt (else if) or a *BlockStmt
	}

	// ForStmt is a three-part `for (Init; Cond; Post) Body`. Any part may be
	// nil.
	ForStmt struct {
		stmtBase
		Init       Stmt
		Cond, Post Expr
		Body       Stmt
	}

	// WhileStmt is `while (Cond) Body`.
	WhileStmt struct {
		stmtBase
		Cond Expr
		Body Stmt
	}

	// DoWhileStmt is `do Body while (Cond);`.
	DoWhileStmt struct {
		stmtBase
		Body Stmt
		Cond Expr
	}

	// SwitchStmt is `switch (Tag) Body`, Body containing CaseStmt/DefaultStmt
	// children mixed with ordinary statements.
	SwitchStmt struct {
		stmtBase
		Tag  Expr
		Body *BlockStmt
	}

	// CaseStmt is `case Value:` inside a switch body.
	CaseStmt struct {
		stmtBase
		Value Expr
	}

	// DefaultStmt is `default:` inside a switch body.
	DefaultStmt struct {
		stmtBase
	}

	// BreakStmt is `break;`.
	BreakStmt struct{ stmtBase }

	// ContinueStmt is `continue;`.
	ContinueStmt struct{ stmtBase }

	// GotoStmt is `goto Label;`.
	GotoStmt struct {
		stmtBase
		Label string
	}

	// LabelStmt is `Label:`.
	LabelStmt struct {
		stmtBase
		Name string
	}
)
