// Package token defines the lexical token kinds shared by the scanner,
// preprocessor and parser, along with source position tracking built on top
// of the standard library's go/token and go/scanner packages.
//
// A single FileSet/File pair is reused across the whole compile_process
// (scanner, preprocessor and parser all report positions into it), exactly
// the way go/parser and go/scanner share a *token.FileSet in the standard
// toolchain.
package token

import (
	"go/scanner"
	gotoken "go/token"
)

// Position, Pos and FileSet are the standard library's position-tracking
// types. The teacher (mna/nenuphar) reimplements an equivalent File/FileSet
// pair because its language has scanning quirks (surrogate pairs, long
// bracket strings) that need custom handling; our C-subset scanner has no
// such requirements; go/token's FileSet already gives line/column lookups
// for byte offsets and is what go/scanner.ErrorList expects, so there is
// nothing to gain from reimplementing it.
type (
	Pos      = gotoken.Pos
	Position = gotoken.Position
	File     = gotoken.File
	FileSet  = gotoken.FileSet
)

// NewFileSet creates a new, empty FileSet.
func NewFileSet() *FileSet { return gotoken.NewFileSet() }

// Error and ErrorList mirror the teacher's choice of building diagnostics on
// top of go/scanner's sortable error list instead of a bespoke type.
type (
	Error     = scanner.Error
	ErrorList = scanner.ErrorList
)

// PrintError prints a scanner error (or error list) to w.
var PrintError = scanner.PrintError

// Kind identifies the lexical category of a token.
type Kind uint8

const (
	ILLEGAL Kind = iota
	EOF

	IDENT  // foo
	NUMBER // 123, 0x1F, 'a'
	STRING // "foo"

	// Punctuation and operators, in no particular order; see exprengine for
	// the precedence table that groups these for expression parsing.
	LPAREN    // (
	RPAREN    // )
	LBRACE    // {
	RBRACE    // }
	LBRACKET  // [
	RBRACKET  // ]
	SEMI      // ;
	COLON     // :
	COMMA     // ,
	DOT       // .
	ARROW     // ->
	PLUS      // +
	MINUS     // -
	STAR      // *
	SLASH     // /
	PERCENT   // %
	AMP       // &
	PIPE      // |
	CARET     // ^
	TILDE     // ~
	BANG      // !
	LT        // <
	GT        // >
	LE        // <=
	GE        // >=
	EQ        // ==
	NE        // !=
	SHL       // <<
	SHR       // >>
	ANDAND    // &&
	OROR      // ||
	ASSIGN    // =
	PLUS_EQ   // +=
	MINUS_EQ  // -=
	STAR_EQ   // *=
	SLASH_EQ  // /=
	PERCENT_EQ
	SHL_EQ
	SHR_EQ
	AMP_EQ
	CARET_EQ
	PIPE_EQ
	INC // ++
	DEC // --
	QUESTION
	HASH     // #
	HASHHASH // ##
	ELLIPSIS // ...

	// Keywords
	KW_VOID
	KW_CHAR
	KW_SHORT
	KW_INT
	KW_LONG
	KW_STRUCT
	KW_UNION
	KW_TYPEDEF
	KW_SIGNED
	KW_UNSIGNED
	KW_CONST
	KW_STATIC
	KW_EXTERN
	KW_RETURN
	KW_IF
	KW_ELSE
	KW_FOR
	KW_WHILE
	KW_DO
	KW_SWITCH
	KW_CASE
	KW_DEFAULT
	KW_BREAK
	KW_CONTINUE
	KW_GOTO
	KW_SIZEOF

	maxKind
)

var kindNames = [...]string{
	ILLEGAL: "illegal token", EOF: "end of file",
	IDENT: "identifier", NUMBER: "number", STRING: "string",
	LPAREN: "(", RPAREN: ")", LBRACE: "{", RBRACE: "}",
	LBRACKET: "[", RBRACKET: "]", SEMI: ";", COLON: ":", COMMA: ",",
	DOT: ".", ARROW: "->", PLUS: "+", MINUS: "-", STAR: "*", SLASH: "/",
	PERCENT: "%", AMP: "&", PIPE: "|", CARET: "^", TILDE: "~", BANG: "!",
	LT: "<", GT: ">", LE: "<=", GE: ">=", EQ: "==", NE: "!=",
	SHL: "<<", SHR: ">>", ANDAND: "&&", OROR: "||",
	ASSIGN: "=", PLUS_EQ: "+=", MINUS_EQ: "-=", STAR_EQ: "*=", SLASH_EQ: "/=",
	PERCENT_EQ: "%=", SHL_EQ: "<<=", SHR_EQ: ">>=", AMP_EQ: "&=",
	CARET_EQ: "^=", PIPE_EQ: "|=", INC: "++", DEC: "--", QUESTION: "?",
	HASH: "#", HASHHASH: "##", ELLIPSIS: "...",
	KW_VOID: "void", KW_CHAR: "char", KW_SHORT: "short", KW_INT: "int",
	KW_LONG: "long", KW_STRUCT: "struct", KW_UNION: "union",
	KW_TYPEDEF: "typedef", KW_SIGNED: "signed", KW_UNSIGNED: "unsigned",
	KW_CONST: "const", KW_STATIC: "static", KW_EXTERN: "extern",
	KW_RETURN: "return", KW_IF: "if", KW_ELSE: "else", KW_FOR: "for",
	KW_WHILE: "while", KW_DO: "do", KW_SWITCH: "switch", KW_CASE: "case",
	KW_DEFAULT: "default", KW_BREAK: "break", KW_CONTINUE: "continue",
	KW_GOTO: "goto", KW_SIZEOF: "sizeof",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "unknown"
}

var keywords = map[string]Kind{
	"void": KW_VOID, "char": KW_CHAR, "short": KW_SHORT, "int": KW_INT,
	"long": KW_LONG, "struct": KW_STRUCT, "union": KW_UNION,
	"typedef": KW_TYPEDEF, "signed": KW_SIGNED, "unsigned": KW_UNSIGNED,
	"const": KW_CONST, "static": KW_STATIC, "extern": KW_EXTERN,
	"return": KW_RETURN, "if": KW_IF, "else": KW_ELSE, "for": KW_FOR,
	"while": KW_WHILE, "do": KW_DO, "switch": KW_SWITCH, "case": KW_CASE,
	"default": KW_DEFAULT, "break": KW_BREAK, "continue": KW_CONTINUE,
	"goto": KW_GOTO, "sizeof": KW_SIZEOF,
}

// LookupIdent returns the keyword kind for lit, or IDENT if lit is not a
// keyword.
func LookupIdent(lit string) Kind {
	if k, ok := keywords[lit]; ok {
		return k
	}
	return IDENT
}

// IsTypeKeyword reports whether k introduces a primitive type in a
// declaration.
func IsTypeKeyword(k Kind) bool {
	switch k {
	case KW_VOID, KW_CHAR, KW_SHORT, KW_INT, KW_LONG, KW_STRUCT, KW_UNION,
		KW_SIGNED, KW_UNSIGNED, KW_CONST, KW_STATIC, KW_EXTERN:
		return true
	}
	return false
}

// Token is one lexical token together with its literal text and position.
type Token struct {
	Kind Kind
	Lit  string // literal text (identifier name, number text, unescaped string)
	Pos  Pos
}

func (t Token) String() string {
	if t.Lit != "" {
		return t.Lit
	}
	return t.Kind.String()
}
