// Package parser implements the declaration/expression parser (C9): it
// consumes the preprocessed token stream internal/cpp produces and builds
// the internal/ast node tree, using internal/exprengine for expression
// parsing exactly as spec.md §4.4 describes the engine being shared between
// the source parser and the preprocessor's #if evaluator.
//
// Structurally this follows the teacher's lang/parser package: a private
// parser struct holding a token cursor plus an error list, panic/recover for
// bailing out of a malformed top-level declaration, and one file per
// grammar layer (types, declarations, statements, expressions).
package parser

import (
	"fmt"

	"github.com/rosebud32/rosebudc/internal/ast"
	"github.com/rosebud32/rosebudc/internal/datatype"
	"github.com/rosebud32/rosebudc/internal/token"
)

// parser holds the mutable state of one parse. A fresh parser is created per
// translation unit; typedefs are local to that unit, matching the single
// translation-unit design of the preprocessor (internal/cpp.Preprocessor).
type parser struct {
	fset *token.FileSet
	toks []token.Token
	pos  int

	errs token.ErrorList

	// typedefs maps a typedef'd name to the datatype it stands for, so the
	// declaration parser can recognize `Foo x;` as a declaration rather than
	// an expression statement. Populated as `typedef` declarations are seen.
	typedefs map[string]datatype.Datatype

	// structs/unions maps a tag name to its already-parsed definition, so a
	// later `struct point p;` can resolve field layout without re-parsing the
	// body. Populated as struct/union declarations are seen.
	structs map[string]*datatype.StructDef
	unions  map[string]*datatype.StructDef
}

// errPanicMode is recovered at the top-level declaration loop: spec.md's
// Non-goals explicitly exclude "diagnostic recovery after the first fatal
// error", so recovery here only prevents one malformed declaration from
// wedging the parser into an infinite loop, not from attempting further
// meaningful parsing.
var errPanicMode = "parser: panic mode"

// ParseFile parses one translation unit's worth of (already preprocessed)
// tokens into a list of top-level declarations (functions, global
// variables, struct/union/typedef declarations).
func ParseFile(fset *token.FileSet, toks []token.Token) ([]ast.Stmt, error) {
	decls, _, err := ParseFileWithStructs(fset, toks)
	return decls, err
}

// ParseFileWithStructs is ParseFile plus the tag->definition map the parser
// built up while parsing struct/union bodies (internal/codegen needs this
// to resolve `.`/`->` field-access chains; spec.md §4.5's struct offset
// table is exactly this map).
func ParseFileWithStructs(fset *token.FileSet, toks []token.Token) ([]ast.Stmt, map[string]*datatype.StructDef, error) {
	p := &parser{
		fset:     fset,
		toks:     toks,
		typedefs: map[string]datatype.Datatype{},
		structs:  map[string]*datatype.StructDef{},
		unions:   map[string]*datatype.StructDef{},
	}
	decls := p.parseFile()

	structs := make(map[string]*datatype.StructDef, len(p.structs)+len(p.unions))
	for name, def := range p.structs {
		structs[name] = def
	}
	for name, def := range p.unions {
		structs[name] = def
	}

	if len(p.errs) > 0 {
		return decls, structs, p.errs
	}
	return decls, structs, nil
}

func (p *parser) parseFile() []ast.Stmt {
	var out []ast.Stmt
	for p.peek().Kind != token.EOF {
		startPos := p.pos
		d := p.parseTopLevelDecl()
		if d != nil {
			out = append(out, d)
		}
		if p.pos == startPos {
			// Safety valve: parseTopLevelDecl must always consume at least one
			// token; if it didn't (a construct we don't recognize), force
			// progress so a single bad token can't hang the loop.
			p.next()
		}
	}
	return out
}

// parseTopLevelDecl recovers from a panic raised by expect/error so that one
// malformed declaration does not abort the whole file.
func (p *parser) parseTopLevelDecl() (decl ast.Stmt) {
	defer func() {
		if r := recover(); r != nil {
			if r != errPanicMode {
				panic(r)
			}
			p.skipToSemiOrBrace()
		}
	}()
	return p.parseExternalDecl()
}

// skipToSemiOrBrace consumes tokens up to and including the next top-level
// ';' or matching '}', used only to resynchronize after a panic so the
// parseFile loop can keep making progress.
func (p *parser) skipToSemiOrBrace() {
	depth := 0
	for {
		tok := p.peek()
		if tok.Kind == token.EOF {
			return
		}
		p.next()
		switch tok.Kind {
		case token.LBRACE:
			depth++
		case token.RBRACE:
			depth--
			if depth <= 0 {
				return
			}
		case token.SEMI:
			if depth == 0 {
				return
			}
		}
	}
}

func (p *parser) peek() token.Token {
	if p.pos >= len(p.toks) {
		return token.Token{Kind: token.EOF}
	}
	return p.toks[p.pos]
}

func (p *parser) peekAt(n int) token.Token {
	if p.pos+n >= len(p.toks) {
		return token.Token{Kind: token.EOF}
	}
	return p.toks[p.pos+n]
}

func (p *parser) next() token.Token {
	tok := p.peek()
	if p.pos < len(p.toks) {
		p.pos++
	}
	return tok
}

func (p *parser) at(k token.Kind) bool { return p.peek().Kind == k }

func (p *parser) accept(k token.Kind) (token.Token, bool) {
	if p.at(k) {
		return p.next(), true
	}
	return token.Token{}, false
}

// expect consumes the current token if it has kind k, else records an error
// and panics into errPanicMode (recovered at parseTopLevelDecl, and at
// statement boundaries inside a function body; see stmt.go).
func (p *parser) expect(k token.Kind) token.Token {
	if !p.at(k) {
		p.errorf(p.peek(), "expected %s, found %s", k, p.describe(p.peek()))
		panic(errPanicMode)
	}
	return p.next()
}

func (p *parser) describe(tok token.Token) string {
	if tok.Lit != "" {
		return tok.Lit
	}
	return tok.Kind.String()
}

func (p *parser) error(tok token.Token, msg string) {
	p.errs.Add(p.fset.Position(tok.Pos), msg)
}

func (p *parser) errorf(tok token.Token, format string, args ...any) {
	p.error(tok, fmt.Sprintf(format, args...))
}
