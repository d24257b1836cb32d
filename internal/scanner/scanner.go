// Package scanner turns C source text into a flat token.Token stream.
// It deliberately knows nothing about preprocessor directives beyond
// emitting a HASH token at the start of a line like any other operator;
// internal/cpp groups the resulting tokens back into directive lines using
// the shared *token.FileSet, the same way go/parser leans on go/scanner's
// position information instead of a dedicated line-break token.
//
// Modeled on the teacher's lang/scanner package: a single entry point
// (ScanFile) that drives a private scanner struct over one file and returns
// either a token slice or a token.ErrorList of everything that went wrong,
// rather than bailing out on the first error.
package scanner

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rosebud32/rosebudc/internal/token"
)

type scanner struct {
	file *token.File
	src  string
	errs token.ErrorList

	offset int
	ch     byte
}

func newScanner(file *token.File, src string) *scanner {
	s := &scanner{file: file, src: src}
	if len(src) > 0 {
		s.ch = src[0]
	} else {
		s.ch = 0
	}
	return s
}

// ScanFile lexes src (named name) and returns its tokens. Lexical errors are
// collected, not fatal: scanning continues so the returned token.ErrorList
// can report more than one problem per invocation, matching go/scanner's
// own behavior.
func ScanFile(fset *token.FileSet, name, src string) ([]token.Token, error) {
	file := fset.AddFile(name, -1, len(src))
	s := newScanner(file, src)
	var toks []token.Token
	for {
		tok := s.next()
		toks = append(toks, tok)
		if tok.Kind == token.EOF {
			break
		}
	}
	if len(s.errs) > 0 {
		return toks, s.errs
	}
	return toks, nil
}

func (s *scanner) pos() token.Pos { return s.file.Pos(s.offset) }

func (s *scanner) error(pos token.Pos, msg string) {
	s.errs.Add(s.file.Position(pos), msg)
}

func (s *scanner) advance() {
	s.offset++
	if s.offset < len(s.src) {
		s.ch = s.src[s.offset]
	} else {
		s.ch = 0
	}
}

func (s *scanner) peekAt(n int) byte {
	if s.offset+n < len(s.src) {
		return s.src[s.offset+n]
	}
	return 0
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
func isHexDigit(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}
func isAlpha(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
func isAlnum(c byte) bool { return isAlpha(c) || isDigit(c) }

func (s *scanner) skipWhitespaceAndComments() {
	for {
		switch {
		case s.ch == ' ' || s.ch == '\t' || s.ch == '\r' || s.ch == '\n':
			s.advance()
		case s.ch == '/' && s.peekAt(1) == '/':
			for s.ch != '\n' && s.ch != 0 {
				s.advance()
			}
		case s.ch == '/' && s.peekAt(1) == '*':
			startPos := s.pos()
			s.advance()
			s.advance()
			closed := false
			for s.ch != 0 {
				if s.ch == '*' && s.peekAt(1) == '/' {
					s.advance()
					s.advance()
					closed = true
					break
				}
				s.advance()
			}
			if !closed {
				s.error(startPos, "comment not terminated")
			}
		case s.ch == '\\' && s.peekAt(1) == '\n':
			// line continuation: swallow backslash-newline so a macro or
			// statement can be split across physical lines.
			s.advance()
			s.advance()
		default:
			return
		}
	}
}

func (s *scanner) next() token.Token {
	s.skipWhitespaceAndComments()
	startPos := s.pos()

	if s.ch == 0 {
		return token.Token{Kind: token.EOF, Pos: startPos}
	}

	switch {
	case isAlpha(s.ch):
		return s.scanIdent(startPos)
	case isDigit(s.ch):
		return s.scanNumber(startPos)
	case s.ch == '\'':
		return s.scanChar(startPos)
	case s.ch == '"':
		return s.scanString(startPos)
	default:
		return s.scanOperator(startPos)
	}
}

func (s *scanner) scanIdent(startPos token.Pos) token.Token {
	start := s.offset
	for isAlnum(s.ch) {
		s.advance()
	}
	lit := s.src[start:s.offset]
	return token.Token{Kind: token.LookupIdent(lit), Lit: lit, Pos: startPos}
}

// scanNumber accepts decimal, 0x hex and 0 octal literals, folded into
// NUMBER tokens carrying their literal text (char literals are handled by
// scanChar); the parser takes the width hint only from an l/L suffix.
func (s *scanner) scanNumber(startPos token.Pos) token.Token {
	start := s.offset
	if s.ch == '0' && (s.peekAt(1) == 'x' || s.peekAt(1) == 'X') {
		s.advance()
		s.advance()
		for isHexDigit(s.ch) {
			s.advance()
		}
	} else {
		for isDigit(s.ch) {
			s.advance()
		}
	}
	// integer suffixes: u/U, l/L in any combination
	for s.ch == 'u' || s.ch == 'U' || s.ch == 'l' || s.ch == 'L' {
		s.advance()
	}
	lit := s.src[start:s.offset]
	return token.Token{Kind: token.NUMBER, Lit: lit, Pos: startPos}
}

func (s *scanner) scanChar(startPos token.Pos) token.Token {
	s.advance() // opening '
	var b strings.Builder
	if s.ch == '\\' {
		s.advance()
		b.WriteByte(escapeValue(s.ch))
		s.advance()
	} else if s.ch != 0 {
		b.WriteByte(s.ch)
		s.advance()
	}
	if s.ch != '\'' {
		s.error(startPos, "char literal not terminated")
	} else {
		s.advance()
	}
	return token.Token{Kind: token.NUMBER, Lit: strconv.Itoa(int(firstByte(b.String()))), Pos: startPos}
}

func firstByte(s string) byte {
	if len(s) == 0 {
		return 0
	}
	return s[0]
}

func escapeValue(c byte) byte {
	switch c {
	case 'n':
		return '\n'
	case 't':
		return '\t'
	case 'r':
		return '\r'
	case '0':
		return 0
	case '\\':
		return '\\'
	case '\'':
		return '\''
	case '"':
		return '"'
	default:
		return c
	}
}

func (s *scanner) scanString(startPos token.Pos) token.Token {
	s.advance() // opening "
	var b strings.Builder
	for s.ch != '"' && s.ch != 0 {
		if s.ch == '\\' {
			s.advance()
			b.WriteByte(escapeValue(s.ch))
			s.advance()
			continue
		}
		b.WriteByte(s.ch)
		s.advance()
	}
	if s.ch != '"' {
		s.error(startPos, "string literal not terminated")
	} else {
		s.advance()
	}
	return token.Token{Kind: token.STRING, Lit: b.String(), Pos: startPos}
}

// threeCharOps and twoCharOps are checked longest-first so e.g. "<<=" is not
// mis-split into "<<" followed by "=".
var threeCharOps = map[string]token.Kind{
	"<<=": token.SHL_EQ, ">>=": token.SHR_EQ, "...": token.ELLIPSIS,
}

var twoCharOps = map[string]token.Kind{
	"->": token.ARROW, "++": token.INC, "--": token.DEC,
	"<<": token.SHL, ">>": token.SHR, "&&": token.ANDAND, "||": token.OROR,
	"<=": token.LE, ">=": token.GE, "==": token.EQ, "!=": token.NE,
	"+=": token.PLUS_EQ, "-=": token.MINUS_EQ, "*=": token.STAR_EQ,
	"/=": token.SLASH_EQ, "%=": token.PERCENT_EQ, "&=": token.AMP_EQ,
	"^=": token.CARET_EQ, "|=": token.PIPE_EQ, "##": token.HASHHASH,
}

var oneCharOps = map[byte]token.Kind{
	'(': token.LPAREN, ')': token.RPAREN, '{': token.LBRACE, '}': token.RBRACE,
	'[': token.LBRACKET, ']': token.RBRACKET, ';': token.SEMI, ':': token.COLON,
	',': token.COMMA, '.': token.DOT, '+': token.PLUS, '-': token.MINUS,
	'*': token.STAR, '/': token.SLASH, '%': token.PERCENT, '&': token.AMP,
	'|': token.PIPE, '^': token.CARET, '~': token.TILDE, '!': token.BANG,
	'<': token.LT, '>': token.GT, '=': token.ASSIGN, '?': token.QUESTION,
	'#': token.HASH,
}

func (s *scanner) scanOperator(startPos token.Pos) token.Token {
	three := string([]byte{s.peekAt(0), s.peekAt(1), s.peekAt(2)})
	if kind, ok := threeCharOps[three]; ok {
		s.advance()
		s.advance()
		s.advance()
		return token.Token{Kind: kind, Lit: three, Pos: startPos}
	}
	two := string([]byte{s.peekAt(0), s.peekAt(1)})
	if kind, ok := twoCharOps[two]; ok {
		s.advance()
		s.advance()
		return token.Token{Kind: kind, Lit: two, Pos: startPos}
	}
	if kind, ok := oneCharOps[s.ch]; ok {
		lit := string(s.ch)
		s.advance()
		return token.Token{Kind: kind, Lit: lit, Pos: startPos}
	}

	bad := s.ch
	s.advance()
	s.error(startPos, fmt.Sprintf("unexpected character %q", bad))
	return token.Token{Kind: token.ILLEGAL, Lit: string(bad), Pos: startPos}
}
