package parser

import (
	"fmt"

	"github.com/rosebud32/rosebudc/internal/ast"
	"github.com/rosebud32/rosebudc/internal/datatype"
	"github.com/rosebud32/rosebudc/internal/exprengine"
	"github.com/rosebud32/rosebudc/internal/token"
)

// parseExpr parses one expression bounded by terms: it scans forward
// (tracking paren/bracket depth) for the first token at depth 0 whose kind
// is in terms, without consuming it, then hands the collected token span to
// the shared generic expression engine (internal/exprengine). Returns nil
// if the span is empty (an optional expression, e.g. `for(;;)`'s parts, was
// omitted).
func (p *parser) parseExpr(terms map[token.Kind]bool) ast.Expr {
	toks := p.parseExprSpan(terms)
	if len(toks) == 0 {
		return nil
	}
	return p.buildExpr(toks)
}

// parseExprSpan collects the token span of a single bounded expression
// without building it, leaving p's cursor positioned at the terminator.
func (p *parser) parseExprSpan(terms map[token.Kind]bool) []token.Token {
	start := p.pos
	depth := 0
	for {
		tok := p.peek()
		if tok.Kind == token.EOF {
			break
		}
		if depth == 0 && terms[tok.Kind] {
			break
		}
		switch tok.Kind {
		case token.LPAREN, token.LBRACKET:
			depth++
		case token.RPAREN, token.RBRACKET:
			depth--
		}
		p.next()
	}
	return p.toks[start:p.pos]
}

var termRParen = map[token.Kind]bool{token.RPAREN: true}
var termSemi = map[token.Kind]bool{token.SEMI: true}
var termComma = map[token.Kind]bool{token.COMMA: true, token.SEMI: true}
var termColon = map[token.Kind]bool{token.COLON: true}

// buildExpr folds out C-style casts (which the generic engine cannot parse
// on its own; see caster below) and then runs the engine over the result.
func (p *parser) buildExpr(toks []token.Token) ast.Expr {
	c := &caster{p: p, placeholders: map[string]ast.Expr{}}
	folded := c.fold(toks)
	return c.runEngine(folded)
}

// caster implements the one bit of expression grammar the generic engine
// cannot express on its own: a parenthesized type name directly in front of
// a value (`(int)x`). It is folded away before the token span ever reaches
// exprengine by pre-parsing the cast and its operand, then splicing a single
// synthetic identifier token into the stream standing in for the whole
// `(Type)operand` run; HandleIdentifier recognizes that synthetic name and
// returns the already-built *ast.CastExpr instead of a fresh IdentExpr.
type caster struct {
	p            *parser
	placeholders map[string]ast.Expr
	n            int
}

func (c *caster) runEngine(toks []token.Token) ast.Expr {
	cb := exprCallbacks{p: c.p, placeholders: c.placeholders}
	e := exprengine.New[ast.Expr](cb, toks, func(tok token.Token, msg string) {
		c.p.error(tok, msg)
	})
	return e.Parse()
}

func (c *caster) newPlaceholder(e ast.Expr) string {
	c.n++
	name := fmt.Sprintf("\x00cast%d", c.n)
	c.placeholders[name] = e
	return name
}

// fold scans toks left to right, tracking whether the next token is in
// "value expected" position (start of the span, or right after an operator,
// '(' or ','); a '(' found there that opens a type name rather than a
// grouped expression is a cast, and is folded into a placeholder.
func (c *caster) fold(toks []token.Token) []token.Token {
	var out []token.Token
	expectValue := true
	i := 0
	for i < len(toks) {
		t := toks[i]
		if expectValue && t.Kind == token.KW_SIZEOF && i+1 < len(toks) && toks[i+1].Kind == token.LPAREN &&
			i+2 < len(toks) && c.p.startsType(toks[i+2]) {
			parenEnd := skipParens(toks, i+1)
			dt := c.p.parseDatatypeFromTokens(toks[i+2 : parenEnd-1])

			n := &ast.NumberExpr{Value: int64(dt.Size())}
			n.Start, n.End = t.Pos, toks[parenEnd-1].Pos

			name := c.newPlaceholder(n)
			out = append(out, token.Token{Kind: token.IDENT, Lit: name, Pos: t.Pos})
			i = parenEnd
			expectValue = false
			continue
		}
		if expectValue && t.Kind == token.LPAREN && i+1 < len(toks) && c.p.startsType(toks[i+1]) {
			typeEnd := skipParens(toks, i)
			dt := c.p.parseDatatypeFromTokens(toks[i+1 : typeEnd-1])
			operandEnd := scanUnaryPostfix(c.p, toks, typeEnd)
			folded := c.fold(toks[typeEnd:operandEnd])
			inner := c.runEngine(folded)

			cast := &ast.CastExpr{Type: dt, Inner: inner}
			cast.Start = t.Pos
			if inner != nil {
				_, cast.End = inner.Span()
			} else {
				cast.End = t.Pos
			}

			name := c.newPlaceholder(cast)
			out = append(out, token.Token{Kind: token.IDENT, Lit: name, Pos: t.Pos})
			i = operandEnd
			expectValue = false
			continue
		}
		out = append(out, t)
		expectValue = valueExpectedAfter(t)
		i++
	}
	return out
}

func valueExpectedAfter(t token.Token) bool {
	switch t.Kind {
	case token.IDENT, token.NUMBER, token.STRING, token.RPAREN, token.RBRACKET:
		return false
	default:
		return true
	}
}

// skipParens returns the index just past the ')' matching the '(' at
// toks[i], or len(toks) if unbalanced.
func skipParens(toks []token.Token, i int) int {
	depth := 0
	for ; i < len(toks); i++ {
		switch toks[i].Kind {
		case token.LPAREN:
			depth++
		case token.RPAREN:
			depth--
			if depth == 0 {
				return i + 1
			}
		}
	}
	return len(toks)
}

// skipBrackets returns the index just past the ']' matching the '[' at
// toks[i], or len(toks) if unbalanced.
func skipBrackets(toks []token.Token, i int) int {
	depth := 0
	for ; i < len(toks); i++ {
		switch toks[i].Kind {
		case token.LBRACKET:
			depth++
		case token.RBRACKET:
			depth--
			if depth == 0 {
				return i + 1
			}
		}
	}
	return len(toks)
}

// scanUnaryPostfix returns the end index (exclusive) of the single unary/
// postfix operand starting at toks[i]: a run of prefix unary operators
// and/or parenthesized-type cast prefixes, then one primary (identifier,
// number, string or parenthesized group), then a chain of postfix access
// operators (`.`, `->`, `[...]`, `(...)`). It only bounds the span; the
// actual nodes are built afterward by fold/runEngine on the extracted
// slice.
func scanUnaryPostfix(p *parser, toks []token.Token, i int) int {
	for i < len(toks) {
		t := toks[i]
		if ast.IsUnaryOperator(t.Lit) && t.Kind != token.LPAREN {
			i++
			continue
		}
		if t.Kind == token.LPAREN && i+1 < len(toks) && p.startsType(toks[i+1]) {
			i = skipParens(toks, i)
			continue
		}
		break
	}

	if i >= len(toks) {
		return i
	}
	switch toks[i].Kind {
	case token.LPAREN:
		i = skipParens(toks, i)
	default:
		i++
	}

	for i < len(toks) {
		switch toks[i].Kind {
		case token.DOT, token.ARROW:
			i++
			if i < len(toks) && toks[i].Kind == token.IDENT {
				i++
			}
		case token.LBRACKET:
			i = skipBrackets(toks, i)
		case token.LPAREN:
			i = skipParens(toks, i)
		default:
			return i
		}
	}
	return i
}

// parseDatatypeFromTokens parses a standalone type name (the interior of a
// cast's parentheses) by temporarily pointing the parser's cursor at a
// defensive copy of sub plus a synthetic EOF, then restoring it. A copy is
// required: sub is a slice into the caller's token array, and parseDatatype
// only ever reads forward, but appending to it directly could silently
// overwrite tokens beyond sub's end if the backing array had spare capacity.
func (p *parser) parseDatatypeFromTokens(sub []token.Token) datatype.Datatype {
	tmp := make([]token.Token, len(sub)+1)
	copy(tmp, sub)
	tmp[len(sub)] = token.Token{Kind: token.EOF}

	savedToks, savedPos := p.toks, p.pos
	p.toks, p.pos = tmp, 0
	dt := p.parseDatatype()
	p.toks, p.pos = savedToks, savedPos
	return dt
}

// exprCallbacks implements exprengine.Callbacks[ast.Expr], the adapter that
// lets internal/exprengine (shared with internal/cpp's #if evaluator, see
// cpp/ifeval.go) build real AST nodes instead of #if's eagerly-evaluated
// ifNode.
type exprCallbacks struct {
	p            *parser
	placeholders map[string]ast.Expr
}

func (cb exprCallbacks) HandleNumber(tok token.Token) ast.Expr {
	n := &ast.NumberExpr{Value: int64(parseIntLit(tok.Lit)), WidthHint: widthHint(tok.Lit)}
	n.Start, n.End = tok.Pos, tok.Pos+token.Pos(len(tok.Lit))
	return n
}

func (cb exprCallbacks) HandleIdentifier(tok token.Token) ast.Expr {
	if e, ok := cb.placeholders[tok.Lit]; ok {
		return e
	}
	n := &ast.IdentExpr{Name: tok.Lit}
	n.Start, n.End = tok.Pos, tok.Pos+token.Pos(len(tok.Lit))
	return n
}

func (cb exprCallbacks) MakeUnary(op string, operand ast.Expr) ast.Expr {
	n := &ast.UnaryExpr{Op: op, Operand: operand}
	if operand != nil {
		_, n.End = operand.Span()
	}
	return n
}

func (cb exprCallbacks) MakeUnaryIndirection(depth int, operand ast.Expr) ast.Expr {
	n := &ast.UnaryExpr{Op: "*", Operand: operand, Depth: depth}
	if operand != nil {
		_, n.End = operand.Span()
	}
	return n
}

func (cb exprCallbacks) MakeExpression(left, right ast.Expr, op string) ast.Expr {
	n := &ast.ExpressionExpr{Left: left, Right: right, Op: op}
	if left != nil {
		n.Start, _ = left.Span()
	}
	if right != nil {
		_, n.End = right.Span()
	}
	return n
}

func (cb exprCallbacks) SetExpression(node ast.Expr, left, right ast.Expr, op string) ast.Expr {
	e, ok := node.(*ast.ExpressionExpr)
	if !ok {
		return cb.MakeExpression(left, right, op)
	}
	e.Left, e.Right, e.Op = left, right, op
	if left != nil {
		e.Start, _ = left.Span()
	}
	if right != nil {
		_, e.End = right.Span()
	}
	return e
}

func (cb exprCallbacks) MakeParentheses(inner ast.Expr) ast.Expr {
	n := &ast.ParenExpr{Inner: inner}
	if inner != nil {
		n.Start, n.End = inner.Span()
	}
	return n
}

func (cb exprCallbacks) MakeTernary(trueBranch, falseBranch ast.Expr) ast.Expr {
	n := &ast.TernaryExpr{True: trueBranch, False: falseBranch}
	if trueBranch != nil {
		n.Start, _ = trueBranch.Span()
	}
	if falseBranch != nil {
		_, n.End = falseBranch.Span()
	}
	return n
}

func (cb exprCallbacks) NodeType(n ast.Expr) exprengine.NodeType {
	switch n.(type) {
	case nil:
		return exprengine.TypeNone
	case *ast.NumberExpr:
		return exprengine.TypeNumber
	case *ast.IdentExpr:
		return exprengine.TypeIdentifier
	case *ast.UnaryExpr:
		return exprengine.TypeUnary
	case *ast.ParenExpr:
		return exprengine.TypeParentheses
	case *ast.ExpressionExpr:
		return exprengine.TypeExpression
	default:
		return exprengine.TypeOther
	}
}

func (cb exprCallbacks) NodeLeft(n ast.Expr) ast.Expr {
	if e, ok := n.(*ast.ExpressionExpr); ok {
		return e.Left
	}
	return nil
}

func (cb exprCallbacks) NodeRight(n ast.Expr) ast.Expr {
	if e, ok := n.(*ast.ExpressionExpr); ok {
		return e.Right
	}
	return nil
}

func (cb exprCallbacks) NodeOp(n ast.Expr) string {
	if e, ok := n.(*ast.ExpressionExpr); ok {
		return e.Op
	}
	return ""
}

// ExpectingAdditionalNode/ShouldJoinNodes/JoinNodes implement the engine's
// "join" hook, used by the preprocessor to bind `defined X` (cpp/ifeval.go).
// The real language grammar has no equivalent construct.
func (cb exprCallbacks) ExpectingAdditionalNode(ast.Expr) bool         { return false }
func (cb exprCallbacks) ShouldJoinNodes(node, additional ast.Expr) bool { return false }
func (cb exprCallbacks) JoinNodes(node, additional ast.Expr) ast.Expr  { return node }

// IsCustomOperator claims no tokens beyond the engine's built-in precedence
// table; casts are folded out before the engine ever sees them (see caster
// above), so there is nothing left for the parser to claim here.
func (cb exprCallbacks) IsCustomOperator(tok token.Token) bool { return false }
