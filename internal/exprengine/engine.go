// Package exprengine implements the generic, precedence-climbing expression
// parser described in spec.md §4.4. It is shared infrastructure: the source
// parser instantiates it to build ast.Expr trees, and the preprocessor
// instantiates it (with different callbacks and a different node type) to
// evaluate `#if` expressions.
//
// The algorithm is a direct, generics-based Go port of the original
// compiler's expressionable.c: an output node stack fed by a token cursor,
// where each new operator either extends the top of the stack or triggers a
// "shift children left" rotation to fix up operator precedence after the
// fact (rather than doing classical lookahead-based climbing).
package exprengine

import "github.com/rosebud32/rosebudc/internal/token"

// NodeType is the generic shape of a node as seen by the engine, used only
// to decide whether a rotation applies or whether an unparenthesized
// right-hand operand is itself reparsable.
type NodeType uint8

const (
	TypeNone NodeType = iota
	TypeNumber
	TypeIdentifier
	TypeUnary
	TypeParentheses
	TypeExpression
	TypeOther // ternary, cast, or anything else the instantiator produces directly
)

// ValueExpressionable reports whether t can appear as the left operand of a
// `(` that turns it into a call/grouping expression, mirroring
// expressionable_generic_type_is_value_expressionable.
func ValueExpressionable(t NodeType) bool {
	switch t {
	case TypeNumber, TypeIdentifier, TypeUnary, TypeParentheses, TypeExpression:
		return true
	}
	return false
}

// Callbacks is the ~16-method contract between the engine and whatever is
// building concrete nodes (ast.Expr for the parser, a lightweight
// expression type for the preprocessor's #if evaluator). See spec.md §4.4
// and design note "Callbacks" in spec.md §9.
type Callbacks[N any] interface {
	// HandleNumber consumes the current number token and returns a leaf node.
	HandleNumber(tok token.Token) N
	// HandleIdentifier consumes the current identifier token and returns a
	// leaf node.
	HandleIdentifier(tok token.Token) N

	// MakeUnary builds a prefix-unary node: op operand.
	MakeUnary(op string, operand N) N
	// MakeUnaryIndirection builds a `*`-chain unary node with the given
	// pointer depth (e.g. **p has depth 2).
	MakeUnaryIndirection(depth int, operand N) N
	// MakeExpression builds a binary node: left op right.
	MakeExpression(left, right N, op string) N
	// SetExpression overwrites node in place (conceptually) with new
	// children/operator, returning the updated node; used by the
	// shift-children-left rotation.
	SetExpression(node N, left, right N, op string) N
	// MakeParentheses wraps inner in a parenthesis node.
	MakeParentheses(inner N) N
	// MakeTernary builds the ternary tail (true : false); the engine wraps
	// it together with the condition via MakeExpression(cond, tail, "?").
	MakeTernary(trueBranch, falseBranch N) N

	// NodeType, NodeLeft, NodeRight, NodeOp are accessors used by the
	// rotation algorithm.
	NodeType(n N) NodeType
	NodeLeft(n N) N
	NodeRight(n N) N
	NodeOp(n N) string

	// ShouldJoinNodes/JoinNodes implement the "defined X" style binding used
	// by the preprocessor: after parsing a single node, the engine may ask
	// whether an immediately following node should be merged into it.
	ExpectingAdditionalNode(n N) bool
	ShouldJoinNodes(node, additional N) bool
	JoinNodes(node, additional N) N

	// IsCustomOperator lets an instantiator claim a token as an operator
	// outside the fixed precedence table (both the source parser and the
	// preprocessor's #if evaluator always return false).
	IsCustomOperator(tok token.Token) bool
}

// Engine drives the precedence-climbing parse over a token slice.
type Engine[N any] struct {
	cb     Callbacks[N]
	tokens []token.Token
	pos    int
	out    []N

	errf func(tok token.Token, msg string)
}

// New creates an engine over tokens, reporting errors (see spec.md's
// UnexpectedOperator/ExpectedSymbol/TwoOperators) through errf.
func New[N any](cb Callbacks[N], tokens []token.Token, errf func(token.Token, string)) *Engine[N] {
	return &Engine[N]{cb: cb, tokens: tokens, errf: errf}
}

func (e *Engine[N]) fail(msg string) {
	var tok token.Token
	if e.pos < len(e.tokens) {
		tok = e.tokens[e.pos]
	}
	e.errf(tok, msg)
}

func (e *Engine[N]) peek() token.Token {
	if e.pos >= len(e.tokens) {
		return token.Token{Kind: token.EOF}
	}
	return e.tokens[e.pos]
}

func (e *Engine[N]) next() token.Token {
	tok := e.peek()
	if e.pos < len(e.tokens) {
		e.pos++
	}
	return tok
}

func (e *Engine[N]) isOperator(tok token.Token, op string) bool {
	return tok.Lit == op && e.tokenIsOperatorKind(tok)
}

// operatorKinds is the set of token kinds the engine treats as operators,
// i.e. the ones appearing in PrecedenceTable plus the "(" that introduces a
// call or a grouped expression. Delimiters such as ")", "]", "}" and ";"
// are deliberately excluded even though they are punctuation: they carry no
// precedence and must terminate a recursive parse() instead of being
// mistaken for the start of another operand.
var operatorKinds = map[token.Kind]bool{
	token.LPAREN: true, token.LBRACKET: true, token.DOT: true, token.ARROW: true,
	token.PLUS: true, token.MINUS: true, token.STAR: true, token.SLASH: true, token.PERCENT: true,
	token.AMP: true, token.PIPE: true, token.CARET: true, token.TILDE: true, token.BANG: true,
	token.LT: true, token.GT: true, token.LE: true, token.GE: true, token.EQ: true, token.NE: true,
	token.SHL: true, token.SHR: true, token.ANDAND: true, token.OROR: true,
	token.ASSIGN: true, token.PLUS_EQ: true, token.MINUS_EQ: true, token.STAR_EQ: true,
	token.SLASH_EQ: true, token.PERCENT_EQ: true, token.SHL_EQ: true, token.SHR_EQ: true,
	token.AMP_EQ: true, token.CARET_EQ: true, token.PIPE_EQ: true,
	token.INC: true, token.DEC: true, token.QUESTION: true, token.COLON: true, token.COMMA: true,
}

// tokenIsOperatorKind reports whether tok's kind is one the engine treats as
// an operator. See operatorKinds.
func (e *Engine[N]) tokenIsOperatorKind(tok token.Token) bool {
	return operatorKinds[tok.Kind]
}

func (e *Engine[N]) nodePop() N {
	var zero N
	if len(e.out) == 0 {
		return zero
	}
	n := e.out[len(e.out)-1]
	e.out = e.out[:len(e.out)-1]
	return n
}

func (e *Engine[N]) nodePush(n N) { e.out = append(e.out, n) }

func (e *Engine[N]) nodePeekOrZero() N {
	if len(e.out) == 0 {
		var zero N
		return zero
	}
	return e.out[len(e.out)-1]
}

func (e *Engine[N]) expectOp(op string) {
	tok := e.next()
	if !e.isOperator(tok, op) {
		e.fail("expected operator " + op)
	}
}

func (e *Engine[N]) expectSym(lit string) {
	tok := e.next()
	if tok.Lit != lit {
		e.fail("expected symbol " + lit)
	}
}

// shiftChildrenLeft implements expressionable_parser_node_shift_children_left:
// given `node = left OP (rightLeft ROP rightRight)`, rewrite it as
// `(left OP rightLeft) ROP rightRight` so that ROP, which binds tighter or
// equally, ends up at the top.
func (e *Engine[N]) shiftChildrenLeft(node N) N {
	left := e.cb.NodeLeft(node)
	right := e.cb.NodeRight(node)
	rightOp := e.cb.NodeOp(right)
	nodeOp := e.cb.NodeOp(node)

	newLeft := e.cb.MakeExpression(left, e.cb.NodeLeft(right), nodeOp)
	newRight := e.cb.NodeRight(right)
	return e.cb.SetExpression(node, newLeft, newRight, rightOp)
}

// reorderExpression implements expressionable_parser_reorder_expression,
// recursively rotating node's subtree until precedence is respected.
func (e *Engine[N]) reorderExpression(node N) N {
	if e.cb.NodeType(node) != TypeExpression {
		return node
	}

	left := e.cb.NodeLeft(node)
	right := e.cb.NodeRight(node)
	leftType := e.cb.NodeType(left)
	rightType := e.cb.NodeType(right)

	if leftType != TypeExpression && rightType != TypeExpression {
		return node
	}

	if leftType != TypeExpression && rightType == TypeExpression {
		rightOp := e.cb.NodeOp(right)
		mainOp := e.cb.NodeOp(node)
		if leftOpHasPriority(mainOp, rightOp) {
			node = e.shiftChildrenLeft(node)
			newLeft := e.reorderExpression(e.cb.NodeLeft(node))
			newRight := e.reorderExpression(e.cb.NodeRight(node))
			node = e.cb.SetExpression(node, newLeft, newRight, e.cb.NodeOp(node))
		}
	}

	return node
}

// parseParentheses implements expressionable_parse_parentheses: either a
// bare grouping `(expr)` or, if a value-expressionable node already sits on
// the stack, a function call `left(args)`.
func (e *Engine[N]) parseParentheses() {
	var left N
	haveLeft := false
	if tmp := e.nodePeekOrZero(); e.cb.NodeType(tmp) != TypeNone && ValueExpressionable(e.cb.NodeType(tmp)) {
		left = e.nodePop()
		haveLeft = true
	}

	e.expectOp("(")
	e.parse()
	e.expectSym(")")
	inner := e.nodePop()
	paren := e.cb.MakeParentheses(inner)

	if haveLeft {
		e.nodePush(paren)
		p := e.nodePop()
		e.nodePush(e.cb.MakeExpression(left, p, "()"))
	} else {
		e.nodePush(paren)
	}

	e.dealWithAdditionalExpression()
}

// parseBracket handles `left[index]` array subscripting the same way
// parseParentheses handles calls/grouping: index is parsed as a full
// sub-expression and wrapped with MakeParentheses (there's no separate
// "bracket" callback; the wrapping only exists to give the subscript its own
// node before it's attached on the right of the "[" expression).
func (e *Engine[N]) parseBracket() {
	var left N
	haveLeft := false
	if tmp := e.nodePeekOrZero(); e.cb.NodeType(tmp) != TypeNone && ValueExpressionable(e.cb.NodeType(tmp)) {
		left = e.nodePop()
		haveLeft = true
	}

	e.expectOp("[")
	e.parse()
	e.expectSym("]")
	inner := e.nodePop()
	wrapped := e.cb.MakeParentheses(inner)

	if haveLeft {
		e.nodePush(wrapped)
		idx := e.nodePop()
		e.nodePush(e.cb.MakeExpression(left, idx, "[]"))
	} else {
		e.nodePush(wrapped)
	}

	e.dealWithAdditionalExpression()
}

func (e *Engine[N]) dealWithAdditionalExpression() {
	if e.tokenIsOperatorKind(e.peek()) && e.peek().Kind != token.EOF {
		e.parse()
	}
}

func (e *Engine[N]) parseNormalUnary() {
	op := e.next().Lit
	e.parse()
	operand := e.nodePop()
	e.nodePush(e.cb.MakeUnary(op, operand))
}

func (e *Engine[N]) pointerDepth() int {
	depth := 0
	for e.isOperator(e.peek(), "*") {
		depth++
		e.next()
	}
	return depth
}

func (e *Engine[N]) parseIndirectionUnary() {
	depth := e.pointerDepth()
	e.parse()
	operand := e.nodePop()
	e.nodePush(e.cb.MakeUnaryIndirection(depth, operand))
}

func (e *Engine[N]) parseUnary() {
	op := e.peek().Lit
	if op == "*" {
		e.parseIndirectionUnary()
		return
	}
	e.parseNormalUnary()
	e.dealWithAdditionalExpression()
}

func isUnaryOp(op string) bool {
	switch op {
	case "-", "+", "!", "~", "*", "&", "++", "--":
		return true
	}
	return false
}

func (e *Engine[N]) parseForOperator() {
	opTok := e.peek()
	op := opTok.Lit
	left := e.nodePeekOrZero()
	if e.cb.NodeType(left) == TypeNone {
		if !isUnaryOp(op) {
			e.fail("expected unary operator")
			return
		}
		e.parseUnary()
		return
	}

	e.next()   // consume operator
	e.nodePop() // consume left (already have it)

	next := e.peek()
	switch {
	case e.tokenIsOperatorKind(next) && next.Lit == "(":
		e.parseParentheses()
	case e.tokenIsOperatorKind(next) && next.Lit == "[":
		e.parseBracket()
	case e.tokenIsOperatorKind(next) && isUnaryOp(next.Lit):
		e.parseUnary()
	case e.tokenIsOperatorKind(next) && next.Kind != token.EOF:
		e.fail("two operators are not expected for the given expression")
		return
	default:
		e.parse()
	}

	right := e.nodePop()
	exp := e.cb.MakeExpression(left, right, op)
	exp = e.reorderExpression(exp)
	e.nodePush(exp)
}

func (e *Engine[N]) parseTernary() {
	cond := e.nodePop()
	e.expectOp("?")
	e.parse()
	trueOp := e.nodePop()
	e.expectSym(":")
	e.parse()
	falseOp := e.nodePop()

	tail := e.cb.MakeTernary(trueOp, falseOp)
	e.nodePush(e.cb.MakeExpression(cond, tail, "?"))
}

func (e *Engine[N]) parseExp() {
	next := e.peek()
	switch {
	case next.Lit == "(" && e.tokenIsOperatorKind(next):
		e.parseParentheses()
	case next.Lit == "[" && e.tokenIsOperatorKind(next):
		e.parseBracket()
	case next.Lit == "?" && e.tokenIsOperatorKind(next):
		e.parseTernary()
	default:
		e.parseForOperator()
	}
}

func (e *Engine[N]) parseToken(tok token.Token) bool {
	switch tok.Kind {
	case token.NUMBER:
		e.nodePush(e.cb.HandleNumber(e.next()))
		return true
	case token.IDENT:
		e.nodePush(e.cb.HandleIdentifier(e.next()))
		return true
	default:
		if e.tokenIsOperatorKind(tok) {
			e.parseExp()
			return true
		}
	}
	return false
}

// parseSingle implements expressionable_parse_single_with_flags: parse one
// "unit" (which may itself recursively consume many tokens through operator
// precedence handling) and push it to the output stack.
func (e *Engine[N]) parseSingle() bool {
	tok := e.peek()
	if tok.Kind == token.EOF {
		return false
	}

	if e.cb.IsCustomOperator(tok) {
		e.parseExp()
	} else if !e.parseToken(tok) {
		return false
	}

	node := e.nodePop()
	if e.cb.ExpectingAdditionalNode(node) {
		if e.parseSingle() {
			additional := e.nodePeekOrZero()
			if e.cb.NodeType(additional) != TypeNone && e.cb.ShouldJoinNodes(node, additional) {
				joined := e.cb.JoinNodes(node, additional)
				e.nodePop()
				node = joined
			}
		}
	}

	e.nodePush(node)
	return true
}

// parse implements expressionable_parse: consume single units until none
// remain.
func (e *Engine[N]) parse() {
	for e.parseSingle() {
	}
}

// Parse runs the engine to completion and returns the single resulting node.
// It is the entry point used by both the source parser and the
// preprocessor's #if evaluator.
func (e *Engine[N]) Parse() N {
	e.parse()
	return e.nodePop()
}

// Remaining reports how many tokens are left unconsumed (used by callers
// that feed the engine a bounded sub-slice, e.g. one #if line).
func (e *Engine[N]) Remaining() int { return len(e.tokens) - e.pos }
