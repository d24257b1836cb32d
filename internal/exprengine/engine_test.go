package exprengine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rosebud32/rosebudc/internal/token"
)

// testNode is a minimal concrete node type used only to exercise the engine
// in isolation, independent of internal/ast. It mirrors the shape the real
// parser callbacks operate over: a tagged union of leaf/unary/binary/paren.
type testNode struct {
	typ   NodeType
	lit   string
	op    string
	left  *testNode
	right *testNode
}

type testCallbacks struct{}

func (testCallbacks) HandleNumber(tok token.Token) *testNode {
	return &testNode{typ: TypeNumber, lit: tok.Lit}
}

func (testCallbacks) HandleIdentifier(tok token.Token) *testNode {
	return &testNode{typ: TypeIdentifier, lit: tok.Lit}
}

func (testCallbacks) MakeUnary(op string, operand *testNode) *testNode {
	return &testNode{typ: TypeUnary, op: op, left: operand}
}

func (testCallbacks) MakeUnaryIndirection(depth int, operand *testNode) *testNode {
	return &testNode{typ: TypeUnary, op: "*", left: operand}
}

func (testCallbacks) MakeExpression(left, right *testNode, op string) *testNode {
	return &testNode{typ: TypeExpression, left: left, right: right, op: op}
}

func (testCallbacks) SetExpression(node *testNode, left, right *testNode, op string) *testNode {
	node.left, node.right, node.op = left, right, op
	return node
}

func (testCallbacks) MakeParentheses(inner *testNode) *testNode {
	return &testNode{typ: TypeParentheses, left: inner}
}

func (testCallbacks) MakeTernary(trueBranch, falseBranch *testNode) *testNode {
	return &testNode{typ: TypeOther, left: trueBranch, right: falseBranch}
}

func (testCallbacks) NodeType(n *testNode) NodeType {
	if n == nil {
		return TypeNone
	}
	return n.typ
}

func (testCallbacks) NodeLeft(n *testNode) *testNode  { return n.left }
func (testCallbacks) NodeRight(n *testNode) *testNode { return n.right }
func (testCallbacks) NodeOp(n *testNode) string {
	if n == nil {
		return ""
	}
	return n.op
}

func (testCallbacks) ExpectingAdditionalNode(n *testNode) bool      { return false }
func (testCallbacks) ShouldJoinNodes(node, additional *testNode) bool { return false }
func (testCallbacks) JoinNodes(node, additional *testNode) *testNode  { return node }
func (testCallbacks) IsCustomOperator(tok token.Token) bool           { return false }

func numTok(lit string) token.Token { return token.Token{Kind: token.NUMBER, Lit: lit} }

// opTok maps an operator's literal spelling to its token kind; only the kind
// family (not IDENT/NUMBER/STRING/EOF) matters to the engine.
func opTok(lit string) token.Token {
	kinds := map[string]token.Kind{
		"+": token.PLUS, "-": token.MINUS, "*": token.STAR, "/": token.SLASH,
	}
	return token.Token{Kind: kinds[lit], Lit: lit}
}

func mustParse(t *testing.T, toks []token.Token) *testNode {
	t.Helper()
	errored := false
	e := New[*testNode](testCallbacks{}, toks, func(tok token.Token, msg string) {
		errored = true
		t.Logf("engine error at %q: %s", tok.Lit, msg)
	})
	n := e.Parse()
	require.False(t, errored)
	return n
}

// 1 + 2 * 3 needs no rotation: '*' already sits nested on the right of '+',
// so the tree stays 1 + (2 * 3), not (1 + 2) * 3.
func TestPrecedenceNoRotationNeeded(t *testing.T) {
	toks := []token.Token{
		numTok("1"), opTok("+"), numTok("2"), opTok("*"), numTok("3"),
	}
	n := mustParse(t, toks)

	require.Equal(t, TypeExpression, n.typ)
	require.Equal(t, "+", n.op)
	require.Equal(t, TypeNumber, n.left.typ)
	require.Equal(t, "1", n.left.lit)

	require.Equal(t, TypeExpression, n.right.typ)
	require.Equal(t, "*", n.right.op)
	require.Equal(t, "2", n.right.left.lit)
	require.Equal(t, "3", n.right.right.lit)
}

// 1 * 2 + 3 is first built as 1 * (2 + 3) and must rotate so that '*' binds
// tighter than '+': the result is (1 * 2) + 3.
func TestPrecedenceRotation(t *testing.T) {
	toks := []token.Token{
		numTok("1"), opTok("*"), numTok("2"), opTok("+"), numTok("3"),
	}
	n := mustParse(t, toks)

	require.Equal(t, "+", n.op)
	require.Equal(t, TypeExpression, n.left.typ)
	require.Equal(t, "*", n.left.op)
	require.Equal(t, "3", n.right.lit)
}

// Identical operators rotate like any other equal-precedence pair, so a
// chain of the same operator associates left-to-right: 1 - 2 - 3 =>
// (1 - 2) - 3.
func TestSameOperatorChainNestsLeft(t *testing.T) {
	toks := []token.Token{
		numTok("1"), opTok("-"), numTok("2"), opTok("-"), numTok("3"),
	}
	n := mustParse(t, toks)

	require.Equal(t, "-", n.op)
	require.Equal(t, TypeExpression, n.left.typ)
	require.Equal(t, "-", n.left.op)
	require.Equal(t, "1", n.left.left.lit)
	require.Equal(t, "2", n.left.right.lit)
	require.Equal(t, "3", n.right.lit)
}

// Parentheses short-circuit precedence entirely: (1 + 2) * 3 must keep the
// addition grouped regardless of the surrounding '*'.
func TestParenthesesOverridePrecedence(t *testing.T) {
	toks := []token.Token{
		{Kind: token.LPAREN, Lit: "("},
		numTok("1"), opTok("+"), numTok("2"),
		{Kind: token.RPAREN, Lit: ")"},
		opTok("*"), numTok("3"),
	}
	n := mustParse(t, toks)

	require.Equal(t, "*", n.op)
	require.Equal(t, TypeParentheses, n.left.typ)
	require.Equal(t, "+", n.left.left.op)
	require.Equal(t, "3", n.right.lit)
}

func TestUnaryMinus(t *testing.T) {
	toks := []token.Token{
		{Kind: token.MINUS, Lit: "-"}, numTok("5"),
	}
	n := mustParse(t, toks)
	require.Equal(t, TypeUnary, n.typ)
	require.Equal(t, "-", n.op)
	require.Equal(t, "5", n.left.lit)
}
