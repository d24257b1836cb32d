package ast

// The predicates below are the sole contract between the AST producer (the
// parser) and the resolver/code generator core (spec.md §4.2). They inspect
// operator text on ExpressionExpr/UnaryExpr nodes rather than adding a
// dedicated node kind per operator, matching the original compiler's
// approach of tagging a single NODE_TYPE_EXPRESSION with an operator string.

// IsAccessNode reports whether node is a struct/union member access,
// `.` or `->`.
func IsAccessNode(n Node) bool {
	e, ok := n.(*ExpressionExpr)
	return ok && (e.Op == "." || e.Op == "->")
}

// IsAccessNodeWithOp reports whether node is an access node using exactly
// op ("." or "->").
func IsAccessNodeWithOp(n Node, op string) bool {
	e, ok := n.(*ExpressionExpr)
	return ok && e.Op == op
}

// IsArrayNode reports whether node is an array-index expression `[]`.
func IsArrayNode(n Node) bool {
	e, ok := n.(*ExpressionExpr)
	return ok && e.Op == "[]"
}

// IsParenthesesNode reports whether node is a call/grouping expression `()`.
func IsParenthesesNode(n Node) bool {
	e, ok := n.(*ExpressionExpr)
	return ok && e.Op == "()"
}

// IsArgumentNode reports whether node is a comma-joined argument list node,
// or a parenthesized expression wrapping one.
func IsArgumentNode(n Node) bool {
	if e, ok := n.(*ExpressionExpr); ok && e.Op == "," {
		return true
	}
	if p, ok := n.(*ParenExpr); ok {
		return IsArgumentNode(p.Inner)
	}
	return false
}

// IsNodeAssignment reports whether node is an assignment-family operator.
func IsNodeAssignment(n Node) bool {
	e, ok := n.(*ExpressionExpr)
	if !ok {
		return false
	}
	switch e.Op {
	case "=", "+=", "-=", "*=", "/=", "%=", "<<=", ">>=", "&=", "^=", "|=":
		return true
	}
	return false
}

// IsUnaryOperator reports whether op can introduce a prefix unary
// expression.
func IsUnaryOperator(op string) bool {
	switch op {
	case "-", "+", "!", "~", "*", "&", "++", "--":
		return true
	}
	return false
}

// OpIsIndirection reports whether op is the unary indirection operator `*`.
func OpIsIndirection(op string) bool { return op == "*" }

// OpIsAddress reports whether op is the unary address-of operator `&`.
func OpIsAddress(op string) bool { return op == "&" }

// IsLogicalOperator reports whether op is a short-circuiting logical
// operator.
func IsLogicalOperator(op string) bool { return op == "&&" || op == "||" }

// FunctionNodeIsPrototype reports whether fn has no body, i.e. it is a
// forward declaration.
func FunctionNodeIsPrototype(fn *FuncDecl) bool { return fn.Body == nil }
