package parser

import (
	"github.com/rosebud32/rosebudc/internal/ast"
	"github.com/rosebud32/rosebudc/internal/token"
)

// parseBlock parses a `{ stmt* }` compound statement. A panic from a
// malformed statement is recovered here (not just at the top-level
// declaration loop) by resynchronizing to the next ';' or matching '}', so
// one bad statement doesn't abort the whole enclosing function body.
func (p *parser) parseBlock() *ast.BlockStmt {
	block := &ast.BlockStmt{}
	block.Start = p.expect(token.LBRACE).Pos

	for !p.at(token.RBRACE) && p.peek().Kind != token.EOF {
		startPos := p.pos
		if s := p.parseStmtRecover(); s != nil {
			block.Stmts = append(block.Stmts, s)
		}
		if p.pos == startPos {
			p.next()
		}
	}
	block.End = p.expect(token.RBRACE).Pos
	return block
}

func (p *parser) parseStmtRecover() (stmt ast.Stmt) {
	defer func() {
		if r := recover(); r != nil {
			if r != errPanicMode {
				panic(r)
			}
			p.skipToSemiOrBrace()
		}
	}()
	return p.parseStmt()
}

// parseStmt dispatches on the current token to parse one statement, per the
// statement kinds spec.md §3 enumerates.
func (p *parser) parseStmt() ast.Stmt {
	switch p.peek().Kind {
	case token.LBRACE:
		return p.parseBlock()
	case token.KW_RETURN:
		return p.parseReturnStmt()
	case token.KW_IF:
		return p.parseIfStmt()
	case token.KW_FOR:
		return p.parseForStmt()
	case token.KW_WHILE:
		return p.parseWhileStmt()
	case token.KW_DO:
		return p.parseDoWhileStmt()
	case token.KW_SWITCH:
		return p.parseSwitchStmt()
	case token.KW_CASE:
		return p.parseCaseStmt()
	case token.KW_DEFAULT:
		return p.parseDefaultStmt()
	case token.KW_BREAK:
		s := &ast.BreakStmt{}
		s.Start = p.next().Pos
		s.End = p.expect(token.SEMI).Pos
		return s
	case token.KW_CONTINUE:
		s := &ast.ContinueStmt{}
		s.Start = p.next().Pos
		s.End = p.expect(token.SEMI).Pos
		return s
	case token.KW_GOTO:
		s := &ast.GotoStmt{}
		s.Start = p.next().Pos
		s.Label = p.expect(token.IDENT).Lit
		s.End = p.expect(token.SEMI).Pos
		return s
	case token.SEMI:
		// empty statement; kept as a zero-operand ExprStmt rather than nil so
		// callers that immediately take its Span (if/for/while bodies) don't
		// need a nil check.
		s := &ast.ExprStmt{}
		s.Start = p.next().Pos
		s.End = s.Start
		return s
	}

	if p.startsType(p.peek()) {
		return p.parseLocalVarDecl()
	}
	if p.at(token.IDENT) && p.peekAt(1).Kind == token.COLON {
		s := &ast.LabelStmt{Name: p.peek().Lit}
		s.Start = p.next().Pos
		s.End = p.next().Pos // consume ':'
		return s
	}

	return p.parseExprStmt()
}

func (p *parser) parseLocalVarDecl() ast.Stmt {
	start := p.peek()
	baseType := p.parseDatatype()
	name, fullType := p.parseDeclaratorSuffix(baseType)
	return p.parseVarListDeclTail(baseType, name, fullType, start.Pos)
}

func (p *parser) parseExprStmt() ast.Stmt {
	start := p.peek()
	x := p.parseExpr(termSemi)
	end := p.expect(token.SEMI)
	if x == nil {
		return nil
	}
	s := &ast.ExprStmt{X: x}
	s.Start, s.End = start.Pos, end.Pos
	return s
}

func (p *parser) parseReturnStmt() *ast.ReturnStmt {
	s := &ast.ReturnStmt{}
	s.Start = p.expect(token.KW_RETURN).Pos
	s.X = p.parseExpr(termSemi)
	s.End = p.expect(token.SEMI).Pos
	return s
}

func (p *parser) parseIfStmt() *ast.IfStmt {
	s := &ast.IfStmt{}
	s.Start = p.expect(token.KW_IF).Pos
	p.expect(token.LPAREN)
	s.Cond = p.parseExpr(termRParen)
	p.expect(token.RPAREN)
	s.Then = p.parseStmt()
	_, s.End = s.Then.Span()
	if _, ok := p.accept(token.KW_ELSE); ok {
		s.Else = p.parseStmt()
		_, s.End = s.Else.Span()
	}
	return s
}

func (p *parser) parseForStmt() *ast.ForStmt {
	s := &ast.ForStmt{}
	s.Start = p.expect(token.KW_FOR).Pos
	p.expect(token.LPAREN)

	if !p.at(token.SEMI) && p.startsType(p.peek()) {
		// parseLocalVarDecl (via parseVarListDeclTail) consumes its own
		// trailing ';', unlike the plain-expression init clause below.
		s.Init = p.parseLocalVarDecl()
	} else {
		s.Init = p.parseExprStmtNoConsumeTerm(termSemi)
		p.expect(token.SEMI)
	}

	s.Cond = p.parseExpr(termSemi)
	p.expect(token.SEMI)

	s.Post = p.parseExpr(termRParen)
	p.expect(token.RPAREN)

	s.Body = p.parseStmt()
	_, s.End = s.Body.Span()
	return s
}

// parseExprStmtNoConsumeTerm parses a bare expression (used for a for-loop's
// init clause) without consuming the terminator, which the caller (the
// shared ';' handling in parseForStmt) consumes itself.
func (p *parser) parseExprStmtNoConsumeTerm(terms map[token.Kind]bool) ast.Stmt {
	start := p.peek()
	x := p.parseExpr(terms)
	if x == nil {
		return nil
	}
	s := &ast.ExprStmt{X: x}
	s.Start = start.Pos
	_, s.End = x.Span()
	return s
}

func (p *parser) parseWhileStmt() *ast.WhileStmt {
	s := &ast.WhileStmt{}
	s.Start = p.expect(token.KW_WHILE).Pos
	p.expect(token.LPAREN)
	s.Cond = p.parseExpr(termRParen)
	p.expect(token.RPAREN)
	s.Body = p.parseStmt()
	_, s.End = s.Body.Span()
	return s
}

func (p *parser) parseDoWhileStmt() *ast.DoWhileStmt {
	s := &ast.DoWhileStmt{}
	s.Start = p.expect(token.KW_DO).Pos
	s.Body = p.parseStmt()
	p.expect(token.KW_WHILE)
	p.expect(token.LPAREN)
	s.Cond = p.parseExpr(termRParen)
	p.expect(token.RPAREN)
	s.End = p.expect(token.SEMI).Pos
	return s
}

func (p *parser) parseSwitchStmt() *ast.SwitchStmt {
	s := &ast.SwitchStmt{}
	s.Start = p.expect(token.KW_SWITCH).Pos
	p.expect(token.LPAREN)
	s.Tag = p.parseExpr(termRParen)
	p.expect(token.RPAREN)
	s.Body = p.parseBlock()
	_, s.End = s.Body.Span()
	return s
}

func (p *parser) parseCaseStmt() *ast.CaseStmt {
	s := &ast.CaseStmt{}
	s.Start = p.expect(token.KW_CASE).Pos
	s.Value = p.parseExpr(termColon)
	s.End = p.expect(token.COLON).Pos
	return s
}

func (p *parser) parseDefaultStmt() *ast.DefaultStmt {
	s := &ast.DefaultStmt{}
	s.Start = p.expect(token.KW_DEFAULT).Pos
	s.End = p.expect(token.COLON).Pos
	return s
}
