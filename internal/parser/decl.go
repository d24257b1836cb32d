package parser

import (
	"github.com/rosebud32/rosebudc/internal/ast"
	"github.com/rosebud32/rosebudc/internal/datatype"
	"github.com/rosebud32/rosebudc/internal/token"
)

// parseExternalDecl parses one top-level construct: a typedef, a bare
// struct/union declaration (optionally with an inline variable), a function
// prototype/definition, or a global variable declaration list.
func (p *parser) parseExternalDecl() ast.Stmt {
	start := p.peek()

	if start.Kind == token.KW_TYPEDEF {
		p.next()
		dt := p.parseDatatype()
		name, fullType := p.parseDeclaratorSuffix(dt)
		p.expect(token.SEMI)
		p.typedefs[name] = fullType
		return nil
	}

	baseType := p.parseDatatype()

	// A bare struct/union declaration (its body already consumed by
	// parseDatatype) followed directly by ';' declares only the tag; an
	// inline variable declarator may follow instead.
	if baseType.IsStructOrUnion() && p.at(token.SEMI) {
		end := p.next().Pos
		d := &ast.StructUnionDecl{IsUnion: baseType.Kind == datatype.Union, Name: baseType.TypeStr, Fields: fieldsOf(baseType.Struct)}
		d.Start, d.End = start.Pos, end
		return d
	}

	name, fullType := p.parseDeclaratorSuffixNoConsumeName(baseType)
	if p.at(token.LPAREN) {
		return p.parseFuncDecl(fullType, name, start.Pos)
	}

	return p.parseVarListDeclTail(baseType, name, fullType, start.Pos)
}

func fieldsOf(def *datatype.StructDef) []*ast.VarDecl {
	if def == nil {
		return nil
	}
	out := make([]*ast.VarDecl, len(def.Fields))
	for i, f := range def.Fields {
		out[i] = &ast.VarDecl{Type: f.Type, Name: f.Name}
	}
	return out
}

// parseDeclaratorSuffixNoConsumeName parses the first top-level declarator
// with parseDeclaratorSuffix, leaving whatever follows it unconsumed: the
// caller still needs to see whether '(' follows (a function) before
// committing to a variable.
func (p *parser) parseDeclaratorSuffixNoConsumeName(baseType datatype.Datatype) (string, datatype.Datatype) {
	return p.parseDeclaratorSuffix(baseType)
}

// parseFuncDecl parses the `(args)` and either ';' (prototype) or a block
// body (definition) of a function whose return type/name were already
// parsed.
func (p *parser) parseFuncDecl(retType datatype.Datatype, name string, start token.Pos) *ast.FuncDecl {
	fn := &ast.FuncDecl{ReturnType: retType, Name: name}
	fn.Start = start

	p.expect(token.LPAREN)
	for !p.at(token.RPAREN) {
		if _, ok := p.accept(token.ELLIPSIS); ok {
			fn.Variadic = true
			break
		}
		argType := p.parseDatatype()
		argName := ""
		if p.at(token.IDENT) {
			argName, argType = p.parseDeclaratorSuffix(argType)
		}
		fn.Args = append(fn.Args, &ast.FuncArg{Type: argType, Name: argName})
		if _, ok := p.accept(token.COMMA); !ok {
			break
		}
	}
	p.expect(token.RPAREN)

	if _, ok := p.accept(token.SEMI); ok {
		fn.End = p.toks[p.pos-1].Pos
		return fn
	}

	fn.Body = p.parseBlock()
	_, fn.End = fn.Body.Span()
	return fn
}

// parseVarListDeclTail parses the remainder of a comma-separated global or
// local variable declaration list, given that the first declarator (name,
// fullType) has already been parsed.
func (p *parser) parseVarListDeclTail(baseType datatype.Datatype, firstName string, firstType datatype.Datatype, start token.Pos) ast.Stmt {
	list := &ast.VarListDecl{}
	list.Start = start

	addOne := func(name string, dt datatype.Datatype) {
		v := &ast.VarDecl{Type: dt, Name: name}
		v.Start = start
		v.End = p.toks[p.pos-1].Pos
		if _, ok := p.accept(token.ASSIGN); ok {
			v.Init = p.parseExpr(termComma)
			if v.Init != nil {
				_, v.End = v.Init.Span()
			}
		}
		list.Vars = append(list.Vars, v)
	}

	addOne(firstName, firstType)
	for {
		if _, ok := p.accept(token.COMMA); !ok {
			break
		}
		name, dt := p.parseDeclaratorSuffix(baseType)
		addOne(name, dt)
	}
	p.expect(token.SEMI)
	list.End = p.toks[p.pos-1].Pos

	if len(list.Vars) == 1 {
		return list.Vars[0]
	}
	return list
}
