package parser

import (
	"github.com/rosebud32/rosebudc/internal/datatype"
	"github.com/rosebud32/rosebudc/internal/token"
)

// startsType reports whether tok can begin a type-specifier: a primitive
// keyword, `struct`/`union`, a type qualifier, or a name previously
// registered by a `typedef`.
func (p *parser) startsType(tok token.Token) bool {
	switch tok.Kind {
	case token.KW_VOID, token.KW_CHAR, token.KW_SHORT, token.KW_INT, token.KW_LONG,
		token.KW_STRUCT, token.KW_UNION, token.KW_SIGNED, token.KW_UNSIGNED,
		token.KW_CONST, token.KW_STATIC, token.KW_EXTERN:
		return true
	case token.IDENT:
		_, ok := p.typedefs[tok.Lit]
		return ok
	}
	return false
}

// parseDatatype parses a type-specifier followed by zero or more leading '*'
// (pointer depth); array brackets, if present, are parsed by the caller once
// the declared name is known (C's `int a[3]` attaches the brackets to the
// declarator, not the base type).
func (p *parser) parseDatatype() datatype.Datatype {
	var dt datatype.Datatype
	dt.Flags |= datatype.FlagIsSigned // default signedness; cleared by `unsigned`

	sawKind := false
loop:
	for {
		switch p.peek().Kind {
		case token.KW_CONST:
			p.next()
			dt.Flags |= datatype.FlagIsConst
		case token.KW_STATIC:
			p.next()
			dt.Flags |= datatype.FlagIsStatic
		case token.KW_EXTERN:
			p.next()
			dt.Flags |= datatype.FlagIsExtern
		case token.KW_SIGNED:
			p.next()
			dt.Flags |= datatype.FlagIsSigned
		case token.KW_UNSIGNED:
			p.next()
			dt.Flags &^= datatype.FlagIsSigned
		case token.KW_VOID:
			p.next()
			dt.Kind, dt.TypeStr, dt.ElemSize = datatype.Void, "void", 0
			sawKind = true
		case token.KW_CHAR:
			p.next()
			dt.Kind, dt.TypeStr, dt.ElemSize = datatype.Char, "char", 1
			sawKind = true
		case token.KW_SHORT:
			p.next()
			dt.Kind, dt.TypeStr, dt.ElemSize = datatype.Short, "short", 2
			sawKind = true
		case token.KW_INT:
			p.next()
			dt.Kind, dt.TypeStr, dt.ElemSize = datatype.Int, "int", 4
			sawKind = true
		case token.KW_LONG:
			p.next()
			dt.Kind, dt.TypeStr, dt.ElemSize = datatype.Long, "long", 4
			sawKind = true
		case token.KW_STRUCT, token.KW_UNION:
			p.parseStructOrUnionSpec(&dt)
			sawKind = true
		case token.IDENT:
			if sawKind {
				break loop
			}
			if td, ok := p.typedefs[p.peek().Lit]; ok {
				p.next()
				dt = td
				sawKind = true
				continue
			}
			break loop
		default:
			break loop
		}
	}

	if !sawKind {
		p.errorf(p.peek(), "expected a type, found %s", p.describe(p.peek()))
		panic(errPanicMode)
	}

	for p.isOperatorLit("*") {
		p.next()
		dt.PointerDepth++
	}
	if dt.PointerDepth > 0 {
		dt.Flags |= datatype.FlagIsPointer
	}
	return dt
}

// isOperatorLit reports whether the current token's literal text is lit,
// used for single-character operators the token Kind already pins down
// unambiguously ('*' is always token.STAR).
func (p *parser) isOperatorLit(lit string) bool {
	return p.peek().Kind == token.STAR && lit == "*"
}

// parseStructOrUnionSpec parses `struct NAME { fields }`, `struct NAME`, or
// `struct { fields }` (anonymous), filling dt's Kind/TypeStr/Struct/flags.
// A struct with a body is registered in p.structs/p.unions by tag name so a
// later bare reference (`struct point p;`) can find its layout.
func (p *parser) parseStructOrUnionSpec(dt *datatype.Datatype) {
	isUnion := p.peek().Kind == token.KW_UNION
	p.next()

	name := ""
	if p.at(token.IDENT) {
		name = p.next().Lit
	} else {
		dt.Flags |= datatype.FlagStructUnionNoName
	}

	var def *datatype.StructDef
	if p.at(token.LBRACE) {
		def = p.parseStructBody(name, isUnion)
		if name != "" {
			if isUnion {
				p.unions[name] = def
			} else {
				p.structs[name] = def
			}
		}
	} else if name != "" {
		if isUnion {
			def = p.unions[name]
		} else {
			def = p.structs[name]
		}
		if def == nil {
			// Forward reference to a struct/union whose body hasn't been seen
			// yet; record a placeholder so later field-offset lookups through
			// the resolver fail informatively rather than on a nil pointer.
			def = &datatype.StructDef{Name: name, IsUnion: isUnion}
		}
	}

	if isUnion {
		dt.Kind = datatype.Union
	} else {
		dt.Kind = datatype.Struct
	}
	dt.TypeStr = name
	dt.Struct = def
	if def != nil {
		dt.ElemSize = def.Size
	}
}

// parseStructBody parses the `{ field; field; ... }` body of a struct/union
// declaration and computes field offsets (packed sequentially for a struct,
// all aliased to offset 0 for a union) along with the aggregate size.
func (p *parser) parseStructBody(name string, isUnion bool) *datatype.StructDef {
	p.expect(token.LBRACE)
	def := &datatype.StructDef{Name: name, IsUnion: isUnion}

	offset := 0
	maxSize := 0
	for !p.at(token.RBRACE) && p.peek().Kind != token.EOF {
		fieldType := p.parseDatatype()
		for {
			fname, fdt := p.parseDeclaratorSuffix(fieldType)
			fieldOffset := 0
			if !isUnion {
				fieldOffset = offset
				offset += fdt.Size()
			}
			if fdt.Size() > maxSize {
				maxSize = fdt.Size()
			}
			def.Fields = append(def.Fields, datatype.Field{Name: fname, Type: fdt, Offset: fieldOffset})
			if _, ok := p.accept(token.COMMA); !ok {
				break
			}
		}
		p.expect(token.SEMI)
	}
	p.expect(token.RBRACE)

	if isUnion {
		def.Size = maxSize
	} else {
		def.Size = offset
	}
	return def
}

// parseDeclaratorSuffix parses the trailing '*'-stars and '[n]' brackets of
// one declarator within a comma-separated list sharing baseType, returning
// the declared name and its fully-formed datatype.
func (p *parser) parseDeclaratorSuffix(baseType datatype.Datatype) (string, datatype.Datatype) {
	dt := baseType
	for p.isOperatorLit("*") {
		p.next()
		dt.PointerDepth++
	}
	if dt.PointerDepth > 0 {
		dt.Flags |= datatype.FlagIsPointer
	}

	name := p.expect(token.IDENT).Lit

	var brackets []int
	for p.at(token.LBRACKET) {
		p.next()
		n := 0
		if p.at(token.NUMBER) {
			n = parseIntLit(p.next().Lit)
		}
		p.expect(token.RBRACKET)
		brackets = append(brackets, n)
	}
	if len(brackets) > 0 {
		dt.Flags |= datatype.FlagIsArray
		dt.Array.Brackets = brackets
		dt.Array.Size = datatype.ArraySizeFromIndex(dt.ElemSize, brackets, 0)
	}
	return name, dt
}
