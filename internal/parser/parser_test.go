package parser

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rosebud32/rosebudc/internal/ast"
	"github.com/rosebud32/rosebudc/internal/cpp"
	"github.com/rosebud32/rosebudc/internal/cpp/staticinclude"
	"github.com/rosebud32/rosebudc/internal/datatype"
	"github.com/rosebud32/rosebudc/internal/scanner"
	"github.com/rosebud32/rosebudc/internal/token"
)

func parseSrc(t *testing.T, src string) []ast.Stmt {
	t.Helper()
	fset := token.NewFileSet()
	toks, err := scanner.ScanFile(fset, "test.c", src)
	require.NoError(t, err)
	decls, err := ParseFile(fset, toks)
	require.NoError(t, err)
	return decls
}

func TestParseGlobalVarList(t *testing.T) {
	decls := parseSrc(t, "int a, b = 2, c;")
	require.Len(t, decls, 1)
	list, ok := decls[0].(*ast.VarListDecl)
	require.True(t, ok)
	require.Len(t, list.Vars, 3)
	require.Equal(t, "a", list.Vars[0].Name)
	require.Nil(t, list.Vars[0].Init)
	require.Equal(t, "b", list.Vars[1].Name)
	require.NotNil(t, list.Vars[1].Init)
	num, ok := list.Vars[1].Init.(*ast.NumberExpr)
	require.True(t, ok)
	require.EqualValues(t, 2, num.Value)
}

func TestParseSingleVarDecl(t *testing.T) {
	decls := parseSrc(t, "int x = 5;")
	require.Len(t, decls, 1)
	v, ok := decls[0].(*ast.VarDecl)
	require.True(t, ok)
	require.Equal(t, "x", v.Name)
	require.Equal(t, datatype.Int, v.Type.Kind)
}

func TestParsePointerAndArrayDeclarators(t *testing.T) {
	decls := parseSrc(t, "int *p; int arr[10];")
	require.Len(t, decls, 2)

	p := decls[0].(*ast.VarDecl)
	require.True(t, p.Type.IsPointer())
	require.Equal(t, 1, p.Type.PointerDepth)

	arr := decls[1].(*ast.VarDecl)
	require.True(t, arr.Type.IsArray())
	require.Equal(t, []int{10}, arr.Type.Array.Brackets)
	require.Equal(t, 40, arr.Type.Array.Size)
}

func TestParseStructWithInlineVar(t *testing.T) {
	decls := parseSrc(t, "struct point { int x; int y; } origin;")
	require.Len(t, decls, 1)
	v, ok := decls[0].(*ast.VarDecl)
	require.True(t, ok)
	require.Equal(t, "origin", v.Name)
	require.Equal(t, datatype.Struct, v.Type.Kind)
	require.NotNil(t, v.Type.Struct)
	require.Len(t, v.Type.Struct.Fields, 2)
	require.Equal(t, 0, v.Type.Struct.Fields[0].Offset)
	require.Equal(t, 4, v.Type.Struct.Fields[1].Offset)
	require.Equal(t, 8, v.Type.Struct.Size)
}

func TestParseBareStructTagDecl(t *testing.T) {
	decls := parseSrc(t, "struct point { int x; int y; };\nstruct point p;")
	require.Len(t, decls, 2)
	_, ok := decls[0].(*ast.StructUnionDecl)
	require.True(t, ok)

	v, ok := decls[1].(*ast.VarDecl)
	require.True(t, ok)
	require.Equal(t, "p", v.Name)
	require.NotNil(t, v.Type.Struct)
	require.Equal(t, 8, v.Type.Struct.Size)
}

func TestParseUnionOffsetsAllZero(t *testing.T) {
	decls := parseSrc(t, "union cell { int i; char c; } box;")
	v := decls[0].(*ast.VarDecl)
	require.NotNil(t, v.Type.Struct)
	require.True(t, v.Type.Struct.IsUnion)
	require.Equal(t, 0, v.Type.Struct.Fields[0].Offset)
	require.Equal(t, 0, v.Type.Struct.Fields[1].Offset)
	require.Equal(t, 4, v.Type.Struct.Size)
}

func TestParseTypedef(t *testing.T) {
	decls := parseSrc(t, "typedef int myint;\nmyint x;")
	require.Len(t, decls, 1)
	v := decls[0].(*ast.VarDecl)
	require.Equal(t, datatype.Int, v.Type.Kind)
}

func TestParseFuncPrototypeVsDefinition(t *testing.T) {
	decls := parseSrc(t, "int add(int a, int b);\nint add(int a, int b) { return a + b; }")
	require.Len(t, decls, 2)

	proto := decls[0].(*ast.FuncDecl)
	require.Nil(t, proto.Body)
	require.Len(t, proto.Args, 2)

	def := decls[1].(*ast.FuncDecl)
	require.NotNil(t, def.Body)
	require.Len(t, def.Body.Stmts, 1)
}

func TestParseVariadicFunction(t *testing.T) {
	decls := parseSrc(t, "int sum(int num, ...);")
	fn := decls[0].(*ast.FuncDecl)
	require.True(t, fn.Variadic)
	require.Len(t, fn.Args, 1)
	require.Equal(t, "num", fn.Args[0].Name)
}

func TestParseIfElseStmt(t *testing.T) {
	decls := parseSrc(t, "int f() { if (1) return 1; else return 0; }")
	fn := decls[0].(*ast.FuncDecl)
	ifs := fn.Body.Stmts[0].(*ast.IfStmt)
	require.NotNil(t, ifs.Cond)
	require.NotNil(t, ifs.Then)
	require.NotNil(t, ifs.Else)
}

func TestParseForLoop(t *testing.T) {
	decls := parseSrc(t, "int f() { int i; for (i = 0; i < 10; i = i + 1) i; }")
	fn := decls[0].(*ast.FuncDecl)
	require.Len(t, fn.Body.Stmts, 2)
	forStmt := fn.Body.Stmts[1].(*ast.ForStmt)
	require.NotNil(t, forStmt.Init)
	require.NotNil(t, forStmt.Cond)
	require.NotNil(t, forStmt.Post)
}

func TestParseForLoopWithDeclaredInit(t *testing.T) {
	decls := parseSrc(t, "int f() { for (int i = 0; i < 10; i = i + 1) ; }")
	fn := decls[0].(*ast.FuncDecl)
	forStmt := fn.Body.Stmts[0].(*ast.ForStmt)
	_, ok := forStmt.Init.(*ast.VarDecl)
	require.True(t, ok)
}

func TestParseForLoopAllPartsEmpty(t *testing.T) {
	decls := parseSrc(t, "int f() { for (;;) ; }")
	fn := decls[0].(*ast.FuncDecl)
	forStmt := fn.Body.Stmts[0].(*ast.ForStmt)
	require.Nil(t, forStmt.Init)
	require.Nil(t, forStmt.Cond)
	require.Nil(t, forStmt.Post)
}

func TestParseWhileAndDoWhile(t *testing.T) {
	decls := parseSrc(t, "int f() { while (1) ; do ; while (1); }")
	fn := decls[0].(*ast.FuncDecl)
	require.Len(t, fn.Body.Stmts, 2)
	_, ok := fn.Body.Stmts[0].(*ast.WhileStmt)
	require.True(t, ok)
	_, ok = fn.Body.Stmts[1].(*ast.DoWhileStmt)
	require.True(t, ok)
}

func TestParseSwitchCaseDefault(t *testing.T) {
	decls := parseSrc(t, `int f() {
		switch (1) {
		case 1:
			break;
		case 2:
			break;
		default:
			break;
		}
	}`)
	fn := decls[0].(*ast.FuncDecl)
	sw := fn.Body.Stmts[0].(*ast.SwitchStmt)
	require.Len(t, sw.Body.Stmts, 6)
	_, ok := sw.Body.Stmts[0].(*ast.CaseStmt)
	require.True(t, ok)
	_, ok = sw.Body.Stmts[4].(*ast.DefaultStmt)
	require.True(t, ok)
}

func TestParseBreakContinueGotoLabel(t *testing.T) {
	decls := parseSrc(t, "int f() { start: continue; break; goto start; }")
	fn := decls[0].(*ast.FuncDecl)
	require.Len(t, fn.Body.Stmts, 4)
	_, ok := fn.Body.Stmts[0].(*ast.LabelStmt)
	require.True(t, ok)
	_, ok = fn.Body.Stmts[1].(*ast.ContinueStmt)
	require.True(t, ok)
	_, ok = fn.Body.Stmts[2].(*ast.BreakStmt)
	require.True(t, ok)
	g, ok := fn.Body.Stmts[3].(*ast.GotoStmt)
	require.True(t, ok)
	require.Equal(t, "start", g.Label)
}

func TestParseCastExpr(t *testing.T) {
	decls := parseSrc(t, "int f() { return (int)x; }")
	fn := decls[0].(*ast.FuncDecl)
	ret := fn.Body.Stmts[0].(*ast.ReturnStmt)
	cast, ok := ret.X.(*ast.CastExpr)
	require.True(t, ok)
	require.Equal(t, datatype.Int, cast.Type.Kind)
	ident, ok := cast.Inner.(*ast.IdentExpr)
	require.True(t, ok)
	require.Equal(t, "x", ident.Name)
}

func TestParseNestedCastExpr(t *testing.T) {
	decls := parseSrc(t, "int f() { return (int)(char)x; }")
	fn := decls[0].(*ast.FuncDecl)
	ret := fn.Body.Stmts[0].(*ast.ReturnStmt)
	outer := ret.X.(*ast.CastExpr)
	require.Equal(t, datatype.Int, outer.Type.Kind)
	inner := outer.Inner.(*ast.CastExpr)
	require.Equal(t, datatype.Char, inner.Type.Kind)
}

func TestParseCastOfPointerType(t *testing.T) {
	decls := parseSrc(t, "int f() { return (char*)p; }")
	fn := decls[0].(*ast.FuncDecl)
	ret := fn.Body.Stmts[0].(*ast.ReturnStmt)
	cast := ret.X.(*ast.CastExpr)
	require.True(t, cast.Type.IsPointer())
}

func TestParseSizeofTypeFoldsToNumber(t *testing.T) {
	decls := parseSrc(t, "int f() { return sizeof(int); }")
	fn := decls[0].(*ast.FuncDecl)
	ret := fn.Body.Stmts[0].(*ast.ReturnStmt)
	num, ok := ret.X.(*ast.NumberExpr)
	require.True(t, ok)
	require.EqualValues(t, 4, num.Value)
}

func TestParseArraySubscriptExpr(t *testing.T) {
	decls := parseSrc(t, "int f() { return arr[i + 1]; }")
	fn := decls[0].(*ast.FuncDecl)
	ret := fn.Body.Stmts[0].(*ast.ReturnStmt)
	e := ret.X.(*ast.ExpressionExpr)
	require.Equal(t, "[]", e.Op)
	require.IsType(t, &ast.IdentExpr{}, e.Left)
	paren, ok := e.Right.(*ast.ParenExpr)
	require.True(t, ok)
	require.IsType(t, &ast.ExpressionExpr{}, paren.Inner)
}

func TestParseFunctionCallExpr(t *testing.T) {
	decls := parseSrc(t, "int f() { return add(1, 2); }")
	fn := decls[0].(*ast.FuncDecl)
	ret := fn.Body.Stmts[0].(*ast.ReturnStmt)
	call := ret.X.(*ast.ExpressionExpr)
	require.Equal(t, "()", call.Op)
	callee := call.Left.(*ast.IdentExpr)
	require.Equal(t, "add", callee.Name)
	paren := call.Right.(*ast.ParenExpr)
	args := paren.Inner.(*ast.ExpressionExpr)
	require.Equal(t, ",", args.Op)
}

func TestParseChainedArraySubscript(t *testing.T) {
	decls := parseSrc(t, "int f() { return m[i][j]; }")
	fn := decls[0].(*ast.FuncDecl)
	ret := fn.Body.Stmts[0].(*ast.ReturnStmt)
	outer := ret.X.(*ast.ExpressionExpr)
	require.Equal(t, "[]", outer.Op)
	inner := outer.Left.(*ast.ExpressionExpr)
	require.Equal(t, "[]", inner.Op)
}

// staticIncludeResolver satisfies cpp.IncludeResolver for <...> includes
// using the baked-in header registry only, mirroring how the real
// compile driver wires a filesystem resolver in alongside it.
type staticIncludeResolver struct{}

func (staticIncludeResolver) Resolve(name string, angled bool) (string, bool) {
	if !angled {
		return "", false
	}
	return staticinclude.Lookup(name)
}

func TestParseVariadicCallThroughStdargMacro(t *testing.T) {
	src := "#include <stdarg.h>\n" +
		"int sum(int num, ...) {\n" +
		"	va_list args;\n" +
		"	va_start(args, num);\n" +
		"	int total = 0;\n" +
		"	total = total + va_arg(args, int);\n" +
		"	va_end(args);\n" +
		"	return total;\n" +
		"}\n"

	fset := token.NewFileSet()
	toks, err := scanner.ScanFile(fset, "test.c", src)
	require.NoError(t, err)

	p := cpp.New(fset, staticIncludeResolver{})
	expanded, err := p.Process("test.c", toks)
	require.NoError(t, err)

	decls, err := ParseFile(fset, expanded)
	require.NoError(t, err)

	// stdarg.h's typedef contributes no declaration node and its three
	// native-hook prototypes (va_start/__builtin_va_arg/va_end) each land as
	// their own top-level FuncDecl alongside sum, so sum must be found by
	// name rather than assumed to be decls[0].
	var fn *ast.FuncDecl
	for _, d := range decls {
		if f, ok := d.(*ast.FuncDecl); ok && f.Name == "sum" {
			fn = f
		}
	}
	require.NotNil(t, fn)
	require.True(t, fn.Variadic)

	// va_arg(args, int) must have expanded and folded down to
	// __builtin_va_arg(args, sizeof(int)) with sizeof(int) already a literal
	// 4, not a runtime expression, since __builtin_va_arg's native codegen
	// hook expects a constant size operand.
	assign := fn.Body.Stmts[3].(*ast.ExprStmt)
	bin := assign.X.(*ast.ExpressionExpr)
	require.Equal(t, "=", bin.Op)
	plus := bin.Right.(*ast.ExpressionExpr)
	require.Equal(t, "+", plus.Op)
	call := plus.Right.(*ast.ExpressionExpr)
	require.Equal(t, "()", call.Op)
	callee := call.Left.(*ast.IdentExpr)
	require.Equal(t, "__builtin_va_arg", callee.Name)

	argsParen := call.Right.(*ast.ParenExpr)
	argList := argsParen.Inner.(*ast.ExpressionExpr)
	require.Equal(t, ",", argList.Op)
	sizeNum := argList.Right.(*ast.NumberExpr)
	require.EqualValues(t, 4, sizeNum.Value)
}
