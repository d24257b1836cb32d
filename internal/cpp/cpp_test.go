package cpp

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rosebud32/rosebudc/internal/scanner"
	"github.com/rosebud32/rosebudc/internal/token"
)

func runCPP(t *testing.T, src string) []token.Token {
	t.Helper()
	fset := token.NewFileSet()
	toks, err := scanner.ScanFile(fset, "test.c", src)
	require.NoError(t, err)

	p := New(fset, nil)
	out, err := p.Process("test.c", toks)
	require.NoError(t, err)
	return out
}

func lits(toks []token.Token) []string {
	var out []string
	for _, t := range toks {
		if t.Kind == token.EOF {
			continue
		}
		out = append(out, t.Lit)
	}
	return out
}

func TestObjectLikeMacroExpansion(t *testing.T) {
	out := runCPP(t, "#define MAX 100\nint x = MAX;")
	require.Equal(t, []string{"int", "x", "=", "100", ";"}, lits(out))
}

func TestFunctionLikeMacroExpansion(t *testing.T) {
	out := runCPP(t, "#define SQ(x) ((x)*(x))\nint y = SQ(3+1);")
	require.Equal(t, []string{
		"int", "y", "=", "(", "(", "3", "+", "1", ")", "*", "(", "3", "+", "1", ")", ")", ";",
	}, lits(out))
}

func TestIfdefSkipsInactiveBranch(t *testing.T) {
	out := runCPP(t, "#define FEATURE\n#ifdef FEATURE\nint a;\n#else\nint b;\n#endif")
	require.Equal(t, []string{"int", "a", ";"}, lits(out))
}

func TestIfndefTakesFirstBranchWhenUndefined(t *testing.T) {
	out := runCPP(t, "#ifndef FEATURE\nint a;\n#else\nint b;\n#endif")
	require.Equal(t, []string{"int", "a", ";"}, lits(out))
}

func TestIfExpressionArithmeticAndDefined(t *testing.T) {
	out := runCPP(t, "#define VERSION 2\n#if VERSION >= 2 && defined(VERSION)\nint ok;\n#endif")
	require.Equal(t, []string{"int", "ok", ";"}, lits(out))
}

func TestElifChain(t *testing.T) {
	out := runCPP(t, "#define V 2\n#if V == 1\nint a;\n#elif V == 2\nint b;\n#else\nint c;\n#endif")
	require.Equal(t, []string{"int", "b", ";"}, lits(out))
}

func TestUndef(t *testing.T) {
	out := runCPP(t, "#define X 1\n#undef X\n#ifdef X\nint yes;\n#else\nint no;\n#endif")
	require.Equal(t, []string{"int", "no", ";"}, lits(out))
}

func TestStringizeOperator(t *testing.T) {
	out := runCPP(t, "#define STR(x) #x\nchar *s = STR(hello);")
	require.Contains(t, lits(out), `hello`)
}

func TestTokenPasteOperator(t *testing.T) {
	out := runCPP(t, "#define CAT(a, b) a##b\nint CAT(fo, o);")
	require.Equal(t, []string{"int", "foo", ";"}, lits(out))
}

func TestLineBuiltin(t *testing.T) {
	out := runCPP(t, "int l = __LINE__;")
	require.Equal(t, []string{"int", "l", "=", "1", ";"}, lits(out))
}

func TestIncludeStaticHeader(t *testing.T) {
	out := runCPP(t, `#include <stdarg.h>`)
	require.Contains(t, lits(out), "va_list")
	require.Contains(t, lits(out), "va_start")
}

func TestErrorDirectiveFails(t *testing.T) {
	fset := token.NewFileSet()
	toks, err := scanner.ScanFile(fset, "test.c", "#error boom")
	require.NoError(t, err)
	p := New(fset, nil)
	_, err = p.Process("test.c", toks)
	require.Error(t, err)
}
