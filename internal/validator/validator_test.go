package validator

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rosebud32/rosebudc/internal/parser"
	"github.com/rosebud32/rosebudc/internal/scanner"
	"github.com/rosebud32/rosebudc/internal/token"
)

func checkSrc(t *testing.T, src string) error {
	t.Helper()
	fset := token.NewFileSet()
	toks, err := scanner.ScanFile(fset, "test.c", src)
	require.NoError(t, err)
	decls, err := parser.ParseFile(fset, toks)
	require.NoError(t, err)
	return Check(fset, decls)
}

func TestCheckValidProgramPasses(t *testing.T) {
	err := checkSrc(t, `
		int add(int a, int b) { return a + b; }
		int main() {
			int x = 1;
			int y = add(x, 2);
			if (y > 0) {
				int z = y;
				return z;
			}
			return 0;
		}
	`)
	require.NoError(t, err)
}

func TestCheckDuplicateFunctionDefinition(t *testing.T) {
	err := checkSrc(t, `
		int add(int a, int b) { return a + b; }
		int add(int a, int b) { return a - b; }
	`)
	require.Error(t, err)
	require.Contains(t, err.Error(), `"add"`)
}

func TestCheckPrototypeThenDefinitionIsFine(t *testing.T) {
	err := checkSrc(t, `
		int add(int a, int b);
		int add(int a, int b) { return a + b; }
	`)
	require.NoError(t, err)
}

func TestCheckRepeatedPrototypeIsFine(t *testing.T) {
	err := checkSrc(t, `
		int add(int a, int b);
		int add(int a, int b);
	`)
	require.NoError(t, err)
}

func TestCheckDuplicateGlobalVar(t *testing.T) {
	err := checkSrc(t, `
		int counter;
		int counter;
	`)
	require.Error(t, err)
	require.Contains(t, err.Error(), `"counter"`)
}

func TestCheckGlobalVarCollidesWithFunction(t *testing.T) {
	err := checkSrc(t, `
		int add(int a, int b) { return a + b; }
		int add;
	`)
	require.Error(t, err)
}

func TestCheckVoidFunctionReturnsValue(t *testing.T) {
	err := checkSrc(t, `
		void report() {
			return 1;
		}
	`)
	require.Error(t, err)
	require.Contains(t, err.Error(), "void")
}

func TestCheckVoidFunctionBareReturnIsFine(t *testing.T) {
	err := checkSrc(t, `
		void report() {
			return;
		}
	`)
	require.NoError(t, err)
}

func TestCheckVariableRedefinedInSameScope(t *testing.T) {
	err := checkSrc(t, `
		int main() {
			int x = 1;
			int x = 2;
			return x;
		}
	`)
	require.Error(t, err)
	require.Contains(t, err.Error(), "redefined")
}

func TestCheckShadowingInNestedScopeIsFine(t *testing.T) {
	err := checkSrc(t, `
		int main() {
			int x = 1;
			{
				int x = 2;
				x = x + 1;
			}
			return x;
		}
	`)
	require.NoError(t, err)
}

func TestCheckDuplicateParameterNames(t *testing.T) {
	err := checkSrc(t, `
		int add(int a, int a) { return a; }
	`)
	require.Error(t, err)
	require.Contains(t, err.Error(), "redefined")
}

func TestCheckUnresolvedIdentifier(t *testing.T) {
	err := checkSrc(t, `
		int main() {
			return unknown_name;
		}
	`)
	require.Error(t, err)
	require.Contains(t, err.Error(), "unresolved")
	require.Contains(t, err.Error(), "unknown_name")
}

func TestCheckForLoopScopeDoesNotLeak(t *testing.T) {
	err := checkSrc(t, `
		int main() {
			for (int i = 0; i < 10; i = i + 1) {
				int j = i;
			}
			return i;
		}
	`)
	require.Error(t, err)
	require.Contains(t, err.Error(), "unresolved")
}

func TestCheckStructFieldAccessDoesNotRequireFieldInScope(t *testing.T) {
	err := checkSrc(t, `
		struct point { int x; int y; };
		int main() {
			struct point p;
			p.x = 1;
			return p.x;
		}
	`)
	require.NoError(t, err)
}

func TestCheckStructArrowAccessDoesNotRequireFieldInScope(t *testing.T) {
	err := checkSrc(t, `
		struct point { int x; int y; };
		int main() {
			struct point p;
			struct point *q = &p;
			q->x = 1;
			return q->x;
		}
	`)
	require.NoError(t, err)
}

func TestCheckFunctionCallOfUndeclaredNameIsUnresolved(t *testing.T) {
	err := checkSrc(t, `
		int main() {
			return missing_function(1, 2);
		}
	`)
	require.Error(t, err)
	require.Contains(t, err.Error(), "unresolved")
}

func TestCheckWhileAndSwitchBodiesValidateConditions(t *testing.T) {
	err := checkSrc(t, `
		int main() {
			int x = 0;
			while (x < 10) {
				x = x + 1;
			}
			switch (x) {
			case 1:
				x = 2;
				break;
			default:
				x = 3;
				break;
			}
			return x;
		}
	`)
	require.NoError(t, err)
}
