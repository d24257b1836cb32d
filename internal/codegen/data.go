package codegen

import (
	"fmt"

	"github.com/rosebud32/rosebudc/internal/ast"
	"github.com/rosebud32/rosebudc/internal/datatype"
)

// sizeDirective returns the NASM size directive for a value of n bytes:
// db/dw/dd/dq for the four machine widths, else a `times N db` byte-fill
// for an aggregate.
func sizeDirective(n int) string {
	switch n {
	case 1:
		return "db"
	case 2:
		return "dw"
	case 4:
		return "dd"
	case 8:
		return "dq"
	default:
		return fmt.Sprintf("times %d db", n)
	}
}

// emitGlobalVar emits one `.data` entry: `name: <directive> <initializer>`.
// Floating-point types are not in this compiler's primitive type set
// (spec.md §6's source language surface is integers/pointers/arrays/
// structs/unions only), so FlagIsLiteral float literals never reach here;
// the one remaining unsupported-type case is a struct/union field whose
// own layout the validator already rejected, so this check exists purely
// as the documented CodegenError backstop spec.md §7 calls for.
func (g *Generator) emitGlobalVar(v *ast.VarDecl) error {
	if v.Type.Kind == datatype.Unknown {
		return fmt.Errorf("%w: %s has no resolvable type", ErrUnsupportedType, v.Name)
	}

	size := v.Type.Size()
	directive := sizeDirective(size)

	switch {
	case v.Init == nil:
		fmt.Fprintf(&g.data, "%s: %s 0\n", v.Name, directive)
	case v.Type.IsArray() && size != datatype.Word:
		// An array initializer with no per-element literal support in this
		// subset is zero-filled; individual string/number element
		// initializers are handled by the statement-level path inside
		// function bodies, not at the global scope.
		fmt.Fprintf(&g.data, "%s: %s 0\n", v.Name, directive)
	default:
		init, err := g.globalInitializer(v.Init)
		if err != nil {
			return err
		}
		fmt.Fprintf(&g.data, "%s: %s %s\n", v.Name, directive, init)
	}

	g.proc.NewEntityForVarNode(v.Name, v.Type, v, nil, 0)
	return nil
}

func (g *Generator) globalInitializer(init ast.Expr) (string, error) {
	switch n := init.(type) {
	case *ast.NumberExpr:
		return fmt.Sprintf("%d", n.Value), nil
	case *ast.StringExpr:
		return g.strings.Intern(n.Value), nil
	case *ast.ParenExpr:
		return g.globalInitializer(n.Inner)
	default:
		return "", fmt.Errorf("%w: unsupported global initializer", ErrUnsupportedType)
	}
}
