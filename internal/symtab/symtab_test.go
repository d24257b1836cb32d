package symtab

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegisterAndLookup(t *testing.T) {
	tab := New()
	tab.PushTable()

	sym := &Symbol{Kind: NodeSymbol, Name: "x"}
	require.NoError(t, tab.Register(sym))

	got, ok := tab.Lookup("x")
	require.True(t, ok)
	require.Same(t, sym, got)

	_, ok = tab.Lookup("y")
	require.False(t, ok)
}

func TestRegisterDuplicate(t *testing.T) {
	tab := New()
	tab.PushTable()
	require.NoError(t, tab.Register(&Symbol{Name: "x"}))
	err := tab.Register(&Symbol{Name: "x"})
	require.ErrorIs(t, err, ErrDuplicateSymbol)
}

func TestPushPopTableScoping(t *testing.T) {
	tab := New()
	tab.PushTable()
	require.NoError(t, tab.Register(&Symbol{Name: "outer"}))

	tab.PushTable()
	require.NoError(t, tab.Register(&Symbol{Name: "inner"}))
	_, ok := tab.Lookup("outer")
	require.False(t, ok, "Lookup only scans the top table")

	_, ok = tab.LookupAny("outer")
	require.True(t, ok)

	tab.PopTable()
	_, ok = tab.Lookup("inner")
	require.False(t, ok)
	_, ok = tab.Lookup("outer")
	require.True(t, ok)
}

func TestNativeFunctionSymbol(t *testing.T) {
	tab := New()
	tab.PushTable()
	require.NoError(t, tab.Register(&Symbol{Kind: NativeFunctionSymbol, Name: "va_start"}))
	sym, ok := tab.Lookup("va_start")
	require.True(t, ok)
	require.Equal(t, NativeFunctionSymbol, sym.Kind)
	require.Nil(t, sym.Node)
}
