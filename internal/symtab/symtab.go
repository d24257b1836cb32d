// Package symtab implements the name-resolution symbol table stack
// (spec.md §3, §4.3): a stack of name->symbol tables, independent from the
// resolver's scope stack (internal/resolver owns that one, since its
// entities carry resolved memory addresses rather than bare symbol
// references).
//
// Each table frame is backed by a swiss.Map, the same hash-map
// implementation the teacher (mna/nenuphar) uses for its machine.Map type,
// rather than a builtin Go map.
package symtab

import (
	"fmt"

	"github.com/dolthub/swiss"
	"golang.org/x/exp/slices"

	"github.com/rosebud32/rosebudc/internal/ast"
)

// ErrDuplicateSymbol is returned by Register when name already exists in the
// top table.
var ErrDuplicateSymbol = fmt.Errorf("duplicate symbol")

// Kind tags the variant of a Symbol.
type Kind uint8

const (
	// NodeSymbol wraps a declaration AST node (variable, function, struct/
	// union, typedef).
	NodeSymbol Kind = iota
	// NativeFunctionSymbol names a host-provided function such as va_start,
	// __builtin_va_arg or va_end (spec.md §4.3) that the code generator
	// lowers specially instead of emitting a call instruction.
	NativeFunctionSymbol
)

// Symbol is a tagged variant referenced only by name; see Kind.
type Symbol struct {
	Kind Kind
	Name string
	Node ast.Node // set when Kind == NodeSymbol
}

// frame pairs a swiss.Map lookup table with the insertion-order name list
// Names needs: swiss.Map (like strtab's interning map) makes no iteration-
// order guarantee, so the name list is tracked alongside it rather than
// recovered from the map after the fact.
type frame struct {
	m     *swiss.Map[string, *Symbol]
	names []string
}

// Table is a stack of name->symbol frames.
type Table struct {
	frames []*frame
}

// New returns an empty symbol table stack.
func New() *Table { return &Table{} }

// PushTable creates a new, empty top table.
func (t *Table) PushTable() {
	t.frames = append(t.frames, &frame{m: swiss.NewMap[string, *Symbol](8)})
}

// PopTable ends (discards) the top table.
func (t *Table) PopTable() {
	if len(t.frames) == 0 {
		return
	}
	t.frames = t.frames[:len(t.frames)-1]
}

// Lookup performs a linear scan of the top table only, first-match wins
// (spec.md §4.3 says lookup is scoped to the top table; callers walk the
// resolver's scope stack for cross-scope name resolution of addressable
// entities -- the symbol table here tracks declarations, not addresses).
func (t *Table) Lookup(name string) (*Symbol, bool) {
	if len(t.frames) == 0 {
		return nil, false
	}
	return t.frames[len(t.frames)-1].m.Get(name)
}

// LookupAny scans frames from innermost to outermost, returning the first
// match. This is the variant used when a name may be declared in an
// enclosing block rather than only the current one.
func (t *Table) LookupAny(name string) (*Symbol, bool) {
	for i := len(t.frames) - 1; i >= 0; i-- {
		if sym, ok := t.frames[i].m.Get(name); ok {
			return sym, true
		}
	}
	return nil, false
}

// Register adds sym to the top table, failing with ErrDuplicateSymbol if the
// name is already present there.
func (t *Table) Register(sym *Symbol) error {
	if len(t.frames) == 0 {
		t.PushTable()
	}
	top := t.frames[len(t.frames)-1]
	if _, ok := top.m.Get(sym.Name); ok {
		return fmt.Errorf("%w: %s", ErrDuplicateSymbol, sym.Name)
	}
	top.m.Put(sym.Name, sym)
	top.names = append(top.names, sym.Name)
	return nil
}

// Depth returns the number of active table frames.
func (t *Table) Depth() int { return len(t.frames) }

// Names returns every symbol name across every active frame, deduplicated
// and sorted, for the CLI's --ast debug dump (spec.md §6): swiss.Map
// doesn't guarantee iteration order, so the frame-local walk below is
// followed by golang.org/x/exp/slices.Sort (plus Compact for the
// duplicates a name shadowed in an inner frame produces) to give the dump
// a stable, reproducible order run to run.
func (t *Table) Names() []string {
	var names []string
	for _, f := range t.frames {
		names = append(names, f.names...)
	}
	slices.Sort(names)
	return slices.Compact(names)
}
