package cpp

import "github.com/rosebud32/rosebudc/internal/token"

// Macro is one #define'd object-like or function-like macro.
type Macro struct {
	Name           string
	FunctionLike   bool
	Params         []string
	Body           []token.Token
	DefinedAtLine  int
}

func (m *Macro) paramIndex(name string) (int, bool) {
	for i, p := range m.Params {
		if p == name {
			return i, true
		}
	}
	return 0, false
}

// table is the macro symbol table, a plain map (not swiss-backed, unlike
// internal/symtab): the set of live macros at any point in one translation
// unit is small and churns constantly via #define/#undef, unlike the
// long-lived, bulk-populated declaration tables swiss.Map is suited for.
type table struct {
	macros map[string]*Macro
}

func newTable() *table { return &table{macros: make(map[string]*Macro)} }

func (t *table) define(m *Macro)      { t.macros[m.Name] = m }
func (t *table) undef(name string)    { delete(t.macros, name) }
func (t *table) lookup(name string) (*Macro, bool) {
	m, ok := t.macros[name]
	return m, ok
}
func (t *table) defined(name string) bool {
	_, ok := t.macros[name]
	return ok
}
