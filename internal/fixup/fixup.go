// Package fixup implements a registration-and-retry mechanism for forward
// references: a label or symbol used before its definition registers a
// fixup describing how to resolve it, and the driver retries every
// unresolved fixup until the whole set is resolved or no further progress
// is made (spec.md §4.8, C8).
package fixup

// Flag is a bitset of per-fixup state.
type Flag int

const (
	// FlagResolved marks a fixup whose Fix callback has already succeeded.
	FlagResolved Flag = 1 << iota
)

// FixFunc attempts to resolve a fixup, returning true on success. It may be
// called more than once: each call represents one retry attempt.
type FixFunc func(f *Fixup) bool

// EndFunc runs once, when the fixup is released, whether or not it ever
// resolved (e.g. to emit an "undefined reference" diagnostic for one that
// never did).
type EndFunc func(f *Fixup)

// Config describes one fixup's behavior.
type Config struct {
	Fix     FixFunc
	End     EndFunc
	Private any
}

// Fixup is one registered forward reference awaiting resolution.
type Fixup struct {
	flags  Flag
	system *System
	config Config
}

// Config returns the fixup's registered configuration.
func (f *Fixup) Config() *Config { return &f.config }

// Private returns the private value the fixup was registered with.
func (f *Fixup) Private() any { return f.config.Private }

// Resolved reports whether this fixup's Fix callback has already
// succeeded.
func (f *Fixup) Resolved() bool { return f.flags&FlagResolved != 0 }

// Resolve calls the fixup's Fix callback once and marks it resolved on
// success.
func (f *Fixup) Resolve() bool {
	if f.config.Fix(f) {
		f.flags |= FlagResolved
		return true
	}
	return false
}

func (f *Fixup) free() {
	if f.config.End != nil {
		f.config.End(f)
	}
}

// System owns every fixup registered for one compilation unit.
type System struct {
	fixups []*Fixup
}

// NewSystem returns an empty fixup system.
func NewSystem() *System {
	return &System{}
}

// Register adds a fixup with the given configuration and returns it.
func (s *System) Register(config Config) *Fixup {
	f := &Fixup{system: s, config: config}
	s.fixups = append(s.fixups, f)
	return f
}

// UnresolvedCount returns the number of fixups not yet resolved.
func (s *System) UnresolvedCount() int {
	count := 0
	for _, f := range s.fixups {
		if !f.Resolved() {
			count++
		}
	}
	return count
}

// resolvePass attempts every unresolved fixup once and reports how many
// newly resolved during this pass.
func (s *System) resolvePass() int {
	resolved := 0
	for _, f := range s.fixups {
		if f.Resolved() {
			continue
		}
		if f.Resolve() {
			resolved++
		}
	}
	return resolved
}

// Resolve retries every unresolved fixup, pass after pass, until either
// every fixup resolves or a full pass makes no further progress (a forward
// reference that will never resolve, e.g. a genuinely undefined label).
// It reports success only when every fixup ended up resolved.
func (s *System) Resolve() bool {
	for {
		if s.UnresolvedCount() == 0 {
			return true
		}
		if s.resolvePass() == 0 {
			return false
		}
	}
}

// Free releases every registered fixup, running each one's End callback
// regardless of whether it ever resolved.
func (s *System) Free() {
	for _, f := range s.fixups {
		f.free()
	}
	s.fixups = nil
}
