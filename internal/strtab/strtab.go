// Package strtab interns string literals into NASM .rodata labels
// (spec.md §4.7's "string literals" subsection). A literal is assigned a
// label the first time its exact content is seen; every later reference to
// the same content reuses that label instead of emitting a duplicate
// string.
package strtab

import (
	"fmt"
	"strings"

	"github.com/dolthub/swiss"
	"golang.org/x/exp/slices"
)

// Table interns string literal content to `.rodata` labels, keyed by
// content so two identical literals anywhere in the program share one
// label. Backed by swiss.Map rather than a builtin Go map: unlike
// internal/cpp's macro table (small, short-lived, never a measured
// bottleneck), this table is sized by the whole program's string literal
// content and its lookups sit on the hot path of every string-valued
// expression the generator emits.
type Table struct {
	labels *swiss.Map[string, string]
	order  []string // content, in first-seen order, for deterministic .rodata emission
	next   int
}

// New returns an empty string table.
func New() *Table {
	return &Table{labels: swiss.NewMap[string, string](16)}
}

// Intern returns the label for s, creating one of the form str_<id> the
// first time s is seen.
func (t *Table) Intern(s string) string {
	if label, ok := t.labels.Get(s); ok {
		return label
	}
	label := fmt.Sprintf("str_%d", t.next)
	t.next++
	t.labels.Put(s, label)
	t.order = append(t.order, s)
	return label
}

// Entry is one interned string and the label it was assigned.
type Entry struct {
	Label   string
	Content string
}

// Entries returns every interned string in first-seen order, the order
// .rodata emission walks them in.
func (t *Table) Entries() []Entry {
	entries := make([]Entry, 0, len(t.order))
	for _, content := range t.order {
		label, _ := t.labels.Get(content)
		entries = append(entries, Entry{Label: label, Content: content})
	}
	return entries
}

// SortedEntries returns the same entries as Entries, but ordered by label
// rather than first-seen position, for the CLI's --ast debug dump: the
// `.rodata` section itself must keep first-seen order (some string's label
// is only known once the generator has already emitted a reference to it
// earlier in `.text`), but a diagnostic listing reads better sorted and
// reproducibly so.
func (t *Table) SortedEntries() []Entry {
	entries := t.Entries()
	byLabel := make(map[string]Entry, len(entries))
	labels := make([]string, 0, len(entries))
	for _, e := range entries {
		byLabel[e.Label] = e
		labels = append(labels, e.Label)
	}
	slices.Sort(labels)

	sorted := make([]Entry, len(labels))
	for i, label := range labels {
		sorted[i] = byLabel[label]
	}
	return sorted
}

// needsNumericByte reports whether b is one of the bytes spec.md §4.7's
// escape map calls out (\n \r \t ' " \), which NASM can't reliably write
// as a quoted character literal inside a `db` list.
func needsNumericByte(b byte) bool {
	switch b {
	case '\n', '\r', '\t', '\'', '"', '\\':
		return true
	}
	return false
}

// EncodeRodata renders content (already escape-decoded by the scanner, so
// e.g. a source "\n" is the single byte 0x0A here) as a NASM `db` byte list
// terminated by a 0, e.g. `db 104, 105, 0` for "hi", with the bytes
// spec.md §4.7's escape map names written numerically and every other byte
// as a character literal.
func EncodeRodata(content string) string {
	var parts []string
	for i := 0; i < len(content); i++ {
		b := content[i]
		if needsNumericByte(b) {
			parts = append(parts, fmt.Sprintf("%d", b))
			continue
		}
		parts = append(parts, fmt.Sprintf("'%c'", b))
	}
	parts = append(parts, "0")
	return "db " + strings.Join(parts, ", ")
}
