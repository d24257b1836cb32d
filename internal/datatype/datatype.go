// Package datatype implements the datatype model (primitive, struct, union,
// pointer and array descriptors) that flows through the parser, resolver and
// code generator.
//
// It is a direct port of the datatype bookkeeping in the original rosebud
// compiler's datatype.c and compiler.h: a datatype carries a primitive kind,
// an optional back-reference to a named struct/union definition, a pointer
// depth, an array bracket list and a handful of flags. DecrementPointer
// mutates its receiver in place; PointerReduce returns a reduced copy.
package datatype

// Kind is the primitive kind of a datatype.
type Kind uint8

const (
	Unknown Kind = iota
	Void
	Char
	Short
	Int
	Long
	Struct
	Union
)

func (k Kind) String() string {
	switch k {
	case Void:
		return "void"
	case Char:
		return "char"
	case Short:
		return "short"
	case Int:
		return "int"
	case Long:
		return "long"
	case Struct:
		return "struct"
	case Union:
		return "union"
	default:
		return "unknown"
	}
}

// Flag is a bitset of datatype modifiers.
type Flag uint16

const (
	FlagIsPointer Flag = 1 << iota
	FlagIsArray
	FlagIsSigned
	FlagIsConst
	FlagIsStatic
	FlagIsExtern
	FlagIsLiteral
	// FlagStructUnionNoName marks an anonymous struct/union (declared inline,
	// with no tag name). The parser sets it; nothing in this module reads it.
	FlagStructUnionNoName
)

func (f Flag) has(bit Flag) bool { return f&bit != 0 }

// Word is the machine word size for the target (4 bytes, 32-bit x86).
const Word = 4

// StructDef is the back-reference to a named struct or union's field layout,
// non-owning: the datatype never owns the definition, it only points at the
// one kept by the symbol table.
type StructDef struct {
	Name   string
	Fields []Field
	Size   int // total, padded size of the record
	IsUnion bool
}

// Field describes one struct/union member.
type Field struct {
	Name   string
	Type   Datatype
	Offset int // byte offset from the record base; always 0 for a union member
}

// FieldOffset returns the offset and type of the named field, and whether it
// was found.
func (d *StructDef) FieldOffset(name string) (offset int, dt Datatype, ok bool) {
	for _, f := range d.Fields {
		if f.Name == name {
			if d.IsUnion {
				return 0, f.Type, true
			}
			return f.Offset, f.Type, true
		}
	}
	return 0, Datatype{}, false
}

// Array describes the bracket dimensions of an array type, outermost
// dimension first, e.g. `int a[3][4]` is Brackets: []int{3, 4}.
type Array struct {
	Brackets []int
	// Size is the total byte size of the array (element size times the
	// product of all dimensions), computed once the element size is known.
	Size int
}

// Datatype is the central type descriptor. Invariants (spec.md §3):
//
//	PointerDepth == 0  <=>  !Flags.IsPointer()
//	Size() of a pointer-typed datatype is always Word
//	Size() of an array is ElementSize * product(outer dimensions)
type Datatype struct {
	Kind Kind
	// TypeStr is the declared type name, used for struct/union lookups and
	// diagnostics (e.g. "int", "struct point").
	TypeStr string
	// Struct is a non-owning back-reference to the named struct/union
	// definition; nil unless Kind is Struct or Union.
	Struct *StructDef

	PointerDepth int
	Array        Array
	Flags        Flag

	// ElemSize is the size in bytes of one unit of this type ignoring pointer
	// and array modifiers (e.g. 4 for int, the struct's own size for a
	// struct).
	ElemSize int
}

// IsPointer reports whether the datatype is a pointer (PointerDepth > 0).
func (d *Datatype) IsPointer() bool { return d.Flags.has(FlagIsPointer) && d.PointerDepth > 0 }

// IsArray reports whether the datatype is an array type.
func (d *Datatype) IsArray() bool { return d.Flags.has(FlagIsArray) }

// IsSigned reports whether the datatype is signed.
func (d *Datatype) IsSigned() bool { return d.Flags.has(FlagIsSigned) }

// IsStructOrUnion reports whether the datatype's kind is struct or union,
// regardless of pointer/array modifiers.
func (d *Datatype) IsStructOrUnion() bool { return d.Kind == Struct || d.Kind == Union }

// IsPrimitive is the complement of IsStructOrUnion.
func (d *Datatype) IsPrimitive() bool { return !d.IsStructOrUnion() }

// IsStructOrUnionNoPointer reports whether the datatype is a non-pointer
// struct or union, i.e. it is addressed and copied by value.
func (d *Datatype) IsStructOrUnionNoPointer() bool {
	return d.Kind != Unknown && !d.IsPrimitive() && !d.IsPointer()
}

// Size returns the size in bytes of a value of this datatype: Word for any
// pointer, the array's total size for an array, else ElemSize.
func (d *Datatype) Size() int {
	if d.IsPointer() {
		return Word
	}
	if d.IsArray() {
		return d.Array.Size
	}
	return d.ElemSize
}

// ElementSize returns the size of one element when this datatype is used in
// a context that decays pointers to a word (e.g. function call argument
// staging): Word for a pointer, else the same as Size.
func (d *Datatype) ElementSize() int {
	if d.IsPointer() {
		return Word
	}
	return d.Size()
}

// SizeNoPointer returns the array's total size for an array type
// (disregarding whether it also happens to be a pointer, which arrays never
// are at the top level), else ElemSize. Used when a caller already knows
// it wants the "as declared" size rather than the pointer-decayed size.
func (d *Datatype) SizeNoPointer() int {
	if d.IsArray() {
		return d.Array.Size
	}
	return d.ElemSize
}

// SizeForArrayAccess implements the struct/union pointer edge case from
// spec.md §4.1: dereferencing a pointer-to-struct with depth exactly 1
// yields the struct's own size, not the word size, because `s[0]` on a
// `struct point *s` means "the struct pointed to", not "a word".
func (d *Datatype) SizeForArrayAccess() int {
	if d.IsStructOrUnion() && d.IsPointer() && d.PointerDepth == 1 {
		return d.ElemSize
	}
	return d.Size()
}

// PointerReduce returns a copy of d with its pointer depth decreased by by,
// clearing the pointer flag once the depth reaches zero. It never mutates d.
func (d *Datatype) PointerReduce(by int) *Datatype {
	cp := *d
	cp.PointerDepth -= by
	if cp.PointerDepth <= 0 {
		cp.PointerDepth = 0
		cp.Flags &^= FlagIsPointer
	}
	return &cp
}

// DecrementPointer reduces the pointer depth of d by one in place, used by
// the resolver when a pointer-array entity consumes one level of
// indirection (spec.md §4.5, array offset computation).
func (d *Datatype) DecrementPointer() {
	d.PointerDepth--
	if d.PointerDepth <= 0 {
		d.PointerDepth = 0
		d.Flags &^= FlagIsPointer
	}
}

// ThatsAPointer returns whichever of d1, d2 is a pointer type, or nil if
// neither is. Used by the code generator to decide which operand of a
// mixed pointer/integer arithmetic expression needs scaling.
func ThatsAPointer(d1, d2 *Datatype) *Datatype {
	if d1.IsPointer() {
		return d1
	}
	if d2.IsPointer() {
		return d2
	}
	return nil
}

// ForNumeric is the datatype assigned to integer literals: a signed,
// 4-byte, literal int.
func ForNumeric() Datatype {
	return Datatype{
		Kind:     Int,
		TypeStr:  "int",
		ElemSize: 4,
		Flags:    FlagIsLiteral | FlagIsSigned,
	}
}

// ArrayBracketsCount returns the number of declared array dimensions.
func (d *Datatype) ArrayBracketsCount() int { return len(d.Array.Brackets) }

// ArraySizeFromIndex computes the total size of the array as seen from
// dimension index onward: the product of the remaining dimensions times the
// element size. index may equal len(brackets), meaning "no more
// dimensions, just the element itself".
func ArraySizeFromIndex(elemSize int, brackets []int, index int) int {
	size := elemSize
	for i := index; i < len(brackets); i++ {
		size *= brackets[i]
	}
	return size
}

// ArrayOffset computes the byte offset of element indexValue at dimension
// index within an array datatype, i.e. indexValue * (size of one element at
// that dimension, which is the product of all inner dimensions times the
// base element size).
func ArrayOffset(d *Datatype, index int, indexValue int) int {
	innerSize := ArraySizeFromIndex(d.ElemSize, d.Array.Brackets, index+1)
	return indexValue * innerSize
}
