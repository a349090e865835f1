// Package types implements the type representation and predicates of
// spec §3/§4.A: a (specifier, indirection, shape) triple plus the
// conversions the checker and generator need.
package types

// Specifier is the scalar base type. ERROR is a propagating sentinel:
// any operation touching it yields ERROR and suppresses further
// diagnostics about the same sub-tree.
type Specifier int

const (
	INT Specifier = iota
	DOUBLE
	ERROR
)

// ShapeKind distinguishes a scalar value from an array or a function.
type ShapeKind int

const (
	Scalar ShapeKind = iota
	Array
	Function
)

// Type is structurally compared on all three fields; two Types are the
// same type iff Specifier, Indirection and Shape (including, for
// Function, the parameter list) are all equal.
type Type struct {
	Specifier   Specifier
	Indirection uint32
	Shape       ShapeKind

	Length int // meaningful when Shape == Array

	// Parameters is the function's parameter type list. A nil slice
	// with Prototyped == false denotes the unprototyped `name()` form;
	// a non-nil (possibly empty, for `name(void)`) slice with
	// Prototyped == true is a full prototype. Meaningful when
	// Shape == Function.
	Parameters []Type
	Prototyped bool
}

// Err is the canonical ERROR type, used as the result of any operation
// whose operand already failed to type-check.
var Err = Type{Specifier: ERROR}

// Int is the scalar int type.
var Int = Type{Specifier: INT}

// Double is the scalar double type.
var Double = Type{Specifier: DOUBLE}

// IsError reports whether t is the propagating error sentinel.
func (t Type) IsError() bool {
	return t.Specifier == ERROR
}

// IsPointer reports whether t is a scalar with at least one level of
// indirection.
func (t Type) IsPointer() bool {
	return t.Shape == Scalar && t.Indirection > 0
}

// IsArray reports whether t is an array type.
func (t Type) IsArray() bool {
	return t.Shape == Array
}

// IsFunction reports whether t is a function type.
func (t Type) IsFunction() bool {
	return t.Shape == Function
}

// IsNumeric reports whether t is a non-indirect INT or DOUBLE scalar.
func (t Type) IsNumeric() bool {
	return t.Indirection == 0 && t.Shape == Scalar && (t.Specifier == INT || t.Specifier == DOUBLE)
}

// IsValue reports whether t is something an operator can compute with:
// numeric or pointer. Functions and arrays (before decay) are excluded.
func (t Type) IsValue() bool {
	return t.IsNumeric() || t.IsPointer()
}

// IsReal reports whether t is a non-indirect scalar double.
func (t Type) IsReal() bool {
	return t.Indirection == 0 && t.Specifier == DOUBLE && t.Shape == Scalar
}

// Promote converts an array type to a pointer to its element type
// (array-to-pointer decay). Non-array types are returned unchanged.
func (t Type) Promote() Type {
	if t.Shape != Array {
		return t
	}
	return Type{Specifier: t.Specifier, Indirection: t.Indirection + 1, Shape: Scalar}
}

// Deref returns the type obtained by removing one level of indirection
// from t. Callers must ensure t.IsPointer() first.
func (t Type) Deref() Type {
	return Type{Specifier: t.Specifier, Indirection: t.Indirection - 1, Shape: Scalar}
}

// AddrOf returns the type obtained by adding one level of indirection
// to t (the result type of unary &).
func (t Type) AddrOf() Type {
	return Type{Specifier: t.Specifier, Indirection: t.Indirection + 1, Shape: Scalar}
}

// elementSize returns the size in bytes of one unit of the given
// specifier/indirection combination, ignoring shape.
func elementSize(spec Specifier, indirection uint32) int {
	if indirection > 0 {
		return 4
	}
	switch spec {
	case DOUBLE:
		return 8
	default:
		return 4
	}
}

// Size returns the size in bytes of a value of type t. It is undefined
// (returns 0) for Function types; an ERROR scalar is sized like an int.
func (t Type) Size() int {
	switch t.Shape {
	case Array:
		return t.Length * elementSize(t.Specifier, t.Indirection)
	case Function:
		return 0
	default:
		return elementSize(t.Specifier, t.Indirection)
	}
}

// Equal reports whether t and other denote the same type, comparing
// specifier, indirection and shape structurally. It does not special-case
// ERROR: an ERROR type is Equal only to another ERROR type, never a
// wildcard match for anything else. Callers that want error-propagation
// to stop diagnostics without an extra comparison must check IsError
// first, as every Check* function in this module does.
func (t Type) Equal(other Type) bool {
	if t.Specifier != other.Specifier || t.Indirection != other.Indirection || t.Shape != other.Shape {
		return false
	}
	switch t.Shape {
	case Array:
		return t.Length == other.Length
	case Function:
		if t.Prototyped != other.Prototyped {
			return false
		}
		if !t.Prototyped {
			return true
		}
		if len(t.Parameters) != len(other.Parameters) {
			return false
		}
		for i := range t.Parameters {
			if !t.Parameters[i].Equal(other.Parameters[i]) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

// String renders t for diagnostics and tests.
func (t Type) String() string {
	base := "int"
	if t.Specifier == DOUBLE {
		base = "double"
	} else if t.Specifier == ERROR {
		base = "<error>"
	}
	stars := ""
	for i := uint32(0); i < t.Indirection; i++ {
		stars += "*"
	}
	switch t.Shape {
	case Array:
		return base + stars + "[]"
	case Function:
		return base + stars + "()"
	default:
		return base + stars
	}
}
