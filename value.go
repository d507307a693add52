package relq

import (
	"fmt"
	"strings"
)

// Value is a single typed column value: the unit handed to the row codec on
// insert and produced by iterators during scans. The Type tag selects which
// of the payload fields is meaningful.
type Value struct {
	Type ColumnType
	Int  int32
	Real float64
	Str  string
}

func IntValue(v int32) Value {
	return Value{Type: Integer, Int: v}
}

func RealValue(v float64) Value {
	return Value{Type: Real, Real: v}
}

func StringValue(s string) Value {
	return Value{Type: VarChar, Str: s}
}

func CharValue(s string) Value {
	return Value{Type: FixedChar, Str: s}
}

func (v Value) String() string {
	switch v.Type {
	case Integer:
		return fmt.Sprintf("%d", v.Int)
	case Real:
		return fmt.Sprintf("%g", v.Real)
	case FixedChar, VarChar:
		return v.Str
	default:
		return fmt.Sprintf("<invalid %v>", v.Type)
	}
}

func (v Value) asReal() float64 {
	if v.Type == Integer {
		return float64(v.Int)
	}
	return v.Real
}

// Compare orders v against another value: -1, 0 or 1. Integer and Real
// values compare numerically (mixing the two is fine); FixedChar and VarChar
// compare as raw bytes. Comparing a numeric value to a character value is a
// TypeMismatchError.
func (v Value) Compare(other Value) (int, error) {
	switch {
	case v.Type.isNumeric() && other.Type.isNumeric():
		if v.Type == Integer && other.Type == Integer {
			return cmpOrdered(v.Int, other.Int), nil
		}
		return cmpOrdered(v.asReal(), other.asReal()), nil
	case v.Type.isChar() && other.Type.isChar():
		return strings.Compare(v.Str, other.Str), nil
	default:
		return 0, &TypeMismatchError{Left: v.Type, Right: other.Type}
	}
}

func cmpOrdered[T int32 | float64](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// matchesColumn reports whether the value can be stored in the given column.
func (v Value) matchesColumn(col *Column) bool {
	return v.Type == col.Type
}
