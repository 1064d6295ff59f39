package record

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strconv"

	"github.com/spaolacci/murmur3"
)

// ErrTypeMismatch is returned when two values (or a value and a column) have
// incompatible types that no implicit cast can bridge, e.g. a string compared
// with a number.
var ErrTypeMismatch = errors.New("type mismatch")

// FieldType identifies the type of a column or value.
type FieldType int

const (
	IntType FieldType = iota
	FloatType
	BoolType
	VarcharType
)

// String returns the SQL-ish name of the type.
func (t FieldType) String() string {
	switch t {
	case IntType:
		return "int"
	case FloatType:
		return "float"
	case BoolType:
		return "boolean"
	case VarcharType:
		return "varchar"
	default:
		return "unknown"
	}
}

// Numeric reports whether values of this type participate in numeric
// comparisons and arithmetic. Booleans coerce to 0/1.
func (t FieldType) Numeric() bool {
	return t == IntType || t == FloatType || t == BoolType
}

// Value is a typed constant: an int, float, boolean or string.
type Value struct {
	kind FieldType
	i    int64
	f    float64
	b    bool
	s    string
}

func NewIntValue(v int64) Value {
	return Value{kind: IntType, i: v}
}

func NewFloatValue(v float64) Value {
	return Value{kind: FloatType, f: v}
}

func NewBoolValue(v bool) Value {
	return Value{kind: BoolType, b: v}
}

func NewStringValue(v string) Value {
	return Value{kind: VarcharType, s: v}
}

// Kind returns the type tag of the value.
func (v Value) Kind() FieldType { return v.kind }

func (v Value) AsInt() int64     { return v.i }
func (v Value) AsFloat() float64 { return v.f }
func (v Value) AsBool() bool     { return v.b }
func (v Value) AsString() string { return v.s }

// AsNumeric returns the value as a float64 and true when the value is
// numeric (int, float, or boolean coerced to 0/1).
func (v Value) AsNumeric() (float64, bool) {
	switch v.kind {
	case IntType:
		return float64(v.i), true
	case FloatType:
		return v.f, true
	case BoolType:
		if v.b {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

// Compare returns -1, 0, or 1 if v is less than, equal to, or greater than
// other. Numeric and boolean values cross-compare after implicit coercion;
// strings only compare with strings. Incompatible kinds return ErrTypeMismatch.
func (v Value) Compare(other Value) (int, error) {
	if v.kind == VarcharType && other.kind == VarcharType {
		switch {
		case v.s < other.s:
			return -1, nil
		case v.s > other.s:
			return 1, nil
		default:
			return 0, nil
		}
	}
	ln, lok := v.AsNumeric()
	rn, rok := other.AsNumeric()
	if !lok || !rok {
		return 0, fmt.Errorf("cannot compare %s with %s: %w", v.kind, other.kind, ErrTypeMismatch)
	}
	switch {
	case ln < rn:
		return -1, nil
	case ln > rn:
		return 1, nil
	default:
		return 0, nil
	}
}

// Equals reports whether the two values are equal under implicit coercion.
// Incomparable values are never equal.
func (v Value) Equals(other Value) bool {
	c, err := v.Compare(other)
	return err == nil && c == 0
}

// Hash returns a 64-bit hash of the value. Values that are equal under
// implicit coercion hash identically (numerics hash their float64 form).
func (v Value) Hash() uint64 {
	var buf [9]byte
	if n, ok := v.AsNumeric(); ok {
		buf[0] = 0x01
		binary.LittleEndian.PutUint64(buf[1:], uint64(int64(n*1e6)))
		return murmur3.Sum64(buf[:])
	}
	buf[0] = 0x02
	h := murmur3.New64()
	_, _ = h.Write(buf[:1])
	_, _ = h.Write([]byte(v.s))
	return h.Sum64()
}

// String returns a literal rendering of the value.
func (v Value) String() string {
	switch v.kind {
	case IntType:
		return strconv.FormatInt(v.i, 10)
	case FloatType:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case BoolType:
		if v.b {
			return "TRUE"
		}
		return "FALSE"
	default:
		return "'" + v.s + "'"
	}
}

// Row is a tuple of values, positionally aligned with some column list.
type Row []Value
