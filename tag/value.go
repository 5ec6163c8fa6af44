package tag

import (
	"bytes"
	"errors"
	"fmt"
	"math"
)

// Kind identifies which binary representation a stored Value uses.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindInt
	KindBool
	KindShort
	KindLong
	KindDouble
	KindFloat
	KindString
	KindIntArray
	KindBoolArray
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindBool:
		return "bool"
	case KindShort:
		return "short"
	case KindLong:
		return "long"
	case KindDouble:
		return "double"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindIntArray:
		return "int_array"
	case KindBoolArray:
		return "bool_array"
	default:
		return "invalid"
	}
}

// ErrKindMismatch is returned by the Value accessors when the value holds another kind.
var ErrKindMismatch = errors.New("tag: kind mismatch")

// Value is one typed entry of a Store. The zero Value is invalid and is what Decode
// callers usually pass as "no default".
type Value struct {
	kind Kind
	v    interface{}
}

// Int returns a 32-bit integer value.
func Int(v int32) Value { return Value{kind: KindInt, v: v} }

// Bool returns a boolean value, stored as a single byte.
func Bool(v bool) Value {
	if v {
		return Value{kind: KindBool, v: uint8(1)}
	}
	return Value{kind: KindBool, v: uint8(0)}
}

// Short returns a 16-bit integer value. Shorts are never inferred by Classify, so this is
// the only way to produce one from Go code.
func Short(v int16) Value { return Value{kind: KindShort, v: v} }

// Long returns a 64-bit integer value.
func Long(v int64) Value { return Value{kind: KindLong, v: v} }

// Double returns a double precision value.
func Double(v float64) Value { return Value{kind: KindDouble, v: v} }

// Float returns a single precision value.
func Float(v float32) Value { return Value{kind: KindFloat, v: v} }

// String returns a string value.
func String(v string) Value { return Value{kind: KindString, v: v} }

// IntArray returns an int array value holding a copy of v.
func IntArray(v []int32) Value {
	c := make([]int32, len(v))
	copy(c, v)
	return Value{kind: KindIntArray, v: c}
}

// BoolArray returns a bool array value, narrowing every element to a 0/1 byte.
func BoolArray(v []bool) Value {
	b := make([]byte, len(v))
	for i, x := range v {
		if x {
			b[i] = 1
		}
	}
	return Value{kind: KindBoolArray, v: b}
}

// boolBytes keeps raw bytes as read from a tag tree.
func boolBytes(v []byte) Value {
	c := make([]byte, len(v))
	copy(c, v)
	return Value{kind: KindBoolArray, v: c}
}

// Kind returns the kind of the value.
func (v Value) Kind() Kind { return v.kind }

// IsValid reports whether v holds any kind at all.
func (v Value) IsValid() bool { return v.kind != KindInvalid }

func (v Value) mismatch(want Kind) error {
	return fmt.Errorf("%w: expected %v, got %v", ErrKindMismatch, want, v.kind)
}

func (v Value) Int() (int32, error) {
	if v.kind != KindInt {
		return 0, v.mismatch(KindInt)
	}
	return v.v.(int32), nil
}

func (v Value) Bool() (bool, error) {
	if v.kind != KindBool {
		return false, v.mismatch(KindBool)
	}
	return v.v.(uint8) != 0, nil
}

func (v Value) Short() (int16, error) {
	if v.kind != KindShort {
		return 0, v.mismatch(KindShort)
	}
	return v.v.(int16), nil
}

func (v Value) Long() (int64, error) {
	if v.kind != KindLong {
		return 0, v.mismatch(KindLong)
	}
	return v.v.(int64), nil
}

func (v Value) Double() (float64, error) {
	if v.kind != KindDouble {
		return 0, v.mismatch(KindDouble)
	}
	return v.v.(float64), nil
}

func (v Value) Float() (float32, error) {
	if v.kind != KindFloat {
		return 0, v.mismatch(KindFloat)
	}
	return v.v.(float32), nil
}

// Str returns the string payload. It is not named String so that Value keeps satisfying
// fmt.Stringer.
func (v Value) Str() (string, error) {
	if v.kind != KindString {
		return "", v.mismatch(KindString)
	}
	return v.v.(string), nil
}

// IntArray returns a copy of the int array payload.
func (v Value) IntArray() ([]int32, error) {
	if v.kind != KindIntArray {
		return nil, v.mismatch(KindIntArray)
	}
	src := v.v.([]int32)
	c := make([]int32, len(src))
	copy(c, src)
	return c, nil
}

// BoolArray returns the bool array payload, any non-zero byte being true.
func (v Value) BoolArray() ([]bool, error) {
	if v.kind != KindBoolArray {
		return nil, v.mismatch(KindBoolArray)
	}
	src := v.v.([]byte)
	c := make([]bool, len(src))
	for i, b := range src {
		c[i] = b != 0
	}
	return c, nil
}

// Bytes returns a copy of the narrowed bytes of a bool array.
func (v Value) Bytes() ([]byte, error) {
	if v.kind != KindBoolArray {
		return nil, v.mismatch(KindBoolArray)
	}
	src := v.v.([]byte)
	c := make([]byte, len(src))
	copy(c, src)
	return c, nil
}

// Equal reports whether v and o hold the same kind and payload. Floats compare by bits.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindInvalid:
		return true
	case KindIntArray:
		a, b := v.v.([]int32), o.v.([]int32)
		if len(a) != len(b) {
			return false
		}
		for i := range a {
			if a[i] != b[i] {
				return false
			}
		}
		return true
	case KindBoolArray:
		return bytes.Equal(v.v.([]byte), o.v.([]byte))
	case KindDouble:
		return math.Float64bits(v.v.(float64)) == math.Float64bits(o.v.(float64))
	case KindFloat:
		return math.Float32bits(v.v.(float32)) == math.Float32bits(o.v.(float32))
	default:
		return v.v == o.v
	}
}

// String formats the value as kind(payload).
func (v Value) String() string {
	if v.kind == KindInvalid {
		return "invalid"
	}
	return fmt.Sprintf("%v(%v)", v.kind, v.v)
}
