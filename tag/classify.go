package tag

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"unicode/utf8"
)

var (
	// ErrUnsupportedValueKind is returned when a callable or object value is passed in, on its
	// own or inside an array. It is a contract violation of the caller.
	ErrUnsupportedValueKind = errors.New("tag: callable and object values cannot be saved to NBT")
	// ErrInvalidShape is returned when a value does not fit any kind, such as an empty array or
	// an array that mixes element kinds.
	ErrInvalidShape = errors.New("tag: value does not map to a tag kind")
)

// Classify returns the kind v would be stored as. The checks run in a fixed order: int32
// range integers, booleans, strings, int64 range integers, float64, float32, then arrays.
// Arrays must hold at least one element and every element must be an int32 range integer,
// or every element a boolean. A Value is accepted as its own kind.
func Classify(v interface{}) (Kind, error) {
	k, _, err := classify(v)
	return k, err
}

// Encode classifies v and converts it into a Value. The key only serves error messages.
func Encode(key string, v interface{}) (Value, error) {
	k, payload, err := classify(v)
	if err != nil {
		return Value{}, fmt.Errorf("encode %q: %w", key, err)
	}
	return Value{kind: k, v: payload}, nil
}

// Decode looks key up in s, returning def unchanged when it is absent.
func Decode(s *Store, key string, def Value) Value {
	return s.Get(key, def)
}

func classify(v interface{}) (Kind, interface{}, error) {
	if v == nil {
		return KindInvalid, nil, fmt.Errorf("%w: nil", ErrInvalidShape)
	}
	switch x := v.(type) {
	case Value:
		if x.kind == KindInvalid {
			return KindInvalid, nil, fmt.Errorf("%w: invalid value", ErrInvalidShape)
		}
		return x.kind, x.v, nil
	case json.Number:
		return classifyNumber(x)
	}
	rv := reflect.ValueOf(v)
	if unsupported(rv.Kind()) {
		return KindInvalid, nil, fmt.Errorf("%w: %T", ErrUnsupportedValueKind, v)
	}
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return classifyInt(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return KindInvalid, nil, fmt.Errorf("%w: %v overflows a long", ErrInvalidShape, u)
		}
		return classifyInt(int64(u))
	case reflect.Bool:
		b := Bool(rv.Bool())
		return b.kind, b.v, nil
	case reflect.String:
		s := rv.String()
		if !utf8.ValidString(s) {
			return KindInvalid, nil, fmt.Errorf("%w: string is not valid UTF-8", ErrInvalidShape)
		}
		return KindString, s, nil
	case reflect.Float64:
		return KindDouble, rv.Float(), nil
	case reflect.Float32:
		return KindFloat, float32(rv.Float()), nil
	case reflect.Slice, reflect.Array:
		return classifyArray(rv)
	}
	return KindInvalid, nil, fmt.Errorf("%w: %T", ErrInvalidShape, v)
}

func classifyInt(i int64) (Kind, interface{}, error) {
	if i >= math.MinInt32 && i <= math.MaxInt32 {
		return KindInt, int32(i), nil
	}
	return KindLong, i, nil
}

func classifyNumber(n json.Number) (Kind, interface{}, error) {
	if i, err := n.Int64(); err == nil {
		return classifyInt(i)
	}
	f, err := n.Float64()
	if err != nil {
		return KindInvalid, nil, fmt.Errorf("%w: number %q (%v)", ErrInvalidShape, string(n), err)
	}
	return KindDouble, f, nil
}

func unsupported(k reflect.Kind) bool {
	switch k {
	case reflect.Func, reflect.Chan, reflect.Map, reflect.Ptr, reflect.Struct,
		reflect.Interface, reflect.UnsafePointer, reflect.Uintptr:
		return true
	}
	return false
}

// element kinds seen while scanning an array
const (
	elemInt = 1 << iota
	elemBool
	elemOther
)

func classifyArray(rv reflect.Value) (Kind, interface{}, error) {
	seen := 0
	ints := make([]int32, 0, rv.Len())
	bools := make([]byte, 0, rv.Len())
	var unsupportedErr error
	for i := 0; i < rv.Len(); i++ {
		elem := rv.Index(i)
		if elem.Kind() == reflect.Interface {
			if elem.IsNil() {
				seen |= elemOther
				continue
			}
			elem = elem.Elem()
		}
		k, payload, err := classifyElem(elem)
		if errors.Is(err, ErrUnsupportedValueKind) {
			if unsupportedErr == nil {
				unsupportedErr = fmt.Errorf("element %d: %w", i, err)
			}
			continue
		}
		switch k {
		case KindInt:
			seen |= elemInt
			ints = append(ints, payload.(int32))
		case KindBool:
			seen |= elemBool
			bools = append(bools, payload.(uint8))
		default:
			seen |= elemOther
		}
	}
	if unsupportedErr != nil {
		return KindInvalid, nil, unsupportedErr
	}
	switch seen {
	case elemInt:
		return KindIntArray, ints, nil
	case elemBool:
		return KindBoolArray, bools, nil
	}
	return KindInvalid, nil, fmt.Errorf("%w: arrays can only contain one type of data, bool or int only", ErrInvalidShape)
}

// classifyElem classifies a single array element. Only unsupported kinds produce an error;
// every other shape problem is reported as KindInvalid.
func classifyElem(elem reflect.Value) (Kind, interface{}, error) {
	if elem.CanInterface() {
		switch x := elem.Interface().(type) {
		case Value:
			switch x.kind {
			case KindInt, KindBool:
				return x.kind, x.v, nil
			}
			return KindInvalid, nil, nil
		case json.Number:
			k, payload, err := classifyNumber(x)
			if err != nil || k != KindInt {
				return KindInvalid, nil, nil
			}
			return k, payload, nil
		}
	}
	if unsupported(elem.Kind()) {
		return KindInvalid, nil, fmt.Errorf("%w: %v", ErrUnsupportedValueKind, elem.Type())
	}
	switch elem.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if i := elem.Int(); i >= math.MinInt32 && i <= math.MaxInt32 {
			return KindInt, int32(i), nil
		}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if u := elem.Uint(); u <= math.MaxInt32 {
			return KindInt, int32(u), nil
		}
	case reflect.Bool:
		b := Bool(elem.Bool())
		return b.kind, b.v, nil
	}
	return KindInvalid, nil, nil
}
