package tag

import (
	"fmt"
	"reflect"
	"sort"
)

var (
	byteType  = reflect.TypeOf(byte(0))
	int32Type = reflect.TypeOf(int32(0))
)

// NBT returns the native value the nbt encoder writes as the matching tag: int32 as
// TAG_Int, uint8 as TAG_Byte and so on. Arrays come out as fixed size Go arrays, since
// the encoder writes slices as TAG_List.
func (v Value) NBT() interface{} {
	switch v.kind {
	case KindIntArray:
		return toArray(reflect.ValueOf(v.v), int32Type)
	case KindBoolArray:
		return toArray(reflect.ValueOf(v.v), byteType)
	}
	return v.v
}

func toArray(src reflect.Value, elem reflect.Type) interface{} {
	arr := reflect.New(reflect.ArrayOf(src.Len(), elem)).Elem()
	reflect.Copy(arr, src)
	return arr.Interface()
}

// FromNBT converts a value decoded by the nbt decoder back into a Value. TAG_Byte is read
// back as a bool, TAG_Byte_Array as a bool array; the raw bytes are kept so that a second
// save writes them unchanged. Lists, compounds and long arrays have no kind and are
// rejected.
func FromNBT(v interface{}) (Value, error) {
	switch x := v.(type) {
	case int32:
		return Int(x), nil
	case uint8:
		return Value{kind: KindBool, v: x}, nil
	case int16:
		return Short(x), nil
	case int64:
		return Long(x), nil
	case float64:
		return Double(x), nil
	case float32:
		return Float(x), nil
	case string:
		return String(x), nil
	case []int32:
		return IntArray(x), nil
	case []byte:
		return boolBytes(x), nil
	}
	if v != nil {
		rv := reflect.ValueOf(v)
		if rv.Kind() == reflect.Array {
			switch rv.Type().Elem().Kind() {
			case reflect.Int32:
				ints := make([]int32, rv.Len())
				for i := range ints {
					ints[i] = int32(rv.Index(i).Int())
				}
				return Value{kind: KindIntArray, v: ints}, nil
			case reflect.Uint8:
				b := make([]byte, rv.Len())
				for i := range b {
					b[i] = byte(rv.Index(i).Uint())
				}
				return Value{kind: KindBoolArray, v: b}, nil
			}
		}
	}
	return Value{}, fmt.Errorf("%w: unsupported tag %T", ErrInvalidShape, v)
}

// NBT returns the store as a compound ready for the nbt encoder.
func (s *Store) NBT() map[string]interface{} {
	m := make(map[string]interface{}, len(s.keys))
	for _, k := range s.keys {
		m[k] = s.values[k].NBT()
	}
	return m
}

// StoreFromNBT restores a store wholesale from a decoded compound. Compounds carry no
// order, so keys are inserted sorted.
func StoreFromNBT(m map[string]interface{}) (*Store, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	s := NewStore()
	for _, k := range keys {
		v, err := FromNBT(m[k])
		if err != nil {
			return nil, fmt.Errorf("restore %q: %w", k, err)
		}
		if err := s.Set(k, v); err != nil {
			return nil, err
		}
	}
	return s, nil
}
