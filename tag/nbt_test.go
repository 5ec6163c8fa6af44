package tag

import (
	"math"
	"testing"

	"github.com/sandertv/gophertunnel/minecraft/nbt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleStore(t *testing.T) *Store {
	s := NewStore()
	require.NoError(t, s.Set("short", Short(-3)))
	require.NoError(t, s.PutAll(map[string]interface{}{
		"hp":     20,
		"alive":  true,
		"name":   "chest",
		"seed":   int64(1) << 42,
		"speed":  0.25,
		"scale":  float32(1.5),
		"slots":  []int{4, 5, 6},
		"flags":  []bool{true, false, true},
		"single": []int32{7},
	}))
	return s
}

func TestStoreNBTRoundTrip(t *testing.T) {
	for _, enc := range []nbt.Encoding{nbt.LittleEndian, nbt.BigEndian, nbt.NetworkLittleEndian} {
		s := sampleStore(t)
		b, err := nbt.MarshalEncoding(s.NBT(), enc)
		require.NoError(t, err)

		var m map[string]interface{}
		require.NoError(t, nbt.UnmarshalEncoding(b, &m, enc))

		restored, err := StoreFromNBT(m)
		require.NoError(t, err)
		require.Equal(t, s.Len(), restored.Len())
		s.Range(func(key string, v Value) bool {
			got, ok := restored.Lookup(key)
			assert.Truef(t, ok, "missing %q", key)
			assert.Truef(t, v.Equal(got), "%q: got %v, want %v", key, got, v)
			return true
		})
	}
}

func TestNaNRoundTrip(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Put("nan", math.NaN()))
	require.NoError(t, s.Put("nan32", float32(math.NaN())))
	assert.True(t, s.Get("nan", Value{}).Equal(Double(math.NaN())))
	assert.False(t, Double(math.NaN()).Equal(Double(0)))

	b, err := nbt.MarshalEncoding(s.NBT(), nbt.LittleEndian)
	require.NoError(t, err)
	var m map[string]interface{}
	require.NoError(t, nbt.UnmarshalEncoding(b, &m, nbt.LittleEndian))
	restored, err := StoreFromNBT(m)
	require.NoError(t, err)
	for _, key := range []string{"nan", "nan32"} {
		got, _ := restored.Lookup(key)
		assert.Truef(t, s.Get(key, Value{}).Equal(got), "%q: got %v", key, got)
	}
}

func TestNBTNativeTypes(t *testing.T) {
	assert.Equal(t, [3]int32{1, 2, 3}, IntArray([]int32{1, 2, 3}).NBT())
	assert.Equal(t, [2]byte{1, 0}, BoolArray([]bool{true, false}).NBT())
	assert.Equal(t, uint8(1), Bool(true).NBT())
	assert.Equal(t, int16(4), Short(4).NBT())
}

func TestFromNBTKeepsRawBytes(t *testing.T) {
	v, err := FromNBT([3]byte{0, 2, 1})
	require.NoError(t, err)
	assert.Equal(t, KindBoolArray, v.Kind())
	assert.Equal(t, [3]byte{0, 2, 1}, v.NBT())

	v, err = FromNBT(uint8(5))
	require.NoError(t, err)
	b, _ := v.Bool()
	assert.True(t, b)
	assert.Equal(t, uint8(5), v.NBT())
}

func TestFromNBTRejectsOtherTags(t *testing.T) {
	for _, in := range []interface{}{
		[]interface{}{int32(1)},
		map[string]interface{}{"a": int32(1)},
		[2]int64{1, 2},
		nil,
	} {
		_, err := FromNBT(in)
		assert.ErrorIs(t, err, ErrInvalidShape)
	}

	_, err := StoreFromNBT(map[string]interface{}{"list": []interface{}{}})
	require.ErrorIs(t, err, ErrInvalidShape)
}
