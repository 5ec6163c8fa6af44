package tag

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type owner struct{ Name string }

func TestClassifyScalars(t *testing.T) {
	type level int
	cases := []struct {
		name string
		in   interface{}
		want Kind
	}{
		{"int", 20, KindInt},
		{"negative int", -7, KindInt},
		{"int8", int8(3), KindInt},
		{"int16 is not a short", int16(3), KindInt},
		{"uint32 in range", uint32(math.MaxInt32), KindInt},
		{"named int", level(4), KindInt},
		{"min int32", int64(math.MinInt32), KindInt},
		{"bool", true, KindBool},
		{"string", "steve", KindString},
		{"empty string", "", KindString},
		{"above int32", int64(math.MaxInt32) + 1, KindLong},
		{"below int32", int64(math.MinInt32) - 1, KindLong},
		{"uint64 in long range", uint64(math.MaxInt64), KindLong},
		{"float64", 1.5, KindDouble},
		{"float32", float32(1.5), KindFloat},
		{"json integer", json.Number("42"), KindInt},
		{"json long", json.Number("9000000000"), KindLong},
		{"json fraction", json.Number("0.25"), KindDouble},
		{"explicit short", Short(12), KindShort},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := Classify(c.in)
			require.NoError(t, err)
			assert.Equal(t, c.want, got)
		})
	}
}

func TestClassifyArrays(t *testing.T) {
	cases := []struct {
		name string
		in   interface{}
		want Kind
	}{
		{"ints", []int{1, 2, 3}, KindIntArray},
		{"int32 array", [2]int32{1, 2}, KindIntArray},
		{"loose ints", []interface{}{1, int64(2), json.Number("3")}, KindIntArray},
		{"single int", []int{9}, KindIntArray},
		{"bools", []bool{true, false, true}, KindBoolArray},
		{"loose bools", []interface{}{false, true}, KindBoolArray},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := Classify(c.in)
			require.NoError(t, err)
			assert.Equal(t, c.want, got)
		})
	}
}

func TestClassifyInvalidShape(t *testing.T) {
	cases := []struct {
		name string
		in   interface{}
	}{
		{"nil", nil},
		{"mixed int and bool", []interface{}{1, true}},
		{"string element", []interface{}{1, "two"}},
		{"float element", []interface{}{true, 1.5}},
		{"strings", []string{"a", "b"}},
		{"empty", []int{}},
		{"nil element", []interface{}{nil}},
		{"long element", []int64{math.MaxInt32 + 1}},
		{"nested array", []interface{}{[]int{1}}},
		{"complex", complex(1, 2)},
		{"uint64 overflow", uint64(math.MaxUint64)},
		{"bad utf8", string([]byte{0xff, 0xfe})},
		{"zero value", Value{}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := Classify(c.in)
			require.ErrorIs(t, err, ErrInvalidShape)
			assert.Equal(t, KindInvalid, got)
		})
	}
}

func TestClassifyUnsupported(t *testing.T) {
	cases := []struct {
		name string
		in   interface{}
	}{
		{"func", func() {}},
		{"object", owner{Name: "steve"}},
		{"pointer", &owner{}},
		{"map", map[string]interface{}{"a": 1}},
		{"channel", make(chan int)},
		{"func element", []interface{}{1, func() {}}},
		{"object element after invalid", []interface{}{"x", owner{}}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := Classify(c.in)
			require.ErrorIs(t, err, ErrUnsupportedValueKind)
			assert.NotErrorIs(t, err, ErrInvalidShape)
		})
	}
}

func TestEncodeExamples(t *testing.T) {
	hp, err := Encode("hp", 20)
	require.NoError(t, err)
	assert.True(t, hp.Equal(Int(20)))

	flags, err := Encode("flags", []bool{true, false, true})
	require.NoError(t, err)
	b, err := flags.Bytes()
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 0, 1}, b)

	_, err = Encode("owner", &owner{Name: "steve"})
	require.ErrorIs(t, err, ErrUnsupportedValueKind)
	assert.Contains(t, err.Error(), `"owner"`)

	_, err = Encode("mixed", []interface{}{1, true})
	require.ErrorIs(t, err, ErrInvalidShape)
}

func TestEncodeConvertsPayload(t *testing.T) {
	cases := []struct {
		in   interface{}
		want Value
	}{
		{uint16(7), Int(7)},
		{int64(1) << 40, Long(1 << 40)},
		{false, Bool(false)},
		{"stone", String("stone")},
		{2.5, Double(2.5)},
		{float32(0.5), Float(0.5)},
		{[]uint8{1, 2}, IntArray([]int32{1, 2})},
		{[]interface{}{Int(1), 2}, IntArray([]int32{1, 2})},
		{Long(3), Long(3)},
	}
	for _, c := range cases {
		got, err := Encode("k", c.in)
		require.NoError(t, err)
		assert.Truef(t, c.want.Equal(got), "encode %#v: got %v, want %v", c.in, got, c.want)
	}
}

func TestEncodeDeterministic(t *testing.T) {
	in := []interface{}{true, false}
	a, err := Encode("k", in)
	require.NoError(t, err)
	b, err := Encode("k", in)
	require.NoError(t, err)
	assert.True(t, a.Equal(b))
}
