package variant

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wippyai/zerowire"
	"github.com/wippyai/zerowire/errors"
)

func encodeValue(t *testing.T, x any) *Value {
	t.Helper()
	buf := make([]byte, 4096)
	b := NewValueBuilder().Wrap(buf, 0, len(buf))
	require.NoError(t, b.Encode(x))
	return b.Build()
}

func TestValue_Scalars(t *testing.T) {
	tests := []struct {
		in   any
		want []byte
		out  any
	}{
		{nil, []byte{0x00}, nil},
		{false, []byte{0x01}, false},
		{true, []byte{0x02}, true},
		{0, []byte{0x40}, int64(0)},
		{-5, []byte{0x51, 0xFB}, int64(-5)},
		{uint16(256), []byte{0x62, 0x00, 0x01}, uint64(256)},
		{float64(7), []byte{0x51, 0x07}, int64(7)},
		{json.Number("300"), []byte{0x52, 0x2C, 0x01}, int64(300)},
		{"ok", []byte{0x71, 0x02, 'o', 'k'}, "ok"},
	}

	for _, tt := range tests {
		v := encodeValue(t, tt.in)
		require.Equal(t, tt.want, zerowire.Bytes(v), "encode %v", tt.in)

		got, err := v.Interface()
		require.NoError(t, err)
		require.Equal(t, tt.out, got)
	}
}

func TestValue_ListLayout(t *testing.T) {
	v := encodeValue(t, []any{int64(1), "x"})
	require.Equal(t, []byte{0xB1, 0x05, 0x02, 0x41, 0x71, 0x01, 'x'}, zerowire.Bytes(v))
	require.NotNil(t, v.List())
	require.Equal(t, 2, v.List().Count())
	require.Nil(t, v.Map())
}

func TestValue_Document(t *testing.T) {
	in := map[string]any{
		"name": "zw",
		"n":    3,
		"tags": []any{"a", "b"},
		"ok":   true,
		"none": nil,
		"deep": map[string]any{"list": []any{[]any{}, 70000}},
	}
	v := encodeValue(t, in)

	got, err := v.Interface()
	require.NoError(t, err)
	require.Equal(t, map[string]any{
		"name": "zw",
		"n":    int64(3),
		"tags": []any{"a", "b"},
		"ok":   true,
		"none": nil,
		"deep": map[string]any{"list": []any{[]any{}, int64(70000)}},
	}, got)

	// the compacted encoding decodes the same from a fresh view
	again := NewValue().Wrap(zerowire.Bytes(v), 0, v.Sizeof())
	got2, err := again.Interface()
	require.NoError(t, err)
	require.Equal(t, got, got2)
}

func TestValue_BoundsExact(t *testing.T) {
	src := encodeValue(t, map[string]any{"a": []any{1, "x", map[string]any{"b": 300}}})
	buf := append(make([]byte, 2), zerowire.Bytes(src)...)
	end := len(buf)

	for limit := 0; limit < end; limit++ {
		require.Error(t, NewValue().Decode(buf, 2, limit), "limit %d", limit)
		require.Nil(t, NewValue().TryWrap(buf, 2, limit), "limit %d", limit)
	}
	v := NewValue().TryWrap(buf, 2, end)
	require.NotNil(t, v)
	require.Equal(t, end, v.Limit())

	got, err := v.Interface()
	require.NoError(t, err)
	require.Equal(t, map[string]any{"a": []any{int64(1), "x", map[string]any{"b": int64(300)}}}, got)
}

func TestValue_MapKeysSorted(t *testing.T) {
	a := encodeValue(t, map[string]any{"b": 1, "a": 2, "c": 3})
	b := encodeValue(t, map[string]any{"c": 3, "a": 2, "b": 1})
	require.True(t, zerowire.Equal(a, b))

	var keys []string
	for k := range a.Map().Entries() {
		keys = append(keys, new(Value).Wrap(k.Data, 0, len(k.Data)).Str())
	}
	require.Equal(t, []string{"a", "b", "c"}, keys)
}

func TestValue_FromJSON(t *testing.T) {
	var doc any
	require.NoError(t, json.Unmarshal([]byte(`{"id": 12, "items": [1, -2, "three"]}`), &doc))

	got, err := encodeValue(t, doc).Interface()
	require.NoError(t, err)
	require.Equal(t, map[string]any{"id": int64(12), "items": []any{int64(1), int64(-2), "three"}}, got)
}

func TestValue_EncodeErrors(t *testing.T) {
	buf := make([]byte, 64)
	tests := []struct {
		name string
		in   any
		kind errors.Kind
	}{
		{"fraction", 1.5, errors.KindUnsupported},
		{"struct", struct{}{}, errors.KindUnsupported},
		{"nested struct", []any{1, struct{}{}}, errors.KindUnsupported},
		{"too large", []any{string(make([]byte, 100))}, errors.KindOutOfBounds},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewValueBuilder().Wrap(buf, 0, len(buf)).Encode(tt.in)
			require.Error(t, err)
			require.True(t, errors.HasKind(err, tt.kind), "%v", err)
		})
	}
}

func TestValue_EncodeDepthLimit(t *testing.T) {
	var x any = "leaf"
	for i := 0; i < MaxDepth+2; i++ {
		x = []any{x}
	}
	buf := make([]byte, 1<<16)
	err := NewValueBuilder().Wrap(buf, 0, len(buf)).Encode(x)
	require.True(t, errors.HasKind(err, errors.KindLengthExceeded), "%v", err)
}

func TestValue_DecodeDepthLimit(t *testing.T) {
	enc := []byte{byte(KindList0)}
	for i := 0; i < MaxDepth+6; i++ {
		enc = append([]byte{byte(KindList8), byte(len(enc) + 1), 0x01}, enc...)
	}
	require.Less(t, len(enc), 256+3)

	err := NewValue().Decode(enc, 0, len(enc))
	require.True(t, errors.HasKind(err, errors.KindLengthExceeded), "%v", err)
	require.Nil(t, NewValue().TryWrap(enc, 0, len(enc)))
}

func TestValue_UnsignedKinds(t *testing.T) {
	enc := []byte{0x62, 0x00, 0x01}
	v := NewValue().Wrap(enc, 0, len(enc))
	require.True(t, v.IsUint())
	require.Equal(t, uint64(256), v.Uint())
	require.Equal(t, int64(256), v.Int())
}

func TestValue_ScalarArray(t *testing.T) {
	a, enc := buildUints(t, 5, 200)
	require.Equal(t, 6, a.Sizeof())

	v := NewValue().Wrap(enc, 0, len(enc))
	require.NotNil(t, v.Array())
	got, err := v.Interface()
	require.NoError(t, err)
	require.Equal(t, []any{uint64(5), uint64(200)}, got)
}

func TestValue_UnknownKind(t *testing.T) {
	for _, enc := range [][]byte{{0x99}, {0xFF}, {0x73, 0x00}} {
		err := NewValue().Decode(enc, 0, len(enc))
		require.True(t, errors.HasKind(err, errors.KindInvalidVariant), "%x: %v", enc, err)
	}
}
