package variant

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wippyai/zerowire"
	"github.com/wippyai/zerowire/errors"
	"github.com/wippyai/zerowire/flyweight"
)

func requireKind(t *testing.T, kind errors.Kind, fn func()) {
	t.Helper()
	defer func() {
		t.Helper()
		r := recover()
		require.NotNil(t, r, "expected panic with kind %s", kind)
		err, ok := r.(error)
		require.True(t, ok)
		require.True(t, errors.HasKind(err, kind), "panic = %v", err)
	}()
	fn()
}

func u16(v uint16) zerowire.Writer {
	return zerowire.With(new(flyweight.FixedBuilder[uint16]), func(b *flyweight.FixedBuilder[uint16]) { b.Set(v) })
}

func intOf(v int64) zerowire.Writer {
	return zerowire.With(new(IntBuilder), func(b *IntBuilder) { b.Set(v) })
}

func TestInt_NarrowestCase(t *testing.T) {
	tests := []struct {
		v    int64
		want []byte
	}{
		{0, []byte{0x40}},
		{1, []byte{0x41}},
		{-1, []byte{0x51, 0xFF}},
		{2, []byte{0x51, 0x02}},
		{127, []byte{0x51, 0x7F}},
		{-128, []byte{0x51, 0x80}},
		{128, []byte{0x52, 0x80, 0x00}},
		{-129, []byte{0x52, 0x7F, 0xFF}},
		{math.MaxInt16, []byte{0x52, 0xFF, 0x7F}},
		{math.MaxInt16 + 1, []byte{0x54, 0x00, 0x80, 0x00, 0x00}},
		{math.MinInt32, []byte{0x54, 0x00, 0x00, 0x00, 0x80}},
		{math.MaxInt32 + 1, []byte{0x58, 0x00, 0x00, 0x00, 0x80, 0x00, 0x00, 0x00, 0x00}},
	}

	for _, tt := range tests {
		buf := make([]byte, 16)
		v := new(IntBuilder).Wrap(buf, 0, len(buf)).Set(tt.v).Build()
		require.Equal(t, tt.want, zerowire.Bytes(v), "Set(%d)", tt.v)
		require.Equal(t, len(tt.want), v.Sizeof())
		require.Equal(t, tt.v, v.Get())
		require.Equal(t, IntKindOf(tt.v), v.Kind())
	}
}

func TestInt_ZeroCaseIsKindOnly(t *testing.T) {
	buf := make([]byte, 1)
	v := new(IntBuilder).Wrap(buf, 0, 1).Set(0).Build()
	require.Equal(t, 1, v.Sizeof())
	require.Equal(t, KindZero, v.Kind())
	require.Equal(t, int64(0), v.Get())
}

func TestInt_Deterministic(t *testing.T) {
	for _, x := range []int64{0, 1, -7, 300, -70000, math.MaxInt64, math.MinInt64} {
		a := make([]byte, 16)
		b := make([]byte, 32)
		va := new(IntBuilder).Wrap(a, 0, len(a)).Set(x).Build()
		vb := new(IntBuilder).Wrap(b, 11, len(b)).Set(x).Build()
		require.True(t, zerowire.Equal(va, vb), "value %d", x)
		require.Equal(t, zerowire.Hash(va), zerowire.Hash(vb))
	}
}

func TestInt_SetFromNarrows(t *testing.T) {
	wide := []byte{byte(KindInt64), 0x05, 0, 0, 0, 0, 0, 0, 0}
	src := new(Int).Wrap(wide, 0, len(wide))
	require.Equal(t, int64(5), src.Get())

	buf := make([]byte, 9)
	v := new(IntBuilder).Wrap(buf, 0, len(buf)).SetFrom(src).Build()
	require.Equal(t, []byte{0x51, 0x05}, zerowire.Bytes(v))
}

func TestInt_RejectsForeignKinds(t *testing.T) {
	for _, enc := range [][]byte{{0x61, 0x01}, {0x71, 0x00}, {0x99}} {
		var v Int
		err := v.Decode(enc, 0, len(enc))
		require.Error(t, err)
		require.True(t, errors.HasKind(err, errors.KindInvalidVariant), "%x: %v", enc, err)
		require.Nil(t, new(Int).TryWrap(enc, 0, len(enc)))
	}

	trunc := []byte{0x54, 0x01, 0x02}
	require.True(t, errors.HasKind(new(Int).Decode(trunc, 0, len(trunc)), errors.KindOutOfBounds))
}

func TestUint_NarrowestCase(t *testing.T) {
	tests := []struct {
		v    uint64
		want []byte
	}{
		{0, []byte{0x40}},
		{1, []byte{0x41}},
		{255, []byte{0x61, 0xFF}},
		{256, []byte{0x62, 0x00, 0x01}},
		{math.MaxUint32, []byte{0x64, 0xFF, 0xFF, 0xFF, 0xFF}},
		{math.MaxUint64, []byte{0x68, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}},
	}

	for _, tt := range tests {
		buf := make([]byte, 16)
		v := new(UintBuilder).Wrap(buf, 0, len(buf)).Set(tt.v).Build()
		require.Equal(t, tt.want, zerowire.Bytes(v), "Set(%d)", tt.v)
		require.Equal(t, tt.v, v.Get())
	}
}

func TestUint_BoundsCheckedBeforeWrite(t *testing.T) {
	buf := make([]byte, 2)
	requireKind(t, errors.KindOutOfBounds, func() {
		new(UintBuilder).Wrap(buf, 0, len(buf)).Set(256)
	})
	require.Equal(t, []byte{0, 0}, buf)
}

func TestString_Cases(t *testing.T) {
	buf := make([]byte, 1024)
	b := new(StringBuilder)

	v := b.Wrap(buf, 0, len(buf)).Set("hi").Build()
	require.Equal(t, []byte{0x71, 0x02, 'h', 'i'}, zerowire.Bytes(v))
	require.Equal(t, "hi", v.String())
	require.False(t, v.IsNull())

	v = b.Wrap(buf, 0, len(buf)).SetNull().Build()
	require.Equal(t, []byte{0x00}, zerowire.Bytes(v))
	require.True(t, v.IsNull())
	require.Nil(t, v.Bytes())

	v = b.Wrap(buf, 0, len(buf)).Set(strings.Repeat("x", 254)).Build()
	require.Equal(t, KindString8, v.Kind())
	require.Equal(t, 256, v.Sizeof())

	v = b.Wrap(buf, 0, len(buf)).Set(strings.Repeat("x", 300)).Build()
	require.Equal(t, KindString16, v.Kind())
	require.Equal(t, []byte{0x72, 0x2C, 0x01}, buf[:3])
	require.Equal(t, 303, v.Sizeof())
}

func TestString_SetFrom(t *testing.T) {
	src := make([]byte, 16)
	s16 := new(flyweight.String16Builder).Wrap(src, 0, len(src)).Set("abc").Build()

	buf := make([]byte, 8)
	v := new(StringBuilder).Wrap(buf, 0, len(buf)).SetFrom(s16).Build()
	require.Equal(t, []byte{0x71, 0x03, 'a', 'b', 'c'}, zerowire.Bytes(v))
}

func TestString_InvalidUTF8(t *testing.T) {
	enc := []byte{0x71, 0x02, 0xC3, 0x28}
	err := new(String).Decode(enc, 0, len(enc))
	require.True(t, errors.HasKind(err, errors.KindInvalidUTF8), "%v", err)
}

func shapeType() *Type {
	return NewType("shape", 1,
		Case{Kind: 1, Name: "circle", New: func() zerowire.View { return new(flyweight.Fixed[uint16]) }},
		Case{Kind: 2, Name: "empty"},
	)
}

func TestType_Dispatch(t *testing.T) {
	typ := shapeType()
	buf := make([]byte, 8)

	v := typ.NewBuilder().Wrap(buf, 0, len(buf)).Set(1, u16(0x0102)).Build()
	require.Equal(t, []byte{0x01, 0x02, 0x01}, zerowire.Bytes(v))
	require.Equal(t, "circle", v.Case().Name)
	require.Equal(t, uint16(0x0102), v.Payload().(*flyweight.Fixed[uint16]).Get())

	v = typ.NewBuilder().Wrap(buf, 0, len(buf)).Set(2, nil).Build()
	require.Equal(t, 1, v.Sizeof())
	require.Nil(t, v.Payload())
}

func TestType_UnknownKind(t *testing.T) {
	enc := []byte{0x09, 0xAA}

	err := shapeType().NewView().Decode(enc, 0, len(enc))
	require.True(t, errors.HasKind(err, errors.KindInvalidVariant), "%v", err)
	require.Nil(t, shapeType().NewView().TryWrap(enc, 0, len(enc)))

	typ := shapeType().WithFallback(Case{Name: "opaque"})
	v := typ.NewView().Wrap(enc, 0, len(enc))
	require.True(t, v.IsFallback())
	require.Equal(t, uint32(9), v.Kind())
	require.Equal(t, 1, v.Sizeof())
}

func TestType_PayloadErrorPath(t *testing.T) {
	enc := []byte{0x01, 0xAA}
	err := shapeType().NewView().Decode(enc, 0, len(enc))
	var e *errors.Error
	require.ErrorAs(t, err, &e)
	require.Equal(t, errors.KindOutOfBounds, e.Kind)
	require.Equal(t, []string{"circle"}, e.Path)
}

func TestType_BuilderMisuse(t *testing.T) {
	buf := make([]byte, 8)
	requireKind(t, errors.KindInvalidVariant, func() {
		shapeType().NewBuilder().Wrap(buf, 0, len(buf)).Set(7, nil)
	})
	requireKind(t, errors.KindInvalidInput, func() {
		shapeType().NewBuilder().Wrap(buf, 0, len(buf)).Set(1, nil)
	})
	requireKind(t, errors.KindInvalidInput, func() {
		shapeType().NewBuilder().Wrap(buf, 0, len(buf)).Set(2, u16(1))
	})
	require.True(t, bytes.Equal(buf, make([]byte, 8)))
}

func TestType_WideDiscriminant(t *testing.T) {
	typ := NewType("op", 2, Case{Kind: 0x0102, Name: "halt"})
	buf := make([]byte, 4)
	v := typ.NewBuilder().Wrap(buf, 0, len(buf)).Set(0x0102, nil).Build()
	require.Equal(t, []byte{0x02, 0x01}, zerowire.Bytes(v))

	requireKind(t, errors.KindUnsupported, func() { NewType("bad", 3) })
	requireKind(t, errors.KindUnsupported, func() {
		NewType("dup", 1, Case{Kind: 1, Name: "a"}, Case{Kind: 1, Name: "b"})
	})
	requireKind(t, errors.KindUnsupported, func() { NewType("big", 1, Case{Kind: 256, Name: "a"}) })
}

func TestType_SetFrom(t *testing.T) {
	typ := shapeType()
	src := make([]byte, 8)
	orig := typ.NewBuilder().Wrap(src, 0, len(src)).Set(1, u16(7)).Build()

	dst := make([]byte, 8)
	cp := typ.NewBuilder().Wrap(dst, 2, len(dst)).SetFrom(orig).Build()
	require.True(t, zerowire.Equal(orig, cp))
}

func TestKind_String(t *testing.T) {
	require.Equal(t, "uint16", KindUint16.String())
	require.Equal(t, "kind(0x99)", Kind(0x99).String())
	require.Equal(t, 4, KindArray32.Width())
	require.Equal(t, zerowire.Tier16, KindString16.Tier())
	require.Equal(t, 0, KindTrue.Width())
}
