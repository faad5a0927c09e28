package flyweight

import (
	"bytes"
	"encoding/binary"
	stderrors "errors"
	"math"
	"strings"
	"testing"

	"github.com/wippyai/zerowire/errors"
)

func expectPanic(t *testing.T, kind errors.Kind, fn func()) {
	t.Helper()
	defer func() {
		t.Helper()
		r := recover()
		if r == nil {
			t.Fatalf("expected panic with kind %s", kind)
		}
		err, ok := r.(error)
		if !ok || !errors.HasKind(err, kind) {
			t.Fatalf("panic = %v, want kind %s", r, kind)
		}
	}()
	fn()
}

func TestString8_Blue(t *testing.T) {
	buf := make([]byte, 16)
	b := new(String8Builder).Wrap(buf, 0, len(buf))
	v := b.Set("blue").Build()

	want := []byte{0x04, 'b', 'l', 'u', 'e'}
	if !bytes.Equal(buf[:5], want) {
		t.Errorf("encoding = %x, want %x", buf[:5], want)
	}
	if v.String() != "blue" {
		t.Errorf("String() = %q, want blue", v.String())
	}
	if v.Sizeof() != 5 {
		t.Errorf("Sizeof() = %d, want 5", v.Sizeof())
	}
	if b.Sizeof() != 5 {
		t.Errorf("builder Sizeof() = %d, want 5", b.Sizeof())
	}
}

func TestString8_WrapAtEnd(t *testing.T) {
	buf := make([]byte, 10)

	expectPanic(t, errors.KindOutOfBounds, func() {
		new(String8).Wrap(buf, 10, 10)
	})
	if new(String8).TryWrap(buf, 10, 10) != nil {
		t.Error("TryWrap should fail with no room for the length prefix")
	}

	err := new(String8).Decode(buf, 10, 10)
	var e *errors.Error
	if !stderrors.As(err, &e) || e.Phase != errors.PhaseWrap || e.Kind != errors.KindOutOfBounds {
		t.Errorf("Decode error = %v", err)
	}
}

func TestBounded_BoundsExactness(t *testing.T) {
	tests := []struct {
		name  string
		build func(buf []byte) int
		try   func(buf []byte, limit int) bool
	}{
		{
			name:  "string8",
			build: func(buf []byte) int { return new(String8Builder).Wrap(buf, 3, len(buf)).Set("hello").Limit() },
			try:   func(buf []byte, limit int) bool { return new(String8).TryWrap(buf, 3, limit) != nil },
		},
		{
			name:  "string16",
			build: func(buf []byte) int { return new(String16Builder).Wrap(buf, 3, len(buf)).Set("hello").Limit() },
			try:   func(buf []byte, limit int) bool { return new(String16).TryWrap(buf, 3, limit) != nil },
		},
		{
			name:  "string32",
			build: func(buf []byte) int { return new(String32Builder).Wrap(buf, 3, len(buf)).Set("hello").Limit() },
			try:   func(buf []byte, limit int) bool { return new(String32).TryWrap(buf, 3, limit) != nil },
		},
		{
			name:  "octets16",
			build: func(buf []byte) int { return new(Octets16Builder).Wrap(buf, 3, len(buf)).Set([]byte{1, 2, 3}).Limit() },
			try:   func(buf []byte, limit int) bool { return new(Octets16).TryWrap(buf, 3, limit) != nil },
		},
		{
			name:  "fixed<int64>",
			build: func(buf []byte) int { return new(FixedBuilder[int64]).Wrap(buf, 3, len(buf)).Set(-9).Limit() },
			try:   func(buf []byte, limit int) bool { return new(Fixed[int64]).TryWrap(buf, 3, limit) != nil },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := make([]byte, 32)
			end := tt.build(buf)
			for limit := 3; limit < end; limit++ {
				if tt.try(buf, limit) {
					t.Errorf("TryWrap succeeded with limit %d < end %d", limit, end)
				}
			}
			if !tt.try(buf, end) {
				t.Errorf("TryWrap failed at exact end %d", end)
			}
		})
	}
}

func TestBounded_Null(t *testing.T) {
	buf := make([]byte, 8)
	v := new(String16Builder).Wrap(buf, 0, len(buf)).SetNull().Build()

	if !v.IsNull() {
		t.Error("expected null")
	}
	if v.Limit() != 2 {
		t.Errorf("Limit() = %d, want 2", v.Limit())
	}
	if buf[0] != 0xFF || buf[1] != 0xFF {
		t.Errorf("null prefix = %x", buf[:2])
	}
	if v.Bytes() != nil {
		t.Error("null Bytes() should be nil")
	}
}

func TestBounded_LengthExceeded(t *testing.T) {
	buf := make([]byte, 512)
	for i := range buf {
		buf[i] = 0xAA
	}
	b := new(Octets8Builder).Wrap(buf, 0, len(buf))

	expectPanic(t, errors.KindLengthExceeded, func() {
		b.Set(make([]byte, 255))
	})
	if buf[0] != 0xAA {
		t.Error("no byte may be written before the length check")
	}

	b.Set(make([]byte, 254))
	if buf[0] != 0xFE {
		t.Errorf("prefix = %x, want fe", buf[0])
	}
}

func TestBounded_CheckLimitBeforeWrite(t *testing.T) {
	buf := []byte{0xAA, 0xAA, 0xAA, 0xAA}
	b := new(String8Builder).Wrap(buf, 0, 3)

	expectPanic(t, errors.KindOutOfBounds, func() {
		b.Set("abc")
	})
	if buf[0] != 0xAA {
		t.Error("prefix written despite bounds failure")
	}
}

func TestString_InvalidUTF8(t *testing.T) {
	buf := []byte{0x02, 0xff, 0xfe}
	err := new(String8).Decode(buf, 0, len(buf))
	if !errors.HasKind(err, errors.KindInvalidUTF8) {
		t.Errorf("Decode error = %v, want invalid_utf8", err)
	}

	if new(Octets8).TryWrap(buf, 0, len(buf)) == nil {
		t.Error("octets must not validate UTF-8")
	}
}

func TestBounded_SetFrom(t *testing.T) {
	src := make([]byte, 64)
	long := new(String32Builder).Wrap(src, 0, len(src)).Set("copied").Build()

	dst := make([]byte, 16)
	v := new(String8Builder).Wrap(dst, 0, len(dst)).SetFrom(long).Build()
	if v.String() != "copied" || v.Sizeof() != 7 {
		t.Errorf("SetFrom = %q (%d bytes)", v.String(), v.Sizeof())
	}

	null := new(String32Builder).Wrap(src, 0, len(src)).SetNull().Build()
	v = new(String8Builder).Wrap(dst, 0, len(dst)).SetFrom(null).Build()
	if !v.IsNull() {
		t.Error("SetFrom(null) should produce null")
	}
}

func TestBounded_ByteOrder(t *testing.T) {
	buf := make([]byte, 8)
	b := new(String16Builder).Wrap(buf, 0, len(buf))
	b.SetOrder(binary.BigEndian)
	b.Set("hi")
	if buf[0] != 0x00 || buf[1] != 0x02 {
		t.Errorf("big endian prefix = %x", buf[:2])
	}

	v := new(String16)
	v.SetOrder(binary.BigEndian)
	if v.Wrap(buf, 0, len(buf)).String() != "hi" {
		t.Error("big endian decode failed")
	}
}

func TestFixed(t *testing.T) {
	buf := make([]byte, 16)

	new(FixedBuilder[int32]).Wrap(buf, 0, len(buf)).Set(-2)
	if !bytes.Equal(buf[:4], []byte{0xFE, 0xFF, 0xFF, 0xFF}) {
		t.Errorf("int32 encoding = %x", buf[:4])
	}
	if got := new(Fixed[int32]).Wrap(buf, 0, len(buf)).Get(); got != -2 {
		t.Errorf("Get() = %d, want -2", got)
	}

	v := new(FixedBuilder[float64]).WithOrder(binary.BigEndian).Wrap(buf, 4, len(buf)).Set(math.Pi).Build()
	if v.Get() != math.Pi {
		t.Errorf("float64 = %v", v.Get())
	}
	if v.Limit() != 12 || v.Sizeof() != 8 {
		t.Errorf("Limit/Sizeof = %d/%d", v.Limit(), v.Sizeof())
	}
	if binary.BigEndian.Uint64(buf[4:]) != math.Float64bits(math.Pi) {
		t.Error("float64 not written big endian")
	}

	type port uint16
	new(FixedBuilder[port]).Wrap(buf, 0, 2).Set(8080)
	if got := new(Fixed[port]).Wrap(buf, 0, 2).Get(); got != 8080 {
		t.Errorf("named type = %d", got)
	}
}

func TestBool(t *testing.T) {
	buf := make([]byte, 2)
	if !new(BoolBuilder).Wrap(buf, 0, 1).Set(true).Build().Get() {
		t.Error("expected true")
	}

	buf[1] = 7
	err := new(Bool).Decode(buf, 1, 2)
	if !errors.HasKind(err, errors.KindInvalidData) {
		t.Errorf("Decode(7) = %v, want invalid_data", err)
	}
}

func TestFlyweight_Bind(t *testing.T) {
	buf := make([]byte, 4)
	tests := []struct {
		name     string
		offset   int
		maxLimit int
	}{
		{"offset past max", 3, 2},
		{"max past buffer", 0, 5},
		{"negative offset", -1, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var f Flyweight
			err := f.Bind("test", buf, tt.offset, tt.maxLimit)
			if !errors.HasKind(err, errors.KindOutOfBounds) {
				t.Errorf("Bind = %v", err)
			}
			if !strings.Contains(err.Error(), "outside buffer") {
				t.Errorf("message = %s", err.Error())
			}
		})
	}

	expectPanic(t, errors.KindOutOfBounds, func() {
		var b BuilderBase
		b.Reset(buf, 3, 2)
	})
}
