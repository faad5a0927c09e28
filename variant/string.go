package variant

import (
	"github.com/wippyai/zerowire/errors"
	"github.com/wippyai/zerowire/flyweight"
	"github.com/wippyai/zerowire/internal/width"
)

type stringPayload interface {
	Decode(buf []byte, offset, maxLimit int) error
	Limit() int
	IsNull() bool
	Bytes() []byte
}

// String is an auto-compacting string: {kind, string8|string16|string32}
// or the implicit null case.
type String struct {
	flyweight.Flyweight
	s8      flyweight.String8
	s16     flyweight.String16
	s32     flyweight.String32
	payload stringPayload
}

func (v *String) Decode(buf []byte, offset, maxLimit int) error {
	v.payload = nil
	if err := v.Bind("string", buf, offset, maxLimit); err != nil {
		return err
	}
	if err := v.Need("string", offset+1); err != nil {
		return err
	}
	switch k := Kind(buf[offset]); k {
	case KindNull:
		return nil
	case KindString8:
		v.payload = &v.s8
	case KindString16:
		v.payload = &v.s16
	case KindString32:
		v.payload = &v.s32
	default:
		err := errors.InvalidDiscriminant(errors.PhaseDecode, "string", uint32(k))
		err.Offset = offset
		return err
	}
	if err := v.payload.Decode(buf, offset+1, maxLimit); err != nil {
		v.payload = nil
		return err
	}
	return nil
}

func (v *String) Wrap(buf []byte, offset, maxLimit int) *String {
	flyweight.Must(v.Decode(buf, offset, maxLimit))
	return v
}

func (v *String) TryWrap(buf []byte, offset, maxLimit int) *String {
	if v.Decode(buf, offset, maxLimit) != nil {
		return nil
	}
	return v
}

func (v *String) Kind() Kind { return Kind(v.Buffer()[v.Offset()]) }

// IsNull reports whether the null case is active or the payload itself
// carries the null length marker.
func (v *String) IsNull() bool { return v.payload == nil || v.payload.IsNull() }

// Bytes returns the payload without copying.
func (v *String) Bytes() []byte {
	if v.IsNull() {
		return nil
	}
	return v.payload.Bytes()
}

func (v *String) String() string { return string(v.Bytes()) }

func (v *String) Limit() int {
	if v.payload == nil {
		return v.Offset() + 1
	}
	return v.payload.Limit()
}

func (v *String) Sizeof() int { return v.Limit() - v.Offset() }

// StringKindOf returns the narrowest string case for a payload of n bytes.
func StringKindOf(n int) (Kind, bool) {
	t, ok := width.ForLength(n)
	if !ok {
		return KindNull, false
	}
	return stringKind(t), true
}

// StringBuilder writes a String using its narrowest case.
type StringBuilder struct {
	flyweight.BuilderBase
	s8   flyweight.String8Builder
	s16  flyweight.String16Builder
	s32  flyweight.String32Builder
	view String
}

func (b *StringBuilder) Wrap(buf []byte, offset, maxLimit int) *StringBuilder {
	b.Reset(buf, offset, maxLimit)
	return b
}

func (b *StringBuilder) Set(s string) *StringBuilder {
	k, start := b.begin(len(s))
	buf := b.Buffer()
	var limit int
	switch k {
	case KindString8:
		limit = b.s8.Wrap(buf, start, b.MaxLimit()).Set(s).Limit()
	case KindString16:
		limit = b.s16.Wrap(buf, start, b.MaxLimit()).Set(s).Limit()
	default:
		limit = b.s32.Wrap(buf, start, b.MaxLimit()).Set(s).Limit()
	}
	buf[b.Offset()] = byte(k)
	b.SetLimit(limit)
	return b
}

// SetBytes writes p as a string payload. p must be valid UTF-8.
func (b *StringBuilder) SetBytes(p []byte) *StringBuilder {
	k, start := b.begin(len(p))
	buf := b.Buffer()
	var limit int
	switch k {
	case KindString8:
		limit = b.s8.Wrap(buf, start, b.MaxLimit()).SetBytes(p).Limit()
	case KindString16:
		limit = b.s16.Wrap(buf, start, b.MaxLimit()).SetBytes(p).Limit()
	default:
		limit = b.s32.Wrap(buf, start, b.MaxLimit()).SetBytes(p).Limit()
	}
	buf[b.Offset()] = byte(k)
	b.SetLimit(limit)
	return b
}

func (b *StringBuilder) begin(n int) (Kind, int) {
	k, ok := StringKindOf(n)
	if !ok {
		panic(errors.LengthExceeded("string", n, int(width.Tier32.Max())-1))
	}
	start := b.Offset() + 1
	b.CheckLimit("string", start)
	return k, start
}

func (b *StringBuilder) SetNull() *StringBuilder {
	b.CheckLimit("string", b.Offset()+1)
	b.Buffer()[b.Offset()] = byte(KindNull)
	b.SetLimit(b.Offset() + 1)
	return b
}

// SetFrom copies src, re-deriving the narrowest case for its length.
func (b *StringBuilder) SetFrom(src flyweight.Bounded) *StringBuilder {
	if src.IsNull() {
		return b.SetNull()
	}
	return b.SetBytes(src.Bytes())
}

func (b *StringBuilder) Build() *String {
	return b.view.Wrap(b.Buffer(), b.Offset(), b.Limit())
}
