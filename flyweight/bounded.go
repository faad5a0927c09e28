package flyweight

import (
	"encoding/binary"
	"unicode/utf8"

	"github.com/wippyai/zerowire/errors"
	"github.com/wippyai/zerowire/internal/width"
)

// Bounded is implemented by every length-prefixed string and octet view.
type Bounded interface {
	IsNull() bool
	Bytes() []byte
}

// boundedView is the shared core of String8/16/32 and Octets8/16/32:
// {length:uintN, bytes[length]}. An all-ones length marks null.
type boundedView struct {
	Flyweight
	prefix prefix
}

// SetOrder sets the byte order of the length prefix.
func (v *boundedView) SetOrder(order binary.ByteOrder) { v.prefix.order = order }

func (v *boundedView) decode(typ string, tier width.Tier, text bool, buf []byte, offset, maxLimit int) error {
	v.prefix.tier = tier
	if err := v.Bind(typ, buf, offset, maxLimit); err != nil {
		return err
	}
	n := tier.Bytes()
	if err := v.Need(typ, offset+n); err != nil {
		return err
	}
	length := v.prefix.read(buf, offset)
	if length == tier.Max() {
		return nil
	}
	end, ok := width.Add(offset+n, int(length))
	if !ok {
		return errors.Overflow(errors.PhaseDecode, typ, offset, "length overflows offset")
	}
	if err := v.Need(typ, end); err != nil {
		return err
	}
	if text && !utf8.Valid(buf[offset+n:end]) {
		return errors.InvalidUTF8(errors.PhaseDecode, typ, buf[offset+n:end])
	}
	return nil
}

func (v *boundedView) length() uint32 { return v.prefix.read(v.buf, v.offset) }

// IsNull reports whether the value is the explicit absent marker.
func (v *boundedView) IsNull() bool { return v.length() == v.prefix.tier.Max() }

// Length returns the payload length, 0 for null.
func (v *boundedView) Length() int {
	if v.IsNull() {
		return 0
	}
	return int(v.length())
}

// Bytes returns the payload without copying, nil for null.
func (v *boundedView) Bytes() []byte {
	if v.IsNull() {
		return nil
	}
	start := v.offset + v.prefix.tier.Bytes()
	return v.buf[start : start+int(v.length())]
}

func (v *boundedView) Limit() int {
	return v.offset + v.prefix.tier.Bytes() + v.Length()
}

func (v *boundedView) Sizeof() int { return v.Limit() - v.offset }

// boundedBuilder is the shared core of the string and octet builders.
type boundedBuilder struct {
	BuilderBase
	prefix prefix
}

// SetOrder sets the byte order of the length prefix.
func (b *boundedBuilder) SetOrder(order binary.ByteOrder) { b.prefix.order = order }

func (b *boundedBuilder) write(typ string, tier width.Tier, p []byte) {
	b.prefix.tier = tier
	if maxLen := int64(tier.Max()) - 1; int64(len(p)) > maxLen {
		panic(errors.LengthExceeded(typ, len(p), int(maxLen)))
	}
	limit := b.offset + tier.Bytes() + len(p)
	b.CheckLimit(typ, limit)
	b.prefix.write(b.buf, b.offset, uint32(len(p)))
	copy(b.buf[b.offset+tier.Bytes():], p)
	b.SetLimit(limit)
}

func (b *boundedBuilder) writeString(typ string, tier width.Tier, s string) {
	b.prefix.tier = tier
	if maxLen := int64(tier.Max()) - 1; int64(len(s)) > maxLen {
		panic(errors.LengthExceeded(typ, len(s), int(maxLen)))
	}
	limit := b.offset + tier.Bytes() + len(s)
	b.CheckLimit(typ, limit)
	b.prefix.write(b.buf, b.offset, uint32(len(s)))
	copy(b.buf[b.offset+tier.Bytes():], s)
	b.SetLimit(limit)
}

func (b *boundedBuilder) writeNull(typ string, tier width.Tier) {
	b.prefix.tier = tier
	limit := b.offset + tier.Bytes()
	b.CheckLimit(typ, limit)
	b.prefix.write(b.buf, b.offset, tier.Max())
	b.SetLimit(limit)
}

func (b *boundedBuilder) writeFrom(typ string, tier width.Tier, v Bounded) {
	if v.IsNull() {
		b.writeNull(typ, tier)
		return
	}
	b.write(typ, tier, v.Bytes())
}

// String8 is a UTF-8 string with a one byte length prefix.
type String8 struct{ boundedView }

func (v *String8) Decode(buf []byte, offset, maxLimit int) error {
	return v.decode("string8", width.Tier8, true, buf, offset, maxLimit)
}

func (v *String8) Wrap(buf []byte, offset, maxLimit int) *String8 {
	Must(v.Decode(buf, offset, maxLimit))
	return v
}

func (v *String8) TryWrap(buf []byte, offset, maxLimit int) *String8 {
	if v.Decode(buf, offset, maxLimit) != nil {
		return nil
	}
	return v
}

// String returns a copy of the payload.
func (v *String8) String() string { return string(v.Bytes()) }

// String16 is a UTF-8 string with a two byte length prefix.
type String16 struct{ boundedView }

func (v *String16) Decode(buf []byte, offset, maxLimit int) error {
	return v.decode("string16", width.Tier16, true, buf, offset, maxLimit)
}

func (v *String16) Wrap(buf []byte, offset, maxLimit int) *String16 {
	Must(v.Decode(buf, offset, maxLimit))
	return v
}

func (v *String16) TryWrap(buf []byte, offset, maxLimit int) *String16 {
	if v.Decode(buf, offset, maxLimit) != nil {
		return nil
	}
	return v
}

func (v *String16) String() string { return string(v.Bytes()) }

// String32 is a UTF-8 string with a four byte length prefix.
type String32 struct{ boundedView }

func (v *String32) Decode(buf []byte, offset, maxLimit int) error {
	return v.decode("string32", width.Tier32, true, buf, offset, maxLimit)
}

func (v *String32) Wrap(buf []byte, offset, maxLimit int) *String32 {
	Must(v.Decode(buf, offset, maxLimit))
	return v
}

func (v *String32) TryWrap(buf []byte, offset, maxLimit int) *String32 {
	if v.Decode(buf, offset, maxLimit) != nil {
		return nil
	}
	return v
}

func (v *String32) String() string { return string(v.Bytes()) }

// Octets8 is an opaque byte span with a one byte length prefix.
type Octets8 struct{ boundedView }

func (v *Octets8) Decode(buf []byte, offset, maxLimit int) error {
	return v.decode("octets8", width.Tier8, false, buf, offset, maxLimit)
}

func (v *Octets8) Wrap(buf []byte, offset, maxLimit int) *Octets8 {
	Must(v.Decode(buf, offset, maxLimit))
	return v
}

func (v *Octets8) TryWrap(buf []byte, offset, maxLimit int) *Octets8 {
	if v.Decode(buf, offset, maxLimit) != nil {
		return nil
	}
	return v
}

// Octets16 is an opaque byte span with a two byte length prefix.
type Octets16 struct{ boundedView }

func (v *Octets16) Decode(buf []byte, offset, maxLimit int) error {
	return v.decode("octets16", width.Tier16, false, buf, offset, maxLimit)
}

func (v *Octets16) Wrap(buf []byte, offset, maxLimit int) *Octets16 {
	Must(v.Decode(buf, offset, maxLimit))
	return v
}

func (v *Octets16) TryWrap(buf []byte, offset, maxLimit int) *Octets16 {
	if v.Decode(buf, offset, maxLimit) != nil {
		return nil
	}
	return v
}

// Octets32 is an opaque byte span with a four byte length prefix.
type Octets32 struct{ boundedView }

func (v *Octets32) Decode(buf []byte, offset, maxLimit int) error {
	return v.decode("octets32", width.Tier32, false, buf, offset, maxLimit)
}

func (v *Octets32) Wrap(buf []byte, offset, maxLimit int) *Octets32 {
	Must(v.Decode(buf, offset, maxLimit))
	return v
}

func (v *Octets32) TryWrap(buf []byte, offset, maxLimit int) *Octets32 {
	if v.Decode(buf, offset, maxLimit) != nil {
		return nil
	}
	return v
}

// String8Builder writes a String8.
type String8Builder struct {
	boundedBuilder
	view String8
}

func (b *String8Builder) Wrap(buf []byte, offset, maxLimit int) *String8Builder {
	b.Reset(buf, offset, maxLimit)
	return b
}

func (b *String8Builder) Set(s string) *String8Builder {
	b.writeString("string8", width.Tier8, s)
	return b
}

func (b *String8Builder) SetBytes(p []byte) *String8Builder {
	b.write("string8", width.Tier8, p)
	return b
}

func (b *String8Builder) SetNull() *String8Builder {
	b.writeNull("string8", width.Tier8)
	return b
}

// SetFrom copies the payload of any bounded view, re-encoding the prefix.
func (b *String8Builder) SetFrom(v Bounded) *String8Builder {
	b.writeFrom("string8", width.Tier8, v)
	return b
}

func (b *String8Builder) Build() *String8 {
	b.view.prefix.order = b.prefix.order
	return b.view.Wrap(b.buf, b.offset, b.limit)
}

// String16Builder writes a String16.
type String16Builder struct {
	boundedBuilder
	view String16
}

func (b *String16Builder) Wrap(buf []byte, offset, maxLimit int) *String16Builder {
	b.Reset(buf, offset, maxLimit)
	return b
}

func (b *String16Builder) Set(s string) *String16Builder {
	b.writeString("string16", width.Tier16, s)
	return b
}

func (b *String16Builder) SetBytes(p []byte) *String16Builder {
	b.write("string16", width.Tier16, p)
	return b
}

func (b *String16Builder) SetNull() *String16Builder {
	b.writeNull("string16", width.Tier16)
	return b
}

func (b *String16Builder) SetFrom(v Bounded) *String16Builder {
	b.writeFrom("string16", width.Tier16, v)
	return b
}

func (b *String16Builder) Build() *String16 {
	b.view.prefix.order = b.prefix.order
	return b.view.Wrap(b.buf, b.offset, b.limit)
}

// String32Builder writes a String32.
type String32Builder struct {
	boundedBuilder
	view String32
}

func (b *String32Builder) Wrap(buf []byte, offset, maxLimit int) *String32Builder {
	b.Reset(buf, offset, maxLimit)
	return b
}

func (b *String32Builder) Set(s string) *String32Builder {
	b.writeString("string32", width.Tier32, s)
	return b
}

func (b *String32Builder) SetBytes(p []byte) *String32Builder {
	b.write("string32", width.Tier32, p)
	return b
}

func (b *String32Builder) SetNull() *String32Builder {
	b.writeNull("string32", width.Tier32)
	return b
}

func (b *String32Builder) SetFrom(v Bounded) *String32Builder {
	b.writeFrom("string32", width.Tier32, v)
	return b
}

func (b *String32Builder) Build() *String32 {
	b.view.prefix.order = b.prefix.order
	return b.view.Wrap(b.buf, b.offset, b.limit)
}

// Octets8Builder writes an Octets8.
type Octets8Builder struct {
	boundedBuilder
	view Octets8
}

func (b *Octets8Builder) Wrap(buf []byte, offset, maxLimit int) *Octets8Builder {
	b.Reset(buf, offset, maxLimit)
	return b
}

func (b *Octets8Builder) Set(p []byte) *Octets8Builder {
	b.write("octets8", width.Tier8, p)
	return b
}

func (b *Octets8Builder) SetNull() *Octets8Builder {
	b.writeNull("octets8", width.Tier8)
	return b
}

func (b *Octets8Builder) SetFrom(v Bounded) *Octets8Builder {
	b.writeFrom("octets8", width.Tier8, v)
	return b
}

func (b *Octets8Builder) Build() *Octets8 {
	b.view.prefix.order = b.prefix.order
	return b.view.Wrap(b.buf, b.offset, b.limit)
}

// Octets16Builder writes an Octets16.
type Octets16Builder struct {
	boundedBuilder
	view Octets16
}

func (b *Octets16Builder) Wrap(buf []byte, offset, maxLimit int) *Octets16Builder {
	b.Reset(buf, offset, maxLimit)
	return b
}

func (b *Octets16Builder) Set(p []byte) *Octets16Builder {
	b.write("octets16", width.Tier16, p)
	return b
}

func (b *Octets16Builder) SetNull() *Octets16Builder {
	b.writeNull("octets16", width.Tier16)
	return b
}

func (b *Octets16Builder) SetFrom(v Bounded) *Octets16Builder {
	b.writeFrom("octets16", width.Tier16, v)
	return b
}

func (b *Octets16Builder) Build() *Octets16 {
	b.view.prefix.order = b.prefix.order
	return b.view.Wrap(b.buf, b.offset, b.limit)
}

// Octets32Builder writes an Octets32.
type Octets32Builder struct {
	boundedBuilder
	view Octets32
}

func (b *Octets32Builder) Wrap(buf []byte, offset, maxLimit int) *Octets32Builder {
	b.Reset(buf, offset, maxLimit)
	return b
}

func (b *Octets32Builder) Set(p []byte) *Octets32Builder {
	b.write("octets32", width.Tier32, p)
	return b
}

func (b *Octets32Builder) SetNull() *Octets32Builder {
	b.writeNull("octets32", width.Tier32)
	return b
}

func (b *Octets32Builder) SetFrom(v Bounded) *Octets32Builder {
	b.writeFrom("octets32", width.Tier32, v)
	return b
}

func (b *Octets32Builder) Build() *Octets32 {
	b.view.prefix.order = b.prefix.order
	return b.view.Wrap(b.buf, b.offset, b.limit)
}
