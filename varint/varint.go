// Package varint implements zig-zag base-128 variable-length integers.
//
// A signed value is first mapped to unsigned with zig-zag
// ((v << 1) ^ (v >> 31)) so small magnitudes of either sign stay small,
// then written seven bits per byte, least significant group first, with
// the high bit set on every byte except the last.
package varint

import (
	"fmt"

	"github.com/wippyai/zerowire/errors"
	"github.com/wippyai/zerowire/flyweight"
)

const (
	MaxLen32 = 5
	MaxLen64 = 10
)

// ZigZag32 maps a signed value to unsigned.
func ZigZag32(v int32) uint32 {
	return uint32(v<<1) ^ uint32(v>>31)
}

// UnZigZag32 reverses ZigZag32.
func UnZigZag32(u uint32) int32 {
	return int32(u>>1) ^ -int32(u&1)
}

func ZigZag64(v int64) uint64 {
	return uint64(v<<1) ^ uint64(v>>63)
}

func UnZigZag64(u uint64) int64 {
	return int64(u>>1) ^ -int64(u&1)
}

// Size32 returns the encoded length of v.
func Size32(v int32) int {
	u := ZigZag32(v)
	n := 1
	for u >= 0x80 {
		u >>= 7
		n++
	}
	return n
}

// Size64 returns the encoded length of v.
func Size64(v int64) int {
	u := ZigZag64(v)
	n := 1
	for u >= 0x80 {
		u >>= 7
		n++
	}
	return n
}

// Put32 encodes v into dst and returns the number of bytes written.
// dst must hold at least Size32(v) bytes.
func Put32(dst []byte, v int32) int {
	u := ZigZag32(v)
	i := 0
	for u >= 0x80 {
		dst[i] = byte(u) | 0x80
		u >>= 7
		i++
	}
	dst[i] = byte(u)
	return i + 1
}

// Put64 encodes v into dst and returns the number of bytes written.
func Put64(dst []byte, v int64) int {
	u := ZigZag64(v)
	i := 0
	for u >= 0x80 {
		dst[i] = byte(u) | 0x80
		u >>= 7
		i++
	}
	dst[i] = byte(u)
	return i + 1
}

// Read32 decodes a value from the start of src and returns it with the
// number of bytes consumed. A stream that ends before its last byte is
// reported as out of bounds; one that needs more than 32 payload bits is
// an overflow.
func Read32(src []byte) (int32, int, error) {
	var u uint32
	for i := 0; i < MaxLen32; i++ {
		if i >= len(src) {
			return 0, 0, errors.OutOfBounds(errors.PhaseDecode, "varint32", 0, i+1, len(src))
		}
		b := src[i]
		if i == MaxLen32-1 && b > 0x0F {
			return 0, 0, errors.Overflow(errors.PhaseDecode, "varint32", i,
				fmt.Sprintf("fifth byte 0x%02x exceeds 32 bits", b))
		}
		u |= uint32(b&0x7f) << (7 * uint(i))
		if b&0x80 == 0 {
			return UnZigZag32(u), i + 1, nil
		}
	}
	// unreachable: the fifth byte either ends the value or overflows
	return 0, 0, errors.Overflow(errors.PhaseDecode, "varint32", MaxLen32, "too many bytes")
}

// Read64 decodes a 64-bit value from the start of src.
func Read64(src []byte) (int64, int, error) {
	var u uint64
	for i := 0; i < MaxLen64; i++ {
		if i >= len(src) {
			return 0, 0, errors.OutOfBounds(errors.PhaseDecode, "varint64", 0, i+1, len(src))
		}
		b := src[i]
		if i == MaxLen64-1 && b > 0x01 {
			return 0, 0, errors.Overflow(errors.PhaseDecode, "varint64", i,
				fmt.Sprintf("tenth byte 0x%02x exceeds 64 bits", b))
		}
		u |= uint64(b&0x7f) << (7 * uint(i))
		if b&0x80 == 0 {
			return UnZigZag64(u), i + 1, nil
		}
	}
	return 0, 0, errors.Overflow(errors.PhaseDecode, "varint64", MaxLen64, "too many bytes")
}

// Varint32 is a view over a zig-zag varint holding an int32.
type Varint32 struct {
	flyweight.Flyweight
}

func (v *Varint32) Decode(buf []byte, offset, maxLimit int) error {
	if err := v.Bind("varint32", buf, offset, maxLimit); err != nil {
		return err
	}
	if _, _, err := Read32(buf[offset:maxLimit]); err != nil {
		return rebase(err, offset, maxLimit)
	}
	return nil
}

func (v *Varint32) Wrap(buf []byte, offset, maxLimit int) *Varint32 {
	flyweight.Must(v.Decode(buf, offset, maxLimit))
	return v
}

func (v *Varint32) TryWrap(buf []byte, offset, maxLimit int) *Varint32 {
	if v.Decode(buf, offset, maxLimit) != nil {
		return nil
	}
	return v
}

func (v *Varint32) Limit() int {
	buf := v.Buffer()
	i := v.Offset()
	for buf[i]&0x80 != 0 {
		i++
	}
	return i + 1
}

func (v *Varint32) Sizeof() int { return v.Limit() - v.Offset() }

func (v *Varint32) Get() int32 {
	val, _, _ := Read32(v.Buffer()[v.Offset():v.MaxLimit()])
	return val
}

// Varint64 is a view over a zig-zag varint holding an int64.
type Varint64 struct {
	flyweight.Flyweight
}

func (v *Varint64) Decode(buf []byte, offset, maxLimit int) error {
	if err := v.Bind("varint64", buf, offset, maxLimit); err != nil {
		return err
	}
	if _, _, err := Read64(buf[offset:maxLimit]); err != nil {
		return rebase(err, offset, maxLimit)
	}
	return nil
}

func (v *Varint64) Wrap(buf []byte, offset, maxLimit int) *Varint64 {
	flyweight.Must(v.Decode(buf, offset, maxLimit))
	return v
}

func (v *Varint64) TryWrap(buf []byte, offset, maxLimit int) *Varint64 {
	if v.Decode(buf, offset, maxLimit) != nil {
		return nil
	}
	return v
}

func (v *Varint64) Limit() int {
	buf := v.Buffer()
	i := v.Offset()
	for buf[i]&0x80 != 0 {
		i++
	}
	return i + 1
}

func (v *Varint64) Sizeof() int { return v.Limit() - v.Offset() }

func (v *Varint64) Get() int64 {
	val, _, _ := Read64(v.Buffer()[v.Offset():v.MaxLimit()])
	return val
}

// rebase turns an error relative to a sub-slice into one relative to the
// wrapped buffer.
func rebase(err error, offset, maxLimit int) error {
	if e, ok := err.(*errors.Error); ok {
		if e.Kind == errors.KindOutOfBounds {
			return errors.OutOfBounds(errors.PhaseWrap, e.Type, offset, offset+e.Value.(int), maxLimit)
		}
		e.Offset += offset
	}
	return err
}

// Varint32Builder writes a zig-zag varint.
type Varint32Builder struct {
	flyweight.BuilderBase
	view Varint32
}

func (b *Varint32Builder) Wrap(buf []byte, offset, maxLimit int) *Varint32Builder {
	b.Reset(buf, offset, maxLimit)
	return b
}

func (b *Varint32Builder) Set(v int32) *Varint32Builder {
	limit := b.Offset() + Size32(v)
	b.CheckLimit("varint32", limit)
	Put32(b.Buffer()[b.Offset():], v)
	b.SetLimit(limit)
	return b
}

func (b *Varint32Builder) Build() *Varint32 {
	return b.view.Wrap(b.Buffer(), b.Offset(), b.Limit())
}

// Varint64Builder writes a 64-bit zig-zag varint.
type Varint64Builder struct {
	flyweight.BuilderBase
	view Varint64
}

func (b *Varint64Builder) Wrap(buf []byte, offset, maxLimit int) *Varint64Builder {
	b.Reset(buf, offset, maxLimit)
	return b
}

func (b *Varint64Builder) Set(v int64) *Varint64Builder {
	limit := b.Offset() + Size64(v)
	b.CheckLimit("varint64", limit)
	Put64(b.Buffer()[b.Offset():], v)
	b.SetLimit(limit)
	return b
}

func (b *Varint64Builder) Build() *Varint64 {
	return b.view.Wrap(b.Buffer(), b.Offset(), b.Limit())
}
