package flyweight

import (
	"encoding/binary"
	"fmt"
	"unsafe"

	"github.com/wippyai/zerowire/errors"
	"github.com/wippyai/zerowire/internal/width"
)

// Number is the set of fixed-width scalars.
type Number interface {
	~int8 | ~int16 | ~int32 | ~int64 |
		~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

func sizeOf[T Number]() int {
	var zero T
	return int(unsafe.Sizeof(zero))
}

func fixedName[T Number]() string {
	var zero T
	return fmt.Sprintf("fixed<%T>", zero)
}

func orderOrDefault(o binary.ByteOrder) binary.ByteOrder {
	if o == nil {
		return binary.LittleEndian
	}
	return o
}

func load[T Number](buf []byte, off int, order binary.ByteOrder) T {
	switch sizeOf[T]() {
	case 1:
		v := buf[off]
		return *(*T)(unsafe.Pointer(&v))
	case 2:
		v := order.Uint16(buf[off:])
		return *(*T)(unsafe.Pointer(&v))
	case 4:
		v := order.Uint32(buf[off:])
		return *(*T)(unsafe.Pointer(&v))
	default:
		v := order.Uint64(buf[off:])
		return *(*T)(unsafe.Pointer(&v))
	}
}

func store[T Number](buf []byte, off int, v T, order binary.ByteOrder) {
	p := unsafe.Pointer(&v)
	switch sizeOf[T]() {
	case 1:
		buf[off] = *(*uint8)(p)
	case 2:
		order.PutUint16(buf[off:], *(*uint16)(p))
	case 4:
		order.PutUint32(buf[off:], *(*uint32)(p))
	default:
		order.PutUint64(buf[off:], *(*uint64)(p))
	}
}

// Fixed is a view over a fixed-width scalar. The zero value reads
// little-endian.
type Fixed[T Number] struct {
	Flyweight
	order binary.ByteOrder
}

// WithOrder sets the byte order used to read the value.
func (f *Fixed[T]) WithOrder(order binary.ByteOrder) *Fixed[T] {
	f.order = order
	return f
}

func (f *Fixed[T]) Decode(buf []byte, offset, maxLimit int) error {
	if err := f.Bind(fixedName[T](), buf, offset, maxLimit); err != nil {
		return err
	}
	return f.Need(fixedName[T](), offset+sizeOf[T]())
}

func (f *Fixed[T]) Wrap(buf []byte, offset, maxLimit int) *Fixed[T] {
	Must(f.Decode(buf, offset, maxLimit))
	return f
}

func (f *Fixed[T]) TryWrap(buf []byte, offset, maxLimit int) *Fixed[T] {
	if f.Decode(buf, offset, maxLimit) != nil {
		return nil
	}
	return f
}

func (f *Fixed[T]) Limit() int  { return f.offset + sizeOf[T]() }
func (f *Fixed[T]) Sizeof() int { return sizeOf[T]() }

// Get returns the decoded value.
func (f *Fixed[T]) Get() T {
	return load[T](f.buf, f.offset, orderOrDefault(f.order))
}

// FixedBuilder writes a fixed-width scalar.
type FixedBuilder[T Number] struct {
	BuilderBase
	order binary.ByteOrder
	view  Fixed[T]
}

// WithOrder sets the byte order used to write the value.
func (b *FixedBuilder[T]) WithOrder(order binary.ByteOrder) *FixedBuilder[T] {
	b.order = order
	return b
}

func (b *FixedBuilder[T]) Wrap(buf []byte, offset, maxLimit int) *FixedBuilder[T] {
	b.Reset(buf, offset, maxLimit)
	return b
}

// Set writes v at the builder offset.
func (b *FixedBuilder[T]) Set(v T) *FixedBuilder[T] {
	limit := b.offset + sizeOf[T]()
	b.CheckLimit(fixedName[T](), limit)
	store(b.buf, b.offset, v, orderOrDefault(b.order))
	b.SetLimit(limit)
	return b
}

func (b *FixedBuilder[T]) Build() *Fixed[T] {
	b.view.order = b.order
	return b.view.Wrap(b.buf, b.offset, b.limit)
}

// Bool is a one byte boolean; any value other than 0 or 1 is rejected.
type Bool struct {
	Flyweight
}

func (v *Bool) Decode(buf []byte, offset, maxLimit int) error {
	if err := v.Bind("bool", buf, offset, maxLimit); err != nil {
		return err
	}
	if err := v.Need("bool", offset+1); err != nil {
		return err
	}
	if b := buf[offset]; b > 1 {
		return errors.InvalidData(errors.PhaseDecode, "bool", offset, fmt.Sprintf("value 0x%02x", b))
	}
	return nil
}

func (v *Bool) Wrap(buf []byte, offset, maxLimit int) *Bool {
	Must(v.Decode(buf, offset, maxLimit))
	return v
}

func (v *Bool) TryWrap(buf []byte, offset, maxLimit int) *Bool {
	if v.Decode(buf, offset, maxLimit) != nil {
		return nil
	}
	return v
}

func (v *Bool) Limit() int  { return v.offset + 1 }
func (v *Bool) Sizeof() int { return 1 }
func (v *Bool) Get() bool   { return v.buf[v.offset] == 1 }

// BoolBuilder writes a one byte boolean.
type BoolBuilder struct {
	BuilderBase
	view Bool
}

func (b *BoolBuilder) Wrap(buf []byte, offset, maxLimit int) *BoolBuilder {
	b.Reset(buf, offset, maxLimit)
	return b
}

func (b *BoolBuilder) Set(v bool) *BoolBuilder {
	b.CheckLimit("bool", b.offset+1)
	b.buf[b.offset] = 0
	if v {
		b.buf[b.offset] = 1
	}
	b.SetLimit(b.offset + 1)
	return b
}

func (b *BoolBuilder) Build() *Bool {
	return b.view.Wrap(b.buf, b.offset, b.limit)
}

// prefix reads and writes a tier-width length prefix.
type prefix struct {
	tier  width.Tier
	order binary.ByteOrder
}

func (p prefix) read(buf []byte, off int) uint32 {
	return uint32(width.Read(buf, off, p.tier.Bytes(), orderOrDefault(p.order)))
}

func (p prefix) write(buf []byte, off int, v uint32) {
	width.Write(buf, off, p.tier.Bytes(), uint64(v), orderOrDefault(p.order))
}
