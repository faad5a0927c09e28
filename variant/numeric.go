package variant

import (
	"encoding/binary"

	"github.com/wippyai/zerowire/errors"
	"github.com/wippyai/zerowire/flyweight"
	"github.com/wippyai/zerowire/internal/width"
)

// Numeric payloads are little-endian.

func isIntKind(k Kind) bool {
	switch k {
	case KindZero, KindOne, KindInt8, KindInt16, KindInt32, KindInt64:
		return true
	}
	return false
}

func isUintKind(k Kind) bool {
	switch k {
	case KindZero, KindOne, KindUint8, KindUint16, KindUint32, KindUint64:
		return true
	}
	return false
}

// IntKindOf returns the narrowest signed case for v: the implicit Zero and
// One cases, else the smallest payload from width.Signed.
func IntKindOf(v int64) Kind {
	switch v {
	case 0:
		return KindZero
	case 1:
		return KindOne
	}
	return intKind(width.Signed(v))
}

// UintKindOf returns the narrowest unsigned case for v.
func UintKindOf(v uint64) Kind {
	switch v {
	case 0:
		return KindZero
	case 1:
		return KindOne
	}
	return uintKind(width.Unsigned(v))
}

func readInt(k Kind, buf []byte, off int) int64 {
	switch k {
	case KindZero:
		return 0
	case KindOne:
		return 1
	}
	n := k.Width()
	return width.SignExtend(width.Read(buf, off, n, binary.LittleEndian), n)
}

func readUint(k Kind, buf []byte, off int) uint64 {
	switch k {
	case KindZero:
		return 0
	case KindOne:
		return 1
	}
	return width.Read(buf, off, k.Width(), binary.LittleEndian)
}

// writeNumber writes the payload of kind k; implicit kinds write nothing.
func writeNumber(k Kind, buf []byte, off int, raw uint64) {
	if n := k.Width(); n > 0 {
		width.Write(buf, off, n, raw, binary.LittleEndian)
	}
}

// Int is an auto-compacting signed integer: {kind, payload[0|1|2|4|8]}.
type Int struct {
	flyweight.Flyweight
}

func (v *Int) Decode(buf []byte, offset, maxLimit int) error {
	if err := v.Bind("int", buf, offset, maxLimit); err != nil {
		return err
	}
	if err := v.Need("int", offset+1); err != nil {
		return err
	}
	k := Kind(buf[offset])
	if !isIntKind(k) {
		err := errors.InvalidDiscriminant(errors.PhaseDecode, "int", uint32(k))
		err.Offset = offset
		return err
	}
	return v.Need("int", offset+1+k.Width())
}

func (v *Int) Wrap(buf []byte, offset, maxLimit int) *Int {
	flyweight.Must(v.Decode(buf, offset, maxLimit))
	return v
}

func (v *Int) TryWrap(buf []byte, offset, maxLimit int) *Int {
	if v.Decode(buf, offset, maxLimit) != nil {
		return nil
	}
	return v
}

func (v *Int) Kind() Kind  { return Kind(v.Buffer()[v.Offset()]) }
func (v *Int) Limit() int  { return v.Offset() + 1 + v.Kind().Width() }
func (v *Int) Sizeof() int { return v.Limit() - v.Offset() }
func (v *Int) Get() int64  { return readInt(v.Kind(), v.Buffer(), v.Offset()+1) }

// IntBuilder writes an Int using its narrowest case.
type IntBuilder struct {
	flyweight.BuilderBase
	view Int
}

func (b *IntBuilder) Wrap(buf []byte, offset, maxLimit int) *IntBuilder {
	b.Reset(buf, offset, maxLimit)
	return b
}

func (b *IntBuilder) Set(v int64) *IntBuilder {
	k := IntKindOf(v)
	limit := b.Offset() + 1 + k.Width()
	b.CheckLimit("int", limit)
	b.Buffer()[b.Offset()] = byte(k)
	writeNumber(k, b.Buffer(), b.Offset()+1, uint64(v))
	b.SetLimit(limit)
	return b
}

// SetFrom copies the value of src, re-deriving the narrowest case.
func (b *IntBuilder) SetFrom(src *Int) *IntBuilder {
	return b.Set(src.Get())
}

func (b *IntBuilder) Build() *Int {
	return b.view.Wrap(b.Buffer(), b.Offset(), b.Limit())
}

// Uint is an auto-compacting unsigned integer.
type Uint struct {
	flyweight.Flyweight
}

func (v *Uint) Decode(buf []byte, offset, maxLimit int) error {
	if err := v.Bind("uint", buf, offset, maxLimit); err != nil {
		return err
	}
	if err := v.Need("uint", offset+1); err != nil {
		return err
	}
	k := Kind(buf[offset])
	if !isUintKind(k) {
		err := errors.InvalidDiscriminant(errors.PhaseDecode, "uint", uint32(k))
		err.Offset = offset
		return err
	}
	return v.Need("uint", offset+1+k.Width())
}

func (v *Uint) Wrap(buf []byte, offset, maxLimit int) *Uint {
	flyweight.Must(v.Decode(buf, offset, maxLimit))
	return v
}

func (v *Uint) TryWrap(buf []byte, offset, maxLimit int) *Uint {
	if v.Decode(buf, offset, maxLimit) != nil {
		return nil
	}
	return v
}

func (v *Uint) Kind() Kind  { return Kind(v.Buffer()[v.Offset()]) }
func (v *Uint) Limit() int  { return v.Offset() + 1 + v.Kind().Width() }
func (v *Uint) Sizeof() int { return v.Limit() - v.Offset() }
func (v *Uint) Get() uint64 { return readUint(v.Kind(), v.Buffer(), v.Offset()+1) }

// UintBuilder writes a Uint using its narrowest case.
type UintBuilder struct {
	flyweight.BuilderBase
	view Uint
}

func (b *UintBuilder) Wrap(buf []byte, offset, maxLimit int) *UintBuilder {
	b.Reset(buf, offset, maxLimit)
	return b
}

func (b *UintBuilder) Set(v uint64) *UintBuilder {
	k := UintKindOf(v)
	limit := b.Offset() + 1 + k.Width()
	b.CheckLimit("uint", limit)
	b.Buffer()[b.Offset()] = byte(k)
	writeNumber(k, b.Buffer(), b.Offset()+1, v)
	b.SetLimit(limit)
	return b
}

func (b *UintBuilder) SetFrom(src *Uint) *UintBuilder {
	return b.Set(src.Get())
}

func (b *UintBuilder) Build() *Uint {
	return b.view.Wrap(b.Buffer(), b.Offset(), b.Limit())
}
