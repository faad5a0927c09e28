// Package collection implements length-prefixed collections: arrays of one
// item type, lists of positional fields and maps of alternating keys and
// values. Each comes in four tiers selecting the width of the length and
// count prefixes (0, 8, 16 or 32 bits); the 0-bit tier encodes nothing and
// always holds zero elements.
//
// Layout: {length:uintN, count:uintN, items...}. length counts every byte
// after itself, the count prefix included.
package collection

import (
	"encoding/binary"
	"fmt"
	"strconv"

	"github.com/wippyai/zerowire"
	"github.com/wippyai/zerowire/errors"
	"github.com/wippyai/zerowire/flyweight"
	"github.com/wippyai/zerowire/internal/width"
)

func typeName(kind string, tier width.Tier) string {
	return kind + strconv.Itoa(int(tier))
}

func orderOf(o binary.ByteOrder) binary.ByteOrder {
	if o == nil {
		return binary.LittleEndian
	}
	return o
}

// sized is the header logic shared by every collection view.
type sized struct {
	flyweight.Flyweight
	tier  width.Tier
	order binary.ByteOrder
}

func (s *sized) decodeHeader(typ string, buf []byte, offset, maxLimit int) error {
	if !s.tier.Valid() {
		return errors.Unsupported(errors.PhaseWrap, fmt.Sprintf("%s: invalid tier %d", typ, s.tier))
	}
	if err := s.Bind(typ, buf, offset, maxLimit); err != nil {
		return err
	}
	if s.tier == width.Tier0 {
		return nil
	}
	n := s.tier.Bytes()
	if err := s.Need(typ, offset+2*n); err != nil {
		return err
	}
	length := width.Read(buf, offset, n, orderOf(s.order))
	if length < uint64(n) {
		return errors.InvalidData(errors.PhaseDecode, typ, offset,
			fmt.Sprintf("length %d shorter than count prefix", length))
	}
	end, ok := width.Add(offset+n, int(length))
	if !ok {
		return errors.Overflow(errors.PhaseDecode, typ, offset, "length overflows offset")
	}
	if err := s.Need(typ, end); err != nil {
		return err
	}
	if count := width.Read(buf, offset+n, n, orderOf(s.order)); count > width.MaxListLength {
		return errors.InvalidData(errors.PhaseDecode, typ, offset+n,
			fmt.Sprintf("count %d exceeds maximum %d", count, width.MaxListLength))
	}
	return nil
}

// walk decodes count items starting at the payload and checks that the
// last one ends exactly at the collection limit.
func (s *sized) walk(typ string, count int, item func(i int) zerowire.View) error {
	pos, limit := s.payloadStart(), s.Limit()
	for i := 0; i < count; i++ {
		v := item(i)
		if v == nil {
			return errors.InvalidData(errors.PhaseDecode, typ, pos, fmt.Sprintf("no view for item %d", i))
		}
		if err := v.Decode(s.Buffer(), pos, limit); err != nil {
			return errors.WithPath(err, "["+strconv.Itoa(i)+"]")
		}
		pos = v.Limit()
	}
	if pos != limit {
		return errors.InvalidData(errors.PhaseDecode, typ, pos,
			fmt.Sprintf("items end at %d, length ends at %d", pos, limit))
	}
	return nil
}

func (s *sized) payloadStart() int {
	return s.Offset() + 2*s.tier.Bytes()
}

// Tier returns the prefix width.
func (s *sized) Tier() zerowire.Tier { return s.tier }

// Length returns the length prefix: the count prefix plus the payload.
func (s *sized) Length() int {
	if s.tier == width.Tier0 {
		return 0
	}
	return int(width.Read(s.Buffer(), s.Offset(), s.tier.Bytes(), orderOf(s.order)))
}

// Count returns the count prefix.
func (s *sized) Count() int {
	if s.tier == width.Tier0 {
		return 0
	}
	n := s.tier.Bytes()
	return int(width.Read(s.Buffer(), s.Offset()+n, n, orderOf(s.order)))
}

// Payload returns the encoded items without copying.
func (s *sized) Payload() []byte {
	return s.Buffer()[s.payloadStart():s.Limit()]
}

func (s *sized) Limit() int {
	if s.tier == width.Tier0 {
		return s.Offset()
	}
	return s.Offset() + s.tier.Bytes() + s.Length()
}

func (s *sized) Sizeof() int { return s.Limit() - s.Offset() }

// Source is any encoded collection whose items can be transplanted.
type Source interface {
	Payload() []byte
	Count() int
}

// sizedBuilder is the append and stamping logic shared by every
// collection builder.
type sizedBuilder struct {
	flyweight.BuilderBase
	tier  width.Tier
	order binary.ByteOrder
	count int
}

func (b *sizedBuilder) reset(typ string, buf []byte, offset, maxLimit int) {
	if !b.tier.Valid() {
		panic(errors.Unsupported(errors.PhaseEncode, fmt.Sprintf("%s: invalid tier %d", typ, b.tier)))
	}
	b.BuilderBase.Reset(buf, offset, maxLimit)
	b.count = 0
	header := offset + 2*b.tier.Bytes()
	b.CheckLimit(typ, header)
	b.SetLimit(header)
}

func (b *sizedBuilder) append(typ string, w zerowire.Writer) {
	if b.tier == width.Tier0 {
		panic(errors.LengthExceeded(typ, b.count+1, 0))
	}
	limit := w(b.Buffer(), b.Limit(), b.MaxLimit())
	b.CheckLimit(typ, limit)
	b.SetLimit(limit)
	b.count++
}

func (b *sizedBuilder) appendRaw(typ string, raw []byte, count int) {
	if count == 0 && len(raw) == 0 {
		return
	}
	if b.tier == width.Tier0 {
		panic(errors.LengthExceeded(typ, b.count+count, 0))
	}
	limit := b.Limit() + len(raw)
	b.CheckLimit(typ, limit)
	copy(b.Buffer()[b.Limit():], raw)
	b.SetLimit(limit)
	b.count += count
}

// stamp writes the length and count prefixes, asserting the tier maximum.
func (b *sizedBuilder) stamp(typ string) {
	if b.tier == width.Tier0 {
		return
	}
	n := b.tier.Bytes()
	length := b.Limit() - b.Offset() - n
	if uint64(length) > uint64(b.tier.Max()) || uint64(b.count) > uint64(b.tier.Max()) {
		panic(errors.New(errors.PhaseBuild, errors.KindLengthExceeded).
			Type(typ).
			Offset(b.Offset()).
			Detail("length %d count %d exceed tier maximum %d", length, b.count, b.tier.Max()).
			Build())
	}
	width.Write(b.Buffer(), b.Offset(), n, uint64(length), orderOf(b.order))
	width.Write(b.Buffer(), b.Offset()+n, n, uint64(b.count), orderOf(b.order))
}

// Count returns the number of items appended so far.
func (b *sizedBuilder) Count() int { return b.count }
