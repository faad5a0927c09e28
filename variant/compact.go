package variant

import (
	"encoding/binary"
	"fmt"
	"iter"
	"strconv"

	"go.uber.org/zap"

	"github.com/wippyai/zerowire"
	"github.com/wippyai/zerowire/errors"
	"github.com/wippyai/zerowire/flyweight"
	"github.com/wippyai/zerowire/internal/width"
)

// shape describes one variant-of-collection family: the kind family and
// the element codec of every slot. Items cycle through the slots, so a map
// has two (key, value) and arrays and lists have one.
type shape struct {
	name  string
	base  Kind
	slots []Elements
}

func (s *shape) explicit() int {
	n := 0
	for _, e := range s.slots {
		if e.Explicit() {
			n++
		}
	}
	return n
}

// MaxImplicitItems bounds the count of a collection whose slots all use
// zero-width element kinds such as Zero or One. Those items take no bytes,
// so the count is the only thing limiting them. Builders widen the element
// kind past this bound.
const MaxImplicitItems = 1 << 16

// zeroWidth reports whether every slot writes its kind once and its items
// take no bytes.
func zeroWidth(slots []Elements, kinds []Kind) bool {
	for i, e := range slots {
		if !e.Explicit() || kinds[i].Width() != 0 {
			return false
		}
	}
	return true
}

// compact is the view shared by ArrayOf, MapOf and ListOf:
// {kind, length:N, count:N, [elementKind per explicit slot], items}.
// length counts every byte after itself. The 0-tier kind carries nothing.
type compact struct {
	flyweight.Flyweight
	shape *shape
	kinds [2]Kind
	items int
}

func (c *compact) decode(buf []byte, offset, maxLimit int) error {
	s := c.shape
	c.kinds = [2]Kind{}
	if err := c.Bind(s.name, buf, offset, maxLimit); err != nil {
		return err
	}
	if err := c.Need(s.name, offset+1); err != nil {
		return err
	}
	k := Kind(buf[offset])
	if k.Family() != s.base || !k.Tier().Valid() || !k.Known() {
		err := errors.InvalidDiscriminant(errors.PhaseDecode, s.name, uint32(k))
		err.Offset = offset
		return err
	}
	if k == s.base {
		return nil
	}

	n := k.Width()
	if err := c.Need(s.name, offset+1+2*n); err != nil {
		return err
	}
	length := width.Read(buf, offset+1, n, binary.LittleEndian)
	count := width.Read(buf, offset+1+n, n, binary.LittleEndian)
	if length < uint64(n) {
		return errors.InvalidData(errors.PhaseDecode, s.name, offset,
			fmt.Sprintf("length %d shorter than count prefix", length))
	}
	end, ok := width.Add(offset+1+n, int(length))
	if !ok {
		return errors.Overflow(errors.PhaseDecode, s.name, offset, "length overflows offset")
	}
	if err := c.Need(s.name, end); err != nil {
		return err
	}
	if count > width.MaxListLength {
		return errors.InvalidData(errors.PhaseDecode, s.name, offset+1+n,
			fmt.Sprintf("count %d exceeds maximum %d", count, width.MaxListLength))
	}
	if count%uint64(len(s.slots)) != 0 {
		return errors.InvalidData(errors.PhaseDecode, s.name, offset+1+n,
			fmt.Sprintf("count %d is not a multiple of %d", count, len(s.slots)))
	}

	pos := offset + 1 + 2*n
	if count > 0 {
		for i, e := range s.slots {
			if !e.Explicit() {
				continue
			}
			if pos >= end {
				return errors.OutOfBounds(errors.PhaseWrap, s.name, offset, pos+1, end)
			}
			ek := Kind(buf[pos])
			if !e.Accepts(ek) {
				err := errors.InvalidDiscriminant(errors.PhaseDecode, e.Name(), uint32(ek))
				err.Offset = pos
				return errors.WithPath(err, s.name)
			}
			c.kinds[i] = ek
			pos++
		}
	}
	c.items = pos - offset
	if count > MaxImplicitItems && zeroWidth(s.slots, c.kinds[:len(s.slots)]) {
		return errors.InvalidData(errors.PhaseDecode, s.name, offset+1+n,
			fmt.Sprintf("count %d of zero-width items exceeds %d", count, MaxImplicitItems))
	}

	for i := 0; i < int(count); i++ {
		slot := i % len(s.slots)
		size, err := s.slots[slot].Size(c.kinds[slot], buf, pos, end)
		if err != nil {
			return errors.WithPath(err, "["+strconv.Itoa(i)+"]")
		}
		pos += size
	}
	if pos != end {
		return errors.InvalidData(errors.PhaseDecode, s.name, pos,
			fmt.Sprintf("items end at %d, length ends at %d", pos, end))
	}
	return nil
}

func (c *compact) Kind() Kind { return Kind(c.Buffer()[c.Offset()]) }

// Tier returns the width of the length and count prefixes.
func (c *compact) Tier() zerowire.Tier { return c.Kind().Tier() }

// Count returns the number of encoded items.
func (c *compact) Count() int {
	n := c.Kind().Width()
	if n == 0 {
		return 0
	}
	return int(width.Read(c.Buffer(), c.Offset()+1+n, n, binary.LittleEndian))
}

func (c *compact) Limit() int {
	n := c.Kind().Width()
	if n == 0 {
		return c.Offset() + 1
	}
	length := width.Read(c.Buffer(), c.Offset()+1, n, binary.LittleEndian)
	return c.Offset() + 1 + n + int(length)
}

func (c *compact) Sizeof() int { return c.Limit() - c.Offset() }

// slotKind returns the element kind of slot i; KindNull when the
// collection is empty or the slot is self-describing.
func (c *compact) slotKind(i int) Kind { return c.kinds[i] }

// Payload returns the encoded items without copying.
func (c *compact) Payload() []byte {
	if c.Kind() == c.shape.base {
		return nil
	}
	return c.Buffer()[c.Offset()+c.items : c.Limit()]
}

// all yields every item in order. Self-describing items report their own
// leading kind.
func (c *compact) all() iter.Seq2[int, Item] {
	return func(yield func(int, Item) bool) {
		s := c.shape
		buf, pos, end := c.Buffer(), c.Offset()+c.items, c.Limit()
		count := c.Count()
		for i := 0; i < count; i++ {
			slot := i % len(s.slots)
			k := c.kinds[slot]
			size, err := s.slots[slot].Size(k, buf, pos, end)
			if err != nil {
				return
			}
			if !s.slots[slot].Explicit() {
				k = Kind(buf[pos])
			}
			if !yield(i, Item{Kind: k, Data: buf[pos : pos+size]}) {
				return
			}
			pos += size
		}
	}
}

// compactBuilder appends items provisionally in the 32-bit tier with the
// widest element kind of each slot, then narrows both at Build.
type compactBuilder struct {
	flyweight.BuilderBase
	shape *shape
	count int
}

func (b *compactBuilder) reset(buf []byte, offset, maxLimit int) {
	b.BuilderBase.Reset(buf, offset, maxLimit)
	b.count = 0
}

func (b *compactBuilder) provisionalHeader() int {
	return 1 + 2*width.Tier32.Bytes() + b.shape.explicit()
}

// start returns where the next item goes. Before the first item that is
// past the provisional header, which is written once the item is in place.
func (b *compactBuilder) start() int {
	if b.count > 0 {
		return b.Limit()
	}
	start := b.Offset() + b.provisionalHeader()
	b.CheckLimit(b.shape.name, start)
	return start
}

func (b *compactBuilder) writeHeader() {
	if b.count > 0 {
		return
	}
	s := b.shape
	buf := b.Buffer()
	buf[b.Offset()] = byte(tierKind(s.base, width.Tier32))
	pos := b.Offset() + 1 + 2*width.Tier32.Bytes()
	for _, e := range s.slots {
		if e.Explicit() {
			buf[pos] = byte(e.Widest())
			pos++
		}
	}
}

func (b *compactBuilder) append(w zerowire.Writer) {
	s := b.shape
	if b.count >= width.MaxListLength {
		panic(errors.LengthExceeded(s.name, b.count+1, width.MaxListLength))
	}
	e := s.slots[b.count%len(s.slots)]
	start := b.start()
	limit := w(b.Buffer(), start, b.MaxLimit())
	b.CheckLimit(s.name, limit)
	size, err := e.Size(e.Widest(), b.Buffer(), start, limit)
	if err != nil || start+size != limit {
		panic(errors.New(errors.PhaseEncode, errors.KindInvalidInput).
			Type(s.name).
			Offset(start).
			Cause(err).
			Detail("item %d is not a %s element", b.count, e.Widest()).
			Build())
	}
	b.writeHeader()
	b.SetLimit(limit)
	b.count++
}

// appendRaw transplants count encoded items whose slots use kinds. The
// items are validated first and must span raw exactly. They are copied
// directly when the kinds are already the widest, otherwise re-encoded
// one by one.
func (b *compactBuilder) appendRaw(raw []byte, count int, kinds [2]Kind) {
	s := b.shape
	if count == 0 {
		return
	}
	if count < 0 || b.count+count > width.MaxListLength {
		panic(errors.LengthExceeded(s.name, b.count+count, width.MaxListLength))
	}
	if count%len(s.slots) != 0 || b.count%len(s.slots) != 0 {
		panic(errors.InvalidInput(errors.PhaseEncode,
			fmt.Sprintf("%s: %d raw items do not fill whole slots", s.name, count)))
	}
	direct := true
	for i, e := range s.slots {
		if !e.Explicit() {
			continue
		}
		if !e.Accepts(kinds[i]) {
			panic(errors.New(errors.PhaseEncode, errors.KindInvalidInput).
				Type(s.name).
				Value(uint32(kinds[i])).
				Detail("raw %s element kind %s", e.Name(), kinds[i]).
				Build())
		}
		if kinds[i] != e.Widest() {
			direct = false
		}
	}
	sizes := make([]int, count)
	pos := 0
	for i := range sizes {
		slot := i % len(s.slots)
		size, err := s.slots[slot].Size(kinds[slot], raw, pos, len(raw))
		if err != nil {
			panic(errors.Wrap(errors.PhaseEncode, errors.KindInvalidInput, err,
				fmt.Sprintf("%s: raw item %d", s.name, i)))
		}
		sizes[i] = size
		pos += size
	}
	if pos != len(raw) {
		panic(errors.InvalidInput(errors.PhaseEncode,
			fmt.Sprintf("%s: %d raw items end at %d of %d bytes", s.name, count, pos, len(raw))))
	}

	if direct {
		start := b.start()
		limit := start + len(raw)
		b.CheckLimit(s.name, limit)
		copy(b.Buffer()[start:], raw)
		b.writeHeader()
		b.SetLimit(limit)
		b.count += count
		return
	}
	pos = 0
	for i, size := range sizes {
		e := s.slots[i%len(s.slots)]
		from := kinds[i%len(s.slots)]
		start := b.start()
		limit := start + e.SizeAs(e.Widest(), raw, pos, from)
		b.CheckLimit(s.name, limit)
		e.Reencode(b.Buffer(), start, e.Widest(), raw, pos, from)
		b.writeHeader()
		b.SetLimit(limit)
		pos += size
		b.count++
	}
}

// itemSize sizes buffered item i at pos. Items are validated on append,
// so a failure here means the buffer changed under the builder.
func (b *compactBuilder) itemSize(e Elements, k Kind, pos, i int) int {
	size, err := e.Size(k, b.Buffer(), pos, b.Limit())
	if err != nil {
		panic(errors.Wrap(errors.PhaseRelayout, errors.KindInvalidData, err,
			fmt.Sprintf("%s: buffered item %d", b.shape.name, i)))
	}
	return size
}

// build narrows the element kinds and the tier, then relayouts the items
// in place. The write cursor never passes the read cursor.
func (b *compactBuilder) build() {
	s := b.shape
	buf, off := b.Buffer(), b.Offset()
	if b.count == 0 {
		b.CheckLimit(s.name, off+1)
		buf[off] = byte(s.base)
		b.SetLimit(off + 1)
		return
	}

	itemsStart := off + b.provisionalHeader()
	from := make([]Kind, len(s.slots))
	to := make([]Kind, len(s.slots))
	seen := make([]bool, len(s.slots))
	for i, e := range s.slots {
		from[i] = e.Widest()
		to[i] = e.Widest()
	}

	pos := itemsStart
	for i := 0; i < b.count; i++ {
		slot := i % len(s.slots)
		e := s.slots[slot]
		if e.Explicit() {
			k := e.Narrowest(from[slot], buf, pos)
			if seen[slot] {
				k = e.Merge(to[slot], k)
			}
			to[slot], seen[slot] = k, true
		}
		size := b.itemSize(e, from[slot], pos, i)
		pos += size
	}

	if b.count > MaxImplicitItems && zeroWidth(s.slots, to) {
		for i, e := range s.slots {
			to[i] = e.Merge(KindZero, KindOne)
		}
	}

	payload := 0
	pos = itemsStart
	for i := 0; i < b.count; i++ {
		slot := i % len(s.slots)
		e := s.slots[slot]
		payload += e.SizeAs(to[slot], buf, pos, from[slot])
		size := b.itemSize(e, from[slot], pos, i)
		pos += size
	}

	explicit := s.explicit()
	tier := width.Tier32
	for _, t := range []width.Tier{width.Tier8, width.Tier16} {
		length := uint64(t.Bytes() + explicit + payload)
		if width.Narrowest(length, uint64(b.count)) <= t {
			tier = t
			break
		}
	}
	n := tier.Bytes()
	length := n + explicit + payload
	if uint64(length) > uint64(width.Tier32.Max()) {
		panic(errors.LengthExceeded(s.name, length, int(width.Tier32.Max())))
	}

	oldSize := b.Sizeof()
	buf[off] = byte(tierKind(s.base, tier))
	width.Write(buf, off+1, n, uint64(length), binary.LittleEndian)
	width.Write(buf, off+1+n, n, uint64(b.count), binary.LittleEndian)
	dst := off + 1 + 2*n
	for i, e := range s.slots {
		if e.Explicit() {
			buf[dst] = byte(to[i])
			dst++
		}
	}

	src := itemsStart
	for i := 0; i < b.count; i++ {
		slot := i % len(s.slots)
		e := s.slots[slot]
		if dst > src {
			panic(errors.New(errors.PhaseRelayout, errors.KindOverflow).
				Type(s.name).
				Offset(dst).
				Detail("write cursor %d passed read cursor %d at item %d", dst, src, i).
				Build())
		}
		size := b.itemSize(e, from[slot], src, i)
		if dst == src && to[slot] == from[slot] {
			dst += size
		} else {
			dst += e.Reencode(buf, dst, to[slot], buf, src, from[slot])
		}
		src += size
	}
	b.SetLimit(dst)

	if ce := Logger().Check(zap.DebugLevel, "relayout"); ce != nil {
		ce.Write(
			zap.String("type", s.name),
			zap.Int("count", b.count),
			zap.Stringer("tier", tier),
			zap.Stringers("elements", to),
			zap.Int("from", oldSize),
			zap.Int("to", b.Sizeof()),
		)
	}
}
