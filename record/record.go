package record

import (
	"encoding/binary"
	"fmt"

	"github.com/wippyai/zerowire"
	"github.com/wippyai/zerowire/errors"
	"github.com/wippyai/zerowire/flyweight"
	"github.com/wippyai/zerowire/internal/width"
)

// View is a view over a record. Field offsets are located once at decode;
// accessors re-wrap the parent-owned field views.
type View struct {
	flyweight.Flyweight
	schema  *Schema
	count   int
	offsets []int // -1 when absent
	scratch []zerowire.View
}

func (v *View) Decode(buf []byte, offset, maxLimit int) error {
	s := v.schema
	if err := v.Bind(s.Name, buf, offset, maxLimit); err != nil {
		return err
	}
	n := s.Tier.Bytes()
	header := offset + s.headerSize()
	if err := v.Need(s.Name, header); err != nil {
		return err
	}
	length := width.Read(buf, offset, n, binary.LittleEndian)
	end, ok := width.Add(offset+n, int(length))
	if !ok {
		return errors.Overflow(errors.PhaseDecode, s.Name, offset, "length overflows offset")
	}
	if end < header {
		return errors.InvalidData(errors.PhaseDecode, s.Name, offset,
			fmt.Sprintf("length %d shorter than header", length))
	}
	if err := v.Need(s.Name, end); err != nil {
		return err
	}
	count := width.Read(buf, offset+n, n, binary.LittleEndian)
	if count > uint64(len(s.Fields)) {
		return errors.InvalidData(errors.PhaseDecode, s.Name, offset+n,
			fmt.Sprintf("count %d exceeds %d declared fields", count, len(s.Fields)))
	}
	v.count = int(count)

	var mask uint64
	if s.Layout == Bitmask {
		mask = binary.LittleEndian.Uint64(buf[offset+2*n:])
		if v.count < 64 && mask>>uint(v.count) != 0 {
			return errors.InvalidData(errors.PhaseDecode, s.Name, offset+2*n,
				fmt.Sprintf("presence mask %#x marks fields past count %d", mask, v.count))
		}
	}

	pos := header
	for i, f := range s.Fields {
		v.offsets[i] = -1
		present := i < v.count
		switch {
		case !present:
		case s.Layout == Bitmask:
			present = mask&(1<<uint(i)) != 0
		case f.Optional:
			if pos >= end {
				return errors.WithPath(errors.OutOfBounds(errors.PhaseWrap, s.Name, offset, pos+1, end), f.Name)
			}
			if buf[pos] == Missing {
				present = false
				pos++
			}
		}
		if !present {
			if !f.Optional {
				return errors.FieldMissing(errors.PhaseDecode, s.Name, f.Name)
			}
			continue
		}
		fv := v.field(i)
		if err := fv.Decode(buf, pos, end); err != nil {
			return errors.WithPath(err, f.Name)
		}
		v.offsets[i] = pos
		pos = fv.Limit()
	}
	if pos != end {
		return errors.InvalidData(errors.PhaseDecode, s.Name, pos,
			fmt.Sprintf("fields end at %d, length ends at %d", pos, end))
	}
	return nil
}

func (v *View) field(i int) zerowire.View {
	if v.scratch[i] == nil {
		v.scratch[i] = v.schema.Fields[i].New()
	}
	return v.scratch[i]
}

func (v *View) Wrap(buf []byte, offset, maxLimit int) *View {
	flyweight.Must(v.Decode(buf, offset, maxLimit))
	return v
}

func (v *View) TryWrap(buf []byte, offset, maxLimit int) *View {
	if !zerowire.TryDecode(v, buf, offset, maxLimit) {
		return nil
	}
	return v
}

func (v *View) Limit() int {
	n := v.schema.Tier.Bytes()
	return v.Offset() + n + int(width.Read(v.Buffer(), v.Offset(), n, binary.LittleEndian))
}

func (v *View) Sizeof() int { return v.Limit() - v.Offset() }

// Schema returns the record descriptor.
func (v *View) Schema() *Schema { return v.schema }

// Count returns the number of field slots written.
func (v *View) Count() int { return v.count }

// Present reports whether field i was written, explicitly or as a
// materialized default.
func (v *View) Present(i int) bool {
	return i >= 0 && i < len(v.offsets) && v.offsets[i] >= 0
}

// Field wraps fv over field i, or over its default when absent. It reports
// false for an absent field without a default.
func (v *View) Field(i int, fv zerowire.View) bool {
	if i < 0 || i >= len(v.offsets) {
		return false
	}
	if off := v.offsets[i]; off >= 0 {
		return fv.Decode(v.Buffer(), off, v.Limit()) == nil
	}
	if d := v.schema.Fields[i].Default; d != nil {
		return fv.Decode(d, 0, len(d)) == nil
	}
	return false
}

// Get returns the parent-owned view of field i re-wrapped for this call,
// or nil when the field is absent without a default. The view is only
// valid until the next call for the same field.
func (v *View) Get(i int) zerowire.View {
	if i < 0 || i >= len(v.offsets) {
		return nil
	}
	fv := v.field(i)
	if !v.Field(i, fv) {
		return nil
	}
	return fv
}

// Builder writes a record field by field in declared order.
type Builder struct {
	flyweight.BuilderBase
	schema  *Schema
	next    int
	mask    uint64
	written []bool
	view    *View
}

// Reset rebinds the builder and reserves the header.
func (b *Builder) Reset(buf []byte, offset, maxLimit int) {
	b.BuilderBase.Reset(buf, offset, maxLimit)
	b.next, b.mask = 0, 0
	clear(b.written)
	header := offset + b.schema.headerSize()
	b.CheckLimit(b.schema.Name, header)
	b.SetLimit(header)
}

func (b *Builder) Wrap(buf []byte, offset, maxLimit int) *Builder {
	b.Reset(buf, offset, maxLimit)
	return b
}

// Set writes field i with w. Skipped optional fields before i get their
// default, a sentinel or a cleared bit. It panics if i precedes a field
// already written or follows an unset required field. In the sentinel
// layout an optional field whose encoding starts with the missing marker
// would read back as absent, so Set panics on it.
func (b *Builder) Set(i int, w zerowire.Writer) *Builder {
	s := b.schema
	if i < 0 || i >= len(s.Fields) {
		panic(errors.InvalidInput(errors.PhaseEncode, fmt.Sprintf("%s: field index %d", s.Name, i)))
	}
	name := s.Fields[i].Name
	if i < b.next {
		if b.written[i] {
			panic(errors.FieldDuplicate(s.Name, name))
		}
		panic(errors.FieldOrder(s.Name, name,
			fmt.Sprintf("field %q set after %q", name, s.Fields[b.next-1].Name)))
	}
	b.skipTo(i)
	start := b.Limit()
	limit := w(b.Buffer(), start, b.MaxLimit())
	b.CheckLimit(s.Name, limit)
	if s.Layout == Sentinel && s.Fields[i].Optional && limit > start && b.Buffer()[start] == Missing {
		panic(errors.New(errors.PhaseEncode, errors.KindInvalidInput).
			Type(s.Name).
			Path(name).
			Offset(start).
			Detail("optional field %q starts with the missing marker %#x", name, Missing).
			Build())
	}
	b.SetLimit(limit)
	b.present(i)
	b.written[i] = true
	b.next = i + 1
	return b
}

// SetByName writes the named field.
func (b *Builder) SetByName(name string, w zerowire.Writer) *Builder {
	i, ok := b.schema.FieldIndex(name)
	if !ok {
		panic(errors.InvalidInput(errors.PhaseEncode, fmt.Sprintf("%s: no field %q", b.schema.Name, name)))
	}
	return b.Set(i, w)
}

// skipTo fills the optional fields between the cursor and field i.
func (b *Builder) skipTo(i int) {
	s := b.schema
	for j := b.next; j < i; j++ {
		f := s.Fields[j]
		if !f.Optional {
			panic(errors.FieldOrder(s.Name, s.Fields[i].Name,
				fmt.Sprintf("field %q set before required field %q", s.Fields[i].Name, f.Name)))
		}
		switch {
		case f.Default != nil:
			b.writeRaw(f.Default)
			b.present(j)
		case s.Layout == Sentinel:
			b.writeRaw([]byte{Missing})
		}
	}
}

func (b *Builder) writeRaw(p []byte) {
	limit := b.Limit() + len(p)
	b.CheckLimit(b.schema.Name, limit)
	copy(b.Buffer()[b.Limit():], p)
	b.SetLimit(limit)
}

func (b *Builder) present(i int) {
	if b.schema.Layout == Bitmask {
		b.mask |= 1 << uint(i)
	}
}

// Build stamps the header. Trailing optional fields are left out; a
// trailing required field panics with KindFieldMissing.
func (b *Builder) Build() *View {
	s := b.schema
	for j := b.next; j < len(s.Fields); j++ {
		if !s.Fields[j].Optional {
			panic(errors.FieldMissing(errors.PhaseBuild, s.Name, s.Fields[j].Name))
		}
	}
	n := s.Tier.Bytes()
	length := b.Limit() - b.Offset() - n
	if uint64(length) > uint64(s.Tier.Max()) {
		panic(errors.New(errors.PhaseBuild, errors.KindLengthExceeded).
			Type(s.Name).
			Offset(b.Offset()).
			Detail("length %d exceeds tier maximum %d", length, s.Tier.Max()).
			Build())
	}
	buf := b.Buffer()
	width.Write(buf, b.Offset(), n, uint64(length), binary.LittleEndian)
	width.Write(buf, b.Offset()+n, n, uint64(b.next), binary.LittleEndian)
	if s.Layout == Bitmask {
		binary.LittleEndian.PutUint64(buf[b.Offset()+2*n:], b.mask)
	}
	return b.view.Wrap(buf, b.Offset(), b.Limit())
}

var (
	_ zerowire.View    = (*View)(nil)
	_ zerowire.Builder = (*Builder)(nil)
)
