package collection

import (
	"encoding/binary"
	"fmt"

	"github.com/wippyai/zerowire"
	"github.com/wippyai/zerowire/errors"
	"github.com/wippyai/zerowire/flyweight"
)

// List is a view over {physicalLength, logicalLength, fields...}: a
// sequence of positional fields, each decoded by its own view. The logical
// length may be shorter than the number of declared fields; trailing
// fields are then absent.
type List struct {
	sized
	fields []zerowire.View
}

// NewList returns a list view whose field i is decoded by fields[i].
func NewList(tier zerowire.Tier, fields ...zerowire.View) *List {
	l := &List{fields: fields}
	l.tier = tier
	return l
}

// WithOrder sets the byte order of the length prefixes.
func (l *List) WithOrder(order binary.ByteOrder) *List {
	l.order = order
	return l
}

func (l *List) Decode(buf []byte, offset, maxLimit int) error {
	typ := typeName("list", l.tier)
	if err := l.decodeHeader(typ, buf, offset, maxLimit); err != nil {
		return err
	}
	if n := l.Count(); n > len(l.fields) {
		return errors.InvalidData(errors.PhaseDecode, typ, offset,
			fmt.Sprintf("logical length %d exceeds %d declared fields", n, len(l.fields)))
	}
	return l.walk(typ, l.Count(), func(i int) zerowire.View { return l.fields[i] })
}

func (l *List) Wrap(buf []byte, offset, maxLimit int) *List {
	flyweight.Must(l.Decode(buf, offset, maxLimit))
	return l
}

func (l *List) TryWrap(buf []byte, offset, maxLimit int) *List {
	if !zerowire.TryDecode(l, buf, offset, maxLimit) {
		return nil
	}
	return l
}

// Field wraps the view of field i in place. It returns nil when the field
// lies past the logical length.
func (l *List) Field(i int) zerowire.View {
	if i < 0 || i >= l.Count() {
		return nil
	}
	pos, limit := l.payloadStart(), l.Limit()
	for j := 0; j <= i; j++ {
		if l.fields[j].Decode(l.Buffer(), pos, limit) != nil {
			return nil
		}
		pos = l.fields[j].Limit()
	}
	return l.fields[i]
}

// ListBuilder appends fields in declared order.
type ListBuilder struct {
	sizedBuilder
	view *List
}

// NewListBuilder returns a builder whose Build decodes with fields.
func NewListBuilder(tier zerowire.Tier, fields ...zerowire.View) *ListBuilder {
	b := &ListBuilder{view: NewList(tier, fields...)}
	b.tier = tier
	return b
}

func (b *ListBuilder) WithOrder(order binary.ByteOrder) *ListBuilder {
	b.order = order
	b.view.order = order
	return b
}

func (b *ListBuilder) Reset(buf []byte, offset, maxLimit int) {
	b.reset(typeName("list", b.tier), buf, offset, maxLimit)
}

func (b *ListBuilder) Wrap(buf []byte, offset, maxLimit int) *ListBuilder {
	b.Reset(buf, offset, maxLimit)
	return b
}

// Field appends the next field.
func (b *ListBuilder) Field(w zerowire.Writer) *ListBuilder {
	b.append(typeName("list", b.tier), w)
	return b
}

// FieldsRaw appends count already encoded fields.
func (b *ListBuilder) FieldsRaw(raw []byte, count int) *ListBuilder {
	b.appendRaw(typeName("list", b.tier), raw, count)
	return b
}

func (b *ListBuilder) Build() *List {
	b.stamp(typeName("list", b.tier))
	return b.view.Wrap(b.Buffer(), b.Offset(), b.Limit())
}
