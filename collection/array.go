package collection

import (
	"encoding/binary"
	"iter"

	"github.com/wippyai/zerowire"
	"github.com/wippyai/zerowire/flyweight"
)

// Array is a view over {length, count, items} where every item is decoded
// by the same scratch view.
type Array[V zerowire.View] struct {
	sized
	item V
}

// NewArray returns an array view of the given tier. item is re-wrapped for
// every element and must not be shared with another view.
func NewArray[V zerowire.View](tier zerowire.Tier, item V) *Array[V] {
	a := &Array[V]{item: item}
	a.tier = tier
	return a
}

// WithOrder sets the byte order of the length and count prefixes.
func (a *Array[V]) WithOrder(order binary.ByteOrder) *Array[V] {
	a.order = order
	return a
}

func (a *Array[V]) Decode(buf []byte, offset, maxLimit int) error {
	typ := typeName("array", a.tier)
	if err := a.decodeHeader(typ, buf, offset, maxLimit); err != nil {
		return err
	}
	return a.walk(typ, a.Count(), func(int) zerowire.View { return a.item })
}

func (a *Array[V]) Wrap(buf []byte, offset, maxLimit int) *Array[V] {
	flyweight.Must(a.Decode(buf, offset, maxLimit))
	return a
}

func (a *Array[V]) TryWrap(buf []byte, offset, maxLimit int) *Array[V] {
	if !zerowire.TryDecode(a, buf, offset, maxLimit) {
		return nil
	}
	return a
}

// Items iterates the elements in order. The yielded view is the shared
// scratch item and is only valid until the next iteration.
func (a *Array[V]) Items() iter.Seq2[int, V] {
	return func(yield func(int, V) bool) {
		pos, limit := a.payloadStart(), a.Limit()
		for i := range a.Count() {
			if a.item.Decode(a.Buffer(), pos, limit) != nil {
				return
			}
			if !yield(i, a.item) {
				return
			}
			pos = a.item.Limit()
		}
	}
}

// Item wraps the scratch view over element i and returns it, or the zero
// V and false when i is out of range.
func (a *Array[V]) Item(i int) (V, bool) {
	for j, v := range a.Items() {
		if j == i {
			return v, true
		}
	}
	var zero V
	return zero, false
}

// ArrayBuilder appends items and stamps the prefixes at Build.
type ArrayBuilder[V zerowire.View] struct {
	sizedBuilder
	view *Array[V]
}

// NewArrayBuilder returns a builder for the given tier. item is the view
// Build wraps the elements with.
func NewArrayBuilder[V zerowire.View](tier zerowire.Tier, item V) *ArrayBuilder[V] {
	b := &ArrayBuilder[V]{view: NewArray(tier, item)}
	b.tier = tier
	return b
}

// WithOrder sets the byte order of the length and count prefixes.
func (b *ArrayBuilder[V]) WithOrder(order binary.ByteOrder) *ArrayBuilder[V] {
	b.order = order
	b.view.order = order
	return b
}

// Reset rebinds the builder and reserves the header.
func (b *ArrayBuilder[V]) Reset(buf []byte, offset, maxLimit int) {
	b.reset(typeName("array", b.tier), buf, offset, maxLimit)
}

func (b *ArrayBuilder[V]) Wrap(buf []byte, offset, maxLimit int) *ArrayBuilder[V] {
	b.Reset(buf, offset, maxLimit)
	return b
}

// Item appends one element produced by w.
func (b *ArrayBuilder[V]) Item(w zerowire.Writer) *ArrayBuilder[V] {
	b.append(typeName("array", b.tier), w)
	return b
}

// ItemsRaw appends count already encoded elements.
func (b *ArrayBuilder[V]) ItemsRaw(raw []byte, count int) *ArrayBuilder[V] {
	b.appendRaw(typeName("array", b.tier), raw, count)
	return b
}

// ItemsFrom transplants every element of src without decoding them.
func (b *ArrayBuilder[V]) ItemsFrom(src Source) *ArrayBuilder[V] {
	return b.ItemsRaw(src.Payload(), src.Count())
}

func (b *ArrayBuilder[V]) Build() *Array[V] {
	b.stamp(typeName("array", b.tier))
	return b.view.Wrap(b.Buffer(), b.Offset(), b.Limit())
}

var (
	_ zerowire.View    = (*Array[*flyweight.Bool])(nil)
	_ zerowire.Builder = (*ArrayBuilder[*flyweight.Bool])(nil)
)
