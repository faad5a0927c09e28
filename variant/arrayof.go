package variant

import (
	"iter"

	"github.com/wippyai/zerowire"
	"github.com/wippyai/zerowire/flyweight"
)

// ArrayOf is an auto-compacting array whose items share one element kind.
// The kind family is 0xA0; the 0-tier kind is the empty array.
type ArrayOf struct {
	compact
}

func NewArrayOf(elems Elements) *ArrayOf {
	return &ArrayOf{compact{shape: &shape{name: "array", base: KindArray0, slots: []Elements{elems}}}}
}

func (v *ArrayOf) Decode(buf []byte, offset, maxLimit int) error {
	return v.decode(buf, offset, maxLimit)
}

func (v *ArrayOf) Wrap(buf []byte, offset, maxLimit int) *ArrayOf {
	flyweight.Must(v.Decode(buf, offset, maxLimit))
	return v
}

func (v *ArrayOf) TryWrap(buf []byte, offset, maxLimit int) *ArrayOf {
	if !zerowire.TryDecode(v, buf, offset, maxLimit) {
		return nil
	}
	return v
}

// ElementKind returns the shared element kind, KindNull when empty.
func (v *ArrayOf) ElementKind() Kind { return v.slotKind(0) }

// Items yields every element.
func (v *ArrayOf) Items() iter.Seq2[int, Item] { return v.all() }

// Uints yields every element of a UintElements array.
func (v *ArrayOf) Uints() iter.Seq[uint64] {
	return func(yield func(uint64) bool) {
		for _, it := range v.all() {
			if !yield(it.Uint()) {
				return
			}
		}
	}
}

// Ints yields every element of an IntElements array.
func (v *ArrayOf) Ints() iter.Seq[int64] {
	return func(yield func(int64) bool) {
		for _, it := range v.all() {
			if !yield(it.Int()) {
				return
			}
		}
	}
}

// Strings yields every element of a StringElements array.
func (v *ArrayOf) Strings() iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, it := range v.all() {
			if !yield(it.String()) {
				return
			}
		}
	}
}

// ArrayOfBuilder appends items in the widest encoding and narrows the
// element kind and tier at Build.
type ArrayOfBuilder struct {
	compactBuilder
	view *ArrayOf
}

func NewArrayOfBuilder(elems Elements) *ArrayOfBuilder {
	v := NewArrayOf(elems)
	return &ArrayOfBuilder{compactBuilder: compactBuilder{shape: v.shape}, view: v}
}

func (b *ArrayOfBuilder) Reset(buf []byte, offset, maxLimit int) {
	b.reset(buf, offset, maxLimit)
}

func (b *ArrayOfBuilder) Wrap(buf []byte, offset, maxLimit int) *ArrayOfBuilder {
	b.reset(buf, offset, maxLimit)
	return b
}

// Item appends one element written in the slot's widest kind, e.g. by
// UintItem, IntItem or StringItem.
func (b *ArrayOfBuilder) Item(w zerowire.Writer) *ArrayOfBuilder {
	b.append(w)
	return b
}

func (b *ArrayOfBuilder) Uint(v uint64) *ArrayOfBuilder   { return b.Item(UintItem(v)) }
func (b *ArrayOfBuilder) Int(v int64) *ArrayOfBuilder     { return b.Item(IntItem(v)) }
func (b *ArrayOfBuilder) String(s string) *ArrayOfBuilder { return b.Item(StringItem(s)) }

// ItemsRaw appends count encoded elements of kind k.
func (b *ArrayOfBuilder) ItemsRaw(raw []byte, count int, k Kind) *ArrayOfBuilder {
	b.appendRaw(raw, count, [2]Kind{k})
	return b
}

// ItemsFrom appends every element of src.
func (b *ArrayOfBuilder) ItemsFrom(src *ArrayOf) *ArrayOfBuilder {
	return b.ItemsRaw(src.Payload(), src.Count(), src.ElementKind())
}

func (b *ArrayOfBuilder) Build() *ArrayOf {
	b.build()
	return b.view.Wrap(b.Buffer(), b.Offset(), b.Limit())
}

// MapOf is an auto-compacting map of alternating keys and values. Keys
// share one element kind and values another. The count prefix holds the
// number of items, twice the number of entries.
type MapOf struct {
	compact
}

func NewMapOf(keys, values Elements) *MapOf {
	return &MapOf{compact{shape: &shape{name: "map", base: KindMap0, slots: []Elements{keys, values}}}}
}

func (v *MapOf) Decode(buf []byte, offset, maxLimit int) error {
	return v.decode(buf, offset, maxLimit)
}

func (v *MapOf) Wrap(buf []byte, offset, maxLimit int) *MapOf {
	flyweight.Must(v.Decode(buf, offset, maxLimit))
	return v
}

func (v *MapOf) TryWrap(buf []byte, offset, maxLimit int) *MapOf {
	if !zerowire.TryDecode(v, buf, offset, maxLimit) {
		return nil
	}
	return v
}

// Len returns the number of entries.
func (v *MapOf) Len() int { return v.Count() / 2 }

func (v *MapOf) KeyKind() Kind   { return v.slotKind(0) }
func (v *MapOf) ValueKind() Kind { return v.slotKind(1) }

// Entries yields every key and value in encoded order.
func (v *MapOf) Entries() iter.Seq2[Item, Item] {
	return func(yield func(Item, Item) bool) {
		var key Item
		for i, it := range v.all() {
			if i%2 == 0 {
				key = it
				continue
			}
			if !yield(key, it) {
				return
			}
		}
	}
}

type MapOfBuilder struct {
	compactBuilder
	view *MapOf
}

func NewMapOfBuilder(keys, values Elements) *MapOfBuilder {
	v := NewMapOf(keys, values)
	return &MapOfBuilder{compactBuilder: compactBuilder{shape: v.shape}, view: v}
}

func (b *MapOfBuilder) Reset(buf []byte, offset, maxLimit int) {
	b.reset(buf, offset, maxLimit)
}

func (b *MapOfBuilder) Wrap(buf []byte, offset, maxLimit int) *MapOfBuilder {
	b.reset(buf, offset, maxLimit)
	return b
}

// Entry appends one key and its value.
func (b *MapOfBuilder) Entry(k, v zerowire.Writer) *MapOfBuilder {
	b.append(k)
	b.append(v)
	return b
}

// EntriesRaw appends count encoded items (keys and values, so count is
// even) whose keys and values use the given kinds.
func (b *MapOfBuilder) EntriesRaw(raw []byte, count int, key, value Kind) *MapOfBuilder {
	b.appendRaw(raw, count, [2]Kind{key, value})
	return b
}

func (b *MapOfBuilder) EntriesFrom(src *MapOf) *MapOfBuilder {
	return b.EntriesRaw(src.Payload(), src.Count(), src.KeyKind(), src.ValueKind())
}

func (b *MapOfBuilder) Build() *MapOf {
	b.build()
	return b.view.Wrap(b.Buffer(), b.Offset(), b.Limit())
}

// ListOf is a variant list of self-describing items such as Int, String
// or Value. Items keep their own kind so only the tier is narrowed.
type ListOf struct {
	compact
}

func NewListOf(newItem func() zerowire.View) *ListOf {
	return &ListOf{compact{shape: &shape{name: "list", base: KindList0, slots: []Elements{SelfDescribing(newItem)}}}}
}

func (v *ListOf) Decode(buf []byte, offset, maxLimit int) error {
	return v.decode(buf, offset, maxLimit)
}

func (v *ListOf) Wrap(buf []byte, offset, maxLimit int) *ListOf {
	flyweight.Must(v.Decode(buf, offset, maxLimit))
	return v
}

func (v *ListOf) TryWrap(buf []byte, offset, maxLimit int) *ListOf {
	if !zerowire.TryDecode(v, buf, offset, maxLimit) {
		return nil
	}
	return v
}

// Items yields every item; Data holds the item's complete encoding.
func (v *ListOf) Items() iter.Seq2[int, Item] { return v.all() }

type ListOfBuilder struct {
	compactBuilder
	view *ListOf
}

func NewListOfBuilder(newItem func() zerowire.View) *ListOfBuilder {
	v := NewListOf(newItem)
	return &ListOfBuilder{compactBuilder: compactBuilder{shape: v.shape}, view: v}
}

func (b *ListOfBuilder) Reset(buf []byte, offset, maxLimit int) {
	b.reset(buf, offset, maxLimit)
}

func (b *ListOfBuilder) Wrap(buf []byte, offset, maxLimit int) *ListOfBuilder {
	b.reset(buf, offset, maxLimit)
	return b
}

// Item appends one self-describing item. Nested builders passed through
// zerowire.With must Build inside the fill function.
func (b *ListOfBuilder) Item(w zerowire.Writer) *ListOfBuilder {
	b.append(w)
	return b
}

// ItemsRaw appends count encoded items.
func (b *ListOfBuilder) ItemsRaw(raw []byte, count int) *ListOfBuilder {
	b.appendRaw(raw, count, [2]Kind{})
	return b
}

func (b *ListOfBuilder) ItemsFrom(src *ListOf) *ListOfBuilder {
	return b.ItemsRaw(src.Payload(), src.Count())
}

func (b *ListOfBuilder) Build() *ListOf {
	b.build()
	return b.view.Wrap(b.Buffer(), b.Offset(), b.Limit())
}

var (
	_ zerowire.View = (*ArrayOf)(nil)
	_ zerowire.View = (*MapOf)(nil)
	_ zerowire.View = (*ListOf)(nil)

	_ zerowire.Builder = (*ArrayOfBuilder)(nil)
	_ zerowire.Builder = (*MapOfBuilder)(nil)
	_ zerowire.Builder = (*ListOfBuilder)(nil)
)
