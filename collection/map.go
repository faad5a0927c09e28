package collection

import (
	"encoding/binary"
	"fmt"
	"iter"

	"github.com/wippyai/zerowire"
	"github.com/wippyai/zerowire/errors"
	"github.com/wippyai/zerowire/flyweight"
)

// Map is a view over {length, count, k0, v0, k1, v1...}. The count prefix
// holds the number of keys plus values, twice the number of entries.
type Map[K, V zerowire.View] struct {
	sized
	key   K
	value V
}

// NewMap returns a map view of the given tier with scratch key and value
// views.
func NewMap[K, V zerowire.View](tier zerowire.Tier, key K, value V) *Map[K, V] {
	m := &Map[K, V]{key: key, value: value}
	m.tier = tier
	return m
}

func (m *Map[K, V]) WithOrder(order binary.ByteOrder) *Map[K, V] {
	m.order = order
	return m
}

func (m *Map[K, V]) Decode(buf []byte, offset, maxLimit int) error {
	typ := typeName("map", m.tier)
	if err := m.decodeHeader(typ, buf, offset, maxLimit); err != nil {
		return err
	}
	if n := m.Count(); n%2 != 0 {
		return errors.InvalidData(errors.PhaseDecode, typ, offset, fmt.Sprintf("odd count %d", n))
	}
	return m.walk(typ, m.Count(), func(i int) zerowire.View {
		if i%2 == 0 {
			return m.key
		}
		return m.value
	})
}

func (m *Map[K, V]) Wrap(buf []byte, offset, maxLimit int) *Map[K, V] {
	flyweight.Must(m.Decode(buf, offset, maxLimit))
	return m
}

func (m *Map[K, V]) TryWrap(buf []byte, offset, maxLimit int) *Map[K, V] {
	if !zerowire.TryDecode(m, buf, offset, maxLimit) {
		return nil
	}
	return m
}

// Len returns the number of entries.
func (m *Map[K, V]) Len() int { return m.Count() / 2 }

// Entries iterates key/value pairs in encoded order. The yielded views are
// the shared scratch views.
func (m *Map[K, V]) Entries() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		pos, limit := m.payloadStart(), m.Limit()
		for range m.Len() {
			if m.key.Decode(m.Buffer(), pos, limit) != nil {
				return
			}
			if m.value.Decode(m.Buffer(), m.key.Limit(), limit) != nil {
				return
			}
			if !yield(m.key, m.value) {
				return
			}
			pos = m.value.Limit()
		}
	}
}

// MapBuilder appends entries.
type MapBuilder[K, V zerowire.View] struct {
	sizedBuilder
	view *Map[K, V]
}

func NewMapBuilder[K, V zerowire.View](tier zerowire.Tier, key K, value V) *MapBuilder[K, V] {
	b := &MapBuilder[K, V]{view: NewMap(tier, key, value)}
	b.tier = tier
	return b
}

func (b *MapBuilder[K, V]) WithOrder(order binary.ByteOrder) *MapBuilder[K, V] {
	b.order = order
	b.view.order = order
	return b
}

func (b *MapBuilder[K, V]) Reset(buf []byte, offset, maxLimit int) {
	b.reset(typeName("map", b.tier), buf, offset, maxLimit)
}

func (b *MapBuilder[K, V]) Wrap(buf []byte, offset, maxLimit int) *MapBuilder[K, V] {
	b.Reset(buf, offset, maxLimit)
	return b
}

// Entry appends one key/value pair.
func (b *MapBuilder[K, V]) Entry(key, value zerowire.Writer) *MapBuilder[K, V] {
	typ := typeName("map", b.tier)
	b.append(typ, key)
	b.append(typ, value)
	return b
}

// EntriesRaw appends already encoded pairs; count is the number of keys
// plus values.
func (b *MapBuilder[K, V]) EntriesRaw(raw []byte, count int) *MapBuilder[K, V] {
	typ := typeName("map", b.tier)
	if count%2 != 0 {
		panic(errors.InvalidInput(errors.PhaseEncode, fmt.Sprintf("%s: odd raw count %d", typ, count)))
	}
	b.appendRaw(typ, raw, count)
	return b
}

func (b *MapBuilder[K, V]) Build() *Map[K, V] {
	b.stamp(typeName("map", b.tier))
	return b.view.Wrap(b.Buffer(), b.Offset(), b.Limit())
}
