// Package record implements structured records: ordered fields, each
// required or optional, written strictly in declared order because every
// field starts at the limit of the one before it.
//
// Layout: {length:uintN, count:uintN, [presence:uint64], fields...}.
// count is the number of field slots written; trailing optional fields
// are omitted and read back as their declared default.
//
// An absent optional field inside the written range is encoded according
// to the schema layout:
//
//   - Sentinel: a single 0xFF byte takes its place. Decoding rebuilds
//     presence by checking each optional slot against the sentinel, so
//     optional fields must never start with 0xFF (variants never do).
//   - Bitmask: nothing is written and its bit in the little-endian
//     presence mask is cleared.
//
// Optional fields with a default are materialized by the builder the
// first time a later field is set, never eagerly.
package record

import (
	"fmt"

	"github.com/wippyai/zerowire"
	"github.com/wippyai/zerowire/errors"
	"github.com/wippyai/zerowire/internal/width"
)

// Layout selects how absent optional fields are encoded.
type Layout uint8

const (
	Sentinel Layout = iota
	Bitmask
)

func (l Layout) String() string {
	switch l {
	case Sentinel:
		return "sentinel"
	case Bitmask:
		return "bitmask"
	}
	return fmt.Sprintf("layout(%d)", uint8(l))
}

// Missing is the sentinel written for an absent optional field.
const Missing byte = 0xFF

// MaxBitmaskFields is the field limit of bitmask records.
const MaxBitmaskFields = 64

// Field declares one record field.
type Field struct {
	Name     string
	Optional bool
	// Default is the encoded value of an absent optional field, nil for
	// none.
	Default []byte
	// New returns a fresh view for the field.
	New func() zerowire.View
}

// Schema is an immutable record descriptor and may be shared between
// goroutines; views and builders own their scratch state.
type Schema struct {
	Name   string
	Layout Layout
	Tier   zerowire.Tier
	Fields []Field
	index  map[string]int
}

// NewSchema validates and returns a schema. It panics on an invalid tier,
// a field without a view constructor, a default that does not decode as
// its field, a default on a required field, or too many bitmask fields.
func NewSchema(name string, layout Layout, tier zerowire.Tier, fields ...Field) *Schema {
	fail := func(format string, args ...any) {
		panic(errors.Unsupported(errors.PhaseEncode, name+": "+fmt.Sprintf(format, args...)))
	}
	if tier == width.Tier0 || !tier.Valid() {
		fail("record tier %v", tier)
	}
	if layout != Sentinel && layout != Bitmask {
		fail("layout %v", layout)
	}
	if layout == Bitmask && len(fields) > MaxBitmaskFields {
		fail("%d fields exceed the bitmask limit of %d", len(fields), MaxBitmaskFields)
	}
	s := &Schema{
		Name:   name,
		Layout: layout,
		Tier:   tier,
		Fields: fields,
		index:  make(map[string]int, len(fields)),
	}
	for i, f := range fields {
		if f.New == nil {
			fail("field %q has no view", f.Name)
		}
		if _, dup := s.index[f.Name]; dup {
			fail("duplicate field %q", f.Name)
		}
		s.index[f.Name] = i
		if f.Default == nil {
			continue
		}
		if !f.Optional {
			fail("required field %q has a default", f.Name)
		}
		v := f.New()
		if err := v.Decode(f.Default, 0, len(f.Default)); err != nil || v.Limit() != len(f.Default) {
			fail("default of field %q does not decode", f.Name)
		}
		if layout == Sentinel && len(f.Default) > 0 && f.Default[0] == Missing {
			fail("default of field %q starts with the missing marker", f.Name)
		}
	}
	return s
}

// FieldIndex returns the index of the named field.
func (s *Schema) FieldIndex(name string) (int, bool) {
	i, ok := s.index[name]
	return i, ok
}

func (s *Schema) headerSize() int {
	n := 2 * s.Tier.Bytes()
	if s.Layout == Bitmask {
		n += 8
	}
	return n
}

// NewView returns a view of this schema.
func (s *Schema) NewView() *View {
	return &View{
		schema:  s,
		offsets: make([]int, len(s.Fields)),
		scratch: make([]zerowire.View, len(s.Fields)),
	}
}

// NewBuilder returns a builder of this schema.
func (s *Schema) NewBuilder() *Builder {
	return &Builder{
		schema:  s,
		written: make([]bool, len(s.Fields)),
		view:    s.NewView(),
	}
}
