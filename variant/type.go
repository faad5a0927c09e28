// Package variant implements kind-discriminated unions.
//
// A variant is {kind, payload}. Decoding reads the kind, then wraps the
// payload with the matching case at offset plus the discriminant width.
// Implicit cases carry no payload and end at the discriminant.
//
// Besides the descriptor-driven Type, the package provides built-in
// variants that choose the narrowest encoding for a runtime value (Int,
// Uint, String), variant-of-collection codecs that write provisionally at
// the widest tier and relayout in place at Build (ArrayOf, MapOf, ListOf),
// and Value, a self-describing dynamic value.
package variant

import (
	"encoding/binary"
	"fmt"

	"github.com/wippyai/zerowire"
	"github.com/wippyai/zerowire/errors"
	"github.com/wippyai/zerowire/flyweight"
	"github.com/wippyai/zerowire/internal/width"
)

// Case is one alternative of a Type.
type Case struct {
	Kind uint32
	Name string
	// New returns a fresh payload view. A nil New marks an implicit case
	// whose payload is empty.
	New func() zerowire.View
}

// Type describes a variant: its discriminant width and case set. A Type is
// immutable once built and may be shared; views and builders hold their
// own scratch payload views.
type Type struct {
	Name     string
	width    int
	order    binary.ByteOrder
	cases    []Case
	index    map[uint32]int
	fallback *Case
}

// NewType returns a variant type with a discriminant of 1, 2 or 4 bytes.
// It panics on an invalid width or a duplicate kind.
func NewType(name string, discriminantWidth int, cases ...Case) *Type {
	switch discriminantWidth {
	case 1, 2, 4:
	default:
		panic(errors.Unsupported(errors.PhaseEncode, fmt.Sprintf("%s: discriminant width %d", name, discriminantWidth)))
	}
	t := &Type{
		Name:  name,
		width: discriminantWidth,
		order: binary.LittleEndian,
		cases: cases,
		index: make(map[uint32]int, len(cases)),
	}
	maxKind := uint64(width.Tier(8 * discriminantWidth).Max())
	for i, c := range cases {
		if uint64(c.Kind) > maxKind {
			panic(errors.Unsupported(errors.PhaseEncode, fmt.Sprintf("%s: kind %d does not fit %d bytes", name, c.Kind, discriminantWidth)))
		}
		if _, dup := t.index[c.Kind]; dup {
			panic(errors.Unsupported(errors.PhaseEncode, fmt.Sprintf("%s: duplicate kind %d", name, c.Kind)))
		}
		t.index[c.Kind] = i
	}
	return t
}

// WithFallback declares the case that decodes any unrecognized kind. Without
// one, unknown kinds are a decode error.
func (t *Type) WithFallback(c Case) *Type {
	t.fallback = &c
	return t
}

// WithOrder sets the byte order of multi-byte discriminants.
func (t *Type) WithOrder(order binary.ByteOrder) *Type {
	t.order = order
	return t
}

// DiscriminantWidth returns the discriminant size in bytes.
func (t *Type) DiscriminantWidth() int { return t.width }

// Cases returns the declared cases.
func (t *Type) Cases() []Case { return t.cases }

// lookup returns the case index for kind; len(cases) selects the fallback.
func (t *Type) lookup(kind uint32) (int, bool) {
	if i, ok := t.index[kind]; ok {
		return i, true
	}
	if t.fallback != nil {
		return len(t.cases), true
	}
	return 0, false
}

func (t *Type) caseAt(i int) *Case {
	if i == len(t.cases) {
		return t.fallback
	}
	return &t.cases[i]
}

// NewView returns a view of this type.
func (t *Type) NewView() *View {
	return &View{t: t, scratch: make([]zerowire.View, len(t.cases)+1)}
}

// NewBuilder returns a builder of this type.
func (t *Type) NewBuilder() *Builder {
	return &Builder{t: t, view: t.NewView()}
}

// View is a view over a variant of a Type.
type View struct {
	flyweight.Flyweight
	t       *Type
	kind    uint32
	active  int
	payload zerowire.View
	scratch []zerowire.View
}

func (v *View) Decode(buf []byte, offset, maxLimit int) error {
	v.payload = nil
	if err := v.Bind(v.t.Name, buf, offset, maxLimit); err != nil {
		return err
	}
	w := v.t.width
	if err := v.Need(v.t.Name, offset+w); err != nil {
		return err
	}
	v.kind = uint32(width.Read(buf, offset, w, v.t.order))
	i, ok := v.t.lookup(v.kind)
	if !ok {
		err := errors.InvalidDiscriminant(errors.PhaseDecode, v.t.Name, v.kind)
		err.Offset = offset
		return err
	}
	v.active = i
	c := v.t.caseAt(i)
	if c.New == nil {
		return nil
	}
	if v.scratch[i] == nil {
		v.scratch[i] = c.New()
	}
	if err := v.scratch[i].Decode(buf, offset+w, maxLimit); err != nil {
		return errors.WithPath(err, c.Name)
	}
	v.payload = v.scratch[i]
	return nil
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
	if v.payload == nil {
		return v.Offset() + v.t.width
	}
	return v.payload.Limit()
}

func (v *View) Sizeof() int { return v.Limit() - v.Offset() }

// Kind returns the decoded discriminant.
func (v *View) Kind() uint32 { return v.kind }

// Case returns the matched case, the fallback for unknown kinds.
func (v *View) Case() Case { return *v.t.caseAt(v.active) }

// IsFallback reports whether the kind was not declared and the fallback
// case decoded it.
func (v *View) IsFallback() bool { return v.active == len(v.t.cases) }

// Payload returns the active payload view, nil for implicit cases.
func (v *View) Payload() zerowire.View { return v.payload }

// Builder writes a variant of a Type.
type Builder struct {
	flyweight.BuilderBase
	t    *Type
	view *View
}

func (b *Builder) Wrap(buf []byte, offset, maxLimit int) *Builder {
	b.Reset(buf, offset, maxLimit)
	return b
}

// Set writes the discriminant and, for cases with a payload, the payload
// produced by w. Implicit cases take a nil writer.
func (b *Builder) Set(kind uint32, w zerowire.Writer) *Builder {
	i, ok := b.t.lookup(kind)
	if !ok {
		panic(errors.InvalidDiscriminant(errors.PhaseEncode, b.t.Name, kind))
	}
	c := b.t.caseAt(i)
	if (c.New == nil) != (w == nil) {
		panic(errors.InvalidInput(errors.PhaseEncode,
			fmt.Sprintf("%s: case %s payload mismatch", b.t.Name, c.Name)))
	}
	start := b.Offset() + b.t.width
	b.CheckLimit(b.t.Name, start)
	width.Write(b.Buffer(), b.Offset(), b.t.width, uint64(kind), b.t.order)
	limit := start
	if w != nil {
		limit = w(b.Buffer(), start, b.MaxLimit())
		b.CheckLimit(b.t.Name, limit)
	}
	b.SetLimit(limit)
	return b
}

// SetFrom copies an encoded variant of the same type.
func (b *Builder) SetFrom(v *View) *Builder {
	if v.Payload() == nil {
		return b.Set(v.Kind(), nil)
	}
	return b.Set(v.Kind(), zerowire.Copy(v.Payload()))
}

func (b *Builder) Build() *View {
	return b.view.Wrap(b.Buffer(), b.Offset(), b.Limit())
}
