package variant

import (
	"encoding/binary"
	"fmt"
	"unicode/utf8"

	"github.com/wippyai/zerowire"
	"github.com/wippyai/zerowire/errors"
	"github.com/wippyai/zerowire/internal/width"
)

// Elements encodes the items of one slot of a variant-of-collection. All
// items of a slot share one element kind, written once after the header.
// Builders append items under Widest and narrow the slot at Build.
type Elements interface {
	Name() string
	// Explicit reports whether the slot kind byte is written. Self
	// describing items carry their own kind and are never re-encoded.
	Explicit() bool
	Widest() Kind
	Accepts(k Kind) bool
	// Size returns the size of the item at buf[off:limit] encoded under k.
	Size(k Kind, buf []byte, off, limit int) (int, error)
	// Narrowest returns the narrowest kind able to hold the item at
	// buf[off:] encoded under k.
	Narrowest(k Kind, buf []byte, off int) Kind
	// Merge returns the narrowest kind covering both a and b.
	Merge(a, b Kind) Kind
	// SizeAs returns the size the item at buf[off:] encoded under from
	// takes under to.
	SizeAs(to Kind, buf []byte, off int, from Kind) int
	// Reencode rewrites the item at src[srcOff:] from one kind to another
	// and returns the bytes written. The item is read completely before
	// the first write, so dst may overlap src when dstOff <= srcOff.
	Reencode(dst []byte, dstOff int, to Kind, src []byte, srcOff int, from Kind) int
}

var (
	// UintElements holds unsigned integers in Zero, One or Uint8..Uint64.
	UintElements Elements = uintElements{}
	// IntElements holds signed integers in Zero, One or Int8..Int64.
	IntElements Elements = intElements{}
	// StringElements holds UTF-8 strings in String8..String32.
	StringElements Elements = stringElements{}
)

func fixedSize(name string, k Kind, off, limit int) (int, error) {
	n := k.Width()
	if off+n > limit {
		return 0, errors.OutOfBounds(errors.PhaseWrap, name, off, off+n, limit)
	}
	return n, nil
}

// mergeWidth returns the wider of two numeric kinds of one family. Zero
// and One are merged into the one byte case unless equal.
func mergeWidth(a, b Kind, kindOf func(int) Kind) Kind {
	if a == b {
		return a
	}
	return kindOf(max(a.Width(), b.Width(), 1))
}

type uintElements struct{}

func (uintElements) Name() string   { return "uint" }
func (uintElements) Explicit() bool { return true }
func (uintElements) Widest() Kind   { return KindUint64 }

func (uintElements) Accepts(k Kind) bool { return isUintKind(k) }

func (uintElements) Size(k Kind, _ []byte, off, limit int) (int, error) {
	return fixedSize("uint", k, off, limit)
}

func (uintElements) Narrowest(k Kind, buf []byte, off int) Kind {
	return UintKindOf(readUint(k, buf, off))
}

func (uintElements) Merge(a, b Kind) Kind { return mergeWidth(a, b, uintKind) }

func (uintElements) SizeAs(to Kind, _ []byte, _ int, _ Kind) int { return to.Width() }

func (uintElements) Reencode(dst []byte, dstOff int, to Kind, src []byte, srcOff int, from Kind) int {
	writeNumber(to, dst, dstOff, readUint(from, src, srcOff))
	return to.Width()
}

type intElements struct{}

func (intElements) Name() string   { return "int" }
func (intElements) Explicit() bool { return true }
func (intElements) Widest() Kind   { return KindInt64 }

func (intElements) Accepts(k Kind) bool { return isIntKind(k) }

func (intElements) Size(k Kind, _ []byte, off, limit int) (int, error) {
	return fixedSize("int", k, off, limit)
}

func (intElements) Narrowest(k Kind, buf []byte, off int) Kind {
	return IntKindOf(readInt(k, buf, off))
}

func (intElements) Merge(a, b Kind) Kind { return mergeWidth(a, b, intKind) }

func (intElements) SizeAs(to Kind, _ []byte, _ int, _ Kind) int { return to.Width() }

func (intElements) Reencode(dst []byte, dstOff int, to Kind, src []byte, srcOff int, from Kind) int {
	writeNumber(to, dst, dstOff, uint64(readInt(from, src, srcOff)))
	return to.Width()
}

type stringElements struct{}

func (stringElements) Name() string   { return "string" }
func (stringElements) Explicit() bool { return true }
func (stringElements) Widest() Kind   { return KindString32 }

func (stringElements) Accepts(k Kind) bool {
	return k == KindString8 || k == KindString16 || k == KindString32
}

func stringLen(k Kind, buf []byte, off int) int {
	return int(width.Read(buf, off, k.Width(), binary.LittleEndian))
}

func (stringElements) Size(k Kind, buf []byte, off, limit int) (int, error) {
	n := k.Width()
	if off+n > limit {
		return 0, errors.OutOfBounds(errors.PhaseWrap, "string", off, off+n, limit)
	}
	length := width.Read(buf, off, n, binary.LittleEndian)
	if length >= uint64(k.Tier().Max()) {
		return 0, errors.InvalidData(errors.PhaseDecode, "string", off, "null string element")
	}
	end, ok := width.Add(off+n, int(length))
	if !ok || end > limit {
		return 0, errors.OutOfBounds(errors.PhaseWrap, "string", off, end, limit)
	}
	if !utf8.Valid(buf[off+n : end]) {
		return 0, errors.InvalidUTF8(errors.PhaseDecode, "string", buf[off+n:end])
	}
	return n + int(length), nil
}

func (stringElements) Narrowest(k Kind, buf []byte, off int) Kind {
	t, _ := width.ForLength(stringLen(k, buf, off))
	return stringKind(t)
}

func (stringElements) Merge(a, b Kind) Kind {
	if a.Width() >= b.Width() {
		return a
	}
	return b
}

func (stringElements) SizeAs(to Kind, buf []byte, off int, from Kind) int {
	return to.Width() + stringLen(from, buf, off)
}

func (stringElements) Reencode(dst []byte, dstOff int, to Kind, src []byte, srcOff int, from Kind) int {
	length := stringLen(from, src, srcOff)
	start := srcOff + from.Width()
	// the prefix ends before the source payload begins when dstOff <= srcOff
	width.Write(dst, dstOff, to.Width(), uint64(length), binary.LittleEndian)
	copy(dst[dstOff+to.Width():], src[start:start+length])
	return to.Width() + length
}

// SelfDescribing returns the codec for items that carry their own kind,
// such as Int or Value. Items are copied unchanged. The returned codec
// owns a scratch view and must not be shared between goroutines.
func SelfDescribing(newView func() zerowire.View) Elements {
	return &selfDescribing{view: newView()}
}

type selfDescribing struct {
	view zerowire.View
}

func (*selfDescribing) Name() string         { return "self" }
func (*selfDescribing) Explicit() bool       { return false }
func (*selfDescribing) Widest() Kind         { return KindNull }
func (*selfDescribing) Accepts(Kind) bool    { return true }
func (*selfDescribing) Merge(a, _ Kind) Kind { return a }

func (*selfDescribing) Narrowest(k Kind, _ []byte, _ int) Kind { return k }

func (e *selfDescribing) Size(_ Kind, buf []byte, off, limit int) (int, error) {
	if err := e.view.Decode(buf, off, limit); err != nil {
		return 0, err
	}
	return e.view.Limit() - off, nil
}

func (e *selfDescribing) SizeAs(_ Kind, buf []byte, off int, _ Kind) int {
	n, err := e.Size(KindNull, buf, off, len(buf))
	if err != nil {
		panic(errors.Wrap(errors.PhaseRelayout, errors.KindInvalidData, err,
			fmt.Sprintf("self-describing item at %d", off)))
	}
	return n
}

func (e *selfDescribing) Reencode(dst []byte, dstOff int, _ Kind, src []byte, srcOff int, _ Kind) int {
	n := e.SizeAs(KindNull, src, srcOff, KindNull)
	copy(dst[dstOff:], src[srcOff:srcOff+n])
	return n
}

// Widest encodings accepted by builders before relayout.

// UintItem writes v as a Uint64 element.
func UintItem(v uint64) zerowire.Writer {
	return func(buf []byte, offset, maxLimit int) int {
		return putWidest("uint", KindUint64, v, buf, offset, maxLimit)
	}
}

// IntItem writes v as an Int64 element.
func IntItem(v int64) zerowire.Writer {
	return func(buf []byte, offset, maxLimit int) int {
		return putWidest("int", KindInt64, uint64(v), buf, offset, maxLimit)
	}
}

// StringItem writes s as a String32 element.
func StringItem(s string) zerowire.Writer {
	return func(buf []byte, offset, maxLimit int) int {
		if _, ok := width.ForLength(len(s)); !ok {
			panic(errors.LengthExceeded("string", len(s), int(width.Tier32.Max())-1))
		}
		limit := offset + 4 + len(s)
		if limit > maxLimit {
			panic(errors.OutOfBounds(errors.PhaseEncode, "string", offset, limit, maxLimit))
		}
		binary.LittleEndian.PutUint32(buf[offset:], uint32(len(s)))
		copy(buf[offset+4:], s)
		return limit
	}
}

func putWidest(name string, k Kind, raw uint64, buf []byte, offset, maxLimit int) int {
	limit := offset + k.Width()
	if limit > maxLimit {
		panic(errors.OutOfBounds(errors.PhaseEncode, name, offset, limit, maxLimit))
	}
	writeNumber(k, buf, offset, raw)
	return limit
}

// Item is one decoded element of a variant-of-collection.
type Item struct {
	Kind Kind
	Data []byte
}

// Uint decodes an unsigned element.
func (it Item) Uint() uint64 { return readUint(it.Kind, it.Data, 0) }

// Int decodes a signed element.
func (it Item) Int() int64 { return readInt(it.Kind, it.Data, 0) }

// String decodes a string element.
func (it Item) String() string {
	n := it.Kind.Width()
	return string(it.Data[n:])
}
