// Package flyweight provides the bounded view and builder bases every codec
// embeds, together with the leaf codecs: fixed-width scalars, booleans and
// length-prefixed strings and octet spans.
//
// A view never copies the buffer it wraps. Wrap panics on a malformed or
// truncated encoding, TryWrap returns nil for the same input, and Decode
// reports the error; all three perform identical validation.
package flyweight

import (
	"github.com/wippyai/zerowire/errors"
)

// Flyweight is the embedded base of every view: a borrowed buffer with an
// offset and a maximum limit, offset <= maxLimit <= len(buf).
type Flyweight struct {
	buf      []byte
	offset   int
	maxLimit int
}

// Bind validates and binds the region [offset, maxLimit) of buf.
func (f *Flyweight) Bind(typ string, buf []byte, offset, maxLimit int) error {
	if offset < 0 || offset > maxLimit || maxLimit > len(buf) {
		*f = Flyweight{}
		return errors.New(errors.PhaseWrap, errors.KindOutOfBounds).
			Type(typ).
			Offset(offset).
			Detail("region [%d, %d) outside buffer of %d bytes", offset, maxLimit, len(buf)).
			Build()
	}
	f.buf = buf
	f.offset = offset
	f.maxLimit = maxLimit
	return nil
}

// Need reports an out of bounds error if limit exceeds the bound region.
func (f *Flyweight) Need(typ string, limit int) error {
	if limit < f.offset || limit > f.maxLimit {
		return errors.OutOfBounds(errors.PhaseWrap, typ, f.offset, limit, f.maxLimit)
	}
	return nil
}

// Buffer returns the wrapped buffer.
func (f *Flyweight) Buffer() []byte { return f.buf }

// Offset returns the first byte of the encoding.
func (f *Flyweight) Offset() int { return f.offset }

// MaxLimit returns the limit the view was wrapped with.
func (f *Flyweight) MaxLimit() int { return f.maxLimit }

// Must panics with err when it is non-nil. Wrap methods are built on it.
func Must(err error) {
	if err != nil {
		panic(err)
	}
}

// BuilderBase is the embedded base of every builder. The cursor limit only
// moves forward while appending; the bounds check runs before any byte is
// written.
type BuilderBase struct {
	buf      []byte
	offset   int
	limit    int
	maxLimit int
}

// Reset binds the builder to [offset, maxLimit) of buf and moves the cursor
// back to offset.
func (b *BuilderBase) Reset(buf []byte, offset, maxLimit int) {
	if offset < 0 || offset > maxLimit || maxLimit > len(buf) {
		panic(errors.New(errors.PhaseEncode, errors.KindOutOfBounds).
			Offset(offset).
			Detail("region [%d, %d) outside buffer of %d bytes", offset, maxLimit, len(buf)).
			Build())
	}
	b.buf = buf
	b.offset = offset
	b.limit = offset
	b.maxLimit = maxLimit
}

// CheckLimit panics if a write ending at limit would pass the max limit.
func (b *BuilderBase) CheckLimit(typ string, limit int) {
	if limit < b.offset || limit > b.maxLimit {
		panic(errors.OutOfBounds(errors.PhaseEncode, typ, b.offset, limit, b.maxLimit))
	}
}

// SetLimit moves the cursor. Callers run CheckLimit first.
func (b *BuilderBase) SetLimit(limit int) { b.limit = limit }

// Buffer returns the target buffer.
func (b *BuilderBase) Buffer() []byte { return b.buf }

// Offset returns the first byte of the encoding being built.
func (b *BuilderBase) Offset() int { return b.offset }

// Limit returns the current write cursor.
func (b *BuilderBase) Limit() int { return b.limit }

// MaxLimit returns the limit the builder was wrapped with.
func (b *BuilderBase) MaxLimit() int { return b.maxLimit }

// Sizeof returns the number of bytes written so far.
func (b *BuilderBase) Sizeof() int { return b.limit - b.offset }
