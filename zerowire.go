package zerowire

import (
	"bytes"

	"github.com/wippyai/zerowire/errors"
	"github.com/wippyai/zerowire/internal/width"
)

// View is a read-only cursor over an encoded value.
// Decode binds the view to buf[offset:maxLimit] and validates the encoding;
// Limit is computed from the decoded content and never exceeds maxLimit.
type View interface {
	Decode(buf []byte, offset, maxLimit int) error
	Buffer() []byte
	Offset() int
	Limit() int
	Sizeof() int
}

// Builder is a write cursor that appends an encoding into a region.
// Reset rebinds the builder and moves its cursor back to offset.
type Builder interface {
	Reset(buf []byte, offset, maxLimit int)
	Buffer() []byte
	Offset() int
	Limit() int
	Sizeof() int
}

// Writer encodes a value at buf[offset:] without passing maxLimit and
// returns the new limit. Containers accept writers so any builder, raw
// bytes or nested container can supply an item.
type Writer func(buf []byte, offset, maxLimit int) (limit int)

// Tier is the bit width of a length/count prefix.
type Tier = width.Tier

const (
	Tier0  = width.Tier0
	Tier8  = width.Tier8
	Tier16 = width.Tier16
	Tier32 = width.Tier32
)

// With returns a Writer that resets b at the target region and runs fill.
func With[B Builder](b B, fill func(B)) Writer {
	return func(buf []byte, offset, maxLimit int) int {
		b.Reset(buf, offset, maxLimit)
		fill(b)
		return b.Limit()
	}
}

// Raw returns a Writer that copies already encoded bytes.
func Raw(encoded []byte) Writer {
	return func(buf []byte, offset, maxLimit int) int {
		limit := offset + len(encoded)
		if limit > maxLimit {
			panic(errors.OutOfBounds(errors.PhaseEncode, "raw", offset, limit, maxLimit))
		}
		copy(buf[offset:], encoded)
		return limit
	}
}

// Copy returns a Writer that copies the span of an existing view.
func Copy(v View) Writer {
	return Raw(Bytes(v))
}

// Encode runs w over a fresh buffer of capacity bytes and returns the
// encoded span. It is meant for defaults and tests, not hot paths.
func Encode(w Writer, capacity int) []byte {
	buf := make([]byte, capacity)
	return buf[:w(buf, 0, capacity)]
}

// TryDecode decodes v and reports success. A panic raised by a nested
// decoder is reported as failure.
func TryDecode(v View, buf []byte, offset, maxLimit int) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	return v.Decode(buf, offset, maxLimit) == nil
}

// Bytes returns the encoded span of v without copying.
func Bytes(v View) []byte {
	return v.Buffer()[v.Offset():v.Limit()]
}

// Equal reports whether the encoded spans of a and b are bit-for-bit equal.
func Equal(a, b View) bool {
	return bytes.Equal(Bytes(a), Bytes(b))
}

// Hash returns the polynomial hash of the encoded span of v.
func Hash(v View) uint32 {
	return HashBytes(Bytes(v))
}

// HashBytes computes h = 31*h + b over data, starting at 1.
func HashBytes(data []byte) uint32 {
	h := uint32(1)
	for _, b := range data {
		h = 31*h + uint32(b)
	}
	return h
}
