// Package width holds the tier table shared by every length-prefixed
// encoding, the canonical narrowest-width selection used by the
// auto-compacting variants, and overflow-checked offset arithmetic.
package width

import (
	"encoding/binary"
	"math"
	"math/bits"
)

// Tier is the bit width of a length/count prefix.
type Tier uint8

const (
	Tier0  Tier = 0
	Tier8  Tier = 8
	Tier16 Tier = 16
	Tier32 Tier = 32
)

const (
	MaxListLength = 1 << 27 // 128M max elements
)

// Bytes returns the prefix width in bytes.
func (t Tier) Bytes() int {
	return int(t) / 8
}

// Max returns the largest value a prefix of this tier can hold.
func (t Tier) Max() uint32 {
	switch t {
	case Tier8:
		return math.MaxUint8
	case Tier16:
		return math.MaxUint16
	case Tier32:
		return math.MaxUint32
	}
	return 0
}

// Valid reports whether t is one of the defined tiers.
func (t Tier) Valid() bool {
	return t == Tier0 || t == Tier8 || t == Tier16 || t == Tier32
}

func (t Tier) String() string {
	switch t {
	case Tier0:
		return "tier0"
	case Tier8:
		return "tier8"
	case Tier16:
		return "tier16"
	case Tier32:
		return "tier32"
	}
	return "tier?"
}

// Narrowest returns the narrowest non-empty tier whose maximum covers
// every value. Maxima are inclusive.
func Narrowest(values ...uint64) Tier {
	var m uint64
	for _, v := range values {
		m = max(m, v)
	}
	switch {
	case m <= math.MaxUint8:
		return Tier8
	case m <= math.MaxUint16:
		return Tier16
	}
	return Tier32
}

// ForLength returns the narrowest tier whose prefix can carry a real
// length of n bytes. The all-ones prefix value is reserved for null, so a
// tier covers lengths up to Max()-1. It reports false when no tier fits.
func ForLength(n int) (Tier, bool) {
	switch {
	case n < 0:
		return Tier0, false
	case n < math.MaxUint8:
		return Tier8, true
	case n < math.MaxUint16:
		return Tier16, true
	case uint64(n) < math.MaxUint32:
		return Tier32, true
	}
	return Tier0, false
}

// Read reads an n-byte unsigned integer (n in 1, 2, 4, 8).
func Read(buf []byte, off, n int, order binary.ByteOrder) uint64 {
	switch n {
	case 1:
		return uint64(buf[off])
	case 2:
		return uint64(order.Uint16(buf[off:]))
	case 4:
		return uint64(order.Uint32(buf[off:]))
	case 8:
		return order.Uint64(buf[off:])
	}
	return 0
}

// Write writes v as an n-byte unsigned integer (n in 1, 2, 4, 8).
func Write(buf []byte, off, n int, v uint64, order binary.ByteOrder) {
	switch n {
	case 1:
		buf[off] = byte(v)
	case 2:
		order.PutUint16(buf[off:], uint16(v))
	case 4:
		order.PutUint32(buf[off:], uint32(v))
	case 8:
		order.PutUint64(buf[off:], v)
	}
}

// Unsigned returns the narrowest payload width in bytes (1, 2, 4 or 8)
// that represents v exactly. It is the single width function used by
// every unsigned auto-compacting encoding.
func Unsigned(v uint64) int {
	return roundBytes(bits.Len64(v))
}

// Signed returns the narrowest two's complement payload width in bytes
// (1, 2, 4 or 8) that represents v exactly. A value equal to a tier's
// maximum or minimum stays in that tier.
func Signed(v int64) int {
	// magnitude bits plus the sign bit
	return roundBytes(bits.Len64(uint64(v^(v>>63))) + 1)
}

func roundBytes(nbits int) int {
	switch {
	case nbits <= 8:
		return 1
	case nbits <= 16:
		return 2
	case nbits <= 32:
		return 4
	}
	return 8
}

// SignExtend interprets the low n bytes of raw as a signed integer.
func SignExtend(raw uint64, n int) int64 {
	shift := uint(64 - 8*n)
	return int64(raw<<shift) >> shift
}

// Add returns a+b and false if the sum overflows or either operand is
// negative. Offsets read from untrusted input go through it.
func Add(a, b int) (int, bool) {
	if a < 0 || b < 0 || a > math.MaxInt-b {
		return 0, false
	}
	return a + b, true
}
