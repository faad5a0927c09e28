package width

import (
	"encoding/binary"
	"math"
	"testing"
)

func TestUnsigned(t *testing.T) {
	tests := []struct {
		v    uint64
		want int
	}{
		{0, 1},
		{1, 1},
		{math.MaxUint8, 1},
		{math.MaxUint8 + 1, 2},
		{math.MaxUint16, 2},
		{math.MaxUint16 + 1, 4},
		{math.MaxUint32, 4},
		{math.MaxUint32 + 1, 8},
		{math.MaxUint64, 8},
	}

	for _, tt := range tests {
		if got := Unsigned(tt.v); got != tt.want {
			t.Errorf("Unsigned(%d) = %d, want %d", tt.v, got, tt.want)
		}
	}
}

func TestSigned(t *testing.T) {
	tests := []struct {
		v    int64
		want int
	}{
		{0, 1},
		{-1, 1},
		{math.MaxInt8, 1},
		{math.MinInt8, 1},
		{math.MaxInt8 + 1, 2},
		{math.MinInt8 - 1, 2},
		{math.MaxInt16, 2},
		{math.MinInt16, 2},
		{math.MaxInt16 + 1, 4},
		{math.MinInt16 - 1, 4},
		{math.MaxInt32, 4},
		{math.MinInt32, 4},
		{math.MaxInt32 + 1, 8},
		{math.MinInt32 - 1, 8},
		{math.MaxInt64, 8},
		{math.MinInt64, 8},
	}

	for _, tt := range tests {
		if got := Signed(tt.v); got != tt.want {
			t.Errorf("Signed(%d) = %d, want %d", tt.v, got, tt.want)
		}
	}
}

func TestSignedRoundTrip(t *testing.T) {
	buf := make([]byte, 8)
	for _, v := range []int64{0, 1, -1, 127, -128, 300, -300, 1 << 40, -(1 << 40), math.MinInt64} {
		n := Signed(v)
		Write(buf, 0, n, uint64(v), binary.LittleEndian)
		got := SignExtend(Read(buf, 0, n, binary.LittleEndian), n)
		if got != v {
			t.Errorf("round trip %d via %d bytes = %d", v, n, got)
		}
	}
}

func TestNarrowest(t *testing.T) {
	tests := []struct {
		values []uint64
		want   Tier
	}{
		{[]uint64{0, 0}, Tier8},
		{[]uint64{255, 2}, Tier8},
		{[]uint64{256, 2}, Tier16},
		{[]uint64{3, 65535}, Tier16},
		{[]uint64{65536}, Tier32},
	}

	for _, tt := range tests {
		if got := Narrowest(tt.values...); got != tt.want {
			t.Errorf("Narrowest(%v) = %v, want %v", tt.values, got, tt.want)
		}
	}
}

func TestTier(t *testing.T) {
	tests := []struct {
		tier  Tier
		bytes int
		max   uint32
	}{
		{Tier0, 0, 0},
		{Tier8, 1, 0xFF},
		{Tier16, 2, 0xFFFF},
		{Tier32, 4, 0xFFFFFFFF},
	}

	for _, tt := range tests {
		if tt.tier.Bytes() != tt.bytes {
			t.Errorf("%v.Bytes() = %d, want %d", tt.tier, tt.tier.Bytes(), tt.bytes)
		}
		if tt.tier.Max() != tt.max {
			t.Errorf("%v.Max() = %d, want %d", tt.tier, tt.tier.Max(), tt.max)
		}
		if !tt.tier.Valid() {
			t.Errorf("%v should be valid", tt.tier)
		}
	}
	if Tier(12).Valid() {
		t.Error("Tier(12) should be invalid")
	}
}

func TestReadWriteOrder(t *testing.T) {
	buf := make([]byte, 4)
	Write(buf, 0, 4, 0x01020304, binary.BigEndian)
	if buf[0] != 0x01 || buf[3] != 0x04 {
		t.Errorf("big endian write = %x", buf)
	}
	if got := Read(buf, 0, 4, binary.BigEndian); got != 0x01020304 {
		t.Errorf("big endian read = %x", got)
	}
	if got := Read(buf, 0, 2, binary.LittleEndian); got != 0x0201 {
		t.Errorf("little endian read = %x", got)
	}
}

func TestAdd(t *testing.T) {
	if v, ok := Add(3, 4); !ok || v != 7 {
		t.Errorf("Add(3, 4) = %d, %v", v, ok)
	}
	if _, ok := Add(math.MaxInt, 1); ok {
		t.Error("Add should overflow")
	}
	if _, ok := Add(-1, 1); ok {
		t.Error("Add should reject negative operands")
	}
}

func TestForLength(t *testing.T) {
	tests := []struct {
		n    int
		want Tier
		ok   bool
	}{
		{0, Tier8, true},
		{254, Tier8, true},
		{255, Tier16, true},
		{65534, Tier16, true},
		{65535, Tier32, true},
		{-1, Tier0, false},
	}

	for _, tt := range tests {
		got, ok := ForLength(tt.n)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ForLength(%d) = %v, %v; want %v, %v", tt.n, got, ok, tt.want, tt.ok)
		}
	}
}
