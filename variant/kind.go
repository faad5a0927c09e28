package variant

import (
	"fmt"

	"github.com/wippyai/zerowire/internal/width"
)

// Kind is the one byte discriminant of the built-in variants. Its wire
// value is explicit; for sized kinds the low nibble is the payload or
// prefix width in bytes.
type Kind uint8

const (
	KindNull  Kind = 0x00
	KindFalse Kind = 0x01
	KindTrue  Kind = 0x02

	KindZero Kind = 0x40
	KindOne  Kind = 0x41

	KindInt8  Kind = 0x51
	KindInt16 Kind = 0x52
	KindInt32 Kind = 0x54
	KindInt64 Kind = 0x58

	KindUint8  Kind = 0x61
	KindUint16 Kind = 0x62
	KindUint32 Kind = 0x64
	KindUint64 Kind = 0x68

	KindString8  Kind = 0x71
	KindString16 Kind = 0x72
	KindString32 Kind = 0x74

	KindArray0  Kind = 0xA0
	KindArray8  Kind = 0xA1
	KindArray16 Kind = 0xA2
	KindArray32 Kind = 0xA4

	KindList0  Kind = 0xB0
	KindList8  Kind = 0xB1
	KindList16 Kind = 0xB2
	KindList32 Kind = 0xB4

	KindMap0  Kind = 0xC0
	KindMap8  Kind = 0xC1
	KindMap16 Kind = 0xC2
	KindMap32 Kind = 0xC4

	// KindMissing marks an absent optional field in sentinel-layout
	// records. No variant encoding starts with it.
	KindMissing Kind = 0xFF
)

var kindNames = [256]string{
	KindNull:     "null",
	KindFalse:    "false",
	KindTrue:     "true",
	KindZero:     "zero",
	KindOne:      "one",
	KindInt8:     "int8",
	KindInt16:    "int16",
	KindInt32:    "int32",
	KindInt64:    "int64",
	KindUint8:    "uint8",
	KindUint16:   "uint16",
	KindUint32:   "uint32",
	KindUint64:   "uint64",
	KindString8:  "string8",
	KindString16: "string16",
	KindString32: "string32",
	KindArray0:   "array0",
	KindArray8:   "array8",
	KindArray16:  "array16",
	KindArray32:  "array32",
	KindList0:    "list0",
	KindList8:    "list8",
	KindList16:   "list16",
	KindList32:   "list32",
	KindMap0:     "map0",
	KindMap8:     "map8",
	KindMap16:    "map16",
	KindMap32:    "map32",
	KindMissing:  "missing",
}

func (k Kind) String() string {
	if name := kindNames[k]; name != "" {
		return name
	}
	return fmt.Sprintf("kind(0x%02x)", uint8(k))
}

// Known reports whether k is one of the declared kinds.
func (k Kind) Known() bool {
	return kindNames[k] != ""
}

// Family returns the high nibble, shared by every width of one kind.
func (k Kind) Family() Kind { return k & 0xF0 }

// Width returns the payload or prefix width in bytes encoded in the low
// nibble of sized kinds, 0 for the rest.
func (k Kind) Width() int {
	switch k.Family() {
	case 0x50, 0x60, 0x70, 0xA0, 0xB0, 0xC0:
		return int(k & 0x0F)
	}
	return 0
}

// Tier returns the prefix tier of string and collection kinds.
func (k Kind) Tier() width.Tier {
	return width.Tier(8 * k.Width())
}

func intKind(n int) Kind           { return 0x50 | Kind(n) }
func uintKind(n int) Kind          { return 0x60 | Kind(n) }
func stringKind(t width.Tier) Kind { return 0x70 | Kind(t.Bytes()) }

// tierKind returns the kind of family fam (KindArray0, KindList0 or
// KindMap0) for tier t.
func tierKind(fam Kind, t width.Tier) Kind { return fam | Kind(t.Bytes()) }
