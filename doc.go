// Package zerowire provides a zero-copy binary encoding runtime.
//
// Values are read and written directly over byte-buffer regions. A view
// borrows a span of an existing buffer and decodes fields lazily from
// offsets; a builder appends encoded bytes into a caller-supplied region
// and never writes past its limit.
//
// # Architecture Overview
//
//	zerowire/            Root package with the View and Builder contracts
//	├── flyweight/       Bounded view and builder bases, scalars, strings, octets
//	├── varint/          Zig-zag base-128 integers
//	├── collection/      Length-prefixed arrays, lists and maps in 0/8/16/32-bit tiers
//	├── variant/         Kind-discriminated unions, auto-compacting values, relayout
//	├── record/          Ordered records with optional fields and defaults
//	├── stream/          Reassembly of fragmented input
//	├── guestmem/        Views and builders over WebAssembly linear memory
//	├── errors/          Structured error types for debugging
//	└── cmd/zwinspect/   Inspector for encoded variant values
//
// # Quick Start
//
// Encode a string into a buffer and read it back:
//
//	buf := make([]byte, 64)
//	b := new(flyweight.String8Builder).Wrap(buf, 0, len(buf))
//	b.Set("blue")
//	v := b.Build()
//	fmt.Println(v.String(), v.Sizeof()) // "blue" 5
//
// # Errors
//
// Decoding untrusted or partial input goes through TryWrap, which returns
// nil while the value is incomplete or malformed and never panics. Wrap
// panics with a *errors.Error for the same conditions. Decode returns the
// error and is the primitive both are built on. Builders panic on any
// violation (writing past the limit, oversized values, out-of-order
// fields) because those indicate a defect in the caller.
//
// # Thread Safety
//
// Views and builders are reusable cursors and are NOT safe for concurrent
// use. Views over disjoint regions may be used from different goroutines.
// Schemas and variant types are immutable and may be shared.
package zerowire
