// Package errors provides structured error types for the zerowire codecs.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type carries the codec type name, field path, buffer offset and cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseEncode, errors.KindLengthExceeded).
//		Type("string8").
//		Offset(12).
//		Detail("length %d exceeds %d", 300, 254).
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.OutOfBounds(errors.PhaseWrap, "string8", 10, 11, 10)
//	err := errors.InvalidDiscriminant(errors.PhaseDecode, "int", 0x99)
//
// Decoding reports errors as values. Encoding and build violations are caller
// defects; builders panic with an *Error so the wire format is never silently
// corrupted. All errors implement the standard error interface and support
// errors.Is/As.
package errors
