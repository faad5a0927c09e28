package errors

import (
	stderrors "errors"
	"fmt"
	"strconv"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseWrap     Phase = "wrap"     // binding a view to a buffer region
	PhaseDecode   Phase = "decode"   // reading field values from a view
	PhaseEncode   Phase = "encode"   // writing field values through a builder
	PhaseBuild    Phase = "build"    // finalizing a builder
	PhaseRelayout Phase = "relayout" // in-place tier compaction
	PhaseStream   Phase = "stream"   // reassembly of fragmented input
	PhaseGuest    Phase = "guest"    // guest linear memory access
)

// Kind categorizes the error
type Kind string

const (
	KindOutOfBounds    Kind = "out_of_bounds"
	KindInvalidData    Kind = "invalid_data"
	KindInvalidVariant Kind = "invalid_variant"
	KindInvalidUTF8    Kind = "invalid_utf8"
	KindLengthExceeded Kind = "length_exceeded"
	KindOverflow       Kind = "overflow"
	KindFieldOrder     Kind = "field_order"
	KindFieldDuplicate Kind = "field_duplicate"
	KindFieldMissing   Kind = "field_missing"
	KindUnsupported    Kind = "unsupported"
	KindInvalidInput   Kind = "invalid_input"
)

// Error is the structured error type used throughout the module
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Type   string
	Detail string
	Path   []string
	Offset int
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Type != "" {
		b.WriteByte(' ')
		b.WriteString(e.Type)
	}

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.Offset > 0 {
		b.WriteString(" @")
		b.WriteString(strconv.Itoa(e.Offset))
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// HasKind reports whether err is, or wraps, an *Error of the given kind
// regardless of phase.
func HasKind(err error, kind Kind) bool {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the field path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Type sets the codec type name
func (b *Builder) Type(t string) *Builder {
	b.err.Type = t
	return b
}

// Offset sets the buffer offset the error refers to
func (b *Builder) Offset(off int) *Builder {
	b.err.Offset = off
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// OutOfBounds reports a span [offset, limit) that does not fit below maxLimit.
func OutOfBounds(phase Phase, typ string, offset, limit, maxLimit int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOutOfBounds,
		Type:   typ,
		Offset: offset,
		Detail: fmt.Sprintf("limit %d exceeds max limit %d", limit, maxLimit),
		Value:  limit,
	}
}

// InvalidDiscriminant creates an unrecognized kind error for variants
func InvalidDiscriminant(phase Phase, typ string, kind uint32) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidVariant,
		Type:   typ,
		Detail: fmt.Sprintf("unrecognized kind 0x%02x", kind),
		Value:  kind,
	}
}

// LengthExceeded reports a value longer than the tier can represent.
func LengthExceeded(typ string, length, maxLength int) *Error {
	return &Error{
		Phase:  PhaseEncode,
		Kind:   KindLengthExceeded,
		Type:   typ,
		Detail: fmt.Sprintf("length %d exceeds %d", length, maxLength),
		Value:  length,
	}
}

// FieldOrder reports a field set out of declared order.
func FieldOrder(typ, field, detail string) *Error {
	return &Error{
		Phase:  PhaseEncode,
		Kind:   KindFieldOrder,
		Type:   typ,
		Path:   []string{field},
		Detail: detail,
	}
}

// FieldDuplicate reports a field set twice.
func FieldDuplicate(typ, field string) *Error {
	return &Error{
		Phase:  PhaseEncode,
		Kind:   KindFieldDuplicate,
		Type:   typ,
		Path:   []string{field},
		Detail: fmt.Sprintf("field %q already set", field),
	}
}

// FieldMissing creates a missing field error
func FieldMissing(phase Phase, typ, fieldName string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindFieldMissing,
		Type:   typ,
		Path:   []string{fieldName},
		Detail: fmt.Sprintf("required field %q not set", fieldName),
	}
}

// Overflow creates an overflow error
func Overflow(phase Phase, typ string, offset int, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOverflow,
		Type:   typ,
		Offset: offset,
		Detail: detail,
	}
}

// InvalidUTF8 creates an invalid UTF-8 error
func InvalidUTF8(phase Phase, typ string, data []byte) *Error {
	preview := data
	if len(preview) > 32 {
		preview = preview[:32]
	}
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidUTF8,
		Type:   typ,
		Detail: fmt.Sprintf("invalid UTF-8 sequence: %x", preview),
	}
}

// InvalidData creates an invalid data error
func InvalidData(phase Phase, typ string, offset int, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidData,
		Type:   typ,
		Offset: offset,
		Detail: detail,
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// WithPath prefixes the path of err with elem when err is an *Error.
// Containers use it so nested decode failures point at the failing item.
func WithPath(err error, elem string) error {
	var e *Error
	if !stderrors.As(err, &e) {
		return err
	}
	e.Path = append([]string{elem}, e.Path...)
	return err
}
