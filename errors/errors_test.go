package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full error",
			err: &Error{
				Phase:  PhaseEncode,
				Kind:   KindLengthExceeded,
				Path:   []string{"order", "lines", "sku"},
				Type:   "string8",
				Offset: 42,
				Detail: "length 300 exceeds 254",
			},
			contains: []string{"[encode]", "length_exceeded", "order.lines.sku", "string8", "@42", "exceeds 254"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase: PhaseDecode,
				Kind:  KindOutOfBounds,
			},
			contains: []string{"[decode]", "out_of_bounds"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseGuest,
				Kind:   KindOutOfBounds,
				Detail: "region outside memory",
				Cause:  errors.New("underlying error"),
			},
			contains: []string{"[guest]", "out_of_bounds", "region outside memory", "caused by", "underlying error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := &Error{
		Phase: PhaseEncode,
		Kind:  KindInvalidData,
		Cause: cause,
	}

	if !errors.Is(err.Unwrap(), cause) {
		t.Error("Unwrap did not return cause")
	}

	if !errors.Is(errors.Unwrap(err), cause) {
		t.Error("errors.Unwrap did not return cause")
	}
}

func TestError_Is(t *testing.T) {
	err := &Error{
		Phase: PhaseWrap,
		Kind:  KindOutOfBounds,
		Path:  []string{"foo"},
	}

	if !errors.Is(err, &Error{Phase: PhaseWrap, Kind: KindOutOfBounds}) {
		t.Error("should match same phase and kind")
	}
	if errors.Is(err, &Error{Phase: PhaseDecode, Kind: KindOutOfBounds}) {
		t.Error("should not match different phase")
	}
	if errors.Is(err, &Error{Phase: PhaseWrap, Kind: KindOverflow}) {
		t.Error("should not match different kind")
	}
	if errors.Is(err, errors.New("other")) {
		t.Error("should not match non-Error")
	}
}

func TestHasKind(t *testing.T) {
	inner := Overflow(PhaseDecode, "varint32", 3, "fifth byte continues")
	wrapped := fmt.Errorf("reading frame: %w", inner)

	if !HasKind(wrapped, KindOverflow) {
		t.Error("HasKind should see through fmt.Errorf wrapping")
	}
	if HasKind(wrapped, KindOutOfBounds) {
		t.Error("HasKind matched wrong kind")
	}
	if HasKind(errors.New("plain"), KindOverflow) {
		t.Error("HasKind matched a plain error")
	}
}

func TestBuilder(t *testing.T) {
	err := New(PhaseBuild, KindFieldMissing).
		Path("header", "id").
		Type("record").
		Offset(7).
		Value(3).
		Detail("field %d missing", 3).
		Cause(errors.New("cause")).
		Build()

	if err.Phase != PhaseBuild {
		t.Errorf("Phase = %v, want %v", err.Phase, PhaseBuild)
	}
	if err.Kind != KindFieldMissing {
		t.Errorf("Kind = %v, want %v", err.Kind, KindFieldMissing)
	}
	if len(err.Path) != 2 || err.Path[0] != "header" || err.Path[1] != "id" {
		t.Errorf("Path = %v, want [header id]", err.Path)
	}
	if err.Type != "record" {
		t.Errorf("Type = %v, want record", err.Type)
	}
	if err.Offset != 7 {
		t.Errorf("Offset = %d, want 7", err.Offset)
	}
	if err.Value != 3 {
		t.Errorf("Value = %v, want 3", err.Value)
	}
	if err.Detail != "field 3 missing" {
		t.Errorf("Detail = %q, want %q", err.Detail, "field 3 missing")
	}
	if err.Cause == nil {
		t.Error("Cause should be set")
	}
}

func TestConvenienceConstructors(t *testing.T) {
	t.Run("OutOfBounds", func(t *testing.T) {
		err := OutOfBounds(PhaseWrap, "string8", 10, 11, 10)
		if err.Kind != KindOutOfBounds || err.Phase != PhaseWrap {
			t.Errorf("unexpected phase/kind: %v/%v", err.Phase, err.Kind)
		}
		if err.Offset != 10 {
			t.Errorf("Offset = %d, want 10", err.Offset)
		}
		if !strings.Contains(err.Error(), "limit 11 exceeds max limit 10") {
			t.Errorf("unexpected message: %s", err.Error())
		}
	})

	t.Run("InvalidDiscriminant", func(t *testing.T) {
		err := InvalidDiscriminant(PhaseDecode, "int", 0x99)
		if err.Kind != KindInvalidVariant {
			t.Errorf("Kind = %v, want %v", err.Kind, KindInvalidVariant)
		}
		if !strings.Contains(err.Error(), "0x99") {
			t.Errorf("message should contain kind: %s", err.Error())
		}
	})

	t.Run("LengthExceeded", func(t *testing.T) {
		err := LengthExceeded("octets8", 300, 254)
		if err.Kind != KindLengthExceeded || err.Phase != PhaseEncode {
			t.Errorf("unexpected phase/kind: %v/%v", err.Phase, err.Kind)
		}
		if err.Value != 300 {
			t.Errorf("Value = %v, want 300", err.Value)
		}
	})

	t.Run("FieldOrder", func(t *testing.T) {
		err := FieldOrder("point", "y", "x not set")
		if err.Kind != KindFieldOrder || len(err.Path) != 1 || err.Path[0] != "y" {
			t.Errorf("unexpected error: %+v", err)
		}
	})

	t.Run("FieldDuplicate", func(t *testing.T) {
		err := FieldDuplicate("point", "x")
		if err.Kind != KindFieldDuplicate {
			t.Errorf("Kind = %v, want %v", err.Kind, KindFieldDuplicate)
		}
	})

	t.Run("FieldMissing", func(t *testing.T) {
		err := FieldMissing(PhaseBuild, "point", "x")
		if err.Kind != KindFieldMissing || err.Phase != PhaseBuild {
			t.Errorf("unexpected phase/kind: %v/%v", err.Phase, err.Kind)
		}
		if !strings.Contains(err.Error(), `"x"`) {
			t.Errorf("message should name field: %s", err.Error())
		}
	})

	t.Run("InvalidUTF8", func(t *testing.T) {
		err := InvalidUTF8(PhaseDecode, "string8", []byte{0xff, 0xfe})
		if err.Kind != KindInvalidUTF8 {
			t.Errorf("Kind = %v, want %v", err.Kind, KindInvalidUTF8)
		}
		if !strings.Contains(err.Error(), "fffe") {
			t.Errorf("message should contain bytes: %s", err.Error())
		}
	})

	t.Run("Wrap", func(t *testing.T) {
		cause := errors.New("root")
		err := Wrap(PhaseStream, KindInvalidData, cause, "bad frame")
		if !errors.Is(err, cause) {
			t.Error("Wrap should preserve cause")
		}
	})
}

func TestWithPath(t *testing.T) {
	inner := InvalidData(PhaseDecode, "bool", 4, "value 7")
	err := WithPath(WithPath(inner, "flag"), "items[2]")

	var e *Error
	if !errors.As(err, &e) {
		t.Fatal("expected *Error")
	}
	if strings.Join(e.Path, ".") != "items[2].flag" {
		t.Errorf("Path = %v, want items[2].flag", e.Path)
	}

	plain := errors.New("plain")
	if WithPath(plain, "x") != plain {
		t.Error("WithPath should return non-Error unchanged")
	}
}
