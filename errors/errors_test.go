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
				Phase:  PhaseLower,
				Kind:   KindInvalidInput,
				Path:   []string{"app.Main", "run"},
				Entity: "variable",
				Name:   "7",
				Detail: "index out of range",
			},
			contains: []string{"[lower]", "invalid_input", "app.Main.run", "variable 7", " - index out of range"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase: PhaseEmit,
				Kind:  KindOverflow,
			},
			contains: []string{"[emit]", "overflow"},
		},
		{
			name: "detail without entity",
			err: &Error{
				Phase:  PhaseConfig,
				Kind:   KindInvalidInput,
				Detail: "max_pages below min_pages",
			},
			contains: []string{"[config]", "invalid_input: max_pages below min_pages"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseParse,
				Kind:   KindInvalidData,
				Detail: "parse program",
				Cause:  errors.New("unexpected token"),
			},
			contains: []string{"[parse]", "invalid_data", "parse program", "caused by", "unexpected token"},
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
	err := Wrap(PhaseVerify, KindInvalidData, cause, "compile module")

	if !errors.Is(err.Unwrap(), cause) {
		t.Error("Unwrap did not return cause")
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is did not walk to cause")
	}
}

func TestError_IsSentinels(t *testing.T) {
	tests := []struct {
		err    error
		target *Error
		want   bool
	}{
		{DuplicateName("function", "foo"), ErrDuplicateName, true},
		{DuplicateName("custom section", "names"), ErrDuplicateName, true},
		{DuplicateName("function", "foo"), ErrAlreadyOwned, false},
		{AlreadyOwned("tag", "#0"), ErrAlreadyOwned, true},
		{UnrecognizedOperation("allocator", "Allocator.free(A)V"), ErrUnrecognizedOperation, true},
		{Sealed("numeric"), ErrSealed, true},
		{NotFound(PhaseLower, "method", "x"), ErrDuplicateName, false},
	}

	for i, tt := range tests {
		if got := Is(tt.err, tt.target); got != tt.want {
			t.Errorf("case %d: Is(%v, %v) = %v, want %v", i, tt.err, tt.target, got, tt.want)
		}
	}
}

func TestError_IsThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("compile app: %w", AlreadyOwned("function", "f"))
	if !Is(wrapped, ErrAlreadyOwned) {
		t.Error("sentinel should match through fmt.Errorf wrapping")
	}

	var e *Error
	if !As(wrapped, &e) {
		t.Fatal("As should find *Error")
	}
	if e.Name != "f" || e.Entity != "function" {
		t.Errorf("unexpected entity %q %q", e.Entity, e.Name)
	}
}

func TestBuilder(t *testing.T) {
	err := New(PhaseLower, KindNotFound).
		Path("app.Main", "run").
		Entity("method", "app.Util.helper()V").
		Value(3).
		Detail("no method with %d arguments", 3).
		Cause(errors.New("inner")).
		Build()

	if err.Phase != PhaseLower || err.Kind != KindNotFound {
		t.Errorf("unexpected category %s/%s", err.Phase, err.Kind)
	}
	if len(err.Path) != 2 || err.Path[1] != "run" {
		t.Errorf("Path = %v", err.Path)
	}
	if err.Value != 3 {
		t.Errorf("Value = %v", err.Value)
	}
	if err.Detail != "no method with 3 arguments" {
		t.Errorf("Detail = %q", err.Detail)
	}
	if err.Cause == nil {
		t.Error("Cause not set")
	}
}

func TestBuilder_DetailPercentArgument(t *testing.T) {
	err := New(PhaseEmit, KindUnsupported).Detail("%s", "100% literal").Build()
	if err.Detail != "100% literal" {
		t.Errorf("Detail = %q, want argument kept verbatim", err.Detail)
	}
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		err   *Error
		phase Phase
		kind  Kind
	}{
		{DuplicateName("function", "a"), PhaseRegister, KindDuplicateName},
		{AlreadyOwned("function", "a"), PhaseRegister, KindAlreadyOwned},
		{UnrecognizedOperation("x", "y"), PhaseDispatch, KindUnrecognizedOperation},
		{Sealed("x"), PhaseDispatch, KindSealed},
		{NotFound(PhaseLower, "method", "m"), PhaseLower, KindNotFound},
		{InvalidInput(PhaseConfig, "bad"), PhaseConfig, KindInvalidInput},
		{Unsupported(PhaseEmit, "tags in name section"), PhaseEmit, KindUnsupported},
		{Overflow(PhaseRegister, 1<<40, "uint32"), PhaseRegister, KindOverflow},
		{ParseFailed("program", errors.New("x")), PhaseParse, KindInvalidData},
	}

	for _, tt := range tests {
		if tt.err.Phase != tt.phase || tt.err.Kind != tt.kind {
			t.Errorf("%v: got %s/%s, want %s/%s", tt.err, tt.err.Phase, tt.err.Kind, tt.phase, tt.kind)
		}
	}
}
