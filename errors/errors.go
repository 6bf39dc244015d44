package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// Phase indicates where in the backend the error occurred
type Phase string

const (
	PhaseRegister Phase = "register" // module registry mutation
	PhaseDispatch Phase = "dispatch" // intrinsic resolution and generation
	PhaseLower    Phase = "lower"    // IR to expression tree
	PhaseEmit     Phase = "emit"     // module to binary
	PhaseParse    Phase = "parse"    // front-end program files
	PhaseConfig   Phase = "config"   // backend configuration
	PhaseVerify   Phase = "verify"   // emitted binary verification
)

// Kind categorizes the error
type Kind string

const (
	KindDuplicateName         Kind = "duplicate_name"
	KindAlreadyOwned          Kind = "already_owned"
	KindUnrecognizedOperation Kind = "unrecognized_operation"
	KindNotFound              Kind = "not_found"
	KindInvalidInput          Kind = "invalid_input"
	KindOverflow              Kind = "overflow"
	KindUnsupported           Kind = "unsupported"
	KindSealed                Kind = "sealed"
	KindInvalidData           Kind = "invalid_data"
)

// Sentinels for errors.Is. Matching compares Phase and Kind only.
var (
	ErrDuplicateName         = &Error{Phase: PhaseRegister, Kind: KindDuplicateName}
	ErrAlreadyOwned          = &Error{Phase: PhaseRegister, Kind: KindAlreadyOwned}
	ErrUnrecognizedOperation = &Error{Phase: PhaseDispatch, Kind: KindUnrecognizedOperation}
	ErrSealed                = &Error{Phase: PhaseDispatch, Kind: KindSealed}
)

// Error is the structured error type used throughout the backend
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Entity string // "function", "custom section", "tag", "method"
	Name   string
	Detail string
	Path   []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.Entity != "" || e.Name != "" {
		b.WriteString(": ")
		switch {
		case e.Entity != "" && e.Name != "":
			b.WriteString(e.Entity)
			b.WriteByte(' ')
			b.WriteString(e.Name)
		case e.Entity != "":
			b.WriteString(e.Entity)
		default:
			b.WriteString(e.Name)
		}
	}

	if e.Detail != "" {
		if e.Entity != "" || e.Name != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
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

// Is forwards to the standard library so callers need a single import.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As forwards to the standard library so callers need a single import.
func As(err error, target any) bool {
	return stderrors.As(err, target)
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

// Path sets the location path (class, method, statement)
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Entity sets the entity kind and name the error is about
func (b *Builder) Entity(entity, name string) *Builder {
	b.err.Entity = entity
	b.err.Name = name
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

// Registry constructors

// DuplicateName creates an error for a name already taken in a module
func DuplicateName(entity, name string) *Error {
	return &Error{
		Phase:  PhaseRegister,
		Kind:   KindDuplicateName,
		Entity: entity,
		Name:   name,
		Detail: "already defined in this module",
	}
}

// AlreadyOwned creates an error for an entity registered in some module
func AlreadyOwned(entity, name string) *Error {
	return &Error{
		Phase:  PhaseRegister,
		Kind:   KindAlreadyOwned,
		Entity: entity,
		Name:   name,
		Detail: "already registered in a module",
	}
}

// Dispatch constructors

// UnrecognizedOperation creates an error for an intrinsic asked to
// generate code for a member it does not claim.
func UnrecognizedOperation(intrinsic, method string) *Error {
	return &Error{
		Phase:  PhaseDispatch,
		Kind:   KindUnrecognizedOperation,
		Entity: "method",
		Name:   method,
		Detail: fmt.Sprintf("not handled by intrinsic %q", intrinsic),
	}
}

// Sealed creates an error for a registry mutation after lowering started
func Sealed(name string) *Error {
	return &Error{
		Phase:  PhaseDispatch,
		Kind:   KindSealed,
		Entity: "intrinsic",
		Name:   name,
		Detail: "registry is sealed",
	}
}

// General constructors

// NotFound creates a not-found error
func NotFound(phase Phase, entity, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Entity: entity,
		Name:   name,
		Detail: "not found",
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

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// Overflow creates an overflow error
func Overflow(phase Phase, value any, target string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOverflow,
		Detail: fmt.Sprintf("value %v overflows %s", value, target),
		Value:  value,
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

// ParseFailed creates a front-end parsing error
func ParseFailed(what string, cause error) *Error {
	return &Error{
		Phase:  PhaseParse,
		Kind:   KindInvalidData,
		Detail: fmt.Sprintf("parse %s", what),
		Cause:  cause,
	}
}
