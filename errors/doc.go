// Package errors provides structured error types for the wasm backend.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type carries the entity it is about, a location path, and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseLower, errors.KindInvalidInput).
//		Path("app.Main", "run").
//		Entity("variable", "7").
//		Detail("variable index out of range").
//		Build()
//
// Or use convenience constructors for the registry and dispatch taxonomy:
//
//	err := errors.DuplicateName("function", "foo")
//	err := errors.AlreadyOwned("tag", "#0")
//	err := errors.UnrecognizedOperation("allocator", "Allocator.free(A)V")
//
// All errors implement the standard error interface and support errors.Is/As.
// Matching with errors.Is compares Phase and Kind, so the package sentinels
// work against any error of the same category:
//
//	if errors.Is(err, errors.ErrDuplicateName) { ... }
package errors
