package intrinsic

import (
	"github.com/wippyai/wasm-backend/ir"
	"github.com/wippyai/wasm-backend/model"
	"github.com/wippyai/wasm-backend/support"
)

// Intrinsic replaces ordinary lowering for the calls it recognizes.
//
// Implementations should be stateless or hold only configuration; one
// intrinsic may serve many sessions in parallel.
type Intrinsic interface {
	// Recognizes reports whether calls to method are handled here. It must
	// depend only on the reference, never on argument values.
	Recognizes(method ir.MethodReference) bool

	// Generate builds the expression replacing inv. It returns an
	// UnrecognizedOperation error for members it does not handle.
	Generate(inv *ir.Invocation, ctx Context) (model.Expression, error)
}

// Context is the lowering session as seen by an intrinsic.
type Context interface {
	// Lower converts an operand with the session's ordinary expression
	// lowering, including nested intrinsic dispatch.
	Lower(expr ir.Expr) (model.Expression, error)

	// LowerArguments lowers every argument of inv in order.
	LowerArguments(inv *ir.Invocation) ([]model.Expression, error)

	// Module returns the module under construction.
	Module() *model.Module

	// SupportFunction returns the module's copy of fn, building and
	// registering it on first use.
	SupportFunction(fn support.Function) (*model.Function, error)
}

// Func adapts a recognizer and a generator function into an Intrinsic.
//
// Example:
//
//	r.Register("size", intrinsic.Func{
//		Match: func(m ir.MethodReference) bool { return m.Is("app.Memory", "size") },
//		Gen: func(inv *ir.Invocation, ctx intrinsic.Context) (model.Expression, error) {
//			return &model.MemorySize{}, nil
//		},
//	})
type Func struct {
	Match func(ir.MethodReference) bool
	Gen   func(*ir.Invocation, Context) (model.Expression, error)
}

// Recognizes implements Intrinsic.
func (f Func) Recognizes(method ir.MethodReference) bool {
	return f.Match(method)
}

// Generate implements Intrinsic.
func (f Func) Generate(inv *ir.Invocation, ctx Context) (model.Expression, error) {
	return f.Gen(inv, ctx)
}
