// Package intrinsic lets selected method calls bypass ordinary call
// lowering and emit hand-written instruction sequences instead.
//
// An Intrinsic has two halves. Recognizes is a cheap static test on the
// call target, run for every call site. Generate runs only for claimed
// calls and builds the replacement expression, lowering operands through
// the Context it is handed:
//
//	type fillZero struct{}
//
//	func (fillZero) Recognizes(m ir.MethodReference) bool {
//		return m.Is("org.teavm.runtime.Allocator", "fillZero")
//	}
//
//	func (fillZero) Generate(inv *ir.Invocation, ctx intrinsic.Context) (model.Expression, error) {
//		fn, err := ctx.SupportFunction(support.FillZero)
//		...
//	}
//
// Intrinsics are registered into a Registry before lowering starts. The
// lowering session seals the registry; later registrations fail.
package intrinsic
