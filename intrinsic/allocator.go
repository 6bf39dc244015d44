package intrinsic

import (
	"github.com/wippyai/wasm-backend/errors"
	"github.com/wippyai/wasm-backend/ir"
	"github.com/wippyai/wasm-backend/model"
	"github.com/wippyai/wasm-backend/support"
)

// AllocatorClass is the runtime class whose memory helpers Allocator claims.
const AllocatorClass = "org.teavm.runtime.Allocator"

// Allocator turns Allocator.fillZero and Allocator.moveMemoryBlock into
// calls of the matching support functions.
type Allocator struct{}

// Recognizes implements Intrinsic.
func (Allocator) Recognizes(m ir.MethodReference) bool {
	if m.ClassName != AllocatorClass {
		return false
	}
	switch m.Name {
	case "fillZero", "moveMemoryBlock":
		return true
	}
	return false
}

// Generate implements Intrinsic.
func (Allocator) Generate(inv *ir.Invocation, ctx Context) (model.Expression, error) {
	var target support.Function
	switch inv.Method.Name {
	case "fillZero":
		target = support.FillZero
	case "moveMemoryBlock":
		target = support.MoveMemoryBlock
	default:
		return nil, errors.UnrecognizedOperation(NameAllocator, inv.Method.String())
	}

	callee, err := ctx.SupportFunction(target)
	if err != nil {
		return nil, err
	}
	args, err := ctx.LowerArguments(inv)
	if err != nil {
		return nil, err
	}
	return model.NewCall(callee, args...), nil
}
