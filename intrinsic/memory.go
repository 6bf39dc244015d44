package intrinsic

import (
	"github.com/wippyai/wasm-backend/errors"
	"github.com/wippyai/wasm-backend/ir"
	"github.com/wippyai/wasm-backend/model"
)

// MemoryClass exposes linear-memory size management.
const MemoryClass = "org.teavm.runtime.Memory"

// Memory maps Memory.pageCount() to memory.size and Memory.grow(pages)
// to memory.grow.
type Memory struct{}

// Recognizes implements Intrinsic.
func (Memory) Recognizes(m ir.MethodReference) bool {
	return m.ClassName == MemoryClass && (m.Name == "pageCount" || m.Name == "grow")
}

// Generate implements Intrinsic.
func (Memory) Generate(inv *ir.Invocation, ctx Context) (model.Expression, error) {
	switch inv.Method.Name {
	case "pageCount":
		if len(inv.Arguments) != 0 {
			return nil, arity(inv, 0)
		}
		return &model.MemorySize{}, nil
	case "grow":
		if len(inv.Arguments) != 1 {
			return nil, arity(inv, 1)
		}
		if len(inv.Method.Params) != 1 || inv.Method.Params[0] != ir.Int {
			return nil, errors.New(errors.PhaseDispatch, errors.KindInvalidInput).
				Entity("method", inv.Method.String()).
				Detail("page delta must be an int").
				Build()
		}
		args, err := ctx.LowerArguments(inv)
		if err != nil {
			return nil, err
		}
		return &model.MemoryGrow{Delta: args[0]}, nil
	default:
		return nil, errors.UnrecognizedOperation(NameMemory, inv.Method.String())
	}
}
