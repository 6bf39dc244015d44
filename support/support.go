// Package support holds hand-written runtime functions that intrinsics
// call into. A support function is built and registered in a module only
// when an intrinsic first asks for it.
package support

import (
	"github.com/wippyai/wasm-backend/internal/mangling"
	"github.com/wippyai/wasm-backend/ir"
	"github.com/wippyai/wasm-backend/model"
)

// RuntimeClass owns every support method.
const RuntimeClass = "org.teavm.backend.wasm.WasmRuntime"

// Function describes a support function: the method it implements and a
// builder for its detached body.
type Function struct {
	Build  func(name string) *model.Function
	Method ir.MethodReference
}

// Name returns the module-level function name.
func (s Function) Name() string {
	return mangling.Method(s.Method)
}

var (
	// FillZero zeroes count bytes starting at address.
	FillZero = Function{
		Method: ir.NewMethodReference(RuntimeClass, "fillZero", ir.Void, ir.Address, ir.Int),
		Build:  buildFillZero,
	}

	// MoveMemoryBlock copies count bytes from source to target.
	MoveMemoryBlock = Function{
		Method: ir.NewMethodReference(RuntimeClass, "moveMemoryBlock", ir.Void, ir.Address, ir.Address, ir.Int),
		Build:  buildMoveMemoryBlock,
	}
)

// All lists the known support functions.
func All() []Function {
	return []Function{FillZero, MoveMemoryBlock}
}

// fillZero(address, count):
//
//	block $done
//	  loop $next
//	    br_if $done (count <= 0)
//	    store8 address 0
//	    address += 1; count -= 1
//	    br $next
func buildFillZero(name string) *model.Function {
	f := model.NewFunction(name)
	address := f.AddParam(model.I32, "address")
	count := f.AddParam(model.I32, "count")

	done := &model.Block{}
	next := &model.Block{Loop: true}
	next.Body = []model.Expression{
		&model.Branch{
			Target: done,
			Condition: &model.IntBinary{
				Type:   model.Int32,
				Op:     model.IntLeSigned,
				First:  &model.GetLocal{Local: count},
				Second: &model.Int32Constant{Value: 0},
			},
		},
		&model.Store{
			Type:    model.I32,
			Width:   1,
			Address: &model.GetLocal{Local: address},
			Value:   &model.Int32Constant{Value: 0},
		},
		increment(address, 1),
		increment(count, -1),
		&model.Branch{Target: next},
	}
	done.Body = []model.Expression{next}
	f.Body = []model.Expression{done}
	return f
}

func buildMoveMemoryBlock(name string) *model.Function {
	f := model.NewFunction(name)
	source := f.AddParam(model.I32, "source")
	target := f.AddParam(model.I32, "target")
	count := f.AddParam(model.I32, "count")

	f.Body = []model.Expression{
		&model.MemoryCopy{
			Dest:   &model.GetLocal{Local: target},
			Source: &model.GetLocal{Local: source},
			Count:  &model.GetLocal{Local: count},
		},
	}
	return f
}

func increment(l *model.Local, by int32) model.Expression {
	return &model.SetLocal{
		Local: l,
		Value: &model.IntBinary{
			Type:   model.Int32,
			Op:     model.IntAdd,
			First:  &model.GetLocal{Local: l},
			Second: &model.Int32Constant{Value: by},
		},
	}
}
