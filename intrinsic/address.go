package intrinsic

import (
	"github.com/wippyai/wasm-backend/errors"
	"github.com/wippyai/wasm-backend/ir"
	"github.com/wippyai/wasm-backend/model"
)

// AddressClass is the raw-pointer class handled by Address.
const AddressClass = "org.teavm.interop.Address"

type memoryAccess struct {
	typ    model.ValType
	width  int
	signed bool
}

var addressLoads = map[string]memoryAccess{
	"getByte":   {typ: model.I32, width: 1, signed: true},
	"getShort":  {typ: model.I32, width: 2, signed: true},
	"getChar":   {typ: model.I32, width: 2},
	"getInt":    {typ: model.I32},
	"getLong":   {typ: model.I64},
	"getFloat":  {typ: model.F32},
	"getDouble": {typ: model.F64},
}

var addressStores = map[string]memoryAccess{
	"putByte":   {typ: model.I32, width: 1},
	"putShort":  {typ: model.I32, width: 2},
	"putChar":   {typ: model.I32, width: 2},
	"putInt":    {typ: model.I32},
	"putLong":   {typ: model.I64},
	"putFloat":  {typ: model.F32},
	"putDouble": {typ: model.F64},
}

// Address lowers pointer arithmetic and raw memory access on Address
// values. Addresses are i32 offsets into linear memory; the first
// argument of every member is the address operated on.
type Address struct{}

// Recognizes implements Intrinsic.
func (Address) Recognizes(m ir.MethodReference) bool {
	if m.ClassName != AddressClass {
		return false
	}
	if _, ok := addressLoads[m.Name]; ok {
		return true
	}
	if _, ok := addressStores[m.Name]; ok {
		return true
	}
	switch m.Name {
	case "add", "diff", "toInt", "fromInt", "toLong", "isLessThan":
		return true
	}
	return false
}

// Generate implements Intrinsic.
func (Address) Generate(inv *ir.Invocation, ctx Context) (model.Expression, error) {
	name := inv.Method.Name
	load, isLoad := addressLoads[name]
	store, isStore := addressStores[name]
	switch name {
	case "add", "diff", "toInt", "fromInt", "toLong", "isLessThan":
	default:
		if !isLoad && !isStore {
			return nil, errors.UnrecognizedOperation(NameAddress, inv.Method.String())
		}
	}

	want := 2
	switch {
	case isLoad, name == "toInt", name == "fromInt", name == "toLong":
		want = 1
	}
	if len(inv.Arguments) != want {
		return nil, arity(inv, want)
	}
	args, err := ctx.LowerArguments(inv)
	if err != nil {
		return nil, err
	}

	switch {
	case isLoad:
		return &model.Load{Type: load.typ, Width: load.width, Signed: load.signed, Address: args[0]}, nil
	case isStore:
		return &model.Store{Type: store.typ, Width: store.width, Address: args[0], Value: args[1]}, nil
	}

	switch name {
	case "toInt", "fromInt":
		return args[0], nil
	case "toLong":
		return &model.Conversion{From: model.I32, To: model.I64, Operand: args[0]}, nil
	case "add":
		return i32Binary(model.IntAdd, args[0], args[1]), nil
	case "diff":
		return i32Binary(model.IntSub, args[0], args[1]), nil
	default: // isLessThan
		return i32Binary(model.IntLtUnsigned, args[0], args[1]), nil
	}
}

func i32Binary(op model.IntBinaryOp, a, b model.Expression) *model.IntBinary {
	return &model.IntBinary{Type: model.Int32, Op: op, First: a, Second: b}
}

func arity(inv *ir.Invocation, want int) error {
	return errors.New(errors.PhaseDispatch, errors.KindInvalidInput).
		Entity("method", inv.Method.String()).
		Value(len(inv.Arguments)).
		Detail("expected %d arguments, got %d", want, len(inv.Arguments)).
		Build()
}
