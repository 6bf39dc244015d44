package emit

import (
	"github.com/wippyai/wasm-backend/model"
	"github.com/wippyai/wasm-backend/wasm"
)

var i32Binary = [...]byte{
	model.IntAdd:         wasm.OpI32Add,
	model.IntSub:         wasm.OpI32Sub,
	model.IntMul:         wasm.OpI32Mul,
	model.IntDivSigned:   wasm.OpI32DivS,
	model.IntDivUnsigned: wasm.OpI32DivU,
	model.IntRemSigned:   wasm.OpI32RemS,
	model.IntRemUnsigned: wasm.OpI32RemU,
	model.IntAnd:         wasm.OpI32And,
	model.IntOr:          wasm.OpI32Or,
	model.IntXor:         wasm.OpI32Xor,
	model.IntShl:         wasm.OpI32Shl,
	model.IntShrSigned:   wasm.OpI32ShrS,
	model.IntShrUnsigned: wasm.OpI32ShrU,
	model.IntRotl:        wasm.OpI32Rotl,
	model.IntRotr:        wasm.OpI32Rotr,
	model.IntEq:          wasm.OpI32Eq,
	model.IntNe:          wasm.OpI32Ne,
	model.IntLtSigned:    wasm.OpI32LtS,
	model.IntLtUnsigned:  wasm.OpI32LtU,
	model.IntGtSigned:    wasm.OpI32GtS,
	model.IntGtUnsigned:  wasm.OpI32GtU,
	model.IntLeSigned:    wasm.OpI32LeS,
	model.IntLeUnsigned:  wasm.OpI32LeU,
	model.IntGeSigned:    wasm.OpI32GeS,
	model.IntGeUnsigned:  wasm.OpI32GeU,
}

var i64Binary = [...]byte{
	model.IntAdd:         wasm.OpI64Add,
	model.IntSub:         wasm.OpI64Sub,
	model.IntMul:         wasm.OpI64Mul,
	model.IntDivSigned:   wasm.OpI64DivS,
	model.IntDivUnsigned: wasm.OpI64DivU,
	model.IntRemSigned:   wasm.OpI64RemS,
	model.IntRemUnsigned: wasm.OpI64RemU,
	model.IntAnd:         wasm.OpI64And,
	model.IntOr:          wasm.OpI64Or,
	model.IntXor:         wasm.OpI64Xor,
	model.IntShl:         wasm.OpI64Shl,
	model.IntShrSigned:   wasm.OpI64ShrS,
	model.IntShrUnsigned: wasm.OpI64ShrU,
	model.IntRotl:        wasm.OpI64Rotl,
	model.IntRotr:        wasm.OpI64Rotr,
	model.IntEq:          wasm.OpI64Eq,
	model.IntNe:          wasm.OpI64Ne,
	model.IntLtSigned:    wasm.OpI64LtS,
	model.IntLtUnsigned:  wasm.OpI64LtU,
	model.IntGtSigned:    wasm.OpI64GtS,
	model.IntGtUnsigned:  wasm.OpI64GtU,
	model.IntLeSigned:    wasm.OpI64LeS,
	model.IntLeUnsigned:  wasm.OpI64LeU,
	model.IntGeSigned:    wasm.OpI64GeS,
	model.IntGeUnsigned:  wasm.OpI64GeU,
}

var f32Binary = [...]byte{
	model.FloatAdd:      wasm.OpF32Add,
	model.FloatSub:      wasm.OpF32Sub,
	model.FloatMul:      wasm.OpF32Mul,
	model.FloatDiv:      wasm.OpF32Div,
	model.FloatMin:      wasm.OpF32Min,
	model.FloatMax:      wasm.OpF32Max,
	model.FloatCopysign: wasm.OpF32Copysign,
	model.FloatEq:       wasm.OpF32Eq,
	model.FloatNe:       wasm.OpF32Ne,
	model.FloatLt:       wasm.OpF32Lt,
	model.FloatGt:       wasm.OpF32Gt,
	model.FloatLe:       wasm.OpF32Le,
	model.FloatGe:       wasm.OpF32Ge,
}

var f64Binary = [...]byte{
	model.FloatAdd:      wasm.OpF64Add,
	model.FloatSub:      wasm.OpF64Sub,
	model.FloatMul:      wasm.OpF64Mul,
	model.FloatDiv:      wasm.OpF64Div,
	model.FloatMin:      wasm.OpF64Min,
	model.FloatMax:      wasm.OpF64Max,
	model.FloatCopysign: wasm.OpF64Copysign,
	model.FloatEq:       wasm.OpF64Eq,
	model.FloatNe:       wasm.OpF64Ne,
	model.FloatLt:       wasm.OpF64Lt,
	model.FloatGt:       wasm.OpF64Gt,
	model.FloatLe:       wasm.OpF64Le,
	model.FloatGe:       wasm.OpF64Ge,
}

var i32Unary = [...]byte{
	model.IntClz:    wasm.OpI32Clz,
	model.IntCtz:    wasm.OpI32Ctz,
	model.IntPopcnt: wasm.OpI32Popcnt,
	model.IntEqz:    wasm.OpI32Eqz,
}

var i64Unary = [...]byte{
	model.IntClz:    wasm.OpI64Clz,
	model.IntCtz:    wasm.OpI64Ctz,
	model.IntPopcnt: wasm.OpI64Popcnt,
	model.IntEqz:    wasm.OpI64Eqz,
}

var f32Unary = [...]byte{
	model.FloatAbs:     wasm.OpF32Abs,
	model.FloatNeg:     wasm.OpF32Neg,
	model.FloatSqrt:    wasm.OpF32Sqrt,
	model.FloatCeil:    wasm.OpF32Ceil,
	model.FloatFloor:   wasm.OpF32Floor,
	model.FloatTrunc:   wasm.OpF32Trunc,
	model.FloatNearest: wasm.OpF32Nearest,
}

var f64Unary = [...]byte{
	model.FloatAbs:     wasm.OpF64Abs,
	model.FloatNeg:     wasm.OpF64Neg,
	model.FloatSqrt:    wasm.OpF64Sqrt,
	model.FloatCeil:    wasm.OpF64Ceil,
	model.FloatFloor:   wasm.OpF64Floor,
	model.FloatTrunc:   wasm.OpF64Trunc,
	model.FloatNearest: wasm.OpF64Nearest,
}

type conversion struct {
	from, to    model.ValType
	signed      bool
	reinterpret bool
}

// Reinterpretations are listed unsigned; the Signed flag is ignored for them.
var conversions = map[conversion]byte{
	{model.I32, model.I64, true, false}:  wasm.OpI64ExtendI32S,
	{model.I32, model.I64, false, false}: wasm.OpI64ExtendI32U,
	{model.I64, model.I32, true, false}:  wasm.OpI32WrapI64,
	{model.I64, model.I32, false, false}: wasm.OpI32WrapI64,
	{model.I32, model.F32, true, false}:  wasm.OpF32ConvertI32S,
	{model.I32, model.F32, false, false}: wasm.OpF32ConvertI32U,
	{model.I32, model.F64, true, false}:  wasm.OpF64ConvertI32S,
	{model.I32, model.F64, false, false}: wasm.OpF64ConvertI32U,
	{model.I64, model.F32, true, false}:  wasm.OpF32ConvertI64S,
	{model.I64, model.F32, false, false}: wasm.OpF32ConvertI64U,
	{model.I64, model.F64, true, false}:  wasm.OpF64ConvertI64S,
	{model.I64, model.F64, false, false}: wasm.OpF64ConvertI64U,
	{model.F32, model.I32, true, false}:  wasm.OpI32TruncF32S,
	{model.F32, model.I32, false, false}: wasm.OpI32TruncF32U,
	{model.F32, model.I64, true, false}:  wasm.OpI64TruncF32S,
	{model.F32, model.I64, false, false}: wasm.OpI64TruncF32U,
	{model.F64, model.I32, true, false}:  wasm.OpI32TruncF64S,
	{model.F64, model.I32, false, false}: wasm.OpI32TruncF64U,
	{model.F64, model.I64, true, false}:  wasm.OpI64TruncF64S,
	{model.F64, model.I64, false, false}: wasm.OpI64TruncF64U,
	{model.F32, model.F64, true, false}:  wasm.OpF64PromoteF32,
	{model.F32, model.F64, false, false}: wasm.OpF64PromoteF32,
	{model.F64, model.F32, true, false}:  wasm.OpF32DemoteF64,
	{model.F64, model.F32, false, false}: wasm.OpF32DemoteF64,
	{model.F32, model.I32, false, true}:  wasm.OpI32ReinterpretF32,
	{model.I32, model.F32, false, true}:  wasm.OpF32ReinterpretI32,
	{model.F64, model.I64, false, true}:  wasm.OpI64ReinterpretF64,
	{model.I64, model.F64, false, true}:  wasm.OpF64ReinterpretI64,
}
