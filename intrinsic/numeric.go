package intrinsic

import (
	"github.com/wippyai/wasm-backend/errors"
	"github.com/wippyai/wasm-backend/ir"
	"github.com/wippyai/wasm-backend/model"
)

type numericGen func(args []model.Expression) model.Expression

func intUnary(t model.IntType, op model.IntUnaryOp) numericGen {
	return func(args []model.Expression) model.Expression {
		return &model.IntUnary{Type: t, Op: op, Operand: args[0]}
	}
}

// long-to-int helpers: Java's Long.bitCount and friends return int.
func longUnaryToInt(op model.IntUnaryOp) numericGen {
	return func(args []model.Expression) model.Expression {
		return &model.Conversion{
			From:    model.I64,
			To:      model.I32,
			Operand: &model.IntUnary{Type: model.Int64, Op: op, Operand: args[0]},
		}
	}
}

func reinterpret(from, to model.ValType) numericGen {
	return func(args []model.Expression) model.Expression {
		return &model.Conversion{From: from, To: to, Reinterpret: true, Operand: args[0]}
	}
}

func floatUnary(t model.FloatType, op model.FloatUnaryOp) numericGen {
	return func(args []model.Expression) model.Expression {
		return &model.FloatUnary{Type: t, Op: op, Operand: args[0]}
	}
}

func floatBinary(t model.FloatType, op model.FloatBinaryOp) numericGen {
	return func(args []model.Expression) model.Expression {
		return &model.FloatBinary{Type: t, Op: op, First: args[0], Second: args[1]}
	}
}

func ref(class, name string, result ir.ValueType, params ...ir.ValueType) string {
	return ir.NewMethodReference(class, name, result, params...).String()
}

// numericTable is keyed by the full reference so that overloads such as
// Math.abs(I)I are left to ordinary lowering.
var numericTable = map[string]numericGen{
	ref("java.lang.Integer", "numberOfLeadingZeros", ir.Int, ir.Int):   intUnary(model.Int32, model.IntClz),
	ref("java.lang.Integer", "numberOfTrailingZeros", ir.Int, ir.Int):  intUnary(model.Int32, model.IntCtz),
	ref("java.lang.Integer", "bitCount", ir.Int, ir.Int):               intUnary(model.Int32, model.IntPopcnt),
	ref("java.lang.Long", "numberOfLeadingZeros", ir.Int, ir.Long):     longUnaryToInt(model.IntClz),
	ref("java.lang.Long", "numberOfTrailingZeros", ir.Int, ir.Long):    longUnaryToInt(model.IntCtz),
	ref("java.lang.Long", "bitCount", ir.Int, ir.Long):                 longUnaryToInt(model.IntPopcnt),
	ref("java.lang.Float", "floatToRawIntBits", ir.Int, ir.Float):      reinterpret(model.F32, model.I32),
	ref("java.lang.Float", "intBitsToFloat", ir.Float, ir.Int):         reinterpret(model.I32, model.F32),
	ref("java.lang.Double", "doubleToRawLongBits", ir.Long, ir.Double): reinterpret(model.F64, model.I64),
	ref("java.lang.Double", "longBitsToDouble", ir.Double, ir.Long):    reinterpret(model.I64, model.F64),
	ref("java.lang.Math", "sqrt", ir.Double, ir.Double):                floatUnary(model.Float64, model.FloatSqrt),
	ref("java.lang.Math", "abs", ir.Double, ir.Double):                 floatUnary(model.Float64, model.FloatAbs),
	ref("java.lang.Math", "floor", ir.Double, ir.Double):               floatUnary(model.Float64, model.FloatFloor),
	ref("java.lang.Math", "ceil", ir.Double, ir.Double):                floatUnary(model.Float64, model.FloatCeil),
	ref("java.lang.Math", "min", ir.Double, ir.Double, ir.Double):      floatBinary(model.Float64, model.FloatMin),
	ref("java.lang.Math", "max", ir.Double, ir.Double, ir.Double):      floatBinary(model.Float64, model.FloatMax),
}

// Numeric maps numeric library methods with a direct instruction
// equivalent (bit counting, raw float bits, basic Math) to that
// instruction.
type Numeric struct{}

// Recognizes implements Intrinsic.
func (Numeric) Recognizes(m ir.MethodReference) bool {
	_, ok := numericTable[m.String()]
	return ok
}

// Generate implements Intrinsic.
func (Numeric) Generate(inv *ir.Invocation, ctx Context) (model.Expression, error) {
	gen, ok := numericTable[inv.Method.String()]
	if !ok {
		return nil, errors.UnrecognizedOperation(NameNumeric, inv.Method.String())
	}
	if len(inv.Arguments) != len(inv.Method.Params) {
		return nil, arity(inv, len(inv.Method.Params))
	}
	args, err := ctx.LowerArguments(inv)
	if err != nil {
		return nil, err
	}
	return gen(args), nil
}
