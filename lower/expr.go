package lower

import (
	"go.uber.org/zap"

	"github.com/wippyai/wasm-backend/errors"
	"github.com/wippyai/wasm-backend/ir"
	"github.com/wippyai/wasm-backend/model"
)

func (c *funcContext) expr(e ir.Expr) (model.Expression, error) {
	switch n := e.(type) {
	case *ir.Constant:
		return constant(n)
	case *ir.Variable:
		l, err := c.local(n.Index)
		if err != nil {
			return nil, err
		}
		return &model.GetLocal{Local: l}, nil
	case *ir.Binary:
		return c.binary(n)
	case *ir.Invocation:
		return c.invocation(n)
	case nil:
		return nil, errors.InvalidInput(errors.PhaseLower, "missing expression")
	default:
		return nil, errors.Unsupported(errors.PhaseLower, "expression")
	}
}

func constant(k *ir.Constant) (model.Expression, error) {
	switch v := k.Value.(type) {
	case int32:
		switch valType(k.ValueType) {
		case model.I64:
			return &model.Int64Constant{Value: int64(v)}, nil
		case model.F32:
			return &model.Float32Constant{Value: float32(v)}, nil
		case model.F64:
			return &model.Float64Constant{Value: float64(v)}, nil
		}
		return &model.Int32Constant{Value: v}, nil
	case int64:
		if valType(k.ValueType) == model.I32 {
			return &model.Int32Constant{Value: int32(v)}, nil
		}
		return &model.Int64Constant{Value: v}, nil
	case float32:
		return &model.Float32Constant{Value: v}, nil
	case float64:
		if k.ValueType == ir.Float {
			return &model.Float32Constant{Value: float32(v)}, nil
		}
		return &model.Float64Constant{Value: v}, nil
	case bool:
		if v {
			return &model.Int32Constant{Value: 1}, nil
		}
		return &model.Int32Constant{Value: 0}, nil
	default:
		return nil, errors.New(errors.PhaseLower, errors.KindInvalidInput).
			Value(k.Value).
			Detail("unsupported constant of type %s", k.ValueType).
			Build()
	}
}

var intOps = map[ir.BinaryOp]model.IntBinaryOp{
	ir.Add:                model.IntAdd,
	ir.Subtract:           model.IntSub,
	ir.Multiply:           model.IntMul,
	ir.Divide:             model.IntDivSigned,
	ir.Modulo:             model.IntRemSigned,
	ir.BitAnd:             model.IntAnd,
	ir.BitOr:              model.IntOr,
	ir.BitXor:             model.IntXor,
	ir.ShiftLeft:          model.IntShl,
	ir.ShiftRight:         model.IntShrSigned,
	ir.ShiftRightUnsigned: model.IntShrUnsigned,
	ir.Equal:              model.IntEq,
	ir.NotEqual:           model.IntNe,
	ir.Less:               model.IntLtSigned,
	ir.LessOrEqual:        model.IntLeSigned,
	ir.Greater:            model.IntGtSigned,
	ir.GreaterOrEqual:     model.IntGeSigned,
}

var floatOps = map[ir.BinaryOp]model.FloatBinaryOp{
	ir.Add:            model.FloatAdd,
	ir.Subtract:       model.FloatSub,
	ir.Multiply:       model.FloatMul,
	ir.Divide:         model.FloatDiv,
	ir.Equal:          model.FloatEq,
	ir.NotEqual:       model.FloatNe,
	ir.Less:           model.FloatLt,
	ir.LessOrEqual:    model.FloatLe,
	ir.Greater:        model.FloatGt,
	ir.GreaterOrEqual: model.FloatGe,
}

func (c *funcContext) binary(b *ir.Binary) (model.Expression, error) {
	t := operandType(b)
	left, err := c.typed(b.Left, t)
	if err != nil {
		return nil, err
	}
	right, err := c.typed(b.Right, t)
	if err != nil {
		return nil, err
	}

	switch valType(t) {
	case model.I32, model.I64:
		op, ok := intOps[b.Op]
		if !ok {
			break
		}
		it := model.Int32
		if valType(t) == model.I64 {
			it = model.Int64
		}
		// Shift counts are always of the shifted type.
		return &model.IntBinary{First: left, Second: right, Type: it, Op: op}, nil
	case model.F32, model.F64:
		op, ok := floatOps[b.Op]
		if !ok {
			break
		}
		ft := model.Float32
		if valType(t) == model.F64 {
			ft = model.Float64
		}
		return &model.FloatBinary{First: left, Second: right, Type: ft, Op: op}, nil
	}
	return nil, errors.New(errors.PhaseLower, errors.KindUnsupported).
		Entity("method", c.method.Reference.String()).
		Detail("operator %d on %s", b.Op, t).
		Build()
}

func (c *funcContext) invocation(inv *ir.Invocation) (model.Expression, error) {
	if in, name, ok := c.gen.registry.ResolveNamed(inv.Method); ok {
		c.gen.logger.Debug("intrinsic call",
			zap.String("intrinsic", name),
			zap.Stringer("method", inv.Method))
		return in.Generate(inv, c)
	}

	callee, err := c.gen.function(inv.Method)
	if err != nil {
		return nil, err
	}
	args, err := c.LowerArguments(inv)
	if err != nil {
		return nil, err
	}

	if inv.Kind == ir.Indirect {
		slot := c.gen.tableSlot(callee)
		return &model.CallIndirect{
			Selector:  &model.Int32Constant{Value: slot},
			Arguments: args,
			Signature: callee.Signature(),
		}, nil
	}
	return &model.Call{Function: callee, Arguments: args}, nil
}
