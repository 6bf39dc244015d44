package lower

import (
	"github.com/wippyai/wasm-backend/errors"
	"github.com/wippyai/wasm-backend/ir"
	"github.com/wippyai/wasm-backend/model"
)

// typed lowers e and converts the result to want.
func (c *funcContext) typed(e ir.Expr, want ir.ValueType) (model.Expression, error) {
	out, err := c.expr(e)
	if err != nil {
		return nil, err
	}
	return convert(out, e.Type(), want)
}

// convert changes a value of type from to type to. Boolean, Int and
// Address share the i32 representation and convert freely.
func convert(e model.Expression, from, to ir.ValueType) (model.Expression, error) {
	src, dst := valType(from), valType(to)
	if src == dst {
		return e, nil
	}
	if src == model.None || dst == model.None {
		return nil, errors.New(errors.PhaseLower, errors.KindInvalidInput).
			Detail("cannot convert %s to %s", from, to).
			Build()
	}
	return &model.Conversion{Operand: e, From: src, To: dst, Signed: true}, nil
}

// operandType picks the common type both sides of a binary are lowered to.
func operandType(b *ir.Binary) ir.ValueType {
	if b.OperandType != ir.Void {
		return b.OperandType
	}
	return wider(b.Left.Type(), b.Right.Type())
}

func wider(a, b ir.ValueType) ir.ValueType {
	if rank(a) >= rank(b) {
		return a
	}
	return b
}

func rank(t ir.ValueType) int {
	switch t {
	case ir.Double:
		return 4
	case ir.Float:
		return 3
	case ir.Long:
		return 2
	case ir.Boolean, ir.Int, ir.Address:
		return 1
	default:
		return 0
	}
}
