package lower

import (
	"github.com/wippyai/wasm-backend/errors"
	"github.com/wippyai/wasm-backend/ir"
	"github.com/wippyai/wasm-backend/model"
	"github.com/wippyai/wasm-backend/support"
)

// funcContext lowers one method body. It is the intrinsic.Context handed
// to intrinsics during that body.
type funcContext struct {
	gen    *Generator
	method *ir.Method
	fn     *model.Function
}

func (c *funcContext) Module() *model.Module {
	return c.gen.module
}

func (c *funcContext) SupportFunction(fn support.Function) (*model.Function, error) {
	return c.gen.SupportFunction(fn)
}

func (c *funcContext) Lower(expr ir.Expr) (model.Expression, error) {
	return c.expr(expr)
}

// LowerArguments lowers the arguments of inv, converting each to the
// parameter type it is declared with.
func (c *funcContext) LowerArguments(inv *ir.Invocation) ([]model.Expression, error) {
	if len(inv.Arguments) != len(inv.Method.Params) {
		return nil, c.arityError(inv)
	}
	args := make([]model.Expression, len(inv.Arguments))
	for i, a := range inv.Arguments {
		e, err := c.typed(a, inv.Method.Params[i])
		if err != nil {
			return nil, err
		}
		args[i] = e
	}
	return args, nil
}

func (c *funcContext) local(index int) (*model.Local, error) {
	if index < 0 || index >= len(c.fn.Locals) {
		return nil, errors.New(errors.PhaseLower, errors.KindNotFound).
			Entity("variable", c.method.Reference.String()).
			Value(index).
			Detail("variable index out of range").
			Build()
	}
	return c.fn.Locals[index], nil
}

func (c *funcContext) arityError(inv *ir.Invocation) error {
	return errors.New(errors.PhaseLower, errors.KindInvalidInput).
		Entity("method", inv.Method.String()).
		Detail("expected %d arguments, got %d", len(inv.Method.Params), len(inv.Arguments)).
		Build()
}
