package lower

import (
	"github.com/wippyai/wasm-backend/errors"
	"github.com/wippyai/wasm-backend/ir"
	"github.com/wippyai/wasm-backend/model"
)

func (c *funcContext) statements(body []ir.Statement) ([]model.Expression, error) {
	var out []model.Expression
	for _, s := range body {
		e, err := c.statement(s)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func (c *funcContext) statement(s ir.Statement) (model.Expression, error) {
	switch n := s.(type) {
	case *ir.ExprStatement:
		e, err := c.expr(n.Expr)
		if err != nil {
			return nil, err
		}
		if n.Expr.Type() == ir.Void {
			return e, nil
		}
		return &model.Drop{Operand: e}, nil

	case *ir.Assign:
		l, err := c.local(n.Index)
		if err != nil {
			return nil, err
		}
		v, err := c.typed(n.Value, c.variableType(n.Index))
		if err != nil {
			return nil, err
		}
		return &model.SetLocal{Local: l, Value: v}, nil

	case *ir.Return:
		result := c.method.Reference.Result
		if result == ir.Void {
			if n.Value != nil {
				return nil, c.invalid("void method returns a value")
			}
			return &model.Return{}, nil
		}
		if n.Value == nil {
			return nil, c.invalid("missing return value")
		}
		v, err := c.typed(n.Value, result)
		if err != nil {
			return nil, err
		}
		return &model.Return{Value: v}, nil

	case *ir.If:
		cond, err := c.typed(n.Condition, ir.Boolean)
		if err != nil {
			return nil, err
		}
		then, err := c.statements(n.Then)
		if err != nil {
			return nil, err
		}
		els, err := c.statements(n.Else)
		if err != nil {
			return nil, err
		}
		return &model.Conditional{Condition: cond, Then: then, Else: els}, nil

	case *ir.While:
		return c.loop(n)

	case *ir.Throw:
		tag, err := c.gen.exception()
		if err != nil {
			return nil, err
		}
		v, err := c.typed(n.Value, ir.Int)
		if err != nil {
			return nil, err
		}
		return &model.Throw{Tag: tag, Arguments: []model.Expression{v}}, nil

	default:
		return nil, errors.Unsupported(errors.PhaseLower, "statement")
	}
}

// loop lowers while (cond) body into
//
//	block $exit
//	  loop $continue
//	    br_if $exit (i32.eqz cond)
//	    body
//	    br $continue
func (c *funcContext) loop(w *ir.While) (model.Expression, error) {
	cond, err := c.typed(w.Condition, ir.Boolean)
	if err != nil {
		return nil, err
	}
	body, err := c.statements(w.Body)
	if err != nil {
		return nil, err
	}

	exit := &model.Block{}
	cont := &model.Block{Loop: true}
	cont.Body = append(cont.Body, &model.Branch{
		Target:    exit,
		Condition: &model.IntUnary{Operand: cond, Type: model.Int32, Op: model.IntEqz},
	})
	cont.Body = append(cont.Body, body...)
	cont.Body = append(cont.Body, &model.Branch{Target: cont})
	exit.Body = []model.Expression{cont}
	return exit, nil
}

func (c *funcContext) variableType(index int) ir.ValueType {
	if index < len(c.method.Reference.Params) {
		return c.method.Reference.Params[index]
	}
	return c.method.Variables[index].Type
}

func (c *funcContext) invalid(detail string) error {
	return errors.New(errors.PhaseLower, errors.KindInvalidInput).
		Entity("method", c.method.Reference.String()).
		Detail("%s", detail).
		Build()
}
