package frontend

import (
	"maps"
	"slices"

	"github.com/hashicorp/hcl/v2/hclsyntax"

	"github.com/wippyai/wasm-backend/errors"
	"github.com/wippyai/wasm-backend/ir"
)

// scope resolves names inside one method body.
type scope struct {
	loader *loader
	class  *ir.Class
	method *ir.Method
}

func (s *scope) variable(name string) (int, ir.ValueType, bool) {
	for i, v := range s.method.Variables {
		if v.Name == name {
			return i, v.Type, true
		}
	}
	return 0, ir.Void, false
}

func (s *scope) statements(body *hclsyntax.Body) ([]ir.Statement, error) {
	if len(body.Attributes) > 0 {
		attr := body.Attributes[slices.Sorted(maps.Keys(body.Attributes))[0]]
		return nil, atRange(attr.SrcRange, errors.KindInvalidInput, "unexpected attribute %s in statement list", attr.Name)
	}
	out := make([]ir.Statement, 0, len(body.Blocks))
	for _, blk := range body.Blocks {
		stmt, err := s.statement(blk)
		if err != nil {
			return nil, err
		}
		out = append(out, stmt)
	}
	return out, nil
}

func (s *scope) statement(blk *hclsyntax.Block) (ir.Statement, error) {
	switch blk.Type {
	case "set":
		if err := shape(blk, 1, []string{"value"}, nil); err != nil {
			return nil, err
		}
		index, t, ok := s.variable(blk.Labels[0])
		if !ok {
			return nil, notFound(blk, "variable", blk.Labels[0])
		}
		value, err := s.required(blk, "value", t)
		if err != nil {
			return nil, err
		}
		return &ir.Assign{Index: index, Value: value}, nil

	case "eval":
		if err := shape(blk, 0, []string{"value"}, nil); err != nil {
			return nil, err
		}
		value, err := s.required(blk, "value", ir.Void)
		if err != nil {
			return nil, err
		}
		return &ir.ExprStatement{Expr: value}, nil

	case "return":
		if err := shape(blk, 0, []string{"value"}, nil); err != nil {
			return nil, err
		}
		result := s.method.Reference.Result
		attr, has := blk.Body.Attributes["value"]
		switch {
		case result == ir.Void && has:
			return nil, atRange(blk.DefRange(), errors.KindInvalidInput, "void method %s returns a value", s.method.Reference.Name)
		case result == ir.Void:
			return &ir.Return{}, nil
		case !has:
			return nil, atRange(blk.DefRange(), errors.KindInvalidInput, "method %s must return a %s", s.method.Reference.Name, result)
		}
		value, err := s.expr(attr.Expr, result)
		if err != nil {
			return nil, err
		}
		return &ir.Return{Value: value}, nil

	case "if":
		if err := shape(blk, 0, []string{"condition"}, []string{"then", "else"}); err != nil {
			return nil, err
		}
		cond, err := s.required(blk, "condition", ir.Boolean)
		if err != nil {
			return nil, err
		}
		stmt := &ir.If{Condition: cond}
		if stmt.Then, err = s.nested(blk, "then"); err != nil {
			return nil, err
		}
		if stmt.Else, err = s.nested(blk, "else"); err != nil {
			return nil, err
		}
		return stmt, nil

	case "while":
		if err := shape(blk, 0, []string{"condition"}, []string{"body"}); err != nil {
			return nil, err
		}
		cond, err := s.required(blk, "condition", ir.Boolean)
		if err != nil {
			return nil, err
		}
		body, err := s.nested(blk, "body")
		if err != nil {
			return nil, err
		}
		return &ir.While{Condition: cond, Body: body}, nil

	case "throw":
		if err := shape(blk, 0, []string{"value"}, nil); err != nil {
			return nil, err
		}
		value, err := s.required(blk, "value", ir.Int)
		if err != nil {
			return nil, err
		}
		return &ir.Throw{Value: value}, nil
	}
	return nil, atRange(blk.DefRange(), errors.KindUnsupported, "unknown statement %q", blk.Type)
}

func (s *scope) required(blk *hclsyntax.Block, name string, hint ir.ValueType) (ir.Expr, error) {
	attr, ok := blk.Body.Attributes[name]
	if !ok {
		return nil, atRange(blk.DefRange(), errors.KindInvalidInput, "%s requires %s", blk.Type, name)
	}
	return s.expr(attr.Expr, hint)
}

// nested returns the statements of the single child block named name, or
// nil when it is absent.
func (s *scope) nested(blk *hclsyntax.Block, name string) ([]ir.Statement, error) {
	var found *hclsyntax.Block
	for _, child := range blk.Body.Blocks {
		if child.Type != name {
			continue
		}
		if found != nil {
			return nil, atRange(child.DefRange(), errors.KindDuplicateName, "%s has more than one %s block", blk.Type, name)
		}
		found = child
	}
	if found == nil {
		return nil, nil
	}
	if len(found.Labels) > 0 {
		return nil, atRange(found.DefRange(), errors.KindInvalidInput, "%s block takes no labels", name)
	}
	return s.statements(found.Body)
}

// shape checks a statement block's label count and that it holds only
// the given attributes and child blocks.
func shape(blk *hclsyntax.Block, labels int, attrs, children []string) error {
	if len(blk.Labels) != labels {
		return atRange(blk.DefRange(), errors.KindInvalidInput, "%s takes %d labels, got %d", blk.Type, labels, len(blk.Labels))
	}
	for name, attr := range blk.Body.Attributes {
		if !slices.Contains(attrs, name) {
			return atRange(attr.SrcRange, errors.KindInvalidInput, "unexpected attribute %s in %s", name, blk.Type)
		}
	}
	for _, child := range blk.Body.Blocks {
		if !slices.Contains(children, child.Type) {
			return atRange(child.DefRange(), errors.KindInvalidInput, "unexpected block %s in %s", child.Type, blk.Type)
		}
	}
	return nil
}

func notFound(blk *hclsyntax.Block, entity, name string) error {
	return errors.New(errors.PhaseParse, errors.KindNotFound).
		Path(blk.DefRange().String()).
		Entity(entity, name).
		Build()
}
