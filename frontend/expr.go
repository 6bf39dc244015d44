package frontend

import (
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"

	"github.com/wippyai/wasm-backend/errors"
	"github.com/wippyai/wasm-backend/ir"
)

var binaryOps = map[*hclsyntax.Operation]ir.BinaryOp{
	hclsyntax.OpAdd:                ir.Add,
	hclsyntax.OpSubtract:           ir.Subtract,
	hclsyntax.OpMultiply:           ir.Multiply,
	hclsyntax.OpDivide:             ir.Divide,
	hclsyntax.OpModulo:             ir.Modulo,
	hclsyntax.OpEqual:              ir.Equal,
	hclsyntax.OpNotEqual:           ir.NotEqual,
	hclsyntax.OpLessThan:           ir.Less,
	hclsyntax.OpLessThanOrEqual:    ir.LessOrEqual,
	hclsyntax.OpGreaterThan:        ir.Greater,
	hclsyntax.OpGreaterThanOrEqual: ir.GreaterOrEqual,
	hclsyntax.OpLogicalAnd:         ir.BitAnd,
	hclsyntax.OpLogicalOr:          ir.BitOr,
}

var bitwiseFuncs = map[string]ir.BinaryOp{
	"and":  ir.BitAnd,
	"or":   ir.BitOr,
	"xor":  ir.BitXor,
	"shl":  ir.ShiftLeft,
	"shr":  ir.ShiftRight,
	"ushr": ir.ShiftRightUnsigned,
}

// expr converts e. hint is the type the context expects; number literals
// take it when it is numeric.
func (s *scope) expr(e hclsyntax.Expression, hint ir.ValueType) (ir.Expr, error) {
	switch e := e.(type) {
	case *hclsyntax.ParenthesesExpr:
		return s.expr(e.Expression, hint)

	case *hclsyntax.LiteralValueExpr:
		return literal(e.Val, hint, e.SrcRange)

	case *hclsyntax.ScopeTraversalExpr:
		if len(e.Traversal) != 1 {
			return nil, atRange(e.SrcRange, errors.KindUnsupported, "attribute and index access")
		}
		name := e.Traversal.RootName()
		index, t, ok := s.variable(name)
		if !ok {
			return nil, errors.New(errors.PhaseParse, errors.KindNotFound).
				Path(e.SrcRange.String()).
				Entity("variable", name).
				Build()
		}
		return &ir.Variable{Index: index, VariableType: t}, nil

	case *hclsyntax.UnaryOpExpr:
		return s.unary(e, hint)

	case *hclsyntax.BinaryOpExpr:
		op, ok := binaryOps[e.Op]
		if !ok {
			return nil, atRange(e.SrcRange, errors.KindUnsupported, "operator")
		}
		if e.Op == hclsyntax.OpLogicalAnd || e.Op == hclsyntax.OpLogicalOr {
			hint = ir.Boolean
		}
		return s.binary(op, e.LHS, e.RHS, hint)

	case *hclsyntax.FunctionCallExpr:
		return s.call(e, hint)
	}
	return nil, atRange(e.Range(), errors.KindUnsupported, "expression %T", e)
}

func (s *scope) unary(e *hclsyntax.UnaryOpExpr, hint ir.ValueType) (ir.Expr, error) {
	if e.Op == hclsyntax.OpLogicalNot {
		v, err := s.expr(e.Val, ir.Boolean)
		if err != nil {
			return nil, err
		}
		return &ir.Binary{Left: v, Right: boolConstant(false), Op: ir.Equal, OperandType: ir.Boolean}, nil
	}

	if lit, ok := e.Val.(*hclsyntax.LiteralValueExpr); ok && lit.Val.Type().Equals(cty.Number) {
		return literal(lit.Val.Negate(), hint, e.SrcRange)
	}
	v, err := s.expr(e.Val, hint)
	if err != nil {
		return nil, err
	}
	zero, err := literal(cty.Zero, v.Type(), e.SrcRange)
	if err != nil {
		return nil, err
	}
	return &ir.Binary{Left: zero, Right: v, Op: ir.Subtract, OperandType: v.Type()}, nil
}

// binary converts the non-literal side first so a literal operand can
// take the other side's type.
func (s *scope) binary(op ir.BinaryOp, lhs, rhs hclsyntax.Expression, hint ir.ValueType) (ir.Expr, error) {
	if op.IsComparison() {
		hint = ir.Void
	}
	var left, right ir.Expr
	var err error
	if isLiteral(lhs) && !isLiteral(rhs) {
		if right, err = s.expr(rhs, hint); err != nil {
			return nil, err
		}
		if left, err = s.expr(lhs, right.Type()); err != nil {
			return nil, err
		}
	} else {
		if left, err = s.expr(lhs, hint); err != nil {
			return nil, err
		}
		if right, err = s.expr(rhs, left.Type()); err != nil {
			return nil, err
		}
	}
	return &ir.Binary{Left: left, Right: right, Op: op, OperandType: wider(left.Type(), right.Type())}, nil
}

func (s *scope) call(e *hclsyntax.FunctionCallExpr, hint ir.ValueType) (ir.Expr, error) {
	if e.ExpandFinal {
		return nil, atRange(e.Range(), errors.KindUnsupported, "argument expansion")
	}
	if op, ok := bitwiseFuncs[e.Name]; ok {
		if len(e.Args) != 2 {
			return nil, atRange(e.Range(), errors.KindInvalidInput, "%s takes 2 arguments, got %d", e.Name, len(e.Args))
		}
		return s.binary(op, e.Args[0], e.Args[1], hint)
	}

	m, err := s.resolve(e.Name, e.Range())
	if err != nil {
		return nil, err
	}
	params := m.Reference.Params
	if len(e.Args) != len(params) {
		return nil, atRange(e.Range(), errors.KindInvalidInput, "%s takes %d arguments, got %d", m.Reference, len(params), len(e.Args))
	}
	args := make([]ir.Expr, len(e.Args))
	for i, a := range e.Args {
		if args[i], err = s.expr(a, params[i]); err != nil {
			return nil, err
		}
	}
	inv := ir.Invoke(m.Reference, args...)
	if m.Virtual {
		inv.Kind = ir.Indirect
	}
	return inv, nil
}

// resolve finds the method a call name refers to: method, Class::method
// or pkg::Class::method.
func (s *scope) resolve(name string, rng hcl.Range) (*ir.Method, error) {
	parts := strings.Split(name, "::")
	methodName := parts[len(parts)-1]

	var class *ir.Class
	switch len(parts) {
	case 1:
		class = s.class
	case 2:
		candidates := s.loader.bySimpleName[parts[0]]
		if len(candidates) > 1 {
			return nil, atRange(rng, errors.KindInvalidInput, "class name %s is ambiguous", parts[0])
		}
		if len(candidates) == 1 {
			class = candidates[0]
		}
	default:
		class = s.loader.program.Class(strings.Join(parts[:len(parts)-1], "."))
	}

	var m *ir.Method
	if class != nil {
		m = class.Method(methodName)
	}
	if m == nil {
		return nil, errors.New(errors.PhaseParse, errors.KindNotFound).
			Path(rng.String()).
			Entity("method", name).
			Build()
	}
	return m, nil
}

func literal(val cty.Value, hint ir.ValueType, rng hcl.Range) (ir.Expr, error) {
	if val.IsNull() || !val.IsKnown() {
		return nil, atRange(rng, errors.KindInvalidInput, "null literal")
	}
	switch t := val.Type(); {
	case t.Equals(cty.Bool):
		return boolConstant(val.True()), nil
	case !t.Equals(cty.Number):
		return nil, atRange(rng, errors.KindUnsupported, "%s literal", t.FriendlyName())
	}

	switch hint {
	case ir.Int, ir.Address:
		var v int32
		if err := gocty.FromCtyValue(val, &v); err != nil {
			return nil, literalError(rng, val, hint, err)
		}
		return &ir.Constant{Value: v, ValueType: hint}, nil
	case ir.Long:
		var v int64
		if err := gocty.FromCtyValue(val, &v); err != nil {
			return nil, literalError(rng, val, hint, err)
		}
		return ir.LongConstant(v), nil
	case ir.Float:
		f, _ := val.AsBigFloat().Float32()
		return &ir.Constant{Value: f, ValueType: ir.Float}, nil
	case ir.Double:
		f, _ := val.AsBigFloat().Float64()
		return ir.DoubleConstant(f), nil
	}

	if !val.AsBigFloat().IsInt() {
		return literal(val, ir.Double, rng)
	}
	var small int32
	if gocty.FromCtyValue(val, &small) == nil {
		return ir.IntConstant(small), nil
	}
	return literal(val, ir.Long, rng)
}

func literalError(rng hcl.Range, val cty.Value, t ir.ValueType, cause error) error {
	return errors.New(errors.PhaseParse, errors.KindOverflow).
		Path(rng.String()).
		Value(val.AsBigFloat().String()).
		Cause(cause).
		Detail("literal does not fit %s", t).
		Build()
}

func boolConstant(b bool) *ir.Constant {
	var v int32
	if b {
		v = 1
	}
	return &ir.Constant{Value: v, ValueType: ir.Boolean}
}

func isLiteral(e hclsyntax.Expression) bool {
	switch e := e.(type) {
	case *hclsyntax.LiteralValueExpr:
		return true
	case *hclsyntax.ParenthesesExpr:
		return isLiteral(e.Expression)
	case *hclsyntax.UnaryOpExpr:
		return e.Op == hclsyntax.OpNegate && isLiteral(e.Val)
	}
	return false
}

// wider picks the operand type of a binary expression.
func wider(a, b ir.ValueType) ir.ValueType {
	for _, t := range []ir.ValueType{ir.Double, ir.Float, ir.Long, ir.Address} {
		if a == t || b == t {
			return t
		}
	}
	if a == ir.Boolean && b == ir.Boolean {
		return ir.Boolean
	}
	return ir.Int
}
