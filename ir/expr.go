package ir

// Expr is a value-producing node.
type Expr interface {
	// Type returns the static type of the value the expression produces.
	Type() ValueType
}

// Constant is a literal. Value holds int32, int64, float32 or float64
// matching ValueType (Boolean and Address use int32).
type Constant struct {
	Value     any
	ValueType ValueType
}

func (c *Constant) Type() ValueType { return c.ValueType }

// IntConstant builds an int literal.
func IntConstant(v int32) *Constant { return &Constant{Value: v, ValueType: Int} }

// LongConstant builds a long literal.
func LongConstant(v int64) *Constant { return &Constant{Value: v, ValueType: Long} }

// DoubleConstant builds a double literal.
func DoubleConstant(v float64) *Constant { return &Constant{Value: v, ValueType: Double} }

// Variable reads a method variable by index. Parameters come first.
type Variable struct {
	Index        int
	VariableType ValueType
}

func (v *Variable) Type() ValueType { return v.VariableType }

// BinaryOp is an arithmetic, bitwise or comparison operator.
type BinaryOp byte

const (
	Add BinaryOp = iota
	Subtract
	Multiply
	Divide
	Modulo
	BitAnd
	BitOr
	BitXor
	ShiftLeft
	ShiftRight
	ShiftRightUnsigned
	Equal
	NotEqual
	Less
	LessOrEqual
	Greater
	GreaterOrEqual
)

// IsComparison reports whether op yields a Boolean.
func (op BinaryOp) IsComparison() bool {
	return op >= Equal
}

// Binary applies Op to two operands of OperandType.
type Binary struct {
	Left        Expr
	Right       Expr
	Op          BinaryOp
	OperandType ValueType
}

func (b *Binary) Type() ValueType {
	if b.Op.IsComparison() {
		return Boolean
	}
	return b.OperandType
}

// InvocationKind selects how a call is dispatched.
type InvocationKind byte

const (
	// Static calls the target function directly.
	Static InvocationKind = iota
	// Indirect calls through the module's call table.
	Indirect
)

// Invocation calls Method with Arguments.
type Invocation struct {
	Method    MethodReference
	Arguments []Expr
	Kind      InvocationKind
}

func (i *Invocation) Type() ValueType { return i.Method.Result }

// Invoke builds a static invocation.
func Invoke(method MethodReference, args ...Expr) *Invocation {
	return &Invocation{Method: method, Arguments: args}
}
