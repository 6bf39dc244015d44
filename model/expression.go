package model

// Expression is a node of a function body tree. The set of node kinds is
// closed; emission switches over the concrete types below.
type Expression interface {
	expression()
}

// Int32Constant is i32.const.
type Int32Constant struct{ Value int32 }

// Int64Constant is i64.const.
type Int64Constant struct{ Value int64 }

// Float32Constant is f32.const.
type Float32Constant struct{ Value float32 }

// Float64Constant is f64.const.
type Float64Constant struct{ Value float64 }

// GetLocal reads a local.
type GetLocal struct{ Local *Local }

// SetLocal writes a local.
type SetLocal struct {
	Local *Local
	Value Expression
}

// IntType selects the 32 or 64 bit integer instruction family.
type IntType byte

const (
	Int32 IntType = iota
	Int64
)

// FloatType selects the 32 or 64 bit float instruction family.
type FloatType byte

const (
	Float32 FloatType = iota
	Float64
)

// IntBinaryOp is a two-operand integer instruction.
type IntBinaryOp byte

const (
	IntAdd IntBinaryOp = iota
	IntSub
	IntMul
	IntDivSigned
	IntDivUnsigned
	IntRemSigned
	IntRemUnsigned
	IntAnd
	IntOr
	IntXor
	IntShl
	IntShrSigned
	IntShrUnsigned
	IntRotl
	IntRotr
	IntEq
	IntNe
	IntLtSigned
	IntLtUnsigned
	IntGtSigned
	IntGtUnsigned
	IntLeSigned
	IntLeUnsigned
	IntGeSigned
	IntGeUnsigned
)

// IntBinary applies Op to First and Second.
type IntBinary struct {
	First  Expression
	Second Expression
	Type   IntType
	Op     IntBinaryOp
}

// FloatBinaryOp is a two-operand float instruction.
type FloatBinaryOp byte

const (
	FloatAdd FloatBinaryOp = iota
	FloatSub
	FloatMul
	FloatDiv
	FloatMin
	FloatMax
	FloatCopysign
	FloatEq
	FloatNe
	FloatLt
	FloatGt
	FloatLe
	FloatGe
)

// FloatBinary applies Op to First and Second.
type FloatBinary struct {
	First  Expression
	Second Expression
	Type   FloatType
	Op     FloatBinaryOp
}

// IntUnaryOp is a one-operand integer instruction.
type IntUnaryOp byte

const (
	IntClz IntUnaryOp = iota
	IntCtz
	IntPopcnt
	IntEqz
)

// IntUnary applies Op to Operand.
type IntUnary struct {
	Operand Expression
	Type    IntType
	Op      IntUnaryOp
}

// FloatUnaryOp is a one-operand float instruction.
type FloatUnaryOp byte

const (
	FloatAbs FloatUnaryOp = iota
	FloatNeg
	FloatSqrt
	FloatCeil
	FloatFloor
	FloatTrunc
	FloatNearest
)

// FloatUnary applies Op to Operand.
type FloatUnary struct {
	Operand Expression
	Type    FloatType
	Op      FloatUnaryOp
}

// Conversion changes Operand from one value type to another.
// Reinterpret keeps the bits; otherwise the value is converted, with
// Signed choosing the signed variant where one exists.
type Conversion struct {
	Operand     Expression
	From        ValType
	To          ValType
	Signed      bool
	Reinterpret bool
}

// Load reads Type from linear memory at Address+Offset.
// Width is the number of bytes read (1, 2, 4 or 8); 0 means the natural
// width of Type. Narrow loads are extended according to Signed.
type Load struct {
	Address Expression
	Offset  uint32
	Width   int
	Type    ValType
	Signed  bool
}

// Store writes Value to linear memory at Address+Offset.
// Width works as in Load.
type Store struct {
	Address Expression
	Value   Expression
	Offset  uint32
	Width   int
	Type    ValType
}

// Call invokes a function of the same module directly.
type Call struct {
	Function  *Function
	Arguments []Expression
}

// CallIndirect invokes the call-table entry selected by Selector.
type CallIndirect struct {
	Selector  Expression
	Arguments []Expression
	Signature Signature
}

// Block is a block, or a loop when Loop is set. A Branch targeting a block
// exits it; a Branch targeting a loop restarts it.
type Block struct {
	Body   []Expression
	Result ValType
	Loop   bool
}

// Branch transfers control to Target. With a Condition it is br_if.
type Branch struct {
	Target    *Block
	Condition Expression
	Value     Expression
}

// Conditional is if/else.
type Conditional struct {
	Condition Expression
	Then      []Expression
	Else      []Expression
	Result    ValType
}

// Return leaves the function, with Value when non-nil.
type Return struct{ Value Expression }

// Drop evaluates Operand and discards the result.
type Drop struct{ Operand Expression }

// Unreachable traps.
type Unreachable struct{}

// MemoryFill sets Count bytes at Dest to the low byte of Value.
type MemoryFill struct {
	Dest  Expression
	Value Expression
	Count Expression
}

// MemoryCopy copies Count bytes from Source to Dest; regions may overlap.
type MemoryCopy struct {
	Dest   Expression
	Source Expression
	Count  Expression
}

// MemorySize yields the memory size in pages.
type MemorySize struct{}

// MemoryGrow grows memory by Delta pages and yields the old size or -1.
type MemoryGrow struct{ Delta Expression }

// Throw raises the exception identified by Tag.
type Throw struct {
	Tag       *Tag
	Arguments []Expression
}

func (*Int32Constant) expression()   {}
func (*Int64Constant) expression()   {}
func (*Float32Constant) expression() {}
func (*Float64Constant) expression() {}
func (*GetLocal) expression()        {}
func (*SetLocal) expression()        {}
func (*IntBinary) expression()       {}
func (*FloatBinary) expression()     {}
func (*IntUnary) expression()        {}
func (*FloatUnary) expression()      {}
func (*Conversion) expression()      {}
func (*Load) expression()            {}
func (*Store) expression()           {}
func (*Call) expression()            {}
func (*CallIndirect) expression()    {}
func (*Block) expression()           {}
func (*Branch) expression()          {}
func (*Conditional) expression()     {}
func (*Return) expression()          {}
func (*Drop) expression()            {}
func (*Unreachable) expression()     {}
func (*MemoryFill) expression()      {}
func (*MemoryCopy) expression()      {}
func (*MemorySize) expression()      {}
func (*MemoryGrow) expression()      {}
func (*Throw) expression()           {}

// NewCall builds a direct call of f.
func NewCall(f *Function, args ...Expression) *Call {
	return &Call{Function: f, Arguments: args}
}

// Walk calls fn for e and every expression nested under it, parents first.
// Returning false from fn skips the children of that node.
func Walk(e Expression, fn func(Expression) bool) {
	if e == nil || !fn(e) {
		return
	}
	switch n := e.(type) {
	case *SetLocal:
		Walk(n.Value, fn)
	case *IntBinary:
		Walk(n.First, fn)
		Walk(n.Second, fn)
	case *FloatBinary:
		Walk(n.First, fn)
		Walk(n.Second, fn)
	case *IntUnary:
		Walk(n.Operand, fn)
	case *FloatUnary:
		Walk(n.Operand, fn)
	case *Conversion:
		Walk(n.Operand, fn)
	case *Load:
		Walk(n.Address, fn)
	case *Store:
		Walk(n.Address, fn)
		Walk(n.Value, fn)
	case *Call:
		walkAll(n.Arguments, fn)
	case *CallIndirect:
		walkAll(n.Arguments, fn)
		Walk(n.Selector, fn)
	case *Block:
		walkAll(n.Body, fn)
	case *Branch:
		Walk(n.Value, fn)
		Walk(n.Condition, fn)
	case *Conditional:
		Walk(n.Condition, fn)
		walkAll(n.Then, fn)
		walkAll(n.Else, fn)
	case *Return:
		Walk(n.Value, fn)
	case *Drop:
		Walk(n.Operand, fn)
	case *MemoryFill:
		Walk(n.Dest, fn)
		Walk(n.Value, fn)
		Walk(n.Count, fn)
	case *MemoryCopy:
		Walk(n.Dest, fn)
		Walk(n.Source, fn)
		Walk(n.Count, fn)
	case *MemoryGrow:
		Walk(n.Delta, fn)
	case *Throw:
		walkAll(n.Arguments, fn)
	}
}

// WalkBody walks every top-level expression of a function body.
func WalkBody(body []Expression, fn func(Expression) bool) {
	walkAll(body, fn)
}

func walkAll(list []Expression, fn func(Expression) bool) {
	for _, e := range list {
		Walk(e, fn)
	}
}
