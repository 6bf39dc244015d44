package emit

import (
	"github.com/wippyai/wasm-backend/errors"
	"github.com/wippyai/wasm-backend/model"
	"github.com/wippyai/wasm-backend/wasm"
)

// compiler flattens one function's expression trees into stack code.
type compiler struct {
	e      *emitter
	fn     *model.Function
	instrs []wasm.Instruction

	// labels is the stack of enclosing structured blocks, innermost last.
	// Conditionals push nil since nothing can branch to them.
	labels []*model.Block
}

func (e *emitter) compile(f *model.Function) (wasm.FuncBody, error) {
	c := &compiler{e: e, fn: f}
	for _, x := range f.Body {
		if err := c.expr(x); err != nil {
			return wasm.FuncBody{}, err
		}
	}
	c.op(wasm.OpEnd)
	return wasm.FuncBody{Locals: localEntries(f), Code: wasm.EncodeInstructions(c.instrs)}, nil
}

// localEntries groups the non-parameter locals into runs of one type.
func localEntries(f *model.Function) []wasm.LocalEntry {
	var out []wasm.LocalEntry
	for _, l := range f.Locals[len(f.Params):] {
		t := valType(l.Type)
		if n := len(out); n > 0 && out[n-1].ValType == t {
			out[n-1].Count++
			continue
		}
		out = append(out, wasm.LocalEntry{Count: 1, ValType: t})
	}
	return out
}

func (c *compiler) op(code byte) {
	c.instrs = append(c.instrs, wasm.Instruction{Opcode: code})
}

func (c *compiler) imm(code byte, imm any) {
	c.instrs = append(c.instrs, wasm.Instruction{Opcode: code, Imm: imm})
}

func (c *compiler) exprs(xs []model.Expression) error {
	for _, x := range xs {
		if err := c.expr(x); err != nil {
			return err
		}
	}
	return nil
}

func (c *compiler) expr(x model.Expression) error {
	switch n := x.(type) {
	case *model.Int32Constant:
		c.imm(wasm.OpI32Const, wasm.I32Imm{Value: n.Value})
	case *model.Int64Constant:
		c.imm(wasm.OpI64Const, wasm.I64Imm{Value: n.Value})
	case *model.Float32Constant:
		c.imm(wasm.OpF32Const, wasm.F32Imm{Value: n.Value})
	case *model.Float64Constant:
		c.imm(wasm.OpF64Const, wasm.F64Imm{Value: n.Value})

	case *model.GetLocal:
		idx, err := c.local(n.Local)
		if err != nil {
			return err
		}
		c.imm(wasm.OpLocalGet, wasm.LocalImm{LocalIdx: idx})
	case *model.SetLocal:
		idx, err := c.local(n.Local)
		if err != nil {
			return err
		}
		if err := c.expr(n.Value); err != nil {
			return err
		}
		c.imm(wasm.OpLocalSet, wasm.LocalImm{LocalIdx: idx})

	case *model.IntBinary:
		if err := c.exprs([]model.Expression{n.First, n.Second}); err != nil {
			return err
		}
		table := i32Binary[:]
		if n.Type == model.Int64 {
			table = i64Binary[:]
		}
		return c.lookup(table, int(n.Op), "integer binary operator")
	case *model.FloatBinary:
		if err := c.exprs([]model.Expression{n.First, n.Second}); err != nil {
			return err
		}
		table := f32Binary[:]
		if n.Type == model.Float64 {
			table = f64Binary[:]
		}
		return c.lookup(table, int(n.Op), "float binary operator")
	case *model.IntUnary:
		if err := c.expr(n.Operand); err != nil {
			return err
		}
		table := i32Unary[:]
		if n.Type == model.Int64 {
			table = i64Unary[:]
		}
		return c.lookup(table, int(n.Op), "integer unary operator")
	case *model.FloatUnary:
		if err := c.expr(n.Operand); err != nil {
			return err
		}
		table := f32Unary[:]
		if n.Type == model.Float64 {
			table = f64Unary[:]
		}
		return c.lookup(table, int(n.Op), "float unary operator")
	case *model.Conversion:
		if err := c.expr(n.Operand); err != nil {
			return err
		}
		key := conversion{from: n.From, to: n.To, signed: n.Signed && !n.Reinterpret, reinterpret: n.Reinterpret}
		code, ok := conversions[key]
		if !ok {
			return c.unsupported("conversion from %s to %s", n.From, n.To)
		}
		c.op(code)

	case *model.Load:
		if err := c.expr(n.Address); err != nil {
			return err
		}
		code, align, ok := loadOp(n.Type, n.Width, n.Signed)
		if !ok {
			return c.unsupported("%d byte load of %s", n.Width, n.Type)
		}
		c.imm(code, wasm.MemoryImm{Offset: n.Offset, Align: align})
	case *model.Store:
		if err := c.exprs([]model.Expression{n.Address, n.Value}); err != nil {
			return err
		}
		code, align, ok := storeOp(n.Type, n.Width)
		if !ok {
			return c.unsupported("%d byte store of %s", n.Width, n.Type)
		}
		c.imm(code, wasm.MemoryImm{Offset: n.Offset, Align: align})

	case *model.Call:
		idx, err := c.e.function(n.Function)
		if err != nil {
			return err
		}
		if err := c.arguments(n.Function.Params, n.Arguments); err != nil {
			return err
		}
		c.imm(wasm.OpCall, wasm.CallImm{FuncIdx: idx})
	case *model.CallIndirect:
		if len(c.e.src.FunctionTable) == 0 {
			return c.unsupported("indirect call without a function table")
		}
		if err := c.arguments(n.Signature.Params, n.Arguments); err != nil {
			return err
		}
		if err := c.expr(n.Selector); err != nil {
			return err
		}
		c.imm(wasm.OpCallIndirect, wasm.CallIndirectImm{TypeIdx: c.e.typeOf(n.Signature)})

	case *model.Block:
		code := wasm.OpBlock
		if n.Loop {
			code = wasm.OpLoop
		}
		c.imm(code, wasm.BlockImm{Type: blockType(n.Result)})
		c.labels = append(c.labels, n)
		if err := c.exprs(n.Body); err != nil {
			return err
		}
		c.labels = c.labels[:len(c.labels)-1]
		c.op(wasm.OpEnd)
	case *model.Branch:
		depth, ok := c.depth(n.Target)
		if !ok {
			return c.unsupported("branch to a block that does not enclose it")
		}
		if n.Value != nil {
			if err := c.expr(n.Value); err != nil {
				return err
			}
		}
		if n.Condition == nil {
			c.imm(wasm.OpBr, wasm.BranchImm{LabelIdx: depth})
			return nil
		}
		if err := c.expr(n.Condition); err != nil {
			return err
		}
		c.imm(wasm.OpBrIf, wasm.BranchImm{LabelIdx: depth})
	case *model.Conditional:
		if err := c.expr(n.Condition); err != nil {
			return err
		}
		c.imm(wasm.OpIf, wasm.BlockImm{Type: blockType(n.Result)})
		c.labels = append(c.labels, nil)
		if err := c.exprs(n.Then); err != nil {
			return err
		}
		if len(n.Else) > 0 {
			c.op(wasm.OpElse)
			if err := c.exprs(n.Else); err != nil {
				return err
			}
		}
		c.labels = c.labels[:len(c.labels)-1]
		c.op(wasm.OpEnd)
	case *model.Return:
		if n.Value != nil {
			if err := c.expr(n.Value); err != nil {
				return err
			}
		}
		c.op(wasm.OpReturn)
	case *model.Drop:
		if err := c.expr(n.Operand); err != nil {
			return err
		}
		c.op(wasm.OpDrop)
	case *model.Unreachable:
		c.op(wasm.OpUnreachable)

	case *model.MemoryFill:
		if err := c.exprs([]model.Expression{n.Dest, n.Value, n.Count}); err != nil {
			return err
		}
		c.imm(wasm.OpPrefixMisc, wasm.MiscImm{SubOpcode: wasm.MiscMemoryFill, Operands: []uint32{0}})
	case *model.MemoryCopy:
		if err := c.exprs([]model.Expression{n.Dest, n.Source, n.Count}); err != nil {
			return err
		}
		c.imm(wasm.OpPrefixMisc, wasm.MiscImm{SubOpcode: wasm.MiscMemoryCopy, Operands: []uint32{0, 0}})
	case *model.MemorySize:
		c.op(wasm.OpMemorySize)
	case *model.MemoryGrow:
		if err := c.expr(n.Delta); err != nil {
			return err
		}
		c.op(wasm.OpMemoryGrow)

	case *model.Throw:
		idx, ok := c.e.tagIndex[n.Tag]
		if !ok {
			return c.unsupported("throw of a tag that is not part of the module")
		}
		if err := c.exprs(n.Arguments); err != nil {
			return err
		}
		c.imm(wasm.OpThrow, wasm.TagImm{TagIdx: idx})

	case nil:
		return c.unsupported("missing expression")
	default:
		return c.unsupported("expression %T", x)
	}
	return nil
}

func (c *compiler) arguments(params []model.ValType, args []model.Expression) error {
	if len(params) != len(args) {
		return c.unsupported("%d arguments for %d parameters", len(args), len(params))
	}
	return c.exprs(args)
}

func (c *compiler) local(l *model.Local) (uint32, error) {
	if l == nil || l.Index() >= len(c.fn.Locals) || c.fn.Locals[l.Index()] != l {
		return 0, c.unsupported("local does not belong to the function")
	}
	return uint32(l.Index()), nil
}

func (c *compiler) depth(target *model.Block) (uint32, bool) {
	for i := len(c.labels) - 1; i >= 0; i-- {
		if c.labels[i] == target && target != nil {
			return uint32(len(c.labels) - 1 - i), true
		}
	}
	return 0, false
}

func (c *compiler) lookup(table []byte, op int, what string) error {
	if op < 0 || op >= len(table) {
		return c.unsupported("%s %d", what, op)
	}
	c.op(table[op])
	return nil
}

func (c *compiler) unsupported(format string, args ...any) error {
	return errors.New(errors.PhaseEmit, errors.KindUnsupported).
		Entity("function", c.fn.Name()).
		Detail(format, args...).
		Build()
}

func blockType(t model.ValType) int32 {
	switch t {
	case model.I32:
		return wasm.BlockTypeI32
	case model.I64:
		return wasm.BlockTypeI64
	case model.F32:
		return wasm.BlockTypeF32
	case model.F64:
		return wasm.BlockTypeF64
	default:
		return wasm.BlockTypeVoid
	}
}

// loadOp picks the load instruction for a Width-byte read of t. Width 0
// means the natural width of t.
func loadOp(t model.ValType, width int, signed bool) (code byte, align uint32, ok bool) {
	if width == 0 {
		width = t.Size()
	}
	pick := func(s, u byte) byte {
		if signed {
			return s
		}
		return u
	}
	switch {
	case t == model.I32 && width == 4:
		code = wasm.OpI32Load
	case t == model.I32 && width == 1:
		code = pick(wasm.OpI32Load8S, wasm.OpI32Load8U)
	case t == model.I32 && width == 2:
		code = pick(wasm.OpI32Load16S, wasm.OpI32Load16U)
	case t == model.I64 && width == 8:
		code = wasm.OpI64Load
	case t == model.I64 && width == 1:
		code = pick(wasm.OpI64Load8S, wasm.OpI64Load8U)
	case t == model.I64 && width == 2:
		code = pick(wasm.OpI64Load16S, wasm.OpI64Load16U)
	case t == model.I64 && width == 4:
		code = pick(wasm.OpI64Load32S, wasm.OpI64Load32U)
	case t == model.F32 && width == 4:
		code = wasm.OpF32Load
	case t == model.F64 && width == 8:
		code = wasm.OpF64Load
	default:
		return 0, 0, false
	}
	return code, alignOf(width), true
}

// storeOp picks the store instruction for a Width-byte write of t.
func storeOp(t model.ValType, width int) (code byte, align uint32, ok bool) {
	if width == 0 {
		width = t.Size()
	}
	switch {
	case t == model.I32 && width == 4:
		code = wasm.OpI32Store
	case t == model.I32 && width == 1:
		code = wasm.OpI32Store8
	case t == model.I32 && width == 2:
		code = wasm.OpI32Store16
	case t == model.I64 && width == 8:
		code = wasm.OpI64Store
	case t == model.I64 && width == 1:
		code = wasm.OpI64Store8
	case t == model.I64 && width == 2:
		code = wasm.OpI64Store16
	case t == model.I64 && width == 4:
		code = wasm.OpI64Store32
	case t == model.F32 && width == 4:
		code = wasm.OpF32Store
	case t == model.F64 && width == 8:
		code = wasm.OpF64Store
	default:
		return 0, 0, false
	}
	return code, alignOf(width), true
}

func alignOf(width int) uint32 {
	switch width {
	case 1:
		return 0
	case 2:
		return 1
	case 4:
		return 2
	default:
		return 3
	}
}
