package wasm

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/wippyai/wasm-backend/wasm/internal/binary"
)

// Instruction is a single decoded or to-be-encoded instruction.
type Instruction struct {
	Imm    any
	Opcode byte
}

// BlockImm holds the block type for block, loop and if.
type BlockImm struct {
	Type int32 // BlockTypeVoid, BlockTypeI32, ... or a type index
}

// BranchImm holds the label index for br and br_if.
type BranchImm struct {
	LabelIdx uint32
}

// BrTableImm holds the label table for br_table.
type BrTableImm struct {
	Labels  []uint32
	Default uint32
}

// CallImm holds the function index for call.
type CallImm struct {
	FuncIdx uint32
}

// CallIndirectImm holds type and table indices for call_indirect.
type CallIndirectImm struct {
	TypeIdx  uint32
	TableIdx uint32
}

// TagImm holds the tag index for throw.
type TagImm struct {
	TagIdx uint32
}

// LocalImm holds the local index for local.get, local.set and local.tee.
type LocalImm struct {
	LocalIdx uint32
}

// MemoryImm holds the memarg of loads and stores. Align is log2 bytes.
type MemoryImm struct {
	Offset uint32
	Align  uint32
}

// I32Imm holds the value of i32.const.
type I32Imm struct {
	Value int32
}

// I64Imm holds the value of i64.const.
type I64Imm struct {
	Value int64
}

// F32Imm holds the value of f32.const.
type F32Imm struct {
	Value float32
}

// F64Imm holds the value of f64.const.
type F64Imm struct {
	Value float64
}

// MiscImm holds the sub-opcode and index operands of 0xFC instructions.
type MiscImm struct {
	Operands  []uint32
	SubOpcode uint32
}

// ErrUnknownOpcode is returned when decoding meets an opcode this package
// does not produce.
var ErrUnknownOpcode = errors.New("unknown opcode")

// Name returns the instruction's text format mnemonic.
func (i Instruction) Name() string {
	if i.Opcode == OpPrefixMisc {
		if imm, ok := i.Imm.(MiscImm); ok {
			if n, ok := miscNames[imm.SubOpcode]; ok {
				return n
			}
		}
		return "misc"
	}
	if n, ok := opcodeNames[i.Opcode]; ok {
		return n
	}
	return fmt.Sprintf("0x%02x", i.Opcode)
}

// String renders the instruction in text format with its immediates.
func (i Instruction) String() string {
	var b strings.Builder
	b.WriteString(i.Name())
	switch imm := i.Imm.(type) {
	case BlockImm:
		if imm.Type != BlockTypeVoid {
			b.WriteString(" ")
			b.WriteString(blockTypeName(imm.Type))
		}
	case BranchImm:
		fmt.Fprintf(&b, " %d", imm.LabelIdx)
	case BrTableImm:
		for _, l := range imm.Labels {
			fmt.Fprintf(&b, " %d", l)
		}
		fmt.Fprintf(&b, " %d", imm.Default)
	case CallImm:
		fmt.Fprintf(&b, " %d", imm.FuncIdx)
	case CallIndirectImm:
		fmt.Fprintf(&b, " (type %d)", imm.TypeIdx)
	case TagImm:
		fmt.Fprintf(&b, " %d", imm.TagIdx)
	case LocalImm:
		fmt.Fprintf(&b, " %d", imm.LocalIdx)
	case MemoryImm:
		if imm.Offset != 0 {
			fmt.Fprintf(&b, " offset=%d", imm.Offset)
		}
		fmt.Fprintf(&b, " align=%d", uint32(1)<<imm.Align)
	case I32Imm:
		b.WriteString(" " + strconv.FormatInt(int64(imm.Value), 10))
	case I64Imm:
		b.WriteString(" " + strconv.FormatInt(imm.Value, 10))
	case F32Imm:
		b.WriteString(" " + strconv.FormatFloat(float64(imm.Value), 'g', -1, 32))
	case F64Imm:
		b.WriteString(" " + strconv.FormatFloat(imm.Value, 'g', -1, 64))
	}
	return b.String()
}

func blockTypeName(t int32) string {
	switch t {
	case BlockTypeI32:
		return "(result i32)"
	case BlockTypeI64:
		return "(result i64)"
	case BlockTypeF32:
		return "(result f32)"
	case BlockTypeF64:
		return "(result f64)"
	}
	return fmt.Sprintf("(type %d)", t)
}

// EncodeInstructions encodes instrs in order.
func EncodeInstructions(instrs []Instruction) []byte {
	w := binary.NewWriter()
	for i := range instrs {
		encodeInstruction(w, &instrs[i])
	}
	return w.Bytes()
}

func encodeInstruction(w *binary.Writer, instr *Instruction) {
	w.Byte(instr.Opcode)
	switch imm := instr.Imm.(type) {
	case BlockImm:
		w.WriteS32(imm.Type)
	case BranchImm:
		w.WriteU32(imm.LabelIdx)
	case BrTableImm:
		w.WriteU32(uint32(len(imm.Labels)))
		for _, l := range imm.Labels {
			w.WriteU32(l)
		}
		w.WriteU32(imm.Default)
	case CallImm:
		w.WriteU32(imm.FuncIdx)
	case CallIndirectImm:
		w.WriteU32(imm.TypeIdx)
		w.WriteU32(imm.TableIdx)
	case TagImm:
		w.WriteU32(imm.TagIdx)
	case LocalImm:
		w.WriteU32(imm.LocalIdx)
	case MemoryImm:
		w.WriteU32(imm.Align)
		w.WriteU32(imm.Offset)
	case I32Imm:
		w.WriteS32(imm.Value)
	case I64Imm:
		w.WriteS64(imm.Value)
	case F32Imm:
		w.WriteF32(imm.Value)
	case F64Imm:
		w.WriteF64(imm.Value)
	case MiscImm:
		w.WriteU32(imm.SubOpcode)
		for _, op := range imm.Operands {
			w.WriteU32(op)
		}
	case nil:
		if instr.Opcode == OpMemorySize || instr.Opcode == OpMemoryGrow {
			w.Byte(0x00)
		}
	}
}

// DecodeInstructions decodes a code body into instructions.
func DecodeInstructions(code []byte) ([]Instruction, error) {
	r := binary.NewReader(bytes.NewReader(code))
	var out []Instruction
	for {
		op, err := r.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return out, nil
			}
			return nil, err
		}
		imm, err := decodeImmediate(r, op)
		if err != nil {
			return nil, r.WrapError("instruction", fmt.Errorf("opcode 0x%02x: %w", op, err))
		}
		out = append(out, Instruction{Opcode: op, Imm: imm})
	}
}

func decodeImmediate(r *binary.Reader, op byte) (any, error) {
	switch {
	case op == OpBlock || op == OpLoop || op == OpIf:
		t, err := r.ReadS32()
		return BlockImm{Type: t}, err
	case op == OpBr || op == OpBrIf:
		l, err := r.ReadU32()
		return BranchImm{LabelIdx: l}, err
	case op == OpBrTable:
		n, err := r.ReadU32()
		if err != nil {
			return nil, err
		}
		imm := BrTableImm{Labels: make([]uint32, n)}
		for i := range imm.Labels {
			if imm.Labels[i], err = r.ReadU32(); err != nil {
				return nil, err
			}
		}
		imm.Default, err = r.ReadU32()
		return imm, err
	case op == OpCall:
		idx, err := r.ReadU32()
		return CallImm{FuncIdx: idx}, err
	case op == OpCallIndirect:
		typeIdx, err := r.ReadU32()
		if err != nil {
			return nil, err
		}
		tableIdx, err := r.ReadU32()
		return CallIndirectImm{TypeIdx: typeIdx, TableIdx: tableIdx}, err
	case op == OpThrow:
		idx, err := r.ReadU32()
		return TagImm{TagIdx: idx}, err
	case op >= OpLocalGet && op <= OpLocalTee:
		idx, err := r.ReadU32()
		return LocalImm{LocalIdx: idx}, err
	case op >= OpI32Load && op <= OpI64Store32:
		align, err := r.ReadU32()
		if err != nil {
			return nil, err
		}
		offset, err := r.ReadU32()
		return MemoryImm{Align: align, Offset: offset}, err
	case op == OpMemorySize || op == OpMemoryGrow:
		_, err := r.ReadByte()
		return nil, err
	case op == OpI32Const:
		v, err := r.ReadS32()
		return I32Imm{Value: v}, err
	case op == OpI64Const:
		v, err := r.ReadS64()
		return I64Imm{Value: v}, err
	case op == OpF32Const:
		v, err := r.ReadF32()
		return F32Imm{Value: v}, err
	case op == OpF64Const:
		v, err := r.ReadF64()
		return F64Imm{Value: v}, err
	case op == OpPrefixMisc:
		return decodeMisc(r)
	}
	if _, ok := opcodeNames[op]; ok {
		return nil, nil
	}
	return nil, ErrUnknownOpcode
}

func decodeMisc(r *binary.Reader) (any, error) {
	sub, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	var n int
	switch sub {
	case MiscMemoryInit, MiscMemoryCopy:
		n = 2
	case MiscDataDrop, MiscMemoryFill:
		n = 1
	default:
		if sub > MiscI64TruncSatF64U {
			return nil, ErrUnknownOpcode
		}
	}
	imm := MiscImm{SubOpcode: sub}
	for range n {
		v, err := r.ReadU32()
		if err != nil {
			return nil, err
		}
		imm.Operands = append(imm.Operands, v)
	}
	return imm, nil
}
