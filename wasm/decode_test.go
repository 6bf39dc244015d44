package wasm

import (
	"errors"
	"reflect"
	"testing"
)

func TestParseModuleReadsEncodedSections(t *testing.T) {
	m := answerModule()
	limit := uint32(4)
	m.Imports = []Import{{Module: "env", Name: "log", Kind: KindFunc, TypeIdx: m.AddType(FuncType{Params: []ValType{ValI32}})}}
	m.Exports[0].Idx = 1
	m.Memories = []MemoryType{{Limits: Limits{Min: 1, Max: &limit}}}
	m.Tags = []TagType{{TypeIdx: 1}}
	m.Data = []DataSegment{{Offset: ConstI32Expr(8), Init: []byte{1, 2, 3}}}
	m.CustomSections = []CustomSection{{Name: "teavm.debug", Data: []byte{0x80}}}
	start := uint32(1)
	m.Start = &start

	got, err := ParseModule(m.Encode())
	if err != nil {
		t.Fatalf("ParseModule: %v", err)
	}
	if !reflect.DeepEqual(got.Types, m.Types) {
		t.Errorf("types = %+v", got.Types)
	}
	if !reflect.DeepEqual(got.Imports, m.Imports) {
		t.Errorf("imports = %+v", got.Imports)
	}
	if *got.Memories[0].Limits.Max != 4 {
		t.Errorf("memory max = %d", *got.Memories[0].Limits.Max)
	}
	if len(got.Tags) != 1 || got.Tags[0].TypeIdx != 1 {
		t.Errorf("tags = %+v", got.Tags)
	}
	if string(got.Data[0].Init) != "\x01\x02\x03" {
		t.Errorf("data = %+v", got.Data)
	}
	cs, ok := got.CustomSection("teavm.debug")
	if !ok || len(cs.Data) != 1 || cs.Data[0] != 0x80 {
		t.Errorf("custom section = %+v", cs)
	}
	if got.Start == nil || *got.Start != 1 {
		t.Errorf("start = %v", got.Start)
	}
}

func TestParseModuleRejects(t *testing.T) {
	if _, err := ParseModule([]byte("\x00asn\x01\x00\x00\x00")); !errors.Is(err, ErrInvalidMagic) {
		t.Errorf("bad magic: %v", err)
	}
	if _, err := ParseModule([]byte("\x00asm\x02\x00\x00\x00")); !errors.Is(err, ErrInvalidVersion) {
		t.Errorf("bad version: %v", err)
	}
	outOfOrder := []byte("\x00asm\x01\x00\x00\x00\x03\x01\x00\x01\x01\x00")
	if _, err := ParseModule(outOfOrder); err == nil {
		t.Error("out of order sections accepted")
	}
	truncated := []byte("\x00asm\x01\x00\x00\x00\x01\x05\x01")
	if _, err := ParseModule(truncated); err == nil {
		t.Error("truncated section accepted")
	}
}

func TestDecodeInstructions(t *testing.T) {
	in := []Instruction{
		{Opcode: OpBlock, Imm: BlockImm{Type: BlockTypeVoid}},
		{Opcode: OpLoop, Imm: BlockImm{Type: BlockTypeI32}},
		{Opcode: OpLocalGet, Imm: LocalImm{LocalIdx: 3}},
		{Opcode: OpI64Load8U, Imm: MemoryImm{Offset: 4, Align: 0}},
		{Opcode: OpI64Const, Imm: I64Imm{Value: -5}},
		{Opcode: OpF64Const, Imm: F64Imm{Value: 0.5}},
		{Opcode: OpBrIf, Imm: BranchImm{LabelIdx: 1}},
		{Opcode: OpCallIndirect, Imm: CallIndirectImm{TypeIdx: 2}},
		{Opcode: OpMemorySize},
		{Opcode: OpPrefixMisc, Imm: MiscImm{SubOpcode: MiscMemoryCopy, Operands: []uint32{0, 0}}},
		{Opcode: OpThrow, Imm: TagImm{TagIdx: 0}},
		{Opcode: OpEnd},
	}
	got, err := DecodeInstructions(EncodeInstructions(in))
	if err != nil {
		t.Fatalf("DecodeInstructions: %v", err)
	}
	if !reflect.DeepEqual(got, in) {
		t.Errorf("decoded\n%v\nwant\n%v", got, in)
	}

	if _, err := DecodeInstructions([]byte{0xf0}); !errors.Is(err, ErrUnknownOpcode) {
		t.Errorf("unknown opcode: %v", err)
	}
}

func TestInstructionString(t *testing.T) {
	tests := []struct {
		in   Instruction
		want string
	}{
		{Instruction{Opcode: OpI32Const, Imm: I32Imm{Value: -3}}, "i32.const -3"},
		{Instruction{Opcode: OpI32Load8U, Imm: MemoryImm{Offset: 8}}, "i32.load8_u offset=8 align=1"},
		{Instruction{Opcode: OpI64ExtendI32S}, "i64.extend_i32_s"},
		{Instruction{Opcode: OpBlock, Imm: BlockImm{Type: BlockTypeVoid}}, "block"},
		{Instruction{Opcode: OpIf, Imm: BlockImm{Type: BlockTypeF64}}, "if (result f64)"},
		{Instruction{Opcode: OpPrefixMisc, Imm: MiscImm{SubOpcode: MiscMemoryFill, Operands: []uint32{0}}}, "memory.fill"},
		{Instruction{Opcode: OpLocalSet, Imm: LocalImm{LocalIdx: 2}}, "local.set 2"},
	}
	for _, tt := range tests {
		if got := tt.in.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
