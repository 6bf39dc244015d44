package emit_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/wasm-backend/emit"
	"github.com/wippyai/wasm-backend/errors"
	"github.com/wippyai/wasm-backend/intrinsic"
	"github.com/wippyai/wasm-backend/ir"
	"github.com/wippyai/wasm-backend/lower"
	"github.com/wippyai/wasm-backend/model"
	"github.com/wippyai/wasm-backend/wasm"
)

func lowered(t *testing.T, p *ir.Program) *model.Module {
	t.Helper()
	mod, err := lower.New(p, intrinsic.Defaults(), lower.WithMemory(1, 0)).Generate()
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	return mod
}

func instantiate(t *testing.T, bin []byte) api.Module {
	t.Helper()
	ctx := context.Background()
	r := wazero.NewRuntime(ctx)
	t.Cleanup(func() { _ = r.Close(ctx) })
	mod, err := r.Instantiate(ctx, bin)
	if err != nil {
		t.Fatalf("Instantiate: %v", err)
	}
	return mod
}

func call(t *testing.T, mod api.Module, name string, args ...uint64) []uint64 {
	t.Helper()
	fn := mod.ExportedFunction(name)
	if fn == nil {
		t.Fatalf("export %q missing", name)
	}
	res, err := fn.Call(context.Background(), args...)
	if err != nil {
		t.Fatalf("%s: %v", name, err)
	}
	return res
}

func variable(i int, t ir.ValueType) *ir.Variable {
	return &ir.Variable{Index: i, VariableType: t}
}

func TestFillZeroClearsMemory(t *testing.T) {
	fillZero := ir.NewMethodReference(intrinsic.AllocatorClass, "fillZero", ir.Void, ir.Address, ir.Int)
	p := &ir.Program{
		Name: "fill",
		Classes: []*ir.Class{{
			Name: "app.Main",
			Methods: []*ir.Method{{
				Reference:  ir.NewMethodReference("app.Main", "clear", ir.Void, ir.Address, ir.Int),
				Variables:  []ir.Var{{Name: "a", Type: ir.Address}, {Name: "n", Type: ir.Int}},
				ExportName: "clear",
				Body:       []ir.Statement{&ir.ExprStatement{Expr: ir.Invoke(fillZero, variable(0, ir.Address), variable(1, ir.Int))}},
			}},
		}},
		Data: []*ir.DataBlock{{Offset: 16, Bytes: bytes.Repeat([]byte{0xAA}, 8)}},
	}

	bin, err := emit.Encode(lowered(t, p))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	mod := instantiate(t, bin)
	call(t, mod, "clear", 18, 4)

	got, _ := mod.Memory().Read(16, 8)
	want := []byte{0xAA, 0xAA, 0, 0, 0, 0, 0xAA, 0xAA}
	if !bytes.Equal(got, want) {
		t.Errorf("memory = %x, want %x", got, want)
	}
}

func TestBitCountUsesPopcnt(t *testing.T) {
	bitCount := ir.NewMethodReference("java.lang.Integer", "bitCount", ir.Int, ir.Int)
	p := &ir.Program{Classes: []*ir.Class{{
		Name: "app.Main",
		Methods: []*ir.Method{{
			Reference:  ir.NewMethodReference("app.Main", "bits", ir.Int, ir.Int),
			Variables:  []ir.Var{{Name: "x", Type: ir.Int}},
			ExportName: "bits",
			Body:       []ir.Statement{&ir.Return{Value: ir.Invoke(bitCount, variable(0, ir.Int))}},
		}},
	}}}

	out, err := emit.Build(lowered(t, p))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(out.Code) != 1 {
		t.Fatalf("%d bodies, want 1 (no call to bitCount)", len(out.Code))
	}
	instrs, err := wasm.DecodeInstructions(out.Code[0].Code)
	if err != nil {
		t.Fatal(err)
	}
	var popcnt bool
	for _, in := range instrs {
		if in.Opcode == wasm.OpI32Popcnt {
			popcnt = true
		}
		if in.Opcode == wasm.OpCall {
			t.Errorf("unexpected call in %v", instrs)
		}
	}
	if !popcnt {
		t.Errorf("no i32.popcnt in %v", instrs)
	}

	mod := instantiate(t, out.Encode())
	if got := call(t, mod, "bits", 0xF0F0)[0]; got != 8 {
		t.Errorf("bits(0xF0F0) = %d, want 8", got)
	}
}

func TestLoopsAndLongs(t *testing.T) {
	// sum(n) = 0 + 1 + ... + (n-1) accumulated in a long
	p := &ir.Program{Classes: []*ir.Class{{
		Name: "app.Main",
		Methods: []*ir.Method{{
			Reference:  ir.NewMethodReference("app.Main", "sum", ir.Long, ir.Int),
			Variables:  []ir.Var{{Name: "n", Type: ir.Int}, {Name: "i", Type: ir.Int}, {Name: "acc", Type: ir.Long}},
			ExportName: "sum",
			Body: []ir.Statement{
				&ir.While{
					Condition: &ir.Binary{Left: variable(1, ir.Int), Right: variable(0, ir.Int), Op: ir.Less, OperandType: ir.Int},
					Body: []ir.Statement{
						&ir.Assign{Index: 2, Value: &ir.Binary{Left: variable(2, ir.Long), Right: variable(1, ir.Int), Op: ir.Add, OperandType: ir.Long}},
						&ir.Assign{Index: 1, Value: &ir.Binary{Left: variable(1, ir.Int), Right: ir.IntConstant(1), Op: ir.Add, OperandType: ir.Int}},
					},
				},
				&ir.Return{Value: variable(2, ir.Long)},
			},
		}},
	}}}

	bin, err := emit.Encode(lowered(t, p))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if got := call(t, instantiate(t, bin), "sum", 10)[0]; got != 45 {
		t.Errorf("sum(10) = %d, want 45", got)
	}
}

func TestIndirectCall(t *testing.T) {
	seven := ir.NewMethodReference("app.Impl", "seven", ir.Int)
	p := &ir.Program{Classes: []*ir.Class{
		{Name: "app.Impl", Methods: []*ir.Method{{
			Reference: seven,
			Body:      []ir.Statement{&ir.Return{Value: ir.IntConstant(7)}},
		}}},
		{Name: "app.Main", Methods: []*ir.Method{{
			Reference:  ir.NewMethodReference("app.Main", "run", ir.Int),
			ExportName: "run",
			Body:       []ir.Statement{&ir.Return{Value: &ir.Invocation{Method: seven, Kind: ir.Indirect}}},
		}}},
	}}

	out, err := emit.Build(lowered(t, p))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(out.Tables) != 1 || len(out.Elements) != 1 {
		t.Fatalf("tables = %d elements = %d", len(out.Tables), len(out.Elements))
	}
	if got := call(t, instantiate(t, out.Encode()), "run")[0]; got != 7 {
		t.Errorf("run() = %d, want 7", got)
	}
}

func TestImportsComeFirst(t *testing.T) {
	mod := model.NewModule()
	mod.MinMemorySize = 1
	local := model.NewFunction("local")
	local.ExportName = "local"
	imported := model.NewFunction("host")
	imported.ImportModule, imported.ImportName = "env", "host"
	imported.AddParam(model.I32, "v")
	local.Body = []model.Expression{model.NewCall(imported, &model.Int32Constant{Value: 3})}
	for _, f := range []*model.Function{local, imported} {
		if err := mod.AddFunction(f); err != nil {
			t.Fatal(err)
		}
	}

	out, err := emit.Build(mod)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(out.Imports) != 1 || out.Imports[0].Name != "host" {
		t.Fatalf("imports = %+v", out.Imports)
	}
	for _, exp := range out.Exports {
		if exp.Name == "local" && exp.Idx != 1 {
			t.Errorf("local exported at index %d, want 1", exp.Idx)
		}
	}
	if err := out.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestTagsAndThrow(t *testing.T) {
	p := &ir.Program{Classes: []*ir.Class{{
		Name: "app.Main",
		Methods: []*ir.Method{{
			Reference:  ir.NewMethodReference("app.Main", "fail", ir.Void),
			ExportName: "fail",
			Body:       []ir.Statement{&ir.Throw{Value: ir.IntConstant(42)}},
		}},
	}}}

	bin, err := emit.Encode(lowered(t, p))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	out, err := wasm.ParseModuleValidate(bin)
	if err != nil {
		t.Fatalf("ParseModuleValidate: %v", err)
	}
	if len(out.Tags) != 1 {
		t.Fatalf("tags = %d, want 1", len(out.Tags))
	}
	if ft := out.Types[out.Tags[0].TypeIdx]; len(ft.Params) != 1 || ft.Params[0] != wasm.ValI32 {
		t.Errorf("tag type = %+v", ft)
	}
	instrs, _ := wasm.DecodeInstructions(out.Code[0].Code)
	if instrs[1].Opcode != wasm.OpThrow {
		t.Errorf("instructions = %v", instrs)
	}
}

func TestNameSection(t *testing.T) {
	mod := model.NewModule()
	f := model.NewFunction("app.Main.id$I$I")
	f.AddParam(model.I32, "x")
	f.Result = model.I32
	f.Body = []model.Expression{&model.GetLocal{Local: f.Locals[0]}}
	f.ExportName = "id"
	if err := mod.AddFunction(f); err != nil {
		t.Fatal(err)
	}
	if err := mod.AddCustomSection(model.NewCustomSection("producers", []byte{0})); err != nil {
		t.Fatal(err)
	}

	out, err := emit.Build(mod, emit.WithNameSection("demo"), emit.WithMemoryExport(""))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(out.Exports) != 1 {
		t.Errorf("exports = %+v, want only id", out.Exports)
	}
	if n := len(out.CustomSections); n != 2 || out.CustomSections[0].Name != "producers" {
		t.Fatalf("custom sections = %+v", out.CustomSections)
	}
	names, err := wasm.ParseNames(out.CustomSections[1].Data)
	if err != nil {
		t.Fatalf("ParseNames: %v", err)
	}
	if names.Module != "demo" || names.Functions[0] != "app.Main.id$I$I" || names.Locals[0][0] != "x" {
		t.Errorf("names = %+v", names)
	}
}

func TestSegmentOutsideMemory(t *testing.T) {
	mod := model.NewModule()
	mod.MinMemorySize = 1
	mod.Segments = []*model.MemorySegment{{Offset: 65530, Data: make([]byte, 10)}}
	_, err := emit.Build(mod)
	if !errors.Is(err, &errors.Error{Phase: errors.PhaseEmit, Kind: errors.KindInvalidInput}) {
		t.Errorf("err = %v", err)
	}
}

func TestDuplicateExport(t *testing.T) {
	mod := model.NewModule()
	for _, name := range []string{"a", "b"} {
		f := model.NewFunction(name)
		f.ExportName = "run"
		if err := mod.AddFunction(f); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := emit.Build(mod); !errors.Is(err, &errors.Error{Phase: errors.PhaseEmit, Kind: errors.KindDuplicateName}) {
		t.Errorf("err = %v", err)
	}
}

func TestForeignCallTarget(t *testing.T) {
	mod := model.NewModule()
	f := model.NewFunction("f")
	f.Body = []model.Expression{model.NewCall(model.NewFunction("detached"))}
	if err := mod.AddFunction(f); err != nil {
		t.Fatal(err)
	}
	if _, err := emit.Build(mod); !errors.Is(err, &errors.Error{Phase: errors.PhaseEmit, Kind: errors.KindNotFound}) {
		t.Errorf("err = %v", err)
	}
}
