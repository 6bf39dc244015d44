// Package wasm encodes and decodes WebAssembly binary modules.
//
// It covers the part of the binary format the backend produces: the MVP
// sections, bulk memory instructions, the exception handling tag section
// and throw, and custom sections. Modules are plain structs with one
// field per section, indices already resolved.
//
// # Encoding
//
//	m := &wasm.Module{}
//	typeIdx := m.AddType(wasm.FuncType{Results: []wasm.ValType{wasm.ValI32}})
//	m.Funcs = append(m.Funcs, typeIdx)
//	m.Code = append(m.Code, wasm.FuncBody{Code: wasm.EncodeInstructions([]wasm.Instruction{
//		{Opcode: wasm.OpI32Const, Imm: wasm.I32Imm{Value: 42}},
//		{Opcode: wasm.OpEnd},
//	})})
//	m.Exports = append(m.Exports, wasm.Export{Name: "answer", Kind: wasm.KindFunc})
//	bin := m.Encode()
//
// # Decoding
//
// ParseModule reads such binaries back, and DecodeInstructions turns a
// code body into instructions for listing:
//
//	m, err := wasm.ParseModuleValidate(bin)
//	instrs, err := wasm.DecodeInstructions(m.Code[0].Code)
//	for _, in := range instrs {
//		fmt.Println(in)
//	}
package wasm
