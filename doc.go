// Package wasmbackend compiles object-oriented IR programs to WebAssembly.
//
// # Architecture Overview
//
//	wasmbackend/         Root package with the one-call Compile helper
//	├── ir/              Front-end IR: classes, methods, statements
//	├── frontend/        HCL program files to ir
//	├── intrinsic/       Intrinsic registry and the built-in intrinsics
//	├── support/         Hand-written runtime support functions
//	├── lower/           Compilation session: ir to model
//	├── model/           Module registry and expression tree
//	├── dce/             Dead function elimination
//	├── debuginfo/       Method mapping custom section
//	├── emit/            model to binary module
//	├── wasm/            Binary module form, encoder and decoder
//	├── driver/          Whole-session orchestration and verification
//	├── config/          TOML configuration
//	├── errors/          Structured error types
//	└── cmd/wasmc/       Command line tool
//
// # Quick Start
//
//	bin, err := wasmbackend.Compile(ctx, src, "main.hcl", config.Default())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile("main.wasm", bin, 0o644)
//
// # Intrinsics
//
// Calls to recognized methods are replaced by inline instruction
// sequences instead of ordinary calls. Register additional intrinsics
// with driver.WithIntrinsic or directly on an intrinsic.Registry before
// lowering starts; the registry is sealed when a session begins.
//
// # Thread Safety
//
// A lowering session and the module it builds belong to one goroutine.
// Independent programs can be compiled in parallel with
// driver.Driver.CompileAll.
package wasmbackend
