// Package model is the in-memory form of one WebAssembly module under
// construction by the backend.
//
// The Module is the aggregate root. It owns functions, custom sections and
// exception tags, and enforces the registration rules every later stage
// relies on:
//
//   - an entity belongs to at most one module at a time;
//   - function names and custom section names are unique per module;
//   - a tag's index is its position at registration and never changes.
//
// Entities are created detached, registered with Add*, and released with
// Remove*. Removing an entity the module does not own is a no-op, so
// cleanup passes may run more than once.
//
//	m := model.NewModule()
//	f := model.NewFunction("main")
//	if err := m.AddFunction(f); err != nil {
//		return err
//	}
//	m.RemoveFunction(f) // f.Module() == nil again
//
// Name-keyed collections are exposed only through read-only accessors and
// iterators. The call table (FunctionTable) and the memory segments
// (Segments) are plain exported slices: their order is decided by layout
// passes, not by the registry.
//
// A Module is not safe for concurrent mutation. One compilation session
// builds one module on one goroutine.
package model
