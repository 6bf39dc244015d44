// Package emit turns a model.Module into a WebAssembly binary.
//
// Build assigns index spaces (imported functions first, then defined
// functions in module order), deduplicates function types, and compiles
// every body from its expression tree into stack code. The function table
// becomes a funcref table filled by one active element segment; memory
// segments become active data segments; tags keep their module indices.
// Custom sections are appended in module order, followed by an optional
// name section.
package emit
