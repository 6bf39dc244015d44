// Package mangling derives module-level function names from method
// references. Every stage that needs the function of a method goes
// through Method so the names agree.
package mangling

import (
	"strings"

	"github.com/wippyai/wasm-backend/ir"
)

// Method returns the function name for ref, e.g.
// "org.teavm.runtime.Allocator.fillZero$AI$V". The result uses only
// characters valid in text-format identifiers.
func Method(ref ir.MethodReference) string {
	d := ref.Descriptor()
	params := d[1:strings.IndexByte(d, ')')]
	result := d[len(d)-1:]

	var b strings.Builder
	b.Grow(len(ref.ClassName) + len(ref.Name) + len(d) + 2)
	b.WriteString(ref.ClassName)
	b.WriteByte('.')
	b.WriteString(ref.Name)
	b.WriteByte('$')
	b.WriteString(params)
	b.WriteByte('$')
	b.WriteString(result)
	return b.String()
}

// Demangle splits a name produced by Method into class, member and
// descriptor. ok is false for names Method cannot have produced.
func Demangle(name string) (class, member, descriptor string, ok bool) {
	qualified, rest, found := strings.Cut(name, "$")
	if !found {
		return "", "", "", false
	}
	params, result, found := strings.Cut(rest, "$")
	if !found || len(result) != 1 {
		return "", "", "", false
	}
	dot := strings.LastIndexByte(qualified, '.')
	if dot <= 0 || dot == len(qualified)-1 {
		return "", "", "", false
	}
	return qualified[:dot], qualified[dot+1:], "(" + params + ")" + result, true
}
