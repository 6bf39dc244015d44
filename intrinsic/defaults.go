package intrinsic

import "slices"

// Built-in intrinsic names.
const (
	NameAllocator = "allocator"
	NameAddress   = "address"
	NameNumeric   = "numeric"
	NameMemory    = "memory"
)

// Builtins returns the built-in intrinsic names in registration order.
func Builtins() []string {
	return []string{NameAllocator, NameAddress, NameNumeric, NameMemory}
}

func builtin(name string) Intrinsic {
	switch name {
	case NameAllocator:
		return Allocator{}
	case NameAddress:
		return Address{}
	case NameNumeric:
		return Numeric{}
	case NameMemory:
		return Memory{}
	}
	return nil
}

// Defaults returns an unsealed registry holding every built-in intrinsic
// except those named in disabled. Callers may register more before
// lowering starts.
func Defaults(disabled ...string) *Registry {
	r := NewRegistry()
	for _, name := range Builtins() {
		if slices.Contains(disabled, name) {
			continue
		}
		_ = r.Register(name, builtin(name))
	}
	return r
}
