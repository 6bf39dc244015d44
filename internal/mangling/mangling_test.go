package mangling

import (
	"testing"

	"github.com/wippyai/wasm-backend/ir"
)

func TestMethod(t *testing.T) {
	tests := []struct {
		ref  ir.MethodReference
		want string
	}{
		{ir.NewMethodReference("org.teavm.runtime.Allocator", "fillZero", ir.Void, ir.Address, ir.Int), "org.teavm.runtime.Allocator.fillZero$AI$V"},
		{ir.NewMethodReference("app.Main", "run", ir.Int), "app.Main.run$$I"},
		{ir.NewMethodReference("Plain", "f", ir.Double, ir.Double, ir.Long), "Plain.f$DJ$D"},
	}

	for _, tt := range tests {
		if got := Method(tt.ref); got != tt.want {
			t.Errorf("Method(%s) = %q, want %q", tt.ref, got, tt.want)
		}
	}
}

func TestMethod_DistinctOverloads(t *testing.T) {
	a := Method(ir.NewMethodReference("C", "m", ir.Int, ir.Int))
	b := Method(ir.NewMethodReference("C", "m", ir.Int, ir.Long))
	if a == b {
		t.Errorf("overloads must mangle differently, both %q", a)
	}
}

func TestDemangle(t *testing.T) {
	ref := ir.NewMethodReference("org.teavm.runtime.Allocator", "fillZero", ir.Void, ir.Address, ir.Int)
	class, member, desc, ok := Demangle(Method(ref))
	if !ok {
		t.Fatal("Demangle failed")
	}
	if class != ref.ClassName || member != ref.Name || desc != ref.Descriptor() {
		t.Errorf("Demangle = %q %q %q", class, member, desc)
	}

	for _, bad := range []string{"main", "a$b", "nodot$$V", "C.$$V", "C.m$I$VV"} {
		if _, _, _, ok := Demangle(bad); ok {
			t.Errorf("Demangle(%q) should fail", bad)
		}
	}
}
