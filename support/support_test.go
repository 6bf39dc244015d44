package support

import (
	"testing"

	"github.com/wippyai/wasm-backend/model"
)

func TestNames(t *testing.T) {
	if got := FillZero.Name(); got != "org.teavm.backend.wasm.WasmRuntime.fillZero$AI$V" {
		t.Errorf("FillZero.Name = %q", got)
	}
	seen := map[string]bool{}
	for _, s := range All() {
		if seen[s.Name()] {
			t.Errorf("duplicate support name %q", s.Name())
		}
		seen[s.Name()] = true
	}
}

func TestBuild_SignatureMatchesMethod(t *testing.T) {
	for _, s := range All() {
		f := s.Build(s.Name())
		if f.Name() != s.Name() {
			t.Errorf("%s: built name %q", s.Name(), f.Name())
		}
		if f.Module() != nil {
			t.Errorf("%s: built function must be detached", s.Name())
		}
		if len(f.Params) != len(s.Method.Params) {
			t.Errorf("%s: %d params, method has %d", s.Name(), len(f.Params), len(s.Method.Params))
		}
		if f.Result != model.None {
			t.Errorf("%s: result %v, want none", s.Name(), f.Result)
		}
		if len(f.Body) == 0 {
			t.Errorf("%s: empty body", s.Name())
		}
	}
}

func TestFillZero_LoopShape(t *testing.T) {
	f := FillZero.Build("fz")

	var stores, loops int
	model.WalkBody(f.Body, func(e model.Expression) bool {
		switch n := e.(type) {
		case *model.Store:
			stores++
			if n.Width != 1 {
				t.Errorf("store width = %d, want 1", n.Width)
			}
		case *model.Block:
			if n.Loop {
				loops++
			}
		}
		return true
	})
	if stores != 1 || loops != 1 {
		t.Errorf("stores=%d loops=%d", stores, loops)
	}
}
