package intrinsic

import (
	"github.com/wippyai/wasm-backend/errors"
	"github.com/wippyai/wasm-backend/ir"
)

type entry struct {
	intrinsic Intrinsic
	name      string
}

// Registry is an ordered table of intrinsics.
//
// Resolution scans in registration order and the first match wins. When
// two intrinsics recognize the same target the earlier one silently takes
// it; keeping claims disjoint is the intrinsic author's job.
type Registry struct {
	entries []entry
	sealed  bool
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register appends an intrinsic. The name is used in logs and listings.
// It fails once the registry is sealed.
func (r *Registry) Register(name string, in Intrinsic) error {
	if r.sealed {
		return errors.Sealed(name)
	}
	r.entries = append(r.entries, entry{intrinsic: in, name: name})
	return nil
}

// Seal forbids further registration. Lowering sessions seal the registry
// they use.
func (r *Registry) Seal() {
	r.sealed = true
}

// Sealed reports whether Seal was called.
func (r *Registry) Sealed() bool {
	return r.sealed
}

// Resolve returns the first intrinsic recognizing method. ok is false when
// none does; the call then gets ordinary lowering.
func (r *Registry) Resolve(method ir.MethodReference) (in Intrinsic, ok bool) {
	in, _, ok = r.ResolveNamed(method)
	return in, ok
}

// ResolveNamed is Resolve that also returns the registration name.
func (r *Registry) ResolveNamed(method ir.MethodReference) (Intrinsic, string, bool) {
	for _, e := range r.entries {
		if e.intrinsic.Recognizes(method) {
			return e.intrinsic, e.name, true
		}
	}
	return nil, "", false
}

// Names returns registration names in order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.entries))
	for i, e := range r.entries {
		names[i] = e.name
	}
	return names
}

// Len returns the number of registered intrinsics.
func (r *Registry) Len() int {
	return len(r.entries)
}
