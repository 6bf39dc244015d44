// Package lower turns an ir.Program into a model.Module.
//
// A Generator is one compilation session: it owns the module under
// construction and everything needed to build it, so independent sessions
// never share state. Lowering starts from root methods (exports, the start
// method, or every method with WithAllMethods) and declares callees as
// calls to them are met, generating each body once.
//
// Every invocation is first offered to the intrinsic registry. A claiming
// intrinsic builds the replacement expression through a Context bound to
// the method being lowered; otherwise the callee's function is looked up or
// declared in the module and an ordinary call is built.
//
// An error aborts the session. The module is then unusable and must be
// discarded.
package lower
