package model

// Function is a named unit of code. The name is fixed at creation.
//
// A function with a non-empty ImportName has no body; it is provided by
// the host under ImportModule/ImportName.
type Function struct {
	module *Module

	Params []ValType
	Locals []*Local // parameters first, in order
	Body   []Expression
	Result ValType

	ExportName   string
	ImportModule string
	ImportName   string

	name string
}

// NewFunction creates a detached function.
func NewFunction(name string) *Function {
	return &Function{name: name}
}

// Name returns the function's name.
func (f *Function) Name() string {
	return f.name
}

// Module returns the owning module, or nil when detached. The reference is
// for ownership checks and lookups only.
func (f *Function) Module() *Module {
	return f.module
}

// Signature returns the function's parameter and result types.
func (f *Function) Signature() Signature {
	return Signature{Params: f.Params, Result: f.Result}
}

// IsImport reports whether the function is provided by the host.
func (f *Function) IsImport() bool {
	return f.ImportName != ""
}

// AddParam appends a parameter and its backing local.
// Parameters must be added before any non-parameter local.
func (f *Function) AddParam(t ValType, name string) *Local {
	f.Params = append(f.Params, t)
	return f.AddLocal(t, name)
}

// AddLocal appends a local variable and returns it with its index set.
func (f *Function) AddLocal(t ValType, name string) *Local {
	l := &Local{Type: t, Name: name, index: len(f.Locals)}
	f.Locals = append(f.Locals, l)
	return l
}

// Local is a function-local variable or parameter.
type Local struct {
	Name  string
	Type  ValType
	index int
}

// Index returns the local's position in its function.
func (l *Local) Index() int {
	return l.index
}
