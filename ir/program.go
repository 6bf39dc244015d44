package ir

// Var declares a method variable.
type Var struct {
	Name string
	Type ValueType
}

// Method is a method with its body. The first len(Reference.Params)
// Variables are the parameters.
type Method struct {
	Reference MethodReference
	Variables []Var
	Body      []Statement

	// Native methods have no body. Unless an intrinsic claims them, they
	// are imported from ImportModule under the method name.
	Native       bool
	ImportModule string

	ExportName string
	Start      bool

	// Virtual methods are reached through the call table.
	Virtual bool
}

// Class groups methods under a fully qualified name.
type Class struct {
	Name    string
	Methods []*Method
}

// Method returns the class's method named name, or nil.
func (c *Class) Method(name string) *Method {
	for _, m := range c.Methods {
		if m.Reference.Name == name {
			return m
		}
	}
	return nil
}

// DataBlock is initial memory content at a fixed address.
type DataBlock struct {
	Bytes  []byte
	Offset int32
}

// Program is the complete input for one module.
type Program struct {
	Name    string
	Classes []*Class
	Data    []*DataBlock
}

// Class returns the class with the given fully qualified name, or nil.
func (p *Program) Class(name string) *Class {
	for _, c := range p.Classes {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// Method resolves a reference to a method of the program, or nil.
func (p *Program) Method(ref MethodReference) *Method {
	c := p.Class(ref.ClassName)
	if c == nil {
		return nil
	}
	for _, m := range c.Methods {
		if m.Reference.Equal(ref) {
			return m
		}
	}
	return nil
}

// Methods returns every method in class order.
func (p *Program) Methods() []*Method {
	var out []*Method
	for _, c := range p.Classes {
		out = append(out, c.Methods...)
	}
	return out
}
