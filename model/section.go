package model

// CustomSection is an opaque named blob attached to a module, such as
// debug metadata.
type CustomSection struct {
	module *Module
	Data   []byte
	name   string
}

// NewCustomSection creates a detached custom section.
func NewCustomSection(name string, data []byte) *CustomSection {
	return &CustomSection{name: name, Data: data}
}

// Name returns the section name.
func (s *CustomSection) Name() string {
	return s.name
}

// Module returns the owning module, or nil when detached.
func (s *CustomSection) Module() *Module {
	return s.module
}
