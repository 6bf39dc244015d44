package model

// Tag identifies one kind of exception for throw/catch.
//
// The index is assigned by Module.AddTag and never changes afterwards.
// Tags cannot be removed, so an index obtained once stays valid for the
// life of the module.
type Tag struct {
	module *Module
	Params []ValType
	index  int
}

// NewTag creates a detached tag carrying values of the given types.
func NewTag(params ...ValType) *Tag {
	return &Tag{Params: params, index: -1}
}

// Index returns the tag's position in its module, or -1 when detached.
func (t *Tag) Index() int {
	return t.index
}

// Module returns the owning module, or nil when detached.
func (t *Tag) Module() *Module {
	return t.module
}
