package model

import (
	"iter"
	"slices"
	"strconv"

	"fortio.org/safecast"

	"github.com/wippyai/wasm-backend/errors"
)

// Module owns every entity of one low-level module.
type Module struct {
	StartFunction *Function

	functionIndex map[string]*Function
	sectionIndex  map[string]*CustomSection

	// FunctionTable is the call table for indirect calls, in slot order.
	// RemoveFunction compacts it, so selectors already lowered against a
	// later slot go stale; remove table entries before lowering indirect
	// calls, or not at all.
	FunctionTable []*Function

	// Segments is the initial memory content, in placement order.
	Segments []*MemorySegment

	functions []*Function
	sections  []*CustomSection
	tags      []*Tag

	MinMemorySize int // pages
	MaxMemorySize int // pages; 0 means no maximum
}

// NewModule creates an empty module.
func NewModule() *Module {
	return &Module{
		functionIndex: make(map[string]*Function),
		sectionIndex:  make(map[string]*CustomSection),
	}
}

// AddFunction registers f under its name, appended after all previously
// registered functions.
func (m *Module) AddFunction(f *Function) error {
	if _, exists := m.functionIndex[f.name]; exists {
		return errors.DuplicateName("function", f.name)
	}
	if f.module != nil {
		return errors.AlreadyOwned("function", f.name)
	}
	m.functions = append(m.functions, f)
	m.functionIndex[f.name] = f
	f.module = m
	return nil
}

// RemoveFunction releases f. It does nothing when f is not owned by m.
// The function is also dropped from the call table, shifting later slots
// down by one, and, if it was the start function, the start function is
// cleared.
func (m *Module) RemoveFunction(f *Function) {
	if f == nil || f.module != m {
		return
	}
	f.module = nil
	delete(m.functionIndex, f.name)
	m.functions = without(m.functions, f)
	if slices.Contains(m.FunctionTable, f) {
		m.FunctionTable = slices.DeleteFunc(slices.Clone(m.FunctionTable), func(e *Function) bool { return e == f })
	}
	if m.StartFunction == f {
		m.StartFunction = nil
	}
}

// Function returns the function registered under name.
func (m *Module) Function(name string) (*Function, bool) {
	f, ok := m.functionIndex[name]
	return f, ok
}

// Functions iterates over registered functions in registration order.
func (m *Module) Functions() iter.Seq[*Function] {
	return slices.Values(m.functions)
}

// FunctionCount returns the number of registered functions.
func (m *Module) FunctionCount() int {
	return len(m.functions)
}

// AddCustomSection registers s under its name.
func (m *Module) AddCustomSection(s *CustomSection) error {
	if _, exists := m.sectionIndex[s.name]; exists {
		return errors.DuplicateName("custom section", s.name)
	}
	if s.module != nil {
		return errors.AlreadyOwned("custom section", s.name)
	}
	m.sections = append(m.sections, s)
	m.sectionIndex[s.name] = s
	s.module = m
	return nil
}

// RemoveCustomSection releases s. It does nothing when s is not owned by m.
func (m *Module) RemoveCustomSection(s *CustomSection) {
	if s == nil || s.module != m {
		return
	}
	s.module = nil
	delete(m.sectionIndex, s.name)
	m.sections = without(m.sections, s)
}

// CustomSection returns the custom section registered under name.
func (m *Module) CustomSection(name string) (*CustomSection, bool) {
	s, ok := m.sectionIndex[name]
	return s, ok
}

// CustomSections iterates over custom sections in registration order.
func (m *Module) CustomSections() iter.Seq[*CustomSection] {
	return slices.Values(m.sections)
}

// CustomSectionCount returns the number of registered custom sections.
func (m *Module) CustomSectionCount() int {
	return len(m.sections)
}

// AddTag appends t and assigns its index. Tags cannot be removed.
func (m *Module) AddTag(t *Tag) error {
	if t.module != nil {
		return errors.AlreadyOwned("tag", "#"+strconv.Itoa(t.index))
	}
	idx, err := safecast.Conv[int32](len(m.tags))
	if err != nil {
		return errors.Overflow(errors.PhaseRegister, len(m.tags), "tag index")
	}
	m.tags = append(m.tags, t)
	t.module = m
	t.index = int(idx)
	return nil
}

// Tag returns the tag at index i.
func (m *Module) Tag(i int) (*Tag, bool) {
	if i < 0 || i >= len(m.tags) {
		return nil, false
	}
	return m.tags[i], true
}

// Tags iterates over tags in index order.
func (m *Module) Tags() iter.Seq2[int, *Tag] {
	return slices.All(m.tags)
}

// TagCount returns the number of registered tags.
func (m *Module) TagCount() int {
	return len(m.tags)
}

// without returns s minus e in a fresh backing array, leaving iterators
// over the previous slice undisturbed.
func without[T comparable](s []T, e T) []T {
	i := slices.Index(s, e)
	if i < 0 {
		return s
	}
	out := make([]T, 0, len(s)-1)
	out = append(out, s[:i]...)
	return append(out, s[i+1:]...)
}
