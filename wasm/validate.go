package wasm

import "fmt"

// Validate checks index spaces and section agreement. It does not
// type-check code bodies.
func (m *Module) Validate() error {
	checks := []func() error{
		m.validateTypeIndices,
		m.validateFunctionIndices,
		m.validateExports,
		m.validateStart,
		m.validateCodeCount,
		m.validateMemoryLimits,
		m.validateDataCount,
	}
	for _, check := range checks {
		if err := check(); err != nil {
			return err
		}
	}
	return nil
}

// ParseModuleValidate parses a binary and validates it.
func ParseModuleValidate(data []byte) (*Module, error) {
	m, err := ParseModule(data)
	if err != nil {
		return nil, err
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Module) validateTypeIndices() error {
	numTypes := uint32(len(m.Types))
	for i, typeIdx := range m.Funcs {
		if typeIdx >= numTypes {
			return fmt.Errorf("function %d references invalid type index %d", i, typeIdx)
		}
	}
	for i, imp := range m.Imports {
		if imp.Kind == KindFunc && imp.TypeIdx >= numTypes {
			return fmt.Errorf("import %d (%s.%s) references invalid type index %d", i, imp.Module, imp.Name, imp.TypeIdx)
		}
	}
	for i, tag := range m.Tags {
		if tag.TypeIdx >= numTypes {
			return fmt.Errorf("tag %d references invalid type index %d", i, tag.TypeIdx)
		}
		if ft := m.Types[tag.TypeIdx]; len(ft.Results) != 0 {
			return fmt.Errorf("tag %d type has results", i)
		}
	}
	return nil
}

func (m *Module) validateFunctionIndices() error {
	numFuncs := uint32(m.NumImportedFuncs() + len(m.Funcs))
	for i, elem := range m.Elements {
		if len(m.Tables) == 0 {
			return fmt.Errorf("element %d without a table", i)
		}
		for j, funcIdx := range elem.FuncIdxs {
			if funcIdx >= numFuncs {
				return fmt.Errorf("element %d, entry %d references invalid function index %d", i, j, funcIdx)
			}
		}
	}
	return nil
}

func (m *Module) validateExports() error {
	seen := make(map[string]bool)
	limits := map[byte]int{
		KindFunc:   m.NumImportedFuncs() + len(m.Funcs),
		KindTable:  len(m.Tables),
		KindMemory: len(m.Memories),
		KindTag:    len(m.Tags),
	}
	for i, exp := range m.Exports {
		if seen[exp.Name] {
			return fmt.Errorf("duplicate export name %q at index %d", exp.Name, i)
		}
		seen[exp.Name] = true
		if int(exp.Idx) >= limits[exp.Kind] {
			return fmt.Errorf("export %d (%s) references invalid index %d", i, exp.Name, exp.Idx)
		}
	}
	return nil
}

func (m *Module) validateStart() error {
	if m.Start == nil {
		return nil
	}
	ft := m.GetFuncType(*m.Start)
	if ft == nil {
		return fmt.Errorf("start function %d has no type", *m.Start)
	}
	if len(ft.Params) != 0 || len(ft.Results) != 0 {
		return fmt.Errorf("start function must have signature [] -> [], got [%d params] -> [%d results]",
			len(ft.Params), len(ft.Results))
	}
	return nil
}

func (m *Module) validateCodeCount() error {
	if len(m.Code) != len(m.Funcs) {
		return fmt.Errorf("code section has %d entries but function section has %d",
			len(m.Code), len(m.Funcs))
	}
	return nil
}

func (m *Module) validateMemoryLimits() error {
	if len(m.Memories) > 1 {
		return fmt.Errorf("%d memories declared, at most one supported", len(m.Memories))
	}
	for i, mem := range m.Memories {
		if mem.Limits.Min > MemoryMaxPages {
			return fmt.Errorf("memory %d: min pages %d exceeds maximum %d", i, mem.Limits.Min, MemoryMaxPages)
		}
		if mem.Limits.Max == nil {
			continue
		}
		if *mem.Limits.Max > MemoryMaxPages {
			return fmt.Errorf("memory %d: max pages %d exceeds maximum %d", i, *mem.Limits.Max, MemoryMaxPages)
		}
		if *mem.Limits.Max < mem.Limits.Min {
			return fmt.Errorf("memory %d: max pages %d below min %d", i, *mem.Limits.Max, mem.Limits.Min)
		}
	}
	if len(m.Data) > 0 && len(m.Memories) == 0 {
		return fmt.Errorf("data segments without a memory")
	}
	return nil
}

func (m *Module) validateDataCount() error {
	if m.DataCount != nil && *m.DataCount != uint32(len(m.Data)) {
		return fmt.Errorf("data count section declares %d segments, but data section has %d",
			*m.DataCount, len(m.Data))
	}
	return nil
}
