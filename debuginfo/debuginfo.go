// Package debuginfo records which source method each generated function
// came from, as a msgpack payload in the "teavm.debug" custom section.
package debuginfo

import (
	"bytes"
	"sort"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/wippyai/wasm-backend/errors"
	"github.com/wippyai/wasm-backend/ir"
	"github.com/wippyai/wasm-backend/model"
)

// SectionName is the custom section holding the payload.
const SectionName = "teavm.debug"

// Bump when Info changes shape.
const schemaVersion uint16 = 1

// Info is the decoded section payload.
type Info struct {
	Methods []Method `msgpack:"methods"`
	Schema  uint16   `msgpack:"schema"`
}

// Method maps one function to the method it was generated from.
type Method struct {
	Function   string `msgpack:"function"`
	Class      string `msgpack:"class"`
	Name       string `msgpack:"name"`
	Descriptor string `msgpack:"descriptor"`
}

// Lookup returns the method entry for a function name.
func (i *Info) Lookup(function string) (Method, bool) {
	for _, m := range i.Methods {
		if m.Function == function {
			return m, true
		}
	}
	return Method{}, false
}

// Attach writes the payload for methods, keyed by function name, into mod.
// Functions no longer present in mod are skipped. A previous section is
// replaced.
func Attach(mod *model.Module, methods map[string]ir.MethodReference) error {
	info := Info{Schema: schemaVersion}
	for name, ref := range methods {
		if _, ok := mod.Function(name); !ok {
			continue
		}
		info.Methods = append(info.Methods, Method{
			Function:   name,
			Class:      ref.ClassName,
			Name:       ref.Name,
			Descriptor: ref.Descriptor(),
		})
	}
	sort.Slice(info.Methods, func(a, b int) bool {
		return info.Methods[a].Function < info.Methods[b].Function
	})

	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	if err := enc.Encode(&info); err != nil {
		return errors.Wrap(errors.PhaseEmit, errors.KindInvalidData, err, "encode debug info")
	}

	if prev, ok := mod.CustomSection(SectionName); ok {
		mod.RemoveCustomSection(prev)
	}
	return mod.AddCustomSection(model.NewCustomSection(SectionName, buf.Bytes()))
}

// Decode parses a section payload.
func Decode(data []byte) (*Info, error) {
	var info Info
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&info); err != nil {
		return nil, errors.Wrap(errors.PhaseEmit, errors.KindInvalidData, err, "decode debug info")
	}
	if info.Schema != schemaVersion {
		return nil, errors.New(errors.PhaseEmit, errors.KindUnsupported).
			Value(info.Schema).
			Detail("debug info schema %d", info.Schema).
			Build()
	}
	return &info, nil
}

// FromModule decodes the section of mod, if present.
func FromModule(mod *model.Module) (*Info, bool, error) {
	s, ok := mod.CustomSection(SectionName)
	if !ok {
		return nil, false, nil
	}
	info, err := Decode(s.Data)
	return info, err == nil, err
}
