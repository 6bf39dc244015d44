package wasm

import (
	"bytes"
	"sort"

	"github.com/wippyai/wasm-backend/wasm/internal/binary"
)

// NameSectionName is the custom section carrying debug names.
const NameSectionName = "name"

// Name section subsection IDs.
const (
	nameSubModule    byte = 0
	nameSubFunctions byte = 1
	nameSubLocals    byte = 2
)

// Names holds the content of a name section. Maps are keyed by function
// and local index.
type Names struct {
	Module    string
	Functions map[uint32]string
	Locals    map[uint32]map[uint32]string
}

// Section encodes n as a "name" custom section.
func (n *Names) Section() CustomSection {
	w := binary.NewWriter()
	if n.Module != "" {
		sub := binary.NewWriter()
		sub.WriteName(n.Module)
		writeSubsection(w, nameSubModule, sub.Bytes())
	}
	if len(n.Functions) > 0 {
		sub := binary.NewWriter()
		writeNameMap(sub, n.Functions)
		writeSubsection(w, nameSubFunctions, sub.Bytes())
	}
	if len(n.Locals) > 0 {
		sub := binary.NewWriter()
		keys := sortedKeys(n.Locals)
		sub.WriteU32(uint32(len(keys)))
		for _, fn := range keys {
			sub.WriteU32(fn)
			writeNameMap(sub, n.Locals[fn])
		}
		writeSubsection(w, nameSubLocals, sub.Bytes())
	}
	return CustomSection{Name: NameSectionName, Data: w.Bytes()}
}

// ParseNames decodes the payload of a name section. Unknown subsections
// are skipped.
func ParseNames(data []byte) (*Names, error) {
	n := &Names{Functions: map[uint32]string{}, Locals: map[uint32]map[uint32]string{}}
	r := binary.NewReader(bytes.NewReader(data))
	for r.Position() < len(data) {
		id, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		size, err := r.ReadU32()
		if err != nil {
			return nil, err
		}
		body, err := r.ReadBytes(int(size))
		if err != nil {
			return nil, r.WrapError("name", err)
		}
		sr := binary.NewReader(bytes.NewReader(body))
		switch id {
		case nameSubModule:
			if n.Module, err = sr.ReadName(); err != nil {
				return nil, err
			}
		case nameSubFunctions:
			if n.Functions, err = readNameMap(sr); err != nil {
				return nil, err
			}
		case nameSubLocals:
			err = readVector(sr, func() error {
				fn, err := sr.ReadU32()
				if err != nil {
					return err
				}
				n.Locals[fn], err = readNameMap(sr)
				return err
			})
			if err != nil {
				return nil, err
			}
		}
	}
	return n, nil
}

func writeSubsection(w *binary.Writer, id byte, data []byte) {
	w.Byte(id)
	w.WriteU32(uint32(len(data)))
	w.WriteBytes(data)
}

// Name maps are written in increasing index order.
func writeNameMap(w *binary.Writer, m map[uint32]string) {
	keys := sortedKeys(m)
	w.WriteU32(uint32(len(keys)))
	for _, k := range keys {
		w.WriteU32(k)
		w.WriteName(m[k])
	}
}

func readNameMap(r *binary.Reader) (map[uint32]string, error) {
	out := map[uint32]string{}
	err := readVector(r, func() error {
		idx, err := r.ReadU32()
		if err != nil {
			return err
		}
		out[idx], err = r.ReadName()
		return err
	})
	return out, err
}

func sortedKeys[V any](m map[uint32]V) []uint32 {
	keys := make([]uint32, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
