package wasm

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/wippyai/wasm-backend/wasm/internal/binary"
)

// Parsing errors returned by ParseModule.
var (
	ErrInvalidMagic   = errors.New("invalid wasm magic number")
	ErrInvalidVersion = errors.New("invalid wasm version")
	ErrUnsupported    = errors.New("unsupported encoding")
)

// canonical section order; the tag section sits between memory and global.
var sectionRank = map[byte]int{
	SectionType:      1,
	SectionImport:    2,
	SectionFunction:  3,
	SectionTable:     4,
	SectionMemory:    5,
	SectionTag:       6,
	SectionGlobal:    7,
	SectionExport:    8,
	SectionStart:     9,
	SectionElement:   10,
	SectionDataCount: 11,
	SectionCode:      12,
	SectionData:      13,
}

// ParseModule decodes the subset of the binary format that Encode
// produces: function imports, a funcref table, one memory, tags, active
// segments and custom sections.
func ParseModule(data []byte) (*Module, error) {
	r := binary.NewReader(bytes.NewReader(data))

	magic, err := r.ReadU32LE()
	if err != nil {
		return nil, r.WrapError("header", err)
	}
	if magic != Magic {
		return nil, ErrInvalidMagic
	}
	version, err := r.ReadU32LE()
	if err != nil {
		return nil, r.WrapError("header", err)
	}
	if version != Version {
		return nil, ErrInvalidVersion
	}

	m := &Module{}
	last := 0
	for {
		id, err := r.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return m, nil
			}
			return nil, r.WrapError("section header", err)
		}

		if id != SectionCustom {
			rank, ok := sectionRank[id]
			if !ok {
				return nil, fmt.Errorf("unknown section ID: 0x%02x", id)
			}
			if rank <= last {
				return nil, fmt.Errorf("section %d appears out of order", id)
			}
			last = rank
		}

		size, err := r.ReadU32()
		if err != nil {
			return nil, r.WrapError("section size", err)
		}
		body, err := r.ReadBytes(int(size))
		if err != nil {
			return nil, r.WrapError("section data", err)
		}

		if err := parseSection(binary.NewReader(bytes.NewReader(body)), id, body, m); err != nil {
			return nil, fmt.Errorf("section %d: %w", id, err)
		}
	}
}

func parseSection(r *binary.Reader, id byte, body []byte, m *Module) error {
	switch id {
	case SectionCustom:
		name, err := r.ReadName()
		if err != nil {
			return err
		}
		m.CustomSections = append(m.CustomSections, CustomSection{Name: name, Data: body[r.Position():]})
		return nil
	case SectionStart:
		idx, err := r.ReadU32()
		m.Start = &idx
		return err
	case SectionDataCount:
		n, err := r.ReadU32()
		m.DataCount = &n
		return err
	}

	return readVector(r, func() error {
		switch id {
		case SectionType:
			ft, err := readFuncType(r)
			m.Types = append(m.Types, ft)
			return err
		case SectionImport:
			imp, err := readImport(r)
			m.Imports = append(m.Imports, imp)
			return err
		case SectionFunction:
			idx, err := r.ReadU32()
			m.Funcs = append(m.Funcs, idx)
			return err
		case SectionTable:
			elem, err := r.ReadByte()
			if err != nil {
				return err
			}
			limits, err := readLimits(r)
			m.Tables = append(m.Tables, TableType{ElemType: ValType(elem), Limits: limits})
			return err
		case SectionMemory:
			limits, err := readLimits(r)
			m.Memories = append(m.Memories, MemoryType{Limits: limits})
			return err
		case SectionTag:
			attr, err := r.ReadByte()
			if err != nil {
				return err
			}
			idx, err := r.ReadU32()
			m.Tags = append(m.Tags, TagType{Attribute: attr, TypeIdx: idx})
			return err
		case SectionExport:
			exp, err := readExport(r)
			m.Exports = append(m.Exports, exp)
			return err
		case SectionElement:
			elem, err := readElement(r)
			m.Elements = append(m.Elements, elem)
			return err
		case SectionCode:
			fb, err := readFuncBody(r)
			m.Code = append(m.Code, fb)
			return err
		case SectionData:
			seg, err := readDataSegment(r)
			m.Data = append(m.Data, seg)
			return err
		}
		return ErrUnsupported
	})
}

func readVector(r *binary.Reader, item func() error) error {
	n, err := r.ReadU32()
	if err != nil {
		return err
	}
	for i := uint32(0); i < n; i++ {
		if err := item(); err != nil {
			return fmt.Errorf("entry %d: %w", i, err)
		}
	}
	return nil
}

func readValTypes(r *binary.Reader) ([]ValType, error) {
	var out []ValType
	err := readVector(r, func() error {
		b, err := r.ReadByte()
		out = append(out, ValType(b))
		return err
	})
	return out, err
}

func readFuncType(r *binary.Reader) (FuncType, error) {
	form, err := r.ReadByte()
	if err != nil {
		return FuncType{}, err
	}
	if form != FuncTypeByte {
		return FuncType{}, fmt.Errorf("type form 0x%02x: %w", form, ErrUnsupported)
	}
	params, err := readValTypes(r)
	if err != nil {
		return FuncType{}, err
	}
	results, err := readValTypes(r)
	return FuncType{Params: params, Results: results}, err
}

func readImport(r *binary.Reader) (Import, error) {
	var imp Import
	var err error
	if imp.Module, err = r.ReadName(); err != nil {
		return imp, err
	}
	if imp.Name, err = r.ReadName(); err != nil {
		return imp, err
	}
	if imp.Kind, err = r.ReadByte(); err != nil {
		return imp, err
	}
	if imp.Kind != KindFunc {
		return imp, fmt.Errorf("import kind %d: %w", imp.Kind, ErrUnsupported)
	}
	imp.TypeIdx, err = r.ReadU32()
	return imp, err
}

func readExport(r *binary.Reader) (Export, error) {
	var exp Export
	var err error
	if exp.Name, err = r.ReadName(); err != nil {
		return exp, err
	}
	if exp.Kind, err = r.ReadByte(); err != nil {
		return exp, err
	}
	exp.Idx, err = r.ReadU32()
	return exp, err
}

func readLimits(r *binary.Reader) (Limits, error) {
	flags, err := r.ReadByte()
	if err != nil {
		return Limits{}, err
	}
	var l Limits
	if l.Min, err = r.ReadU32(); err != nil {
		return l, err
	}
	switch flags {
	case LimitsNoMax:
		return l, nil
	case LimitsHasMax:
		hi, err := r.ReadU32()
		l.Max = &hi
		return l, err
	}
	return l, fmt.Errorf("limits flags 0x%02x: %w", flags, ErrUnsupported)
}

// readConstExpr reads an init expression up to and including end.
func readConstExpr(r *binary.Reader) ([]byte, error) {
	w := binary.NewWriter()
	for {
		op, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		imm, err := decodeImmediate(r, op)
		if err != nil {
			return nil, err
		}
		encodeInstruction(w, &Instruction{Opcode: op, Imm: imm})
		if op == OpEnd {
			return w.Bytes(), nil
		}
	}
}

func readElement(r *binary.Reader) (Element, error) {
	flags, err := r.ReadU32()
	if err != nil {
		return Element{}, err
	}
	if flags != 0 {
		return Element{}, fmt.Errorf("element flags %d: %w", flags, ErrUnsupported)
	}
	offset, err := readConstExpr(r)
	if err != nil {
		return Element{}, err
	}
	elem := Element{Offset: offset}
	err = readVector(r, func() error {
		idx, err := r.ReadU32()
		elem.FuncIdxs = append(elem.FuncIdxs, idx)
		return err
	})
	return elem, err
}

func readFuncBody(r *binary.Reader) (FuncBody, error) {
	size, err := r.ReadU32()
	if err != nil {
		return FuncBody{}, err
	}
	start := r.Position()
	var fb FuncBody
	err = readVector(r, func() error {
		count, err := r.ReadU32()
		if err != nil {
			return err
		}
		t, err := r.ReadByte()
		fb.Locals = append(fb.Locals, LocalEntry{Count: count, ValType: ValType(t)})
		return err
	})
	if err != nil {
		return fb, err
	}
	remaining := int(size) - (r.Position() - start)
	fb.Code, err = r.ReadBytes(remaining)
	return fb, err
}

func readDataSegment(r *binary.Reader) (DataSegment, error) {
	flags, err := r.ReadU32()
	if err != nil {
		return DataSegment{}, err
	}
	if flags != 0 {
		return DataSegment{}, fmt.Errorf("data flags %d: %w", flags, ErrUnsupported)
	}
	offset, err := readConstExpr(r)
	if err != nil {
		return DataSegment{}, err
	}
	n, err := r.ReadU32()
	if err != nil {
		return DataSegment{}, err
	}
	payload, err := r.ReadBytes(int(n))
	return DataSegment{Offset: offset, Init: payload}, err
}
