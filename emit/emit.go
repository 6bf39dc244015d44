package emit

import (
	"fmt"

	"fortio.org/safecast"
	"go.uber.org/zap"

	"github.com/wippyai/wasm-backend/errors"
	"github.com/wippyai/wasm-backend/model"
	"github.com/wippyai/wasm-backend/wasm"
)

const pageSize = 65536

// emitter carries the index spaces of one Build call.
type emitter struct {
	src  *model.Module
	out  *wasm.Module
	opts options

	funcIndex map[*model.Function]uint32
	tagIndex  map[*model.Tag]uint32

	namesSection *wasm.Names
}

// Build converts mod to its binary structure. mod is not modified.
func Build(mod *model.Module, opts ...Option) (*wasm.Module, error) {
	o := options{logger: zap.NewNop(), memoryExport: DefaultMemoryExport}
	for _, opt := range opts {
		opt(&o)
	}

	e := &emitter{
		src:       mod,
		out:       &wasm.Module{},
		opts:      o,
		funcIndex: make(map[*model.Function]uint32),
		tagIndex:  make(map[*model.Tag]uint32),
	}

	steps := []func() error{
		e.functions,
		e.table,
		e.memory,
		e.tags,
		e.exports,
		e.start,
		e.code,
		e.data,
		e.customSections,
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return nil, err
		}
	}

	o.logger.Debug("module emitted",
		zap.Int("types", len(e.out.Types)),
		zap.Int("imports", len(e.out.Imports)),
		zap.Int("functions", len(e.out.Funcs)),
		zap.Int("tags", len(e.out.Tags)))
	return e.out, nil
}

// Encode builds mod and encodes it to bytes.
func Encode(mod *model.Module, opts ...Option) ([]byte, error) {
	out, err := Build(mod, opts...)
	if err != nil {
		return nil, err
	}
	if err := out.Validate(); err != nil {
		return nil, errors.Wrap(errors.PhaseEmit, errors.KindInvalidData, err, "emitted module is invalid")
	}
	return out.Encode(), nil
}

func (e *emitter) functions() error {
	var defined []*model.Function
	for f := range e.src.Functions() {
		if !f.IsImport() {
			defined = append(defined, f)
			continue
		}
		idx, err := safecast.Conv[uint32](len(e.out.Imports))
		if err != nil {
			return errors.Overflow(errors.PhaseEmit, len(e.out.Imports), "function index")
		}
		e.funcIndex[f] = idx
		e.out.Imports = append(e.out.Imports, wasm.Import{
			Module:  f.ImportModule,
			Name:    f.ImportName,
			Kind:    wasm.KindFunc,
			TypeIdx: e.typeOf(f.Signature()),
		})
	}
	for _, f := range defined {
		idx, err := safecast.Conv[uint32](len(e.out.Imports) + len(e.out.Funcs))
		if err != nil {
			return errors.Overflow(errors.PhaseEmit, len(e.out.Funcs), "function index")
		}
		e.funcIndex[f] = idx
		e.out.Funcs = append(e.out.Funcs, e.typeOf(f.Signature()))
	}
	return nil
}

func (e *emitter) typeOf(sig model.Signature) uint32 {
	ft := wasm.FuncType{Params: valTypes(sig.Params)}
	if sig.Result != model.None {
		ft.Results = []wasm.ValType{valType(sig.Result)}
	}
	return e.out.AddType(ft)
}

func (e *emitter) function(f *model.Function) (uint32, error) {
	idx, ok := e.funcIndex[f]
	if !ok {
		name := "<nil>"
		if f != nil {
			name = f.Name()
		}
		return 0, errors.New(errors.PhaseEmit, errors.KindNotFound).
			Entity("function", name).
			Detail("referenced function is not part of the module").
			Build()
	}
	return idx, nil
}

func (e *emitter) table() error {
	if len(e.src.FunctionTable) == 0 {
		return nil
	}
	size, err := safecast.Conv[uint32](len(e.src.FunctionTable))
	if err != nil {
		return errors.Overflow(errors.PhaseEmit, len(e.src.FunctionTable), "table size")
	}
	idxs := make([]uint32, 0, size)
	for _, f := range e.src.FunctionTable {
		idx, err := e.function(f)
		if err != nil {
			return err
		}
		idxs = append(idxs, idx)
	}
	e.out.Tables = []wasm.TableType{{ElemType: wasm.ValFuncRef, Limits: wasm.Limits{Min: size, Max: &size}}}
	e.out.Elements = []wasm.Element{{Offset: wasm.ConstI32Expr(0), FuncIdxs: idxs}}
	return nil
}

func (e *emitter) memory() error {
	minPages, err := safecast.Conv[uint32](e.src.MinMemorySize)
	if err != nil {
		return errors.Overflow(errors.PhaseEmit, e.src.MinMemorySize, "memory pages")
	}
	limits := wasm.Limits{Min: minPages}
	if e.src.MaxMemorySize > 0 {
		maxPages, err := safecast.Conv[uint32](e.src.MaxMemorySize)
		if err != nil {
			return errors.Overflow(errors.PhaseEmit, e.src.MaxMemorySize, "memory pages")
		}
		limits.Max = &maxPages
	}
	e.out.Memories = []wasm.MemoryType{{Limits: limits}}
	if e.opts.memoryExport != "" {
		e.out.Exports = append(e.out.Exports, wasm.Export{Name: e.opts.memoryExport, Kind: wasm.KindMemory})
	}
	return nil
}

func (e *emitter) tags() error {
	for i, tag := range e.src.Tags() {
		e.tagIndex[tag] = uint32(i)
		e.out.Tags = append(e.out.Tags, wasm.TagType{
			Attribute: wasm.TagAttributeException,
			TypeIdx:   e.typeOf(model.Signature{Params: tag.Params}),
		})
	}
	return nil
}

func (e *emitter) exports() error {
	seen := map[string]string{}
	if e.opts.memoryExport != "" {
		seen[e.opts.memoryExport] = "memory"
	}
	for f := range e.src.Functions() {
		if f.ExportName == "" {
			continue
		}
		if owner, dup := seen[f.ExportName]; dup {
			return errors.New(errors.PhaseEmit, errors.KindDuplicateName).
				Entity("export", f.ExportName).
				Detail("exported by both %s and %s", owner, f.Name()).
				Build()
		}
		seen[f.ExportName] = f.Name()
		e.out.Exports = append(e.out.Exports, wasm.Export{Name: f.ExportName, Kind: wasm.KindFunc, Idx: e.funcIndex[f]})
	}
	return nil
}

func (e *emitter) start() error {
	if e.src.StartFunction == nil {
		return nil
	}
	idx, err := e.function(e.src.StartFunction)
	if err != nil {
		return err
	}
	e.out.Start = &idx
	return nil
}

func (e *emitter) code() error {
	names := &wasm.Names{Module: e.opts.moduleName, Functions: map[uint32]string{}, Locals: map[uint32]map[uint32]string{}}
	for f := range e.src.Functions() {
		idx := e.funcIndex[f]
		names.Functions[idx] = f.Name()
		if f.IsImport() {
			continue
		}
		body, err := e.compile(f)
		if err != nil {
			return fmt.Errorf("function %s: %w", f.Name(), err)
		}
		e.out.Code = append(e.out.Code, body)

		locals := map[uint32]string{}
		for _, l := range f.Locals {
			if l.Name != "" {
				locals[uint32(l.Index())] = l.Name
			}
		}
		if len(locals) > 0 {
			names.Locals[idx] = locals
		}
	}
	if e.opts.names {
		e.namesSection = names
	}
	return nil
}

func (e *emitter) data() error {
	limit := int64(e.src.MinMemorySize) * pageSize
	for i, seg := range e.src.Segments {
		if seg.Offset < 0 || seg.End() > limit {
			return errors.New(errors.PhaseEmit, errors.KindInvalidInput).
				Entity("segment", fmt.Sprint(i)).
				Detail("segment [%d, %d) exceeds initial memory of %d bytes", seg.Offset, seg.End(), limit).
				Build()
		}
		e.out.Data = append(e.out.Data, wasm.DataSegment{Offset: wasm.ConstI32Expr(seg.Offset), Init: seg.Data})
	}
	return nil
}

func (e *emitter) customSections() error {
	for cs := range e.src.CustomSections() {
		if cs.Name() == wasm.NameSectionName && e.opts.names {
			return errors.DuplicateName("custom section", cs.Name())
		}
		e.out.CustomSections = append(e.out.CustomSections, wasm.CustomSection{Name: cs.Name(), Data: cs.Data})
	}
	if e.namesSection != nil {
		e.out.CustomSections = append(e.out.CustomSections, e.namesSection.Section())
	}
	return nil
}

func valType(t model.ValType) wasm.ValType {
	switch t {
	case model.I64:
		return wasm.ValI64
	case model.F32:
		return wasm.ValF32
	case model.F64:
		return wasm.ValF64
	default:
		return wasm.ValI32
	}
}

func valTypes(ts []model.ValType) []wasm.ValType {
	if len(ts) == 0 {
		return nil
	}
	out := make([]wasm.ValType, len(ts))
	for i, t := range ts {
		out[i] = valType(t)
	}
	return out
}
