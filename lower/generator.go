package lower

import (
	"fmt"
	"maps"

	"go.uber.org/zap"

	"github.com/wippyai/wasm-backend/errors"
	"github.com/wippyai/wasm-backend/internal/mangling"
	"github.com/wippyai/wasm-backend/intrinsic"
	"github.com/wippyai/wasm-backend/ir"
	"github.com/wippyai/wasm-backend/model"
	"github.com/wippyai/wasm-backend/support"
)

type pending struct {
	method *ir.Method
	fn     *model.Function
}

// Generator is a single compilation session producing one module.
// It is not safe for concurrent use.
type Generator struct {
	program  *ir.Program
	module   *model.Module
	registry *intrinsic.Registry
	logger   *zap.Logger

	queue        []pending
	methods      map[string]ir.MethodReference
	tableSlots   map[*model.Function]int32
	exceptionTag *model.Tag

	importModule string
	allMethods   bool
	done         bool
}

// New creates a session for program. The registry is sealed: intrinsics
// cannot be added or removed once lowering may have consulted it.
func New(program *ir.Program, registry *intrinsic.Registry, opts ...Option) *Generator {
	if registry == nil {
		registry = intrinsic.NewRegistry()
	}
	registry.Seal()

	g := &Generator{
		program:      program,
		module:       model.NewModule(),
		registry:     registry,
		logger:       Logger(),
		methods:      make(map[string]ir.MethodReference),
		tableSlots:   make(map[*model.Function]int32),
		importModule: DefaultImportModule,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Module returns the module under construction.
func (g *Generator) Module() *model.Module {
	return g.module
}

// Methods maps every declared function name to the method it implements,
// including support functions registered by intrinsics. The map is a copy.
func (g *Generator) Methods() map[string]ir.MethodReference {
	return maps.Clone(g.methods)
}

// Generate lowers the program. It may be called once.
func (g *Generator) Generate() (*model.Module, error) {
	if g.done {
		return nil, errors.InvalidInput(errors.PhaseLower, "session already generated")
	}
	g.done = true

	for _, d := range g.program.Data {
		g.module.Segments = append(g.module.Segments, &model.MemorySegment{Offset: d.Offset, Data: d.Bytes})
	}

	for _, m := range g.program.Methods() {
		if !g.allMethods && m.ExportName == "" && !m.Start {
			continue
		}
		if _, claimed := g.registry.Resolve(m.Reference); claimed {
			continue
		}
		f, err := g.function(m.Reference)
		if err != nil {
			return nil, err
		}
		if m.Start {
			if err := g.setStart(m, f); err != nil {
				return nil, err
			}
		}
	}

	for len(g.queue) > 0 {
		next := g.queue[0]
		g.queue = g.queue[1:]
		if err := g.generateBody(next.method, next.fn); err != nil {
			return nil, fmt.Errorf("lower %s: %w", next.method.Reference, err)
		}
	}

	g.logger.Debug("module lowered",
		zap.String("program", g.program.Name),
		zap.Int("functions", g.module.FunctionCount()),
		zap.Int("tags", g.module.TagCount()),
		zap.Int("table", len(g.module.FunctionTable)))
	return g.module, nil
}

func (g *Generator) setStart(m *ir.Method, f *model.Function) error {
	if len(f.Params) != 0 || f.Result != model.None {
		return errors.New(errors.PhaseLower, errors.KindInvalidInput).
			Entity("method", m.Reference.String()).
			Detail("start method must take no arguments and return void").
			Build()
	}
	if g.module.StartFunction != nil && g.module.StartFunction != f {
		return errors.New(errors.PhaseLower, errors.KindInvalidInput).
			Entity("method", m.Reference.String()).
			Detail("start function already set to %s", g.module.StartFunction.Name()).
			Build()
	}
	g.module.StartFunction = f
	return nil
}

// function returns the module function implementing ref, declaring it and
// queueing its body on first use.
func (g *Generator) function(ref ir.MethodReference) (*model.Function, error) {
	name := mangling.Method(ref)
	if f, ok := g.module.Function(name); ok {
		return f, nil
	}

	m := g.program.Method(ref)
	if m == nil {
		return nil, errors.NotFound(errors.PhaseLower, "method", ref.String())
	}

	f := model.NewFunction(name)
	f.Result = valType(ref.Result)
	f.ExportName = m.ExportName
	for i, p := range ref.Params {
		f.AddParam(valType(p), variableName(m, i))
	}

	if m.Native {
		f.ImportModule = g.importModule
		if m.ImportModule != "" {
			f.ImportModule = m.ImportModule
		}
		f.ImportName = ref.Name
	} else {
		for i := len(ref.Params); i < len(m.Variables); i++ {
			f.AddLocal(valType(m.Variables[i].Type), m.Variables[i].Name)
		}
	}

	if err := g.module.AddFunction(f); err != nil {
		return nil, err
	}
	g.methods[name] = ref
	if !m.Native {
		g.queue = append(g.queue, pending{method: m, fn: f})
	}

	g.logger.Debug("function declared",
		zap.String("function", name),
		zap.Bool("import", f.IsImport()))
	return f, nil
}

// SupportFunction returns the module's instance of fn, registering it on
// first request.
func (g *Generator) SupportFunction(fn support.Function) (*model.Function, error) {
	name := fn.Name()
	if f, ok := g.module.Function(name); ok {
		return f, nil
	}
	f := fn.Build(name)
	if err := g.module.AddFunction(f); err != nil {
		return nil, err
	}
	g.methods[name] = fn.Method
	g.logger.Debug("support function registered", zap.String("function", name))
	return f, nil
}

// tableSlot places f in the call table once and returns its slot.
func (g *Generator) tableSlot(f *model.Function) int32 {
	if slot, ok := g.tableSlots[f]; ok {
		return slot
	}
	g.module.FunctionTable = append(g.module.FunctionTable, f)
	slot := int32(len(g.module.FunctionTable) - 1)
	g.tableSlots[f] = slot
	return slot
}

// exception returns the tag thrown by Throw statements, registering it
// on first use. Its index is fixed from then on.
func (g *Generator) exception() (*model.Tag, error) {
	if g.exceptionTag != nil {
		return g.exceptionTag, nil
	}
	tag := model.NewTag(model.I32)
	if err := g.module.AddTag(tag); err != nil {
		return nil, err
	}
	g.exceptionTag = tag
	g.logger.Debug("exception tag registered", zap.Int("index", tag.Index()))
	return tag, nil
}

func (g *Generator) generateBody(m *ir.Method, f *model.Function) error {
	fc := &funcContext{gen: g, method: m, fn: f}
	body, err := fc.statements(m.Body)
	if err != nil {
		return err
	}
	if f.Result != model.None && !endsWithReturn(m.Body) {
		body = append(body, &model.Unreachable{})
	}
	f.Body = body
	return nil
}

func endsWithReturn(body []ir.Statement) bool {
	if len(body) == 0 {
		return false
	}
	_, ok := body[len(body)-1].(*ir.Return)
	return ok
}

func variableName(m *ir.Method, i int) string {
	if i < len(m.Variables) {
		return m.Variables[i].Name
	}
	return fmt.Sprintf("p%d", i)
}

func valType(t ir.ValueType) model.ValType {
	switch t {
	case ir.Boolean, ir.Int, ir.Address:
		return model.I32
	case ir.Long:
		return model.I64
	case ir.Float:
		return model.F32
	case ir.Double:
		return model.F64
	default:
		return model.None
	}
}
