package frontend

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"fortio.org/safecast"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"go.uber.org/zap"

	"github.com/wippyai/wasm-backend/errors"
	"github.com/wippyai/wasm-backend/ir"
)

// LoadFile reads and loads the program file at path.
func LoadFile(path string) (*ir.Program, error) {
	Logger().Debug("loading program", zap.String("path", path))
	file, diags := hclparse.NewParser().ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, errors.ParseFailed(path, diags)
	}
	return load(file, path)
}

// Parse loads a program from HCL source. filename appears in error
// positions and, unless the file sets name, becomes the program name.
func Parse(src []byte, filename string) (*ir.Program, error) {
	file, diags := hclparse.NewParser().ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, errors.ParseFailed(filename, diags)
	}
	return load(file, filename)
}

type loader struct {
	program      *ir.Program
	bySimpleName map[string][]*ir.Class
	schemas      map[*ir.Method]*methodSchema
	order        []*ir.Method
}

func load(file *hcl.File, filename string) (*ir.Program, error) {
	var fs fileSchema
	if diags := gohcl.DecodeBody(file.Body, nil, &fs); diags.HasErrors() {
		return nil, errors.ParseFailed(filename, diags)
	}

	name := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	if fs.Name != nil {
		name = *fs.Name
	}
	l := &loader{
		program:      &ir.Program{Name: name},
		bySimpleName: make(map[string][]*ir.Class),
		schemas:      make(map[*ir.Method]*methodSchema),
	}

	for _, cs := range fs.Classes {
		if err := l.declareClass(cs); err != nil {
			return nil, err
		}
	}
	for _, m := range l.order {
		if err := l.defineBody(m); err != nil {
			return nil, err
		}
	}
	for i, ds := range fs.Data {
		block, err := dataBlock(ds)
		if err != nil {
			return nil, errors.New(errors.PhaseParse, errors.KindInvalidInput).
				Path(filename, fmt.Sprintf("data[%d]", i)).
				Cause(err).
				Detail("invalid data block").
				Build()
		}
		l.program.Data = append(l.program.Data, block)
	}

	Logger().Debug("program loaded",
		zap.String("program", name),
		zap.Int("classes", len(l.program.Classes)),
		zap.Int("methods", len(l.order)),
		zap.Int("data", len(l.program.Data)))
	return l.program, nil
}

func (l *loader) declareClass(cs *classSchema) error {
	if l.program.Class(cs.Name) != nil {
		return errors.New(errors.PhaseParse, errors.KindDuplicateName).
			Entity("class", cs.Name).
			Build()
	}
	class := &ir.Class{Name: cs.Name}
	for _, ms := range cs.Methods {
		if class.Method(ms.Name) != nil {
			return atRange(ms.DeclRange, errors.KindDuplicateName, "method %s.%s declared twice", cs.Name, ms.Name)
		}
		m, err := declareMethod(cs.Name, ms)
		if err != nil {
			return err
		}
		class.Methods = append(class.Methods, m)
		l.schemas[m] = ms
		l.order = append(l.order, m)
	}
	l.program.Classes = append(l.program.Classes, class)
	simple := class.Name[strings.LastIndexByte(class.Name, '.')+1:]
	l.bySimpleName[simple] = append(l.bySimpleName[simple], class)
	return nil
}

func declareMethod(className string, ms *methodSchema) (*ir.Method, error) {
	result := ir.Void
	if ms.Result != "" {
		t, ok := ir.ParseValueType(ms.Result)
		if !ok {
			return nil, atRange(ms.DeclRange, errors.KindInvalidInput, "unknown result type %q", ms.Result)
		}
		result = t
	}
	switch {
	case ms.Native && ms.Body != nil:
		return nil, atRange(ms.DeclRange, errors.KindInvalidInput, "native method %s has a body", ms.Name)
	case ms.ImportModule != "" && !ms.Native:
		return nil, atRange(ms.DeclRange, errors.KindInvalidInput, "import_module on non-native method %s", ms.Name)
	}

	m := &ir.Method{
		Native:       ms.Native,
		ImportModule: ms.ImportModule,
		ExportName:   ms.Export,
		Start:        ms.Start,
		Virtual:      ms.Virtual,
	}
	params := make([]ir.ValueType, 0, len(ms.Params))
	for i, vs := range slices.Concat(ms.Params, ms.Locals) {
		t, ok := ir.ParseValueType(vs.Type)
		if !ok || t == ir.Void {
			return nil, atRange(vs.DeclRange, errors.KindInvalidInput, "invalid type %q for %s", vs.Type, vs.Name)
		}
		for _, v := range m.Variables {
			if v.Name == vs.Name {
				return nil, atRange(vs.DeclRange, errors.KindDuplicateName, "variable %s declared twice", vs.Name)
			}
		}
		if i < len(ms.Params) {
			params = append(params, t)
		}
		m.Variables = append(m.Variables, ir.Var{Name: vs.Name, Type: t})
	}
	m.Reference = ir.NewMethodReference(className, ms.Name, result, params...)
	return m, nil
}

func (l *loader) defineBody(m *ir.Method) error {
	ms := l.schemas[m]
	if ms.Body == nil {
		return nil
	}
	body, ok := ms.Body.Body.(*hclsyntax.Body)
	if !ok {
		return atRange(ms.DeclRange, errors.KindUnsupported, "method body is not native HCL syntax")
	}
	s := &scope{loader: l, class: l.program.Class(m.Reference.ClassName), method: m}
	stmts, err := s.statements(body)
	if err != nil {
		return err
	}
	m.Body = stmts
	return nil
}

func dataBlock(ds *dataSchema) (*ir.DataBlock, error) {
	offset, err := safecast.Conv[int32](ds.Offset)
	if err != nil || offset < 0 {
		return nil, fmt.Errorf("offset %d out of range", ds.Offset)
	}
	if ds.Text != "" && len(ds.Bytes) > 0 {
		return nil, fmt.Errorf("text and bytes are exclusive")
	}
	payload := []byte(ds.Text)
	for _, b := range ds.Bytes {
		v, err := safecast.Conv[byte](b)
		if err != nil {
			return nil, fmt.Errorf("byte value %d out of range", b)
		}
		payload = append(payload, v)
	}
	return &ir.DataBlock{Offset: offset, Bytes: payload}, nil
}

func atRange(rng hcl.Range, kind errors.Kind, format string, args ...any) error {
	return errors.New(errors.PhaseParse, kind).
		Path(rng.String()).
		Detail(format, args...).
		Build()
}
