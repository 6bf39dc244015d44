package frontend

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/wippyai/wasm-backend/errors"
	"github.com/wippyai/wasm-backend/ir"
)

const sumProgram = `
class "app.Main" {
  method "sum" {
    param "n" { type = "int" }
    local "acc" { type = "long" }
    local "i" { type = "int" }
    result = "long"
    export = "sum"

    body {
      while {
        condition = i < n
        body {
          set "acc" { value = acc + i }
          set "i" { value = i + 1 }
        }
      }
      return { value = acc }
    }
  }

  method "bits" {
    param "x" { type = "int" }
    result = "int"
    export = "bits"
    body {
      if {
        condition = !(x >= 0) || x == -1
        then {
          throw { value = x }
        }
        else {
          return { value = Integer::bitCount(and(x, 255)) }
        }
      }
      return { value = 0 }
    }
  }

  method "dispatch" {
    virtual = true
    result  = "double"
    body {
      return { value = 1.5 * 2 }
    }
  }

  method "init" {
    start = true
    body {
      eval { value = dispatch() }
      eval { value = java::lang::Integer::bitCount(3) }
    }
  }
}

class "java.lang.Integer" {
  method "bitCount" {
    native = true
    param "v" { type = "int" }
    result = "int"
  }
}

class "env.Host" {
  method "log" {
    native        = true
    import_module = "env"
    param "v" { type = "long" }
  }
}

data {
  offset = 16
  text   = "hi"
}

data {
  offset = 32
  bytes  = [1, 2, 255]
}
`

func parse(t *testing.T, src string) *ir.Program {
	t.Helper()
	p, err := Parse([]byte(src), "test.hcl")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return p
}

func TestParseDeclarations(t *testing.T) {
	p := parse(t, sumProgram)
	if p.Name != "test" {
		t.Errorf("name = %q", p.Name)
	}
	if len(p.Classes) != 3 {
		t.Fatalf("classes = %d", len(p.Classes))
	}

	sum := p.Class("app.Main").Method("sum")
	if want := ir.NewMethodReference("app.Main", "sum", ir.Long, ir.Int); !sum.Reference.Equal(want) {
		t.Errorf("sum = %v", sum.Reference)
	}
	wantVars := []ir.Var{{Name: "n", Type: ir.Int}, {Name: "acc", Type: ir.Long}, {Name: "i", Type: ir.Int}}
	if !reflect.DeepEqual(sum.Variables, wantVars) {
		t.Errorf("variables = %+v", sum.Variables)
	}
	if sum.ExportName != "sum" {
		t.Errorf("export = %q", sum.ExportName)
	}

	host := p.Class("env.Host").Method("log")
	if !host.Native || host.ImportModule != "env" || host.Body != nil {
		t.Errorf("log = %+v", host)
	}
	if !p.Class("app.Main").Method("init").Start {
		t.Error("init not start")
	}

	wantData := []*ir.DataBlock{
		{Offset: 16, Bytes: []byte("hi")},
		{Offset: 32, Bytes: []byte{1, 2, 255}},
	}
	if !reflect.DeepEqual(p.Data, wantData) {
		t.Errorf("data = %+v", p.Data)
	}
}

func TestParseLoop(t *testing.T) {
	sum := parse(t, sumProgram).Class("app.Main").Method("sum")
	if len(sum.Body) != 2 {
		t.Fatalf("body = %d statements", len(sum.Body))
	}
	loop, ok := sum.Body[0].(*ir.While)
	if !ok {
		t.Fatalf("first statement %T", sum.Body[0])
	}
	cond := loop.Condition.(*ir.Binary)
	if cond.Op != ir.Less || cond.OperandType != ir.Int || cond.Type() != ir.Boolean {
		t.Errorf("condition = %+v", cond)
	}

	acc := loop.Body[0].(*ir.Assign)
	add := acc.Value.(*ir.Binary)
	if acc.Index != 1 || add.OperandType != ir.Long {
		t.Errorf("acc update = %+v / %+v", acc, add)
	}
	inc := loop.Body[1].(*ir.Assign).Value.(*ir.Binary)
	if c := inc.Right.(*ir.Constant); c.Value != int32(1) || c.ValueType != ir.Int {
		t.Errorf("increment literal = %+v", c)
	}

	ret := sum.Body[1].(*ir.Return)
	if v := ret.Value.(*ir.Variable); v.Index != 1 || v.VariableType != ir.Long {
		t.Errorf("return = %+v", v)
	}
}

func TestParseCalls(t *testing.T) {
	main := parse(t, sumProgram).Class("app.Main")

	branch := main.Method("bits").Body[0].(*ir.If)
	or := branch.Condition.(*ir.Binary)
	if or.Op != ir.BitOr || or.OperandType != ir.Boolean {
		t.Errorf("|| = %+v", or)
	}
	eq := or.Right.(*ir.Binary)
	if c := eq.Right.(*ir.Constant); c.Value != int32(-1) {
		t.Errorf("negative literal = %+v", c)
	}
	if _, ok := branch.Then[0].(*ir.Throw); !ok {
		t.Errorf("then = %T", branch.Then[0])
	}
	inv := branch.Else[0].(*ir.Return).Value.(*ir.Invocation)
	if inv.Method.ClassName != "java.lang.Integer" || inv.Kind != ir.Static {
		t.Errorf("bitCount call = %+v", inv)
	}
	if mask := inv.Arguments[0].(*ir.Binary); mask.Op != ir.BitAnd {
		t.Errorf("and() = %+v", mask)
	}

	dispatch := main.Method("dispatch").Body[0].(*ir.Return).Value.(*ir.Binary)
	if dispatch.OperandType != ir.Double || dispatch.Right.(*ir.Constant).Value != float64(2) {
		t.Errorf("double arithmetic = %+v", dispatch)
	}

	start := main.Method("init").Body
	if inv := start[0].(*ir.ExprStatement).Expr.(*ir.Invocation); inv.Kind != ir.Indirect {
		t.Errorf("virtual call kind = %v", inv.Kind)
	}
	if inv := start[1].(*ir.ExprStatement).Expr.(*ir.Invocation); inv.Method.Name != "bitCount" {
		t.Errorf("qualified call = %+v", inv.Method)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prog.hcl")
	src := "name = \"custom\"\n" + sumProgram
	if err := os.WriteFile(path, []byte(src), 0o600); err != nil {
		t.Fatal(err)
	}
	p, err := LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if p.Name != "custom" {
		t.Errorf("name = %q", p.Name)
	}
}

func TestParseErrors(t *testing.T) {
	method := func(body string) string {
		return `class "A" {
  method "m" {
    param "p" { type = "int" }
    result = "int"
    body {
` + body + `
    }
  }
}`
	}
	parseErr := &errors.Error{Phase: errors.PhaseParse, Kind: errors.KindInvalidData}
	invalid := &errors.Error{Phase: errors.PhaseParse, Kind: errors.KindInvalidInput}
	notFound := &errors.Error{Phase: errors.PhaseParse, Kind: errors.KindNotFound}
	unsupported := &errors.Error{Phase: errors.PhaseParse, Kind: errors.KindUnsupported}

	tests := []struct {
		name string
		src  string
		want *errors.Error
	}{
		{"syntax", `class "A" {`, parseErr},
		{"schema", `klass "A" {}`, parseErr},
		{"duplicate class", `
class "A" {}
class "A" {}`, &errors.Error{Phase: errors.PhaseParse, Kind: errors.KindDuplicateName}},
		{"duplicate method", `
class "A" {
  method "m" {}
  method "m" {}
}`, &errors.Error{Phase: errors.PhaseParse, Kind: errors.KindDuplicateName}},
		{"bad type", `
class "A" {
  method "m" {
    param "p" { type = "string" }
  }
}`, invalid},
		{"native with body", `
class "A" {
  method "m" {
    native = true
    body {}
  }
}`, invalid},
		{"unknown variable", method(`return { value = q }`), notFound},
		{"unknown method", method(`return { value = B::m(p) }`), notFound},
		{"arity", method(`return { value = m() }`), invalid},
		{"missing return value", method(`return {}`), invalid},
		{"unknown statement", method(`goto "x" {}`), unsupported},
		{"stray attribute", method(`set "p" {
  value = 1
  extra = 2
}`), invalid},
		{"two else blocks", method(`if {
  condition = true
  else {}
  else {}
}`), &errors.Error{Phase: errors.PhaseParse, Kind: errors.KindDuplicateName}},
		{"overflow", method(`return { value = 4294967296 }`), &errors.Error{Phase: errors.PhaseParse, Kind: errors.KindOverflow}},
		{"string literal", method(`return { value = "s" }`), unsupported},
		{"byte range", `
data {
  offset = 0
  bytes  = [256]
}`, invalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.src), "bad.hcl")
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %s/%s", err, tt.want.Phase, tt.want.Kind)
			}
		})
	}
}
