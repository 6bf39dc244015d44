package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tetratelabs/wazero/api"
)

const program = `
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

  method "half" {
    param "x" { type = "double" }
    result = "double"
    export = "half"
    body {
      return { value = x / 2 }
    }
  }
}
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--color", "off"}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestBuildAndInspect(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "calc.hcl", program)
	cfg := writeFile(t, dir, "wasmc.toml", "[output]\ndebug_info = true\n")

	out, err := execute(t, "--config", cfg, "build", "-o", dir, src)
	if err != nil {
		t.Fatalf("build: %v\n%s", err, out)
	}
	if !strings.Contains(out, "calc.wasm") {
		t.Errorf("build output = %q", out)
	}

	bin, err := os.ReadFile(filepath.Join(dir, "calc.wasm"))
	if err != nil {
		t.Fatal(err)
	}
	r, err := inspect("calc.wasm", bin)
	if err != nil {
		t.Fatal(err)
	}
	if r.Module != "calc" || len(r.Functions) != 2 || r.Memory != "1 pages" {
		t.Fatalf("report = %+v", r)
	}
	sum := r.Functions[0]
	if sum.Export != "sum" || sum.Sig != "(i32) -> i64" || sum.Source != "app.Main.sum(I)J" {
		t.Errorf("sum = %+v", sum)
	}
	if len(sum.Code) == 0 || !strings.Contains(strings.Join(sum.Code, "\n"), "loop") {
		t.Errorf("disassembly = %v", sum.Code)
	}

	var listing bytes.Buffer
	writeReport(&listing, r)
	for _, want := range []string{"memory  1 pages", "export sum", "from app.Main.half(D)D", "teavm.debug"} {
		if !strings.Contains(listing.String(), want) {
			t.Errorf("listing misses %q:\n%s", want, listing.String())
		}
	}

	out, err = execute(t, "inspect", "--plain", filepath.Join(dir, "calc.wasm"))
	if err != nil || !strings.Contains(out, "export half") {
		t.Errorf("inspect: %v\n%s", err, out)
	}
}

func TestRun(t *testing.T) {
	src := writeFile(t, t.TempDir(), "calc.hcl", program)

	out, err := execute(t, "run", src, "sum", "10")
	if err != nil || strings.TrimSpace(out) != "45" {
		t.Errorf("sum: %q %v", out, err)
	}
	out, err = execute(t, "run", src, "half", "5")
	if err != nil || strings.TrimSpace(out) != "2.5" {
		t.Errorf("half: %q %v", out, err)
	}
	if _, err := execute(t, "run", src, "missing"); err == nil {
		t.Error("missing export accepted")
	}
	if _, err := execute(t, "run", src, "sum"); err == nil {
		t.Error("missing argument accepted")
	}
}

func TestIntrinsics(t *testing.T) {
	cfg := writeFile(t, t.TempDir(), "wasmc.toml", "[intrinsics]\ndisabled = [\"memory\"]\n")
	out, err := execute(t, "--config", cfg, "intrinsics")
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 4 {
		t.Fatalf("output = %q", out)
	}
	if !strings.HasPrefix(lines[0], "allocator") || !strings.Contains(lines[0], "enabled") {
		t.Errorf("first = %q", lines[0])
	}
	if !strings.Contains(lines[3], "disabled") {
		t.Errorf("memory line = %q", lines[3])
	}
}

func TestBadFlags(t *testing.T) {
	if _, err := execute(t, "--log-level", "loud", "intrinsics"); err == nil {
		t.Error("bad log level accepted")
	}
	if _, err := execute(t, "--color", "maybe", "intrinsics"); err == nil {
		t.Error("bad color accepted")
	}
}

func TestArgs(t *testing.T) {
	types := []api.ValueType{api.ValueTypeI32, api.ValueTypeI64, api.ValueTypeF32, api.ValueTypeF64}
	vals, err := encodeArgs(types, []string{"-1", "0x10", "1.5", "2.25"})
	if err != nil {
		t.Fatal(err)
	}
	got := strings.Join(formatResults(types, vals), " ")
	if got != "-1 16 1.5 2.25" {
		t.Errorf("round trip = %q", got)
	}

	if _, err := encodeArgs(types[:1], []string{"4294967296"}); err == nil {
		t.Error("i32 overflow accepted")
	}
	if _, err := encodeArgs(types[:1], nil); err == nil {
		t.Error("arity not checked")
	}
}
