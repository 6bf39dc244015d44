package config

import (
	"os"
	"path/filepath"
	"slices"
	"testing"

	"go.uber.org/zap/zapcore"

	"github.com/wippyai/wasm-backend/errors"
	"github.com/wippyai/wasm-backend/intrinsic"
)

var errInvalid = &errors.Error{Phase: errors.PhaseConfig, Kind: errors.KindInvalidInput}

func TestDefault(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
	if cfg.Memory.MinPages != 1 || !cfg.Optimize.DCE || !cfg.Verify.Enabled || cfg.Output.DebugInfo {
		t.Errorf("defaults = %+v", cfg)
	}
	if level, _ := cfg.LogLevel(); level != zapcore.InfoLevel {
		t.Errorf("level = %v", level)
	}
}

func TestParse(t *testing.T) {
	cfg, err := Parse(`
[memory]
min_pages = 2
max_pages = 4

[intrinsics]
disabled = ["numeric"]

[generate]
all_methods = true

[output]
debug_info = true

[log]
level = "debug"
`)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Memory != (Memory{MinPages: 2, MaxPages: 4}) {
		t.Errorf("memory = %+v", cfg.Memory)
	}
	if !cfg.Generate.AllMethods || cfg.Generate.ImportModule != "teavm" {
		t.Errorf("generate = %+v", cfg.Generate)
	}
	if !cfg.Output.DebugInfo || !cfg.Output.NameSection {
		t.Errorf("output = %+v", cfg.Output)
	}
	if len(cfg.LowerOptions()) != 3 {
		t.Error("lower options missing")
	}

	reg := cfg.Registry()
	if reg.Sealed() {
		t.Error("registry sealed")
	}
	want := slices.DeleteFunc(intrinsic.Builtins(), func(n string) bool { return n == intrinsic.NameNumeric })
	if got := reg.Names(); !slices.Equal(got, want) {
		t.Errorf("intrinsics = %v, want %v", got, want)
	}
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name string
		text string
		want *errors.Error
	}{
		{"syntax", "[memory", &errors.Error{Phase: errors.PhaseConfig, Kind: errors.KindInvalidData}},
		{"unknown key", "[memory]\npages = 1", errInvalid},
		{"negative min", "[memory]\nmin_pages = -1", errInvalid},
		{"max below min", "[memory]\nmin_pages = 4\nmax_pages = 2", errInvalid},
		{"too many pages", "[memory]\nmax_pages = 65537", errInvalid},
		{"unknown intrinsic", "[intrinsics]\ndisabled = [\"gc\"]", errInvalid},
		{"empty import module", "[generate]\nimport_module = \" \"", errInvalid},
		{"bad level", "[log]\nlevel = \"loud\"", errInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.text)
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %s/%s", err, tt.want.Phase, tt.want.Kind)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "wasmc.toml")
	if err := os.WriteFile(path, []byte("[verify]\nenabled = false\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Verify.Enabled {
		t.Error("verify not disabled")
	}

	if _, err := Load(filepath.Join(dir, "missing.toml")); !errors.Is(err, &errors.Error{Phase: errors.PhaseConfig, Kind: errors.KindNotFound}) {
		t.Errorf("missing file: %v", err)
	}

	bad := filepath.Join(dir, "bad.toml")
	if err := os.WriteFile(bad, []byte("[memory]\nmin_pages = -3\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	_, err = Load(bad)
	var e *errors.Error
	if !errors.As(err, &e) || len(e.Path) == 0 || e.Path[0] != bad {
		t.Errorf("path not recorded: %v", err)
	}
}
