// Package config loads backend settings from TOML.
//
//	[memory]
//	min_pages = 1
//	max_pages = 16
//
//	[intrinsics]
//	disabled = ["address"]
//
//	[generate]
//	all_methods = false
//	import_module = "teavm"
//
//	[output]
//	debug_info = true
//	name_section = true
//
//	[optimize]
//	dce = true
//
//	[verify]
//	enabled = true
//
//	[log]
//	level = "info"
//
// Missing keys keep their defaults.
package config

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap/zapcore"

	"github.com/wippyai/wasm-backend/errors"
	"github.com/wippyai/wasm-backend/intrinsic"
	"github.com/wippyai/wasm-backend/lower"
	"github.com/wippyai/wasm-backend/wasm"
)

// Config is the full backend configuration.
type Config struct {
	Intrinsics Intrinsics `toml:"intrinsics"`
	Generate   Generate   `toml:"generate"`
	Log        Log        `toml:"log"`
	Memory     Memory     `toml:"memory"`
	Output     Output     `toml:"output"`
	Optimize   Optimize   `toml:"optimize"`
	Verify     Verify     `toml:"verify"`
}

type Memory struct {
	MinPages int `toml:"min_pages"`
	MaxPages int `toml:"max_pages"` // 0 means no maximum
}

type Intrinsics struct {
	Disabled []string `toml:"disabled"`
}

type Generate struct {
	ImportModule string `toml:"import_module"`
	AllMethods   bool   `toml:"all_methods"`
}

type Output struct {
	DebugInfo   bool `toml:"debug_info"`
	NameSection bool `toml:"name_section"`
}

type Optimize struct {
	DCE bool `toml:"dce"`
}

type Verify struct {
	Enabled bool `toml:"enabled"`
}

type Log struct {
	Level string `toml:"level"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Memory:   Memory{MinPages: 1},
		Generate: Generate{ImportModule: lower.DefaultImportModule},
		Output:   Output{NameSection: true},
		Optimize: Optimize{DCE: true},
		Verify:   Verify{Enabled: true},
		Log:      Log{Level: "info"},
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.New(errors.PhaseConfig, errors.KindNotFound).
			Entity("config", path).
			Cause(err).
			Build()
	}
	cfg, err := Parse(string(data))
	if err != nil {
		var e *errors.Error
		if errors.As(err, &e) {
			e.Path = append([]string{path}, e.Path...)
		}
		return Config{}, err
	}
	return cfg, nil
}

// Parse decodes TOML text over the defaults and validates the result.
// Unknown keys are rejected.
func Parse(text string) (Config, error) {
	cfg := Default()
	meta, err := toml.Decode(text, &cfg)
	if err != nil {
		return Config{}, errors.Wrap(errors.PhaseConfig, errors.KindInvalidData, err, "parse TOML")
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, errors.InvalidInput(errors.PhaseConfig,
			fmt.Sprintf("unknown keys: %s", strings.Join(keys, ", ")))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges and names.
func (c Config) Validate() error {
	limit := int(wasm.MemoryMaxPages)
	switch {
	case c.Memory.MinPages < 0 || c.Memory.MinPages > limit:
		return invalid("memory.min_pages", c.Memory.MinPages, "must be within [0, %d]", limit)
	case c.Memory.MaxPages < 0 || c.Memory.MaxPages > limit:
		return invalid("memory.max_pages", c.Memory.MaxPages, "must be within [0, %d]", limit)
	case c.Memory.MaxPages != 0 && c.Memory.MaxPages < c.Memory.MinPages:
		return invalid("memory.max_pages", c.Memory.MaxPages, "is below min_pages %d", c.Memory.MinPages)
	}
	for _, name := range c.Intrinsics.Disabled {
		if !slices.Contains(intrinsic.Builtins(), name) {
			return invalid("intrinsics.disabled", name, "unknown intrinsic %q", name)
		}
	}
	if strings.TrimSpace(c.Generate.ImportModule) == "" {
		return invalid("generate.import_module", c.Generate.ImportModule, "must not be empty")
	}
	if _, err := c.LogLevel(); err != nil {
		return invalid("log.level", c.Log.Level, "unknown level %q", c.Log.Level)
	}
	return nil
}

// LogLevel parses Log.Level.
func (c Config) LogLevel() (zapcore.Level, error) {
	return zapcore.ParseLevel(c.Log.Level)
}

// LowerOptions translates the settings into lowering options.
func (c Config) LowerOptions() []lower.Option {
	return []lower.Option{
		lower.WithMemory(c.Memory.MinPages, c.Memory.MaxPages),
		lower.WithAllMethods(c.Generate.AllMethods),
		lower.WithImportModule(c.Generate.ImportModule),
	}
}

// Registry builds the unsealed intrinsic registry the settings describe.
func (c Config) Registry() *intrinsic.Registry {
	return intrinsic.Defaults(c.Intrinsics.Disabled...)
}

func invalid(key string, value any, format string, args ...any) error {
	return errors.New(errors.PhaseConfig, errors.KindInvalidInput).
		Path(key).
		Value(value).
		Detail(format, args...).
		Build()
}
