package wasm

import (
	"strings"
	"testing"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(m *Module)
		want   string
	}{
		{"valid", func(*Module) {}, ""},
		{"bad type index", func(m *Module) { m.Funcs[0] = 9 }, "invalid type index"},
		{"duplicate export", func(m *Module) { m.Exports = append(m.Exports, m.Exports[0]) }, "duplicate export"},
		{"export out of range", func(m *Module) { m.Exports[0].Idx = 5 }, "invalid index"},
		{"code count", func(m *Module) { m.Code = nil }, "code section"},
		{"start signature", func(m *Module) {
			start := uint32(0)
			m.Start = &start
		}, "start function"},
		{"element without table", func(m *Module) {
			m.Elements = []Element{{Offset: ConstI32Expr(0), FuncIdxs: []uint32{0}}}
		}, "without a table"},
		{"memory limits", func(m *Module) {
			limit := uint32(1)
			m.Memories = []MemoryType{{Limits: Limits{Min: 2, Max: &limit}}}
		}, "below min"},
		{"data without memory", func(m *Module) {
			m.Data = []DataSegment{{Offset: ConstI32Expr(0)}}
		}, "without a memory"},
		{"tag with results", func(m *Module) {
			m.Tags = []TagType{{TypeIdx: 0}}
		}, "has results"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := answerModule()
			tt.mutate(m)
			err := m.Validate()
			if tt.want == "" {
				if err != nil {
					t.Fatalf("Validate: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("Validate = %v, want %q", err, tt.want)
			}
		})
	}
}
