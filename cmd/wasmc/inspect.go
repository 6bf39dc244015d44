package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/wippyai/wasm-backend/debuginfo"
	"github.com/wippyai/wasm-backend/wasm"
)

type report struct {
	File      string
	Module    string
	Memory    string
	Functions []funcRow
	Custom    []string
	Size      int
	Tags      int
	Table     int
	Data      int
}

type funcRow struct {
	Name   string
	Sig    string
	Import string
	Export string
	Source string
	Code   []string
	Index  uint32
}

func newInspectCmd(a *app) *cobra.Command {
	var plain bool
	cmd := &cobra.Command{
		Use:   "inspect FILE",
		Short: "Show the functions and sections of a module",
		Long: "Show the functions and sections of a .wasm module, or of a .hcl program\n" +
			"after compiling it. On a terminal this opens an interactive browser.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bin, err := a.binary(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			r, err := inspect(args[0], bin)
			if err != nil {
				return err
			}
			if plain || !isTerminal(os.Stdout) || !isTerminal(os.Stdin) {
				writeReport(cmd.OutOrStdout(), r)
				return nil
			}
			return browse(r)
		},
	}
	cmd.Flags().BoolVar(&plain, "plain", false, "print a listing instead of the interactive view")
	return cmd
}

func inspect(file string, bin []byte) (*report, error) {
	mod, err := wasm.ParseModuleValidate(bin)
	if err != nil {
		return nil, err
	}
	r := &report{
		File:   file,
		Size:   len(bin),
		Tags:   len(mod.Tags),
		Data:   len(mod.Data),
		Memory: "none",
	}
	for _, t := range mod.Tables {
		r.Table = int(t.Limits.Min)
	}
	for _, m := range mod.Memories {
		r.Memory = fmt.Sprintf("%d pages", m.Limits.Min)
		if m.Limits.Max != nil {
			r.Memory = fmt.Sprintf("%d-%d pages", m.Limits.Min, *m.Limits.Max)
		}
	}

	names := &wasm.Names{}
	var debug *debuginfo.Info
	for _, cs := range mod.CustomSections {
		r.Custom = append(r.Custom, fmt.Sprintf("%s (%d bytes)", cs.Name, len(cs.Data)))
		switch cs.Name {
		case wasm.NameSectionName:
			if names, err = wasm.ParseNames(cs.Data); err != nil {
				return nil, fmt.Errorf("name section: %w", err)
			}
			r.Module = names.Module
		case debuginfo.SectionName:
			if debug, err = debuginfo.Decode(cs.Data); err != nil {
				return nil, err
			}
		}
	}

	exports := make(map[uint32][]string)
	for _, e := range mod.Exports {
		if e.Kind == wasm.KindFunc {
			exports[e.Idx] = append(exports[e.Idx], e.Name)
		}
	}

	imported := uint32(mod.NumImportedFuncs())
	total := imported + uint32(len(mod.Funcs))
	for idx := range total {
		row := funcRow{Index: idx, Name: names.Functions[idx], Export: strings.Join(exports[idx], ", ")}
		if row.Name == "" {
			row.Name = fmt.Sprintf("func[%d]", idx)
		}
		if ft := mod.GetFuncType(idx); ft != nil {
			row.Sig = signature(ft)
		}
		if idx < imported {
			imp := mod.Imports[idx]
			row.Import = imp.Module + "." + imp.Name
		} else {
			code, err := disassemble(mod.Code[idx-imported])
			if err != nil {
				return nil, fmt.Errorf("%s: %w", row.Name, err)
			}
			row.Code = code
		}
		if debug != nil {
			if m, ok := debug.Lookup(row.Name); ok {
				row.Source = m.Class + "." + m.Name + m.Descriptor
			}
		}
		r.Functions = append(r.Functions, row)
	}
	return r, nil
}

func signature(ft *wasm.FuncType) string {
	join := func(ts []wasm.ValType) string {
		parts := make([]string, len(ts))
		for i, t := range ts {
			parts[i] = t.String()
		}
		return strings.Join(parts, " ")
	}
	s := "(" + join(ft.Params) + ")"
	if len(ft.Results) > 0 {
		s += " -> " + join(ft.Results)
	}
	return s
}

func disassemble(body wasm.FuncBody) ([]string, error) {
	instrs, err := wasm.DecodeInstructions(body.Code)
	if err != nil {
		return nil, err
	}
	var lines []string
	for _, l := range body.Locals {
		lines = append(lines, fmt.Sprintf("(local %d %s)", l.Count, l.ValType))
	}
	depth := 0
	for _, in := range instrs {
		switch in.Opcode {
		case wasm.OpEnd, wasm.OpElse:
			depth = max(0, depth-1)
		}
		lines = append(lines, strings.Repeat("  ", depth)+in.String())
		switch in.Opcode {
		case wasm.OpBlock, wasm.OpLoop, wasm.OpIf, wasm.OpElse:
			depth++
		}
	}
	return lines, nil
}

// writeReport prints r as an aligned listing.
func writeReport(w io.Writer, r *report) {
	fmt.Fprintf(w, "%s %s\n", nameColor.Sprint(r.File), dimColor.Sprintf("(%d bytes)", r.Size))
	if r.Module != "" {
		fmt.Fprintf(w, "module  %s\n", r.Module)
	}
	fmt.Fprintf(w, "memory  %s\n", r.Memory)
	fmt.Fprintf(w, "table   %d slots\n", r.Table)
	fmt.Fprintf(w, "tags    %d\n", r.Tags)
	fmt.Fprintf(w, "data    %d segments\n", r.Data)
	for _, c := range r.Custom {
		fmt.Fprintf(w, "custom  %s\n", c)
	}
	fmt.Fprintln(w)

	width := 0
	for _, f := range r.Functions {
		width = max(width, runewidth.StringWidth(f.Name))
	}
	for _, f := range r.Functions {
		fmt.Fprintf(w, "%4d  %s  %s", f.Index, nameColor.Sprint(runewidth.FillRight(f.Name, width)), f.Sig)
		switch {
		case f.Import != "":
			fmt.Fprint(w, dimColor.Sprintf("  import %s", f.Import))
		case f.Export != "":
			fmt.Fprint(w, okColor.Sprintf("  export %s", f.Export))
		}
		if f.Source != "" {
			fmt.Fprint(w, dimColor.Sprintf("  from %s", f.Source))
		}
		fmt.Fprintln(w)
	}
}
