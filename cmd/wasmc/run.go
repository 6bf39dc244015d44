package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/wasm-backend/driver"
	"github.com/wippyai/wasm-backend/frontend"
)

func newRunCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "run FILE EXPORT [ARG...]",
		Short: "Call an exported function of a .wasm module or .hcl program",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			bin, err := a.binary(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			results, err := call(cmd.Context(), bin, args[1], args[2:])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), strings.Join(results, " "))
			return nil
		},
	}
}

// binary reads a module, compiling it first when path is a program file.
func (a *app) binary(ctx context.Context, path string) ([]byte, error) {
	if filepath.Ext(path) != ".hcl" {
		return os.ReadFile(path)
	}
	program, err := frontend.LoadFile(path)
	if err != nil {
		return nil, err
	}
	res, err := driver.New(a.cfg, driver.WithLogger(a.logger)).Compile(ctx, program)
	if err != nil {
		return nil, err
	}
	return res.Binary, nil
}

func call(ctx context.Context, bin []byte, export string, args []string) ([]string, error) {
	rt := wazero.NewRuntime(ctx)
	defer rt.Close(ctx)

	mod, err := rt.Instantiate(ctx, bin)
	if err != nil {
		return nil, fmt.Errorf("instantiate: %w", err)
	}
	fn := mod.ExportedFunction(export)
	if fn == nil {
		return nil, fmt.Errorf("no exported function %q", export)
	}
	def := fn.Definition()
	params, err := encodeArgs(def.ParamTypes(), args)
	if err != nil {
		return nil, err
	}
	values, err := fn.Call(ctx, params...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", export, err)
	}
	return formatResults(def.ResultTypes(), values), nil
}

func encodeArgs(types []api.ValueType, args []string) ([]uint64, error) {
	if len(args) != len(types) {
		return nil, fmt.Errorf("expected %d arguments, got %d", len(types), len(args))
	}
	out := make([]uint64, len(args))
	for i, s := range args {
		switch types[i] {
		case api.ValueTypeI32:
			v, err := strconv.ParseInt(s, 0, 32)
			if err != nil {
				return nil, fmt.Errorf("argument %d: %w", i, err)
			}
			out[i] = api.EncodeI32(int32(v))
		case api.ValueTypeI64:
			v, err := strconv.ParseInt(s, 0, 64)
			if err != nil {
				return nil, fmt.Errorf("argument %d: %w", i, err)
			}
			out[i] = api.EncodeI64(v)
		case api.ValueTypeF32:
			v, err := strconv.ParseFloat(s, 32)
			if err != nil {
				return nil, fmt.Errorf("argument %d: %w", i, err)
			}
			out[i] = api.EncodeF32(float32(v))
		case api.ValueTypeF64:
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, fmt.Errorf("argument %d: %w", i, err)
			}
			out[i] = api.EncodeF64(v)
		default:
			return nil, fmt.Errorf("argument %d: unsupported type %s", i, api.ValueTypeName(types[i]))
		}
	}
	return out, nil
}

func formatResults(types []api.ValueType, values []uint64) []string {
	out := make([]string, len(values))
	for i, v := range values {
		switch types[i] {
		case api.ValueTypeI32:
			out[i] = strconv.FormatInt(int64(api.DecodeI32(v)), 10)
		case api.ValueTypeI64:
			out[i] = strconv.FormatInt(int64(v), 10)
		case api.ValueTypeF32:
			out[i] = strconv.FormatFloat(float64(api.DecodeF32(v)), 'g', -1, 32)
		case api.ValueTypeF64:
			out[i] = strconv.FormatFloat(api.DecodeF64(v), 'g', -1, 64)
		default:
			out[i] = fmt.Sprintf("0x%x", v)
		}
	}
	return out
}
