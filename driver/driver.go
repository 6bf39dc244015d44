// Package driver runs complete compilation sessions: program in, verified
// binary out. Independent programs compile in parallel, one session per
// goroutine with no shared mutable state.
package driver

import (
	"context"
	"runtime"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/wippyai/wasm-backend/config"
	"github.com/wippyai/wasm-backend/dce"
	"github.com/wippyai/wasm-backend/debuginfo"
	"github.com/wippyai/wasm-backend/emit"
	"github.com/wippyai/wasm-backend/frontend"
	"github.com/wippyai/wasm-backend/intrinsic"
	"github.com/wippyai/wasm-backend/ir"
	"github.com/wippyai/wasm-backend/lower"
	"github.com/wippyai/wasm-backend/model"
)

// Result is the output of one session.
type Result struct {
	Module   *model.Module
	Methods  map[string]ir.MethodReference
	Program  string
	Binary   []byte
	DCE      dce.Stats
	Verified bool
}

type extension struct {
	intrinsic intrinsic.Intrinsic
	name      string
}

// Driver compiles programs under one configuration.
type Driver struct {
	logger     *zap.Logger
	extensions []extension
	cfg        config.Config
	jobs       int
}

// Option configures a Driver.
type Option func(*Driver)

// WithLogger sets the logger handed to every stage.
func WithLogger(l *zap.Logger) Option {
	return func(d *Driver) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithIntrinsic registers an extra intrinsic in every session, after the
// built-in ones.
func WithIntrinsic(name string, in intrinsic.Intrinsic) Option {
	return func(d *Driver) {
		d.extensions = append(d.extensions, extension{intrinsic: in, name: name})
	}
}

// WithJobs bounds parallel sessions. Zero or less means GOMAXPROCS.
func WithJobs(n int) Option {
	return func(d *Driver) {
		d.jobs = n
	}
}

// New creates a driver for cfg.
func New(cfg config.Config, opts ...Option) *Driver {
	d := &Driver{cfg: cfg, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(d)
	}
	if d.jobs <= 0 {
		d.jobs = runtime.GOMAXPROCS(0)
	}
	return d
}

// Config returns the driver's configuration.
func (d *Driver) Config() config.Config {
	return d.cfg
}

// Compile lowers, optimizes, encodes and optionally verifies one program.
func (d *Driver) Compile(ctx context.Context, program *ir.Program) (*Result, error) {
	logger := d.logger.With(zap.String("program", program.Name))

	registry := d.cfg.Registry()
	for _, ext := range d.extensions {
		if err := registry.Register(ext.name, ext.intrinsic); err != nil {
			return nil, err
		}
	}

	gen := lower.New(program, registry, append(d.cfg.LowerOptions(), lower.WithLogger(logger))...)
	mod, err := gen.Generate()
	if err != nil {
		return nil, err
	}
	res := &Result{Program: program.Name, Module: mod, Methods: gen.Methods()}

	if d.cfg.Optimize.DCE {
		res.DCE = dce.Run(mod, logger)
	}
	if d.cfg.Output.DebugInfo {
		if err := debuginfo.Attach(mod, res.Methods); err != nil {
			return nil, err
		}
	}

	opts := []emit.Option{emit.WithLogger(logger)}
	if d.cfg.Output.NameSection {
		opts = append(opts, emit.WithNameSection(program.Name))
	}
	if res.Binary, err = emit.Encode(mod, opts...); err != nil {
		return nil, err
	}

	if d.cfg.Verify.Enabled {
		if mod.TagCount() > 0 {
			logger.Debug("verification skipped: module uses exception tags")
		} else {
			if err := Verify(ctx, res.Binary); err != nil {
				return nil, err
			}
			res.Verified = true
		}
	}

	logger.Info("module compiled",
		zap.Int("functions", mod.FunctionCount()),
		zap.Int("removed", res.DCE.RemovedFunctions),
		zap.Int("bytes", len(res.Binary)),
		zap.Bool("verified", res.Verified))
	return res, nil
}

// CompileAll compiles independent programs in parallel. Results keep the
// input order. The first failure cancels the remaining sessions.
func (d *Driver) CompileAll(ctx context.Context, programs []*ir.Program) ([]*Result, error) {
	results := make([]*Result, len(programs))
	if len(programs) == 0 {
		return results, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(d.jobs, len(programs)))
	for i, p := range programs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := d.Compile(gctx, p)
			if err != nil {
				d.logger.Error("compile failed", zap.String("program", p.Name), zap.Error(err))
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// CompileFiles loads HCL program files and compiles them in parallel.
func (d *Driver) CompileFiles(ctx context.Context, paths []string) ([]*Result, error) {
	programs := make([]*ir.Program, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, min(d.jobs, len(paths))))
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			p, err := frontend.LoadFile(path)
			if err != nil {
				return err
			}
			programs[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return d.CompileAll(ctx, programs)
}
