// Package dce removes functions that no root can reach.
//
// Roots are exported functions, the start function and every call table
// entry. Reachability follows direct calls; indirect calls only reach the
// table, which is already a root. Unreferenced imports are removed as well.
package dce

import (
	"go.uber.org/zap"

	"github.com/wippyai/wasm-backend/model"
)

// Stats holds metrics about one elimination pass.
type Stats struct {
	TotalFunctions   int
	RemovedFunctions int
	Removed          []string
}

// Run removes every function of mod that is unreachable from the roots.
// Running it again on the result removes nothing. A nil logger is allowed.
func Run(mod *model.Module, logger *zap.Logger) Stats {
	if logger == nil {
		logger = zap.NewNop()
	}
	stats := Stats{TotalFunctions: mod.FunctionCount()}

	reachable := markReachable(mod, roots(mod))

	var dead []*model.Function
	for f := range mod.Functions() {
		if !reachable[f] {
			dead = append(dead, f)
		}
	}
	for _, f := range dead {
		mod.RemoveFunction(f)
		stats.Removed = append(stats.Removed, f.Name())
	}
	stats.RemovedFunctions = len(dead)
	logger.Debug("dead functions removed",
		zap.Int("total", stats.TotalFunctions),
		zap.Int("removed", stats.RemovedFunctions),
		zap.Strings("names", stats.Removed))
	return stats
}

func roots(mod *model.Module) []*model.Function {
	var out []*model.Function
	for f := range mod.Functions() {
		if f.ExportName != "" {
			out = append(out, f)
		}
	}
	if mod.StartFunction != nil {
		out = append(out, mod.StartFunction)
	}
	return append(out, mod.FunctionTable...)
}

func markReachable(mod *model.Module, roots []*model.Function) map[*model.Function]bool {
	reachable := make(map[*model.Function]bool)
	work := roots
	for len(work) > 0 {
		f := work[len(work)-1]
		work = work[:len(work)-1]
		if f == nil || reachable[f] || f.Module() != mod {
			continue
		}
		reachable[f] = true
		model.WalkBody(f.Body, func(e model.Expression) bool {
			if call, ok := e.(*model.Call); ok && !reachable[call.Function] {
				work = append(work, call.Function)
			}
			return true
		})
	}
	return reachable
}
