package lower

import "go.uber.org/zap"

// DefaultImportModule is the import namespace of native methods that do not
// name one.
const DefaultImportModule = "teavm"

// Option configures a Generator.
type Option func(*Generator)

// WithLogger sets the session logger.
func WithLogger(l *zap.Logger) Option {
	return func(g *Generator) {
		if l != nil {
			g.logger = l
		}
	}
}

// WithAllMethods makes every method a root, not only exported and start
// methods. Unused ones can be dropped later by dead code elimination.
func WithAllMethods(all bool) Option {
	return func(g *Generator) {
		g.allMethods = all
	}
}

// WithImportModule sets the import namespace for native methods.
func WithImportModule(name string) Option {
	return func(g *Generator) {
		if name != "" {
			g.importModule = name
		}
	}
}

// WithMemory sets the module's memory limits in pages.
func WithMemory(minPages, maxPages int) Option {
	return func(g *Generator) {
		g.module.MinMemorySize = minPages
		g.module.MaxMemorySize = maxPages
	}
}
