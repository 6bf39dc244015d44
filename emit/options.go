package emit

import "go.uber.org/zap"

// DefaultMemoryExport is the export name of the module's memory.
const DefaultMemoryExport = "memory"

type options struct {
	logger       *zap.Logger
	memoryExport string
	names        bool
	moduleName   string
}

// Option configures Build.
type Option func(*options)

// WithLogger sets the logger for emission diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMemoryExport exports memory under name. An empty name keeps memory
// private.
func WithMemoryExport(name string) Option {
	return func(o *options) {
		o.memoryExport = name
	}
}

// WithNameSection appends a "name" section with function and local names.
func WithNameSection(moduleName string) Option {
	return func(o *options) {
		o.names = true
		o.moduleName = moduleName
	}
}
