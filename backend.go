package wasmbackend

import (
	"context"

	"github.com/wippyai/wasm-backend/config"
	"github.com/wippyai/wasm-backend/driver"
	"github.com/wippyai/wasm-backend/frontend"
)

// Compile loads an HCL program from src and returns the encoded module.
func Compile(ctx context.Context, src []byte, filename string, cfg config.Config, opts ...driver.Option) ([]byte, error) {
	program, err := frontend.Parse(src, filename)
	if err != nil {
		return nil, err
	}
	res, err := driver.New(cfg, opts...).Compile(ctx, program)
	if err != nil {
		return nil, err
	}
	return res.Binary, nil
}
