package driver

import (
	"context"

	"github.com/tetratelabs/wazero"

	"github.com/wippyai/wasm-backend/errors"
)

// Verify compiles bin with wazero without instantiating it, so modules
// with unresolved imports still pass.
func Verify(ctx context.Context, bin []byte) error {
	rt := wazero.NewRuntime(ctx)
	defer rt.Close(ctx)

	compiled, err := rt.CompileModule(ctx, bin)
	if err != nil {
		return errors.Wrap(errors.PhaseVerify, errors.KindInvalidData, err, "wazero rejected module")
	}
	return compiled.Close(ctx)
}
