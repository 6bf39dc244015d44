package main

import (
	"fmt"
	"slices"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/wippyai/wasm-backend/intrinsic"
)

var intrinsicClasses = map[string]string{
	intrinsic.NameAllocator: intrinsic.AllocatorClass,
	intrinsic.NameAddress:   intrinsic.AddressClass,
	intrinsic.NameNumeric:   "java.lang.Integer, Long, Float, Double, Math",
	intrinsic.NameMemory:    intrinsic.MemoryClass,
}

func newIntrinsicsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "intrinsics",
		Short: "List built-in intrinsics in resolution order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			names := intrinsic.Builtins()
			width := 0
			for _, n := range names {
				width = max(width, runewidth.StringWidth(n))
			}
			for _, n := range names {
				status := okColor.Sprint("enabled ")
				if slices.Contains(a.cfg.Intrinsics.Disabled, n) {
					status = dimColor.Sprint("disabled")
				}
				fmt.Fprintf(out, "%s  %s  %s\n", nameColor.Sprint(runewidth.FillRight(n, width)), status, intrinsicClasses[n])
			}
			return nil
		},
	}
}
