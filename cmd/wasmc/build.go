package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/wippyai/wasm-backend/driver"
)

func newBuildCmd(a *app) *cobra.Command {
	var (
		outDir string
		jobs   int
	)
	cmd := &cobra.Command{
		Use:   "build FILE.hcl...",
		Short: "Compile program files to .wasm modules",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d := driver.New(a.cfg, driver.WithLogger(a.logger), driver.WithJobs(jobs))
			results, err := d.CompileFiles(cmd.Context(), args)
			if err != nil {
				return err
			}
			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, res := range results {
				path := filepath.Join(outDir, res.Program+".wasm")
				if err := os.WriteFile(path, res.Binary, 0o644); err != nil {
					return err
				}
				okColor.Fprint(out, "built ")
				fmt.Fprintf(out, "%s %s\n", nameColor.Sprint(path),
					dimColor.Sprintf("(%d bytes, %d functions, %d removed)",
						len(res.Binary), res.Module.FunctionCount(), res.DCE.RemovedFunctions))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "output directory")
	cmd.Flags().IntVarP(&jobs, "jobs", "j", 0, "parallel sessions (0 = GOMAXPROCS)")
	return cmd
}
