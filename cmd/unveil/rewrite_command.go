package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRewriteCommand(ctx *commandContext) *cobra.Command {
	var dumpPath string
	var handsDir string
	var outputDir string

	cmd := &cobra.Command{
		Use:   "rewrite",
		Short: "Rewrite hand histories from an existing recognition dump",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.newLogger()
			if err != nil {
				return err
			}
			lock, err := ctx.acquireRunLock()
			if err != nil {
				return err
			}
			defer lock.Unlock()

			source := dumpPath
			if source == "" {
				source, err = latestDump(cfg.Paths.DumpDir)
				if err != nil {
					return err
				}
			}
			hands := firstNonEmpty(handsDir, cfg.Paths.HandsDir)
			output := firstNonEmpty(outputDir, cfg.Paths.OutputDir)

			summary, err := runRewrite(logger, source, hands, output)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Converted %d hands, skipped %d using %s\n", summary.Converted, summary.Skipped, source)
			return nil
		},
	}

	cmd.Flags().StringVar(&dumpPath, "dump", "", "Recognition dump file (defaults to the most recent)")
	cmd.Flags().StringVar(&handsDir, "hands", "", "Hand-history directory (overrides config)")
	cmd.Flags().StringVar(&outputDir, "output", "", "Output directory (overrides config)")
	return cmd
}
