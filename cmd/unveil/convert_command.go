package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newConvertCommand(ctx *commandContext) *cobra.Command {
	var handsDir string
	var screenshotsDir string
	var outputDir string
	var dumpDir string
	var apiKey string

	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Recognize screenshots and rewrite hand histories in one pass",
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

			if apiKey != "" {
				cfg.Recognition.APIKey = apiKey
			}
			hands := firstNonEmpty(handsDir, cfg.Paths.HandsDir)
			screenshots := firstNonEmpty(screenshotsDir, cfg.Paths.ScreenshotsDir)
			output := firstNonEmpty(outputDir, cfg.Paths.OutputDir)
			dumps := firstNonEmpty(dumpDir, cfg.Paths.DumpDir)

			dumpPath, err := runRecognition(cfg, logger, screenshots, dumps)
			if err != nil {
				return err
			}
			summary, err := runRewrite(logger, dumpPath, hands, output)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Converted %d hands, skipped %d\n", summary.Converted, summary.Skipped)
			fmt.Fprintf(out, "Output written to %s\n", output)
			return nil
		},
	}

	cmd.Flags().StringVar(&handsDir, "hands", "", "Hand-history directory (overrides config)")
	cmd.Flags().StringVar(&screenshotsDir, "screenshots", "", "Screenshot directory (overrides config)")
	cmd.Flags().StringVar(&outputDir, "output", "", "Output directory (overrides config)")
	cmd.Flags().StringVar(&dumpDir, "dump-dir", "", "Dump directory (overrides config)")
	cmd.Flags().StringVar(&apiKey, "api-key", "", "Recognition API key (overrides config and environment)")
	return cmd
}
