package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRecognizeCommand(ctx *commandContext) *cobra.Command {
	var screenshotsDir string
	var dumpDir string
	var apiKey string

	cmd := &cobra.Command{
		Use:   "recognize",
		Short: "Recognize screenshots and write a recognition dump",
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
			screenshots := firstNonEmpty(screenshotsDir, cfg.Paths.ScreenshotsDir)
			dumps := firstNonEmpty(dumpDir, cfg.Paths.DumpDir)

			dumpPath, err := runRecognition(cfg, logger, screenshots, dumps)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Dump written to %s\n", dumpPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&screenshotsDir, "screenshots", "", "Screenshot directory (overrides config)")
	cmd.Flags().StringVar(&dumpDir, "output", "", "Dump directory (overrides config)")
	cmd.Flags().StringVar(&apiKey, "api-key", "", "Recognition API key (overrides config and environment)")
	return cmd
}
