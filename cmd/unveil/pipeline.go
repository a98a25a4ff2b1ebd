package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/google/uuid"

	"unveil/internal/config"
	"unveil/internal/dump"
	"unveil/internal/handhistory"
	"unveil/internal/logging"
	"unveil/internal/recogcache"
	"unveil/internal/recognize"
	"unveil/internal/vision"
)

const (
	convertedFileName = "converted_hands.txt"
	skippedFileName   = "skipped_hands.txt"
)

// runRecognition drives the screenshot half of the pipeline: it feeds every
// capture in screenshotsDir through the recognition service and persists the
// outcome as a dump file under dumpDir. An interrupt cancels the run
// cooperatively; whatever was recognized up to that point is still written.
func runRecognition(cfg *config.Config, logger *slog.Logger, screenshotsDir, dumpDir string) (string, error) {
	paths, err := listScreenshots(screenshotsDir)
	if err != nil {
		return "", err
	}
	if len(paths) == 0 {
		return "", fmt.Errorf("no screenshots found in %s", screenshotsDir)
	}

	mapping, err := handhistory.LoadSeatMapping(cfg.Paths.SeatMapping)
	if err != nil {
		return "", fmt.Errorf("load seat mapping: %w", err)
	}

	client := vision.NewClient(vision.Config{
		APIKey:         cfg.Recognition.APIKey,
		BaseURL:        cfg.Recognition.BaseURL,
		Model:          cfg.Recognition.Model,
		TimeoutSeconds: cfg.Recognition.TimeoutSeconds,
	})

	var cache *recogcache.Store
	if cfg.Cache.Enabled {
		cache, err = recogcache.Open(cfg.Cache.Path)
		if err != nil {
			return "", fmt.Errorf("open recognition cache: %w", err)
		}
		defer cache.Close()
	}

	processor := recognize.NewProcessor(client, recognize.Options{
		MaxConcurrency: cfg.Recognition.MaxConcurrency,
		CallsPerMinute: cfg.Recognition.CallsPerMinute,
		Tolerance:      cfg.Recognition.Tolerance,
		Hints:          vision.DefaultFewShot(),
		Cache:          cache,
		Observer:       newConsoleProgress(os.Stdout),
		Logger:         logger,
	})

	// Interrupts stop new work units; in-flight recognition calls finish
	// and their results land in the dump.
	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	go func() {
		<-sigCtx.Done()
		processor.Cancel()
	}()

	results, failures := processor.Process(context.Background(), paths)

	path, err := dump.Write(results, failures, dumpDir, dump.WriteOptions{
		RunID:        uuid.NewString(),
		SourceFolder: screenshotsDir,
		SeatMappings: mapping,
	})
	if err != nil {
		return "", err
	}
	logger.Info("dump written",
		logging.String("path", path),
		logging.Int("results", len(results)),
		logging.Int("failures", len(failures)))
	return path, nil
}

// runRewrite drives the text half of the pipeline: it joins the hand
// histories under handsDir with a recognition dump and writes the converted
// and skipped documents under outputDir. Per-hand misses land in the skip
// ledger, never in the returned error.
func runRewrite(logger *slog.Logger, dumpPath, handsDir, outputDir string) (handhistory.Summary, error) {
	lookup, err := dump.Read(dumpPath)
	if err != nil {
		return handhistory.Summary{}, err
	}

	files, err := listHandFiles(handsDir)
	if err != nil {
		return handhistory.Summary{}, err
	}
	if len(files) == 0 {
		return handhistory.Summary{}, fmt.Errorf("no hand-history files found in %s", handsDir)
	}

	var hands []*handhistory.Hand
	for _, file := range files {
		parsed, err := handhistory.ParseFile(file)
		if err != nil {
			return handhistory.Summary{}, err
		}
		hands = append(hands, parsed...)
	}
	if len(hands) == 0 {
		return handhistory.Summary{}, fmt.Errorf("no parseable hands found in %s", handsDir)
	}

	outcomes := handhistory.ConvertAll(hands, lookup)
	if err := handhistory.WriteConverted(outcomes, filepath.Join(outputDir, convertedFileName)); err != nil {
		return handhistory.Summary{}, err
	}
	if err := handhistory.WriteSkipped(outcomes, filepath.Join(outputDir, skippedFileName)); err != nil {
		return handhistory.Summary{}, err
	}

	summary := handhistory.Summarize(outcomes)
	logger.Info("rewrite finished",
		logging.String("dump", dumpPath),
		logging.Int("hands", len(hands)),
		logging.Int("converted", summary.Converted),
		logging.Int("skipped", summary.Skipped))
	return summary, nil
}
