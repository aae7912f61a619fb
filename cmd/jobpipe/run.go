package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	runOutput string
	runDryRun bool
)

var runCmd = &cobra.Command{
	Use:   "run [URL...]",
	Short: "Run the full pipeline once",
	Long: "Fetches every URL, normalizes and stores the jobs, then drafts responses.\n" +
		"With no URLs the configured schedule.urls are used. The result is printed as JSON.",
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVarP(&runOutput, "output", "o", "", "write the result JSON to this file instead of stdout")
	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false, "do not persist jobs")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return err
	}
	urls, err := urlsOrSchedule(args, cfg)
	if err != nil {
		return err
	}
	if runDryRun {
		logger.Info("dry-run mode enabled, no jobs will be stored")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, runDryRun, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	res, runErr := a.pipeline.RunPipeline(ctx, urls)
	if res != nil {
		if err := writeJSON(runOutput, res); err != nil {
			return err
		}
		logger.Info("run complete",
			"urls", res.URLsProcessed,
			"scraped", res.JobsScraped,
			"stored", res.JobsStored,
			"responses", res.ResponsesGenerated,
			"seconds", res.ExecutionTimeSeconds,
		)
	}
	return runErr
}

// writeJSON pretty-prints v to path, or to stdout when path is empty.
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}
	data = append(data, '\n')
	if path == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
