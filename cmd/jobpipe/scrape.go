package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/amishk599/jobpipe/internal/model"
)

var (
	scrapeOutput    string
	scrapeNormalize bool
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape [URL...]",
	Short: "Fetch jobs without storing them",
	Long:  "Runs only the fetch stage (optionally followed by normalization) and prints the jobs as JSON. Nothing is stored.",
	RunE:  runScrape,
}

func init() {
	scrapeCmd.Flags().StringVarP(&scrapeOutput, "output", "o", "", "write the jobs JSON to this file instead of stdout")
	scrapeCmd.Flags().BoolVar(&scrapeNormalize, "normalize", false, "also run the normalize stage")
	rootCmd.AddCommand(scrapeCmd)
}

func runScrape(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return err
	}
	urls, err := urlsOrSchedule(args, cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, true, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	jobs, err := a.pipeline.ScrapeOnly(ctx, urls)
	if err != nil {
		return err
	}
	if scrapeNormalize {
		if jobs, err = a.pipeline.NormalizeJobs(ctx, jobs); err != nil {
			return err
		}
	}
	if jobs == nil {
		jobs = []model.Job{}
	}
	logger.Info("scrape complete", "urls", len(urls), "jobs", len(jobs))
	return writeJSON(scrapeOutput, jobs)
}
