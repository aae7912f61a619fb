package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/amishk599/jobpipe/internal/model"
)

var (
	jobsStatus string
	jobsLimit  int
	jobsOffset int
	jobsJSON   bool
)

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "List stored jobs",
	Long:  "Lists stored jobs, newest first, optionally filtered by status.",
	RunE:  runJobs,
}

func init() {
	jobsCmd.Flags().StringVar(&jobsStatus, "status", "", "only jobs with this status (new, normalized, stored, responded, rejected, error)")
	jobsCmd.Flags().IntVar(&jobsLimit, "limit", model.DefaultJobQueryLimit, "maximum number of jobs")
	jobsCmd.Flags().IntVar(&jobsOffset, "offset", 0, "number of jobs to skip")
	jobsCmd.Flags().BoolVar(&jobsJSON, "json", false, "print jobs as JSON")
	rootCmd.AddCommand(jobsCmd)
}

func runJobs(cmd *cobra.Command, args []string) error {
	q := model.JobQuery{Limit: jobsLimit, Offset: jobsOffset}
	if jobsStatus != "" {
		st, err := model.ParseJobStatus(jobsStatus)
		if err != nil {
			return err
		}
		q.Status = &st
	}
	if q.Limit < 1 || q.Offset < 0 {
		return fmt.Errorf("--limit must be at least 1 and --offset not negative")
	}

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return err
	}

	ctx := context.Background()
	repo, _, err := openRepository(ctx, cfg.Storage, false)
	if err != nil {
		return err
	}
	defer repo.Close()

	jobs, err := repo.ListJobs(ctx, q)
	if err != nil {
		return err
	}
	if jobsJSON {
		if jobs == nil {
			jobs = []model.Job{}
		}
		return writeJSON("", jobs)
	}

	fmt.Printf("%-32s %-11s %-25s %s\n", "ID", "Status", "Company", "Title")
	fmt.Println(strings.Repeat("─", 100))
	for _, j := range jobs {
		fmt.Printf("%-32s %-11s %-25s %s\n", j.ID, j.Status, truncate(j.Company, 25), j.Title)
	}
	fmt.Printf("\nShowing %d jobs (offset %d)\n", len(jobs), q.Offset)
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
