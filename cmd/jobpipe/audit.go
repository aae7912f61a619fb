package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/amishk599/jobpipe/internal/audit"
	"github.com/amishk599/jobpipe/internal/config"
	"github.com/amishk599/jobpipe/internal/model"
)

// auditLimit caps how many stored jobs the TUI loads at once.
const auditLimit = 1000

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Browse stored jobs interactively (TUI)",
	Long:  "Shows the status picker, then the split-pane view of stored jobs and the ones that meet the response criteria.",
	RunE:  runAuditCmd,
}

func init() {
	rootCmd.AddCommand(auditCmd)
}

func runAuditCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return err
	}

	repo, _, err := openRepository(context.Background(), cfg.Storage, false)
	if err != nil {
		return err
	}
	defer repo.Close()

	// Log output before the alt-screen starts corrupts the display.
	silentLogger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return runAudit(cfg, repo, silentLogger)
}

func runAudit(cfg *config.Config, repo model.JobRepository, logger *slog.Logger) error {
	previewer := newResponder(cfg, logger)

	for {
		counts, err := repo.CountByStatus(context.Background())
		if err != nil {
			return err
		}
		options := audit.StatusOptions(counts)

		choice, err := audit.RunStatusPicker(options)
		if err != nil {
			return fmt.Errorf("picker: %w", err)
		}
		if choice < 0 {
			return nil
		}
		opt := options[choice]

		jobs, err := audit.RunLoader(opt.Label, func(ctx context.Context) ([]model.Job, error) {
			return repo.ListJobs(ctx, model.JobQuery{Status: opt.Status, Limit: auditLimit})
		})
		if errors.Is(err, audit.ErrCancelled) {
			return nil
		}
		if err != nil {
			fmt.Printf("Error loading jobs: %v\n", err)
			continue
		}

		wantQuit, err := audit.RunAuditTUI(jobs, cfg.Responder.Criteria, previewer)
		if err != nil {
			fmt.Printf("TUI error: %v\n", err)
		}
		if wantQuit {
			return nil
		}
		// else: loop → back to picker
	}
}
