package main

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/amishk599/jobpipe/internal/model"
)

var statusJSON bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show stage configuration and stored job counts",
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "print the report as JSON")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return err
	}

	ctx := context.Background()
	a, err := newApp(ctx, cfg, false, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	report := a.pipeline.Status()
	counts, err := a.pipeline.CountByStatus(ctx)
	if err != nil {
		return err
	}

	if statusJSON {
		byStatus := make(map[string]int, len(counts))
		for st, n := range counts {
			byStatus[string(st)] = n
		}
		return writeJSON("", map[string]any{
			"orchestrator": report.Orchestrator,
			"agents":       report.Agents,
			"jobs":         byStatus,
		})
	}

	fmt.Printf("Orchestrator: %s\n\n", report.Orchestrator)
	fmt.Printf("%-12s %-18s %s\n", "Stage", "Agent", "Status")
	fmt.Println(strings.Repeat("─", 40))
	stages := make([]string, 0, len(report.Agents))
	for stage := range report.Agents {
		stages = append(stages, stage)
	}
	sort.Strings(stages)
	for _, stage := range stages {
		ag := report.Agents[stage]
		fmt.Printf("%-12s %-18s %s\n", stage, ag.Name, ag.Status)
	}

	fmt.Printf("\n%-12s %s\n", "Job status", "Count")
	fmt.Println(strings.Repeat("─", 20))
	total := 0
	for _, st := range model.JobStatuses() {
		fmt.Printf("%-12s %d\n", st, counts[st])
		total += counts[st]
	}
	fmt.Printf("\nTotal: %d jobs\n", total)
	return nil
}
