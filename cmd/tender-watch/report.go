// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/tender-watch/internal/filter"
	"github.com/pdiddy/tender-watch/internal/report"
)

var reportCmd = &cobra.Command{
	Use:   "report <run-file>",
	Short: "Regenerate the HTML report from a saved run file",
	Long: `Report rebuilds the HTML report and JSON snapshot from a YAML run file
written by an earlier crawl --run-file invocation, without re-crawling
the sources.`,
	Args: cobra.ExactArgs(1),
	RunE: runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	defer log.Sync()

	rf, err := report.ReadRunFile(args[0])
	if err != nil {
		return err
	}

	gen, err := report.NewGenerator(cfg.Output, log)
	if err != nil {
		return err
	}
	day := rf.Summary.Timestamp
	if day.IsZero() {
		day = time.Now()
	}
	path, err := gen.Generate(rf.Records, filter.Summarize(rf.Records), day)
	if err != nil {
		return fmt.Errorf("generating report: %w", err)
	}
	if _, err := gen.SaveJSON(rf.Records, day); err != nil {
		return fmt.Errorf("saving data snapshot: %w", err)
	}
	fmt.Println("Report written to", path)
	return nil
}
