// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/pdiddy/tender-watch/internal/store"
	"github.com/pdiddy/tender-watch/internal/textutil"
)

var archiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "List recently archived records",
	Long: `Archive lists the records accumulated in the archive database by
earlier crawl runs, newest first, limited to a publish-date window.`,
	RunE: runArchive,
}

func init() {
	archiveCmd.Flags().Int("days", 7, "list records published within the last N days")

	rootCmd.AddCommand(archiveCmd)
}

func runArchive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	days, _ := cmd.Flags().GetInt("days")

	db, err := store.Open(cfg.Output.DataDir)
	if err != nil {
		return fmt.Errorf("opening archive: %w", err)
	}
	defer db.Close()

	ctx := cmd.Context()
	since := time.Now().AddDate(0, 0, -days)
	recs, err := db.Recent(ctx, since)
	if err != nil {
		return fmt.Errorf("listing archive: %w", err)
	}
	total, err := db.Count(ctx)
	if err != nil {
		return fmt.Errorf("counting archive: %w", err)
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Title", "Source", "Published", "Purchaser", "Budget (万元)"})
	for _, rec := range recs {
		published := "-"
		if !rec.PublishDate.IsZero() {
			published = rec.PublishDate.Format("2006-01-02")
		}
		budget := "-"
		if rec.Budget > 0 {
			budget = fmt.Sprintf("%.2f", rec.Budget)
		}
		t.AppendRow(table.Row{
			textutil.Truncate(rec.Title, 40),
			rec.Source,
			published,
			textutil.Truncate(rec.Purchaser, 20),
			budget,
		})
	}
	t.AppendFooter(table.Row{fmt.Sprintf("last %d days: %d", days, len(recs)), "", "", "archive total", total})
	t.Render()
	return nil
}
