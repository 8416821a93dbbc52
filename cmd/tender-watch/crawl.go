// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/pdiddy/tender-watch/internal/crawler"
	"github.com/pdiddy/tender-watch/internal/filter"
	"github.com/pdiddy/tender-watch/internal/logger"
	"github.com/pdiddy/tender-watch/internal/report"
	"github.com/pdiddy/tender-watch/internal/store"
	"github.com/pdiddy/tender-watch/pkg/types"
)

var crawlCmd = &cobra.Command{
	Use:   "crawl [sources...]",
	Short: "Run the crawl-filter-report pipeline once",
	Long: `Crawl fetches announcement lists from the configured sources (all enabled
sources by default, or only the ones named as arguments), runs the filter
pipeline over the results, and writes the HTML report. Records that pass
the filters are archived in the SQLite database.`,
	RunE: runCrawl,
}

func init() {
	crawlCmd.Flags().Int("max-pages", 0, "pages to fetch per source (default from config)")
	crawlCmd.Flags().StringSlice("keywords", nil, "override configured keywords (comma-separated)")
	crawlCmd.Flags().String("run-file", "", "also save the run as a YAML file at this path")
	crawlCmd.Flags().Bool("no-archive", false, "skip writing accepted records to the archive database")

	rootCmd.AddCommand(crawlCmd)
}

func runCrawl(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	defer log.Sync()

	if maxPages, _ := cmd.Flags().GetInt("max-pages"); maxPages > 0 {
		cfg.Crawler.MaxPages = maxPages
	}
	keywords := cfg.FlatKeywords()
	if kw, _ := cmd.Flags().GetStringSlice("keywords"); len(kw) > 0 {
		keywords = kw
	}
	runFile, _ := cmd.Flags().GetString("run-file")
	noArchive, _ := cmd.Flags().GetBool("no-archive")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runPipeline(ctx, cfg, log, args, keywords, runFile, !noArchive)
}

// runPipeline executes one crawl-filter-report cycle. sources limits the
// run to the named sources; empty means all enabled sources.
func runPipeline(ctx context.Context, cfg *types.Config, log logger.Logger, sources, keywords []string, runFile string, archive bool) error {
	eng := crawler.NewEngine(cfg, log)
	defer eng.Close()

	all := len(sources) == 0
	if all {
		sources = eng.Sources()
	}
	if len(sources) == 0 {
		return fmt.Errorf("no sources enabled; check the websites section of the config")
	}

	start := time.Now()
	var fetched []types.Record
	if all {
		fetched = eng.CrawlAll(ctx, keywords, cfg.Crawler.MaxPages)
	} else {
		for _, name := range sources {
			fetched = append(fetched, eng.CrawlSource(ctx, name, keywords, cfg.Crawler.MaxPages)...)
		}
	}
	log.Info("crawl finished",
		logger.Int("records", len(fetched)),
		logger.Duration("elapsed", time.Since(start)))

	pipe := filter.New(cfg.Filters, keywords, cfg.EnabledIndustries(), log)
	accepted, stats := pipe.Filter(fetched)

	var arch *archiveSummary
	if archive {
		var err error
		arch, err = archiveRecords(ctx, cfg.Output.DataDir, accepted, log)
		if err != nil {
			return err
		}
	}

	renderStatsTable(os.Stdout, stats, arch)

	gen, err := report.NewGenerator(cfg.Output, log)
	if err != nil {
		return err
	}
	now := time.Now()
	if _, err := gen.Generate(accepted, filter.Summarize(accepted), now); err != nil {
		return fmt.Errorf("generating report: %w", err)
	}
	if _, err := gen.SaveJSON(accepted, now); err != nil {
		return fmt.Errorf("saving data snapshot: %w", err)
	}

	if runFile != "" {
		if err := report.WriteRunFile(runFile, sources, keywords, cfg.Crawler, cfg.Filters, accepted, stats); err != nil {
			return fmt.Errorf("writing run file: %w", err)
		}
	}

	return ctx.Err()
}

// archiveSummary holds the archive-side counts for the stats table.
type archiveSummary struct {
	seenBefore int
	inserted   int
	total      int
}

// archiveRecords writes the accepted records to the archive database and
// reports how many were already known from earlier runs plus the archive
// total afterwards.
func archiveRecords(ctx context.Context, dataDir string, accepted []types.Record, log logger.Logger) (*archiveSummary, error) {
	db, err := store.Open(dataDir)
	if err != nil {
		return nil, fmt.Errorf("opening archive: %w", err)
	}
	defer db.Close()

	fingerprints := make([]string, len(accepted))
	for i := range accepted {
		fingerprints[i] = accepted[i].Fingerprint()
	}
	known, err := db.Known(ctx, fingerprints)
	if err != nil {
		return nil, fmt.Errorf("checking archive: %w", err)
	}

	sum, err := db.Save(ctx, accepted)
	if err != nil {
		return nil, fmt.Errorf("archiving records: %w", err)
	}
	total, err := db.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting archive: %w", err)
	}

	log.Info("records archived",
		logger.Int("inserted", sum.Inserted),
		logger.Int("seen_before", len(known)),
		logger.Int("archive_total", total))
	return &archiveSummary{seenBefore: len(known), inserted: sum.Inserted, total: total}, nil
}

// renderStatsTable prints the per-stage filter counts, and the archive
// split when the run archived its records.
func renderStatsTable(out io.Writer, stats filter.Stats, arch *archiveSummary) {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Stage", "Count"})
	t.AppendRows([]table.Row{
		{"fetched", stats.Total},
		{"invalid", stats.Invalid},
		{"duplicate", stats.Duplicate},
		{"no keyword", stats.NoKeyword},
		{"out of date", stats.OutOfDate},
		{"out of amount", stats.OutOfAmount},
	})
	if arch != nil {
		t.AppendRows([]table.Row{
			{"archived new", arch.inserted},
			{"seen in earlier runs", arch.seenBefore},
			{"archive total", arch.total},
		})
	}
	t.AppendFooter(table.Row{"accepted", stats.Passed})
	t.Render()
}
