// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/pdiddy/tender-watch/internal/logger"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run the pipeline on a cron schedule",
	Long: `Schedule keeps tender-watch running and executes the full crawl
pipeline on a cron expression (default: every morning at 09:00). The
process runs until interrupted.`,
	RunE: runSchedule,
}

func init() {
	scheduleCmd.Flags().String("cron", "0 9 * * *", "cron expression for pipeline runs")
	scheduleCmd.Flags().Bool("immediate", false, "run the pipeline once at startup before scheduling")

	rootCmd.AddCommand(scheduleCmd)
}

func runSchedule(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	defer log.Sync()

	spec, _ := cmd.Flags().GetString("cron")
	immediate, _ := cmd.Flags().GetBool("immediate")
	keywords := cfg.FlatKeywords()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	run := func() {
		if err := runPipeline(ctx, cfg, log, nil, keywords, "", true); err != nil && ctx.Err() == nil {
			log.Error("scheduled run failed", logger.Err(err))
		}
	}

	c := cron.New()
	if _, err := c.AddFunc(spec, run); err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", spec, err)
	}

	if immediate {
		run()
		if ctx.Err() != nil {
			return nil
		}
	}

	log.Info("scheduler started", logger.String("cron", spec))
	c.Start()

	<-ctx.Done()
	log.Info("scheduler stopping")

	// let an in-flight run finish
	<-c.Stop().Done()
	return nil
}
