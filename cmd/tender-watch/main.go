// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the tender-watch CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/tender-watch/internal/logger"
	"github.com/pdiddy/tender-watch/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the tender-watch CLI.
var rootCmd = &cobra.Command{
	Use:   "tender-watch",
	Short: "Crawl and filter public tender announcements",
	Long: `tender-watch crawls configured procurement sites for tender and bid
announcements, filters them by keyword, date window and budget, classifies
them by industry, and produces HTML reports plus a SQLite archive.

Sources, keywords, industries and filter thresholds are defined in the
configuration file; crawl runs a one-shot pipeline and schedule keeps it
running on a cron expression.`,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./tender-watch.yaml or ~/.config/tender-watch/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("tender-watch")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "tender-watch"))
		}
	}

	viper.SetEnvPrefix("TENDER_WATCH")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadConfig unmarshals the viper state into the configuration tree and
// applies defaults.
func loadConfig() (*types.Config, error) {
	var cfg types.Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}
	cfg.SetDefaults()
	return &cfg, nil
}

// newLogger builds the process logger from the logging configuration.
func newLogger(cfg types.LoggingConfig) (logger.Logger, error) {
	return logger.New(cfg)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
