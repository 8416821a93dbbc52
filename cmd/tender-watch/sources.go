// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List the configured announcement sources",
	Long: `Sources prints the announcement sites from the configuration file,
including disabled ones, with the parser each site is bound to.`,
	RunE: runSources,
}

func init() {
	sourcesCmd.Flags().Bool("enabled", false, "show only enabled sources")

	rootCmd.AddCommand(sourcesCmd)
}

func runSources(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	onlyEnabled, _ := cmd.Flags().GetBool("enabled")

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Name", "Parser", "Search URL", "Encoding", "Enabled"})

	for _, src := range cfg.Sources {
		if onlyEnabled && !src.Enabled {
			continue
		}
		enc := src.Encoding
		if enc == "" {
			enc = "auto"
		}
		t.AppendRow(table.Row{src.Name, src.Parser, src.SearchURL, enc, src.Enabled})
	}

	t.Render()
	return nil
}
