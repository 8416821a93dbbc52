// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report renders the accepted record set into the run outputs:
// an HTML report, a JSON data snapshot, and a YAML run file capturing the
// query that produced the results.
package report

import (
	"encoding/json"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"time"

	"github.com/pdiddy/tender-watch/internal/filter"
	"github.com/pdiddy/tender-watch/internal/logger"
	"github.com/pdiddy/tender-watch/internal/textutil"
	"github.com/pdiddy/tender-watch/pkg/types"
)

// Generator writes run outputs under the configured directories.
type Generator struct {
	cfg types.OutputConfig
	log logger.Logger
}

// NewGenerator builds a Generator and ensures the output directories exist.
func NewGenerator(cfg types.OutputConfig, log logger.Logger) (*Generator, error) {
	cfg.SetDefaults()
	for _, dir := range []string{cfg.ReportDir, cfg.DataDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating output directory %s: %w", dir, err)
		}
	}
	return &Generator{cfg: cfg, log: log}, nil
}

// reportData is the template context for the HTML report.
type reportData struct {
	GeneratedAt string
	Stats       filter.Statistics
	Records     []types.Record
}

// Generate writes the HTML report and returns its path.
func (g *Generator) Generate(records []types.Record, stats filter.Statistics, day time.Time) (string, error) {
	name := textutil.DateFilename(g.cfg.ReportName, day)
	path := filepath.Join(g.cfg.ReportDir, name)

	tmpl, err := template.New("report").Funcs(template.FuncMap{
		"fmtDate": func(t time.Time) string {
			if t.IsZero() {
				return "-"
			}
			return t.Format("2006-01-02")
		},
		"fmtBudget": func(v float64) string {
			if v == 0 {
				return "-"
			}
			return fmt.Sprintf("%.2f 万元", v)
		},
	}).Parse(reportTemplate)
	if err != nil {
		return "", fmt.Errorf("parsing report template: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating report file: %w", err)
	}
	defer f.Close()

	data := reportData{
		GeneratedAt: day.Format("2006-01-02 15:04:05"),
		Stats:       stats,
		Records:     records,
	}
	if err := tmpl.Execute(f, data); err != nil {
		return "", fmt.Errorf("rendering report: %w", err)
	}

	g.log.Info("report generated", logger.String("path", path), logger.Int("records", len(records)))
	return path, nil
}

// SaveJSON writes the accepted record set as an indented JSON snapshot
// and returns its path. Skipped (with no error) when raw-data saving is
// disabled.
func (g *Generator) SaveJSON(records []types.Record, day time.Time) (string, error) {
	if !g.cfg.SaveRawData {
		return "", nil
	}
	path := filepath.Join(g.cfg.DataDir, textutil.DateFilename("bid_data_{date}.json", day))

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating data snapshot: %w", err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(records); err != nil {
		return "", fmt.Errorf("writing data snapshot: %w", err)
	}

	g.log.Info("data snapshot saved", logger.String("path", path))
	return path, nil
}
