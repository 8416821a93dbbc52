// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/tender-watch/internal/filter"
	"github.com/pdiddy/tender-watch/pkg/types"
)

// RunFile is the on-disk YAML record of a crawl run: the query that drove
// it, the filter settings in effect, the accepted records, and a summary.
// A saved run can be reloaded later without re-crawling the sources.
type RunFile struct {
	Query   RunQuery       `yaml:"query"`
	Filters RunFilters     `yaml:"filters"`
	Records []types.Record `yaml:"records"`
	Summary RunSummary     `yaml:"summary"`
}

// RunQuery stores the crawl parameters in a serializable form.
type RunQuery struct {
	Sources  []string `yaml:"sources"`
	Keywords []string `yaml:"keywords,omitempty"`
	MaxPages int      `yaml:"max_pages"`
}

// RunFilters stores the filter configuration that produced the records.
type RunFilters struct {
	DateRangeDays int     `yaml:"date_range_days"`
	MinAmount     float64 `yaml:"min_amount,omitempty"`
	MaxAmount     float64 `yaml:"max_amount,omitempty"`
}

// RunSummary stores pipeline statistics and a timestamp.
type RunSummary struct {
	Fetched     int       `yaml:"fetched"`
	Accepted    int       `yaml:"accepted"`
	Invalid     int       `yaml:"invalid"`
	Duplicate   int       `yaml:"duplicate"`
	NoKeyword   int       `yaml:"no_keyword"`
	OutOfDate   int       `yaml:"out_of_date"`
	OutOfAmount int       `yaml:"out_of_amount"`
	Timestamp   time.Time `yaml:"timestamp"`
}

// WriteRunFile saves a crawl run to a YAML file.
func WriteRunFile(path string, sources, keywords []string, crawlCfg types.CrawlerConfig, filterCfg types.FilterConfig, records []types.Record, stats filter.Stats) error {
	rf := RunFile{
		Query: RunQuery{
			Sources:  sources,
			Keywords: keywords,
			MaxPages: crawlCfg.MaxPages,
		},
		Filters: RunFilters{
			DateRangeDays: filterCfg.DateRangeDays,
			MinAmount:     filterCfg.MinAmount,
			MaxAmount:     filterCfg.MaxAmount,
		},
		Records: records,
		Summary: RunSummary{
			Fetched:     stats.Total,
			Accepted:    stats.Passed,
			Invalid:     stats.Invalid,
			Duplicate:   stats.Duplicate,
			NoKeyword:   stats.NoKeyword,
			OutOfDate:   stats.OutOfDate,
			OutOfAmount: stats.OutOfAmount,
			Timestamp:   time.Now(),
		},
	}

	data, err := yaml.Marshal(&rf)
	if err != nil {
		return fmt.Errorf("marshaling run file: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadRunFile loads a previously saved run file from disk.
func ReadRunFile(path string) (*RunFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading run file: %w", err)
	}
	var rf RunFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("parsing run file: %w", err)
	}
	return &rf, nil
}
