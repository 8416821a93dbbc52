// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"sort"
	"time"
)

// TransportConfig holds shared HTTP settings for the rate-limited client.
type TransportConfig struct {
	// RequestDelay is the minimum spacing between consecutive requests
	// issued through one client (default 2s).
	RequestDelay time.Duration `mapstructure:"request_delay" yaml:"request_delay"`

	// Timeout is the per-request timeout (default 30s).
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`

	// RetryTimes is the number of retries for transient failures (default 3).
	RetryTimes int `mapstructure:"retry_times" yaml:"retry_times"`

	// RetryDelay is the base delay for exponential backoff (default 5s).
	RetryDelay time.Duration `mapstructure:"retry_delay" yaml:"retry_delay"`

	// UserAgent is the User-Agent header sent with every request.
	UserAgent string `mapstructure:"user_agent" yaml:"user_agent"`
}

// SetDefaults applies default values to unset fields.
func (c *TransportConfig) SetDefaults() {
	if c.RequestDelay == 0 {
		c.RequestDelay = 2 * time.Second
	}
	if c.Timeout == 0 {
		c.Timeout = 30 * time.Second
	}
	if c.RetryTimes == 0 {
		c.RetryTimes = 3
	}
	if c.RetryDelay == 0 {
		c.RetryDelay = 5 * time.Second
	}
	if c.UserAgent == "" {
		c.UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	}
}

// CrawlerConfig holds crawl-wide settings.
type CrawlerConfig struct {
	TransportConfig `mapstructure:",squash" yaml:",inline"`

	// MaxPages is the per-source page limit (default 10).
	MaxPages int `mapstructure:"max_pages" yaml:"max_pages"`

	// Workers bounds the number of sources crawled concurrently
	// (default 3). Each source gets its own transport, so the request
	// spacing gate stays per-source rather than global.
	Workers int `mapstructure:"workers" yaml:"workers"`
}

// SetDefaults applies default values to unset fields.
func (c *CrawlerConfig) SetDefaults() {
	c.TransportConfig.SetDefaults()
	if c.MaxPages == 0 {
		c.MaxPages = 10
	}
	if c.Workers == 0 {
		c.Workers = 3
	}
}

// SourceConfig describes one tender site. Parser selects the registered
// extraction implementation by name key.
type SourceConfig struct {
	// Name is the display name of the site.
	Name string `mapstructure:"name" yaml:"name"`

	// Parser is the registry key of the extraction implementation
	// (e.g. "ccgp", "cebp", "chinabidding").
	Parser string `mapstructure:"parser" yaml:"parser"`

	// URL is the site base URL, used to resolve relative links.
	URL string `mapstructure:"url" yaml:"url"`

	// SearchURL is the list/search endpoint the parser paginates.
	SearchURL string `mapstructure:"search_url" yaml:"search_url"`

	// Encoding is the declared page charset (default utf-8).
	Encoding string `mapstructure:"encoding" yaml:"encoding"`

	// Enabled toggles the source without removing its config.
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
}

// IndustryConfig names an industry and the purchaser keywords that map to it.
type IndustryConfig struct {
	Name     string   `mapstructure:"name" yaml:"name"`
	Keywords []string `mapstructure:"keywords" yaml:"keywords"`
	Enabled  bool     `mapstructure:"enabled" yaml:"enabled"`
}

// FilterConfig holds the thresholds for the filter pipeline.
type FilterConfig struct {
	// DateRangeDays is the publish-date window in days; <= 0 disables
	// the date stage (default 7).
	DateRangeDays int `mapstructure:"date_range" yaml:"date_range"`

	// MinAmount rejects budgets below this value (万元); 0 disables.
	MinAmount float64 `mapstructure:"min_amount" yaml:"min_amount"`

	// MaxAmount rejects budgets above this value (万元); 0 disables.
	MaxAmount float64 `mapstructure:"max_amount" yaml:"max_amount"`
}

// OutputConfig holds report and archive destinations.
type OutputConfig struct {
	// ReportDir receives generated HTML reports (default ./reports).
	ReportDir string `mapstructure:"report_dir" yaml:"report_dir"`

	// ReportName is a filename template; "{date}" expands to yyyymmdd
	// (default "bid_report_{date}.html").
	ReportName string `mapstructure:"report_name" yaml:"report_name"`

	// DataDir receives JSON/YAML snapshots and the sqlite archive
	// (default ./data).
	DataDir string `mapstructure:"data_dir" yaml:"data_dir"`

	// SaveRawData controls whether the accepted record set is also
	// written as a JSON snapshot alongside the report (default true).
	SaveRawData bool `mapstructure:"save_raw_data" yaml:"save_raw_data"`
}

// SetDefaults applies default values to unset fields.
func (c *OutputConfig) SetDefaults() {
	if c.ReportDir == "" {
		c.ReportDir = "./reports"
	}
	if c.ReportName == "" {
		c.ReportName = "bid_report_{date}.html"
	}
	if c.DataDir == "" {
		c.DataDir = "./data"
	}
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	// Level is the minimum level: debug, info, warn, error (default info).
	Level string `mapstructure:"level" yaml:"level"`

	// Development switches to a human-readable console encoder.
	Development bool `mapstructure:"development" yaml:"development"`
}

// Config is the full configuration tree, loaded once per run and read-only
// afterwards.
type Config struct {
	Crawler    CrawlerConfig       `mapstructure:"crawler" yaml:"crawler"`
	Sources    []SourceConfig      `mapstructure:"websites" yaml:"websites"`
	Keywords   map[string][]string `mapstructure:"tech_keywords" yaml:"tech_keywords"`
	Industries []IndustryConfig    `mapstructure:"industries" yaml:"industries"`
	Filters    FilterConfig        `mapstructure:"filters" yaml:"filters"`
	Output     OutputConfig        `mapstructure:"output" yaml:"output"`
	Logging    LoggingConfig       `mapstructure:"logging" yaml:"logging"`
}

// SetDefaults applies default values across the tree.
func (c *Config) SetDefaults() {
	c.Crawler.SetDefaults()
	c.Output.SetDefaults()
	if c.Filters.DateRangeDays == 0 {
		c.Filters.DateRangeDays = 7
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

// EnabledSources returns the sources with Enabled set, in config order.
func (c *Config) EnabledSources() []SourceConfig {
	var out []SourceConfig
	for _, s := range c.Sources {
		if s.Enabled {
			out = append(out, s)
		}
	}
	return out
}

// FlatKeywords flattens the keyword categories into one ordered list.
// Categories iterate in lexical key order so the result is deterministic.
func (c *Config) FlatKeywords() []string {
	keys := make([]string, 0, len(c.Keywords))
	for k := range c.Keywords {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var out []string
	for _, k := range keys {
		out = append(out, c.Keywords[k]...)
	}
	return out
}

// EnabledIndustries returns the industries with Enabled set, in config order.
func (c *Config) EnabledIndustries() []IndustryConfig {
	var out []IndustryConfig
	for _, ind := range c.Industries {
		if ind.Enabled {
			out = append(out, ind)
		}
	}
	return out
}
