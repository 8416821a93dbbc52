// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package filter

import "github.com/pdiddy/tender-watch/pkg/types"

// Statistics groups an accepted record set by source, industry, publish
// day and matched keyword. It is a pure summarization, independent of
// pipeline state.
type Statistics struct {
	Total      int            `json:"total" yaml:"total"`
	BySource   map[string]int `json:"by_source" yaml:"by_source"`
	ByIndustry map[string]int `json:"by_industry" yaml:"by_industry"`
	ByDate     map[string]int `json:"by_date" yaml:"by_date"`
	ByKeyword  map[string]int `json:"by_keyword" yaml:"by_keyword"`
}

// Labels for records missing a grouping field.
const (
	unknownSource   = "未知"
	unclassified    = "其他"
	dateGroupFormat = "2006-01-02"
)

// Summarize computes grouped counts over an already-filtered record set.
func Summarize(records []types.Record) Statistics {
	stats := Statistics{
		Total:      len(records),
		BySource:   make(map[string]int),
		ByIndustry: make(map[string]int),
		ByDate:     make(map[string]int),
		ByKeyword:  make(map[string]int),
	}

	for i := range records {
		rec := &records[i]

		source := rec.Source
		if source == "" {
			source = unknownSource
		}
		stats.BySource[source]++

		industry := rec.Industry
		if industry == "" {
			industry = unclassified
		}
		stats.ByIndustry[industry]++

		if !rec.PublishDate.IsZero() {
			stats.ByDate[rec.PublishDate.Format(dateGroupFormat)]++
		}

		for _, kw := range rec.MatchedKeywords {
			stats.ByKeyword[kw]++
		}
	}
	return stats
}
