// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package filter applies the ordered acceptance stages to crawled records:
// validity, dedup, keyword match, date window, amount window, and industry
// classification. A record is dropped at the first failing stage and never
// evaluated further.
package filter

import (
	"strings"
	"sync"
	"time"

	"github.com/pdiddy/tender-watch/internal/logger"
	"github.com/pdiddy/tender-watch/internal/textutil"
	"github.com/pdiddy/tender-watch/pkg/types"
)

// Stats counts per-stage attrition for one Filter call.
type Stats struct {
	Total       int `json:"total" yaml:"total"`
	Invalid     int `json:"invalid" yaml:"invalid"`
	Duplicate   int `json:"duplicate" yaml:"duplicate"`
	NoKeyword   int `json:"no_keyword" yaml:"no_keyword"`
	OutOfDate   int `json:"out_of_date" yaml:"out_of_date"`
	OutOfAmount int `json:"out_of_amount" yaml:"out_of_amount"`
	Passed      int `json:"passed" yaml:"passed"`
}

// Pipeline filters candidate records. The dedup index persists across
// Filter calls on one instance until Reset, so feeding the same
// candidates twice accepts each logical record at most once. Safe for
// concurrent use: the index is mutex-guarded.
type Pipeline struct {
	cfg        types.FilterConfig
	keywords   []string
	industries []types.IndustryConfig
	log        logger.Logger

	mu   sync.Mutex
	seen map[string]struct{}

	// now is the clock used by the date window; tests pin it.
	now func() time.Time
}

// New builds a Pipeline. keywords is the flattened active keyword set; an
// empty set makes the keyword stage pass everything (the run-level policy
// for "no keywords configured").
func New(cfg types.FilterConfig, keywords []string, industries []types.IndustryConfig, log logger.Logger) *Pipeline {
	return &Pipeline{
		cfg:        cfg,
		keywords:   keywords,
		industries: industries,
		log:        log,
		seen:       make(map[string]struct{}),
		now:        time.Now,
	}
}

// Filter runs every candidate through the stage sequence and returns the
// accepted records and the attrition counters for this call.
func (p *Pipeline) Filter(candidates []types.Record) ([]types.Record, Stats) {
	stats := Stats{Total: len(candidates)}
	if len(candidates) == 0 {
		return nil, stats
	}
	p.log.Info("filtering candidates", logger.Int("total", stats.Total))

	var accepted []types.Record
	for i := range candidates {
		rec := candidates[i]

		if !rec.Valid() {
			stats.Invalid++
			continue
		}
		if p.duplicate(&rec) {
			stats.Duplicate++
			continue
		}
		matched, ok := p.matchKeywords(&rec)
		if !ok {
			stats.NoKeyword++
			continue
		}
		rec.MatchedKeywords = matched
		if !p.inDateWindow(&rec) {
			stats.OutOfDate++
			continue
		}
		if !p.inAmountWindow(&rec) {
			stats.OutOfAmount++
			continue
		}
		rec.Industry = p.classify(&rec)

		stats.Passed++
		accepted = append(accepted, rec)
	}

	p.log.Info("filter complete",
		logger.Int("total", stats.Total),
		logger.Int("invalid", stats.Invalid),
		logger.Int("duplicate", stats.Duplicate),
		logger.Int("no_keyword", stats.NoKeyword),
		logger.Int("out_of_date", stats.OutOfDate),
		logger.Int("out_of_amount", stats.OutOfAmount),
		logger.Int("passed", stats.Passed))
	return accepted, stats
}

// duplicate checks the record's fingerprint against the index, inserting
// it when unseen. Fingerprint collisions count as true duplicates; the
// title+date+purchaser triple is the intended uniqueness key.
func (p *Pipeline) duplicate(rec *types.Record) bool {
	fp := rec.Fingerprint()
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.seen[fp]; ok {
		return true
	}
	p.seen[fp] = struct{}{}
	return false
}

// matchKeywords returns the matched subset in keyword-list order. An
// empty configured set passes everything with no recorded matches.
func (p *Pipeline) matchKeywords(rec *types.Record) ([]string, bool) {
	if len(p.keywords) == 0 {
		return nil, true
	}
	matched := textutil.MatchKeywords(rec.Title, p.keywords)
	return matched, len(matched) > 0
}

// inDateWindow passes records with no publish date; the window only
// rejects records known to be stale.
func (p *Pipeline) inDateWindow(rec *types.Record) bool {
	if p.cfg.DateRangeDays <= 0 {
		return true
	}
	if rec.PublishDate.IsZero() {
		return true
	}
	limit := p.now().AddDate(0, 0, -p.cfg.DateRangeDays)
	return !rec.PublishDate.Before(limit)
}

// inAmountWindow passes records with no budget.
func (p *Pipeline) inAmountWindow(rec *types.Record) bool {
	if rec.Budget == 0 {
		return true
	}
	if p.cfg.MinAmount > 0 && rec.Budget < p.cfg.MinAmount {
		return false
	}
	if p.cfg.MaxAmount > 0 && rec.Budget > p.cfg.MaxAmount {
		return false
	}
	return true
}

// classify matches industry keywords against the purchaser; the first
// matching industry in configured order wins. Classification never
// rejects.
func (p *Pipeline) classify(rec *types.Record) string {
	if rec.Purchaser == "" {
		return ""
	}
	purchaser := strings.ToLower(rec.Purchaser)
	for _, ind := range p.industries {
		for _, kw := range ind.Keywords {
			if kw != "" && strings.Contains(purchaser, strings.ToLower(kw)) {
				return ind.Name
			}
		}
	}
	return ""
}

// Reset clears the dedup index. Counters are local to each Filter call
// and are unaffected.
func (p *Pipeline) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.seen = make(map[string]struct{})
	p.log.Info("dedup index reset")
}
