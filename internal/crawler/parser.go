// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package crawler implements the per-source extraction contract, the
// shared pagination driver, and the engine that dispatches crawls across
// all configured tender sites.
package crawler

import (
	"context"
	"time"

	"github.com/pdiddy/tender-watch/internal/httpclient"
	"github.com/pdiddy/tender-watch/internal/logger"
	"github.com/pdiddy/tender-watch/pkg/types"
)

// Candidate is a partial record extracted from one list-page item. A
// candidate missing Title or URL is dropped before it becomes a Record.
type Candidate struct {
	Title       string
	URL         string
	PublishDate time.Time
	Purchaser   string
}

// Parser is the extraction contract one tender site implements.
// ListURL is a pure function of page number (1-based) and the active
// keyword set. ParseList extracts zero or more candidates from one page's
// markup; unrecognized markup yields an empty slice, never an error.
type Parser interface {
	Name() string
	ListURL(page int, keywords []string) string
	ParseList(html string) []Candidate
}

// DetailParser is the optional enrichment half of the contract. Sources
// that implement it get a detail-page fetch per record; failures are
// logged and the record keeps its list-page fields.
type DetailParser interface {
	ParseDetail(ctx context.Context, url string) (types.Detail, error)
}

// maxConsecutiveFailures bounds how many failed pages in a row the driver
// tolerates before giving up on a source.
const maxConsecutiveFailures = 3

// fetchAll drives pagination for one source: build URL, fetch, parse,
// convert. The first empty page terminates the loop. A failed page counts
// as empty and the loop continues, except that a terminal transport error
// or too many consecutive failures stops the source. Records collected
// before the stop are returned.
func fetchAll(ctx context.Context, p Parser, client *httpclient.Client, source string, keywords []string, maxPages int, log logger.Logger) []types.Record {
	var records []types.Record
	failures := 0

	for page := 1; page <= maxPages; page++ {
		if ctx.Err() != nil {
			log.Warn("crawl cancelled", logger.String("source", source), logger.Int("page", page))
			return records
		}

		pageURL := p.ListURL(page, keywords)
		log.Info("fetching page",
			logger.String("source", source),
			logger.Int("page", page),
			logger.String("url", pageURL))

		html, err := client.Get(ctx, pageURL, nil)
		if err != nil {
			if httpclient.IsTerminal(err) || ctx.Err() != nil {
				log.Error("terminal fetch error, stopping source",
					logger.String("source", source),
					logger.Int("page", page),
					logger.Err(err))
				return records
			}
			failures++
			log.Warn("page fetch failed",
				logger.String("source", source),
				logger.Int("page", page),
				logger.Int("consecutive_failures", failures),
				logger.Err(err))
			if failures >= maxConsecutiveFailures {
				log.Error("too many consecutive failures, stopping source",
					logger.String("source", source))
				return records
			}
			continue
		}
		failures = 0

		candidates := p.ParseList(html)
		if len(candidates) == 0 {
			log.Info("empty page, pagination complete",
				logger.String("source", source),
				logger.Int("page", page))
			return records
		}

		for _, cand := range candidates {
			rec, ok := toRecord(cand, source)
			if !ok {
				continue
			}
			enrich(ctx, p, &rec, log)
			records = append(records, rec)
		}
		log.Info("page parsed",
			logger.String("source", source),
			logger.Int("page", page),
			logger.Int("items", len(candidates)),
			logger.Int("total", len(records)))
	}
	return records
}

// toRecord converts a candidate into a Record stamped with its source.
// Candidates missing title or URL are silently dropped.
func toRecord(c Candidate, source string) (types.Record, bool) {
	if c.Title == "" || c.URL == "" {
		return types.Record{}, false
	}
	return types.Record{
		Title:       c.Title,
		URL:         c.URL,
		Source:      source,
		PublishDate: c.PublishDate,
		Purchaser:   c.Purchaser,
		FetchTime:   time.Now(),
	}, true
}

// enrich runs the optional detail-page parse and merges the result.
// Enrichment failures never drop the record.
func enrich(ctx context.Context, p Parser, rec *types.Record, log logger.Logger) {
	dp, ok := p.(DetailParser)
	if !ok {
		return
	}
	detail, err := dp.ParseDetail(ctx, rec.URL)
	if err != nil {
		log.Warn("detail parse failed",
			logger.String("source", rec.Source),
			logger.String("url", rec.URL),
			logger.Err(err))
		return
	}
	if !detail.Empty() {
		rec.Merge(detail)
	}
}
