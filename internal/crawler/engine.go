// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package crawler

import (
	"context"
	"fmt"
	"sync"

	"github.com/pdiddy/tender-watch/internal/httpclient"
	"github.com/pdiddy/tender-watch/internal/logger"
	"github.com/pdiddy/tender-watch/pkg/types"
)

// BuilderFunc constructs a Parser for one configured source.
type BuilderFunc func(cfg types.SourceConfig, client *httpclient.Client, log logger.Logger) Parser

// Builders returns the registry of known parser implementations keyed by
// the name used in source configuration.
func Builders() map[string]BuilderFunc {
	return map[string]BuilderFunc{
		"ccgp": func(cfg types.SourceConfig, client *httpclient.Client, log logger.Logger) Parser {
			return newCCGPParser(cfg, client, log)
		},
		"cebp": func(cfg types.SourceConfig, client *httpclient.Client, log logger.Logger) Parser {
			return newCEBPParser(cfg, log)
		},
		"chinabidding": func(cfg types.SourceConfig, client *httpclient.Client, log logger.Logger) Parser {
			return newChinaBiddingParser(cfg, log)
		},
	}
}

// registration binds one enabled source to its parser and its dedicated
// transport. One client per source keeps request pacing independent
// across sources.
type registration struct {
	cfg    types.SourceConfig
	parser Parser
	client *httpclient.Client
}

// Engine dispatches the pagination driver across all registered sources
// and aggregates their records. A misconfigured source is skipped at
// registration with a warning; a failing source never aborts the others.
type Engine struct {
	cfg       types.CrawlerConfig
	sources   []registration
	log       logger.Logger
	closeOnce sync.Once
}

// NewEngine registers a parser for every enabled source. Sources with a
// missing or unknown parser key, or without a search URL, are skipped.
func NewEngine(cfg *types.Config, log logger.Logger) *Engine {
	return NewEngineWithBuilders(cfg, Builders(), log)
}

// NewEngineWithBuilders is NewEngine with an explicit registry; tests use
// it to install stub parsers.
func NewEngineWithBuilders(cfg *types.Config, builders map[string]BuilderFunc, log logger.Logger) *Engine {
	e := &Engine{cfg: cfg.Crawler, log: log}

	for _, src := range cfg.EnabledSources() {
		if src.Parser == "" || src.SearchURL == "" || src.Name == "" {
			log.Warn("source misconfigured, skipping",
				logger.String("source", src.Name),
				logger.String("parser", src.Parser))
			continue
		}
		build, ok := builders[src.Parser]
		if !ok {
			log.Warn("no parser registered for source, skipping",
				logger.String("source", src.Name),
				logger.String("parser", src.Parser))
			continue
		}
		client := httpclient.New(cfg.Crawler.TransportConfig, src.Encoding, log)
		e.sources = append(e.sources, registration{
			cfg:    src,
			parser: build(src, client, log),
			client: client,
		})
		log.Info("registered source",
			logger.String("source", src.Name),
			logger.String("parser", src.Parser))
	}
	return e
}

// Sources returns the names of the registered sources in registration order.
func (e *Engine) Sources() []string {
	names := make([]string, len(e.sources))
	for i, reg := range e.sources {
		names[i] = reg.cfg.Name
	}
	return names
}

// CrawlSource crawls the named source and returns its records. An unknown
// name or a failed crawl yields an empty slice, never an error.
func (e *Engine) CrawlSource(ctx context.Context, name string, keywords []string, maxPages int) []types.Record {
	for _, reg := range e.sources {
		if reg.cfg.Name == name {
			return e.crawlOne(ctx, reg, keywords, maxPages)
		}
	}
	e.log.Warn("unknown source", logger.String("source", name))
	return nil
}

// CrawlAll crawls every registered source across a bounded worker pool
// and concatenates results in registration order.
func (e *Engine) CrawlAll(ctx context.Context, keywords []string, maxPages int) []types.Record {
	if maxPages <= 0 {
		maxPages = e.cfg.MaxPages
	}
	if len(e.sources) == 0 {
		e.log.Warn("no sources registered")
		return nil
	}

	workers := e.cfg.Workers
	if workers <= 0 {
		workers = 1
	}

	e.log.Info("starting crawl",
		logger.Int("sources", len(e.sources)),
		logger.Int("keywords", len(keywords)),
		logger.Int("max_pages", maxPages),
		logger.Int("workers", workers))

	results := make([][]types.Record, len(e.sources))
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup

	for i, reg := range e.sources {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		go func(i int, reg registration) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			results[i] = e.crawlOne(ctx, reg, keywords, maxPages)
		}(i, reg)
	}
	wg.Wait()

	var all []types.Record
	for _, r := range results {
		all = append(all, r...)
	}
	e.log.Info("crawl complete", logger.Int("total", len(all)))
	return all
}

// crawlOne runs the driver for one source. A panicking parser is
// contained here so one source cannot take down the run.
func (e *Engine) crawlOne(ctx context.Context, reg registration, keywords []string, maxPages int) (records []types.Record) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Error("source crawl panicked",
				logger.String("source", reg.cfg.Name),
				logger.String("panic", panicString(r)))
			records = nil
		}
	}()

	if maxPages <= 0 {
		maxPages = e.cfg.MaxPages
	}
	records = fetchAll(ctx, reg.parser, reg.client, reg.cfg.Name, keywords, maxPages, e.log)
	e.log.Info("source crawl complete",
		logger.String("source", reg.cfg.Name),
		logger.Int("records", len(records)))
	return records
}

// Close releases every source transport exactly once. Safe to call even
// if no crawl was performed.
func (e *Engine) Close() {
	e.closeOnce.Do(func() {
		for _, reg := range e.sources {
			reg.client.Close()
		}
	})
}

func panicString(r any) string {
	switch v := r.(type) {
	case string:
		return v
	case error:
		return v.Error()
	default:
		return fmt.Sprintf("%v", v)
	}
}
