// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/tender-watch/internal/filter"
	"github.com/pdiddy/tender-watch/internal/logger"
	"github.com/pdiddy/tender-watch/pkg/types"
)

func TestArchiveRecordsSplitsNewAndKnown(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	day := time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC)
	rec := types.Record{
		Title:       "市政道路养护服务采购公告",
		URL:         "https://example.com/a",
		Source:      "ccgp",
		Purchaser:   "某市政管理局",
		PublishDate: day,
		FetchTime:   day,
	}

	first, err := archiveRecords(ctx, dir, []types.Record{rec}, logger.Nop())
	require.NoError(t, err)
	assert.Equal(t, 1, first.inserted)
	assert.Equal(t, 0, first.seenBefore)
	assert.Equal(t, 1, first.total)

	second, err := archiveRecords(ctx, dir, []types.Record{rec}, logger.Nop())
	require.NoError(t, err)
	assert.Equal(t, 0, second.inserted)
	assert.Equal(t, 1, second.seenBefore)
	assert.Equal(t, 1, second.total)
}

func TestRenderStatsTableIncludesArchiveRows(t *testing.T) {
	var buf bytes.Buffer
	renderStatsTable(&buf, filter.Stats{Total: 5, Passed: 2},
		&archiveSummary{inserted: 1, seenBefore: 1, total: 10})

	out := buf.String()
	assert.Contains(t, out, "archived new")
	assert.Contains(t, out, "seen in earlier runs")
	assert.Contains(t, out, "archive total")
	assert.Contains(t, out, "accepted")
}

func TestRenderStatsTableWithoutArchive(t *testing.T) {
	var buf bytes.Buffer
	renderStatsTable(&buf, filter.Stats{Total: 5}, nil)
	assert.NotContains(t, buf.String(), "archived new")
}
