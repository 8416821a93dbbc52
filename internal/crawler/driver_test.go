// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package crawler

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/tender-watch/internal/httpclient"
	"github.com/pdiddy/tender-watch/internal/logger"
	"github.com/pdiddy/tender-watch/pkg/types"
)

// pageParser is a stub Parser whose pages are served by an httptest
// server. The server body carries "page:N"; itemsFor decides how many
// candidates that page yields.
type pageParser struct {
	baseURL  string
	itemsFor func(page int) int
}

func (p *pageParser) Name() string { return "stub" }

func (p *pageParser) ListURL(page int, _ []string) string {
	return fmt.Sprintf("%s/list?page=%d", p.baseURL, page)
}

func (p *pageParser) ParseList(html string) []Candidate {
	page, err := strconv.Atoi(strings.TrimPrefix(html, "page:"))
	if err != nil {
		return nil
	}
	n := p.itemsFor(page)
	out := make([]Candidate, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, Candidate{
			Title: fmt.Sprintf("第%d页测试招标公告%d", page, i),
			URL:   fmt.Sprintf("https://example.com/p%d/i%d", page, i),
		})
	}
	return out
}

func fastTransport() types.TransportConfig {
	return types.TransportConfig{
		RequestDelay: time.Millisecond,
		Timeout:      5 * time.Second,
		RetryTimes:   1,
		RetryDelay:   time.Millisecond,
		UserAgent:    "tender-watch-test/0.1",
	}
}

// pageServer echoes the requested page number, optionally failing some
// pages with the given status.
func pageServer(t *testing.T, requests *int32, failPage func(page int) int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(requests, 1)
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		if failPage != nil {
			if code := failPage(page); code != 0 {
				w.WriteHeader(code)
				return
			}
		}
		fmt.Fprintf(w, "page:%d", page)
	}))
}

func TestFetchAllStopsAtEmptyPage(t *testing.T) {
	var requests int32
	ts := pageServer(t, &requests, nil)
	defer ts.Close()

	p := &pageParser{baseURL: ts.URL, itemsFor: func(page int) int {
		if page <= 2 {
			return 3
		}
		return 0
	}}
	client := httpclient.New(fastTransport(), "", logger.Nop())
	defer client.Close()

	records := fetchAll(context.Background(), p, client, "stub", nil, 10, logger.Nop())

	assert.Len(t, records, 6)
	// Pages 1 and 2 yield items, page 3 is empty and terminates: page 4
	// must never be fetched.
	assert.Equal(t, int32(3), atomic.LoadInt32(&requests))
}

func TestFetchAllStampsSourceAndFetchTime(t *testing.T) {
	var requests int32
	ts := pageServer(t, &requests, nil)
	defer ts.Close()

	p := &pageParser{baseURL: ts.URL, itemsFor: func(page int) int {
		if page == 1 {
			return 1
		}
		return 0
	}}
	client := httpclient.New(fastTransport(), "", logger.Nop())
	defer client.Close()

	records := fetchAll(context.Background(), p, client, "测试来源", nil, 10, logger.Nop())

	require.Len(t, records, 1)
	assert.Equal(t, "测试来源", records[0].Source)
	assert.False(t, records[0].FetchTime.IsZero())
}

func TestFetchAllTerminalErrorKeepsEarlierPages(t *testing.T) {
	var requests int32
	ts := pageServer(t, &requests, func(page int) int {
		if page == 2 {
			return http.StatusNotFound
		}
		return 0
	})
	defer ts.Close()

	p := &pageParser{baseURL: ts.URL, itemsFor: func(int) int { return 2 }}
	client := httpclient.New(fastTransport(), "", logger.Nop())
	defer client.Close()

	records := fetchAll(context.Background(), p, client, "stub", nil, 10, logger.Nop())

	assert.Len(t, records, 2, "page 1 records survive the page 2 failure")
	assert.Equal(t, int32(2), atomic.LoadInt32(&requests), "no fetch past the terminal error")
}

func TestFetchAllTransientFailureContinues(t *testing.T) {
	var requests int32
	ts := pageServer(t, &requests, func(page int) int {
		if page == 2 {
			return http.StatusInternalServerError
		}
		return 0
	})
	defer ts.Close()

	p := &pageParser{baseURL: ts.URL, itemsFor: func(page int) int {
		if page <= 3 {
			return 1
		}
		return 0
	}}
	client := httpclient.New(fastTransport(), "", logger.Nop())
	defer client.Close()

	records := fetchAll(context.Background(), p, client, "stub", nil, 10, logger.Nop())

	// Page 2 exhausts its retries and counts as empty; pages 1 and 3
	// still contribute.
	assert.Len(t, records, 2)
}

func TestFetchAllConsecutiveFailureCap(t *testing.T) {
	var requests int32
	ts := pageServer(t, &requests, func(page int) int {
		if page >= 2 {
			return http.StatusInternalServerError
		}
		return 0
	})
	defer ts.Close()

	p := &pageParser{baseURL: ts.URL, itemsFor: func(int) int { return 1 }}
	client := httpclient.New(fastTransport(), "", logger.Nop())
	defer client.Close()

	records := fetchAll(context.Background(), p, client, "stub", nil, 100, logger.Nop())

	assert.Len(t, records, 1)
	// Page 1 succeeds (1 request); pages 2-4 each burn 1+1 retry
	// attempts, then the driver gives up.
	assert.Equal(t, int32(7), atomic.LoadInt32(&requests))
}

func TestFetchAllDropsIncompleteCandidates(t *testing.T) {
	rec, ok := toRecord(Candidate{Title: "道路工程招标"}, "stub")
	assert.False(t, ok, "candidate without URL must be dropped")
	assert.Empty(t, rec.Source)

	_, ok = toRecord(Candidate{URL: "https://example.com/1"}, "stub")
	assert.False(t, ok, "candidate without title must be dropped")

	rec, ok = toRecord(Candidate{Title: "道路工程招标", URL: "https://example.com/1"}, "stub")
	require.True(t, ok)
	assert.Equal(t, "stub", rec.Source)
}

func TestFetchAllHonorsCancellation(t *testing.T) {
	var requests int32
	ts := pageServer(t, &requests, nil)
	defer ts.Close()

	p := &pageParser{baseURL: ts.URL, itemsFor: func(int) int { return 1 }}
	client := httpclient.New(fastTransport(), "", logger.Nop())
	defer client.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	records := fetchAll(ctx, p, client, "stub", nil, 10, logger.Nop())
	assert.Empty(t, records)
	assert.Equal(t, int32(0), atomic.LoadInt32(&requests))
}
