// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httpclient

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/simplifiedchinese"

	"github.com/pdiddy/tender-watch/internal/logger"
	"github.com/pdiddy/tender-watch/pkg/types"
)

func testCfg() types.TransportConfig {
	return types.TransportConfig{
		RequestDelay: time.Millisecond,
		Timeout:      5 * time.Second,
		RetryTimes:   3,
		RetryDelay:   time.Millisecond,
		UserAgent:    "tender-watch-test/0.1",
	}
}

func TestGetReturnsBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "tender-watch-test/0.1", r.Header.Get("User-Agent"))
		w.Write([]byte("<html>招标公告</html>"))
	}))
	defer ts.Close()

	c := New(testCfg(), "", logger.Nop())
	defer c.Close()

	body, err := c.Get(context.Background(), ts.URL, nil)
	require.NoError(t, err)
	assert.Equal(t, "<html>招标公告</html>", body)
}

func TestGetAppendsParams(t *testing.T) {
	var gotQuery string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Write([]byte("ok body"))
	}))
	defer ts.Close()

	c := New(testCfg(), "", logger.Nop())
	defer c.Close()

	_, err := c.Get(context.Background(), ts.URL, url.Values{"kw": {"养护"}, "page": {"2"}})
	require.NoError(t, err)
	assert.Contains(t, gotQuery, "page=2")
}

func TestRetriesTransientStatus(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if atomic.AddInt32(&calls, 1) <= 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("recovered"))
	}))
	defer ts.Close()

	c := New(testCfg(), "", logger.Nop())
	defer c.Close()

	body, err := c.Get(context.Background(), ts.URL, nil)
	require.NoError(t, err)
	assert.Equal(t, "recovered", body)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestExhaustsRetries(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer ts.Close()

	c := New(testCfg(), "", logger.Nop())
	defer c.Close()

	_, err := c.Get(context.Background(), ts.URL, nil)
	require.Error(t, err)
	assert.False(t, IsTerminal(err), "exhausted transient retries are not terminal")
	// Initial attempt plus three retries.
	assert.Equal(t, int32(4), atomic.LoadInt32(&calls))
}

func TestRetriesRequestTimeout(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if atomic.AddInt32(&calls, 1) <= 2 {
			time.Sleep(200 * time.Millisecond)
			return
		}
		w.Write([]byte("slow then ok"))
	}))
	defer ts.Close()

	cfg := testCfg()
	cfg.Timeout = 50 * time.Millisecond
	cfg.RetryTimes = 2
	c := New(cfg, "", logger.Nop())
	defer c.Close()

	body, err := c.Get(context.Background(), ts.URL, nil)
	require.NoError(t, err)
	assert.Equal(t, "slow then ok", body)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls),
		"per-request timeouts are transient and must be retried")
}

func TestCallerCancellationNoRetry(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		time.Sleep(200 * time.Millisecond)
	}))
	defer ts.Close()

	c := New(testCfg(), "", logger.Nop())
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.Get(ctx, ts.URL, nil)
	require.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls),
		"a cancelled caller context must not be retried")
}

func TestRetryableClassification(t *testing.T) {
	bg := context.Background()
	assert.False(t, retryable(bg, &StatusError{Code: 404, URL: "u"}))
	assert.True(t, retryable(bg, &transientError{Code: 503, URL: "u"}))
	assert.True(t, retryable(bg, fmt.Errorf("fetching page: %w", &transientError{Code: 502, URL: "u"})))

	cancelled, cancel := context.WithCancel(bg)
	cancel()
	assert.False(t, retryable(cancelled, &transientError{Code: 503, URL: "u"}))
}

func TestTerminalStatusNoRetry(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	c := New(testCfg(), "", logger.Nop())
	defer c.Close()

	_, err := c.Get(context.Background(), ts.URL, nil)
	require.Error(t, err)
	assert.True(t, IsTerminal(err))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "4xx must surface immediately")
}

func TestRequestSpacing(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("ok body"))
	}))
	defer ts.Close()

	cfg := testCfg()
	cfg.RequestDelay = 50 * time.Millisecond
	c := New(cfg, "", logger.Nop())
	defer c.Close()

	ctx := context.Background()
	_, err := c.Get(ctx, ts.URL, nil)
	require.NoError(t, err)

	start := time.Now()
	_, err = c.Get(ctx, ts.URL, nil)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 45*time.Millisecond,
		"second request must wait out the spacing gate")
}

func TestPostSendsForm(t *testing.T) {
	var gotBody, gotCT string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b := make([]byte, r.ContentLength)
		r.Body.Read(b)
		gotBody = string(b)
		gotCT = r.Header.Get("Content-Type")
		w.Write([]byte("posted ok"))
	}))
	defer ts.Close()

	c := New(testCfg(), "", logger.Nop())
	defer c.Close()

	_, err := c.Post(context.Background(), ts.URL, url.Values{"page": {"1"}})
	require.NoError(t, err)
	assert.Equal(t, "page=1", gotBody)
	assert.Equal(t, "application/x-www-form-urlencoded", gotCT)
}

func TestDecodesGBK(t *testing.T) {
	gbkBytes, err := simplifiedchinese.GBK.NewEncoder().Bytes([]byte("市政道路养护采购公告"))
	require.NoError(t, err)

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write(gbkBytes)
	}))
	defer ts.Close()

	c := New(testCfg(), "gbk", logger.Nop())
	defer c.Close()

	body, err := c.Get(context.Background(), ts.URL, nil)
	require.NoError(t, err)
	assert.Equal(t, "市政道路养护采购公告", body)
}

func TestDecodeFallbackWithoutDeclaredEncoding(t *testing.T) {
	gbkBytes, err := simplifiedchinese.GBK.NewEncoder().Bytes([]byte("道路工程招标文件内容正文较长时检测更可靠，道路工程招标公告。"))
	require.NoError(t, err)

	// No declared encoding and no charset header: the fallback chain
	// (detect, then gbk) must still produce readable text.
	text := decodeBody(gbkBytes, "", "")
	assert.Contains(t, text, "道路工程招标")
}

func TestCloseIdempotent(t *testing.T) {
	c := New(testCfg(), "", logger.Nop())
	c.Close()
	c.Close()
}
