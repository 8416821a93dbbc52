// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package crawler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/tender-watch/internal/httpclient"
	"github.com/pdiddy/tender-watch/internal/logger"
	"github.com/pdiddy/tender-watch/pkg/types"
)

const ccgpListHTML = `
<html><body>
<ul class="vT-srch-result-list-bid">
  <li>
    <a href="/bxsearch/detail/1.html">市政道路养护采购公告</a>
    <span class="time">2026-08-20</span>
    <span>采购人：市政局</span>
  </li>
  <li>
    <a href="//www.ccgp.gov.cn/detail/2.html">桥梁检测服务招标公告</a>
    <span class="date">2026年8月21日</span>
  </li>
  <li>
    <span class="time">2026-08-22</span>
  </li>
</ul>
</body></html>`

func ccgpTestParser(t *testing.T) *ccgpParser {
	t.Helper()
	cfg := types.SourceConfig{
		Name:      "政府采购网",
		Parser:    "ccgp",
		URL:       "https://www.ccgp.gov.cn",
		SearchURL: "https://search.ccgp.gov.cn/bxsearch",
	}
	return newCCGPParser(cfg, nil, logger.Nop())
}

func TestCCGPParseList(t *testing.T) {
	p := ccgpTestParser(t)
	out := p.ParseList(ccgpListHTML)

	require.Len(t, out, 2, "the item without a link is dropped")

	assert.Equal(t, "市政道路养护采购公告", out[0].Title)
	assert.Equal(t, "https://www.ccgp.gov.cn/bxsearch/detail/1.html", out[0].URL)
	assert.Equal(t, "市政局", out[0].Purchaser)
	assert.Equal(t, time.Date(2026, 8, 20, 0, 0, 0, 0, time.Local), out[0].PublishDate)

	assert.Equal(t, "桥梁检测服务招标公告", out[1].Title)
	assert.Equal(t, "https://www.ccgp.gov.cn/detail/2.html", out[1].URL, "protocol-relative href")
	assert.Equal(t, time.Date(2026, 8, 21, 0, 0, 0, 0, time.Local), out[1].PublishDate)
}

func TestCCGPParseListUnrecognizedMarkup(t *testing.T) {
	p := ccgpTestParser(t)
	assert.Empty(t, p.ParseList("<html><body><p>维护中</p></body></html>"))
	assert.Empty(t, p.ParseList(""))
}

func TestCCGPListURL(t *testing.T) {
	p := ccgpTestParser(t)
	u := p.ListURL(3, []string{"养护", "采购"})

	assert.Contains(t, u, "page_index=3")
	assert.Contains(t, u, "searchtype=1")
	// Keywords are joined with a space before URL encoding.
	assert.Contains(t, u, "kw=%E5%85%BB%E6%8A%A4+%E9%87%87%E8%B4%AD")
}

const ccgpDetailHTML = `
<html><body>
<p>项目编号：ZFCG-2026-0815</p>
<p>预算金额：1.5亿元</p>
<p>投标截止时间：2026年9月10日</p>
<p>代理机构：某某招标代理有限公司</p>
</body></html>`

func TestCCGPParseDetail(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(ccgpDetailHTML))
	}))
	defer ts.Close()

	client := httpclient.New(fastTransport(), "", logger.Nop())
	defer client.Close()

	p := ccgpTestParser(t)
	p.client = client

	d, err := p.ParseDetail(context.Background(), ts.URL)
	require.NoError(t, err)

	assert.Equal(t, "ZFCG-2026-0815", d.BidNo)
	assert.InDelta(t, 15000.0, d.Budget, 0.001)
	assert.Equal(t, time.Date(2026, 9, 10, 0, 0, 0, 0, time.Local), d.Deadline)
	assert.Contains(t, d.Agency, "招标代理有限公司")
}

const cebpListHTML = `
<html><body>
<ul class="xxgg_con_list">
  <li><a href="/announcement/100.html">水利枢纽工程施工招标公告</a><span>2026-08-19</span></li>
  <li><a href="http://www.cebpubservice.com/announcement/101.html">输变电工程监理招标</a> 2026-08-18</li>
</ul>
</body></html>`

func TestCEBPParseList(t *testing.T) {
	cfg := types.SourceConfig{
		Name:      "公共服务平台",
		Parser:    "cebp",
		URL:       "http://www.cebpubservice.com",
		SearchURL: "http://www.cebpubservice.com/zcfg/index.html",
	}
	p := newCEBPParser(cfg, logger.Nop())
	out := p.ParseList(cebpListHTML)

	require.Len(t, out, 2)
	assert.Equal(t, "水利枢纽工程施工招标公告", out[0].Title)
	assert.Equal(t, "http://www.cebpubservice.com/announcement/100.html", out[0].URL)
	assert.Equal(t, time.Date(2026, 8, 19, 0, 0, 0, 0, time.Local), out[0].PublishDate)
	assert.Empty(t, out[0].Purchaser, "cebp list pages carry no purchaser")
}

func TestCEBPListURL(t *testing.T) {
	cfg := types.SourceConfig{SearchURL: "http://www.cebpubservice.com/zcfg/index.html"}
	p := newCEBPParser(cfg, logger.Nop())

	assert.Equal(t, "http://www.cebpubservice.com/zcfg/index.html", p.ListURL(1, nil))
	assert.Equal(t, "http://www.cebpubservice.com/zcfg/index_2.html", p.ListURL(2, nil))
	assert.Equal(t, "http://www.cebpubservice.com/zcfg/index_5.html", p.ListURL(5, nil))
}

const chinaBiddingListHTML = `
<html><body>
<div class="search-list-box">
<ul>
  <li>
    <a href="/bid/2026/300.html">地铁信号系统采购项目招标公告</a>
    <span class="time">2026-08-22</span>
    <span class="area">轨道交通集团</span>
  </li>
</ul>
</div>
</body></html>`

func TestChinaBiddingParseList(t *testing.T) {
	cfg := types.SourceConfig{
		Name:      "采购与招标网",
		Parser:    "chinabidding",
		URL:       "https://www.chinabidding.cn",
		SearchURL: "https://www.chinabidding.cn/search",
	}
	p := newChinaBiddingParser(cfg, logger.Nop())
	out := p.ParseList(chinaBiddingListHTML)

	require.Len(t, out, 1)
	assert.Equal(t, "地铁信号系统采购项目招标公告", out[0].Title)
	assert.Equal(t, "https://www.chinabidding.cn/bid/2026/300.html", out[0].URL)
	assert.Equal(t, "轨道交通集团", out[0].Purchaser)
	assert.Equal(t, time.Date(2026, 8, 22, 0, 0, 0, 0, time.Local), out[0].PublishDate)
}

func TestChinaBiddingListURL(t *testing.T) {
	cfg := types.SourceConfig{SearchURL: "https://www.chinabidding.cn/search"}
	p := newChinaBiddingParser(cfg, logger.Nop())
	u := p.ListURL(2, []string{"信号"})

	assert.Contains(t, u, "page=2")
	assert.Contains(t, u, "keyword=%E4%BF%A1%E5%8F%B7")
}

func TestResolveURL(t *testing.T) {
	tests := []struct {
		name string
		href string
		want string
	}{
		{"absolute", "https://other.example.com/x", "https://other.example.com/x"},
		{"protocol relative", "//www.ccgp.gov.cn/x", "https://www.ccgp.gov.cn/x"},
		{"root relative", "/detail/1.html", "https://www.ccgp.gov.cn/detail/1.html"},
		{"search relative", "detail/1.html", "https://search.ccgp.gov.cn/detail/1.html"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := resolveURL(tt.href, "https://www.ccgp.gov.cn", "https://search.ccgp.gov.cn/bxsearch")
			assert.Equal(t, tt.want, got)
		})
	}
}
