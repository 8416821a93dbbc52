// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package crawler

import (
	"context"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pdiddy/tender-watch/internal/httpclient"
	"github.com/pdiddy/tender-watch/internal/logger"
	"github.com/pdiddy/tender-watch/internal/textutil"
	"github.com/pdiddy/tender-watch/pkg/types"
)

// ccgpParser extracts tender announcements from the Chinese government
// procurement network (ccgp.gov.cn) search results. It also implements
// DetailParser: announcement pages carry budget, deadline and agency.
type ccgpParser struct {
	cfg    types.SourceConfig
	client *httpclient.Client
	log    logger.Logger
}

func newCCGPParser(cfg types.SourceConfig, client *httpclient.Client, log logger.Logger) *ccgpParser {
	return &ccgpParser{cfg: cfg, client: client, log: log}
}

func (p *ccgpParser) Name() string { return "ccgp" }

// ListURL builds the bxsearch query. searchtype 1 selects tender
// announcements; timeType 6 sorts by publish time.
func (p *ccgpParser) ListURL(page int, keywords []string) string {
	params := url.Values{
		"searchtype": {"1"},
		"page_index": {strconv.Itoa(page)},
		"bidSort":    {"0"},
		"pinMu":      {"0"},
		"bidType":    {"1"},
		"kw":         {strings.Join(keywords, " ")},
		"start_time": {""},
		"end_time":   {""},
		"timeType":   {"6"},
	}
	return p.cfg.SearchURL + "?" + params.Encode()
}

var (
	ccgpDateInText      = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)
	ccgpPurchaserInText = regexp.MustCompile(`(?:采购人|招标人|业主)[：:]\s*([^\s|]+)`)
	ccgpPrefix          = regexp.MustCompile(`^(?:采购人|招标人|业主)[：:]\s*`)
)

func (p *ccgpParser) ParseList(html string) []Candidate {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		p.log.Warn("ccgp: unparsable markup", logger.Err(err))
		return nil
	}

	items := doc.Find("ul.vT-srch-result-list-bid li")
	if items.Length() == 0 {
		items = doc.Find("ul.c_list_bid li")
	}
	if items.Length() == 0 {
		items = doc.Find(".list_16 li")
	}

	var out []Candidate
	items.Each(func(_ int, s *goquery.Selection) {
		link := s.Find("a").First()
		title := textutil.CleanText(link.Text())
		href, _ := link.Attr("href")
		if title == "" || href == "" {
			return
		}

		c := Candidate{
			Title: title,
			URL:   resolveURL(href, p.cfg.URL, p.cfg.SearchURL),
		}

		dateText := s.Find("span.time").First().Text()
		if dateText == "" {
			dateText = s.Find("span.date").First().Text()
		}
		if dateText == "" {
			dateText = ccgpDateInText.FindString(s.Text())
		}
		c.PublishDate = textutil.ParseDate(dateText)

		purchaser := textutil.CleanText(s.Find("span.purchaser").First().Text())
		if purchaser != "" {
			c.Purchaser = ccgpPrefix.ReplaceAllString(purchaser, "")
		} else if m := ccgpPurchaserInText.FindStringSubmatch(s.Text()); m != nil {
			c.Purchaser = strings.TrimSpace(m[1])
		}

		out = append(out, c)
	})
	return out
}

var (
	ccgpBidNoRe    = regexp.MustCompile(`(?:项目编号|招标编号)[^：:]*[：:]\s*([A-Za-z0-9\-]+)`)
	ccgpBudgetRe   = regexp.MustCompile(`(?:预算金额|采购预算|项目金额)[^：:]*[：:]\s*([^\n\r，。]+)`)
	ccgpDeadlineRe = regexp.MustCompile(`(?:截止时间|投标截止|报名截止)[^：:]*[：:]\s*([^\n\r，。]+)`)
	ccgpAgencyRe   = regexp.MustCompile(`(?:代理机构|招标代理)[^：:]*[：:]\s*([^：:\n\r]+)`)
)

// ParseDetail fetches the announcement page and extracts enrichment
// fields by label matching over the page text.
func (p *ccgpParser) ParseDetail(ctx context.Context, pageURL string) (types.Detail, error) {
	html, err := p.client.Get(ctx, pageURL, nil)
	if err != nil {
		return types.Detail{}, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return types.Detail{}, err
	}
	text := doc.Text()

	var d types.Detail
	if m := ccgpBidNoRe.FindStringSubmatch(text); m != nil {
		d.BidNo = strings.TrimSpace(m[1])
	}
	if m := ccgpBudgetRe.FindStringSubmatch(text); m != nil {
		d.Budget = textutil.ParseAmount(m[1])
	}
	if m := ccgpDeadlineRe.FindStringSubmatch(text); m != nil {
		d.Deadline = textutil.ParseDate(m[1])
	}
	if m := ccgpAgencyRe.FindStringSubmatch(text); m != nil {
		d.Agency = textutil.CleanText(m[1])
	}
	return d, nil
}

// resolveURL makes href absolute against the site base, handling the
// protocol-relative and root-relative forms the sites emit.
func resolveURL(href, base, searchURL string) string {
	switch {
	case strings.HasPrefix(href, "//"):
		return "https:" + href
	case strings.HasPrefix(href, "http"):
		return href
	}
	ref := base
	if !strings.HasPrefix(href, "/") {
		ref = searchURL
	}
	u, err := url.Parse(ref)
	if err != nil {
		return href
	}
	h, err := url.Parse(href)
	if err != nil {
		return href
	}
	return u.ResolveReference(h).String()
}
