// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package crawler

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pdiddy/tender-watch/internal/logger"
	"github.com/pdiddy/tender-watch/internal/textutil"
	"github.com/pdiddy/tender-watch/pkg/types"
)

// chinaBiddingParser extracts announcements from the procurement and
// tendering network (chinabidding.cn) keyword search.
type chinaBiddingParser struct {
	cfg types.SourceConfig
	log logger.Logger
}

func newChinaBiddingParser(cfg types.SourceConfig, log logger.Logger) *chinaBiddingParser {
	return &chinaBiddingParser{cfg: cfg, log: log}
}

func (p *chinaBiddingParser) Name() string { return "chinabidding" }

func (p *chinaBiddingParser) ListURL(page int, keywords []string) string {
	params := url.Values{
		"keyword":    {strings.Join(keywords, " ")},
		"page":       {strconv.Itoa(page)},
		"categoryId": {""},
	}
	return p.cfg.SearchURL + "?" + params.Encode()
}

var chinaBiddingDateRe = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)

func (p *chinaBiddingParser) ParseList(html string) []Candidate {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		p.log.Warn("chinabidding: unparsable markup", logger.Err(err))
		return nil
	}

	items := doc.Find(".search-list-box li")
	if items.Length() == 0 {
		items = doc.Find(".list_bid li")
	}
	if items.Length() == 0 {
		items = doc.Find(".table-box tr")
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
			dateText = s.Find("td.time").First().Text()
		}
		if dateText == "" {
			dateText = chinaBiddingDateRe.FindString(s.Text())
		}
		c.PublishDate = textutil.ParseDate(dateText)

		area := s.Find("span.area").First().Text()
		if area == "" {
			area = s.Find("td.area").First().Text()
		}
		c.Purchaser = textutil.CleanText(area)

		out = append(out, c)
	})
	return out
}
