// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package crawler

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pdiddy/tender-watch/internal/logger"
	"github.com/pdiddy/tender-watch/internal/textutil"
	"github.com/pdiddy/tender-watch/pkg/types"
)

// cebpParser extracts announcements from the public tender service
// platform (cebpubservice.com). The site lists announcements under
// static paginated index pages, so keywords do not enter the URL; the
// keyword filter stage does the matching downstream.
type cebpParser struct {
	cfg types.SourceConfig
	log logger.Logger
}

func newCEBPParser(cfg types.SourceConfig, log logger.Logger) *cebpParser {
	return &cebpParser{cfg: cfg, log: log}
}

func (p *cebpParser) Name() string { return "cebp" }

// ListURL paginates as index_{page}.html from page 2 onward.
func (p *cebpParser) ListURL(page int, _ []string) string {
	if page == 1 {
		return p.cfg.SearchURL
	}
	base := p.cfg.SearchURL
	if i := strings.LastIndex(base, "/"); i >= 0 {
		base = base[:i]
	}
	return fmt.Sprintf("%s/index_%d.html", base, page)
}

var cebpDateRe = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)

func (p *cebpParser) ParseList(html string) []Candidate {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		p.log.Warn("cebp: unparsable markup", logger.Err(err))
		return nil
	}

	items := doc.Find("ul.xxgg_con_list li")
	if items.Length() == 0 {
		items = doc.Find(".news_list li")
	}
	if items.Length() == 0 {
		items = doc.Find(".list-item")
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
		if m := cebpDateRe.FindString(s.Text()); m != "" {
			c.PublishDate = textutil.ParseDate(m)
		}
		out = append(out, c)
	})
	return out
}
