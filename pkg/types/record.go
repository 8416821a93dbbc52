// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the tender-watch pipeline:
// the normalized tender Record, its detail-page enrichment, and the
// configuration tree consumed by the crawl engine and filter pipeline.
package types

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"time"
)

// Title length bounds for a valid Record.
const (
	MinTitleLen = 5
	MaxTitleLen = 500
)

// Record is one normalized tender/bid announcement produced by a source
// parser. Title, URL and Source are required; everything else is optional
// and may be filled in by detail-page enrichment or by the filter pipeline
// (MatchedKeywords, Industry).
type Record struct {
	// Title is the announcement title as published by the source.
	Title string `json:"title" yaml:"title"`

	// URL is the absolute link to the original announcement.
	URL string `json:"url" yaml:"url"`

	// Source identifies the site the record came from.
	Source string `json:"source" yaml:"source"`

	// BidNo is the tender number extracted from the detail page.
	BidNo string `json:"bid_no,omitempty" yaml:"bid_no,omitempty"`

	// Purchaser is the procuring organization.
	Purchaser string `json:"purchaser,omitempty" yaml:"purchaser,omitempty"`

	// Agency is the tendering agent acting for the purchaser.
	Agency string `json:"agency,omitempty" yaml:"agency,omitempty"`

	// PublishDate is the announcement date, zero when unknown.
	PublishDate time.Time `json:"publish_date,omitzero" yaml:"publish_date,omitempty"`

	// Deadline is the bid submission deadline, zero when unknown.
	Deadline time.Time `json:"deadline,omitzero" yaml:"deadline,omitempty"`

	// Budget is the tender budget in units of 万元 (ten-thousand yuan).
	// Zero means no budget was published.
	Budget float64 `json:"budget,omitempty" yaml:"budget,omitempty"`

	// Contact is free-text contact information.
	Contact string `json:"contact,omitempty" yaml:"contact,omitempty"`

	// Address is free-text address information.
	Address string `json:"address,omitempty" yaml:"address,omitempty"`

	// Industry is assigned by the classification stage, empty until then.
	Industry string `json:"industry,omitempty" yaml:"industry,omitempty"`

	// MatchedKeywords lists the configured keywords found in the title,
	// in keyword-list order. Empty until the keyword stage runs.
	MatchedKeywords []string `json:"matched_keywords,omitempty" yaml:"matched_keywords,omitempty"`

	// FetchTime is when the record was created from page markup.
	FetchTime time.Time `json:"fetch_time" yaml:"fetch_time"`

	// fingerprint caches the dedup key; computed lazily.
	fingerprint string
}

// Valid reports whether the record carries the required fields and a title
// of plausible length.
func (r *Record) Valid() bool {
	if r.Title == "" || r.URL == "" || r.Source == "" {
		return false
	}
	n := len([]rune(r.Title))
	return n >= MinTitleLen && n <= MaxTitleLen
}

// Fingerprint returns the dedup key derived from title, publish date and
// purchaser. The key is computed once and cached; callers must not mutate
// those fields afterwards.
func (r *Record) Fingerprint() string {
	if r.fingerprint != "" {
		return r.fingerprint
	}
	unique := r.Title
	if !r.PublishDate.IsZero() {
		unique += "_" + r.PublishDate.Format("20060102")
	}
	if r.Purchaser != "" {
		unique += "_" + r.Purchaser
	}
	sum := md5.Sum([]byte(unique))
	r.fingerprint = hex.EncodeToString(sum[:])
	return r.fingerprint
}

// Merge copies non-empty enrichment fields from d onto the record. Fields
// already set on the record are not overwritten.
func (r *Record) Merge(d Detail) {
	if r.BidNo == "" && d.BidNo != "" {
		r.BidNo = d.BidNo
	}
	if r.Budget == 0 && d.Budget > 0 {
		r.Budget = d.Budget
	}
	if r.Deadline.IsZero() && !d.Deadline.IsZero() {
		r.Deadline = d.Deadline
	}
	if r.Contact == "" && d.Contact != "" {
		r.Contact = d.Contact
	}
	if r.Agency == "" && d.Agency != "" {
		r.Agency = d.Agency
	}
}

// String returns a short human-readable form for log messages.
func (r *Record) String() string {
	title := r.Title
	if n := []rune(title); len(n) > 50 {
		title = string(n[:50]) + "..."
	}
	return fmt.Sprintf("Record(title=%q, source=%q)", title, r.Source)
}

// Detail holds the optional fields a detail-page parse can contribute.
// It is merged into a Record explicitly via Record.Merge so that
// enrichment never mutates a record from another goroutine.
type Detail struct {
	BidNo    string
	Budget   float64
	Deadline time.Time
	Contact  string
	Agency   string
}

// Empty reports whether the detail parse found nothing usable.
func (d Detail) Empty() bool {
	return d == Detail{}
}
