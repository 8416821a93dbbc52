// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package textutil parses the date and amount formats that appear in
// Chinese tender announcements and provides small text-cleaning helpers
// shared by the source parsers.
package textutil

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var datePatterns = []*regexp.Regexp{
	// 2026-01-15, 2026/01/15, 2026年01月15日
	regexp.MustCompile(`(\d{4})[年\-/](\d{1,2})[月\-/](\d{1,2})`),
	// 2026.01.15
	regexp.MustCompile(`(\d{4})\.(\d{1,2})\.(\d{1,2})`),
	// 20260115
	regexp.MustCompile(`(\d{4})(\d{2})(\d{2})`),
}

// ParseDate extracts a calendar date from free text. It recognizes the
// common numeric and CJK formats; the zero time is returned when no date
// is found.
func ParseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}

	for _, pat := range datePatterns {
		m := pat.FindStringSubmatch(s)
		if m == nil {
			continue
		}
		year, err1 := strconv.Atoi(m[1])
		month, err2 := strconv.Atoi(m[2])
		day, err3 := strconv.Atoi(m[3])
		if err1 != nil || err2 != nil || err3 != nil {
			continue
		}
		if month < 1 || month > 12 || day < 1 || day > 31 {
			continue
		}
		return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.Local)
	}
	return time.Time{}
}

var amountRe = regexp.MustCompile(`[\d.]+`)

// ParseAmount extracts a monetary amount from free text and normalizes it
// to 万元 (ten-thousand yuan). "1.5亿元" yields 15000, "100万元" yields
// 100, "50000元" yields 5. Returns 0 when no amount is found. Text with
// no unit marker is assumed to already be in 万元.
func ParseAmount(s string) float64 {
	if s == "" {
		return 0
	}
	s = strings.NewReplacer(",", "", "，", "", " ", "", "\t", "").Replace(s)

	m := amountRe.FindString(s)
	if m == "" {
		return 0
	}
	value, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0
	}

	switch {
	case strings.Contains(s, "亿"):
		value *= 10000
	case strings.Contains(s, "万"):
		// already 万元
	case strings.Contains(s, "千"):
		value /= 10
	case strings.Contains(s, "元"):
		value /= 10000
	}
	return round2(value)
}

func round2(v float64) float64 {
	return float64(int64(v*100+0.5)) / 100
}

var spaceRe = regexp.MustCompile(`\s+`)

// CleanText collapses runs of whitespace into single spaces and trims the
// result.
func CleanText(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
}

// MatchKeywords returns the keywords found in text by case-insensitive
// substring match, preserving keyword-list order. An empty text or an
// empty list yields nil.
func MatchKeywords(text string, keywords []string) []string {
	if text == "" || len(keywords) == 0 {
		return nil
	}
	lower := strings.ToLower(text)
	var matched []string
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(kw)) {
			matched = append(matched, kw)
		}
	}
	return matched
}

// Truncate shortens s to at most max runes, appending "..." when it cuts.
func Truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "..."
}

// DateFilename expands the "{date}" placeholder in a filename template to
// the given day in yyyymmdd form.
func DateFilename(template string, day time.Time) string {
	return strings.ReplaceAll(template, "{date}", day.Format("20060102"))
}
