// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httpclient

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding/htmlindex"
)

var charsetRe = regexp.MustCompile(`(?i)charset=["']?([A-Za-z0-9\-_]+)`)

// decodeBody converts raw response bytes to a UTF-8 string. It tries, in
// order: the source's declared encoding, the Content-Type charset, a
// detected charset, then gbk and gb18030, which cover the sites this
// system crawls. If every decode fails the bytes are interpreted
// permissively as UTF-8.
func decodeBody(raw []byte, declared, contentType string) string {
	if len(raw) == 0 {
		return ""
	}

	var candidates []string
	if declared != "" {
		candidates = append(candidates, declared)
	}
	if m := charsetRe.FindStringSubmatch(contentType); m != nil {
		candidates = append(candidates, m[1])
	}
	if detected := detectCharset(raw); detected != "" {
		candidates = append(candidates, detected)
	}
	candidates = append(candidates, "utf-8", "gbk", "gb18030")

	for _, name := range candidates {
		if text, ok := tryDecode(raw, name); ok {
			return text
		}
	}
	return string(raw)
}

// detectCharset runs statistical charset detection over the body.
func detectCharset(raw []byte) string {
	result, err := chardet.NewHtmlDetector().DetectBest(raw)
	if err != nil {
		return ""
	}
	return result.Charset
}

// tryDecode decodes raw with the named charset and reports whether the
// result is valid UTF-8.
func tryDecode(raw []byte, name string) (string, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	// chardet reports "GB-18030"; the WHATWG index wants "gb18030".
	name = strings.Replace(name, "gb-", "gb", 1)
	if name == "" {
		return "", false
	}
	if name == "utf-8" || name == "utf8" {
		if utf8.Valid(raw) {
			return string(raw), true
		}
		return "", false
	}

	enc, err := htmlindex.Get(name)
	if err != nil {
		return "", false
	}
	decoded, err := enc.NewDecoder().Bytes(raw)
	if err != nil {
		return "", false
	}
	if !utf8.Valid(decoded) {
		return "", false
	}
	return string(decoded), true
}
