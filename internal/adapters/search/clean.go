package search

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// cleanText strips markup and entities from provider text and collapses
// whitespace. Plain text passes through apart from whitespace folding.
func cleanText(s string) string {
	if strings.ContainsAny(s, "<&") {
		if doc, err := goquery.NewDocumentFromReader(strings.NewReader(s)); err == nil {
			s = doc.Text()
		}
	}
	return strings.Join(strings.Fields(s), " ")
}

// cleanLink keeps absolute http(s) links only; anything else becomes "".
func cleanLink(s string) string {
	s = strings.TrimSpace(s)
	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		return ""
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return s
	default:
		return ""
	}
}
