package report

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

var (
	// bareScore matches an integer 1..100 not touching other digits.
	bareScore = regexp.MustCompile(`(?:^|\D)(100|[1-9]\d?)(?:\D|$)`)

	// listPrefix matches "1. ", "- ", "* " or "• " at the start of a line.
	listPrefix = regexp.MustCompile(`^(?:\d+\.\s+|[-*•]\s+)`)

	// scorePrefix matches a leading "85 - ", "85/100: ", "85. " or "85/100 ".
	scorePrefix = regexp.MustCompile(`^\s*(?:100|[1-9]\d?)(?:\s*/\s*100)?(?:\s*[-–—:]\s*|\.\s+|\s*$)|^\s*(?:100|[1-9]\d?)\s*/\s*100\s+`)
)

// ExtractScore returns the first bare integer in 1..100 found in text.
//
// The first match wins even when it is not the intended score: "60% of
// fans" yields 60, and four-digit years are skipped only because they
// touch other digits.
func ExtractScore(text string) (int, bool) {
	m := bareScore.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// ExtractTitle returns the first non-empty line of text without a leading
// ordinal or bullet. fallback is returned when text has no such line.
func ExtractTitle(text, fallback string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if title := strings.TrimSpace(listPrefix.ReplaceAllString(line, "")); title != "" {
			return title
		}
	}
	return fallback
}

// ExtractExplanation returns the first sentence of text that does not
// contain a bare 1..100 integer, after removing a leading score such as
// "85 - ". DefaultExplanation is returned when every sentence has one.
func ExtractExplanation(text string) string {
	text = scorePrefix.ReplaceAllString(strings.TrimSpace(text), "")
	for _, s := range sentences(text) {
		if !bareScore.MatchString(s) {
			return s
		}
	}
	return DefaultExplanation
}

// sentences splits on '.', '!' or '?' followed by whitespace.
func sentences(text string) []string {
	var (
		out   []string
		start int
	)
	runes := []rune(text)
	for i, r := range runes {
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		if i+1 < len(runes) && unicode.IsSpace(runes[i+1]) {
			if s := strings.TrimSpace(string(runes[start : i+1])); s != "" {
				out = append(out, s)
			}
			start = i + 1
		}
	}
	if s := strings.TrimSpace(string(runes[start:])); s != "" {
		out = append(out, s)
	}
	return out
}
