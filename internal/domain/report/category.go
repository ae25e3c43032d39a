package report

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Category is one of the five canonical table categories.
type Category string

// Canonical categories, in display order.
const (
	OnFieldPerformance Category = "On-Field Performance"
	Leadership         Category = "Leadership"
	TeamRelationship   Category = "Team Relationship"
	PublicImage        Category = "Public Image"
	OffFieldConduct    Category = "Off-Field Conduct"
)

// Categories lists the canonical categories in display order.
var Categories = []Category{
	OnFieldPerformance,
	Leadership,
	TeamRelationship,
	PublicImage,
	OffFieldConduct,
}

// CategoryScore is one row of the table.
type CategoryScore struct {
	Score       int    `json:"score"`
	Explanation string `json:"explanation"`
	Defaulted   bool   `json:"defaulted,omitempty"`
}

// CategoryTable always holds all five canonical categories once parsed.
type CategoryTable map[Category]CategoryScore

// categoryRule maps a label to a category when the lower-cased label
// contains every keyword of all and at least one keyword of anyOf.
type categoryRule struct {
	all      []string
	anyOf    []string
	category Category
}

// Evaluated top to bottom; later rules never see labels an earlier rule
// accepted.
var categoryRules = []categoryRule{
	{all: []string{"field"}, anyOf: []string{"performance", "skill"}, category: OnFieldPerformance},
	{anyOf: []string{"leadership", "lead"}, category: Leadership},
	{anyOf: []string{"team", "relationship", "teammate"}, category: TeamRelationship},
	{anyOf: []string{"public", "image", "media"}, category: PublicImage},
	{anyOf: []string{"conduct", "off-field", "character"}, category: OffFieldConduct},
}

// categoryRow matches "<label>: <integer> - <explanation>", tolerating a
// leading bullet and bold markers.
var categoryRow = regexp.MustCompile(`^\s*(?:[-*•]\s+|\d+\.\s+)?(.+?)\s*:\s*(?:\*\*)?\s*(\d+)\s*[-–—]\s*(.*?)\s*$`)

// MatchCategory maps a model-chosen label to a canonical category.
func MatchCategory(label string) (Category, bool) {
	l := strings.ToLower(label)
	for _, r := range categoryRules {
		if containsAll(l, r.all) && containsAny(l, r.anyOf) {
			return r.category, true
		}
	}
	return "", false
}

// ParseCategoryTable reads category rows from text. Rows whose label
// matches no category, or whose score is outside 1..100, are dropped; the
// first row for a category wins. Categories without a row get the default
// score of 65.
func ParseCategoryTable(text string) CategoryTable {
	t := make(CategoryTable, len(Categories))
	for _, line := range strings.Split(text, "\n") {
		m := categoryRow.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		c, ok := MatchCategory(strings.Trim(m[1], "* "))
		if !ok {
			continue
		}
		if _, seen := t[c]; seen {
			continue
		}
		score, err := strconv.Atoi(m[2])
		if err != nil || score < 1 || score > 100 {
			continue
		}
		t[c] = CategoryScore{Score: score, Explanation: m[3]}
	}
	for _, c := range Categories {
		if _, ok := t[c]; !ok {
			t[c] = CategoryScore{
				Score:       categoryDefaultScore,
				Explanation: fmt.Sprintf("Default score for %s.", c),
				Defaulted:   true,
			}
		}
	}
	return t
}

// Overall is the mean of the five category scores, rounded half up.
func (t CategoryTable) Overall() int {
	sum := 0
	for _, c := range Categories {
		sum += t[c].Score
	}
	mean := float64(sum) / float64(len(Categories))
	return int(math.Floor(mean + 0.5))
}

// Defaulted returns the categories that received the default score.
func (t CategoryTable) Defaulted() []Category {
	var out []Category
	for _, c := range Categories {
		if t[c].Defaulted {
			out = append(out, c)
		}
	}
	return out
}

func containsAll(s string, words []string) bool {
	for _, w := range words {
		if !strings.Contains(s, w) {
			return false
		}
	}
	return true
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
