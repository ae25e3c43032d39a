// Package report turns a free-text model completion into a structured
// perception report.
//
// The prompt asks the model to emit numbered header lines such as
// "1. CHARACTER_SCORE". The same declarations drive both the prompt and
// the parser, so the two cannot drift apart: a PromptSpec is the single
// source of truth for header tokens, ordinals and default values.
package report

import (
	"fmt"
	"sort"
)

// Cardinality describes what a section carries besides its text.
type Cardinality int

const (
	// SingleText sections carry trimmed text only.
	SingleText Cardinality = iota
	// ScoredText sections carry text plus a 1..100 score.
	ScoredText
	// TableCardinality sections carry the fixed five-category score table.
	TableCardinality
)

func (c Cardinality) String() string {
	switch c {
	case SingleText:
		return "single-text"
	case ScoredText:
		return "numeric-score+text"
	case TableCardinality:
		return "fixed-category-table"
	default:
		return fmt.Sprintf("cardinality(%d)", int(c))
	}
}

// Placeholder texts used when the model omits a section.
const (
	NoDetails          = "No details available."
	DefaultExplanation = "No explanation available from the analyzed coverage."

	// NarrativeToken keys the whole completion for the narrative style.
	NarrativeToken = "ANALYSIS"

	overallDefaultScore  = 70
	categoryDefaultScore = 65
)

// SectionDeclaration is one labeled section the model is asked to emit.
type SectionDeclaration struct {
	Ordinal         int
	Token           string
	ExpectedContent string
	Cardinality     Cardinality

	// DefaultText replaces a missing or empty body.
	DefaultText string
	// DefaultScore replaces a score that cannot be extracted.
	DefaultScore int
	// TitleFallback enables title extraction; it is used when the body has
	// no non-empty line.
	TitleFallback string
	// Overall marks the section whose score is the report's overall score.
	Overall bool
	// Explains marks the section whose text yields the overall explanation.
	Explains bool
}

// Header returns the literal line prefix that opens this section.
func (d SectionDeclaration) Header() string {
	return fmt.Sprintf("%d. %s", d.Ordinal, d.Token)
}

// StyleName identifies a report style.
type StyleName string

// Built-in styles.
const (
	StyleNarrative StyleName = "narrative"
	StyleThemes    StyleName = "themes"
	StyleCharacter StyleName = "character"
	StyleTable     StyleName = "table"
)

// DefaultStyle is used when a request does not name one.
const DefaultStyle = StyleCharacter

// PromptSpec is the header contract shared by the prompt builder and the
// parser for one style.
type PromptSpec struct {
	Name        StyleName
	Label       string
	Description string
	Sections    []SectionDeclaration
}

// Narrative reports whether the style has no declared sections; the whole
// completion is then the report.
func (s PromptSpec) Narrative() bool { return len(s.Sections) == 0 }

// Tokens returns the header tokens in declaration order.
func (s PromptSpec) Tokens() []string {
	if s.Narrative() {
		return []string{NarrativeToken}
	}
	out := make([]string, len(s.Sections))
	for i, d := range s.Sections {
		out[i] = d.Token
	}
	return out
}

// Section looks up a declaration by token.
func (s PromptSpec) Section(token string) (SectionDeclaration, bool) {
	for _, d := range s.Sections {
		if d.Token == token {
			return d, true
		}
	}
	return SectionDeclaration{}, false
}

var styles = map[StyleName]PromptSpec{
	StyleNarrative: {
		Name:        StyleNarrative,
		Label:       "Narrative report",
		Description: "Free-form five part report rendered as a single document.",
	},
	StyleThemes: {
		Name:        StyleThemes,
		Label:       "Perception themes",
		Description: "Executive summary, key themes with detail, and three fixed comparisons.",
		Sections: []SectionDeclaration{
			{Ordinal: 1, Token: "EXECUTIVE_SUMMARY", Cardinality: SingleText,
				ExpectedContent: "Overall public perception (positive, negative, or mixed with approximate percentages) and a 1-2 paragraph summary of how the player is viewed."},
			{Ordinal: 2, Token: "PERCEPTION_THEMES", Cardinality: SingleText, DefaultText: NoDetails,
				ExpectedContent: "A short bulleted list naming the 4 main themes in how the player is discussed."},
			themeSection(3, 1),
			themeSection(4, 2),
			themeSection(5, 3),
			themeSection(6, 4),
			{Ordinal: 7, Token: "FAN_VS_MEDIA", Cardinality: SingleText, DefaultText: NoDetails,
				ExpectedContent: "Differences between how fans perceive the player and how official media covers them, with examples."},
			{Ordinal: 8, Token: "ON_FIELD_VS_OFF_FIELD", Cardinality: SingleText, DefaultText: NoDetails,
				ExpectedContent: "The player's reputation for athletic performance compared with their character off the field, with specific examples."},
			{Ordinal: 9, Token: "STRENGTHS_WEAKNESSES", Cardinality: SingleText, DefaultText: NoDetails,
				ExpectedContent: "The strongest and weakest aspects of the player's public image, with quotes or paraphrases from the articles."},
		},
	},
	StyleCharacter: {
		Name:        StyleCharacter,
		Label:       "Character score",
		Description: "Overall character score with five model-chosen scored categories.",
		Sections: []SectionDeclaration{
			{Ordinal: 1, Token: "CHARACTER_SCORE", Cardinality: ScoredText,
				DefaultScore: overallDefaultScore, Overall: true, Explains: true,
				ExpectedContent: "A single overall character score from 1 to 100, written as \"<score> - <one sentence explanation>\"."},
			{Ordinal: 2, Token: "EXECUTIVE_SUMMARY", Cardinality: SingleText,
				ExpectedContent: "A 1-2 paragraph summary of how the player is viewed by fans and media."},
			characterCategory(3, 1),
			characterCategory(4, 2),
			characterCategory(5, 3),
			characterCategory(6, 4),
			characterCategory(7, 5),
			{Ordinal: 8, Token: "KEY_TAKEAWAYS", Cardinality: SingleText, DefaultText: NoDetails,
				ExpectedContent: "Three to five bullet points a scout or sponsor should remember."},
		},
	},
	StyleTable: {
		Name:        StyleTable,
		Label:       "Category table",
		Description: "Five fixed categories scored in a table; the overall score is their average.",
		Sections: []SectionDeclaration{
			{Ordinal: 1, Token: "EXECUTIVE_SUMMARY", Cardinality: SingleText,
				ExpectedContent: "A 1-2 paragraph summary of how the player is viewed by fans and media."},
			{Ordinal: 2, Token: "CATEGORY_SCORES", Cardinality: TableCardinality, Overall: true,
				DefaultScore:    categoryDefaultScore,
				ExpectedContent: "Exactly five lines, one per category, each written as \"<Category>: <score 1-100> - <one sentence explanation>\". Use these categories: On-Field Performance, Leadership, Team Relationship, Public Image, Off-Field Conduct."},
			{Ordinal: 3, Token: "OVERALL_ASSESSMENT", Cardinality: SingleText, Explains: true,
				ExpectedContent: "One or two sentences explaining the player's overall character standing. Do not repeat any scores."},
			{Ordinal: 4, Token: "KEY_STRENGTHS", Cardinality: SingleText, DefaultText: NoDetails,
				ExpectedContent: "Bullet points listing the player's strongest reputation assets."},
			{Ordinal: 5, Token: "AREAS_OF_CONCERN", Cardinality: SingleText, DefaultText: NoDetails,
				ExpectedContent: "Bullet points listing reputation risks or criticisms found in the coverage."},
		},
	},
}

func themeSection(ordinal, n int) SectionDeclaration {
	return SectionDeclaration{
		Ordinal:         ordinal,
		Token:           fmt.Sprintf("THEME_%d", n),
		Cardinality:     SingleText,
		DefaultText:     NoDetails,
		TitleFallback:   fmt.Sprintf("Theme %d", n),
		ExpectedContent: fmt.Sprintf("First line: a short title for theme %d. Then the evidence from the articles supporting it.", n),
	}
}

func characterCategory(ordinal, n int) SectionDeclaration {
	return SectionDeclaration{
		Ordinal:         ordinal,
		Token:           fmt.Sprintf("CHARACTER_CATEGORY_%d", n),
		Cardinality:     ScoredText,
		DefaultText:     NoDetails,
		DefaultScore:    categoryDefaultScore,
		TitleFallback:   fmt.Sprintf("Category %d", n),
		ExpectedContent: "First line: the category name only. Second line: a score from 1 to 100. Then a short explanation citing the articles.",
	}
}

// Lookup returns the PromptSpec for name. An empty name selects DefaultStyle.
func Lookup(name StyleName) (PromptSpec, error) {
	if name == "" {
		name = DefaultStyle
	}
	s, ok := styles[name]
	if !ok {
		return PromptSpec{}, fmt.Errorf("%w: %q", ErrUnknownStyle, name)
	}
	return s, nil
}

// Styles returns all built-in styles sorted by name.
func Styles() []PromptSpec {
	out := make([]PromptSpec, 0, len(styles))
	for _, s := range styles {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
