package report

import "strings"

// SectionResult is the parsed form of one declared section.
type SectionResult struct {
	Text        string `json:"text"`
	Score       *int   `json:"score,omitempty"`
	Title       string `json:"title,omitempty"`
	Explanation string `json:"explanation,omitempty"`
}

// ParsedReport maps every declared token of a style to its result.
type ParsedReport struct {
	Style              StyleName                `json:"style"`
	Order              []string                 `json:"order"`
	Sections           map[string]SectionResult `json:"sections"`
	OverallScore       *int                     `json:"overallScore,omitempty"`
	OverallExplanation string                   `json:"overallExplanation,omitempty"`
	Categories         CategoryTable            `json:"categories,omitempty"`
	// Defaulted lists tokens whose text or score came from a default.
	Defaulted []string `json:"defaulted,omitempty"`
}

// Parse decomposes raw into the sections declared by spec. It never fails:
// sections the model omitted, left empty or malformed get the
// declaration's defaults.
func Parse(spec PromptSpec, raw string) ParsedReport {
	r := ParsedReport{
		Style:    spec.Name,
		Order:    spec.Tokens(),
		Sections: make(map[string]SectionResult, len(spec.Sections)),
	}

	if spec.Narrative() {
		r.Sections[NarrativeToken] = SectionResult{Text: strings.TrimSpace(raw)}
		return r
	}

	bodies := Split(raw, spec)
	for _, d := range spec.Sections {
		body := bodies[d.Token]
		res, defaulted := fill(d, body)

		if d.Cardinality == TableCardinality {
			r.Categories = ParseCategoryTable(body)
			overall := r.Categories.Overall()
			res.Score = &overall
			if len(r.Categories.Defaulted()) > 0 {
				defaulted = true
			}
		}
		if d.Overall {
			r.OverallScore = res.Score
		}
		if d.Explains {
			res.Explanation = ExtractExplanation(body)
			r.OverallExplanation = res.Explanation
		}

		if defaulted {
			r.Defaulted = append(r.Defaulted, d.Token)
		}
		r.Sections[d.Token] = res
	}
	return r
}

// fill builds the result for one declaration from its (possibly empty) body.
func fill(d SectionDeclaration, body string) (SectionResult, bool) {
	res := SectionResult{Text: body}
	defaulted := false
	if body == "" {
		res.Text = d.DefaultText
		defaulted = true
	}
	if d.TitleFallback != "" {
		res.Title = ExtractTitle(body, d.TitleFallback)
	}
	if d.Cardinality == ScoredText {
		score, ok := ExtractScore(body)
		if !ok {
			score = d.DefaultScore
			defaulted = true
		}
		res.Score = &score
	}
	return res, defaulted
}
