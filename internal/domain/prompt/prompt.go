// Package prompt renders search evidence into the instruction sent to the
// generator. The section headers it asks for come from the same
// report.PromptSpec the parser reads back.
package prompt

import (
	"fmt"
	"strings"

	"github.com/okian/perception/internal/domain/model"
	"github.com/okian/perception/internal/domain/report"
)

const (
	// SystemRole is the system message sent with every prompt.
	SystemRole = "You are an expert NFL analyst specializing in player perception and reputation analysis."

	// Temperature is the default sampling temperature.
	Temperature float32 = 0.5
)

// narrativeOutline is the five part outline used when a style declares no
// sections.
const narrativeOutline = `Your character report should include:

1. Executive Summary
- Overall public perception (positive, negative, or mixed with approximate percentages)
- 1-2 paragraph summary of how the player is viewed by the public

2. Key Perception Themes
- Identify 3-5 main themes in how the player is discussed
- For each theme, provide evidence from the articles

3. Fan vs Media Perception
- Analyze any differences between how fans perceive the player vs official media
- Provide examples of these differences

4. On-Field vs Off-Field Reputation
- Compare the player's reputation for their athletic performance vs their character off the field
- Include specific examples

5. Reputation Strengths & Weaknesses
- List the strongest and weakest aspects of the player's public image
- Include quotes or paraphrases from the articles as evidence
`

// FormatEvidence renders items as numbered articles separated by a blank
// line. Numbering is 1-based and follows slice order.
func FormatEvidence(items []model.EvidenceItem) string {
	parts := make([]string, len(items))
	for i, it := range items {
		parts[i] = fmt.Sprintf("Article %d (%s):\nTitle: %s\nContent: %s\n", i+1, it.Category, it.Title, it.Snippet)
	}
	return strings.Join(parts, "\n\n")
}

// Build returns the user prompt for subject. Empty evidence still yields a
// complete prompt; callers decide whether that is worth sending.
func Build(subject string, evidence []model.EvidenceItem, spec report.PromptSpec) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are analyzing news coverage and information for NFL player %s. ", subject)
	b.WriteString("Given the following articles, create a detailed character report.\n\n")
	b.WriteString("Articles:\n")
	b.WriteString(FormatEvidence(evidence))
	b.WriteString("\n\n")

	if spec.Narrative() {
		b.WriteString(narrativeOutline)
		return b.String()
	}

	b.WriteString("Format your response using exactly the numbered section headers below, ")
	b.WriteString("each on its own line and in this order. Write each header exactly as shown, ")
	b.WriteString("then the section content on the following lines.\n\n")
	for _, d := range spec.Sections {
		b.WriteString(d.Header())
		b.WriteByte('\n')
		b.WriteString(d.ExpectedContent)
		b.WriteString("\n\n")
	}
	b.WriteString("Do not add any other headers, and do not put text before the first header.\n")
	return b.String()
}

// Request assembles the generator request for subject.
func Request(subject string, evidence []model.EvidenceItem, spec report.PromptSpec) model.CompletionRequest {
	return model.CompletionRequest{
		System:      SystemRole,
		Prompt:      Build(subject, evidence, spec),
		Temperature: Temperature,
	}
}
