// Package model contains domain models passed between layers.
package model

// Category tags which search produced an evidence item.
type Category string

// Evidence categories, in the order they are gathered.
const (
	CategoryGeneral Category = "general"
	CategoryNews    Category = "news"
)

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	return c == CategoryGeneral || c == CategoryNews
}

// EvidenceItem is one search result about the subject.
// Link may be empty; items are never deduplicated.
type EvidenceItem struct {
	Title    string   `json:"title"`
	Link     string   `json:"link,omitempty"`
	Snippet  string   `json:"snippet"`
	Category Category `json:"category"`
}

// CompletionRequest is what the generator receives for one report.
type CompletionRequest struct {
	System      string  // system role message
	Prompt      string  // user message carrying the evidence
	Temperature float32 // sampling temperature
}
