package llm

import (
	"strings"
	"sync"
	"sync/atomic"

	"github.com/pkoukk/tiktoken-go"
)

// EncodingLoader produces a tiktoken encoding. Loading may hit the network.
type EncodingLoader func() (*tiktoken.Tiktoken, error)

// Tokenizer counts tokens with a tiktoken encoding that is loaded in the
// background. Until the load finishes, or if it fails, Count uses
// EstimateTokens and never waits.
type Tokenizer struct {
	load  EncodingLoader
	once  sync.Once
	enc   atomic.Pointer[tiktoken.Tiktoken]
	ready chan struct{}
}

// NewTokenizer creates a Tokenizer backed by load.
func NewTokenizer(load EncodingLoader) *Tokenizer {
	return &Tokenizer{load: load, ready: make(chan struct{})}
}

// Warm starts loading the encoding once. It does not block.
func (t *Tokenizer) Warm() {
	t.once.Do(func() {
		go func() {
			defer close(t.ready)
			if enc, err := t.load(); err == nil && enc != nil {
				t.enc.Store(enc)
			}
		}()
	})
}

// Ready is closed once the load attempt has finished.
func (t *Tokenizer) Ready() <-chan struct{} { return t.ready }

// Count returns the token count of text.
func (t *Tokenizer) Count(text string) int {
	t.Warm()
	if enc := t.enc.Load(); enc != nil {
		return len(enc.Encode(text, nil, nil))
	}
	return EstimateTokens(text)
}

var defaultTokenizer = NewTokenizer(func() (*tiktoken.Tiktoken, error) {
	return tiktoken.GetEncoding("cl100k_base")
})

// WarmTokens starts loading the cl100k_base encoding in the background.
func WarmTokens() { defaultTokenizer.Warm() }

// CountTokens returns the cl100k_base token count of text, or EstimateTokens
// while the encoding is unavailable.
func CountTokens(text string) int { return defaultTokenizer.Count(text) }

// EstimateTokens is a cheap heuristic: max(runes/4, words), at least 1 for
// non-blank text.
func EstimateTokens(text string) int {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return 0
	}
	estimate := len([]rune(trimmed)) / 4
	if words := len(strings.Fields(trimmed)); estimate < words {
		estimate = words
	}
	if estimate == 0 {
		estimate = 1
	}
	return estimate
}
