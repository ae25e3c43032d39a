package llm

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/okian/perception/internal/domain/model"
	"github.com/okian/perception/pkg/logger"
)

const defaultGeminiModel = "gemini-2.5-flash"

// Gemini generates completions with the Gemini API.
type Gemini struct {
	client *genai.Client
	model  string
	settings
}

// NewGemini creates a Gemini client for model.
func NewGemini(ctx context.Context, apiKey, model string, opts ...Option) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: %s", ErrMissingAPIKey, ProviderGemini)
	}
	if model == "" {
		model = defaultGeminiModel
	}
	s := newSettings(opts)

	cc := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: s.http,
	}
	if s.baseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: s.baseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("%w: create client: %w", ErrUpstream, err)
	}
	return &Gemini{client: client, model: model, settings: s}, nil
}

// Provider names the backend for metrics and logs.
func (g *Gemini) Provider() string { return ProviderGemini }

// Complete runs one generateContent call with req's system instruction.
func (g *Gemini) Complete(ctx context.Context, req model.CompletionRequest) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(req.Temperature),
	}
	if req.System != "" {
		cfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: req.System}}}
	}

	result, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(req.Prompt), cfg)
	if err != nil {
		g.log.Warn(ctx, "gemini generation failed", logger.String("model", g.model), logger.Error(err))
		return "", fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	if len(result.Candidates) == 0 {
		return "", ErrEmptyCompletion
	}
	// Empty text is still a completion; the parser fills defaults.
	return result.Text(), nil
}
