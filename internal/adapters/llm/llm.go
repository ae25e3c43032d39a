// Package llm provides the chat completion backends that turn a prompt
// into report text.
package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/okian/perception/internal/config"
	"github.com/okian/perception/internal/domain/model"
)

// Provider names.
const (
	ProviderOpenAI = config.ProviderOpenAI
	ProviderGemini = config.ProviderGemini
)

// Client is implemented by every backend.
type Client interface {
	Complete(ctx context.Context, req model.CompletionRequest) (string, error)
	Provider() string
}

var (
	_ Client = (*OpenAI)(nil)
	_ Client = (*Gemini)(nil)
)

// New builds the backend selected by cfg.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (Client, error) {
	opts = append([]Option{WithTimeout(cfg.GeneratorTimeout())}, opts...)
	var (
		c   Client
		err error
	)
	switch cfg.GeneratorProvider {
	case ProviderOpenAI:
		c, err = NewOpenAI(cfg.GeneratorAPIKey, cfg.GeneratorModel, append(opts, WithBaseURL(cfg.GeneratorBaseURL))...)
	case ProviderGemini:
		name := cfg.GeneratorModel
		// The default model name is an OpenAI one.
		if strings.HasPrefix(name, "gpt-") {
			name = ""
		}
		c, err = NewGemini(ctx, cfg.GeneratorAPIKey, name, opts...)
	default:
		err = fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.GeneratorProvider)
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}
