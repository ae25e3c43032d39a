package llm

import "errors"

// Sentinel kinds for generator errors.
var (
	ErrMissingAPIKey   = errors.New("generator api key not configured")
	ErrUnknownProvider = errors.New("unknown generator provider")
	ErrUpstream        = errors.New("generator request failed")
	ErrEmptyCompletion = errors.New("generator returned no completion")
)
