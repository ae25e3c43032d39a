package search

import "errors"

// Sentinel kinds for search errors.
var (
	ErrMissingAPIKey = errors.New("search api key not configured")
	ErrTransport     = errors.New("search request failed")
	ErrDecode        = errors.New("search response malformed")
)
