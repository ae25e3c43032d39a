package service

import "errors"

// Sentinel kinds returned by Analyze.
var (
	// ErrRetrieval means no evidence could be gathered; the generator is not called.
	ErrRetrieval = errors.New("no search results")
	// ErrGeneration means the generator call failed.
	ErrGeneration = errors.New("report generation failed")
	// ErrInvalidSubject means the subject is empty or malformed.
	ErrInvalidSubject = errors.New("invalid subject")
	// ErrUnknownStyle means the requested style does not exist.
	ErrUnknownStyle = errors.New("unknown style")
)
