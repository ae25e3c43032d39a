package llm

import (
	"net/http"
	"time"

	"github.com/okian/perception/pkg/logger"
)

// settings collects options shared by all providers.
type settings struct {
	http    *http.Client
	timeout time.Duration
	log     logger.Logger
	baseURL string
}

// Option configures a generator client.
type Option func(*settings)

// WithHTTPClient sets the HTTP client used for provider calls.
func WithHTTPClient(hc *http.Client) Option {
	return func(s *settings) {
		if hc != nil {
			s.http = hc
		}
	}
}

// WithTimeout bounds each completion call. Zero leaves calls bounded by
// the caller's context only.
func WithTimeout(d time.Duration) Option {
	return func(s *settings) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.log = l
		}
	}
}

// WithBaseURL overrides the provider endpoint.
func WithBaseURL(u string) Option {
	return func(s *settings) {
		if u != "" {
			s.baseURL = u
		}
	}
}

func newSettings(opts []Option) settings {
	s := settings{http: &http.Client{}, log: logger.Nop()}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}
