package search

import (
	"net/http"

	"github.com/okian/perception/pkg/logger"
)

// Option applies a configuration option to the Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client used for provider calls.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithEngine sets the provider engine parameter.
func WithEngine(engine string) Option {
	return func(c *Client) {
		if engine != "" {
			c.engine = engine
		}
	}
}

// WithNumResults sets how many results each query asks for.
func WithNumResults(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.numResults = n
		}
	}
}

// WithQueries sets the general and news query templates; each takes the
// subject via a single %s.
func WithQueries(general, news string) Option {
	return func(c *Client) {
		if general != "" {
			c.generalQuery = general
		}
		if news != "" {
			c.newsQuery = news
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}
