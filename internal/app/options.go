package service

import (
	"time"

	"github.com/okian/perception/internal/domain/report"
	"github.com/okian/perception/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithDefaultStyle sets the style used when a request names none.
func WithDefaultStyle(name report.StyleName) Option {
	return func(s *Service) {
		if name != "" {
			s.defaultStyle = name
		}
	}
}

// WithTemperature overrides the sampling temperature.
func WithTemperature(t float32) Option {
	return func(s *Service) {
		if t >= 0 {
			s.temperature = t
		}
	}
}

// WithTokenCounter sets how prompt sizes are measured for metrics.
func WithTokenCounter(count func(string) int) Option {
	return func(s *Service) {
		if count != nil {
			s.countTokens = count
		}
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}
