package api

import (
	"time"

	"github.com/okian/perception/internal/domain/report"
	"github.com/okian/perception/pkg/logger"
)

const (
	defaultLoginRatePerMinute = 10
	defaultLoginBurst         = 5
)

type settings struct {
	username     string
	password     string
	ratePerMin   int
	burst        int
	secureCookie bool
	defaultStyle report.StyleName
	now          func() time.Time
	log          logger.Logger
}

func defaultSettings() settings {
	return settings{
		ratePerMin: defaultLoginRatePerMinute,
		burst:      defaultLoginBurst,
		now:        time.Now,
		log:        logger.Nop(),
	}
}

// Option configures the API server.
type Option func(*settings)

// WithCredentials sets the static dashboard login.
func WithCredentials(username, password string) Option {
	return func(s *settings) {
		s.username = username
		s.password = password
	}
}

// WithLoginRate limits login attempts per client IP. A non-positive rate
// disables the limit.
func WithLoginRate(perMinute, burst int) Option {
	return func(s *settings) {
		s.ratePerMin = perMinute
		s.burst = burst
	}
}

// WithSecureCookie marks the session cookie Secure, for TLS deployments.
func WithSecureCookie(secure bool) Option {
	return func(s *settings) { s.secureCookie = secure }
}

// WithDefaultStyle marks the style used when a request names none.
func WithDefaultStyle(name report.StyleName) Option {
	return func(s *settings) { s.defaultStyle = name }
}

// WithLogger sets the logger used by handlers.
func WithLogger(l logger.Logger) Option {
	return func(s *settings) { s.log = nopIfNil(l) }
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *settings) {
		if now != nil {
			s.now = now
		}
	}
}
