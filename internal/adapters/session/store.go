// Package session keeps dashboard login sessions in memory.
package session

import (
	"context"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/okian/perception/pkg/metrics"
)

const (
	defaultTTL         = 12 * time.Hour
	defaultMaxSessions = 1024
)

// Session is one authenticated login.
type Session struct {
	Token     string
	Username  string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Store is a bounded, TTL-aware session table. Safe for concurrent use.
type Store struct {
	ttl         time.Duration
	maxSessions int
	now         func() time.Time
	cache       *lru.Cache[string, Session]
}

// NewStore creates a session store with configuration options.
func NewStore(opts ...Option) *Store {
	s := &Store{
		ttl:         defaultTTL,
		maxSessions: defaultMaxSessions,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	// lru.New only fails for a non-positive size, which options rule out.
	s.cache, _ = lru.New[string, Session](s.maxSessions)
	return s
}

// Create starts a session for username.
func (s *Store) Create(_ context.Context, username string) Session {
	now := s.now()
	sess := Session{
		Token:     uuid.NewString(),
		Username:  username,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	s.cache.Add(sess.Token, sess)
	metrics.UpdateActiveSessions(s.cache.Len())
	return sess
}

// Lookup returns the live session for token. Expired sessions are removed.
func (s *Store) Lookup(_ context.Context, token string) (Session, error) {
	sess, ok := s.cache.Get(token)
	if !ok {
		return Session{}, ErrNotFound
	}
	if !s.now().Before(sess.ExpiresAt) {
		s.cache.Remove(token)
		metrics.UpdateActiveSessions(s.cache.Len())
		return Session{}, ErrExpired
	}
	return sess, nil
}

// Delete ends the session for token, if any.
func (s *Store) Delete(_ context.Context, token string) {
	if s.cache.Remove(token) {
		metrics.UpdateActiveSessions(s.cache.Len())
	}
}

// Sweep drops every expired session and returns how many were removed.
func (s *Store) Sweep(_ context.Context) int {
	now := s.now()
	removed := 0
	for _, token := range s.cache.Keys() {
		sess, ok := s.cache.Peek(token)
		if ok && !now.Before(sess.ExpiresAt) {
			s.cache.Remove(token)
			removed++
		}
	}
	if removed > 0 {
		metrics.UpdateActiveSessions(s.cache.Len())
	}
	return removed
}

// Len returns the number of stored sessions, expired ones included until
// they are looked up or swept.
func (s *Store) Len() int {
	return s.cache.Len()
}
