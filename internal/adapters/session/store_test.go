package session_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/okian/perception/internal/adapters/session"
	. "github.com/smartystreets/goconvey/convey"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func TestStore(t *testing.T) {
	Convey("Given a session store with a one hour TTL", t, func() {
		ctx := context.Background()
		clock := &fakeClock{t: time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)}
		s := session.NewStore(session.WithTTL(time.Hour), session.WithClock(clock.Now))

		Convey("When a session is created", func() {
			sess := s.Create(ctx, "admin")

			Convey("Then it can be looked up by token", func() {
				got, err := s.Lookup(ctx, sess.Token)
				So(err, ShouldBeNil)
				So(got.Username, ShouldEqual, "admin")
				So(got.ExpiresAt, ShouldEqual, clock.Now().Add(time.Hour))
				So(s.Len(), ShouldEqual, 1)
			})

			Convey("And tokens are unique", func() {
				other := s.Create(ctx, "admin")
				So(other.Token, ShouldNotEqual, sess.Token)
			})

			Convey("And it expires after the TTL", func() {
				clock.Advance(time.Hour)
				_, err := s.Lookup(ctx, sess.Token)
				So(err, ShouldEqual, session.ErrExpired)
				So(s.Len(), ShouldEqual, 0)
			})

			Convey("And it can be deleted", func() {
				s.Delete(ctx, sess.Token)
				_, err := s.Lookup(ctx, sess.Token)
				So(err, ShouldEqual, session.ErrNotFound)
			})
		})

		Convey("When an unknown token is looked up", func() {
			_, err := s.Lookup(ctx, "nope")
			So(err, ShouldEqual, session.ErrNotFound)
		})

		Convey("When expired sessions are swept", func() {
			s.Create(ctx, "a")
			clock.Advance(30 * time.Minute)
			fresh := s.Create(ctx, "b")
			clock.Advance(45 * time.Minute)

			Convey("Then only live sessions remain", func() {
				So(s.Sweep(ctx), ShouldEqual, 1)
				So(s.Len(), ShouldEqual, 1)
				_, err := s.Lookup(ctx, fresh.Token)
				So(err, ShouldBeNil)
			})
		})
	})

	Convey("Given a store bounded to two sessions", t, func() {
		ctx := context.Background()
		s := session.NewStore(session.WithMaxSessions(2))

		Convey("When a third session is created", func() {
			first := s.Create(ctx, "a")
			s.Create(ctx, "b")
			s.Create(ctx, "c")

			Convey("Then the least recently used one is evicted", func() {
				So(s.Len(), ShouldEqual, 2)
				_, err := s.Lookup(ctx, first.Token)
				So(err, ShouldEqual, session.ErrNotFound)
			})
		})

		Convey("When sessions are created concurrently", func() {
			var wg sync.WaitGroup
			for i := 0; i < 50; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					sess := s.Create(ctx, "x")
					_, _ = s.Lookup(ctx, sess.Token)
				}()
			}
			wg.Wait()

			Convey("Then the bound holds", func() {
				So(s.Len(), ShouldBeLessThanOrEqualTo, 2)
			})
		})
	})
}
