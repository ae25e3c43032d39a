package api

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/okian/perception/internal/adapters/search"
	service "github.com/okian/perception/internal/app"
	. "github.com/smartystreets/goconvey/convey"
)

func TestRenderMarkdown(t *testing.T) {
	Convey("Given section text from the model", t, func() {
		So(renderMarkdown(""), ShouldEqual, "")
		So(renderMarkdown("**Bold** claim"), ShouldContainSubstring, "<strong>Bold</strong>")
		So(renderMarkdown("- one\n- two"), ShouldContainSubstring, "<li>one</li>")
		So(renderMarkdown("<script>alert(1)</script>"), ShouldNotContainSubstring, "<script>")
	})
}

func TestClientIP(t *testing.T) {
	Convey("Given requests from different paths", t, func() {
		r := httptest.NewRequest("GET", "/", nil)
		r.RemoteAddr = "192.0.2.1:1234"
		So(clientIP(r), ShouldEqual, "192.0.2.1")

		r.Header.Set("X-Real-IP", "198.51.100.7")
		So(clientIP(r), ShouldEqual, "198.51.100.7")

		r.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
		So(clientIP(r), ShouldEqual, "203.0.113.9")
	})
}

func TestIPLimiter(t *testing.T) {
	Convey("Given a limiter of one per minute with burst one", t, func() {
		now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
		l := newIPLimiter(1, 1, func() time.Time { return now })

		Convey("Then keys are limited independently and refill over time", func() {
			So(l.allow("a"), ShouldBeTrue)
			So(l.allow("a"), ShouldBeFalse)
			So(l.allow("b"), ShouldBeTrue)

			now = now.Add(time.Minute)
			So(l.allow("a"), ShouldBeTrue)
		})

		Convey("Then idle keys are forgotten", func() {
			l.allow("a")
			now = now.Add(limiterEntryTTL + limiterCleanupInterval)
			l.allow("b")
			So(l.entries, ShouldHaveLength, 1)
		})
	})

	Convey("Given a disabled limiter", t, func() {
		l := newIPLimiter(0, 0, time.Now)
		So(l, ShouldBeNil)
		So(l.allow("a"), ShouldBeTrue)
	})
}

func TestStatusFor(t *testing.T) {
	Convey("Given unclassified errors", t, func() {
		status, code := statusFor(ErrRateLimited)
		So(status, ShouldEqual, 429)
		So(code, ShouldEqual, "rate_limited")
	})

	Convey("Given a retrieval failure caused by a missing search key", t, func() {
		err := fmt.Errorf("%w: %w", service.ErrRetrieval, search.ErrMissingAPIKey)
		status, code := statusFor(err)
		So(status, ShouldEqual, http.StatusInternalServerError)
		So(code, ShouldEqual, "misconfigured")

		status, code = statusFor(fmt.Errorf("%w for %q", service.ErrRetrieval, "X"))
		So(status, ShouldEqual, http.StatusNotFound)
		So(code, ShouldEqual, "no_results")
	})
}
