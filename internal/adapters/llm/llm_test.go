package llm_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/okian/perception/internal/adapters/llm"
	"github.com/okian/perception/internal/config"
	"github.com/okian/perception/internal/domain/model"
	"github.com/pkoukk/tiktoken-go"
	. "github.com/smartystreets/goconvey/convey"
)

var req = model.CompletionRequest{System: "You are an analyst.", Prompt: "Analyze.", Temperature: 0.5}

func TestOpenAI(t *testing.T) {
	Convey("Given an OpenAI-compatible endpoint", t, func() {
		ctx := context.Background()

		Convey("When it returns a choice", func() {
			var (
				path, auth string
				sent       map[string]any
			)
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				path, auth = r.URL.Path, r.Header.Get("Authorization")
				b, _ := io.ReadAll(r.Body)
				_ = json.Unmarshal(b, &sent)
				_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"1. CHARACTER_SCORE\n85"}}]}`))
			}))
			defer srv.Close()

			c, err := llm.NewOpenAI("sk-test", "gpt-3.5-turbo", llm.WithBaseURL(srv.URL+"/v1/"))
			So(err, ShouldBeNil)
			out, err := c.Complete(ctx, req)

			Convey("Then its content is returned", func() {
				So(err, ShouldBeNil)
				So(out, ShouldEqual, "1. CHARACTER_SCORE\n85")
				So(c.Provider(), ShouldEqual, llm.ProviderOpenAI)
			})

			Convey("And the request carries model, roles and temperature", func() {
				So(path, ShouldEqual, "/v1/chat/completions")
				So(auth, ShouldEqual, "Bearer sk-test")
				So(sent["model"], ShouldEqual, "gpt-3.5-turbo")
				So(sent["temperature"], ShouldEqual, 0.5)
				msgs := sent["messages"].([]any)
				So(msgs, ShouldHaveLength, 2)
				So(msgs[0].(map[string]any)["role"], ShouldEqual, "system")
				So(msgs[1].(map[string]any)["content"], ShouldEqual, "Analyze.")
			})
		})

		Convey("When it rejects the request", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = w.Write([]byte(`{"error":{"message":"rate limited"}}`))
			}))
			defer srv.Close()

			c, _ := llm.NewOpenAI("sk-test", "m", llm.WithBaseURL(srv.URL))
			_, err := c.Complete(ctx, req)

			Convey("Then the error carries status and body", func() {
				So(errors.Is(err, llm.ErrUpstream), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "status 429")
				So(err.Error(), ShouldContainSubstring, "rate limited")
			})
		})

		Convey("When it returns no choices", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`{"choices":[]}`))
			}))
			defer srv.Close()

			c, _ := llm.NewOpenAI("sk-test", "m", llm.WithBaseURL(srv.URL))
			_, err := c.Complete(ctx, req)
			So(err, ShouldEqual, llm.ErrEmptyCompletion)
		})

		Convey("When it is slower than the configured timeout", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				select {
				case <-r.Context().Done():
				case <-time.After(time.Second):
				}
			}))
			defer srv.Close()

			c, _ := llm.NewOpenAI("sk-test", "m", llm.WithBaseURL(srv.URL), llm.WithTimeout(20*time.Millisecond))
			_, err := c.Complete(ctx, req)

			Convey("Then the call fails", func() {
				So(errors.Is(err, llm.ErrUpstream), ShouldBeTrue)
				So(errors.Is(err, context.DeadlineExceeded), ShouldBeTrue)
			})
		})

		Convey("When no API key is given", func() {
			_, err := llm.NewOpenAI("", "m")
			So(errors.Is(err, llm.ErrMissingAPIKey), ShouldBeTrue)
		})
	})
}

func TestGemini(t *testing.T) {
	Convey("Given a Gemini endpoint", t, func() {
		ctx := context.Background()

		Convey("When it returns a candidate", func() {
			var (
				path string
				sent map[string]any
			)
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				path = r.URL.Path
				b, _ := io.ReadAll(r.Body)
				_ = json.Unmarshal(b, &sent)
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"1. EXECUTIVE_SUMMARY\nLiked."}]}}]}`))
			}))
			defer srv.Close()

			g, err := llm.NewGemini(ctx, "g-key", "gemini-2.5-flash", llm.WithBaseURL(srv.URL))
			So(err, ShouldBeNil)
			out, err := g.Complete(ctx, req)

			Convey("Then its text is returned", func() {
				So(err, ShouldBeNil)
				So(out, ShouldEqual, "1. EXECUTIVE_SUMMARY\nLiked.")
				So(g.Provider(), ShouldEqual, llm.ProviderGemini)
			})

			Convey("And the system instruction and model are sent", func() {
				So(path, ShouldContainSubstring, "gemini-2.5-flash:generateContent")
				So(sent["systemInstruction"], ShouldNotBeNil)
			})
		})

		Convey("When its candidate has empty text", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":""}]}}]}`))
			}))
			defer srv.Close()

			g, err := llm.NewGemini(ctx, "g-key", "", llm.WithBaseURL(srv.URL))
			So(err, ShouldBeNil)
			out, err := g.Complete(ctx, req)

			Convey("Then an empty completion is returned without an error", func() {
				So(err, ShouldBeNil)
				So(out, ShouldEqual, "")
			})
		})

		Convey("When it returns no candidates", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`{"candidates":[]}`))
			}))
			defer srv.Close()

			g, _ := llm.NewGemini(ctx, "g-key", "", llm.WithBaseURL(srv.URL))
			_, err := g.Complete(ctx, req)
			So(err, ShouldEqual, llm.ErrEmptyCompletion)
		})

		Convey("When it fails", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte(`{"error":{"code":500,"message":"boom","status":"INTERNAL"}}`))
			}))
			defer srv.Close()

			g, err := llm.NewGemini(ctx, "g-key", "", llm.WithBaseURL(srv.URL))
			So(err, ShouldBeNil)
			_, err = g.Complete(ctx, req)

			Convey("Then the error wraps ErrUpstream", func() {
				So(errors.Is(err, llm.ErrUpstream), ShouldBeTrue)
			})
		})

		Convey("When no API key is given", func() {
			_, err := llm.NewGemini(ctx, "", "m")
			So(errors.Is(err, llm.ErrMissingAPIKey), ShouldBeTrue)
		})
	})
}

func TestNew(t *testing.T) {
	Convey("Given a config", t, func() {
		ctx := context.Background()
		cfg := config.New()
		cfg.GeneratorAPIKey = "k"

		Convey("When the provider is openai", func() {
			c, err := llm.New(ctx, cfg)
			So(err, ShouldBeNil)
			So(c.Provider(), ShouldEqual, llm.ProviderOpenAI)
		})

		Convey("When the provider is gemini", func() {
			cfg.GeneratorProvider = config.ProviderGemini
			c, err := llm.New(ctx, cfg)
			So(err, ShouldBeNil)
			So(c.Provider(), ShouldEqual, llm.ProviderGemini)
		})

		Convey("When gemini is paired with the default OpenAI model", func() {
			var path string
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				path = r.URL.Path
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"ok"}]}}]}`))
			}))
			defer srv.Close()

			cfg.GeneratorProvider = config.ProviderGemini
			c, err := llm.New(ctx, cfg, llm.WithBaseURL(srv.URL))
			So(err, ShouldBeNil)
			_, err = c.Complete(ctx, req)
			So(err, ShouldBeNil)
			So(path, ShouldContainSubstring, "gemini-2.5-flash:generateContent")
		})

		Convey("When the provider is unknown", func() {
			cfg.GeneratorProvider = "llama"
			c, err := llm.New(ctx, cfg)
			So(c, ShouldBeNil)
			So(errors.Is(err, llm.ErrUnknownProvider), ShouldBeTrue)
		})
	})
}

func TestTokens(t *testing.T) {
	Convey("Given text to measure", t, func() {
		Convey("Then the estimate is words or runes over four", func() {
			So(llm.EstimateTokens(""), ShouldEqual, 0)
			So(llm.EstimateTokens("   "), ShouldEqual, 0)
			So(llm.EstimateTokens("hi"), ShouldEqual, 1)
			So(llm.EstimateTokens("a b c d e"), ShouldEqual, 5)
			So(llm.EstimateTokens(strings.Repeat("x", 400)), ShouldEqual, 100)
		})

		Convey("Then the counter is positive for non-empty text", func() {
			So(llm.CountTokens("Patrick Mahomes is a quarterback."), ShouldBeGreaterThan, 0)
		})
	})

	Convey("Given a tokenizer whose encoding is still loading", t, func() {
		release := make(chan struct{})
		tok := llm.NewTokenizer(func() (*tiktoken.Tiktoken, error) {
			<-release
			return nil, errors.New("offline")
		})

		Convey("When tokens are counted", func() {
			done := make(chan int, 1)
			go func() { done <- tok.Count("a b c d e") }()

			Convey("Then the estimate is returned without waiting for the load", func() {
				n := -1
				select {
				case n = <-done:
				case <-time.After(time.Second):
				}
				So(n, ShouldEqual, 5)
				close(release)
				<-tok.Ready()
				So(tok.Count("a b c d e"), ShouldEqual, 5)
			})
		})
	})
}
