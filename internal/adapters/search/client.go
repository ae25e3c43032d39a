// Package search gathers evidence about a subject from SearchAPI.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/okian/perception/internal/domain/model"
	"github.com/okian/perception/pkg/logger"
	"github.com/okian/perception/pkg/metrics"
)

const (
	defaultEngine       = "google"
	defaultNumResults   = 5
	defaultGeneralQuery = "%s nfl player stats career info"
	defaultNewsQuery    = "%s nfl news recent"

	noTitle   = "No title"
	noSnippet = "No snippet"
)

// Client queries the provider for general and news results.
type Client struct {
	baseURL      string
	apiKey       string
	engine       string
	numResults   int
	generalQuery string
	newsQuery    string
	http         *http.Client
	log          logger.Logger
}

// New creates a Client for the provider at baseURL.
func New(baseURL, apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL:      baseURL,
		apiKey:       apiKey,
		engine:       defaultEngine,
		numResults:   defaultNumResults,
		generalQuery: defaultGeneralQuery,
		newsQuery:    defaultNewsQuery,
		http:         &http.Client{},
		log:          logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type organicResult struct {
	Title   *string `json:"title"`
	Link    string  `json:"link"`
	Snippet *string `json:"snippet"`
}

type searchResponse struct {
	OrganicResults []organicResult `json:"organic_results"`
}

// Gather runs the general query and then the news query and returns the
// general items followed by the news items in provider order. A non-200
// answer contributes no items for that category; transport and decode
// failures abort the whole gather.
func (c *Client) Gather(ctx context.Context, subject string) ([]model.EvidenceItem, error) {
	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	general, err := c.search(ctx, model.CategoryGeneral, fmt.Sprintf(c.generalQuery, subject))
	if err != nil {
		return nil, err
	}
	news, err := c.search(ctx, model.CategoryNews, fmt.Sprintf(c.newsQuery, subject))
	if err != nil {
		return nil, err
	}

	items := append(general, news...)
	metrics.RecordEvidenceItems(len(items))
	c.log.Info(ctx, "evidence gathered",
		logger.String("subject", subject),
		logger.Int("general", len(general)),
		logger.Int("news", len(news)),
	)
	return items, nil
}

func (c *Client) search(ctx context.Context, cat model.Category, query string) ([]model.EvidenceItem, error) {
	q := url.Values{}
	q.Set("engine", c.engine)
	q.Set("q", query)
	q.Set("num", strconv.Itoa(c.numResults))
	if cat == model.CategoryNews {
		q.Set("tbm", "nws")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	metrics.RecordSearchLatency(string(cat), float64(time.Since(start).Milliseconds()))
	if err != nil {
		metrics.RecordSearchRequest(string(cat), "error")
		return nil, fmt.Errorf("%w: %s: %w", ErrTransport, cat, err)
	}
	defer func() { _ = resp.Body.Close() }()
	metrics.RecordSearchRequest(string(cat), strconv.Itoa(resp.StatusCode))

	if resp.StatusCode != http.StatusOK {
		c.log.Warn(ctx, "search returned non-200; no results for category",
			logger.String("category", string(cat)),
			logger.Int("status", resp.StatusCode),
		)
		return nil, nil
	}

	var body searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrDecode, cat, err)
	}

	items := make([]model.EvidenceItem, 0, len(body.OrganicResults))
	for _, r := range body.OrganicResults {
		items = append(items, model.EvidenceItem{
			Title:    textOr(r.Title, noTitle),
			Link:     cleanLink(r.Link),
			Snippet:  textOr(r.Snippet, noSnippet),
			Category: cat,
		})
	}
	return items, nil
}

// textOr cleans s, falling back to def when the field was absent.
func textOr(s *string, def string) string {
	if s == nil {
		return def
	}
	return cleanText(*s)
}
