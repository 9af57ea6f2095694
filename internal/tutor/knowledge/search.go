package knowledge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	errx "github.com/atelier-mentor/server/internal/core/error"
	"github.com/atelier-mentor/server/internal/tutor/model"
	logx "github.com/atelier-mentor/server/pkg/logger"
)

// Source is the external web-search capability. Results are filtered
// client-side to the architectural domain whitelist.
type Source interface {
	Search(ctx context.Context, query string, maxResults int) ([]model.Source, error)
}

// Client queries a Tavily-style search API with retry, timeout, whitelist
// filtering and a per-process LRU cache.
type Client struct {
	apiKey     string
	baseURL    string
	whitelist  []string
	maxResults int
	httpc      *http.Client
	cache      *resultCache
}

func NewClient(cfg model.SearchConfig) *Client {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	var whitelist []string
	for _, d := range strings.Split(cfg.IncludeDomains, ",") {
		if d = strings.TrimSpace(d); d != "" {
			whitelist = append(whitelist, strings.ToLower(d))
		}
	}
	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    cfg.BaseURL,
		whitelist:  whitelist,
		maxResults: cfg.MaxResults,
		httpc:      &http.Client{Timeout: timeout},
		cache:      newResultCache(),
	}
}

type searchRequest struct {
	APIKey         string   `json:"api_key"`
	Query          string   `json:"query"`
	MaxResults     int      `json:"max_results"`
	IncludeDomains []string `json:"include_domains,omitempty"`
}

type searchResponse struct {
	Results []struct {
		Title   string  `json:"title"`
		URL     string  `json:"url"`
		Content string  `json:"content"`
		Score   float64 `json:"score"`
	} `json:"results"`
}

func (c *Client) Search(ctx context.Context, query string, maxResults int) ([]model.Source, error) {
	if c.apiKey == "" {
		return nil, errx.WrapSearch(fmt.Errorf("search api key not configured"))
	}
	if maxResults <= 0 {
		maxResults = c.maxResults
	}

	key := cacheKey(query)
	if cached, ok := c.cache.get(key); ok {
		logx.Debug().Str("query", query).Msg("search cache hit")
		return cached, nil
	}

	var results []model.Source
	op := func() error {
		var err error
		results, err = c.doSearch(ctx, query, maxResults)
		return err
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 2), ctx)
	if err := backoff.Retry(op, policy); err != nil {
		logx.Error().Err(err).Str("query", query).Msg("knowledge search failed")
		return nil, errx.WrapSearch(err)
	}

	c.cache.put(key, results)
	return results, nil
}

func (c *Client) doSearch(ctx context.Context, query string, maxResults int) ([]model.Source, error) {
	body, err := json.Marshal(searchRequest{
		APIKey:         c.apiKey,
		Query:          query,
		MaxResults:     maxResults,
		IncludeDomains: c.whitelist,
	})
	if err != nil {
		return nil, backoff.Permanent(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, backoff.Permanent(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, backoff.Permanent(fmt.Errorf("search auth failure: %s", resp.Status))
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("search upstream error: %s", resp.Status)
	case resp.StatusCode != http.StatusOK:
		return nil, backoff.Permanent(fmt.Errorf("search request failed: %s", resp.Status))
	}

	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, backoff.Permanent(fmt.Errorf("decode search response: %w", err))
	}

	var out []model.Source
	for _, r := range parsed.Results {
		if !c.allowed(r.URL) {
			continue
		}
		out = append(out, model.Source{
			Title:   r.Title,
			URL:     r.URL,
			Snippet: r.Content,
			Score:   r.Score,
		})
	}
	return out, nil
}

// allowed enforces the whitelist even when the API ignores include_domains.
func (c *Client) allowed(url string) bool {
	if len(c.whitelist) == 0 {
		return true
	}
	lower := strings.ToLower(url)
	for _, d := range c.whitelist {
		if strings.Contains(lower, d) {
			return true
		}
	}
	return false
}

// cacheKey normalizes a query for cache lookups.
func cacheKey(query string) string {
	return strings.Join(strings.Fields(strings.ToLower(query)), " ")
}

var _ Source = (*Client)(nil)
