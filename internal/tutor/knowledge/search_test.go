package knowledge

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atelier-mentor/server/internal/tutor/model"
)

func searchServer(t *testing.T, hits *atomic.Int32, status int, results []map[string]any) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		var req searchRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.NotEmpty(t, req.APIKey)
		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"results": results})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func clientFor(url string) *Client {
	return NewClient(model.SearchConfig{
		APIKey:         "test-key",
		BaseURL:        url,
		MaxResults:     5,
		TimeoutSeconds: 5,
		IncludeDomains: "archdaily.com, dezeen.com",
	})
}

func TestSearchFiltersToWhitelistedDomains(t *testing.T) {
	var hits atomic.Int32
	srv := searchServer(t, &hits, http.StatusOK, []map[string]any{
		{"title": "Sesc Pompeia", "url": "https://www.archdaily.com/sesc", "content": "Courtyard conversion.", "score": 0.9},
		{"title": "Random blog", "url": "https://example.com/post", "content": "Unrelated.", "score": 0.8},
		{"title": "Maggies Oldham", "url": "https://www.dezeen.com/maggies", "content": "Timber pavilion.", "score": 0.7},
	})

	results, err := clientFor(srv.URL).Search(context.Background(), "community center precedents", 5)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "Sesc Pompeia", results[0].Title)
	assert.Equal(t, "Maggies Oldham", results[1].Title)
	assert.Equal(t, "Courtyard conversion.", results[0].Snippet)
}

func TestSearchCachesNormalizedQueries(t *testing.T) {
	var hits atomic.Int32
	srv := searchServer(t, &hits, http.StatusOK, []map[string]any{
		{"title": "Sesc Pompeia", "url": "https://www.archdaily.com/sesc", "content": "Courtyard.", "score": 0.9},
	})
	c := clientFor(srv.URL)
	ctx := context.Background()

	first, err := c.Search(ctx, "Community  Center precedents", 5)
	require.NoError(t, err)

	// different casing and spacing, same normalized key: served from cache
	second, err := c.Search(ctx, "community center PRECEDENTS", 5)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), hits.Load())
}

func TestSearchAuthFailureIsNotRetried(t *testing.T) {
	var hits atomic.Int32
	srv := searchServer(t, &hits, http.StatusUnauthorized, nil)

	_, err := clientFor(srv.URL).Search(context.Background(), "anything", 5)
	require.Error(t, err)
	assert.Equal(t, int32(1), hits.Load())
}

func TestSearchRetriesUpstreamErrors(t *testing.T) {
	var hits atomic.Int32
	srv := searchServer(t, &hits, http.StatusInternalServerError, nil)

	_, err := clientFor(srv.URL).Search(context.Background(), "anything", 5)
	require.Error(t, err)
	// initial attempt plus two retries
	assert.Equal(t, int32(3), hits.Load())
}

func TestSearchWithoutKeyFailsFast(t *testing.T) {
	c := NewClient(model.SearchConfig{BaseURL: "http://127.0.0.1:0"})
	_, err := c.Search(context.Background(), "anything", 5)
	assert.Error(t, err)
}

func TestSearchEmptyWhitelistAllowsEverything(t *testing.T) {
	var hits atomic.Int32
	srv := searchServer(t, &hits, http.StatusOK, []map[string]any{
		{"title": "Anywhere", "url": "https://example.com/a", "content": "x", "score": 0.5},
	})
	c := NewClient(model.SearchConfig{
		APIKey: "test-key", BaseURL: srv.URL, MaxResults: 5, TimeoutSeconds: 5,
	})

	results, err := c.Search(context.Background(), "q", 5)
	require.NoError(t, err)
	assert.Len(t, results, 1)
}
