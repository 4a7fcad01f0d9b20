// Package metadata matches library files against the TMDB movie database.
package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/olivier-w/libcat/internal/metadata/cache"
	"github.com/olivier-w/libcat/internal/retry"
)

const tmdbAPIBaseURL = "https://api.themoviedb.org/3"

// Client represents a TMDB API client
type Client struct {
	apiKey         string
	language       string
	baseURL        string
	httpClient     *http.Client
	rateDelay      time.Duration
	maxAttempts    int
	initialBackoff time.Duration
	cache          cache.Cache
	cacheTTL       time.Duration
}

// ClientConfig holds configuration for the TMDB client
type ClientConfig struct {
	APIKey           string
	Language         string
	BaseURL          string
	RateLimitDelayMs int
	MaxAttempts      int
	InitialBackoffMs int
	Cache            cache.Cache
	CacheTTLDays     int
}

// NewClient creates a new TMDB API client
func NewClient(cfg ClientConfig) *Client {
	if cfg.Language == "" {
		cfg.Language = "en-US"
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = tmdbAPIBaseURL
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.InitialBackoffMs <= 0 {
		cfg.InitialBackoffMs = 1000
	}
	if cfg.CacheTTLDays <= 0 {
		cfg.CacheTTLDays = 30
	}
	return &Client{
		apiKey:         cfg.APIKey,
		language:       cfg.Language,
		baseURL:        cfg.BaseURL,
		httpClient:     &http.Client{Timeout: 30 * time.Second},
		rateDelay:      time.Duration(cfg.RateLimitDelayMs) * time.Millisecond,
		maxAttempts:    cfg.MaxAttempts,
		initialBackoff: time.Duration(cfg.InitialBackoffMs) * time.Millisecond,
		cache:          cfg.Cache,
		cacheTTL:       time.Duration(cfg.CacheTTLDays) * 24 * time.Hour,
	}
}

// getJSON performs a cached GET against the TMDB API and decodes the
// response body into out. Retryable failures are retried with backoff.
func (c *Client) getJSON(ctx context.Context, cacheKey, requestURL string, out interface{}) error {
	if c.cache != nil {
		if data, found := c.cache.Get(cacheKey); found {
			if err := json.Unmarshal(data, out); err == nil {
				return nil
			}
		}
	}

	var body []byte
	err := retry.Do(func() error {
		req, reqErr := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
		if reqErr != nil {
			return reqErr
		}
		resp, reqErr := c.httpClient.Do(req)
		if reqErr != nil {
			return reqErr
		}
		defer resp.Body.Close()

		data, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return readErr
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("TMDB API error (status %d): %s", resp.StatusCode, string(data))
		}
		body = data
		return nil
	}, c.maxAttempts, c.initialBackoff)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode TMDB response: %w", err)
	}

	if c.cache != nil {
		c.cache.Set(cacheKey, body, c.cacheTTL)
	}

	// Rate limiting
	time.Sleep(c.rateDelay)
	return nil
}

// SearchMovie searches for a movie by title and optional year. Returns the
// first search result, or nil when TMDB has no results.
func (c *Client) SearchMovie(ctx context.Context, title string, year int) (*TMDBMovie, error) {
	params := url.Values{}
	params.Set("api_key", c.apiKey)
	params.Set("query", title)
	if year > 0 {
		params.Set("year", strconv.Itoa(year))
	}
	params.Set("language", c.language)
	params.Set("page", "1")

	searchURL := fmt.Sprintf("%s/search/movie?%s", c.baseURL, params.Encode())
	cacheKey := fmt.Sprintf("tmdb:search:%s:%d", title, year)

	var searchResp TMDBSearchResponse
	if err := c.getJSON(ctx, cacheKey, searchURL, &searchResp); err != nil {
		return nil, fmt.Errorf("failed to search movie: %w", err)
	}

	if len(searchResp.Results) == 0 {
		return nil, nil
	}
	return &searchResp.Results[0], nil
}

// GetMovieDetails fetches detailed information about a movie
func (c *Client) GetMovieDetails(ctx context.Context, tmdbID int) (*TMDBMovieDetails, error) {
	params := url.Values{}
	params.Set("api_key", c.apiKey)
	params.Set("language", c.language)

	detailsURL := fmt.Sprintf("%s/movie/%d?%s", c.baseURL, tmdbID, params.Encode())
	cacheKey := fmt.Sprintf("tmdb:movie:%d", tmdbID)

	var details TMDBMovieDetails
	if err := c.getJSON(ctx, cacheKey, detailsURL, &details); err != nil {
		return nil, fmt.Errorf("failed to get movie details: %w", err)
	}
	return &details, nil
}

// GetMovieCredits fetches cast and crew information
func (c *Client) GetMovieCredits(ctx context.Context, tmdbID int) (*TMDBCreditsResponse, error) {
	params := url.Values{}
	params.Set("api_key", c.apiKey)
	params.Set("language", c.language)

	creditsURL := fmt.Sprintf("%s/movie/%d/credits?%s", c.baseURL, tmdbID, params.Encode())
	cacheKey := fmt.Sprintf("tmdb:credits:%d", tmdbID)

	var credits TMDBCreditsResponse
	if err := c.getJSON(ctx, cacheKey, creditsURL, &credits); err != nil {
		return nil, fmt.Errorf("failed to get movie credits: %w", err)
	}
	return &credits, nil
}
