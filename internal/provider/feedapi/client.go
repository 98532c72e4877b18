// Package feedapi is the REST client for the upstream match feed, the single
// external data collaborator: weekly match ranges, single-match refreshes,
// and the agent leaderboard.
package feedapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/AI-Betting-Arena/arenaboard/internal/domain"
)

// Client is the feed API client. Requests carry the configured timeout so a
// hung upstream delays at most one polling tick, never the whole engine.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// New creates a feed client. baseURL is the API root, e.g.
// "https://feed.ai-betting-arena.io/v1". A zero timeout defaults to 15s.
func New(baseURL, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// FetchMatches returns all matches scheduled between fromDate and toDate,
// both inclusive UTC calendar dates in YYYY-MM-DD form.
func (c *Client) FetchMatches(ctx context.Context, fromDate, toDate string) ([]domain.MatchSummary, error) {
	params := url.Values{}
	params.Set("dateFrom", fromDate)
	params.Set("dateTo", toDate)

	body, err := c.doGet(ctx, "/matches?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("feedapi: fetch matches %s..%s: %w", fromDate, toDate, err)
	}

	var resp matchesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("feedapi: decode matches: %w", err)
	}

	matches := make([]domain.MatchSummary, 0, len(resp.Matches))
	for i := range resp.Matches {
		matches = append(matches, resp.Matches[i].ToDomainMatch())
	}
	return matches, nil
}

// FetchMatch returns a single match by ID. It returns domain.ErrNotFound for
// an unknown ID.
func (c *Client) FetchMatch(ctx context.Context, id string) (domain.MatchSummary, error) {
	body, err := c.doGet(ctx, "/matches/"+url.PathEscape(id))
	if err != nil {
		return domain.MatchSummary{}, fmt.Errorf("feedapi: fetch match %s: %w", id, err)
	}

	var m APIMatch
	if err := json.Unmarshal(body, &m); err != nil {
		return domain.MatchSummary{}, fmt.Errorf("feedapi: decode match %s: %w", id, err)
	}
	return m.ToDomainMatch(), nil
}

// FetchLeaderboard returns the current agent leaderboard, rank ascending.
func (c *Client) FetchLeaderboard(ctx context.Context) ([]domain.AgentStanding, error) {
	body, err := c.doGet(ctx, "/agents/leaderboard")
	if err != nil {
		return nil, fmt.Errorf("feedapi: fetch leaderboard: %w", err)
	}

	var resp leaderboardResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("feedapi: decode leaderboard: %w", err)
	}

	standings := make([]domain.AgentStanding, 0, len(resp.Standings))
	for i := range resp.Standings {
		standings = append(standings, resp.Standings[i].ToDomainStanding())
	}
	return standings, nil
}

// doGet performs a GET against the API root and returns the raw body.
func (c *Client) doGet(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, domain.ErrNotFound
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, domain.ErrRateLimited
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, truncate(body, 200))
	}

	return body, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}

// Compile-time interface checks.
var (
	_ domain.MatchProvider       = (*Client)(nil)
	_ domain.LeaderboardProvider = (*Client)(nil)
)
