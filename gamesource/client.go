// Package gamesource provides the HTTP client for the external game feed
// that bet creation resolves external references against.
package gamesource

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"betbot/models"
)

// Client fetches game data from the external feed. It implements
// service.GameSource.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// New creates a game source client
func New(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type gameResponse struct {
	ID        string  `json:"id"`
	League    string  `json:"league"`
	HomeTeam  string  `json:"home_team"`
	AwayTeam  string  `json:"away_team"`
	StartTime *string `json:"start_time"`
}

// GetGameByExternalRef fetches a single game by its feed identifier. An
// unknown reference returns (nil, nil); the engine maps that to its own
// not-found error.
func (c *Client) GetGameByExternalRef(ctx context.Context, externalRef string) (*models.GameData, error) {
	// No feed configured means every reference is unknown
	if c.baseURL == "" {
		return nil, nil
	}

	endpoint := fmt.Sprintf("%s/games/%s", c.baseURL, url.PathEscape(externalRef))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build game request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("game feed request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("game feed returned status %d", resp.StatusCode)
	}

	var payload gameResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode game response: %w", err)
	}

	data := &models.GameData{
		ExternalRef: payload.ID,
		League:      payload.League,
		HomeTeam:    payload.HomeTeam,
		AwayTeam:    payload.AwayTeam,
	}
	if payload.StartTime != nil {
		start, err := time.Parse(time.RFC3339, *payload.StartTime)
		if err != nil {
			return nil, fmt.Errorf("failed to parse game start time %q: %w", *payload.StartTime, err)
		}
		data.StartTime = &start
	}

	return data, nil
}
