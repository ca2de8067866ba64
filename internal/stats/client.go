package stats

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/storm-standings/internal/standings"
	"golang.org/x/time/rate"
)

// Ensure APIClient implements the Client interface.
var _ Client = (*APIClient)(nil)

// NewClient creates a stats client. Requests are limited to perSecond, with a
// burst of one; a non-positive perSecond disables the limit.
func NewClient(apiKey, baseURL string, perSecond float64) *APIClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	limit := rate.Inf
	if perSecond > 0 {
		limit = rate.Limit(perSecond)
	}
	return &APIClient{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		limiter:    rate.NewLimiter(limit, 1),
		apiKey:     apiKey,
		BaseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// FetchStats returns the per-period stats the provider reports for username.
func (c *APIClient) FetchStats(ctx context.Context, username string) (PlayerStats, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return PlayerStats{}, fmt.Errorf("waiting for rate limiter: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1/profile/%s", c.BaseURL, url.PathEscape(username))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return PlayerStats{}, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("TRN-Api-Key", c.apiKey)
	req.Header.Set("Accept", "application/json")

	log.Debug("Fetching player stats", "username", username)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return PlayerStats{}, fmt.Errorf("error executing request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return PlayerStats{}, fmt.Errorf("%s: %w", username, ErrPlayerNotFound)
	case http.StatusTooManyRequests:
		return PlayerStats{}, ErrRateLimited
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return PlayerStats{}, fmt.Errorf("unexpected status code: %d, body: %s", resp.StatusCode, string(body))
	}

	var profile profileResponse
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return PlayerStats{}, fmt.Errorf("error decoding response body: %w", err)
	}

	out := PlayerStats{Username: profile.EpicUserHandle, Periods: map[standings.Period]standings.Stats{}}
	if out.Username == "" {
		out.Username = username
	}
	for name, s := range profile.Periods {
		p, err := standings.ParsePeriod(name)
		if err != nil {
			log.Debug("Ignoring unknown period in stats response", "period", name)
			continue
		}
		out.Periods[p] = s.Normalize()
	}
	return out, nil
}
