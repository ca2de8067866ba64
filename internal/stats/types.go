package stats

import (
	"errors"
	"net/http"

	"github.com/mauv0809/storm-standings/internal/standings"
	"golang.org/x/time/rate"
)

var (
	// ErrPlayerNotFound is returned when the provider does not know the username.
	ErrPlayerNotFound = errors.New("player not found")
	// ErrRateLimited is returned when the provider rejects the request for quota reasons.
	ErrRateLimited = errors.New("rate limited by stats provider")
)

// DefaultBaseURL is the tracker API root.
const DefaultBaseURL = "https://api.fortnitetracker.com"

// PlayerStats is the provider's answer for one username. Periods the provider
// did not report are absent.
type PlayerStats struct {
	Username string
	Periods  map[standings.Period]standings.Stats
}

// profileResponse is the JSON body of GET /v1/profile/{username}.
type profileResponse struct {
	EpicUserHandle string                     `json:"epicUserHandle"`
	Periods        map[string]standings.Stats `json:"periods"`
}

// APIClient is the HTTP implementation of Client.
type APIClient struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	apiKey     string
	BaseURL    string
}
