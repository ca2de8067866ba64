package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/storm-standings/internal/metrics"
	"github.com/mauv0809/storm-standings/internal/standings"
	"github.com/mauv0809/storm-standings/internal/storage"
	"github.com/mauv0809/storm-standings/internal/tracker"
)

// ListMembersHandler returns every registered member with their username.
func ListMembersHandler(store storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, store.Snapshot(r.Context()).Usernames())
	}
}

// LeaderboardHandler returns the ranked leaderboard of ?period= (season by
// default). ?limit=0 returns the full ranking.
func LeaderboardHandler(svc *tracker.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		period := standings.Season
		if p := r.URL.Query().Get("period"); p != "" {
			parsed, err := standings.ParsePeriod(p)
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			period = parsed
		}
		limit := 0
		if l := r.URL.Query().Get("limit"); l != "" {
			parsed, err := strconv.Atoi(l)
			if err != nil || parsed < 0 {
				http.Error(w, "limit must be a non-negative number", http.StatusBadRequest)
				return
			}
			limit = parsed
		}
		entries, err := svc.Leaderboard(r.Context(), period, limit)
		if err != nil {
			if errors.Is(err, standings.ErrInvalidPeriod) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			log.Error("Failed to build leaderboard", "period", period, "error", err)
			http.Error(w, "Failed to build leaderboard", http.StatusInternalServerError)
			return
		}
		respondJSON(w, entries)
	}
}

// CountersHandler returns the persistent operational counters.
func CountersHandler(counters metrics.MetricsStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		all, err := counters.GetAll()
		if err != nil {
			log.Error("Failed to read counters", "error", err)
			http.Error(w, "Failed to read counters", http.StatusInternalServerError)
			return
		}
		respondJSON(w, all)
	}
}
