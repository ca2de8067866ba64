package handlers

import (
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/storm-standings/internal/processor"
	"github.com/mauv0809/storm-standings/internal/tracker"
)

// CycleHandler runs a leaderboard cycle now and returns its report. The
// cycle is a dry run when ?dry_run=true or when dryRun is set.
func CycleHandler(proc *processor.Processor, dryRun bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		isDryRun := dryRun || IsDryRunFromContext(r)
		log.Info("Starting leaderboard cycle", "dry_run", isDryRun)

		report := proc.RunCycle(r.Context(), isDryRun)

		if report.Failed() > 0 {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
		}
		respondJSON(w, report)
		log.Info("Leaderboard cycle finished", "run_id", report.RunID, "failed", report.Failed())
	}
}

// RefreshHandler fetches fresh stats for every registered member.
func RefreshHandler(svc *tracker.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Info("Starting stats refresh...")
		respondJSON(w, svc.RefreshStats(r.Context()))
	}
}
