package tracker

import (
	"errors"

	"github.com/mauv0809/storm-standings/internal/metrics"
	"github.com/mauv0809/storm-standings/internal/pubsub"
	"github.com/mauv0809/storm-standings/internal/stats"
	"github.com/mauv0809/storm-standings/internal/storage"
)

var (
	// ErrEmptyUsername is returned when registering without a username.
	ErrEmptyUsername = errors.New("username must not be empty")
	// ErrEmptyChannel is returned when binding a period to no channel.
	ErrEmptyChannel = errors.New("channel must not be empty")
)

// Service implements the command surface on top of the store.
type Service struct {
	store     storage.Store
	directory Directory
	stats     stats.Client
	// pubsub is optional. When set, RefreshStats fans out one message per
	// member instead of fetching in-process.
	pubsub   pubsub.PubSubClient
	metrics  metrics.Metrics
	counters metrics.MetricsStore
	admins   map[string]struct{}
}

// RefreshReport summarizes a stats refresh.
type RefreshReport struct {
	RunID     string `json:"run_id"`
	Members   int    `json:"members"`
	Queued    int    `json:"queued"`
	Updated   int    `json:"updated"`
	Failed    int    `json:"failed"`
	Skipped   int    `json:"skipped"`
	FannedOut bool   `json:"fanned_out"`
}
