package http

import (
	"net/http"

	"github.com/mauv0809/storm-standings/internal/config"
	"github.com/mauv0809/storm-standings/internal/metrics"
	"github.com/mauv0809/storm-standings/internal/notifier"
	"github.com/mauv0809/storm-standings/internal/processor"
	"github.com/mauv0809/storm-standings/internal/pubsub"
	"github.com/mauv0809/storm-standings/internal/storage"
	"github.com/mauv0809/storm-standings/internal/tracker"
)

type Server struct {
	Store          storage.Store
	Tracker        *tracker.Service
	Processor      *processor.Processor
	Notifier       notifier.Notifier
	Counters       metrics.MetricsStore
	MetricsHandler http.Handler
	Cfg            config.Config
	Router         *http.ServeMux
	// pubsub is nil when stats refreshes run in-process.
	pubsub pubsub.PubSubClient
}
