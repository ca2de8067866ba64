package handlers

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/storm-standings/internal/pubsub"
	"github.com/mauv0809/storm-standings/internal/standings"
	"github.com/mauv0809/storm-standings/internal/stats"
	"github.com/mauv0809/storm-standings/internal/tracker"
)

// maxBodyBytes caps push delivery bodies.
const maxBodyBytes = 1 << 20

// pushEnvelope is the JSON body of a pub/sub push delivery.
type pushEnvelope struct {
	Subscription string `json:"subscription"`
	Message      struct {
		ID   string `json:"messageId"`
		Data string `json:"data"`
	} `json:"message"`
}

// decodePush unwraps a push delivery into out. Any error means the delivery
// is malformed and will never decode.
func decodePush(r *http.Request, client pubsub.PubSubClient, out any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	var env pushEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("envelope: %w", err)
	}
	payload, err := base64.StdEncoding.DecodeString(env.Message.Data)
	if err != nil {
		return fmt.Errorf("payload encoding: %w", err)
	}
	log.Debug("Push delivery", "subscription", env.Subscription, "message_id", env.Message.ID, "bytes", len(payload))
	return client.ProcessMessage(payload, out)
}

// RefreshPlayerStatsHandler handles pub/sub push deliveries of
// pubsub.RefreshPlayerMessage. Transient failures answer with a 5xx so the
// message is redelivered; permanent ones are acknowledged.
func RefreshPlayerStatsHandler(svc *tracker.Service, pubsubClient pubsub.PubSubClient) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var msg pubsub.RefreshPlayerMessage
		if err := decodePush(r, pubsubClient, &msg); err != nil {
			log.Error("Rejecting push delivery", "error", err)
			http.Error(w, "Invalid message", http.StatusBadRequest)
			return
		}
		if msg.MemberKey == "" || msg.Username == "" {
			http.Error(w, "Incomplete message", http.StatusBadRequest)
			return
		}

		err := svc.RefreshPlayer(r.Context(), msg.MemberKey, msg.Username)
		switch {
		case err == nil:
		case errors.Is(err, stats.ErrPlayerNotFound), errors.Is(err, standings.ErrMemberNotFound), errors.Is(err, tracker.ErrStale):
			log.Info("Dropping refresh message", "run_id", msg.RunID, "member", msg.MemberKey, "reason", err)
		case errors.Is(err, stats.ErrRateLimited):
			http.Error(w, "Rate limited", http.StatusTooManyRequests)
			return
		default:
			log.Error("Refresh failed", "run_id", msg.RunID, "member", msg.MemberKey, "error", err)
			http.Error(w, "Failed to refresh stats", http.StatusInternalServerError)
			return
		}
		w.Write([]byte("OK"))
	}
}
