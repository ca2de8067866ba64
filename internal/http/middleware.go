package http

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/storm-standings/internal/http/handlers"
	"github.com/slack-go/slack"
)

// maxSlackBody caps how much of a Slack request is read for verification.
const maxSlackBody = 1 << 20

// Middleware defines the standard signature for an HTTP middleware.
type Middleware func(http.Handler) http.Handler

// Chain combines multiple middlewares into a single handler.
// The middlewares are applied in the order they are passed.
func Chain(h http.Handler, middlewares ...Middleware) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}

// paramsMiddleware applies the request flags shared by every route: verbose
// raises the log level for the duration of the request and dry_run is stored
// in the context under handlers.DryRunKey.
func paramsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		log.Info("incoming request", "method", r.Method, "path", r.URL.Path)
		if flag(q.Get("verbose")) {
			level := log.GetLevel()
			log.SetLevel(log.DebugLevel)
			defer log.SetLevel(level)
		}
		ctx := context.WithValue(r.Context(), handlers.DryRunKey, flag(q.Get("dry_run")))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// flag reports whether a query value switches an option on.
func flag(v string) bool {
	on, err := strconv.ParseBool(v)
	return err == nil && on
}

// slackVerificationMiddleware rejects requests that do not carry a valid
// Slack signature for secret. The body is restored for the next handler.
func slackVerificationMiddleware(secret string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, err := io.ReadAll(io.LimitReader(r.Body, maxSlackBody))
			if err != nil {
				log.Error("Failed to read request body", "error", err)
				http.Error(w, "Failed to read request body", http.StatusBadRequest)
				return
			}
			verifier, err := slack.NewSecretsVerifier(r.Header, secret)
			if err != nil {
				log.Warn("Rejecting unsigned Slack request", "error", err)
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			if _, err := verifier.Write(body); err != nil {
				http.Error(w, "Failed to verify request", http.StatusInternalServerError)
				return
			}
			if err := verifier.Ensure(); err != nil {
				log.Warn("Rejecting Slack request with bad signature", "error", err)
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))
			next.ServeHTTP(w, r)
		})
	}
}
