package handlers

import (
	"encoding/json"
	"net/http"
	"regexp"
	"strings"

	"github.com/charmbracelet/log"
)

// ContextKey is a custom type to avoid key collisions in context.
type ContextKey string

const (
	DryRunKey ContextKey = "dryRun"
)

// IsDryRunFromContext is a helper to safely retrieve the dry_run flag from the request context.
func IsDryRunFromContext(r *http.Request) bool {
	dryRun, ok := r.Context().Value(DryRunKey).(bool)
	return ok && dryRun
}

// respondWithSlackMsg writes a formatted notifier response as the slash command reply.
func respondWithSlackMsg(w http.ResponseWriter, msg any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(msg); err != nil {
		log.Error("Failed to encode slack message to JSON", "error", err)
	}
}

func respondJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("Failed to write response", "error", err)
	}
}

var (
	userMention    = regexp.MustCompile(`^<@([UW][A-Z0-9]+)(?:\|[^>]*)?>$`)
	channelMention = regexp.MustCompile(`^<#(C[A-Z0-9]+)(?:\|[^>]*)?>$`)
)

// parseUserMention returns the user ID of an escaped mention like <@U123|bob>.
func parseUserMention(token string) (string, bool) {
	m := userMention.FindStringSubmatch(strings.TrimSpace(token))
	if m == nil {
		return "", false
	}
	return m[1], true
}

// parseChannelMention returns the channel ID of an escaped link like <#C123|general>.
func parseChannelMention(token string) (string, bool) {
	m := channelMention.FindStringSubmatch(strings.TrimSpace(token))
	if m == nil {
		return "", false
	}
	return m[1], true
}

// splitMember pulls the first user mention out of args. The caller is used
// when no mention is present.
func splitMember(caller string, args []string) (string, []string) {
	for i, arg := range args {
		if id, ok := parseUserMention(arg); ok {
			rest := append(append([]string{}, args[:i]...), args[i+1:]...)
			return id, rest
		}
	}
	return caller, args
}
