package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/storm-standings/internal/notifier"
	"github.com/mauv0809/storm-standings/internal/ranking"
	"github.com/mauv0809/storm-standings/internal/standings"
	"github.com/mauv0809/storm-standings/internal/tracker"
	"github.com/slack-go/slack"
)

const periodHelp = "Use one of: daily, weekly, season, lifetime."

// commandFunc handles a parsed slash command and returns the reply.
type commandFunc func(ctx context.Context, cmd slack.SlashCommand, args []string) (any, error)

// slashCommand parses the request into a slack.SlashCommand and writes
// whatever handle returns.
func slashCommand(handle commandFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cmd, err := slack.SlashCommandParse(r)
		if err != nil {
			log.Error("Failed to parse slash command", "error", err)
			http.Error(w, "Invalid slash command", http.StatusBadRequest)
			return
		}
		log.Info("Received slash command", "command", cmd.Command, "user", cmd.UserID, "text", cmd.Text)

		reply, err := handle(r.Context(), cmd, strings.Fields(cmd.Text))
		if err != nil {
			log.Error("Slash command failed", "command", cmd.Command, "user", cmd.UserID, "error", err)
			http.Error(w, "Something went wrong, please try again later", http.StatusInternalServerError)
			return
		}
		respondWithSlackMsg(w, reply)
	}
}

// textReply formats a short ephemeral answer.
func textReply(n notifier.Notifier, format string, args ...any) (any, error) {
	return n.FormatTextResponse(fmt.Sprintf(format, args...))
}

// RegisterCommandHandler handles `/register [@member] <username>`.
func RegisterCommandHandler(svc *tracker.Service, n notifier.Notifier) http.HandlerFunc {
	return slashCommand(func(ctx context.Context, cmd slack.SlashCommand, args []string) (any, error) {
		member, rest := splitMember(cmd.UserID, args)
		username := strings.Join(rest, " ")
		if username == "" {
			return textReply(n, "Usage: /register [@member] <username>")
		}
		if err := svc.Register(ctx, member, username); err != nil {
			if errors.Is(err, tracker.ErrEmptyUsername) {
				return textReply(n, "Usage: /register [@member] <username>")
			}
			return nil, err
		}
		return textReply(n, "Registered <@%s> as *%s*.", member, username)
	})
}

// UnregisterCommandHandler handles `/unregister @member`. Privileged.
func UnregisterCommandHandler(svc *tracker.Service, n notifier.Notifier) http.HandlerFunc {
	return slashCommand(func(ctx context.Context, cmd slack.SlashCommand, args []string) (any, error) {
		if !svc.IsPrivileged(ctx, cmd.UserID) {
			return textReply(n, "Only admins can unregister members.")
		}
		member, _ := splitMember("", args)
		if member == "" {
			return textReply(n, "Usage: /unregister @member")
		}
		if err := svc.Unregister(ctx, member); err != nil {
			if errors.Is(err, standings.ErrMemberNotFound) {
				return textReply(n, "<@%s> is not registered.", member)
			}
			return nil, err
		}
		return textReply(n, "Unregistered <@%s>.", member)
	})
}

// LeaderboardCommandHandler handles `/leaderboard [period] [all]`.
func LeaderboardCommandHandler(svc *tracker.Service, n notifier.Notifier) http.HandlerFunc {
	return slashCommand(func(ctx context.Context, cmd slack.SlashCommand, args []string) (any, error) {
		period := standings.Season
		limit := ranking.DefaultLimit
		for _, arg := range args {
			if strings.EqualFold(arg, "all") {
				limit = 0
				continue
			}
			p, err := standings.ParsePeriod(arg)
			if err != nil {
				return textReply(n, "Unknown period %q. %s", arg, periodHelp)
			}
			period = p
		}
		entries, err := svc.Leaderboard(ctx, period, limit)
		if err != nil {
			return nil, err
		}
		if len(entries) == 0 {
			return textReply(n, "No registered players on the %s yet.", period.LeaderboardTitle())
		}
		return n.FormatLeaderboardResponse(period, entries)
	})
}

// LeaderboardChannelCommandHandler handles `/leaderboard-channel <period> [#channel]`.
// The invoking channel is bound when no channel is given. Privileged.
func LeaderboardChannelCommandHandler(svc *tracker.Service, n notifier.Notifier) http.HandlerFunc {
	return slashCommand(func(ctx context.Context, cmd slack.SlashCommand, args []string) (any, error) {
		if !svc.IsPrivileged(ctx, cmd.UserID) {
			return textReply(n, "Only admins can set leaderboard channels.")
		}
		if len(args) == 0 {
			return textReply(n, "Usage: /leaderboard-channel <period> [#channel]. %s", periodHelp)
		}
		period, err := standings.ParsePeriod(args[0])
		if err != nil {
			return textReply(n, "Unknown period %q. %s", args[0], periodHelp)
		}
		channel := cmd.ChannelID
		if len(args) > 1 {
			id, ok := parseChannelMention(args[1])
			if !ok {
				return textReply(n, "Could not read channel %q.", args[1])
			}
			channel = id
		}
		if err := svc.SetLeaderboardChannel(ctx, period, channel); err != nil {
			if errors.Is(err, tracker.ErrEmptyChannel) {
				return textReply(n, "Could not tell which channel to use.")
			}
			return nil, err
		}
		return textReply(n, "The %s will be posted in <#%s>.", period.LeaderboardTitle(), channel)
	})
}

// RankCommandHandler handles `/rank <br|zb> [@member]`. A non-empty field
// fixes the rank field, as for `/rank-br`.
func RankCommandHandler(svc *tracker.Service, n notifier.Notifier, field standings.StatField) http.HandlerFunc {
	return slashCommand(func(ctx context.Context, cmd slack.SlashCommand, args []string) (any, error) {
		member, rest := splitMember(cmd.UserID, args)
		f := field
		if f == "" {
			if len(rest) == 0 {
				return textReply(n, "Usage: /rank <br|zb> [@member]")
			}
			parsed, err := standings.ParseStatField(rest[0])
			if err != nil {
				return textReply(n, "Unknown rank %q. Use br or zb.", rest[0])
			}
			f = parsed
		}
		entry, err := svc.RankOf(ctx, member, f)
		if err != nil {
			if errors.Is(err, standings.ErrMemberNotFound) {
				return textReply(n, "<@%s> is not registered.", member)
			}
			return nil, err
		}
		return n.FormatRankResponse(entry, f)
	})
}

// PlayerStatsCommandHandler handles `/player-stats [@member] [period]`.
func PlayerStatsCommandHandler(svc *tracker.Service, n notifier.Notifier) http.HandlerFunc {
	return slashCommand(func(ctx context.Context, cmd slack.SlashCommand, args []string) (any, error) {
		member, rest := splitMember(cmd.UserID, args)
		period := standings.Season
		if len(rest) > 0 {
			p, err := standings.ParsePeriod(rest[0])
			if err != nil {
				return textReply(n, "Unknown period %q. %s", rest[0], periodHelp)
			}
			period = p
		}
		entry, err := svc.PlayerStats(ctx, member, period)
		if err != nil {
			if errors.Is(err, standings.ErrMemberNotFound) {
				return textReply(n, "<@%s> is not registered.", member)
			}
			return nil, err
		}
		return n.FormatPlayerStatsResponse(period, entry)
	})
}
