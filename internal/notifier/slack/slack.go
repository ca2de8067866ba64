package slack

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/storm-standings/internal/metrics"
	"github.com/mauv0809/storm-standings/internal/notifier"
	"github.com/mauv0809/storm-standings/internal/standings"
	"github.com/slack-go/slack"
)

// DefaultLookbackLimit is how many recent channel messages are searched for
// an existing leaderboard post.
const DefaultLookbackLimit = 100

// slackClient is an interface that contains the methods from the slack.Client that we use.
// This allows for easy mocking in tests.
type slackClient interface {
	AuthTestContext(ctx context.Context) (*slack.AuthTestResponse, error)
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
	UpdateMessageContext(ctx context.Context, channelID, timestamp string, options ...slack.MsgOption) (string, string, string, error)
	GetConversationHistoryContext(ctx context.Context, params *slack.GetConversationHistoryParameters) (*slack.GetConversationHistoryResponse, error)
}

var _ notifier.Notifier = &Notifier{}

// Notifier publishes leaderboards to Slack channels.
type Notifier struct {
	api      slackClient
	lookback int
	metrics  metrics.Metrics

	mu        sync.Mutex
	botUserID string
	botID     string
}

// NewNotifier creates a new Notifier.
func NewNotifier(token string, lookback int, metrics metrics.Metrics) *Notifier {
	return NewNotifierWithAPI(slack.New(token), lookback, metrics)
}

// NewNotifierWithAPI creates a new Notifier with a specific slack.Client instance.
// Useful for tests that need to intercept API calls.
func NewNotifierWithAPI(api slackClient, lookback int, metrics metrics.Metrics) *Notifier {
	if lookback <= 0 {
		lookback = DefaultLookbackLimit
	}
	return &Notifier{
		api:      api,
		lookback: lookback,
		metrics:  metrics,
	}
}

// PublishLeaderboard edits the stored post, else the newest matching post in
// the channel's recent history, else creates a new post.
func (n *Notifier) PublishLeaderboard(ctx context.Context, req notifier.PublishRequest, dryRun bool) (notifier.PublishResult, error) {
	msg := formatLeaderboard(req.Period, req.Entries)
	title := msg.Text
	options := []slack.MsgOption{
		slack.MsgOptionText(title, false),
		slack.MsgOptionBlocks(msg.Blocks.BlockSet...),
	}

	if dryRun {
		jsonMsg, _ := json.MarshalIndent(msg, "", "  ")
		log.Info("[Dry Run] Would publish leaderboard", "period", req.Period, "channel", req.Channel, "message", string(jsonMsg))
		return notifier.PublishResult{Ref: req.Known, Action: notifier.ActionDryRun}, nil
	}

	if req.Known.TS != "" && req.Known.Channel == req.Channel {
		err := n.edit(ctx, req.Channel, req.Known.TS, options)
		if err == nil {
			return n.published(req, req.Known, notifier.ActionEdited), nil
		}
		if !isMissingMessage(err) {
			n.metrics.IncPostFailures()
			return notifier.PublishResult{}, fmt.Errorf("failed to edit leaderboard post: %w", err)
		}
		log.Warn("Stored leaderboard post is gone, searching the channel", "period", req.Period, "channel", req.Channel, "ts", req.Known.TS)
	}

	ts, err := n.findPost(ctx, req.Channel, title)
	if err != nil {
		n.metrics.IncPostFailures()
		return notifier.PublishResult{}, fmt.Errorf("failed to search channel history: %w", err)
	}
	if ts != "" {
		if err := n.edit(ctx, req.Channel, ts, options); err == nil {
			return n.published(req, standings.PostRef{Channel: req.Channel, TS: ts}, notifier.ActionEdited), nil
		} else if !isMissingMessage(err) {
			n.metrics.IncPostFailures()
			return notifier.PublishResult{}, fmt.Errorf("failed to edit leaderboard post: %w", err)
		}
	}

	channel, ts, err := n.api.PostMessageContext(ctx, req.Channel, options...)
	if err != nil {
		n.metrics.IncPostFailures()
		log.Error("Failed to post leaderboard", "period", req.Period, "channel", req.Channel, "error", err)
		return notifier.PublishResult{}, fmt.Errorf("failed to post leaderboard: %w", err)
	}
	return n.published(req, standings.PostRef{Channel: channel, TS: ts}, notifier.ActionCreated), nil
}

func (n *Notifier) published(req notifier.PublishRequest, ref standings.PostRef, action notifier.PublishAction) notifier.PublishResult {
	n.metrics.IncPostsPublished(string(action))
	log.Info("Leaderboard published", "period", req.Period, "channel", ref.Channel, "ts", ref.TS, "action", action, "entries", len(req.Entries))
	return notifier.PublishResult{Ref: ref, Action: action}
}

func (n *Notifier) edit(ctx context.Context, channel, ts string, options []slack.MsgOption) error {
	_, _, _, err := n.api.UpdateMessageContext(ctx, channel, ts, options...)
	return err
}

// findPost returns the timestamp of the newest message the bot wrote whose
// text is title, or "" when there is none.
func (n *Notifier) findPost(ctx context.Context, channel, title string) (string, error) {
	userID, botID, err := n.identity(ctx)
	if err != nil {
		return "", err
	}
	history, err := n.api.GetConversationHistoryContext(ctx, &slack.GetConversationHistoryParameters{
		ChannelID: channel,
		Limit:     n.lookback,
	})
	if err != nil {
		return "", err
	}
	// Slack returns the newest message first.
	for _, m := range history.Messages {
		byBot := (userID != "" && m.User == userID) || (botID != "" && m.BotID == botID)
		if byBot && m.Text == title {
			return m.Timestamp, nil
		}
	}
	return "", nil
}

func (n *Notifier) identity(ctx context.Context) (string, string, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.botUserID != "" || n.botID != "" {
		return n.botUserID, n.botID, nil
	}
	resp, err := n.api.AuthTestContext(ctx)
	if err != nil {
		return "", "", fmt.Errorf("failed to identify bot user: %w", err)
	}
	n.botUserID, n.botID = resp.UserID, resp.BotID
	return n.botUserID, n.botID, nil
}

func isMissingMessage(err error) bool {
	var slackErr slack.SlackErrorResponse
	if !errors.As(err, &slackErr) {
		return false
	}
	switch slackErr.Err {
	case "message_not_found", "cant_update_message":
		return true
	}
	return false
}

func (n *Notifier) FormatLeaderboardResponse(period standings.Period, entries []standings.LeaderboardEntry) (any, error) {
	msg := formatLeaderboard(period, entries)
	msg.ResponseType = slack.ResponseTypeInChannel
	return msg, nil
}

func (n *Notifier) FormatPlayerStatsResponse(period standings.Period, entry standings.LeaderboardEntry) (any, error) {
	return formatPlayerStats(period, entry), nil
}

func (n *Notifier) FormatRankResponse(entry standings.LeaderboardEntry, field standings.StatField) (any, error) {
	return formatRank(entry, field), nil
}

func (n *Notifier) FormatTextResponse(text string) (any, error) {
	return formatText(text), nil
}
