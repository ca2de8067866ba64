package slack

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/mauv0809/storm-standings/internal/metrics"
	"github.com/mauv0809/storm-standings/internal/notifier"
	"github.com/mauv0809/storm-standings/internal/standings"
	slackapi "github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockSlackAPI is a small in-memory channel that keeps the messages posted to it.
type mockSlackAPI struct {
	t        *testing.T
	history  []slackapi.Message
	posts    int
	edits    []string
	scans    int
	editErr  error
	postErr  error
	authResp *slackapi.AuthTestResponse
}

func newMockSlackAPI(t *testing.T) *mockSlackAPI {
	return &mockSlackAPI{t: t, authResp: &slackapi.AuthTestResponse{UserID: "UBOT", BotID: "BBOT"}}
}

func (m *mockSlackAPI) text(channel string, options []slackapi.MsgOption) string {
	_, values, err := slackapi.UnsafeApplyMsgOptions("token", channel, "https://slack.test/api/", options...)
	require.NoError(m.t, err)
	return values.Get("text")
}

func (m *mockSlackAPI) AuthTestContext(ctx context.Context) (*slackapi.AuthTestResponse, error) {
	return m.authResp, nil
}

func (m *mockSlackAPI) PostMessageContext(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error) {
	if m.postErr != nil {
		return "", "", m.postErr
	}
	m.posts++
	ts := fmt.Sprintf("1700000000.%06d", m.posts)
	msg := slackapi.Message{}
	msg.User, msg.BotID, msg.Timestamp, msg.Text = "UBOT", "BBOT", ts, m.text(channelID, options)
	// Newest first, like conversations.history.
	m.history = append([]slackapi.Message{msg}, m.history...)
	return channelID, ts, nil
}

func (m *mockSlackAPI) UpdateMessageContext(ctx context.Context, channelID, timestamp string, options ...slackapi.MsgOption) (string, string, string, error) {
	m.edits = append(m.edits, timestamp)
	if m.editErr != nil {
		return "", "", "", m.editErr
	}
	for _, msg := range m.history {
		if msg.Timestamp == timestamp {
			return channelID, timestamp, m.text(channelID, options), nil
		}
	}
	return "", "", "", slackapi.SlackErrorResponse{Err: "message_not_found"}
}

func (m *mockSlackAPI) GetConversationHistoryContext(ctx context.Context, params *slackapi.GetConversationHistoryParameters) (*slackapi.GetConversationHistoryResponse, error) {
	m.scans++
	assert.Equal(m.t, 100, params.Limit)
	return &slackapi.GetConversationHistoryResponse{Messages: m.history}, nil
}

func (m *mockSlackAPI) addMessage(user, ts, text string) {
	msg := slackapi.Message{}
	msg.User, msg.Timestamp, msg.Text = user, ts, text
	m.history = append([]slackapi.Message{msg}, m.history...)
}

func sampleEntries() []standings.LeaderboardEntry {
	return []standings.LeaderboardEntry{
		{Rank: 1, MemberKey: "U1", Identity: standings.Identity{DisplayName: "Ace"}, Username: "AceTheGamer",
			Stats: standings.Stats{Wins: 5, Eliminations: 10, BRRank: "Gold 2", ZBRank: standings.Unranked}},
		{Rank: 2, MemberKey: "U2", Identity: standings.Identity{DisplayName: "Bolt"}, Username: "b0lt", Stats: standings.EmptyStats()},
		{Rank: 4, MemberKey: "U4", Identity: standings.Identity{DisplayName: "Dash"}, Username: "dash", Stats: standings.EmptyStats()},
	}
}

func request(known standings.PostRef) notifier.PublishRequest {
	return notifier.PublishRequest{Period: standings.Season, Channel: "C1", Entries: sampleEntries(), Known: known}
}

func TestFormatLeaderboard(t *testing.T) {
	msg := formatLeaderboard(standings.Season, sampleEntries())

	assert.Equal(t, "Season Leaderboard", msg.Text)
	require.Len(t, msg.Blocks.BlockSet, 4)
	header, ok := msg.Blocks.BlockSet[0].(*slackapi.HeaderBlock)
	require.True(t, ok)
	assert.Contains(t, header.Text.Text, "Season Leaderboard")

	first := msg.Blocks.BlockSet[1].(*slackapi.SectionBlock).Text.Text
	assert.Contains(t, first, "1. 🥇 Ace (AceTheGamer)")
	assert.Contains(t, first, "Wins: 5 | Eliminations: 10")
	assert.Contains(t, first, "Rank BR: Gold 2 | Rank ZB: unranked")

	last := msg.Blocks.BlockSet[3].(*slackapi.SectionBlock).Text.Text
	assert.Contains(t, last, "*4. Dash (dash)*")
}

func TestFormatLeaderboard_Empty(t *testing.T) {
	msg := formatLeaderboard(standings.Daily, nil)

	require.Len(t, msg.Blocks.BlockSet, 2)
	assert.Equal(t, "Daily Leaderboard", msg.Text)
}

func TestPublish_CreatesWhenNothingExists(t *testing.T) {
	api := newMockSlackAPI(t)
	m := metrics.NewMock()
	n := NewNotifierWithAPI(api, 0, m)

	res, err := n.PublishLeaderboard(context.Background(), request(standings.PostRef{}), false)

	require.NoError(t, err)
	assert.Equal(t, notifier.ActionCreated, res.Action)
	assert.Equal(t, standings.PostRef{Channel: "C1", TS: "1700000000.000001"}, res.Ref)
	assert.Equal(t, "Season Leaderboard", api.history[0].Text)
	assert.Equal(t, 1, m.PostsPublished("created"))
}

func TestPublish_EditsKnownPost(t *testing.T) {
	api := newMockSlackAPI(t)
	api.addMessage("UBOT", "1.000001", "Season Leaderboard")
	n := NewNotifierWithAPI(api, 0, metrics.NewMock())

	res, err := n.PublishLeaderboard(context.Background(), request(standings.PostRef{Channel: "C1", TS: "1.000001"}), false)

	require.NoError(t, err)
	assert.Equal(t, notifier.ActionEdited, res.Action)
	assert.Equal(t, []string{"1.000001"}, api.edits)
	assert.Zero(t, api.scans, "a known post needs no history scan")
	assert.Zero(t, api.posts)
}

func TestPublish_StaleRefFallsBackToScan(t *testing.T) {
	api := newMockSlackAPI(t)
	api.addMessage("UBOT", "2.000000", "Season Leaderboard")
	api.addMessage("UOTHER", "3.000000", "Season Leaderboard")
	api.addMessage("UBOT", "4.000000", "Weekly Leaderboard")
	n := NewNotifierWithAPI(api, 0, metrics.NewMock())

	res, err := n.PublishLeaderboard(context.Background(), request(standings.PostRef{Channel: "C1", TS: "1.000000"}), false)

	require.NoError(t, err)
	assert.Equal(t, notifier.ActionEdited, res.Action)
	assert.Equal(t, standings.PostRef{Channel: "C1", TS: "2.000000"}, res.Ref, "only the bot's post with the same title counts")
	assert.Equal(t, []string{"1.000000", "2.000000"}, api.edits)
	assert.Zero(t, api.posts)
}

func TestPublish_RefFromOtherChannelIsIgnored(t *testing.T) {
	api := newMockSlackAPI(t)
	n := NewNotifierWithAPI(api, 0, metrics.NewMock())

	res, err := n.PublishLeaderboard(context.Background(), request(standings.PostRef{Channel: "C-OLD", TS: "1.0"}), false)

	require.NoError(t, err)
	assert.Equal(t, notifier.ActionCreated, res.Action)
	assert.Empty(t, api.edits)
}

func TestPublish_TwiceKeepsOnePost(t *testing.T) {
	api := newMockSlackAPI(t)
	n := NewNotifierWithAPI(api, 0, metrics.NewMock())

	first, err := n.PublishLeaderboard(context.Background(), request(standings.PostRef{}), false)
	require.NoError(t, err)
	// The stored ref was lost, the scan still finds the post.
	second, err := n.PublishLeaderboard(context.Background(), request(standings.PostRef{}), false)
	require.NoError(t, err)
	third, err := n.PublishLeaderboard(context.Background(), request(second.Ref), false)
	require.NoError(t, err)

	assert.Equal(t, 1, api.posts)
	assert.Len(t, api.history, 1)
	assert.Equal(t, first.Ref, second.Ref)
	assert.Equal(t, first.Ref, third.Ref)
}

func TestPublish_EditFailure(t *testing.T) {
	api := newMockSlackAPI(t)
	api.addMessage("UBOT", "1.0", "Season Leaderboard")
	api.editErr = errors.New("ratelimited")
	m := metrics.NewMock()
	n := NewNotifierWithAPI(api, 0, m)

	_, err := n.PublishLeaderboard(context.Background(), request(standings.PostRef{Channel: "C1", TS: "1.0"}), false)

	require.Error(t, err)
	assert.Zero(t, api.posts, "a failed edit must not create a duplicate")
	assert.Equal(t, 1, m.PostFailures())
}

func TestPublish_PostFailure(t *testing.T) {
	api := newMockSlackAPI(t)
	api.postErr = errors.New("not_in_channel")
	m := metrics.NewMock()
	n := NewNotifierWithAPI(api, 0, m)

	_, err := n.PublishLeaderboard(context.Background(), request(standings.PostRef{}), false)

	assert.ErrorIs(t, err, api.postErr)
	assert.Equal(t, 1, m.PostFailures())
}

func TestPublish_DryRun(t *testing.T) {
	// Pass nil for the api, as it shouldn't be called in dry-run mode.
	n := NewNotifierWithAPI(nil, 0, metrics.NewMock())
	known := standings.PostRef{Channel: "C1", TS: "1.0"}

	res, err := n.PublishLeaderboard(context.Background(), request(known), true)

	require.NoError(t, err)
	assert.Equal(t, notifier.ActionDryRun, res.Action)
	assert.Equal(t, known, res.Ref)
}

func TestFormatResponses(t *testing.T) {
	n := NewNotifierWithAPI(nil, 0, metrics.NewMock())
	entry := sampleEntries()[0]

	raw, err := n.FormatRankResponse(entry, standings.StatBRRank)
	require.NoError(t, err)
	rank := raw.(slackapi.Message)
	assert.Equal(t, "<@U1>'s Rank BR: *Gold 2*", rank.Text)
	assert.Equal(t, slackapi.ResponseTypeInChannel, rank.ResponseType)

	raw, err = n.FormatPlayerStatsResponse(standings.Weekly, entry)
	require.NoError(t, err)
	stats := raw.(slackapi.Message)
	assert.Equal(t, "Weekly stats for Ace (AceTheGamer)", stats.Text)
	assert.Contains(t, stats.Blocks.BlockSet[1].(*slackapi.SectionBlock).Text.Text, "*Position*: 1")

	raw, err = n.FormatTextResponse("Invalid period.")
	require.NoError(t, err)
	assert.Equal(t, slackapi.ResponseTypeEphemeral, raw.(slackapi.Message).ResponseType)

	raw, err = n.FormatLeaderboardResponse(standings.Lifetime, nil)
	require.NoError(t, err)
	assert.Equal(t, slackapi.ResponseTypeInChannel, raw.(slackapi.Message).ResponseType)
}
