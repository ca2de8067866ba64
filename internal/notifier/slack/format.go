package slack

import (
	"fmt"
	"strings"

	"github.com/mauv0809/storm-standings/internal/standings"
	"github.com/slack-go/slack"
)

func medal(rank int) string {
	switch rank {
	case 1:
		return "🥇"
	case 2:
		return "🥈"
	case 3:
		return "🥉"
	}
	return ""
}

// entryName renders "display name (username)".
func entryName(e standings.LeaderboardEntry) string {
	name := e.Identity.DisplayName
	if name == "" {
		name = e.MemberKey
	}
	if e.Username == "" {
		return name
	}
	return fmt.Sprintf("%s (%s)", name, e.Username)
}

func statLines(s standings.Stats) string {
	return fmt.Sprintf("> Wins: %d | Eliminations: %d | Assists: %d | Damage: %d | Level: %d\n> %s: %s | %s: %s",
		s.Wins, s.Eliminations, s.Assists, s.Damage, s.Level,
		standings.StatBRRank.Label(), s.BRRank,
		standings.StatZBRank.Label(), s.ZBRank,
	)
}

// formatLeaderboard renders the header plus one section per entry. The title
// doubles as the message text, which is what identifies an existing post.
func formatLeaderboard(period standings.Period, entries []standings.LeaderboardEntry) slack.Message {
	title := period.LeaderboardTitle()
	blocks := make([]slack.Block, 0, len(entries)+1)
	blocks = append(blocks, slack.NewHeaderBlock(slack.NewTextBlockObject("plain_text", "🏆 "+title+" 🏆", true, false)))

	if len(entries) == 0 {
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", "No players ranked yet.", true, false), nil, nil))
	}
	for _, e := range entries {
		heading := fmt.Sprintf("%d.", e.Rank)
		if m := medal(e.Rank); m != "" {
			heading += " " + m
		}
		text := fmt.Sprintf("*%s %s*\n%s", heading, entryName(e), statLines(e.Stats))
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("mrkdwn", text, false, false), nil, nil))
	}

	msg := slack.NewBlockMessage(blocks...)
	msg.Text = title
	return msg
}

func formatPlayerStats(period standings.Period, e standings.LeaderboardEntry) slack.Message {
	header := fmt.Sprintf("%s stats for %s", period.Title(), entryName(e))
	var b strings.Builder
	if e.Rank > 0 {
		fmt.Fprintf(&b, "> *Position*: %d\n", e.Rank)
	}
	fmt.Fprintf(&b, "> *Wins*: %d\n> *Eliminations*: %d\n> *Assists*: %d\n> *Damage*: %d\n> *Level*: %d\n> *%s*: %s\n> *%s*: %s",
		e.Stats.Wins, e.Stats.Eliminations, e.Stats.Assists, e.Stats.Damage, e.Stats.Level,
		standings.StatBRRank.Label(), e.Stats.BRRank,
		standings.StatZBRank.Label(), e.Stats.ZBRank,
	)
	msg := slack.NewBlockMessage(
		slack.NewHeaderBlock(slack.NewTextBlockObject("plain_text", header, true, false)),
		slack.NewSectionBlock(slack.NewTextBlockObject("mrkdwn", b.String(), false, false), nil, nil),
	)
	msg.Text = header
	msg.ResponseType = slack.ResponseTypeInChannel
	return msg
}

func formatRank(e standings.LeaderboardEntry, field standings.StatField) slack.Message {
	text := fmt.Sprintf("<@%s>'s %s: *%s*", e.MemberKey, field.Label(), e.Stats.Field(field))
	msg := slack.NewBlockMessage(slack.NewSectionBlock(slack.NewTextBlockObject("mrkdwn", text, false, false), nil, nil))
	msg.Text = text
	msg.ResponseType = slack.ResponseTypeInChannel
	return msg
}

func formatText(text string) slack.Message {
	msg := slack.NewBlockMessage(slack.NewSectionBlock(slack.NewTextBlockObject("mrkdwn", text, false, false), nil, nil))
	msg.Text = text
	msg.ResponseType = slack.ResponseTypeEphemeral
	return msg
}
