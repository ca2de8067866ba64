package slack

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/storm-standings/internal/roles"
	"github.com/mauv0809/storm-standings/internal/standings"
	"github.com/slack-go/slack"
)

var _ roles.Directory = (*Directory)(nil)

// NewDirectory creates a Directory using the bot token.
func NewDirectory(token string) *Directory {
	return &Directory{api: slack.New(token)}
}

// NewDirectoryWithAPI creates a Directory with a custom API client. Used for testing.
func NewDirectoryWithAPI(api *slack.Client) *Directory {
	return &Directory{api: api}
}

// ResolveIdentity looks the member up with users.info. Deleted users, bots and
// unknown IDs resolve to nothing; any other failure is returned so a
// transient error never drops a member from a ranking.
func (d *Directory) ResolveIdentity(ctx context.Context, memberKey string) (standings.Identity, bool, error) {
	user, err := d.api.GetUserInfoContext(ctx, memberKey)
	if err != nil {
		if isSlackError(err, "user_not_found") {
			return standings.Identity{}, false, nil
		}
		return standings.Identity{}, false, fmt.Errorf("failed to look up Slack user %s: %w", memberKey, err)
	}
	if user.Deleted || user.IsBot {
		return standings.Identity{}, false, nil
	}
	return standings.Identity{DisplayName: displayName(user)}, true, nil
}

// IsAdmin reports whether the member is a workspace admin or owner.
func (d *Directory) IsAdmin(ctx context.Context, memberKey string) bool {
	user, err := d.api.GetUserInfoContext(ctx, memberKey)
	if err != nil {
		log.Warn("Failed to look up Slack user for permission check", "user", memberKey, "error", err)
		return false
	}
	return user.IsAdmin || user.IsOwner
}

func (d *Directory) CurrentHolders(ctx context.Context, roleID string) ([]string, error) {
	members, err := d.api.GetUserGroupMembersContext(ctx, roleID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members of user group %s: %w", roleID, err)
	}
	return members, nil
}

// GrantRole adds the member to the user group. Slack only supports replacing
// the whole member list, so this reads the list first.
func (d *Directory) GrantRole(ctx context.Context, roleID, memberKey string) error {
	members, err := d.CurrentHolders(ctx, roleID)
	if err != nil {
		return err
	}
	if slices.Contains(members, memberKey) {
		return nil
	}
	return d.setMembers(ctx, roleID, append(members, memberKey))
}

func (d *Directory) RevokeRole(ctx context.Context, roleID, memberKey string) error {
	members, err := d.CurrentHolders(ctx, roleID)
	if err != nil {
		return err
	}
	if !slices.Contains(members, memberKey) {
		return nil
	}
	remaining := slices.DeleteFunc(members, func(m string) bool { return m == memberKey })
	if len(remaining) == 0 {
		return fmt.Errorf("failed to remove %s from user group %s: %w", memberKey, roleID, ErrEmptyGroup)
	}
	return d.setMembers(ctx, roleID, remaining)
}

func (d *Directory) setMembers(ctx context.Context, roleID string, members []string) error {
	if _, err := d.api.UpdateUserGroupMembersContext(ctx, roleID, strings.Join(members, ",")); err != nil {
		return fmt.Errorf("failed to update user group %s: %w", roleID, err)
	}
	log.Debug("Updated user group members", "group", roleID, "count", len(members))
	return nil
}

func displayName(user *slack.User) string {
	switch {
	case user.Profile.DisplayName != "":
		return user.Profile.DisplayName
	case user.RealName != "":
		return user.RealName
	default:
		return user.Name
	}
}

func isSlackError(err error, code string) bool {
	var slackErr slack.SlackErrorResponse
	return errors.As(err, &slackErr) && slackErr.Err == code
}
