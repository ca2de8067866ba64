package slack

import (
	"github.com/mauv0809/storm-standings/internal/roles"
	"github.com/slack-go/slack"
)

// ErrEmptyGroup is returned when a revoke would leave a user group without
// members. Slack does not allow that.
var ErrEmptyGroup = roles.ErrLastHolder

// Directory resolves members and manages user group membership through the
// Slack Web API. User groups play the part of tier roles.
type Directory struct {
	api *slack.Client
}
