package tracker

import (
	"context"

	"github.com/mauv0809/storm-standings/internal/standings"
)

// Directory is what the tracker needs to know about chat members.
type Directory interface {
	ResolveIdentity(ctx context.Context, memberKey string) (standings.Identity, bool, error)
	IsAdmin(ctx context.Context, memberKey string) bool
}
