package processor

import (
	"context"

	"github.com/mauv0809/storm-standings/internal/standings"
)

// Store defines the storage operations required by the processor.
type Store interface {
	Load(ctx context.Context) standings.RootStore
	Mutate(ctx context.Context, fn func(root *standings.RootStore) error) (standings.RootStore, error)
}

// IdentityResolver resolves members for display and ranking.
type IdentityResolver interface {
	ResolveIdentity(ctx context.Context, memberKey string) (standings.Identity, bool, error)
}
