package ranking

import (
	"context"
	"sync"

	"github.com/mauv0809/storm-standings/internal/standings"
)

// LookupFunc asks the chat platform about a member. ok is false for members
// that are gone; err is set only when the answer is unknown (rate limits,
// network failures).
type LookupFunc func(ctx context.Context, memberKey string) (identity standings.Identity, ok bool, err error)

// ErrorPolicy decides what a failed lookup means for one ranking pass.
type ErrorPolicy func(memberKey string, err error) (standings.Identity, bool)

type lookupResult struct {
	identity standings.Identity
	ok       bool
}

// Resolver memoizes successful lookups so every member is looked up at most
// once. Failed lookups are not cached and are tried again by the next pass.
type Resolver struct {
	lookup LookupFunc

	mu    sync.Mutex
	cache map[string]lookupResult
}

// NewResolver creates an empty Resolver on top of lookup.
func NewResolver(lookup LookupFunc) *Resolver {
	return &Resolver{lookup: lookup, cache: map[string]lookupResult{}}
}

// Func returns the IdentityResolver for one ranking pass. onErr decides the
// outcome for members whose lookup failed.
func (r *Resolver) Func(ctx context.Context, onErr ErrorPolicy) IdentityResolver {
	return func(key string) (standings.Identity, bool) {
		r.mu.Lock()
		res, hit := r.cache[key]
		r.mu.Unlock()
		if hit {
			return res.identity, res.ok
		}

		identity, ok, err := r.lookup(ctx, key)
		if err != nil {
			return onErr(key, err)
		}
		r.mu.Lock()
		r.cache[key] = lookupResult{identity, ok}
		r.mu.Unlock()
		return identity, ok
	}
}
