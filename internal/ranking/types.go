package ranking

import "github.com/mauv0809/storm-standings/internal/standings"

// IdentityResolver looks up how a member is presented. ok is false when the
// member can no longer be resolved (left the workspace, deactivated).
type IdentityResolver func(memberKey string) (standings.Identity, bool)

// Tier is a cumulative top-N slice of a leaderboard.
type Tier string

const (
	Top1  Tier = "top_1"
	Top2  Tier = "top_2"
	Top3  Tier = "top_3"
	Top10 Tier = "top_10"
)

// Tiers lists every tier from the narrowest to the widest.
var Tiers = []Tier{Top1, Top2, Top3, Top10}

// TierSizes maps a tier to its N.
type TierSizes map[Tier]int

// DefaultTierSizes are the sizes used unless configured otherwise.
var DefaultTierSizes = TierSizes{Top1: 1, Top2: 2, Top3: 3, Top10: 10}

// DefaultLimit is the number of entries shown on a leaderboard.
const DefaultLimit = 10

// MemberSet is a set of member keys.
type MemberSet map[string]struct{}

// Contains reports whether key is in s.
func (s MemberSet) Contains(key string) bool {
	_, ok := s[key]
	return ok
}
