package roles

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/storm-standings/internal/metrics"
	"github.com/mauv0809/storm-standings/internal/ranking"
	"github.com/mauv0809/storm-standings/internal/standings"
)

// New creates a Synchronizer. A nil sizes uses ranking.DefaultTierSizes.
func New(directory Directory, config Config, sizes ranking.TierSizes, metrics metrics.Metrics) Synchronizer {
	if sizes == nil {
		sizes = ranking.DefaultTierSizes
	}
	return &synchronizer{
		directory: directory,
		config:    config,
		sizes:     sizes,
		metrics:   metrics,
	}
}

// Plan lists the actions that make every configured role hold exactly its
// tier's members. Per role all revokes come before the grants. Roles are
// visited in tier order and members in key order.
func Plan(targets map[ranking.Tier]ranking.MemberSet, current map[string]ranking.MemberSet, roleIDs map[ranking.Tier]string) []Action {
	var actions []Action
	for _, tier := range orderedTiers(roleIDs) {
		roleID := roleIDs[tier]
		if roleID == "" {
			continue
		}
		holders, ok := current[roleID]
		if !ok {
			continue
		}
		target := targets[tier]

		for _, key := range sortedKeys(holders) {
			if !target.Contains(key) {
				actions = append(actions, Action{Kind: Revoke, Tier: tier, RoleID: roleID, MemberKey: key})
			}
		}
		for _, key := range sortedKeys(target) {
			if !holders.Contains(key) {
				actions = append(actions, Action{Kind: Grant, Tier: tier, RoleID: roleID, MemberKey: key})
			}
		}
	}
	return actions
}

func (s *synchronizer) Synchronize(ctx context.Context, period standings.Period, entries []standings.LeaderboardEntry, dryRun bool) Result {
	var result Result
	roleIDs := maps.Clone(s.config.RoleIDs(period))
	if len(roleIDs) == 0 {
		log.Debug("No tier roles configured for period", "period", period)
		return result
	}

	targets := ranking.ResolveTiers(entries, s.sizes)
	current := map[string]ranking.MemberSet{}
	for _, tier := range orderedTiers(roleIDs) {
		roleID := roleIDs[tier]
		if roleID == "" {
			continue
		}
		if _, seen := current[roleID]; seen {
			log.Warn("Role is configured for more than one tier, using the first", "period", period, "tier", tier, "role", roleID)
			delete(roleIDs, tier)
			continue
		}
		holders, err := s.directory.CurrentHolders(ctx, roleID)
		if err != nil {
			log.Error("Failed to read role holders, skipping tier", "period", period, "tier", tier, "role", roleID, "error", err)
			s.metrics.IncRoleActionFailures("read")
			result.Skipped = append(result.Skipped, tier)
			continue
		}
		set := ranking.MemberSet{}
		for _, key := range holders {
			set[key] = struct{}{}
		}
		current[roleID] = set
	}

	result.Planned = Plan(targets, current, roleIDs)
	if dryRun {
		for _, a := range result.Planned {
			log.Info("Dry run: would change role", "period", period, "action", a.Kind, "tier", a.Tier, "role", a.RoleID, "member", a.MemberKey)
		}
		return result
	}

	// Plan keeps each role's actions together. A revoke refused because it
	// would empty the role is retried after that role's grants.
	var deferred []Action
	flush := func() {
		for _, a := range deferred {
			s.apply(ctx, period, a, &result)
		}
		deferred = nil
	}
	for i, a := range result.Planned {
		if i > 0 && result.Planned[i-1].RoleID != a.RoleID {
			flush()
		}
		err := s.do(ctx, a)
		if a.Kind == Revoke && errors.Is(err, ErrLastHolder) {
			log.Debug("Revoke would empty role, retrying after grants", "period", period, "role", a.RoleID, "member", a.MemberKey)
			deferred = append(deferred, a)
			continue
		}
		s.record(period, a, err, &result)
	}
	flush()
	log.Info("Roles synchronized", "period", period, "applied", len(result.Applied), "failed", len(result.Failed))
	return result
}

func (s *synchronizer) do(ctx context.Context, a Action) error {
	switch a.Kind {
	case Revoke:
		return s.directory.RevokeRole(ctx, a.RoleID, a.MemberKey)
	case Grant:
		return s.directory.GrantRole(ctx, a.RoleID, a.MemberKey)
	}
	return fmt.Errorf("unknown role action %q", a.Kind)
}

func (s *synchronizer) apply(ctx context.Context, period standings.Period, a Action, result *Result) {
	s.record(period, a, s.do(ctx, a), result)
}

func (s *synchronizer) record(period standings.Period, a Action, err error, result *Result) {
	if err != nil {
		log.Error("Failed to change role", "period", period, "action", a.Kind, "tier", a.Tier, "role", a.RoleID, "member", a.MemberKey, "error", err)
		s.metrics.IncRoleActionFailures(string(a.Kind))
		result.Failed = append(result.Failed, a)
		return
	}
	s.metrics.IncRoleActions(string(a.Kind))
	result.Applied = append(result.Applied, a)
}

// orderedTiers returns the known tiers first, then any other configured
// tier by name.
func orderedTiers(roleIDs map[ranking.Tier]string) []ranking.Tier {
	tiers := make([]ranking.Tier, 0, len(roleIDs))
	for _, t := range ranking.Tiers {
		if _, ok := roleIDs[t]; ok {
			tiers = append(tiers, t)
		}
	}
	var extra []ranking.Tier
	for t := range roleIDs {
		if !slices.Contains(ranking.Tiers, t) {
			extra = append(extra, t)
		}
	}
	slices.Sort(extra)
	return append(tiers, extra...)
}

func sortedKeys(set ranking.MemberSet) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
