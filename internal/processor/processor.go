package processor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/mauv0809/storm-standings/internal/metrics"
	"github.com/mauv0809/storm-standings/internal/notifier"
	"github.com/mauv0809/storm-standings/internal/ranking"
	"github.com/mauv0809/storm-standings/internal/roles"
	"github.com/mauv0809/storm-standings/internal/standings"
)

// New creates a new Processor. Posts show the top ranking.DefaultLimit entries.
func New(store Store, resolver IdentityResolver, notifier notifier.Notifier, roles roles.Synchronizer, metrics metrics.Metrics, counters metrics.MetricsStore) *Processor {
	return &Processor{
		store:     store,
		resolver:  resolver,
		notifier:  notifier,
		roles:     roles,
		metrics:   metrics,
		counters:  counters,
		postLimit: ranking.DefaultLimit,
	}
}

// RunCycle publishes and synchronizes every period that has a leaderboard
// channel. A failing or panicking period is reported and the others still run.
func (p *Processor) RunCycle(ctx context.Context, dryRun bool) CycleReport {
	p.mu.Lock()
	defer p.mu.Unlock()

	start := time.Now()
	report := CycleReport{RunID: uuid.NewString(), DryRun: dryRun}
	logger := log.With("run_id", report.RunID)
	logger.Info("Starting leaderboard cycle", "dry_run", dryRun)

	root := p.store.Load(ctx)
	p.metrics.SetRegisteredPlayers(len(root.Members()))
	resolver := ranking.NewResolver(p.resolver.ResolveIdentity)

	for _, period := range standings.Periods {
		if err := ctx.Err(); err != nil {
			logger.Warn("Cycle cancelled", "error", err)
			break
		}
		pr := p.runPeriodSafely(ctx, root, period, resolver, dryRun)
		if pr.Error != "" {
			p.metrics.IncPeriodFailures(string(period))
			logger.Error("Period failed", "period", period, "error", pr.Error)
		}
		report.Periods = append(report.Periods, pr)
	}

	p.metrics.IncCyclesRun()
	p.metrics.ObserveCycleDuration(time.Since(start).Seconds())
	if !dryRun {
		p.counters.Increment(metrics.KeyCyclesCompleted)
	}
	logger.Info("Leaderboard cycle finished", "periods", len(report.Periods), "failed", report.Failed(), "duration", time.Since(start))
	return report
}

// RunPeriod runs a single period outside of a full cycle.
func (p *Processor) RunPeriod(ctx context.Context, period standings.Period, dryRun bool) PeriodReport {
	p.mu.Lock()
	defer p.mu.Unlock()
	root := p.store.Load(ctx)
	return p.runPeriodSafely(ctx, root, period, ranking.NewResolver(p.resolver.ResolveIdentity), dryRun)
}

func (p *Processor) runPeriodSafely(ctx context.Context, root standings.RootStore, period standings.Period, resolver *ranking.Resolver, dryRun bool) (report PeriodReport) {
	report = PeriodReport{Period: period}
	defer func() {
		if r := recover(); r != nil {
			log.Error("Recovered from panic while processing period", "period", period, "panic", r)
			report.Error = fmt.Sprintf("panic: %v", r)
		}
	}()
	if err := p.runPeriod(ctx, root, period, resolver, dryRun, &report); err != nil {
		report.Error = err.Error()
	}
	return report
}

// runPeriod publishes first and synchronizes roles second. Roles follow the
// ranking, so they are synchronized even when the post could not be updated.
// A ranking built while some members could not be looked up is incomplete:
// the period is failed and neither the post nor the roles are touched.
func (p *Processor) runPeriod(ctx context.Context, root standings.RootStore, period standings.Period, resolver *ranking.Resolver, dryRun bool, report *PeriodReport) error {
	channel := root.Channels[period]
	if channel == "" {
		log.Debug("No leaderboard channel bound, skipping period", "period", period)
		report.Skipped = true
		return nil
	}

	var lookupErrs []error
	entries := ranking.Rank(root.Period(period), resolver.Func(ctx, func(key string, err error) (standings.Identity, bool) {
		lookupErrs = append(lookupErrs, err)
		return standings.Identity{}, false
	}))
	if len(lookupErrs) > 0 {
		return fmt.Errorf("could not look up %d members: %w", len(lookupErrs), errors.Join(lookupErrs...))
	}
	report.Entries = len(entries)

	var errs []error
	result, err := p.notifier.PublishLeaderboard(ctx, notifier.PublishRequest{
		Period:  period,
		Channel: channel,
		Entries: ranking.Top(entries, p.postLimit),
		Known:   root.Posts[period],
	}, dryRun)
	if err != nil {
		errs = append(errs, fmt.Errorf("publish: %w", err))
	} else {
		report.Post, report.PostAction = result.Ref, result.Action
		if err := p.rememberPost(ctx, period, channel, root.Posts[period], result); err != nil {
			errs = append(errs, err)
		}
	}

	synced := p.roles.Synchronize(ctx, period, entries, dryRun)
	report.RolesApplied, report.RolesFailed = len(synced.Applied), len(synced.Failed)
	return errors.Join(errs...)
}

// rememberPost stores the post reference unless the channel binding changed
// while the post was being published.
func (p *Processor) rememberPost(ctx context.Context, period standings.Period, channel string, known standings.PostRef, result notifier.PublishResult) error {
	switch result.Action {
	case notifier.ActionCreated:
		p.counters.Increment(metrics.KeyPostsCreated)
	case notifier.ActionEdited:
		p.counters.Increment(metrics.KeyPostsEdited)
	default:
		return nil
	}
	if result.Ref == known {
		return nil
	}
	_, err := p.store.Mutate(ctx, func(root *standings.RootStore) error {
		if root.Channels[period] != channel {
			log.Info("Leaderboard channel changed during publish, not storing post", "period", period)
			return nil
		}
		root.Posts[period] = result.Ref
		return nil
	})
	if err != nil {
		return fmt.Errorf("store post reference: %w", err)
	}
	return nil
}
