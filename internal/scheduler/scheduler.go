package scheduler

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// DefaultInterval is the time between two ticks.
const DefaultInterval = 24 * time.Hour

// Task is one step of a tick. Tasks run in order; a task's failure is its
// own business and never stops the loop.
type Task func(ctx context.Context)

// Loop runs its tasks right away and then once per interval.
type Loop struct {
	interval time.Duration
	tasks    []Task
}

// New creates a Loop. A non-positive interval uses DefaultInterval.
func New(interval time.Duration, tasks ...Task) *Loop {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Loop{interval: interval, tasks: tasks}
}

// Run blocks until ctx is cancelled. Ticks never overlap: a tick that runs
// longer than the interval delays the next one.
func (l *Loop) Run(ctx context.Context) {
	log.Info("Scheduler started", "interval", l.interval)
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		l.tick(ctx)
		select {
		case <-ctx.Done():
			log.Info("Scheduler stopped")
			return
		case <-ticker.C:
		}
	}
}

func (l *Loop) tick(ctx context.Context) {
	for _, task := range l.tasks {
		if ctx.Err() != nil {
			return
		}
		l.runTask(ctx, task)
	}
}

func (l *Loop) runTask(ctx context.Context, task Task) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("Recovered from panic in scheduled task", "panic", r)
		}
	}()
	task(ctx)
}
