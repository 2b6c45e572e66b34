package recs

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/time/rate"
)

// Scheduler decides when the engine rebuilds. It replaces in-request
// rebuild triggers with an explicit staleness policy: rebuild when enough
// interaction updates have accumulated or the snapshot has aged out,
// checked on a fixed tick and rate-limited so update bursts cannot cause
// back-to-back rebuilds.
type Scheduler struct {
	engine         *Engine
	dirtyThreshold int64
	maxStaleness   time.Duration
	checkInterval  time.Duration
	limiter        *rate.Limiter
}

// SchedulerConfig tunes the rebuild policy.
type SchedulerConfig struct {
	DirtyThreshold int64         // rebuild after this many interaction updates
	MaxStaleness   time.Duration // rebuild when the snapshot is older than this
	CheckInterval  time.Duration // how often the policy is evaluated
	MinRebuildGap  time.Duration // hard floor between two rebuilds
}

// NewScheduler creates a scheduler for the engine. Zero fields get
// conservative defaults.
func NewScheduler(engine *Engine, cfg SchedulerConfig) *Scheduler {
	if cfg.DirtyThreshold <= 0 {
		cfg.DirtyThreshold = 50
	}
	if cfg.MaxStaleness <= 0 {
		cfg.MaxStaleness = 30 * time.Minute
	}
	if cfg.CheckInterval <= 0 {
		cfg.CheckInterval = 15 * time.Second
	}
	if cfg.MinRebuildGap <= 0 {
		cfg.MinRebuildGap = time.Minute
	}
	return &Scheduler{
		engine:         engine,
		dirtyThreshold: cfg.DirtyThreshold,
		maxStaleness:   cfg.MaxStaleness,
		checkInterval:  cfg.CheckInterval,
		limiter:        rate.NewLimiter(rate.Every(cfg.MinRebuildGap), 1),
	}
}

// Run evaluates the rebuild policy until ctx is canceled. A failed rebuild
// is logged and retried on the next due tick; the engine keeps serving the
// previous snapshot in the meantime.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !s.due() {
				continue
			}
			if !s.limiter.Allow() {
				continue
			}
			if err := s.engine.Rebuild(ctx); err != nil {
				slog.Error("scheduler: rebuild failed", slog.Any("error", err))
			}
		}
	}
}

// due reports whether the rebuild policy has triggered.
func (s *Scheduler) due() bool {
	if !s.engine.Ready() {
		return true
	}
	if s.engine.DirtyCount() >= s.dirtyThreshold {
		return true
	}
	return time.Since(s.engine.BuiltAt()) >= s.maxStaleness
}
