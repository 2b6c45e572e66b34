// go_recs is the job recommendation engine daemon.
//
// Owns the recommendation index for the job board: builds the user-item
// interaction matrix and similarity matrices from the interaction store,
// serves blended content/collaborative recommendations to embedding
// callers, and keeps the index fresh via a staleness-driven scheduler.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/anatolykoptev/go-kit/env"
	"github.com/joho/godotenv"

	"github.com/anatolykoptev/go_recs/internal/recs"
	"github.com/anatolykoptev/go_recs/internal/store"
)

var version = "dev"

func main() {
	_ = godotenv.Load()

	slog.Info("starting go_recs", slog.String("version", version))

	st, err := openStore()
	if err != nil {
		slog.Error("store init failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer st.Close()

	cache := recs.NewResultCache(
		env.Str("REDIS_URL", ""),
		env.Duration("CACHE_TTL", 15*time.Minute),
		env.Int("CACHE_MAX_ENTRIES", 1000),
		env.Duration("CACHE_CLEANUP_INTERVAL", 300*time.Second),
	)

	var model *recs.ModelClient
	if url := env.Str("MODEL_URL", ""); url != "" {
		model = recs.NewModelClient(url, env.Str("MODEL_SERVICE_SECRET", ""))
	} else {
		slog.Info("model service not configured, skill-matching path disabled")
	}

	engine := recs.New(st, cache, model, recs.Config{
		NeighborThreshold: env.Float("NEIGHBOR_THRESHOLD", recs.DefaultNeighborThreshold),
		TrendingWindow:    env.Duration("TRENDING_WINDOW", recs.DefaultTrendingWindow),
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// First build is best-effort: the scheduler retries until it succeeds,
	// and the engine serves empty results until then.
	buildCtx, cancel := context.WithTimeout(ctx, env.Duration("REBUILD_TIMEOUT", 2*time.Minute))
	if err := engine.Rebuild(buildCtx); err != nil {
		slog.Error("initial rebuild failed, serving empty index", slog.Any("error", err))
	}
	cancel()

	sched := recs.NewScheduler(engine, recs.SchedulerConfig{
		DirtyThreshold: int64(env.Int("REBUILD_DIRTY_THRESHOLD", 50)),
		MaxStaleness:   env.Duration("REBUILD_MAX_STALENESS", 30*time.Minute),
		CheckInterval:  env.Duration("REBUILD_CHECK_INTERVAL", 15*time.Second),
		MinRebuildGap:  env.Duration("REBUILD_MIN_GAP", time.Minute),
	})
	go sched.Run(ctx)

	<-ctx.Done()
	slog.Info("shutting down")
	fmt.Print(recs.FormatMetrics())
}

// openStore picks the backend: Postgres when DATABASE_URL is set, a local
// SQLite file otherwise.
func openStore() (store.Store, error) {
	if url := env.Str("DATABASE_URL", ""); url != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return store.ConnectPostgres(ctx, url)
	}
	path := env.Str("SQLITE_PATH", filepath.Join(os.Getenv("HOME"), ".go_recs", "store.db"))
	return store.OpenSQLite(path)
}
