package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/AI-Betting-Arena/arenaboard/internal/archive"
	"github.com/AI-Betting-Arena/arenaboard/internal/lifecycle"
	"github.com/AI-Betting-Arena/arenaboard/internal/listing"
	"github.com/AI-Betting-Arena/arenaboard/internal/server"
	"github.com/AI-Betting-Arena/arenaboard/internal/server/handler"
	"github.com/AI-Betting-Arena/arenaboard/internal/watch"
)

// ServeMode runs only the HTTP API: weekly listings, match detail, and the
// leaderboard, all assembled on demand from the upstream feed (through the
// Redis caches when available).
func (a *App) ServeMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting serve mode")

	if !a.cfg.Server.Enabled {
		return fmt.Errorf("serve mode: server.enabled is false")
	}

	g, ctx := errgroup.WithContext(ctx)
	a.startHTTPServer(ctx, g, deps)
	return g.Wait()
}

// WatchMode runs the live-refresh engine: one poller per non-terminal match
// in the current week plus the leaderboard poller. The HTTP API is started
// too when enabled, so dashboards read the cache the watchers keep warm.
func (a *App) WatchMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting watch mode")

	g, ctx := errgroup.WithContext(ctx)

	a.startWatchManager(ctx, g, deps)
	if a.cfg.Server.Enabled {
		a.startHTTPServer(ctx, g, deps)
	}

	return g.Wait()
}

// ArchiveMode runs only the weekly archive on its cron schedule.
func (a *App) ArchiveMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting archive mode")

	if !a.cfg.Archive.Enabled {
		return fmt.Errorf("archive mode: archive.enabled is false")
	}

	g, ctx := errgroup.WithContext(ctx)
	a.startArchiver(ctx, g, deps)
	return g.Wait()
}

// FullMode starts all subsystems: the live-refresh engine, the weekly archive
// schedule, and the HTTP server.
func (a *App) FullMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting full mode")

	g, ctx := errgroup.WithContext(ctx)

	a.startWatchManager(ctx, g, deps)
	if a.cfg.Archive.Enabled {
		a.startArchiver(ctx, g, deps)
	}
	if a.cfg.Server.Enabled {
		a.startHTTPServer(ctx, g, deps)
	}

	return g.Wait()
}

// newResolver builds the shared status resolver.
func (a *App) newResolver() *lifecycle.Resolver {
	return lifecycle.NewResolver(a.logger)
}

// startWatchManager adds the live-refresh manager to the errgroup.
func (a *App) startWatchManager(ctx context.Context, g *errgroup.Group, deps *Dependencies) {
	mgr := watch.NewManager(
		deps.Provider,
		deps.Provider,
		a.newResolver(),
		deps.MatchCache,
		deps.StandingsCache,
		deps.Notifier,
		watch.ManagerConfig{
			ScanInterval:        a.cfg.Poll.ScanInterval.Duration,
			MatchInterval:       a.cfg.Poll.MatchInterval.Duration,
			LeaderboardInterval: a.cfg.Poll.LeaderboardInterval.Duration,
		},
		a.logger,
	)
	g.Go(func() error {
		return mgr.Run(ctx)
	})
}

// startArchiver adds the weekly archive cron loop to the errgroup. It
// requires the snapshot store; callers reach here only in archive-capable
// modes where Wire created one.
func (a *App) startArchiver(ctx context.Context, g *errgroup.Group, deps *Dependencies) {
	arch := archive.New(archive.Config{
		Matches:     deps.Provider,
		Leaderboard: deps.Provider,
		Resolver:    a.newResolver(),
		Snapshots:   deps.SnapshotStore,
		Standings:   deps.StandingsStore,
		Blob:        deps.BlobWriter,
		Locks:       deps.LockManager,
		Notifier:    deps.Notifier,
		Logger:      a.logger,
	})
	cronExpr := a.cfg.Archive.Cron
	g.Go(func() error {
		return arch.RunCron(ctx, cronExpr)
	})
}

// startHTTPServer adds the HTTP server goroutine plus a shutdown watcher to
// the errgroup. The listing and leaderboard services read through the Redis
// caches when wired; the archive endpoints register only when Postgres is.
func (a *App) startHTTPServer(ctx context.Context, g *errgroup.Group, deps *Dependencies) {
	assembler := listing.NewAssembler(deps.Provider, a.newResolver(), nil, a.logger)
	if deps.MatchCache != nil {
		assembler = assembler.WithMatchCache(deps.MatchCache)
	}

	var listings handler.ListingService = assembler
	var matches handler.MatchService = assembler
	if deps.ListingCache != nil {
		cached := listing.NewCachedAssembler(assembler, deps.ListingCache, a.logger)
		listings = cached
		matches = cached
	}

	standings := listing.NewStandingsService(deps.Provider, deps.StandingsCache, a.logger)

	handlers := server.Handlers{
		Health:      handler.NewHealthHandler(a.logger),
		Listings:    handler.NewListingHandler(listings, a.logger),
		Matches:     handler.NewMatchHandler(matches, a.logger),
		Leaderboard: handler.NewLeaderboardHandler(standings, a.logger),
	}
	if deps.SnapshotStore != nil {
		handlers.Archive = handler.NewArchiveHandler(deps.SnapshotStore, deps.StandingsStore, deps.BlobReader, a.logger)
	}

	srv := server.NewServer(server.Config{
		Port:        a.cfg.Server.Port,
		CORSOrigins: a.cfg.Server.CORSOrigins,
		APIKey:      a.cfg.Server.APIKey,
		RateLimit:   a.cfg.Server.RateLimit,
		RateWindow:  a.cfg.Server.RateWindow.Duration,
	}, handlers, deps.RateLimiter, a.logger)

	g.Go(func() error {
		a.logger.InfoContext(ctx, "HTTP server listening",
			slog.Int("port", a.cfg.Server.Port),
		)
		return srv.Start()
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			a.logger.Warn("HTTP server shutdown", slog.String("error", err.Error()))
		}
		return ctx.Err()
	})
}
