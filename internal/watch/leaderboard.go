package watch

import (
	"context"
	"log/slog"
	"time"

	"github.com/AI-Betting-Arena/arenaboard/internal/domain"
	"github.com/AI-Betting-Arena/arenaboard/internal/poll"
)

// LeaderboardWatcher polls the agent leaderboard at a fixed cadence. Unlike
// match watchers it has no terminal state: standings keep moving as long as
// the service runs, so the subscription polls unconditionally until Stop.
type LeaderboardWatcher struct {
	cache  domain.StandingsCache // may be nil
	logger *slog.Logger
	sub    *poll.Subscription[[]domain.AgentStanding]
}

// NewLeaderboardWatcher starts polling the leaderboard provider.
func NewLeaderboardWatcher(
	provider domain.LeaderboardProvider,
	interval time.Duration,
	cache domain.StandingsCache,
	logger *slog.Logger,
) *LeaderboardWatcher {
	if logger == nil {
		logger = slog.Default()
	}
	w := &LeaderboardWatcher{
		cache:  cache,
		logger: logger.With(slog.String("component", "leaderboard_watcher")),
	}

	w.sub = poll.Subscribe(
		func(ctx context.Context) ([]domain.AgentStanding, error) {
			return provider.FetchLeaderboard(ctx)
		},
		nil,
		poll.Options[[]domain.AgentStanding]{
			Interval: interval,
			Enabled:  true,
			OnUpdate: w.onUpdate,
			OnError: func(err error) {
				// Last-good standings stay served; just record the failure.
				w.logger.Warn("leaderboard refresh failed", slog.String("error", err.Error()))
			},
			Logger: logger,
		},
	)
	return w
}

func (w *LeaderboardWatcher) onUpdate(standings []domain.AgentStanding) {
	w.logger.Debug("leaderboard updated", slog.Int("agents", len(standings)))
	if w.cache == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := w.cache.Set(ctx, standings); err != nil {
		w.logger.Warn("standings cache update failed", slog.String("error", err.Error()))
	}
}

// Standings returns the latest standings and when they were fetched. The
// returned slice may be stale across upstream failures but is never blanked
// by one.
func (w *LeaderboardWatcher) Standings() ([]domain.AgentStanding, time.Time) {
	return w.sub.Data()
}

// LastError returns the most recent fetch error, nil after a success.
func (w *LeaderboardWatcher) LastError() error {
	return w.sub.LastError()
}

// Refresh forces an out-of-band fetch.
func (w *LeaderboardWatcher) Refresh(ctx context.Context) error {
	return w.sub.Refresh(ctx)
}

// Stop tears the watcher down.
func (w *LeaderboardWatcher) Stop() {
	w.sub.Stop()
}
