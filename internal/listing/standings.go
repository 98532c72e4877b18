package listing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/AI-Betting-Arena/arenaboard/internal/domain"
)

// StandingsService serves the agent leaderboard, preferring the cache the
// leaderboard watcher keeps warm and falling back to a direct fetch.
type StandingsService struct {
	provider domain.LeaderboardProvider
	cache    domain.StandingsCache // may be nil
	logger   *slog.Logger
}

// NewStandingsService creates a StandingsService.
func NewStandingsService(provider domain.LeaderboardProvider, cache domain.StandingsCache, logger *slog.Logger) *StandingsService {
	if logger == nil {
		logger = slog.Default()
	}
	return &StandingsService{
		provider: provider,
		cache:    cache,
		logger:   logger.With(slog.String("component", "standings")),
	}
}

// Standings returns the current leaderboard and its fetch time. A cache hit
// never reaches the upstream; on miss the fresh result is written back.
func (s *StandingsService) Standings(ctx context.Context) ([]domain.AgentStanding, time.Time, error) {
	if s.cache != nil {
		standings, fetchedAt, err := s.cache.Get(ctx)
		if err == nil {
			return standings, fetchedAt, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			s.logger.WarnContext(ctx, "standings cache read failed", slog.String("error", err.Error()))
		}
	}

	standings, err := s.provider.FetchLeaderboard(ctx)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("listing: fetch leaderboard: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, standings); err != nil {
			s.logger.WarnContext(ctx, "standings cache write failed", slog.String("error", err.Error()))
		}
	}
	return standings, time.Now().UTC(), nil
}
