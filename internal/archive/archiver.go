// Package archive persists finished weeks: terminal-status matches go to the
// snapshot store, the leaderboard to standings history, and a combined JSON
// export to object storage.
package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/AI-Betting-Arena/arenaboard/internal/domain"
	"github.com/AI-Betting-Arena/arenaboard/internal/lifecycle"
	"github.com/AI-Betting-Arena/arenaboard/internal/notify"
	"github.com/AI-Betting-Arena/arenaboard/internal/week"
)

// lockTTL bounds how long a crashed run can block the next attempt.
const lockTTL = 10 * time.Minute

// Archiver snapshots the previous week once it is fully in the past. Matches
// still in a non-terminal status at run time are skipped and picked up by the
// next run.
type Archiver struct {
	matches     domain.MatchProvider
	leaderboard domain.LeaderboardProvider // may be nil
	resolver    *lifecycle.Resolver
	snapshots   domain.SnapshotStore
	standings   domain.StandingsStore // may be nil
	blob        domain.BlobWriter     // may be nil
	locks       domain.LockManager    // may be nil
	notifier    *notify.Notifier      // may be nil
	logger      *slog.Logger
	now         func() time.Time
}

// Config carries the archiver's collaborators. Matches, Resolver and
// Snapshots are required; everything else degrades gracefully when nil.
type Config struct {
	Matches     domain.MatchProvider
	Leaderboard domain.LeaderboardProvider
	Resolver    *lifecycle.Resolver
	Snapshots   domain.SnapshotStore
	Standings   domain.StandingsStore
	Blob        domain.BlobWriter
	Locks       domain.LockManager
	Notifier    *notify.Notifier
	Logger      *slog.Logger
}

// New creates an Archiver.
func New(cfg Config) *Archiver {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Archiver{
		matches:     cfg.Matches,
		leaderboard: cfg.Leaderboard,
		resolver:    cfg.Resolver,
		snapshots:   cfg.Snapshots,
		standings:   cfg.Standings,
		blob:        cfg.Blob,
		locks:       cfg.Locks,
		notifier:    cfg.Notifier,
		logger:      logger.With(slog.String("component", "archiver")),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// weekExport is the JSON document written to object storage for one week.
type weekExport struct {
	ISOWeek   string                 `json:"isoWeek"`
	FromDate  string                 `json:"fromDate"`
	ToDate    string                 `json:"toDate"`
	Matches   []domain.MatchSnapshot `json:"matches"`
	Standings []domain.AgentStanding `json:"standings,omitempty"`
	CreatedAt time.Time              `json:"createdAt"`
}

// Run archives the previous week. Concurrent runs for the same week are
// serialized through the lock manager; the loser skips the run without error.
func (a *Archiver) Run(ctx context.Context) error {
	now := a.now()
	win := week.ForInstant(now, week.Previous)
	isoWeek := win.ISOLabel()

	if a.locks != nil {
		release, err := a.locks.Acquire(ctx, "archive:"+isoWeek, lockTTL)
		if err != nil {
			if errors.Is(err, domain.ErrLockHeld) {
				a.logger.Info("archive already running elsewhere", slog.String("week", isoWeek))
				return nil
			}
			return fmt.Errorf("archive: acquire lock %s: %w", isoWeek, err)
		}
		defer release()
	}

	a.logger.Info("archive run started",
		slog.String("week", isoWeek),
		slog.String("from", win.FromDate()),
		slog.String("to", win.ToDate()),
	)

	matches, err := a.matches.FetchMatches(ctx, win.FromDate(), win.ToDate())
	if err != nil {
		return fmt.Errorf("archive: fetch week %s: %w", isoWeek, err)
	}

	snaps := a.collectTerminal(matches, now)
	if err := a.snapshots.UpsertBatch(ctx, snaps); err != nil {
		return fmt.Errorf("archive: store snapshots %s: %w", isoWeek, err)
	}

	standings, err := a.archiveStandings(ctx, isoWeek)
	if err != nil {
		return err
	}

	if a.blob != nil {
		export := weekExport{
			ISOWeek:   isoWeek,
			FromDate:  win.FromDate(),
			ToDate:    win.ToDate(),
			Matches:   snaps,
			Standings: standings,
			CreatedAt: now,
		}
		data, err := json.Marshal(export)
		if err != nil {
			return fmt.Errorf("archive: marshal export %s: %w", isoWeek, err)
		}
		path := exportPath(isoWeek)
		if err := a.blob.Put(ctx, path, bytes.NewReader(data), "application/json"); err != nil {
			return fmt.Errorf("archive: upload export %s: %w", isoWeek, err)
		}
		a.logger.Info("export uploaded", slog.String("path", path), slog.Int("bytes", len(data)))
	}

	a.logger.Info("archive run complete",
		slog.String("week", isoWeek),
		slog.Int("matches_total", len(matches)),
		slog.Int("snapshots", len(snaps)),
		slog.Int("standings", len(standings)),
	)

	if a.notifier != nil {
		_ = a.notifier.Notify(ctx, notify.EventArchiveComplete,
			"Weekly archive complete",
			fmt.Sprintf("Week %s: %d of %d matches archived.", isoWeek, len(snaps), len(matches)),
		)
	}
	return nil
}

// collectTerminal converts the week's terminal matches into snapshots.
func (a *Archiver) collectTerminal(matches []domain.MatchSummary, now time.Time) []domain.MatchSnapshot {
	snaps := make([]domain.MatchSnapshot, 0, len(matches))
	for _, m := range matches {
		status := a.resolver.ResolveMatch(m, now)
		if !status.Terminal() {
			a.logger.Debug("match not yet terminal, skipping",
				slog.String("match_id", m.ID),
				slog.String("status", string(status)),
			)
			continue
		}
		snap := domain.MatchSnapshot{
			MatchID:     m.ID,
			LeagueID:    m.LeagueID,
			LeagueName:  m.LeagueName,
			HomeTeam:    m.HomeTeam,
			AwayTeam:    m.AwayTeam,
			StartTime:   m.StartTime,
			FinalStatus: status,
			Odds:        m.Odds,
			Predictions: m.Predictions,
			ArchivedAt:  now,
		}
		if m.Score != nil {
			home, away := m.Score.Home, m.Score.Away
			snap.HomeScore = &home
			snap.AwayScore = &away
		}
		snaps = append(snaps, snap)
	}
	return snaps
}

// archiveStandings records the leaderboard under the archived week. A feed
// failure here is non-fatal: snapshots are already stored.
func (a *Archiver) archiveStandings(ctx context.Context, isoWeek string) ([]domain.AgentStanding, error) {
	if a.leaderboard == nil || a.standings == nil {
		return nil, nil
	}

	standings, err := a.leaderboard.FetchLeaderboard(ctx)
	if err != nil {
		a.logger.Warn("leaderboard fetch failed, standings not archived",
			slog.String("week", isoWeek),
			slog.String("error", err.Error()),
		)
		return nil, nil
	}

	if err := a.standings.InsertWeek(ctx, isoWeek, standings); err != nil {
		return nil, fmt.Errorf("archive: store standings %s: %w", isoWeek, err)
	}
	return standings, nil
}

// exportPath builds the object key for a week's JSON export.
//
//	archive/weeks/2024-W05.json
func exportPath(isoWeek string) string {
	return fmt.Sprintf("archive/weeks/%s.json", isoWeek)
}
