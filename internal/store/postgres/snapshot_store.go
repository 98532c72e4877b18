package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/AI-Betting-Arena/arenaboard/internal/domain"
)

// SnapshotStore implements domain.SnapshotStore using PostgreSQL.
type SnapshotStore struct {
	pool *pgxpool.Pool
}

// NewSnapshotStore creates a SnapshotStore backed by the given connection pool.
func NewSnapshotStore(pool *pgxpool.Pool) *SnapshotStore {
	return &SnapshotStore{pool: pool}
}

const upsertSnapshotQuery = `
	INSERT INTO match_snapshots (
		match_id, league_id, league_name, home_team, away_team,
		start_time, final_status, home_score, away_score,
		odds_home, odds_draw, odds_away, predictions, archived_at
	) VALUES (
		$1, $2, $3, $4, $5,
		$6, $7, $8, $9,
		$10, $11, $12, $13, $14
	)
	ON CONFLICT (match_id) DO UPDATE SET
		final_status = EXCLUDED.final_status,
		home_score   = EXCLUDED.home_score,
		away_score   = EXCLUDED.away_score,
		predictions  = EXCLUDED.predictions,
		archived_at  = EXCLUDED.archived_at`

// UpsertBatch writes snapshots in a single batch. Re-archiving a match is an
// update, so the weekly run stays idempotent.
func (s *SnapshotStore) UpsertBatch(ctx context.Context, snaps []domain.MatchSnapshot) error {
	if len(snaps) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, snap := range snaps {
		batch.Queue(upsertSnapshotQuery,
			snap.MatchID, snap.LeagueID, snap.LeagueName,
			snap.HomeTeam, snap.AwayTeam,
			snap.StartTime, string(snap.FinalStatus),
			snap.HomeScore, snap.AwayScore,
			snap.Odds.Home, snap.Odds.Draw, snap.Odds.Away,
			snap.Predictions, snap.ArchivedAt,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for i := range snaps {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("postgres: upsert snapshot batch item %d: %w", i, err)
		}
	}
	return nil
}

// ListByWeek returns snapshots whose start time falls in [from, to), ordered
// by kickoff.
func (s *SnapshotStore) ListByWeek(ctx context.Context, from, to time.Time) ([]domain.MatchSnapshot, error) {
	const query = `
		SELECT match_id, league_id, league_name, home_team, away_team,
		       start_time, final_status, home_score, away_score,
		       odds_home, odds_draw, odds_away, predictions, archived_at
		FROM match_snapshots
		WHERE start_time >= $1 AND start_time < $2
		ORDER BY start_time, match_id`

	rows, err := s.pool.Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("postgres: list snapshots: %w", err)
	}
	defer rows.Close()

	var snaps []domain.MatchSnapshot
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: scan snapshot: %w", err)
		}
		snaps = append(snaps, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: iterate snapshots: %w", err)
	}
	return snaps, nil
}

// Count returns the total number of archived snapshots.
func (s *SnapshotStore) Count(ctx context.Context) (int64, error) {
	var n int64
	err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM match_snapshots").Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("postgres: count snapshots: %w", err)
	}
	return n, nil
}

func scanSnapshot(row pgx.Row) (domain.MatchSnapshot, error) {
	var snap domain.MatchSnapshot
	var status string
	err := row.Scan(
		&snap.MatchID, &snap.LeagueID, &snap.LeagueName,
		&snap.HomeTeam, &snap.AwayTeam,
		&snap.StartTime, &status,
		&snap.HomeScore, &snap.AwayScore,
		&snap.Odds.Home, &snap.Odds.Draw, &snap.Odds.Away,
		&snap.Predictions, &snap.ArchivedAt,
	)
	if err != nil {
		return domain.MatchSnapshot{}, err
	}
	snap.FinalStatus = domain.MatchStatus(status)
	return snap, nil
}

// Compile-time interface check.
var _ domain.SnapshotStore = (*SnapshotStore)(nil)
