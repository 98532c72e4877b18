package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/AI-Betting-Arena/arenaboard/internal/domain"
)

// StandingsStore implements domain.StandingsStore using PostgreSQL.
type StandingsStore struct {
	pool *pgxpool.Pool
}

// NewStandingsStore creates a StandingsStore backed by the given pool.
func NewStandingsStore(pool *pgxpool.Pool) *StandingsStore {
	return &StandingsStore{pool: pool}
}

const insertStandingQuery = `
	INSERT INTO standings_history (
		iso_week, agent_id, agent_name, rank,
		wins, losses, pushes, roi, streak, last_settled, recorded_at
	) VALUES (
		$1, $2, $3, $4,
		$5, $6, $7, $8, $9, $10, $11
	)
	ON CONFLICT (iso_week, agent_id) DO UPDATE SET
		agent_name   = EXCLUDED.agent_name,
		rank         = EXCLUDED.rank,
		wins         = EXCLUDED.wins,
		losses       = EXCLUDED.losses,
		pushes       = EXCLUDED.pushes,
		roi          = EXCLUDED.roi,
		streak       = EXCLUDED.streak,
		last_settled = EXCLUDED.last_settled,
		recorded_at  = EXCLUDED.recorded_at`

// InsertWeek records one week's leaderboard in a single batch. Re-running the
// archive for a week overwrites that week's rows.
func (s *StandingsStore) InsertWeek(ctx context.Context, isoWeek string, standings []domain.AgentStanding) error {
	if len(standings) == 0 {
		return nil
	}

	recordedAt := time.Now().UTC()
	batch := &pgx.Batch{}
	for _, st := range standings {
		batch.Queue(insertStandingQuery,
			isoWeek, st.AgentID, st.Name, st.Rank,
			st.Wins, st.Losses, st.Pushes, st.ROI, st.Streak,
			st.LastSettled, recordedAt,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for i := range standings {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("postgres: insert standings %s item %d: %w", isoWeek, i, err)
		}
	}
	return nil
}

// ListWeek returns the archived leaderboard for a week, ordered by rank.
func (s *StandingsStore) ListWeek(ctx context.Context, isoWeek string) ([]domain.StandingsRecord, error) {
	const query = `
		SELECT iso_week, agent_id, agent_name, rank,
		       wins, losses, pushes, roi, streak, last_settled, recorded_at
		FROM standings_history
		WHERE iso_week = $1
		ORDER BY rank`

	rows, err := s.pool.Query(ctx, query, isoWeek)
	if err != nil {
		return nil, fmt.Errorf("postgres: list standings %s: %w", isoWeek, err)
	}
	defer rows.Close()

	var records []domain.StandingsRecord
	for rows.Next() {
		var rec domain.StandingsRecord
		err := rows.Scan(
			&rec.ISOWeek, &rec.Standing.AgentID, &rec.Standing.Name, &rec.Standing.Rank,
			&rec.Standing.Wins, &rec.Standing.Losses, &rec.Standing.Pushes,
			&rec.Standing.ROI, &rec.Standing.Streak, &rec.Standing.LastSettled,
			&rec.RecordedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("postgres: scan standings %s: %w", isoWeek, err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: iterate standings %s: %w", isoWeek, err)
	}
	return records, nil
}

// Compile-time interface check.
var _ domain.StandingsStore = (*StandingsStore)(nil)
