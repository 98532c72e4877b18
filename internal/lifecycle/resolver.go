// Package lifecycle derives display-facing match state from raw feed input:
// the harmonized status, countdown strings, and status badges. Every function
// takes the current instant explicitly; nothing in this package reads the
// wall clock, which is what keeps it testable and lets the polling layer
// re-evaluate on each tick.
package lifecycle

import (
	"log/slog"
	"time"

	"github.com/AI-Betting-Arena/arenaboard/internal/domain"
)

// BettingCloseWindow is how long before kickoff betting closes. The platform
// rule is enforced client-side so the display flips on time even when the
// backend has not pushed a state change at that exact instant.
const BettingCloseWindow = 10 * time.Minute

// coarse maps each documented raw status to its harmonized value. Unknown raw
// values fall back to StatusUpcoming in Resolve.
var coarse = map[domain.RawStatus]domain.MatchStatus{
	domain.RawScheduled: domain.StatusUpcoming,
	domain.RawTimed:     domain.StatusUpcoming,
	domain.RawOpen:      domain.StatusBettingOpen,
	domain.RawLive:      domain.StatusLive,
	domain.RawInPlay:    domain.StatusLive,
	domain.RawPaused:    domain.StatusLive,
	domain.RawSuspended: domain.StatusBettingClosed,
	domain.RawFinished:  domain.StatusSettled,
	domain.RawSettled:   domain.StatusSettled,
	domain.RawPostponed: domain.StatusPostponed,
	domain.RawCancelled: domain.StatusCancelled,
}

// Resolver harmonizes raw feed statuses. The logger is used only to flag
// unknown raw values; the resolved output is a pure function of the inputs.
type Resolver struct {
	logger *slog.Logger
}

// NewResolver creates a Resolver. A nil logger falls back to slog.Default.
func NewResolver(logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{logger: logger.With(slog.String("component", "resolver"))}
}

// Resolve derives the harmonized status for a match from its raw status, its
// scheduled kickoff, and the evaluation instant. It is total: every raw value,
// including ones this build has never seen, maps to exactly one MatchStatus.
//
// Two adjustments are layered on the coarse table:
//
//   - Pre-kickoff: within BettingCloseWindow of the start, UPCOMING and
//     BETTING_OPEN become BETTING_CLOSED.
//   - Post-kickoff: a feed still reporting UPCOMING or BETTING_OPEN after the
//     start is lagging; the match is forced to LIVE rather than showing open
//     betting on a started match.
func (r *Resolver) Resolve(raw domain.RawStatus, start, now time.Time) domain.MatchStatus {
	status, ok := coarse[raw]
	if !ok {
		status = domain.StatusUpcoming
		r.logger.Warn("unknown raw status, defaulting to UPCOMING",
			slog.String("raw_status", string(raw)),
			slog.Time("start", start),
		)
	}

	if status == domain.StatusUpcoming || status == domain.StatusBettingOpen {
		switch {
		case !now.Before(start):
			return domain.StatusLive
		case !now.Before(start.Add(-BettingCloseWindow)):
			return domain.StatusBettingClosed
		}
	}

	return status
}

// ResolveMatch is a convenience wrapper over Resolve for a full summary.
func (r *Resolver) ResolveMatch(m domain.MatchSummary, now time.Time) domain.MatchStatus {
	return r.Resolve(m.RawStatus, m.StartTime, now)
}
