package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/AI-Betting-Arena/arenaboard/internal/domain"
)

// StandingsService is what the leaderboard handler needs.
type StandingsService interface {
	Standings(ctx context.Context) ([]domain.AgentStanding, time.Time, error)
}

// LeaderboardHandler serves the agent leaderboard endpoint.
type LeaderboardHandler struct {
	standings StandingsService
	logger    *slog.Logger
}

// NewLeaderboardHandler creates a LeaderboardHandler.
func NewLeaderboardHandler(standings StandingsService, logger *slog.Logger) *LeaderboardHandler {
	return &LeaderboardHandler{
		standings: standings,
		logger:    logHandler(logger, "leaderboard"),
	}
}

// leaderboardResponse wraps the standings with their fetch time so clients
// can show how fresh the ranking is.
type leaderboardResponse struct {
	Standings []domain.AgentStanding `json:"standings"`
	FetchedAt time.Time              `json:"fetchedAt"`
}

// GetLeaderboard returns the current agent standings.
// GET /api/leaderboard
func (h *LeaderboardHandler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	standings, fetchedAt, err := h.standings.Standings(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "get leaderboard failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusBadGateway, "failed to get leaderboard")
		return
	}

	if standings == nil {
		standings = []domain.AgentStanding{}
	}
	writeJSON(w, http.StatusOK, leaderboardResponse{
		Standings: standings,
		FetchedAt: fetchedAt,
	})
}
