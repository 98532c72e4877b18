package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/AI-Betting-Arena/arenaboard/internal/domain"
	"github.com/AI-Betting-Arena/arenaboard/internal/listing"
)

// MatchService is what the match handler needs from the assembly layer.
type MatchService interface {
	GetMatch(ctx context.Context, id string) (listing.Entry, error)
}

// MatchHandler serves single-match detail lookups.
type MatchHandler struct {
	matches MatchService
	logger  *slog.Logger
}

// NewMatchHandler creates a MatchHandler.
func NewMatchHandler(matches MatchService, logger *slog.Logger) *MatchHandler {
	return &MatchHandler{
		matches: matches,
		logger:  logHandler(logger, "match"),
	}
}

// GetMatch returns one match with its resolved status and badge.
// GET /api/matches/{id}
func (h *MatchHandler) GetMatch(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing match id")
		return
	}

	entry, err := h.matches.GetMatch(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "match not found")
			return
		}
		h.logger.ErrorContext(r.Context(), "get match failed",
			slog.String("match_id", id),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusBadGateway, "failed to get match")
		return
	}

	writeJSON(w, http.StatusOK, entry)
}
