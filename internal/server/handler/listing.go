package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/AI-Betting-Arena/arenaboard/internal/domain"
	"github.com/AI-Betting-Arena/arenaboard/internal/listing"
	"github.com/AI-Betting-Arena/arenaboard/internal/week"
)

// ListingService is what the listing handler needs from the assembly layer.
// Declared locally so the handler package does not depend on a concrete
// assembler.
type ListingService interface {
	ListWeek(ctx context.Context, off week.Offset, filter listing.Filter) (listing.WeekListing, error)
}

// ListingHandler serves the weekly listing endpoints.
type ListingHandler struct {
	listings ListingService
	logger   *slog.Logger
}

// NewListingHandler creates a ListingHandler.
func NewListingHandler(listings ListingService, logger *slog.Logger) *ListingHandler {
	return &ListingHandler{
		listings: listings,
		logger:   logHandler(logger, "listing"),
	}
}

// ListWeek returns the grouped listing for one week window.
// GET /api/listings/{offset}?status=LIVE&league=epl
//
// offset is "previous", "current" or "next"; status filters on the resolved
// lifecycle status, league on the exact league code.
func (h *ListingHandler) ListWeek(w http.ResponseWriter, r *http.Request) {
	off, err := week.ParseOffset(pathParam(r, "offset"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "offset must be previous, current or next")
		return
	}

	filter := listing.Filter{
		League: r.URL.Query().Get("league"),
	}
	if s := r.URL.Query().Get("status"); s != "" {
		status := domain.MatchStatus(s)
		if !status.Valid() {
			writeError(w, http.StatusBadRequest, "unknown status filter")
			return
		}
		filter.Status = status
	}

	result, err := h.listings.ListWeek(r.Context(), off, filter)
	if err != nil {
		if errors.Is(err, domain.ErrRateLimited) {
			writeError(w, http.StatusTooManyRequests, "upstream feed rate limited")
			return
		}
		h.logger.ErrorContext(r.Context(), "list week failed",
			slog.String("offset", off.String()),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusBadGateway, "failed to assemble listing")
		return
	}

	writeJSON(w, http.StatusOK, result)
}
