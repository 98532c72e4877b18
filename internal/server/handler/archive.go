package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/AI-Betting-Arena/arenaboard/internal/domain"
)

// exportPrefix is the object-key prefix the archiver writes weekly JSON
// exports under.
const exportPrefix = "archive/weeks/"

// ArchiveHandler serves read access to archived weeks. It is registered only
// when the service runs with a snapshot store.
type ArchiveHandler struct {
	snapshots domain.SnapshotStore
	standings domain.StandingsStore // may be nil
	exports   domain.BlobReader     // may be nil
	logger    *slog.Logger
}

// NewArchiveHandler creates an ArchiveHandler.
func NewArchiveHandler(snapshots domain.SnapshotStore, standings domain.StandingsStore, exports domain.BlobReader, logger *slog.Logger) *ArchiveHandler {
	return &ArchiveHandler{
		snapshots: snapshots,
		standings: standings,
		exports:   exports,
		logger:    logHandler(logger, "archive"),
	}
}

// snapshotsResponse wraps the snapshot list with pagination metadata.
type snapshotsResponse struct {
	Snapshots []domain.MatchSnapshot `json:"snapshots"`
	Total     int64                  `json:"total"`
	Limit     int                    `json:"limit"`
	Offset    int                    `json:"offset"`
}

// ListSnapshots returns archived match snapshots within a date range.
// GET /api/archive/snapshots?from=2024-01-29&to=2024-02-05&limit=50&offset=0
//
// Dates use YYYY-MM-DD; to is exclusive. Missing bounds default to the last
// 30 days.
func (h *ArchiveHandler) ListSnapshots(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := parseListOpts(r)

	to := time.Now().UTC().Truncate(24 * time.Hour).AddDate(0, 0, 1)
	from := to.AddDate(0, 0, -30)

	if v := q.Get("from"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "from must be YYYY-MM-DD")
			return
		}
		from = t
	}
	if v := q.Get("to"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "to must be YYYY-MM-DD")
			return
		}
		to = t
	}
	if !from.Before(to) {
		writeError(w, http.StatusBadRequest, "from must be before to")
		return
	}

	snaps, err := h.snapshots.ListByWeek(r.Context(), from, to)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "list snapshots failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to list snapshots")
		return
	}

	total := int64(len(snaps))
	snaps = paginate(snaps, opts)
	if snaps == nil {
		snaps = []domain.MatchSnapshot{}
	}

	writeJSON(w, http.StatusOK, snapshotsResponse{
		Snapshots: snaps,
		Total:     total,
		Limit:     opts.Limit,
		Offset:    opts.Offset,
	})
}

// GetStandingsHistory returns the archived leaderboard for one ISO week.
// GET /api/archive/standings/{isoWeek}, e.g. /api/archive/standings/2024-W05
func (h *ArchiveHandler) GetStandingsHistory(w http.ResponseWriter, r *http.Request) {
	if h.standings == nil {
		writeError(w, http.StatusNotFound, "standings history not enabled")
		return
	}

	isoWeek := pathParam(r, "isoWeek")
	if isoWeek == "" {
		writeError(w, http.StatusBadRequest, "missing week label")
		return
	}

	records, err := h.standings.ListWeek(r.Context(), isoWeek)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "get standings history failed",
			slog.String("iso_week", isoWeek),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to get standings history")
		return
	}
	if len(records) == 0 {
		writeError(w, http.StatusNotFound, "no standings archived for week")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"isoWeek": isoWeek,
		"records": records,
	})
}

// exportInfo describes one weekly JSON export in object storage.
type exportInfo struct {
	ISOWeek      string    `json:"isoWeek"`
	Path         string    `json:"path"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"lastModified"`
}

// ListExports returns the weekly JSON exports present in object storage.
// GET /api/archive/exports
func (h *ArchiveHandler) ListExports(w http.ResponseWriter, r *http.Request) {
	if h.exports == nil {
		writeError(w, http.StatusNotFound, "export storage not enabled")
		return
	}

	infos, err := h.exports.List(r.Context(), exportPrefix)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "list exports failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to list exports")
		return
	}

	exports := make([]exportInfo, 0, len(infos))
	for _, info := range infos {
		isoWeek := strings.TrimSuffix(strings.TrimPrefix(info.Path, exportPrefix), ".json")
		exports = append(exports, exportInfo{
			ISOWeek:      isoWeek,
			Path:         info.Path,
			Size:         info.Size,
			LastModified: info.LastModified,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{"exports": exports})
}

// GetExport streams one week's JSON export.
// GET /api/archive/exports/{isoWeek}, e.g. /api/archive/exports/2024-W05
func (h *ArchiveHandler) GetExport(w http.ResponseWriter, r *http.Request) {
	if h.exports == nil {
		writeError(w, http.StatusNotFound, "export storage not enabled")
		return
	}

	isoWeek := pathParam(r, "isoWeek")
	if isoWeek == "" {
		writeError(w, http.StatusBadRequest, "missing week label")
		return
	}

	body, err := h.exports.Get(r.Context(), exportPrefix+isoWeek+".json")
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "no export for week")
			return
		}
		h.logger.ErrorContext(r.Context(), "get export failed",
			slog.String("iso_week", isoWeek),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to get export")
		return
	}
	defer body.Close()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, body); err != nil {
		h.logger.WarnContext(r.Context(), "stream export failed",
			slog.String("iso_week", isoWeek),
			slog.String("error", err.Error()),
		)
	}
}

// paginate applies list options to an in-memory slice.
func paginate[T any](items []T, opts domain.ListOpts) []T {
	if opts.Offset >= len(items) {
		return nil
	}
	items = items[opts.Offset:]
	if opts.Limit > 0 && opts.Limit < len(items) {
		items = items[:opts.Limit]
	}
	return items
}
