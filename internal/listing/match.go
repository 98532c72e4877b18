package listing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/AI-Betting-Arena/arenaboard/internal/domain"
	"github.com/AI-Betting-Arena/arenaboard/internal/lifecycle"
)

// WithMatchCache equips the assembler with a read-through match cache used by
// GetMatch.
func (a *Assembler) WithMatchCache(cache domain.MatchCache) *Assembler {
	a.matchCache = cache
	return a
}

// GetMatch returns one match with its resolved status and badge. It reads
// through the match cache when one is configured: a cached summary is resolved
// against the current clock, so the status stays current even when the
// summary itself is up to a minute old.
func (a *Assembler) GetMatch(ctx context.Context, id string) (Entry, error) {
	now := a.now()

	if a.matchCache != nil {
		if m, err := a.matchCache.Get(ctx, id); err == nil {
			return a.entry(m, now), nil
		} else if !errors.Is(err, domain.ErrNotFound) {
			a.logger.WarnContext(ctx, "match cache read failed",
				slog.String("match_id", id),
				slog.String("error", err.Error()),
			)
		}
	}

	m, err := a.provider.FetchMatch(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return Entry{}, fmt.Errorf("listing: match %s: %w", id, domain.ErrNotFound)
		}
		return Entry{}, fmt.Errorf("listing: fetch match %s: %w", id, err)
	}

	if a.matchCache != nil {
		if err := a.matchCache.Set(ctx, m); err != nil {
			a.logger.WarnContext(ctx, "match cache write failed",
				slog.String("match_id", id),
				slog.String("error", err.Error()),
			)
		}
	}
	return a.entry(m, now), nil
}

func (a *Assembler) entry(m domain.MatchSummary, now time.Time) Entry {
	status := a.resolver.ResolveMatch(m, now)
	return Entry{
		Match:  m,
		Status: status,
		Badge:  lifecycle.BadgeFor(status, m.StartTime, now),
	}
}
