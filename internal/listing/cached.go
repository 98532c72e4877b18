package listing

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/AI-Betting-Arena/arenaboard/internal/domain"
	"github.com/AI-Betting-Arena/arenaboard/internal/week"
)

// cacheTTL is deliberately short: a cached listing freezes statuses resolved
// at assembly time, and the betting-close boundary moves minute by minute.
const cacheTTL = 30 * time.Second

// CachedAssembler wraps an Assembler with a Redis-backed listing cache. Only
// unfiltered listings are cached; filtered requests always re-assemble, since
// a filter combination explosion would defeat the cache anyway.
type CachedAssembler struct {
	inner  *Assembler
	cache  domain.ListingCache
	now    func() time.Time
	logger *slog.Logger
}

// NewCachedAssembler wraps inner with cache. A nil cache disables caching and
// delegates every call.
func NewCachedAssembler(inner *Assembler, cache domain.ListingCache, logger *slog.Logger) *CachedAssembler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedAssembler{
		inner:  inner,
		cache:  cache,
		now:    inner.now,
		logger: logger.With(slog.String("component", "listing_cache")),
	}
}

// ListWeek serves an unfiltered listing from the cache when possible, falling
// back to assembly on miss or any cache error.
func (c *CachedAssembler) ListWeek(ctx context.Context, off week.Offset, filter Filter) (WeekListing, error) {
	if c.cache == nil || filter != (Filter{}) {
		return c.inner.ListWeek(ctx, off, filter)
	}

	isoWeek := week.ForInstant(c.now(), off).ISOLabel()

	if payload, err := c.cache.Get(ctx, isoWeek); err == nil {
		var listing WeekListing
		if err := json.Unmarshal(payload, &listing); err == nil {
			c.logger.DebugContext(ctx, "listing cache hit", slog.String("iso_week", isoWeek))
			return listing, nil
		}
		// Corrupt entry: drop it and re-assemble.
		_ = c.cache.Invalidate(ctx, isoWeek)
	} else if !errors.Is(err, domain.ErrNotFound) {
		c.logger.WarnContext(ctx, "listing cache read failed",
			slog.String("iso_week", isoWeek),
			slog.String("error", err.Error()),
		)
	}

	listing, err := c.inner.ListWeek(ctx, off, filter)
	if err != nil {
		return WeekListing{}, err
	}

	if payload, err := json.Marshal(listing); err == nil {
		if err := c.cache.Set(ctx, isoWeek, payload, cacheTTL); err != nil {
			c.logger.WarnContext(ctx, "listing cache write failed",
				slog.String("iso_week", isoWeek),
				slog.String("error", err.Error()),
			)
		}
	}
	return listing, nil
}

// GetMatch delegates to the inner assembler.
func (c *CachedAssembler) GetMatch(ctx context.Context, id string) (Entry, error) {
	return c.inner.GetMatch(ctx, id)
}
