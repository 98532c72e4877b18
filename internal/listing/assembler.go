// Package listing assembles the weekly match listing: one provider call per
// window, filtered and grouped for the dashboard's per-league card layout.
package listing

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/AI-Betting-Arena/arenaboard/internal/domain"
	"github.com/AI-Betting-Arena/arenaboard/internal/lifecycle"
	"github.com/AI-Betting-Arena/arenaboard/internal/week"
)

// Entry is one match of a league group together with its derived display
// state. Status and Badge are resolved at assembly time and go stale as the
// clock advances; consumers needing fresh state re-assemble or poll.
type Entry struct {
	Match  domain.MatchSummary `json:"match"`
	Status domain.MatchStatus  `json:"status"`
	Badge  lifecycle.Badge     `json:"badge"`
}

// LeagueGroup is all listed matches of one league, chronological by kickoff.
type LeagueGroup struct {
	LeagueID   string  `json:"leagueId"`
	LeagueName string  `json:"leagueName"`
	Matches    []Entry `json:"matches"`
}

// WeekListing is the assembled result for one week window. Leagues is never
// nil: an empty week serializes as an empty array, which the UI renders as an
// explicit empty state rather than an error.
type WeekListing struct {
	WindowLabel string        `json:"windowLabel"`
	ISOWeek     string        `json:"isoWeek"`
	FromDate    string        `json:"fromDate"`
	ToDate      string        `json:"toDate"`
	Leagues     []LeagueGroup `json:"leagues"`
}

// Filter narrows a listing before grouping. Zero values mean no filtering.
type Filter struct {
	// Status keeps only matches whose resolved status equals it.
	Status domain.MatchStatus
	// League keeps only matches with this exact league code.
	League string
}

// Assembler builds weekly listings from the match provider. The now function
// supplies the evaluation instant for status resolution; production wiring
// passes time.Now and tests pass a fixed clock.
type Assembler struct {
	provider   domain.MatchProvider
	resolver   *lifecycle.Resolver
	matchCache domain.MatchCache // optional, see WithMatchCache
	now        func() time.Time
	logger     *slog.Logger
}

// NewAssembler creates an Assembler. A nil now defaults to the UTC wall
// clock.
func NewAssembler(provider domain.MatchProvider, resolver *lifecycle.Resolver, now func() time.Time, logger *slog.Logger) *Assembler {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Assembler{
		provider: provider,
		resolver: resolver,
		now:      now,
		logger:   logger.With(slog.String("component", "listing")),
	}
}

// ListWeek fetches the matches of the selected week in a single provider call
// and returns them grouped by league. Matches within a group are ordered by
// ascending kickoff; groups are ordered alphabetically by league display
// name. An empty week is a valid result, not an error.
func (a *Assembler) ListWeek(ctx context.Context, off week.Offset, filter Filter) (WeekListing, error) {
	w := week.ForInstant(a.now(), off)

	matches, err := a.provider.FetchMatches(ctx, w.FromDate(), w.ToDate())
	if err != nil {
		return WeekListing{}, fmt.Errorf("listing: fetch matches %s: %w", w.ISOLabel(), err)
	}

	now := a.now()
	groups := make(map[string]*LeagueGroup)

	for _, m := range matches {
		if filter.League != "" && m.LeagueID != filter.League {
			continue
		}
		status := a.resolver.ResolveMatch(m, now)
		if filter.Status != "" && status != filter.Status {
			continue
		}

		g, ok := groups[m.LeagueID]
		if !ok {
			g = &LeagueGroup{LeagueID: m.LeagueID, LeagueName: m.LeagueName}
			groups[m.LeagueID] = g
		}
		g.Matches = append(g.Matches, Entry{
			Match:  m,
			Status: status,
			Badge:  lifecycle.BadgeFor(status, m.StartTime, now),
		})
	}

	leagues := make([]LeagueGroup, 0, len(groups))
	for _, g := range groups {
		sort.SliceStable(g.Matches, func(i, j int) bool {
			return g.Matches[i].Match.StartTime.Before(g.Matches[j].Match.StartTime)
		})
		leagues = append(leagues, *g)
	}
	sort.Slice(leagues, func(i, j int) bool {
		return leagues[i].LeagueName < leagues[j].LeagueName
	})

	a.logger.DebugContext(ctx, "assembled week listing",
		slog.String("iso_week", w.ISOLabel()),
		slog.Int("matches", len(matches)),
		slog.Int("leagues", len(leagues)),
	)

	return WeekListing{
		WindowLabel: w.Label(),
		ISOWeek:     w.ISOLabel(),
		FromDate:    w.FromDate(),
		ToDate:      w.ToDate(),
		Leagues:     leagues,
	}, nil
}
