// Package watch maintains live polling subscriptions over the current week's
// matches and the agent leaderboard, stopping each match subscription as soon
// as its lifecycle reaches a terminal state.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/AI-Betting-Arena/arenaboard/internal/domain"
	"github.com/AI-Betting-Arena/arenaboard/internal/lifecycle"
	"github.com/AI-Betting-Arena/arenaboard/internal/notify"
	"github.com/AI-Betting-Arena/arenaboard/internal/week"
)

// ManagerConfig carries the cadences the manager runs on.
type ManagerConfig struct {
	// ScanInterval is how often the current-week match set is re-read from
	// the provider to pick up newly scheduled matches. Defaults to 5 minutes.
	ScanInterval time.Duration
	// MatchInterval is the per-match polling cadence. Defaults to 15 seconds.
	MatchInterval time.Duration
	// LeaderboardInterval is the leaderboard polling cadence. Defaults to
	// 60 seconds.
	LeaderboardInterval time.Duration
}

func (c *ManagerConfig) applyDefaults() {
	if c.ScanInterval <= 0 {
		c.ScanInterval = 5 * time.Minute
	}
	if c.MatchInterval <= 0 {
		c.MatchInterval = 15 * time.Second
	}
	if c.LeaderboardInterval <= 0 {
		c.LeaderboardInterval = 60 * time.Second
	}
}

// Manager owns one EventWatcher per non-terminal match in the current week
// plus a single LeaderboardWatcher. Run blocks until ctx is cancelled, then
// tears every subscription down.
type Manager struct {
	matches     domain.MatchProvider
	leaderboard domain.LeaderboardProvider
	resolver    *lifecycle.Resolver
	matchCache  domain.MatchCache     // may be nil
	standings   domain.StandingsCache // may be nil
	notifier    *notify.Notifier      // may be nil
	cfg         ManagerConfig
	logger      *slog.Logger
	now         func() time.Time

	mu       sync.Mutex
	watchers map[string]*EventWatcher
	lw       *LeaderboardWatcher
}

// NewManager builds a manager. Nothing polls until Run is called.
func NewManager(
	matches domain.MatchProvider,
	leaderboard domain.LeaderboardProvider,
	resolver *lifecycle.Resolver,
	matchCache domain.MatchCache,
	standings domain.StandingsCache,
	notifier *notify.Notifier,
	cfg ManagerConfig,
	logger *slog.Logger,
) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	cfg.applyDefaults()
	return &Manager{
		matches:     matches,
		leaderboard: leaderboard,
		resolver:    resolver,
		matchCache:  matchCache,
		standings:   standings,
		notifier:    notifier,
		cfg:         cfg,
		logger:      logger.With(slog.String("component", "watch_manager")),
		now:         func() time.Time { return time.Now().UTC() },
		watchers:    make(map[string]*EventWatcher),
	}
}

// Run performs an initial scan, starts the leaderboard watcher, then rescans
// the week on ScanInterval until ctx is done. It returns ctx.Err's cause on
// shutdown, or the initial scan error if the first read of the week fails.
func (m *Manager) Run(ctx context.Context) error {
	if err := m.scan(ctx); err != nil {
		return fmt.Errorf("watch: initial scan: %w", err)
	}

	if m.leaderboard != nil {
		m.mu.Lock()
		m.lw = NewLeaderboardWatcher(m.leaderboard, m.cfg.LeaderboardInterval, m.standings, m.logger)
		m.mu.Unlock()
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ticker := time.NewTicker(m.cfg.ScanInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
				if err := m.scan(ctx); err != nil {
					// Existing watchers keep running on a failed scan.
					m.logger.Warn("week scan failed", slog.String("error", err.Error()))
				}
			}
		}
	})

	err := g.Wait()
	m.shutdown()
	return err
}

// scan re-reads the current week's matches and reconciles the watcher set:
// new non-terminal matches get a watcher, watchers whose subscription has
// stopped (terminal status reached) are dropped.
func (m *Manager) scan(ctx context.Context) error {
	now := m.now()
	win := week.ForInstant(now, week.Current)

	matches, err := m.matches.FetchMatches(ctx, win.FromDate(), win.ToDate())
	if err != nil {
		return fmt.Errorf("fetch week %s: %w", win.ISOLabel(), err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for id, w := range m.watchers {
		if !w.Active() {
			delete(m.watchers, id)
		}
	}

	started := 0
	for _, match := range matches {
		if _, ok := m.watchers[match.ID]; ok {
			continue
		}
		if m.resolver.ResolveMatch(match, now).Terminal() {
			continue
		}
		m.watchers[match.ID] = NewEventWatcher(
			m.matches, match, m.resolver, m.cfg.MatchInterval,
			m.matchCache, m.notifier, m.logger,
		)
		started++
	}

	m.logger.Info("week scan complete",
		slog.String("week", win.ISOLabel()),
		slog.Int("matches", len(matches)),
		slog.Int("watchers", len(m.watchers)),
		slog.Int("started", started),
	)
	return nil
}

// shutdown stops every subscription. Idempotent.
func (m *Manager) shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, w := range m.watchers {
		w.Stop()
		delete(m.watchers, id)
	}
	if m.lw != nil {
		m.lw.Stop()
		m.lw = nil
	}
	m.logger.Info("watchers stopped")
}

// Watcher returns the watcher for a match id, if one is running.
func (m *Manager) Watcher(id string) (*EventWatcher, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.watchers[id]
	return w, ok
}

// Leaderboard returns the leaderboard watcher, nil before Run or when no
// leaderboard provider was configured.
func (m *Manager) Leaderboard() *LeaderboardWatcher {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lw
}

// ActiveCount reports how many match subscriptions are currently polling.
func (m *Manager) ActiveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, w := range m.watchers {
		if w.Active() {
			n++
		}
	}
	return n
}
