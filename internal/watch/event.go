package watch

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/AI-Betting-Arena/arenaboard/internal/domain"
	"github.com/AI-Betting-Arena/arenaboard/internal/lifecycle"
	"github.com/AI-Betting-Arena/arenaboard/internal/notify"
	"github.com/AI-Betting-Arena/arenaboard/internal/poll"
)

// EventWatcher keeps a single match fresh while its status can still change.
// It re-resolves the harmonized status on every update and stops its own
// subscription within one evaluation cycle of the status turning terminal.
type EventWatcher struct {
	matchID  string
	resolver *lifecycle.Resolver
	notifier *notify.Notifier // may be nil
	cache    domain.MatchCache
	logger   *slog.Logger

	sub *poll.Subscription[domain.MatchSummary]

	mu     sync.Mutex
	status domain.MatchStatus
}

// NewEventWatcher starts watching one match. initial seeds the held summary;
// its status is resolved immediately so a match that is already terminal
// never arms a timer. cache and notifier are optional.
func NewEventWatcher(
	provider domain.MatchProvider,
	initial domain.MatchSummary,
	resolver *lifecycle.Resolver,
	interval time.Duration,
	cache domain.MatchCache,
	notifier *notify.Notifier,
	logger *slog.Logger,
) *EventWatcher {
	if logger == nil {
		logger = slog.Default()
	}
	w := &EventWatcher{
		matchID:  initial.ID,
		resolver: resolver,
		notifier: notifier,
		cache:    cache,
		logger: logger.With(
			slog.String("component", "event_watcher"),
			slog.String("match_id", initial.ID),
		),
		status: resolver.ResolveMatch(initial, time.Now().UTC()),
	}

	w.sub = poll.Subscribe(
		func(ctx context.Context) (domain.MatchSummary, error) {
			return provider.FetchMatch(ctx, initial.ID)
		},
		initial,
		poll.Options[domain.MatchSummary]{
			Interval: interval,
			Enabled:  !w.status.Terminal(),
			OnUpdate: w.onUpdate,
			OnError:  w.onError,
			Logger:   logger,
		},
	)
	return w
}

// onUpdate is the per-entity stopping rule. It runs after every successful
// fetch.
func (w *EventWatcher) onUpdate(m domain.MatchSummary) {
	now := time.Now().UTC()
	status := w.resolver.ResolveMatch(m, now)

	w.mu.Lock()
	prev := w.status
	w.status = status
	w.mu.Unlock()

	if w.cache != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := w.cache.Set(ctx, m); err != nil {
			w.logger.Warn("cache update failed", slog.String("error", err.Error()))
		}
		cancel()
	}

	if status != prev {
		w.logger.Info("status transition",
			slog.String("from", string(prev)),
			slog.String("to", string(status)),
		)
		w.announce(status, m)
	}

	if status.Terminal() {
		w.sub.Stop()
	}
}

func (w *EventWatcher) onError(err error) {
	// Previous data stays put; the subscription keeps ticking.
	w.logger.Warn("match refresh failed", slog.String("error", err.Error()))
}

// announce emits notifications for the transitions operators care about.
func (w *EventWatcher) announce(status domain.MatchStatus, m domain.MatchSummary) {
	if w.notifier == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	title := fmt.Sprintf("%s vs %s", m.HomeTeam, m.AwayTeam)
	switch status {
	case domain.StatusLive:
		if err := w.notifier.Notify(ctx, notify.EventMatchLive, title, "Match is live"); err != nil {
			w.logger.Warn("notify failed", slog.String("error", err.Error()))
		}
	case domain.StatusSettled:
		body := "Match settled"
		if m.Score != nil {
			body = fmt.Sprintf("Final score %d - %d", m.Score.Home, m.Score.Away)
		}
		if err := w.notifier.Notify(ctx, notify.EventMatchSettled, title, body); err != nil {
			w.logger.Warn("notify failed", slog.String("error", err.Error()))
		}
	case domain.StatusPostponed:
		if err := w.notifier.Notify(ctx, notify.EventMatchPostponed, title, "Match postponed"); err != nil {
			w.logger.Warn("notify failed", slog.String("error", err.Error()))
		}
	}
}

// Match returns the latest held summary and when it was fetched.
func (w *EventWatcher) Match() (domain.MatchSummary, time.Time) {
	return w.sub.Data()
}

// Status returns the most recently resolved harmonized status.
func (w *EventWatcher) Status() domain.MatchStatus {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.status
}

// Refresh forces an out-of-band fetch.
func (w *EventWatcher) Refresh(ctx context.Context) error {
	return w.sub.Refresh(ctx)
}

// Active reports whether the watcher is still polling.
func (w *EventWatcher) Active() bool {
	return w.sub.IsPolling()
}

// Stop tears the watcher down. Idempotent.
func (w *EventWatcher) Stop() {
	w.sub.Stop()
}
