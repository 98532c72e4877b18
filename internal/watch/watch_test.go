package watch

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/AI-Betting-Arena/arenaboard/internal/domain"
	"github.com/AI-Betting-Arena/arenaboard/internal/lifecycle"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeMatchProvider serves a mutable match by id.
type fakeMatchProvider struct {
	mu      sync.Mutex
	matches map[string]domain.MatchSummary
	list    []domain.MatchSummary
	listErr error
	fetches int
}

func (f *fakeMatchProvider) FetchMatches(_ context.Context, _, _ string) ([]domain.MatchSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]domain.MatchSummary, len(f.list))
	copy(out, f.list)
	return out, nil
}

func (f *fakeMatchProvider) FetchMatch(_ context.Context, id string) (domain.MatchSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetches++
	m, ok := f.matches[id]
	if !ok {
		return domain.MatchSummary{}, domain.ErrNotFound
	}
	return m, nil
}

func (f *fakeMatchProvider) set(m domain.MatchSummary) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.matches == nil {
		f.matches = make(map[string]domain.MatchSummary)
	}
	f.matches[m.ID] = m
	for i := range f.list {
		if f.list[i].ID == m.ID {
			f.list[i] = m
		}
	}
}

func (f *fakeMatchProvider) fetchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetches
}

type fakeLeaderboard struct {
	mu        sync.Mutex
	standings []domain.AgentStanding
	err       error
}

func (f *fakeLeaderboard) FetchLeaderboard(_ context.Context) ([]domain.AgentStanding, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := make([]domain.AgentStanding, len(f.standings))
	copy(out, f.standings)
	return out, nil
}

func (f *fakeLeaderboard) setErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

func liveMatch(id string) domain.MatchSummary {
	return domain.MatchSummary{
		ID:         id,
		LeagueID:   "epl",
		LeagueName: "Premier League",
		HomeTeam:   "Arsenal",
		AwayTeam:   "Chelsea",
		StartTime:  time.Now().UTC().Add(-30 * time.Minute),
		RawStatus:  domain.RawLive,
	}
}

func TestEventWatcherStopsOnTerminalStatus(t *testing.T) {
	provider := &fakeMatchProvider{}
	m := liveMatch("m1")
	provider.set(m)

	resolver := lifecycle.NewResolver(discardLogger())
	w := NewEventWatcher(provider, m, resolver, 5*time.Millisecond, nil, nil, discardLogger())
	defer w.Stop()

	if !w.Active() {
		t.Fatal("watcher for a live match should be polling")
	}

	// Feed reports the match finished; the very next successful fetch must
	// stop the subscription.
	done := m
	done.RawStatus = domain.RawFinished
	provider.set(done)

	waitFor(t, time.Second, func() bool { return !w.Active() })

	if got := w.Status(); got != domain.StatusSettled {
		t.Errorf("Status() = %v, want %v", got, domain.StatusSettled)
	}

	// Once stopped, no further fetches happen.
	n := provider.fetchCount()
	time.Sleep(30 * time.Millisecond)
	if provider.fetchCount() != n {
		t.Errorf("fetches continued after terminal status: %d -> %d", n, provider.fetchCount())
	}
}

func TestEventWatcherTerminalAtCreationNeverPolls(t *testing.T) {
	provider := &fakeMatchProvider{}
	m := liveMatch("m2")
	m.RawStatus = domain.RawCancelled
	provider.set(m)

	resolver := lifecycle.NewResolver(discardLogger())
	w := NewEventWatcher(provider, m, resolver, 5*time.Millisecond, nil, nil, discardLogger())
	defer w.Stop()

	if w.Active() {
		t.Fatal("watcher for a cancelled match must not poll")
	}
	time.Sleep(30 * time.Millisecond)
	if provider.fetchCount() != 0 {
		t.Errorf("fetchCount = %d, want 0", provider.fetchCount())
	}
}

func TestLeaderboardWatcherRetainsStaleOnError(t *testing.T) {
	lb := &fakeLeaderboard{standings: []domain.AgentStanding{
		{AgentID: "a1", Name: "Alpha", Rank: 1, Wins: 10},
	}}

	w := NewLeaderboardWatcher(lb, 5*time.Millisecond, nil, discardLogger())
	defer w.Stop()

	waitFor(t, time.Second, func() bool {
		s, _ := w.Standings()
		return len(s) == 1
	})

	lb.setErr(errors.New("upstream 500"))
	waitFor(t, time.Second, func() bool { return w.LastError() != nil })

	s, _ := w.Standings()
	if len(s) != 1 || s[0].AgentID != "a1" {
		t.Errorf("stale standings blanked by a failed refresh: %+v", s)
	}
}

func TestManagerReconcilesWatcherSet(t *testing.T) {
	provider := &fakeMatchProvider{}
	m1 := liveMatch("m1")
	m2 := liveMatch("m2")
	m2.RawStatus = domain.RawFinished // terminal at scan time, no watcher
	provider.set(m1)
	provider.set(m2)
	provider.mu.Lock()
	provider.list = []domain.MatchSummary{m1, m2}
	provider.mu.Unlock()

	resolver := lifecycle.NewResolver(discardLogger())
	mgr := NewManager(provider, nil, resolver, nil, nil, nil, ManagerConfig{
		ScanInterval:  10 * time.Millisecond,
		MatchInterval: 5 * time.Millisecond,
	}, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- mgr.Run(ctx) }()

	waitFor(t, time.Second, func() bool {
		_, ok := mgr.Watcher("m1")
		return ok
	})
	if _, ok := mgr.Watcher("m2"); ok {
		t.Error("terminal match got a watcher")
	}

	// m1 finishes: its watcher stops itself, the next scan reaps it.
	done := m1
	done.RawStatus = domain.RawFinished
	provider.set(done)

	waitFor(t, time.Second, func() bool { return mgr.ActiveCount() == 0 })
	waitFor(t, time.Second, func() bool {
		_, ok := mgr.Watcher("m1")
		return !ok
	})

	cancel()
	if err := <-errCh; !errors.Is(err, context.Canceled) {
		t.Errorf("Run returned %v, want context.Canceled", err)
	}
}

func TestManagerInitialScanFailure(t *testing.T) {
	provider := &fakeMatchProvider{listErr: errors.New("feed down")}
	resolver := lifecycle.NewResolver(discardLogger())
	mgr := NewManager(provider, nil, resolver, nil, nil, nil, ManagerConfig{}, discardLogger())

	err := mgr.Run(context.Background())
	if err == nil {
		t.Fatal("Run should fail when the first scan fails")
	}
}
