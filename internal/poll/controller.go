// Package poll provides a generic polling subscription: a recurring fetch
// that keeps a typed value fresh, with manual refresh, pause/resume, and
// teardown semantics that make a result arriving after Stop a strict no-op.
// It carries no knowledge of matches or leaderboards; call sites decide what
// to fetch and when polling stops being useful.
package poll

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrStopped is returned by Refresh on a subscription that has been
	// stopped. Stopped subscriptions are terminal; create a new one instead.
	ErrStopped = errors.New("poll: subscription stopped")

	// ErrFetchInFlight is returned by Refresh when a fetch is already
	// running. The controller never overlaps fetches for one subscription.
	ErrFetchInFlight = errors.New("poll: fetch already in flight")
)

// State is the lifecycle state of a subscription.
type State int

const (
	// Stopped is both the initial and the terminal state. A subscription
	// created disabled never arms; a stopped one never resurrects.
	Stopped State = iota
	// Armed means the ticker is running and ticks trigger fetches.
	Armed
	// Paused means the ticker keeps running but ticks are discarded. Data
	// and lastUpdated are retained.
	Paused
)

func (s State) String() string {
	switch s {
	case Armed:
		return "armed"
	case Paused:
		return "paused"
	default:
		return "stopped"
	}
}

// FetchFunc produces a fresh value. It is invoked once per tick and by
// Refresh; errors leave the previously held value untouched.
type FetchFunc[T any] func(ctx context.Context) (T, error)

// Options configures a subscription.
type Options[T any] struct {
	// Interval between ticks. Defaults to 15 seconds when zero.
	Interval time.Duration
	// Enabled arms the timer immediately. A subscription created with
	// Enabled false stays in Stopped and can only be replaced, not started.
	Enabled bool
	// OnUpdate is invoked after each successful fetch, outside the
	// subscription lock, with the new value.
	OnUpdate func(T)
	// OnError is invoked after each failed fetch. The tick loop continues
	// regardless.
	OnError func(error)
	// Logger for per-tick diagnostics. Defaults to slog.Default.
	Logger *slog.Logger
}

const defaultInterval = 15 * time.Second

// Subscription owns one polled value of type T. All exported methods are safe
// for concurrent use; the value is owned exclusively by its subscription and
// shared with callers only by copy.
type Subscription[T any] struct {
	id       string
	fetch    FetchFunc[T]
	interval time.Duration
	onUpdate func(T)
	onError  func(error)
	logger   *slog.Logger

	cancel context.CancelFunc
	done   chan struct{}

	mu          sync.Mutex
	state       State
	inFlight    bool
	data        T
	lastUpdated time.Time
	lastErr     error
}

// Subscribe creates a subscription seeded with initial and, when enabled,
// starts its tick loop. The first fetch happens one interval after Subscribe
// returns; callers that want an immediate value call Refresh themselves.
func Subscribe[T any](fetch FetchFunc[T], initial T, opts Options[T]) *Subscription[T] {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	interval := opts.Interval
	if interval <= 0 {
		interval = defaultInterval
	}

	s := &Subscription[T]{
		id:       uuid.NewString(),
		fetch:    fetch,
		interval: interval,
		onUpdate: opts.OnUpdate,
		onError:  opts.OnError,
		data:     initial,
		state:    Stopped,
		done:     make(chan struct{}),
	}
	s.logger = logger.With(
		slog.String("component", "poll"),
		slog.String("subscription_id", s.id),
	)

	if !opts.Enabled {
		close(s.done)
		return s
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.state = Armed

	go s.run(ctx)
	return s
}

// run is the tick loop. It exits only on Stop; a failed fetch never ends it.
func (s *Subscription[T]) run(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.mu.Lock()
			if s.state != Armed || s.inFlight {
				// Paused, stopping, or the previous fetch has not
				// resolved yet: skip this tick rather than overlap.
				s.mu.Unlock()
				continue
			}
			s.inFlight = true
			s.mu.Unlock()

			if err := s.doFetch(ctx); err != nil {
				s.logger.Debug("tick fetch failed", slog.String("error", err.Error()))
			}
		}
	}
}

// doFetch runs one fetch and applies the result. The caller must have set
// inFlight under the lock. Results arriving after Stop are discarded without
// touching any state.
func (s *Subscription[T]) doFetch(ctx context.Context) error {
	data, err := s.fetch(ctx)

	s.mu.Lock()
	if s.state == Stopped {
		// Torn down while the fetch was in flight. The stopped flag was
		// flipped before cancellation, so nothing may be written here.
		s.mu.Unlock()
		return err
	}
	s.inFlight = false

	if err != nil {
		s.lastErr = err
		onError := s.onError
		s.mu.Unlock()
		if onError != nil {
			onError(err)
		}
		return err
	}

	s.data = data
	s.lastUpdated = time.Now().UTC()
	s.lastErr = nil
	onUpdate := s.onUpdate
	s.mu.Unlock()

	if onUpdate != nil {
		onUpdate(data)
	}
	return nil
}

// Refresh performs an out-of-band fetch, usable while armed or paused. It
// does not reset the ticker's phase. When a fetch is already in flight it
// returns ErrFetchInFlight without fetching.
func (s *Subscription[T]) Refresh(ctx context.Context) error {
	s.mu.Lock()
	if s.state == Stopped {
		s.mu.Unlock()
		return ErrStopped
	}
	if s.inFlight {
		s.mu.Unlock()
		return ErrFetchInFlight
	}
	s.inFlight = true
	s.mu.Unlock()

	return s.doFetch(ctx)
}

// Pause suspends ticking without discarding accumulated data. No-op unless
// the subscription is armed.
func (s *Subscription[T]) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Armed {
		s.state = Paused
	}
}

// Resume re-arms a paused subscription. No-op in any other state; a stopped
// subscription cannot be resumed.
func (s *Subscription[T]) Resume() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Paused {
		s.state = Armed
	}
}

// Stop tears the subscription down: the stopped flag is flipped first, under
// the lock, so any in-flight fetch resolving afterwards is discarded; only
// then is the tick goroutine cancelled. Stop is idempotent, terminal, and
// safe to call from inside OnUpdate (it does not wait for the tick loop to
// exit; use Done for that).
func (s *Subscription[T]) Stop() {
	s.mu.Lock()
	if s.state == Stopped {
		s.mu.Unlock()
		return
	}
	s.state = Stopped
	cancel := s.cancel
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	s.logger.Debug("subscription stopped")
}

// Data returns a copy of the held value and when it was last replaced. The
// zero lastUpdated means no fetch has succeeded yet and the value is still
// the initial seed.
func (s *Subscription[T]) Data() (T, time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data, s.lastUpdated
}

// LastError returns the error from the most recent fetch, or nil if it
// succeeded. A non-nil error coexists with valid (stale) data.
func (s *Subscription[T]) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// State returns the current lifecycle state.
func (s *Subscription[T]) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// IsPolling reports whether ticks currently trigger fetches.
func (s *Subscription[T]) IsPolling() bool {
	return s.State() == Armed
}

// ID returns the subscription's identifier, used in log attributes.
func (s *Subscription[T]) ID() string {
	return s.id
}

// Done returns a channel closed once the tick loop has fully exited.
func (s *Subscription[T]) Done() <-chan struct{} {
	return s.done
}
