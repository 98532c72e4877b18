// Package notify fans match-lifecycle alerts out to chat channels. Operators
// subscribe a dashboard's Telegram chat or Discord webhook and pick which
// events they want; everything else is dropped before dispatch.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Event identifies what happened. Events not listed in a Notifier's allow
// set are filtered out.
type Event string

const (
	// EventMatchLive fires when a watched match transitions into LIVE.
	EventMatchLive Event = "match_live"
	// EventMatchSettled fires when a watched match reaches its final result.
	EventMatchSettled Event = "match_settled"
	// EventMatchPostponed fires when a watched match is pushed off its slot.
	EventMatchPostponed Event = "match_postponed"
	// EventArchiveComplete fires after a weekly archive run finishes.
	EventArchiveComplete Event = "archive_complete"
)

// Sender is one delivery channel.
type Sender interface {
	Send(ctx context.Context, title, message string) error
	// Name identifies the channel in logs and error messages.
	Name() string
}

// Notifier dispatches alerts to every registered sender. A non-empty allow
// set makes Notify drop events outside it; an empty set allows everything.
type Notifier struct {
	senders []Sender
	allowed map[Event]bool
	logger  *slog.Logger
}

// NewNotifier builds a notifier over the given senders. events lists the
// event names to deliver; empty means deliver all.
func NewNotifier(senders []Sender, events []string, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	allowed := make(map[Event]bool, len(events))
	for _, e := range events {
		allowed[Event(strings.TrimSpace(e))] = true
	}
	return &Notifier{
		senders: senders,
		allowed: allowed,
		logger:  logger.With(slog.String("component", "notifier")),
	}
}

// Notify delivers to all senders when the event passes the allow set.
func (n *Notifier) Notify(ctx context.Context, event Event, title, message string) error {
	if len(n.allowed) > 0 && !n.allowed[event] {
		n.logger.DebugContext(ctx, "event filtered out", slog.String("event", string(event)))
		return nil
	}
	return n.dispatch(ctx, title, message)
}

// NotifyAll delivers to all senders regardless of the allow set.
func (n *Notifier) NotifyAll(ctx context.Context, title, message string) error {
	return n.dispatch(ctx, title, message)
}

// dispatch sends to every channel. One sender failing does not stop delivery
// to the rest; failures are combined into a single error.
func (n *Notifier) dispatch(ctx context.Context, title, message string) error {
	if len(n.senders) == 0 {
		return nil
	}

	var errs []string
	for _, s := range n.senders {
		if err := s.Send(ctx, title, message); err != nil {
			n.logger.ErrorContext(ctx, "sender failed",
				slog.String("sender", s.Name()),
				slog.String("error", err.Error()),
			)
			errs = append(errs, fmt.Sprintf("%s: %v", s.Name(), err))
			continue
		}
		n.logger.DebugContext(ctx, "notification sent",
			slog.String("sender", s.Name()),
			slog.String("title", title),
		)
	}

	if len(errs) > 0 {
		return fmt.Errorf("notify: %d sender(s) failed: %s", len(errs), strings.Join(errs, "; "))
	}
	return nil
}
