package notify

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
)

type recordingSender struct {
	name   string
	err    error
	titles []string
}

func (r *recordingSender) Send(_ context.Context, title, _ string) error {
	if r.err != nil {
		return r.err
	}
	r.titles = append(r.titles, title)
	return nil
}

func (r *recordingSender) Name() string { return r.name }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNotifyFiltersByEvent(t *testing.T) {
	s := &recordingSender{name: "test"}
	n := NewNotifier([]Sender{s}, []string{"match_settled"}, discardLogger())

	if err := n.Notify(context.Background(), EventMatchLive, "kickoff", "x"); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if err := n.Notify(context.Background(), EventMatchSettled, "final", "x"); err != nil {
		t.Fatalf("Notify: %v", err)
	}

	if len(s.titles) != 1 || s.titles[0] != "final" {
		t.Errorf("delivered titles = %v, want [final]", s.titles)
	}
}

func TestNotifyEmptyAllowSetDeliversAll(t *testing.T) {
	s := &recordingSender{name: "test"}
	n := NewNotifier([]Sender{s}, nil, discardLogger())

	for _, e := range []Event{EventMatchLive, EventMatchSettled, EventArchiveComplete} {
		if err := n.Notify(context.Background(), e, string(e), "x"); err != nil {
			t.Fatalf("Notify(%s): %v", e, err)
		}
	}
	if len(s.titles) != 3 {
		t.Errorf("delivered %d titles, want 3", len(s.titles))
	}
}

func TestDispatchContinuesPastFailedSender(t *testing.T) {
	bad := &recordingSender{name: "bad", err: errors.New("webhook gone")}
	good := &recordingSender{name: "good"}
	n := NewNotifier([]Sender{bad, good}, nil, discardLogger())

	err := n.NotifyAll(context.Background(), "title", "body")
	if err == nil {
		t.Fatal("expected combined error from failing sender")
	}
	if !strings.Contains(err.Error(), "bad") {
		t.Errorf("error %q does not name the failed sender", err)
	}
	if len(good.titles) != 1 {
		t.Errorf("healthy sender skipped after a failure: %v", good.titles)
	}
}
