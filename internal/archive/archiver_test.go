package archive

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/AI-Betting-Arena/arenaboard/internal/domain"
	"github.com/AI-Betting-Arena/arenaboard/internal/lifecycle"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeProvider struct {
	matches []domain.MatchSummary
	err     error
	from    string
	to      string
}

func (f *fakeProvider) FetchMatches(_ context.Context, from, to string) ([]domain.MatchSummary, error) {
	f.from, f.to = from, to
	return f.matches, f.err
}

func (f *fakeProvider) FetchMatch(_ context.Context, _ string) (domain.MatchSummary, error) {
	return domain.MatchSummary{}, domain.ErrNotFound
}

type fakeSnapshotStore struct {
	upserts [][]domain.MatchSnapshot
	err     error
}

func (f *fakeSnapshotStore) UpsertBatch(_ context.Context, snaps []domain.MatchSnapshot) error {
	if f.err != nil {
		return f.err
	}
	f.upserts = append(f.upserts, snaps)
	return nil
}

func (f *fakeSnapshotStore) ListByWeek(_ context.Context, _, _ time.Time) ([]domain.MatchSnapshot, error) {
	return nil, nil
}

func (f *fakeSnapshotStore) Count(_ context.Context) (int64, error) { return 0, nil }

type fakeBlobWriter struct {
	paths    []string
	payloads [][]byte
}

func (f *fakeBlobWriter) Put(_ context.Context, path string, data io.Reader, _ string) error {
	buf, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	f.paths = append(f.paths, path)
	f.payloads = append(f.payloads, buf)
	return nil
}

type fakeLocks struct {
	held     bool
	acquired []string
	released int
}

func (f *fakeLocks) Acquire(_ context.Context, key string, _ time.Duration) (func(), error) {
	if f.held {
		return nil, domain.ErrLockHeld
	}
	f.acquired = append(f.acquired, key)
	return func() { f.released++ }, nil
}

// Wednesday 2024-02-07; the previous week is 2024-01-29 .. 2024-02-04.
var testNow = time.Date(2024, 2, 7, 12, 0, 0, 0, time.UTC)

func settledMatch(id string) domain.MatchSummary {
	return domain.MatchSummary{
		ID:         id,
		LeagueID:   "epl",
		LeagueName: "Premier League",
		HomeTeam:   "Arsenal",
		AwayTeam:   "Chelsea",
		StartTime:  time.Date(2024, 2, 3, 15, 0, 0, 0, time.UTC),
		RawStatus:  domain.RawFinished,
		Score:      &domain.Score{Home: 2, Away: 1},
	}
}

func newTestArchiver(p *fakeProvider, snaps *fakeSnapshotStore, blob *fakeBlobWriter, locks domain.LockManager) *Archiver {
	var bw domain.BlobWriter
	if blob != nil {
		bw = blob
	}
	a := New(Config{
		Matches:   p,
		Resolver:  lifecycle.NewResolver(discardLogger()),
		Snapshots: snaps,
		Blob:      bw,
		Locks:     locks,
		Logger:    discardLogger(),
	})
	a.now = func() time.Time { return testNow }
	return a
}

func TestRunArchivesTerminalMatchesOnly(t *testing.T) {
	pending := settledMatch("m2")
	pending.RawStatus = domain.RawLive
	pending.Score = nil

	provider := &fakeProvider{matches: []domain.MatchSummary{settledMatch("m1"), pending}}
	snaps := &fakeSnapshotStore{}
	blob := &fakeBlobWriter{}

	a := newTestArchiver(provider, snaps, blob, nil)
	if err := a.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if provider.from != "2024-01-29" || provider.to != "2024-02-04" {
		t.Errorf("fetched range %s..%s, want previous week 2024-01-29..2024-02-04", provider.from, provider.to)
	}

	if len(snaps.upserts) != 1 {
		t.Fatalf("got %d upsert batches, want 1", len(snaps.upserts))
	}
	batch := snaps.upserts[0]
	if len(batch) != 1 {
		t.Fatalf("archived %d matches, want 1 (live match must be skipped)", len(batch))
	}

	snap := batch[0]
	if snap.MatchID != "m1" || snap.FinalStatus != domain.StatusSettled {
		t.Errorf("snapshot = %+v", snap)
	}
	if snap.HomeScore == nil || *snap.HomeScore != 2 || snap.AwayScore == nil || *snap.AwayScore != 1 {
		t.Errorf("score not carried into snapshot: %+v", snap)
	}
}

func TestRunUploadsWeekExport(t *testing.T) {
	provider := &fakeProvider{matches: []domain.MatchSummary{settledMatch("m1")}}
	blob := &fakeBlobWriter{}

	a := newTestArchiver(provider, &fakeSnapshotStore{}, blob, nil)
	if err := a.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(blob.paths) != 1 || blob.paths[0] != "archive/weeks/2024-W05.json" {
		t.Fatalf("uploaded paths = %v", blob.paths)
	}

	var export weekExport
	if err := json.Unmarshal(blob.payloads[0], &export); err != nil {
		t.Fatalf("export not valid JSON: %v", err)
	}
	if export.ISOWeek != "2024-W05" || len(export.Matches) != 1 {
		t.Errorf("export = %+v", export)
	}
}

func TestRunSkipsWhenLockHeld(t *testing.T) {
	provider := &fakeProvider{matches: []domain.MatchSummary{settledMatch("m1")}}
	snaps := &fakeSnapshotStore{}
	locks := &fakeLocks{held: true}

	a := newTestArchiver(provider, snaps, nil, locks)
	if err := a.Run(context.Background()); err != nil {
		t.Fatalf("Run with held lock should not error, got %v", err)
	}
	if len(snaps.upserts) != 0 {
		t.Error("archive proceeded despite held lock")
	}
}

func TestRunReleasesLock(t *testing.T) {
	provider := &fakeProvider{matches: nil}
	locks := &fakeLocks{}

	a := newTestArchiver(provider, &fakeSnapshotStore{}, nil, locks)
	if err := a.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(locks.acquired) != 1 || locks.acquired[0] != "archive:2024-W05" {
		t.Errorf("acquired = %v", locks.acquired)
	}
	if locks.released != 1 {
		t.Errorf("released = %d, want 1", locks.released)
	}
}

func TestRunPropagatesFetchError(t *testing.T) {
	provider := &fakeProvider{err: errors.New("feed down")}
	a := newTestArchiver(provider, &fakeSnapshotStore{}, nil, nil)

	if err := a.Run(context.Background()); err == nil {
		t.Fatal("expected error from failed fetch")
	}
}

func TestParseCron(t *testing.T) {
	tests := []struct {
		expr    string
		wantErr bool
	}{
		{"0 4 * * 1", false},
		{"*/5 * * * *", true}, // step syntax unsupported
		{"0 3 1 *", true},
		{"0 3 1 * * *", true},
		{"a b c d e", true},
		{"0,30 * * * *", false},
	}
	for _, tt := range tests {
		_, err := parseCron(tt.expr)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseCron(%q) err = %v, wantErr %v", tt.expr, err, tt.wantErr)
		}
	}
}

func TestNextCronTime(t *testing.T) {
	// From a Wednesday noon, "0 4 * * 1" fires next Monday 04:00.
	next, err := nextCronTime("0 4 * * 1", testNow)
	if err != nil {
		t.Fatalf("nextCronTime: %v", err)
	}
	want := time.Date(2024, 2, 12, 4, 0, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Errorf("next = %v, want %v", next, want)
	}

	// Minute lists fire at the next listed minute.
	next, err = nextCronTime("0,30 * * * *", time.Date(2024, 2, 7, 12, 10, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("nextCronTime: %v", err)
	}
	want = time.Date(2024, 2, 7, 12, 30, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Errorf("next = %v, want %v", next, want)
	}
}
