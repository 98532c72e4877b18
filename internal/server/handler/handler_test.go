package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/AI-Betting-Arena/arenaboard/internal/domain"
	"github.com/AI-Betting-Arena/arenaboard/internal/listing"
	"github.com/AI-Betting-Arena/arenaboard/internal/week"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type stubListings struct {
	gotOffset week.Offset
	gotFilter listing.Filter
	result    listing.WeekListing
	err       error
}

func (s *stubListings) ListWeek(_ context.Context, off week.Offset, filter listing.Filter) (listing.WeekListing, error) {
	s.gotOffset = off
	s.gotFilter = filter
	return s.result, s.err
}

type stubMatches struct {
	entry listing.Entry
	err   error
}

func (s *stubMatches) GetMatch(_ context.Context, _ string) (listing.Entry, error) {
	return s.entry, s.err
}

type stubStandings struct {
	standings []domain.AgentStanding
	fetchedAt time.Time
	err       error
}

func (s *stubStandings) Standings(_ context.Context) ([]domain.AgentStanding, time.Time, error) {
	return s.standings, s.fetchedAt, s.err
}

func TestListWeekParsesOffsetAndFilters(t *testing.T) {
	stub := &stubListings{result: listing.WeekListing{ISOWeek: "2024-W06", Leagues: []listing.LeagueGroup{}}}
	h := NewListingHandler(stub, discardLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/listings/next?status=LIVE&league=epl", nil)
	req.SetPathValue("offset", "next")
	rec := httptest.NewRecorder()

	h.ListWeek(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if stub.gotOffset != week.Next {
		t.Errorf("offset = %v, want Next", stub.gotOffset)
	}
	if stub.gotFilter.Status != domain.StatusLive || stub.gotFilter.League != "epl" {
		t.Errorf("filter = %+v", stub.gotFilter)
	}

	var resp listing.WeekListing
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.ISOWeek != "2024-W06" {
		t.Errorf("isoWeek = %q", resp.ISOWeek)
	}
	if resp.Leagues == nil {
		t.Error("empty week must serialize leagues as [], not null")
	}
}

func TestListWeekRejectsBadOffset(t *testing.T) {
	h := NewListingHandler(&stubListings{}, discardLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/listings/lastweek", nil)
	req.SetPathValue("offset", "lastweek")
	rec := httptest.NewRecorder()

	h.ListWeek(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestListWeekRejectsUnknownStatusFilter(t *testing.T) {
	h := NewListingHandler(&stubListings{}, discardLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/listings/current?status=HALF_TIME", nil)
	req.SetPathValue("offset", "current")
	rec := httptest.NewRecorder()

	h.ListWeek(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestListWeekUpstreamFailure(t *testing.T) {
	h := NewListingHandler(&stubListings{err: errors.New("feed down")}, discardLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/listings/current", nil)
	req.SetPathValue("offset", "current")
	rec := httptest.NewRecorder()

	h.ListWeek(rec, req)
	if rec.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", rec.Code)
	}
}

func TestGetMatchNotFound(t *testing.T) {
	h := NewMatchHandler(&stubMatches{err: domain.ErrNotFound}, discardLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/matches/m404", nil)
	req.SetPathValue("id", "m404")
	rec := httptest.NewRecorder()

	h.GetMatch(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestGetMatchReturnsEntry(t *testing.T) {
	entry := listing.Entry{
		Match:  domain.MatchSummary{ID: "m1", HomeTeam: "Arsenal", AwayTeam: "Chelsea"},
		Status: domain.StatusBettingOpen,
	}
	h := NewMatchHandler(&stubMatches{entry: entry}, discardLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/matches/m1", nil)
	req.SetPathValue("id", "m1")
	rec := httptest.NewRecorder()

	h.GetMatch(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var got listing.Entry
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Match.ID != "m1" || got.Status != domain.StatusBettingOpen {
		t.Errorf("entry = %+v", got)
	}
}

func TestGetLeaderboard(t *testing.T) {
	fetched := time.Date(2024, 2, 7, 12, 0, 0, 0, time.UTC)
	h := NewLeaderboardHandler(&stubStandings{
		standings: []domain.AgentStanding{{AgentID: "a1", Rank: 1}},
		fetchedAt: fetched,
	}, discardLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/leaderboard", nil)
	rec := httptest.NewRecorder()

	h.GetLeaderboard(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var resp leaderboardResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Standings) != 1 || !resp.FetchedAt.Equal(fetched) {
		t.Errorf("resp = %+v", resp)
	}
}

func TestGetLeaderboardNilStandingsSerializeAsEmpty(t *testing.T) {
	h := NewLeaderboardHandler(&stubStandings{}, discardLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/leaderboard", nil)
	rec := httptest.NewRecorder()

	h.GetLeaderboard(rec, req)

	var resp map[string]json.RawMessage
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if string(resp["standings"]) != "[]" {
		t.Errorf("standings = %s, want []", resp["standings"])
	}
}

// fakeBlobReader serves canned export objects.
type fakeBlobReader struct {
	infos     []domain.BlobInfo
	objects   map[string]string
	gotPrefix string
}

func (f *fakeBlobReader) Get(_ context.Context, path string) (io.ReadCloser, error) {
	body, ok := f.objects[path]
	if !ok {
		return nil, fmt.Errorf("get %s: %w", path, domain.ErrNotFound)
	}
	return io.NopCloser(strings.NewReader(body)), nil
}

func (f *fakeBlobReader) List(_ context.Context, prefix string) ([]domain.BlobInfo, error) {
	f.gotPrefix = prefix
	return f.infos, nil
}

func (f *fakeBlobReader) Exists(_ context.Context, path string) (bool, error) {
	_, ok := f.objects[path]
	return ok, nil
}

func TestListExportsDerivesWeekLabels(t *testing.T) {
	reader := &fakeBlobReader{infos: []domain.BlobInfo{
		{Path: "archive/weeks/2024-W05.json", Size: 421},
		{Path: "archive/weeks/2024-W06.json", Size: 512},
	}}
	h := NewArchiveHandler(nil, nil, reader, discardLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/archive/exports", nil)
	rec := httptest.NewRecorder()

	h.ListExports(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if reader.gotPrefix != "archive/weeks/" {
		t.Errorf("prefix = %q", reader.gotPrefix)
	}

	var resp struct {
		Exports []exportInfo `json:"exports"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Exports) != 2 {
		t.Fatalf("exports = %+v", resp.Exports)
	}
	if resp.Exports[0].ISOWeek != "2024-W05" || resp.Exports[1].ISOWeek != "2024-W06" {
		t.Errorf("week labels = %q, %q", resp.Exports[0].ISOWeek, resp.Exports[1].ISOWeek)
	}
}

func TestGetExportStreamsObject(t *testing.T) {
	payload := `{"isoWeek":"2024-W05","matches":[]}`
	h := NewArchiveHandler(nil, nil, &fakeBlobReader{
		objects: map[string]string{"archive/weeks/2024-W05.json": payload},
	}, discardLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/archive/exports/2024-W05", nil)
	req.SetPathValue("isoWeek", "2024-W05")
	rec := httptest.NewRecorder()

	h.GetExport(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type = %q", ct)
	}
	if rec.Body.String() != payload {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestGetExportMissingWeekIs404(t *testing.T) {
	h := NewArchiveHandler(nil, nil, &fakeBlobReader{objects: map[string]string{}}, discardLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/archive/exports/2024-W01", nil)
	req.SetPathValue("isoWeek", "2024-W01")
	rec := httptest.NewRecorder()

	h.GetExport(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestExportEndpointsWithoutReaderAre404(t *testing.T) {
	h := NewArchiveHandler(nil, nil, nil, discardLogger())

	rec := httptest.NewRecorder()
	h.ListExports(rec, httptest.NewRequest(http.MethodGet, "/api/archive/exports", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("ListExports status = %d, want 404", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/archive/exports/2024-W05", nil)
	req.SetPathValue("isoWeek", "2024-W05")
	rec = httptest.NewRecorder()
	h.GetExport(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("GetExport status = %d, want 404", rec.Code)
	}
}

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	if got := paginate(items, domain.ListOpts{Limit: 2, Offset: 1}); len(got) != 2 || got[0] != 2 {
		t.Errorf("paginate = %v", got)
	}
	if got := paginate(items, domain.ListOpts{Limit: 10, Offset: 4}); len(got) != 1 || got[0] != 5 {
		t.Errorf("paginate = %v", got)
	}
	if got := paginate(items, domain.ListOpts{Limit: 2, Offset: 9}); got != nil {
		t.Errorf("paginate past end = %v, want nil", got)
	}
}
