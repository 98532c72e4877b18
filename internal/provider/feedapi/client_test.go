package feedapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/AI-Betting-Arena/arenaboard/internal/domain"
)

func TestFetchMatches(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/matches" {
			t.Errorf("path = %s, want /matches", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("dateFrom") != "2024-02-05" || q.Get("dateTo") != "2024-02-11" {
			t.Errorf("range = %s..%s", q.Get("dateFrom"), q.Get("dateTo"))
		}
		if got := r.Header.Get("X-API-Key"); got != "sekrit" {
			t.Errorf("X-API-Key = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"matches": [
				{
					"id": "m1",
					"league": "EPL",
					"leagueName": "English Premier League",
					"homeTeam": "t-ars",
					"awayTeam": "t-che",
					"startTime": "2024-02-10T15:00:00Z",
					"status": "SCHEDULED",
					"homeOdds": 1.95,
					"drawOdds": 3.6,
					"awayOdds": 4.1,
					"predictions": 12
				},
				{
					"id": "m2",
					"league": "EPL",
					"leagueName": "English Premier League",
					"homeTeam": "t-liv",
					"awayTeam": "t-mci",
					"startTime": "2024-02-10T17:30:00Z",
					"status": "IN_PLAY",
					"homeOdds": 2.4,
					"drawOdds": 3.2,
					"awayOdds": 2.9,
					"predictions": 40,
					"homeScore": 1,
					"awayScore": 1,
					"minute": 57
				}
			]
		}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "sekrit", time.Second)
	got, err := c.FetchMatches(context.Background(), "2024-02-05", "2024-02-11")
	if err != nil {
		t.Fatalf("FetchMatches: %v", err)
	}

	minute := 57
	want := []domain.MatchSummary{
		{
			ID: "m1", LeagueID: "EPL", LeagueName: "English Premier League",
			HomeTeam: "t-ars", AwayTeam: "t-che",
			StartTime: time.Date(2024, time.February, 10, 15, 0, 0, 0, time.UTC),
			RawStatus: domain.RawScheduled,
			Odds:      domain.Odds{Home: 1.95, Draw: 3.6, Away: 4.1},
			Predictions: 12,
		},
		{
			ID: "m2", LeagueID: "EPL", LeagueName: "English Premier League",
			HomeTeam: "t-liv", AwayTeam: "t-mci",
			StartTime: time.Date(2024, time.February, 10, 17, 30, 0, 0, time.UTC),
			RawStatus: domain.RawInPlay,
			Odds:      domain.Odds{Home: 2.4, Draw: 3.2, Away: 2.9},
			Predictions: 40,
			Score:       &domain.Score{Home: 1, Away: 1},
			Minute:      &minute,
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("matches mismatch (-want +got):\n%s", diff)
	}
}

func TestFetchMatchNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"no such match"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	c := New(srv.URL, "", time.Second)
	_, err := c.FetchMatch(context.Background(), "nope")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("FetchMatch error = %v, want ErrNotFound", err)
	}
}

func TestFetchMatchUnknownRawStatusPassesThrough(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/matches/m9" {
			t.Errorf("path = %s", r.URL.Path)
		}
		w.Write([]byte(`{"id":"m9","league":"SA","leagueName":"Serie A","homeTeam":"a","awayTeam":"b","startTime":"2024-02-10T20:45:00Z","status":"VAR_REVIEW","homeOdds":2,"drawOdds":3,"awayOdds":4,"predictions":1}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "", time.Second)
	got, err := c.FetchMatch(context.Background(), "m9")
	if err != nil {
		t.Fatalf("FetchMatch: %v", err)
	}
	// The transport never harmonizes: unknown statuses reach the resolver intact.
	if got.RawStatus != domain.RawStatus("VAR_REVIEW") {
		t.Errorf("RawStatus = %q, want VAR_REVIEW", got.RawStatus)
	}
}

func TestFetchLeaderboard(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/agents/leaderboard" {
			t.Errorf("path = %s", r.URL.Path)
		}
		w.Write([]byte(`{"standings":[
			{"agentId":"a1","name":"Kelly","rank":1,"wins":31,"losses":12,"pushes":2,"roi":0.18,"streak":5,"lastSettled":"2024-02-04T22:00:00Z"},
			{"agentId":"a2","name":"Martingale","rank":2,"wins":25,"losses":20,"pushes":0,"roi":0.02,"streak":-2,"lastSettled":"2024-02-04T20:00:00Z"}
		]}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "", time.Second)
	got, err := c.FetchLeaderboard(context.Background())
	if err != nil {
		t.Fatalf("FetchLeaderboard: %v", err)
	}
	if len(got) != 2 || got[0].AgentID != "a1" || got[1].Rank != 2 {
		t.Errorf("unexpected standings: %+v", got)
	}
}

func TestServerErrorSurfacesStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := New(srv.URL, "", time.Second)
	_, err := c.FetchMatches(context.Background(), "2024-02-05", "2024-02-11")
	if err == nil {
		t.Fatal("expected error for 502 response")
	}
}

func TestRateLimitedMapsToSentinel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := New(srv.URL, "", time.Second)
	_, err := c.FetchLeaderboard(context.Background())
	if !errors.Is(err, domain.ErrRateLimited) {
		t.Fatalf("error = %v, want ErrRateLimited", err)
	}
}
