package feedapi

import (
	"time"

	"github.com/AI-Betting-Arena/arenaboard/internal/domain"
)

// APIMatch is the wire shape of a match as served by the feed API.
type APIMatch struct {
	ID          string    `json:"id"`
	League      string    `json:"league"`
	LeagueName  string    `json:"leagueName"`
	HomeTeam    string    `json:"homeTeam"`
	AwayTeam    string    `json:"awayTeam"`
	StartTime   time.Time `json:"startTime"`
	Status      string    `json:"status"`
	HomeOdds    float64   `json:"homeOdds"`
	DrawOdds    float64   `json:"drawOdds"`
	AwayOdds    float64   `json:"awayOdds"`
	Predictions int       `json:"predictions"`
	HomeScore   *int      `json:"homeScore,omitempty"`
	AwayScore   *int      `json:"awayScore,omitempty"`
	Minute      *int      `json:"minute,omitempty"`
}

// ToDomainMatch converts the wire shape into the domain summary. The raw
// status string passes through untranslated: harmonisation is the lifecycle
// resolver's job, not the transport's.
func (m APIMatch) ToDomainMatch() domain.MatchSummary {
	out := domain.MatchSummary{
		ID:          m.ID,
		LeagueID:    m.League,
		LeagueName:  m.LeagueName,
		HomeTeam:    m.HomeTeam,
		AwayTeam:    m.AwayTeam,
		StartTime:   m.StartTime.UTC(),
		RawStatus:   domain.RawStatus(m.Status),
		Odds:        domain.Odds{Home: m.HomeOdds, Draw: m.DrawOdds, Away: m.AwayOdds},
		Predictions: m.Predictions,
		Minute:      m.Minute,
	}
	if m.HomeScore != nil && m.AwayScore != nil {
		out.Score = &domain.Score{Home: *m.HomeScore, Away: *m.AwayScore}
	}
	return out
}

// matchesResponse wraps the list endpoint payload.
type matchesResponse struct {
	Matches []APIMatch `json:"matches"`
}

// APIStanding is the wire shape of one leaderboard row.
type APIStanding struct {
	AgentID     string    `json:"agentId"`
	Name        string    `json:"name"`
	Rank        int       `json:"rank"`
	Wins        int       `json:"wins"`
	Losses      int       `json:"losses"`
	Pushes      int       `json:"pushes"`
	ROI         float64   `json:"roi"`
	Streak      int       `json:"streak"`
	LastSettled time.Time `json:"lastSettled"`
}

// ToDomainStanding converts the wire shape into the domain standing.
func (s APIStanding) ToDomainStanding() domain.AgentStanding {
	return domain.AgentStanding{
		AgentID:     s.AgentID,
		Name:        s.Name,
		Rank:        s.Rank,
		Wins:        s.Wins,
		Losses:      s.Losses,
		Pushes:      s.Pushes,
		ROI:         s.ROI,
		Streak:      s.Streak,
		LastSettled: s.LastSettled.UTC(),
	}
}

// leaderboardResponse wraps the leaderboard endpoint payload.
type leaderboardResponse struct {
	Standings []APIStanding `json:"standings"`
}
