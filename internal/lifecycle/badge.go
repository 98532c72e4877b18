package lifecycle

import (
	"time"

	"github.com/AI-Betting-Arena/arenaboard/internal/domain"
)

// BadgeColor is the semantic color a renderer maps to its own palette.
type BadgeColor string

const (
	ColorGreen  BadgeColor = "green"
	ColorRed    BadgeColor = "red"
	ColorOrange BadgeColor = "orange"
	ColorBlue   BadgeColor = "blue"
	ColorGray   BadgeColor = "gray"
	ColorYellow BadgeColor = "yellow"
)

// Badge is the display form of a harmonized status. SubText is recomputed on
// every call since countdowns change by the minute; callers must not memoize.
type Badge struct {
	Label   string     `json:"label"`
	Color   BadgeColor `json:"color"`
	SubText string     `json:"subText,omitempty"`
}

// badgeTable fixes the label and color per status. SubText is filled in by
// BadgeFor because it depends on the kickoff instant.
var badgeTable = map[domain.MatchStatus]Badge{
	domain.StatusUpcoming:      {Label: "Upcoming", Color: ColorBlue},
	domain.StatusBettingOpen:   {Label: "Betting Open", Color: ColorGreen},
	domain.StatusBettingClosed: {Label: "Betting Closed", Color: ColorOrange, SubText: "Awaiting result"},
	domain.StatusLive:          {Label: "Live", Color: ColorRed},
	domain.StatusSettled:       {Label: "Settled", Color: ColorGray, SubText: "Final"},
	domain.StatusPostponed:     {Label: "Postponed", Color: ColorYellow},
	domain.StatusCancelled:     {Label: "Cancelled", Color: ColorGray},
}

// BadgeFor maps a harmonized status to its badge, composing the countdown
// sub-text from the kickoff instant and now. Side-effect free and safe to
// call on every render tick.
func BadgeFor(status domain.MatchStatus, start, now time.Time) Badge {
	b, ok := badgeTable[status]
	if !ok {
		// Only reachable with a status outside the closed enum; render it
		// neutrally rather than inventing state.
		return Badge{Label: string(status), Color: ColorGray}
	}

	switch status {
	case domain.StatusUpcoming:
		if now.Before(start) {
			b.SubText = "Opens in " + Until(start, now, "Started")
		} else {
			b.SubText = "Started"
		}
	case domain.StatusBettingOpen:
		closeAt := start.Add(-BettingCloseWindow)
		if now.Before(closeAt) {
			b.SubText = "Closes in " + Until(closeAt, now, "Closed")
		} else {
			b.SubText = "Closed"
		}
	case domain.StatusLive:
		b.SubText = Since(start, now)
	}

	return b
}
