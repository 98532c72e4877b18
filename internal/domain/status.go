package domain

// MatchStatus is the harmonized, display-facing lifecycle status. Unlike
// RawStatus it is a closed enumeration: every raw value maps to exactly one
// MatchStatus. It is derived on demand; only terminal statuses ever reach
// storage, as the final_status of an archived snapshot.
type MatchStatus string

const (
	StatusUpcoming      MatchStatus = "UPCOMING"
	StatusBettingOpen   MatchStatus = "BETTING_OPEN"
	StatusBettingClosed MatchStatus = "BETTING_CLOSED"
	StatusLive          MatchStatus = "LIVE"
	StatusSettled       MatchStatus = "SETTLED"
	StatusPostponed     MatchStatus = "POSTPONED"
	StatusCancelled     MatchStatus = "CANCELLED"
)

// Terminal reports whether the status can never change again. Polling a match
// in a terminal status is pointless and callers are expected to stop.
func (s MatchStatus) Terminal() bool {
	return s == StatusSettled || s == StatusCancelled
}

// Valid reports whether s is one of the closed enumeration values.
func (s MatchStatus) Valid() bool {
	switch s {
	case StatusUpcoming, StatusBettingOpen, StatusBettingClosed,
		StatusLive, StatusSettled, StatusPostponed, StatusCancelled:
		return true
	}
	return false
}
