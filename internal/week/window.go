// Package week computes the Monday-to-Sunday calendar windows used to group
// and filter matches. All arithmetic is done on UTC instants; formatted
// strings are derived at the edges only.
package week

import (
	"fmt"
	"strings"
	"time"

	"github.com/AI-Betting-Arena/arenaboard/internal/domain"
)

// Offset selects the week relative to a reference instant.
type Offset int

const (
	Previous Offset = iota - 1
	Current
	Next
)

// String returns the query-token form of the offset.
func (o Offset) String() string {
	switch o {
	case Previous:
		return "previous"
	case Next:
		return "next"
	default:
		return "current"
	}
}

// ParseOffset converts a query token into an Offset. It accepts the tokens
// used by the dashboard API ("prev", "previous", "current", "next", and the
// empty string for the current week). Anything else is rejected here so the
// calculator itself never sees an invalid offset.
func ParseOffset(s string) (Offset, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "current":
		return Current, nil
	case "prev", "previous":
		return Previous, nil
	case "next":
		return Next, nil
	default:
		return Current, fmt.Errorf("week: %w: %q", domain.ErrInvalidOffset, s)
	}
}

// Window is a fixed Monday-to-Sunday range. Start is always a Monday at
// 00:00:00 UTC and End is the following Sunday at 00:00:00 UTC (Start + 6
// days); range checks treat the whole Sunday as inside the window.
type Window struct {
	Start time.Time
	End   time.Time
}

// ForInstant returns the window containing reference, shifted by the given
// offset. The computation is pure: the same reference and offset always
// produce the same window, and stepping the reference by ±7 days yields
// adjacent, non-overlapping windows.
func ForInstant(reference time.Time, off Offset) Window {
	ref := reference.UTC()

	// time.Weekday numbers Sunday as 0; treat it as day 7 so a Sunday
	// reference still resolves to the Monday of the same (ending) week.
	weekday := int(ref.Weekday())
	if weekday == 0 {
		weekday = 7
	}

	monday := time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, time.UTC).
		AddDate(0, 0, -(weekday - 1)).
		AddDate(0, 0, 7*int(off))

	return Window{
		Start: monday,
		End:   monday.AddDate(0, 0, 6),
	}
}

// Contains reports whether t falls inside the window, counting the whole of
// the closing Sunday.
func (w Window) Contains(t time.Time) bool {
	t = t.UTC()
	return !t.Before(w.Start) && t.Before(w.End.AddDate(0, 0, 1))
}

// Label renders the display label "YYYY.MM.DD ~ YYYY.MM.DD".
func (w Window) Label() string {
	return w.Start.Format("2006.01.02") + " ~ " + w.End.Format("2006.01.02")
}

// ISOLabel renders the ISO-8601 week label "YYYY-Www" of the window's Monday,
// e.g. "2024-W05". Note the ISO year can differ from the calendar year around
// new year.
func (w Window) ISOLabel() string {
	year, wk := w.Start.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, wk)
}

// FromDate returns the window's first calendar date as YYYY-MM-DD, the form
// the match feed expects.
func (w Window) FromDate() string {
	return w.Start.Format("2006-01-02")
}

// ToDate returns the window's last calendar date as YYYY-MM-DD.
func (w Window) ToDate() string {
	return w.End.Format("2006-01-02")
}
