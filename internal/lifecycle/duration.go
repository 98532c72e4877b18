package lifecycle

import (
	"fmt"
	"time"
)

// Until formats the remaining time from now to target as a compact string:
// "2d 5h" for a day or more, "5h 45m" for an hour or more, "45m" below that.
// Once now reaches target the terminal label is returned instead ("Closed",
// "Started", whatever fits the call site). Deltas are floored to whole
// minutes so a countdown never reads higher than the truth and never shows
// the terminal label early.
func Until(target, now time.Time, terminal string) string {
	if !now.Before(target) {
		return terminal
	}
	return compact(target.Sub(now))
}

// Since formats elapsed time from target to now as "Started 12m ago". Before
// the target it returns "Not started".
func Since(target, now time.Time) string {
	if now.Before(target) {
		return "Not started"
	}
	return "Started " + compact(now.Sub(target)) + " ago"
}

// compact renders a positive duration floored to whole minutes.
func compact(d time.Duration) string {
	minutes := int64(d / time.Minute)

	days := minutes / (24 * 60)
	hours := (minutes % (24 * 60)) / 60
	mins := minutes % 60

	switch {
	case days >= 1:
		return fmt.Sprintf("%dd %dh", days, hours)
	case hours >= 1:
		return fmt.Sprintf("%dh %dm", hours, mins)
	default:
		return fmt.Sprintf("%dm", mins)
	}
}
