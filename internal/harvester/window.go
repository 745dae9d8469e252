package harvester

import (
	"time"
)

// Window is one half-open slice of time a single search query covers.
// Windows are never mutated, only split into two children.
type Window struct {
	Start time.Time
	End   time.Time
}

func (w Window) Duration() time.Duration {
	return w.End.Sub(w.Start)
}

// dayWindow covers one UTC day, [00:00:00, 23:59:59].
func dayWindow(day time.Time) Window {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	return Window{
		Start: start,
		End:   start.Add(24*time.Hour - time.Second),
	}
}

// splitWindow bisects at the midpoint, truncated to whole seconds.
// The halves are contiguous with no gap and no overlap: the right
// child starts one second after the left child ends. A midpoint that
// does not clear the start is forced one second forward so recursion
// always terminates.
func splitWindow(w Window) (Window, Window) {
	mid := w.Start.Add(w.Duration() / 2).Truncate(time.Second)
	if !mid.After(w.Start) {
		mid = w.Start.Add(time.Second)
	}

	rightStart := mid.Add(time.Second)
	if rightStart.After(w.End) {
		rightStart = w.End
	}

	return Window{Start: w.Start, End: mid}, Window{Start: rightStart, End: w.End}
}

func parseDay(value string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", value, time.UTC)
}

func isoTime(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05Z")
}
