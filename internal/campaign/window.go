package campaign

import "time"

// TimeRange is an active window. A zero Start or End leaves that side open.
type TimeRange struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside [Start, End).
func (r TimeRange) Contains(t time.Time) bool {
	if !r.Start.IsZero() && t.Before(r.Start) {
		return false
	}
	if !r.End.IsZero() && !t.Before(r.End) {
		return false
	}
	return true
}

// Remaining returns the time left until End, or 0 for open or past windows.
func (r TimeRange) Remaining(now time.Time) time.Duration {
	if r.End.IsZero() || !now.Before(r.End) {
		return 0
	}
	return r.End.Sub(now)
}
