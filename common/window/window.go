// Package window implements the temporal predicates shared by every
// escalation tier: given a member's last confirmed activity and the current
// instant, decide whether the member's inactivity span currently falls inside
// a tier's firing window.
package window

import "time"

// Elapsed returns how long the member has been inactive. Clock skew can put
// last_seen_at slightly in the future; elapsed is clamped at zero so a fresh
// check-in never matches any window.
func Elapsed(now, lastSeen time.Time) time.Duration {
	elapsed := now.Sub(lastSeen)
	if elapsed < 0 {
		return 0
	}
	return elapsed
}

// InWindow reports whether the inactivity span has entered the firing window
// that opens at threshold. A zero tolerance means the window stays open for
// the rest of the inactivity episode; a positive tolerance closes it again
// at threshold+tolerance.
func InWindow(now, lastSeen time.Time, threshold, tolerance time.Duration) bool {
	elapsed := Elapsed(now, lastSeen)
	if elapsed < threshold {
		return false
	}
	if tolerance <= 0 {
		return true
	}
	return elapsed < threshold+tolerance
}

// InRecurringWindow reports whether the inactivity span is inside the firing
// window that opens at threshold and re-opens every period thereafter, each
// time for the given tolerance. Used by tiers that repeat until the member
// checks in, at most once per period. A zero period degenerates to a single
// bounded window at threshold.
func InRecurringWindow(now, lastSeen time.Time, threshold, period, tolerance time.Duration) bool {
	elapsed := Elapsed(now, lastSeen)
	if elapsed < threshold {
		return false
	}
	if period <= 0 {
		return InWindow(now, lastSeen, threshold, tolerance)
	}
	offset := (elapsed - threshold) % period
	return offset < tolerance
}
