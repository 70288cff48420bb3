package lifecycle

import (
	"math"
	"time"
)

// ReturnDeadline computes the moment late fees start accruing: the scheduled
// drop-off plus the grace window. The second return is false when dropAt is
// nil, in which case no deadline exists and callers must fall back to
// pickup-only stage resolution.
//
// Negative or non-finite grace hours are treated as zero. Never panics.
func ReturnDeadline(dropAt *time.Time, graceHours float64) (time.Time, bool) {
	if dropAt == nil || dropAt.IsZero() {
		return time.Time{}, false
	}
	g := graceHours
	if math.IsNaN(g) || math.IsInf(g, 0) || g < 0 {
		g = 0
	}
	return dropAt.Add(time.Duration(g * float64(time.Hour))), true
}
