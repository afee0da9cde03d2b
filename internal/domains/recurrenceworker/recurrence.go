// Package recurrenceworker consumes task.completed events and materializes
// the next occurrence of a recurring task.
package recurrenceworker

import (
	"time"

	"github.com/xpanvictor/xarvis/internal/domains/task"
)

// NextOccurrence advances from as the given recurrence dictates, then keeps
// advancing until the result is strictly after now — a task completed long
// after its due date jumps straight to the next future occurrence instead
// of producing a backlog of already-overdue successors.
//
// Monthly advances clamp to the shorter month: Jan 31 + monthly lands on
// Feb 28 (Feb 29 in a leap year), not March 2 or 3.
func NextOccurrence(from time.Time, r task.Recurrence, now time.Time) time.Time {
	next := from
	for {
		next = advanceOnce(next, r)
		if next.After(now) {
			return next
		}
	}
}

func advanceOnce(t time.Time, r task.Recurrence) time.Time {
	switch r {
	case task.RecurrenceDaily:
		return t.AddDate(0, 0, 1)
	case task.RecurrenceWeekly:
		return t.AddDate(0, 0, 7)
	case task.RecurrenceMonthly:
		return addMonthClamped(t, 1)
	default:
		return t
	}
}

func addMonthClamped(t time.Time, months int) time.Time {
	year, month, day := t.Date()
	firstOfTarget := time.Date(year, month+time.Month(months), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	lastDay := firstOfTarget.AddDate(0, 1, -1).Day()
	if day > lastDay {
		day = lastDay
	}
	return time.Date(firstOfTarget.Year(), firstOfTarget.Month(), day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}
