package recurrenceworker_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/xpanvictor/xarvis/internal/domains/recurrenceworker"
	"github.com/xpanvictor/xarvis/internal/domains/task"
)

func mustUTC(t *testing.T, s string) time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, s)
	if err != nil {
		t.Fatalf("bad fixture time %q: %v", s, err)
	}
	return parsed.UTC()
}

func TestNextOccurrenceDaily(t *testing.T) {
	from := mustUTC(t, "2025-01-06T09:00:00Z")
	now := mustUTC(t, "2025-01-06T09:05:00Z")
	got := recurrenceworker.NextOccurrence(from, task.RecurrenceDaily, now)
	assert.Equal(t, mustUTC(t, "2025-01-07T09:00:00Z"), got)
}

func TestNextOccurrenceWeekly(t *testing.T) {
	from := mustUTC(t, "2025-01-06T09:00:00Z")
	now := mustUTC(t, "2025-01-06T09:05:00Z")
	got := recurrenceworker.NextOccurrence(from, task.RecurrenceWeekly, now)
	assert.Equal(t, mustUTC(t, "2025-01-13T09:00:00Z"), got)
}

// Monthly recurrence from Jan 31 lands on Feb 28 in a common year.
func TestNextOccurrenceMonthlyClampsCommonYear(t *testing.T) {
	from := mustUTC(t, "2025-01-31T12:00:00Z")
	now := mustUTC(t, "2025-01-31T12:05:00Z")
	got := recurrenceworker.NextOccurrence(from, task.RecurrenceMonthly, now)
	assert.Equal(t, mustUTC(t, "2025-02-28T12:00:00Z"), got)
}

// The same arithmetic in a leap year lands on Feb 29.
func TestNextOccurrenceMonthlyClampsLeapYear(t *testing.T) {
	from := mustUTC(t, "2024-01-31T12:00:00Z")
	now := mustUTC(t, "2024-01-31T12:05:00Z")
	got := recurrenceworker.NextOccurrence(from, task.RecurrenceMonthly, now)
	assert.Equal(t, mustUTC(t, "2024-02-29T12:00:00Z"), got)
}

// A task completed long after its due date must jump straight to the next
// future occurrence instead of producing a backlog of past occurrences.
func TestNextOccurrenceAdvancesPastBacklog(t *testing.T) {
	from := mustUTC(t, "2025-01-01T09:00:00Z")
	now := mustUTC(t, "2025-01-20T09:00:00Z")
	got := recurrenceworker.NextOccurrence(from, task.RecurrenceDaily, now)
	assert.Equal(t, mustUTC(t, "2025-01-21T09:00:00Z"), got)
	assert.True(t, got.After(now))
}
