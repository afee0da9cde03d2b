package agent

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

var weekdays = map[string]time.Weekday{
	"sunday": time.Sunday, "monday": time.Monday, "tuesday": time.Tuesday,
	"wednesday": time.Wednesday, "thursday": time.Thursday, "friday": time.Friday,
	"saturday": time.Saturday,
}

// ResolveDate turns a natural-language date expression into an absolute UTC
// instant relative to now, per the glossary's "natural-language date" entry.
// It understands "today", "tomorrow", "in N <unit>(s)", "next <weekday>", and
// falls back to RFC3339 for anything already in machine form.
func ResolveDate(expr string, now time.Time) (time.Time, error) {
	now = now.UTC()
	e := strings.ToLower(strings.TrimSpace(expr))
	if e == "" {
		return time.Time{}, fmt.Errorf("empty date expression")
	}

	switch e {
	case "today":
		return endOfDay(now), nil
	case "tomorrow":
		return endOfDay(now.AddDate(0, 0, 1)), nil
	}

	if strings.HasPrefix(e, "in ") {
		fields := strings.Fields(e)
		if len(fields) == 3 {
			n, err := strconv.Atoi(fields[1])
			if err == nil {
				unit := strings.TrimSuffix(fields[2], "s")
				switch unit {
				case "minute":
					return now.Add(time.Duration(n) * time.Minute), nil
				case "hour":
					return now.Add(time.Duration(n) * time.Hour), nil
				case "day":
					return now.AddDate(0, 0, n), nil
				case "week":
					return now.AddDate(0, 0, 7*n), nil
				case "month":
					return now.AddDate(0, n, 0), nil
				}
			}
		}
	}

	if strings.HasPrefix(e, "next ") {
		name := strings.TrimPrefix(e, "next ")
		if wd, ok := weekdays[name]; ok {
			return endOfDay(nextWeekday(now, wd)), nil
		}
	}

	if t, err := time.Parse(time.RFC3339, expr); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse("2006-01-02", expr); err == nil {
		return endOfDay(t), nil
	}

	return time.Time{}, fmt.Errorf("unrecognized date expression: %q", expr)
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 0, 0, time.UTC)
}

func nextWeekday(from time.Time, target time.Weekday) time.Time {
	days := (int(target) - int(from.Weekday()) + 7) % 7
	if days == 0 {
		days = 7
	}
	return from.AddDate(0, 0, days)
}
