// Package week implements the pure calendar aggregation logic: Monday-anchored
// week boundaries, inclusive range totals, and goal percentages.
//
// The week start is derived from the calendar weekday (ISO weekday 1 =
// Monday), never from a locale-dependent week definition, so results are
// deterministic on every platform.
package week

import (
	"time"

	"github.com/avelichka/steptrack/internal/models"
)

// BoundsFor returns the Monday and Sunday (both at date granularity,
// midnight in ref's location) of the week containing ref.
func BoundsFor(ref time.Time) (start, end time.Time) {
	day := dateOnly(ref)
	// time.Weekday has Sunday = 0; shift so Monday = 0.
	offset := (int(day.Weekday()) + 6) % 7
	start = day.AddDate(0, 0, -offset)
	end = start.AddDate(0, 0, 6)
	return start, end
}

// Total sums steps over all entries whose date falls in [start, end]
// inclusive, at date granularity. Duplicate dates all count. Entries whose
// date does not parse are skipped: the validated write path never produces
// them, and a total must not fail over one stray record.
func Total(entries []models.StepEntry, start, end time.Time) int {
	// ISO dates compare correctly as strings, which also keeps the bounds
	// check independent of the entries' and the bounds' time zones.
	from, to := start.Format(models.DateLayout), end.Format(models.DateLayout)
	total := 0
	for _, e := range entries {
		if _, err := time.Parse(models.DateLayout, e.Date); err != nil {
			continue
		}
		if e.Date >= from && e.Date <= to {
			total += e.Steps
		}
	}
	return total
}

// TotalOn sums steps over all entries logged exactly on date (YYYY-MM-DD).
func TotalOn(entries []models.StepEntry, date string) int {
	total := 0
	for _, e := range entries {
		if e.Date == date {
			total += e.Steps
		}
	}
	return total
}

// TotalAll sums steps over every entry regardless of date.
func TotalAll(entries []models.StepEntry) int {
	total := 0
	for _, e := range entries {
		total += e.Steps
	}
	return total
}

// PercentOfGoal returns total/goal*100. A goal of zero (or less) yields 0
// rather than dividing by zero. The result is uncapped; clamping for
// display is left to callers.
func PercentOfGoal(total, goal int) float64 {
	if goal <= 0 {
		return 0
	}
	return float64(total) / float64(goal) * 100
}

// Streak counts consecutive days ending at today (YYYY-MM-DD, inclusive)
// on which at least one step was logged. A day with no entries, or a
// malformed today, ends the streak.
func Streak(entries []models.StepEntry, today time.Time) int {
	perDay := make(map[string]int, len(entries))
	for _, e := range entries {
		perDay[e.Date] += e.Steps
	}
	streak := 0
	for day := dateOnly(today); perDay[day.Format(models.DateLayout)] > 0; day = day.AddDate(0, 0, -1) {
		streak++
	}
	return streak
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
