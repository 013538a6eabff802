package week_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avelichka/steptrack/internal/models"
	"github.com/avelichka/steptrack/internal/week"
)

func date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse(models.DateLayout, s)
	require.NoError(t, err)
	return d
}

func TestBoundsFor(t *testing.T) {
	cases := []struct {
		name      string
		ref       string
		wantStart string
		wantEnd   string
	}{
		{"tuesday", "2024-06-04", "2024-06-03", "2024-06-09"},
		{"monday is its own start", "2024-06-03", "2024-06-03", "2024-06-09"},
		{"sunday belongs to the ending week", "2024-06-09", "2024-06-03", "2024-06-09"},
		{"across a month boundary", "2024-07-31", "2024-07-29", "2024-08-04"},
		{"across a year boundary", "2025-01-01", "2024-12-30", "2025-01-05"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			start, end := week.BoundsFor(date(t, tc.ref))
			assert.Equal(t, tc.wantStart, start.Format(models.DateLayout))
			assert.Equal(t, tc.wantEnd, end.Format(models.DateLayout))
			assert.Equal(t, time.Monday, start.Weekday())
			assert.Equal(t, time.Sunday, end.Weekday())
		})
	}
}

func TestBoundsFor_ContainsReference(t *testing.T) {
	// Walk a fortnight and check every day lands inside its own week.
	day := date(t, "2024-12-23")
	for i := 0; i < 14; i++ {
		start, end := week.BoundsFor(day)
		assert.False(t, day.Before(start), "day %s before start %s", day, start)
		assert.False(t, day.After(end), "day %s after end %s", day, end)
		assert.Equal(t, 6*24*time.Hour, end.Sub(start))
		day = day.AddDate(0, 0, 1)
	}
}

func TestTotal(t *testing.T) {
	entries := []models.StepEntry{
		{Date: "2024-06-03", Steps: 1000},
		{Date: "2024-06-05", Steps: 2000},
		{Date: "2024-06-10", Steps: 5000},
	}
	start, end := week.BoundsFor(date(t, "2024-06-04"))
	assert.Equal(t, 3000, week.Total(entries, start, end))
}

func TestTotal_DuplicateDatesAllCount(t *testing.T) {
	entries := []models.StepEntry{
		{Date: "2024-06-04", Steps: 100},
		{Date: "2024-06-04", Steps: 250},
		{Date: "2024-06-04", Steps: 50},
	}
	start, end := week.BoundsFor(date(t, "2024-06-04"))
	assert.Equal(t, 400, week.Total(entries, start, end))
}

func TestTotal_InclusiveBounds(t *testing.T) {
	entries := []models.StepEntry{
		{Date: "2024-06-03", Steps: 1}, // Monday
		{Date: "2024-06-09", Steps: 2}, // Sunday
		{Date: "2024-06-02", Steps: 4}, // previous Sunday
		{Date: "2024-06-10", Steps: 8}, // next Monday
	}
	start, end := week.BoundsFor(date(t, "2024-06-06"))
	assert.Equal(t, 3, week.Total(entries, start, end))
}

func TestTotal_SkipsMalformedDates(t *testing.T) {
	entries := []models.StepEntry{
		{Date: "not-a-date", Steps: 1000},
		{Date: "2024-06-04", Steps: 500},
	}
	start, end := week.BoundsFor(date(t, "2024-06-04"))
	assert.Equal(t, 500, week.Total(entries, start, end))
}

func TestTotalOn(t *testing.T) {
	entries := []models.StepEntry{
		{Date: "2024-06-04", Steps: 100},
		{Date: "2024-06-05", Steps: 200},
		{Date: "2024-06-04", Steps: 300},
	}
	assert.Equal(t, 400, week.TotalOn(entries, "2024-06-04"))
	assert.Equal(t, 0, week.TotalOn(entries, "2024-06-06"))
}

func TestTotalAll(t *testing.T) {
	entries := []models.StepEntry{
		{Date: "2024-06-04", Steps: 100},
		{Date: "2023-01-01", Steps: 200},
	}
	assert.Equal(t, 300, week.TotalAll(entries))
	assert.Equal(t, 0, week.TotalAll(nil))
}

func TestPercentOfGoal(t *testing.T) {
	assert.Equal(t, 30.0, week.PercentOfGoal(3000, 10000))
	assert.Equal(t, 150.0, week.PercentOfGoal(15000, 10000), "percent is uncapped")
	assert.Equal(t, 0.0, week.PercentOfGoal(0, 10000))
}

func TestPercentOfGoal_ZeroGoal(t *testing.T) {
	// Never divides by zero; the documented policy value is 0.
	assert.Equal(t, 0.0, week.PercentOfGoal(3000, 0))
	assert.Equal(t, 0.0, week.PercentOfGoal(0, 0))
	assert.Equal(t, 0.0, week.PercentOfGoal(3000, -5))
}

func TestStreak(t *testing.T) {
	today := date(t, "2024-06-05")
	entries := []models.StepEntry{
		{Date: "2024-06-05", Steps: 100},
		{Date: "2024-06-04", Steps: 100},
		{Date: "2024-06-03", Steps: 100},
		{Date: "2024-06-01", Steps: 100}, // gap on the 2nd ends the streak
	}
	assert.Equal(t, 3, week.Streak(entries, today))
}

func TestStreak_NoEntryToday(t *testing.T) {
	entries := []models.StepEntry{
		{Date: "2024-06-04", Steps: 100},
	}
	assert.Equal(t, 0, week.Streak(entries, date(t, "2024-06-05")))
}

func TestStreak_ZeroStepDayDoesNotCount(t *testing.T) {
	entries := []models.StepEntry{
		{Date: "2024-06-05", Steps: 0},
		{Date: "2024-06-04", Steps: 100},
	}
	assert.Equal(t, 0, week.Streak(entries, date(t, "2024-06-05")))
}
