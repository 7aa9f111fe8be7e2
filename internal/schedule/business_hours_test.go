package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCalculator(t *testing.T, holidays ...string) *BusinessHoursCalculator {
	t.Helper()
	window := DayWindow{StartMinute: 8 * 60, EndMinute: 17 * 60}
	cfg, err := NewConfig(map[time.Weekday]DayWindow{
		time.Monday:    window,
		time.Tuesday:   window,
		time.Wednesday: window,
		time.Thursday:  window,
		time.Friday:    window,
	}, holidays, "UTC")
	require.NoError(t, err)
	return NewBusinessHoursCalculator(cfg)
}

func TestNewConfigRejectsInvertedWindow(t *testing.T) {
	_, err := NewConfig(map[time.Weekday]DayWindow{
		time.Monday: {StartMinute: 17 * 60, EndMinute: 8 * 60},
	}, nil, "UTC")
	assert.Error(t, err)
}

func TestNewConfigSortsHolidays(t *testing.T) {
	cfg, err := NewConfig(map[time.Weekday]DayWindow{
		time.Monday: {StartMinute: 8 * 60, EndMinute: 17 * 60},
	}, []string{"2025-12-25", "2025-01-01", "2025-07-04"}, "UTC")
	require.NoError(t, err)
	assert.Equal(t, []string{"2025-01-01", "2025-07-04", "2025-12-25"}, cfg.Holidays)
}

func TestCalculateBusinessHoursSingleDay(t *testing.T) {
	calc := newTestCalculator(t)

	// Monday 2025-06-02, fully inside the window: equals wall clock.
	start := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	end := time.Date(2025, 6, 2, 15, 30, 0, 0, time.UTC)
	assert.Equal(t, 6.5, calc.CalculateBusinessHours(start, end))
}

func TestCalculateBusinessHoursClampsToWindow(t *testing.T) {
	calc := newTestCalculator(t)

	// Monday 06:00 to 20:00 only counts the 08:00-17:00 window.
	start := time.Date(2025, 6, 2, 6, 0, 0, 0, time.UTC)
	end := time.Date(2025, 6, 2, 20, 0, 0, 0, time.UTC)
	assert.Equal(t, 9.0, calc.CalculateBusinessHours(start, end))
}

func TestCalculateBusinessHoursStartAfterEnd(t *testing.T) {
	calc := newTestCalculator(t)
	start := time.Date(2025, 6, 2, 15, 0, 0, 0, time.UTC)
	end := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	assert.Equal(t, 0.0, calc.CalculateBusinessHours(start, end))
	assert.Equal(t, 0.0, calc.CalculateBusinessHours(start, start))
}

func TestCalculateBusinessHoursSkipsWeekend(t *testing.T) {
	calc := newTestCalculator(t)

	// Saturday through Sunday contributes nothing regardless of span.
	start := time.Date(2025, 6, 7, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 0.0, calc.CalculateBusinessHours(start, end))
}

func TestCalculateBusinessHoursSkipsHoliday(t *testing.T) {
	calc := newTestCalculator(t, "2025-06-03")

	// Tuesday 2025-06-03 is a holiday: the full clock span yields zero.
	start := time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 6, 4, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 0.0, calc.CalculateBusinessHours(start, end))

	// Monday + holiday Tuesday + Wednesday = two business days.
	start = time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)
	end = time.Date(2025, 6, 4, 17, 0, 0, 0, time.UTC)
	assert.Equal(t, 18.0, calc.CalculateBusinessHours(start, end))
}

func TestCalculateBusinessHoursFridayToMonday(t *testing.T) {
	calc := newTestCalculator(t)

	// Created Friday 16:00, resolved Monday 09:00: 1h Friday + 1h Monday.
	start := time.Date(2025, 6, 6, 16, 0, 0, 0, time.UTC) // Friday
	end := time.Date(2025, 6, 9, 9, 0, 0, 0, time.UTC)    // Monday
	assert.Equal(t, 2.0, calc.CalculateBusinessHours(start, end))
}

func TestAddBusinessHoursWithinDay(t *testing.T) {
	calc := newTestCalculator(t)
	start := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	deadline := calc.AddBusinessHours(start, 4)
	assert.Equal(t, time.Date(2025, 6, 2, 13, 0, 0, 0, time.UTC), deadline)
}

func TestAddBusinessHoursSpansWeekend(t *testing.T) {
	calc := newTestCalculator(t)

	// Friday 16:00 + 4h: 1h Friday, 3h Monday.
	start := time.Date(2025, 6, 6, 16, 0, 0, 0, time.UTC)
	deadline := calc.AddBusinessHours(start, 4)
	assert.Equal(t, time.Date(2025, 6, 9, 11, 0, 0, 0, time.UTC), deadline)
}

func TestAddBusinessHoursStartsOutsideWindow(t *testing.T) {
	calc := newTestCalculator(t)

	// Saturday start rolls forward to Monday 08:00.
	start := time.Date(2025, 6, 7, 12, 0, 0, 0, time.UTC)
	deadline := calc.AddBusinessHours(start, 2)
	assert.Equal(t, time.Date(2025, 6, 9, 10, 0, 0, 0, time.UTC), deadline)
}

func TestAddBusinessHoursRoundTrip(t *testing.T) {
	calc := newTestCalculator(t, "2025-06-05")

	starts := []time.Time{
		time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC),
		time.Date(2025, 6, 4, 16, 30, 0, 0, time.UTC),
		time.Date(2025, 6, 7, 3, 0, 0, 0, time.UTC), // weekend
	}
	hours := []float64{0.5, 4, 9, 27.25}

	for _, start := range starts {
		for _, h := range hours {
			deadline := calc.AddBusinessHours(start, h)
			got := calc.CalculateBusinessHours(start, deadline)
			assert.InDelta(t, h, got, 0.01, "start=%s hours=%v", start, h)
		}
	}
}

func TestAddBusinessHoursNonPositive(t *testing.T) {
	calc := newTestCalculator(t)
	start := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	assert.Equal(t, start, calc.AddBusinessHours(start, 0))
	assert.Equal(t, start, calc.AddBusinessHours(start, -3))
}

func TestIsBusinessTime(t *testing.T) {
	calc := newTestCalculator(t, "2025-06-04")

	assert.True(t, calc.IsBusinessTime(time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)))
	assert.False(t, calc.IsBusinessTime(time.Date(2025, 6, 2, 17, 0, 0, 0, time.UTC)))
	assert.False(t, calc.IsBusinessTime(time.Date(2025, 6, 7, 10, 0, 0, 0, time.UTC))) // Saturday
	assert.False(t, calc.IsBusinessTime(time.Date(2025, 6, 4, 10, 0, 0, 0, time.UTC))) // holiday
}

func TestNextBusinessDay(t *testing.T) {
	calc := newTestCalculator(t, "2025-06-09")

	// From Friday: Monday is a holiday, so Tuesday.
	next := calc.NextBusinessDay(time.Date(2025, 6, 6, 12, 0, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC), next)
}

func TestCalculateSLADeadline(t *testing.T) {
	calc := newTestCalculator(t)
	start := time.Date(2025, 6, 6, 16, 0, 0, 0, time.UTC) // Friday

	// 24x7 policy is raw addition.
	raw := calc.CalculateSLADeadline(start, 4, false)
	assert.Equal(t, start.Add(4*time.Hour), raw)

	// Business-hours policy walks the schedule.
	business := calc.CalculateSLADeadline(start, 4, true)
	assert.Equal(t, time.Date(2025, 6, 9, 11, 0, 0, 0, time.UTC), business)
}

func TestHolidayMutation(t *testing.T) {
	calc := newTestCalculator(t)
	day := time.Date(2025, 6, 3, 10, 0, 0, 0, time.UTC) // Tuesday

	require.NoError(t, calc.AddHoliday("2025-06-03"))
	assert.False(t, calc.IsBusinessTime(day))
	assert.Equal(t, []string{"2025-06-03"}, calc.Config().Holidays)

	require.NoError(t, calc.RemoveHoliday("2025-06-03"))
	assert.True(t, calc.IsBusinessTime(day))
	assert.Empty(t, calc.Config().Holidays)
}

func TestUpdateConfigReplacesSchedule(t *testing.T) {
	calc := newTestCalculator(t)
	saturday := time.Date(2025, 6, 7, 10, 0, 0, 0, time.UTC)
	assert.False(t, calc.IsBusinessTime(saturday))

	cfg, err := NewConfig(map[time.Weekday]DayWindow{
		time.Saturday: {StartMinute: 9 * 60, EndMinute: 13 * 60},
	}, nil, "UTC")
	require.NoError(t, err)
	calc.UpdateConfig(cfg)

	assert.True(t, calc.IsBusinessTime(saturday))
	assert.False(t, calc.IsBusinessTime(time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)))
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 1.33, Round2(4.0/3.0))
	assert.Equal(t, 0.0, Round2(0))
}
