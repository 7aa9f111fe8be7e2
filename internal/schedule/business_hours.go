package schedule

import (
	"math"
	"sync"
	"time"
)

// BusinessHoursCalculator performs calendar-aware interval arithmetic over
// a weekly schedule and holiday list. Every other SLA component measures
// elapsed contractual time through it, so a raw wall-clock subtraction
// never leaks into compliance math.
type BusinessHoursCalculator struct {
	mu  sync.RWMutex
	cfg *Config
}

// NewBusinessHoursCalculator constructs a calculator over the given config.
func NewBusinessHoursCalculator(cfg *Config) *BusinessHoursCalculator {
	return &BusinessHoursCalculator{cfg: cfg}
}

// Config returns the currently held configuration.
func (c *BusinessHoursCalculator) Config() *Config {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cfg
}

// UpdateConfig replaces the held configuration wholesale.
func (c *BusinessHoursCalculator) UpdateConfig(cfg *Config) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cfg = cfg
}

// AddHoliday augments the holiday list, keeping it sorted.
func (c *BusinessHoursCalculator) AddHoliday(date string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	next, err := c.cfg.withHoliday(date)
	if err != nil {
		return err
	}
	c.cfg = next
	return nil
}

// RemoveHoliday drops a holiday from the list.
func (c *BusinessHoursCalculator) RemoveHoliday(date string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	next, err := c.cfg.withoutHoliday(date)
	if err != nil {
		return err
	}
	c.cfg = next
	return nil
}

// CalculateBusinessHours returns the business hours contained in [start, end),
// walking the interval day by day and intersecting each day's slice with the
// weekday's configured window. Holidays and unconfigured weekdays contribute
// zero. Returns 0 when start >= end. Rounded to 2 decimals.
func (c *BusinessHoursCalculator) CalculateBusinessHours(start, end time.Time) float64 {
	cfg := c.Config()
	if !start.Before(end) {
		return 0
	}
	start = start.In(cfg.Location)
	end = end.In(cfg.Location)

	total := 0.0
	for day := startOfDay(start); day.Before(end); day = day.AddDate(0, 0, 1) {
		window, ok := cfg.Windows[day.Weekday()]
		if !ok || cfg.IsHoliday(day) {
			continue
		}
		windowStart := day.Add(time.Duration(window.StartMinute) * time.Minute)
		windowEnd := day.Add(time.Duration(window.EndMinute) * time.Minute)

		sliceStart := maxTime(start, windowStart)
		sliceEnd := minTime(end, windowEnd)
		if sliceEnd.After(sliceStart) {
			total += sliceEnd.Sub(sliceStart).Hours()
		}
	}
	return round2(total)
}

// AddBusinessHours walks forward from start consuming available business
// hours per day and returns the instant at which hoursToAdd business hours
// have elapsed. Holidays and non-business days are skipped entirely.
func (c *BusinessHoursCalculator) AddBusinessHours(start time.Time, hoursToAdd float64) time.Time {
	cfg := c.Config()
	if hoursToAdd <= 0 {
		return start
	}
	start = start.In(cfg.Location)

	remaining := hoursToAdd
	cursor := start
	// Bounded walk: an empty schedule would otherwise never terminate.
	for i := 0; i < 366*20; i++ {
		day := startOfDay(cursor)
		window, ok := cfg.Windows[day.Weekday()]
		if !ok || cfg.IsHoliday(day) {
			cursor = day.AddDate(0, 0, 1)
			continue
		}
		windowStart := day.Add(time.Duration(window.StartMinute) * time.Minute)
		windowEnd := day.Add(time.Duration(window.EndMinute) * time.Minute)

		effective := maxTime(cursor, windowStart)
		if !effective.Before(windowEnd) {
			cursor = day.AddDate(0, 0, 1)
			continue
		}
		available := windowEnd.Sub(effective).Hours()
		if available >= remaining {
			return effective.Add(time.Duration(remaining * float64(time.Hour)))
		}
		remaining -= available
		cursor = day.AddDate(0, 0, 1)
	}
	return cursor
}

// IsBusinessTime reports whether the instant falls inside a configured
// business window on a non-holiday.
func (c *BusinessHoursCalculator) IsBusinessTime(instant time.Time) bool {
	cfg := c.Config()
	instant = instant.In(cfg.Location)
	window, ok := cfg.Windows[instant.Weekday()]
	if !ok || cfg.IsHoliday(instant) {
		return false
	}
	minutes := instant.Hour()*60 + instant.Minute()
	return minutes >= window.StartMinute && minutes < window.EndMinute
}

// NextBusinessDay returns the first day after the given date that carries a
// business window and is not a holiday.
func (c *BusinessHoursCalculator) NextBusinessDay(date time.Time) time.Time {
	cfg := c.Config()
	day := startOfDay(date.In(cfg.Location)).AddDate(0, 0, 1)
	for i := 0; i < 366*2; i++ {
		if _, ok := cfg.Windows[day.Weekday()]; ok && !cfg.IsHoliday(day) {
			return day
		}
		day = day.AddDate(0, 0, 1)
	}
	return day
}

// CalculateSLADeadline dispatches between raw 24x7 addition and business
// hours addition based on the threshold's policy flag. Every caller relies
// on this single switch to stay consistent.
func (c *BusinessHoursCalculator) CalculateSLADeadline(start time.Time, slaHours float64, businessHoursOnly bool) time.Time {
	if !businessHoursOnly {
		return start.Add(time.Duration(slaHours * float64(time.Hour)))
	}
	return c.AddBusinessHours(start, slaHours)
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func maxTime(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func minTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Round2 rounds to 2 decimal places, the precision every SLA figure carries.
func Round2(v float64) float64 {
	return round2(v)
}
