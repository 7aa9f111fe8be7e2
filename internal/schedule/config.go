package schedule

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// DayWindow is one weekday's business window, minutes since midnight.
type DayWindow struct {
	StartMinute int
	EndMinute   int
}

// Hours returns the window length in hours.
func (w DayWindow) Hours() float64 {
	return float64(w.EndMinute-w.StartMinute) / 60.0
}

// Config is the weekly business schedule a calculator operates on.
// Immutable once built; replaced wholesale on update.
type Config struct {
	Windows  map[time.Weekday]DayWindow
	Holidays []string // "2006-01-02", kept sorted
	Location *time.Location

	holidaySet map[string]struct{}
}

const holidayDateLayout = "2006-01-02"

// NewConfig validates and builds a schedule configuration. Every window
// must have start < end; the holiday list is normalized and sorted.
func NewConfig(windows map[time.Weekday]DayWindow, holidays []string, timezone string) (*Config, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", timezone, err)
	}
	for day, window := range windows {
		if window.StartMinute < 0 || window.EndMinute > 24*60 || window.StartMinute >= window.EndMinute {
			return nil, fmt.Errorf("invalid business window for %s: start %d, end %d", day, window.StartMinute, window.EndMinute)
		}
	}

	cfg := &Config{
		Windows:    make(map[time.Weekday]DayWindow, len(windows)),
		Location:   loc,
		holidaySet: make(map[string]struct{}, len(holidays)),
	}
	for day, window := range windows {
		cfg.Windows[day] = window
	}
	for _, holiday := range holidays {
		date := strings.TrimSpace(holiday)
		if date == "" {
			continue
		}
		if _, err := time.ParseInLocation(holidayDateLayout, date, loc); err != nil {
			return nil, fmt.Errorf("invalid holiday date %q: %w", holiday, err)
		}
		if _, exists := cfg.holidaySet[date]; exists {
			continue
		}
		cfg.holidaySet[date] = struct{}{}
		cfg.Holidays = append(cfg.Holidays, date)
	}
	sort.Strings(cfg.Holidays)
	return cfg, nil
}

// DefaultConfig is the Mon-Fri 08:00-17:00 schedule in the given zone.
func DefaultConfig(timezone string) (*Config, error) {
	window := DayWindow{StartMinute: 8 * 60, EndMinute: 17 * 60}
	return NewConfig(map[time.Weekday]DayWindow{
		time.Monday:    window,
		time.Tuesday:   window,
		time.Wednesday: window,
		time.Thursday:  window,
		time.Friday:    window,
	}, nil, timezone)
}

// ParseClock converts a "HH:MM" string into minutes since midnight.
func ParseClock(value string) (int, error) {
	parts := strings.SplitN(strings.TrimSpace(value), ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid clock value %q", value)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid clock value %q: %w", value, err)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("invalid clock value %q: %w", value, err)
	}
	if hour < 0 || hour > 24 || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("clock value %q out of range", value)
	}
	return hour*60 + minute, nil
}

// IsHoliday reports whether the given date (in the config's zone) is a holiday.
func (c *Config) IsHoliday(t time.Time) bool {
	_, ok := c.holidaySet[t.In(c.Location).Format(holidayDateLayout)]
	return ok
}

// withHoliday returns a copy with the holiday added.
func (c *Config) withHoliday(date string) (*Config, error) {
	return NewConfig(c.Windows, append(append([]string{}, c.Holidays...), date), c.Location.String())
}

// withoutHoliday returns a copy with the holiday removed.
func (c *Config) withoutHoliday(date string) (*Config, error) {
	kept := make([]string, 0, len(c.Holidays))
	for _, holiday := range c.Holidays {
		if holiday != date {
			kept = append(kept, holiday)
		}
	}
	return NewConfig(c.Windows, kept, c.Location.String())
}
