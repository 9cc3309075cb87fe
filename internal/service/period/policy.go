package period

import (
	"fmt"
	"time"
)

// WeekOfMonthPolicy decides which row of a month a date belongs to.
type WeekOfMonthPolicy interface {
	Name() string
	WeekOfMonth(date time.Time) int
}

const (
	PolicyCalendarGrid   = "calendar_grid"
	PolicyMondayAnchored = "monday_anchored"
)

// CalendarGridPolicy splits the month into 7-day rows starting on day 1.
// Days 29 to 31 stay in row 5.
type CalendarGridPolicy struct{}

func (CalendarGridPolicy) Name() string { return PolicyCalendarGrid }

func (CalendarGridPolicy) WeekOfMonth(date time.Time) int {
	row := (date.Day()-1)/7 + 1
	if row > 5 {
		return 5
	}
	return row
}

// MondayAnchoredPolicy counts weeks from the first Monday of the month, capped at 4.
// Days before the first Monday count as week 1. Kept for legacy reports only.
type MondayAnchoredPolicy struct{}

func (MondayAnchoredPolicy) Name() string { return PolicyMondayAnchored }

func (MondayAnchoredPolicy) WeekOfMonth(date time.Time) int {
	first := time.Date(date.Year(), date.Month(), 1, 0, 0, 0, 0, date.Location())
	firstMonday := 1 + (8-int(first.Weekday()))%7
	if date.Day() < firstMonday {
		return 1
	}
	week := (date.Day()-firstMonday)/7 + 1
	if week > 4 {
		return 4
	}
	return week
}

// ParsePolicy maps a configuration value to a policy. Empty selects the calendar grid.
func ParsePolicy(name string) (WeekOfMonthPolicy, error) {
	switch name {
	case "", PolicyCalendarGrid:
		return CalendarGridPolicy{}, nil
	case PolicyMondayAnchored:
		return MondayAnchoredPolicy{}, nil
	default:
		return nil, fmt.Errorf("unknown week-of-month policy %q", name)
	}
}
