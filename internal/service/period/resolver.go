package period

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
)

// Resolver implements payroll.PeriodResolver.
type Resolver struct {
	policy  WeekOfMonthPolicy
	records payroll.PayrollRecordRepository
}

// NewResolver uses the calendar grid when policy is nil. records may be nil
// for callers that never look up existing payrolls.
func NewResolver(policy WeekOfMonthPolicy, records payroll.PayrollRecordRepository) *Resolver {
	if policy == nil {
		policy = CalendarGridPolicy{}
	}
	return &Resolver{policy: policy, records: records}
}

// ISOWeekOf returns the ISO-8601 year and week. The year can differ from the
// calendar year around New Year.
func (r *Resolver) ISOWeekOf(date time.Time) (int, int) {
	return date.ISOWeek()
}

func (r *Resolver) WeekOfMonth(date time.Time) int {
	return r.policy.WeekOfMonth(date)
}

// WeekBounds returns the Monday and Sunday of the ISO week in UTC.
func (r *Resolver) WeekBounds(isoYear, isoWeek int) (time.Time, time.Time) {
	// January 4th is always in week 1.
	jan4 := time.Date(isoYear, time.January, 4, 0, 0, 0, 0, time.UTC)
	offset := (int(jan4.Weekday()) + 6) % 7
	monday := jan4.AddDate(0, 0, -offset+(isoWeek-1)*7)
	return monday, monday.AddDate(0, 0, 6)
}

// Describe builds the unsaved payroll week containing date. The week belongs to
// the month of its Thursday, like the ISO year does.
func (r *Resolver) Describe(date time.Time) payroll.PayrollWeek {
	isoYear, isoWeek := r.ISOWeekOf(date)
	return r.DescribeISOWeek(isoYear, isoWeek)
}

func (r *Resolver) DescribeISOWeek(isoYear, isoWeek int) payroll.PayrollWeek {
	monday, sunday := r.WeekBounds(isoYear, isoWeek)
	thursday := monday.AddDate(0, 0, 3)
	weekOfMonth := r.WeekOfMonth(thursday)

	return payroll.PayrollWeek{
		ISOYear:     isoYear,
		ISOWeek:     isoWeek,
		StartDate:   monday,
		EndDate:     sunday,
		WeekOfMonth: weekOfMonth,
		Label:       Label(thursday, weekOfMonth, isoYear, isoWeek),
		Status:      payroll.WeekStatusDraft,
	}
}

// Label renders e.g. "Week 2 of March 2024 (2024-W10)".
func Label(date time.Time, weekOfMonth, isoYear, isoWeek int) string {
	return fmt.Sprintf("Week %d of %s %d (%04d-W%02d)", weekOfMonth, date.Month(), date.Year(), isoYear, isoWeek)
}

// PeriodKey is the duplicate-detection key of a payroll period.
func (r *Resolver) PeriodKey(employeeID string, isoYear, isoWeek int) string {
	return fmt.Sprintf("%s:%04d-W%02d", employeeID, isoYear, isoWeek)
}

func (r *Resolver) FindExisting(ctx context.Context, employeeID string, isoYear, isoWeek int) (*payroll.PayrollRecord, error) {
	if r.records == nil {
		return nil, errors.New("period resolver has no payroll record repository")
	}
	record, err := r.records.GetByEmployeeWeek(ctx, employeeID, isoYear, isoWeek)
	if err != nil {
		if errors.Is(err, payroll.ErrPayrollRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to look up payroll for %s: %w", r.PeriodKey(employeeID, isoYear, isoWeek), err)
	}
	return &record, nil
}
