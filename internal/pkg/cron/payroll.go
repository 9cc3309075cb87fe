package cron

import (
	"context"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
)

const closeStaleWeeksJob = "close_stale_payroll_weeks"

// PayrollWeekJobs contains payroll week housekeeping jobs
type PayrollWeekJobs struct {
	weekService payroll.WeekService
	interval    time.Duration
	now         func() time.Time
}

func NewPayrollWeekJobs(weekService payroll.WeekService, interval time.Duration) *PayrollWeekJobs {
	return &PayrollWeekJobs{
		weekService: weekService,
		interval:    interval,
		now:         time.Now,
	}
}

// RegisterJobs registers all payroll week cron jobs
func (j *PayrollWeekJobs) RegisterJobs(scheduler *Scheduler) error {
	return scheduler.AddJob(Job{
		Name:     closeStaleWeeksJob,
		Interval: j.interval,
		Timeout:  5 * time.Minute,
		Fn:       j.CloseStaleWeeks,
	})
}

// CloseStaleWeeks closes weeks whose grace period after the end date has passed.
func (j *PayrollWeekJobs) CloseStaleWeeks(ctx context.Context) error {
	closed, err := j.weekService.CloseStaleWeeks(ctx, j.now())
	if closed > 0 {
		slog.Info("Closed stale payroll weeks", "count", closed)
	}
	return err
}
