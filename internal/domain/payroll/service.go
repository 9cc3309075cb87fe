package payroll

import (
	"context"
	"time"
)

// Calculator turns timesheet inputs into a full payroll computation.
type Calculator interface {
	Compute(input ComputeInput) (Computation, error)
}

type PayrollService interface {
	// Records
	PreviewPayroll(ctx context.Context, req PreviewPayrollRequest) (ComputationResponse, error)
	CreatePayroll(ctx context.Context, req CreatePayrollRequest) (CreatePayrollResponse, error)
	GetPayrollRecord(ctx context.Context, id string) (PayrollRecordResponse, error)
	ListPayrollRecords(ctx context.Context, filter PayrollFilter) (ListPayrollRecordResponse, error)
	ChangeState(ctx context.Context, req ChangeStateRequest) (PayrollRecordResponse, error)
	GetRecordHistory(ctx context.Context, id string) ([]HistoryEntryResponse, error)

	// Payments
	RecordPayment(ctx context.Context, req RecordPaymentRequest) (PaymentResponse, error)
	ListPayments(ctx context.Context, payrollRecordID string) ([]PaymentResponse, error)

	// Summary
	GetWeeklySummary(ctx context.Context, isoYear, isoWeek int) (WeeklySummaryResponse, error)
}

type WeekService interface {
	CreateWeek(ctx context.Context, req CreateWeekRequest) (PayrollWeekResponse, error)
	GetWeek(ctx context.Context, id string) (PayrollWeekResponse, error)
	ChangeWeekStatus(ctx context.Context, req ChangeWeekStatusRequest) (PayrollWeekResponse, error)
	// ResolveWeek describes the week containing date without persisting anything.
	ResolveWeek(ctx context.Context, date time.Time) (PayrollWeekResponse, error)
	// CloseStaleWeeks closes every open week that ended more than the configured grace period before now.
	CloseStaleWeeks(ctx context.Context, now time.Time) (int, error)
}

// PeriodResolver maps dates onto ISO weeks and week-of-month rows.
type PeriodResolver interface {
	ISOWeekOf(date time.Time) (isoYear, isoWeek int)
	WeekOfMonth(date time.Time) int
	WeekBounds(isoYear, isoWeek int) (monday, sunday time.Time)
	Describe(date time.Time) PayrollWeek
	DescribeISOWeek(isoYear, isoWeek int) PayrollWeek
	PeriodKey(employeeID string, isoYear, isoWeek int) string
	// FindExisting returns nil without error when the employee has no record for the week.
	FindExisting(ctx context.Context, employeeID string, isoYear, isoWeek int) (*PayrollRecord, error)
}
