package payroll

import (
	"context"
	"time"
)

// PayrollRecordRepository defines data access methods for payroll records.
type PayrollRecordRepository interface {
	Create(ctx context.Context, record PayrollRecord) (PayrollRecord, error)
	GetByID(ctx context.Context, id string) (PayrollRecord, error)
	// GetByEmployeeWeek returns ErrPayrollRecordNotFound when the employee has no record for the ISO week.
	GetByEmployeeWeek(ctx context.Context, employeeID string, isoYear, isoWeek int) (PayrollRecord, error)
	List(ctx context.Context, filter PayrollFilter) ([]PayrollRecord, int64, error)
	ListByWeek(ctx context.Context, isoYear, isoWeek int) ([]PayrollRecord, error)
	UpdateStatus(ctx context.Context, record PayrollRecord) error
}

type PayrollWeekRepository interface {
	Create(ctx context.Context, week PayrollWeek) (PayrollWeek, error)
	GetByID(ctx context.Context, id string) (PayrollWeek, error)
	GetByISOWeek(ctx context.Context, isoYear, isoWeek int) (PayrollWeek, error)
	UpdateStatus(ctx context.Context, id string, status WeekStatus) error
	// ListUnclosedEndingBefore returns weeks not yet closed whose EndDate is before cutoff.
	ListUnclosedEndingBefore(ctx context.Context, cutoff time.Time) ([]PayrollWeek, error)
}

// PaymentRepository is append-only.
type PaymentRepository interface {
	Append(ctx context.Context, payment Payment) (Payment, error)
	ListByRecord(ctx context.Context, payrollRecordID string) ([]Payment, error)
}

// HistoryRepository is append-only.
type HistoryRepository interface {
	Append(ctx context.Context, entry HistoryEntry) (HistoryEntry, error)
	ListByRecord(ctx context.Context, payrollRecordID string) ([]HistoryEntry, error)
}

// TxManager runs fn inside one transaction. Repositories called with the ctx passed to fn join it.
type TxManager interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
