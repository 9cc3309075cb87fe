package payroll

import (
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/tax"
	"github.com/shopspring/decimal"
)

// PayrollStatus enum
type PayrollStatus string

const (
	PayrollStatusPending    PayrollStatus = "pending"
	PayrollStatusInProgress PayrollStatus = "in_progress"
	PayrollStatusApproved   PayrollStatus = "approved"
	PayrollStatusPaid       PayrollStatus = "paid"
	PayrollStatusCancelled  PayrollStatus = "cancelled"
)

var recordTransitions = map[PayrollStatus][]PayrollStatus{
	PayrollStatusPending:    {PayrollStatusInProgress, PayrollStatusApproved, PayrollStatusPaid, PayrollStatusCancelled},
	PayrollStatusInProgress: {PayrollStatusApproved, PayrollStatusCancelled, PayrollStatusPending},
	PayrollStatusApproved:   {PayrollStatusPaid, PayrollStatusCancelled, PayrollStatusInProgress},
	PayrollStatusPaid:       {},
	PayrollStatusCancelled:  {PayrollStatusPending},
}

func (s PayrollStatus) IsValid() bool {
	_, ok := recordTransitions[s]
	return ok
}

// AllowedTransitions lists the statuses reachable from s in one step.
func (s PayrollStatus) AllowedTransitions() []PayrollStatus {
	next := recordTransitions[s]
	out := make([]PayrollStatus, len(next))
	copy(out, next)
	return out
}

func (s PayrollStatus) CanTransitionTo(next PayrollStatus) bool {
	for _, allowed := range recordTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// WeekStatus enum
type WeekStatus string

const (
	WeekStatusDraft      WeekStatus = "draft"
	WeekStatusInProgress WeekStatus = "in_progress"
	WeekStatusClosed     WeekStatus = "closed"
)

var weekTransitions = map[WeekStatus][]WeekStatus{
	WeekStatusDraft:      {WeekStatusInProgress, WeekStatusClosed},
	WeekStatusInProgress: {WeekStatusClosed},
	WeekStatusClosed:     {},
}

func (s WeekStatus) IsValid() bool {
	_, ok := weekTransitions[s]
	return ok
}

func (s WeekStatus) CanTransitionTo(next WeekStatus) bool {
	for _, allowed := range weekTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// PayrollWeek - one administrative payroll period (Monday to Sunday)
type PayrollWeek struct {
	ID          string
	ISOYear     int
	ISOWeek     int
	StartDate   time.Time
	EndDate     time.Time
	WeekOfMonth int
	Label       string
	Status      WeekStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (w PayrollWeek) IsClosed() bool {
	return w.Status == WeekStatusClosed
}

// PayrollRecord - computed payroll for one employee in one week
type PayrollRecord struct {
	ID                  string
	EmployeeID          string
	PayrollWeekID       string
	ISOYear             int
	ISOWeek             int
	ProjectID           *string
	DaysWorked          decimal.Decimal
	PayMode             employee.PayMode
	PayRate             decimal.Decimal
	BasePay             decimal.Decimal
	OvertimeHours       decimal.Decimal
	OvertimePay         decimal.Decimal
	Bonuses             decimal.Decimal
	ISR                 decimal.Decimal
	IMSS                decimal.Decimal
	INFONAVIT           decimal.Decimal
	AdditionalDeduction decimal.Decimal
	TotalDeductions     decimal.Decimal
	GrossTotal          decimal.Decimal
	NetTotal            decimal.Decimal
	AmountPaid          decimal.Decimal
	Status              PayrollStatus
	Notes               *string
	PaidAt              *time.Time
	CreatedBy           *string
	CreatedAt           time.Time
	UpdatedAt           time.Time

	// Joined fields
	EmployeeName *string
}

// AmountPending is what is still owed on the record.
func (r PayrollRecord) AmountPending() decimal.Decimal {
	return r.NetTotal.Sub(r.AmountPaid)
}

// Payment - money actually transferred against a record. Never mutated.
type Payment struct {
	ID              string
	PayrollRecordID string
	Amount          decimal.Decimal
	Method          string
	Reference       *string
	PaidAt          time.Time
	CreatedBy       *string
}

// HistoryAction enum
type HistoryAction string

const (
	HistoryActionCreated         HistoryAction = "created"
	HistoryActionStatusChanged   HistoryAction = "status_changed"
	HistoryActionPaymentRecorded HistoryAction = "payment_recorded"
	HistoryActionDebtOpened      HistoryAction = "debt_opened"
	HistoryActionDebtsSettled    HistoryAction = "debts_settled"
)

// HistoryEntry - append-only audit trail of a record
type HistoryEntry struct {
	ID              string
	PayrollRecordID string
	ActorID         *string
	Action          HistoryAction
	FromStatus      *PayrollStatus
	ToStatus        *PayrollStatus
	Reason          *string
	Detail          map[string]any
	CreatedAt       time.Time
}

// Computation - result of the payroll calculator, nothing persisted yet
type Computation struct {
	PayMode       employee.PayMode
	PayRate       decimal.Decimal
	DaysWorked    decimal.Decimal
	BasePay       decimal.Decimal
	OvertimeHours decimal.Decimal
	HourlyRate    decimal.Decimal
	OvertimePay   decimal.Decimal
	Bonuses       decimal.Decimal
	GrossTotal    decimal.Decimal
	Deductions    tax.Deductions
	NetTotal      decimal.Decimal
	TaxTable      string
}
