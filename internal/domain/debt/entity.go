package debt

import (
	"time"

	"github.com/shopspring/decimal"
)

// DebtStatus enum
type DebtStatus string

const (
	DebtStatusPending DebtStatus = "pending"
	DebtStatusPartial DebtStatus = "partial"
	DebtStatusSettled DebtStatus = "settled"
)

// OutstandingStatuses are the statuses that still carry a balance.
var OutstandingStatuses = []DebtStatus{DebtStatusPending, DebtStatusPartial}

// Debt - balance left on a payroll record that was paid partially
type Debt struct {
	ID              string
	EmployeeID      string
	PayrollRecordID string
	TotalOwed       decimal.Decimal
	AmountPaid      decimal.Decimal
	AmountPending   decimal.Decimal
	Status          DebtStatus
	SettledAt       *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// DeriveStatus maps paid against owed: nothing paid is pending, anything short of owed is partial.
func DeriveStatus(paid, owed decimal.Decimal) DebtStatus {
	switch {
	case paid.GreaterThanOrEqual(owed):
		return DebtStatusSettled
	case paid.IsPositive():
		return DebtStatusPartial
	default:
		return DebtStatusPending
	}
}

// Apply sets AmountPaid and keeps AmountPending and Status consistent with it.
func (d *Debt) Apply(paid decimal.Decimal) {
	d.AmountPaid = paid
	d.AmountPending = d.TotalOwed.Sub(paid)
	if d.AmountPending.IsNegative() {
		d.AmountPending = decimal.Zero
	}
	d.Status = DeriveStatus(paid, d.TotalOwed)
}

func (d Debt) IsOutstanding() bool {
	return d.Status != DebtStatusSettled
}
