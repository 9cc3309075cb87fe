package employee

import (
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/pkg/apperror"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// Employee is the payroll view of a crew member.
type Employee struct {
	ID        string
	FullName  string
	ProjectID *string
	Trade     string
	PayRate   PayRate
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

type PayMode string

const (
	PayModeDaily  PayMode = "daily"
	PayModeWeekly PayMode = "weekly"
)

func (m PayMode) IsValid() bool {
	return m == PayModeDaily || m == PayModeWeekly
}

// WorkDaysPerWeek and HoursPerDay define the standard construction week.
const (
	WorkDaysPerWeek = 6
	HoursPerDay     = 8
)

// PayRate is either a daily or a full weekly amount, never both.
type PayRate struct {
	Mode   PayMode         `json:"mode"`
	Amount decimal.Decimal `json:"amount"`
}

func Daily(amount decimal.Decimal) PayRate {
	return PayRate{Mode: PayModeDaily, Amount: amount}
}

func Weekly(amount decimal.Decimal) PayRate {
	return PayRate{Mode: PayModeWeekly, Amount: amount}
}

// Validate rejects unknown modes and non-positive amounts.
func (r PayRate) Validate() error {
	if !r.Mode.IsValid() {
		return ErrInvalidPayMode
	}
	if !r.Amount.IsPositive() {
		return ErrInvalidPayRate
	}
	if !validator.IsMoney(r.Amount) {
		return apperror.Detail(ErrInvalidPayRate, "pay rate must have at most 2 decimal places")
	}
	return nil
}

// BasePay is the pay for the week before overtime and bonuses.
// In weekly mode days worked is informational only.
func (r PayRate) BasePay(daysWorked decimal.Decimal) decimal.Decimal {
	if r.Mode == PayModeDaily {
		return r.Amount.Mul(daysWorked)
	}
	return r.Amount
}

// HourlyRate derives the hourly rate used for overtime.
func (r PayRate) HourlyRate() decimal.Decimal {
	daily := r.Amount
	if r.Mode == PayModeWeekly {
		daily = r.Amount.Div(decimal.NewFromInt(WorkDaysPerWeek))
	}
	return daily.Div(decimal.NewFromInt(HoursPerDay))
}
