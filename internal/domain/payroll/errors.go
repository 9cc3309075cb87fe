package payroll

import (
	"fmt"

	"github.com/cmlabs-hris/payroll-engine/internal/pkg/apperror"
)

var (
	ErrPayrollRecordNotFound    = apperror.New(apperror.KindNotFound, "payroll record not found")
	ErrPayrollWeekNotFound      = apperror.New(apperror.KindNotFound, "payroll week not found")
	ErrDuplicatePeriod          = apperror.New(apperror.KindDuplicatePeriod, "payroll record already exists for this employee and week")
	ErrPayrollWeekExists        = apperror.New(apperror.KindDuplicatePeriod, "payroll week already exists")
	ErrIllegalTransition        = apperror.New(apperror.KindIllegalTransition, "illegal status transition")
	ErrPeriodClosed             = apperror.New(apperror.KindPeriodClosed, "payroll week is closed")
	ErrCalculationInconsistency = apperror.New(apperror.KindCalculationInconsistency, "payroll calculation is inconsistent")
	ErrInvalidInput             = apperror.New(apperror.KindInvalidInput, "invalid payroll input")
	ErrInvalidStatus            = apperror.New(apperror.KindInvalidInput, "invalid payroll status")
	ErrInvalidPayment           = apperror.New(apperror.KindInvalidInput, "invalid payment")
	ErrWeekMismatch             = apperror.New(apperror.KindInvalidInput, "work date is outside the payroll week")
)

// Steps that run after the payroll record is persisted.
const (
	StepOpenDebt      = "open_debt"
	StepSettleDebts   = "settle_debts"
	StepAppendHistory = "append_history"
)

// PostCreateError reports a payroll record that was persisted while a later
// step (debt opening, debt settlement or history) failed. It is only returned
// when no transactional store is configured.
type PostCreateError struct {
	RecordID string
	Step     string
	Err      error
}

func (e *PostCreateError) Error() string {
	return fmt.Sprintf("payroll record %s was created but %s failed: %v", e.RecordID, e.Step, e.Err)
}

func (e *PostCreateError) Unwrap() error {
	return e.Err
}
