package debt

import "github.com/cmlabs-hris/payroll-engine/internal/pkg/apperror"

var (
	ErrDebtNotFound     = apperror.New(apperror.KindNotFound, "debt not found")
	ErrNothingOwed      = apperror.New(apperror.KindInvalidInput, "amount paid covers the total owed, no debt to open")
	ErrInvalidAmount    = apperror.New(apperror.KindInvalidInput, "debt amounts must not be negative")
	ErrDebtNotOwned     = apperror.New(apperror.KindInvalidInput, "debt does not belong to this employee")
	ErrNoDebtsRequested = apperror.New(apperror.KindInvalidInput, "at least one debt id is required")
)
