package employee

import "github.com/cmlabs-hris/payroll-engine/internal/pkg/apperror"

var (
	ErrEmployeeNotFound = apperror.New(apperror.KindNotFound, "employee not found")
	ErrEmployeeInactive = apperror.New(apperror.KindInvalidInput, "employee is not active")
	ErrInvalidPayMode   = apperror.New(apperror.KindInvalidInput, "pay mode must be daily or weekly")
	ErrInvalidPayRate   = apperror.New(apperror.KindInvalidInput, "pay rate must be greater than zero")
)
