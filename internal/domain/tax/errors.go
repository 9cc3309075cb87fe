package tax

import "github.com/cmlabs-hris/payroll-engine/internal/pkg/apperror"

var (
	ErrInvalidTable       = apperror.New(apperror.KindInternal, "invalid tax table")
	ErrNoTableInEffect    = apperror.New(apperror.KindInternal, "no tax table in effect")
	ErrNegativeAdditional = apperror.New(apperror.KindInvalidInput, "additional deduction must not be negative")
)
