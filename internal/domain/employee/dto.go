package employee

import (
	"errors"

	"github.com/cmlabs-hris/payroll-engine/internal/pkg/validator"
)

type CreateEmployeeRequest struct {
	FullName  string  `json:"full_name" validate:"required,max=150"`
	ProjectID *string `json:"project_id,omitempty" validate:"omitempty,uuid"`
	Trade     string  `json:"trade" validate:"required,max=60"`
	PayRate   PayRate `json:"pay_rate"`
}

func (r *CreateEmployeeRequest) Validate() error {
	errs := structErrors(r)
	errs = appendPayRateErrors(errs, r.PayRate)
	if r.FullName != "" && validator.IsEmpty(r.FullName) {
		errs = append(errs, validator.ValidationError{Field: "full_name", Message: "is required"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type UpdatePayRateRequest struct {
	ID      string  `json:"-"`
	PayRate PayRate `json:"pay_rate"`
}

func (r *UpdatePayRateRequest) Validate() error {
	errs := appendPayRateErrors(nil, r.PayRate)
	if len(errs) > 0 {
		return errs
	}
	return nil
}

type EmployeeResponse struct {
	ID        string  `json:"id"`
	FullName  string  `json:"full_name"`
	ProjectID *string `json:"project_id,omitempty"`
	Trade     string  `json:"trade"`
	PayRate   PayRate `json:"pay_rate"`
	Active    bool    `json:"active"`
	CreatedAt string  `json:"created_at"`
	UpdatedAt string  `json:"updated_at"`
}

func appendPayRateErrors(errs validator.ValidationErrors, rate PayRate) validator.ValidationErrors {
	err := rate.Validate()
	switch {
	case err == nil:
		return errs
	case errors.Is(err, ErrInvalidPayMode):
		return append(errs, validator.ValidationError{Field: "pay_rate.mode", Message: err.Error()})
	default:
		return append(errs, validator.ValidationError{Field: "pay_rate.amount", Message: err.Error()})
	}
}

func structErrors(s interface{}) validator.ValidationErrors {
	err := validator.Struct(s)
	if err == nil {
		return nil
	}
	var errs validator.ValidationErrors
	if errors.As(err, &errs) {
		return errs
	}
	return validator.ValidationErrors{{Field: "request", Message: err.Error()}}
}
