package payroll

import (
	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/tax"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/apperror"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/validator"
	taxService "github.com/cmlabs-hris/payroll-engine/internal/service/tax"
	"github.com/shopspring/decimal"
)

// overtimeMultiplier pays overtime hours at double the hourly rate.
var overtimeMultiplier = decimal.NewFromInt(2)

var maxDaysPerWeek = decimal.NewFromInt(7)

type CalculatorImpl struct {
	tables tax.Provider
}

func NewCalculator(tables tax.Provider) payroll.Calculator {
	return &CalculatorImpl{tables: tables}
}

func (c *CalculatorImpl) Compute(input payroll.ComputeInput) (payroll.Computation, error) {
	if err := validateComputeInput(input); err != nil {
		return payroll.Computation{}, err
	}

	table, err := c.tables.TableAt(input.At)
	if err != nil {
		return payroll.Computation{}, err
	}

	rate := input.PayRate
	base := rate.BasePay(input.DaysWorked).Round(2)
	hourly := rate.HourlyRate()
	overtimePay := input.OvertimeHours.Mul(hourly).Mul(overtimeMultiplier).Round(2)
	gross := base.Add(overtimePay).Add(input.Bonuses)

	deductions, err := taxService.ComputeDeductions(table, gross, tax.DeductionOptions{
		ApplyISR:            input.ApplyISR,
		ApplyIMSS:           input.ApplyIMSS,
		ApplyINFONAVIT:      input.ApplyINFONAVIT,
		AdditionalDeduction: input.AdditionalDeduction,
	})
	if err != nil {
		return payroll.Computation{}, err
	}

	if deductions.Total.GreaterThan(gross) {
		return payroll.Computation{}, apperror.Detail(payroll.ErrCalculationInconsistency,
			"deductions %s exceed gross %s", deductions.Total.StringFixed(2), gross.StringFixed(2))
	}
	net := gross.Sub(deductions.Total)
	if net.IsNegative() {
		return payroll.Computation{}, apperror.Detail(payroll.ErrCalculationInconsistency,
			"net pay %s is negative", net.StringFixed(2))
	}

	return payroll.Computation{
		PayMode:       rate.Mode,
		PayRate:       rate.Amount,
		DaysWorked:    input.DaysWorked,
		BasePay:       base,
		OvertimeHours: input.OvertimeHours,
		HourlyRate:    hourly.Round(4),
		OvertimePay:   overtimePay,
		Bonuses:       input.Bonuses,
		GrossTotal:    gross,
		Deductions:    deductions,
		NetTotal:      net,
		TaxTable:      table.Name,
	}, nil
}

func validateComputeInput(input payroll.ComputeInput) error {
	switch {
	case !input.DaysWorked.IsPositive():
		return apperror.Detail(payroll.ErrInvalidInput, "days worked must be greater than zero")
	case input.DaysWorked.GreaterThan(maxDaysPerWeek):
		return apperror.Detail(payroll.ErrInvalidInput, "days worked must be at most 7")
	case input.OvertimeHours.IsNegative():
		return apperror.Detail(payroll.ErrInvalidInput, "overtime hours must not be negative")
	case input.Bonuses.IsNegative():
		return apperror.Detail(payroll.ErrInvalidInput, "bonuses must not be negative")
	case !validator.IsMoney(input.Bonuses):
		return apperror.Detail(payroll.ErrInvalidInput, "bonuses must have at most 2 decimal places")
	case !validator.IsMoney(input.AdditionalDeduction):
		return apperror.Detail(payroll.ErrInvalidInput, "additional deduction must have at most 2 decimal places")
	}
	if err := input.PayRate.Validate(); err != nil {
		return err
	}
	return nil
}
