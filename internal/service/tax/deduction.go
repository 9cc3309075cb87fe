package tax

import (
	"github.com/cmlabs-hris/payroll-engine/internal/domain/tax"
	"github.com/shopspring/decimal"
)

// ComputeDeductions applies the table to grossBase.
// A gross of zero or less yields no deductions at all.
func ComputeDeductions(table tax.Table, grossBase decimal.Decimal, opts tax.DeductionOptions) (tax.Deductions, error) {
	if opts.AdditionalDeduction.IsNegative() {
		return tax.Deductions{}, tax.ErrNegativeAdditional
	}

	d := tax.ZeroDeductions()
	if !grossBase.IsPositive() {
		return d, nil
	}

	if opts.ApplyISR {
		d.ISR = ISR(table, grossBase)
	}

	contributable := decimal.Min(grossBase, table.ContributionCap())
	if opts.ApplyIMSS {
		d.IMSS = contributable.Mul(table.IMSSEmployeeRates().Total()).Round(2)
	}
	if opts.ApplyINFONAVIT {
		d.INFONAVIT = contributable.Mul(table.InfonavitRate).Round(2)
	}

	d.Additional = opts.AdditionalDeduction
	d.Total = d.ISR.Add(d.IMSS).Add(d.INFONAVIT).Add(d.Additional)
	return d, nil
}

// ISR evaluates the graduated bracket table for grossBase, rounded to cents.
func ISR(table tax.Table, grossBase decimal.Decimal) decimal.Decimal {
	if !grossBase.IsPositive() {
		return decimal.Zero
	}
	brackets := table.ISRBrackets()
	if len(brackets) == 0 {
		return decimal.Zero
	}

	bracket := brackets[len(brackets)-1]
	for _, b := range brackets {
		if b.Contains(grossBase) {
			bracket = b
			break
		}
	}
	return bracket.Apply(grossBase).Round(2)
}
