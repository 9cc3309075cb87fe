package tax

import "github.com/shopspring/decimal"

// DeductionOptions toggles each withholding and carries the caller-supplied extra deduction.
type DeductionOptions struct {
	ApplyISR            bool
	ApplyIMSS           bool
	ApplyINFONAVIT      bool
	AdditionalDeduction decimal.Decimal
}

// Deductions is the itemized withholding for one gross amount.
type Deductions struct {
	ISR        decimal.Decimal `json:"isr"`
	IMSS       decimal.Decimal `json:"imss"`
	INFONAVIT  decimal.Decimal `json:"infonavit"`
	Additional decimal.Decimal `json:"additional"`
	Total      decimal.Decimal `json:"total"`
}

// ZeroDeductions returns a breakdown with every field set to zero.
func ZeroDeductions() Deductions {
	return Deductions{
		ISR:        decimal.Zero,
		IMSS:       decimal.Zero,
		INFONAVIT:  decimal.Zero,
		Additional: decimal.Zero,
		Total:      decimal.Zero,
	}
}
