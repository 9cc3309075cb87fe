package tax

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// SalaryCapUMAMultiple caps the contributable base for IMSS and INFONAVIT at 25 daily UMAs.
const SalaryCapUMAMultiple = 25

// Bracket is one row of the graduated ISR table.
// The top bracket has a zero To, which means it is open-ended.
type Bracket struct {
	From         decimal.Decimal
	To           decimal.Decimal
	BaseAmount   decimal.Decimal
	MarginalRate decimal.Decimal
}

// IsOpenEnded reports whether the bracket has no upper limit.
func (b Bracket) IsOpenEnded() bool {
	return b.To.IsZero()
}

// Contains reports whether From <= amount <= To.
func (b Bracket) Contains(amount decimal.Decimal) bool {
	if amount.LessThan(b.From) {
		return false
	}
	return b.IsOpenEnded() || amount.LessThanOrEqual(b.To)
}

// Apply evaluates BaseAmount + (amount - From) * MarginalRate.
func (b Bracket) Apply(amount decimal.Decimal) decimal.Decimal {
	return b.BaseAmount.Add(amount.Sub(b.From).Mul(b.MarginalRate))
}

// IMSSRates are the employee-side IMSS contribution rates.
type IMSSRates struct {
	SicknessMaternity decimal.Decimal
	DisabilityLife    decimal.Decimal
	Childcare         decimal.Decimal
	Retirement        decimal.Decimal
}

// Total sums the four components.
func (r IMSSRates) Total() decimal.Decimal {
	return r.SicknessMaternity.Add(r.DisabilityLife).Add(r.Childcare).Add(r.Retirement)
}

// Table is an immutable snapshot of the fiscal rules effective from a given date.
type Table struct {
	Name          string
	EffectiveFrom time.Time
	Brackets      []Bracket
	IMSS          IMSSRates
	UMA           decimal.Decimal
	InfonavitRate decimal.Decimal
}

func (t Table) ISRBrackets() []Bracket {
	out := make([]Bracket, len(t.Brackets))
	copy(out, t.Brackets)
	return out
}

func (t Table) IMSSEmployeeRates() IMSSRates {
	return t.IMSS
}

func (t Table) UMADaily() decimal.Decimal {
	return t.UMA
}

// ContributionCap is the maximum base used for IMSS and INFONAVIT.
func (t Table) ContributionCap() decimal.Decimal {
	return t.UMA.Mul(decimal.NewFromInt(SalaryCapUMAMultiple))
}

// Validate checks that the brackets are sorted, contiguous, non-overlapping and continuous,
// that only the last bracket is open-ended and that every rate is in [0, 1).
func (t Table) Validate() error {
	if len(t.Brackets) == 0 {
		return invalidTable(t, "at least one ISR bracket is required")
	}
	if !t.UMA.IsPositive() {
		return invalidTable(t, "UMA must be positive")
	}
	if err := checkRate("infonavit", t.InfonavitRate); err != nil {
		return invalidTable(t, err.Error())
	}
	for name, rate := range map[string]decimal.Decimal{
		"imss sickness/maternity": t.IMSS.SicknessMaternity,
		"imss disability/life":    t.IMSS.DisabilityLife,
		"imss childcare":          t.IMSS.Childcare,
		"imss retirement":         t.IMSS.Retirement,
	} {
		if err := checkRate(name, rate); err != nil {
			return invalidTable(t, err.Error())
		}
	}

	if !t.Brackets[0].From.IsZero() {
		return invalidTable(t, "first bracket must start at 0")
	}
	last := len(t.Brackets) - 1
	for i, b := range t.Brackets {
		if err := checkRate(fmt.Sprintf("bracket %d", i+1), b.MarginalRate); err != nil {
			return invalidTable(t, err.Error())
		}
		if b.BaseAmount.IsNegative() {
			return invalidTable(t, fmt.Sprintf("bracket %d has a negative base amount", i+1))
		}
		if i == last {
			if !b.IsOpenEnded() {
				return invalidTable(t, "last bracket must be open-ended")
			}
			break
		}
		if b.IsOpenEnded() || !b.To.GreaterThan(b.From) {
			return invalidTable(t, fmt.Sprintf("bracket %d must have To greater than From", i+1))
		}
		next := t.Brackets[i+1]
		if !next.From.Equal(b.To) {
			return invalidTable(t, fmt.Sprintf("bracket %d does not start where bracket %d ends", i+2, i+1))
		}
		if !next.BaseAmount.Equal(b.Apply(b.To)) {
			return invalidTable(t, fmt.Sprintf("bracket %d base amount is not continuous with bracket %d", i+2, i+1))
		}
	}
	return nil
}

// NewBrackets builds contiguous brackets from ascending lower limits and their marginal rates.
// Base amounts are accumulated so the resulting ISR curve is continuous.
func NewBrackets(lowerLimits, rates []decimal.Decimal) ([]Bracket, error) {
	if len(lowerLimits) == 0 || len(lowerLimits) != len(rates) {
		return nil, fmt.Errorf("tax: %d lower limits for %d rates", len(lowerLimits), len(rates))
	}

	brackets := make([]Bracket, len(lowerLimits))
	base := decimal.Zero
	for i := range lowerLimits {
		b := Bracket{
			From:         lowerLimits[i],
			BaseAmount:   base,
			MarginalRate: rates[i],
		}
		if i+1 < len(lowerLimits) {
			b.To = lowerLimits[i+1]
			base = b.Apply(b.To)
		}
		brackets[i] = b
	}
	return brackets, nil
}

func checkRate(name string, rate decimal.Decimal) error {
	if rate.IsNegative() || rate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return fmt.Errorf("%s rate %s must be in [0, 1)", name, rate)
	}
	return nil
}

func invalidTable(t Table, reason string) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalidTable, t.Name, reason)
}
