package tax

import (
	"fmt"
	"sort"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/tax"
	"github.com/shopspring/decimal"
)

// StaticProvider serves a fixed set of tables ordered by EffectiveFrom.
// Tables are values and are shared read-only across calculations.
type StaticProvider struct {
	tables []tax.Table
}

func NewStaticProvider(tables ...tax.Table) (*StaticProvider, error) {
	if len(tables) == 0 {
		return nil, tax.ErrNoTableInEffect
	}
	sorted := make([]tax.Table, len(tables))
	copy(sorted, tables)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].EffectiveFrom.Before(sorted[j].EffectiveFrom)
	})
	for _, t := range sorted {
		if err := t.Validate(); err != nil {
			return nil, err
		}
	}
	return &StaticProvider{tables: sorted}, nil
}

// TableAt returns the latest table whose EffectiveFrom is not after at.
// Dates before the first table fall back to the earliest one.
func (p *StaticProvider) TableAt(at time.Time) (tax.Table, error) {
	if len(p.tables) == 0 {
		return tax.Table{}, tax.ErrNoTableInEffect
	}
	chosen := p.tables[0]
	for _, t := range p.tables[1:] {
		if t.EffectiveFrom.After(at) {
			break
		}
		chosen = t
	}
	return chosen, nil
}

// DefaultTable is the weekly withholding table shipped with the engine.
func DefaultTable() tax.Table {
	limits := []string{
		"0", "172.64", "1465.31", "2575.15", "2993.43", "3584.09",
		"7228.61", "11393.34", "21751.60", "29002.13", "87006.39",
	}
	rates := []string{
		"0.0192", "0.0640", "0.1088", "0.1600", "0.1792", "0.2136",
		"0.2352", "0.3000", "0.3200", "0.3400", "0.3500",
	}

	brackets, err := tax.NewBrackets(mustDecimals(limits), mustDecimals(rates))
	if err != nil {
		panic(fmt.Sprintf("default tax table: %v", err))
	}

	return tax.Table{
		Name:          "isr-weekly-2024",
		EffectiveFrom: time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
		Brackets:      brackets,
		IMSS: tax.IMSSRates{
			SicknessMaternity: decimal.RequireFromString("0.01025"),
			DisabilityLife:    decimal.RequireFromString("0.00625"),
			Childcare:         decimal.Zero,
			Retirement:        decimal.RequireFromString("0.01125"),
		},
		UMA:           decimal.RequireFromString("108.57"),
		InfonavitRate: decimal.RequireFromString("0.05"),
	}
}

func mustDecimals(values []string) []decimal.Decimal {
	out := make([]decimal.Decimal, len(values))
	for i, v := range values {
		out[i] = decimal.RequireFromString(v)
	}
	return out
}
