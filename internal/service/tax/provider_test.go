package tax

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/tax"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const twoTablesYAML = `
tables:
  - name: weekly-2025
    effective_from: "2025-01-01"
    uma_daily: "113.14"
    infonavit_rate: "0.05"
    imss:
      sickness_maternity: "0.01025"
      disability_life: "0.00625"
      retirement: "0.01125"
    brackets:
      - { from: "0", rate: "0.0192" }
      - { from: "200", rate: "0.10" }
      - { from: "2000", rate: "0.30" }
  - name: weekly-2024
    effective_from: "2024-01-01"
    uma_daily: "108.57"
    brackets:
      - { from: "0", rate: "0.0192" }
      - { from: "172.64", rate: "0.064" }
`

func TestDefaultTable_IsValid(t *testing.T) {
	table := DefaultTable()
	require.NoError(t, table.Validate())
	assert.Len(t, table.ISRBrackets(), 11)
	assert.True(t, table.ISRBrackets()[10].IsOpenEnded())
	assertDecimal(t, "108.57", table.UMADaily())
	assertDecimal(t, "0.02775", table.IMSSEmployeeRates().Total())
}

func TestStaticProvider_TableAt(t *testing.T) {
	older := DefaultTable()
	newer := DefaultTable()
	newer.Name = "isr-weekly-2025"
	newer.EffectiveFrom = time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	newer.UMA = decimal.RequireFromString("113.14")

	provider, err := NewStaticProvider(newer, older)
	require.NoError(t, err)

	tests := []struct {
		name string
		at   time.Time
		want string
	}{
		{"before every table falls back to the earliest", time.Date(2020, 5, 1, 0, 0, 0, 0, time.UTC), "isr-weekly-2024"},
		{"inside the first table", time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), "isr-weekly-2024"},
		{"on the effective date", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), "isr-weekly-2025"},
		{"after the latest table", time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), "isr-weekly-2025"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := provider.TableAt(tt.at)
			require.NoError(t, err)
			assert.Equal(t, tt.want, table.Name)
		})
	}
}

func TestStaticProvider_RejectsInvalidTable(t *testing.T) {
	broken := DefaultTable()
	broken.Brackets = broken.Brackets[:3]

	_, err := NewStaticProvider(broken)
	assert.ErrorIs(t, err, tax.ErrInvalidTable)
}

func TestStaticProvider_RequiresATable(t *testing.T) {
	_, err := NewStaticProvider()
	assert.ErrorIs(t, err, tax.ErrNoTableInEffect)
}

func TestParseYAML_Success(t *testing.T) {
	provider, err := ParseYAML([]byte(twoTablesYAML))
	require.NoError(t, err)

	table, err := provider.TableAt(time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "weekly-2025", table.Name)
	require.Len(t, table.Brackets, 3)
	// 200*0.0192 + 1800*0.10
	assertDecimal(t, "183.84", table.Brackets[2].BaseAmount)
	assertDecimal(t, "0", table.IMSS.Childcare)

	older, err := provider.TableAt(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "weekly-2024", older.Name)
	assertDecimal(t, "0.05", older.InfonavitRate)
}

func TestParseYAML_Errors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"empty document", "tables: []"},
		{"bad date", "tables:\n  - name: x\n    effective_from: 01/01/2024\n    uma_daily: \"1\"\n    brackets:\n      - { from: \"0\", rate: \"0.1\" }\n"},
		{"bad number", "tables:\n  - name: x\n    effective_from: 2024-01-01\n    uma_daily: abc\n    brackets:\n      - { from: \"0\", rate: \"0.1\" }\n"},
		{"rate out of range", "tables:\n  - name: x\n    effective_from: 2024-01-01\n    uma_daily: \"1\"\n    brackets:\n      - { from: \"0\", rate: \"1.5\" }\n"},
		{"not yaml", "tables: [unclosed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseYAML([]byte(tt.raw))
			assert.Error(t, err)
		})
	}
}

func TestLoadYAML_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tax_tables.yaml")
	require.NoError(t, os.WriteFile(path, []byte(twoTablesYAML), 0o600))

	provider, err := LoadYAML(path)
	require.NoError(t, err)
	_, err = provider.TableAt(time.Now())
	assert.NoError(t, err)

	_, err = LoadYAML(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadYAML_ShippedTables(t *testing.T) {
	provider, err := LoadYAML(filepath.Join("..", "..", "..", "configs", "tax_tables.yaml"))
	require.NoError(t, err)

	table, err := provider.TableAt(time.Date(2024, 3, 12, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "isr-weekly-2024", table.Name)
	assert.Len(t, table.ISRBrackets(), 11)

	table, err = provider.TableAt(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "isr-weekly-2025", table.Name)
	assertDecimal(t, "113.14", table.UMADaily())
}
