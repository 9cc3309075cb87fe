package employee

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestPayRate_BasePay(t *testing.T) {
	days := decimal.NewFromInt(4)

	assert.True(t, Weekly(decimal.NewFromInt(1200)).BasePay(days).Equal(decimal.NewFromInt(1200)))
	assert.True(t, Daily(decimal.NewFromInt(350)).BasePay(days).Equal(decimal.NewFromInt(1400)))
}

func TestPayRate_HourlyRate(t *testing.T) {
	assert.True(t, Weekly(decimal.NewFromInt(1200)).HourlyRate().Equal(decimal.NewFromInt(25)))
	assert.True(t, Daily(decimal.NewFromInt(200)).HourlyRate().Equal(decimal.NewFromInt(25)))
}

func TestPayRate_Validate(t *testing.T) {
	assert.NoError(t, Daily(decimal.NewFromInt(1)).Validate())
	assert.ErrorIs(t, Weekly(decimal.Zero).Validate(), ErrInvalidPayRate)
	assert.ErrorIs(t, Daily(decimal.NewFromInt(-5)).Validate(), ErrInvalidPayRate)
	assert.ErrorIs(t, PayRate{Mode: "hourly", Amount: decimal.NewFromInt(5)}.Validate(), ErrInvalidPayMode)
	assert.NoError(t, Weekly(decimal.RequireFromString("1200.50")).Validate())
	assert.ErrorIs(t, Weekly(decimal.RequireFromString("1200.505")).Validate(), ErrInvalidPayRate)
}
