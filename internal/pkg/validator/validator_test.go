package validator

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsEmpty(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"", true},
		{"   ", true},
		{"abc", false},
		{" abc ", false},
	}
	for _, c := range cases {
		got := IsEmpty(c.input)
		if got != c.want {
			t.Errorf("IsEmpty(%q) = %v, want %v", c.input, got, c.want)
		}
	}
}

func TestIsMoney(t *testing.T) {
	valid := []string{"0", "1200", "1200.5", "1200.50", "0.01"}
	invalid := []string{"0.005", "1000.001", "-3.141"}
	for _, v := range valid {
		assert.True(t, IsMoney(decimal.RequireFromString(v)), v)
	}
	for _, v := range invalid {
		assert.False(t, IsMoney(decimal.RequireFromString(v)), v)
	}
}

func TestIsInSlice(t *testing.T) {
	slice := []string{"cash", "transfer"}
	assert.True(t, IsInSlice("cash", slice))
	assert.False(t, IsInSlice("check", slice))
}

func TestValidationErrors_Error(t *testing.T) {
	errs := ValidationErrors{
		{Field: "amount", Message: "must be greater than 0"},
		{Field: "method", Message: "is required"},
	}
	assert.Equal(t, "amount: must be greater than 0; method: is required", errs.Error())
}

func TestValidationErrors_ToMap(t *testing.T) {
	errs := ValidationErrors{
		{Field: "amount", Message: "must be greater than 0"},
		{Field: "method", Message: "is required"},
	}
	assert.Equal(t, map[string]string{
		"amount": "must be greater than 0",
		"method": "is required",
	}, errs.ToMap())
}

type paymentInput struct {
	Amount decimal.Decimal `json:"amount" validate:"gt=0"`
	Method string          `json:"method" validate:"required,max=40"`
	Days   int             `json:"days_worked" validate:"gt=0,lte=7"`
}

func TestStruct(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		err := Struct(paymentInput{Amount: decimal.NewFromInt(100), Method: "cash", Days: 6})
		assert.NoError(t, err)
	})

	t.Run("reports json field names", func(t *testing.T) {
		err := Struct(paymentInput{Amount: decimal.NewFromInt(-5), Method: "", Days: 8})
		require.Error(t, err)

		var errs ValidationErrors
		require.ErrorAs(t, err, &errs)
		got := errs.ToMap()
		assert.Equal(t, "must be greater than 0", got["amount"])
		assert.Equal(t, "is required", got["method"])
		assert.Equal(t, "must be at most 7", got["days_worked"])
	})
}
