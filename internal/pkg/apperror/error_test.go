package apperror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	sentinel := New(KindNotFound, "payroll record not found")

	cases := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, ""},
		{"sentinel", sentinel, KindNotFound},
		{"wrapped with fmt", fmt.Errorf("get record: %w", sentinel), KindNotFound},
		{"detail keeps kind", Detail(sentinel, "record %s not found", "r-1"), KindNotFound},
		{"plain error", errors.New("boom"), KindInternal},
		{"wrap overrides kind", Wrap(errors.New("bad number"), KindInvalidInput, "invalid amount"), KindInvalidInput},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, KindOf(c.err))
		})
	}
}

func TestDetail_MatchesSentinel(t *testing.T) {
	sentinel := New(KindIllegalTransition, "illegal status transition")
	err := Detail(sentinel, "cannot change status from %s to %s", "paid", "pending")

	assert.ErrorIs(t, err, sentinel)
	assert.True(t, Is(err, KindIllegalTransition))
	assert.Contains(t, err.Error(), "from paid to pending")
}

func TestError_Message(t *testing.T) {
	assert.Equal(t, "invalid amount", New(KindInvalidInput, "invalid amount").Error())
	assert.Equal(t, "invalid amount: bad number", Wrap(errors.New("bad number"), KindInvalidInput, "invalid amount").Error())
	assert.Equal(t, "bad number", Wrap(errors.New("bad number"), KindInvalidInput, "").Error())
}
