package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockWeekService struct {
	payroll.WeekService
	mock.Mock
}

func (m *mockWeekService) CloseStaleWeeks(ctx context.Context, now time.Time) (int, error) {
	args := m.Called(ctx, now)
	return args.Int(0), args.Error(1)
}

func TestPayrollWeekJobs_RegisterAndRun(t *testing.T) {
	now := time.Date(2024, 3, 18, 12, 0, 0, 0, time.UTC)
	svc := &mockWeekService{}
	svc.On("CloseStaleWeeks", mock.Anything, now).Return(2, nil).Once()

	jobs := NewPayrollWeekJobs(svc, 30*time.Minute)
	jobs.now = func() time.Time { return now }

	s := NewScheduler()
	require.NoError(t, jobs.RegisterJobs(s))

	registered := s.Jobs()
	require.Len(t, registered, 1)
	assert.Equal(t, closeStaleWeeksJob, registered[0].Name)
	assert.Equal(t, 30*time.Minute, registered[0].Interval)

	require.NoError(t, s.RunOnce(context.Background()))
	svc.AssertExpectations(t)
}

func TestPayrollWeekJobs_PropagatesError(t *testing.T) {
	svc := &mockWeekService{}
	failure := errors.New("week w10: connection reset")
	svc.On("CloseStaleWeeks", mock.Anything, mock.AnythingOfType("time.Time")).Return(1, failure)

	jobs := NewPayrollWeekJobs(svc, time.Hour)

	err := jobs.CloseStaleWeeks(context.Background())

	assert.ErrorIs(t, err, failure)
}
