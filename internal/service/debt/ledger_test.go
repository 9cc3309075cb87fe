package debt

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/debt"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/apperror"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// memoryDebtRepo keeps debts in a map and counts writes.
type memoryDebtRepo struct {
	debts   map[string]debt.Debt
	order   []string
	updates int
}

func newMemoryDebtRepo() *memoryDebtRepo {
	return &memoryDebtRepo{debts: make(map[string]debt.Debt)}
}

func (r *memoryDebtRepo) Create(ctx context.Context, d debt.Debt) (debt.Debt, error) {
	d.ID = fmt.Sprintf("debt-%d", len(r.order)+1)
	r.debts[d.ID] = d
	r.order = append(r.order, d.ID)
	return d, nil
}

func (r *memoryDebtRepo) GetByID(ctx context.Context, id string) (debt.Debt, error) {
	d, ok := r.debts[id]
	if !ok {
		return debt.Debt{}, debt.ErrDebtNotFound
	}
	return d, nil
}

func (r *memoryDebtRepo) Update(ctx context.Context, d debt.Debt) error {
	if _, ok := r.debts[d.ID]; !ok {
		return debt.ErrDebtNotFound
	}
	r.debts[d.ID] = d
	r.updates++
	return nil
}

func (r *memoryDebtRepo) ListByEmployeeAndStatus(ctx context.Context, employeeID string, statuses ...debt.DebtStatus) ([]debt.Debt, error) {
	var out []debt.Debt
	for _, id := range r.order {
		d := r.debts[id]
		if d.EmployeeID != employeeID {
			continue
		}
		if len(statuses) == 0 {
			out = append(out, d)
			continue
		}
		for _, s := range statuses {
			if d.Status == s {
				out = append(out, d)
				break
			}
		}
	}
	return out, nil
}

type mockDebtRepo struct {
	mock.Mock
	debt.DebtRepository
}

func (m *mockDebtRepo) ListByEmployeeAndStatus(ctx context.Context, employeeID string, statuses ...debt.DebtStatus) ([]debt.Debt, error) {
	args := m.Called(ctx, employeeID)
	return args.Get(0).([]debt.Debt), args.Error(1)
}

var fixedNow = time.Date(2024, 3, 11, 9, 0, 0, 0, time.UTC)

func newTestLedger() (*LedgerImpl, *memoryDebtRepo) {
	repo := newMemoryDebtRepo()
	return NewLedger(repo).WithClock(func() time.Time { return fixedNow }), repo
}

func openDebt(t *testing.T, l *LedgerImpl, employeeID string, owed, paid int64) debt.Debt {
	t.Helper()
	d, err := l.OpenDebt(context.Background(), debt.OpenDebtRequest{
		PayrollRecordID: "rec-" + employeeID,
		EmployeeID:      employeeID,
		TotalOwed:       decimal.NewFromInt(owed),
		AmountPaidNow:   decimal.NewFromInt(paid),
	})
	require.NoError(t, err)
	return d
}

// ===== OPEN DEBT TESTS =====

func TestLedger_OpenDebt_Partial(t *testing.T) {
	l, _ := newTestLedger()

	d := openDebt(t, l, "emp-1", 1600, 1000)

	assert.NotEmpty(t, d.ID)
	assert.True(t, d.TotalOwed.Equal(decimal.NewFromInt(1600)))
	assert.True(t, d.AmountPaid.Equal(decimal.NewFromInt(1000)))
	assert.True(t, d.AmountPending.Equal(decimal.NewFromInt(600)))
	assert.Equal(t, debt.DebtStatusPartial, d.Status)
	assert.Nil(t, d.SettledAt)
}

func TestLedger_OpenDebt_NothingPaid(t *testing.T) {
	l, _ := newTestLedger()

	d := openDebt(t, l, "emp-1", 1600, 0)

	assert.True(t, d.AmountPending.Equal(decimal.NewFromInt(1600)))
	assert.Equal(t, debt.DebtStatusPending, d.Status)
}

func TestLedger_OpenDebt_Rejected(t *testing.T) {
	l, repo := newTestLedger()
	ctx := context.Background()

	_, err := l.OpenDebt(ctx, debt.OpenDebtRequest{TotalOwed: decimal.NewFromInt(1600), AmountPaidNow: decimal.NewFromInt(1600)})
	assert.ErrorIs(t, err, debt.ErrNothingOwed)

	_, err = l.OpenDebt(ctx, debt.OpenDebtRequest{TotalOwed: decimal.NewFromInt(1600), AmountPaidNow: decimal.NewFromInt(-1)})
	assert.ErrorIs(t, err, debt.ErrInvalidAmount)
	assert.Equal(t, apperror.KindInvalidInput, apperror.KindOf(err))

	assert.Empty(t, repo.debts)
}

// ===== SETTLE TESTS =====

func TestLedger_Settle_Idempotent(t *testing.T) {
	l, repo := newTestLedger()
	ctx := context.Background()
	d := openDebt(t, l, "emp-1", 1600, 1000)

	once, err := l.Settle(ctx, d.ID)
	require.NoError(t, err)
	twice, err := l.Settle(ctx, d.ID)
	require.NoError(t, err)

	assert.Equal(t, once, twice)
	assert.Equal(t, debt.DebtStatusSettled, twice.Status)
	assert.True(t, twice.AmountPaid.Equal(twice.TotalOwed))
	assert.True(t, twice.AmountPending.IsZero())
	require.NotNil(t, twice.SettledAt)
	assert.Equal(t, fixedNow, *twice.SettledAt)
	assert.Equal(t, 1, repo.updates)
}

func TestLedger_Settle_NotFound(t *testing.T) {
	l, _ := newTestLedger()

	_, err := l.Settle(context.Background(), "missing")
	assert.ErrorIs(t, err, debt.ErrDebtNotFound)
}

func TestLedger_SettleDebts(t *testing.T) {
	l, _ := newTestLedger()
	ctx := context.Background()
	first := openDebt(t, l, "emp-1", 1600, 1000)
	second := openDebt(t, l, "emp-1", 900, 0)
	untouched := openDebt(t, l, "emp-1", 500, 100)

	settled, err := l.SettleDebts(ctx, debt.SettleDebtsRequest{
		EmployeeID: "emp-1",
		DebtIDs:    []string{first.ID, second.ID, first.ID},
	})
	require.NoError(t, err)
	require.Len(t, settled, 2)

	outstanding, err := l.ListOutstanding(ctx, "emp-1")
	require.NoError(t, err)
	require.Len(t, outstanding, 1)
	assert.Equal(t, untouched.ID, outstanding[0].ID)
}

func TestLedger_SettleDebts_ForeignDebtWritesNothing(t *testing.T) {
	l, repo := newTestLedger()
	ctx := context.Background()
	own := openDebt(t, l, "emp-1", 1600, 1000)
	foreign := openDebt(t, l, "emp-2", 700, 200)

	_, err := l.SettleDebts(ctx, debt.SettleDebtsRequest{EmployeeID: "emp-1", DebtIDs: []string{own.ID, foreign.ID}})

	assert.ErrorIs(t, err, debt.ErrDebtNotOwned)
	assert.Equal(t, 0, repo.updates)
}

func TestLedger_SettleDebts_Empty(t *testing.T) {
	l, _ := newTestLedger()

	_, err := l.SettleDebts(context.Background(), debt.SettleDebtsRequest{EmployeeID: "emp-1"})
	assert.ErrorIs(t, err, debt.ErrNoDebtsRequested)
}

// ===== OUTSTANDING TESTS =====

func TestLedger_TotalOutstanding(t *testing.T) {
	l, _ := newTestLedger()
	ctx := context.Background()
	openDebt(t, l, "emp-1", 1600, 1000)
	settled := openDebt(t, l, "emp-1", 900, 0)
	openDebt(t, l, "emp-1", 500, 100)
	openDebt(t, l, "emp-2", 300, 0)

	_, err := l.Settle(ctx, settled.ID)
	require.NoError(t, err)

	assert.True(t, l.TotalOutstanding(ctx, "emp-1").Equal(decimal.NewFromInt(1000)))
	assert.True(t, l.TotalOutstanding(ctx, "nobody").IsZero())

	all, err := l.ListByEmployee(ctx, "emp-1")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestLedger_TotalOutstanding_FailSoft(t *testing.T) {
	repo := new(mockDebtRepo)
	repo.On("ListByEmployeeAndStatus", mock.Anything, "emp-1").Return([]debt.Debt(nil), errors.New("connection refused"))

	total := NewLedger(repo).TotalOutstanding(context.Background(), "emp-1")

	assert.True(t, total.IsZero())
	repo.AssertExpectations(t)
}
