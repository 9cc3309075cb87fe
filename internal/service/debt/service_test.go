package debt

import (
	"context"
	"testing"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/debt"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/apperror"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/validator"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockEmployeeRepo struct {
	mock.Mock
	employee.EmployeeRepository
}

func (m *mockEmployeeRepo) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(employee.Employee), args.Error(1)
}

type countingTxManager struct {
	calls int
}

func (m *countingTxManager) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	m.calls++
	return fn(ctx)
}

func seedDebt(repo *memoryDebtRepo, employeeID string, owed, paid int64) debt.Debt {
	d := debt.Debt{
		ID:              uuid.NewString(),
		EmployeeID:      employeeID,
		PayrollRecordID: uuid.NewString(),
		TotalOwed:       decimal.NewFromInt(owed),
	}
	d.Apply(decimal.NewFromInt(paid))
	repo.debts[d.ID] = d
	repo.order = append(repo.order, d.ID)
	return d
}

func newDebtServiceFixture(t *testing.T, employeeID string) (*memoryDebtRepo, *countingTxManager, debt.DebtService) {
	t.Helper()
	repo := newMemoryDebtRepo()
	tx := &countingTxManager{}
	employees := &mockEmployeeRepo{}
	employees.On("GetByID", mock.Anything, employeeID).Return(employee.Employee{ID: employeeID, Active: true}, nil)
	employees.On("GetByID", mock.Anything, mock.Anything).Return(employee.Employee{}, employee.ErrEmployeeNotFound)

	return repo, tx, NewDebtService(tx, NewLedger(repo), employees)
}

func TestDebtService_ListDebts(t *testing.T) {
	employeeID := uuid.NewString()
	repo, _, svc := newDebtServiceFixture(t, employeeID)
	open := seedDebt(repo, employeeID, 1600, 1000)
	settled := seedDebt(repo, employeeID, 500, 500)
	seedDebt(repo, uuid.NewString(), 300, 0)

	all, err := svc.ListDebts(context.Background(), employeeID, false)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, open.ID, all[0].ID)
	assert.Equal(t, settled.ID, all[1].ID)
	assert.Equal(t, "settled", all[1].Status)

	outstanding, err := svc.ListDebts(context.Background(), employeeID, true)
	require.NoError(t, err)
	require.Len(t, outstanding, 1)
	assert.Equal(t, "600", outstanding[0].AmountPending.String())
	assert.Equal(t, "partial", outstanding[0].Status)
}

func TestDebtService_OutstandingTotal(t *testing.T) {
	employeeID := uuid.NewString()
	repo, _, svc := newDebtServiceFixture(t, employeeID)
	seedDebt(repo, employeeID, 1600, 1000)
	seedDebt(repo, employeeID, 400, 0)

	total, err := svc.OutstandingTotal(context.Background(), employeeID)

	require.NoError(t, err)
	assert.Equal(t, employeeID, total.EmployeeID)
	assert.True(t, total.Total.Equal(decimal.NewFromInt(1000)), total.Total.String())
}

func TestDebtService_UnknownEmployee(t *testing.T) {
	_, _, svc := newDebtServiceFixture(t, uuid.NewString())

	_, err := svc.ListDebts(context.Background(), "not-a-uuid", false)
	assert.True(t, apperror.Is(err, apperror.KindNotFound))

	_, err = svc.OutstandingTotal(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
}

func TestDebtService_SettleDebts(t *testing.T) {
	employeeID := uuid.NewString()
	repo, tx, svc := newDebtServiceFixture(t, employeeID)
	first := seedDebt(repo, employeeID, 1600, 1000)
	second := seedDebt(repo, employeeID, 400, 100)

	resp, err := svc.SettleDebts(context.Background(), debt.SettleDebtsRequest{
		EmployeeID: employeeID,
		DebtIDs:    []string{first.ID, second.ID},
	})

	require.NoError(t, err)
	assert.Equal(t, 1, tx.calls)
	require.Len(t, resp.Settled, 2)
	for _, d := range resp.Settled {
		assert.Equal(t, "settled", d.Status)
		assert.True(t, d.AmountPending.IsZero())
		assert.NotNil(t, d.SettledAt)
	}
}

func TestDebtService_SettleDebtsRejectsBeforeWriting(t *testing.T) {
	employeeID := uuid.NewString()
	repo, _, svc := newDebtServiceFixture(t, employeeID)
	own := seedDebt(repo, employeeID, 1600, 1000)
	foreign := seedDebt(repo, uuid.NewString(), 400, 0)

	_, err := svc.SettleDebts(context.Background(), debt.SettleDebtsRequest{
		EmployeeID: employeeID,
		DebtIDs:    []string{own.ID, foreign.ID},
	})

	assert.ErrorIs(t, err, debt.ErrDebtNotOwned)
	assert.Equal(t, 0, repo.updates)
	assert.Equal(t, debt.DebtStatusPartial, repo.debts[own.ID].Status)
}

func TestDebtService_SettleDebtsValidation(t *testing.T) {
	employeeID := uuid.NewString()
	_, tx, svc := newDebtServiceFixture(t, employeeID)

	_, err := svc.SettleDebts(context.Background(), debt.SettleDebtsRequest{EmployeeID: employeeID})

	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, 0, tx.calls)

	_, err = svc.SettleDebts(context.Background(), debt.SettleDebtsRequest{EmployeeID: employeeID, DebtIDs: []string{"x"}})
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs.ToMap(), "debt_ids[0]")
}
