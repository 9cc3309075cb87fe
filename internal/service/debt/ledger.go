package debt

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/debt"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/apperror"
	"github.com/shopspring/decimal"
)

var _ debt.DebtLedger = (*LedgerImpl)(nil)

type LedgerImpl struct {
	debtRepo debt.DebtRepository
	now      func() time.Time
}

func NewLedger(debtRepo debt.DebtRepository) *LedgerImpl {
	return &LedgerImpl{debtRepo: debtRepo, now: time.Now}
}

// WithClock replaces the settlement clock.
func (l *LedgerImpl) WithClock(now func() time.Time) *LedgerImpl {
	l.now = now
	return l
}

// OpenDebt records the unpaid remainder of a payroll record.
func (l *LedgerImpl) OpenDebt(ctx context.Context, req debt.OpenDebtRequest) (debt.Debt, error) {
	if req.TotalOwed.IsNegative() || req.AmountPaidNow.IsNegative() {
		return debt.Debt{}, debt.ErrInvalidAmount
	}
	if req.AmountPaidNow.GreaterThanOrEqual(req.TotalOwed) {
		return debt.Debt{}, apperror.Detail(debt.ErrNothingOwed, "amount paid %s covers total owed %s", req.AmountPaidNow, req.TotalOwed)
	}

	newDebt := debt.Debt{
		EmployeeID:      req.EmployeeID,
		PayrollRecordID: req.PayrollRecordID,
		TotalOwed:       req.TotalOwed,
	}
	newDebt.Apply(req.AmountPaidNow)

	created, err := l.debtRepo.Create(ctx, newDebt)
	if err != nil {
		return debt.Debt{}, fmt.Errorf("failed to open debt: %w", err)
	}
	return created, nil
}

func (l *LedgerImpl) Settle(ctx context.Context, debtID string) (debt.Debt, error) {
	d, err := l.debtRepo.GetByID(ctx, debtID)
	if err != nil {
		return debt.Debt{}, err
	}
	return l.settle(ctx, d)
}

func (l *LedgerImpl) settle(ctx context.Context, d debt.Debt) (debt.Debt, error) {
	if !d.IsOutstanding() {
		return d, nil
	}

	settledAt := l.now()
	d.Apply(d.TotalOwed)
	d.SettledAt = &settledAt

	if err := l.debtRepo.Update(ctx, d); err != nil {
		return debt.Debt{}, fmt.Errorf("failed to settle debt %s: %w", d.ID, err)
	}
	return d, nil
}

// SettleDebts settles the listed debts of one employee. Every id is checked
// before anything is written.
func (l *LedgerImpl) SettleDebts(ctx context.Context, req debt.SettleDebtsRequest) ([]debt.Debt, error) {
	if len(req.DebtIDs) == 0 {
		return nil, debt.ErrNoDebtsRequested
	}

	seen := make(map[string]bool, len(req.DebtIDs))
	var debts []debt.Debt
	for _, id := range req.DebtIDs {
		if seen[id] {
			continue
		}
		seen[id] = true

		d, err := l.debtRepo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if d.EmployeeID != req.EmployeeID {
			return nil, apperror.Detail(debt.ErrDebtNotOwned, "debt %s does not belong to employee %s", id, req.EmployeeID)
		}
		debts = append(debts, d)
	}

	settled := make([]debt.Debt, 0, len(debts))
	for _, d := range debts {
		s, err := l.settle(ctx, d)
		if err != nil {
			return nil, err
		}
		settled = append(settled, s)
	}
	return settled, nil
}

func (l *LedgerImpl) Get(ctx context.Context, debtID string) (debt.Debt, error) {
	return l.debtRepo.GetByID(ctx, debtID)
}

func (l *LedgerImpl) ListOutstanding(ctx context.Context, employeeID string) ([]debt.Debt, error) {
	return l.debtRepo.ListByEmployeeAndStatus(ctx, employeeID, debt.OutstandingStatuses...)
}

func (l *LedgerImpl) ListByEmployee(ctx context.Context, employeeID string) ([]debt.Debt, error) {
	return l.debtRepo.ListByEmployeeAndStatus(ctx, employeeID)
}

func (l *LedgerImpl) TotalOutstanding(ctx context.Context, employeeID string) decimal.Decimal {
	debts, err := l.ListOutstanding(ctx, employeeID)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			slog.Error("failed to total outstanding debts", "employee_id", employeeID, "error", err)
		}
		return decimal.Zero
	}

	total := decimal.Zero
	for _, d := range debts {
		total = total.Add(d.AmountPending)
	}
	return total
}
