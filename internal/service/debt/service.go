package debt

import (
	"context"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/debt"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/apperror"
	"github.com/google/uuid"
)

type DebtServiceImpl struct {
	txManager    debt.TxManager
	ledger       debt.DebtLedger
	employeeRepo employee.EmployeeRepository
}

func NewDebtService(txManager debt.TxManager, ledger debt.DebtLedger, employeeRepo employee.EmployeeRepository) debt.DebtService {
	return &DebtServiceImpl{
		txManager:    txManager,
		ledger:       ledger,
		employeeRepo: employeeRepo,
	}
}

func (s *DebtServiceImpl) checkEmployee(ctx context.Context, employeeID string) error {
	if _, err := uuid.Parse(employeeID); err != nil {
		return apperror.Detail(employee.ErrEmployeeNotFound, "employee %q not found", employeeID)
	}
	_, err := s.employeeRepo.GetByID(ctx, employeeID)
	return err
}

func (s *DebtServiceImpl) ListDebts(ctx context.Context, employeeID string, outstandingOnly bool) ([]debt.DebtResponse, error) {
	if err := s.checkEmployee(ctx, employeeID); err != nil {
		return nil, err
	}

	var (
		debts []debt.Debt
		err   error
	)
	if outstandingOnly {
		debts, err = s.ledger.ListOutstanding(ctx, employeeID)
	} else {
		debts, err = s.ledger.ListByEmployee(ctx, employeeID)
	}
	if err != nil {
		return nil, err
	}

	return debt.NewDebtResponses(debts), nil
}

func (s *DebtServiceImpl) OutstandingTotal(ctx context.Context, employeeID string) (debt.OutstandingTotalResponse, error) {
	if err := s.checkEmployee(ctx, employeeID); err != nil {
		return debt.OutstandingTotalResponse{}, err
	}

	return debt.OutstandingTotalResponse{
		EmployeeID: employeeID,
		Total:      s.ledger.TotalOutstanding(ctx, employeeID),
	}, nil
}

// SettleDebts settles every listed debt or none of them.
func (s *DebtServiceImpl) SettleDebts(ctx context.Context, req debt.SettleDebtsRequest) (debt.SettleDebtsResponse, error) {
	if err := req.Validate(); err != nil {
		return debt.SettleDebtsResponse{}, err
	}
	if err := s.checkEmployee(ctx, req.EmployeeID); err != nil {
		return debt.SettleDebtsResponse{}, err
	}

	var settled []debt.Debt
	settle := func(ctx context.Context) error {
		var err error
		settled, err = s.ledger.SettleDebts(ctx, req)
		return err
	}

	var err error
	if s.txManager == nil {
		err = settle(ctx)
	} else {
		err = s.txManager.WithinTransaction(ctx, settle)
	}
	if err != nil {
		return debt.SettleDebtsResponse{}, err
	}

	return debt.SettleDebtsResponse{Settled: debt.NewDebtResponses(settled)}, nil
}
