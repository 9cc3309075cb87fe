package debt

import "context"

type DebtRepository interface {
	Create(ctx context.Context, newDebt Debt) (Debt, error)
	GetByID(ctx context.Context, id string) (Debt, error)
	Update(ctx context.Context, d Debt) error
	// ListByEmployeeAndStatus returns every debt of the employee when statuses is empty.
	ListByEmployeeAndStatus(ctx context.Context, employeeID string, statuses ...DebtStatus) ([]Debt, error)
}
