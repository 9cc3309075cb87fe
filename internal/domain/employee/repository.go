package employee

import "context"

type EmployeeRepository interface {
	GetByID(ctx context.Context, id string) (Employee, error)
	Create(ctx context.Context, newEmployee Employee) (Employee, error)
	UpdatePayRate(ctx context.Context, id string, rate PayRate) error
	SetActive(ctx context.Context, id string, active bool) error
}
