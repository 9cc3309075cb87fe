package employee

import "context"

type EmployeeService interface {
	CreateEmployee(ctx context.Context, req CreateEmployeeRequest) (EmployeeResponse, error)
	GetEmployee(ctx context.Context, id string) (EmployeeResponse, error)
	UpdatePayRate(ctx context.Context, req UpdatePayRateRequest) (EmployeeResponse, error)
	InactivateEmployee(ctx context.Context, id string) (EmployeeResponse, error)
}
