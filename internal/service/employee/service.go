package employee

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/apperror"
	"github.com/google/uuid"
)

type EmployeeServiceImpl struct {
	employeeRepo employee.EmployeeRepository
}

func NewEmployeeService(employeeRepo employee.EmployeeRepository) employee.EmployeeService {
	return &EmployeeServiceImpl{employeeRepo: employeeRepo}
}

func mapEmployeeToResponse(emp employee.Employee) employee.EmployeeResponse {
	return employee.EmployeeResponse{
		ID:        emp.ID,
		FullName:  emp.FullName,
		ProjectID: emp.ProjectID,
		Trade:     emp.Trade,
		PayRate:   emp.PayRate,
		Active:    emp.Active,
		CreatedAt: emp.CreatedAt.Format(time.RFC3339),
		UpdatedAt: emp.UpdatedAt.Format(time.RFC3339),
	}
}

func (s *EmployeeServiceImpl) getEmployee(ctx context.Context, id string) (employee.Employee, error) {
	if _, err := uuid.Parse(id); err != nil {
		return employee.Employee{}, apperror.Detail(employee.ErrEmployeeNotFound, "employee %q not found", id)
	}
	return s.employeeRepo.GetByID(ctx, id)
}

func (s *EmployeeServiceImpl) CreateEmployee(ctx context.Context, req employee.CreateEmployeeRequest) (employee.EmployeeResponse, error) {
	if err := req.Validate(); err != nil {
		return employee.EmployeeResponse{}, err
	}

	created, err := s.employeeRepo.Create(ctx, employee.Employee{
		FullName:  strings.TrimSpace(req.FullName),
		ProjectID: req.ProjectID,
		Trade:     strings.TrimSpace(req.Trade),
		PayRate:   req.PayRate,
		Active:    true,
	})
	if err != nil {
		return employee.EmployeeResponse{}, err
	}

	slog.Info("Employee created", "employee_id", created.ID, "pay_mode", created.PayRate.Mode)
	return mapEmployeeToResponse(created), nil
}

func (s *EmployeeServiceImpl) GetEmployee(ctx context.Context, id string) (employee.EmployeeResponse, error) {
	emp, err := s.getEmployee(ctx, id)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}
	return mapEmployeeToResponse(emp), nil
}

// UpdatePayRate changes the rate used by future payrolls. Existing records keep their own copy.
func (s *EmployeeServiceImpl) UpdatePayRate(ctx context.Context, req employee.UpdatePayRateRequest) (employee.EmployeeResponse, error) {
	if err := req.Validate(); err != nil {
		return employee.EmployeeResponse{}, err
	}
	if _, err := s.getEmployee(ctx, req.ID); err != nil {
		return employee.EmployeeResponse{}, err
	}

	if err := s.employeeRepo.UpdatePayRate(ctx, req.ID, req.PayRate); err != nil {
		return employee.EmployeeResponse{}, fmt.Errorf("update pay rate of employee %s: %w", req.ID, err)
	}

	updated, err := s.employeeRepo.GetByID(ctx, req.ID)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}
	return mapEmployeeToResponse(updated), nil
}

func (s *EmployeeServiceImpl) InactivateEmployee(ctx context.Context, id string) (employee.EmployeeResponse, error) {
	emp, err := s.getEmployee(ctx, id)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}
	if !emp.Active {
		return mapEmployeeToResponse(emp), nil
	}

	if err := s.employeeRepo.SetActive(ctx, id, false); err != nil {
		return employee.EmployeeResponse{}, fmt.Errorf("inactivate employee %s: %w", id, err)
	}
	emp.Active = false
	emp.UpdatedAt = time.Now()

	return mapEmployeeToResponse(emp), nil
}
