package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type employeeRepositoryImpl struct {
	db *database.DB
}

func NewEmployeeRepository(db *database.DB) employee.EmployeeRepository {
	return &employeeRepositoryImpl{db: db}
}

func (e *employeeRepositoryImpl) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	q := GetQuerier(ctx, e.db)

	query := `
		SELECT id, full_name, project_id, trade, pay_mode, pay_rate, active, created_at, updated_at
		FROM employees
		WHERE id = $1
	`

	var emp employee.Employee
	err := q.QueryRow(ctx, query, id).Scan(
		&emp.ID, &emp.FullName, &emp.ProjectID, &emp.Trade, &emp.PayRate.Mode, &emp.PayRate.Amount,
		&emp.Active, &emp.CreatedAt, &emp.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, fmt.Errorf("failed to get employee with id %s: %w", id, err)
	}

	return emp, nil
}

func (e *employeeRepositoryImpl) Create(ctx context.Context, newEmployee employee.Employee) (employee.Employee, error) {
	q := GetQuerier(ctx, e.db)

	id, err := uuid.NewV7()
	if err != nil {
		return employee.Employee{}, fmt.Errorf("failed to generate employee id: %w", err)
	}
	newEmployee.ID = id.String()

	query := `
		INSERT INTO employees (id, full_name, project_id, trade, pay_mode, pay_rate, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`

	err = q.QueryRow(ctx, query,
		newEmployee.ID, newEmployee.FullName, newEmployee.ProjectID, newEmployee.Trade,
		newEmployee.PayRate.Mode, newEmployee.PayRate.Amount, newEmployee.Active,
	).Scan(&newEmployee.CreatedAt, &newEmployee.UpdatedAt)
	if err != nil {
		return employee.Employee{}, fmt.Errorf("failed to create employee: %w", err)
	}

	return newEmployee, nil
}

func (e *employeeRepositoryImpl) UpdatePayRate(ctx context.Context, id string, rate employee.PayRate) error {
	q := GetQuerier(ctx, e.db)

	query := `
		UPDATE employees
		SET pay_mode = $1, pay_rate = $2, updated_at = NOW()
		WHERE id = $3
	`

	tag, err := q.Exec(ctx, query, rate.Mode, rate.Amount, id)
	if err != nil {
		return fmt.Errorf("failed to update pay rate for employee with id %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return employee.ErrEmployeeNotFound
	}

	return nil
}

func (e *employeeRepositoryImpl) SetActive(ctx context.Context, id string, active bool) error {
	q := GetQuerier(ctx, e.db)

	query := `UPDATE employees SET active = $1, updated_at = NOW() WHERE id = $2`

	tag, err := q.Exec(ctx, query, active, id)
	if err != nil {
		return fmt.Errorf("failed to update active flag for employee with id %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return employee.ErrEmployeeNotFound
	}

	return nil
}
