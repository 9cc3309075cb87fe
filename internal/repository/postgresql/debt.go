package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/debt"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const debtColumns = `id, employee_id, payroll_record_id, total_owed, amount_paid, amount_pending, status, settled_at, created_at, updated_at`

type debtRepository struct {
	db *database.DB
}

func NewDebtRepository(db *database.DB) debt.DebtRepository {
	return &debtRepository{db: db}
}

func scanDebt(row pgx.Row) (debt.Debt, error) {
	var d debt.Debt
	err := row.Scan(
		&d.ID, &d.EmployeeID, &d.PayrollRecordID, &d.TotalOwed, &d.AmountPaid, &d.AmountPending,
		&d.Status, &d.SettledAt, &d.CreatedAt, &d.UpdatedAt,
	)
	return d, err
}

func (r *debtRepository) Create(ctx context.Context, newDebt debt.Debt) (debt.Debt, error) {
	q := GetQuerier(ctx, r.db)

	id, err := uuid.NewV7()
	if err != nil {
		return debt.Debt{}, fmt.Errorf("failed to generate debt id: %w", err)
	}
	newDebt.ID = id.String()

	query := `
		INSERT INTO debts (id, employee_id, payroll_record_id, total_owed, amount_paid, amount_pending, status, settled_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`

	err = q.QueryRow(ctx, query,
		newDebt.ID, newDebt.EmployeeID, newDebt.PayrollRecordID, newDebt.TotalOwed, newDebt.AmountPaid,
		newDebt.AmountPending, newDebt.Status, newDebt.SettledAt,
	).Scan(&newDebt.CreatedAt, &newDebt.UpdatedAt)
	if err != nil {
		return debt.Debt{}, fmt.Errorf("failed to create debt: %w", err)
	}

	return newDebt, nil
}

func (r *debtRepository) GetByID(ctx context.Context, id string) (debt.Debt, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + debtColumns + ` FROM debts WHERE id = $1`

	d, err := scanDebt(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return debt.Debt{}, debt.ErrDebtNotFound
		}
		return debt.Debt{}, fmt.Errorf("failed to get debt: %w", err)
	}

	return d, nil
}

func (r *debtRepository) Update(ctx context.Context, d debt.Debt) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE debts
		SET amount_paid = $1, amount_pending = $2, status = $3, settled_at = $4, updated_at = NOW()
		WHERE id = $5
	`

	tag, err := q.Exec(ctx, query, d.AmountPaid, d.AmountPending, d.Status, d.SettledAt, d.ID)
	if err != nil {
		return fmt.Errorf("failed to update debt: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return debt.ErrDebtNotFound
	}

	return nil
}

func (r *debtRepository) ListByEmployeeAndStatus(ctx context.Context, employeeID string, statuses ...debt.DebtStatus) ([]debt.Debt, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + debtColumns + ` FROM debts WHERE employee_id = $1`
	args := []interface{}{employeeID}
	if len(statuses) > 0 {
		names := make([]string, 0, len(statuses))
		for _, s := range statuses {
			names = append(names, string(s))
		}
		query += ` AND status = ANY($2)`
		args = append(args, names)
	}
	query += ` ORDER BY created_at`

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list debts: %w", err)
	}
	defer rows.Close()

	var debts []debt.Debt
	for rows.Next() {
		d, err := scanDebt(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan debt: %w", err)
		}
		debts = append(debts, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate debts: %w", err)
	}

	return debts, nil
}
