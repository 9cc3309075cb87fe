package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const (
	payrollWeekConstraint = "uk_payroll_week"

	payrollWeekColumns = `id, iso_year, iso_week, start_date, end_date, week_of_month, label, status, created_at, updated_at`
)

type payrollWeekRepository struct {
	db *database.DB
}

func NewPayrollWeekRepository(db *database.DB) payroll.PayrollWeekRepository {
	return &payrollWeekRepository{db: db}
}

func scanPayrollWeek(row pgx.Row) (payroll.PayrollWeek, error) {
	var w payroll.PayrollWeek
	err := row.Scan(
		&w.ID, &w.ISOYear, &w.ISOWeek, &w.StartDate, &w.EndDate, &w.WeekOfMonth, &w.Label, &w.Status,
		&w.CreatedAt, &w.UpdatedAt,
	)
	return w, err
}

func (r *payrollWeekRepository) Create(ctx context.Context, week payroll.PayrollWeek) (payroll.PayrollWeek, error) {
	q := GetQuerier(ctx, r.db)

	id, err := uuid.NewV7()
	if err != nil {
		return payroll.PayrollWeek{}, fmt.Errorf("failed to generate payroll week id: %w", err)
	}
	week.ID = id.String()
	if week.Status == "" {
		week.Status = payroll.WeekStatusDraft
	}

	// DO NOTHING keeps an enclosing transaction usable when the week already exists.
	query := `
		INSERT INTO payroll_weeks (id, iso_year, iso_week, start_date, end_date, week_of_month, label, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT ON CONSTRAINT ` + payrollWeekConstraint + ` DO NOTHING
		RETURNING created_at, updated_at
	`

	err = q.QueryRow(ctx, query,
		week.ID, week.ISOYear, week.ISOWeek, week.StartDate, week.EndDate, week.WeekOfMonth, week.Label, week.Status,
	).Scan(&week.CreatedAt, &week.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isUniqueViolation(err, payrollWeekConstraint) {
			return payroll.PayrollWeek{}, payroll.ErrPayrollWeekExists
		}
		return payroll.PayrollWeek{}, fmt.Errorf("failed to create payroll week: %w", err)
	}

	return week, nil
}

func (r *payrollWeekRepository) GetByID(ctx context.Context, id string) (payroll.PayrollWeek, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + payrollWeekColumns + ` FROM payroll_weeks WHERE id = $1`

	w, err := scanPayrollWeek(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.PayrollWeek{}, payroll.ErrPayrollWeekNotFound
		}
		return payroll.PayrollWeek{}, fmt.Errorf("failed to get payroll week: %w", err)
	}

	return w, nil
}

func (r *payrollWeekRepository) GetByISOWeek(ctx context.Context, isoYear, isoWeek int) (payroll.PayrollWeek, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + payrollWeekColumns + ` FROM payroll_weeks WHERE iso_year = $1 AND iso_week = $2`

	w, err := scanPayrollWeek(q.QueryRow(ctx, query, isoYear, isoWeek))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.PayrollWeek{}, payroll.ErrPayrollWeekNotFound
		}
		return payroll.PayrollWeek{}, fmt.Errorf("failed to get payroll week %d-W%02d: %w", isoYear, isoWeek, err)
	}

	return w, nil
}

func (r *payrollWeekRepository) UpdateStatus(ctx context.Context, id string, status payroll.WeekStatus) error {
	q := GetQuerier(ctx, r.db)

	query := `UPDATE payroll_weeks SET status = $1, updated_at = NOW() WHERE id = $2`

	tag, err := q.Exec(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("failed to update payroll week status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return payroll.ErrPayrollWeekNotFound
	}

	return nil
}

func (r *payrollWeekRepository) ListUnclosedEndingBefore(ctx context.Context, cutoff time.Time) ([]payroll.PayrollWeek, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + payrollWeekColumns + `
		FROM payroll_weeks
		WHERE status <> $1 AND end_date < $2
		ORDER BY iso_year, iso_week
	`

	rows, err := q.Query(ctx, query, payroll.WeekStatusClosed, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to list unclosed payroll weeks: %w", err)
	}
	defer rows.Close()

	var weeks []payroll.PayrollWeek
	for rows.Next() {
		w, err := scanPayrollWeek(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payroll week: %w", err)
		}
		weeks = append(weeks, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate payroll weeks: %w", err)
	}

	return weeks, nil
}
