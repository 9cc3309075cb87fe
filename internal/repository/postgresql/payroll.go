package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const (
	payrollEmployeeWeekConstraint = "uk_payroll_employee_week"

	payrollRecordColumns = `pr.id, pr.employee_id, pr.payroll_week_id, pr.iso_year, pr.iso_week, pr.project_id,
			   pr.days_worked, pr.pay_mode, pr.pay_rate, pr.base_pay, pr.overtime_hours, pr.overtime_pay, pr.bonuses,
			   pr.isr, pr.imss, pr.infonavit, pr.additional_deduction, pr.total_deductions,
			   pr.gross_total, pr.net_total, pr.amount_paid, pr.status, pr.notes, pr.paid_at, pr.created_by,
			   pr.created_at, pr.updated_at, e.full_name`
)

type payrollRecordRepository struct {
	db *database.DB
}

func NewPayrollRecordRepository(db *database.DB) payroll.PayrollRecordRepository {
	return &payrollRecordRepository{db: db}
}

func scanPayrollRecord(row pgx.Row) (payroll.PayrollRecord, error) {
	var rec payroll.PayrollRecord
	err := row.Scan(
		&rec.ID, &rec.EmployeeID, &rec.PayrollWeekID, &rec.ISOYear, &rec.ISOWeek, &rec.ProjectID,
		&rec.DaysWorked, &rec.PayMode, &rec.PayRate, &rec.BasePay, &rec.OvertimeHours, &rec.OvertimePay, &rec.Bonuses,
		&rec.ISR, &rec.IMSS, &rec.INFONAVIT, &rec.AdditionalDeduction, &rec.TotalDeductions,
		&rec.GrossTotal, &rec.NetTotal, &rec.AmountPaid, &rec.Status, &rec.Notes, &rec.PaidAt, &rec.CreatedBy,
		&rec.CreatedAt, &rec.UpdatedAt, &rec.EmployeeName,
	)
	return rec, err
}

// Create inserts a pending record. The unique index on (employee_id, iso_year, iso_week)
// turns a concurrent duplicate into ErrDuplicatePeriod.
func (r *payrollRecordRepository) Create(ctx context.Context, record payroll.PayrollRecord) (payroll.PayrollRecord, error) {
	q := GetQuerier(ctx, r.db)

	id, err := uuid.NewV7()
	if err != nil {
		return payroll.PayrollRecord{}, fmt.Errorf("failed to generate payroll record id: %w", err)
	}
	record.ID = id.String()

	query := `
		INSERT INTO payroll_records (
			id, employee_id, payroll_week_id, iso_year, iso_week, project_id,
			days_worked, pay_mode, pay_rate, base_pay, overtime_hours, overtime_pay, bonuses,
			isr, imss, infonavit, additional_deduction, total_deductions,
			gross_total, net_total, amount_paid, status, notes, created_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24)
		RETURNING created_at, updated_at
	`

	err = q.QueryRow(ctx, query,
		record.ID, record.EmployeeID, record.PayrollWeekID, record.ISOYear, record.ISOWeek, record.ProjectID,
		record.DaysWorked, record.PayMode, record.PayRate, record.BasePay, record.OvertimeHours, record.OvertimePay, record.Bonuses,
		record.ISR, record.IMSS, record.INFONAVIT, record.AdditionalDeduction, record.TotalDeductions,
		record.GrossTotal, record.NetTotal, record.AmountPaid, record.Status, record.Notes, record.CreatedBy,
	).Scan(&record.CreatedAt, &record.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err, payrollEmployeeWeekConstraint) {
			return payroll.PayrollRecord{}, payroll.ErrDuplicatePeriod
		}
		return payroll.PayrollRecord{}, fmt.Errorf("failed to create payroll record: %w", err)
	}

	return record, nil
}

func (r *payrollRecordRepository) GetByID(ctx context.Context, id string) (payroll.PayrollRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + payrollRecordColumns + `
		FROM payroll_records pr
		JOIN employees e ON pr.employee_id = e.id
		WHERE pr.id = $1
	`

	rec, err := scanPayrollRecord(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.PayrollRecord{}, payroll.ErrPayrollRecordNotFound
		}
		return payroll.PayrollRecord{}, fmt.Errorf("failed to get payroll record: %w", err)
	}

	return rec, nil
}

func (r *payrollRecordRepository) GetByEmployeeWeek(ctx context.Context, employeeID string, isoYear, isoWeek int) (payroll.PayrollRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + payrollRecordColumns + `
		FROM payroll_records pr
		JOIN employees e ON pr.employee_id = e.id
		WHERE pr.employee_id = $1 AND pr.iso_year = $2 AND pr.iso_week = $3
	`

	rec, err := scanPayrollRecord(q.QueryRow(ctx, query, employeeID, isoYear, isoWeek))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.PayrollRecord{}, payroll.ErrPayrollRecordNotFound
		}
		return payroll.PayrollRecord{}, fmt.Errorf("failed to get payroll record: %w", err)
	}

	return rec, nil
}

func (r *payrollRecordRepository) List(ctx context.Context, filter payroll.PayrollFilter) ([]payroll.PayrollRecord, int64, error) {
	q := GetQuerier(ctx, r.db)

	baseQuery := `
		FROM payroll_records pr
		JOIN employees e ON pr.employee_id = e.id
		WHERE 1 = 1
	`
	args := []interface{}{}
	argIdx := 1

	if filter.EmployeeID != nil {
		baseQuery += fmt.Sprintf(" AND pr.employee_id = $%d", argIdx)
		args = append(args, *filter.EmployeeID)
		argIdx++
	}
	if filter.PayrollWeekID != nil {
		baseQuery += fmt.Sprintf(" AND pr.payroll_week_id = $%d", argIdx)
		args = append(args, *filter.PayrollWeekID)
		argIdx++
	}
	if filter.ISOYear != nil {
		baseQuery += fmt.Sprintf(" AND pr.iso_year = $%d", argIdx)
		args = append(args, *filter.ISOYear)
		argIdx++
	}
	if filter.ISOWeek != nil {
		baseQuery += fmt.Sprintf(" AND pr.iso_week = $%d", argIdx)
		args = append(args, *filter.ISOWeek)
		argIdx++
	}
	if filter.Status != nil {
		baseQuery += fmt.Sprintf(" AND pr.status = $%d", argIdx)
		args = append(args, *filter.Status)
		argIdx++
	}

	// Count query
	var totalCount int64
	countQuery := "SELECT COUNT(*) " + baseQuery
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&totalCount); err != nil {
		return nil, 0, fmt.Errorf("failed to count payroll records: %w", err)
	}

	// Sort
	sortColumn := "pr.created_at"
	if filter.SortBy != "" {
		allowedColumns := map[string]string{
			"created_at":  "pr.created_at",
			"net_total":   "pr.net_total",
			"gross_total": "pr.gross_total",
			"iso_week":    "pr.iso_year DESC, pr.iso_week",
		}
		if col, ok := allowedColumns[filter.SortBy]; ok {
			sortColumn = col
		}
	}
	sortOrder := "DESC"
	if filter.SortOrder == "asc" {
		sortOrder = "ASC"
	}

	// Pagination
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	offset := (filter.Page - 1) * filter.Limit

	selectQuery := fmt.Sprintf(`
		SELECT %s
		%s
		ORDER BY %s %s
		LIMIT $%d OFFSET $%d
	`, payrollRecordColumns, baseQuery, sortColumn, sortOrder, argIdx, argIdx+1)

	args = append(args, filter.Limit, offset)

	records, err := r.queryRecords(ctx, q, selectQuery, args...)
	if err != nil {
		return nil, 0, err
	}

	return records, totalCount, nil
}

func (r *payrollRecordRepository) ListByWeek(ctx context.Context, isoYear, isoWeek int) ([]payroll.PayrollRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + payrollRecordColumns + `
		FROM payroll_records pr
		JOIN employees e ON pr.employee_id = e.id
		WHERE pr.iso_year = $1 AND pr.iso_week = $2
		ORDER BY e.full_name
	`

	return r.queryRecords(ctx, q, query, isoYear, isoWeek)
}

func (r *payrollRecordRepository) queryRecords(ctx context.Context, q database.Querier, query string, args ...interface{}) ([]payroll.PayrollRecord, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list payroll records: %w", err)
	}
	defer rows.Close()

	var records []payroll.PayrollRecord
	for rows.Next() {
		rec, err := scanPayrollRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payroll record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate payroll records: %w", err)
	}

	return records, nil
}

// UpdateStatus writes only status and paid_at. Monetary columns are never updated.
func (r *payrollRecordRepository) UpdateStatus(ctx context.Context, record payroll.PayrollRecord) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE payroll_records
		SET status = $1, paid_at = $2, updated_at = NOW()
		WHERE id = $3
	`

	tag, err := q.Exec(ctx, query, record.Status, record.PaidAt, record.ID)
	if err != nil {
		return fmt.Errorf("failed to update payroll record status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return payroll.ErrPayrollRecordNotFound
	}

	return nil
}
