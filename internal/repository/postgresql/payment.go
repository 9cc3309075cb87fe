package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/database"
	"github.com/google/uuid"
)

type paymentRepository struct {
	db *database.DB
}

func NewPaymentRepository(db *database.DB) payroll.PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) Append(ctx context.Context, payment payroll.Payment) (payroll.Payment, error) {
	q := GetQuerier(ctx, r.db)

	id, err := uuid.NewV7()
	if err != nil {
		return payroll.Payment{}, fmt.Errorf("failed to generate payment id: %w", err)
	}
	payment.ID = id.String()

	query := `
		INSERT INTO payroll_payments (id, payroll_record_id, amount, method, reference, paid_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err = q.Exec(ctx, query,
		payment.ID, payment.PayrollRecordID, payment.Amount, payment.Method, payment.Reference, payment.PaidAt, payment.CreatedBy,
	)
	if err != nil {
		return payroll.Payment{}, fmt.Errorf("failed to append payment: %w", err)
	}

	return payment, nil
}

func (r *paymentRepository) ListByRecord(ctx context.Context, payrollRecordID string) ([]payroll.Payment, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, payroll_record_id, amount, method, reference, paid_at, created_by
		FROM payroll_payments
		WHERE payroll_record_id = $1
		ORDER BY paid_at, id
	`

	rows, err := q.Query(ctx, query, payrollRecordID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	var payments []payroll.Payment
	for rows.Next() {
		var p payroll.Payment
		if err := rows.Scan(&p.ID, &p.PayrollRecordID, &p.Amount, &p.Method, &p.Reference, &p.PaidAt, &p.CreatedBy); err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate payments: %w", err)
	}

	return payments, nil
}
