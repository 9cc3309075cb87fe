package postgresql

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/debt"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPayrollRecordRepository_CreateDuplicatePeriod(t *testing.T) {
	mock, db := newMockDB(t)
	repo := NewPayrollRecordRepository(db)

	mock.ExpectQuery(`INSERT INTO payroll_records`).
		WillReturnError(&pgconn.PgError{Code: uniqueViolationCode, ConstraintName: payrollEmployeeWeekConstraint})

	_, err := repo.Create(context.Background(), payroll.PayrollRecord{EmployeeID: "emp-1", PayrollWeekID: "week-1"})

	assert.ErrorIs(t, err, payroll.ErrDuplicatePeriod)
}

func TestPaymentRepository_Append(t *testing.T) {
	mock, db := newMockDB(t)
	repo := NewPaymentRepository(db)
	paidAt := time.Date(2024, 3, 15, 17, 0, 0, 0, time.UTC)
	ref := "TRX-881"

	mock.ExpectExec(`INSERT INTO payroll_payments`).
		WithArgs(pgxmock.AnyArg(), "rec-1", pgxmock.AnyArg(), "transfer", &ref, paidAt, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	p, err := repo.Append(context.Background(), payroll.Payment{
		PayrollRecordID: "rec-1",
		Amount:          decimal.NewFromInt(1500),
		Method:          "transfer",
		Reference:       &ref,
		PaidAt:          paidAt,
	})

	require.NoError(t, err)
	assert.NotEmpty(t, p.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentRepository_AppendFailure(t *testing.T) {
	mock, db := newMockDB(t)
	repo := NewPaymentRepository(db)
	failure := errors.New("foreign key violation")

	mock.ExpectExec(`INSERT INTO payroll_payments`).WillReturnError(failure)

	_, err := repo.Append(context.Background(), payroll.Payment{PayrollRecordID: "gone"})

	assert.ErrorIs(t, err, failure)
}

func TestHistoryRepository_Append(t *testing.T) {
	mock, db := newMockDB(t)
	repo := NewHistoryRepository(db)
	createdAt := time.Now().UTC()

	mock.ExpectQuery(`INSERT INTO payroll_history`).
		WithArgs(pgxmock.AnyArg(), "rec-1", pgxmock.AnyArg(), payroll.HistoryActionDebtOpened,
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(createdAt))

	entry, err := repo.Append(context.Background(), payroll.HistoryEntry{
		PayrollRecordID: "rec-1",
		Action:          payroll.HistoryActionDebtOpened,
		Detail:          map[string]any{"amount": "250.00"},
	})

	require.NoError(t, err)
	assert.NotEmpty(t, entry.ID)
	assert.Equal(t, createdAt, entry.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDebtRepository_UpdateNotFound(t *testing.T) {
	mock, db := newMockDB(t)
	repo := NewDebtRepository(db)

	mock.ExpectExec(`UPDATE debts`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), debt.DebtStatusSettled, pgxmock.AnyArg(), "debt-9").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.Update(context.Background(), debt.Debt{
		ID:         "debt-9",
		TotalOwed:  decimal.NewFromInt(100),
		AmountPaid: decimal.NewFromInt(100),
		Status:     debt.DebtStatusSettled,
	})

	assert.ErrorIs(t, err, debt.ErrDebtNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEmployeeRepository_SetActive(t *testing.T) {
	tests := []struct {
		name     string
		affected int64
		wantErr  error
	}{
		{"updated", 1, nil},
		{"missing", 0, employee.ErrEmployeeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, db := newMockDB(t)
			repo := NewEmployeeRepository(db)

			mock.ExpectExec(`UPDATE employees SET active`).
				WithArgs(false, "emp-1").
				WillReturnResult(pgxmock.NewResult("UPDATE", tt.affected))

			err := repo.SetActive(context.Background(), "emp-1", false)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
