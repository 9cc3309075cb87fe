package debt

import (
	"context"

	"github.com/shopspring/decimal"
)

// DebtLedger tracks balances opened by partial payments and their settlement.
type DebtLedger interface {
	OpenDebt(ctx context.Context, req OpenDebtRequest) (Debt, error)
	// Settle is idempotent: settling a settled debt returns it unchanged.
	Settle(ctx context.Context, debtID string) (Debt, error)
	SettleDebts(ctx context.Context, req SettleDebtsRequest) ([]Debt, error)
	Get(ctx context.Context, debtID string) (Debt, error)
	ListOutstanding(ctx context.Context, employeeID string) ([]Debt, error)
	ListByEmployee(ctx context.Context, employeeID string) ([]Debt, error)
	// TotalOutstanding never fails. Lookup errors are logged and reported as zero.
	TotalOutstanding(ctx context.Context, employeeID string) decimal.Decimal
}

// TxManager runs fn inside a storage transaction carried by ctx.
type TxManager interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// DebtService is the read and settlement surface exposed over HTTP.
type DebtService interface {
	ListDebts(ctx context.Context, employeeID string, outstandingOnly bool) ([]DebtResponse, error)
	OutstandingTotal(ctx context.Context, employeeID string) (OutstandingTotalResponse, error)
	SettleDebts(ctx context.Context, req SettleDebtsRequest) (SettleDebtsResponse, error)
}
