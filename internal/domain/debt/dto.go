package debt

import (
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

type OpenDebtRequest struct {
	PayrollRecordID string
	EmployeeID      string
	TotalOwed       decimal.Decimal
	AmountPaidNow   decimal.Decimal
}

type SettleDebtsRequest struct {
	EmployeeID string   `json:"-"`
	DebtIDs    []string `json:"debt_ids" validate:"required,dive,uuid"`
}

func (r *SettleDebtsRequest) Validate() error {
	if len(r.DebtIDs) == 0 {
		return validator.ValidationErrors{{Field: "debt_ids", Message: "at least one debt id is required"}}
	}
	return validator.Struct(r)
}

type DebtResponse struct {
	ID              string          `json:"id"`
	EmployeeID      string          `json:"employee_id"`
	PayrollRecordID string          `json:"payroll_record_id"`
	TotalOwed       decimal.Decimal `json:"total_owed"`
	AmountPaid      decimal.Decimal `json:"amount_paid"`
	AmountPending   decimal.Decimal `json:"amount_pending"`
	Status          string          `json:"status"`
	SettledAt       *string         `json:"settled_at,omitempty"`
	CreatedAt       string          `json:"created_at"`
}

type OutstandingTotalResponse struct {
	EmployeeID string          `json:"employee_id"`
	Total      decimal.Decimal `json:"total"`
}

type SettleDebtsResponse struct {
	Settled []DebtResponse `json:"settled"`
}

func NewDebtResponse(d Debt) DebtResponse {
	resp := DebtResponse{
		ID:              d.ID,
		EmployeeID:      d.EmployeeID,
		PayrollRecordID: d.PayrollRecordID,
		TotalOwed:       d.TotalOwed,
		AmountPaid:      d.AmountPaid,
		AmountPending:   d.AmountPending,
		Status:          string(d.Status),
		CreatedAt:       d.CreatedAt.Format(time.RFC3339),
	}
	if d.SettledAt != nil {
		str := d.SettledAt.Format(time.RFC3339)
		resp.SettledAt = &str
	}
	return resp
}

func NewDebtResponses(debts []Debt) []DebtResponse {
	resp := make([]DebtResponse, 0, len(debts))
	for _, d := range debts {
		resp = append(resp, NewDebtResponse(d))
	}
	return resp
}
