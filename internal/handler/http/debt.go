package http

import (
	"encoding/json"
	"net/http"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/debt"
	"github.com/cmlabs-hris/payroll-engine/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type DebtHandler interface {
	ListDebts(w http.ResponseWriter, r *http.Request)
	OutstandingTotal(w http.ResponseWriter, r *http.Request)
	SettleDebts(w http.ResponseWriter, r *http.Request)
}

type debtHandlerImpl struct {
	debtService debt.DebtService
}

func NewDebtHandler(debtService debt.DebtService) DebtHandler {
	return &debtHandlerImpl{debtService: debtService}
}

// ListDebts lists an employee's debts. ?outstanding=true keeps only pending and partial ones.
func (h *debtHandlerImpl) ListDebts(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "employeeId")
	outstandingOnly := r.URL.Query().Get("outstanding") == "true"

	result, err := h.debtService.ListDebts(r.Context(), employeeID, outstandingOnly)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *debtHandlerImpl) OutstandingTotal(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "employeeId")

	result, err := h.debtService.OutstandingTotal(r.Context(), employeeID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *debtHandlerImpl) SettleDebts(w http.ResponseWriter, r *http.Request) {
	var req debt.SettleDebtsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.EmployeeID = chi.URLParam(r, "employeeId")

	result, err := h.debtService.SettleDebts(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Debts settled", result)
}
