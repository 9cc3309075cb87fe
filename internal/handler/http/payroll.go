package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type PayrollHandler interface {
	// Payroll Records
	PreviewPayroll(w http.ResponseWriter, r *http.Request)
	CreatePayroll(w http.ResponseWriter, r *http.Request)
	GetPayrollRecord(w http.ResponseWriter, r *http.Request)
	ListPayrollRecords(w http.ResponseWriter, r *http.Request)
	ChangeStatus(w http.ResponseWriter, r *http.Request)
	GetHistory(w http.ResponseWriter, r *http.Request)

	// Payments
	RecordPayment(w http.ResponseWriter, r *http.Request)
	ListPayments(w http.ResponseWriter, r *http.Request)

	// Summary
	GetWeeklySummary(w http.ResponseWriter, r *http.Request)
}

type payrollHandlerImpl struct {
	payrollService payroll.PayrollService
}

func NewPayrollHandler(payrollService payroll.PayrollService) PayrollHandler {
	return &payrollHandlerImpl{payrollService: payrollService}
}

// ========== PAYROLL RECORDS ==========

func (h *payrollHandlerImpl) PreviewPayroll(w http.ResponseWriter, r *http.Request) {
	var req payroll.PreviewPayrollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.payrollService.PreviewPayroll(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *payrollHandlerImpl) CreatePayroll(w http.ResponseWriter, r *http.Request) {
	var req payroll.CreatePayrollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.payrollService.CreatePayroll(r.Context(), req)
	if err != nil {
		var postErr *payroll.PostCreateError
		if errors.As(err, &postErr) {
			response.PartialSuccess(w, "Payroll record created but a follow-up step failed", result, "post_create_failed", err.Error())
			return
		}
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Payroll record created", result)
}

func (h *payrollHandlerImpl) GetPayrollRecord(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Record ID is required", nil)
		return
	}

	result, err := h.payrollService.GetPayrollRecord(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *payrollHandlerImpl) ListPayrollRecords(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := payroll.PayrollFilter{
		Page:      1,
		Limit:     20,
		SortBy:    "created_at",
		SortOrder: "desc",
	}

	if pageStr := query.Get("page"); pageStr != "" {
		if page, err := strconv.Atoi(pageStr); err == nil && page > 0 {
			filter.Page = page
		}
	}
	if limitStr := query.Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil && limit > 0 {
			filter.Limit = limit
		}
	}
	if yearStr := query.Get("iso_year"); yearStr != "" {
		year, err := strconv.Atoi(yearStr)
		if err != nil {
			response.BadRequest(w, "Invalid iso_year", map[string]string{"iso_year": "must be a number"})
			return
		}
		filter.ISOYear = &year
	}
	if weekStr := query.Get("iso_week"); weekStr != "" {
		week, err := strconv.Atoi(weekStr)
		if err != nil {
			response.BadRequest(w, "Invalid iso_week", map[string]string{"iso_week": "must be a number"})
			return
		}
		filter.ISOWeek = &week
	}
	if status := query.Get("status"); status != "" {
		filter.Status = &status
	}
	if employeeID := query.Get("employee_id"); employeeID != "" {
		filter.EmployeeID = &employeeID
	}
	if weekID := query.Get("payroll_week_id"); weekID != "" {
		filter.PayrollWeekID = &weekID
	}
	if sortBy := query.Get("sort_by"); sortBy != "" {
		filter.SortBy = sortBy
	}
	if sortOrder := query.Get("sort_order"); sortOrder != "" {
		filter.SortOrder = sortOrder
	}

	result, err := h.payrollService.ListPayrollRecords(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	totalPages := 0
	if result.Limit > 0 {
		totalPages = int((result.TotalCount + int64(result.Limit) - 1) / int64(result.Limit))
	}
	response.SuccessWithMeta(w, result.Data, &response.Meta{
		Page:       result.Page,
		Limit:      result.Limit,
		TotalItems: result.TotalCount,
		TotalPages: totalPages,
	})
}

func (h *payrollHandlerImpl) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Record ID is required", nil)
		return
	}

	var req payroll.ChangeStateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.PayrollRecordID = id

	result, err := h.payrollService.ChangeState(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Payroll status updated", result)
}

func (h *payrollHandlerImpl) GetHistory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Record ID is required", nil)
		return
	}

	result, err := h.payrollService.GetRecordHistory(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ========== PAYMENTS ==========

func (h *payrollHandlerImpl) RecordPayment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Record ID is required", nil)
		return
	}

	var req payroll.RecordPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.PayrollRecordID = id

	result, err := h.payrollService.RecordPayment(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Payment recorded", result)
}

func (h *payrollHandlerImpl) ListPayments(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Record ID is required", nil)
		return
	}

	result, err := h.payrollService.ListPayments(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ========== SUMMARY ==========

func (h *payrollHandlerImpl) GetWeeklySummary(w http.ResponseWriter, r *http.Request) {
	year, errYear := strconv.Atoi(r.URL.Query().Get("iso_year"))
	week, errWeek := strconv.Atoi(r.URL.Query().Get("iso_week"))
	if errYear != nil || errWeek != nil {
		response.BadRequest(w, "iso_year and iso_week are required", map[string]string{
			"iso_year": "must be a number",
			"iso_week": "must be a number",
		})
		return
	}

	result, err := h.payrollService.GetWeeklySummary(r.Context(), year, week)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
