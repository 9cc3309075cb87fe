package http

import (
	"encoding/json"
	"net/http"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type WeekHandler interface {
	CreateWeek(w http.ResponseWriter, r *http.Request)
	GetWeek(w http.ResponseWriter, r *http.Request)
	ChangeStatus(w http.ResponseWriter, r *http.Request)
	ResolveWeek(w http.ResponseWriter, r *http.Request)
}

type weekHandlerImpl struct {
	weekService payroll.WeekService
}

func NewWeekHandler(weekService payroll.WeekService) WeekHandler {
	return &weekHandlerImpl{weekService: weekService}
}

func (h *weekHandlerImpl) CreateWeek(w http.ResponseWriter, r *http.Request) {
	var req payroll.CreateWeekRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.weekService.CreateWeek(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Payroll week created", result)
}

func (h *weekHandlerImpl) GetWeek(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Week ID is required", nil)
		return
	}

	result, err := h.weekService.GetWeek(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *weekHandlerImpl) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Week ID is required", nil)
		return
	}

	var req payroll.ChangeWeekStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.ID = id

	result, err := h.weekService.ChangeWeekStatus(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Payroll week status updated", result)
}

func (h *weekHandlerImpl) ResolveWeek(w http.ResponseWriter, r *http.Request) {
	date, err := payroll.ParseDate(r.URL.Query().Get("date"))
	if err != nil {
		response.BadRequest(w, "Invalid date", map[string]string{"date": "must be a date in YYYY-MM-DD format"})
		return
	}

	result, err := h.weekService.ResolveWeek(r.Context(), date)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
