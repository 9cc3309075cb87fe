package payroll

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/debt"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/apperror"
	"github.com/go-chi/jwtauth/v5"
)

type PayrollServiceImpl struct {
	txManager    payroll.TxManager
	calculator   payroll.Calculator
	resolver     payroll.PeriodResolver
	ledger       debt.DebtLedger
	employeeRepo employee.EmployeeRepository
	recordRepo   payroll.PayrollRecordRepository
	weekRepo     payroll.PayrollWeekRepository
	paymentRepo  payroll.PaymentRepository
	historyRepo  payroll.HistoryRepository
}

// NewPayrollService wires the lifecycle. txManager may be nil, in which case
// post-persist failures of CreatePayroll are reported with a PostCreateError.
func NewPayrollService(
	txManager payroll.TxManager,
	calculator payroll.Calculator,
	resolver payroll.PeriodResolver,
	ledger debt.DebtLedger,
	employeeRepo employee.EmployeeRepository,
	recordRepo payroll.PayrollRecordRepository,
	weekRepo payroll.PayrollWeekRepository,
	paymentRepo payroll.PaymentRepository,
	historyRepo payroll.HistoryRepository,
) payroll.PayrollService {
	return &PayrollServiceImpl{
		txManager:    txManager,
		calculator:   calculator,
		resolver:     resolver,
		ledger:       ledger,
		employeeRepo: employeeRepo,
		recordRepo:   recordRepo,
		weekRepo:     weekRepo,
		paymentRepo:  paymentRepo,
		historyRepo:  historyRepo,
	}
}

// actorFromContext returns the user_id claim of the bearer token, if any.
func actorFromContext(ctx context.Context) *string {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return nil
	}
	userID, _ := claims["user_id"].(string)
	if userID == "" {
		return nil
	}
	return &userID
}

func (s *PayrollServiceImpl) withinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.txManager == nil {
		return fn(ctx)
	}
	return s.txManager.WithinTransaction(ctx, fn)
}

// ========== PREVIEW ==========

func (s *PayrollServiceImpl) PreviewPayroll(ctx context.Context, req payroll.PreviewPayrollRequest) (payroll.ComputationResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.ComputationResponse{}, err
	}

	var rate employee.PayRate
	if req.PayRate != nil {
		rate = *req.PayRate
	} else {
		emp, err := s.employeeRepo.GetByID(ctx, *req.EmployeeID)
		if err != nil {
			return payroll.ComputationResponse{}, err
		}
		rate = emp.PayRate
	}

	at := time.Now()
	if req.WorkDate != nil {
		parsed, err := payroll.ParseDate(*req.WorkDate)
		if err != nil {
			return payroll.ComputationResponse{}, apperror.Detail(payroll.ErrInvalidInput, "work_date: %v", err)
		}
		at = parsed
	}

	comp, err := s.calculator.Compute(req.ToComputeInput(rate, at))
	if err != nil {
		return payroll.ComputationResponse{}, err
	}
	return mapToComputationResponse(comp), nil
}

// ========== CREATE ==========

type createResult struct {
	record  payroll.PayrollRecord
	debt    *debt.Debt
	settled []debt.Debt
}

func (s *PayrollServiceImpl) CreatePayroll(ctx context.Context, req payroll.CreatePayrollRequest) (payroll.CreatePayrollResponse, error) {
	// Everything up to the calculation is read-only; a rejection here persists nothing.
	// A week that is not stored yet is created with the record.
	if err := req.Validate(); err != nil {
		return payroll.CreatePayrollResponse{}, err
	}

	emp, err := s.employeeRepo.GetByID(ctx, req.EmployeeID)
	if err != nil {
		return payroll.CreatePayrollResponse{}, err
	}
	if !emp.Active {
		return payroll.CreatePayrollResponse{}, apperror.Detail(employee.ErrEmployeeInactive, "employee %s is not active", emp.ID)
	}
	rate := emp.PayRate
	if req.PayRate != nil {
		rate = *req.PayRate
	}

	week, workDate, err := s.resolveWeek(ctx, req)
	if err != nil {
		return payroll.CreatePayrollResponse{}, err
	}
	if week.IsClosed() {
		return payroll.CreatePayrollResponse{}, apperror.Detail(payroll.ErrPeriodClosed, "payroll week %s is closed", week.Label)
	}

	periodKey := s.resolver.PeriodKey(emp.ID, week.ISOYear, week.ISOWeek)
	existing, err := s.resolver.FindExisting(ctx, emp.ID, week.ISOYear, week.ISOWeek)
	if err != nil {
		return payroll.CreatePayrollResponse{}, err
	}
	if existing != nil {
		return payroll.CreatePayrollResponse{}, apperror.Detail(payroll.ErrDuplicatePeriod,
			"payroll %s already exists as record %s", periodKey, existing.ID)
	}

	if err := s.checkDebtsToSettle(ctx, emp.ID, req.SettleDebtIDs); err != nil {
		return payroll.CreatePayrollResponse{}, err
	}

	comp, err := s.calculator.Compute(req.ToComputeInput(rate, workDate))
	if err != nil {
		return payroll.CreatePayrollResponse{}, err
	}

	amountToPay := comp.NetTotal
	if req.AmountToPay != nil && req.AmountToPay.IsPositive() && req.AmountToPay.LessThan(comp.NetTotal) {
		amountToPay = *req.AmountToPay
	}

	projectID := emp.ProjectID
	if req.ProjectID != nil {
		projectID = req.ProjectID
	}

	record := payroll.PayrollRecord{
		EmployeeID:          emp.ID,
		PayrollWeekID:       week.ID,
		ISOYear:             week.ISOYear,
		ISOWeek:             week.ISOWeek,
		ProjectID:           projectID,
		DaysWorked:          comp.DaysWorked,
		PayMode:             comp.PayMode,
		PayRate:             comp.PayRate,
		BasePay:             comp.BasePay,
		OvertimeHours:       comp.OvertimeHours,
		OvertimePay:         comp.OvertimePay,
		Bonuses:             comp.Bonuses,
		ISR:                 comp.Deductions.ISR,
		IMSS:                comp.Deductions.IMSS,
		INFONAVIT:           comp.Deductions.INFONAVIT,
		AdditionalDeduction: comp.Deductions.Additional,
		TotalDeductions:     comp.Deductions.Total,
		GrossTotal:          comp.GrossTotal,
		NetTotal:            comp.NetTotal,
		AmountPaid:          amountToPay,
		Status:              payroll.PayrollStatusPending,
		Notes:               req.Notes,
		CreatedBy:           actorFromContext(ctx),
	}
	detail := map[string]any{
		"period_key":  periodKey,
		"gross_total": comp.GrossTotal.StringFixed(2),
		"net_total":   comp.NetTotal.StringFixed(2),
		"amount_paid": amountToPay.StringFixed(2),
		"tax_table":   comp.TaxTable,
	}

	if s.txManager == nil {
		result, err := s.persistPayroll(ctx, week, record, req.SettleDebtIDs, detail)
		if err != nil {
			var postErr *payroll.PostCreateError
			if errors.As(err, &postErr) {
				return s.mapToCreateResponse(result), err
			}
			return payroll.CreatePayrollResponse{}, err
		}
		return s.mapToCreateResponse(result), nil
	}

	var result createResult
	err = s.txManager.WithinTransaction(ctx, func(txCtx context.Context) error {
		var txErr error
		result, txErr = s.persistPayroll(txCtx, week, record, req.SettleDebtIDs, detail)
		return txErr
	})
	if err != nil {
		// The transaction rolled back, so nothing of the record survives.
		var postErr *payroll.PostCreateError
		if errors.As(err, &postErr) {
			return payroll.CreatePayrollResponse{}, fmt.Errorf("create payroll %s: %w", periodKey, postErr.Err)
		}
		return payroll.CreatePayrollResponse{}, err
	}
	return s.mapToCreateResponse(result), nil
}

// persistPayroll runs the write steps in order: week (when new), record, debt,
// settlements, history.
func (s *PayrollServiceImpl) persistPayroll(ctx context.Context, week payroll.PayrollWeek, record payroll.PayrollRecord, settleIDs []string, detail map[string]any) (createResult, error) {
	var result createResult

	if week.ID == "" {
		stored, err := s.storeWeek(ctx, week)
		if err != nil {
			return result, err
		}
		if stored.IsClosed() {
			return result, apperror.Detail(payroll.ErrPeriodClosed, "payroll week %s is closed", stored.Label)
		}
		record.PayrollWeekID = stored.ID
	}

	created, err := s.recordRepo.Create(ctx, record)
	if err != nil {
		return result, err
	}
	result.record = created
	postErr := func(step string, err error) error {
		return &payroll.PostCreateError{RecordID: created.ID, Step: step, Err: err}
	}

	if created.AmountPaid.LessThan(created.NetTotal) {
		opened, err := s.ledger.OpenDebt(ctx, debt.OpenDebtRequest{
			PayrollRecordID: created.ID,
			EmployeeID:      created.EmployeeID,
			TotalOwed:       created.NetTotal,
			AmountPaidNow:   created.AmountPaid,
		})
		if err != nil {
			return result, postErr(payroll.StepOpenDebt, err)
		}
		result.debt = &opened
	}

	if len(settleIDs) > 0 {
		settled, err := s.ledger.SettleDebts(ctx, debt.SettleDebtsRequest{EmployeeID: created.EmployeeID, DebtIDs: settleIDs})
		if err != nil {
			return result, postErr(payroll.StepSettleDebts, err)
		}
		result.settled = settled
	}

	toStatus := created.Status
	entries := []payroll.HistoryEntry{{
		PayrollRecordID: created.ID,
		ActorID:         created.CreatedBy,
		Action:          payroll.HistoryActionCreated,
		ToStatus:        &toStatus,
		Detail:          detail,
	}}
	if result.debt != nil {
		entries = append(entries, payroll.HistoryEntry{
			PayrollRecordID: created.ID,
			ActorID:         created.CreatedBy,
			Action:          payroll.HistoryActionDebtOpened,
			Detail: map[string]any{
				"debt_id":        result.debt.ID,
				"total_owed":     result.debt.TotalOwed.StringFixed(2),
				"amount_paid":    result.debt.AmountPaid.StringFixed(2),
				"amount_pending": result.debt.AmountPending.StringFixed(2),
			},
		})
	}
	if len(result.settled) > 0 {
		ids := make([]string, 0, len(result.settled))
		for _, d := range result.settled {
			ids = append(ids, d.ID)
		}
		entries = append(entries, payroll.HistoryEntry{
			PayrollRecordID: created.ID,
			ActorID:         created.CreatedBy,
			Action:          payroll.HistoryActionDebtsSettled,
			Detail:          map[string]any{"debt_ids": ids},
		})
	}
	for _, entry := range entries {
		if _, err := s.historyRepo.Append(ctx, entry); err != nil {
			return result, postErr(payroll.StepAppendHistory, err)
		}
	}

	return result, nil
}

// resolveWeek finds the payroll week by id or by work date. A work date with no
// stored week returns the described draft week with an empty ID; nothing is written.
func (s *PayrollServiceImpl) resolveWeek(ctx context.Context, req payroll.CreatePayrollRequest) (payroll.PayrollWeek, time.Time, error) {
	var workDate time.Time
	if req.WorkDate != nil {
		parsed, err := payroll.ParseDate(*req.WorkDate)
		if err != nil {
			return payroll.PayrollWeek{}, time.Time{}, apperror.Detail(payroll.ErrInvalidInput, "work_date: %v", err)
		}
		workDate = parsed
	}

	if req.PayrollWeekID != nil {
		week, err := s.weekRepo.GetByID(ctx, *req.PayrollWeekID)
		if err != nil {
			return payroll.PayrollWeek{}, time.Time{}, err
		}
		if req.WorkDate == nil {
			return week, week.StartDate, nil
		}
		if workDate.Before(week.StartDate) || workDate.After(week.EndDate) {
			return payroll.PayrollWeek{}, time.Time{}, apperror.Detail(payroll.ErrWeekMismatch,
				"work date %s is outside %s", *req.WorkDate, week.Label)
		}
		return week, workDate, nil
	}

	described := s.resolver.Describe(workDate)
	week, err := s.weekRepo.GetByISOWeek(ctx, described.ISOYear, described.ISOWeek)
	if err == nil {
		return week, workDate, nil
	}
	if !errors.Is(err, payroll.ErrPayrollWeekNotFound) {
		return payroll.PayrollWeek{}, time.Time{}, err
	}

	return described, workDate, nil
}

// storeWeek creates a described week. A concurrent create of the same ISO week
// resolves to the stored row.
func (s *PayrollServiceImpl) storeWeek(ctx context.Context, week payroll.PayrollWeek) (payroll.PayrollWeek, error) {
	stored, err := s.weekRepo.Create(ctx, week)
	if errors.Is(err, payroll.ErrPayrollWeekExists) {
		return s.weekRepo.GetByISOWeek(ctx, week.ISOYear, week.ISOWeek)
	}
	return stored, err
}

// checkDebtsToSettle makes sure every requested debt exists and belongs to the employee
// before anything is written.
func (s *PayrollServiceImpl) checkDebtsToSettle(ctx context.Context, employeeID string, debtIDs []string) error {
	for _, id := range debtIDs {
		d, err := s.ledger.Get(ctx, id)
		if err != nil {
			return err
		}
		if d.EmployeeID != employeeID {
			return apperror.Detail(debt.ErrDebtNotOwned, "debt %s does not belong to employee %s", id, employeeID)
		}
	}
	return nil
}

// ========== READ ==========

func (s *PayrollServiceImpl) GetPayrollRecord(ctx context.Context, id string) (payroll.PayrollRecordResponse, error) {
	record, err := s.recordRepo.GetByID(ctx, id)
	if err != nil {
		return payroll.PayrollRecordResponse{}, err
	}
	return s.mapToRecordResponse(record), nil
}

func (s *PayrollServiceImpl) ListPayrollRecords(ctx context.Context, filter payroll.PayrollFilter) (payroll.ListPayrollRecordResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 100 {
		filter.Limit = 20
	}
	if filter.SortBy == "" {
		filter.SortBy = "created_at"
	}
	if filter.SortOrder == "" {
		filter.SortOrder = "desc"
	}
	if err := filter.Validate(); err != nil {
		return payroll.ListPayrollRecordResponse{}, err
	}

	records, total, err := s.recordRepo.List(ctx, filter)
	if err != nil {
		return payroll.ListPayrollRecordResponse{}, err
	}

	return payroll.ListPayrollRecordResponse{
		Data:       s.mapToRecordResponses(records),
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
	}, nil
}

func (s *PayrollServiceImpl) GetRecordHistory(ctx context.Context, id string) ([]payroll.HistoryEntryResponse, error) {
	if _, err := s.recordRepo.GetByID(ctx, id); err != nil {
		return nil, err
	}

	entries, err := s.historyRepo.ListByRecord(ctx, id)
	if err != nil {
		return nil, err
	}

	result := make([]payroll.HistoryEntryResponse, 0, len(entries))
	for _, e := range entries {
		result = append(result, mapToHistoryResponse(e))
	}
	return result, nil
}

// ========== STATE ==========

func (s *PayrollServiceImpl) ChangeState(ctx context.Context, req payroll.ChangeStateRequest) (payroll.PayrollRecordResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.PayrollRecordResponse{}, err
	}

	var updated payroll.PayrollRecord
	err := s.withinTransaction(ctx, func(ctx context.Context) error {
		record, err := s.recordRepo.GetByID(ctx, req.PayrollRecordID)
		if err != nil {
			return err
		}

		from := record.Status
		to := payroll.PayrollStatus(req.Status)
		if !from.CanTransitionTo(to) {
			return apperror.Detail(payroll.ErrIllegalTransition, "cannot change payroll status from %s to %s", from, to)
		}

		record.Status = to
		if to == payroll.PayrollStatusPaid {
			paidAt := time.Now()
			record.PaidAt = &paidAt
		}
		if err := s.recordRepo.UpdateStatus(ctx, record); err != nil {
			return err
		}

		_, err = s.historyRepo.Append(ctx, payroll.HistoryEntry{
			PayrollRecordID: record.ID,
			ActorID:         actorFromContext(ctx),
			Action:          payroll.HistoryActionStatusChanged,
			FromStatus:      &from,
			ToStatus:        &to,
			Reason:          req.Reason,
		})
		if err != nil {
			return err
		}

		updated = record
		return nil
	})
	if err != nil {
		return payroll.PayrollRecordResponse{}, err
	}
	return s.mapToRecordResponse(updated), nil
}

// ========== PAYMENTS ==========

// RecordPayment appends a payment and marks the record paid from any status except
// cancelled. Monetary fields of the record are left untouched.
func (s *PayrollServiceImpl) RecordPayment(ctx context.Context, req payroll.RecordPaymentRequest) (payroll.PaymentResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.PaymentResponse{}, err
	}

	var created payroll.Payment
	err := s.withinTransaction(ctx, func(ctx context.Context) error {
		record, err := s.recordRepo.GetByID(ctx, req.PayrollRecordID)
		if err != nil {
			return err
		}

		from := record.Status
		to := payroll.PayrollStatusPaid
		if from == payroll.PayrollStatusCancelled {
			return apperror.Detail(payroll.ErrIllegalTransition, "cannot record a payment on a cancelled payroll")
		}

		actor := actorFromContext(ctx)
		paidAt := time.Now()
		created, err = s.paymentRepo.Append(ctx, payroll.Payment{
			PayrollRecordID: record.ID,
			Amount:          req.Amount,
			Method:          req.Method,
			Reference:       req.Reference,
			PaidAt:          paidAt,
			CreatedBy:       actor,
		})
		if err != nil {
			return err
		}

		record.Status = to
		if record.PaidAt == nil {
			record.PaidAt = &paidAt
		}
		if err := s.recordRepo.UpdateStatus(ctx, record); err != nil {
			return err
		}

		_, err = s.historyRepo.Append(ctx, payroll.HistoryEntry{
			PayrollRecordID: record.ID,
			ActorID:         actor,
			Action:          payroll.HistoryActionPaymentRecorded,
			FromStatus:      &from,
			ToStatus:        &to,
			Detail: map[string]any{
				"payment_id": created.ID,
				"amount":     req.Amount.StringFixed(2),
				"method":     req.Method,
			},
		})
		return err
	})
	if err != nil {
		return payroll.PaymentResponse{}, err
	}
	return mapToPaymentResponse(created), nil
}

func (s *PayrollServiceImpl) ListPayments(ctx context.Context, payrollRecordID string) ([]payroll.PaymentResponse, error) {
	if _, err := s.recordRepo.GetByID(ctx, payrollRecordID); err != nil {
		return nil, err
	}

	payments, err := s.paymentRepo.ListByRecord(ctx, payrollRecordID)
	if err != nil {
		return nil, err
	}

	result := make([]payroll.PaymentResponse, 0, len(payments))
	for _, p := range payments {
		result = append(result, mapToPaymentResponse(p))
	}
	return result, nil
}

// ========== MAPPING ==========

func (s *PayrollServiceImpl) mapToRecordResponse(r payroll.PayrollRecord) payroll.PayrollRecordResponse {
	var paidAt *string
	if r.PaidAt != nil {
		str := r.PaidAt.Format(time.RFC3339)
		paidAt = &str
	}

	allowed := r.Status.AllowedTransitions()
	allowedStatuses := make([]string, 0, len(allowed))
	for _, st := range allowed {
		allowedStatuses = append(allowedStatuses, string(st))
	}

	return payroll.PayrollRecordResponse{
		ID:            r.ID,
		EmployeeID:    r.EmployeeID,
		EmployeeName:  r.EmployeeName,
		PayrollWeekID: r.PayrollWeekID,
		ISOYear:       r.ISOYear,
		ISOWeek:       r.ISOWeek,
		PeriodKey:     s.resolver.PeriodKey(r.EmployeeID, r.ISOYear, r.ISOWeek),
		ProjectID:     r.ProjectID,
		DaysWorked:    r.DaysWorked,
		PayMode:       string(r.PayMode),
		PayRate:       r.PayRate,
		BasePay:       r.BasePay,
		OvertimeHours: r.OvertimeHours,
		OvertimePay:   r.OvertimePay,
		Bonuses:       r.Bonuses,
		Deductions: payroll.DeductionsResponse{
			ISR:        r.ISR,
			IMSS:       r.IMSS,
			INFONAVIT:  r.INFONAVIT,
			Additional: r.AdditionalDeduction,
			Total:      r.TotalDeductions,
		},
		GrossTotal:      r.GrossTotal,
		NetTotal:        r.NetTotal,
		AmountPaid:      r.AmountPaid,
		AmountPending:   r.AmountPending(),
		Status:          string(r.Status),
		AllowedStatuses: allowedStatuses,
		Notes:           r.Notes,
		PaidAt:          paidAt,
		CreatedAt:       r.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       r.UpdatedAt.Format(time.RFC3339),
	}
}

func (s *PayrollServiceImpl) mapToRecordResponses(records []payroll.PayrollRecord) []payroll.PayrollRecordResponse {
	result := make([]payroll.PayrollRecordResponse, 0, len(records))
	for _, r := range records {
		result = append(result, s.mapToRecordResponse(r))
	}
	return result
}

func (s *PayrollServiceImpl) mapToCreateResponse(result createResult) payroll.CreatePayrollResponse {
	resp := payroll.CreatePayrollResponse{Record: s.mapToRecordResponse(result.record)}
	if result.debt != nil {
		d := debt.NewDebtResponse(*result.debt)
		resp.Debt = &d
	}
	for _, d := range result.settled {
		resp.SettledDebts = append(resp.SettledDebts, debt.NewDebtResponse(d))
	}
	return resp
}

func mapToComputationResponse(c payroll.Computation) payroll.ComputationResponse {
	return payroll.ComputationResponse{
		PayMode:       string(c.PayMode),
		PayRate:       c.PayRate,
		DaysWorked:    c.DaysWorked,
		BasePay:       c.BasePay,
		OvertimeHours: c.OvertimeHours,
		HourlyRate:    c.HourlyRate,
		OvertimePay:   c.OvertimePay,
		Bonuses:       c.Bonuses,
		GrossTotal:    c.GrossTotal,
		Deductions:    payroll.NewDeductionsResponse(c.Deductions),
		NetTotal:      c.NetTotal,
		TaxTable:      c.TaxTable,
	}
}

func mapToPaymentResponse(p payroll.Payment) payroll.PaymentResponse {
	return payroll.PaymentResponse{
		ID:              p.ID,
		PayrollRecordID: p.PayrollRecordID,
		Amount:          p.Amount,
		Method:          p.Method,
		Reference:       p.Reference,
		PaidAt:          p.PaidAt.Format(time.RFC3339),
	}
}

func mapToHistoryResponse(e payroll.HistoryEntry) payroll.HistoryEntryResponse {
	resp := payroll.HistoryEntryResponse{
		ID:        e.ID,
		ActorID:   e.ActorID,
		Action:    string(e.Action),
		Reason:    e.Reason,
		Detail:    e.Detail,
		CreatedAt: e.CreatedAt.Format(time.RFC3339),
	}
	if e.FromStatus != nil {
		from := string(*e.FromStatus)
		resp.FromStatus = &from
	}
	if e.ToStatus != nil {
		to := string(*e.ToStatus)
		resp.ToStatus = &to
	}
	return resp
}
