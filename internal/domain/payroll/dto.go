package payroll

import (
	"errors"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/debt"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/tax"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

const (
	dateLayout = "2006-01-02"

	moneyScaleMessage = "must have at most 2 decimal places"
)

// ========== COMPUTE INPUT ==========

// PayInputs are the timesheet fields shared by preview and create.
type PayInputs struct {
	DaysWorked          decimal.Decimal   `json:"days_worked" validate:"gt=0,lte=7"`
	PayRate             *employee.PayRate `json:"pay_rate,omitempty"`
	OvertimeHours       decimal.Decimal   `json:"overtime_hours" validate:"gte=0"`
	Bonuses             decimal.Decimal   `json:"bonuses" validate:"gte=0"`
	ApplyISR            bool              `json:"apply_isr"`
	ApplyIMSS           bool              `json:"apply_imss"`
	ApplyINFONAVIT      bool              `json:"apply_infonavit"`
	AdditionalDeduction decimal.Decimal   `json:"additional_deduction" validate:"gte=0"`
}

func (p PayInputs) validatePayRate(errs validator.ValidationErrors) validator.ValidationErrors {
	if p.PayRate == nil {
		return errs
	}
	if err := p.PayRate.Validate(); err != nil {
		field := "pay_rate.amount"
		if errors.Is(err, employee.ErrInvalidPayMode) {
			field = "pay_rate.mode"
		}
		errs = append(errs, validator.ValidationError{Field: field, Message: err.Error()})
	}
	return errs
}

// validateMoney rejects amounts with fractions of a cent.
func (p PayInputs) validateMoney(errs validator.ValidationErrors) validator.ValidationErrors {
	if !validator.IsMoney(p.Bonuses) {
		errs = append(errs, validator.ValidationError{Field: "bonuses", Message: moneyScaleMessage})
	}
	if !validator.IsMoney(p.AdditionalDeduction) {
		errs = append(errs, validator.ValidationError{Field: "additional_deduction", Message: moneyScaleMessage})
	}
	return errs
}

// ComputeInput feeds the payroll calculator. PayRate is already resolved.
type ComputeInput struct {
	DaysWorked          decimal.Decimal
	PayRate             employee.PayRate
	OvertimeHours       decimal.Decimal
	Bonuses             decimal.Decimal
	ApplyISR            bool
	ApplyIMSS           bool
	ApplyINFONAVIT      bool
	AdditionalDeduction decimal.Decimal
	// At selects the tax table in effect.
	At time.Time
}

func (p PayInputs) ToComputeInput(rate employee.PayRate, at time.Time) ComputeInput {
	return ComputeInput{
		DaysWorked:          p.DaysWorked,
		PayRate:             rate,
		OvertimeHours:       p.OvertimeHours,
		Bonuses:             p.Bonuses,
		ApplyISR:            p.ApplyISR,
		ApplyIMSS:           p.ApplyIMSS,
		ApplyINFONAVIT:      p.ApplyINFONAVIT,
		AdditionalDeduction: p.AdditionalDeduction,
		At:                  at,
	}
}

// ========== PAYROLL RECORD DTOs ==========

type PreviewPayrollRequest struct {
	EmployeeID *string `json:"employee_id,omitempty" validate:"omitempty,uuid"`
	WorkDate   *string `json:"work_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	PayInputs
}

func (r *PreviewPayrollRequest) Validate() error {
	errs, err := structErrors(r)
	if err != nil {
		return err
	}
	errs = r.validatePayRate(errs)
	errs = r.validateMoney(errs)
	if r.EmployeeID == nil && r.PayRate == nil {
		errs = append(errs, validator.ValidationError{Field: "pay_rate", Message: "is required when employee_id is empty"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type CreatePayrollRequest struct {
	EmployeeID    string  `json:"employee_id" validate:"required,uuid"`
	PayrollWeekID *string `json:"payroll_week_id,omitempty" validate:"omitempty,uuid"`
	WorkDate      *string `json:"work_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	ProjectID     *string `json:"project_id,omitempty" validate:"omitempty,uuid"`
	PayInputs
	// AmountToPay requests a partial payment. Zero, omitted or at least the net pays
	// the full net; negative amounts are rejected.
	AmountToPay *decimal.Decimal `json:"amount_to_pay,omitempty"`
	// SettleDebtIDs lists outstanding debts of the same employee to settle with this payroll.
	SettleDebtIDs []string `json:"settle_debt_ids,omitempty" validate:"omitempty,dive,uuid"`
	Notes         *string  `json:"notes,omitempty" validate:"omitempty,max=500"`
}

func (r *CreatePayrollRequest) Validate() error {
	errs, err := structErrors(r)
	if err != nil {
		return err
	}
	errs = r.validatePayRate(errs)
	errs = r.validateMoney(errs)
	if r.PayrollWeekID == nil && r.WorkDate == nil {
		errs = append(errs, validator.ValidationError{Field: "payroll_week_id", Message: "payroll_week_id or work_date is required"})
	}
	if r.AmountToPay != nil {
		switch {
		case r.AmountToPay.IsNegative():
			errs = append(errs, validator.ValidationError{Field: "amount_to_pay", Message: "must not be negative"})
		case !validator.IsMoney(*r.AmountToPay):
			errs = append(errs, validator.ValidationError{Field: "amount_to_pay", Message: moneyScaleMessage})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type RecordPaymentRequest struct {
	PayrollRecordID string          `json:"-"`
	Amount          decimal.Decimal `json:"amount" validate:"gt=0"`
	Method          string          `json:"method" validate:"required,max=40"`
	Reference       *string         `json:"reference,omitempty" validate:"omitempty,max=120"`
}

func (r *RecordPaymentRequest) Validate() error {
	errs, err := structErrors(r)
	if err != nil {
		return err
	}
	if r.Method != "" && validator.IsEmpty(r.Method) {
		errs = append(errs, validator.ValidationError{Field: "method", Message: "is required"})
	}
	if !validator.IsMoney(r.Amount) {
		errs = append(errs, validator.ValidationError{Field: "amount", Message: moneyScaleMessage})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ChangeStateRequest struct {
	PayrollRecordID string  `json:"-"`
	Status          string  `json:"status" validate:"required"`
	Reason          *string `json:"reason,omitempty" validate:"omitempty,max=500"`
}

func (r *ChangeStateRequest) Validate() error {
	errs, err := structErrors(r)
	if err != nil {
		return err
	}
	if r.Status != "" && !PayrollStatus(r.Status).IsValid() {
		errs = append(errs, validator.ValidationError{Field: "status", Message: "must be one of: pending, in_progress, approved, paid, cancelled"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type PayrollFilter struct {
	EmployeeID    *string `json:"employee_id,omitempty"`
	PayrollWeekID *string `json:"payroll_week_id,omitempty"`
	ISOYear       *int    `json:"iso_year,omitempty"`
	ISOWeek       *int    `json:"iso_week,omitempty"`
	Status        *string `json:"status,omitempty"`
	Page          int     `json:"page"`
	Limit         int     `json:"limit"`
	SortBy        string  `json:"sort_by"`
	SortOrder     string  `json:"sort_order"`
}

func (f *PayrollFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Status != nil && !PayrollStatus(*f.Status).IsValid() {
		errs = append(errs, validator.ValidationError{Field: "status", Message: "is invalid"})
	}
	if f.ISOWeek != nil && (*f.ISOWeek < 1 || *f.ISOWeek > 53) {
		errs = append(errs, validator.ValidationError{Field: "iso_week", Message: "must be between 1 and 53"})
	}
	if f.SortBy != "" && !validator.IsInSlice(f.SortBy, []string{"created_at", "net_total", "gross_total", "iso_week"}) {
		errs = append(errs, validator.ValidationError{Field: "sort_by", Message: "is invalid"})
	}
	if f.SortOrder != "" && !validator.IsInSlice(f.SortOrder, []string{"asc", "desc"}) {
		errs = append(errs, validator.ValidationError{Field: "sort_order", Message: "must be asc or desc"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type DeductionsResponse struct {
	ISR        decimal.Decimal `json:"isr"`
	IMSS       decimal.Decimal `json:"imss"`
	INFONAVIT  decimal.Decimal `json:"infonavit"`
	Additional decimal.Decimal `json:"additional"`
	Total      decimal.Decimal `json:"total"`
}

func NewDeductionsResponse(d tax.Deductions) DeductionsResponse {
	return DeductionsResponse(d)
}

type ComputationResponse struct {
	PayMode       string             `json:"pay_mode"`
	PayRate       decimal.Decimal    `json:"pay_rate"`
	DaysWorked    decimal.Decimal    `json:"days_worked"`
	BasePay       decimal.Decimal    `json:"base_pay"`
	OvertimeHours decimal.Decimal    `json:"overtime_hours"`
	HourlyRate    decimal.Decimal    `json:"hourly_rate"`
	OvertimePay   decimal.Decimal    `json:"overtime_pay"`
	Bonuses       decimal.Decimal    `json:"bonuses"`
	GrossTotal    decimal.Decimal    `json:"gross_total"`
	Deductions    DeductionsResponse `json:"deductions"`
	NetTotal      decimal.Decimal    `json:"net_total"`
	TaxTable      string             `json:"tax_table"`
}

type PayrollRecordResponse struct {
	ID              string             `json:"id"`
	EmployeeID      string             `json:"employee_id"`
	EmployeeName    *string            `json:"employee_name,omitempty"`
	PayrollWeekID   string             `json:"payroll_week_id"`
	ISOYear         int                `json:"iso_year"`
	ISOWeek         int                `json:"iso_week"`
	PeriodKey       string             `json:"period_key"`
	ProjectID       *string            `json:"project_id,omitempty"`
	DaysWorked      decimal.Decimal    `json:"days_worked"`
	PayMode         string             `json:"pay_mode"`
	PayRate         decimal.Decimal    `json:"pay_rate"`
	BasePay         decimal.Decimal    `json:"base_pay"`
	OvertimeHours   decimal.Decimal    `json:"overtime_hours"`
	OvertimePay     decimal.Decimal    `json:"overtime_pay"`
	Bonuses         decimal.Decimal    `json:"bonuses"`
	Deductions      DeductionsResponse `json:"deductions"`
	GrossTotal      decimal.Decimal    `json:"gross_total"`
	NetTotal        decimal.Decimal    `json:"net_total"`
	AmountPaid      decimal.Decimal    `json:"amount_paid"`
	AmountPending   decimal.Decimal    `json:"amount_pending"`
	Status          string             `json:"status"`
	AllowedStatuses []string           `json:"allowed_statuses"`
	Notes           *string            `json:"notes,omitempty"`
	PaidAt          *string            `json:"paid_at,omitempty"`
	CreatedAt       string             `json:"created_at"`
	UpdatedAt       string             `json:"updated_at"`
}

type CreatePayrollResponse struct {
	Record       PayrollRecordResponse `json:"record"`
	Debt         *debt.DebtResponse    `json:"debt,omitempty"`
	SettledDebts []debt.DebtResponse   `json:"settled_debts,omitempty"`
}

type ListPayrollRecordResponse struct {
	Data       []PayrollRecordResponse `json:"data"`
	TotalCount int64                   `json:"total_count"`
	Page       int                     `json:"page"`
	Limit      int                     `json:"limit"`
}

type PaymentResponse struct {
	ID              string          `json:"id"`
	PayrollRecordID string          `json:"payroll_record_id"`
	Amount          decimal.Decimal `json:"amount"`
	Method          string          `json:"method"`
	Reference       *string         `json:"reference,omitempty"`
	PaidAt          string          `json:"paid_at"`
}

type HistoryEntryResponse struct {
	ID         string         `json:"id"`
	ActorID    *string        `json:"actor_id,omitempty"`
	Action     string         `json:"action"`
	FromStatus *string        `json:"from_status,omitempty"`
	ToStatus   *string        `json:"to_status,omitempty"`
	Reason     *string        `json:"reason,omitempty"`
	Detail     map[string]any `json:"detail,omitempty"`
	CreatedAt  string         `json:"created_at"`
}

// ========== WEEK DTOs ==========

type CreateWeekRequest struct {
	// Date is any day inside the week. Alternative to ISOYear and ISOWeek.
	Date    *string `json:"date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	ISOYear int     `json:"iso_year" validate:"omitempty,gte=2000,lte=9999"`
	ISOWeek int     `json:"iso_week" validate:"omitempty,gte=1,lte=53"`
	Label   *string `json:"label,omitempty" validate:"omitempty,max=120"`
}

func (r *CreateWeekRequest) Validate() error {
	errs, err := structErrors(r)
	if err != nil {
		return err
	}
	if r.Date == nil && (r.ISOYear == 0 || r.ISOWeek == 0) {
		errs = append(errs, validator.ValidationError{Field: "date", Message: "date or iso_year with iso_week is required"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ChangeWeekStatusRequest struct {
	ID     string `json:"-"`
	Status string `json:"status" validate:"required,oneof=draft in_progress closed"`
}

func (r *ChangeWeekStatusRequest) Validate() error {
	errs, err := structErrors(r)
	if err != nil {
		return err
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

type PayrollWeekResponse struct {
	ID          string `json:"id,omitempty"`
	ISOYear     int    `json:"iso_year"`
	ISOWeek     int    `json:"iso_week"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	WeekOfMonth int    `json:"week_of_month"`
	Label       string `json:"label"`
	Status      string `json:"status,omitempty"`
}

// ========== SUMMARY DTOs ==========

type Totals struct {
	Count      int             `json:"count"`
	NetTotal   decimal.Decimal `json:"net_total"`
	AmountPaid decimal.Decimal `json:"amount_paid"`
}

type WeeklySummaryResponse struct {
	Week            PayrollWeekResponse `json:"week"`
	TotalRecords    int                 `json:"total_records"`
	TotalBasePay    decimal.Decimal     `json:"total_base_pay"`
	TotalOvertime   decimal.Decimal     `json:"total_overtime"`
	TotalBonuses    decimal.Decimal     `json:"total_bonuses"`
	TotalDeductions decimal.Decimal     `json:"total_deductions"`
	TotalGross      decimal.Decimal     `json:"total_gross"`
	TotalNet        decimal.Decimal     `json:"total_net"`
	TotalPaid       decimal.Decimal     `json:"total_paid"`
	TotalPending    decimal.Decimal     `json:"total_pending"`
	ByStatus        map[string]Totals   `json:"by_status"`
	ByProject       map[string]Totals   `json:"by_project"`
}

// structErrors runs tag validation and splits field errors from unexpected ones.
func structErrors(s interface{}) (validator.ValidationErrors, error) {
	err := validator.Struct(s)
	if err == nil {
		return nil, nil
	}
	var errs validator.ValidationErrors
	if errors.As(err, &errs) {
		return errs, nil
	}
	return nil, err
}

// ParseDate parses a YYYY-MM-DD date in UTC.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(dateLayout, s)
}

func FormatDate(t time.Time) string {
	return t.Format(dateLayout)
}
