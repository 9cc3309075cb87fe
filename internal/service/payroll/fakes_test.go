package payroll

import (
	"context"
	"maps"
	"slices"
	"testing"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/debt"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	debtService "github.com/cmlabs-hris/payroll-engine/internal/service/debt"
	"github.com/cmlabs-hris/payroll-engine/internal/service/period"
	taxService "github.com/cmlabs-hris/payroll-engine/internal/service/tax"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryStore backs every fake repository so a fake transaction can roll all of them back at once.
type memoryStore struct {
	employees map[string]employee.Employee
	records   []payroll.PayrollRecord
	weeks     []payroll.PayrollWeek
	payments  []payroll.Payment
	history   []payroll.HistoryEntry
	debts     []debt.Debt

	failHistory  error
	failDebtOpen error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{employees: make(map[string]employee.Employee)}
}

func (s *memoryStore) clone() memoryStore {
	return memoryStore{
		employees:    maps.Clone(s.employees),
		records:      slices.Clone(s.records),
		weeks:        slices.Clone(s.weeks),
		payments:     slices.Clone(s.payments),
		history:      slices.Clone(s.history),
		debts:        slices.Clone(s.debts),
		failHistory:  s.failHistory,
		failDebtOpen: s.failDebtOpen,
	}
}

func newID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// ===== employees =====

type memoryEmployeeRepo struct{ *memoryStore }

func (r memoryEmployeeRepo) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	e, ok := r.employees[id]
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return e, nil
}

func (r memoryEmployeeRepo) Create(ctx context.Context, e employee.Employee) (employee.Employee, error) {
	e.ID = newID()
	r.employees[e.ID] = e
	return e, nil
}

func (r memoryEmployeeRepo) UpdatePayRate(ctx context.Context, id string, rate employee.PayRate) error {
	e, ok := r.employees[id]
	if !ok {
		return employee.ErrEmployeeNotFound
	}
	e.PayRate = rate
	r.employees[id] = e
	return nil
}

func (r memoryEmployeeRepo) SetActive(ctx context.Context, id string, active bool) error {
	e, ok := r.employees[id]
	if !ok {
		return employee.ErrEmployeeNotFound
	}
	e.Active = active
	r.employees[id] = e
	return nil
}

// ===== records =====

type memoryRecordRepo struct{ *memoryStore }

func (r memoryRecordRepo) Create(ctx context.Context, rec payroll.PayrollRecord) (payroll.PayrollRecord, error) {
	for _, existing := range r.records {
		if existing.EmployeeID == rec.EmployeeID && existing.ISOYear == rec.ISOYear && existing.ISOWeek == rec.ISOWeek {
			return payroll.PayrollRecord{}, payroll.ErrDuplicatePeriod
		}
	}
	rec.ID = newID()
	rec.CreatedAt = time.Now()
	rec.UpdatedAt = rec.CreatedAt
	r.records = append(r.records, rec)
	return rec, nil
}

func (r memoryRecordRepo) GetByID(ctx context.Context, id string) (payroll.PayrollRecord, error) {
	for _, rec := range r.records {
		if rec.ID == id {
			return rec, nil
		}
	}
	return payroll.PayrollRecord{}, payroll.ErrPayrollRecordNotFound
}

func (r memoryRecordRepo) GetByEmployeeWeek(ctx context.Context, employeeID string, isoYear, isoWeek int) (payroll.PayrollRecord, error) {
	for _, rec := range r.records {
		if rec.EmployeeID == employeeID && rec.ISOYear == isoYear && rec.ISOWeek == isoWeek {
			return rec, nil
		}
	}
	return payroll.PayrollRecord{}, payroll.ErrPayrollRecordNotFound
}

func (r memoryRecordRepo) List(ctx context.Context, filter payroll.PayrollFilter) ([]payroll.PayrollRecord, int64, error) {
	var out []payroll.PayrollRecord
	for _, rec := range r.records {
		if filter.EmployeeID != nil && rec.EmployeeID != *filter.EmployeeID {
			continue
		}
		if filter.Status != nil && string(rec.Status) != *filter.Status {
			continue
		}
		out = append(out, rec)
	}
	return out, int64(len(out)), nil
}

func (r memoryRecordRepo) ListByWeek(ctx context.Context, isoYear, isoWeek int) ([]payroll.PayrollRecord, error) {
	var out []payroll.PayrollRecord
	for _, rec := range r.records {
		if rec.ISOYear == isoYear && rec.ISOWeek == isoWeek {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (r memoryRecordRepo) UpdateStatus(ctx context.Context, rec payroll.PayrollRecord) error {
	for i, existing := range r.records {
		if existing.ID == rec.ID {
			r.records[i].Status = rec.Status
			r.records[i].PaidAt = rec.PaidAt
			r.records[i].UpdatedAt = time.Now()
			return nil
		}
	}
	return payroll.ErrPayrollRecordNotFound
}

// ===== weeks =====

type memoryWeekRepo struct{ *memoryStore }

func (r memoryWeekRepo) Create(ctx context.Context, w payroll.PayrollWeek) (payroll.PayrollWeek, error) {
	for _, existing := range r.weeks {
		if existing.ISOYear == w.ISOYear && existing.ISOWeek == w.ISOWeek {
			return payroll.PayrollWeek{}, payroll.ErrPayrollWeekExists
		}
	}
	w.ID = newID()
	if w.Status == "" {
		w.Status = payroll.WeekStatusDraft
	}
	r.weeks = append(r.weeks, w)
	return w, nil
}

func (r memoryWeekRepo) GetByID(ctx context.Context, id string) (payroll.PayrollWeek, error) {
	for _, w := range r.weeks {
		if w.ID == id {
			return w, nil
		}
	}
	return payroll.PayrollWeek{}, payroll.ErrPayrollWeekNotFound
}

func (r memoryWeekRepo) GetByISOWeek(ctx context.Context, isoYear, isoWeek int) (payroll.PayrollWeek, error) {
	for _, w := range r.weeks {
		if w.ISOYear == isoYear && w.ISOWeek == isoWeek {
			return w, nil
		}
	}
	return payroll.PayrollWeek{}, payroll.ErrPayrollWeekNotFound
}

func (r memoryWeekRepo) UpdateStatus(ctx context.Context, id string, status payroll.WeekStatus) error {
	for i, w := range r.weeks {
		if w.ID == id {
			r.weeks[i].Status = status
			return nil
		}
	}
	return payroll.ErrPayrollWeekNotFound
}

func (r memoryWeekRepo) ListUnclosedEndingBefore(ctx context.Context, cutoff time.Time) ([]payroll.PayrollWeek, error) {
	var out []payroll.PayrollWeek
	for _, w := range r.weeks {
		if w.Status != payroll.WeekStatusClosed && w.EndDate.Before(cutoff) {
			out = append(out, w)
		}
	}
	return out, nil
}

// ===== payments and history =====

type memoryPaymentRepo struct{ *memoryStore }

func (r memoryPaymentRepo) Append(ctx context.Context, p payroll.Payment) (payroll.Payment, error) {
	p.ID = newID()
	r.payments = append(r.payments, p)
	return p, nil
}

func (r memoryPaymentRepo) ListByRecord(ctx context.Context, recordID string) ([]payroll.Payment, error) {
	var out []payroll.Payment
	for _, p := range r.payments {
		if p.PayrollRecordID == recordID {
			out = append(out, p)
		}
	}
	return out, nil
}

type memoryHistoryRepo struct{ *memoryStore }

func (r memoryHistoryRepo) Append(ctx context.Context, e payroll.HistoryEntry) (payroll.HistoryEntry, error) {
	if r.failHistory != nil {
		return payroll.HistoryEntry{}, r.failHistory
	}
	e.ID = newID()
	e.CreatedAt = time.Now()
	r.history = append(r.history, e)
	return e, nil
}

func (r memoryHistoryRepo) ListByRecord(ctx context.Context, recordID string) ([]payroll.HistoryEntry, error) {
	var out []payroll.HistoryEntry
	for _, e := range r.history {
		if e.PayrollRecordID == recordID {
			out = append(out, e)
		}
	}
	return out, nil
}

// ===== debts =====

type memoryDebtRepo struct{ *memoryStore }

func (r memoryDebtRepo) Create(ctx context.Context, d debt.Debt) (debt.Debt, error) {
	if r.failDebtOpen != nil {
		return debt.Debt{}, r.failDebtOpen
	}
	d.ID = newID()
	d.CreatedAt = time.Now()
	r.debts = append(r.debts, d)
	return d, nil
}

func (r memoryDebtRepo) GetByID(ctx context.Context, id string) (debt.Debt, error) {
	for _, d := range r.debts {
		if d.ID == id {
			return d, nil
		}
	}
	return debt.Debt{}, debt.ErrDebtNotFound
}

func (r memoryDebtRepo) Update(ctx context.Context, d debt.Debt) error {
	for i, existing := range r.debts {
		if existing.ID == d.ID {
			r.debts[i] = d
			return nil
		}
	}
	return debt.ErrDebtNotFound
}

func (r memoryDebtRepo) ListByEmployeeAndStatus(ctx context.Context, employeeID string, statuses ...debt.DebtStatus) ([]debt.Debt, error) {
	var out []debt.Debt
	for _, d := range r.debts {
		if d.EmployeeID != employeeID {
			continue
		}
		if len(statuses) > 0 && !slices.Contains(statuses, d.Status) {
			continue
		}
		out = append(out, d)
	}
	return out, nil
}

// memoryTxManager restores the whole store when fn fails.
type memoryTxManager struct {
	store *memoryStore
	calls int
}

func (m *memoryTxManager) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	m.calls++
	snapshot := m.store.clone()
	if err := fn(ctx); err != nil {
		*m.store = snapshot
		return err
	}
	return nil
}

// ===== fixture =====

type fixture struct {
	store    *memoryStore
	tx       *memoryTxManager
	service  payroll.PayrollService
	weeks    payroll.WeekService
	resolver *period.Resolver
}

// newFixture wires the real calculator, resolver and ledger over the memory store.
// Pass transactional=false to run without a transaction manager.
func newFixture(t *testing.T, transactional bool) *fixture {
	t.Helper()

	store := newMemoryStore()
	tables, err := taxService.NewStaticProvider(taxService.DefaultTable())
	require.NoError(t, err)

	records := memoryRecordRepo{store}
	weekRepo := memoryWeekRepo{store}
	resolver := period.NewResolver(period.CalendarGridPolicy{}, records)
	ledger := debtService.NewLedger(memoryDebtRepo{store})

	f := &fixture{store: store, resolver: resolver}
	var txManager payroll.TxManager
	if transactional {
		f.tx = &memoryTxManager{store: store}
		txManager = f.tx
	}

	f.service = NewPayrollService(
		txManager,
		NewCalculator(tables),
		resolver,
		ledger,
		memoryEmployeeRepo{store},
		records,
		weekRepo,
		memoryPaymentRepo{store},
		memoryHistoryRepo{store},
	)
	f.weeks = NewWeekService(resolver, weekRepo, 48*time.Hour)
	return f
}

func (f *fixture) addEmployee(rate employee.PayRate) employee.Employee {
	e, _ := memoryEmployeeRepo{f.store}.Create(context.Background(), employee.Employee{
		FullName: "Rosa Martinez",
		Trade:    "mason",
		PayRate:  rate,
		Active:   true,
	})
	return e
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func ptr[T any](v T) *T {
	return &v
}

func assertMoney(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.Truef(t, dec(want).Equal(got), "want %s, got %s", want, got.String())
}
