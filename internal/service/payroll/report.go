package payroll

import (
	"context"
	"errors"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/apperror"
	"github.com/shopspring/decimal"
)

const unassignedProject = "unassigned"

// GetWeeklySummary aggregates every record of an ISO week. Cancelled records are
// counted by status but left out of the money totals.
func (s *PayrollServiceImpl) GetWeeklySummary(ctx context.Context, isoYear, isoWeek int) (payroll.WeeklySummaryResponse, error) {
	if isoWeek < 1 || isoWeek > 53 {
		return payroll.WeeklySummaryResponse{}, apperror.Detail(payroll.ErrInvalidInput, "iso_week must be between 1 and 53")
	}

	week := s.resolver.DescribeISOWeek(isoYear, isoWeek)
	stored, err := s.weekRepo.GetByISOWeek(ctx, isoYear, isoWeek)
	switch {
	case err == nil:
		week = stored
	case errors.Is(err, payroll.ErrPayrollWeekNotFound):
		week.Status = ""
	default:
		return payroll.WeeklySummaryResponse{}, err
	}

	records, err := s.recordRepo.ListByWeek(ctx, isoYear, isoWeek)
	if err != nil {
		return payroll.WeeklySummaryResponse{}, err
	}

	summary := payroll.WeeklySummaryResponse{
		Week:      mapToWeekResponse(week),
		ByStatus:  make(map[string]payroll.Totals),
		ByProject: make(map[string]payroll.Totals),
	}
	for _, r := range records {
		summary.TotalRecords++
		summary.ByStatus[string(r.Status)] = addTotals(summary.ByStatus[string(r.Status)], r)

		if r.Status == payroll.PayrollStatusCancelled {
			continue
		}

		project := unassignedProject
		if r.ProjectID != nil {
			project = *r.ProjectID
		}
		summary.ByProject[project] = addTotals(summary.ByProject[project], r)

		summary.TotalBasePay = summary.TotalBasePay.Add(r.BasePay)
		summary.TotalOvertime = summary.TotalOvertime.Add(r.OvertimePay)
		summary.TotalBonuses = summary.TotalBonuses.Add(r.Bonuses)
		summary.TotalDeductions = summary.TotalDeductions.Add(r.TotalDeductions)
		summary.TotalGross = summary.TotalGross.Add(r.GrossTotal)
		summary.TotalNet = summary.TotalNet.Add(r.NetTotal)
		summary.TotalPaid = summary.TotalPaid.Add(r.AmountPaid)
	}
	summary.TotalPending = decimal.Max(summary.TotalNet.Sub(summary.TotalPaid), decimal.Zero)

	return summary, nil
}

func addTotals(t payroll.Totals, r payroll.PayrollRecord) payroll.Totals {
	t.Count++
	t.NetTotal = t.NetTotal.Add(r.NetTotal)
	t.AmountPaid = t.AmountPaid.Add(r.AmountPaid)
	return t
}
