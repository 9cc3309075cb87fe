package payroll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/apperror"
)

type WeekServiceImpl struct {
	resolver       payroll.PeriodResolver
	weekRepo       payroll.PayrollWeekRepository
	autoCloseAfter time.Duration
}

// NewWeekService builds the week service. Weeks whose Sunday is older than
// autoCloseAfter are closed by CloseStaleWeeks.
func NewWeekService(resolver payroll.PeriodResolver, weekRepo payroll.PayrollWeekRepository, autoCloseAfter time.Duration) payroll.WeekService {
	return &WeekServiceImpl{
		resolver:       resolver,
		weekRepo:       weekRepo,
		autoCloseAfter: autoCloseAfter,
	}
}

func (s *WeekServiceImpl) CreateWeek(ctx context.Context, req payroll.CreateWeekRequest) (payroll.PayrollWeekResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.PayrollWeekResponse{}, err
	}

	var week payroll.PayrollWeek
	if req.Date != nil {
		date, err := payroll.ParseDate(*req.Date)
		if err != nil {
			return payroll.PayrollWeekResponse{}, apperror.Detail(payroll.ErrInvalidInput, "date: %v", err)
		}
		week = s.resolver.Describe(date)
	} else {
		week = s.resolver.DescribeISOWeek(req.ISOYear, req.ISOWeek)
		// Week 53 only exists in long ISO years.
		if y, w := s.resolver.ISOWeekOf(week.StartDate); y != req.ISOYear || w != req.ISOWeek {
			return payroll.PayrollWeekResponse{}, apperror.Detail(payroll.ErrInvalidInput,
				"iso year %d has no week %d", req.ISOYear, req.ISOWeek)
		}
	}
	if req.Label != nil && *req.Label != "" {
		week.Label = *req.Label
	}

	created, err := s.weekRepo.Create(ctx, week)
	if err != nil {
		if errors.Is(err, payroll.ErrPayrollWeekExists) {
			return payroll.PayrollWeekResponse{}, apperror.Detail(payroll.ErrPayrollWeekExists,
				"payroll week %04d-W%02d already exists", week.ISOYear, week.ISOWeek)
		}
		return payroll.PayrollWeekResponse{}, err
	}
	return mapToWeekResponse(created), nil
}

func (s *WeekServiceImpl) GetWeek(ctx context.Context, id string) (payroll.PayrollWeekResponse, error) {
	week, err := s.weekRepo.GetByID(ctx, id)
	if err != nil {
		return payroll.PayrollWeekResponse{}, err
	}
	return mapToWeekResponse(week), nil
}

func (s *WeekServiceImpl) ChangeWeekStatus(ctx context.Context, req payroll.ChangeWeekStatusRequest) (payroll.PayrollWeekResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.PayrollWeekResponse{}, err
	}

	week, err := s.weekRepo.GetByID(ctx, req.ID)
	if err != nil {
		return payroll.PayrollWeekResponse{}, err
	}

	next := payroll.WeekStatus(req.Status)
	if week.Status == next {
		return mapToWeekResponse(week), nil
	}
	if !week.Status.CanTransitionTo(next) {
		return payroll.PayrollWeekResponse{}, apperror.Detail(payroll.ErrIllegalTransition,
			"cannot change week status from %s to %s", week.Status, next)
	}

	if err := s.weekRepo.UpdateStatus(ctx, week.ID, next); err != nil {
		return payroll.PayrollWeekResponse{}, err
	}
	week.Status = next
	return mapToWeekResponse(week), nil
}

// ResolveWeek describes the week of date, with its stored id and status when it exists.
func (s *WeekServiceImpl) ResolveWeek(ctx context.Context, date time.Time) (payroll.PayrollWeekResponse, error) {
	described := s.resolver.Describe(date)

	stored, err := s.weekRepo.GetByISOWeek(ctx, described.ISOYear, described.ISOWeek)
	if err == nil {
		return mapToWeekResponse(stored), nil
	}
	if !errors.Is(err, payroll.ErrPayrollWeekNotFound) {
		return payroll.PayrollWeekResponse{}, err
	}

	resp := mapToWeekResponse(described)
	resp.Status = ""
	return resp, nil
}

func (s *WeekServiceImpl) CloseStaleWeeks(ctx context.Context, now time.Time) (int, error) {
	cutoff := now.Add(-s.autoCloseAfter)

	weeks, err := s.weekRepo.ListUnclosedEndingBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("list stale payroll weeks: %w", err)
	}

	closed := 0
	var errs []error
	for _, week := range weeks {
		if err := s.weekRepo.UpdateStatus(ctx, week.ID, payroll.WeekStatusClosed); err != nil {
			slog.Error("failed to close payroll week", "week_id", week.ID, "label", week.Label, "error", err)
			errs = append(errs, fmt.Errorf("close week %s: %w", week.ID, err))
			continue
		}
		closed++
	}

	if closed > 0 {
		slog.Info("closed stale payroll weeks", "count", closed, "cutoff", cutoff.Format(time.RFC3339))
	}
	return closed, errors.Join(errs...)
}

func mapToWeekResponse(w payroll.PayrollWeek) payroll.PayrollWeekResponse {
	return payroll.PayrollWeekResponse{
		ID:          w.ID,
		ISOYear:     w.ISOYear,
		ISOWeek:     w.ISOWeek,
		StartDate:   payroll.FormatDate(w.StartDate),
		EndDate:     payroll.FormatDate(w.EndDate),
		WeekOfMonth: w.WeekOfMonth,
		Label:       w.Label,
		Status:      string(w.Status),
	}
}
