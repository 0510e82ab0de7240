package payroll

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/notification"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/tenant"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/pkg/jobs"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/pkg/validator"
	"github.com/google/uuid"
)

type PayrollServiceImpl struct {
	tx      database.Transactor
	periods payroll.PeriodRepository
	entries payroll.EntryRepository
	jobs    jobs.Dispatcher
	now     func() time.Time
}

func NewPayrollService(
	tx database.Transactor,
	periods payroll.PeriodRepository,
	entries payroll.EntryRepository,
	dispatcher jobs.Dispatcher,
) payroll.Service {
	return &PayrollServiceImpl{
		tx:      tx,
		periods: periods,
		entries: entries,
		jobs:    dispatcher,
		now:     time.Now,
	}
}

// ========== PERIODS ==========

func (s *PayrollServiceImpl) CreatePeriod(ctx context.Context, tc tenant.Context, req payroll.CreatePeriodRequest) (payroll.PeriodResponse, error) {
	if err := tc.Require(user.PermissionPayrollManage); err != nil {
		return payroll.PeriodResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return payroll.PeriodResponse{}, err
	}

	rng := req.Range()
	now := s.now()
	p := payroll.PayrollPeriod{
		ID:        uuid.Must(uuid.NewV7()).String(),
		CompanyID: tc.CompanyID,
		Name:      req.Name,
		StartDate: rng.Start,
		EndDate:   rng.End,
		PayDate:   req.PayDay(),
		Status:    payroll.PeriodDraft,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		// The tenant itself owns the ranges: periods of one company never overlap.
		err := validator.Collect(validator.Overlap(ctx, "start_date",
			validator.RangeListerFunc(func(ctx context.Context, companyID string) ([]validator.Ranged, error) {
				return s.periods.ListRanges(ctx, companyID)
			}),
			tc.CompanyID, rng, "",
		))
		if err != nil {
			return err
		}
		return s.periods.Create(ctx, p)
	})
	if err != nil {
		return payroll.PeriodResponse{}, err
	}

	slog.Info("Payroll period created", "period_id", p.ID, "company_id", tc.CompanyID, "actor_id", tc.UserID)
	return payroll.NewPeriodResponse(p), nil
}

func (s *PayrollServiceImpl) ChangePeriodStatus(ctx context.Context, tc tenant.Context, id string, req payroll.ChangeStatusRequest) (payroll.PeriodResponse, error) {
	if err := tc.Require(user.PermissionPayrollManage); err != nil {
		return payroll.PeriodResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return payroll.PeriodResponse{}, err
	}
	to, err := payroll.PeriodMachine.Parse(req.Status)
	if err != nil {
		return payroll.PeriodResponse{}, err
	}

	var p payroll.PayrollPeriod
	var from payroll.PeriodStatus
	var changed bool
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		p, err = s.periods.GetByIDForUpdate(ctx, tc.CompanyID, id)
		if err != nil {
			return err
		}
		from = p.Status
		changed, err = payroll.PeriodMachine.Transition(p.Status, to)
		if err != nil || !changed {
			return err
		}

		now := s.now()
		if to == payroll.PeriodClosed {
			entries, err := s.entries.ListByPeriod(ctx, tc.CompanyID, p.ID)
			if err != nil {
				return fmt.Errorf("list payroll entries: %w", err)
			}
			if totals := payroll.Summarize(entries); !totals.AllPaid() {
				return validator.Fail("entries", fmt.Sprintf("%d of %d entries are not paid yet",
					totals.EntryCount-totals.PaidCount, totals.EntryCount))
			}
			p.ClosedAt = &now
		}
		p.Status = to
		p.UpdatedAt = now
		return s.periods.Update(ctx, p)
	})
	if err != nil {
		return payroll.PeriodResponse{}, err
	}

	if changed {
		slog.Info("Payroll period status changed", "period_id", p.ID, "from", from, "to", p.Status, "actor_id", tc.UserID)
	}
	return payroll.NewPeriodResponse(p), nil
}

func (s *PayrollServiceImpl) GetPeriod(ctx context.Context, tc tenant.Context, id string) (payroll.PeriodResponse, error) {
	if err := tc.Require(user.PermissionPayrollManage); err != nil {
		return payroll.PeriodResponse{}, err
	}
	p, err := s.periods.GetByID(ctx, tc.CompanyID, id)
	if err != nil {
		return payroll.PeriodResponse{}, err
	}
	entries, err := s.entries.ListByPeriod(ctx, tc.CompanyID, p.ID)
	if err != nil {
		return payroll.PeriodResponse{}, fmt.Errorf("list payroll entries: %w", err)
	}
	p.Entries = entries
	if p.Entries == nil {
		p.Entries = []payroll.PayrollEntry{}
	}
	return payroll.NewPeriodResponse(p), nil
}

func (s *PayrollServiceImpl) ListPeriods(ctx context.Context, tc tenant.Context, filter payroll.PeriodFilter) (payroll.ListPeriodsResponse, error) {
	if err := tc.Require(user.PermissionPayrollManage); err != nil {
		return payroll.ListPeriodsResponse{}, err
	}
	filter.Normalize()

	periods, total, err := s.periods.List(ctx, tc.CompanyID, filter)
	if err != nil {
		return payroll.ListPeriodsResponse{}, err
	}
	out := make([]payroll.PeriodResponse, 0, len(periods))
	for _, p := range periods {
		out = append(out, payroll.NewPeriodResponse(p))
	}
	return payroll.ListPeriodsResponse{Periods: out, TotalCount: total, Page: filter.Page, Limit: filter.Limit}, nil
}

// ========== ENTRIES ==========

func (s *PayrollServiceImpl) CreateEntry(ctx context.Context, tc tenant.Context, periodID string, req payroll.EntryAmountsRequest) (payroll.EntryResponse, error) {
	if err := tc.Require(user.PermissionPayrollManage); err != nil {
		return payroll.EntryResponse{}, err
	}
	if err := req.Validate(true); err != nil {
		return payroll.EntryResponse{}, err
	}

	now := s.now()
	e := payroll.PayrollEntry{
		ID:         uuid.Must(uuid.NewV7()).String(),
		CompanyID:  tc.CompanyID,
		PeriodID:   periodID,
		EmployeeID: req.EmployeeID,
		Notes:      req.Notes,
		Status:     payroll.EntryDraft,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	e.SetAmounts(req.BaseSalary, req.TotalAllowances, req.TotalDeductions)

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		// Locking the period serialises entry creation against closing it.
		p, err := s.periods.GetByIDForUpdate(ctx, tc.CompanyID, periodID)
		if err != nil {
			return err
		}
		if !p.Status.AcceptsEntries() {
			return payroll.ErrPeriodNotAcceptingEntries
		}

		err = validator.Collect(validator.Duplicate(ctx, "employee_id",
			validator.DuplicateFinderFunc(func(ctx context.Context, key validator.Key) ([]string, error) {
				return s.entries.FindByEmployee(ctx, tc.CompanyID, key[0], key[1])
			}),
			validator.Key{periodID, req.EmployeeID}, "",
			"employee already has an entry in this payroll period",
		))
		if err != nil {
			return err
		}
		return s.entries.Create(ctx, e)
	})
	if err != nil {
		return payroll.EntryResponse{}, err
	}

	slog.Info("Payroll entry created", "entry_id", e.ID, "period_id", periodID, "employee_id", e.EmployeeID, "actor_id", tc.UserID)
	return payroll.NewEntryResponse(e), nil
}

func (s *PayrollServiceImpl) UpdateEntryAmounts(ctx context.Context, tc tenant.Context, id string, req payroll.EntryAmountsRequest) (payroll.EntryResponse, error) {
	if err := tc.Require(user.PermissionPayrollManage); err != nil {
		return payroll.EntryResponse{}, err
	}
	if err := req.Validate(false); err != nil {
		return payroll.EntryResponse{}, err
	}

	var e payroll.PayrollEntry
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		e, err = s.entries.GetByIDForUpdate(ctx, tc.CompanyID, id)
		if err != nil {
			return err
		}
		if err := payroll.EntryMachine.RequireEditable(e.Status); err != nil {
			return err
		}
		p, err := s.periods.GetByID(ctx, tc.CompanyID, e.PeriodID)
		if err != nil {
			return err
		}
		if err := payroll.PeriodMachine.RequireEditable(p.Status); err != nil {
			return err
		}

		e.SetAmounts(req.BaseSalary, req.TotalAllowances, req.TotalDeductions)
		if req.Notes != nil {
			e.Notes = req.Notes
		}
		e.UpdatedAt = s.now()
		return s.entries.Update(ctx, e)
	})
	if err != nil {
		return payroll.EntryResponse{}, err
	}
	return payroll.NewEntryResponse(e), nil
}

func (s *PayrollServiceImpl) ChangeEntryStatus(ctx context.Context, tc tenant.Context, id string, req payroll.ChangeStatusRequest) (payroll.EntryResponse, error) {
	if err := tc.Require(user.PermissionPayrollManage); err != nil {
		return payroll.EntryResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return payroll.EntryResponse{}, err
	}
	to, err := payroll.EntryMachine.Parse(req.Status)
	if err != nil {
		return payroll.EntryResponse{}, err
	}
	if to == payroll.EntryPaid && !tc.Can(user.PermissionPayrollPay) {
		return payroll.EntryResponse{}, tenant.ErrForbidden
	}

	var e payroll.PayrollEntry
	var from payroll.EntryStatus
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		e, err = s.entries.GetByIDForUpdate(ctx, tc.CompanyID, id)
		if err != nil {
			return err
		}
		from = e.Status
		if _, err := payroll.EntryMachine.Transition(e.Status, to); err != nil {
			return err
		}

		now := s.now()
		switch to {
		case payroll.EntryApproved:
			e.ApprovedBy = &tc.UserID
			e.ApprovedAt = &now
		case payroll.EntryPaid:
			p, err := s.periods.GetByID(ctx, tc.CompanyID, e.PeriodID)
			if err != nil {
				return err
			}
			if p.Status != payroll.PeriodProcessing {
				return payroll.ErrPeriodNotProcessing
			}
			e.PaidBy = &tc.UserID
			e.PaidAt = &now
		}
		e.Status = to
		e.UpdatedAt = now
		return s.entries.Update(ctx, e)
	})
	if err != nil {
		return payroll.EntryResponse{}, err
	}

	slog.Info("Payroll entry status changed", "entry_id", e.ID, "from", from, "to", e.Status, "actor_id", tc.UserID)
	jobs.Emit(ctx, s.jobs, notification.JobStatusChanged, tc.CompanyID, notification.StatusChangedPayload{
		RecipientEmployeeID: e.EmployeeID,
		ActorUserID:         tc.UserID,
		Subject:             payroll.EntryMachine.Entity(),
		SubjectID:           e.ID,
		From:                string(from),
		To:                  string(e.Status),
		ToLabel:             payroll.EntryMachine.Label(e.Status),
	})
	return payroll.NewEntryResponse(e), nil
}
