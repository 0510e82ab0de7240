package leave

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/approval"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/notification"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/tenant"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/pkg/jobs"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/pkg/validator"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type LeaveServiceImpl struct {
	tx           database.Transactor
	types        leave.LeaveTypeRepository
	balances     leave.BalanceRepository
	applications leave.ApplicationRepository
	approvals    approval.Repository
	jobs         jobs.Dispatcher
	now          func() time.Time
}

type Option func(*LeaveServiceImpl)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *LeaveServiceImpl) { s.now = now }
}

func NewLeaveService(
	tx database.Transactor,
	types leave.LeaveTypeRepository,
	balances leave.BalanceRepository,
	applications leave.ApplicationRepository,
	approvals approval.Repository,
	dispatcher jobs.Dispatcher,
	opts ...Option,
) leave.Service {
	s := &LeaveServiceImpl{
		tx:           tx,
		types:        types,
		balances:     balances,
		applications: applications,
		approvals:    approvals,
		jobs:         dispatcher,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateApplication implements leave.Service.
func (s *LeaveServiceImpl) CreateApplication(ctx context.Context, tc tenant.Context, req leave.CreateApplicationRequest) (leave.ApplicationResponse, error) {
	if err := tc.Require(user.PermissionLeaveCreate); err != nil {
		return leave.ApplicationResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return leave.ApplicationResponse{}, err
	}
	employeeID, err := tc.SelfOr(req.EmployeeID)
	if err != nil {
		return leave.ApplicationResponse{}, err
	}
	if err := tc.RequireEmployee(employeeID); err != nil {
		return leave.ApplicationResponse{}, err
	}

	rng := req.Range()
	now := s.now()
	app := leave.LeaveApplication{
		ID:          uuid.Must(uuid.NewV7()).String(),
		CompanyID:   tc.CompanyID,
		EmployeeID:  employeeID,
		LeaveTypeID: req.LeaveTypeID,
		StartDate:   rng.Start,
		EndDate:     rng.End,
		Days:        decimal.NewFromInt(int64(leave.WorkingDays(rng.Start, rng.End))),
		Reason:      req.Reason,
		Status:      leave.StatusDraft,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		lt, err := s.types.GetByID(ctx, tc.CompanyID, app.LeaveTypeID)
		if err != nil {
			return err
		}
		if req.Submit {
			return s.submit(ctx, tc, &app, lt, true)
		}
		if err := validator.Collect(s.checks(ctx, app, lt, nil)...); err != nil {
			return err
		}
		return s.applications.Create(ctx, app)
	})
	if err != nil {
		return leave.ApplicationResponse{}, err
	}

	slog.Info("Leave application created", "application_id", app.ID, "employee_id", app.EmployeeID, "status", app.Status, "actor_id", tc.UserID)
	if app.Status == leave.StatusPending {
		s.emit(ctx, tc, app, leave.StatusDraft)
	}
	return leave.NewApplicationResponse(app), nil
}

// UpdateDraft implements leave.Service.
func (s *LeaveServiceImpl) UpdateDraft(ctx context.Context, tc tenant.Context, id string, req leave.UpdateApplicationRequest) (leave.ApplicationResponse, error) {
	if err := tc.Validate(); err != nil {
		return leave.ApplicationResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return leave.ApplicationResponse{}, err
	}

	var app leave.LeaveApplication
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		app, err = s.applications.GetByIDForUpdate(ctx, tc.CompanyID, id)
		if err != nil {
			return err
		}
		if err := tc.RequireEmployee(app.EmployeeID); err != nil {
			return err
		}
		if err := leave.ApplicationMachine.RequireEditable(app.Status); err != nil {
			return err
		}

		lt, err := s.types.GetByID(ctx, tc.CompanyID, req.LeaveTypeID)
		if err != nil {
			return err
		}
		rng := req.Range()
		app.LeaveTypeID = req.LeaveTypeID
		app.StartDate = rng.Start
		app.EndDate = rng.End
		app.Days = decimal.NewFromInt(int64(leave.WorkingDays(rng.Start, rng.End)))
		app.Reason = req.Reason
		app.UpdatedAt = s.now()

		if err := validator.Collect(s.checks(ctx, app, lt, nil)...); err != nil {
			return err
		}
		return s.applications.Update(ctx, app)
	})
	if err != nil {
		return leave.ApplicationResponse{}, err
	}
	return leave.NewApplicationResponse(app), nil
}

// Submit implements leave.Service.
func (s *LeaveServiceImpl) Submit(ctx context.Context, tc tenant.Context, id string) (leave.ApplicationResponse, error) {
	if err := tc.Validate(); err != nil {
		return leave.ApplicationResponse{}, err
	}

	var app leave.LeaveApplication
	var from leave.ApplicationStatus
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		app, err = s.applications.GetByIDForUpdate(ctx, tc.CompanyID, id)
		if err != nil {
			return err
		}
		if err := tc.RequireEmployee(app.EmployeeID); err != nil {
			return err
		}
		from = app.Status
		if from == leave.StatusPending {
			// Already submitted.
			app.Chain, err = s.approvals.GetChain(ctx, tc.CompanyID, approval.SubjectLeave, app.ID)
			return err
		}
		lt, err := s.types.GetByID(ctx, tc.CompanyID, app.LeaveTypeID)
		if err != nil {
			return err
		}
		return s.submit(ctx, tc, &app, lt, false)
	})
	if err != nil {
		return leave.ApplicationResponse{}, err
	}

	if from != app.Status {
		slog.Info("Leave application submitted", "application_id", app.ID, "days", app.Days.String(), "actor_id", tc.UserID)
		s.emit(ctx, tc, app, from)
	}
	return leave.NewApplicationResponse(app), nil
}

// submit moves a draft to pending, reserving balance and opening the approval chain.
func (s *LeaveServiceImpl) submit(ctx context.Context, tc tenant.Context, app *leave.LeaveApplication, lt leave.LeaveType, isNew bool) error {
	if _, err := leave.ApplicationMachine.Transition(app.Status, leave.StatusPending); err != nil {
		return err
	}

	// Overlap is checked across leave types, so the balance row alone does not serialize it.
	if err := s.applications.LockEmployee(ctx, tc.CompanyID, app.EmployeeID); err != nil {
		return err
	}

	var balance *leave.LeaveBalance
	var missingBalance validator.Check
	if lt.RequiresBalance {
		b, err := s.balances.GetForUpdate(ctx, tc.CompanyID, app.EmployeeID, app.LeaveTypeID, app.Year())
		switch {
		case errors.Is(err, leave.ErrLeaveBalanceNotFound):
			missingBalance = func() (*validator.ValidationError, error) {
				return &validator.ValidationError{
					Field:   "leave_type_id",
					Message: fmt.Sprintf("no leave balance allocated for %d", app.Year()),
				}, nil
			}
		case err != nil:
			return err
		default:
			balance = &b
		}
	}

	checks := append(s.checks(ctx, *app, lt, balance), missingBalance)
	if err := validator.Collect(checks...); err != nil {
		return err
	}

	now := s.now()
	app.Status = leave.StatusPending
	app.SubmittedAt = &now
	app.UpdatedAt = now

	if balance != nil {
		if err := balance.Reserve(app.Days); err != nil {
			return err
		}
		balance.UpdatedAt = now
		if err := s.balances.Update(ctx, *balance); err != nil {
			return err
		}
		if err := s.appendEntry(ctx, tc, *balance, leave.EntryReserve, app.Days, "leave application submitted", app.ID); err != nil {
			return err
		}
		app.BalanceReserved = true
	}

	approvers, err := s.approvals.ListApprovers(ctx, tc.CompanyID, app.EmployeeID)
	if err != nil {
		return fmt.Errorf("list approvers: %w", err)
	}
	app.Chain = approval.NewChain(approvers)

	if isNew {
		err = s.applications.Create(ctx, *app)
	} else {
		err = s.applications.Update(ctx, *app)
	}
	if err != nil {
		return err
	}
	return s.approvals.CreateChain(ctx, tc.CompanyID, approval.SubjectLeave, app.ID, app.Chain)
}

// checks returns the stateful rules for an application. A nil balance skips the sufficiency rule.
func (s *LeaveServiceImpl) checks(ctx context.Context, app leave.LeaveApplication, lt leave.LeaveType, balance *leave.LeaveBalance) []validator.Check {
	checks := []validator.Check{
		func() (*validator.ValidationError, error) {
			if !lt.IsActive {
				return &validator.ValidationError{Field: "leave_type_id", Message: "leave type is not active"}, nil
			}
			return nil, nil
		},
		func() (*validator.ValidationError, error) {
			if !app.Days.IsPositive() {
				return &validator.ValidationError{Field: "end_date", Message: "the selected range has no working days"}, nil
			}
			if lt.MaxDaysPerRequest != nil && app.Days.GreaterThan(decimal.NewFromInt(int64(*lt.MaxDaysPerRequest))) {
				return &validator.ValidationError{
					Field:   "end_date",
					Message: fmt.Sprintf("at most %d working days per application", *lt.MaxDaysPerRequest),
				}, nil
			}
			return nil, nil
		},
		validator.Overlap(ctx, "start_date",
			validator.RangeListerFunc(func(ctx context.Context, employeeID string) ([]validator.Ranged, error) {
				return s.applications.ListActiveRanges(ctx, app.CompanyID, employeeID)
			}),
			app.EmployeeID,
			validator.DateRange{Start: app.StartDate, End: app.EndDate},
			app.ID,
		),
	}
	if !lt.AllowBackdate {
		checks = append(checks, validator.AdvanceNotice("start_date", s.now(), app.StartDate, lt.MinNoticeDays))
	}
	if balance != nil {
		checks = append(checks, validator.Balance("days", app.Days, balance.Granted(), balance.UsedQuota, balance.PendingQuota))
	}
	return checks
}

// Approve implements leave.Service.
func (s *LeaveServiceImpl) Approve(ctx context.Context, tc tenant.Context, id string, req leave.DecisionRequest) (leave.ApplicationResponse, error) {
	return s.decide(ctx, tc, id, approval.DecisionApproved, req)
}

// Reject implements leave.Service.
func (s *LeaveServiceImpl) Reject(ctx context.Context, tc tenant.Context, id string, req leave.DecisionRequest) (leave.ApplicationResponse, error) {
	return s.decide(ctx, tc, id, approval.DecisionRejected, req)
}

func (s *LeaveServiceImpl) decide(ctx context.Context, tc tenant.Context, id string, d approval.Decision, req leave.DecisionRequest) (leave.ApplicationResponse, error) {
	if err := tc.Validate(); err != nil {
		return leave.ApplicationResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return leave.ApplicationResponse{}, err
	}

	target := leave.StatusApproved
	if d == approval.DecisionRejected {
		target = leave.StatusRejected
	}

	var app leave.LeaveApplication
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		app, err = s.applications.GetByIDForUpdate(ctx, tc.CompanyID, id)
		if err != nil {
			return err
		}
		if _, err := leave.ApplicationMachine.Transition(app.Status, target); err != nil {
			return err
		}
		if tc.EmployeeID != "" && app.EmployeeID == tc.EmployeeID {
			return approval.ErrSelfApproval
		}

		chain, err := s.approvals.GetChain(ctx, tc.CompanyID, approval.SubjectLeave, app.ID)
		if err != nil {
			return err
		}
		now := s.now()
		level, err := chain.Decide(tc.UserID, tc.Can(user.PermissionLeaveApprove), d, req.Note, now)
		if err != nil {
			return err
		}
		if err := s.approvals.SaveLevel(ctx, tc.CompanyID, approval.SubjectLeave, app.ID, level); err != nil {
			return err
		}
		app.Chain = chain

		switch chain.Outcome() {
		case approval.DecisionApproved:
			if err := s.settleBalance(ctx, tc, app, leave.EntryCommit); err != nil {
				return err
			}
			app.Status = leave.StatusApproved
			app.DecidedAt = &now
		case approval.DecisionRejected:
			if err := s.settleBalance(ctx, tc, app, leave.EntryRelease); err != nil {
				return err
			}
			app.Status = leave.StatusRejected
			app.DecidedAt = &now
		}
		app.UpdatedAt = now
		return s.applications.Update(ctx, app)
	})
	if err != nil {
		return leave.ApplicationResponse{}, err
	}

	slog.Info("Leave application decided", "application_id", app.ID, "decision", d, "status", app.Status, "actor_id", tc.UserID)
	if app.Status != leave.StatusPending {
		s.emit(ctx, tc, app, leave.StatusPending)
	}
	return leave.NewApplicationResponse(app), nil
}

// Cancel implements leave.Service.
func (s *LeaveServiceImpl) Cancel(ctx context.Context, tc tenant.Context, id string, req leave.CancelRequest) (leave.ApplicationResponse, error) {
	if err := tc.Validate(); err != nil {
		return leave.ApplicationResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return leave.ApplicationResponse{}, err
	}

	var app leave.LeaveApplication
	var from leave.ApplicationStatus
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		app, err = s.applications.GetByIDForUpdate(ctx, tc.CompanyID, id)
		if err != nil {
			return err
		}
		if err := tc.RequireEmployee(app.EmployeeID); err != nil {
			return err
		}
		from = app.Status
		changed, err := leave.ApplicationMachine.Transition(app.Status, leave.StatusCancelled)
		if err != nil || !changed {
			return err
		}

		if from == leave.StatusPending {
			if err := s.settleBalance(ctx, tc, app, leave.EntryRelease); err != nil {
				return err
			}
		}

		now := s.now()
		actor := tc.UserID
		reason := req.Reason
		app.Status = leave.StatusCancelled
		app.CancelledBy = &actor
		app.CancelledAt = &now
		app.CancellationReason = &reason
		app.UpdatedAt = now
		if err := s.applications.Update(ctx, app); err != nil {
			return err
		}
		app.Chain, err = s.approvals.GetChain(ctx, tc.CompanyID, approval.SubjectLeave, app.ID)
		return err
	})
	if err != nil {
		return leave.ApplicationResponse{}, err
	}

	slog.Info("Leave application cancelled", "application_id", app.ID, "from", from, "actor_id", tc.UserID)
	s.emit(ctx, tc, app, from)
	return leave.NewApplicationResponse(app), nil
}

// settleBalance commits or releases the days reserved on submit.
func (s *LeaveServiceImpl) settleBalance(ctx context.Context, tc tenant.Context, app leave.LeaveApplication, kind leave.EntryKind) error {
	if !app.BalanceReserved {
		return nil
	}
	b, err := s.balances.GetForUpdate(ctx, tc.CompanyID, app.EmployeeID, app.LeaveTypeID, app.Year())
	if err != nil {
		return fmt.Errorf("lock leave balance: %w", err)
	}

	reason := "leave application approved"
	switch kind {
	case leave.EntryCommit:
		err = b.Commit(app.Days)
	case leave.EntryRelease:
		reason = "leave application closed without approval"
		err = b.Release(app.Days)
	default:
		return fmt.Errorf("unsupported settlement %q", kind)
	}
	if err != nil {
		return err
	}

	b.UpdatedAt = s.now()
	if err := s.balances.Update(ctx, b); err != nil {
		return err
	}
	return s.appendEntry(ctx, tc, b, kind, app.Days, reason, app.ID)
}

func (s *LeaveServiceImpl) appendEntry(ctx context.Context, tc tenant.Context, b leave.LeaveBalance, kind leave.EntryKind, days decimal.Decimal, reason, referenceID string) error {
	entry := leave.BalanceEntry{
		ID:        uuid.Must(uuid.NewV7()).String(),
		CompanyID: tc.CompanyID,
		BalanceID: b.ID,
		Kind:      kind,
		Days:      days,
		Reason:    reason,
		ActorID:   tc.UserID,
		CreatedAt: s.now(),
	}
	if referenceID != "" {
		entry.ReferenceID = &referenceID
	}
	return s.balances.AppendEntry(ctx, entry)
}

// GetApplication implements leave.Service.
func (s *LeaveServiceImpl) GetApplication(ctx context.Context, tc tenant.Context, id string) (leave.ApplicationResponse, error) {
	if err := tc.Validate(); err != nil {
		return leave.ApplicationResponse{}, err
	}
	app, err := s.applications.GetByID(ctx, tc.CompanyID, id)
	if err != nil {
		return leave.ApplicationResponse{}, err
	}
	if err := tc.RequireEmployee(app.EmployeeID); err != nil {
		return leave.ApplicationResponse{}, err
	}
	app.Chain, err = s.approvals.GetChain(ctx, tc.CompanyID, approval.SubjectLeave, app.ID)
	if err != nil {
		return leave.ApplicationResponse{}, err
	}
	return leave.NewApplicationResponse(app), nil
}

// ListApplications implements leave.Service.
func (s *LeaveServiceImpl) ListApplications(ctx context.Context, tc tenant.Context, filter leave.ListApplicationsFilter) (leave.ListApplicationsResponse, error) {
	if err := tc.Validate(); err != nil {
		return leave.ListApplicationsResponse{}, err
	}
	if !tc.Can(user.PermissionLeaveViewAll) {
		if tc.EmployeeID == "" {
			return leave.ListApplicationsResponse{}, tenant.ErrMissingEmployee
		}
		filter.EmployeeID = tc.EmployeeID
	}
	filter.Normalize()

	apps, total, err := s.applications.List(ctx, tc.CompanyID, filter)
	if err != nil {
		return leave.ListApplicationsResponse{}, err
	}
	out := make([]leave.ApplicationResponse, 0, len(apps))
	for _, a := range apps {
		out = append(out, leave.NewApplicationResponse(a))
	}
	return leave.ListApplicationsResponse{Applications: out, TotalCount: total, Page: filter.Page, Limit: filter.Limit}, nil
}

// AdjustBalance implements leave.Service.
func (s *LeaveServiceImpl) AdjustBalance(ctx context.Context, tc tenant.Context, req leave.AdjustBalanceRequest) (leave.BalanceResponse, error) {
	if err := tc.Require(user.PermissionLeaveAdjust); err != nil {
		return leave.BalanceResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return leave.BalanceResponse{}, err
	}

	var b leave.LeaveBalance
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		b, err = s.balances.GetForUpdate(ctx, tc.CompanyID, req.EmployeeID, req.LeaveTypeID, req.Year)
		if err != nil {
			return err
		}
		if err := b.Adjust(req.Days); err != nil {
			if errors.Is(err, leave.ErrAdjustmentBelowUsage) {
				return validator.Fail("days", err.Error())
			}
			return err
		}
		b.UpdatedAt = s.now()
		if err := s.balances.Update(ctx, b); err != nil {
			return err
		}
		return s.appendEntry(ctx, tc, b, leave.EntryAdjust, req.Days, req.Reason, "")
	})
	if err != nil {
		return leave.BalanceResponse{}, err
	}

	slog.Info("Leave balance adjusted", "balance_id", b.ID, "days", req.Days.String(), "reason", req.Reason, "actor_id", tc.UserID)
	return leave.NewBalanceResponse(b), nil
}

// GetBalances implements leave.Service.
func (s *LeaveServiceImpl) GetBalances(ctx context.Context, tc tenant.Context, employeeID string, year int) ([]leave.BalanceResponse, error) {
	employeeID, err := tc.SelfOr(employeeID)
	if err != nil {
		return nil, err
	}
	if err := tc.RequireEmployee(employeeID); err != nil {
		return nil, err
	}
	if year == 0 {
		year = s.now().Year()
	}
	balances, err := s.balances.ListByEmployee(ctx, tc.CompanyID, employeeID, year)
	if err != nil {
		return nil, err
	}
	out := make([]leave.BalanceResponse, 0, len(balances))
	for _, b := range balances {
		out = append(out, leave.NewBalanceResponse(b))
	}
	return out, nil
}

func (s *LeaveServiceImpl) emit(ctx context.Context, tc tenant.Context, app leave.LeaveApplication, from leave.ApplicationStatus) {
	jobs.Emit(ctx, s.jobs, notification.JobStatusChanged, tc.CompanyID, notification.StatusChangedPayload{
		RecipientEmployeeID: app.EmployeeID,
		ActorUserID:         tc.UserID,
		Subject:             leave.ApplicationMachine.Entity(),
		SubjectID:           app.ID,
		From:                string(from),
		To:                  string(app.Status),
		ToLabel:             leave.ApplicationMachine.Label(app.Status),
	})
}
