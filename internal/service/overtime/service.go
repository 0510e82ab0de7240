package overtime

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/approval"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/notification"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/overtime"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/tenant"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/pkg/jobs"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/pkg/validator"
	"github.com/google/uuid"
)

type OvertimeServiceImpl struct {
	tx        database.Transactor
	requests  overtime.Repository
	approvals approval.Repository
	jobs      jobs.Dispatcher
	now       func() time.Time
}

func NewOvertimeService(tx database.Transactor, requests overtime.Repository, approvals approval.Repository, dispatcher jobs.Dispatcher) overtime.Service {
	return &OvertimeServiceImpl{tx: tx, requests: requests, approvals: approvals, jobs: dispatcher, now: time.Now}
}

// Create implements overtime.Service.
func (s *OvertimeServiceImpl) Create(ctx context.Context, tc tenant.Context, req overtime.CreateRequest) (overtime.Response, error) {
	if err := req.Validate(); err != nil {
		return overtime.Response{}, err
	}
	employeeID, err := tc.SelfOr(req.EmployeeID)
	if err != nil {
		return overtime.Response{}, err
	}
	if err := tc.RequireEmployee(employeeID); err != nil {
		return overtime.Response{}, err
	}

	rng := req.Range()
	now := s.now()
	r := overtime.OvertimeRequest{
		ID:         uuid.Must(uuid.NewV7()).String(),
		CompanyID:  tc.CompanyID,
		EmployeeID: employeeID,
		StartsAt:   rng.Start,
		EndsAt:     rng.End,
		Reason:     req.Reason,
		Status:     overtime.StatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.requests.LockEmployee(ctx, tc.CompanyID, employeeID); err != nil {
			return err
		}
		err := validator.Collect(validator.Overlap(ctx, "starts_at",
			validator.RangeListerFunc(func(ctx context.Context, ownerID string) ([]validator.Ranged, error) {
				return s.requests.ListActiveRanges(ctx, tc.CompanyID, ownerID)
			}),
			employeeID, rng, "",
		))
		if err != nil {
			return err
		}

		approvers, err := s.approvals.ListApprovers(ctx, tc.CompanyID, employeeID)
		if err != nil {
			return fmt.Errorf("list approvers: %w", err)
		}
		r.Chain = approval.NewChain(approvers)
		if err := s.requests.Create(ctx, r); err != nil {
			return err
		}
		return s.approvals.CreateChain(ctx, tc.CompanyID, approval.SubjectOvertime, r.ID, r.Chain)
	})
	if err != nil {
		return overtime.Response{}, err
	}

	slog.Info("Overtime request created", "request_id", r.ID, "employee_id", r.EmployeeID, "hours", r.Hours().String(), "actor_id", tc.UserID)
	s.emit(ctx, tc, r, "")
	return overtime.NewResponse(r), nil
}

// Approve implements overtime.Service.
func (s *OvertimeServiceImpl) Approve(ctx context.Context, tc tenant.Context, id string, req overtime.DecisionRequest) (overtime.Response, error) {
	return s.decide(ctx, tc, id, approval.DecisionApproved, req)
}

// Reject implements overtime.Service.
func (s *OvertimeServiceImpl) Reject(ctx context.Context, tc tenant.Context, id string, req overtime.DecisionRequest) (overtime.Response, error) {
	return s.decide(ctx, tc, id, approval.DecisionRejected, req)
}

func (s *OvertimeServiceImpl) decide(ctx context.Context, tc tenant.Context, id string, d approval.Decision, req overtime.DecisionRequest) (overtime.Response, error) {
	if err := tc.Validate(); err != nil {
		return overtime.Response{}, err
	}
	if err := req.Validate(); err != nil {
		return overtime.Response{}, err
	}
	target := overtime.StatusApproved
	if d == approval.DecisionRejected {
		target = overtime.StatusRejected
	}

	var r overtime.OvertimeRequest
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		r, err = s.requests.GetByIDForUpdate(ctx, tc.CompanyID, id)
		if err != nil {
			return err
		}
		if _, err := overtime.RequestMachine.Transition(r.Status, target); err != nil {
			return err
		}
		if tc.EmployeeID != "" && r.EmployeeID == tc.EmployeeID {
			return approval.ErrSelfApproval
		}

		chain, err := s.approvals.GetChain(ctx, tc.CompanyID, approval.SubjectOvertime, r.ID)
		if err != nil {
			return err
		}
		now := s.now()
		level, err := chain.Decide(tc.UserID, tc.Can(user.PermissionOvertimeApprove), d, req.Note, now)
		if err != nil {
			return err
		}
		if err := s.approvals.SaveLevel(ctx, tc.CompanyID, approval.SubjectOvertime, r.ID, level); err != nil {
			return err
		}
		r.Chain = chain

		switch chain.Outcome() {
		case approval.DecisionApproved:
			r.Status = overtime.StatusApproved
			r.DecidedAt = &now
		case approval.DecisionRejected:
			r.Status = overtime.StatusRejected
			r.DecidedAt = &now
		}
		r.UpdatedAt = now
		return s.requests.Update(ctx, r)
	})
	if err != nil {
		return overtime.Response{}, err
	}

	slog.Info("Overtime request decided", "request_id", r.ID, "decision", d, "status", r.Status, "actor_id", tc.UserID)
	if r.Status != overtime.StatusPending {
		s.emit(ctx, tc, r, overtime.StatusPending)
	}
	return overtime.NewResponse(r), nil
}

// Cancel implements overtime.Service. Only the requester may cancel.
func (s *OvertimeServiceImpl) Cancel(ctx context.Context, tc tenant.Context, id string) (overtime.Response, error) {
	if err := tc.Validate(); err != nil {
		return overtime.Response{}, err
	}

	var r overtime.OvertimeRequest
	var changed bool
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		r, err = s.requests.GetByIDForUpdate(ctx, tc.CompanyID, id)
		if err != nil {
			return err
		}
		if r.EmployeeID != tc.EmployeeID {
			return overtime.ErrNotRequestOwner
		}
		changed, err = overtime.RequestMachine.Transition(r.Status, overtime.StatusCancelled)
		if err != nil || !changed {
			return err
		}
		now := s.now()
		r.Status = overtime.StatusCancelled
		r.CancelledAt = &now
		r.UpdatedAt = now
		if err := s.requests.Update(ctx, r); err != nil {
			return err
		}
		r.Chain, err = s.approvals.GetChain(ctx, tc.CompanyID, approval.SubjectOvertime, r.ID)
		return err
	})
	if err != nil {
		return overtime.Response{}, err
	}

	if changed {
		slog.Info("Overtime request cancelled", "request_id", r.ID, "actor_id", tc.UserID)
	}
	return overtime.NewResponse(r), nil
}

// Get implements overtime.Service.
func (s *OvertimeServiceImpl) Get(ctx context.Context, tc tenant.Context, id string) (overtime.Response, error) {
	if err := tc.Validate(); err != nil {
		return overtime.Response{}, err
	}
	r, err := s.requests.GetByID(ctx, tc.CompanyID, id)
	if err != nil {
		return overtime.Response{}, err
	}
	if err := tc.RequireEmployee(r.EmployeeID); err != nil {
		return overtime.Response{}, err
	}
	r.Chain, err = s.approvals.GetChain(ctx, tc.CompanyID, approval.SubjectOvertime, r.ID)
	if err != nil {
		return overtime.Response{}, err
	}
	return overtime.NewResponse(r), nil
}

// List implements overtime.Service.
func (s *OvertimeServiceImpl) List(ctx context.Context, tc tenant.Context, filter overtime.ListFilter) (overtime.ListResponse, error) {
	if err := tc.Validate(); err != nil {
		return overtime.ListResponse{}, err
	}
	if !tc.IsManager() {
		if tc.EmployeeID == "" {
			return overtime.ListResponse{}, tenant.ErrMissingEmployee
		}
		filter.EmployeeID = tc.EmployeeID
	}
	filter.Normalize()

	requests, total, err := s.requests.List(ctx, tc.CompanyID, filter)
	if err != nil {
		return overtime.ListResponse{}, err
	}
	out := make([]overtime.Response, 0, len(requests))
	for _, r := range requests {
		out = append(out, overtime.NewResponse(r))
	}
	return overtime.ListResponse{Requests: out, TotalCount: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func (s *OvertimeServiceImpl) emit(ctx context.Context, tc tenant.Context, r overtime.OvertimeRequest, from overtime.RequestStatus) {
	jobs.Emit(ctx, s.jobs, notification.JobStatusChanged, tc.CompanyID, notification.StatusChangedPayload{
		RecipientEmployeeID: r.EmployeeID,
		ActorUserID:         tc.UserID,
		Subject:             overtime.RequestMachine.Entity(),
		SubjectID:           r.ID,
		From:                string(from),
		To:                  string(r.Status),
		ToLabel:             overtime.RequestMachine.Label(r.Status),
	})
}
