package visitor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/notification"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/tenant"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/visitor"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/pkg/jobs"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/pkg/validator"
	"github.com/google/uuid"
)

const sweepBatchSize = 100

type VisitorServiceImpl struct {
	tx     database.Transactor
	visits visitor.Repository
	jobs   jobs.Dispatcher
	now    func() time.Time
}

func NewVisitorService(tx database.Transactor, visits visitor.Repository, dispatcher jobs.Dispatcher) visitor.Service {
	return &VisitorServiceImpl{tx: tx, visits: visits, jobs: dispatcher, now: time.Now}
}

// Create implements visitor.Service. Employees register their own guests;
// visitor managers may register a visit for any host.
func (s *VisitorServiceImpl) Create(ctx context.Context, tc tenant.Context, req visitor.CreateRequest) (visitor.Response, error) {
	if err := tc.Validate(); err != nil {
		return visitor.Response{}, err
	}
	if err := req.Validate(); err != nil {
		return visitor.Response{}, err
	}
	hostID, err := tc.SelfOr(req.HostEmployeeID)
	if err != nil {
		return visitor.Response{}, err
	}
	if hostID != tc.EmployeeID {
		if err := tc.Require(user.PermissionVisitorManage); err != nil {
			return visitor.Response{}, err
		}
	}

	now := s.now()
	rng := req.Range()
	if err := validator.Collect(validator.AdvanceNotice("scheduled_start", now, rng.Start, 0)); err != nil {
		return visitor.Response{}, err
	}

	v := visitor.Visit{
		ID:             uuid.Must(uuid.NewV7()).String(),
		CompanyID:      tc.CompanyID,
		HostEmployeeID: hostID,
		VisitorName:    req.VisitorName,
		VisitorCompany: req.VisitorCompany,
		Purpose:        req.Purpose,
		ScheduledStart: rng.Start,
		ScheduledEnd:   rng.End,
		Status:         visitor.StatusScheduled,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.visits.Create(ctx, v); err != nil {
		return visitor.Response{}, err
	}

	slog.Info("Visit scheduled", "visit_id", v.ID, "host_employee_id", hostID, "start", v.ScheduledStart, "actor_id", tc.UserID)
	return visitor.NewResponse(v), nil
}

// ChangeStatus implements visitor.Service. The host may cancel; the front
// desk handles check in, check out and no shows.
func (s *VisitorServiceImpl) ChangeStatus(ctx context.Context, tc tenant.Context, id string, req visitor.ChangeStatusRequest) (visitor.Response, error) {
	if err := tc.Validate(); err != nil {
		return visitor.Response{}, err
	}
	if err := req.Validate(); err != nil {
		return visitor.Response{}, err
	}
	to, err := visitor.Machine.Parse(req.Status)
	if err != nil {
		return visitor.Response{}, err
	}

	var v visitor.Visit
	var from visitor.Status
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		v, err = s.visits.GetByIDForUpdate(ctx, tc.CompanyID, id)
		if err != nil {
			return err
		}
		if to != visitor.StatusCancelled || v.HostEmployeeID != tc.EmployeeID {
			if err := tc.Require(user.PermissionVisitorManage); err != nil {
				return err
			}
		}
		from = v.Status
		if _, err := visitor.Machine.Transition(v.Status, to); err != nil {
			return err
		}
		v.Apply(to, s.now())
		return s.visits.Update(ctx, v)
	})
	if err != nil {
		return visitor.Response{}, err
	}

	slog.Info("Visit status changed", "visit_id", v.ID, "from", from, "to", v.Status, "actor_id", tc.UserID)
	s.emit(ctx, tc.UserID, v, from)
	return visitor.NewResponse(v), nil
}

// Get implements visitor.Service.
func (s *VisitorServiceImpl) Get(ctx context.Context, tc tenant.Context, id string) (visitor.Response, error) {
	if err := tc.Validate(); err != nil {
		return visitor.Response{}, err
	}
	v, err := s.visits.GetByID(ctx, tc.CompanyID, id)
	if err != nil {
		return visitor.Response{}, err
	}
	if v.HostEmployeeID != tc.EmployeeID && !tc.Can(user.PermissionVisitorManage) {
		return visitor.Response{}, tenant.ErrAccessDenied
	}
	return visitor.NewResponse(v), nil
}

// List implements visitor.Service. Hosts only see their own guests.
func (s *VisitorServiceImpl) List(ctx context.Context, tc tenant.Context, filter visitor.ListFilter) (visitor.ListResponse, error) {
	if err := tc.Validate(); err != nil {
		return visitor.ListResponse{}, err
	}
	if !tc.Can(user.PermissionVisitorManage) {
		if tc.EmployeeID == "" {
			return visitor.ListResponse{}, tenant.ErrMissingEmployee
		}
		filter.HostEmployeeID = &tc.EmployeeID
	}
	filter.Normalize()

	visits, total, err := s.visits.List(ctx, tc.CompanyID, filter)
	if err != nil {
		return visitor.ListResponse{}, err
	}
	out := make([]visitor.Response, 0, len(visits))
	for _, v := range visits {
		out = append(out, visitor.NewResponse(v))
	}
	return visitor.ListResponse{Visits: out, TotalCount: total, Page: filter.Page, Limit: filter.Limit}, nil
}

// SweepNoShows implements visitor.Service. Work is committed in batches so a
// large backlog does not hold locks for long.
func (s *VisitorServiceImpl) SweepNoShows(ctx context.Context, cutoff time.Time) (int, error) {
	total := 0
	for {
		var swept []visitor.Visit
		err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
			overdue, err := s.visits.ListOverdueForUpdate(ctx, cutoff, sweepBatchSize)
			if err != nil {
				return fmt.Errorf("list overdue visits: %w", err)
			}
			now := s.now()
			for _, v := range overdue {
				if _, err := visitor.Machine.Transition(v.Status, visitor.StatusNoShow); err != nil {
					return err
				}
				v.Apply(visitor.StatusNoShow, now)
				if err := s.visits.Update(ctx, v); err != nil {
					return err
				}
				swept = append(swept, v)
			}
			return nil
		})
		if err != nil {
			return total, err
		}

		for _, v := range swept {
			s.emit(ctx, "", v, visitor.StatusScheduled)
		}
		total += len(swept)
		if len(swept) < sweepBatchSize {
			return total, nil
		}
	}
}

func (s *VisitorServiceImpl) emit(ctx context.Context, actorUserID string, v visitor.Visit, from visitor.Status) {
	jobs.Emit(ctx, s.jobs, notification.JobStatusChanged, v.CompanyID, notification.StatusChangedPayload{
		RecipientEmployeeID: v.HostEmployeeID,
		ActorUserID:         actorUserID,
		Subject:             visitor.Machine.Entity(),
		SubjectID:           v.ID,
		From:                string(from),
		To:                  string(v.Status),
		ToLabel:             visitor.Machine.Label(v.Status),
	})
}
