package evaluation

import (
	"context"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/evaluation"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/notification"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/tenant"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/pkg/jobs"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/pkg/validator"
	"github.com/google/uuid"
)

type EvaluationServiceImpl struct {
	tx          database.Transactor
	evaluations evaluation.Repository
	employees   employee.EmployeeRepository
	jobs        jobs.Dispatcher
	now         func() time.Time
}

func NewEvaluationService(tx database.Transactor, evaluations evaluation.Repository, employees employee.EmployeeRepository, dispatcher jobs.Dispatcher) evaluation.Service {
	return &EvaluationServiceImpl{tx: tx, evaluations: evaluations, employees: employees, jobs: dispatcher, now: time.Now}
}

func (s *EvaluationServiceImpl) overlap(ctx context.Context, tc tenant.Context, employeeID string, kind evaluation.Kind, rng validator.DateRange, excludeID string) validator.Check {
	return validator.Overlap(ctx, "period_start",
		validator.RangeListerFunc(func(ctx context.Context, ownerID string) ([]validator.Ranged, error) {
			return s.evaluations.ListRanges(ctx, tc.CompanyID, ownerID, kind)
		}),
		employeeID, rng, excludeID,
	)
}

// Create implements evaluation.Service.
func (s *EvaluationServiceImpl) Create(ctx context.Context, tc tenant.Context, req evaluation.CreateRequest) (evaluation.Response, error) {
	if err := tc.Require(user.PermissionEvaluationManage); err != nil {
		return evaluation.Response{}, err
	}
	if err := req.Validate(); err != nil {
		return evaluation.Response{}, err
	}
	if req.EmployeeID == tc.EmployeeID {
		return evaluation.Response{}, tenant.ErrAccessDenied
	}

	now := s.now()
	kind := evaluation.Kind(req.Kind)
	ev := evaluation.Evaluation{
		ID:          uuid.Must(uuid.NewV7()).String(),
		CompanyID:   tc.CompanyID,
		EmployeeID:  req.EmployeeID,
		EvaluatorID: tc.UserID,
		Kind:        kind,
		PeriodStart: req.Range().Start,
		PeriodEnd:   req.Range().End,
		Score:       req.Score,
		Comments:    req.Comments,
		Status:      evaluation.StatusDraft,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if req.Recommendation != nil {
		r := evaluation.Recommendation(*req.Recommendation)
		ev.Recommendation = &r
	}

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		emp, err := s.employees.GetByID(ctx, tc.CompanyID, req.EmployeeID)
		if err != nil {
			return err
		}
		ev.EmployeeName = &emp.FullName
		if err := validator.Collect(s.overlap(ctx, tc, ev.EmployeeID, kind, ev.Range(), "")); err != nil {
			return err
		}
		return s.evaluations.Create(ctx, ev)
	})
	if err != nil {
		return evaluation.Response{}, err
	}

	slog.Info("Evaluation created", "evaluation_id", ev.ID, "employee_id", ev.EmployeeID, "kind", ev.Kind, "actor_id", tc.UserID)
	return evaluation.NewResponse(ev), nil
}

// Update implements evaluation.Service. Only drafts can be edited.
func (s *EvaluationServiceImpl) Update(ctx context.Context, tc tenant.Context, id string, req evaluation.UpdateRequest) (evaluation.Response, error) {
	if err := tc.Require(user.PermissionEvaluationManage); err != nil {
		return evaluation.Response{}, err
	}

	var ev evaluation.Evaluation
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		ev, err = s.evaluations.GetByIDForUpdate(ctx, tc.CompanyID, id)
		if err != nil {
			return err
		}
		if err := evaluation.Machine.RequireEditable(ev.Status); err != nil {
			return err
		}
		if err := req.Validate(ev.Kind); err != nil {
			return err
		}
		if req.ChangesPeriod() {
			if err := validator.Collect(s.overlap(ctx, tc, ev.EmployeeID, ev.Kind, req.Range(), ev.ID)); err != nil {
				return err
			}
			ev.PeriodStart, ev.PeriodEnd = req.Range().Start, req.Range().End
		}
		if req.Score != nil {
			ev.Score = req.Score
		}
		if req.Comments != nil {
			ev.Comments = req.Comments
		}
		if req.Recommendation != nil {
			r := evaluation.Recommendation(*req.Recommendation)
			ev.Recommendation = &r
		}
		ev.UpdatedAt = s.now()
		return s.evaluations.Update(ctx, ev)
	})
	if err != nil {
		return evaluation.Response{}, err
	}
	return evaluation.NewResponse(ev), nil
}

// ChangeStatus implements evaluation.Service. Acknowledging belongs to the
// evaluated employee; every other move needs evaluation.manage.
func (s *EvaluationServiceImpl) ChangeStatus(ctx context.Context, tc tenant.Context, id string, req evaluation.ChangeStatusRequest) (evaluation.Response, error) {
	if err := tc.Validate(); err != nil {
		return evaluation.Response{}, err
	}
	if err := req.Validate(); err != nil {
		return evaluation.Response{}, err
	}
	to, err := evaluation.Machine.Parse(req.Status)
	if err != nil {
		return evaluation.Response{}, err
	}
	if to != evaluation.StatusAcknowledged {
		if err := tc.Require(user.PermissionEvaluationManage); err != nil {
			return evaluation.Response{}, err
		}
	}

	var ev evaluation.Evaluation
	var from evaluation.Status
	var regularized bool
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		ev, err = s.evaluations.GetByIDForUpdate(ctx, tc.CompanyID, id)
		if err != nil {
			return err
		}
		if to == evaluation.StatusAcknowledged && tc.EmployeeID != ev.EmployeeID {
			return evaluation.ErrNotEvaluatedEmployee
		}
		from = ev.Status
		changed, err := evaluation.Machine.Transition(ev.Status, to)
		if err != nil || !changed {
			return err
		}

		now := s.now()
		switch to {
		case evaluation.StatusSubmitted:
			if ev.Kind == evaluation.KindProbationary && ev.Recommendation == nil {
				return evaluation.ErrRecommendationRequired
			}
			ev.SubmittedAt = &now
		case evaluation.StatusDraft:
			ev.SubmittedAt = nil
		case evaluation.StatusAcknowledged:
			ev.AcknowledgedAt = &now
		case evaluation.StatusClosed:
			ev.ClosedAt = &now
			if ev.Regularizes() {
				if regularized, err = s.regularize(ctx, tc, ev.EmployeeID, now); err != nil {
					return err
				}
			}
		}
		ev.Status = to
		ev.UpdatedAt = now
		return s.evaluations.Update(ctx, ev)
	})
	if err != nil {
		return evaluation.Response{}, err
	}

	if from != ev.Status {
		slog.Info("Evaluation status changed", "evaluation_id", ev.ID, "from", from, "to", ev.Status,
			"regularized", regularized, "actor_id", tc.UserID)
		jobs.Emit(ctx, s.jobs, notification.JobStatusChanged, tc.CompanyID, notification.StatusChangedPayload{
			RecipientEmployeeID: ev.EmployeeID,
			ActorUserID:         tc.UserID,
			Subject:             evaluation.Machine.Entity(),
			SubjectID:           ev.ID,
			From:                string(from),
			To:                  string(ev.Status),
			ToLabel:             evaluation.Machine.Label(ev.Status),
		})
	}
	return evaluation.NewResponse(ev), nil
}

// regularize makes the employee permanent inside the caller's transaction.
func (s *EvaluationServiceImpl) regularize(ctx context.Context, tc tenant.Context, employeeID string, now time.Time) (bool, error) {
	emp, err := s.employees.GetByIDForUpdate(ctx, tc.CompanyID, employeeID)
	if err != nil {
		return false, err
	}
	if emp.EmploymentStatus != employee.EmploymentStatusActive {
		return false, evaluation.ErrEmployeeNotActive
	}
	if emp.EmploymentType == employee.EmploymentTypePermanent {
		return false, nil
	}
	emp.EmploymentType = employee.EmploymentTypePermanent
	emp.UpdatedAt = now
	if err := s.employees.UpdateEmployment(ctx, emp); err != nil {
		return false, err
	}
	return true, nil
}

// Get implements evaluation.Service.
func (s *EvaluationServiceImpl) Get(ctx context.Context, tc tenant.Context, id string) (evaluation.Response, error) {
	if err := tc.Validate(); err != nil {
		return evaluation.Response{}, err
	}
	ev, err := s.evaluations.GetByID(ctx, tc.CompanyID, id)
	if err != nil {
		return evaluation.Response{}, err
	}
	if err := tc.RequireEmployee(ev.EmployeeID); err != nil {
		return evaluation.Response{}, err
	}
	return evaluation.NewResponse(ev), nil
}

// List implements evaluation.Service. Employees only see their own.
func (s *EvaluationServiceImpl) List(ctx context.Context, tc tenant.Context, filter evaluation.ListFilter) (evaluation.ListResponse, error) {
	if err := tc.Validate(); err != nil {
		return evaluation.ListResponse{}, err
	}
	if !tc.IsManager() {
		if tc.EmployeeID == "" {
			return evaluation.ListResponse{}, tenant.ErrMissingEmployee
		}
		filter.EmployeeID = &tc.EmployeeID
	}
	filter.Normalize()

	evs, total, err := s.evaluations.List(ctx, tc.CompanyID, filter)
	if err != nil {
		return evaluation.ListResponse{}, err
	}
	out := make([]evaluation.Response, 0, len(evs))
	for _, ev := range evs {
		out = append(out, evaluation.NewResponse(ev))
	}
	return evaluation.ListResponse{Evaluations: out, TotalCount: total, Page: filter.Page, Limit: filter.Limit}, nil
}
