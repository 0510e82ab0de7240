package onboarding

import (
	"context"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/notification"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/onboarding"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/tenant"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/pkg/jobs"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/pkg/validator"
	"github.com/google/uuid"
)

type OnboardingServiceImpl struct {
	tx    database.Transactor
	tasks onboarding.Repository
	jobs  jobs.Dispatcher
	now   func() time.Time
}

func NewOnboardingService(tx database.Transactor, tasks onboarding.Repository, dispatcher jobs.Dispatcher) onboarding.Service {
	return &OnboardingServiceImpl{tx: tx, tasks: tasks, jobs: dispatcher, now: time.Now}
}

// CreateTask implements onboarding.Service.
func (s *OnboardingServiceImpl) CreateTask(ctx context.Context, tc tenant.Context, req onboarding.CreateTaskRequest) (onboarding.TaskResponse, error) {
	if err := tc.Require(user.PermissionEmployeeManage); err != nil {
		return onboarding.TaskResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return onboarding.TaskResponse{}, err
	}

	now := s.now()
	t := onboarding.Task{
		ID:          uuid.Must(uuid.NewV7()).String(),
		CompanyID:   tc.CompanyID,
		EmployeeID:  req.EmployeeID,
		Phase:       onboarding.Phase(req.Phase),
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.Due(),
		Status:      onboarding.StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		err := validator.Collect(validator.Duplicate(ctx, "title",
			validator.DuplicateFinderFunc(func(ctx context.Context, key validator.Key) ([]string, error) {
				return s.tasks.FindByTitle(ctx, tc.CompanyID, key[0], onboarding.Phase(key[1]), key[2])
			}),
			validator.Key{t.EmployeeID, string(t.Phase), onboarding.NormalizeTitle(t.Title)}, "",
			"a task with this title already exists in this phase",
		))
		if err != nil {
			return err
		}
		return s.tasks.Create(ctx, t)
	})
	if err != nil {
		return onboarding.TaskResponse{}, err
	}

	slog.Info("Onboarding task created", "task_id", t.ID, "employee_id", t.EmployeeID, "phase", t.Phase, "actor_id", tc.UserID)
	return onboarding.NewTaskResponse(t), nil
}

// ChangeStatus implements onboarding.Service. Employees work their own tasks;
// waiving is reserved for onboarding.waive.
func (s *OnboardingServiceImpl) ChangeStatus(ctx context.Context, tc tenant.Context, id string, req onboarding.ChangeStatusRequest) (onboarding.TaskResponse, error) {
	if err := tc.Validate(); err != nil {
		return onboarding.TaskResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return onboarding.TaskResponse{}, err
	}
	to, err := onboarding.Machine.Parse(req.Status)
	if err != nil {
		return onboarding.TaskResponse{}, err
	}
	if to == onboarding.StatusWaived {
		if err := tc.Require(user.PermissionOnboardingWaive); err != nil {
			return onboarding.TaskResponse{}, err
		}
	}

	var t onboarding.Task
	var from onboarding.Status
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		t, err = s.tasks.GetByIDForUpdate(ctx, tc.CompanyID, id)
		if err != nil {
			return err
		}
		if err := tc.RequireEmployee(t.EmployeeID); err != nil {
			return err
		}
		from = t.Status
		changed, err := onboarding.Machine.Transition(t.Status, to)
		if err != nil || !changed {
			return err
		}

		now := s.now()
		switch to {
		case onboarding.StatusInProgress:
			t.StartedAt = &now
		case onboarding.StatusCompleted:
			t.CompletedAt = &now
		case onboarding.StatusWaived:
			t.WaivedBy = &tc.UserID
			t.WaiveReason = req.Reason
		}
		t.Status = to
		t.UpdatedAt = now
		return s.tasks.Update(ctx, t)
	})
	if err != nil {
		return onboarding.TaskResponse{}, err
	}

	if from != t.Status {
		slog.Info("Onboarding task status changed", "task_id", t.ID, "from", from, "to", t.Status, "actor_id", tc.UserID)
		jobs.Emit(ctx, s.jobs, notification.JobStatusChanged, tc.CompanyID, notification.StatusChangedPayload{
			RecipientEmployeeID: t.EmployeeID,
			ActorUserID:         tc.UserID,
			Subject:             onboarding.Machine.Entity(),
			SubjectID:           t.ID,
			From:                string(from),
			To:                  string(t.Status),
			ToLabel:             onboarding.Machine.Label(t.Status),
		})
	}
	return onboarding.NewTaskResponse(t), nil
}

// ListTasks implements onboarding.Service.
func (s *OnboardingServiceImpl) ListTasks(ctx context.Context, tc tenant.Context, employeeID string, phase *onboarding.Phase) ([]onboarding.TaskResponse, error) {
	employeeID, err := tc.SelfOr(employeeID)
	if err != nil {
		return nil, err
	}
	if err := tc.RequireEmployee(employeeID); err != nil {
		return nil, err
	}
	tasks, err := s.tasks.ListByEmployee(ctx, tc.CompanyID, employeeID, phase)
	if err != nil {
		return nil, err
	}
	out := make([]onboarding.TaskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, onboarding.NewTaskResponse(t))
	}
	return out, nil
}

// Progress implements onboarding.Service.
func (s *OnboardingServiceImpl) Progress(ctx context.Context, tc tenant.Context, employeeID string) (onboarding.ProgressResponse, error) {
	employeeID, err := tc.SelfOr(employeeID)
	if err != nil {
		return onboarding.ProgressResponse{}, err
	}
	if err := tc.RequireEmployee(employeeID); err != nil {
		return onboarding.ProgressResponse{}, err
	}
	tasks, err := s.tasks.ListByEmployee(ctx, tc.CompanyID, employeeID, nil)
	if err != nil {
		return onboarding.ProgressResponse{}, err
	}
	return onboarding.NewProgressResponse(employeeID, onboarding.Summarize(tasks)), nil
}
