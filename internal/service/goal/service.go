package goal

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/goal"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/notification"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/tenant"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/pkg/jobs"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/pkg/validator"
	"github.com/google/uuid"
)

type GoalServiceImpl struct {
	tx    database.Transactor
	goals goal.Repository
	jobs  jobs.Dispatcher
	now   func() time.Time
}

func NewGoalService(tx database.Transactor, goals goal.Repository, dispatcher jobs.Dispatcher) goal.Service {
	return &GoalServiceImpl{tx: tx, goals: goals, jobs: dispatcher, now: time.Now}
}

// requireOwner lets employees manage their own goals and goal managers any.
func requireOwner(tc tenant.Context, employeeID string) error {
	if err := tc.Validate(); err != nil {
		return err
	}
	if tc.EmployeeID != "" && tc.EmployeeID == employeeID {
		return nil
	}
	return tc.Require(user.PermissionGoalManage)
}

// checkParent runs the circular reference check and refuses closed parents.
func (s *GoalServiceImpl) checkParent(ctx context.Context, tc tenant.Context, nodeID, parentID string) error {
	err := validator.Collect(validator.Circular(ctx, "parent_id",
		validator.ParentLookupFunc(func(ctx context.Context, id string) (string, bool, error) {
			return s.goals.ParentOf(ctx, tc.CompanyID, id)
		}),
		nodeID, parentID,
	))
	if err != nil || parentID == "" {
		return err
	}
	parent, err := s.goals.GetByID(ctx, tc.CompanyID, parentID)
	if err != nil {
		return err
	}
	if goal.Machine.IsTerminal(parent.Status) {
		return validator.Fail("parent_id", "cannot attach a sub-goal to a closed goal")
	}
	return nil
}

// Create implements goal.Service.
func (s *GoalServiceImpl) Create(ctx context.Context, tc tenant.Context, req goal.CreateRequest) (goal.Response, error) {
	if err := tc.Validate(); err != nil {
		return goal.Response{}, err
	}
	if err := req.Validate(); err != nil {
		return goal.Response{}, err
	}
	employeeID, err := tc.SelfOr(req.EmployeeID)
	if err != nil {
		return goal.Response{}, err
	}
	if err := requireOwner(tc, employeeID); err != nil {
		return goal.Response{}, err
	}

	now := s.now()
	g := goal.Goal{
		ID:          uuid.Must(uuid.NewV7()).String(),
		CompanyID:   tc.CompanyID,
		EmployeeID:  employeeID,
		ParentID:    req.ParentID,
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.Due(),
		Status:      goal.StatusDraft,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.goals.LockTree(ctx, tc.CompanyID); err != nil {
			return err
		}
		if g.ParentID != nil {
			if err := s.checkParent(ctx, tc, "", *g.ParentID); err != nil {
				return err
			}
		}
		return s.goals.Create(ctx, g)
	})
	if err != nil {
		return goal.Response{}, err
	}

	slog.Info("Goal created", "goal_id", g.ID, "employee_id", employeeID, "parent_id", g.ParentID, "actor_id", tc.UserID)
	return goal.NewResponse(g), nil
}

// Move implements goal.Service.
func (s *GoalServiceImpl) Move(ctx context.Context, tc tenant.Context, id string, req goal.MoveRequest) (goal.Response, error) {
	if err := tc.Validate(); err != nil {
		return goal.Response{}, err
	}
	if err := req.Validate(); err != nil {
		return goal.Response{}, err
	}

	var g goal.Goal
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		// Tree lock before the row lock, same order as department moves.
		if err := s.goals.LockTree(ctx, tc.CompanyID); err != nil {
			return err
		}
		var err error
		g, err = s.goals.GetByIDForUpdate(ctx, tc.CompanyID, id)
		if err != nil {
			return err
		}
		if err := requireOwner(tc, g.EmployeeID); err != nil {
			return err
		}
		if err := goal.Machine.RequireEditable(g.Status); err != nil {
			return err
		}
		if err := s.checkParent(ctx, tc, g.ID, req.Parent()); err != nil {
			return err
		}
		g.ParentID = req.ParentID
		g.UpdatedAt = s.now()
		return s.goals.Update(ctx, g)
	})
	if err != nil {
		return goal.Response{}, err
	}

	slog.Info("Goal moved", "goal_id", g.ID, "parent_id", g.ParentID, "actor_id", tc.UserID)
	return goal.NewResponse(g), nil
}

// ChangeStatus implements goal.Service. A goal completes only once every
// sub-goal is closed.
func (s *GoalServiceImpl) ChangeStatus(ctx context.Context, tc tenant.Context, id string, req goal.ChangeStatusRequest) (goal.Response, error) {
	if err := tc.Validate(); err != nil {
		return goal.Response{}, err
	}
	if err := req.Validate(); err != nil {
		return goal.Response{}, err
	}
	to, err := goal.Machine.Parse(req.Status)
	if err != nil {
		return goal.Response{}, err
	}

	var g goal.Goal
	var from goal.Status
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		g, err = s.goals.GetByIDForUpdate(ctx, tc.CompanyID, id)
		if err != nil {
			return err
		}
		if err := requireOwner(tc, g.EmployeeID); err != nil {
			return err
		}
		from = g.Status
		changed, err := goal.Machine.Transition(g.Status, to)
		if err != nil || !changed {
			return err
		}

		now := s.now()
		if to == goal.StatusCompleted {
			children, err := s.goals.ListChildren(ctx, tc.CompanyID, g.ID)
			if err != nil {
				return fmt.Errorf("list sub-goals: %w", err)
			}
			if open := goal.OpenChildren(children); len(open) > 0 {
				return goal.ErrOpenChildren
			}
			g.CompletedAt = &now
		}
		g.Status = to
		g.UpdatedAt = now
		return s.goals.Update(ctx, g)
	})
	if err != nil {
		return goal.Response{}, err
	}

	if from != g.Status {
		slog.Info("Goal status changed", "goal_id", g.ID, "from", from, "to", g.Status, "actor_id", tc.UserID)
		jobs.Emit(ctx, s.jobs, notification.JobStatusChanged, tc.CompanyID, notification.StatusChangedPayload{
			RecipientEmployeeID: g.EmployeeID,
			ActorUserID:         tc.UserID,
			Subject:             goal.Machine.Entity(),
			SubjectID:           g.ID,
			From:                string(from),
			To:                  string(g.Status),
			ToLabel:             goal.Machine.Label(g.Status),
		})
	}
	return goal.NewResponse(g), nil
}

// Get implements goal.Service. Direct children are included.
func (s *GoalServiceImpl) Get(ctx context.Context, tc tenant.Context, id string) (goal.Response, error) {
	if err := tc.Validate(); err != nil {
		return goal.Response{}, err
	}
	g, err := s.goals.GetByID(ctx, tc.CompanyID, id)
	if err != nil {
		return goal.Response{}, err
	}
	if err := tc.RequireEmployee(g.EmployeeID); err != nil {
		return goal.Response{}, err
	}
	g.Children, err = s.goals.ListChildren(ctx, tc.CompanyID, g.ID)
	if err != nil {
		return goal.Response{}, err
	}
	return goal.NewResponse(g), nil
}

// ListByEmployee implements goal.Service.
func (s *GoalServiceImpl) ListByEmployee(ctx context.Context, tc tenant.Context, employeeID string) ([]goal.Response, error) {
	employeeID, err := tc.SelfOr(employeeID)
	if err != nil {
		return nil, err
	}
	if err := tc.RequireEmployee(employeeID); err != nil {
		return nil, err
	}
	goals, err := s.goals.ListByEmployee(ctx, tc.CompanyID, employeeID)
	if err != nil {
		return nil, err
	}
	out := make([]goal.Response, 0, len(goals))
	for _, g := range goals {
		out = append(out, goal.NewResponse(g))
	}
	return out, nil
}
