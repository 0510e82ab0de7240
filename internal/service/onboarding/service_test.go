package onboarding

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/onboarding"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/tenant"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/pkg/apperror"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/pkg/jobs"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type taskRepo struct {
	rows  map[string]onboarding.Task
	order []string
}

func (r *taskRepo) Create(ctx context.Context, t onboarding.Task) error {
	r.rows[t.ID] = t
	r.order = append(r.order, t.ID)
	return nil
}

func (r *taskRepo) GetByIDForUpdate(ctx context.Context, companyID, id string) (onboarding.Task, error) {
	t, ok := r.rows[id]
	if !ok || t.CompanyID != companyID {
		return onboarding.Task{}, onboarding.ErrTaskNotFound
	}
	return t, nil
}

func (r *taskRepo) Update(ctx context.Context, t onboarding.Task) error {
	r.rows[t.ID] = t
	return nil
}

func (r *taskRepo) ListByEmployee(ctx context.Context, companyID, employeeID string, phase *onboarding.Phase) ([]onboarding.Task, error) {
	var out []onboarding.Task
	for _, id := range r.order {
		t := r.rows[id]
		if t.EmployeeID == employeeID && (phase == nil || t.Phase == *phase) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *taskRepo) FindByTitle(ctx context.Context, companyID, employeeID string, phase onboarding.Phase, title string) ([]string, error) {
	var ids []string
	for _, t := range r.rows {
		if t.EmployeeID == employeeID && t.Phase == phase && onboarding.NormalizeTitle(t.Title) == title {
			ids = append(ids, t.ID)
		}
	}
	return ids, nil
}

const hireID = "0190a5f2-8f1e-7c3a-9b2d-1a2b3c4d5e6f"

var (
	hrTC    = tenant.Context{CompanyID: "c1", UserID: "u-hr", EmployeeID: "emp-hr", Role: user.RoleManager}
	ownerTC = tenant.Context{CompanyID: "c1", UserID: "u-owner", EmployeeID: "emp-owner", Role: user.RoleOwner}
	hireTC  = tenant.Context{CompanyID: "c1", UserID: "u-new", EmployeeID: hireID, Role: user.RoleEmployee}
	peerTC  = tenant.Context{CompanyID: "c1", UserID: "u-peer", EmployeeID: "emp-peer", Role: user.RoleEmployee}
)

func newService() (onboarding.Service, *taskRepo) {
	repo := &taskRepo{rows: map[string]onboarding.Task{}}
	tx := database.TransactorFunc(func(ctx context.Context, fn func(ctx context.Context) error) error { return fn(ctx) })
	d := jobs.DispatcherFunc(func(ctx context.Context, job jobs.Job) error { return nil })
	svc := NewOnboardingService(tx, repo, d)
	svc.(*OnboardingServiceImpl).now = func() time.Time { return time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC) }
	return svc, repo
}

func task(t *testing.T, svc onboarding.Service, phase, title string) onboarding.TaskResponse {
	t.Helper()
	got, err := svc.CreateTask(context.Background(), hrTC, onboarding.CreateTaskRequest{EmployeeID: hireID, Phase: phase, Title: title})
	require.NoError(t, err)
	return got
}

func TestOnboarding_ProgressPerPhase(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()
	nda := task(t, svc, "preboarding", "Sign NDA")
	laptop := task(t, svc, "preboarding", "Pick up laptop")
	task(t, svc, "onboarding", "Meet the team")

	_, err := svc.CreateTask(ctx, hrTC, onboarding.CreateTaskRequest{EmployeeID: hireID, Phase: "preboarding", Title: " sign  nda"})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.True(t, verrs.Has("title"))
	task(t, svc, "onboarding", "Sign NDA")

	_, err = svc.ChangeStatus(ctx, hireTC, nda.ID, onboarding.ChangeStatusRequest{Status: "in_progress"})
	require.NoError(t, err)
	done, err := svc.ChangeStatus(ctx, hireTC, nda.ID, onboarding.ChangeStatusRequest{Status: "completed"})
	require.NoError(t, err)
	assert.NotNil(t, done.CompletedAt)

	reason := "remote hire"
	_, err = svc.ChangeStatus(ctx, hireTC, laptop.ID, onboarding.ChangeStatusRequest{Status: "waived", Reason: &reason})
	assert.Equal(t, apperror.KindForbidden, apperror.KindOf(err))
	_, err = svc.ChangeStatus(ctx, hrTC, laptop.ID, onboarding.ChangeStatusRequest{Status: "waived", Reason: &reason})
	require.NoError(t, err)

	progress, err := svc.Progress(ctx, hireTC, "")
	require.NoError(t, err)
	require.Len(t, progress.Phases, 2)
	assert.Equal(t, onboarding.PhaseProgressResponse{Phase: "preboarding", Total: 2, Completed: 1, Waived: 1, Percent: 100}, progress.Phases[0])
	assert.Equal(t, 0, progress.Phases[1].Percent)

	_, err = svc.ChangeStatus(ctx, ownerTC, nda.ID, onboarding.ChangeStatusRequest{Status: "in_progress"})
	assert.Equal(t, apperror.KindInvalidTransition, apperror.KindOf(err))
}

func TestOnboarding_OtherEmployeesCannotTouch(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()
	nda := task(t, svc, "preboarding", "Sign NDA")

	_, err := svc.ChangeStatus(ctx, peerTC, nda.ID, onboarding.ChangeStatusRequest{Status: "completed"})
	assert.ErrorIs(t, err, tenant.ErrAccessDenied)
	_, err = svc.ListTasks(ctx, peerTC, hireID, nil)
	assert.ErrorIs(t, err, tenant.ErrAccessDenied)

	_, err = svc.CreateTask(ctx, hireTC, onboarding.CreateTaskRequest{EmployeeID: hireID, Phase: "onboarding", Title: "x"})
	assert.Equal(t, apperror.KindForbidden, apperror.KindOf(err))

	phase := onboarding.PhasePreboarding
	tasks, err := svc.ListTasks(ctx, hireTC, "", &phase)
	require.NoError(t, err)
	assert.Len(t, tasks, 1)
}
