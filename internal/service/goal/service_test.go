package goal

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/goal"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/tenant"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/pkg/apperror"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/pkg/jobs"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type goalRepo struct {
	rows  map[string]goal.Goal
	calls []string
}

func (r *goalRepo) Create(ctx context.Context, g goal.Goal) error {
	r.rows[g.ID] = g
	return nil
}

func (r *goalRepo) GetByID(ctx context.Context, companyID, id string) (goal.Goal, error) {
	g, ok := r.rows[id]
	if !ok || g.CompanyID != companyID {
		return goal.Goal{}, goal.ErrGoalNotFound
	}
	return g, nil
}

func (r *goalRepo) GetByIDForUpdate(ctx context.Context, companyID, id string) (goal.Goal, error) {
	r.calls = append(r.calls, "get_for_update")
	return r.GetByID(ctx, companyID, id)
}

func (r *goalRepo) Update(ctx context.Context, g goal.Goal) error {
	r.rows[g.ID] = g
	return nil
}

func (r *goalRepo) ListChildren(ctx context.Context, companyID, parentID string) ([]goal.Goal, error) {
	var out []goal.Goal
	for _, g := range r.rows {
		if g.ParentID != nil && *g.ParentID == parentID {
			out = append(out, g)
		}
	}
	return out, nil
}

func (r *goalRepo) ListByEmployee(ctx context.Context, companyID, employeeID string) ([]goal.Goal, error) {
	var out []goal.Goal
	for _, g := range r.rows {
		if g.EmployeeID == employeeID {
			out = append(out, g)
		}
	}
	return out, nil
}

func (r *goalRepo) LockTree(ctx context.Context, companyID string) error {
	r.calls = append(r.calls, "lock_tree:"+companyID)
	return nil
}

func (r *goalRepo) ParentOf(ctx context.Context, companyID, id string) (string, bool, error) {
	r.calls = append(r.calls, "parent_of")
	g, ok := r.rows[id]
	if !ok || g.CompanyID != companyID {
		return "", false, nil
	}
	if g.ParentID == nil {
		return "", true, nil
	}
	return *g.ParentID, true, nil
}

var (
	leadTC = tenant.Context{CompanyID: "c1", UserID: "u-lead", EmployeeID: "emp-lead", Role: user.RoleManager}
	devTC  = tenant.Context{CompanyID: "c1", UserID: "u-dev", EmployeeID: "emp-dev", Role: user.RoleEmployee}
	peerTC = tenant.Context{CompanyID: "c1", UserID: "u-peer", EmployeeID: "emp-peer", Role: user.RoleEmployee}
)

func newService() (goal.Service, *goalRepo) {
	repo := &goalRepo{rows: map[string]goal.Goal{}}
	tx := database.TransactorFunc(func(ctx context.Context, fn func(ctx context.Context) error) error { return fn(ctx) })
	d := jobs.DispatcherFunc(func(ctx context.Context, job jobs.Job) error { return nil })
	svc := NewGoalService(tx, repo, d)
	svc.(*GoalServiceImpl).now = func() time.Time { return time.Date(2025, 8, 1, 9, 0, 0, 0, time.UTC) }
	return svc, repo
}

func create(t *testing.T, svc goal.Service, tc tenant.Context, title string, parent *goal.Response) goal.Response {
	t.Helper()
	req := goal.CreateRequest{Title: title}
	if parent != nil {
		req.ParentID = &parent.ID
	}
	g, err := svc.Create(context.Background(), tc, req)
	require.NoError(t, err)
	return g
}

func move(svc goal.Service, tc tenant.Context, id, to string) error {
	_, err := svc.ChangeStatus(context.Background(), tc, id, goal.ChangeStatusRequest{Status: to})
	return err
}

func TestGoal_CompleteNeedsClosedChildren(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()
	root := create(t, svc, devTC, "Ship v2", nil)
	a := create(t, svc, devTC, "Migrate API", &root)
	b := create(t, svc, devTC, "Write docs", &root)

	for _, id := range []string{root.ID, a.ID, b.ID} {
		require.NoError(t, move(svc, devTC, id, "active"))
	}
	require.NoError(t, move(svc, devTC, a.ID, "completed"))
	assert.ErrorIs(t, move(svc, devTC, root.ID, "completed"), goal.ErrOpenChildren)

	require.NoError(t, move(svc, devTC, b.ID, "cancelled"))
	require.NoError(t, move(svc, devTC, root.ID, "completed"))

	got, err := svc.Get(ctx, devTC, root.ID)
	require.NoError(t, err)
	assert.Len(t, got.Children, 2)
	assert.NotNil(t, got.CompletedAt)

	_, err = svc.Create(ctx, devTC, goal.CreateRequest{Title: "Late child", ParentID: &root.ID})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.True(t, verrs.Has("parent_id"))
}

func TestGoal_MoveRejectsCycles(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()
	root := create(t, svc, devTC, "Root", nil)
	mid := create(t, svc, devTC, "Mid", &root)
	leaf := create(t, svc, devTC, "Leaf", &mid)

	_, err := svc.Move(ctx, devTC, root.ID, goal.MoveRequest{ParentID: &leaf.ID})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "would create a circular reference", verrs.ToMap()["parent_id"])

	_, err = svc.Move(ctx, devTC, root.ID, goal.MoveRequest{ParentID: &root.ID})
	require.ErrorAs(t, err, &verrs)

	missing := "0190a5f2-8f1e-7c3a-9b2d-1a2b3c4d5e6f"
	_, err = svc.Move(ctx, devTC, leaf.ID, goal.MoveRequest{ParentID: &missing})
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "parent not found", verrs.ToMap()["parent_id"])

	moved, err := svc.Move(ctx, devTC, leaf.ID, goal.MoveRequest{})
	require.NoError(t, err)
	assert.Nil(t, moved.ParentID)
}

func TestGoal_TreeLockedBeforeParentWalk(t *testing.T) {
	svc, repo := newService()
	ctx := context.Background()
	a := create(t, svc, devTC, "A", nil)
	b := create(t, svc, devTC, "B", nil)

	repo.calls = nil
	_, err := svc.Move(ctx, devTC, a.ID, goal.MoveRequest{ParentID: &b.ID})
	require.NoError(t, err)
	require.NotEmpty(t, repo.calls)
	assert.Equal(t, "lock_tree:c1", repo.calls[0])
	assert.Contains(t, repo.calls, "parent_of")

	// With A under B, the reverse move must now see the cycle.
	repo.calls = nil
	_, err = svc.Move(ctx, devTC, b.ID, goal.MoveRequest{ParentID: &a.ID})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "lock_tree:c1", repo.calls[0])

	repo.calls = nil
	create(t, svc, devTC, "C", &b)
	require.NotEmpty(t, repo.calls)
	assert.Equal(t, "lock_tree:c1", repo.calls[0])
}

func TestGoal_Ownership(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()
	g := create(t, svc, devTC, "Learn Go", nil)

	assert.Equal(t, apperror.KindForbidden, apperror.KindOf(move(svc, peerTC, g.ID, "active")))
	require.NoError(t, move(svc, leadTC, g.ID, "active"))

	_, err := svc.Create(ctx, peerTC, goal.CreateRequest{EmployeeID: "0190a5f2-8f1e-7c3a-9b2d-1a2b3c4d5e6f", Title: "x"})
	assert.Equal(t, apperror.KindForbidden, apperror.KindOf(err))

	list, err := svc.ListByEmployee(ctx, leadTC, "emp-dev")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
