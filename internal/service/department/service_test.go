package department

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/department"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/tenant"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/pkg/apperror"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type departmentRepo struct {
	rows  map[string]department.Department
	locks int
}

func (r *departmentRepo) Create(ctx context.Context, d department.Department) error {
	r.rows[d.ID] = d
	return nil
}

func (r *departmentRepo) GetByID(ctx context.Context, companyID, id string) (department.Department, error) {
	d, ok := r.rows[id]
	if !ok || d.CompanyID != companyID {
		return department.Department{}, department.ErrDepartmentNotFound
	}
	return d, nil
}

func (r *departmentRepo) GetByIDForUpdate(ctx context.Context, companyID, id string) (department.Department, error) {
	return r.GetByID(ctx, companyID, id)
}

func (r *departmentRepo) Update(ctx context.Context, d department.Department) error {
	r.rows[d.ID] = d
	return nil
}

func (r *departmentRepo) List(ctx context.Context, companyID string) ([]department.Department, error) {
	var out []department.Department
	for _, d := range r.rows {
		out = append(out, d)
	}
	return out, nil
}

func (r *departmentRepo) FindByName(ctx context.Context, companyID, parentID, name string) ([]string, error) {
	var ids []string
	for _, d := range r.rows {
		if d.Parent() == parentID && department.NormalizeName(d.Name) == name {
			ids = append(ids, d.ID)
		}
	}
	return ids, nil
}

func (r *departmentRepo) ParentOf(ctx context.Context, companyID, id string) (string, bool, error) {
	d, ok := r.rows[id]
	if !ok || d.CompanyID != companyID {
		return "", false, nil
	}
	return d.Parent(), true, nil
}

func (r *departmentRepo) LockTree(ctx context.Context, companyID string) error {
	r.locks++
	return nil
}

var (
	hrTC  = tenant.Context{CompanyID: "c1", UserID: "u-hr", EmployeeID: "emp-hr", Role: user.RoleManager}
	empTC = tenant.Context{CompanyID: "c1", UserID: "u-emp", EmployeeID: "emp-1", Role: user.RoleEmployee}
)

func newService() (department.Service, *departmentRepo) {
	repo := &departmentRepo{rows: map[string]department.Department{}}
	tx := database.TransactorFunc(func(ctx context.Context, fn func(ctx context.Context) error) error { return fn(ctx) })
	svc := NewDepartmentService(tx, repo)
	svc.(*DepartmentServiceImpl).now = func() time.Time { return time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC) }
	return svc, repo
}

func create(t *testing.T, svc department.Service, name string, parent *department.Response) department.Response {
	t.Helper()
	req := department.CreateRequest{Name: name}
	if parent != nil {
		req.ParentID = &parent.ID
	}
	d, err := svc.Create(context.Background(), hrTC, req)
	require.NoError(t, err)
	return d
}

func TestDepartment_SiblingNamesAreUnique(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()
	eng := create(t, svc, "Engineering", nil)
	ops := create(t, svc, "Operations", nil)
	create(t, svc, "Platform", &eng)
	create(t, svc, "Platform", &ops)

	_, err := svc.Create(ctx, hrTC, department.CreateRequest{Name: " platform ", ParentID: &eng.ID})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.True(t, verrs.Has("name"))

	_, err = svc.Rename(ctx, hrTC, ops.ID, department.RenameRequest{Name: "ENGINEERING"})
	require.ErrorAs(t, err, &verrs)

	renamed, err := svc.Rename(ctx, hrTC, ops.ID, department.RenameRequest{Name: "Operations & Support"})
	require.NoError(t, err)
	assert.Equal(t, "Operations & Support", renamed.Name)

	_, err = svc.Create(ctx, empTC, department.CreateRequest{Name: "Shadow IT"})
	assert.Equal(t, apperror.KindForbidden, apperror.KindOf(err))
}

func TestDepartment_EveryStructuralWriteLocksTree(t *testing.T) {
	svc, repo := newService()
	ctx := context.Background()
	eng := create(t, svc, "Engineering", nil)
	ops := create(t, svc, "Operations", nil)
	require.Equal(t, 2, repo.locks)

	_, err := svc.Rename(ctx, hrTC, ops.ID, department.RenameRequest{Name: "Ops"})
	require.NoError(t, err)
	assert.Equal(t, 3, repo.locks)

	_, err = svc.Move(ctx, hrTC, ops.ID, department.MoveRequest{ParentID: &eng.ID})
	require.NoError(t, err)
	assert.Equal(t, 4, repo.locks)

	_, err = svc.List(ctx, empTC)
	require.NoError(t, err)
	assert.Equal(t, 4, repo.locks, "reads do not lock")
}

func TestDepartment_MoveRejectsCycles(t *testing.T) {
	svc, repo := newService()
	ctx := context.Background()
	eng := create(t, svc, "Engineering", nil)
	platform := create(t, svc, "Platform", &eng)
	infra := create(t, svc, "Infra", &platform)

	_, err := svc.Move(ctx, hrTC, eng.ID, department.MoveRequest{ParentID: &infra.ID})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "would create a circular reference", verrs.ToMap()["parent_id"])
	assert.Nil(t, repo.rows[eng.ID].ParentID, "failed move leaves the tree unchanged")

	moved, err := svc.Move(ctx, hrTC, infra.ID, department.MoveRequest{ParentID: &eng.ID})
	require.NoError(t, err)
	require.NotNil(t, moved.ParentID)
	assert.Equal(t, eng.ID, *moved.ParentID)

	create(t, svc, "Tools", &eng)
	toolsUnderPlatform := create(t, svc, "Tools", &platform)
	_, err = svc.Move(ctx, hrTC, toolsUnderPlatform.ID, department.MoveRequest{ParentID: &eng.ID})
	require.ErrorAs(t, err, &verrs)
	assert.True(t, verrs.Has("name"))
	assert.Positive(t, repo.locks)

	list, err := svc.List(ctx, empTC)
	require.NoError(t, err)
	assert.Len(t, list, 5)
}
