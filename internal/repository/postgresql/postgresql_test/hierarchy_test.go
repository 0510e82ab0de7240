package postgresql_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/department"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/goal"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/repository/postgresql"
)

func TestLockTree_SerializesPerCompany(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	departments := postgresql.NewDepartmentRepository(db)
	goals := postgresql.NewGoalRepository(db)
	companyA, companyB := newID(), newID()

	err := postgresql.NewTransactor(db).WithinTransaction(ctx, func(ctx context.Context) error {
		if err := departments.LockTree(ctx, companyA); err != nil {
			return err
		}
		if err := goals.LockTree(ctx, companyA); err != nil {
			return err
		}

		err := contended(t, db, func(ctx context.Context) error { return departments.LockTree(ctx, companyA) })
		assert.True(t, isLockTimeout(err), "department tree of the same company should wait, got %v", err)

		err = contended(t, db, func(ctx context.Context) error { return goals.LockTree(ctx, companyA) })
		assert.True(t, isLockTimeout(err), "goal tree of the same company should wait, got %v", err)

		assert.NoError(t, contended(t, db, func(ctx context.Context) error { return departments.LockTree(ctx, companyB) }))
		assert.NoError(t, contended(t, db, func(ctx context.Context) error { return goals.LockTree(ctx, companyB) }))
		return nil
	})
	require.NoError(t, err)

	assert.NoError(t, contended(t, db, func(ctx context.Context) error { return goals.LockTree(ctx, companyA) }))
}

func TestLockTree_DepartmentsAndGoalsAreIndependent(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	departments := postgresql.NewDepartmentRepository(db)
	goals := postgresql.NewGoalRepository(db)
	companyID := newID()

	err := postgresql.NewTransactor(db).WithinTransaction(ctx, func(ctx context.Context) error {
		if err := departments.LockTree(ctx, companyID); err != nil {
			return err
		}
		assert.NoError(t, contended(t, db, func(ctx context.Context) error { return goals.LockTree(ctx, companyID) }))
		return nil
	})
	require.NoError(t, err)
}

func TestParentOf_WalksStoredHierarchy(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	departments := postgresql.NewDepartmentRepository(db)
	goals := postgresql.NewGoalRepository(db)
	companyID := newID()
	now := time.Now()

	root := department.Department{ID: newID(), CompanyID: companyID, Name: "Engineering", CreatedAt: now, UpdatedAt: now}
	child := department.Department{ID: newID(), CompanyID: companyID, Name: "Platform", ParentID: &root.ID, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, departments.Create(ctx, root))
	require.NoError(t, departments.Create(ctx, child))

	parent, ok, err := departments.ParentOf(ctx, companyID, child.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, root.ID, parent)

	parent, ok, err = departments.ParentOf(ctx, companyID, root.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, parent)

	_, ok, err = departments.ParentOf(ctx, newID(), child.ID)
	require.NoError(t, err)
	assert.False(t, ok, "rows of another company are invisible")

	empID := seedEmployee(t, db, companyID, "Lina")
	objective := goal.Goal{ID: newID(), CompanyID: companyID, EmployeeID: empID, Title: "Ship v2", Status: goal.StatusActive, CreatedAt: now, UpdatedAt: now}
	keyResult := goal.Goal{ID: newID(), CompanyID: companyID, EmployeeID: empID, ParentID: &objective.ID, Title: "Migrate billing", Status: goal.StatusDraft, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, goals.Create(ctx, objective))
	require.NoError(t, goals.Create(ctx, keyResult))

	parent, ok, err = goals.ParentOf(ctx, companyID, keyResult.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, objective.ID, parent)

	children, err := goals.ListChildren(ctx, companyID, objective.ID)
	require.NoError(t, err)
	require.Len(t, children, 1)
	assert.Equal(t, keyResult.ID, children[0].ID)
}
