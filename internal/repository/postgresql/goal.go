package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/goal"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type goalRepositoryImpl struct {
	db *database.DB
}

func NewGoalRepository(db *database.DB) goal.Repository {
	return &goalRepositoryImpl{db: db}
}

const goalColumns = `id, company_id, employee_id, parent_id, title, description, due_date, status,
	completed_at, created_at, updated_at`

func scanGoal(row pgx.Row) (goal.Goal, error) {
	var g goal.Goal
	err := row.Scan(&g.ID, &g.CompanyID, &g.EmployeeID, &g.ParentID, &g.Title, &g.Description, &g.DueDate, &g.Status,
		&g.CompletedAt, &g.CreatedAt, &g.UpdatedAt)
	return g, err
}

func collectGoals(rows pgx.Rows, err error) ([]goal.Goal, error) {
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []goal.Goal
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// Create implements goal.Repository.
func (r *goalRepositoryImpl) Create(ctx context.Context, g goal.Goal) error {
	q := GetQuerier(ctx, r.db)
	_, err := q.Exec(ctx, `INSERT INTO goals (`+goalColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		g.ID, g.CompanyID, g.EmployeeID, g.ParentID, g.Title, g.Description, g.DueDate, string(g.Status),
		g.CompletedAt, g.CreatedAt, g.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create goal: %w", err)
	}
	return nil
}

// GetByID implements goal.Repository.
func (r *goalRepositoryImpl) GetByID(ctx context.Context, companyID, id string) (goal.Goal, error) {
	return r.get(ctx, companyID, id, "")
}

// GetByIDForUpdate implements goal.Repository.
func (r *goalRepositoryImpl) GetByIDForUpdate(ctx context.Context, companyID, id string) (goal.Goal, error) {
	return r.get(ctx, companyID, id, " FOR UPDATE")
}

func (r *goalRepositoryImpl) get(ctx context.Context, companyID, id, lock string) (goal.Goal, error) {
	q := GetQuerier(ctx, r.db)
	g, err := scanGoal(q.QueryRow(ctx, `SELECT `+goalColumns+` FROM goals WHERE company_id = $1 AND id = $2`+lock, companyID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return goal.Goal{}, goal.ErrGoalNotFound
		}
		return goal.Goal{}, err
	}
	return g, nil
}

// Update implements goal.Repository.
func (r *goalRepositoryImpl) Update(ctx context.Context, g goal.Goal) error {
	q := GetQuerier(ctx, r.db)
	tag, err := q.Exec(ctx, `
		UPDATE goals SET parent_id = $3, status = $4, completed_at = $5, updated_at = $6
		WHERE company_id = $1 AND id = $2
	`, g.CompanyID, g.ID, g.ParentID, string(g.Status), g.CompletedAt, g.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update goal: %w", err)
	}
	if tag.RowsAffected() != 1 {
		return goal.ErrGoalNotFound
	}
	return nil
}

// ListChildren implements goal.Repository.
func (r *goalRepositoryImpl) ListChildren(ctx context.Context, companyID, parentID string) ([]goal.Goal, error) {
	q := GetQuerier(ctx, r.db)
	rows, err := q.Query(ctx, `SELECT `+goalColumns+` FROM goals
		WHERE company_id = $1 AND parent_id = $2 ORDER BY created_at`, companyID, parentID)
	return collectGoals(rows, err)
}

// ListByEmployee implements goal.Repository.
func (r *goalRepositoryImpl) ListByEmployee(ctx context.Context, companyID, employeeID string) ([]goal.Goal, error) {
	q := GetQuerier(ctx, r.db)
	rows, err := q.Query(ctx, `SELECT `+goalColumns+` FROM goals
		WHERE company_id = $1 AND employee_id = $2 ORDER BY due_date NULLS LAST, created_at`, companyID, employeeID)
	return collectGoals(rows, err)
}

// ParentOf implements goal.Repository.
func (r *goalRepositoryImpl) ParentOf(ctx context.Context, companyID, id string) (string, bool, error) {
	return parentOf(ctx, GetQuerier(ctx, r.db), "goals", companyID, id)
}

// LockTree implements goal.Repository.
func (r *goalRepositoryImpl) LockTree(ctx context.Context, companyID string) error {
	q := GetQuerier(ctx, r.db)
	if _, err := q.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext('goals:' || $1::text))`, companyID); err != nil {
		return fmt.Errorf("lock goal tree: %w", err)
	}
	return nil
}

// parentOf reads parent_id of one row in a self-referencing table.
func parentOf(ctx context.Context, q database.Querier, table, companyID, id string) (string, bool, error) {
	var parentID *string
	err := q.QueryRow(ctx, `SELECT parent_id FROM `+table+` WHERE company_id = $1 AND id = $2`, companyID, id).Scan(&parentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, err
	}
	if parentID == nil {
		return "", true, nil
	}
	return *parentID, true, nil
}
