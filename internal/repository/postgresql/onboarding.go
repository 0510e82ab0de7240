package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/onboarding"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type onboardingTaskRepositoryImpl struct {
	db *database.DB
}

func NewOnboardingTaskRepository(db *database.DB) onboarding.Repository {
	return &onboardingTaskRepositoryImpl{db: db}
}

const onboardingTaskColumns = `id, company_id, employee_id, phase, title, description, due_date, status,
	started_at, completed_at, waived_by, waive_reason, created_at, updated_at`

func scanOnboardingTask(row pgx.Row) (onboarding.Task, error) {
	var t onboarding.Task
	err := row.Scan(&t.ID, &t.CompanyID, &t.EmployeeID, &t.Phase, &t.Title, &t.Description, &t.DueDate, &t.Status,
		&t.StartedAt, &t.CompletedAt, &t.WaivedBy, &t.WaiveReason, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}

// Create implements onboarding.Repository.
func (r *onboardingTaskRepositoryImpl) Create(ctx context.Context, t onboarding.Task) error {
	q := GetQuerier(ctx, r.db)
	_, err := q.Exec(ctx, `INSERT INTO onboarding_tasks (`+onboardingTaskColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		t.ID, t.CompanyID, t.EmployeeID, string(t.Phase), t.Title, t.Description, t.DueDate, string(t.Status),
		t.StartedAt, t.CompletedAt, t.WaivedBy, t.WaiveReason, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create onboarding task: %w", err)
	}
	return nil
}

// GetByIDForUpdate implements onboarding.Repository.
func (r *onboardingTaskRepositoryImpl) GetByIDForUpdate(ctx context.Context, companyID, id string) (onboarding.Task, error) {
	q := GetQuerier(ctx, r.db)
	t, err := scanOnboardingTask(q.QueryRow(ctx, `SELECT `+onboardingTaskColumns+`
		FROM onboarding_tasks WHERE company_id = $1 AND id = $2 FOR UPDATE`, companyID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return onboarding.Task{}, onboarding.ErrTaskNotFound
		}
		return onboarding.Task{}, err
	}
	return t, nil
}

// Update implements onboarding.Repository.
func (r *onboardingTaskRepositoryImpl) Update(ctx context.Context, t onboarding.Task) error {
	q := GetQuerier(ctx, r.db)
	tag, err := q.Exec(ctx, `
		UPDATE onboarding_tasks
		SET status = $3, started_at = $4, completed_at = $5, waived_by = $6, waive_reason = $7, updated_at = $8
		WHERE company_id = $1 AND id = $2
	`, t.CompanyID, t.ID, string(t.Status), t.StartedAt, t.CompletedAt, t.WaivedBy, t.WaiveReason, t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update onboarding task: %w", err)
	}
	if tag.RowsAffected() != 1 {
		return onboarding.ErrTaskNotFound
	}
	return nil
}

// ListByEmployee implements onboarding.Repository.
func (r *onboardingTaskRepositoryImpl) ListByEmployee(ctx context.Context, companyID, employeeID string, phase *onboarding.Phase) ([]onboarding.Task, error) {
	q := GetQuerier(ctx, r.db)
	query := `SELECT ` + onboardingTaskColumns + ` FROM onboarding_tasks WHERE company_id = $1 AND employee_id = $2`
	args := []interface{}{companyID, employeeID}
	if phase != nil {
		query += ` AND phase = $3`
		args = append(args, string(*phase))
	}
	rows, err := q.Query(ctx, query+` ORDER BY due_date NULLS LAST, created_at`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []onboarding.Task
	for rows.Next() {
		t, err := scanOnboardingTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// FindByTitle implements onboarding.Repository. title is already normalized.
func (r *onboardingTaskRepositoryImpl) FindByTitle(ctx context.Context, companyID, employeeID string, phase onboarding.Phase, title string) ([]string, error) {
	q := GetQuerier(ctx, r.db)
	rows, err := q.Query(ctx, `
		SELECT id FROM onboarding_tasks
		WHERE company_id = $1 AND employee_id = $2 AND phase = $3
		  AND lower(regexp_replace(btrim(title), '\s+', ' ', 'g')) = $4
	`, companyID, employeeID, string(phase), title)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}
