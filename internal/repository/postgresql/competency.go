package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/competency"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type competencyRepositoryImpl struct {
	db *database.DB
}

func NewCompetencyRepository(db *database.DB) competency.Repository {
	return &competencyRepositoryImpl{db: db}
}

// CreateAssignment implements competency.Repository.
func (r *competencyRepositoryImpl) CreateAssignment(ctx context.Context, a competency.Assignment) error {
	q := GetQuerier(ctx, r.db)
	_, err := q.Exec(ctx, `
		INSERT INTO employee_competencies (id, company_id, employee_id, competency_id, level, assigned_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, a.ID, a.CompanyID, a.EmployeeID, a.CompetencyID, a.Level, a.AssignedBy, a.CreatedAt)
	if err != nil {
		return fmt.Errorf("create competency assignment: %w", err)
	}
	return nil
}

// DeleteAssignment implements competency.Repository.
func (r *competencyRepositoryImpl) DeleteAssignment(ctx context.Context, companyID, id string) error {
	q := GetQuerier(ctx, r.db)
	tag, err := q.Exec(ctx, `DELETE FROM employee_competencies WHERE company_id = $1 AND id = $2`, companyID, id)
	if err != nil {
		return fmt.Errorf("delete competency assignment: %w", err)
	}
	if tag.RowsAffected() != 1 {
		return competency.ErrAssignmentNotFound
	}
	return nil
}

// ListAssignments implements competency.Repository.
func (r *competencyRepositoryImpl) ListAssignments(ctx context.Context, companyID, employeeID string) ([]competency.Assignment, error) {
	q := GetQuerier(ctx, r.db)
	rows, err := q.Query(ctx, `
		SELECT id, company_id, employee_id, competency_id, level, assigned_by, created_at
		FROM employee_competencies
		WHERE company_id = $1 AND employee_id = $2
		ORDER BY competency_id, level
	`, companyID, employeeID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (competency.Assignment, error) {
		var a competency.Assignment
		err := row.Scan(&a.ID, &a.CompanyID, &a.EmployeeID, &a.CompetencyID, &a.Level, &a.AssignedBy, &a.CreatedAt)
		return a, err
	})
}

// FindAssignment implements competency.Repository.
func (r *competencyRepositoryImpl) FindAssignment(ctx context.Context, companyID, employeeID, competencyID string, level int) ([]string, error) {
	q := GetQuerier(ctx, r.db)
	rows, err := q.Query(ctx, `
		SELECT id FROM employee_competencies
		WHERE company_id = $1 AND employee_id = $2 AND competency_id = $3 AND level = $4
	`, companyID, employeeID, competencyID, level)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

// CreateKPIAssignment implements competency.Repository.
func (r *competencyRepositoryImpl) CreateKPIAssignment(ctx context.Context, a competency.KPIAssignment) error {
	q := GetQuerier(ctx, r.db)
	_, err := q.Exec(ctx, `
		INSERT INTO kpi_assignments (id, company_id, template_id, participant_id, period_year, assigned_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, a.ID, a.CompanyID, a.TemplateID, a.ParticipantID, a.PeriodYear, a.AssignedBy, a.CreatedAt)
	if err != nil {
		return fmt.Errorf("create KPI assignment: %w", err)
	}
	return nil
}

// DeleteKPIAssignment implements competency.Repository.
func (r *competencyRepositoryImpl) DeleteKPIAssignment(ctx context.Context, companyID, id string) error {
	q := GetQuerier(ctx, r.db)
	tag, err := q.Exec(ctx, `DELETE FROM kpi_assignments WHERE company_id = $1 AND id = $2`, companyID, id)
	if err != nil {
		return fmt.Errorf("delete KPI assignment: %w", err)
	}
	if tag.RowsAffected() != 1 {
		return competency.ErrKPIAssignmentNotFound
	}
	return nil
}

// ListKPIAssignments implements competency.Repository. Year 0 matches all years.
func (r *competencyRepositoryImpl) ListKPIAssignments(ctx context.Context, companyID, participantID string, year int) ([]competency.KPIAssignment, error) {
	q := GetQuerier(ctx, r.db)
	rows, err := q.Query(ctx, `
		SELECT id, company_id, template_id, participant_id, period_year, assigned_by, created_at
		FROM kpi_assignments
		WHERE company_id = $1 AND participant_id = $2 AND ($3 = 0 OR period_year = $3)
		ORDER BY period_year DESC, created_at
	`, companyID, participantID, year)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (competency.KPIAssignment, error) {
		var a competency.KPIAssignment
		err := row.Scan(&a.ID, &a.CompanyID, &a.TemplateID, &a.ParticipantID, &a.PeriodYear, &a.AssignedBy, &a.CreatedAt)
		return a, err
	})
}

// FindKPIAssignment implements competency.Repository.
func (r *competencyRepositoryImpl) FindKPIAssignment(ctx context.Context, companyID, templateID, participantID string, year int) ([]string, error) {
	q := GetQuerier(ctx, r.db)
	rows, err := q.Query(ctx, `
		SELECT id FROM kpi_assignments
		WHERE company_id = $1 AND template_id = $2 AND participant_id = $3 AND period_year = $4
	`, companyID, templateID, participantID, year)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}
