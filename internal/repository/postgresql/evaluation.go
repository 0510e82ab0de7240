package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/evaluation"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/pkg/validator"
	"github.com/jackc/pgx/v5"
)

type evaluationRepositoryImpl struct {
	db *database.DB
}

func NewEvaluationRepository(db *database.DB) evaluation.Repository {
	return &evaluationRepositoryImpl{db: db}
}

const evaluationSelect = `
	SELECT ev.id, ev.company_id, ev.employee_id, ev.evaluator_id, ev.kind, ev.period_start, ev.period_end,
		   ev.score, ev.comments, ev.recommendation, ev.status, ev.submitted_at, ev.acknowledged_at, ev.closed_at,
		   ev.created_at, ev.updated_at, e.full_name
	FROM evaluations ev
	JOIN employees e ON e.id = ev.employee_id`

func scanEvaluation(row pgx.Row) (evaluation.Evaluation, error) {
	var ev evaluation.Evaluation
	err := row.Scan(&ev.ID, &ev.CompanyID, &ev.EmployeeID, &ev.EvaluatorID, &ev.Kind, &ev.PeriodStart, &ev.PeriodEnd,
		&ev.Score, &ev.Comments, &ev.Recommendation, &ev.Status, &ev.SubmittedAt, &ev.AcknowledgedAt, &ev.ClosedAt,
		&ev.CreatedAt, &ev.UpdatedAt, &ev.EmployeeName)
	return ev, err
}

// Create implements evaluation.Repository.
func (r *evaluationRepositoryImpl) Create(ctx context.Context, ev evaluation.Evaluation) error {
	q := GetQuerier(ctx, r.db)
	_, err := q.Exec(ctx, `
		INSERT INTO evaluations (
			id, company_id, employee_id, evaluator_id, kind, period_start, period_end,
			score, comments, recommendation, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`, ev.ID, ev.CompanyID, ev.EmployeeID, ev.EvaluatorID, string(ev.Kind), ev.PeriodStart, ev.PeriodEnd,
		ev.Score, ev.Comments, ev.Recommendation, string(ev.Status), ev.CreatedAt, ev.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create evaluation: %w", err)
	}
	return nil
}

// GetByID implements evaluation.Repository.
func (r *evaluationRepositoryImpl) GetByID(ctx context.Context, companyID, id string) (evaluation.Evaluation, error) {
	return r.get(ctx, companyID, id, "")
}

// GetByIDForUpdate implements evaluation.Repository.
func (r *evaluationRepositoryImpl) GetByIDForUpdate(ctx context.Context, companyID, id string) (evaluation.Evaluation, error) {
	return r.get(ctx, companyID, id, " FOR UPDATE OF ev")
}

func (r *evaluationRepositoryImpl) get(ctx context.Context, companyID, id, lock string) (evaluation.Evaluation, error) {
	q := GetQuerier(ctx, r.db)
	ev, err := scanEvaluation(q.QueryRow(ctx, evaluationSelect+` WHERE ev.company_id = $1 AND ev.id = $2`+lock, companyID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return evaluation.Evaluation{}, evaluation.ErrEvaluationNotFound
		}
		return evaluation.Evaluation{}, err
	}
	return ev, nil
}

// Update implements evaluation.Repository.
func (r *evaluationRepositoryImpl) Update(ctx context.Context, ev evaluation.Evaluation) error {
	q := GetQuerier(ctx, r.db)
	tag, err := q.Exec(ctx, `
		UPDATE evaluations
		SET period_start = $3, period_end = $4, score = $5, comments = $6, recommendation = $7, status = $8,
			submitted_at = $9, acknowledged_at = $10, closed_at = $11, updated_at = $12
		WHERE company_id = $1 AND id = $2
	`, ev.CompanyID, ev.ID, ev.PeriodStart, ev.PeriodEnd, ev.Score, ev.Comments, ev.Recommendation, string(ev.Status),
		ev.SubmittedAt, ev.AcknowledgedAt, ev.ClosedAt, ev.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update evaluation: %w", err)
	}
	if tag.RowsAffected() != 1 {
		return evaluation.ErrEvaluationNotFound
	}
	return nil
}

// List implements evaluation.Repository.
func (r *evaluationRepositoryImpl) List(ctx context.Context, companyID string, filter evaluation.ListFilter) ([]evaluation.Evaluation, int64, error) {
	q := GetQuerier(ctx, r.db)

	whereClauses := []string{"ev.company_id = $1"}
	args := []interface{}{companyID}
	argIdx := 2
	if filter.EmployeeID != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("ev.employee_id = $%d", argIdx))
		args = append(args, *filter.EmployeeID)
		argIdx++
	}
	if filter.Kind != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("ev.kind = $%d", argIdx))
		args = append(args, string(*filter.Kind))
		argIdx++
	}
	if filter.Status != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("ev.status = $%d", argIdx))
		args = append(args, string(*filter.Status))
		argIdx++
	}
	where := " WHERE " + strings.Join(whereClauses, " AND ")

	var total int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM evaluations ev`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count evaluations: %w", err)
	}

	query := evaluationSelect + where + fmt.Sprintf(" ORDER BY ev.period_start DESC LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]evaluation.Evaluation, 0)
	for rows.Next() {
		ev, err := scanEvaluation(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, ev)
	}
	return out, total, rows.Err()
}

// ListRanges implements evaluation.Repository.
func (r *evaluationRepositoryImpl) ListRanges(ctx context.Context, companyID, employeeID string, kind evaluation.Kind) ([]validator.Ranged, error) {
	q := GetQuerier(ctx, r.db)
	rows, err := q.Query(ctx, `
		SELECT id, period_start, period_end FROM evaluations
		WHERE company_id = $1 AND employee_id = $2 AND kind = $3
	`, companyID, employeeID, string(kind))
	return collectRanges(rows, err)
}
