package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/approval"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type approvalRepositoryImpl struct {
	db *database.DB
}

func NewApprovalRepository(db *database.DB) approval.Repository {
	return &approvalRepositoryImpl{db: db}
}

// ListApprovers implements approval.Repository.
func (r *approvalRepositoryImpl) ListApprovers(ctx context.Context, companyID, employeeID string) ([]string, error) {
	q := GetQuerier(ctx, r.db)
	query := `
		SELECT approver_user_id
		FROM employee_approvers
		WHERE company_id = $1 AND employee_id = $2
		ORDER BY level
	`
	rows, err := q.Query(ctx, query, companyID, employeeID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

// GetChain implements approval.Repository.
func (r *approvalRepositoryImpl) GetChain(ctx context.Context, companyID string, subject approval.SubjectType, subjectID string) (approval.Chain, error) {
	q := GetQuerier(ctx, r.db)
	query := `
		SELECT level, COALESCE(approver_id, ''), decision, decided_by, decided_at, note
		FROM approval_levels
		WHERE company_id = $1 AND subject_type = $2 AND subject_id = $3
		ORDER BY level
	`
	rows, err := q.Query(ctx, query, companyID, string(subject), subjectID)
	if err != nil {
		return approval.Chain{}, err
	}
	defer rows.Close()

	var chain approval.Chain
	for rows.Next() {
		var l approval.Level
		if err := rows.Scan(&l.Level, &l.ApproverID, &l.Decision, &l.DecidedBy, &l.DecidedAt, &l.Note); err != nil {
			return approval.Chain{}, err
		}
		chain.Levels = append(chain.Levels, l)
	}
	return chain, rows.Err()
}

// CreateChain implements approval.Repository.
func (r *approvalRepositoryImpl) CreateChain(ctx context.Context, companyID string, subject approval.SubjectType, subjectID string, chain approval.Chain) error {
	q := GetQuerier(ctx, r.db)

	// Resubmission replaces the previous chain.
	if _, err := q.Exec(ctx, `
		DELETE FROM approval_levels
		WHERE company_id = $1 AND subject_type = $2 AND subject_id = $3
	`, companyID, string(subject), subjectID); err != nil {
		return fmt.Errorf("reset approval chain: %w", err)
	}

	query := `
		INSERT INTO approval_levels (company_id, subject_type, subject_id, level, approver_id, decision)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6)
	`
	for _, l := range chain.Levels {
		if _, err := q.Exec(ctx, query, companyID, string(subject), subjectID, l.Level, l.ApproverID, string(l.Decision)); err != nil {
			return fmt.Errorf("create approval level %d: %w", l.Level, err)
		}
	}
	return nil
}

// SaveLevel implements approval.Repository.
func (r *approvalRepositoryImpl) SaveLevel(ctx context.Context, companyID string, subject approval.SubjectType, subjectID string, l approval.Level) error {
	q := GetQuerier(ctx, r.db)
	query := `
		UPDATE approval_levels
		SET decision = $5, decided_by = $6, decided_at = $7, note = $8
		WHERE company_id = $1 AND subject_type = $2 AND subject_id = $3 AND level = $4
	`
	tag, err := q.Exec(ctx, query, companyID, string(subject), subjectID, l.Level,
		string(l.Decision), l.DecidedBy, l.DecidedAt, l.Note)
	if err != nil {
		return fmt.Errorf("save approval level: %w", err)
	}
	if tag.RowsAffected() != 1 {
		return fmt.Errorf("approval level %d of %s %s not found", l.Level, subject, subjectID)
	}
	return nil
}
