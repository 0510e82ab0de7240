package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/overtime"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/pkg/validator"
	"github.com/jackc/pgx/v5"
)

type overtimeRepositoryImpl struct {
	db *database.DB
}

func NewOvertimeRepository(db *database.DB) overtime.Repository {
	return &overtimeRepositoryImpl{db: db}
}

const overtimeSelect = `
	SELECT o.id, o.company_id, o.employee_id, o.starts_at, o.ends_at, o.reason,
		   o.status, o.decided_at, o.cancelled_at, o.created_at, o.updated_at,
		   e.full_name
	FROM overtime_requests o
	JOIN employees e ON e.id = o.employee_id`

func scanOvertime(row pgx.Row) (overtime.OvertimeRequest, error) {
	var r overtime.OvertimeRequest
	err := row.Scan(
		&r.ID, &r.CompanyID, &r.EmployeeID, &r.StartsAt, &r.EndsAt, &r.Reason,
		&r.Status, &r.DecidedAt, &r.CancelledAt, &r.CreatedAt, &r.UpdatedAt,
		&r.EmployeeName,
	)
	return r, err
}

// Create implements overtime.Repository.
func (r *overtimeRepositoryImpl) Create(ctx context.Context, o overtime.OvertimeRequest) error {
	q := GetQuerier(ctx, r.db)
	query := `
		INSERT INTO overtime_requests (id, company_id, employee_id, starts_at, ends_at, reason, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	if _, err := q.Exec(ctx, query, o.ID, o.CompanyID, o.EmployeeID, o.StartsAt, o.EndsAt, o.Reason, string(o.Status), o.CreatedAt, o.UpdatedAt); err != nil {
		return fmt.Errorf("create overtime request: %w", err)
	}
	return nil
}

// GetByID implements overtime.Repository.
func (r *overtimeRepositoryImpl) GetByID(ctx context.Context, companyID, id string) (overtime.OvertimeRequest, error) {
	return r.get(ctx, companyID, id, "")
}

// GetByIDForUpdate implements overtime.Repository.
func (r *overtimeRepositoryImpl) GetByIDForUpdate(ctx context.Context, companyID, id string) (overtime.OvertimeRequest, error) {
	return r.get(ctx, companyID, id, " FOR UPDATE OF o")
}

func (r *overtimeRepositoryImpl) get(ctx context.Context, companyID, id, lock string) (overtime.OvertimeRequest, error) {
	q := GetQuerier(ctx, r.db)
	o, err := scanOvertime(q.QueryRow(ctx, overtimeSelect+` WHERE o.company_id = $1 AND o.id = $2`+lock, companyID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return overtime.OvertimeRequest{}, overtime.ErrOvertimeRequestNotFound
		}
		return overtime.OvertimeRequest{}, err
	}
	return o, nil
}

// Update implements overtime.Repository.
func (r *overtimeRepositoryImpl) Update(ctx context.Context, o overtime.OvertimeRequest) error {
	q := GetQuerier(ctx, r.db)
	query := `
		UPDATE overtime_requests
		SET status = $3, decided_at = $4, cancelled_at = $5, updated_at = $6
		WHERE company_id = $1 AND id = $2
	`
	tag, err := q.Exec(ctx, query, o.CompanyID, o.ID, string(o.Status), o.DecidedAt, o.CancelledAt, o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update overtime request: %w", err)
	}
	if tag.RowsAffected() != 1 {
		return overtime.ErrOvertimeRequestNotFound
	}
	return nil
}

// List implements overtime.Repository.
func (r *overtimeRepositoryImpl) List(ctx context.Context, companyID string, filter overtime.ListFilter) ([]overtime.OvertimeRequest, int64, error) {
	q := GetQuerier(ctx, r.db)

	whereClauses := []string{"o.company_id = $1"}
	args := []interface{}{companyID}
	argIdx := 2
	if filter.EmployeeID != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("o.employee_id = $%d", argIdx))
		args = append(args, filter.EmployeeID)
		argIdx++
	}
	if filter.Status != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("o.status = $%d", argIdx))
		args = append(args, string(*filter.Status))
		argIdx++
	}
	where := " WHERE " + strings.Join(whereClauses, " AND ")

	var total int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM overtime_requests o`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count overtime requests: %w", err)
	}

	query := overtimeSelect + where + fmt.Sprintf(" ORDER BY o.starts_at DESC LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]overtime.OvertimeRequest, 0)
	for rows.Next() {
		o, err := scanOvertime(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, o)
	}
	return out, total, rows.Err()
}

// ListActiveRanges implements overtime.Repository.
func (r *overtimeRepositoryImpl) ListActiveRanges(ctx context.Context, companyID, employeeID string) ([]validator.Ranged, error) {
	q := GetQuerier(ctx, r.db)
	query := `
		SELECT id, starts_at, ends_at
		FROM overtime_requests
		WHERE company_id = $1 AND employee_id = $2 AND status = ANY($3)
	`
	return collectRanges(q.Query(ctx, query, companyID, employeeID, statusStrings(overtime.ActiveStatuses)))
}

// LockEmployee implements overtime.Repository.
func (r *overtimeRepositoryImpl) LockEmployee(ctx context.Context, companyID, employeeID string) error {
	q := GetQuerier(ctx, r.db)
	if _, err := q.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext('overtime_requests:' || $1::text || ':' || $2::text))`, companyID, employeeID); err != nil {
		return fmt.Errorf("lock employee overtime: %w", err)
	}
	return nil
}

// collectRanges scans (id, start, end) rows.
func collectRanges(rows pgx.Rows, err error) ([]validator.Ranged, error) {
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []validator.Ranged
	for rows.Next() {
		var rg validator.Ranged
		if err := rows.Scan(&rg.ID, &rg.Range.Start, &rg.Range.End); err != nil {
			return nil, err
		}
		out = append(out, rg)
	}
	return out, rows.Err()
}
