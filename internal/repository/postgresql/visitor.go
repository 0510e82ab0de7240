package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/visitor"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type visitRepositoryImpl struct {
	db *database.DB
}

func NewVisitRepository(db *database.DB) visitor.Repository {
	return &visitRepositoryImpl{db: db}
}

const visitSelect = `
	SELECT v.id, v.company_id, v.host_employee_id, v.visitor_name, v.visitor_company, v.purpose,
		   v.scheduled_start, v.scheduled_end, v.status, v.checked_in_at, v.checked_out_at,
		   v.created_at, v.updated_at, e.full_name
	FROM visits v
	JOIN employees e ON e.id = v.host_employee_id`

func scanVisit(row pgx.Row) (visitor.Visit, error) {
	var v visitor.Visit
	err := row.Scan(&v.ID, &v.CompanyID, &v.HostEmployeeID, &v.VisitorName, &v.VisitorCompany, &v.Purpose,
		&v.ScheduledStart, &v.ScheduledEnd, &v.Status, &v.CheckedInAt, &v.CheckedOutAt,
		&v.CreatedAt, &v.UpdatedAt, &v.HostName)
	return v, err
}

func collectVisits(rows pgx.Rows) ([]visitor.Visit, error) {
	defer rows.Close()
	out := make([]visitor.Visit, 0)
	for rows.Next() {
		v, err := scanVisit(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// Create implements visitor.Repository.
func (r *visitRepositoryImpl) Create(ctx context.Context, v visitor.Visit) error {
	q := GetQuerier(ctx, r.db)
	_, err := q.Exec(ctx, `
		INSERT INTO visits (
			id, company_id, host_employee_id, visitor_name, visitor_company, purpose,
			scheduled_start, scheduled_end, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, v.ID, v.CompanyID, v.HostEmployeeID, v.VisitorName, v.VisitorCompany, v.Purpose,
		v.ScheduledStart, v.ScheduledEnd, string(v.Status), v.CreatedAt, v.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create visit: %w", err)
	}
	return nil
}

// GetByID implements visitor.Repository.
func (r *visitRepositoryImpl) GetByID(ctx context.Context, companyID, id string) (visitor.Visit, error) {
	return r.get(ctx, companyID, id, "")
}

// GetByIDForUpdate implements visitor.Repository.
func (r *visitRepositoryImpl) GetByIDForUpdate(ctx context.Context, companyID, id string) (visitor.Visit, error) {
	return r.get(ctx, companyID, id, " FOR UPDATE OF v")
}

func (r *visitRepositoryImpl) get(ctx context.Context, companyID, id, lock string) (visitor.Visit, error) {
	q := GetQuerier(ctx, r.db)
	v, err := scanVisit(q.QueryRow(ctx, visitSelect+` WHERE v.company_id = $1 AND v.id = $2`+lock, companyID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return visitor.Visit{}, visitor.ErrVisitNotFound
		}
		return visitor.Visit{}, err
	}
	return v, nil
}

// Update implements visitor.Repository.
func (r *visitRepositoryImpl) Update(ctx context.Context, v visitor.Visit) error {
	q := GetQuerier(ctx, r.db)
	tag, err := q.Exec(ctx, `
		UPDATE visits SET status = $3, checked_in_at = $4, checked_out_at = $5, updated_at = $6
		WHERE company_id = $1 AND id = $2
	`, v.CompanyID, v.ID, string(v.Status), v.CheckedInAt, v.CheckedOutAt, v.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update visit: %w", err)
	}
	if tag.RowsAffected() != 1 {
		return visitor.ErrVisitNotFound
	}
	return nil
}

// List implements visitor.Repository.
func (r *visitRepositoryImpl) List(ctx context.Context, companyID string, filter visitor.ListFilter) ([]visitor.Visit, int64, error) {
	q := GetQuerier(ctx, r.db)

	whereClauses := []string{"v.company_id = $1"}
	args := []interface{}{companyID}
	argIdx := 2
	if filter.HostEmployeeID != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("v.host_employee_id = $%d", argIdx))
		args = append(args, *filter.HostEmployeeID)
		argIdx++
	}
	if filter.Status != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("v.status = $%d", argIdx))
		args = append(args, string(*filter.Status))
		argIdx++
	}
	if filter.From != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("v.scheduled_end >= $%d", argIdx))
		args = append(args, *filter.From)
		argIdx++
	}
	if filter.To != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("v.scheduled_start <= $%d", argIdx))
		args = append(args, *filter.To)
		argIdx++
	}
	where := " WHERE " + strings.Join(whereClauses, " AND ")

	var total int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM visits v`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count visits: %w", err)
	}

	query := visitSelect + where + fmt.Sprintf(" ORDER BY v.scheduled_start LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	visits, err := collectVisits(rows)
	return visits, total, err
}

// ListOverdueForUpdate implements visitor.Repository.
func (r *visitRepositoryImpl) ListOverdueForUpdate(ctx context.Context, cutoff time.Time, limit int) ([]visitor.Visit, error) {
	q := GetQuerier(ctx, r.db)
	rows, err := q.Query(ctx, visitSelect+`
		WHERE v.status = $1 AND v.scheduled_end < $2
		ORDER BY v.scheduled_end
		LIMIT $3
		FOR UPDATE OF v SKIP LOCKED`, string(visitor.StatusScheduled), cutoff, limit)
	if err != nil {
		return nil, err
	}
	return collectVisits(rows)
}
