package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/document"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type documentRequestRepositoryImpl struct {
	db *database.DB
}

func NewDocumentRequestRepository(db *database.DB) document.Repository {
	return &documentRequestRepositoryImpl{db: db}
}

const documentRequestSelect = `
	SELECT dr.id, dr.company_id, dr.employee_id, dr.document_type, dr.purpose, dr.status, dr.handled_by,
		   dr.rejection_reason, dr.released_at, dr.created_at, dr.updated_at, e.full_name
	FROM document_requests dr
	JOIN employees e ON e.id = dr.employee_id`

func scanDocumentRequest(row pgx.Row) (document.Request, error) {
	var r document.Request
	err := row.Scan(&r.ID, &r.CompanyID, &r.EmployeeID, &r.DocumentType, &r.Purpose, &r.Status, &r.HandledBy,
		&r.RejectionReason, &r.ReleasedAt, &r.CreatedAt, &r.UpdatedAt, &r.EmployeeName)
	return r, err
}

// Create implements document.Repository.
func (d *documentRequestRepositoryImpl) Create(ctx context.Context, r document.Request) error {
	q := GetQuerier(ctx, d.db)
	_, err := q.Exec(ctx, `
		INSERT INTO document_requests (id, company_id, employee_id, document_type, purpose, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, r.ID, r.CompanyID, r.EmployeeID, string(r.DocumentType), r.Purpose, string(r.Status), r.CreatedAt, r.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create document request: %w", err)
	}
	return nil
}

// GetByID implements document.Repository.
func (d *documentRequestRepositoryImpl) GetByID(ctx context.Context, companyID, id string) (document.Request, error) {
	return d.get(ctx, companyID, id, "")
}

// GetByIDForUpdate implements document.Repository.
func (d *documentRequestRepositoryImpl) GetByIDForUpdate(ctx context.Context, companyID, id string) (document.Request, error) {
	return d.get(ctx, companyID, id, " FOR UPDATE OF dr")
}

func (d *documentRequestRepositoryImpl) get(ctx context.Context, companyID, id, lock string) (document.Request, error) {
	q := GetQuerier(ctx, d.db)
	r, err := scanDocumentRequest(q.QueryRow(ctx, documentRequestSelect+` WHERE dr.company_id = $1 AND dr.id = $2`+lock, companyID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return document.Request{}, document.ErrRequestNotFound
		}
		return document.Request{}, err
	}
	return r, nil
}

// Update implements document.Repository.
func (d *documentRequestRepositoryImpl) Update(ctx context.Context, r document.Request) error {
	q := GetQuerier(ctx, d.db)
	tag, err := q.Exec(ctx, `
		UPDATE document_requests
		SET status = $3, handled_by = $4, rejection_reason = $5, released_at = $6, updated_at = $7
		WHERE company_id = $1 AND id = $2
	`, r.CompanyID, r.ID, string(r.Status), r.HandledBy, r.RejectionReason, r.ReleasedAt, r.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update document request: %w", err)
	}
	if tag.RowsAffected() != 1 {
		return document.ErrRequestNotFound
	}
	return nil
}

// List implements document.Repository.
func (d *documentRequestRepositoryImpl) List(ctx context.Context, companyID string, filter document.ListFilter) ([]document.Request, int64, error) {
	q := GetQuerier(ctx, d.db)

	whereClauses := []string{"dr.company_id = $1"}
	args := []interface{}{companyID}
	argIdx := 2
	if filter.EmployeeID != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("dr.employee_id = $%d", argIdx))
		args = append(args, *filter.EmployeeID)
		argIdx++
	}
	if filter.Status != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("dr.status = $%d", argIdx))
		args = append(args, string(*filter.Status))
		argIdx++
	}
	where := " WHERE " + strings.Join(whereClauses, " AND ")

	var total int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM document_requests dr`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count document requests: %w", err)
	}

	query := documentRequestSelect + where + fmt.Sprintf(" ORDER BY dr.created_at DESC LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]document.Request, 0)
	for rows.Next() {
		r, err := scanDocumentRequest(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, r)
	}
	return out, total, rows.Err()
}

// FindOpen implements document.Repository.
func (d *documentRequestRepositoryImpl) FindOpen(ctx context.Context, companyID, employeeID string, docType document.Type) ([]string, error) {
	q := GetQuerier(ctx, d.db)
	rows, err := q.Query(ctx, `
		SELECT id FROM document_requests
		WHERE company_id = $1 AND employee_id = $2 AND document_type = $3 AND status = ANY($4)
	`, companyID, employeeID, string(docType), statusStrings(document.OpenStatuses))
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}
