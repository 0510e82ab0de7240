package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/department"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type departmentRepositoryImpl struct {
	db *database.DB
}

func NewDepartmentRepository(db *database.DB) department.Repository {
	return &departmentRepositoryImpl{db: db}
}

const departmentColumns = `id, company_id, name, parent_id, created_at, updated_at`

func scanDepartment(row pgx.Row) (department.Department, error) {
	var d department.Department
	err := row.Scan(&d.ID, &d.CompanyID, &d.Name, &d.ParentID, &d.CreatedAt, &d.UpdatedAt)
	return d, err
}

// Create implements department.Repository.
func (r *departmentRepositoryImpl) Create(ctx context.Context, d department.Department) error {
	q := GetQuerier(ctx, r.db)
	_, err := q.Exec(ctx, `INSERT INTO departments (`+departmentColumns+`) VALUES ($1, $2, $3, $4, $5, $6)`,
		d.ID, d.CompanyID, d.Name, d.ParentID, d.CreatedAt, d.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create department: %w", err)
	}
	return nil
}

// GetByID implements department.Repository.
func (r *departmentRepositoryImpl) GetByID(ctx context.Context, companyID, id string) (department.Department, error) {
	return r.get(ctx, companyID, id, "")
}

// GetByIDForUpdate implements department.Repository.
func (r *departmentRepositoryImpl) GetByIDForUpdate(ctx context.Context, companyID, id string) (department.Department, error) {
	return r.get(ctx, companyID, id, " FOR UPDATE")
}

func (r *departmentRepositoryImpl) get(ctx context.Context, companyID, id, lock string) (department.Department, error) {
	q := GetQuerier(ctx, r.db)
	d, err := scanDepartment(q.QueryRow(ctx, `SELECT `+departmentColumns+` FROM departments
		WHERE company_id = $1 AND id = $2 AND deleted_at IS NULL`+lock, companyID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return department.Department{}, department.ErrDepartmentNotFound
		}
		return department.Department{}, err
	}
	return d, nil
}

// Update implements department.Repository.
func (r *departmentRepositoryImpl) Update(ctx context.Context, d department.Department) error {
	q := GetQuerier(ctx, r.db)
	tag, err := q.Exec(ctx, `
		UPDATE departments SET name = $3, parent_id = $4, updated_at = $5
		WHERE company_id = $1 AND id = $2 AND deleted_at IS NULL
	`, d.CompanyID, d.ID, d.Name, d.ParentID, d.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update department: %w", err)
	}
	if tag.RowsAffected() != 1 {
		return department.ErrDepartmentNotFound
	}
	return nil
}

// List implements department.Repository.
func (r *departmentRepositoryImpl) List(ctx context.Context, companyID string) ([]department.Department, error) {
	q := GetQuerier(ctx, r.db)
	rows, err := q.Query(ctx, `SELECT `+departmentColumns+` FROM departments
		WHERE company_id = $1 AND deleted_at IS NULL ORDER BY name`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []department.Department
	for rows.Next() {
		d, err := scanDepartment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// FindByName implements department.Repository.
func (r *departmentRepositoryImpl) FindByName(ctx context.Context, companyID, parentID, name string) ([]string, error) {
	q := GetQuerier(ctx, r.db)
	rows, err := q.Query(ctx, `
		SELECT id FROM departments
		WHERE company_id = $1 AND deleted_at IS NULL
			AND parent_id IS NOT DISTINCT FROM NULLIF($2, '')::uuid
			AND lower(regexp_replace(btrim(name), '\s+', ' ', 'g')) = $3
	`, companyID, parentID, name)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

// ParentOf implements department.Repository.
func (r *departmentRepositoryImpl) ParentOf(ctx context.Context, companyID, id string) (string, bool, error) {
	return parentOf(ctx, GetQuerier(ctx, r.db), "departments", companyID, id)
}

// LockTree implements department.Repository.
func (r *departmentRepositoryImpl) LockTree(ctx context.Context, companyID string) error {
	q := GetQuerier(ctx, r.db)
	if _, err := q.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext('departments:' || $1::text))`, companyID); err != nil {
		return fmt.Errorf("lock department tree: %w", err)
	}
	return nil
}
