package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type employeeRepositoryImpl struct {
	db *database.DB
}

func NewEmployeeRepository(db *database.DB) employee.EmployeeRepository {
	return &employeeRepositoryImpl{db: db}
}

const employeeColumns = `id, user_id, company_id, department_id, employee_code, full_name, hire_date,
	resignation_date, employment_type, employment_status, created_at, updated_at`

// GetByID implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) GetByID(ctx context.Context, companyID, id string) (employee.Employee, error) {
	return e.get(ctx, companyID, id, "")
}

// GetByIDForUpdate implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) GetByIDForUpdate(ctx context.Context, companyID, id string) (employee.Employee, error) {
	return e.get(ctx, companyID, id, " FOR UPDATE")
}

func (e *employeeRepositoryImpl) get(ctx context.Context, companyID, id, lock string) (employee.Employee, error) {
	q := GetQuerier(ctx, e.db)

	query := `SELECT ` + employeeColumns + `
		FROM employees
		WHERE company_id = $1 AND id = $2 AND deleted_at IS NULL` + lock

	var emp employee.Employee
	err := q.QueryRow(ctx, query, companyID, id).Scan(
		&emp.ID, &emp.UserID, &emp.CompanyID, &emp.DepartmentID, &emp.EmployeeCode, &emp.FullName, &emp.HireDate,
		&emp.ResignationDate, &emp.EmploymentType, &emp.EmploymentStatus, &emp.CreatedAt, &emp.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, fmt.Errorf("failed to get employee with id %s: %w", id, err)
	}
	return emp, nil
}

// UpdateEmployment implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) UpdateEmployment(ctx context.Context, emp employee.Employee) error {
	q := GetQuerier(ctx, e.db)

	query := `
		UPDATE employees
		SET employment_type = $3, employment_status = $4, resignation_date = $5, updated_at = $6
		WHERE company_id = $1 AND id = $2 AND deleted_at IS NULL
	`

	tag, err := q.Exec(ctx, query, emp.CompanyID, emp.ID, string(emp.EmploymentType), string(emp.EmploymentStatus),
		emp.ResignationDate, emp.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update employment of employee %s: %w", emp.ID, err)
	}
	if tag.RowsAffected() != 1 {
		return employee.ErrEmployeeNotFound
	}
	return nil
}

// CountActiveByCompanyID implements employee.EmployeeRepository and
// subscription.EmployeeCounter.
func (e *employeeRepositoryImpl) CountActiveByCompanyID(ctx context.Context, companyID string) (int, error) {
	q := GetQuerier(ctx, e.db)

	query := `
		SELECT COUNT(*)
		FROM employees
		WHERE company_id = $1 AND employment_status = $2 AND deleted_at IS NULL
	`

	var count int
	if err := q.QueryRow(ctx, query, companyID, string(employee.EmploymentStatusActive)).Scan(&count); err != nil {
		return 0, fmt.Errorf("count active employees: %w", err)
	}
	return count, nil
}
