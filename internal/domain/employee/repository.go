package employee

import "context"

type EmployeeRepository interface {
	GetByID(ctx context.Context, companyID, id string) (Employee, error)
	GetByIDForUpdate(ctx context.Context, companyID, id string) (Employee, error)

	// UpdateEmployment writes type, status and resignation date.
	UpdateEmployment(ctx context.Context, e Employee) error

	CountActiveByCompanyID(ctx context.Context, companyID string) (int, error)
}
