package employee

import (
	"context"

	"github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/tenant"
)

// EmployeeService covers the employment lifecycle of an employee record.
type EmployeeService interface {
	// GetEmployee retrieves a single employee (self or manager)
	GetEmployee(ctx context.Context, tc tenant.Context, id string) (EmployeeResponse, error)

	// ChangeEmploymentStatus records a resignation or termination (manager+ only)
	ChangeEmploymentStatus(ctx context.Context, tc tenant.Context, id string, req ChangeStatusRequest) (EmployeeResponse, error)
}
