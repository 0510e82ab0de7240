package overtime

import (
	"context"

	"github.com/cmlabs-hris/hris-lifecycle-go/internal/pkg/validator"
)

type Repository interface {
	Create(ctx context.Context, r OvertimeRequest) error
	GetByID(ctx context.Context, companyID, id string) (OvertimeRequest, error)
	GetByIDForUpdate(ctx context.Context, companyID, id string) (OvertimeRequest, error)
	Update(ctx context.Context, r OvertimeRequest) error
	List(ctx context.Context, companyID string, filter ListFilter) ([]OvertimeRequest, int64, error)
	// ListActiveRanges returns pending and approved requests of an employee.
	ListActiveRanges(ctx context.Context, companyID, employeeID string) ([]validator.Ranged, error)
	// LockEmployee holds the employee's overtime lock until the transaction ends.
	LockEmployee(ctx context.Context, companyID, employeeID string) error
}
