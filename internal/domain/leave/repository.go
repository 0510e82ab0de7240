package leave

import (
	"context"

	"github.com/cmlabs-hris/hris-lifecycle-go/internal/pkg/validator"
)

// LeaveTypeRepository - interface for leave_types table
type LeaveTypeRepository interface {
	GetByID(ctx context.Context, companyID, id string) (LeaveType, error)
}

// BalanceRepository - interface for leave_balances and leave_balance_entries tables
type BalanceRepository interface {
	// GetForUpdate locks the balance row until the surrounding transaction ends.
	GetForUpdate(ctx context.Context, companyID, employeeID, leaveTypeID string, year int) (LeaveBalance, error)
	ListByEmployee(ctx context.Context, companyID, employeeID string, year int) ([]LeaveBalance, error)
	Update(ctx context.Context, balance LeaveBalance) error
	AppendEntry(ctx context.Context, entry BalanceEntry) error
}

// ApplicationRepository - interface for leave_applications table
type ApplicationRepository interface {
	Create(ctx context.Context, app LeaveApplication) error
	GetByID(ctx context.Context, companyID, id string) (LeaveApplication, error)
	GetByIDForUpdate(ctx context.Context, companyID, id string) (LeaveApplication, error)
	Update(ctx context.Context, app LeaveApplication) error
	List(ctx context.Context, companyID string, filter ListApplicationsFilter) ([]LeaveApplication, int64, error)
	// ListActiveRanges returns pending and approved applications of an employee.
	ListActiveRanges(ctx context.Context, companyID, employeeID string) ([]validator.Ranged, error)
	// LockEmployee serializes submissions of one employee across leave types
	// until the transaction ends.
	LockEmployee(ctx context.Context, companyID, employeeID string) error
}
