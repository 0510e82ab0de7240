package payroll

import (
	"context"

	"github.com/cmlabs-hris/hris-lifecycle-go/internal/pkg/validator"
)

// PeriodRepository defines data access for payroll periods.
// All methods include companyID to prevent cross-company data access.
type PeriodRepository interface {
	Create(ctx context.Context, p PayrollPeriod) error
	GetByID(ctx context.Context, companyID, id string) (PayrollPeriod, error)
	GetByIDForUpdate(ctx context.Context, companyID, id string) (PayrollPeriod, error)
	Update(ctx context.Context, p PayrollPeriod) error
	List(ctx context.Context, companyID string, filter PeriodFilter) ([]PayrollPeriod, int64, error)

	// ListRanges returns the range of every period of the company. Periods
	// never overlap, whatever their status.
	ListRanges(ctx context.Context, companyID string) ([]validator.Ranged, error)
}

type EntryRepository interface {
	Create(ctx context.Context, e PayrollEntry) error
	GetByIDForUpdate(ctx context.Context, companyID, id string) (PayrollEntry, error)
	Update(ctx context.Context, e PayrollEntry) error
	ListByPeriod(ctx context.Context, companyID, periodID string) ([]PayrollEntry, error)

	// FindByEmployee returns ids of entries of employeeID inside periodID.
	FindByEmployee(ctx context.Context, companyID, periodID, employeeID string) ([]string, error)
}
