package competency

import (
	"context"

	"github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/tenant"
)

type Service interface {
	Assign(ctx context.Context, tc tenant.Context, req AssignRequest) (AssignmentResponse, error)
	Unassign(ctx context.Context, tc tenant.Context, id string) error
	ListByEmployee(ctx context.Context, tc tenant.Context, employeeID string) ([]AssignmentResponse, error)

	AssignKPI(ctx context.Context, tc tenant.Context, req AssignKPIRequest) (KPIAssignmentResponse, error)
	UnassignKPI(ctx context.Context, tc tenant.Context, id string) error
	ListKPIs(ctx context.Context, tc tenant.Context, participantID string, year int) ([]KPIAssignmentResponse, error)
}
