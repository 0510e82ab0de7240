package goal

import (
	"context"

	"github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/tenant"
)

type Service interface {
	Create(ctx context.Context, tc tenant.Context, req CreateRequest) (Response, error)
	Move(ctx context.Context, tc tenant.Context, id string, req MoveRequest) (Response, error)
	ChangeStatus(ctx context.Context, tc tenant.Context, id string, req ChangeStatusRequest) (Response, error)
	Get(ctx context.Context, tc tenant.Context, id string) (Response, error)
	ListByEmployee(ctx context.Context, tc tenant.Context, employeeID string) ([]Response, error)
}
