package evaluation

import (
	"context"

	"github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/tenant"
)

type Service interface {
	Create(ctx context.Context, tc tenant.Context, req CreateRequest) (Response, error)
	Update(ctx context.Context, tc tenant.Context, id string, req UpdateRequest) (Response, error)
	ChangeStatus(ctx context.Context, tc tenant.Context, id string, req ChangeStatusRequest) (Response, error)
	Get(ctx context.Context, tc tenant.Context, id string) (Response, error)
	List(ctx context.Context, tc tenant.Context, filter ListFilter) (ListResponse, error)
}
