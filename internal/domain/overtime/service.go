package overtime

import (
	"context"

	"github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/tenant"
)

type Service interface {
	Create(ctx context.Context, tc tenant.Context, req CreateRequest) (Response, error)
	Approve(ctx context.Context, tc tenant.Context, id string, req DecisionRequest) (Response, error)
	Reject(ctx context.Context, tc tenant.Context, id string, req DecisionRequest) (Response, error)
	Cancel(ctx context.Context, tc tenant.Context, id string) (Response, error)
	Get(ctx context.Context, tc tenant.Context, id string) (Response, error)
	List(ctx context.Context, tc tenant.Context, filter ListFilter) (ListResponse, error)
}
