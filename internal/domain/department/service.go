package department

import (
	"context"

	"github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/tenant"
)

type Service interface {
	Create(ctx context.Context, tc tenant.Context, req CreateRequest) (Response, error)
	Rename(ctx context.Context, tc tenant.Context, id string, req RenameRequest) (Response, error)
	Move(ctx context.Context, tc tenant.Context, id string, req MoveRequest) (Response, error)
	List(ctx context.Context, tc tenant.Context) ([]Response, error)
}
