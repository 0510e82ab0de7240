package visitor

import (
	"context"
	"time"

	"github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/tenant"
)

type Service interface {
	Create(ctx context.Context, tc tenant.Context, req CreateRequest) (Response, error)
	ChangeStatus(ctx context.Context, tc tenant.Context, id string, req ChangeStatusRequest) (Response, error)
	Get(ctx context.Context, tc tenant.Context, id string) (Response, error)
	List(ctx context.Context, tc tenant.Context, filter ListFilter) (ListResponse, error)

	// SweepNoShows marks overdue scheduled visits as no_show and returns how many moved.
	SweepNoShows(ctx context.Context, cutoff time.Time) (int, error)
}
