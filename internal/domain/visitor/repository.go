package visitor

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, v Visit) error
	GetByID(ctx context.Context, companyID, id string) (Visit, error)
	GetByIDForUpdate(ctx context.Context, companyID, id string) (Visit, error)
	Update(ctx context.Context, v Visit) error
	List(ctx context.Context, companyID string, filter ListFilter) ([]Visit, int64, error)

	// ListOverdueForUpdate locks scheduled visits of every company that
	// ended before cutoff. Rows locked by another sweeper are skipped.
	ListOverdueForUpdate(ctx context.Context, cutoff time.Time, limit int) ([]Visit, error)
}
