package evaluation

import (
	"context"

	"github.com/cmlabs-hris/hris-lifecycle-go/internal/pkg/validator"
)

type Repository interface {
	Create(ctx context.Context, e Evaluation) error
	GetByID(ctx context.Context, companyID, id string) (Evaluation, error)
	GetByIDForUpdate(ctx context.Context, companyID, id string) (Evaluation, error)
	Update(ctx context.Context, e Evaluation) error
	List(ctx context.Context, companyID string, filter ListFilter) ([]Evaluation, int64, error)

	// ListRanges returns the periods of every evaluation of kind for employeeID.
	ListRanges(ctx context.Context, companyID, employeeID string, kind Kind) ([]validator.Ranged, error)
}
