package document

import "context"

type Repository interface {
	Create(ctx context.Context, r Request) error
	GetByID(ctx context.Context, companyID, id string) (Request, error)
	GetByIDForUpdate(ctx context.Context, companyID, id string) (Request, error)
	Update(ctx context.Context, r Request) error
	List(ctx context.Context, companyID string, filter ListFilter) ([]Request, int64, error)

	// FindOpen returns ids of pending, processing or ready requests of docType for employeeID.
	FindOpen(ctx context.Context, companyID, employeeID string, docType Type) ([]string, error)
}
