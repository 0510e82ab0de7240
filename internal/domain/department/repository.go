package department

import "context"

type Repository interface {
	Create(ctx context.Context, d Department) error
	GetByID(ctx context.Context, companyID, id string) (Department, error)
	GetByIDForUpdate(ctx context.Context, companyID, id string) (Department, error)
	Update(ctx context.Context, d Department) error
	List(ctx context.Context, companyID string) ([]Department, error)

	// FindByName matches NormalizeName(name) among children of parentID ("" for roots).
	FindByName(ctx context.Context, companyID, parentID, name string) ([]string, error)

	ParentOf(ctx context.Context, companyID, id string) (string, bool, error)

	// LockTree serializes structural changes of one company's tree until commit.
	LockTree(ctx context.Context, companyID string) error
}
