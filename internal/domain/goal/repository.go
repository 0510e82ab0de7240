package goal

import "context"

type Repository interface {
	Create(ctx context.Context, g Goal) error
	GetByID(ctx context.Context, companyID, id string) (Goal, error)
	GetByIDForUpdate(ctx context.Context, companyID, id string) (Goal, error)
	Update(ctx context.Context, g Goal) error
	ListChildren(ctx context.Context, companyID, parentID string) ([]Goal, error)
	ListByEmployee(ctx context.Context, companyID, employeeID string) ([]Goal, error)

	// ParentOf reports the parent id ("" for a root goal) and whether id exists.
	ParentOf(ctx context.Context, companyID, id string) (string, bool, error)

	// LockTree serializes hierarchy changes of one company until the transaction ends.
	LockTree(ctx context.Context, companyID string) error
}
