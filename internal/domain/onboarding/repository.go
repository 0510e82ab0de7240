package onboarding

import "context"

type Repository interface {
	Create(ctx context.Context, t Task) error
	GetByIDForUpdate(ctx context.Context, companyID, id string) (Task, error)
	Update(ctx context.Context, t Task) error
	ListByEmployee(ctx context.Context, companyID, employeeID string, phase *Phase) ([]Task, error)

	// FindByTitle matches NormalizeTitle(title) within one employee and phase.
	FindByTitle(ctx context.Context, companyID, employeeID string, phase Phase, title string) ([]string, error)
}
