package competency

import "context"

type Repository interface {
	CreateAssignment(ctx context.Context, a Assignment) error
	DeleteAssignment(ctx context.Context, companyID, id string) error
	ListAssignments(ctx context.Context, companyID, employeeID string) ([]Assignment, error)
	FindAssignment(ctx context.Context, companyID, employeeID, competencyID string, level int) ([]string, error)

	CreateKPIAssignment(ctx context.Context, a KPIAssignment) error
	DeleteKPIAssignment(ctx context.Context, companyID, id string) error
	ListKPIAssignments(ctx context.Context, companyID, participantID string, year int) ([]KPIAssignment, error)
	FindKPIAssignment(ctx context.Context, companyID, templateID, participantID string, year int) ([]string, error)
}
