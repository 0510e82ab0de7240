package training

import (
	"context"

	"github.com/cmlabs-hris/hris-lifecycle-go/internal/pkg/validator"
)

type SessionRepository interface {
	Create(ctx context.Context, s Session) error
	GetByID(ctx context.Context, companyID, id string) (Session, error)
	GetByIDForUpdate(ctx context.Context, companyID, id string) (Session, error)
	Update(ctx context.Context, s Session) error
	List(ctx context.Context, companyID string, filter ListFilter) ([]Session, int64, error)
}

type EnrollmentRepository interface {
	Create(ctx context.Context, e Enrollment) error
	GetByID(ctx context.Context, companyID, id string) (Enrollment, error)
	GetByIDForUpdate(ctx context.Context, companyID, id string) (Enrollment, error)
	Update(ctx context.Context, e Enrollment) error
	ListBySession(ctx context.Context, companyID, sessionID string) ([]Enrollment, error)

	// FindActive returns ids of waitlisted or confirmed enrollments of employeeID in sessionID.
	FindActive(ctx context.Context, companyID, sessionID, employeeID string) ([]string, error)

	// ListConfirmedRanges returns the time ranges of live sessions employeeID holds a seat in.
	ListConfirmedRanges(ctx context.Context, companyID, employeeID string) ([]validator.Ranged, error)
}
