package training

import (
	"context"

	"github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/tenant"
)

type Service interface {
	CreateSession(ctx context.Context, tc tenant.Context, req CreateSessionRequest) (SessionResponse, error)
	ChangeSessionStatus(ctx context.Context, tc tenant.Context, id string, req ChangeStatusRequest) (SessionResponse, error)
	GetSession(ctx context.Context, tc tenant.Context, id string) (SessionResponse, error)
	ListSessions(ctx context.Context, tc tenant.Context, filter ListFilter) (ListSessionsResponse, error)

	Enroll(ctx context.Context, tc tenant.Context, sessionID string, req EnrollRequest) (EnrollmentResponse, error)
	CancelEnrollment(ctx context.Context, tc tenant.Context, id string) (EnrollmentResponse, error)
	CompleteEnrollment(ctx context.Context, tc tenant.Context, id string) (EnrollmentResponse, error)
}
