package leave

import (
	"context"

	"github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/tenant"
)

type Service interface {
	CreateApplication(ctx context.Context, tc tenant.Context, req CreateApplicationRequest) (ApplicationResponse, error)
	UpdateDraft(ctx context.Context, tc tenant.Context, id string, req UpdateApplicationRequest) (ApplicationResponse, error)
	Submit(ctx context.Context, tc tenant.Context, id string) (ApplicationResponse, error)
	Approve(ctx context.Context, tc tenant.Context, id string, req DecisionRequest) (ApplicationResponse, error)
	Reject(ctx context.Context, tc tenant.Context, id string, req DecisionRequest) (ApplicationResponse, error)
	Cancel(ctx context.Context, tc tenant.Context, id string, req CancelRequest) (ApplicationResponse, error)
	GetApplication(ctx context.Context, tc tenant.Context, id string) (ApplicationResponse, error)
	ListApplications(ctx context.Context, tc tenant.Context, filter ListApplicationsFilter) (ListApplicationsResponse, error)

	AdjustBalance(ctx context.Context, tc tenant.Context, req AdjustBalanceRequest) (BalanceResponse, error)
	GetBalances(ctx context.Context, tc tenant.Context, employeeID string, year int) ([]BalanceResponse, error)
}
