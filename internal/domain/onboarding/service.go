package onboarding

import (
	"context"

	"github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/tenant"
)

type Service interface {
	CreateTask(ctx context.Context, tc tenant.Context, req CreateTaskRequest) (TaskResponse, error)
	ChangeStatus(ctx context.Context, tc tenant.Context, id string, req ChangeStatusRequest) (TaskResponse, error)
	ListTasks(ctx context.Context, tc tenant.Context, employeeID string, phase *Phase) ([]TaskResponse, error)
	Progress(ctx context.Context, tc tenant.Context, employeeID string) (ProgressResponse, error)
}
