package payroll

import (
	"context"

	"github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/tenant"
)

type Service interface {
	CreatePeriod(ctx context.Context, tc tenant.Context, req CreatePeriodRequest) (PeriodResponse, error)
	ChangePeriodStatus(ctx context.Context, tc tenant.Context, id string, req ChangeStatusRequest) (PeriodResponse, error)
	GetPeriod(ctx context.Context, tc tenant.Context, id string) (PeriodResponse, error)
	ListPeriods(ctx context.Context, tc tenant.Context, filter PeriodFilter) (ListPeriodsResponse, error)

	CreateEntry(ctx context.Context, tc tenant.Context, periodID string, req EntryAmountsRequest) (EntryResponse, error)
	UpdateEntryAmounts(ctx context.Context, tc tenant.Context, id string, req EntryAmountsRequest) (EntryResponse, error)
	ChangeEntryStatus(ctx context.Context, tc tenant.Context, id string, req ChangeStatusRequest) (EntryResponse, error)
}
