package overtime

import (
	"time"

	"github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/approval"
	"github.com/shopspring/decimal"
)

// MaxDuration caps a single overtime request.
const MaxDuration = 12 * time.Hour

type OvertimeRequest struct {
	ID         string
	CompanyID  string
	EmployeeID string
	StartsAt   time.Time
	EndsAt     time.Time
	Reason     string
	Status     RequestStatus

	DecidedAt   *time.Time
	CancelledAt *time.Time

	Chain approval.Chain

	CreatedAt time.Time
	UpdatedAt time.Time

	EmployeeName *string
}

// Hours is the requested duration in hours, two decimals.
func (r OvertimeRequest) Hours() decimal.Decimal {
	return decimal.NewFromFloat(r.EndsAt.Sub(r.StartsAt).Hours()).Round(2)
}
