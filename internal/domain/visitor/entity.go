package visitor

import (
	"time"

	"github.com/cmlabs-hris/hris-lifecycle-go/internal/pkg/validator"
)

type Visit struct {
	ID             string
	CompanyID      string
	HostEmployeeID string
	VisitorName    string
	VisitorCompany *string
	Purpose        string
	ScheduledStart time.Time
	ScheduledEnd   time.Time
	Status         Status
	CheckedInAt    *time.Time
	CheckedOutAt   *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time

	HostName *string
}

func (v Visit) Range() validator.DateRange {
	return validator.DateRange{Start: v.ScheduledStart, End: v.ScheduledEnd}
}

// Apply moves v to to and stamps the matching timestamp. The move must
// already be validated by Machine.
func (v *Visit) Apply(to Status, at time.Time) {
	switch to {
	case StatusCheckedIn:
		v.CheckedInAt = &at
	case StatusCheckedOut:
		v.CheckedOutAt = &at
	}
	v.Status = to
	v.UpdatedAt = at
}
