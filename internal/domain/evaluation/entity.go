package evaluation

import (
	"time"

	"github.com/cmlabs-hris/hris-lifecycle-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

type Evaluation struct {
	ID             string
	CompanyID      string
	EmployeeID     string
	EvaluatorID    string // user id
	Kind           Kind
	PeriodStart    time.Time
	PeriodEnd      time.Time
	Score          *decimal.Decimal
	Comments       *string
	Recommendation *Recommendation
	Status         Status
	SubmittedAt    *time.Time
	AcknowledgedAt *time.Time
	ClosedAt       *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time

	EmployeeName *string
}

func (e Evaluation) Range() validator.DateRange {
	return validator.DateRange{Start: e.PeriodStart, End: e.PeriodEnd}
}

// Regularizes reports whether closing e should make the employee permanent.
func (e Evaluation) Regularizes() bool {
	return e.Kind == KindProbationary && e.Recommendation != nil && *e.Recommendation == RecommendRegularize
}

var maxScore = decimal.NewFromInt(100)
