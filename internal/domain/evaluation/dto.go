package evaluation

import (
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/status"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

type CreateRequest struct {
	EmployeeID     string           `json:"employee_id"`
	Kind           string           `json:"kind"`
	PeriodStart    string           `json:"period_start"`
	PeriodEnd      string           `json:"period_end"`
	Score          *decimal.Decimal `json:"score,omitempty"`
	Comments       *string          `json:"comments,omitempty"`
	Recommendation *string          `json:"recommendation,omitempty"`

	start, end time.Time
}

func (r *CreateRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidUUID(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "employee_id must be a valid UUID"})
	}
	if !Kind(r.Kind).Valid() {
		errs = append(errs, validator.ValidationError{Field: "kind", Message: "kind must be performance or probationary"})
	}
	start, end, periodErrs := parsePeriod(r.PeriodStart, r.PeriodEnd)
	errs = append(errs, periodErrs...)
	errs = append(errs, validateScoring(r.Score, r.Recommendation, Kind(r.Kind))...)

	if len(errs) > 0 {
		return errs
	}
	r.start, r.end = start, end
	return nil
}

func (r *CreateRequest) Range() validator.DateRange {
	return validator.DateRange{Start: r.start, End: r.end}
}

// UpdateRequest replaces the given fields of a draft. A period change is
// checked for overlap again.
type UpdateRequest struct {
	PeriodStart    *string          `json:"period_start,omitempty"`
	PeriodEnd      *string          `json:"period_end,omitempty"`
	Score          *decimal.Decimal `json:"score,omitempty"`
	Comments       *string          `json:"comments,omitempty"`
	Recommendation *string          `json:"recommendation,omitempty"`

	start, end time.Time
}

func (r *UpdateRequest) Validate(kind Kind) error {
	var errs validator.ValidationErrors

	if (r.PeriodStart == nil) != (r.PeriodEnd == nil) {
		errs = append(errs, validator.ValidationError{Field: "period_end", Message: "period_start and period_end must be changed together"})
	} else if r.PeriodStart != nil {
		start, end, periodErrs := parsePeriod(*r.PeriodStart, *r.PeriodEnd)
		errs = append(errs, periodErrs...)
		r.start, r.end = start, end
	}
	errs = append(errs, validateScoring(r.Score, r.Recommendation, kind)...)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (r *UpdateRequest) ChangesPeriod() bool {
	return r.PeriodStart != nil
}

func (r *UpdateRequest) Range() validator.DateRange {
	return validator.DateRange{Start: r.start, End: r.end}
}

func parsePeriod(rawStart, rawEnd string) (time.Time, time.Time, validator.ValidationErrors) {
	var errs validator.ValidationErrors
	start, okStart := validator.IsValidDate(rawStart)
	if !okStart {
		errs = append(errs, validator.ValidationError{Field: "period_start", Message: fmt.Sprintf("period_start must be in %s format", validator.DateLayout)})
	}
	end, okEnd := validator.IsValidDate(rawEnd)
	if !okEnd {
		errs = append(errs, validator.ValidationError{Field: "period_end", Message: fmt.Sprintf("period_end must be in %s format", validator.DateLayout)})
	}
	if okStart && okEnd && end.Before(start) {
		errs = append(errs, validator.ValidationError{Field: "period_end", Message: "period_end cannot be before period_start"})
	}
	return start, end, errs
}

func validateScoring(score *decimal.Decimal, recommendation *string, kind Kind) validator.ValidationErrors {
	var errs validator.ValidationErrors
	if score != nil && (score.IsNegative() || score.GreaterThan(maxScore)) {
		errs = append(errs, validator.ValidationError{Field: "score", Message: "score must be between 0 and 100"})
	}
	if recommendation != nil {
		switch {
		case kind != KindProbationary:
			errs = append(errs, validator.ValidationError{Field: "recommendation", Message: "only probationary evaluations carry a recommendation"})
		case !Recommendation(*recommendation).Valid():
			errs = append(errs, validator.ValidationError{Field: "recommendation", Message: "recommendation must be regularize, extend or terminate"})
		}
	}
	return errs
}

type ChangeStatusRequest struct {
	Status string `json:"status"`
}

func (r *ChangeStatusRequest) Validate() error {
	if validator.IsEmpty(r.Status) {
		return validator.Fail("status", "status is required")
	}
	return nil
}

type ListFilter struct {
	EmployeeID *string
	Kind       *Kind
	Status     *Status
	Page       int
	Limit      int
}

func (f *ListFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > 100 {
		f.Limit = 20
	}
}

type Response struct {
	ID             string           `json:"id"`
	EmployeeID     string           `json:"employee_id"`
	EmployeeName   *string          `json:"employee_name,omitempty"`
	EvaluatorID    string           `json:"evaluator_id"`
	Kind           Kind             `json:"kind"`
	PeriodStart    string           `json:"period_start"`
	PeriodEnd      string           `json:"period_end"`
	Score          *decimal.Decimal `json:"score,omitempty"`
	Comments       *string          `json:"comments,omitempty"`
	Recommendation *Recommendation  `json:"recommendation,omitempty"`
	Status         status.Option    `json:"status"`
	NextStatuses   []status.Option  `json:"next_statuses"`
	Editable       bool             `json:"editable"`
	SubmittedAt    *time.Time       `json:"submitted_at,omitempty"`
	AcknowledgedAt *time.Time       `json:"acknowledged_at,omitempty"`
	ClosedAt       *time.Time       `json:"closed_at,omitempty"`
}

type ListResponse struct {
	Evaluations []Response `json:"evaluations"`
	TotalCount  int64      `json:"total_count"`
	Page        int        `json:"page"`
	Limit       int        `json:"limit"`
}

func NewResponse(e Evaluation) Response {
	return Response{
		ID:             e.ID,
		EmployeeID:     e.EmployeeID,
		EmployeeName:   e.EmployeeName,
		EvaluatorID:    e.EvaluatorID,
		Kind:           e.Kind,
		PeriodStart:    e.PeriodStart.Format(validator.DateLayout),
		PeriodEnd:      e.PeriodEnd.Format(validator.DateLayout),
		Score:          e.Score,
		Comments:       e.Comments,
		Recommendation: e.Recommendation,
		Status:         Machine.Option(e.Status),
		NextStatuses:   Machine.NextOptions(e.Status),
		Editable:       Machine.IsEditable(e.Status),
		SubmittedAt:    e.SubmittedAt,
		AcknowledgedAt: e.AcknowledgedAt,
		ClosedAt:       e.ClosedAt,
	}
}
