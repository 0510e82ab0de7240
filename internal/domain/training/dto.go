package training

import (
	"time"

	"github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/status"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/pkg/validator"
)

type CreateSessionRequest struct {
	Title           string  `json:"title"`
	Description     *string `json:"description,omitempty"`
	Location        *string `json:"location,omitempty"`
	StartsAt        string  `json:"starts_at"`
	EndsAt          string  `json:"ends_at"`
	MaxParticipants int     `json:"max_participants"`

	startsAt, endsAt time.Time
}

func (r *CreateSessionRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Title) {
		errs = append(errs, validator.ValidationError{Field: "title", Message: "title is required"})
	}
	start, okStart := validator.IsValidDateTime(r.StartsAt)
	if !okStart {
		errs = append(errs, validator.ValidationError{Field: "starts_at", Message: "starts_at must be an RFC3339 timestamp"})
	}
	end, okEnd := validator.IsValidDateTime(r.EndsAt)
	if !okEnd {
		errs = append(errs, validator.ValidationError{Field: "ends_at", Message: "ends_at must be an RFC3339 timestamp"})
	}
	if okStart && okEnd && !end.After(start) {
		errs = append(errs, validator.ValidationError{Field: "ends_at", Message: "ends_at must be after starts_at"})
	}
	if r.MaxParticipants < 0 {
		errs = append(errs, validator.ValidationError{Field: "max_participants", Message: "max_participants cannot be negative"})
	}

	if len(errs) > 0 {
		return errs
	}
	r.startsAt, r.endsAt = start, end
	return nil
}

// Range must only be called after Validate succeeded.
func (r *CreateSessionRequest) Range() validator.DateRange {
	return validator.DateRange{Start: r.startsAt, End: r.endsAt}
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

type EnrollRequest struct {
	EmployeeID string `json:"employee_id,omitempty"`
}

type ListFilter struct {
	Status *SessionStatus
	From   *time.Time
	Page   int
	Limit  int
}

func (f *ListFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > 100 {
		f.Limit = 20
	}
}

type EnrollmentResponse struct {
	ID               string          `json:"id"`
	SessionID        string          `json:"session_id"`
	EmployeeID       string          `json:"employee_id"`
	EmployeeName     *string         `json:"employee_name,omitempty"`
	Status           status.Option   `json:"status"`
	NextStatuses     []status.Option `json:"next_statuses"`
	WaitlistPosition *int            `json:"waitlist_position,omitempty"`
	EnrolledAt       string          `json:"enrolled_at"`
}

func NewEnrollmentResponse(e Enrollment) EnrollmentResponse {
	resp := EnrollmentResponse{
		ID:           e.ID,
		SessionID:    e.SessionID,
		EmployeeID:   e.EmployeeID,
		EmployeeName: e.EmployeeName,
		Status:       EnrollmentMachine.Option(e.Status),
		NextStatuses: EnrollmentMachine.NextOptions(e.Status),
		EnrolledAt:   e.EnrolledAt.Format(time.RFC3339),
	}
	if e.Status == EnrollmentWaitlisted {
		resp.WaitlistPosition = e.WaitlistPosition
	}
	return resp
}

type SessionResponse struct {
	ID              string               `json:"id"`
	Title           string               `json:"title"`
	Description     *string              `json:"description,omitempty"`
	Location        *string              `json:"location,omitempty"`
	StartsAt        string               `json:"starts_at"`
	EndsAt          string               `json:"ends_at"`
	MaxParticipants int                  `json:"max_participants"`
	Status          status.Option        `json:"status"`
	NextStatuses    []status.Option      `json:"next_statuses"`
	ConfirmedCount  *int                 `json:"confirmed_count,omitempty"`
	SeatsLeft       *int                 `json:"seats_left,omitempty"`
	Roster          []EnrollmentResponse `json:"roster,omitempty"`
}

type ListSessionsResponse struct {
	Sessions   []SessionResponse `json:"sessions"`
	TotalCount int64             `json:"total_count"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
}

func NewSessionResponse(s Session) SessionResponse {
	resp := SessionResponse{
		ID:              s.ID,
		Title:           s.Title,
		Description:     s.Description,
		Location:        s.Location,
		StartsAt:        s.StartsAt.Format(time.RFC3339),
		EndsAt:          s.EndsAt.Format(time.RFC3339),
		MaxParticipants: s.MaxParticipants,
		Status:          SessionMachine.Option(s.Status),
		NextStatuses:    SessionMachine.NextOptions(s.Status),
	}
	if s.Enrollments != nil {
		confirmed := CountConfirmed(s.Enrollments)
		resp.ConfirmedCount = &confirmed
		if s.MaxParticipants > 0 {
			left := s.MaxParticipants - confirmed
			resp.SeatsLeft = &left
		}
		resp.Roster = make([]EnrollmentResponse, 0, len(s.Enrollments))
		for _, e := range s.Enrollments {
			resp.Roster = append(resp.Roster, NewEnrollmentResponse(e))
		}
	}
	return resp
}
