package training

import (
	"time"

	"github.com/cmlabs-hris/hris-lifecycle-go/internal/pkg/validator"
)

type Session struct {
	ID              string
	CompanyID       string
	Title           string
	Description     *string
	Location        *string
	StartsAt        time.Time
	EndsAt          time.Time
	MaxParticipants int // 0 means unlimited
	Status          SessionStatus
	CreatedAt       time.Time
	UpdatedAt       time.Time

	// Roster, loaded for detail reads
	Enrollments []Enrollment
}

func (s Session) Range() validator.DateRange {
	return validator.DateRange{Start: s.StartsAt, End: s.EndsAt}
}

// HasSeat reports whether another participant can be confirmed.
func (s Session) HasSeat(confirmed int) bool {
	return s.MaxParticipants == 0 || confirmed < s.MaxParticipants
}

type Enrollment struct {
	ID               string
	CompanyID        string
	SessionID        string
	EmployeeID       string
	Status           EnrollmentStatus
	WaitlistPosition *int
	EnrolledAt       time.Time
	ConfirmedAt      *time.Time
	CancelledAt      *time.Time
	CompletedAt      *time.Time
	UpdatedAt        time.Time

	EmployeeName *string
}

// Confirm moves a waitlisted enrollment onto a seat. The position is kept so
// that it is never handed out again.
func (e *Enrollment) Confirm(at time.Time) {
	e.Status = EnrollmentConfirmed
	e.ConfirmedAt = &at
	e.UpdatedAt = at
}

func CountConfirmed(es []Enrollment) int {
	n := 0
	for _, e := range es {
		if e.Status == EnrollmentConfirmed {
			n++
		}
	}
	return n
}

// NextWaitlistPosition is one past the highest position ever handed out.
func NextWaitlistPosition(es []Enrollment) int {
	highest := 0
	for _, e := range es {
		if e.WaitlistPosition != nil && *e.WaitlistPosition > highest {
			highest = *e.WaitlistPosition
		}
	}
	return highest + 1
}

// NextInLine returns the waitlisted enrollment with the lowest position.
func NextInLine(es []Enrollment) (Enrollment, bool) {
	var best Enrollment
	found := false
	for _, e := range es {
		if e.Status != EnrollmentWaitlisted || e.WaitlistPosition == nil {
			continue
		}
		if !found || *e.WaitlistPosition < *best.WaitlistPosition {
			best, found = e, true
		}
	}
	return best, found
}
