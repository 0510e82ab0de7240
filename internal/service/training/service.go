package training

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/notification"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/tenant"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/training"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/pkg/jobs"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/pkg/validator"
	"github.com/google/uuid"
)

type TrainingServiceImpl struct {
	tx          database.Transactor
	sessions    training.SessionRepository
	enrollments training.EnrollmentRepository
	jobs        jobs.Dispatcher
	now         func() time.Time
}

func NewTrainingService(tx database.Transactor, sessions training.SessionRepository, enrollments training.EnrollmentRepository, dispatcher jobs.Dispatcher) training.Service {
	return &TrainingServiceImpl{tx: tx, sessions: sessions, enrollments: enrollments, jobs: dispatcher, now: time.Now}
}

// CreateSession implements training.Service.
func (s *TrainingServiceImpl) CreateSession(ctx context.Context, tc tenant.Context, req training.CreateSessionRequest) (training.SessionResponse, error) {
	if err := tc.Require(user.PermissionTrainingManage); err != nil {
		return training.SessionResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return training.SessionResponse{}, err
	}

	rng := req.Range()
	now := s.now()
	sess := training.Session{
		ID:              uuid.Must(uuid.NewV7()).String(),
		CompanyID:       tc.CompanyID,
		Title:           req.Title,
		Description:     req.Description,
		Location:        req.Location,
		StartsAt:        rng.Start,
		EndsAt:          rng.End,
		MaxParticipants: req.MaxParticipants,
		Status:          training.SessionScheduled,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.sessions.Create(ctx, sess); err != nil {
		return training.SessionResponse{}, err
	}

	slog.Info("Training session created", "session_id", sess.ID, "max_participants", sess.MaxParticipants, "actor_id", tc.UserID)
	return training.NewSessionResponse(sess), nil
}

// ChangeSessionStatus implements training.Service. Cancelling a session
// cancels every live enrollment with it.
func (s *TrainingServiceImpl) ChangeSessionStatus(ctx context.Context, tc tenant.Context, id string, req training.ChangeStatusRequest) (training.SessionResponse, error) {
	if err := tc.Require(user.PermissionTrainingManage); err != nil {
		return training.SessionResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return training.SessionResponse{}, err
	}
	to, err := training.SessionMachine.Parse(req.Status)
	if err != nil {
		return training.SessionResponse{}, err
	}

	var sess training.Session
	var from training.SessionStatus
	var cancelled, prior []training.Enrollment
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		sess, err = s.sessions.GetByIDForUpdate(ctx, tc.CompanyID, id)
		if err != nil {
			return err
		}
		from = sess.Status
		changed, err := training.SessionMachine.Transition(sess.Status, to)
		if err != nil || !changed {
			return err
		}

		now := s.now()
		sess.Status = to
		sess.UpdatedAt = now
		if err := s.sessions.Update(ctx, sess); err != nil {
			return err
		}
		if to != training.SessionCancelled {
			return nil
		}

		enrollments, err := s.enrollments.ListBySession(ctx, tc.CompanyID, sess.ID)
		if err != nil {
			return fmt.Errorf("list enrollments: %w", err)
		}
		for _, e := range enrollments {
			if !e.Status.Active() {
				continue
			}
			prior = append(prior, e)
			e.Status = training.EnrollmentCancelled
			e.CancelledAt = &now
			e.UpdatedAt = now
			if err := s.enrollments.Update(ctx, e); err != nil {
				return err
			}
			cancelled = append(cancelled, e)
		}
		return nil
	})
	if err != nil {
		return training.SessionResponse{}, err
	}

	if from != sess.Status {
		slog.Info("Training session status changed", "session_id", sess.ID, "from", from, "to", sess.Status,
			"cancelled_enrollments", len(cancelled), "actor_id", tc.UserID)
	}
	for i, e := range cancelled {
		s.emit(ctx, tc, e, prior[i].Status)
	}
	return training.NewSessionResponse(sess), nil
}

// GetSession implements training.Service.
func (s *TrainingServiceImpl) GetSession(ctx context.Context, tc tenant.Context, id string) (training.SessionResponse, error) {
	if err := tc.Validate(); err != nil {
		return training.SessionResponse{}, err
	}
	sess, err := s.sessions.GetByID(ctx, tc.CompanyID, id)
	if err != nil {
		return training.SessionResponse{}, err
	}
	roster, err := s.enrollments.ListBySession(ctx, tc.CompanyID, sess.ID)
	if err != nil {
		return training.SessionResponse{}, fmt.Errorf("list enrollments: %w", err)
	}
	sess.Enrollments = make([]training.Enrollment, 0, len(roster))
	for _, e := range roster {
		// Employees see headcount for everyone but names only for themselves.
		if !tc.CanAccessEmployee(e.EmployeeID) {
			e.EmployeeName = nil
		}
		sess.Enrollments = append(sess.Enrollments, e)
	}
	return training.NewSessionResponse(sess), nil
}

// ListSessions implements training.Service.
func (s *TrainingServiceImpl) ListSessions(ctx context.Context, tc tenant.Context, filter training.ListFilter) (training.ListSessionsResponse, error) {
	if err := tc.Validate(); err != nil {
		return training.ListSessionsResponse{}, err
	}
	filter.Normalize()

	sessions, total, err := s.sessions.List(ctx, tc.CompanyID, filter)
	if err != nil {
		return training.ListSessionsResponse{}, err
	}
	out := make([]training.SessionResponse, 0, len(sessions))
	for _, sess := range sessions {
		out = append(out, training.NewSessionResponse(sess))
	}
	return training.ListSessionsResponse{Sessions: out, TotalCount: total, Page: filter.Page, Limit: filter.Limit}, nil
}

// Enroll implements training.Service. The session row is locked so that two
// concurrent enrollments cannot both take the last seat.
func (s *TrainingServiceImpl) Enroll(ctx context.Context, tc tenant.Context, sessionID string, req training.EnrollRequest) (training.EnrollmentResponse, error) {
	if err := tc.Validate(); err != nil {
		return training.EnrollmentResponse{}, err
	}
	employeeID, err := tc.SelfOr(req.EmployeeID)
	if err != nil {
		return training.EnrollmentResponse{}, err
	}
	if err := tc.RequireEmployee(employeeID); err != nil {
		return training.EnrollmentResponse{}, err
	}

	now := s.now()
	e := training.Enrollment{
		ID:         uuid.Must(uuid.NewV7()).String(),
		CompanyID:  tc.CompanyID,
		SessionID:  sessionID,
		EmployeeID: employeeID,
		EnrolledAt: now,
		UpdatedAt:  now,
	}

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		sess, err := s.sessions.GetByIDForUpdate(ctx, tc.CompanyID, sessionID)
		if err != nil {
			return err
		}
		if sess.Status != training.SessionScheduled {
			return training.ErrSessionNotOpen
		}

		err = validator.Collect(
			validator.Duplicate(ctx, "employee_id",
				validator.DuplicateFinderFunc(func(ctx context.Context, key validator.Key) ([]string, error) {
					return s.enrollments.FindActive(ctx, tc.CompanyID, key[0], key[1])
				}),
				validator.Key{sessionID, employeeID}, "",
				"employee is already enrolled in this session",
			),
			validator.Overlap(ctx, "session_id",
				validator.RangeListerFunc(func(ctx context.Context, ownerID string) ([]validator.Ranged, error) {
					return s.enrollments.ListConfirmedRanges(ctx, tc.CompanyID, ownerID)
				}),
				employeeID, sess.Range(), sess.ID,
			),
		)
		if err != nil {
			return err
		}

		roster, err := s.enrollments.ListBySession(ctx, tc.CompanyID, sessionID)
		if err != nil {
			return fmt.Errorf("list enrollments: %w", err)
		}
		if sess.HasSeat(training.CountConfirmed(roster)) {
			e.Status = training.EnrollmentConfirmed
			e.ConfirmedAt = &now
		} else {
			pos := training.NextWaitlistPosition(roster)
			e.Status = training.EnrollmentWaitlisted
			e.WaitlistPosition = &pos
		}
		return s.enrollments.Create(ctx, e)
	})
	if err != nil {
		return training.EnrollmentResponse{}, err
	}

	slog.Info("Training enrollment created", "enrollment_id", e.ID, "session_id", sessionID, "employee_id", employeeID, "status", e.Status, "actor_id", tc.UserID)
	return training.NewEnrollmentResponse(e), nil
}

// CancelEnrollment implements training.Service. A freed seat goes to the
// lowest waitlist position.
func (s *TrainingServiceImpl) CancelEnrollment(ctx context.Context, tc tenant.Context, id string) (training.EnrollmentResponse, error) {
	if err := tc.Validate(); err != nil {
		return training.EnrollmentResponse{}, err
	}

	var e training.Enrollment
	var from training.EnrollmentStatus
	var promoted *training.Enrollment
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		peek, err := s.enrollments.GetByID(ctx, tc.CompanyID, id)
		if err != nil {
			return err
		}
		if err := tc.RequireEmployee(peek.EmployeeID); err != nil {
			return err
		}
		// Session before enrollment, same order as Enroll.
		sess, err := s.sessions.GetByIDForUpdate(ctx, tc.CompanyID, peek.SessionID)
		if err != nil {
			return err
		}
		e, err = s.enrollments.GetByIDForUpdate(ctx, tc.CompanyID, id)
		if err != nil {
			return err
		}
		from = e.Status
		changed, err := training.EnrollmentMachine.Transition(e.Status, training.EnrollmentCancelled)
		if err != nil || !changed {
			return err
		}

		now := s.now()
		e.Status = training.EnrollmentCancelled
		e.CancelledAt = &now
		e.UpdatedAt = now
		if err := s.enrollments.Update(ctx, e); err != nil {
			return err
		}
		if from != training.EnrollmentConfirmed || sess.Status != training.SessionScheduled {
			return nil
		}

		roster, err := s.enrollments.ListBySession(ctx, tc.CompanyID, sess.ID)
		if err != nil {
			return fmt.Errorf("list enrollments: %w", err)
		}
		if !sess.HasSeat(training.CountConfirmed(roster)) {
			return nil
		}
		next, ok := training.NextInLine(roster)
		if !ok {
			return nil
		}
		next.Confirm(now)
		if err := s.enrollments.Update(ctx, next); err != nil {
			return err
		}
		promoted = &next
		return nil
	})
	if err != nil {
		return training.EnrollmentResponse{}, err
	}

	if from != e.Status {
		slog.Info("Training enrollment cancelled", "enrollment_id", e.ID, "session_id", e.SessionID, "actor_id", tc.UserID)
		s.emit(ctx, tc, e, from)
	}
	if promoted != nil {
		slog.Info("Waitlisted enrollment promoted", "enrollment_id", promoted.ID, "session_id", promoted.SessionID)
		s.emit(ctx, tc, *promoted, training.EnrollmentWaitlisted)
	}
	return training.NewEnrollmentResponse(e), nil
}

// CompleteEnrollment implements training.Service.
func (s *TrainingServiceImpl) CompleteEnrollment(ctx context.Context, tc tenant.Context, id string) (training.EnrollmentResponse, error) {
	if err := tc.Require(user.PermissionTrainingManage); err != nil {
		return training.EnrollmentResponse{}, err
	}

	var e training.Enrollment
	var from training.EnrollmentStatus
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		e, err = s.enrollments.GetByIDForUpdate(ctx, tc.CompanyID, id)
		if err != nil {
			return err
		}
		from = e.Status
		changed, err := training.EnrollmentMachine.Transition(e.Status, training.EnrollmentCompleted)
		if err != nil || !changed {
			return err
		}
		sess, err := s.sessions.GetByID(ctx, tc.CompanyID, e.SessionID)
		if err != nil {
			return err
		}
		if sess.Status != training.SessionOngoing && sess.Status != training.SessionCompleted {
			return training.ErrSessionNotStarted
		}

		now := s.now()
		e.Status = training.EnrollmentCompleted
		e.CompletedAt = &now
		e.UpdatedAt = now
		return s.enrollments.Update(ctx, e)
	})
	if err != nil {
		return training.EnrollmentResponse{}, err
	}

	if from != e.Status {
		s.emit(ctx, tc, e, from)
	}
	return training.NewEnrollmentResponse(e), nil
}

func (s *TrainingServiceImpl) emit(ctx context.Context, tc tenant.Context, e training.Enrollment, from training.EnrollmentStatus) {
	jobs.Emit(ctx, s.jobs, notification.JobStatusChanged, tc.CompanyID, notification.StatusChangedPayload{
		RecipientEmployeeID: e.EmployeeID,
		ActorUserID:         tc.UserID,
		Subject:             training.EnrollmentMachine.Entity(),
		SubjectID:           e.ID,
		From:                string(from),
		To:                  string(e.Status),
		ToLabel:             training.EnrollmentMachine.Label(e.Status),
	})
}
