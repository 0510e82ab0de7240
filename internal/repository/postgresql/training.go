package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/training"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/pkg/validator"
	"github.com/jackc/pgx/v5"
)

type trainingSessionRepositoryImpl struct {
	db *database.DB
}

func NewTrainingSessionRepository(db *database.DB) training.SessionRepository {
	return &trainingSessionRepositoryImpl{db: db}
}

const trainingSessionColumns = `id, company_id, title, description, location, starts_at, ends_at,
	max_participants, status, created_at, updated_at`

func scanTrainingSession(row pgx.Row) (training.Session, error) {
	var s training.Session
	err := row.Scan(&s.ID, &s.CompanyID, &s.Title, &s.Description, &s.Location, &s.StartsAt, &s.EndsAt,
		&s.MaxParticipants, &s.Status, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

// Create implements training.SessionRepository.
func (r *trainingSessionRepositoryImpl) Create(ctx context.Context, s training.Session) error {
	q := GetQuerier(ctx, r.db)
	query := `INSERT INTO training_sessions (` + trainingSessionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := q.Exec(ctx, query, s.ID, s.CompanyID, s.Title, s.Description, s.Location, s.StartsAt, s.EndsAt,
		s.MaxParticipants, string(s.Status), s.CreatedAt, s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create training session: %w", err)
	}
	return nil
}

// GetByID implements training.SessionRepository.
func (r *trainingSessionRepositoryImpl) GetByID(ctx context.Context, companyID, id string) (training.Session, error) {
	return r.get(ctx, companyID, id, "")
}

// GetByIDForUpdate implements training.SessionRepository.
func (r *trainingSessionRepositoryImpl) GetByIDForUpdate(ctx context.Context, companyID, id string) (training.Session, error) {
	return r.get(ctx, companyID, id, " FOR UPDATE")
}

func (r *trainingSessionRepositoryImpl) get(ctx context.Context, companyID, id, lock string) (training.Session, error) {
	q := GetQuerier(ctx, r.db)
	query := `SELECT ` + trainingSessionColumns + ` FROM training_sessions WHERE company_id = $1 AND id = $2` + lock
	s, err := scanTrainingSession(q.QueryRow(ctx, query, companyID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return training.Session{}, training.ErrSessionNotFound
		}
		return training.Session{}, err
	}
	return s, nil
}

// Update implements training.SessionRepository.
func (r *trainingSessionRepositoryImpl) Update(ctx context.Context, s training.Session) error {
	q := GetQuerier(ctx, r.db)
	tag, err := q.Exec(ctx, `
		UPDATE training_sessions SET status = $3, updated_at = $4
		WHERE company_id = $1 AND id = $2
	`, s.CompanyID, s.ID, string(s.Status), s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update training session: %w", err)
	}
	if tag.RowsAffected() != 1 {
		return training.ErrSessionNotFound
	}
	return nil
}

// List implements training.SessionRepository.
func (r *trainingSessionRepositoryImpl) List(ctx context.Context, companyID string, filter training.ListFilter) ([]training.Session, int64, error) {
	q := GetQuerier(ctx, r.db)

	whereClauses := []string{"company_id = $1"}
	args := []interface{}{companyID}
	argIdx := 2
	if filter.Status != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, string(*filter.Status))
		argIdx++
	}
	if filter.From != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("starts_at >= $%d", argIdx))
		args = append(args, *filter.From)
		argIdx++
	}
	where := " WHERE " + strings.Join(whereClauses, " AND ")

	var total int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM training_sessions`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count training sessions: %w", err)
	}

	query := `SELECT ` + trainingSessionColumns + ` FROM training_sessions` + where +
		fmt.Sprintf(" ORDER BY starts_at LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]training.Session, 0)
	for rows.Next() {
		s, err := scanTrainingSession(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, s)
	}
	return out, total, rows.Err()
}

type trainingEnrollmentRepositoryImpl struct {
	db *database.DB
}

func NewTrainingEnrollmentRepository(db *database.DB) training.EnrollmentRepository {
	return &trainingEnrollmentRepositoryImpl{db: db}
}

const trainingEnrollmentSelect = `
	SELECT te.id, te.company_id, te.session_id, te.employee_id, te.status, te.waitlist_position,
		   te.enrolled_at, te.confirmed_at, te.cancelled_at, te.completed_at, te.updated_at, e.full_name
	FROM training_enrollments te
	JOIN employees e ON e.id = te.employee_id`

func scanTrainingEnrollment(row pgx.Row) (training.Enrollment, error) {
	var e training.Enrollment
	err := row.Scan(&e.ID, &e.CompanyID, &e.SessionID, &e.EmployeeID, &e.Status, &e.WaitlistPosition,
		&e.EnrolledAt, &e.ConfirmedAt, &e.CancelledAt, &e.CompletedAt, &e.UpdatedAt, &e.EmployeeName)
	return e, err
}

// Create implements training.EnrollmentRepository.
func (r *trainingEnrollmentRepositoryImpl) Create(ctx context.Context, e training.Enrollment) error {
	q := GetQuerier(ctx, r.db)
	_, err := q.Exec(ctx, `
		INSERT INTO training_enrollments (
			id, company_id, session_id, employee_id, status, waitlist_position,
			enrolled_at, confirmed_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, e.ID, e.CompanyID, e.SessionID, e.EmployeeID, string(e.Status), e.WaitlistPosition,
		e.EnrolledAt, e.ConfirmedAt, e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create training enrollment: %w", err)
	}
	return nil
}

// GetByID implements training.EnrollmentRepository.
func (r *trainingEnrollmentRepositoryImpl) GetByID(ctx context.Context, companyID, id string) (training.Enrollment, error) {
	return r.get(ctx, companyID, id, "")
}

// GetByIDForUpdate implements training.EnrollmentRepository.
func (r *trainingEnrollmentRepositoryImpl) GetByIDForUpdate(ctx context.Context, companyID, id string) (training.Enrollment, error) {
	return r.get(ctx, companyID, id, " FOR UPDATE OF te")
}

func (r *trainingEnrollmentRepositoryImpl) get(ctx context.Context, companyID, id, lock string) (training.Enrollment, error) {
	q := GetQuerier(ctx, r.db)
	e, err := scanTrainingEnrollment(q.QueryRow(ctx, trainingEnrollmentSelect+` WHERE te.company_id = $1 AND te.id = $2`+lock, companyID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return training.Enrollment{}, training.ErrEnrollmentNotFound
		}
		return training.Enrollment{}, err
	}
	return e, nil
}

// Update implements training.EnrollmentRepository.
func (r *trainingEnrollmentRepositoryImpl) Update(ctx context.Context, e training.Enrollment) error {
	q := GetQuerier(ctx, r.db)
	tag, err := q.Exec(ctx, `
		UPDATE training_enrollments
		SET status = $3, waitlist_position = $4, confirmed_at = $5, cancelled_at = $6, completed_at = $7, updated_at = $8
		WHERE company_id = $1 AND id = $2
	`, e.CompanyID, e.ID, string(e.Status), e.WaitlistPosition, e.ConfirmedAt, e.CancelledAt, e.CompletedAt, e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update training enrollment: %w", err)
	}
	if tag.RowsAffected() != 1 {
		return training.ErrEnrollmentNotFound
	}
	return nil
}

// ListBySession implements training.EnrollmentRepository.
func (r *trainingEnrollmentRepositoryImpl) ListBySession(ctx context.Context, companyID, sessionID string) ([]training.Enrollment, error) {
	q := GetQuerier(ctx, r.db)
	rows, err := q.Query(ctx, trainingEnrollmentSelect+`
		WHERE te.company_id = $1 AND te.session_id = $2
		ORDER BY te.enrolled_at, te.id`, companyID, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []training.Enrollment
	for rows.Next() {
		e, err := scanTrainingEnrollment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// FindActive implements training.EnrollmentRepository.
func (r *trainingEnrollmentRepositoryImpl) FindActive(ctx context.Context, companyID, sessionID, employeeID string) ([]string, error) {
	q := GetQuerier(ctx, r.db)
	rows, err := q.Query(ctx, `
		SELECT id FROM training_enrollments
		WHERE company_id = $1 AND session_id = $2 AND employee_id = $3 AND status = ANY($4)
	`, companyID, sessionID, employeeID, statusStrings(training.ActiveEnrollmentStatuses))
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

// ListConfirmedRanges implements training.EnrollmentRepository.
func (r *trainingEnrollmentRepositoryImpl) ListConfirmedRanges(ctx context.Context, companyID, employeeID string) ([]validator.Ranged, error) {
	q := GetQuerier(ctx, r.db)
	rows, err := q.Query(ctx, `
		SELECT ts.id, ts.starts_at, ts.ends_at
		FROM training_enrollments te
		JOIN training_sessions ts ON ts.id = te.session_id
		WHERE te.company_id = $1 AND te.employee_id = $2 AND te.status = $3 AND ts.status = ANY($4)
	`, companyID, employeeID, string(training.EnrollmentConfirmed),
		statusStrings([]training.SessionStatus{training.SessionScheduled, training.SessionOngoing}))
	return collectRanges(rows, err)
}
