package training

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/tenant"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/training"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/pkg/apperror"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/pkg/jobs"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type store struct {
	sessions    map[string]training.Session
	enrollments map[string]training.Enrollment
}

type sessionRepo struct{ s *store }

func (r sessionRepo) Create(ctx context.Context, s training.Session) error {
	r.s.sessions[s.ID] = s
	return nil
}

func (r sessionRepo) GetByID(ctx context.Context, companyID, id string) (training.Session, error) {
	s, ok := r.s.sessions[id]
	if !ok || s.CompanyID != companyID {
		return training.Session{}, training.ErrSessionNotFound
	}
	return s, nil
}

func (r sessionRepo) GetByIDForUpdate(ctx context.Context, companyID, id string) (training.Session, error) {
	return r.GetByID(ctx, companyID, id)
}

func (r sessionRepo) Update(ctx context.Context, s training.Session) error {
	r.s.sessions[s.ID] = s
	return nil
}

func (r sessionRepo) List(ctx context.Context, companyID string, filter training.ListFilter) ([]training.Session, int64, error) {
	var out []training.Session
	for _, s := range r.s.sessions {
		if s.CompanyID == companyID {
			out = append(out, s)
		}
	}
	return out, int64(len(out)), nil
}

type enrollmentRepo struct{ s *store }

func (r enrollmentRepo) Create(ctx context.Context, e training.Enrollment) error {
	r.s.enrollments[e.ID] = e
	return nil
}

func (r enrollmentRepo) GetByID(ctx context.Context, companyID, id string) (training.Enrollment, error) {
	e, ok := r.s.enrollments[id]
	if !ok || e.CompanyID != companyID {
		return training.Enrollment{}, training.ErrEnrollmentNotFound
	}
	return e, nil
}

func (r enrollmentRepo) GetByIDForUpdate(ctx context.Context, companyID, id string) (training.Enrollment, error) {
	return r.GetByID(ctx, companyID, id)
}

func (r enrollmentRepo) Update(ctx context.Context, e training.Enrollment) error {
	r.s.enrollments[e.ID] = e
	return nil
}

func (r enrollmentRepo) ListBySession(ctx context.Context, companyID, sessionID string) ([]training.Enrollment, error) {
	var out []training.Enrollment
	for _, e := range r.s.enrollments {
		if e.CompanyID == companyID && e.SessionID == sessionID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r enrollmentRepo) FindActive(ctx context.Context, companyID, sessionID, employeeID string) ([]string, error) {
	var ids []string
	for _, e := range r.s.enrollments {
		if e.SessionID == sessionID && e.EmployeeID == employeeID && e.Status.Active() {
			ids = append(ids, e.ID)
		}
	}
	return ids, nil
}

func (r enrollmentRepo) ListConfirmedRanges(ctx context.Context, companyID, employeeID string) ([]validator.Ranged, error) {
	var out []validator.Ranged
	for _, e := range r.s.enrollments {
		if e.EmployeeID != employeeID || e.Status != training.EnrollmentConfirmed {
			continue
		}
		sess := r.s.sessions[e.SessionID]
		if training.SessionMachine.IsTerminal(sess.Status) {
			continue
		}
		out = append(out, validator.Ranged{ID: sess.ID, Range: sess.Range()})
	}
	return out, nil
}

var (
	managerTC = tenant.Context{CompanyID: "c1", UserID: "u-mgr", EmployeeID: "emp-9", Role: user.RoleManager}
	aliceTC   = tenant.Context{CompanyID: "c1", UserID: "u-alice", EmployeeID: "emp-a", Role: user.RoleEmployee}
)

type fixture struct {
	svc   training.Service
	store *store
	sent  []jobs.Job
}

func newFixture() *fixture {
	f := &fixture{store: &store{sessions: map[string]training.Session{}, enrollments: map[string]training.Enrollment{}}}
	tx := database.TransactorFunc(func(ctx context.Context, fn func(ctx context.Context) error) error { return fn(ctx) })
	d := jobs.DispatcherFunc(func(ctx context.Context, job jobs.Job) error {
		f.sent = append(f.sent, job)
		return nil
	})
	f.svc = NewTrainingService(tx, sessionRepo{f.store}, enrollmentRepo{f.store}, d)
	f.svc.(*TrainingServiceImpl).now = func() time.Time { return time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC) }
	return f
}

func (f *fixture) session(t *testing.T, seats int, start, end string) training.SessionResponse {
	t.Helper()
	s, err := f.svc.CreateSession(context.Background(), managerTC, training.CreateSessionRequest{
		Title: "Forklift safety", StartsAt: start, EndsAt: end, MaxParticipants: seats,
	})
	require.NoError(t, err)
	return s
}

func (f *fixture) enroll(t *testing.T, sessionID, employeeID string) training.EnrollmentResponse {
	t.Helper()
	e, err := f.svc.Enroll(context.Background(), managerTC, sessionID, training.EnrollRequest{EmployeeID: employeeID})
	require.NoError(t, err)
	return e
}

func TestEnroll_CapacityWaitlistAndPromotion(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	s := f.session(t, 2, "2025-03-10T09:00:00Z", "2025-03-10T12:00:00Z")

	a := f.enroll(t, s.ID, "emp-a")
	b := f.enroll(t, s.ID, "emp-b")
	c := f.enroll(t, s.ID, "emp-c")
	d := f.enroll(t, s.ID, "emp-d")

	assert.Equal(t, "confirmed", a.Status.Value)
	assert.Equal(t, "confirmed", b.Status.Value)
	require.NotNil(t, c.WaitlistPosition)
	require.NotNil(t, d.WaitlistPosition)
	assert.Equal(t, 1, *c.WaitlistPosition)
	assert.Equal(t, 2, *d.WaitlistPosition)

	_, err := f.svc.Enroll(ctx, managerTC, s.ID, training.EnrollRequest{EmployeeID: "emp-a"})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.True(t, verrs.Has("employee_id"))

	cancelled, err := f.svc.CancelEnrollment(ctx, aliceTC, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "cancelled", cancelled.Status.Value)

	promoted := f.store.enrollments[c.ID]
	assert.Equal(t, training.EnrollmentConfirmed, promoted.Status)
	assert.Equal(t, training.EnrollmentWaitlisted, f.store.enrollments[d.ID].Status)

	e := f.enroll(t, s.ID, "emp-e")
	require.NotNil(t, e.WaitlistPosition)
	assert.Equal(t, 3, *e.WaitlistPosition)

	roster, err := f.svc.GetSession(ctx, managerTC, s.ID)
	require.NoError(t, err)
	require.NotNil(t, roster.SeatsLeft)
	assert.Equal(t, 0, *roster.SeatsLeft)
	assert.Len(t, roster.Roster, 5)
}

func TestCancelWaitlistedDoesNotPromote(t *testing.T) {
	f := newFixture()
	s := f.session(t, 1, "2025-03-10T09:00:00Z", "2025-03-10T12:00:00Z")
	f.enroll(t, s.ID, "emp-a")
	b := f.enroll(t, s.ID, "emp-b")
	c := f.enroll(t, s.ID, "emp-c")

	_, err := f.svc.CancelEnrollment(context.Background(), managerTC, b.ID)
	require.NoError(t, err)
	assert.Equal(t, training.EnrollmentWaitlisted, f.store.enrollments[c.ID].Status)
	assert.Equal(t, 2, *f.store.enrollments[c.ID].WaitlistPosition)
}

func TestEnroll_Guards(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	morning := f.session(t, 0, "2025-03-10T09:00:00Z", "2025-03-10T12:00:00Z")
	overlapping := f.session(t, 0, "2025-03-10T11:00:00Z", "2025-03-10T13:00:00Z")
	f.enroll(t, morning.ID, "emp-a")

	_, err := f.svc.Enroll(ctx, aliceTC, overlapping.ID, training.EnrollRequest{})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.True(t, verrs.Has("session_id"))

	_, err = f.svc.Enroll(ctx, aliceTC, overlapping.ID, training.EnrollRequest{EmployeeID: "emp-b"})
	assert.Equal(t, apperror.KindForbidden, apperror.KindOf(err), "employees enroll only themselves")

	_, err = f.svc.ChangeSessionStatus(ctx, managerTC, overlapping.ID, training.ChangeStatusRequest{Status: "ongoing"})
	require.NoError(t, err)
	_, err = f.svc.Enroll(ctx, managerTC, overlapping.ID, training.EnrollRequest{EmployeeID: "emp-b"})
	assert.ErrorIs(t, err, training.ErrSessionNotOpen)
}

func TestCancelSessionCascades(t *testing.T) {
	f := newFixture()
	s := f.session(t, 1, "2025-03-10T09:00:00Z", "2025-03-10T12:00:00Z")
	a := f.enroll(t, s.ID, "emp-a")
	b := f.enroll(t, s.ID, "emp-b")
	f.sent = nil

	got, err := f.svc.ChangeSessionStatus(context.Background(), managerTC, s.ID, training.ChangeStatusRequest{Status: "cancelled"})
	require.NoError(t, err)
	assert.Equal(t, "cancelled", got.Status.Value)
	assert.Equal(t, training.EnrollmentCancelled, f.store.enrollments[a.ID].Status)
	assert.Equal(t, training.EnrollmentCancelled, f.store.enrollments[b.ID].Status)
	assert.Len(t, f.sent, 2)

	_, err = f.svc.ChangeSessionStatus(context.Background(), managerTC, s.ID, training.ChangeStatusRequest{Status: "ongoing"})
	assert.Equal(t, apperror.KindInvalidTransition, apperror.KindOf(err))
}

func TestCompleteEnrollment(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	s := f.session(t, 0, "2025-03-10T09:00:00Z", "2025-03-10T12:00:00Z")
	a := f.enroll(t, s.ID, "emp-a")

	_, err := f.svc.CompleteEnrollment(ctx, managerTC, a.ID)
	assert.ErrorIs(t, err, training.ErrSessionNotStarted)
	_, err = f.svc.CompleteEnrollment(ctx, aliceTC, a.ID)
	assert.Equal(t, apperror.KindForbidden, apperror.KindOf(err))

	_, err = f.svc.ChangeSessionStatus(ctx, managerTC, s.ID, training.ChangeStatusRequest{Status: "ongoing"})
	require.NoError(t, err)
	done, err := f.svc.CompleteEnrollment(ctx, managerTC, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "completed", done.Status.Value)

	_, err = f.svc.CancelEnrollment(ctx, aliceTC, a.ID)
	assert.Equal(t, apperror.KindInvalidTransition, apperror.KindOf(err))
}
