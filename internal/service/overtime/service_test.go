package overtime

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/approval"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/overtime"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/tenant"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/pkg/apperror"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/pkg/jobs"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memRequests struct {
	rows  map[string]overtime.OvertimeRequest
	trace []string
}

func (m *memRequests) Create(ctx context.Context, r overtime.OvertimeRequest) error {
	m.rows[r.ID] = r
	return nil
}

func (m *memRequests) GetByID(ctx context.Context, companyID, id string) (overtime.OvertimeRequest, error) {
	r, ok := m.rows[id]
	if !ok || r.CompanyID != companyID {
		return overtime.OvertimeRequest{}, overtime.ErrOvertimeRequestNotFound
	}
	return r, nil
}

func (m *memRequests) GetByIDForUpdate(ctx context.Context, companyID, id string) (overtime.OvertimeRequest, error) {
	return m.GetByID(ctx, companyID, id)
}

func (m *memRequests) Update(ctx context.Context, r overtime.OvertimeRequest) error {
	m.rows[r.ID] = r
	return nil
}

func (m *memRequests) List(ctx context.Context, companyID string, f overtime.ListFilter) ([]overtime.OvertimeRequest, int64, error) {
	var out []overtime.OvertimeRequest
	for _, r := range m.rows {
		if r.CompanyID == companyID && (f.EmployeeID == "" || r.EmployeeID == f.EmployeeID) {
			out = append(out, r)
		}
	}
	return out, int64(len(out)), nil
}

func (m *memRequests) LockEmployee(ctx context.Context, companyID, employeeID string) error {
	m.trace = append(m.trace, "lock:"+employeeID)
	return nil
}

func (m *memRequests) ListActiveRanges(ctx context.Context, companyID, employeeID string) ([]validator.Ranged, error) {
	m.trace = append(m.trace, "ranges")
	var out []validator.Ranged
	for _, r := range m.rows {
		if r.EmployeeID == employeeID && (r.Status == overtime.StatusPending || r.Status == overtime.StatusApproved) {
			out = append(out, validator.Ranged{ID: r.ID, Range: validator.DateRange{Start: r.StartsAt, End: r.EndsAt}})
		}
	}
	return out, nil
}

type memApprovals struct {
	approvers map[string][]string
	chains    map[string]approval.Chain
}

func (m *memApprovals) ListApprovers(ctx context.Context, companyID, employeeID string) ([]string, error) {
	return m.approvers[employeeID], nil
}

func (m *memApprovals) GetChain(ctx context.Context, companyID string, subject approval.SubjectType, subjectID string) (approval.Chain, error) {
	c := m.chains[subjectID]
	return approval.Chain{Levels: append([]approval.Level(nil), c.Levels...)}, nil
}

func (m *memApprovals) CreateChain(ctx context.Context, companyID string, subject approval.SubjectType, subjectID string, c approval.Chain) error {
	m.chains[subjectID] = c
	return nil
}

func (m *memApprovals) SaveLevel(ctx context.Context, companyID string, subject approval.SubjectType, subjectID string, l approval.Level) error {
	c := m.chains[subjectID]
	c.Levels[l.Level-1] = l
	return nil
}

var (
	employeeTC = tenant.Context{CompanyID: "c1", UserID: "u-emp", EmployeeID: "emp-1", Role: user.RoleEmployee}
	managerTC  = tenant.Context{CompanyID: "c1", UserID: "u-mgr", EmployeeID: "emp-9", Role: user.RoleManager}
)

func newService() (overtime.Service, *memRequests, *[]jobs.Job) {
	reqs := &memRequests{rows: map[string]overtime.OvertimeRequest{}}
	apps := &memApprovals{approvers: map[string][]string{}, chains: map[string]approval.Chain{}}
	var dispatched []jobs.Job
	tx := database.TransactorFunc(func(ctx context.Context, fn func(ctx context.Context) error) error { return fn(ctx) })
	d := jobs.DispatcherFunc(func(ctx context.Context, job jobs.Job) error {
		dispatched = append(dispatched, job)
		return nil
	})
	svc := NewOvertimeService(tx, reqs, apps, d)
	svc.(*OvertimeServiceImpl).now = func() time.Time { return time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC) }
	return svc, reqs, &dispatched
}

func create(t *testing.T, svc overtime.Service, start, end string) overtime.Response {
	t.Helper()
	resp, err := svc.Create(context.Background(), employeeTC, overtime.CreateRequest{StartsAt: start, EndsAt: end, Reason: "release night"})
	require.NoError(t, err)
	return resp
}

func TestCreate_Validation(t *testing.T) {
	svc, _, _ := newService()
	tests := []struct {
		name  string
		start string
		end   string
		field string
	}{
		{"end before start", "2025-03-05T20:00:00Z", "2025-03-05T18:00:00Z", "ends_at"},
		{"longer than 12h", "2025-03-05T06:00:00Z", "2025-03-05T19:00:00Z", "ends_at"},
		{"bad timestamp", "yesterday", "2025-03-05T19:00:00Z", "starts_at"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), employeeTC, overtime.CreateRequest{StartsAt: tt.start, EndsAt: tt.end, Reason: "x"})
			var ve validator.ValidationErrors
			require.ErrorAs(t, err, &ve)
			assert.True(t, ve.Has(tt.field))
		})
	}
}

func TestCreate_RejectsOverlap(t *testing.T) {
	svc, reqs, _ := newService()
	create(t, svc, "2025-03-05T18:00:00Z", "2025-03-05T21:00:00Z")

	_, err := svc.Create(context.Background(), employeeTC, overtime.CreateRequest{
		StartsAt: "2025-03-05T21:00:00Z", EndsAt: "2025-03-05T23:00:00Z", Reason: "touching ends overlap",
	})
	var ve validator.ValidationErrors
	require.ErrorAs(t, err, &ve)
	assert.True(t, ve.Has("starts_at"))

	create(t, svc, "2025-03-05T21:30:00Z", "2025-03-05T23:00:00Z")
	assert.Len(t, reqs.rows, 2)
}

func TestCreate_LocksEmployeeBeforeOverlapRead(t *testing.T) {
	svc, reqs, _ := newService()
	create(t, svc, "2025-03-06T18:00:00Z", "2025-03-06T20:00:00Z")
	assert.Equal(t, []string{"lock:" + employeeTC.EmployeeID, "ranges"}, reqs.trace)
}

func TestApproveAndCancel(t *testing.T) {
	svc, _, dispatched := newService()
	ctx := context.Background()
	r := create(t, svc, "2025-03-05T18:00:00Z", "2025-03-05T21:00:00Z")
	assert.Equal(t, "3", r.Hours.String())

	_, err := svc.Approve(ctx, employeeTC, r.ID, overtime.DecisionRequest{})
	assert.ErrorIs(t, err, approval.ErrSelfApproval)

	approved, err := svc.Approve(ctx, managerTC, r.ID, overtime.DecisionRequest{Note: "ok"})
	require.NoError(t, err)
	assert.Equal(t, "approved", approved.Status.Value)
	assert.Len(t, *dispatched, 2)

	_, err = svc.Cancel(ctx, employeeTC, r.ID)
	assert.Equal(t, apperror.KindInvalidTransition, apperror.KindOf(err))
}

func TestCancel_OwnerOnly(t *testing.T) {
	svc, _, _ := newService()
	ctx := context.Background()
	r := create(t, svc, "2025-03-06T18:00:00Z", "2025-03-06T20:00:00Z")

	_, err := svc.Cancel(ctx, managerTC, r.ID)
	assert.ErrorIs(t, err, overtime.ErrNotRequestOwner)

	cancelled, err := svc.Cancel(ctx, employeeTC, r.ID)
	require.NoError(t, err)
	assert.Equal(t, "cancelled", cancelled.Status.Value)
	assert.Empty(t, cancelled.NextStatuses)
}

func TestList_EmployeesSeeOwn(t *testing.T) {
	svc, reqs, _ := newService()
	create(t, svc, "2025-03-06T18:00:00Z", "2025-03-06T20:00:00Z")
	reqs.rows["other"] = overtime.OvertimeRequest{ID: "other", CompanyID: "c1", EmployeeID: "emp-2", Status: overtime.StatusPending}

	own, err := svc.List(context.Background(), employeeTC, overtime.ListFilter{EmployeeID: "emp-2"})
	require.NoError(t, err)
	assert.Len(t, own.Requests, 1)

	all, err := svc.List(context.Background(), managerTC, overtime.ListFilter{})
	require.NoError(t, err)
	assert.Len(t, all.Requests, 2)

	_, err = svc.Get(context.Background(), employeeTC, "other")
	assert.Equal(t, apperror.KindForbidden, apperror.KindOf(err))
}
