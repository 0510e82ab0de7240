package leave

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/approval"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/notification"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/tenant"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/pkg/apperror"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	monday     = time.Date(2025, 1, 6, 8, 0, 0, 0, time.UTC)
	employeeTC = tenant.Context{CompanyID: "c1", UserID: "u-emp", EmployeeID: "emp-1", Role: user.RoleEmployee}
	managerTC  = tenant.Context{CompanyID: "c1", UserID: "u-mgr", EmployeeID: "emp-9", Role: user.RoleManager}
	leadTC     = tenant.Context{CompanyID: "c1", UserID: "u-lead", EmployeeID: "emp-5", Role: user.RoleEmployee}
	ownerTC    = tenant.Context{CompanyID: "c1", UserID: "u-own", EmployeeID: "emp-0", Role: user.RoleOwner}
)

type fixture struct {
	store    *store
	approval *approvalRepo
	svc      leave.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s := newStore()
	s.types["annual"] = leave.LeaveType{
		ID: "annual", CompanyID: "c1", Name: "Annual Leave",
		IsActive: true, RequiresBalance: true, MinNoticeDays: 3,
	}
	s.types["unpaid"] = leave.LeaveType{ID: "unpaid", CompanyID: "c1", Name: "Unpaid", IsActive: true, AllowBackdate: true}
	s.balances[balanceKey("emp-1", "annual", 2025)] = leave.LeaveBalance{
		ID: "bal-1", CompanyID: "c1", EmployeeID: "emp-1", LeaveTypeID: "annual", Year: 2025,
		OpeningBalance: decimal.NewFromInt(10),
	}

	ar := &approvalRepo{s: s}
	svc := NewLeaveService(s.transactor(), typeRepo{s}, balanceRepo{s}, applicationRepo{s}, ar, s.dispatcher(),
		WithClock(func() time.Time { return monday }))
	return &fixture{store: s, approval: ar, svc: svc}
}

func (f *fixture) balance() leave.LeaveBalance {
	return f.store.balances[balanceKey("emp-1", "annual", 2025)]
}

func (f *fixture) apply(t *testing.T, start, end string) leave.ApplicationResponse {
	t.Helper()
	resp, err := f.svc.CreateApplication(context.Background(), employeeTC, leave.CreateApplicationRequest{
		LeaveTypeID: "annual", StartDate: start, EndDate: end, Reason: "family trip", Submit: true,
	})
	require.NoError(t, err)
	return resp
}

func TestApprove_MovesPendingToUsed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	app := f.apply(t, "2025-01-13", "2025-01-15")
	assert.Equal(t, "pending", app.Status.Value)
	assert.True(t, app.Days.Equal(decimal.NewFromInt(3)))

	b := f.balance()
	assert.True(t, b.Available().Equal(decimal.NewFromInt(7)))
	assert.True(t, b.PendingQuota.Equal(decimal.NewFromInt(3)))

	approved, err := f.svc.Approve(ctx, managerTC, app.ID, leave.DecisionRequest{Note: "enjoy"})
	require.NoError(t, err)
	assert.Equal(t, "approved", approved.Status.Value)
	assert.Empty(t, approved.NextStatuses)

	b = f.balance()
	assert.True(t, b.Available().Equal(decimal.NewFromInt(7)))
	assert.True(t, b.UsedQuota.Equal(decimal.NewFromInt(3)))
	assert.True(t, b.PendingQuota.IsZero())

	kinds := []leave.EntryKind{}
	for _, e := range f.store.entries {
		kinds = append(kinds, e.Kind)
		assert.Equal(t, app.ID, *e.ReferenceID)
	}
	assert.Equal(t, []leave.EntryKind{leave.EntryReserve, leave.EntryCommit}, kinds)

	require.Len(t, f.store.dispatched, 2)
	var payload notification.StatusChangedPayload
	require.NoError(t, f.store.dispatched[1].Decode(&payload))
	assert.Equal(t, "approved", payload.To)
	assert.Equal(t, "emp-1", payload.RecipientEmployeeID)
}

func TestSubmit_AggregatesStatefulFailures(t *testing.T) {
	f := newFixture(t)
	f.apply(t, "2025-01-13", "2025-01-15")
	before := f.balance()

	_, err := f.svc.CreateApplication(context.Background(), employeeTC, leave.CreateApplicationRequest{
		LeaveTypeID: "annual", StartDate: "2025-01-14", EndDate: "2025-01-24", Reason: "long trip", Submit: true,
	})
	require.Error(t, err)

	var ve validator.ValidationErrors
	require.ErrorAs(t, err, &ve)
	assert.True(t, ve.Has("start_date"), "overlap reported")
	assert.True(t, ve.Has("days"), "insufficient balance reported")
	assert.Equal(t, before, f.balance(), "nothing reserved")
	assert.Len(t, f.store.applications, 1)
}

func TestCreate_StructuralFailuresComeFirst(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.CreateApplication(context.Background(), employeeTC, leave.CreateApplicationRequest{
		StartDate: "2025-01-20", EndDate: "2025-01-13",
	})
	var ve validator.ValidationErrors
	require.ErrorAs(t, err, &ve)
	assert.True(t, ve.Has("leave_type_id"))
	assert.True(t, ve.Has("end_date"))
	assert.True(t, ve.Has("reason"))
}

func TestSubmit_AdvanceNotice(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.CreateApplication(context.Background(), employeeTC, leave.CreateApplicationRequest{
		LeaveTypeID: "annual", StartDate: "2025-01-08", EndDate: "2025-01-08", Reason: "errand", Submit: true,
	})
	var ve validator.ValidationErrors
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.ToMap()["start_date"], "3 days in advance")

	// Backdating types skip the notice rule and need no balance.
	resp, err := f.svc.CreateApplication(context.Background(), employeeTC, leave.CreateApplicationRequest{
		LeaveTypeID: "unpaid", StartDate: "2025-01-03", EndDate: "2025-01-03", Reason: "sick", Submit: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "pending", resp.Status.Value)
}

func TestReject_ReleasesPendingAndHonoursLevelOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.store.approvers["emp-1"] = []string{"u-lead", "u-mgr"}

	app := f.apply(t, "2025-01-13", "2025-01-15")
	require.Len(t, app.Approvals, 2)

	_, err := f.svc.Reject(ctx, managerTC, app.ID, leave.DecisionRequest{})
	assert.ErrorIs(t, err, approval.ErrNotCurrentApprover)

	mid, err := f.svc.Approve(ctx, leadTC, app.ID, leave.DecisionRequest{})
	require.NoError(t, err)
	assert.Equal(t, "pending", mid.Status.Value, "one of two levels approved")
	assert.True(t, f.balance().PendingQuota.Equal(decimal.NewFromInt(3)))

	rejected, err := f.svc.Reject(ctx, managerTC, app.ID, leave.DecisionRequest{Note: "peak season"})
	require.NoError(t, err)
	assert.Equal(t, "rejected", rejected.Status.Value)
	assert.Equal(t, "rejected", rejected.Approvals[1].Decision)

	b := f.balance()
	assert.True(t, b.PendingQuota.IsZero())
	assert.True(t, b.UsedQuota.IsZero())
	assert.True(t, b.Available().Equal(decimal.NewFromInt(10)))
}

func TestTerminalApplicationRefusesMutation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	app := f.apply(t, "2025-01-13", "2025-01-15")
	_, err := f.svc.Approve(ctx, managerTC, app.ID, leave.DecisionRequest{})
	require.NoError(t, err)
	before := f.balance()

	_, err = f.svc.Approve(ctx, managerTC, app.ID, leave.DecisionRequest{})
	assert.Equal(t, apperror.KindInvalidTransition, apperror.KindOf(err))

	_, err = f.svc.Cancel(ctx, employeeTC, app.ID, leave.CancelRequest{Reason: "changed plans"})
	assert.Equal(t, apperror.KindInvalidTransition, apperror.KindOf(err))

	_, err = f.svc.UpdateDraft(ctx, employeeTC, app.ID, leave.UpdateApplicationRequest{
		LeaveTypeID: "annual", StartDate: "2025-01-20", EndDate: "2025-01-20", Reason: "x",
	})
	assert.Equal(t, apperror.KindInvalidTransition, apperror.KindOf(err))

	assert.Equal(t, before, f.balance())
}

func TestCancelPending_ReleasesBalance(t *testing.T) {
	f := newFixture(t)
	app := f.apply(t, "2025-01-13", "2025-01-15")

	resp, err := f.svc.Cancel(context.Background(), employeeTC, app.ID, leave.CancelRequest{Reason: "changed plans"})
	require.NoError(t, err)
	assert.Equal(t, "cancelled", resp.Status.Value)
	assert.True(t, f.balance().Available().Equal(decimal.NewFromInt(10)))
}

func TestDraftLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	draft, err := f.svc.CreateApplication(ctx, employeeTC, leave.CreateApplicationRequest{
		LeaveTypeID: "annual", StartDate: "2025-01-13", EndDate: "2025-01-14", Reason: "draft",
	})
	require.NoError(t, err)
	assert.Equal(t, "draft", draft.Status.Value)
	assert.True(t, f.balance().PendingQuota.IsZero(), "drafts do not reserve")

	updated, err := f.svc.UpdateDraft(ctx, employeeTC, draft.ID, leave.UpdateApplicationRequest{
		LeaveTypeID: "annual", StartDate: "2025-01-13", EndDate: "2025-01-17", Reason: "whole week",
	})
	require.NoError(t, err)
	assert.True(t, updated.Days.Equal(decimal.NewFromInt(5)))

	submitted, err := f.svc.Submit(ctx, employeeTC, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, "pending", submitted.Status.Value)
	assert.True(t, f.balance().PendingQuota.Equal(decimal.NewFromInt(5)))

	again, err := f.svc.Submit(ctx, employeeTC, draft.ID)
	require.NoError(t, err, "submitting twice is a no-op")
	assert.Equal(t, "pending", again.Status.Value)
	assert.True(t, f.balance().PendingQuota.Equal(decimal.NewFromInt(5)))
}

func TestSelfApprovalIsForbidden(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.store.balances[balanceKey("emp-9", "annual", 2025)] = leave.LeaveBalance{
		ID: "bal-9", CompanyID: "c1", EmployeeID: "emp-9", LeaveTypeID: "annual", Year: 2025, OpeningBalance: decimal.NewFromInt(5),
	}
	app, err := f.svc.CreateApplication(ctx, managerTC, leave.CreateApplicationRequest{
		LeaveTypeID: "annual", StartDate: "2025-01-13", EndDate: "2025-01-13", Reason: "own", Submit: true,
	})
	require.NoError(t, err)

	_, err = f.svc.Approve(ctx, managerTC, app.ID, leave.DecisionRequest{})
	assert.ErrorIs(t, err, approval.ErrSelfApproval)
}

func TestTenantAndOwnershipChecks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	app := f.apply(t, "2025-01-13", "2025-01-15")

	_, err := f.svc.GetApplication(ctx, leadTC, app.ID)
	assert.Equal(t, apperror.KindForbidden, apperror.KindOf(err))

	other := tenant.Context{CompanyID: "c2", UserID: "u-x", EmployeeID: "emp-x", Role: user.RoleOwner}
	_, err = f.svc.GetApplication(ctx, other, app.ID)
	assert.ErrorIs(t, err, leave.ErrLeaveApplicationNotFound)

	list, err := f.svc.ListApplications(ctx, leadTC, leave.ListApplicationsFilter{EmployeeID: "emp-1"})
	require.NoError(t, err)
	assert.Empty(t, list.Applications, "employees only list their own")

	list, err = f.svc.ListApplications(ctx, managerTC, leave.ListApplicationsFilter{})
	require.NoError(t, err)
	assert.Len(t, list.Applications, 1)
	assert.Equal(t, 20, list.Limit)
}

func TestFailedSideEffectRollsBack(t *testing.T) {
	f := newFixture(t)
	f.approval.failCreate = errors.New("connection reset")

	_, err := f.svc.CreateApplication(context.Background(), employeeTC, leave.CreateApplicationRequest{
		LeaveTypeID: "annual", StartDate: "2025-01-13", EndDate: "2025-01-15", Reason: "trip", Submit: true,
	})
	require.Error(t, err)
	assert.Equal(t, apperror.KindFatal, apperror.KindOf(err))
	assert.Empty(t, f.store.applications)
	assert.True(t, f.balance().PendingQuota.IsZero())
	assert.Empty(t, f.store.entries)
	assert.Empty(t, f.store.dispatched, "no job for a rolled back change")
}

func TestAdjustBalance(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.apply(t, "2025-01-13", "2025-01-15")

	_, err := f.svc.AdjustBalance(ctx, leadTC, leave.AdjustBalanceRequest{
		EmployeeID: "emp-1", LeaveTypeID: "annual", Year: 2025, Days: decimal.NewFromInt(2), Reason: "bonus",
	})
	assert.Equal(t, apperror.KindForbidden, apperror.KindOf(err), "employees cannot adjust balances")

	_, err = f.svc.AdjustBalance(ctx, managerTC, leave.AdjustBalanceRequest{
		EmployeeID: "emp-1", LeaveTypeID: "annual", Year: 2025, Days: decimal.NewFromInt(-8), Reason: "correction",
	})
	var ve validator.ValidationErrors
	require.ErrorAs(t, err, &ve)
	assert.True(t, ve.Has("days"))

	resp, err := f.svc.AdjustBalance(ctx, ownerTC, leave.AdjustBalanceRequest{
		EmployeeID: "emp-1", LeaveTypeID: "annual", Year: 2025, Days: decimal.RequireFromString("1.5"), Reason: "overtime swap",
	})
	require.NoError(t, err)
	assert.True(t, resp.Granted.Equal(decimal.RequireFromString("11.5")))
	assert.True(t, resp.Available.Equal(decimal.RequireFromString("8.5")))

	last := f.store.entries[len(f.store.entries)-1]
	assert.Equal(t, leave.EntryAdjust, last.Kind)
	assert.Equal(t, "u-own", last.ActorID)
	assert.Equal(t, "overtime swap", last.Reason)

	balances, err := f.svc.GetBalances(ctx, employeeTC, "", 2025)
	require.NoError(t, err)
	require.Len(t, balances, 1)
	assert.True(t, balances[0].Pending.Equal(decimal.NewFromInt(3)))
}

func TestSubmit_SerializesPerEmployeeAcrossTypes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.store.trace = nil
	f.apply(t, "2025-01-13", "2025-01-15")
	assert.Equal(t, []string{"employee:emp-1", "balance:annual", "ranges"}, f.store.trace)

	// A second type without a balance row still takes the employee lock first,
	// then sees the annual leave as an overlap.
	f.store.trace = nil
	_, err := f.svc.CreateApplication(ctx, employeeTC, leave.CreateApplicationRequest{
		LeaveTypeID: "unpaid", StartDate: "2025-01-14", EndDate: "2025-01-14", Reason: "errand", Submit: true,
	})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.True(t, verrs.Has("start_date"))
	require.NotEmpty(t, f.store.trace)
	assert.Equal(t, "employee:emp-1", f.store.trace[0])
	assert.NotContains(t, f.store.trace, "balance:unpaid")
}
