package payroll

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/tenant"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/pkg/apperror"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/pkg/jobs"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type periodRepo struct{ periods map[string]payroll.PayrollPeriod }

func (r *periodRepo) Create(ctx context.Context, p payroll.PayrollPeriod) error {
	r.periods[p.ID] = p
	return nil
}

func (r *periodRepo) GetByID(ctx context.Context, companyID, id string) (payroll.PayrollPeriod, error) {
	p, ok := r.periods[id]
	if !ok || p.CompanyID != companyID {
		return payroll.PayrollPeriod{}, payroll.ErrPayrollPeriodNotFound
	}
	return p, nil
}

func (r *periodRepo) GetByIDForUpdate(ctx context.Context, companyID, id string) (payroll.PayrollPeriod, error) {
	return r.GetByID(ctx, companyID, id)
}

func (r *periodRepo) Update(ctx context.Context, p payroll.PayrollPeriod) error {
	r.periods[p.ID] = p
	return nil
}

func (r *periodRepo) List(ctx context.Context, companyID string, filter payroll.PeriodFilter) ([]payroll.PayrollPeriod, int64, error) {
	var out []payroll.PayrollPeriod
	for _, p := range r.periods {
		if p.CompanyID == companyID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.Before(out[j].StartDate) })
	return out, int64(len(out)), nil
}

func (r *periodRepo) ListRanges(ctx context.Context, companyID string) ([]validator.Ranged, error) {
	var out []validator.Ranged
	for _, p := range r.periods {
		if p.CompanyID == companyID {
			out = append(out, validator.Ranged{ID: p.ID, Range: p.Range()})
		}
	}
	return out, nil
}

type entryRepo struct{ entries map[string]payroll.PayrollEntry }

func (r *entryRepo) Create(ctx context.Context, e payroll.PayrollEntry) error {
	r.entries[e.ID] = e
	return nil
}

func (r *entryRepo) GetByIDForUpdate(ctx context.Context, companyID, id string) (payroll.PayrollEntry, error) {
	e, ok := r.entries[id]
	if !ok || e.CompanyID != companyID {
		return payroll.PayrollEntry{}, payroll.ErrPayrollEntryNotFound
	}
	return e, nil
}

func (r *entryRepo) Update(ctx context.Context, e payroll.PayrollEntry) error {
	r.entries[e.ID] = e
	return nil
}

func (r *entryRepo) ListByPeriod(ctx context.Context, companyID, periodID string) ([]payroll.PayrollEntry, error) {
	var out []payroll.PayrollEntry
	for _, e := range r.entries {
		if e.CompanyID == companyID && e.PeriodID == periodID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *entryRepo) FindByEmployee(ctx context.Context, companyID, periodID, employeeID string) ([]string, error) {
	var ids []string
	for _, e := range r.entries {
		if e.CompanyID == companyID && e.PeriodID == periodID && e.EmployeeID == employeeID {
			ids = append(ids, e.ID)
		}
	}
	return ids, nil
}

var (
	managerTC  = tenant.Context{CompanyID: "c1", UserID: "u-mgr", EmployeeID: "emp-9", Role: user.RoleManager}
	ownerTC    = tenant.Context{CompanyID: "c1", UserID: "u-own", Role: user.RoleOwner}
	employeeTC = tenant.Context{CompanyID: "c1", UserID: "u-emp", EmployeeID: "emp-1", Role: user.RoleEmployee}

	employeeA = "0190a0b2-0000-7000-8000-00000000000a"
	employeeB = "0190a0b2-0000-7000-8000-00000000000b"
)

type fixture struct {
	svc     payroll.Service
	periods *periodRepo
	entries *entryRepo
	sent    []jobs.Job
}

func newFixture() *fixture {
	f := &fixture{
		periods: &periodRepo{periods: map[string]payroll.PayrollPeriod{}},
		entries: &entryRepo{entries: map[string]payroll.PayrollEntry{}},
	}
	tx := database.TransactorFunc(func(ctx context.Context, fn func(ctx context.Context) error) error { return fn(ctx) })
	d := jobs.DispatcherFunc(func(ctx context.Context, job jobs.Job) error {
		f.sent = append(f.sent, job)
		return nil
	})
	f.svc = NewPayrollService(tx, f.periods, f.entries, d)
	f.svc.(*PayrollServiceImpl).now = func() time.Time { return time.Date(2025, 1, 31, 9, 0, 0, 0, time.UTC) }
	return f
}

func (f *fixture) period(t *testing.T, start, end string) payroll.PeriodResponse {
	t.Helper()
	p, err := f.svc.CreatePeriod(context.Background(), managerTC, payroll.CreatePeriodRequest{
		Name: "Payroll " + start, StartDate: start, EndDate: end, PayDate: end,
	})
	require.NoError(t, err)
	return p
}

func (f *fixture) move(t *testing.T, id string, to payroll.PeriodStatus) {
	t.Helper()
	_, err := f.svc.ChangePeriodStatus(context.Background(), managerTC, id, payroll.ChangeStatusRequest{Status: string(to)})
	require.NoError(t, err)
}

func amounts(employeeID string, base, allowances, deductions int64) payroll.EntryAmountsRequest {
	return payroll.EntryAmountsRequest{
		EmployeeID:      employeeID,
		BaseSalary:      decimal.NewFromInt(base),
		TotalAllowances: decimal.NewFromInt(allowances),
		TotalDeductions: decimal.NewFromInt(deductions),
	}
}

func TestCreatePeriod_RejectsOverlap(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.period(t, "2025-01-01", "2025-01-31")

	_, err := f.svc.CreatePeriod(ctx, managerTC, payroll.CreatePeriodRequest{
		Name: "Late January", StartDate: "2025-01-31", EndDate: "2025-02-27", PayDate: "2025-02-28",
	})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.True(t, verrs.Has("start_date"))

	f.period(t, "2025-02-01", "2025-02-28")

	_, err = f.svc.CreatePeriod(ctx, employeeTC, payroll.CreatePeriodRequest{
		Name: "March", StartDate: "2025-03-01", EndDate: "2025-03-31", PayDate: "2025-03-31",
	})
	assert.Equal(t, apperror.KindForbidden, apperror.KindOf(err))
}

func TestPeriodLifecycle_CloseRequiresEveryEntryPaid(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	p := f.period(t, "2025-01-01", "2025-01-31")

	_, err := f.svc.CreateEntry(ctx, managerTC, p.ID, amounts(employeeA, 5000, 500, 200))
	assert.ErrorIs(t, err, payroll.ErrPeriodNotAcceptingEntries, "draft periods take no entries")

	f.move(t, p.ID, payroll.PeriodOpen)
	entry, err := f.svc.CreateEntry(ctx, managerTC, p.ID, amounts(employeeA, 5000, 500, 200))
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(5300).Equal(entry.NetSalary))

	_, err = f.svc.ChangeEntryStatus(ctx, managerTC, entry.ID, payroll.ChangeStatusRequest{Status: "approved"})
	require.NoError(t, err)

	_, err = f.svc.ChangeEntryStatus(ctx, ownerTC, entry.ID, payroll.ChangeStatusRequest{Status: "paid"})
	assert.ErrorIs(t, err, payroll.ErrPeriodNotProcessing)

	f.move(t, p.ID, payroll.PeriodProcessing)

	_, err = f.svc.ChangePeriodStatus(ctx, managerTC, p.ID, payroll.ChangeStatusRequest{Status: "closed"})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "1 of 1 entries are not paid yet", verrs.ToMap()["entries"])

	_, err = f.svc.ChangeEntryStatus(ctx, managerTC, entry.ID, payroll.ChangeStatusRequest{Status: "paid"})
	assert.Equal(t, apperror.KindForbidden, apperror.KindOf(err), "only owners release pay")

	paid, err := f.svc.ChangeEntryStatus(ctx, ownerTC, entry.ID, payroll.ChangeStatusRequest{Status: "paid"})
	require.NoError(t, err)
	require.NotNil(t, paid.PaidAt)
	assert.Empty(t, paid.NextStatuses)

	_, err = f.svc.ChangeEntryStatus(ctx, ownerTC, entry.ID, payroll.ChangeStatusRequest{Status: "paid"})
	assert.Equal(t, apperror.KindInvalidTransition, apperror.KindOf(err), "paying twice must surface")

	closed, err := f.svc.ChangePeriodStatus(ctx, managerTC, p.ID, payroll.ChangeStatusRequest{Status: "closed"})
	require.NoError(t, err)
	assert.Equal(t, "closed", closed.Status.Value)

	_, err = f.svc.ChangePeriodStatus(ctx, managerTC, p.ID, payroll.ChangeStatusRequest{Status: "open"})
	assert.Equal(t, apperror.KindInvalidTransition, apperror.KindOf(err))

	// approved + paid notifications
	require.Len(t, f.sent, 2)
}

func TestCreateEntry_RejectsSecondEntryForEmployee(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	p := f.period(t, "2025-01-01", "2025-01-31")
	f.move(t, p.ID, payroll.PeriodOpen)

	_, err := f.svc.CreateEntry(ctx, managerTC, p.ID, amounts(employeeA, 1000, 0, 0))
	require.NoError(t, err)
	_, err = f.svc.CreateEntry(ctx, managerTC, p.ID, amounts(employeeB, 1000, 0, 0))
	require.NoError(t, err)

	_, err = f.svc.CreateEntry(ctx, managerTC, p.ID, amounts(employeeA, 2000, 0, 0))
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.True(t, verrs.Has("employee_id"))
	assert.Len(t, f.entries.entries, 2)
}

func TestUpdateEntryAmounts(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	p := f.period(t, "2025-01-01", "2025-01-31")
	f.move(t, p.ID, payroll.PeriodOpen)
	entry, err := f.svc.CreateEntry(ctx, managerTC, p.ID, amounts(employeeA, 1000, 100, 50))
	require.NoError(t, err)

	updated, err := f.svc.UpdateEntryAmounts(ctx, managerTC, entry.ID, amounts("", 1200, 300, 150))
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(1350).Equal(updated.NetSalary))

	_, err = f.svc.UpdateEntryAmounts(ctx, managerTC, entry.ID, amounts("", -1, 0, 0))
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.True(t, verrs.Has("base_salary"))

	_, err = f.svc.ChangeEntryStatus(ctx, managerTC, entry.ID, payroll.ChangeStatusRequest{Status: "approved"})
	require.NoError(t, err)
	_, err = f.svc.UpdateEntryAmounts(ctx, managerTC, entry.ID, amounts("", 1, 0, 0))
	assert.Equal(t, apperror.KindInvalidTransition, apperror.KindOf(err), "approved entries are frozen")
}

func TestGetPeriodIncludesTotals(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	p := f.period(t, "2025-01-01", "2025-01-31")
	f.move(t, p.ID, payroll.PeriodOpen)
	_, err := f.svc.CreateEntry(ctx, managerTC, p.ID, amounts(employeeA, 1000, 100, 50))
	require.NoError(t, err)
	_, err = f.svc.CreateEntry(ctx, managerTC, p.ID, amounts(employeeB, 2000, 0, 100))
	require.NoError(t, err)

	got, err := f.svc.GetPeriod(ctx, managerTC, p.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Totals)
	assert.Equal(t, 2, got.Totals.EntryCount)
	assert.True(t, decimal.NewFromInt(2950).Equal(got.Totals.TotalNetSalary))

	_, err = f.svc.GetPeriod(ctx, managerTC, "missing")
	assert.ErrorIs(t, err, payroll.ErrPayrollPeriodNotFound)
}
