package loan

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/loan"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/tenant"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/pkg/apperror"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	apps       map[string]loan.LoanApplication
	loans      map[string]loan.Loan
	deductions map[string][]loan.Deduction
	payments   map[string][]loan.Payment
}

func newMemStore() *memStore {
	return &memStore{
		apps:       map[string]loan.LoanApplication{},
		loans:      map[string]loan.Loan{},
		deductions: map[string][]loan.Deduction{},
		payments:   map[string][]loan.Payment{},
	}
}

type appRepo struct{ s *memStore }

func (r appRepo) Create(ctx context.Context, a loan.LoanApplication) error {
	r.s.apps[a.ID] = a
	return nil
}

func (r appRepo) GetByID(ctx context.Context, companyID, id string) (loan.LoanApplication, error) {
	a, ok := r.s.apps[id]
	if !ok || a.CompanyID != companyID {
		return loan.LoanApplication{}, loan.ErrLoanApplicationNotFound
	}
	return a, nil
}

func (r appRepo) GetByIDForUpdate(ctx context.Context, companyID, id string) (loan.LoanApplication, error) {
	return r.GetByID(ctx, companyID, id)
}

func (r appRepo) Update(ctx context.Context, a loan.LoanApplication) error {
	r.s.apps[a.ID] = a
	return nil
}

func (r appRepo) FindOpen(ctx context.Context, companyID, employeeID, loanType string) ([]string, error) {
	var ids []string
	for _, a := range r.s.apps {
		if a.EmployeeID != employeeID || a.LoanType != loanType {
			continue
		}
		if a.Status == loan.ApplicationPending {
			ids = append(ids, a.ID)
		}
	}
	for _, l := range r.s.loans {
		if l.EmployeeID == employeeID && l.LoanType == loanType && l.Status.Repayable() {
			ids = append(ids, l.ApplicationID)
		}
	}
	return ids, nil
}

type loanRepo struct{ s *memStore }

func (r loanRepo) Create(ctx context.Context, l loan.Loan) error {
	l.Deductions, l.Payments = nil, nil
	r.s.loans[l.ID] = l
	return nil
}

func (r loanRepo) GetByID(ctx context.Context, companyID, id string) (loan.Loan, error) {
	l, ok := r.s.loans[id]
	if !ok || l.CompanyID != companyID {
		return loan.Loan{}, loan.ErrLoanNotFound
	}
	return l, nil
}

func (r loanRepo) GetByIDForUpdate(ctx context.Context, companyID, id string) (loan.Loan, error) {
	return r.GetByID(ctx, companyID, id)
}

func (r loanRepo) Update(ctx context.Context, l loan.Loan) error {
	l.Deductions, l.Payments = nil, nil
	r.s.loans[l.ID] = l
	return nil
}

func (r loanRepo) List(ctx context.Context, companyID string, f loan.ListFilter) ([]loan.Loan, int64, error) {
	var out []loan.Loan
	for _, l := range r.s.loans {
		if l.CompanyID == companyID && (f.EmployeeID == "" || l.EmployeeID == f.EmployeeID) {
			out = append(out, l)
		}
	}
	return out, int64(len(out)), nil
}

func (r loanRepo) CreateDeductions(ctx context.Context, ds []loan.Deduction) error {
	for _, d := range ds {
		r.s.deductions[d.LoanID] = append(r.s.deductions[d.LoanID], d)
	}
	return nil
}

func (r loanRepo) ListDeductions(ctx context.Context, loanID string) ([]loan.Deduction, error) {
	out := append([]loan.Deduction(nil), r.s.deductions[loanID]...)
	sort.Slice(out, func(i, j int) bool { return out[i].Sequence < out[j].Sequence })
	return out, nil
}

func (r loanRepo) UpdateDeduction(ctx context.Context, d loan.Deduction) error {
	ds := r.s.deductions[d.LoanID]
	for i := range ds {
		if ds[i].ID == d.ID {
			ds[i] = d
		}
	}
	return nil
}

func (r loanRepo) CreatePayment(ctx context.Context, p loan.Payment) error {
	r.s.payments[p.LoanID] = append(r.s.payments[p.LoanID], p)
	return nil
}

func (r loanRepo) ListPayments(ctx context.Context, loanID string) ([]loan.Payment, error) {
	return r.s.payments[loanID], nil
}

var (
	employeeTC = tenant.Context{CompanyID: "c1", UserID: "u-emp", EmployeeID: "emp-1", Role: user.RoleEmployee}
	managerTC  = tenant.Context{CompanyID: "c1", UserID: "u-mgr", EmployeeID: "emp-9", Role: user.RoleManager}
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newService(s *memStore) loan.Service {
	tx := database.TransactorFunc(func(ctx context.Context, fn func(ctx context.Context) error) error { return fn(ctx) })
	svc := NewLoanService(tx, appRepo{s}, loanRepo{s}, nil)
	svc.(*LoanServiceImpl).now = func() time.Time { return time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC) }
	return svc
}

func approvedLoan(t *testing.T, svc loan.Service, total string, installments int) loan.LoanResponse {
	t.Helper()
	ctx := context.Background()
	app, err := svc.SubmitApplication(ctx, employeeTC, loan.ApplyRequest{
		LoanType: "emergency", Principal: dec(total), Installments: installments, Purpose: "hospital bill",
	})
	require.NoError(t, err)
	l, err := svc.ApproveApplication(ctx, managerTC, app.ID, loan.ApproveRequest{FirstDeductionDate: "2025-02-25"})
	require.NoError(t, err)
	return l
}

func TestApproveApplication_CreatesLoanAndSchedule(t *testing.T) {
	s := newMemStore()
	svc := newService(s)

	l := approvedLoan(t, svc, "1000", 3)
	assert.Equal(t, "active", l.Status.Value)
	assert.True(t, l.RemainingBalance.Equal(dec("1000")))
	assert.True(t, l.TotalPaid.IsZero())
	assert.Equal(t, "333.33", l.InstallmentAmount.String())
	require.Len(t, l.Deductions, 3)
	assert.Equal(t, "2025-04-25", l.Deductions[2].DueDate)
	assert.Equal(t, "333.34", l.Deductions[2].Amount.String())

	stored := s.loans[l.ID]
	assert.Equal(t, loan.ApplicationApproved, s.apps[stored.ApplicationID].Status)
}

func TestSubmitApplication_Duplicate(t *testing.T) {
	s := newMemStore()
	svc := newService(s)
	ctx := context.Background()
	req := loan.ApplyRequest{LoanType: "emergency", Principal: dec("500"), Installments: 2, Purpose: "rent"}

	_, err := svc.SubmitApplication(ctx, employeeTC, req)
	require.NoError(t, err)

	_, err = svc.SubmitApplication(ctx, employeeTC, req)
	var ve validator.ValidationErrors
	require.ErrorAs(t, err, &ve)
	assert.True(t, ve.Has("loan_type"))

	req.LoanType = "education"
	_, err = svc.SubmitApplication(ctx, employeeTC, req)
	assert.NoError(t, err)
}

func TestRecordPayment_OverpayRejected(t *testing.T) {
	s := newMemStore()
	svc := newService(s)
	ctx := context.Background()
	l := approvedLoan(t, svc, "1000", 2)

	paid, err := svc.RecordPayment(ctx, managerTC, l.ID, loan.PaymentRequest{Amount: dec("500")})
	require.NoError(t, err)
	assert.True(t, paid.RemainingBalance.Equal(dec("500")))
	assert.Equal(t, loan.DeductionDeducted, paid.Deductions[0].Status)
	assert.Equal(t, loan.DeductionScheduled, paid.Deductions[1].Status)

	_, err = svc.RecordPayment(ctx, managerTC, l.ID, loan.PaymentRequest{Amount: dec("600")})
	var ve validator.ValidationErrors
	require.ErrorAs(t, err, &ve)
	assert.True(t, ve.Has("amount"))

	stored := s.loans[l.ID]
	assert.True(t, stored.RemainingBalance.Equal(dec("500")), "balance unchanged")
	assert.True(t, stored.TotalPaid.Equal(dec("500")))
	assert.Len(t, s.payments[l.ID], 1, "no payment written")
}

func TestRecordPayment_CompletesLoan(t *testing.T) {
	s := newMemStore()
	svc := newService(s)
	ctx := context.Background()
	l := approvedLoan(t, svc, "900", 3)

	_, err := svc.ChangeLoanStatus(ctx, managerTC, l.ID, loan.ChangeStatusRequest{Status: "defaulted"})
	require.NoError(t, err)

	done, err := svc.RecordPayment(ctx, managerTC, l.ID, loan.PaymentRequest{Amount: dec("900"), PaidAt: "2025-01-20"})
	require.NoError(t, err)
	assert.Equal(t, "completed", done.Status.Value)
	assert.True(t, done.RemainingBalance.IsZero())
	for _, d := range done.Deductions {
		assert.Equal(t, loan.DeductionDeducted, d.Status)
	}
	assert.Equal(t, "2025-01-20", done.Payments[0].PaidAt)

	_, err = svc.RecordPayment(ctx, managerTC, l.ID, loan.PaymentRequest{Amount: dec("1")})
	assert.Equal(t, apperror.KindInvalidTransition, apperror.KindOf(err))
}

func TestChangeLoanStatus(t *testing.T) {
	s := newMemStore()
	svc := newService(s)
	ctx := context.Background()
	l := approvedLoan(t, svc, "300", 3)

	_, err := svc.ChangeLoanStatus(ctx, employeeTC, l.ID, loan.ChangeStatusRequest{Status: "cancelled"})
	assert.Equal(t, apperror.KindForbidden, apperror.KindOf(err))

	_, err = svc.ChangeLoanStatus(ctx, managerTC, l.ID, loan.ChangeStatusRequest{Status: "completed"})
	var ve validator.ValidationErrors
	require.ErrorAs(t, err, &ve, "cannot complete with an outstanding balance")

	cancelled, err := svc.ChangeLoanStatus(ctx, managerTC, l.ID, loan.ChangeStatusRequest{Status: "cancelled"})
	require.NoError(t, err)
	for _, d := range cancelled.Deductions {
		assert.Equal(t, loan.DeductionCancelled, d.Status)
	}

	_, err = svc.ChangeLoanStatus(ctx, managerTC, l.ID, loan.ChangeStatusRequest{Status: "active"})
	assert.Equal(t, apperror.KindInvalidTransition, apperror.KindOf(err))

	_, err = svc.ChangeLoanStatus(ctx, managerTC, l.ID, loan.ChangeStatusRequest{Status: "frozen"})
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
}

func TestApplicationCancelAndReject(t *testing.T) {
	s := newMemStore()
	svc := newService(s)
	ctx := context.Background()

	app, err := svc.SubmitApplication(ctx, employeeTC, loan.ApplyRequest{LoanType: "emergency", Principal: dec("200"), Installments: 1, Purpose: "repairs"})
	require.NoError(t, err)

	_, err = svc.CancelApplication(ctx, managerTC, app.ID)
	assert.ErrorIs(t, err, loan.ErrNotApplicant)

	rejected, err := svc.RejectApplication(ctx, managerTC, app.ID, loan.RejectRequest{Reason: "budget"})
	require.NoError(t, err)
	assert.Equal(t, "rejected", rejected.Status.Value)

	_, err = svc.ApproveApplication(ctx, managerTC, app.ID, loan.ApproveRequest{FirstDeductionDate: "2025-02-01"})
	assert.Equal(t, apperror.KindInvalidTransition, apperror.KindOf(err))

	_, err = svc.GetApplication(ctx, tenant.Context{CompanyID: "c1", UserID: "u-2", EmployeeID: "emp-2", Role: user.RoleEmployee}, app.ID)
	assert.Equal(t, apperror.KindForbidden, apperror.KindOf(err))
}
