package loan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/loan"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/notification"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/tenant"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/pkg/jobs"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/pkg/validator"
	"github.com/google/uuid"
)

type LoanServiceImpl struct {
	tx           database.Transactor
	applications loan.ApplicationRepository
	loans        loan.LoanRepository
	jobs         jobs.Dispatcher
	now          func() time.Time
}

func NewLoanService(tx database.Transactor, applications loan.ApplicationRepository, loans loan.LoanRepository, dispatcher jobs.Dispatcher) loan.Service {
	return &LoanServiceImpl{tx: tx, applications: applications, loans: loans, jobs: dispatcher, now: time.Now}
}

// SubmitApplication implements loan.Service.
func (s *LoanServiceImpl) SubmitApplication(ctx context.Context, tc tenant.Context, req loan.ApplyRequest) (loan.ApplicationResponse, error) {
	if err := tc.Require(user.PermissionLoanApply); err != nil {
		return loan.ApplicationResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return loan.ApplicationResponse{}, err
	}
	employeeID, err := tc.SelfOr(req.EmployeeID)
	if err != nil {
		return loan.ApplicationResponse{}, err
	}
	if err := tc.RequireEmployee(employeeID); err != nil {
		return loan.ApplicationResponse{}, err
	}

	now := s.now()
	app := loan.LoanApplication{
		ID:           uuid.Must(uuid.NewV7()).String(),
		CompanyID:    tc.CompanyID,
		EmployeeID:   employeeID,
		LoanType:     req.LoanType,
		Principal:    req.Principal,
		TotalAmount:  req.Total(),
		Installments: req.Installments,
		Purpose:      req.Purpose,
		Status:       loan.ApplicationPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		err := validator.Collect(validator.Duplicate(ctx, "loan_type",
			validator.DuplicateFinderFunc(func(ctx context.Context, key validator.Key) ([]string, error) {
				return s.applications.FindOpen(ctx, tc.CompanyID, key[0], key[1])
			}),
			validator.Key{employeeID, req.LoanType}, "",
			"an open application or loan of this type already exists",
		))
		if err != nil {
			return err
		}
		return s.applications.Create(ctx, app)
	})
	if err != nil {
		return loan.ApplicationResponse{}, err
	}

	slog.Info("Loan application submitted", "application_id", app.ID, "employee_id", employeeID, "total", app.TotalAmount.String(), "actor_id", tc.UserID)
	return loan.NewApplicationResponse(app), nil
}

// ApproveApplication implements loan.Service. The loan and its deduction
// schedule are created in the same transaction.
func (s *LoanServiceImpl) ApproveApplication(ctx context.Context, tc tenant.Context, id string, req loan.ApproveRequest) (loan.LoanResponse, error) {
	if err := tc.Require(user.PermissionLoanApprove); err != nil {
		return loan.LoanResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return loan.LoanResponse{}, err
	}
	first, _ := validator.IsValidDate(req.FirstDeductionDate)

	var app loan.LoanApplication
	var l loan.Loan
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		app, err = s.applications.GetByIDForUpdate(ctx, tc.CompanyID, id)
		if err != nil {
			return err
		}
		if _, err := loan.ApplicationMachine.Transition(app.Status, loan.ApplicationApproved); err != nil {
			return err
		}
		if app.EmployeeID == tc.EmployeeID {
			return tenant.ErrAccessDenied
		}

		now := s.now()
		app.Status = loan.ApplicationApproved
		app.DecidedBy = &tc.UserID
		app.DecidedAt = &now
		app.UpdatedAt = now
		if err := s.applications.Update(ctx, app); err != nil {
			return err
		}

		l = loan.Loan{
			ID:                uuid.Must(uuid.NewV7()).String(),
			CompanyID:         tc.CompanyID,
			EmployeeID:        app.EmployeeID,
			ApplicationID:     app.ID,
			LoanType:          app.LoanType,
			TotalAmount:       app.TotalAmount,
			RemainingBalance:  app.TotalAmount,
			InstallmentAmount: loan.InstallmentAmount(app.TotalAmount, app.Installments),
			Status:            loan.LoanActive,
			StartDate:         first,
			CreatedAt:         now,
			UpdatedAt:         now,
		}
		if err := s.loans.Create(ctx, l); err != nil {
			return err
		}
		l.Deductions = loan.Schedule(l.ID, l.TotalAmount, app.Installments, first)
		for i := range l.Deductions {
			l.Deductions[i].ID = uuid.Must(uuid.NewV7()).String()
		}
		return s.loans.CreateDeductions(ctx, l.Deductions)
	})
	if err != nil {
		return loan.LoanResponse{}, err
	}

	slog.Info("Loan application approved", "application_id", app.ID, "loan_id", l.ID, "installments", app.Installments, "actor_id", tc.UserID)
	s.emit(ctx, tc, app.EmployeeID, loan.ApplicationMachine.Entity(), app.ID, string(loan.ApplicationPending), string(app.Status), loan.ApplicationMachine.Label(app.Status))
	return loan.NewLoanResponse(l), nil
}

// RejectApplication implements loan.Service.
func (s *LoanServiceImpl) RejectApplication(ctx context.Context, tc tenant.Context, id string, req loan.RejectRequest) (loan.ApplicationResponse, error) {
	if err := tc.Require(user.PermissionLoanApprove); err != nil {
		return loan.ApplicationResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return loan.ApplicationResponse{}, err
	}
	app, changed, err := s.closeApplication(ctx, tc, id, loan.ApplicationRejected, func(app *loan.LoanApplication) error {
		if app.EmployeeID == tc.EmployeeID {
			return tenant.ErrAccessDenied
		}
		app.RejectionReason = &req.Reason
		return nil
	})
	if err != nil {
		return loan.ApplicationResponse{}, err
	}
	if changed {
		s.emit(ctx, tc, app.EmployeeID, loan.ApplicationMachine.Entity(), app.ID, string(loan.ApplicationPending), string(app.Status), loan.ApplicationMachine.Label(app.Status))
	}
	return loan.NewApplicationResponse(app), nil
}

// CancelApplication implements loan.Service. Only the applicant may cancel.
func (s *LoanServiceImpl) CancelApplication(ctx context.Context, tc tenant.Context, id string) (loan.ApplicationResponse, error) {
	if err := tc.Validate(); err != nil {
		return loan.ApplicationResponse{}, err
	}
	app, _, err := s.closeApplication(ctx, tc, id, loan.ApplicationCancelled, func(app *loan.LoanApplication) error {
		if app.EmployeeID != tc.EmployeeID {
			return loan.ErrNotApplicant
		}
		return nil
	})
	if err != nil {
		return loan.ApplicationResponse{}, err
	}
	return loan.NewApplicationResponse(app), nil
}

func (s *LoanServiceImpl) closeApplication(ctx context.Context, tc tenant.Context, id string, to loan.ApplicationStatus, guard func(*loan.LoanApplication) error) (loan.LoanApplication, bool, error) {
	var app loan.LoanApplication
	var changed bool
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		app, err = s.applications.GetByIDForUpdate(ctx, tc.CompanyID, id)
		if err != nil {
			return err
		}
		if err := guard(&app); err != nil {
			return err
		}
		changed, err = loan.ApplicationMachine.Transition(app.Status, to)
		if err != nil || !changed {
			return err
		}
		now := s.now()
		app.Status = to
		app.DecidedBy = &tc.UserID
		app.DecidedAt = &now
		app.UpdatedAt = now
		return s.applications.Update(ctx, app)
	})
	if err == nil && changed {
		slog.Info("Loan application closed", "application_id", app.ID, "status", app.Status, "actor_id", tc.UserID)
	}
	return app, changed, err
}

// GetApplication implements loan.Service.
func (s *LoanServiceImpl) GetApplication(ctx context.Context, tc tenant.Context, id string) (loan.ApplicationResponse, error) {
	if err := tc.Validate(); err != nil {
		return loan.ApplicationResponse{}, err
	}
	app, err := s.applications.GetByID(ctx, tc.CompanyID, id)
	if err != nil {
		return loan.ApplicationResponse{}, err
	}
	if err := tc.RequireEmployee(app.EmployeeID); err != nil {
		return loan.ApplicationResponse{}, err
	}
	return loan.NewApplicationResponse(app), nil
}

// RecordPayment implements loan.Service. The loan row is locked for the whole
// read-modify-write; a rejected payment writes nothing.
func (s *LoanServiceImpl) RecordPayment(ctx context.Context, tc tenant.Context, loanID string, req loan.PaymentRequest) (loan.LoanResponse, error) {
	if err := tc.Require(user.PermissionLoanManage); err != nil {
		return loan.LoanResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return loan.LoanResponse{}, err
	}

	var l loan.Loan
	var from loan.LoanStatus
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		l, err = s.loans.GetByIDForUpdate(ctx, tc.CompanyID, loanID)
		if err != nil {
			return err
		}
		from = l.Status
		if err := l.ApplyPayment(req.Amount); err != nil {
			if errors.Is(err, loan.ErrOverpayment) {
				return validator.Fail("amount", fmt.Sprintf("payment exceeds the remaining balance of %s", l.RemainingBalance.String()))
			}
			if errors.Is(err, loan.ErrInvalidAmount) {
				return validator.Fail("amount", err.Error())
			}
			return err
		}

		now := s.now()
		paidAt := now
		if req.PaidAt != "" {
			paidAt, _ = validator.IsValidDate(req.PaidAt)
		}
		payment := loan.Payment{
			ID:         uuid.Must(uuid.NewV7()).String(),
			CompanyID:  tc.CompanyID,
			LoanID:     l.ID,
			Amount:     req.Amount,
			PaidAt:     paidAt,
			Reference:  req.Reference,
			RecordedBy: tc.UserID,
			CreatedAt:  now,
		}
		if err := s.loans.CreatePayment(ctx, payment); err != nil {
			return err
		}

		if l.PaidOff() {
			if _, err := loan.LoanMachine.Transition(l.Status, loan.LoanCompleted); err != nil {
				return err
			}
			l.Status = loan.LoanCompleted
			l.CompletedAt = &now
		}
		l.UpdatedAt = now
		if err := s.loans.Update(ctx, l); err != nil {
			return err
		}

		l.Deductions, err = s.loans.ListDeductions(ctx, l.ID)
		if err != nil {
			return err
		}
		for _, d := range loan.SettleDeductions(l.Deductions, l.TotalPaid, l.PaidOff(), now) {
			if err := s.loans.UpdateDeduction(ctx, d); err != nil {
				return err
			}
		}
		l.Payments, err = s.loans.ListPayments(ctx, l.ID)
		return err
	})
	if err != nil {
		return loan.LoanResponse{}, err
	}

	slog.Info("Loan payment recorded", "loan_id", l.ID, "amount", req.Amount.String(), "remaining", l.RemainingBalance.String(), "actor_id", tc.UserID)
	if l.Status != from {
		s.emit(ctx, tc, l.EmployeeID, loan.LoanMachine.Entity(), l.ID, string(from), string(l.Status), loan.LoanMachine.Label(l.Status))
	}
	return loan.NewLoanResponse(l), nil
}

// ChangeLoanStatus implements loan.Service.
func (s *LoanServiceImpl) ChangeLoanStatus(ctx context.Context, tc tenant.Context, loanID string, req loan.ChangeStatusRequest) (loan.LoanResponse, error) {
	if err := tc.Require(user.PermissionLoanManage); err != nil {
		return loan.LoanResponse{}, err
	}
	to, err := loan.LoanMachine.Parse(req.Status)
	if err != nil {
		return loan.LoanResponse{}, err
	}

	var l loan.Loan
	var from loan.LoanStatus
	var changed bool
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		l, err = s.loans.GetByIDForUpdate(ctx, tc.CompanyID, loanID)
		if err != nil {
			return err
		}
		from = l.Status
		changed, err = loan.LoanMachine.Transition(l.Status, to)
		if err != nil || !changed {
			return err
		}
		if to == loan.LoanCompleted && !l.PaidOff() {
			return validator.Fail("status", fmt.Sprintf("loan still has %s outstanding", l.RemainingBalance.String()))
		}

		now := s.now()
		l.Status = to
		l.UpdatedAt = now
		if to == loan.LoanCompleted {
			l.CompletedAt = &now
		}
		if err := s.loans.Update(ctx, l); err != nil {
			return err
		}

		l.Deductions, err = s.loans.ListDeductions(ctx, l.ID)
		if err != nil {
			return err
		}
		if to == loan.LoanCancelled {
			for _, d := range loan.SettleDeductions(l.Deductions, l.TotalPaid, true, now) {
				if err := s.loans.UpdateDeduction(ctx, d); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return loan.LoanResponse{}, err
	}

	if changed {
		slog.Info("Loan status changed", "loan_id", l.ID, "from", from, "to", l.Status, "actor_id", tc.UserID)
		s.emit(ctx, tc, l.EmployeeID, loan.LoanMachine.Entity(), l.ID, string(from), string(l.Status), loan.LoanMachine.Label(l.Status))
	}
	return loan.NewLoanResponse(l), nil
}

// GetLoan implements loan.Service.
func (s *LoanServiceImpl) GetLoan(ctx context.Context, tc tenant.Context, loanID string) (loan.LoanResponse, error) {
	if err := tc.Validate(); err != nil {
		return loan.LoanResponse{}, err
	}
	l, err := s.loans.GetByID(ctx, tc.CompanyID, loanID)
	if err != nil {
		return loan.LoanResponse{}, err
	}
	if err := tc.RequireEmployee(l.EmployeeID); err != nil {
		return loan.LoanResponse{}, err
	}
	if l.Deductions, err = s.loans.ListDeductions(ctx, l.ID); err != nil {
		return loan.LoanResponse{}, err
	}
	if l.Payments, err = s.loans.ListPayments(ctx, l.ID); err != nil {
		return loan.LoanResponse{}, err
	}
	return loan.NewLoanResponse(l), nil
}

// ListLoans implements loan.Service.
func (s *LoanServiceImpl) ListLoans(ctx context.Context, tc tenant.Context, filter loan.ListFilter) (loan.ListLoansResponse, error) {
	if err := tc.Validate(); err != nil {
		return loan.ListLoansResponse{}, err
	}
	if !tc.IsManager() {
		if tc.EmployeeID == "" {
			return loan.ListLoansResponse{}, tenant.ErrMissingEmployee
		}
		filter.EmployeeID = tc.EmployeeID
	}
	filter.Normalize()

	loans, total, err := s.loans.List(ctx, tc.CompanyID, filter)
	if err != nil {
		return loan.ListLoansResponse{}, err
	}
	out := make([]loan.LoanResponse, 0, len(loans))
	for _, l := range loans {
		out = append(out, loan.NewLoanResponse(l))
	}
	return loan.ListLoansResponse{Loans: out, TotalCount: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func (s *LoanServiceImpl) emit(ctx context.Context, tc tenant.Context, employeeID, subject, subjectID, from, to, label string) {
	jobs.Emit(ctx, s.jobs, notification.JobStatusChanged, tc.CompanyID, notification.StatusChangedPayload{
		RecipientEmployeeID: employeeID,
		ActorUserID:         tc.UserID,
		Subject:             subject,
		SubjectID:           subjectID,
		From:                from,
		To:                  to,
		ToLabel:             label,
	})
}
