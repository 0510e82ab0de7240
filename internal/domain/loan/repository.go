package loan

import "context"

type ApplicationRepository interface {
	Create(ctx context.Context, app LoanApplication) error
	GetByID(ctx context.Context, companyID, id string) (LoanApplication, error)
	GetByIDForUpdate(ctx context.Context, companyID, id string) (LoanApplication, error)
	Update(ctx context.Context, app LoanApplication) error
	// FindOpen returns ids of pending applications and of applications whose
	// loan is still repayable, for one employee and loan type.
	FindOpen(ctx context.Context, companyID, employeeID, loanType string) ([]string, error)
}

type LoanRepository interface {
	Create(ctx context.Context, l Loan) error
	GetByID(ctx context.Context, companyID, id string) (Loan, error)
	GetByIDForUpdate(ctx context.Context, companyID, id string) (Loan, error)
	Update(ctx context.Context, l Loan) error
	List(ctx context.Context, companyID string, filter ListFilter) ([]Loan, int64, error)

	CreateDeductions(ctx context.Context, ds []Deduction) error
	ListDeductions(ctx context.Context, loanID string) ([]Deduction, error)
	UpdateDeduction(ctx context.Context, d Deduction) error

	CreatePayment(ctx context.Context, p Payment) error
	ListPayments(ctx context.Context, loanID string) ([]Payment, error)
}
