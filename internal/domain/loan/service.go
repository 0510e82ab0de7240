package loan

import (
	"context"

	"github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/tenant"
)

type Service interface {
	SubmitApplication(ctx context.Context, tc tenant.Context, req ApplyRequest) (ApplicationResponse, error)
	ApproveApplication(ctx context.Context, tc tenant.Context, id string, req ApproveRequest) (LoanResponse, error)
	RejectApplication(ctx context.Context, tc tenant.Context, id string, req RejectRequest) (ApplicationResponse, error)
	CancelApplication(ctx context.Context, tc tenant.Context, id string) (ApplicationResponse, error)
	GetApplication(ctx context.Context, tc tenant.Context, id string) (ApplicationResponse, error)

	RecordPayment(ctx context.Context, tc tenant.Context, loanID string, req PaymentRequest) (LoanResponse, error)
	ChangeLoanStatus(ctx context.Context, tc tenant.Context, loanID string, req ChangeStatusRequest) (LoanResponse, error)
	GetLoan(ctx context.Context, tc tenant.Context, loanID string) (LoanResponse, error)
	ListLoans(ctx context.Context, tc tenant.Context, filter ListFilter) (ListLoansResponse, error)
}
