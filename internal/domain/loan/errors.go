package loan

import "github.com/cmlabs-hris/hris-lifecycle-go/internal/pkg/apperror"

var (
	ErrLoanApplicationNotFound = apperror.New(apperror.KindNotFound, "loan application not found")
	ErrLoanNotFound            = apperror.New(apperror.KindNotFound, "loan not found")
	ErrInvalidAmount           = apperror.New(apperror.KindValidation, "amount must be positive with at most two decimals")
	ErrOverpayment             = apperror.New(apperror.KindValidation, "payment exceeds the remaining balance")
	ErrNotApplicant            = apperror.New(apperror.KindForbidden, "only the applicant can cancel a loan application")
)
