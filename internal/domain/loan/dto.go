package loan

import (
	"time"

	"github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/status"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// MaxInstallments bounds a repayment schedule to five years of monthly deductions.
const MaxInstallments = 60

type ApplyRequest struct {
	EmployeeID   string           `json:"employee_id,omitempty"`
	LoanType     string           `json:"loan_type"`
	Principal    decimal.Decimal  `json:"principal"`
	TotalAmount  *decimal.Decimal `json:"total_amount,omitempty"`
	Installments int              `json:"installments"`
	Purpose      string           `json:"purpose"`
}

func (r *ApplyRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.LoanType) {
		errs = append(errs, validator.ValidationError{Field: "loan_type", Message: "loan_type is required"})
	}
	if !r.Principal.IsPositive() {
		errs = append(errs, validator.ValidationError{Field: "principal", Message: "principal must be greater than zero"})
	} else if r.Principal.Round(2).Cmp(r.Principal) != 0 {
		errs = append(errs, validator.ValidationError{Field: "principal", Message: "principal must have at most two decimals"})
	}
	if r.TotalAmount != nil && r.TotalAmount.LessThan(r.Principal) {
		errs = append(errs, validator.ValidationError{Field: "total_amount", Message: "total_amount cannot be less than principal"})
	}
	if r.Installments < 1 || r.Installments > MaxInstallments {
		errs = append(errs, validator.ValidationError{Field: "installments", Message: "installments must be between 1 and 60"})
	}
	if validator.IsEmpty(r.Purpose) {
		errs = append(errs, validator.ValidationError{Field: "purpose", Message: "purpose is required"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Total defaults to the principal when no total was agreed.
func (r *ApplyRequest) Total() decimal.Decimal {
	if r.TotalAmount == nil {
		return r.Principal
	}
	return *r.TotalAmount
}

type ApproveRequest struct {
	FirstDeductionDate string `json:"first_deduction_date"`
}

func (r *ApproveRequest) Validate() error {
	if _, ok := validator.IsValidDate(r.FirstDeductionDate); !ok {
		return validator.Fail("first_deduction_date", "first_deduction_date must be in YYYY-MM-DD format")
	}
	return nil
}

type RejectRequest struct {
	Reason string `json:"reason"`
}

func (r *RejectRequest) Validate() error {
	if validator.IsEmpty(r.Reason) {
		return validator.Fail("reason", "reason is required")
	}
	return nil
}

type PaymentRequest struct {
	Amount    decimal.Decimal `json:"amount"`
	PaidAt    string          `json:"paid_at,omitempty"`
	Reference *string         `json:"reference,omitempty"`
}

func (r *PaymentRequest) Validate() error {
	var errs validator.ValidationErrors
	if !r.Amount.IsPositive() || r.Amount.Round(2).Cmp(r.Amount) != 0 {
		errs = append(errs, validator.ValidationError{Field: "amount", Message: "amount must be positive with at most two decimals"})
	}
	if r.PaidAt != "" {
		if _, ok := validator.IsValidDate(r.PaidAt); !ok {
			errs = append(errs, validator.ValidationError{Field: "paid_at", Message: "paid_at must be in YYYY-MM-DD format"})
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ChangeStatusRequest struct {
	Status string `json:"status"`
}

type ListFilter struct {
	EmployeeID string
	Status     *LoanStatus
	Page       int
	Limit      int
}

func (f *ListFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > 100 {
		f.Limit = 20
	}
}

type ApplicationResponse struct {
	ID           string          `json:"id"`
	EmployeeID   string          `json:"employee_id"`
	EmployeeName *string         `json:"employee_name,omitempty"`
	LoanType     string          `json:"loan_type"`
	Principal    decimal.Decimal `json:"principal"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	Installments int             `json:"installments"`
	Purpose      string          `json:"purpose"`
	Status       status.Option   `json:"status"`
	NextStatuses []status.Option `json:"next_statuses"`
	CreatedAt    string          `json:"created_at"`
}

type DeductionResponse struct {
	Sequence int             `json:"sequence"`
	DueDate  string          `json:"due_date"`
	Amount   decimal.Decimal `json:"amount"`
	Status   DeductionStatus `json:"status"`
}

type PaymentResponse struct {
	ID         string          `json:"id"`
	Amount     decimal.Decimal `json:"amount"`
	PaidAt     string          `json:"paid_at"`
	Reference  *string         `json:"reference,omitempty"`
	RecordedBy string          `json:"recorded_by"`
}

type LoanResponse struct {
	ID                string              `json:"id"`
	EmployeeID        string              `json:"employee_id"`
	ApplicationID     string              `json:"application_id"`
	LoanType          string              `json:"loan_type"`
	TotalAmount       decimal.Decimal     `json:"total_amount"`
	RemainingBalance  decimal.Decimal     `json:"remaining_balance"`
	TotalPaid         decimal.Decimal     `json:"total_paid"`
	InstallmentAmount decimal.Decimal     `json:"installment_amount"`
	Status            status.Option       `json:"status"`
	NextStatuses      []status.Option     `json:"next_statuses"`
	StartDate         string              `json:"start_date"`
	Deductions        []DeductionResponse `json:"deductions,omitempty"`
	Payments          []PaymentResponse   `json:"payments,omitempty"`
}

type ListLoansResponse struct {
	Loans      []LoanResponse `json:"loans"`
	TotalCount int64          `json:"total_count"`
	Page       int            `json:"page"`
	Limit      int            `json:"limit"`
}

func NewApplicationResponse(a LoanApplication) ApplicationResponse {
	return ApplicationResponse{
		ID:           a.ID,
		EmployeeID:   a.EmployeeID,
		EmployeeName: a.EmployeeName,
		LoanType:     a.LoanType,
		Principal:    a.Principal,
		TotalAmount:  a.TotalAmount,
		Installments: a.Installments,
		Purpose:      a.Purpose,
		Status:       ApplicationMachine.Option(a.Status),
		NextStatuses: ApplicationMachine.NextOptions(a.Status),
		CreatedAt:    a.CreatedAt.Format(time.RFC3339),
	}
}

func NewLoanResponse(l Loan) LoanResponse {
	resp := LoanResponse{
		ID:                l.ID,
		EmployeeID:        l.EmployeeID,
		ApplicationID:     l.ApplicationID,
		LoanType:          l.LoanType,
		TotalAmount:       l.TotalAmount,
		RemainingBalance:  l.RemainingBalance,
		TotalPaid:         l.TotalPaid,
		InstallmentAmount: l.InstallmentAmount,
		Status:            LoanMachine.Option(l.Status),
		NextStatuses:      LoanMachine.NextOptions(l.Status),
		StartDate:         l.StartDate.Format(validator.DateLayout),
	}
	for _, d := range l.Deductions {
		resp.Deductions = append(resp.Deductions, DeductionResponse{
			Sequence: d.Sequence,
			DueDate:  d.DueDate.Format(validator.DateLayout),
			Amount:   d.Amount,
			Status:   d.Status,
		})
	}
	for _, p := range l.Payments {
		resp.Payments = append(resp.Payments, PaymentResponse{
			ID:         p.ID,
			Amount:     p.Amount,
			PaidAt:     p.PaidAt.Format(validator.DateLayout),
			Reference:  p.Reference,
			RecordedBy: p.RecordedBy,
		})
	}
	return resp
}
