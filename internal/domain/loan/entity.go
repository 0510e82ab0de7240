package loan

import (
	"time"

	"github.com/shopspring/decimal"
)

type LoanApplication struct {
	ID           string
	CompanyID    string
	EmployeeID   string
	LoanType     string
	Principal    decimal.Decimal
	TotalAmount  decimal.Decimal // principal plus any flat interest agreed on
	Installments int
	Purpose      string
	Status       ApplicationStatus

	DecidedBy       *string
	DecidedAt       *time.Time
	RejectionReason *string

	CreatedAt time.Time
	UpdatedAt time.Time

	EmployeeName *string
}

type Loan struct {
	ID                string
	CompanyID         string
	EmployeeID        string
	ApplicationID     string
	LoanType          string
	TotalAmount       decimal.Decimal
	RemainingBalance  decimal.Decimal
	TotalPaid         decimal.Decimal
	InstallmentAmount decimal.Decimal
	Status            LoanStatus
	StartDate         time.Time
	CompletedAt       *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time

	// Loaded for detail reads
	Deductions []Deduction
	Payments   []Payment
}

type Deduction struct {
	ID         string
	LoanID     string
	Sequence   int
	DueDate    time.Time
	Amount     decimal.Decimal
	Status     DeductionStatus
	DeductedAt *time.Time
}

type Payment struct {
	ID         string
	CompanyID  string
	LoanID     string
	Amount     decimal.Decimal
	PaidAt     time.Time
	Reference  *string
	RecordedBy string
	CreatedAt  time.Time
}

// InstallmentAmount splits total into n equal amounts truncated to cents.
func InstallmentAmount(total decimal.Decimal, n int) decimal.Decimal {
	return total.Div(decimal.NewFromInt(int64(n))).Truncate(2)
}

// Schedule lays out n monthly deductions from first. The last one absorbs the
// rounding remainder so the amounts always sum to total.
func Schedule(loanID string, total decimal.Decimal, n int, first time.Time) []Deduction {
	each := InstallmentAmount(total, n)
	out := make([]Deduction, n)
	allocated := decimal.Zero
	for i := 0; i < n; i++ {
		amount := each
		if i == n-1 {
			amount = total.Sub(allocated)
		}
		allocated = allocated.Add(amount)
		out[i] = Deduction{
			LoanID:   loanID,
			Sequence: i + 1,
			DueDate:  first.AddDate(0, i, 0),
			Amount:   amount,
			Status:   DeductionScheduled,
		}
	}
	return out
}

// ApplyPayment moves amount from the remaining balance to the paid total.
func (l *Loan) ApplyPayment(amount decimal.Decimal) error {
	if !l.Status.Repayable() {
		// Reported as the settlement transition the payment would imply.
		_, err := LoanMachine.Transition(l.Status, LoanCompleted)
		return err
	}
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	if amount.Round(2).Cmp(amount) != 0 {
		return ErrInvalidAmount
	}
	if amount.GreaterThan(l.RemainingBalance) {
		return ErrOverpayment
	}
	l.RemainingBalance = l.RemainingBalance.Sub(amount)
	l.TotalPaid = l.TotalPaid.Add(amount)
	return nil
}

// PaidOff is true once nothing remains.
func (l Loan) PaidOff() bool {
	return l.RemainingBalance.IsZero()
}

// SettleDeductions marks scheduled deductions covered by totalPaid as deducted,
// in sequence order. When closeOut is set, every remaining scheduled deduction is
// cancelled. It returns the deductions that changed.
func SettleDeductions(ds []Deduction, totalPaid decimal.Decimal, closeOut bool, at time.Time) []Deduction {
	var changed []Deduction
	covered := decimal.Zero
	for i := range ds {
		covered = covered.Add(ds[i].Amount)
		if ds[i].Status != DeductionScheduled {
			continue
		}
		switch {
		case covered.LessThanOrEqual(totalPaid):
			ds[i].Status = DeductionDeducted
			ds[i].DeductedAt = &at
		case closeOut:
			ds[i].Status = DeductionCancelled
		default:
			continue
		}
		changed = append(changed, ds[i])
	}
	return changed
}
