package loan

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestSchedule_LastInstallmentAbsorbsRemainder(t *testing.T) {
	first := time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)
	ds := Schedule("loan-1", d("1000"), 3, first)
	require.Len(t, ds, 3)

	assert.Equal(t, "333.33", ds[0].Amount.String())
	assert.Equal(t, "333.33", ds[1].Amount.String())
	assert.Equal(t, "333.34", ds[2].Amount.String())

	sum := decimal.Zero
	for i, x := range ds {
		assert.Equal(t, i+1, x.Sequence)
		assert.Equal(t, DeductionScheduled, x.Status)
		sum = sum.Add(x.Amount)
	}
	assert.True(t, sum.Equal(d("1000")))
	assert.Equal(t, time.Month(3), ds[1].DueDate.Month(), "Jan 31 + 1 month normalises into March")
}

func TestApplyPayment(t *testing.T) {
	l := Loan{Status: LoanActive, TotalAmount: d("1000"), RemainingBalance: d("500"), TotalPaid: d("500")}

	assert.ErrorIs(t, l.ApplyPayment(d("600")), ErrOverpayment)
	assert.True(t, l.RemainingBalance.Equal(d("500")), "overpay leaves the balance unchanged")

	assert.ErrorIs(t, l.ApplyPayment(d("0")), ErrInvalidAmount)
	assert.ErrorIs(t, l.ApplyPayment(d("1.005")), ErrInvalidAmount)

	require.NoError(t, l.ApplyPayment(d("500")))
	assert.True(t, l.PaidOff())
	assert.True(t, l.TotalPaid.Equal(d("1000")))

	l.Status = LoanCompleted
	assert.Error(t, l.ApplyPayment(d("1")))
}

func TestSettleDeductions(t *testing.T) {
	now := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	ds := Schedule("loan-1", d("300"), 3, now)

	changed := SettleDeductions(ds, d("150"), false, now)
	require.Len(t, changed, 1)
	assert.Equal(t, 1, changed[0].Sequence)
	assert.Equal(t, DeductionScheduled, ds[1].Status, "partially covered stays scheduled")

	changed = SettleDeductions(ds, d("150"), true, now)
	require.Len(t, changed, 2)
	assert.Equal(t, DeductionCancelled, ds[2].Status)
}

func TestLoanMachine(t *testing.T) {
	assert.True(t, LoanMachine.CanTransition(LoanDefaulted, LoanActive))
	assert.False(t, LoanMachine.CanTransition(LoanCompleted, LoanActive))
	assert.True(t, LoanDefaulted.Repayable())
	assert.False(t, LoanCancelled.Repayable())
}
