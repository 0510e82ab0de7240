package leave

import (
	"math/rand"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func TestLeaveBalance_ApprovalScenario(t *testing.T) {
	b := LeaveBalance{OpeningBalance: d("10")}
	require.True(t, b.Available().Equal(d("10")))

	require.NoError(t, b.Reserve(d("3")))
	assert.True(t, b.Available().Equal(d("7")))
	assert.True(t, b.PendingQuota.Equal(d("3")))

	require.NoError(t, b.Commit(d("3")))
	assert.True(t, b.Available().Equal(d("7")))
	assert.True(t, b.UsedQuota.Equal(d("3")))
	assert.True(t, b.PendingQuota.IsZero())
}

func TestLeaveBalance_Guards(t *testing.T) {
	b := LeaveBalance{OpeningBalance: d("2"), EarnedQuota: d("1")}

	assert.ErrorIs(t, b.Reserve(d("3.5")), ErrInsufficientBalance)
	assert.ErrorIs(t, b.Reserve(d("0")), ErrInvalidDays)
	assert.ErrorIs(t, b.Commit(d("1")), ErrLedgerUnderflow)
	assert.ErrorIs(t, b.Release(d("1")), ErrLedgerUnderflow)

	require.NoError(t, b.Reserve(d("2")))
	assert.ErrorIs(t, b.Adjust(d("-1.5")), ErrAdjustmentBelowUsage)
	require.NoError(t, b.Adjust(d("-1")))
	assert.True(t, b.Available().IsZero())
	assert.ErrorIs(t, b.Adjust(d("0")), ErrInvalidDays)
}

// Any sequence of operations keeps used + pending within granted, and
// available always equals granted - used - pending.
func TestLeaveBalance_ConservationUnderRandomOperations(t *testing.T) {
	rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
	steps := []decimal.Decimal{d("0.5"), d("1"), d("2"), d("3.5"), d("-1"), d("-0.5")}

	for run := 0; run < 200; run++ {
		b := LeaveBalance{OpeningBalance: d("12"), RolloverQuota: d("2.5")}
		for i := 0; i < 50; i++ {
			amount := steps[rnd.Intn(len(steps))]
			switch rnd.Intn(4) {
			case 0:
				_ = b.Reserve(amount.Abs())
			case 1:
				_ = b.Commit(amount.Abs())
			case 2:
				_ = b.Release(amount.Abs())
			case 3:
				_ = b.Adjust(amount)
			}
			require.True(t, b.Consistent(), "run %d step %d: %+v", run, i, b)
			require.True(t, b.Available().Equal(b.Granted().Sub(b.UsedQuota).Sub(b.PendingQuota)))
		}
	}
}

func TestWorkingDays(t *testing.T) {
	mon := time.Date(2025, 1, 13, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 5, WorkingDays(mon, mon.AddDate(0, 0, 6)))
	assert.Equal(t, 0, WorkingDays(mon.AddDate(0, 0, 5), mon.AddDate(0, 0, 6)))
	assert.Equal(t, 3, WorkingDays(mon, mon.AddDate(0, 0, 2)))
}
