package leave

import (
	"time"

	"github.com/shopspring/decimal"
)

type EntryKind string

const (
	EntryGrant   EntryKind = "grant"
	EntryReserve EntryKind = "reserve"
	EntryCommit  EntryKind = "commit"
	EntryRelease EntryKind = "release"
	EntryAdjust  EntryKind = "adjust"
)

// LeaveBalance is the per employee, leave type and year ledger.
// Granted is the sum of the four grant components; used + pending never exceeds it.
type LeaveBalance struct {
	ID          string
	CompanyID   string
	EmployeeID  string
	LeaveTypeID string
	Year        int

	OpeningBalance  decimal.Decimal
	EarnedQuota     decimal.Decimal
	RolloverQuota   decimal.Decimal
	AdjustmentQuota decimal.Decimal

	UsedQuota    decimal.Decimal
	PendingQuota decimal.Decimal

	CreatedAt time.Time
	UpdatedAt time.Time
}

// BalanceEntry is an append-only record of one ledger movement.
type BalanceEntry struct {
	ID          string
	CompanyID   string
	BalanceID   string
	Kind        EntryKind
	Days        decimal.Decimal
	Reason      string
	ActorID     string
	ReferenceID *string
	CreatedAt   time.Time
}

func (b LeaveBalance) Granted() decimal.Decimal {
	return b.OpeningBalance.Add(b.EarnedQuota).Add(b.RolloverQuota).Add(b.AdjustmentQuota)
}

// Available is always recomputed from the components.
func (b LeaveBalance) Available() decimal.Decimal {
	return b.Granted().Sub(b.UsedQuota).Sub(b.PendingQuota)
}

// Consistent reports whether used and pending stay non-negative and within the granted total.
func (b LeaveBalance) Consistent() bool {
	return !b.UsedQuota.IsNegative() &&
		!b.PendingQuota.IsNegative() &&
		b.UsedQuota.Add(b.PendingQuota).LessThanOrEqual(b.Granted())
}

// Reserve moves days from available into pending.
func (b *LeaveBalance) Reserve(days decimal.Decimal) error {
	if !days.IsPositive() {
		return ErrInvalidDays
	}
	if days.GreaterThan(b.Available()) {
		return ErrInsufficientBalance
	}
	b.PendingQuota = b.PendingQuota.Add(days)
	return nil
}

// Commit moves days from pending into used.
func (b *LeaveBalance) Commit(days decimal.Decimal) error {
	if !days.IsPositive() {
		return ErrInvalidDays
	}
	if days.GreaterThan(b.PendingQuota) {
		return ErrLedgerUnderflow
	}
	b.PendingQuota = b.PendingQuota.Sub(days)
	b.UsedQuota = b.UsedQuota.Add(days)
	return nil
}

// Release returns pending days to available.
func (b *LeaveBalance) Release(days decimal.Decimal) error {
	if !days.IsPositive() {
		return ErrInvalidDays
	}
	if days.GreaterThan(b.PendingQuota) {
		return ErrLedgerUnderflow
	}
	b.PendingQuota = b.PendingQuota.Sub(days)
	return nil
}

// Adjust applies a signed correction to the adjustment component.
func (b *LeaveBalance) Adjust(delta decimal.Decimal) error {
	if delta.IsZero() {
		return ErrInvalidDays
	}
	next := *b
	next.AdjustmentQuota = b.AdjustmentQuota.Add(delta)
	if !next.Consistent() {
		return ErrAdjustmentBelowUsage
	}
	b.AdjustmentQuota = next.AdjustmentQuota
	return nil
}
