package payroll

import (
	"time"

	"github.com/cmlabs-hris/hris-lifecycle-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// PayrollPeriod groups the entries paid out together.
type PayrollPeriod struct {
	ID        string
	CompanyID string
	Name      string
	StartDate time.Time
	EndDate   time.Time
	PayDate   time.Time
	Status    PeriodStatus
	ClosedAt  *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time

	// Loaded for detail reads
	Entries []PayrollEntry
}

func (p PayrollPeriod) Range() validator.DateRange {
	return validator.DateRange{Start: p.StartDate, End: p.EndDate}
}

// PayrollEntry is one employee's pay for a period.
type PayrollEntry struct {
	ID              string
	CompanyID       string
	PeriodID        string
	EmployeeID      string
	BaseSalary      decimal.Decimal
	TotalAllowances decimal.Decimal
	TotalDeductions decimal.Decimal
	NetSalary       decimal.Decimal
	Notes           *string
	Status          EntryStatus
	ApprovedBy      *string
	ApprovedAt      *time.Time
	PaidBy          *string
	PaidAt          *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time

	// Joined fields
	EmployeeName *string
}

// NetSalary is base + allowances - deductions.
func NetSalary(base, allowances, deductions decimal.Decimal) decimal.Decimal {
	return base.Add(allowances).Sub(deductions)
}

// SetAmounts replaces the amounts and recomputes the net salary.
func (e *PayrollEntry) SetAmounts(base, allowances, deductions decimal.Decimal) {
	e.BaseSalary = base
	e.TotalAllowances = allowances
	e.TotalDeductions = deductions
	e.NetSalary = NetSalary(base, allowances, deductions)
}

type PeriodTotals struct {
	EntryCount      int
	PaidCount       int
	TotalBaseSalary decimal.Decimal
	TotalAllowances decimal.Decimal
	TotalDeductions decimal.Decimal
	TotalNetSalary  decimal.Decimal
}

func Summarize(entries []PayrollEntry) PeriodTotals {
	var t PeriodTotals
	for _, e := range entries {
		t.EntryCount++
		if e.Status == EntryPaid {
			t.PaidCount++
		}
		t.TotalBaseSalary = t.TotalBaseSalary.Add(e.BaseSalary)
		t.TotalAllowances = t.TotalAllowances.Add(e.TotalAllowances)
		t.TotalDeductions = t.TotalDeductions.Add(e.TotalDeductions)
		t.TotalNetSalary = t.TotalNetSalary.Add(e.NetSalary)
	}
	return t
}

// AllPaid is false while any entry is unpaid. An empty period counts as paid.
func (t PeriodTotals) AllPaid() bool {
	return t.PaidCount == t.EntryCount
}
