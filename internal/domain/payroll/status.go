package payroll

import "github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/status"

type PeriodStatus string

const (
	PeriodDraft      PeriodStatus = "draft"
	PeriodOpen       PeriodStatus = "open"
	PeriodProcessing PeriodStatus = "processing"
	PeriodClosed     PeriodStatus = "closed"
)

var PeriodMachine = status.NewMachine("payroll period", status.SameNoop,
	map[PeriodStatus]status.Meta{
		PeriodDraft:      {Label: "Draft", Color: "secondary", Editable: true},
		PeriodOpen:       {Label: "Open", Color: "primary", Editable: true},
		PeriodProcessing: {Label: "Processing", Color: "warning", Editable: true},
		PeriodClosed:     {Label: "Closed", Color: "dark", Terminal: true},
	},
	map[PeriodStatus][]PeriodStatus{
		PeriodDraft:      {PeriodOpen},
		PeriodOpen:       {PeriodProcessing},
		PeriodProcessing: {PeriodOpen, PeriodClosed},
	},
)

// AcceptsEntries reports whether entries may be added to a period in s.
func (s PeriodStatus) AcceptsEntries() bool {
	return s == PeriodOpen || s == PeriodProcessing
}

type EntryStatus string

const (
	EntryDraft    EntryStatus = "draft"
	EntryApproved EntryStatus = "approved"
	EntryPaid     EntryStatus = "paid"
)

// Paying an entry twice must surface, so same-state moves are rejected.
var EntryMachine = status.NewMachine("payroll entry", status.SameReject,
	map[EntryStatus]status.Meta{
		EntryDraft:    {Label: "Draft", Color: "secondary", Editable: true},
		EntryApproved: {Label: "Approved", Color: "primary"},
		EntryPaid:     {Label: "Paid", Color: "success", Terminal: true},
	},
	map[EntryStatus][]EntryStatus{
		EntryDraft:    {EntryApproved},
		EntryApproved: {EntryPaid},
	},
)
