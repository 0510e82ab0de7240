package payroll

import "github.com/cmlabs-hris/hris-lifecycle-go/internal/pkg/apperror"

var (
	ErrPayrollPeriodNotFound = apperror.New(apperror.KindNotFound, "payroll period not found")
	ErrPayrollEntryNotFound  = apperror.New(apperror.KindNotFound, "payroll entry not found")

	ErrPeriodNotAcceptingEntries = apperror.New(apperror.KindInvalidTransition, "entries can only be added to an open or processing period")
	ErrPeriodNotProcessing       = apperror.New(apperror.KindInvalidTransition, "entries can only be paid while the period is processing")
)
