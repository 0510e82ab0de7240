package leave

import "github.com/cmlabs-hris/hris-lifecycle-go/internal/pkg/apperror"

var (
	ErrLeaveApplicationNotFound = apperror.New(apperror.KindNotFound, "leave application not found")
	ErrLeaveTypeNotFound        = apperror.New(apperror.KindNotFound, "leave type not found")
	ErrLeaveBalanceNotFound     = apperror.New(apperror.KindNotFound, "leave balance not found")
	ErrInsufficientBalance      = apperror.New(apperror.KindValidation, "insufficient leave balance")
	ErrInvalidDays              = apperror.New(apperror.KindValidation, "days must be a non-zero amount")
	ErrAdjustmentBelowUsage     = apperror.New(apperror.KindValidation, "adjustment would leave less than the used and pending days")
	ErrLedgerUnderflow          = apperror.New(apperror.KindFatal, "leave balance pending days are inconsistent")
)
