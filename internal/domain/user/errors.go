package user

import "github.com/cmlabs-hris/hris-lifecycle-go/internal/pkg/apperror"

var (
	ErrOwnerAccessRequired     = apperror.New(apperror.KindForbidden, "owner access required")
	ErrManagerAccessRequired   = apperror.New(apperror.KindForbidden, "manager access required")
	ErrInsufficientPermissions = apperror.New(apperror.KindForbidden, "insufficient permissions")
	ErrCompanyIDRequired       = apperror.New(apperror.KindForbidden, "company ID is required")
)
