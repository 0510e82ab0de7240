package overtime

import "github.com/cmlabs-hris/hris-lifecycle-go/internal/pkg/apperror"

var (
	ErrOvertimeRequestNotFound = apperror.New(apperror.KindNotFound, "overtime request not found")
	ErrNotRequestOwner         = apperror.New(apperror.KindForbidden, "only the requester can cancel an overtime request")
)
