package training

import "github.com/cmlabs-hris/hris-lifecycle-go/internal/pkg/apperror"

var (
	ErrSessionNotFound    = apperror.New(apperror.KindNotFound, "training session not found")
	ErrEnrollmentNotFound = apperror.New(apperror.KindNotFound, "training enrollment not found")
	ErrSessionNotOpen     = apperror.New(apperror.KindInvalidTransition, "enrollment is only possible while the session is scheduled")
	ErrSessionNotStarted  = apperror.New(apperror.KindInvalidTransition, "enrollments can only be completed once the session has started")
)
