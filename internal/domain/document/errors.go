package document

import "github.com/cmlabs-hris/hris-lifecycle-go/internal/pkg/apperror"

var (
	ErrRequestNotFound = apperror.New(apperror.KindNotFound, "document request not found")
	ErrOwnerOnly       = apperror.New(apperror.KindForbidden, "only the requester can cancel a document request")
)
