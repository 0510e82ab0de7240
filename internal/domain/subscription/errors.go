package subscription

import "github.com/cmlabs-hris/hris-lifecycle-go/internal/pkg/apperror"

var (
	ErrSubscriptionNotFound = apperror.New(apperror.KindNotFound, "subscription not found")
	ErrInvalidPayload       = apperror.New(apperror.KindValidation, "recompute seats payload requires company_id")
)
