package apperror

import "errors"

// Kind classifies an error for callers that need to decide how to react to it.
type Kind string

const (
	KindValidation        Kind = "validation_failed"
	KindInvalidTransition Kind = "invalid_state_transition"
	KindNotFound          Kind = "not_found"
	KindForbidden         Kind = "forbidden"
	KindFatal             Kind = "fatal"
)

// Error is a classified domain error. Domain packages declare their sentinels with New.
type Error struct {
	Kind    Kind
	Message string
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) ErrorKind() Kind {
	return e.Kind
}

type kinded interface {
	ErrorKind() Kind
}

// KindOf returns the kind of the first classified error in err's chain.
// Unclassified errors are fatal.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var k kinded
	if errors.As(err, &k) {
		return k.ErrorKind()
	}
	return KindFatal
}

// IsUserCorrectable reports whether the caller can fix the request and retry.
func IsUserCorrectable(err error) bool {
	switch KindOf(err) {
	case KindValidation, KindInvalidTransition, KindNotFound, KindForbidden:
		return true
	}
	return false
}
