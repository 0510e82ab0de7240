package notification

import "errors"

// Notification domain errors
var (
	ErrInvalidPayload = errors.New("invalid notification payload")
)
