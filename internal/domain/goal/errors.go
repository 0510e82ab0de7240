package goal

import "github.com/cmlabs-hris/hris-lifecycle-go/internal/pkg/apperror"

var (
	ErrGoalNotFound = apperror.New(apperror.KindNotFound, "goal not found")
	ErrOpenChildren = apperror.New(apperror.KindInvalidTransition, "every sub-goal must be completed or cancelled first")
)
