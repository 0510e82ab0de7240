package onboarding

import "github.com/cmlabs-hris/hris-lifecycle-go/internal/pkg/apperror"

var ErrTaskNotFound = apperror.New(apperror.KindNotFound, "onboarding task not found")
